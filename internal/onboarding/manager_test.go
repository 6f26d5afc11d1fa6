package onboarding

import (
	"context"
	"path"
	"testing"
	"time"

	"clientkit/internal/domain/project"
	"clientkit/internal/domain/submission"
	apperrors "clientkit/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_StartUnknownLink(t *testing.T) {
	f := newFixture(t, 0)

	_, err := f.manager.Start(context.Background(), "missing", Client{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestManager_StartRejectsDraft(t *testing.T) {
	f := newFixture(t, 0)
	p := f.addProject(t, project.Project{Status: project.StatusDraft})

	_, err := f.manager.Start(context.Background(), path.Base(p.PublicLink), Client{})
	assert.ErrorIs(t, err, ErrNotPublished)
}

func TestManager_DefaultClientName(t *testing.T) {
	f := newFixture(t, 0)
	p := f.addProject(t, project.Project{})

	w, err := f.manager.Start(context.Background(), path.Base(p.PublicLink), Client{Name: "  "})
	require.NoError(t, err)
	assert.Equal(t, defaultClientName, w.View().Client.Name)

	got, err := f.manager.Get(w.ID())
	require.NoError(t, err)
	assert.Same(t, w, got)
	assert.Equal(t, 1, f.manager.Len())
}

func TestManager_ExpiresIdleSessions(t *testing.T) {
	f := newFixture(t, 0)
	p := f.addProject(t, project.Project{})

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	f.manager.now = func() time.Time { return now }

	idle := f.start(t, p)
	now = now.Add(30 * time.Minute)
	active := f.start(t, p)

	now = now.Add(45 * time.Minute)
	assert.Equal(t, 1, f.manager.Sweep())

	_, err := f.manager.Get(idle.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, idle.SetAnswer("q1", submission.TextAnswer("x")), ErrSessionClosed)

	_, err = f.manager.Get(active.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, f.manager.Len())
}

func TestManager_CloseUnknown(t *testing.T) {
	f := newFixture(t, 0)
	assert.ErrorIs(t, f.manager.Close("nope"), ErrSessionNotFound)
}
