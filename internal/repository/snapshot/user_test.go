package snapshot

import (
	"context"
	"testing"

	"clientkit/internal/domain/project"
	"clientkit/internal/domain/user"
	apperrors "clientkit/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_SaveGetDelete(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()
	u := &user.User{ID: user.IDForEmail("demo@clientkit.com"), Email: "demo@clientkit.com", Name: "Demo"}

	_, err := repo.Get(ctx, u.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, repo.Save(ctx, u))
	got, err := repo.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, u.Name, got.Name)

	require.NoError(t, repo.Delete(ctx, u.ID))
	_, err = repo.Get(ctx, u.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDB_Empty(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	empty, err := db.Empty(ctx)
	require.NoError(t, err)
	assert.True(t, empty)

	_, err = NewProjectRepository(db, testBaseURL).Add(ctx, &project.Project{Name: "Website"})
	require.NoError(t, err)

	empty, err = db.Empty(ctx)
	require.NoError(t, err)
	assert.False(t, empty)
}
