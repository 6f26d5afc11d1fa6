package snapshot

import (
	"context"
	"strings"
	"testing"

	"clientkit/internal/domain/project"
	"clientkit/internal/domain/submission"
	apperrors "clientkit/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://clientkit.test"

func newProjectRepo(t *testing.T) *ProjectRepository {
	t.Helper()
	return NewProjectRepository(newTestDB(t), testBaseURL+"/")
}

func TestProjectRepository_AddFillsDefaults(t *testing.T) {
	repo := newProjectRepo(t)

	p, err := repo.Add(context.Background(), &project.Project{OwnerID: "u1", Name: "Website"})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, project.StatusPublished, p.Status)
	assert.Equal(t, project.PaymentAfter, p.PaymentTiming)
	assert.False(t, p.CreatedAt.IsZero())
	assert.True(t, strings.HasPrefix(p.PublicLink, testBaseURL+"/onboard/"), p.PublicLink)
	assert.Len(t, strings.TrimPrefix(p.PublicLink, testBaseURL+"/onboard/"), 8)
}

func TestProjectRepository_AddDuplicateID(t *testing.T) {
	repo := newProjectRepo(t)
	ctx := context.Background()

	_, err := repo.Add(ctx, &project.Project{ID: "1", Name: "A"})
	require.NoError(t, err)

	_, err = repo.Add(ctx, &project.Project{ID: "1", Name: "B"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestProjectRepository_AddRedrawsTakenLink(t *testing.T) {
	repo := newProjectRepo(t)
	ctx := context.Background()
	link := testBaseURL + "/onboard/abc123"

	first, err := repo.Add(ctx, &project.Project{ID: "1", PublicLink: link})
	require.NoError(t, err)
	second, err := repo.Add(ctx, &project.Project{ID: "2", PublicLink: link})
	require.NoError(t, err)

	assert.Equal(t, link, first.PublicLink)
	assert.NotEqual(t, link, second.PublicLink)
}

func TestProjectRepository_DeleteLeavesOthers(t *testing.T) {
	repo := newProjectRepo(t)
	ctx := context.Background()

	_, err := repo.Add(ctx, &project.Project{ID: "1", Name: "One"})
	require.NoError(t, err)
	_, err = repo.Add(ctx, &project.Project{ID: "2", Name: "Two"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "2"))

	projects, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "1", projects[0].ID)

	assert.ErrorIs(t, repo.Delete(ctx, "2"), apperrors.ErrNotFound)
}

func TestProjectRepository_UpdateMergesProvidedFields(t *testing.T) {
	repo := newProjectRepo(t)
	ctx := context.Background()

	_, err := repo.Add(ctx, &project.Project{ID: "1", Name: "Old", Description: "Keep me"})
	require.NoError(t, err)

	name := "New"
	amount := 1500.0
	updated, err := repo.Update(ctx, "1", project.UpdateProjectInput{Name: &name, PaymentAmount: &amount})
	require.NoError(t, err)

	assert.Equal(t, "New", updated.Name)
	assert.Equal(t, "Keep me", updated.Description)
	require.NotNil(t, updated.PaymentAmount)
	assert.Equal(t, 1500.0, *updated.PaymentAmount)

	got, err := repo.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)

	_, err = repo.Update(ctx, "missing", project.UpdateProjectInput{Name: &name})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProjectRepository_GetByPublicID(t *testing.T) {
	repo := newProjectRepo(t)
	ctx := context.Background()

	_, err := repo.Add(ctx, &project.Project{ID: "1", PublicLink: testBaseURL + "/onboard/abc123"})
	require.NoError(t, err)
	_, err = repo.Add(ctx, &project.Project{ID: "2", PublicLink: testBaseURL + "/onboard/def456"})
	require.NoError(t, err)

	p, err := repo.GetByPublicID(ctx, "def456")
	require.NoError(t, err)
	assert.Equal(t, "2", p.ID)

	_, err = repo.GetByPublicID(ctx, "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = repo.GetByPublicID(ctx, "zzz999")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProjectRepository_ListByOwner(t *testing.T) {
	repo := newProjectRepo(t)
	ctx := context.Background()

	for _, p := range []*project.Project{
		{ID: "1", OwnerID: "alice"},
		{ID: "2", OwnerID: "bob"},
		{ID: "3", OwnerID: "alice"},
	} {
		_, err := repo.Add(ctx, p)
		require.NoError(t, err)
	}

	owned, err := repo.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, "1", owned[0].ID)
	assert.Equal(t, "3", owned[1].ID)
}

func TestProjectRepository_Submissions(t *testing.T) {
	repo := newProjectRepo(t)
	ctx := context.Background()

	_, err := repo.Add(ctx, &project.Project{ID: "1", ContractFile: "contract.pdf"})
	require.NoError(t, err)

	s, err := repo.AddSubmission(ctx, "1", &submission.Submission{
		ClientName:   "Sarah",
		BriefAnswers: map[string]submission.Answer{"q1": submission.TextAnswer("TechCorp")},
		Status:       submission.StatusBriefCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, "1", s.ProjectID)
	assert.NotEmpty(t, s.ID)

	_, err = repo.UpdateSubmissionStatus(ctx, "1", s.ID, submission.StatusCompleted)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState, "contract step not signed")

	_, err = repo.UpdateSubmissionStatus(ctx, "1", s.ID, submission.StatusBriefPending)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	_, err = repo.UpdateSubmissionStatus(ctx, "1", "nope", submission.StatusCompleted)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	list, err := repo.ListSubmissions(ctx, "1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "TechCorp", list[0].BriefAnswers["q1"].Text)
}

func TestProjectRepository_UpdateSubmissionStatusAdvances(t *testing.T) {
	repo := newProjectRepo(t)
	ctx := context.Background()

	_, err := repo.Add(ctx, &project.Project{ID: "1"})
	require.NoError(t, err)
	s, err := repo.AddSubmission(ctx, "1", &submission.Submission{Status: submission.StatusBriefCompleted})
	require.NoError(t, err)

	updated, err := repo.UpdateSubmissionStatus(ctx, "1", s.ID, submission.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, submission.StatusCompleted, updated.Status)
}

func TestProjectRepository_AttachTestimonial(t *testing.T) {
	repo := newProjectRepo(t)
	ctx := context.Background()

	_, err := repo.Add(ctx, &project.Project{ID: "1"})
	require.NoError(t, err)
	s, err := repo.AddSubmission(ctx, "1", &submission.Submission{ClientName: "Mike"})
	require.NoError(t, err)

	_, err = repo.AttachTestimonial(ctx, "1", s.ID, &submission.Testimonial{Rating: 6})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	updated, err := repo.AttachTestimonial(ctx, "1", s.ID, &submission.Testimonial{Rating: 5, Text: "Great"})
	require.NoError(t, err)
	require.NotNil(t, updated.Testimonial)
	assert.Equal(t, "Mike", updated.Testimonial.ClientName)

	_, err = repo.AttachTestimonial(ctx, "1", s.ID, &submission.Testimonial{Rating: 4})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestProjectRepository_StorageUnavailable(t *testing.T) {
	repo := NewProjectRepository(New(failingStore{}), testBaseURL)

	_, err := repo.List(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	assert.ErrorIs(t, err, errStoreDown)

	_, err = repo.Add(context.Background(), &project.Project{Name: "x"})
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}
