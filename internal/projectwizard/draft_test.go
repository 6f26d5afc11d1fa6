package projectwizard

import (
	"context"
	"testing"

	"clientkit/internal/domain/project"
	repo "clientkit/internal/repository/snapshot"
	"clientkit/internal/snapshot"
	apperrors "clientkit/pkg/errors"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestDraft_DetailsGate(t *testing.T) {
	d := New()
	assert.Equal(t, StepDetails, d.Step())
	assert.False(t, d.Valid())
	assert.ErrorIs(t, d.Next(), ErrStepInvalid)

	d.SetName("  Website Redesign ")
	assert.False(t, d.Valid())
	d.SetDescription("   ")
	assert.False(t, d.Valid())
	d.SetDescription("Complete redesign")
	assert.True(t, d.Valid())

	require.NoError(t, d.Next())
	assert.Equal(t, StepQuestions, d.Step())
}

func TestDraft_SeedsDefaultQuestions(t *testing.T) {
	d := New()
	d.SetName("Logo")
	d.SetDescription("Brand refresh")
	require.NoError(t, d.Next())

	qs := d.Questions()
	require.Len(t, qs, 2)
	assert.Equal(t, "What is your company name?", qs[0].Question)
	assert.Equal(t, "What is your email address?", qs[1].Question)
	for _, q := range qs {
		assert.NotEmpty(t, q.ID)
		assert.True(t, q.Required)
		assert.Equal(t, project.QuestionText, q.Type)
	}
	assert.True(t, d.Valid())

	d.Back()
	require.NoError(t, d.Next())
	assert.Len(t, d.Questions(), 2)
}

func TestDraft_QuestionsGate(t *testing.T) {
	d := New()
	d.SetName("Logo")
	d.SetDescription("Brand refresh")
	require.NoError(t, d.Next())

	for _, q := range d.Questions() {
		require.NoError(t, d.RemoveQuestion(q.ID))
	}
	assert.False(t, d.Valid())
	assert.ErrorIs(t, d.Next(), ErrStepInvalid)

	id := d.AddQuestion()
	assert.False(t, d.Valid())
	require.NoError(t, d.UpdateQuestion(id, QuestionPatch{Question: ptr("Favourite colour?")}))
	assert.True(t, d.Valid())

	q := d.Questions()[0]
	assert.Equal(t, project.QuestionText, q.Type)
	assert.False(t, q.Required)
}

func TestDraft_QuestionOptions(t *testing.T) {
	d := New()
	id := d.AddQuestion()

	assert.ErrorIs(t, d.AddOption(id), ErrNoOptions)

	require.NoError(t, d.SetQuestionType(id, project.QuestionMultiselect))
	assert.Equal(t, []string{""}, d.Questions()[0].Options)

	require.NoError(t, d.UpdateOption(id, 0, "Home"))
	require.NoError(t, d.AddOption(id))
	require.NoError(t, d.UpdateOption(id, 1, "About"))
	assert.Equal(t, []string{"Home", "About"}, d.Questions()[0].Options)
	assert.ErrorIs(t, d.UpdateOption(id, 2, "x"), ErrUnknownOption)

	require.NoError(t, d.RemoveOption(id, 0))
	require.NoError(t, d.RemoveOption(id, 0))
	assert.Empty(t, d.Questions()[0].Options)

	require.NoError(t, d.SetQuestionType(id, project.QuestionSelect))
	assert.Equal(t, []string{""}, d.Questions()[0].Options)
	require.NoError(t, d.SetQuestionType(id, project.QuestionTextarea))
	assert.Nil(t, d.Questions()[0].Options)

	assert.ErrorIs(t, d.SetQuestionType(id, "slider"), apperrors.ErrValidation)
	assert.ErrorIs(t, d.SetQuestionType("missing", project.QuestionText), ErrUnknownQuestion)
	assert.ErrorIs(t, d.RemoveQuestion("missing"), ErrUnknownQuestion)
}

func TestDraft_Payment(t *testing.T) {
	d := New()
	assert.Equal(t, project.PaymentAfter, d.Project("").PaymentTiming)

	d.SetPaymentEnabled(true)
	require.NoError(t, d.SetPaymentAmount(2500))
	assert.Equal(t, ptr(2500.0), d.Project("").PaymentAmount)
	assert.ErrorIs(t, d.SetPaymentAmount(0), ErrInvalidAmount)
	assert.ErrorIs(t, d.SetPaymentTiming("later"), apperrors.ErrValidation)

	d.SetPaymentEnabled(false)
	assert.Nil(t, d.Project("").PaymentAmount)
	d.SetPaymentEnabled(true)
	assert.Nil(t, d.Project("").PaymentAmount)
}

func TestDraft_PublishRequiresLastStep(t *testing.T) {
	d := New()
	_, err := d.Publish(context.Background(), nil, "owner")
	assert.ErrorIs(t, err, ErrNotPublishStep)
}

func TestDraft_PublishRoundTrip(t *testing.T) {
	projects := repo.NewProjectRepository(repo.New(snapshot.NewMemoryStore()), "https://clientkit.app")
	ctx := context.Background()

	d, err := Build(Input{
		Name:        "  Website Redesign ",
		Description: "Complete website redesign for a tech startup\n",
		Questions: []QuestionInput{
			{Question: "What is your company name?", Required: true},
			{Question: "Which pages?", Type: project.QuestionMultiselect, Options: []string{"Home", "About"}},
			{Question: "Tell us more", Type: project.QuestionTextarea},
		},
		ContractFile:   "contract.pdf",
		PaymentEnabled: true,
		PaymentAmount:  ptr(2500.0),
		PaymentTiming:  project.PaymentNow,
	})
	require.NoError(t, err)
	assert.Equal(t, StepPublish, d.Step())

	published, err := d.Publish(ctx, projects, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, project.StatusPublished, published.Status)
	assert.Contains(t, published.PublicLink, "https://clientkit.app/onboard/")

	got, err := projects.Get(ctx, published.ID)
	require.NoError(t, err)

	// Name and description are stored trimmed; everything else as drafted.
	want := &project.Project{
		OwnerID:     "owner-1",
		Name:        "Website Redesign",
		Description: "Complete website redesign for a tech startup",
		BriefQuestions: []project.BriefQuestion{
			{Question: "What is your company name?", Type: project.QuestionText, Required: true},
			{Question: "Which pages?", Type: project.QuestionMultiselect, Options: []string{"Home", "About"}},
			{Question: "Tell us more", Type: project.QuestionTextarea},
		},
		ContractFile:   "contract.pdf",
		PaymentEnabled: true,
		PaymentAmount:  ptr(2500.0),
		PaymentTiming:  project.PaymentNow,
		Status:         project.StatusPublished,
	}
	opts := cmp.Options{
		cmpopts.IgnoreFields(project.Project{}, "ID", "PublicLink", "CreatedAt"),
		cmpopts.IgnoreFields(project.BriefQuestion{}, "ID"),
		cmpopts.EquateEmpty(),
	}
	if diff := cmp.Diff(want, got, opts); diff != "" {
		t.Errorf("published project mismatch (-want +got):\n%s", diff)
	}
	for _, q := range got.BriefQuestions {
		assert.NotEmpty(t, q.ID)
	}
}

func TestBuild_DefaultsAndGates(t *testing.T) {
	d, err := Build(Input{Name: "Logo", Description: "Brand refresh"})
	require.NoError(t, err)
	p := d.Project("o")
	assert.Len(t, p.BriefQuestions, 2)
	assert.False(t, p.PaymentEnabled)
	assert.Equal(t, project.PaymentAfter, p.PaymentTiming)

	_, err = Build(Input{Name: "Logo"})
	assert.ErrorIs(t, err, ErrStepInvalid)

	_, err = Build(Input{Name: "Logo", Description: "x", Questions: []QuestionInput{{Question: " "}}})
	assert.ErrorIs(t, err, ErrStepInvalid)

	_, err = Build(Input{Name: "Logo", Description: "x", PaymentEnabled: true, PaymentAmount: ptr(-1.0)})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
