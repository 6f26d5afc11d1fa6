package onboarding

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"clientkit/internal/domain/file"
	"clientkit/internal/domain/project"
	"clientkit/internal/domain/submission"
	"clientkit/internal/payment"
	"clientkit/internal/task"
	"clientkit/pkg/validator"

	"go.uber.org/zap"
)

// Client identifies who is onboarding. Signing the contract overrides it.
type Client struct {
	Name  string
	Email string
}

// Wizard holds one client's progress through a project's onboarding steps.
// All methods are safe for concurrent use; the payment task completes on its
// own goroutine and applies its result under the same lock.
type Wizard struct {
	id        string
	project   *project.Project
	steps     []StepKind
	recorder  Recorder
	processor payment.Processor
	logger    *zap.Logger

	// ctx lives as long as the wizard. Close cancels it, which also cancels a
	// pending payment.
	ctx    context.Context
	cancel context.CancelFunc

	mu             sync.Mutex
	current        int
	answers        map[string]submission.Answer
	files          []file.File
	client         Client
	contractSigned bool
	paid           bool
	receipt        *payment.Receipt
	payment        *task.Task[*payment.Receipt]
	paymentErr     string
	submission     *submission.Submission
	closed         bool
	lastActive     time.Time
}

func newWizard(id string, p *project.Project, client Client, deps wizardDeps) *Wizard {
	ctx, cancel := context.WithCancel(context.Background())
	return &Wizard{
		id:         id,
		project:    p,
		steps:      Steps(p),
		recorder:   deps.recorder,
		processor:  deps.processor,
		logger:     deps.logger.With(zap.String("session_id", id), zap.String("project_id", p.ID)),
		ctx:        ctx,
		cancel:     cancel,
		answers:    make(map[string]submission.Answer),
		client:     client,
		lastActive: deps.now(),
	}
}

type wizardDeps struct {
	recorder  Recorder
	processor payment.Processor
	logger    *zap.Logger
	now       func() time.Time
}

func (w *Wizard) ID() string {
	return w.id
}

func (w *Wizard) Project() *project.Project {
	return w.project
}

// Current returns the active step, or StepComplete past the last one.
func (w *Wizard) Current() StepKind {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.currentLocked()
}

func (w *Wizard) currentLocked() StepKind {
	if w.current >= len(w.steps) {
		return StepComplete
	}
	return w.steps[w.current]
}

// SetAnswer records the answer to a brief question. An empty answer clears it.
func (w *Wizard) SetAnswer(questionID string, answer submission.Answer) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.mutableLocked(); err != nil {
		return err
	}

	q, ok := w.project.Question(questionID)
	if !ok {
		return ErrUnknownQuestion
	}
	if err := checkAnswer(q, answer); err != nil {
		return err
	}

	if answer.Empty() {
		delete(w.answers, questionID)
		return nil
	}
	w.answers[questionID] = answer
	return nil
}

func checkAnswer(q project.BriefQuestion, a submission.Answer) error {
	switch q.Type {
	case project.QuestionMultiselect:
		if !a.Multi {
			return fmt.Errorf("%w: %q takes a list of options", ErrInvalidAnswer, q.Question)
		}
		for _, choice := range a.Choices {
			if !slices.Contains(q.Options, choice) {
				return fmt.Errorf("%w: %q is not an option", ErrInvalidAnswer, choice)
			}
		}
	case project.QuestionSelect:
		if a.Multi {
			return fmt.Errorf("%w: %q takes a single option", ErrInvalidAnswer, q.Question)
		}
		if a.Text != "" && !slices.Contains(q.Options, a.Text) {
			return fmt.Errorf("%w: %q is not an option", ErrInvalidAnswer, a.Text)
		}
	default:
		if a.Multi {
			return fmt.Errorf("%w: %q takes text", ErrInvalidAnswer, q.Question)
		}
	}
	return nil
}

// BeginFile registers a file that is being uploaded.
func (w *Wizard) BeginFile(f file.File) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.mutableLocked(); err != nil {
		return err
	}
	f.Status = file.StatusUploading
	w.files = append(w.files, f)
	return nil
}

// CompleteFile marks an upload finished and records where it can be fetched.
func (w *Wizard) CompleteFile(id, url string) error {
	return w.updateFile(id, func(f *file.File) {
		f.Status = file.StatusComplete
		f.URL = url
		f.Error = ""
	})
}

func (w *Wizard) FailFile(id string, cause error) error {
	return w.updateFile(id, func(f *file.File) {
		f.Status = file.StatusFailed
		f.Error = cause.Error()
	})
}

func (w *Wizard) updateFile(id string, fn func(*file.File)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := range w.files {
		if w.files[i].ID == id {
			fn(&w.files[i])
			return nil
		}
	}
	return ErrUnknownFile
}

// RemoveFile drops a file from the session and returns it so the caller can
// discard the stored body.
func (w *Wizard) RemoveFile(id string) (file.File, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.mutableLocked(); err != nil {
		return file.File{}, err
	}
	for i, f := range w.files {
		if f.ID == id {
			w.files = append(w.files[:i], w.files[i+1:]...)
			return f, nil
		}
	}
	return file.File{}, ErrUnknownFile
}

// SignContract records the client's signature. Name and email become the
// submission's client identity.
func (w *Wizard) SignContract(name, email string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.mutableLocked(); err != nil {
		return err
	}
	if !slices.Contains(w.steps, StepContract) {
		return ErrNoContract
	}

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return ErrSignatureMissing
	}
	if err := validator.Email(email); err != nil {
		return fmt.Errorf("%w: %s", ErrSignatureMissing, err)
	}

	w.client = Client{Name: name, Email: email}
	w.contractSigned = true
	return nil
}

// StartPayment charges the project amount in the background. On success the
// session is marked paid and, if the client is still on the payment step, the
// wizard advances. Close abandons a pending charge.
func (w *Wizard) StartPayment() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.mutableLocked(); err != nil {
		return err
	}
	if !slices.Contains(w.steps, StepPayment) {
		return ErrNoPayment
	}
	if w.paid {
		return ErrAlreadyPaid
	}
	if w.payment != nil && w.payment.Status() == task.StatusPending {
		return ErrPaymentPending
	}

	charge := payment.Charge{
		ProjectID:   w.project.ID,
		SessionID:   w.id,
		Description: w.project.Name,
	}
	if w.project.PaymentAmount != nil {
		charge.Amount = *w.project.PaymentAmount
	}

	t := task.Run(w.ctx, func(ctx context.Context) (*payment.Receipt, error) {
		return w.processor.Charge(ctx, charge)
	})
	w.payment = t
	w.paymentErr = ""

	go w.awaitPayment(t)
	return nil
}

func (w *Wizard) awaitPayment(t *task.Task[*payment.Receipt]) {
	receipt, err := t.Wait(context.Background())

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.payment != t {
		return
	}
	if err != nil {
		if !errors.Is(err, task.ErrCancelled) {
			w.paymentErr = err.Error()
			w.logger.Warn("payment failed", zap.Error(err))
		}
		return
	}

	w.paid = true
	w.receipt = receipt
	w.logger.Info("payment completed", zap.String("receipt_id", receipt.ID))

	if w.currentLocked() == StepPayment {
		switch err := w.advanceLocked(w.ctx); {
		case errors.Is(err, ErrUploadInProgress):
			w.logger.Info("payment completed with uploads pending, waiting for client")
		case err != nil:
			w.logger.Error("failed to finish onboarding after payment", zap.Error(err))
		}
	}
}

// PaymentTask exposes the pending or last payment task.
func (w *Wizard) PaymentTask() *task.Task[*payment.Receipt] {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.payment
}

// Next moves forward when the current step's gate passes. Leaving the last
// step records the submission.
func (w *Wizard) Next(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrSessionClosed
	}
	return w.advanceLocked(ctx)
}

func (w *Wizard) advanceLocked(ctx context.Context) error {
	step := w.currentLocked()
	if step == StepComplete {
		return ErrWizardComplete
	}
	if err := w.gateLocked(step); err != nil {
		return err
	}

	if w.current == len(w.steps)-1 {
		if err := w.finishLocked(ctx); err != nil {
			return err
		}
	}
	w.current++
	return nil
}

// Back moves to the previous step without re-validating. It stays put on the
// first step and once the wizard is complete.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrSessionClosed
	}
	if w.currentLocked() == StepComplete {
		return ErrWizardComplete
	}
	if w.current > 0 {
		w.current--
	}
	return nil
}

// gateLocked reports why the wizard cannot leave step, or nil if it can.
// Leaving the files step or the last step waits for pending uploads.
func (w *Wizard) gateLocked(step StepKind) error {
	if (step == StepFiles || w.current == len(w.steps)-1) && w.uploadingLocked() {
		return ErrUploadInProgress
	}
	if !w.validLocked(step) {
		return ErrStepIncomplete
	}
	return nil
}

func (w *Wizard) validLocked(step StepKind) bool {
	switch step {
	case StepBrief:
		return w.briefDoneLocked()
	case StepContract:
		return !w.project.HasContract() || w.contractSigned
	case StepPayment:
		return !w.project.PaymentEnabled || w.paid
	default:
		return true
	}
}

func (w *Wizard) uploadingLocked() bool {
	return slices.ContainsFunc(w.files, func(f file.File) bool {
		return f.Status == file.StatusUploading
	})
}

func (w *Wizard) briefDoneLocked() bool {
	for _, q := range w.project.BriefQuestions {
		if !q.Required {
			continue
		}
		a, ok := w.answers[q.ID]
		if !ok || a.Empty() {
			return false
		}
	}
	return true
}

func (w *Wizard) finishLocked(ctx context.Context) error {
	s := w.buildSubmissionLocked()
	saved, err := w.recorder.Record(ctx, w.project, s)
	if err != nil {
		return err
	}
	w.submission = saved
	w.logger.Info("onboarding completed", zap.String("submission_id", saved.ID))
	return nil
}

func (w *Wizard) buildSubmissionLocked() *submission.Submission {
	answers := make(map[string]submission.Answer, len(w.answers))
	for k, v := range w.answers {
		answers[k] = v
	}

	files := make([]file.File, 0, len(w.files))
	for _, f := range w.files {
		if f.IsComplete() {
			files = append(files, f)
		}
	}

	s := &submission.Submission{
		ProjectID:        w.project.ID,
		ClientName:       w.client.Name,
		ClientEmail:      w.client.Email,
		BriefAnswers:     answers,
		UploadedFiles:    files,
		ContractSigned:   w.contractSigned,
		PaymentCompleted: w.paid,
	}
	req := submission.Requirements{Contract: w.project.HasContract(), Payment: w.project.PaymentEnabled}
	s.Status = submission.DeriveStatus(w.briefDoneLocked(), *s, req)
	return s
}

// LeaveTestimonial attaches a rating and text to the recorded submission.
func (w *Wizard) LeaveTestimonial(ctx context.Context, rating int, text string) (*submission.Submission, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrSessionClosed
	}
	if w.submission == nil {
		return nil, ErrNotComplete
	}

	t := &submission.Testimonial{
		Rating:     rating,
		Text:       strings.TrimSpace(text),
		ClientName: w.submission.ClientName,
	}
	updated, err := w.recorder.Testimonial(ctx, w.project.ID, w.submission.ID, t)
	if err != nil {
		return nil, err
	}
	w.submission = updated
	return updated, nil
}

// Close cancels any pending payment and rejects further changes.
func (w *Wizard) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.closed = true
	w.cancel()
}

func (w *Wizard) mutableLocked() error {
	if w.closed {
		return ErrSessionClosed
	}
	if w.currentLocked() == StepComplete {
		return ErrWizardComplete
	}
	return nil
}

func (w *Wizard) touch(now time.Time) {
	w.mu.Lock()
	w.lastActive = now
	w.mu.Unlock()
}

func (w *Wizard) idleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastActive
}
