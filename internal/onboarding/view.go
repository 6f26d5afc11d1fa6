package onboarding

import (
	"clientkit/internal/domain/file"
	"clientkit/internal/domain/project"
	"clientkit/internal/domain/submission"
	"clientkit/internal/payment"
	"clientkit/internal/task"
)

// View is a point-in-time copy of a wizard, safe to encode.
type View struct {
	SessionID    string                       `json:"session_id"`
	Project      PublicProject                `json:"project"`
	Steps        []StepKind                   `json:"steps"`
	Step         StepKind                     `json:"step"`
	StepIndex    int                          `json:"step_index"`
	Complete     bool                         `json:"complete"`
	CanAdvance   bool                         `json:"can_advance"`
	Answers      map[string]submission.Answer `json:"answers"`
	Files        []file.File                  `json:"files"`
	Client       ClientView                   `json:"client"`
	Contract     bool                         `json:"contract_signed"`
	Payment      PaymentView                  `json:"payment"`
	SubmissionID string                       `json:"submission_id,omitempty"`
	Testimonial  *submission.Testimonial      `json:"testimonial,omitempty"`
}

type ClientView struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type PaymentView struct {
	Status  string           `json:"status"`
	Error   string           `json:"error,omitempty"`
	Receipt *payment.Receipt `json:"receipt,omitempty"`
}

// PublicProject is the part of a project a client is allowed to see.
type PublicProject struct {
	ID             string                  `json:"id"`
	Name           string                  `json:"name"`
	Description    string                  `json:"description"`
	BriefQuestions []project.BriefQuestion `json:"brief_questions"`
	ContractFile   string                  `json:"contract_file,omitempty"`
	PaymentEnabled bool                    `json:"payment_enabled"`
	PaymentAmount  *float64                `json:"payment_amount,omitempty"`
	PaymentTiming  project.PaymentTiming   `json:"payment_timing"`
}

func NewPublicProject(p *project.Project) PublicProject {
	return PublicProject{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		BriefQuestions: p.BriefQuestions,
		ContractFile:   p.ContractFile,
		PaymentEnabled: p.PaymentEnabled,
		PaymentAmount:  p.PaymentAmount,
		PaymentTiming:  p.PaymentTiming,
	}
}

const (
	paymentNone    = "none"
	paymentIdle    = "idle"
	paymentPending = "pending"
	paymentPaid    = "paid"
	paymentFailed  = "failed"
)

func (w *Wizard) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	step := w.currentLocked()
	answers := make(map[string]submission.Answer, len(w.answers))
	for k, v := range w.answers {
		answers[k] = v
	}

	v := View{
		SessionID:  w.id,
		Project:    NewPublicProject(w.project),
		Steps:      append([]StepKind(nil), w.steps...),
		Step:       step,
		StepIndex:  w.current,
		Complete:   step == StepComplete,
		CanAdvance: step != StepComplete && w.gateLocked(step) == nil,
		Answers:    answers,
		Files:      append([]file.File{}, w.files...),
		Client:     ClientView{Name: w.client.Name, Email: w.client.Email},
		Contract:   w.contractSigned,
		Payment:    w.paymentViewLocked(),
	}
	if w.submission != nil {
		v.SubmissionID = w.submission.ID
		v.Testimonial = w.submission.Testimonial
	}
	return v
}

func (w *Wizard) paymentViewLocked() PaymentView {
	switch {
	case !w.project.PaymentEnabled:
		return PaymentView{Status: paymentNone}
	case w.paid:
		return PaymentView{Status: paymentPaid, Receipt: w.receipt}
	case w.paymentErr != "":
		return PaymentView{Status: paymentFailed, Error: w.paymentErr}
	case w.payment != nil && w.payment.Status() == task.StatusPending:
		return PaymentView{Status: paymentPending}
	default:
		return PaymentView{Status: paymentIdle}
	}
}
