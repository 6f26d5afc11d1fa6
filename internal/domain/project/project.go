package project

import (
	"fmt"
	"time"

	"clientkit/internal/domain/submission"
)

type Project struct {
	ID             string                  `json:"id"`
	OwnerID        string                  `json:"owner_id"`
	Name           string                  `json:"name"`
	Description    string                  `json:"description"`
	BriefQuestions []BriefQuestion         `json:"brief_questions"`
	ContractFile   string                  `json:"contract_file,omitempty"`
	PaymentEnabled bool                    `json:"payment_enabled"`
	PaymentAmount  *float64                `json:"payment_amount,omitempty"`
	PaymentTiming  PaymentTiming           `json:"payment_timing"`
	Status         Status                  `json:"status"`
	PublicLink     string                  `json:"public_link"`
	CreatedAt      time.Time               `json:"created_at"`
	Submissions    []submission.Submission `json:"submissions,omitempty"`
}

// HasContract reports whether clients must sign a contract during onboarding.
func (p *Project) HasContract() bool {
	return p.ContractFile != ""
}

// Question returns the brief question with the given id.
func (p *Project) Question(id string) (BriefQuestion, bool) {
	for _, q := range p.BriefQuestions {
		if q.ID == id {
			return q, true
		}
	}
	return BriefQuestion{}, false
}

type BriefQuestion struct {
	ID       string       `json:"id"`
	Question string       `json:"question"`
	Type     QuestionType `json:"type"`
	Options  []string     `json:"options,omitempty"`
	Required bool         `json:"required"`
}

type QuestionType string

const (
	QuestionText        QuestionType = "text"
	QuestionTextarea    QuestionType = "textarea"
	QuestionSelect      QuestionType = "select"
	QuestionMultiselect QuestionType = "multiselect"
)

// HasOptions reports whether answers are picked from the option list.
func (t QuestionType) HasOptions() bool {
	return t == QuestionSelect || t == QuestionMultiselect
}

func (t QuestionType) Validate() error {
	switch t {
	case QuestionText, QuestionTextarea, QuestionSelect, QuestionMultiselect:
		return nil
	default:
		return fmt.Errorf(errInvalidQuestionTypeFmt, t)
	}
}

type PaymentTiming string

const (
	PaymentNow   PaymentTiming = "now"
	PaymentAfter PaymentTiming = "after"
)

func (t PaymentTiming) Validate() error {
	switch t {
	case PaymentNow, PaymentAfter:
		return nil
	default:
		return fmt.Errorf(errInvalidPaymentTimingFmt, t)
	}
}

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

func (s Status) Validate() error {
	switch s {
	case StatusDraft, StatusPublished:
		return nil
	default:
		return fmt.Errorf(errInvalidStatusFmt, s)
	}
}

// UpdateProjectInput is a shallow patch: nil fields are left untouched.
type UpdateProjectInput struct {
	Name           *string
	Description    *string
	BriefQuestions *[]BriefQuestion
	ContractFile   *string
	PaymentEnabled *bool
	PaymentAmount  *float64
	PaymentTiming  *PaymentTiming
	Status         *Status
}

// Apply merges the provided fields into p.
func (in UpdateProjectInput) Apply(p *Project) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.BriefQuestions != nil {
		p.BriefQuestions = *in.BriefQuestions
	}
	if in.ContractFile != nil {
		p.ContractFile = *in.ContractFile
	}
	if in.PaymentEnabled != nil {
		p.PaymentEnabled = *in.PaymentEnabled
	}
	if in.PaymentAmount != nil {
		amount := *in.PaymentAmount
		p.PaymentAmount = &amount
	}
	if in.PaymentTiming != nil {
		p.PaymentTiming = *in.PaymentTiming
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
}

const (
	errInvalidQuestionTypeFmt  = "invalid question type: %s"
	errInvalidPaymentTimingFmt = "invalid payment timing: %s"
	errInvalidStatusFmt        = "invalid project status: %s"
)
