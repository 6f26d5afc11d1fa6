package submission

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"clientkit/internal/domain/file"
)

type Submission struct {
	ID               string            `json:"id"`
	ProjectID        string            `json:"project_id"`
	ClientName       string            `json:"client_name"`
	ClientEmail      string            `json:"client_email"`
	BriefAnswers     map[string]Answer `json:"brief_answers"`
	UploadedFiles    []file.File       `json:"uploaded_files"`
	ContractSigned   bool              `json:"contract_signed"`
	PaymentCompleted bool              `json:"payment_completed"`
	Status           Status            `json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
	Testimonial      *Testimonial      `json:"testimonial,omitempty"`
}

type Testimonial struct {
	ID         string    `json:"id"`
	Rating     int       `json:"rating"`
	Text       string    `json:"text"`
	ClientName string    `json:"client_name"`
	CreatedAt  time.Time `json:"created_at"`
}

const (
	MinRating = 1
	MaxRating = 5
)

// Answer holds either a single string or a list of strings. It encodes to
// JSON as whichever form it was created with.
type Answer struct {
	Text    string
	Choices []string
	Multi   bool
}

func TextAnswer(s string) Answer {
	return Answer{Text: s}
}

func ChoiceAnswer(choices ...string) Answer {
	return Answer{Choices: append([]string{}, choices...), Multi: true}
}

// Empty reports whether the answer counts as unanswered.
func (a Answer) Empty() bool {
	if a.Multi {
		return len(a.Choices) == 0
	}
	return strings.TrimSpace(a.Text) == ""
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.Multi {
		choices := a.Choices
		if choices == nil {
			choices = []string{}
		}
		return json.Marshal(choices)
	}
	return json.Marshal(a.Text)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var choices []string
		if err := json.Unmarshal(trimmed, &choices); err != nil {
			return fmt.Errorf(errDecodeAnswerFmt, err)
		}
		*a = Answer{Choices: choices, Multi: true}
		return nil
	}

	var text string
	if err := json.Unmarshal(trimmed, &text); err != nil {
		return fmt.Errorf(errDecodeAnswerFmt, err)
	}
	*a = Answer{Text: text}
	return nil
}

type Status string

const (
	StatusBriefPending   Status = "brief_pending"
	StatusBriefCompleted Status = "brief_completed"
	StatusContractSigned Status = "contract_signed"
	StatusPaid           Status = "paid"
	StatusCompleted      Status = "completed"
)

func (s Status) Validate() error {
	if _, ok := transitions[s]; !ok {
		return fmt.Errorf(errInvalidStatusFmt, s)
	}
	return nil
}

var transitions = map[Status][]Status{
	StatusBriefPending:   {StatusBriefCompleted},
	StatusBriefCompleted: {StatusContractSigned, StatusPaid, StatusCompleted},
	StatusContractSigned: {StatusPaid, StatusCompleted},
	StatusPaid:           {StatusCompleted},
	StatusCompleted:      {},
}

// CanTransition reports whether the table allows moving from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Requirements describe which optional steps the owning project enforces.
type Requirements struct {
	Contract bool
	Payment  bool
}

// Advance moves the submission to the target status. The move must be in the
// transition table and consistent with the recorded contract and payment flags.
func (s *Submission) Advance(to Status, req Requirements) error {
	if err := to.Validate(); err != nil {
		return err
	}
	if !CanTransition(s.Status, to) {
		return fmt.Errorf(errTransitionFmt, s.Status, to)
	}
	if err := s.consistentWith(to, req); err != nil {
		return err
	}
	s.Status = to
	return nil
}

func (s *Submission) consistentWith(to Status, req Requirements) error {
	switch to {
	case StatusContractSigned:
		if !s.ContractSigned {
			return fmt.Errorf(errFlagMismatchFmt, to, "contract not signed")
		}
	case StatusPaid:
		if !s.PaymentCompleted {
			return fmt.Errorf(errFlagMismatchFmt, to, "payment not completed")
		}
		if req.Contract && !s.ContractSigned {
			return fmt.Errorf(errFlagMismatchFmt, to, "contract not signed")
		}
	case StatusCompleted:
		if req.Contract && !s.ContractSigned {
			return fmt.Errorf(errFlagMismatchFmt, to, "contract not signed")
		}
		if req.Payment && !s.PaymentCompleted {
			return fmt.Errorf(errFlagMismatchFmt, to, "payment not completed")
		}
	}
	return nil
}

// DeriveStatus returns the furthest status the recorded flags support.
func DeriveStatus(briefDone bool, s Submission, req Requirements) Status {
	if !briefDone {
		return StatusBriefPending
	}

	status := StatusBriefCompleted
	if s.ContractSigned {
		status = StatusContractSigned
	}
	if s.PaymentCompleted && (!req.Contract || s.ContractSigned) {
		status = StatusPaid
	}
	if (!req.Contract || s.ContractSigned) && (!req.Payment || s.PaymentCompleted) {
		status = StatusCompleted
	}
	return status
}

const (
	errDecodeAnswerFmt  = "answer must be a string or a list of strings: %w"
	errInvalidStatusFmt = "invalid submission status: %s"
	errTransitionFmt    = "cannot move submission from %s to %s"
	errFlagMismatchFmt  = "cannot move submission to %s: %s"
)
