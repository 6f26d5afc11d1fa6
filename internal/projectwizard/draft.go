// Package projectwizard drives a freelancer through creating a project:
// details, brief questions, contract and payment, then publish.
package projectwizard

import (
	"context"
	"fmt"
	"strings"

	"clientkit/internal/domain/project"
	"clientkit/pkg/token"
	"clientkit/pkg/validator"
)

type Step int

const (
	StepDetails Step = iota
	StepQuestions
	StepContractPayment
	StepPublish
)

var stepNames = [...]string{"details", "questions", "contract_payment", "publish"}

func (s Step) String() string {
	if s < StepDetails || s > StepPublish {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

// DefaultQuestions are seeded the first time the Questions step is entered
// with no questions.
var DefaultQuestions = []project.BriefQuestion{
	{Question: "What is your company name?", Type: project.QuestionText, Required: true},
	{Question: "What is your email address?", Type: project.QuestionText, Required: true},
}

// Draft is an unpublished project being authored. It is not safe for
// concurrent use.
type Draft struct {
	step  Step
	valid bool

	name           string
	description    string
	questions      []project.BriefQuestion
	contractFile   string
	paymentEnabled bool
	paymentAmount  *float64
	paymentTiming  project.PaymentTiming
}

func New() *Draft {
	d := &Draft{paymentTiming: project.PaymentAfter}
	d.report()
	return d
}

func (d *Draft) Step() Step {
	return d.step
}

// Valid returns the validity last reported for the active step.
func (d *Draft) Valid() bool {
	return d.valid
}

func (d *Draft) Questions() []project.BriefQuestion {
	out := make([]project.BriefQuestion, len(d.questions))
	for i, q := range d.questions {
		out[i] = cloneQuestion(q)
	}
	return out
}

func (d *Draft) SetName(name string) {
	d.name = name
	d.report()
}

func (d *Draft) SetDescription(description string) {
	d.description = description
	d.report()
}

// Next advances when the active step was last reported valid.
func (d *Draft) Next() error {
	if !d.valid {
		return ErrStepInvalid
	}
	if d.step == StepPublish {
		return ErrStepInvalid
	}

	d.step++
	if d.step == StepQuestions && len(d.questions) == 0 {
		for _, q := range DefaultQuestions {
			q.ID = token.NewID()
			d.questions = append(d.questions, q)
		}
	}
	d.report()
	return nil
}

func (d *Draft) Back() {
	if d.step > StepDetails {
		d.step--
	}
	d.report()
}

// Publisher stores a finished project.
type Publisher interface {
	Add(ctx context.Context, p *project.Project) (*project.Project, error)
}

// Publish writes the project through the repository, which assigns the
// public link under its base URL.
func (d *Draft) Publish(ctx context.Context, repo Publisher, ownerID string) (*project.Project, error) {
	if d.step != StepPublish {
		return nil, ErrNotPublishStep
	}
	if !d.valid {
		return nil, ErrStepInvalid
	}

	p := d.Project(ownerID)
	p.ID = token.NewID()
	p.Status = project.StatusPublished
	return repo.Add(ctx, p)
}

// Project returns the project the draft currently describes.
func (d *Draft) Project(ownerID string) *project.Project {
	p := &project.Project{
		OwnerID:        ownerID,
		Name:           strings.TrimSpace(d.name),
		Description:    strings.TrimSpace(d.description),
		BriefQuestions: d.Questions(),
		ContractFile:   d.contractFile,
		PaymentEnabled: d.paymentEnabled,
		PaymentTiming:  d.paymentTiming,
	}
	if d.paymentEnabled && d.paymentAmount != nil {
		amount := *d.paymentAmount
		p.PaymentAmount = &amount
	}
	return p
}

func (d *Draft) report() {
	switch d.step {
	case StepDetails:
		d.valid = validator.ProjectName(d.name) == nil && strings.TrimSpace(d.description) != ""
	case StepQuestions:
		d.valid = len(d.questions) > 0
		for _, q := range d.questions {
			if strings.TrimSpace(q.Question) == "" {
				d.valid = false
				break
			}
		}
	default:
		d.valid = true
	}
}

func cloneQuestion(q project.BriefQuestion) project.BriefQuestion {
	if q.Options != nil {
		q.Options = append([]string(nil), q.Options...)
	}
	return q
}
