package projectwizard

import (
	"fmt"

	"clientkit/internal/domain/project"
)

// Input is a complete project description submitted in one request.
type Input struct {
	Name           string
	Description    string
	Questions      []QuestionInput
	ContractFile   string
	PaymentEnabled bool
	PaymentAmount  *float64
	PaymentTiming  project.PaymentTiming
}

type QuestionInput struct {
	Question string
	Type     project.QuestionType
	Options  []string
	Required bool
}

// Build drives a new draft through every step using in, so each step's gate
// applies as it would interactively. With no questions the defaults are kept.
// The returned draft sits on the Publish step.
func Build(in Input) (*Draft, error) {
	d := New()

	d.SetName(in.Name)
	d.SetDescription(in.Description)
	if err := d.next(); err != nil {
		return nil, err
	}

	if len(in.Questions) > 0 {
		for _, q := range d.Questions() {
			if err := d.RemoveQuestion(q.ID); err != nil {
				return nil, err
			}
		}
		for _, q := range in.Questions {
			if err := d.addFrom(q); err != nil {
				return nil, err
			}
		}
	}
	if err := d.next(); err != nil {
		return nil, err
	}

	d.SetContractFile(in.ContractFile)
	d.SetPaymentEnabled(in.PaymentEnabled)
	if in.PaymentEnabled && in.PaymentAmount != nil {
		if err := d.SetPaymentAmount(*in.PaymentAmount); err != nil {
			return nil, err
		}
	}
	if in.PaymentTiming != "" {
		if err := d.SetPaymentTiming(in.PaymentTiming); err != nil {
			return nil, err
		}
	}
	if err := d.next(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Draft) next() error {
	step := d.step
	if err := d.Next(); err != nil {
		return fmt.Errorf(errStepFmt, step, err)
	}
	return nil
}

func (d *Draft) addFrom(in QuestionInput) error {
	id := d.AddQuestion()
	required := in.Required
	if err := d.UpdateQuestion(id, QuestionPatch{Question: &in.Question, Required: &required}); err != nil {
		return err
	}

	t := in.Type
	if t == "" {
		t = project.QuestionText
	}
	if err := d.SetQuestionType(id, t); err != nil {
		return err
	}
	if !t.HasOptions() {
		return nil
	}

	if len(in.Options) == 0 {
		return d.RemoveOption(id, 0)
	}
	for i, opt := range in.Options {
		if i > 0 {
			if err := d.AddOption(id); err != nil {
				return err
			}
		}
		if err := d.UpdateOption(id, i, opt); err != nil {
			return err
		}
	}
	return nil
}

const errStepFmt = "%s: %w"
