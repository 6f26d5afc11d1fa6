package projectwizard

import (
	"fmt"

	"clientkit/internal/domain/project"
	"clientkit/pkg/token"
)

// QuestionPatch updates the prompt and required flag of a question. Nil
// fields are left untouched.
type QuestionPatch struct {
	Question *string
	Required *bool
}

// AddQuestion appends an empty, optional text question and returns its id.
func (d *Draft) AddQuestion() string {
	q := project.BriefQuestion{ID: token.NewID(), Type: project.QuestionText}
	d.questions = append(d.questions, q)
	d.report()
	return q.ID
}

func (d *Draft) UpdateQuestion(id string, patch QuestionPatch) error {
	q, err := d.question(id)
	if err != nil {
		return err
	}
	if patch.Question != nil {
		q.Question = *patch.Question
	}
	if patch.Required != nil {
		q.Required = *patch.Required
	}
	d.report()
	return nil
}

// SetQuestionType changes a question's type. Option types start with a
// single blank option; other types drop their options.
func (d *Draft) SetQuestionType(id string, t project.QuestionType) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidValue, err)
	}
	q, err := d.question(id)
	if err != nil {
		return err
	}

	q.Type = t
	if t.HasOptions() {
		q.Options = []string{""}
	} else {
		q.Options = nil
	}
	d.report()
	return nil
}

func (d *Draft) RemoveQuestion(id string) error {
	for i, q := range d.questions {
		if q.ID == id {
			d.questions = append(d.questions[:i], d.questions[i+1:]...)
			d.report()
			return nil
		}
	}
	return ErrUnknownQuestion
}

func (d *Draft) AddOption(id string) error {
	q, err := d.optionQuestion(id)
	if err != nil {
		return err
	}
	q.Options = append(q.Options, "")
	d.report()
	return nil
}

func (d *Draft) UpdateOption(id string, index int, text string) error {
	q, err := d.optionQuestion(id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(q.Options) {
		return ErrUnknownOption
	}
	q.Options[index] = text
	d.report()
	return nil
}

// RemoveOption deletes one option. Removing the last option leaves none.
func (d *Draft) RemoveOption(id string, index int) error {
	q, err := d.optionQuestion(id)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(q.Options) {
		return ErrUnknownOption
	}
	q.Options = append(q.Options[:index], q.Options[index+1:]...)
	d.report()
	return nil
}

func (d *Draft) question(id string) (*project.BriefQuestion, error) {
	for i := range d.questions {
		if d.questions[i].ID == id {
			return &d.questions[i], nil
		}
	}
	return nil, ErrUnknownQuestion
}

func (d *Draft) optionQuestion(id string) (*project.BriefQuestion, error) {
	q, err := d.question(id)
	if err != nil {
		return nil, err
	}
	if !q.Type.HasOptions() {
		return nil, ErrNoOptions
	}
	return q, nil
}
