// Package seed loads demo data into an empty store.
package seed

import (
	_ "embed"
	"fmt"
	"io"
	"time"

	"clientkit/internal/domain/chat"
	"clientkit/internal/domain/project"
	"clientkit/internal/domain/submission"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

type Fixtures struct {
	Owner    Owner     `yaml:"owner"`
	Projects []Project `yaml:"projects"`
	Rooms    []Room    `yaml:"rooms"`
}

type Owner struct {
	Email string `yaml:"email"`
	Name  string `yaml:"name"`
}

type Project struct {
	ID             string                  `yaml:"id"`
	Name           string                  `yaml:"name"`
	Description    string                  `yaml:"description"`
	PublicID       string                  `yaml:"public_id"`
	ContractFile   string                  `yaml:"contract_file"`
	PaymentEnabled bool                    `yaml:"payment_enabled"`
	PaymentAmount  *float64                `yaml:"payment_amount"`
	PaymentTiming  project.PaymentTiming   `yaml:"payment_timing"`
	Status         project.Status          `yaml:"status"`
	CreatedAt      time.Time               `yaml:"created_at"`
	BriefQuestions []project.BriefQuestion `yaml:"brief_questions"`
	Submissions    []Submission            `yaml:"submissions"`
}

type Submission struct {
	ID               string            `yaml:"id"`
	ClientName       string            `yaml:"client_name"`
	ClientEmail      string            `yaml:"client_email"`
	BriefAnswers     map[string]Answer `yaml:"brief_answers"`
	ContractSigned   bool              `yaml:"contract_signed"`
	PaymentCompleted bool              `yaml:"payment_completed"`
	Status           submission.Status `yaml:"status"`
	CreatedAt        time.Time         `yaml:"created_at"`
	Testimonial      *Testimonial      `yaml:"testimonial"`
}

type Testimonial struct {
	ID        string    `yaml:"id"`
	Rating    int       `yaml:"rating"`
	Text      string    `yaml:"text"`
	CreatedAt time.Time `yaml:"created_at"`
}

// Answer is a brief answer written as either a scalar or a list.
type Answer submission.Answer

func (a *Answer) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.SequenceNode:
		var choices []string
		if err := n.Decode(&choices); err != nil {
			return err
		}
		*a = Answer(submission.ChoiceAnswer(choices...))
	case yaml.ScalarNode:
		*a = Answer(submission.TextAnswer(n.Value))
	default:
		return fmt.Errorf(errAnswerKindFmt, n.Line)
	}
	return nil
}

type Room struct {
	ID          string    `yaml:"id"`
	ProjectID   string    `yaml:"project_id"`
	ClientName  string    `yaml:"client_name"`
	ClientEmail string    `yaml:"client_email"`
	CreatedAt   time.Time `yaml:"created_at"`
	Messages    []Message `yaml:"messages"`
}

type Message struct {
	ID      string          `yaml:"id"`
	From    chat.SenderType `yaml:"from"`
	Content string          `yaml:"content"`
	Ago     time.Duration   `yaml:"ago"`
	Read    bool            `yaml:"read"`
}

// Default returns the built-in demo fixtures.
func Default() (*Fixtures, error) {
	return Parse(defaultFixtures)
}

func Read(r io.Reader) (*Fixtures, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf(errReadFixturesFmt, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf(errParseFixturesFmt, err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixtures) validate() error {
	if f.Owner.Email == "" {
		return fmt.Errorf(errMissingOwnerFmt)
	}

	projects := make(map[string]bool, len(f.Projects))
	for _, p := range f.Projects {
		if p.ID == "" || p.PublicID == "" {
			return fmt.Errorf(errProjectIdentityFmt, p.Name)
		}
		if projects[p.ID] {
			return fmt.Errorf(errDuplicateProjectFmt, p.ID)
		}
		projects[p.ID] = true
		for _, q := range p.BriefQuestions {
			if err := q.Type.Validate(); err != nil {
				return fmt.Errorf(errFixtureFmt, p.ID, err)
			}
		}
	}

	for _, r := range f.Rooms {
		if !projects[r.ProjectID] {
			return fmt.Errorf(errRoomProjectFmt, r.ID, r.ProjectID)
		}
		for _, m := range r.Messages {
			if m.From != chat.SenderFreelancer && m.From != chat.SenderClient {
				return fmt.Errorf(errMessageSenderFmt, m.ID, m.From)
			}
		}
	}
	return nil
}

const (
	errReadFixturesFmt     = "failed to read fixtures: %w"
	errParseFixturesFmt    = "failed to parse fixtures: %w"
	errAnswerKindFmt       = "line %d: answer must be a string or a list of strings"
	errMissingOwnerFmt     = "fixtures need an owner email"
	errProjectIdentityFmt  = "project %q needs an id and a public_id"
	errDuplicateProjectFmt = "duplicate project id %q"
	errFixtureFmt          = "project %s: %w"
	errRoomProjectFmt      = "room %s references unknown project %s"
	errMessageSenderFmt    = "message %s: unknown sender %q"
)
