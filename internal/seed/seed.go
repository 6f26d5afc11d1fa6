package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clientkit/internal/domain/chat"
	"clientkit/internal/domain/project"
	"clientkit/internal/domain/submission"
	"clientkit/internal/domain/user"
	"clientkit/internal/repository/snapshot"
)

const onboardPath = "/onboard/"

type Options struct {
	// PublicBaseURL prefixes the onboarding links of seeded projects.
	PublicBaseURL string
	// Force overwrites existing data.
	Force bool
	Now   func() time.Time
}

type Result struct {
	Skipped  bool
	Projects int
	Rooms    int
	Messages int
}

// Seed writes the fixtures into db. Data is only written when the store holds
// no projects and no rooms, unless Force is set.
func Seed(ctx context.Context, db *snapshot.DB, f *Fixtures, opts Options) (Result, error) {
	if !opts.Force {
		empty, err := db.Empty(ctx)
		if err != nil {
			return Result{}, err
		}
		if !empty {
			return Result{Skipped: true}, nil
		}
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	at := now().UTC()

	ownerID := user.IDForEmail(f.Owner.Email)
	ownerName := user.DisplayName(f.Owner.Name, f.Owner.Email)
	baseURL := strings.TrimRight(opts.PublicBaseURL, "/")

	projects := make([]*project.Project, 0, len(f.Projects))
	names := make(map[string]string, len(f.Projects))
	for _, p := range f.Projects {
		projects = append(projects, p.build(ownerID, baseURL))
		names[p.ID] = p.Name
	}

	rooms := make([]*chat.Room, 0, len(f.Rooms))
	messages := make(map[string][]chat.Message, len(f.Rooms))
	total := 0
	for _, r := range f.Rooms {
		room, msgs := r.build(names[r.ProjectID], ownerID, ownerName, at)
		rooms = append(rooms, room)
		messages[room.ID] = msgs
		total += len(msgs)
	}

	if err := db.Projects.Put(ctx, projects); err != nil {
		return Result{}, fmt.Errorf(errWriteFmt, db.Projects.Key(), err)
	}
	if err := db.Messages.Put(ctx, messages); err != nil {
		return Result{}, fmt.Errorf(errWriteFmt, db.Messages.Key(), err)
	}
	if err := db.Rooms.Put(ctx, rooms); err != nil {
		return Result{}, fmt.Errorf(errWriteFmt, db.Rooms.Key(), err)
	}

	return Result{Projects: len(projects), Rooms: len(rooms), Messages: total}, nil
}

func (p Project) build(ownerID, baseURL string) *project.Project {
	status := p.Status
	if status == "" {
		status = project.StatusPublished
	}
	timing := p.PaymentTiming
	if timing == "" {
		timing = project.PaymentAfter
	}

	out := &project.Project{
		ID:             p.ID,
		OwnerID:        ownerID,
		Name:           p.Name,
		Description:    p.Description,
		BriefQuestions: p.BriefQuestions,
		ContractFile:   p.ContractFile,
		PaymentEnabled: p.PaymentEnabled,
		PaymentAmount:  p.PaymentAmount,
		PaymentTiming:  timing,
		Status:         status,
		PublicLink:     baseURL + onboardPath + p.PublicID,
		CreatedAt:      p.CreatedAt,
	}
	if out.BriefQuestions == nil {
		out.BriefQuestions = []project.BriefQuestion{}
	}

	for _, s := range p.Submissions {
		out.Submissions = append(out.Submissions, s.build(p.ID))
	}
	return out
}

func (s Submission) build(projectID string) submission.Submission {
	answers := make(map[string]submission.Answer, len(s.BriefAnswers))
	for id, a := range s.BriefAnswers {
		answers[id] = submission.Answer(a)
	}

	status := s.Status
	if status == "" {
		status = submission.StatusBriefCompleted
	}

	out := submission.Submission{
		ID:               s.ID,
		ProjectID:        projectID,
		ClientName:       s.ClientName,
		ClientEmail:      s.ClientEmail,
		BriefAnswers:     answers,
		ContractSigned:   s.ContractSigned,
		PaymentCompleted: s.PaymentCompleted,
		Status:           status,
		CreatedAt:        s.CreatedAt,
	}
	if s.Testimonial != nil {
		out.Testimonial = &submission.Testimonial{
			ID:         s.Testimonial.ID,
			Rating:     s.Testimonial.Rating,
			Text:       s.Testimonial.Text,
			ClientName: s.ClientName,
			CreatedAt:  s.Testimonial.CreatedAt,
		}
	}
	return out
}

func (r Room) build(projectName, ownerID, ownerName string, now time.Time) (*chat.Room, []chat.Message) {
	msgs := make([]chat.Message, 0, len(r.Messages))
	for _, m := range r.Messages {
		sender := chat.Sender{ID: ownerID, Name: ownerName, Type: chat.SenderFreelancer}
		if m.From == chat.SenderClient {
			sender = chat.Sender{ID: r.ClientEmail, Name: r.ClientName, Type: chat.SenderClient}
		}
		msgs = append(msgs, chat.Message{
			ID:         m.ID,
			RoomID:     r.ID,
			SenderID:   sender.ID,
			SenderName: sender.Name,
			SenderType: sender.Type,
			Content:    m.Content,
			Type:       chat.MessageText,
			CreatedAt:  now.Add(-m.Ago),
			Read:       m.Read,
		})
	}

	room := &chat.Room{
		ID:           r.ID,
		ProjectID:    r.ProjectID,
		ProjectName:  projectName,
		ClientName:   r.ClientName,
		ClientEmail:  r.ClientEmail,
		FreelancerID: ownerID,
		UnreadCount:  chat.CountUnread(msgs),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.CreatedAt,
	}
	if n := len(msgs); n > 0 {
		last := msgs[n-1]
		room.LastMessage = &last
		room.UpdatedAt = last.CreatedAt
	}
	return room, msgs
}

const errWriteFmt = "failed to seed %s: %w"
