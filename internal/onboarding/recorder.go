package onboarding

import (
	"context"
	"fmt"

	"clientkit/internal/domain/chat"
	"clientkit/internal/domain/project"
	"clientkit/internal/domain/submission"
)

// Recorder persists what a finished wizard produced.
type Recorder interface {
	Record(ctx context.Context, p *project.Project, s *submission.Submission) (*submission.Submission, error)
	Testimonial(ctx context.Context, projectID, submissionID string, t *submission.Testimonial) (*submission.Submission, error)
}

type SubmissionStore interface {
	AddSubmission(ctx context.Context, projectID string, s *submission.Submission) (*submission.Submission, error)
	AttachTestimonial(ctx context.Context, projectID, submissionID string, t *submission.Testimonial) (*submission.Submission, error)
}

type RoomStore interface {
	CreateRoom(ctx context.Context, input chat.CreateRoomInput) (*chat.Room, error)
	Send(ctx context.Context, input chat.SendInput) (*chat.Message, error)
}

// RepositoryRecorder stores the submission on its project and opens a chat
// room between the client and the project owner.
type RepositoryRecorder struct {
	submissions SubmissionStore
	rooms       RoomStore
}

var _ Recorder = (*RepositoryRecorder)(nil)

func NewRecorder(submissions SubmissionStore, rooms RoomStore) *RepositoryRecorder {
	return &RepositoryRecorder{submissions: submissions, rooms: rooms}
}

func (r *RepositoryRecorder) Record(ctx context.Context, p *project.Project, s *submission.Submission) (*submission.Submission, error) {
	saved, err := r.submissions.AddSubmission(ctx, p.ID, s)
	if err != nil {
		return nil, err
	}

	room, err := r.rooms.CreateRoom(ctx, chat.CreateRoomInput{
		ProjectID:    p.ID,
		ProjectName:  p.Name,
		ClientName:   saved.ClientName,
		ClientEmail:  saved.ClientEmail,
		FreelancerID: p.OwnerID,
	})
	if err != nil {
		return nil, err
	}

	_, err = r.rooms.Send(ctx, chat.SendInput{
		RoomID: room.ID,
		Sender: chat.Sender{
			ID:   saved.ClientEmail,
			Name: saved.ClientName,
			Type: chat.SenderClient,
		},
		Content: fmt.Sprintf(completedMessageFmt, saved.ClientName),
		Type:    chat.MessageSystem,
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *RepositoryRecorder) Testimonial(ctx context.Context, projectID, submissionID string, t *submission.Testimonial) (*submission.Submission, error) {
	return r.submissions.AttachTestimonial(ctx, projectID, submissionID, t)
}

const completedMessageFmt = "%s completed onboarding"
