package repository

import (
	"context"

	"clientkit/internal/domain/chat"
	"clientkit/internal/domain/project"
	"clientkit/internal/domain/submission"
	"clientkit/internal/domain/user"
)

// UserRepository defines user data access operations
type UserRepository interface {
	Save(ctx context.Context, u *user.User) error
	Get(ctx context.Context, id string) (*user.User, error)
	Delete(ctx context.Context, id string) error
}

// ProjectRepository defines project data access operations
type ProjectRepository interface {
	List(ctx context.Context) ([]*project.Project, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*project.Project, error)
	Add(ctx context.Context, p *project.Project) (*project.Project, error)
	Update(ctx context.Context, id string, input project.UpdateProjectInput) (*project.Project, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*project.Project, error)
	GetByPublicID(ctx context.Context, fragment string) (*project.Project, error)

	AddSubmission(ctx context.Context, projectID string, s *submission.Submission) (*submission.Submission, error)
	UpdateSubmissionStatus(ctx context.Context, projectID, submissionID string, status submission.Status) (*submission.Submission, error)
	AttachTestimonial(ctx context.Context, projectID, submissionID string, t *submission.Testimonial) (*submission.Submission, error)
	ListSubmissions(ctx context.Context, projectID string) ([]submission.Submission, error)
}

// ChatRepository defines chat room and message operations
type ChatRepository interface {
	ListRooms(ctx context.Context, freelancerID string) ([]*chat.Room, error)
	ListMessages(ctx context.Context, roomID string) ([]chat.Message, error)
	Send(ctx context.Context, input chat.SendInput) (*chat.Message, error)
	MarkRead(ctx context.Context, roomID string) error
	TotalUnread(ctx context.Context, freelancerID string) (int, error)
	CreateRoom(ctx context.Context, input chat.CreateRoomInput) (*chat.Room, error)
}
