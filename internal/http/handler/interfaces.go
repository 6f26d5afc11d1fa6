package handler

import (
	"context"
	"io"

	"clientkit/internal/domain/chat"
	"clientkit/internal/domain/file"
	"clientkit/internal/domain/project"
	"clientkit/internal/domain/submission"
	"clientkit/internal/domain/user"
	"clientkit/internal/onboarding"
)

// Consumer-side interfaces defined by handlers
// Each interface contains only the methods needed by the specific handler

// AuthHandler interfaces
type UserStore interface {
	Save(ctx context.Context, u *user.User) error
	Delete(ctx context.Context, id string) error
}

type TokenGenerator interface {
	Generate(userID, email string) (string, error)
}

type UnreadCounter interface {
	TotalUnread(ctx context.Context, freelancerID string) (int, error)
}

// ProjectHandler interfaces
type ProjectStore interface {
	ListByOwner(ctx context.Context, ownerID string) ([]*project.Project, error)
	Add(ctx context.Context, p *project.Project) (*project.Project, error)
	Get(ctx context.Context, id string) (*project.Project, error)
	Update(ctx context.Context, id string, input project.UpdateProjectInput) (*project.Project, error)
	Delete(ctx context.Context, id string) error
	ListSubmissions(ctx context.Context, projectID string) ([]submission.Submission, error)
	UpdateSubmissionStatus(ctx context.Context, projectID, submissionID string, status submission.Status) (*submission.Submission, error)
}

// DownloadLinker issues a fresh link to a stored file.
type DownloadLinker interface {
	DownloadURL(ctx context.Context, key string) (string, error)
}

// ChatHandler interfaces
type ChatStore interface {
	ListRooms(ctx context.Context, freelancerID string) ([]*chat.Room, error)
	ListMessages(ctx context.Context, roomID string) ([]chat.Message, error)
	Send(ctx context.Context, input chat.SendInput) (*chat.Message, error)
	MarkRead(ctx context.Context, roomID string) error
	TotalUnread(ctx context.Context, freelancerID string) (int, error)
}

// OnboardingHandler interfaces
type PublicProjectFinder interface {
	GetByPublicID(ctx context.Context, fragment string) (*project.Project, error)
}

type SessionManager interface {
	Start(ctx context.Context, publicID string, client onboarding.Client) (*onboarding.Wizard, error)
	Get(id string) (*onboarding.Wizard, error)
	Close(id string) error
}

type Uploader interface {
	Begin(in file.CreateFileInput) (*file.File, error)
	Transfer(ctx context.Context, f *file.File, body io.ReadSeeker) error
	Discard(ctx context.Context, f *file.File) error
}

type MarkdownRenderer interface {
	Render(source string) (string, error)
}
