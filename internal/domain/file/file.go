package file

import (
	"time"
)

// File is an uploaded asset attached to an onboarding session and, once the
// client finishes, to the resulting submission.
type File struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SizeBytes int64     `json:"size"`
	URL       string    `json:"url,omitempty"`
	MimeType  string    `json:"type"`
	Key       string    `json:"key"`
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Status string

const (
	StatusUploading Status = "uploading"
	StatusComplete  Status = "complete"
	StatusFailed    Status = "failed"
)

func (f *File) IsComplete() bool {
	return f.Status == StatusComplete
}

type CreateFileInput struct {
	Prefix    string
	Name      string
	SizeBytes int64
	MimeType  string
}
