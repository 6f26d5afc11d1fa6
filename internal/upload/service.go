// Package upload moves client files into the blob store and tracks each
// file's upload state.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"clientkit/internal/domain/file"
	"clientkit/internal/storage"
	apperrors "clientkit/pkg/errors"
	"clientkit/pkg/token"
	"clientkit/pkg/validator"

	"go.uber.org/zap"
)

const keyRoot = "submissions"

type Service struct {
	blobs   storage.BlobStore
	maxSize int64
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(blobs storage.BlobStore, maxSize int64, logger *zap.Logger) *Service {
	return &Service{
		blobs:   blobs,
		maxSize: maxSize,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Begin validates the file metadata and returns a record in the uploading
// state. Nothing is written to the blob store yet.
func (s *Service) Begin(in file.CreateFileInput) (*file.File, error) {
	if err := validator.FileName(in.Name); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if err := validator.FileSize(in.SizeBytes, s.maxSize); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if err := validator.ContentType(in.MimeType); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	id := token.NewID()
	return &file.File{
		ID:        id,
		Name:      in.Name,
		SizeBytes: in.SizeBytes,
		MimeType:  in.MimeType,
		Key:       storage.ObjectKey(keyRoot, in.Prefix, id, in.Name),
		Status:    file.StatusUploading,
		CreatedAt: s.now(),
	}, nil
}

// Transfer streams body to the blob store and moves f to complete or failed.
// The returned error mirrors f.Error.
func (s *Service) Transfer(ctx context.Context, f *file.File, body io.ReadSeeker) error {
	if err := s.blobs.Put(ctx, f.Key, body, f.SizeBytes, f.MimeType); err != nil {
		return s.fail(f, err)
	}

	url, err := s.blobs.DownloadURL(ctx, f.Key)
	if err != nil {
		return s.fail(f, err)
	}

	f.URL = url
	f.Status = file.StatusComplete
	f.Error = ""
	return nil
}

// DownloadURL issues a new link for a stored object. On S3 this is a fresh
// presigned URL, so links stored on old submissions can be re-issued.
func (s *Service) DownloadURL(ctx context.Context, key string) (string, error) {
	url, err := s.blobs.DownloadURL(ctx, key)
	switch {
	case errors.Is(err, storage.ErrObjectNotFound):
		return "", apperrors.NotFound(errObjectMissing)
	case err != nil:
		return "", apperrors.Unavailable(errDownloadURL, err)
	}
	return url, nil
}

// Discard removes the stored body of a file that is no longer wanted.
func (s *Service) Discard(ctx context.Context, f *file.File) error {
	if f.Status != file.StatusComplete {
		return nil
	}
	if err := s.blobs.Delete(ctx, f.Key); err != nil {
		return apperrors.Unavailable(errDiscard, err)
	}
	return nil
}

func (s *Service) fail(f *file.File, err error) error {
	s.logger.Warn("upload failed",
		zap.String("file_id", f.ID),
		zap.String("key", f.Key),
		zap.Error(err),
	)
	f.Status = file.StatusFailed
	f.Error = err.Error()
	return apperrors.Unavailable(fmt.Sprintf(errUploadFmt, f.Name), err)
}

const (
	errUploadFmt     = "failed to upload %s"
	errDownloadURL   = "failed to create download link"
	errObjectMissing = "stored file no longer exists"
	errDiscard       = "failed to remove uploaded file"
)
