package upload

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"clientkit/internal/domain/file"
	"clientkit/internal/storage"
	apperrors "clientkit/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type brokenBlobs struct{ storage.BlobStore }

func (brokenBlobs) Put(context.Context, string, io.ReadSeeker, int64, string) error {
	return errors.New("bucket unreachable")
}

func upload(t *testing.T, svc *Service, in file.CreateFileInput, body io.ReadSeeker) (*file.File, error) {
	t.Helper()
	f, err := svc.Begin(in)
	require.NoError(t, err)
	return f, svc.Transfer(context.Background(), f, body)
}

func TestUpload_Complete(t *testing.T) {
	blobs := storage.NewMemoryBlobStore()
	svc := NewService(blobs, 1024, zap.NewNop())

	f, err := upload(t, svc, file.CreateFileInput{
		Prefix:    "sess-1",
		Name:      "logo.png",
		SizeBytes: 4,
		MimeType:  "image/png",
	}, strings.NewReader("\x89PNG"))
	require.NoError(t, err)

	assert.Equal(t, file.StatusComplete, f.Status)
	assert.True(t, strings.HasPrefix(f.Key, "submissions/sess-1/"+f.ID+"/logo.png"))
	assert.Equal(t, "memory:///"+f.Key, f.URL)
	assert.Equal(t, 1, blobs.Len())
}

func TestUpload_Failed(t *testing.T) {
	svc := NewService(brokenBlobs{}, 1024, zap.NewNop())

	f, err := upload(t, svc, file.CreateFileInput{Name: "a.txt", SizeBytes: 1}, strings.NewReader("a"))
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	require.NotNil(t, f)
	assert.Equal(t, file.StatusFailed, f.Status)
	assert.Contains(t, f.Error, "bucket unreachable")
}

func TestBegin_Validation(t *testing.T) {
	svc := NewService(storage.NewMemoryBlobStore(), 10, zap.NewNop())

	_, err := svc.Begin(file.CreateFileInput{Name: "", SizeBytes: 1})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Begin(file.CreateFileInput{Name: "big.bin", SizeBytes: 11})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	f, err := svc.Begin(file.CreateFileInput{Name: "ok.txt", SizeBytes: 10})
	require.NoError(t, err)
	assert.Equal(t, file.StatusUploading, f.Status)
}

func TestDiscard(t *testing.T) {
	blobs := storage.NewMemoryBlobStore()
	svc := NewService(blobs, 1024, zap.NewNop())
	ctx := context.Background()

	f, err := upload(t, svc, file.CreateFileInput{Name: "a.txt", SizeBytes: 1}, strings.NewReader("a"))
	require.NoError(t, err)

	require.NoError(t, svc.Discard(ctx, f))
	assert.Zero(t, blobs.Len())
}

func TestDownloadURL(t *testing.T) {
	blobs := storage.NewMemoryBlobStore()
	svc := NewService(blobs, 1024, zap.NewNop())
	ctx := context.Background()

	f, err := upload(t, svc, file.CreateFileInput{Name: "a.txt", SizeBytes: 1}, strings.NewReader("a"))
	require.NoError(t, err)

	url, err := svc.DownloadURL(ctx, f.Key)
	require.NoError(t, err)
	assert.Equal(t, f.URL, url)

	require.NoError(t, svc.Discard(ctx, f))
	_, err = svc.DownloadURL(ctx, f.Key)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
