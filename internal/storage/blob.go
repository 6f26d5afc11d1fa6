// Package storage defines the blob store used for client uploads.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
)

var ErrObjectNotFound = errors.New("object not found")

// BlobStore holds uploaded file bodies.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error
	DownloadURL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type object struct {
	data        []byte
	contentType string
}

// MemoryBlobStore keeps objects in process memory. URLs it hands out use the
// memory:// scheme and are only meaningful to this process.
type MemoryBlobStore struct {
	mu      sync.RWMutex
	objects map[string]object
}

var _ BlobStore = (*MemoryBlobStore)(nil)

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{objects: make(map[string]object)}
}

func (m *MemoryBlobStore) Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if size >= 0 && n != size {
		return fmt.Errorf("short body: got %d of %d bytes", n, size)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	m.objects[key] = object{data: buf.Bytes(), contentType: contentType}
	m.mu.Unlock()
	return nil
}

func (m *MemoryBlobStore) DownloadURL(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	_, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return "", ErrObjectNotFound
	}
	return (&url.URL{Scheme: "memory", Path: "/" + key}).String(), nil
}

func (m *MemoryBlobStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Object returns a stored body and its content type.
func (m *MemoryBlobStore) Object(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, "", false
	}
	return append([]byte(nil), obj.data...), obj.contentType, true
}

// Len reports how many objects are stored.
func (m *MemoryBlobStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// ObjectKey joins path segments with single slashes, skipping empty ones.
func ObjectKey(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg = strings.Trim(seg, "/"); seg != "" {
			parts = append(parts, seg)
		}
	}
	return strings.Join(parts, "/")
}
