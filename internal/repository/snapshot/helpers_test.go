package snapshot

import (
	"context"
	"errors"
	"testing"

	"clientkit/internal/snapshot"
)

var errStoreDown = errors.New("connection refused")

// failingStore fails every operation.
type failingStore struct{}

func (failingStore) Load(context.Context, string) ([]byte, error) { return nil, errStoreDown }
func (failingStore) Save(context.Context, string, []byte) error   { return errStoreDown }
func (failingStore) Delete(context.Context, string) error         { return errStoreDown }
func (failingStore) Close() error                                 { return nil }

func newTestDB(t *testing.T) *DB {
	t.Helper()
	return New(snapshot.NewMemoryStore())
}
