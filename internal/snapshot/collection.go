package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

const (
	errDecodeSnapshotFmt = "failed to decode snapshot %s: %w"
	errEncodeSnapshotFmt = "failed to encode snapshot %s: %w"
	errLoadSnapshotFmt   = "failed to load snapshot %s: %w"
	errSaveSnapshotFmt   = "failed to save snapshot %s: %w"
)

// Collection is a typed view over one snapshot key. Reads decode the latest
// snapshot; Update runs a read-modify-write cycle under the collection lock so
// writers in this process never interleave. Writers in other processes are
// still last-writer-wins.
type Collection[T any] struct {
	store Store
	key   string
	mu    sync.Mutex
}

func NewCollection[T any](store Store, key string) *Collection[T] {
	return &Collection[T]{store: store, key: key}
}

func (c *Collection[T]) Key() string {
	return c.key
}

// Get returns the current value, or the zero value if nothing was saved yet.
func (c *Collection[T]) Get(ctx context.Context) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// Update loads the value, applies fn and saves the result. Nothing is written
// when fn returns an error.
func (c *Collection[T]) Update(ctx context.Context, fn func(*T) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	value, err := c.load(ctx)
	if err != nil {
		return err
	}

	if err := fn(&value); err != nil {
		return err
	}

	return c.save(ctx, value)
}

// Put replaces the snapshot wholesale.
func (c *Collection[T]) Put(ctx context.Context, value T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save(ctx, value)
}

// Exists reports whether the snapshot was ever written.
func (c *Collection[T]) Exists(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.store.Load(ctx, c.key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf(errLoadSnapshotFmt, c.key, err)
	}
	return true, nil
}

func (c *Collection[T]) load(ctx context.Context) (T, error) {
	var value T

	data, err := c.store.Load(ctx, c.key)
	if errors.Is(err, ErrNotFound) {
		return value, nil
	}
	if err != nil {
		return value, fmt.Errorf(errLoadSnapshotFmt, c.key, err)
	}

	if err := json.Unmarshal(data, &value); err != nil {
		return value, fmt.Errorf(errDecodeSnapshotFmt, c.key, err)
	}
	return value, nil
}

func (c *Collection[T]) save(ctx context.Context, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf(errEncodeSnapshotFmt, c.key, err)
	}

	if err := c.store.Save(ctx, c.key, data); err != nil {
		return fmt.Errorf(errSaveSnapshotFmt, c.key, err)
	}
	return nil
}
