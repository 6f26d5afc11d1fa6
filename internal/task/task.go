// Package task runs a function on its own goroutine and exposes its outcome.
// A cancelled task never reports a value, even if the function produced one.
package task

import (
	"context"
	"errors"
	"sync"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

var ErrCancelled = errors.New("task cancelled")

type Task[T any] struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	status Status
	value  T
	err    error
}

// Run starts fn immediately. Cancelling ctx cancels the task.
func Run[T any](ctx context.Context, fn func(context.Context) (T, error)) *Task[T] {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task[T]{
		cancel: cancel,
		done:   make(chan struct{}),
		status: StatusPending,
	}

	go func() {
		defer cancel()
		value, err := fn(ctx)
		t.finish(ctx, value, err)
	}()

	return t
}

// After starts fn once delay has elapsed. Cancelling during the delay aborts
// the task without calling fn.
func After[T any](ctx context.Context, delay time.Duration, fn func(context.Context) (T, error)) *Task[T] {
	return Run(ctx, func(ctx context.Context) (T, error) {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-timer.C:
		}
		return fn(ctx)
	})
}

func (t *Task[T]) finish(ctx context.Context, value T, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer close(t.done)

	switch {
	case ctx.Err() != nil:
		t.status = StatusCancelled
		t.err = errors.Join(ErrCancelled, context.Cause(ctx))
	case err != nil:
		t.status = StatusFailed
		t.err = err
	default:
		t.status = StatusSucceeded
		t.value = value
	}
}

// Done is closed once the task reached a final status.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Cancel aborts the task. It is safe to call more than once and after the
// task finished.
func (t *Task[T]) Cancel() {
	t.cancel()
}

func (t *Task[T]) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Wait blocks until the task finishes or ctx is done.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value, t.err
}
