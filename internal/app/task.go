package app

import (
	"context"
	"sync"
	"time"
)

type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskSuccess TaskStatus = "success"
	TaskFailure TaskStatus = "failure"
)

// Task is the result of a call that completes later. Cancel aborts the
// underlying context; a cancelled task resolves to failure.
type Task[T any] struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	val T
	err error
}

// Go runs fn in its own goroutine under a child of ctx.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Task[T] {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task[T]{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer cancel()
		v, err := fn(ctx)
		t.mu.Lock()
		t.val, t.err = v, err
		t.mu.Unlock()
		close(t.done)
	}()
	return t
}

func (t *Task[T]) Done() <-chan struct{} { return t.done }

func (t *Task[T]) Cancel() { t.cancel() }

func (t *Task[T]) Status() TaskStatus {
	select {
	case <-t.done:
	default:
		return TaskPending
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return TaskFailure
	}
	return TaskSuccess
}

// Wait blocks until the task resolves or ctx ends. Giving up on ctx does not
// cancel the task.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.val, t.err
}

// sleepCtx waits for d or returns ctx.Err() if ctx ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	tm := time.NewTimer(d)
	defer tm.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-tm.C:
		return nil
	}
}
