package task

import (
	"context"
	"sync"
)

// Handle tracks the completion of one submitted task.
type Handle struct {
	id   string
	done chan struct{}
	once sync.Once
	err  error
}

func newHandle(id string) *Handle {
	return &Handle{id: id, done: make(chan struct{})}
}

// ID returns the task ID this handle belongs to.
func (h *Handle) ID() string {
	return h.id
}

// Done is closed once the task has finished or was discarded.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err returns the task's error once Done is closed, and nil before that.
func (h *Handle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// Wait blocks until the task finishes or ctx is done.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return h.err
	}
}

func (h *Handle) finished() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

func (h *Handle) resolve(err error) {
	h.once.Do(func() {
		h.err = err
		close(h.done)
	})
}
