package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Errors returned by TaskRunner
var (
	ErrRunnerStopped = errors.New("task runner is stopped")
	ErrDuplicateTask = errors.New("task is already in flight")
	ErrTaskNotFound  = errors.New("no handle for task")
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// TaskRunner manages background task processing and keeps a Handle per
// submitted task until it is forgotten.
type TaskRunner struct {
	queue  *TaskQueue
	pool   *WorkerPool
	logger *slog.Logger

	mu      sync.Mutex
	handles map[string]*Handle
	stopped bool
}

// NewTaskRunner creates a new TaskRunner
func NewTaskRunner(config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "task_runner")

	queue := NewTaskQueue(config.QueueSize, logger)
	r := &TaskRunner{
		queue:   queue,
		pool:    NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, logger),
		logger:  logger,
		handles: make(map[string]*Handle),
	}
	r.pool.SetDoneHandler(r.taskDone)
	return r
}

// Submit enqueues task without blocking. It fails with ErrQueueFull when the
// queue is at capacity and ErrDuplicateTask when a task with the same ID has
// not finished yet.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	id := task.ID()

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return ErrRunnerStopped
	}
	if existing, ok := r.handles[id]; ok && !existing.finished() {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateTask, id)
	}
	h := newHandle(id)
	r.handles[id] = h
	r.mu.Unlock()

	if err := r.queue.Enqueue(task); err != nil {
		r.mu.Lock()
		if r.handles[id] == h {
			delete(r.handles, id)
		}
		r.mu.Unlock()
		return err
	}
	return nil
}

// Start begins processing queued tasks.
func (r *TaskRunner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return ErrRunnerStopped
	}
	r.pool.Start()
	return nil
}

// Stop gracefully shuts down the task runner. In-flight tasks see their
// context cancelled; tasks still queued are discarded with ErrRunnerStopped.
func (r *TaskRunner) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	r.queue.Close()
	r.pool.Stop()

	discarded := 0
	for task := range r.queue.GetChannel() {
		r.resolve(task.ID(), ErrRunnerStopped)
		discarded++
	}
	if discarded > 0 {
		r.logger.Warn("discarded queued tasks on shutdown", "count", discarded)
	}
}

// Handle returns the handle of a submitted task.
func (r *TaskRunner) Handle(id string) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[id]
	return h, ok
}

// Wait blocks until the task with the given ID finishes or ctx is done.
func (r *TaskRunner) Wait(ctx context.Context, id string) error {
	h, ok := r.Handle(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return h.Wait(ctx)
}

// Forget drops the handles for ids. Tasks still running are unaffected.
func (r *TaskRunner) Forget(ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		delete(r.handles, id)
	}
}

// QueueLen reports the number of tasks waiting for a worker.
func (r *TaskRunner) QueueLen() int {
	return r.queue.Len()
}

func (r *TaskRunner) taskDone(task Task, err error) {
	r.resolve(task.ID(), err)
}

func (r *TaskRunner) resolve(id string, err error) {
	r.mu.Lock()
	h, ok := r.handles[id]
	r.mu.Unlock()
	if ok {
		h.resolve(err)
	}
}
