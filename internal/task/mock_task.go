package task

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MockTask is a simple implementation of the Task interface for testing
type MockTask struct {
	TaskID      string
	TaskType    string
	TaskPayload []byte
	ExecuteFn   func(ctx context.Context) error

	mu         sync.Mutex
	taskStatus TaskStatus
}

// NewMockTask creates a new MockTask with the given ID and type
func NewMockTask(id, taskType string) *MockTask {
	if id == "" {
		id = uuid.NewString()
	}
	return &MockTask{
		TaskID:     id,
		TaskType:   taskType,
		taskStatus: TaskStatusPending,
		ExecuteFn:  func(ctx context.Context) error { return nil },
	}
}

// ID returns the task's unique identifier
func (t *MockTask) ID() string {
	return t.TaskID
}

// Type returns the task type identifier
func (t *MockTask) Type() string {
	return t.TaskType
}

// Payload returns the task data as a byte slice
func (t *MockTask) Payload() []byte {
	return t.TaskPayload
}

// Status returns the current task status
func (t *MockTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.taskStatus
}

// Execute runs ExecuteFn and records the resulting status
func (t *MockTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)
	err := t.ExecuteFn(ctx)
	if err != nil {
		t.setStatus(TaskStatusFailed)
	} else {
		t.setStatus(TaskStatusCompleted)
	}
	return err
}

func (t *MockTask) setStatus(s TaskStatus) {
	t.mu.Lock()
	t.taskStatus = s
	t.mu.Unlock()
}
