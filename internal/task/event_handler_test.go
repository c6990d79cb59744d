package task

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/carousel-studio/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockTaskFactory struct {
	createFn  func(jobID string) (Task, error)
	lastJobID string
}

func (m *mockTaskFactory) CreateTask(jobID string) (Task, error) {
	m.lastJobID = jobID
	return m.createFn(jobID)
}

type mockSubmitter struct {
	submitFn func(ctx context.Context, task Task) error
	last     Task
}

func (m *mockSubmitter) Submit(ctx context.Context, task Task) error {
	m.last = task
	return m.submitFn(ctx, task)
}

func TestTaskFactoryEventHandler_HandleEvent(t *testing.T) {
	logger := setupTestLogger()

	newFactory := func() *mockTaskFactory {
		return &mockTaskFactory{createFn: func(jobID string) (Task, error) {
			return NewMockTask(jobID, TaskTypeSlideGeneration), nil
		}}
	}
	okSubmitter := func() *mockSubmitter {
		return &mockSubmitter{submitFn: func(ctx context.Context, task Task) error { return nil }}
	}

	t.Run("creates and submits task", func(t *testing.T) {
		factory, submitter := newFactory(), okSubmitter()
		handler := NewTaskFactoryEventHandler(factory, submitter, logger)

		event, err := events.NewSlideGenerationEvent("job-1-abcdefg")
		require.NoError(t, err)

		require.NoError(t, handler.HandleEvent(context.Background(), event))
		assert.Equal(t, "job-1-abcdefg", factory.lastJobID)
		require.NotNil(t, submitter.last)
		assert.Equal(t, "job-1-abcdefg", submitter.last.ID())
	})

	t.Run("ignores other event types", func(t *testing.T) {
		factory, submitter := newFactory(), okSubmitter()
		handler := NewTaskFactoryEventHandler(factory, submitter, logger)

		event, err := events.NewTaskRequestEvent("something_else", map[string]string{})
		require.NoError(t, err)

		require.NoError(t, handler.HandleEvent(context.Background(), event))
		assert.Empty(t, factory.lastJobID)
		assert.Nil(t, submitter.last)
	})

	t.Run("invalid payload", func(t *testing.T) {
		handler := NewTaskFactoryEventHandler(newFactory(), okSubmitter(), logger)
		event := &events.TaskRequestEvent{Type: events.TypeSlideGeneration, Payload: []byte(`{"job_id":""}`)}
		assert.ErrorIs(t, handler.HandleEvent(context.Background(), event), events.ErrEmptyJobID)
	})

	t.Run("factory error", func(t *testing.T) {
		factory := &mockTaskFactory{createFn: func(string) (Task, error) { return nil, ErrNilGenerator }}
		handler := NewTaskFactoryEventHandler(factory, okSubmitter(), logger)

		event, err := events.NewSlideGenerationEvent("job-2")
		require.NoError(t, err)
		assert.ErrorIs(t, handler.HandleEvent(context.Background(), event), ErrNilGenerator)
	})

	t.Run("queue full propagates", func(t *testing.T) {
		submitter := &mockSubmitter{submitFn: func(ctx context.Context, task Task) error {
			return errors.Join(ErrQueueFull)
		}}
		handler := NewTaskFactoryEventHandler(newFactory(), submitter, logger)

		event, err := events.NewSlideGenerationEvent("job-3")
		require.NoError(t, err)
		assert.ErrorIs(t, handler.HandleEvent(context.Background(), event), ErrQueueFull)
	})
}
