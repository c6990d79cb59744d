package task

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/carousel-studio/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func newMockTask() *MockTask {
	return NewMockTask("", "mock")
}

func TestNewTaskQueue(t *testing.T) {
	queue := NewTaskQueue(10, setupTestLogger())

	assert.NotNil(t, queue)
	assert.Equal(t, 10, cap(queue.tasks))
	assert.False(t, queue.closed)
	assert.Equal(t, 0, queue.Len())
}

func TestEnqueue(t *testing.T) {
	queue := NewTaskQueue(2, setupTestLogger())

	require.NoError(t, queue.Enqueue(newMockTask()))
	require.NoError(t, queue.Enqueue(newMockTask()))
	assert.Equal(t, 2, queue.Len())

	task3 := newMockTask()
	err := queue.Enqueue(task3)
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.ErrorIs(t, err, events.ErrHandlerBusy)

	<-queue.tasks

	assert.NoError(t, queue.Enqueue(task3))
}

func TestClose(t *testing.T) {
	queue := NewTaskQueue(10, setupTestLogger())

	task := newMockTask()
	require.NoError(t, queue.Enqueue(task))

	queue.Close()
	queue.Close()
	assert.True(t, queue.closed)

	assert.ErrorIs(t, queue.Enqueue(newMockTask()), ErrQueueClosed)

	received := <-queue.GetChannel()
	assert.Equal(t, task.ID(), received.ID())

	select {
	case _, ok := <-queue.GetChannel():
		assert.False(t, ok, "Channel should be closed")
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timed out waiting for closed channel read")
	}
}

func TestConcurrentEnqueueAndClose(t *testing.T) {
	queue := NewTaskQueue(100, setupTestLogger())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				err := queue.Enqueue(newMockTask())
				if err != nil {
					assert.ErrorIs(t, err, ErrQueueClosed)
				}
			}
		}()
	}
	queue.Close()
	wg.Wait()

	count := 0
	for range queue.GetChannel() {
		count++
	}
	assert.LessOrEqual(t, count, 50)
}
