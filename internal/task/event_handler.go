package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/carousel-studio/internal/events"
)

// TaskCreator builds a task for a job.
type TaskCreator interface {
	CreateTask(jobID string) (Task, error)
}

// TaskSubmitter accepts tasks for background execution.
type TaskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskFactoryEventHandler implements the events.EventHandler interface
// to handle task creation events and delegate them to the appropriate task factory.
type TaskFactoryEventHandler struct {
	taskFactory TaskCreator
	taskRunner  TaskSubmitter
	logger      *slog.Logger
}

// NewTaskFactoryEventHandler creates a new event handler that uses the given task factory
// to create tasks, and submits them to the provided task runner.
func NewTaskFactoryEventHandler(
	taskFactory TaskCreator,
	taskRunner TaskSubmitter,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		taskFactory: taskFactory,
		taskRunner:  taskRunner,
		logger:      logger.With("component", "task_factory_event_handler"),
	}
}

// HandleEvent creates a slide generation task for the job named in the
// event and submits it to the runner. Other event types are ignored.
func (h *TaskFactoryEventHandler) HandleEvent(
	ctx context.Context,
	event *events.TaskRequestEvent,
) error {
	if event.Type != events.TypeSlideGeneration {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	jobID, err := events.SlideGenerationJobID(event)
	if err != nil {
		h.logger.Error("invalid slide generation event", "error", err, "event_id", event.ID)
		return err
	}

	task, err := h.taskFactory.CreateTask(jobID)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"job_id", jobID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.taskRunner.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"job_id", jobID,
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task created and submitted successfully",
		"job_id", jobID,
		"event_id", event.ID)
	return nil
}

// Ensure TaskFactoryEventHandler implements events.EventHandler
var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)
