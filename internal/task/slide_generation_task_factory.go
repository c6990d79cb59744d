package task

import (
	"log/slog"

	"github.com/phrazzld/carousel-studio/internal/generation"
	"github.com/phrazzld/carousel-studio/internal/store"
)

// SlideGenerationTaskFactory creates SlideGenerationTask instances
type SlideGenerationTaskFactory struct {
	jobs      store.JobStore
	generator generation.Generator
	logger    *slog.Logger
}

// NewSlideGenerationTaskFactory creates a new factory for SlideGenerationTasks
func NewSlideGenerationTaskFactory(
	jobs store.JobStore,
	generator generation.Generator,
	logger *slog.Logger,
) *SlideGenerationTaskFactory {
	return &SlideGenerationTaskFactory{
		jobs:      jobs,
		generator: generator,
		logger:    logger.With("component", "slide_generation_task_factory"),
	}
}

// CreateTask creates a new SlideGenerationTask for the specified job
func (f *SlideGenerationTaskFactory) CreateTask(jobID string) (Task, error) {
	task, err := NewSlideGenerationTask(jobID, f.jobs, f.generator, f.logger)
	if err != nil {
		return nil, err
	}
	return task, nil
}
