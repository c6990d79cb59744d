package testutils

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/phrazzld/carousel-studio/internal/domain"
	"github.com/phrazzld/carousel-studio/internal/events"
	"github.com/phrazzld/carousel-studio/internal/generation"
	"github.com/phrazzld/carousel-studio/internal/platform/memory"
	"github.com/phrazzld/carousel-studio/internal/service"
	"github.com/phrazzld/carousel-studio/internal/task"
	"github.com/stretchr/testify/require"
)

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// PipelineConfig configures NewPipeline. Zero values give the default runner
// and a template generator without simulated latency.
type PipelineConfig struct {
	Runner    task.TaskRunnerConfig
	Generator generation.Generator
	Logger    *slog.Logger
}

// Pipeline is the job service wired to a memory store and a task runner
// the same way cmd/server wires them.
type Pipeline struct {
	Service service.JobService
	Runner  *task.TaskRunner
	Jobs    *memory.JobStore
}

// NewPipeline builds a pipeline. The runner is not started so tests can
// observe queued jobs; call Start to process them.
func NewPipeline(t *testing.T, cfg PipelineConfig) *Pipeline {
	t.Helper()

	logger := cfg.Logger
	if logger == nil {
		logger = DiscardLogger()
	}
	if cfg.Runner == (task.TaskRunnerConfig{}) {
		cfg.Runner = task.DefaultTaskRunnerConfig()
	}
	gen := cfg.Generator
	if gen == nil {
		tg, err := generation.NewTemplateGenerator(generation.TemplateConfig{}, logger)
		require.NoError(t, err)
		gen = tg
	}

	jobs := memory.NewJobStore()
	runner := task.NewTaskRunner(cfg.Runner, logger)
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(task.NewTaskFactoryEventHandler(
		task.NewSlideGenerationTaskFactory(jobs, gen, logger), runner, logger))

	svc, err := service.NewJobService(jobs, emitter, service.JobServiceConfig{Handles: runner}, logger)
	require.NoError(t, err)

	return &Pipeline{Service: svc, Runner: runner, Jobs: jobs}
}

// Start runs the workers until the test ends.
func (p *Pipeline) Start(t *testing.T) {
	t.Helper()
	require.NoError(t, p.Runner.Start())
	t.Cleanup(p.Runner.Stop)
}

// WaitForJob blocks until the job's task finishes and returns the stored job.
func (p *Pipeline) WaitForJob(t *testing.T, id string) *domain.Job {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, p.Runner.Wait(ctx, id))
	job, err := p.Service.GetJob(ctx, id)
	require.NoError(t, err)
	return job
}
