package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	apiMiddleware "github.com/phrazzld/carousel-studio/internal/api/middleware"
	"github.com/phrazzld/carousel-studio/internal/config"
	"github.com/phrazzld/carousel-studio/internal/events"
	"github.com/phrazzld/carousel-studio/internal/export"
	"github.com/phrazzld/carousel-studio/internal/generation"
	"github.com/phrazzld/carousel-studio/internal/platform/memory"
	"github.com/phrazzld/carousel-studio/internal/platform/redisstore"
	"github.com/phrazzld/carousel-studio/internal/service"
	"github.com/phrazzld/carousel-studio/internal/store"
	"github.com/phrazzld/carousel-studio/internal/task"
	"github.com/phrazzld/carousel-studio/web"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	jobStore  store.JobStore
	storeConn io.Closer
	limiter   apiMiddleware.Limiter

	generator  generation.Generator
	jobService service.JobService
	renderer   *export.Renderer
	static     fs.FS

	eventEmitter *events.InMemoryEventEmitter
	taskRunner   *task.TaskRunner
	sweeper      *task.Sweeper
}

// newApplication creates a new application instance with all dependencies initialized
// and its background workers started.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	app.jobStore, app.storeConn, err = newJobStore(ctx, cfg.Job)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize job store: %w", err)
	}
	logger.Info("Job store initialized", "store", cfg.Job.Store, "retention", cfg.Job.Retention)

	app.limiter = newRateLimiter(cfg.Server.RateLimitPerMinute, app.jobStore)

	app.generator, err = generation.NewTemplateGenerator(generation.TemplateConfig{
		ImageBaseURL: cfg.Generation.ImageBaseURL,
		TextDelay:    generation.DelayRange{Min: cfg.Generation.TextDelayMin, Max: cfg.Generation.TextDelayMax},
		ImageDelay:   generation.DelayRange{Min: cfg.Generation.ImageDelayMin, Max: cfg.Generation.ImageDelayMax},
	}, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to initialize generator: %w", err)
	}

	app.taskRunner = task.NewTaskRunner(task.TaskRunnerConfig{
		WorkerCount: cfg.Task.WorkerCount,
		QueueSize:   cfg.Task.QueueSize,
	}, logger)
	if err := app.taskRunner.Start(); err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	// Wire job creation to background generation through the event emitter
	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	factory := task.NewSlideGenerationTaskFactory(app.jobStore, app.generator, logger)
	app.eventEmitter.RegisterHandler(task.NewTaskFactoryEventHandler(factory, app.taskRunner, logger))

	app.jobService, err = service.NewJobService(app.jobStore, app.eventEmitter, service.JobServiceConfig{
		Retention: cfg.Job.Retention,
		Handles:   app.taskRunner,
	}, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create job service: %w", err)
	}

	app.sweeper = task.NewSweeper(app.jobService.Sweep, cfg.Job.SweepInterval, logger)
	app.sweeper.Start()

	fetcher := export.NewHTTPImageFetcher()
	if host := imageHost(cfg.Generation.ImageBaseURL); host != "" {
		fetcher.AllowedHosts = []string{host}
	}
	app.renderer, err = export.NewRenderer(export.Options{Images: fetcher, Logger: logger})
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create export renderer: %w", err)
	}

	app.static = web.Public()
	if dir := strings.TrimSpace(cfg.Server.PublicDir); dir != "" {
		if _, err := os.Stat(dir); err != nil {
			app.cleanup()
			return nil, fmt.Errorf("public dir unavailable: %w", err)
		}
		app.static = os.DirFS(dir)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// newJobStore returns the configured job store and, for networked stores,
// the connection to close on shutdown.
func newJobStore(ctx context.Context, cfg config.JobConfig) (store.JobStore, io.Closer, error) {
	switch cfg.Store {
	case "redis":
		rs, err := redisstore.NewJobStore(redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			Prefix:   cfg.RedisPrefix,
			TTL:      cfg.Retention,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return rs, rs, nil
	case "memory", "":
		return memory.NewJobStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown job store %q", cfg.Store)
	}
}

// newRateLimiter returns nil when limiting is disabled. A redis job store
// also holds the counters so every instance shares one quota.
func newRateLimiter(perMinute int, jobs store.JobStore) apiMiddleware.Limiter {
	if perMinute <= 0 {
		return nil
	}
	if rs, ok := jobs.(*redisstore.JobStore); ok {
		return rs.RateLimiter(perMinute, time.Minute)
	}
	return apiMiddleware.NewRateLimiter(perMinute, time.Minute)
}

// imageHost returns the host generated image URLs point at, which bounds
// where the exporter may fetch from.
func imageHost(base string) string {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// Run serves HTTP until ctx is canceled, then shuts down.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.sweeper != nil {
		app.sweeper.Stop()
	}
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}
	if app.storeConn != nil {
		if err := app.storeConn.Close(); err != nil {
			app.logger.Error("Error closing job store connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
