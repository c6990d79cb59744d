// Package main implements the entry point for the carousel studio server,
// which queues slide generation jobs, serves their progress and renders
// finished decks to PNG and PDF.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default: ./config.yaml if present)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server exited with error", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run loads configuration, builds the application and serves until SIGINT
// or SIGTERM.
func run(configPath string) error {
	cfg, err := loadAppConfig(configPath)
	if err != nil {
		return err
	}

	logger := setupAppLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
