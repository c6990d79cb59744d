package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/carousel-studio/internal/config"
)

// loadAppConfig loads configuration from an optional file and CAROUSEL_*
// environment variables.
func loadAppConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"job_store", cfg.Job.Store)

	if cfg.Job.RedisAddr != "" {
		slog.Debug("Redis configuration", "addr_present", true, "password_present", cfg.Job.RedisPassword != "")
	}

	return cfg, nil
}
