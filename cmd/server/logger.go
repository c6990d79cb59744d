package main

import (
	"log/slog"

	"github.com/phrazzld/carousel-studio/internal/config"
	"github.com/phrazzld/carousel-studio/internal/platform/logger"
)

// setupAppLogger installs the process-wide JSON logger at the configured level.
func setupAppLogger(cfg *config.Config) *slog.Logger {
	return logger.Setup(logger.Config{Level: cfg.Server.LogLevel})
}
