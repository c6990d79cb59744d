package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config controls the process-wide logger.
type Config struct {
	// Level is one of debug, info, warn or error. Unknown values fall back to info.
	Level string
	// Output defaults to os.Stdout.
	Output io.Writer
	// AddSource includes file:line in every record.
	AddSource bool
}

// ParseLevel converts a case-insensitive level name to a slog.Level.
// The second return value is false when name is not recognized.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Setup creates a JSON logger for cfg and installs it as the slog default.
// An unknown level falls back to info and is reported through the new logger.
func Setup(cfg Config) *slog.Logger {
	level, ok := ParseLevel(cfg.Level)

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	if !ok {
		logger.Warn("invalid log level configured, using default level",
			"configured_level", cfg.Level,
			"default_level", "info")
	}

	return logger
}
