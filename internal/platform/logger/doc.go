// Package logger provides structured logging for the application on top of
// log/slog.
//
// Setup builds the process-wide JSON logger. Request-scoped loggers travel in
// a context.Context via WithLogger and are retrieved with FromContext, which
// falls back to slog.Default when none is attached.
package logger
