package shared

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is the type of values this package stores in a request context.
type ContextKey string

const (
	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the length of a generated trace ID in hex characters.
	TraceIDLength = 32

	// maxInboundTraceID bounds trace IDs accepted from upstream proxies.
	maxInboundTraceID = 64
)

// SetTraceID adds a freshly generated trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// WithTraceID stores id as the trace ID, generating one when id is blank or
// not a plain token.
func WithTraceID(ctx context.Context, id string) context.Context {
	id = strings.TrimSpace(id)
	if !validTraceID(id) {
		return SetTraceID(ctx)
	}
	return context.WithValue(ctx, TraceIDKey, id)
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

func generateTraceID() string {
	u := uuid.New()
	return strings.ReplaceAll(u.String(), "-", "")
}

func validTraceID(id string) bool {
	if id == "" || len(id) > maxInboundTraceID {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.', r == '/':
		default:
			return false
		}
	}
	return true
}
