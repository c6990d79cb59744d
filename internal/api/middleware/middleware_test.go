package middleware

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/carousel-studio/internal/api/shared"
	"github.com/phrazzld/carousel-studio/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var seen string
	h := chimiddleware.RequestID(NewTraceMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/x", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "edge-req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "edge-req-42", seen)
	assert.Equal(t, "edge-req-42", rec.Header().Get(TraceIDHeader))
	assert.Contains(t, buf.String(), `"trace_id":"edge-req-42"`)
	assert.Contains(t, buf.String(), "inside handler")
}

func TestTraceMiddleware_GeneratesID(t *testing.T) {
	var seen string
	h := NewTraceMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = shared.GetTraceID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, shared.TraceIDLength)
	assert.Equal(t, seen, rec.Header().Get(TraceIDHeader))
}

func TestRequestLogger(t *testing.T) {
	base, logs := logger.GetTestLogger(t)

	h := NewTraceMiddleware(base)(RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/generate", nil))

	entries, err := logs.GetLogEntries()
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	last := entries[len(entries)-1]
	assert.Equal(t, "request completed", last["msg"])
	assert.Equal(t, "/api/generate", last["path"])
	assert.Equal(t, float64(http.StatusTeapot), last["status"])
	assert.Equal(t, float64(len("short and stout")), last["bytes"])
	assert.NotEmpty(t, last["trace_id"])
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
	assert.Equal(t, ContentSecurityPolicy, rec.Header().Get("Content-Security-Policy"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tls.ConnectionState{}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	calls := 0
	h := rateLimit(l, l.now)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusAccepted)
	}))

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/generate", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusAccepted, send("10.0.0.1:5000").Code)
	assert.Equal(t, http.StatusAccepted, send("10.0.0.1:5001").Code)

	limited := send("10.0.0.1:5002")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "60", limited.Header().Get("Retry-After"))
	var body shared.ErrorResponse
	require.NoError(t, json.Unmarshal(limited.Body.Bytes(), &body))
	assert.Equal(t, MsgTooManyRequests, body.Error)

	assert.Equal(t, http.StatusAccepted, send("10.0.0.2:5000").Code, "other clients are unaffected")

	now = now.Add(time.Minute)
	assert.Equal(t, http.StatusAccepted, send("10.0.0.1:5003").Code, "window resets")
	assert.Equal(t, 4, calls)
}

func TestRateLimiter_PrunesExpiredWindows(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(1, time.Second)
	l.now = func() time.Time { return now }

	ctx := context.Background()
	l.Allow(ctx, "a")
	l.Allow(ctx, "b")
	now = now.Add(2 * time.Second)
	l.Allow(ctx, "c")

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Len(t, l.buckets, 1)
}

type stubLimiter struct {
	allow bool
	reset time.Time
	keys  []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, time.Time) {
	s.keys = append(s.keys, key)
	return s.allow, s.reset
}

func TestRateLimit_CustomLimiter(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusAccepted) })
	limiter := &stubLimiter{allow: true, reset: time.Now().Add(30 * time.Second)}
	h := RateLimit(limiter)(next)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", nil)
	req.RemoteAddr = "10.0.0.9:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	limiter.allow = false
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.InDelta(t, 30, retry, 1)
	assert.Equal(t, []string{"10.0.0.9", "10.0.0.9"}, limiter.keys)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:4431"
	assert.Equal(t, "192.0.2.7", clientIP(req))

	req.RemoteAddr = "203.0.113.9"
	assert.Equal(t, "203.0.113.9", clientIP(req))
}
