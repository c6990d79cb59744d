package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/carousel-studio/internal/client"
	"github.com/phrazzld/carousel-studio/internal/domain"
	"github.com/phrazzld/carousel-studio/internal/export"
	"github.com/phrazzld/carousel-studio/internal/preferences"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeServer answers the two job endpoints. The job completes on the
// second poll unless failWith is set.
type fakeServer struct {
	failWith string
	polls    atomic.Int32
}

func (f *fakeServer) result() *domain.GenerationResult {
	slides := make([]domain.Slide, 3)
	for i := range slides {
		n := string(rune('1' + i))
		slides[i] = domain.Slide{
			ID:       "job-1-abcdefg-slide-" + n,
			Headline: "Coffee: headline " + n,
			Body:     "Body " + n,
			CTA:      "CTA " + n,
			ImageURL: "https://picsum.photos/seed/" + n + "/1024/1024",
		}
	}
	return &domain.GenerationResult{
		Meta: domain.GenerationMeta{
			Topic:      "Coffee",
			Tone:       domain.Tone("bold"),
			ImageStyle: domain.ImageStyle("photo"),
			Author:     domain.ResultAuthor,
		},
		Slides: slides,
	}
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/generate":
		var req client.GenerateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(strings.TrimSpace(req.Topic)) < 3 {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Topic must be at least 3 characters."}`))
			return
		}
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"jobId":"job-1-abcdefg","status":"queued","progress":0}`))
	case r.Method == http.MethodGet && r.URL.Path == "/api/jobs/job-1-abcdefg":
		status := client.JobStatus{JobID: "job-1-abcdefg", Status: domain.JobStatusRunning, Progress: 50}
		if f.polls.Add(1) >= 2 {
			if f.failWith != "" {
				msg := f.failWith
				status.Status, status.Progress, status.Error = domain.JobStatusFailed, 100, &msg
			} else {
				status.Status, status.Progress, status.Result = domain.JobStatusCompleted, 100, f.result()
			}
		}
		_ = json.NewEncoder(w).Encode(status)
	default:
		http.NotFound(w, r)
	}
}

func noImages() export.ImageFetcher {
	return export.ImageFetcherFunc(func(ctx context.Context, url string) (image.Image, error) {
		img := image.NewRGBA(image.Rect(0, 0, 4, 4))
		img.Set(0, 0, color.White)
		return img, nil
	})
}

func baseOptions(serverURL string, t *testing.T) options {
	return options{
		Server:       serverURL,
		Topic:        "Coffee",
		Count:        3,
		Select:       1,
		PrefsPath:    filepath.Join(t.TempDir(), "prefs.yaml"),
		PollInterval: 5 * time.Millisecond,
		PollTimeout:  2 * time.Second,
		Images:       noImages(),
		Now:          func() time.Time { return time.UnixMilli(1700000000000) },
	}
}

func TestRun_MoveEditAndExportPDF(t *testing.T) {
	srv := httptest.NewServer(&fakeServer{})
	defer srv.Close()

	opts := baseOptions(srv.URL, t)
	opts.Move = "3:1"
	opts.Edit.Headline = "Edited headline"
	opts.Format = FormatPDF
	opts.Out = filepath.Join(t.TempDir(), "deck.pdf")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &out, testLogger()))

	text := out.String()
	assert.Contains(t, text, "Queued job-1-abcdefg")
	assert.Contains(t, text, "100%")
	assert.Contains(t, text, ">  1. Edited headline")
	assert.Contains(t, text, "   2. Coffee: headline 1")
	assert.Contains(t, text, "   3. Coffee: headline 2")
	assert.Contains(t, text, "Status: Slide saved.")
	assert.Contains(t, text, "Exported "+opts.Out)

	data, err := os.ReadFile(opts.Out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestRun_ExportPNGDefaultName(t *testing.T) {
	srv := httptest.NewServer(&fakeServer{})
	defer srv.Close()

	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	opts := baseOptions(srv.URL, t)
	opts.Select = 2
	opts.Format = FormatPNG

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &out, testLogger()))

	data, err := os.ReadFile(filepath.Join(dir, "job-1-abcdefg-slide-2.png"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
	assert.Contains(t, out.String(), ">  2. Coffee: headline 2")
}

func TestRun_JobFailed(t *testing.T) {
	srv := httptest.NewServer(&fakeServer{failWith: "Generation failed"})
	defer srv.Close()

	err := run(context.Background(), baseOptions(srv.URL, t), io.Discard, testLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrJobFailed)
	assert.Equal(t, "Generation failed", errorMessage(err))
}

func TestRun_RejectedTopic(t *testing.T) {
	srv := httptest.NewServer(&fakeServer{})
	defer srv.Close()

	opts := baseOptions(srv.URL, t)
	opts.Topic = "ab"
	err := run(context.Background(), opts, io.Discard, testLogger())
	require.Error(t, err)
	assert.Equal(t, "Topic must be at least 3 characters.", errorMessage(err))
}

func TestRun_InvalidOptions(t *testing.T) {
	srv := httptest.NewServer(&fakeServer{})
	defer srv.Close()

	tests := []struct {
		name   string
		modify func(*options)
		want   error
	}{
		{"bad format", func(o *options) { o.Format = "gif" }, errInvalidFormat},
		{"bad mode", func(o *options) { o.Mode = "sepia" }, errInvalidMode},
		{"bad move", func(o *options) { o.Move = "1-2" }, errInvalidMove},
		{"move out of range", func(o *options) { o.Move = "1:9" }, errInvalidMove},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := baseOptions(srv.URL, t)
			tc.modify(&opts)
			err := run(context.Background(), opts, io.Discard, testLogger())
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, err.Error(), errorMessage(err))
		})
	}
}

func TestRun_RemembersMode(t *testing.T) {
	srv := httptest.NewServer(&fakeServer{})
	defer srv.Close()

	opts := baseOptions(srv.URL, t)
	opts.Mode = "light"
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &out, testLogger()))
	assert.Contains(t, out.String(), "Mode: light")

	prefs, err := preferences.Open(opts.PrefsPath)
	require.NoError(t, err)
	mode, ok := prefs.Get(preferences.KeyMode)
	require.True(t, ok)
	assert.Equal(t, "light", mode)

	opts.Mode = ""
	out.Reset()
	require.NoError(t, run(context.Background(), opts, &out, testLogger()))
	assert.Contains(t, out.String(), "Mode: light")
}

func TestParseMove(t *testing.T) {
	src, dst, err := parseMove("3:1")
	require.NoError(t, err)
	assert.Equal(t, 3, src)
	assert.Equal(t, 1, dst)

	src, dst, err = parseMove(" 2 : 4 ")
	require.NoError(t, err)
	assert.Equal(t, 2, src)
	assert.Equal(t, 4, dst)

	for _, bad := range []string{"", "3", "a:1", "1:b"} {
		_, _, err := parseMove(bad)
		assert.ErrorIs(t, err, errInvalidMove, bad)
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, client.MsgPollTimeout, errorMessage(client.ErrPollTimeout))
	assert.Equal(t, "boom", errorMessage(errors.New("boom")))
}
