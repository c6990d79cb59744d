package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/carousel-studio/internal/api/shared"
	"github.com/phrazzld/carousel-studio/internal/platform/logger"
	"github.com/phrazzld/carousel-studio/internal/service"
)

// DefaultMaxBodyBytes caps the size of a generate request body.
const DefaultMaxBodyBytes int64 = 1_000_000

// GenerationHandler accepts carousel generation requests.
type GenerationHandler struct {
	jobs         service.JobService
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewGenerationHandler creates a new GenerationHandler. A non-positive
// maxBodyBytes selects DefaultMaxBodyBytes.
func NewGenerationHandler(jobs service.JobService, maxBodyBytes int64, logger *slog.Logger) *GenerationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &GenerationHandler{
		jobs:         jobs,
		maxBodyBytes: maxBodyBytes,
		logger:       logger.With("component", "generation_handler"),
	}
}

// Generate handles POST /api/generate. It stores a queued job, schedules its
// generation and answers 202 Accepted without waiting for any slide.
func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	if r.ContentLength > h.maxBodyBytes {
		shared.RespondWithErrorAndLog(w, r, http.StatusRequestEntityTooLarge, MsgPayloadTooLarge,
			fmt.Errorf("%w: declared %d bytes", shared.ErrPayloadTooLarge, r.ContentLength),
			shared.WithElevatedLogLevel())
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var req GenerateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	input, err := req.Input()
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	job, err := h.jobs.CreateJob(r.Context(), input)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	log.Info("generation job accepted",
		"job_id", job.ID,
		"count", input.Count)

	shared.RespondWithJSON(w, r, http.StatusAccepted, GenerateResponse{
		JobID:    job.ID,
		Status:   job.Status,
		Progress: job.Progress,
	})
}
