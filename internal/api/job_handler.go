package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/carousel-studio/internal/api/shared"
	"github.com/phrazzld/carousel-studio/internal/service"
)

// JobHandler serves job status to polling clients.
type JobHandler struct {
	jobs   service.JobService
	logger *slog.Logger
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(jobs service.JobService, logger *slog.Logger) *JobHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobHandler{
		jobs:   jobs,
		logger: logger.With("component", "job_handler"),
	}
}

type jobPath struct {
	ID string `validate:"required,max=128,printascii"`
}

// GetJob handles GET /api/jobs/{id}.
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	path := jobPath{ID: chi.URLParam(r, "id")}
	if err := shared.ValidateRequest(&path); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusNotFound, MsgJobNotFound, err)
		return
	}

	job, err := h.jobs.GetJob(r.Context(), path.ID)
	if err != nil {
		respondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newJobStatusResponse(job))
}
