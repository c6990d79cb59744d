package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/carousel-studio/internal/api"
	apiMiddleware "github.com/phrazzld/carousel-studio/internal/api/middleware"
	"github.com/phrazzld/carousel-studio/internal/api/shared"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(apiMiddleware.RequestLogger)
	r.Use(apiMiddleware.SecurityHeaders)

	maxBody := app.config.Server.MaxBodyBytes
	generationHandler := api.NewGenerationHandler(app.jobService, maxBody, app.logger)
	jobHandler := api.NewJobHandler(app.jobService, app.logger)
	exportHandler := api.NewExportHandler(app.renderer, maxBody, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/jobs/{id}", jobHandler.GetJob)
		r.Get("/jobs/*", jobHandler.GetJob)

		r.Group(func(r chi.Router) {
			if app.limiter != nil {
				r.Use(apiMiddleware.RateLimit(app.limiter))
			}
			r.Post("/generate", generationHandler.Generate)
			r.Post("/export/png", exportHandler.ExportPNG)
			r.Post("/export/pdf", exportHandler.ExportPDF)
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Not found")
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			shared.RespondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", shared.CacheNoStore)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})
	r.Get("/asset-manifest.json", api.AssetManifestHandler(api.DefaultAssetManifest()))

	static := api.NewStaticHandler(app.static, app.logger)
	r.Handle("/*", static)
	r.Handle("/", static)

	return r
}
