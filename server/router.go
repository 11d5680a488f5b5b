package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/teilomillet/ollamanode/config"
	"github.com/teilomillet/ollamanode/errors"
	"github.com/teilomillet/ollamanode/server/handlers"
	"github.com/teilomillet/ollamanode/server/metrics"
	"github.com/teilomillet/ollamanode/server/middleware"
)

// NewRouter builds the HTTP routes. The rate limit and generation queue
// from cfg only guard /v1/generate.
func NewRouter(h *handlers.NodeHandler, m *metrics.Metrics, cfg *config.Config, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTimer)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS)
	r.Use(middleware.PrometheusMetrics(m))
	r.Use(chimw.CleanPath)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errors.WriteError(w, errors.NewNotFoundError(middleware.GetRequestID(r.Context()), "route", r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		errors.WriteError(w, errors.NewError(
			errors.ValidationError,
			"Method not allowed",
			http.StatusMethodNotAllowed,
			middleware.GetRequestID(r.Context()),
			map[string]interface{}{"method": r.Method},
			nil,
		))
	})

	var guards []func(http.Handler) http.Handler
	if cfg.RateLimit.Enabled {
		guards = append(guards, middleware.RateLimit(cfg.RateLimit, m))
	}
	if cfg.Queue.Enabled {
		guards = append(guards, middleware.NewGenerationQueue(cfg.Queue, m).Handler)
	}

	r.Route("/v1", func(r chi.Router) {
		r.With(guards...).Post("/generate", h.Generate)
		r.Get("/models", h.Models)
		r.Get("/presets", h.Presets)
		r.Get("/schema", h.Schema)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status": "ok",
		})
	})
	r.Handle("/metrics", m.Handler())

	return r
}
