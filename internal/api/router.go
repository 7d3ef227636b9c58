package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestID)
	r.Use(s.requestLogging)
	r.Use(s.recovery)
	r.Use(s.cors)
	r.Use(s.limitBodySize)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/presets", func(r chi.Router) {
			r.Get("/", s.handleListPresets)

			r.Route("/{slug}", func(r chi.Router) {
				r.Get("/", s.handleGetPreset)
				r.Post("/apply", s.handleApply)
				r.Get("/values", s.handleListValues)

				r.Route("/slots/{label}", func(r chi.Router) {
					r.Get("/", s.handleResolveSlot)
					r.Put("/", s.handleSetSlot)
					r.Post("/randomize", s.handleRandomizeSlot)
				})
			})
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"presets": s.store.Len(),
	})
}
