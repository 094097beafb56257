package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler builds the chi mux with all routes wired.
func (g *Gateway) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Public, no auth required.
	r.Get("/health", g.handleHealth())
	if g.deps.Metrics != nil {
		r.Handle("/metrics", g.deps.Metrics.Handler())
	}

	// Control endpoints. Without auth, Validate has already restricted the
	// bind address to loopback.
	r.Group(func(r chi.Router) {
		if g.config.Auth.IsConfigured() {
			r.Use(authMiddleware(g.config.Auth, g.logger))
		}
		r.Get("/status", g.handleStatus())
		r.Get("/ws/activity", g.handleActivityStream())
		r.Route("/api", func(r chi.Router) {
			r.Post("/agent/start", g.handleStart())
			r.Post("/agent/stop", g.handleStop())
			r.Post("/agent/run", g.handleRun())
			r.Get("/activity", g.handleActivity())
			r.Get("/settings", g.handleSettings())
		})
	})

	return r
}
