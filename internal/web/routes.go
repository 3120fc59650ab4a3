package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/clinic-admin/internal/web/handlers"
	"github.com/kozaktomas/clinic-admin/internal/web/middleware"
)

func (s *Server) setupRoutes() {
	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireToken(s.config.Web.APIToken))

		r.Post("/descriptor", s.faces.Descriptor)
		r.Post("/match", s.faces.Match)
		r.Get("/labels", s.faces.Labels)
	})
}
