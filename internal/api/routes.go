package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures the router with middleware and all panel
// endpoints.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)
	r.Get("/download/modelo", h.DownloadTemplate)

	r.Route("/api", func(r chi.Router) {
		r.Get("/leads", h.GetLeads)
		r.Get("/leads/count", h.GetLeadsCount)
		r.Get("/kpis", h.GetKPIs)
		r.Get("/options", h.GetOptions)
		r.Post("/upload", h.Upload)
		r.Get("/export", h.Export)

		r.Route("/debug", func(r chi.Router) {
			r.Get("/source", h.DebugSource)
			r.Get("/count", h.DebugCount)
			r.Get("/sample", h.DebugSample)
		})
	})

	return r
}
