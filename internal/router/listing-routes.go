package router

import (
	"github.com/Abdurahmanit/wanderlust/internal/handler"
	"github.com/Abdurahmanit/wanderlust/internal/middleware"
	"github.com/Abdurahmanit/wanderlust/internal/platform/logger"
	"github.com/go-chi/chi/v5"
)

// SetupListingRoutes mounts the listing pages. The caller must install
// middleware.JWTAuth and middleware.Session on mux beforehand.
func SetupListingRoutes(mux *chi.Mux, h *handler.ListingHandler, responder *handler.Responder, owners middleware.OwnerLookup, log *logger.Logger) {
	requireAuth := middleware.RequireAuth(responder)
	requireOwner := middleware.RequireOwner(owners, responder, log)

	mux.Route("/listings", func(r chi.Router) {
		r.Get("/", h.Index)
		r.Get("/search", h.Search)
		r.Get("/filter", h.Filter)
		r.Get("/filter/", h.Filter)
		r.Get("/filter/{category}", h.Filter)
		r.Get("/{id}", h.Show)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/new", h.New)
			r.Post("/", h.Create)

			r.With(requireOwner).Get("/{id}/edit", h.Edit)
			r.With(requireOwner).Put("/{id}", h.Update)
			r.With(requireOwner).Delete("/{id}", h.Delete)
		})
	})
}

// SetupHealthRoutes mounts the liveness and readiness probes.
func SetupHealthRoutes(mux *chi.Mux, h *handler.HealthHandler) {
	mux.Get("/healthz", h.Liveness)
	mux.Get("/readyz", h.Readiness)
}
