package router

import (
	"github.com/Abdurahmanit/wanderlust/internal/handler"
	"github.com/Abdurahmanit/wanderlust/internal/middleware"
	"github.com/Abdurahmanit/wanderlust/internal/platform/logger"
	"github.com/Abdurahmanit/wanderlust/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Listings  *handler.ListingHandler
	Health    *handler.HealthHandler
	Responder *handler.Responder
	Owners    middleware.OwnerLookup
	Metrics   *metrics.MetricsManager
	JWTSecret string
	Logger    *logger.Logger
}

// New assembles the router with the shared middleware stack.
func New(d Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(d.Logger))
	r.Use(chimw.Recoverer)
	if d.Metrics != nil {
		r.Use(middleware.Metrics(d.Metrics))
	}
	r.Use(middleware.MethodOverride)
	r.Use(middleware.Session)
	r.Use(middleware.JWTAuth(d.JWTSecret, d.Logger))

	SetupHealthRoutes(r, d.Health)
	SetupListingRoutes(r, d.Listings, d.Responder, d.Owners, d.Logger)
	return r
}
