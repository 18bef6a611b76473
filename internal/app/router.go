package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/societyhub/societyhub/internal/auth"
	"github.com/societyhub/societyhub/internal/authz"
	"github.com/societyhub/societyhub/internal/billing"
	"github.com/societyhub/societyhub/internal/dashboard"
	"github.com/societyhub/societyhub/internal/helpdesk"
	"github.com/societyhub/societyhub/internal/observability"
	"github.com/societyhub/societyhub/internal/orgs"
	"github.com/societyhub/societyhub/internal/platform/httpx"
	"github.com/societyhub/societyhub/internal/shared"
	"github.com/societyhub/societyhub/internal/users"
	"github.com/societyhub/societyhub/internal/vehicles"
	"github.com/societyhub/societyhub/internal/visitors"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthHandler      *auth.Handler
	UsersHandler     *users.Handler
	OrgsHandler      *orgs.Handler
	VehiclesHandler  *vehicles.Handler
	BillingHandler   *billing.Handler
	VisitorsHandler  *visitors.Handler
	HelpdeskHandler  *helpdesk.Handler
	DashboardHandler *dashboard.Handler

	Authz   authz.Middleware
	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with SocietyHub defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.OrgsHandler != nil {
			r.Route("/organizations", params.OrgsHandler.MountRoutes)
		}
		if params.VehiclesHandler != nil {
			r.Route("/vehicles", params.VehiclesHandler.MountRoutes)
			r.Route("/gate", params.VehiclesHandler.MountGateRoutes)
		}
		if params.BillingHandler != nil {
			r.Route("/billing", params.BillingHandler.MountRoutes)
		}
		if params.VisitorsHandler != nil {
			r.Route("/visitors", params.VisitorsHandler.MountRoutes)
		}
		if params.HelpdeskHandler != nil {
			r.Route("/helpdesk", params.HelpdeskHandler.MountRoutes)
		}
		if params.DashboardHandler != nil {
			r.Route("/dashboard", params.DashboardHandler.MountRoutes)
		}

		// The navigation the current user is allowed to see, so the
		// frontend renders only reachable sections.
		r.Group(func(r chi.Router) {
			r.Use(params.Authz.RequireAuthenticated())
			r.Get("/navigation", func(w http.ResponseWriter, r *http.Request) {
				caps := authz.CapabilitiesFromContext(r.Context())
				httpx.JSON(w, http.StatusOK, map[string]any{
					"entries": authz.FilterNav(caps, authz.DefaultNavigation()),
				})
			})
		})
	})

	return r
}
