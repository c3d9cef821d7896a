package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/einstein4784/combined2026-sub002/internal/audit"
	"github.com/einstein4784/combined2026-sub002/internal/auth"
	"github.com/einstein4784/combined2026-sub002/internal/deletion"
	"github.com/einstein4784/combined2026-sub002/internal/observability"
	"github.com/einstein4784/combined2026-sub002/internal/rbac"
	"github.com/einstein4784/combined2026-sub002/internal/shared"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	SessionManager     *shared.SessionManager
	CSRFManager        *shared.CSRFManager
	AuthHandler        *auth.Handler
	DeletionHandler    *deletion.Handler
	AuditHandler       *audit.Handler
	PermissionsHandler *rbac.PermissionsHandler
	RBAC               rbac.Middleware
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
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

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	params.AuthHandler.MountRoutes(r)
	params.DeletionHandler.MountRoutes(r)

	// Coarse gate for the permission admin surface; the handler checks the
	// finer manage capability on writes.
	r.Group(func(r chi.Router) {
		r.Use(params.RBAC.RequireCapability(rbac.CapPermissionsView))
		params.PermissionsHandler.MountRoutes(r)
	})

	// Audit review is a reporting-style read gated on coarse role
	// membership; the handler still checks the capability itself.
	r.Group(func(r chi.Router) {
		r.Use(params.RBAC.RequireAnyRole(rbac.RoleAdmin, rbac.RoleSupervisor))
		params.AuditHandler.MountRoutes(r)
	})

	return r
}
