package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/einstein4784/combined2026-sub002/internal/platform/httpx"
	"github.com/einstein4784/combined2026-sub002/internal/shared"
)

// PermissionsHandler exposes the admin surface for role capability sets.
type PermissionsHandler struct {
	logger   *slog.Logger
	registry *Registry
	guard    *Guard
	audit    *shared.AuditLogger
}

// NewPermissionsHandler constructs the handler.
func NewPermissionsHandler(logger *slog.Logger, registry *Registry, guard *Guard, audit *shared.AuditLogger) *PermissionsHandler {
	return &PermissionsHandler{logger: logger, registry: registry, guard: guard, audit: audit}
}

type updatePermissionsRequest struct {
	Capabilities []string `json:"capabilities"`
}

type rolePermissionView struct {
	Role         string   `json:"role"`
	Capabilities []string `json:"capabilities"`
}

// MountRoutes attaches the admin permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Get("/admin/permissions", h.List)
	r.Put("/admin/permissions/{role}", h.Update)
}

// List returns the effective capability set for every role.
func (h *PermissionsHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, err := h.guard.Require(r.Context(), CapPermissionsView); err != nil {
		httpx.RespondError(w, err)
		return
	}
	views := make([]rolePermissionView, 0, len(Roles()))
	for _, role := range Roles() {
		caps, err := h.registry.CapabilitiesFor(r.Context(), role)
		if err != nil {
			h.logger.Error("list permissions", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		views = append(views, rolePermissionView{Role: string(role), Capabilities: caps})
	}
	httpx.OK(w, views)
}

// Update replaces the capability set for one role.
func (h *PermissionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := h.guard.Require(r.Context(), CapPermissionsManage)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	role := Role(chi.URLParam(r, "role"))
	var req updatePermissionsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, httpx.CodeValidation, "invalid request body")
		return
	}
	if err := h.registry.SetRoleCapabilities(r.Context(), role, req.Capabilities); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.audit.RecordOrWarn(r.Context(), shared.AuditLog{
		ActorID:  actor.UserID,
		Action:   "PERMISSIONS_UPDATE",
		Entity:   "RolePermission",
		EntityID: string(role),
		Details:  map[string]any{"capabilities": req.Capabilities},
	})
	httpx.OK(w, rolePermissionView{Role: string(role), Capabilities: req.Capabilities})
}
