package audit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/einstein4784/combined2026-sub002/internal/platform/httpx"
	"github.com/einstein4784/combined2026-sub002/internal/rbac"
)

// Handler exposes the audit timeline to authorized reviewers.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   *rbac.Guard
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, guard *rbac.Guard) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes attaches audit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/audit", h.Timeline)
}

// Timeline handles GET /audit.
func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	if _, err := h.guard.Require(r.Context(), rbac.CapAuditView); err != nil {
		httpx.RespondError(w, err)
		return
	}

	q := r.URL.Query()
	filters := TimelineFilters{
		Entity: q.Get("entity"),
		Action: q.Get("action"),
	}
	if v := q.Get("actor_id"); v != "" {
		filters.ActorID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := q.Get("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filters.From = t
		}
	}
	if v := q.Get("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filters.To = t
		}
	}
	if v := q.Get("page"); v != "" {
		filters.Page, _ = strconv.Atoi(v)
	}
	if v := q.Get("page_size"); v != "" {
		filters.PageSize, _ = strconv.Atoi(v)
	}

	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.logger.Error("audit timeline", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, result)
}
