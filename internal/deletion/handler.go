package deletion

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/einstein4784/combined2026-sub002/internal/platform/httpx"
	"github.com/einstein4784/combined2026-sub002/internal/rbac"
)

// AuthGuard resolves and authorizes the caller. Satisfied by rbac.Guard.
type AuthGuard interface {
	Require(ctx context.Context, capability string) (rbac.Actor, error)
}

// Notifier is told about decisions after they commit so surrounding code
// can inform the requester. Failures are the notifier's problem, never the
// request's.
type Notifier interface {
	DecisionRecorded(ctx context.Context, req DeleteRequest)
}

// Handler exposes the deletion workflow over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	guard    AuthGuard
	validate *validator.Validate
	notifier Notifier
}

// NewHandler constructs a Handler. notifier may be nil.
func NewHandler(logger *slog.Logger, service *Service, guard AuthGuard, notifier Notifier) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		guard:    guard,
		validate: validator.New(),
		notifier: notifier,
	}
}

// MountRoutes attaches the workflow routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/delete-requests", h.Create)
	r.Get("/delete-requests", h.List)
	r.Get("/delete-requests/{id}", h.Show)
	r.Post("/delete-requests/{id}/approve", h.Approve)
	r.Post("/delete-requests/{id}/deny", h.Deny)
	r.Post("/admin/delete-all-data", h.Purge)
}

// Create handles POST /delete-requests.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := h.guard.Require(r.Context(), rbac.CapDeletionRequest)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var payload createRequestPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Fail(w, http.StatusBadRequest, httpx.CodeValidation, "invalid request body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Fail(w, http.StatusBadRequest, httpx.CodeValidation, err.Error())
		return
	}
	req, err := h.service.Create(r.Context(), actor, CreateInput{
		EntityType:  payload.EntityType,
		EntityID:    payload.EntityID,
		EntityLabel: payload.EntityLabel,
		Reason:      payload.Reason,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, req)
}

// List handles GET /delete-requests.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if _, err := h.guard.Require(r.Context(), rbac.CapDeletionApprove); err != nil {
		httpx.RespondError(w, err)
		return
	}
	filters := ListFilters{
		Status:     Status(r.URL.Query().Get("status")),
		EntityType: r.URL.Query().Get("entity_type"),
	}
	requests, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list delete requests", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, requests)
}

// Show handles GET /delete-requests/{id}.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	if _, err := h.guard.Require(r.Context(), rbac.CapDeletionApprove); err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, httpx.CodeValidation, "invalid request id")
		return
	}
	req, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, req)
}

// Approve handles POST /delete-requests/{id}/approve.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, err := h.guard.Require(r.Context(), rbac.CapDeletionApprove)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, httpx.CodeValidation, "invalid request id")
		return
	}
	req, err := h.service.Approve(r.Context(), actor, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if h.notifier != nil {
		h.notifier.DecisionRecorded(r.Context(), req)
	}
	httpx.OK(w, req)
}

// Deny handles POST /delete-requests/{id}/deny.
func (h *Handler) Deny(w http.ResponseWriter, r *http.Request) {
	actor, err := h.guard.Require(r.Context(), rbac.CapDeletionApprove)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, httpx.CodeValidation, "invalid request id")
		return
	}
	var payload denyRequestPayload
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &payload); err != nil {
			httpx.Fail(w, http.StatusBadRequest, httpx.CodeValidation, "invalid request body")
			return
		}
		if err := h.validate.Struct(payload); err != nil {
			httpx.Fail(w, http.StatusBadRequest, httpx.CodeValidation, err.Error())
			return
		}
	}
	req, err := h.service.Deny(r.Context(), actor, id, payload.Reason)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if h.notifier != nil {
		h.notifier.DecisionRecorded(r.Context(), req)
	}
	httpx.OK(w, req)
}

// Purge handles POST /admin/delete-all-data.
func (h *Handler) Purge(w http.ResponseWriter, r *http.Request) {
	actor, err := h.guard.Require(r.Context(), rbac.CapDeletionPurge)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	counts, err := h.service.PurgeTransactional(r.Context(), actor)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, map[string]any{"removed": counts})
}
