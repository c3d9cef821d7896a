package rbac

import (
	"log/slog"
	"net/http"

	"github.com/einstein4784/combined2026-sub002/internal/platform/httpx"
)

// Middleware wires authorization helpers for HTTP handlers.
type Middleware struct {
	Guard  *Guard
	Logger *slog.Logger
}

// RequireCapability rejects requests whose caller lacks the capability.
func (m Middleware) RequireCapability(capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := m.Guard.Require(r.Context(), capability); err != nil {
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyRole rejects callers outside the listed roles.
func (m Middleware) RequireAnyRole(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := m.Guard.RequireAnyRole(r.Context(), roles...); err != nil {
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
