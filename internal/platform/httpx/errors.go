package httpx

import (
	"errors"
	"net/http"

	"github.com/einstein4784/combined2026-sub002/internal/shared"
)

// Stable machine-readable error codes returned to clients.
const (
	CodeValidation      = "validation_error"
	CodeUnauthorized    = "unauthorized"
	CodeForbidden       = "forbidden"
	CodeNotFound        = "not_found"
	CodeConflict        = "conflict"
	CodeExecutionFailed = "execution_failed"
	CodeInternal        = "internal_error"
)

// RespondError maps domain errors to the envelope. Unknown errors collapse
// to a generic 500 so persistence details never reach the caller.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrValidation):
		Fail(w, http.StatusBadRequest, CodeValidation, err.Error())
	case errors.Is(err, shared.ErrUnauthorized), errors.Is(err, shared.ErrInvalidCredentials):
		Fail(w, http.StatusUnauthorized, CodeUnauthorized, "authentication required")
	case errors.Is(err, shared.ErrForbidden):
		Fail(w, http.StatusForbidden, CodeForbidden, "insufficient permissions")
	case errors.Is(err, shared.ErrNotFound):
		Fail(w, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, shared.ErrConflict):
		Fail(w, http.StatusConflict, CodeConflict, err.Error())
	case errors.Is(err, shared.ErrExecutionFailed):
		Fail(w, http.StatusInternalServerError, CodeExecutionFailed, "deletion could not be completed")
	default:
		Fail(w, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}
