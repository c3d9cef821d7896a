package shared

import "errors"

var (
	// ErrUnauthorized indicates a missing or expired session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates the caller lacks a required capability,
	// or the operation targets a protected data tier.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates the record was already decided or changed concurrently.
	ErrConflict = errors.New("conflict")
	// ErrValidation indicates malformed or unsupported input.
	ErrValidation = errors.New("validation failed")
	// ErrExecutionFailed indicates a cascading delete could not complete.
	ErrExecutionFailed = errors.New("execution failed")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
