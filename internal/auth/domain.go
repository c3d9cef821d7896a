package auth

import (
	"time"

	"github.com/einstein4784/combined2026-sub002/internal/rbac"
)

// User represents a back-office user account.
type User struct {
	ID           int64
	Email        string
	FullName     string
	PasswordHash string
	Role         rbac.Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
