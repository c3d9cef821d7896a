package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/einstein4784/combined2026-sub002/internal/shared"
)

// PermissionStore persists one capability set per role.
type PermissionStore interface {
	GetRolePermissions(ctx context.Context, role Role) ([]string, error)
	ListRolePermissions(ctx context.Context) ([]RolePermission, error)
	UpsertRolePermissions(ctx context.Context, role Role, capabilities []string) error
}

// Registry answers "does this role hold capability C". It is backed by
// role_permissions rows with a compiled-in default mapping; the defaults are
// passed in at construction so tests can inject alternate permission sets.
type Registry struct {
	store    PermissionStore
	defaults map[Role][]string
	logger   *slog.Logger
}

// NewRegistry constructs a Registry.
func NewRegistry(store PermissionStore, defaults map[Role][]string, logger *slog.Logger) *Registry {
	return &Registry{store: store, defaults: defaults, logger: logger}
}

// CapabilitiesFor returns the stored capability set for role. A missing row
// falls back to the defaults rather than denying all access; the gap is
// logged so an operator can persist the default.
func (r *Registry) CapabilitiesFor(ctx context.Context, role Role) ([]string, error) {
	if !ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", shared.ErrValidation, role)
	}
	caps, err := r.store.GetRolePermissions(ctx, role)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			if r.logger != nil {
				r.logger.Warn("role has no stored permission record, using defaults",
					slog.String("role", string(role)))
			}
			return append([]string(nil), r.defaults[role]...), nil
		}
		return nil, err
	}
	return caps, nil
}

// RoleHas reports whether role holds the capability.
func (r *Registry) RoleHas(ctx context.Context, role Role, capability string) (bool, error) {
	caps, err := r.CapabilitiesFor(ctx, role)
	if err != nil {
		return false, err
	}
	capability = strings.TrimSpace(capability)
	for _, c := range caps {
		if c == capability {
			return true, nil
		}
	}
	return false, nil
}

// Seed inserts the default capability set for every role that has no stored
// record yet. Called once at startup.
func (r *Registry) Seed(ctx context.Context) error {
	for _, role := range Roles() {
		_, err := r.store.GetRolePermissions(ctx, role)
		if err == nil {
			continue
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return fmt.Errorf("rbac: seed read %s: %w", role, err)
		}
		if err := r.store.UpsertRolePermissions(ctx, role, r.defaults[role]); err != nil {
			return fmt.Errorf("rbac: seed write %s: %w", role, err)
		}
		if r.logger != nil {
			r.logger.Info("seeded default permissions", slog.String("role", string(role)))
		}
	}
	return nil
}

// SetRoleCapabilities replaces the capability set for role.
func (r *Registry) SetRoleCapabilities(ctx context.Context, role Role, capabilities []string) error {
	if !ValidRole(role) {
		return fmt.Errorf("%w: unknown role %q", shared.ErrValidation, role)
	}
	cleaned := make([]string, 0, len(capabilities))
	seen := make(map[string]struct{}, len(capabilities))
	for _, c := range capabilities {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		cleaned = append(cleaned, c)
	}
	return r.store.UpsertRolePermissions(ctx, role, cleaned)
}

// List returns every stored role permission record.
func (r *Registry) List(ctx context.Context) ([]RolePermission, error) {
	return r.store.ListRolePermissions(ctx)
}
