package rbac

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/einstein4784/combined2026-sub002/internal/shared"
)

// PGPermissionStore provides PostgreSQL backed persistence for role permissions.
type PGPermissionStore struct {
	pool *pgxpool.Pool
}

// NewPermissionStore constructs a store.
func NewPermissionStore(pool *pgxpool.Pool) *PGPermissionStore {
	return &PGPermissionStore{pool: pool}
}

// GetRolePermissions returns the stored capability set for role.
func (s *PGPermissionStore) GetRolePermissions(ctx context.Context, role Role) ([]string, error) {
	var caps []string
	err := s.pool.QueryRow(ctx,
		`SELECT capabilities FROM role_permissions WHERE role = $1`, string(role)).Scan(&caps)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return caps, nil
}

// ListRolePermissions returns every stored record ordered by role.
func (s *PGPermissionStore) ListRolePermissions(ctx context.Context) ([]RolePermission, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT role, capabilities, updated_at FROM role_permissions ORDER BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []RolePermission
	for rows.Next() {
		var rp RolePermission
		var role string
		if err := rows.Scan(&role, &rp.Capabilities, &rp.UpdatedAt); err != nil {
			return nil, err
		}
		rp.Role = Role(role)
		records = append(records, rp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// UpsertRolePermissions replaces the capability set for role.
func (s *PGPermissionStore) UpsertRolePermissions(ctx context.Context, role Role, capabilities []string) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO role_permissions (role, capabilities, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (role) DO UPDATE SET capabilities = EXCLUDED.capabilities, updated_at = NOW()`,
		string(role), capabilities)
	return err
}

var _ PermissionStore = (*PGPermissionStore)(nil)
