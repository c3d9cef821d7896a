package policies

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/einstein4784/combined2026-sub002/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByID fetches one policy.
func (r *Repository) FindByID(ctx context.Context, id string) (Policy, error) {
	var p Policy
	err := r.pool.QueryRow(ctx, `SELECT id, policy_number, customer_id, product, premium, status, effective_at, expires_at, created_at, updated_at
FROM policies WHERE id = $1`, id).
		Scan(&p.ID, &p.PolicyNumber, &p.CustomerID, &p.Product, &p.Premium, &p.Status,
			&p.EffectiveAt, &p.ExpiresAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Policy{}, shared.ErrNotFound
		}
		return Policy{}, err
	}
	return p, nil
}

// Count returns the number of policy rows.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM policies`).Scan(&n)
	return n, err
}
