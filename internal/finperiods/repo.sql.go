package finperiods

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

// FindByID fetches one period.
func (r *Repository) FindByID(ctx context.Context, id string) (Period, error) {
	var p Period
	err := r.pool.QueryRow(ctx, `SELECT id, code, status, opened_at, closed_at, created_at
FROM financial_periods WHERE id = $1`, id).
		Scan(&p.ID, &p.Code, &p.Status, &p.OpenedAt, &p.ClosedAt, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Period{}, shared.ErrNotFound
		}
		return Period{}, err
	}
	return p, nil
}

// Count returns the number of period rows.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM financial_periods`).Scan(&n)
	return n, err
}
