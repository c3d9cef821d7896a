package payments

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

// FindByID fetches one payment.
func (r *Repository) FindByID(ctx context.Context, id string) (Payment, error) {
	var p Payment
	err := r.pool.QueryRow(ctx, `SELECT id, policy_id, amount, method, received_by, received_at, created_at
FROM payments WHERE id = $1`, id).
		Scan(&p.ID, &p.PolicyID, &p.Amount, &p.Method, &p.ReceivedBy, &p.ReceivedAt, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payment{}, shared.ErrNotFound
		}
		return Payment{}, err
	}
	return p, nil
}

// FindReceiptByID fetches one receipt.
func (r *Repository) FindReceiptByID(ctx context.Context, id string) (Receipt, error) {
	var rec Receipt
	err := r.pool.QueryRow(ctx, `SELECT id, payment_id, number, issued_at FROM receipts WHERE id = $1`, id).
		Scan(&rec.ID, &rec.PaymentID, &rec.Number, &rec.IssuedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Receipt{}, shared.ErrNotFound
		}
		return Receipt{}, err
	}
	return rec, nil
}

// Count returns the number of payment rows.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM payments`).Scan(&n)
	return n, err
}
