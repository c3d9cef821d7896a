package chat

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

// FindThreadByID fetches one thread.
func (r *Repository) FindThreadByID(ctx context.Context, id string) (Thread, error) {
	var t Thread
	err := r.pool.QueryRow(ctx, `SELECT id, subject, created_by, created_at FROM chat_threads WHERE id = $1`, id).
		Scan(&t.ID, &t.Subject, &t.CreatedBy, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Thread{}, shared.ErrNotFound
		}
		return Thread{}, err
	}
	return t, nil
}

// CountMessages returns the number of messages in a thread.
func (r *Repository) CountMessages(ctx context.Context, threadID string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM chat_messages WHERE thread_id = $1`, threadID).Scan(&n)
	return n, err
}
