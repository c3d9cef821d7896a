package deletion

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/einstein4784/combined2026-sub002/internal/shared"
)

// PGRequestStore provides PostgreSQL backed persistence for delete requests.
type PGRequestStore struct {
	pool *pgxpool.Pool
}

// NewRequestStore constructs a store.
func NewRequestStore(pool *pgxpool.Pool) *PGRequestStore {
	return &PGRequestStore{pool: pool}
}

const requestColumns = `id, entity_type, entity_id, entity_label, requested_by, status, decided_by, decided_at, reason, created_at, updated_at`

// Insert stores a new pending request.
func (s *PGRequestStore) Insert(ctx context.Context, req DeleteRequest) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO delete_requests
(id, entity_type, entity_id, entity_label, requested_by, status, reason, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		req.ID, req.EntityType, req.EntityID, req.EntityLabel, req.RequestedBy,
		string(req.Status), req.Reason, req.CreatedAt)
	return err
}

// Get fetches one request by id.
func (s *PGRequestStore) Get(ctx context.Context, id uuid.UUID) (DeleteRequest, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+requestColumns+` FROM delete_requests WHERE id = $1`, id)
	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return DeleteRequest{}, shared.ErrNotFound
		}
		return DeleteRequest{}, err
	}
	return req, nil
}

// List returns requests matching the filters, newest first.
func (s *PGRequestStore) List(ctx context.Context, filters ListFilters) ([]DeleteRequest, error) {
	limit := filters.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `SELECT `+requestColumns+` FROM delete_requests
WHERE ($1 = '' OR status = $1)
  AND ($2 = '' OR entity_type = $2)
ORDER BY created_at DESC
LIMIT $3 OFFSET $4`,
		string(filters.Status), filters.EntityType, limit, filters.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DeleteRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkDecided performs the conditional status flip. The WHERE clause on
// status closes the approve/deny race: of two concurrent decisions exactly
// one update affects a row.
func (s *PGRequestStore) MarkDecided(ctx context.Context, tx pgx.Tx, id uuid.UUID, status Status, decidedBy int64, decidedAt time.Time) (bool, error) {
	tag, err := tx.Exec(ctx, `UPDATE delete_requests
SET status = $2, decided_by = $3, decided_at = $4, updated_at = $4
WHERE id = $1 AND status = 'pending'`,
		id, string(status), decidedBy, decidedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanRequest(row pgx.Row) (DeleteRequest, error) {
	var req DeleteRequest
	var status string
	if err := row.Scan(&req.ID, &req.EntityType, &req.EntityID, &req.EntityLabel,
		&req.RequestedBy, &status, &req.DecidedBy, &req.DecidedAt, &req.Reason,
		&req.CreatedAt, &req.UpdatedAt); err != nil {
		return DeleteRequest{}, err
	}
	req.Status = Status(status)
	return req, nil
}

var _ RequestStore = (*PGRequestStore)(nil)
