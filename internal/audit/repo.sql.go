package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository reads audit_logs from PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Window returns a filtered slice of the timeline, newest first.
func (r *PGRepository) Window(ctx context.Context, filters TimelineFilters, limit, offset int) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, actor_id, action, entity, entity_id, details, occurred_at
FROM audit_logs
WHERE ($1::timestamptz IS NULL OR occurred_at >= $1)
  AND ($2::timestamptz IS NULL OR occurred_at <= $2)
  AND ($3 = 0 OR actor_id = $3)
  AND ($4 = '' OR entity = $4)
  AND ($5 = '' OR action = $5)
ORDER BY occurred_at DESC, id DESC
LIMIT $6 OFFSET $7`,
		nullableTime(filters.From), nullableTime(filters.To),
		filters.ActorID, filters.Entity, filters.Action, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var details []byte
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Entity, &e.EntityID, &details, &e.At); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			_ = json.Unmarshal(details, &e.Details)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func nullableTime(t interface{ IsZero() bool }) any {
	if t.IsZero() {
		return nil
	}
	return t
}

var _ Repository = (*PGRepository)(nil)
