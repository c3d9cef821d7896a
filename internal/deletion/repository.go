package deletion

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RequestStore persists delete requests. Requests are inserted once,
// decided at most once, and never removed.
type RequestStore interface {
	Insert(ctx context.Context, req DeleteRequest) error
	Get(ctx context.Context, id uuid.UUID) (DeleteRequest, error)
	List(ctx context.Context, filters ListFilters) ([]DeleteRequest, error)
	// MarkDecided flips status from pending to the terminal status as a
	// single conditional update inside tx. It returns false when the row
	// was no longer pending, so a concurrent decision loses cleanly.
	MarkDecided(ctx context.Context, tx pgx.Tx, id uuid.UUID, status Status, decidedBy int64, decidedAt time.Time) (bool, error)
}
