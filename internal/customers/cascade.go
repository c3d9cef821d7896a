package customers

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/einstein4784/combined2026-sub002/internal/deletion"
	"github.com/einstein4784/combined2026-sub002/internal/shared"
)

// EntityType under which customers are registered with the deletion executor.
const EntityType = "Customer"

// Cascade removes a customer together with its notes.
type Cascade struct{}

// Tier classifies customers as transactional data.
func (Cascade) Tier() deletion.Tier {
	return deletion.TierTransactional
}

// CascadeDelete removes the customer's notes and the customer row inside tx.
func (Cascade) CascadeDelete(ctx context.Context, tx pgx.Tx, id string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM customer_notes WHERE customer_id = $1`, id); err != nil {
		return fmt.Errorf("delete customer notes: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: customer %s", shared.ErrNotFound, id)
	}
	return nil
}

// PurgeAll empties the customer collection for the admin bulk purge.
func (Cascade) PurgeAll(ctx context.Context, tx pgx.Tx) (int64, error) {
	if _, err := tx.Exec(ctx, `DELETE FROM customer_notes`); err != nil {
		return 0, err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM customers`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var (
	_ deletion.Cascader = Cascade{}
	_ deletion.Purger   = Cascade{}
)
