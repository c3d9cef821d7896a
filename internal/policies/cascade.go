package policies

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/einstein4784/combined2026-sub002/internal/deletion"
	"github.com/einstein4784/combined2026-sub002/internal/shared"
)

// EntityType under which policies are registered with the deletion executor.
const EntityType = "Policy"

// Cascade removes a policy with its endorsements and payment history.
type Cascade struct{}

// Tier classifies policies as transactional data.
func (Cascade) Tier() deletion.Tier {
	return deletion.TierTransactional
}

// CascadeDelete removes receipts and payments tied to the policy, its
// endorsements, and finally the policy row. Dependents go first so a
// failure mid-cascade rolls back to a consistent state.
func (Cascade) CascadeDelete(ctx context.Context, tx pgx.Tx, id string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM receipts WHERE payment_id IN (SELECT id FROM payments WHERE policy_id = $1)`, id); err != nil {
		return fmt.Errorf("delete policy receipts: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM payments WHERE policy_id = $1`, id); err != nil {
		return fmt.Errorf("delete policy payments: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM policy_endorsements WHERE policy_id = $1`, id); err != nil {
		return fmt.Errorf("delete policy endorsements: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM policies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete policy: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: policy %s", shared.ErrNotFound, id)
	}
	return nil
}

// PurgeAll empties the policy collection for the admin bulk purge.
func (Cascade) PurgeAll(ctx context.Context, tx pgx.Tx) (int64, error) {
	if _, err := tx.Exec(ctx, `DELETE FROM policy_endorsements`); err != nil {
		return 0, err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM policies`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var (
	_ deletion.Cascader = Cascade{}
	_ deletion.Purger   = Cascade{}
)
