package finperiods

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/einstein4784/combined2026-sub002/internal/deletion"
	"github.com/einstein4784/combined2026-sub002/internal/shared"
)

// EntityType under which financial periods are registered with the deletion executor.
const EntityType = "FinancialPeriod"

// Cascade removes a financial period and its derived snapshots. Financial
// tier: deletable through the approval workflow, but excluded from the
// transactional bulk purge.
type Cascade struct{}

// Tier classifies periods as financial data.
func (Cascade) Tier() deletion.Tier {
	return deletion.TierFinancial
}

// CascadeDelete removes the period's snapshots, then the period row.
func (Cascade) CascadeDelete(ctx context.Context, tx pgx.Tx, id string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM period_snapshots WHERE period_id = $1`, id); err != nil {
		return fmt.Errorf("delete period snapshots: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM financial_periods WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete financial period: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: financial period %s", shared.ErrNotFound, id)
	}
	return nil
}

var _ deletion.Cascader = Cascade{}
