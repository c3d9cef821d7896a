package payments

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/einstein4784/combined2026-sub002/internal/deletion"
	"github.com/einstein4784/combined2026-sub002/internal/shared"
)

// Entity types registered with the deletion executor.
const (
	EntityType        = "Payment"
	ReceiptEntityType = "Receipt"
)

// Cascade removes a payment together with its derived receipt.
type Cascade struct{}

// Tier classifies payments as transactional data.
func (Cascade) Tier() deletion.Tier {
	return deletion.TierTransactional
}

// CascadeDelete removes the receipt derived from the payment, then the
// payment itself.
func (Cascade) CascadeDelete(ctx context.Context, tx pgx.Tx, id string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM receipts WHERE payment_id = $1`, id); err != nil {
		return fmt.Errorf("delete receipt: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: payment %s", shared.ErrNotFound, id)
	}
	return nil
}

// PurgeAll empties payments and receipts for the admin bulk purge.
func (Cascade) PurgeAll(ctx context.Context, tx pgx.Tx) (int64, error) {
	if _, err := tx.Exec(ctx, `DELETE FROM receipts`); err != nil {
		return 0, err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM payments`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ReceiptCascade removes a single receipt without touching its payment.
type ReceiptCascade struct{}

// Tier classifies receipts as transactional data.
func (ReceiptCascade) Tier() deletion.Tier {
	return deletion.TierTransactional
}

// CascadeDelete removes the receipt row.
func (ReceiptCascade) CascadeDelete(ctx context.Context, tx pgx.Tx, id string) error {
	tag, err := tx.Exec(ctx, `DELETE FROM receipts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete receipt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: receipt %s", shared.ErrNotFound, id)
	}
	return nil
}

var (
	_ deletion.Cascader = Cascade{}
	_ deletion.Purger   = Cascade{}
	_ deletion.Cascader = ReceiptCascade{}
)
