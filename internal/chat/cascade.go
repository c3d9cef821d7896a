package chat

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/einstein4784/combined2026-sub002/internal/deletion"
	"github.com/einstein4784/combined2026-sub002/internal/shared"
)

// EntityType under which chat threads are registered with the deletion executor.
const EntityType = "ChatThread"

// Cascade removes a thread together with all of its messages.
type Cascade struct{}

// Tier classifies chat data as transactional.
func (Cascade) Tier() deletion.Tier {
	return deletion.TierTransactional
}

// CascadeDelete removes the thread's messages, then the thread row.
func (Cascade) CascadeDelete(ctx context.Context, tx pgx.Tx, id string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM chat_messages WHERE thread_id = $1`, id); err != nil {
		return fmt.Errorf("delete chat messages: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM chat_threads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete chat thread: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: chat thread %s", shared.ErrNotFound, id)
	}
	return nil
}

// PurgeAll empties all chat data for the admin bulk purge.
func (Cascade) PurgeAll(ctx context.Context, tx pgx.Tx) (int64, error) {
	if _, err := tx.Exec(ctx, `DELETE FROM chat_messages`); err != nil {
		return 0, err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM chat_threads`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var (
	_ deletion.Cascader = Cascade{}
	_ deletion.Purger   = Cascade{}
)
