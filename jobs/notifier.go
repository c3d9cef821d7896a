package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/einstein4784/combined2026-sub002/internal/deletion"
)

// DecisionNotifier enqueues notification tasks after a decision commits.
// Enqueue failures are logged, never propagated: notification is best
// effort and must not disturb a completed decision.
type DecisionNotifier struct {
	client *asynq.Client
	logger *slog.Logger
}

// NewDecisionNotifier constructs a notifier over the asynq client.
func NewDecisionNotifier(client *asynq.Client, logger *slog.Logger) *DecisionNotifier {
	return &DecisionNotifier{client: client, logger: logger}
}

// DecisionRecorded implements deletion.Notifier.
func (n *DecisionNotifier) DecisionRecorded(ctx context.Context, req deletion.DeleteRequest) {
	if n == nil || n.client == nil {
		return
	}
	var decidedBy int64
	if req.DecidedBy != nil {
		decidedBy = *req.DecidedBy
	}
	task, err := NewDeletionDecidedTask(DeletionDecidedPayload{
		RequestID:   req.ID.String(),
		EntityType:  req.EntityType,
		EntityID:    req.EntityID,
		Status:      string(req.Status),
		RequestedBy: req.RequestedBy,
		DecidedBy:   decidedBy,
	})
	if err != nil {
		n.warn(req, err)
		return
	}
	if _, err := n.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault)); err != nil {
		n.warn(req, err)
	}
}

func (n *DecisionNotifier) warn(req deletion.DeleteRequest, err error) {
	if n.logger != nil {
		n.logger.Warn("enqueue decision notification",
			slog.String("request_id", req.ID.String()),
			slog.Any("error", err))
	}
}

var _ deletion.Notifier = (*DecisionNotifier)(nil)
