package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

func decidedTask(t *testing.T) *asynq.Task {
	t.Helper()
	task, err := NewDeletionDecidedTask(DeletionDecidedPayload{
		RequestID:   "req-1",
		EntityType:  "Customer",
		EntityID:    "c-1",
		Status:      "approved",
		RequestedBy: 7,
		DecidedBy:   9,
	})
	require.NoError(t, err)
	return task
}

func TestDecidedHandlerEnqueuesEmail(t *testing.T) {
	var enqueued []*asynq.Task
	handler := &DecidedHandler{
		Lookup: func(_ context.Context, userID int64) (string, error) {
			require.Equal(t, int64(7), userID, "mail goes to the requester, not the decider")
			return "requester@backoffice.local", nil
		},
		Enqueue: func(_ context.Context, task *asynq.Task) error {
			enqueued = append(enqueued, task)
			return nil
		},
		Logger: slog.Default(),
	}

	require.NoError(t, handler.HandleDeletionDecidedTask(context.Background(), decidedTask(t)))
	require.Len(t, enqueued, 1)
	require.Equal(t, TaskTypeSendEmail, enqueued[0].Type())

	var mail SendEmailPayload
	require.NoError(t, json.Unmarshal(enqueued[0].Payload(), &mail))
	require.Equal(t, "requester@backoffice.local", mail.To)
	require.Contains(t, mail.Subject, "approved")
	require.Contains(t, mail.Body, "Customer")
}

func TestDecidedHandlerSwallowsMissingRequester(t *testing.T) {
	handler := &DecidedHandler{
		Lookup: func(context.Context, int64) (string, error) {
			return "", errors.New("no rows")
		},
		Enqueue: func(context.Context, *asynq.Task) error {
			t.Fatal("nothing should be enqueued")
			return nil
		},
		Logger: slog.Default(),
	}

	require.NoError(t, handler.HandleDeletionDecidedTask(context.Background(), decidedTask(t)))
}

func TestDecidedHandlerSkipsMalformedPayload(t *testing.T) {
	handler := &DecidedHandler{Logger: slog.Default()}
	err := handler.HandleDeletionDecidedTask(context.Background(),
		asynq.NewTask(TaskTypeDeletionDecided, []byte("{broken")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}
