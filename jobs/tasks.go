package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeDeletionDecided notifies the requester after a delete request
	// was approved or denied.
	TaskTypeDeletionDecided = "deletion:decided"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// DeletionDecidedPayload carries the decision summary for notification.
type DeletionDecidedPayload struct {
	RequestID   string `json:"request_id"`
	EntityType  string `json:"entity_type"`
	EntityID    string `json:"entity_id"`
	Status      string `json:"status"`
	RequestedBy int64  `json:"requested_by"`
	DecidedBy   int64  `json:"decided_by"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewDeletionDecidedTask constructs an Asynq task.
func NewDeletionDecidedTask(payload DeletionDecidedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeDeletionDecided, data), nil
}

// Mailer sends transactional emails over SMTP.
type Mailer struct {
	Addr   string
	From   string
	Logger *slog.Logger
}

// HandleSendEmailTask processes TaskTypeSendEmail tasks.
func (m *Mailer) HandleSendEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.From, payload.To, payload.Subject, payload.Body)
	if err := smtp.SendMail(m.Addr, nil, m.From, []string{payload.To}, []byte(msg)); err != nil {
		return fmt.Errorf("jobs: send email: %w", err)
	}
	return nil
}

// UserEmailLookup resolves a user id to an email address.
type UserEmailLookup func(ctx context.Context, userID int64) (string, error)

// DecidedHandler turns decision notifications into emails.
type DecidedHandler struct {
	Lookup  UserEmailLookup
	Enqueue func(ctx context.Context, task *asynq.Task) error
	Logger  *slog.Logger
}

// HandleDeletionDecidedTask processes TaskTypeDeletionDecided tasks.
func (h *DecidedHandler) HandleDeletionDecidedTask(ctx context.Context, t *asynq.Task) error {
	var payload DeletionDecidedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	to, err := h.Lookup(ctx, payload.RequestedBy)
	if err != nil {
		// The requester may have been removed since; nothing to notify.
		if h.Logger != nil {
			h.Logger.Warn("deletion notify: requester lookup failed",
				slog.String("request_id", payload.RequestID),
				slog.Any("error", err))
		}
		return nil
	}
	mail, err := NewSendEmailTask(SendEmailPayload{
		To:      to,
		Subject: fmt.Sprintf("Delete request %s %s", payload.RequestID, payload.Status),
		Body: fmt.Sprintf("Your deletion request for %s %s was %s.",
			payload.EntityType, payload.EntityID, payload.Status),
	})
	if err != nil {
		return err
	}
	return h.Enqueue(ctx, mail)
}
