package shared

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditLog represents a record stored in audit_logs. Entries are write-once:
// nothing in the application updates or deletes them.
type AuditLog struct {
	ActorID  int64
	Action   string
	Entity   string
	EntityID string
	Details  map[string]any
	At       time.Time
}

// AuditLogger writes records into audit_logs.
type AuditLogger struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(pool *pgxpool.Pool, logger *slog.Logger) *AuditLogger {
	return &AuditLogger{pool: pool, logger: logger}
}

// Record persists the log entry.
func (l *AuditLogger) Record(ctx context.Context, log AuditLog) error {
	if l == nil {
		return errors.New("audit logger not initialised")
	}
	if log.Action == "" || log.Entity == "" || log.EntityID == "" {
		return errors.New("audit log requires action/entity/entity_id")
	}
	detailsJSON, err := json.Marshal(log.Details)
	if err != nil {
		return err
	}
	_, err = l.pool.Exec(ctx, `INSERT INTO audit_logs (actor_id, action, entity, entity_id, details, occurred_at)
VALUES ($1, $2, $3, $4, $5, COALESCE(NULLIF($6, '0001-01-01 00:00:00+00'::timestamptz), NOW()))`,
		log.ActorID, log.Action, log.Entity, log.EntityID, detailsJSON, log.At)
	return err
}

// RecordOrWarn appends the entry after a business mutation has already
// committed. A failed append must not roll back completed work, so the
// failure is surfaced as an error log instead of a returned error.
func (l *AuditLogger) RecordOrWarn(ctx context.Context, log AuditLog) {
	if err := l.Record(ctx, log); err != nil {
		logger := slog.Default()
		if l != nil && l.logger != nil {
			logger = l.logger
		}
		logger.Error("audit append failed",
			slog.String("action", log.Action),
			slog.String("entity", log.Entity),
			slog.String("entity_id", log.EntityID),
			slog.Any("error", err))
	}
}
