package deletion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/einstein4784/combined2026-sub002/internal/rbac"
	"github.com/einstein4784/combined2026-sub002/internal/shared"
)

// TxRunner executes fn inside one database transaction. Production wiring
// uses platform/db.WithTx; tests substitute a pass-through.
type TxRunner func(ctx context.Context, fn func(pgx.Tx) error) error

// AuditRecorder appends privileged-action records.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
	RecordOrWarn(ctx context.Context, log shared.AuditLog)
}

// PurgeLocker serializes bulk purges across instances.
type PurgeLocker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// LabelResolver produces a human-readable snapshot of an entity so the
// request stays displayable after the underlying record is gone.
type LabelResolver func(ctx context.Context, id string) (string, error)

// CreateInput carries the fields of a new delete request.
type CreateInput struct {
	EntityType  string
	EntityID    string
	EntityLabel string
	Reason      string
}

// Service implements the delete-request state machine. Callers are already
// authorized; every method takes the acting identity resolved by the guard.
type Service struct {
	store     RequestStore
	exec      *Executor
	audit     AuditRecorder
	runTx     TxRunner
	purgeLock PurgeLocker
	labels    map[string]LabelResolver
	logger    *slog.Logger
	now       func() time.Time
}

// NewService constructs a Service.
func NewService(store RequestStore, exec *Executor, audit AuditRecorder, runTx TxRunner, purgeLock PurgeLocker, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		exec:      exec,
		audit:     audit,
		runTx:     runTx,
		purgeLock: purgeLock,
		labels:    make(map[string]LabelResolver),
		logger:    logger,
		now:       time.Now,
	}
}

// RegisterLabelResolver attaches a label snapshot function for entityType.
func (s *Service) RegisterLabelResolver(entityType string, fn LabelResolver) {
	s.labels[entityType] = fn
}

// Create records a new pending delete request. The entity type must be a
// registered deletable tier; protected and unknown types are rejected
// before anything is persisted.
func (s *Service) Create(ctx context.Context, actor rbac.Actor, input CreateInput) (DeleteRequest, error) {
	entityType := strings.TrimSpace(input.EntityType)
	entityID := strings.TrimSpace(input.EntityID)
	if entityType == "" || entityID == "" {
		return DeleteRequest{}, fmt.Errorf("%w: entity type and id are required", shared.ErrValidation)
	}
	tier, known := s.exec.Classifier().TierOf(entityType)
	if !known {
		return DeleteRequest{}, fmt.Errorf("%w: unknown entity type %q", shared.ErrValidation, entityType)
	}
	if tier.Protected() {
		return DeleteRequest{}, fmt.Errorf("%w: entity type %q is not deletable", shared.ErrValidation, entityType)
	}

	label := strings.TrimSpace(input.EntityLabel)
	if label == "" {
		if resolve, ok := s.labels[entityType]; ok {
			resolved, err := resolve(ctx, entityID)
			switch {
			case err == nil:
				label = resolved
			case errors.Is(err, shared.ErrNotFound):
				return DeleteRequest{}, fmt.Errorf("%w: %s %s", shared.ErrNotFound, entityType, entityID)
			default:
				// A label is a courtesy snapshot; a lookup outage must not
				// block the request itself.
				if s.logger != nil {
					s.logger.Warn("label resolve failed",
						slog.String("entity_type", entityType),
						slog.Any("error", err))
				}
			}
		}
	}

	now := s.now().UTC()
	req := DeleteRequest{
		ID:          uuid.New(),
		EntityType:  entityType,
		EntityID:    entityID,
		EntityLabel: label,
		RequestedBy: actor.UserID,
		Status:      StatusPending,
		Reason:      strings.TrimSpace(input.Reason),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Insert(ctx, req); err != nil {
		return DeleteRequest{}, fmt.Errorf("deletion: insert request: %w", err)
	}
	s.audit.RecordOrWarn(ctx, shared.AuditLog{
		ActorID:  actor.UserID,
		Action:   ActionRequestCreate,
		Entity:   req.EntityType,
		EntityID: req.EntityID,
		Details: map[string]any{
			"request_id": req.ID.String(),
			"tier":       string(tier),
			"reason":     req.Reason,
		},
	})
	return req, nil
}

// Approve claims the pending request and executes the cascading delete in
// one transaction. The status flip happens first as a conditional update:
// the loser of a concurrent decision sees zero rows and never reaches the
// executor. An execution failure rolls the flip back, leaving the request
// pending for retry or denial — a request is never marked approved unless
// its execution demonstrably succeeded.
func (s *Service) Approve(ctx context.Context, actor rbac.Actor, id uuid.UUID) (DeleteRequest, error) {
	req, err := s.store.Get(ctx, id)
	if err != nil {
		return DeleteRequest{}, err
	}
	if !req.Pending() {
		return DeleteRequest{}, fmt.Errorf("%w: request already %s", shared.ErrConflict, req.Status)
	}

	decidedAt := s.now().UTC()
	err = s.runTx(ctx, func(tx pgx.Tx) error {
		claimed, err := s.store.MarkDecided(ctx, tx, id, StatusApproved, actor.UserID, decidedAt)
		if err != nil {
			return fmt.Errorf("deletion: claim request: %w", err)
		}
		if !claimed {
			return fmt.Errorf("%w: request already decided", shared.ErrConflict)
		}
		return s.exec.Execute(ctx, tx, req.EntityType, req.EntityID)
	})
	if err != nil {
		return DeleteRequest{}, err
	}

	req.Status = StatusApproved
	req.DecidedBy = &actor.UserID
	req.DecidedAt = &decidedAt
	req.UpdatedAt = decidedAt
	s.audit.RecordOrWarn(ctx, shared.AuditLog{
		ActorID:  actor.UserID,
		Action:   ActionRequestApprove,
		Entity:   req.EntityType,
		EntityID: req.EntityID,
		Details: map[string]any{
			"request_id":    req.ID.String(),
			"requested_by":  req.RequestedBy,
			"self_approved": req.RequestedBy == actor.UserID,
		},
	})
	return req, nil
}

// Deny marks the request denied. The executor is never involved.
func (s *Service) Deny(ctx context.Context, actor rbac.Actor, id uuid.UUID, reason string) (DeleteRequest, error) {
	req, err := s.store.Get(ctx, id)
	if err != nil {
		return DeleteRequest{}, err
	}
	if !req.Pending() {
		return DeleteRequest{}, fmt.Errorf("%w: request already %s", shared.ErrConflict, req.Status)
	}

	decidedAt := s.now().UTC()
	err = s.runTx(ctx, func(tx pgx.Tx) error {
		claimed, err := s.store.MarkDecided(ctx, tx, id, StatusDenied, actor.UserID, decidedAt)
		if err != nil {
			return fmt.Errorf("deletion: deny request: %w", err)
		}
		if !claimed {
			return fmt.Errorf("%w: request already decided", shared.ErrConflict)
		}
		return nil
	})
	if err != nil {
		return DeleteRequest{}, err
	}

	req.Status = StatusDenied
	req.DecidedBy = &actor.UserID
	req.DecidedAt = &decidedAt
	req.UpdatedAt = decidedAt
	s.audit.RecordOrWarn(ctx, shared.AuditLog{
		ActorID:  actor.UserID,
		Action:   ActionRequestDeny,
		Entity:   req.EntityType,
		EntityID: req.EntityID,
		Details: map[string]any{
			"request_id":   req.ID.String(),
			"requested_by": req.RequestedBy,
			"deny_reason":  strings.TrimSpace(reason),
		},
	})
	return req, nil
}

// Get returns one request.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (DeleteRequest, error) {
	return s.store.Get(ctx, id)
}

// List returns requests matching the filters.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]DeleteRequest, error) {
	return s.store.List(ctx, filters)
}

// PurgeTransactional empties every transactional-tier collection in one
// transaction. It is a direct, audited bypass of the per-record workflow
// restricted to the purge capability, serialized by a redis lock so two
// purges cannot overlap.
func (s *Service) PurgeTransactional(ctx context.Context, actor rbac.Actor) (map[string]int64, error) {
	if s.purgeLock != nil {
		ok, err := s.purgeLock.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("deletion: acquire purge lock: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: a purge is already running", shared.ErrConflict)
		}
		defer func() {
			if err := s.purgeLock.Release(ctx); err != nil && s.logger != nil {
				s.logger.Warn("release purge lock", slog.Any("error", err))
			}
		}()
	}

	var counts map[string]int64
	err := s.runTx(ctx, func(tx pgx.Tx) error {
		var err error
		counts, err = s.exec.PurgeTransactional(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.RecordOrWarn(ctx, shared.AuditLog{
		ActorID:  actor.UserID,
		Action:   ActionPurgeAll,
		Entity:   "System",
		EntityID: "transactional",
		Details:  map[string]any{"removed": counts},
	})
	return counts, nil
}
