package deletion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/einstein4784/combined2026-sub002/internal/shared"
)

// Cascader removes one entity and all of its dependent records inside the
// caller's transaction. Adding a new deletable entity type is a
// registration, not a new branch inside the executor.
type Cascader interface {
	Tier() Tier
	CascadeDelete(ctx context.Context, tx pgx.Tx, id string) error
}

// Purger is implemented by cascaders whose whole collection can be emptied
// by the admin bulk purge. Only transactional-tier cascaders are ever asked.
type Purger interface {
	PurgeAll(ctx context.Context, tx pgx.Tx) (int64, error)
}

// Executor dispatches approved deletions to the cascader registered for the
// entity type. It is a pure orchestrator: all row removal happens in the
// cascaders, inside the transaction the caller supplies.
type Executor struct {
	classifier *Classifier
	cascaders  map[string]Cascader
	logger     *slog.Logger
}

// NewExecutor constructs an Executor with an empty registry.
func NewExecutor(logger *slog.Logger) *Executor {
	return &Executor{
		classifier: NewClassifier(),
		cascaders:  make(map[string]Cascader),
		logger:     logger,
	}
}

// Register adds a cascader for entityType. The tier comes from the cascader
// so a registration can never disagree with its classification.
func (e *Executor) Register(entityType string, c Cascader) {
	e.classifier.Register(entityType, c.Tier())
	e.cascaders[entityType] = c
}

// RegisterProtected records an entity type that exists in the system but
// must never be deletable through the workflow (configuration, security and
// bookkeeping data). No cascader is attached.
func (e *Executor) RegisterProtected(entityType string, tier Tier) {
	if !tier.Protected() {
		panic(fmt.Sprintf("deletion: tier %s is not protected", tier))
	}
	e.classifier.Register(entityType, tier)
}

// Classifier exposes the tier table for validation.
func (e *Executor) Classifier() *Classifier {
	return e.classifier
}

// Execute runs the cascading delete for (entityType, id) inside tx.
// Protected tiers are refused here independently of whatever the delete
// request claims, as defense against a mis-classified or forged request.
func (e *Executor) Execute(ctx context.Context, tx pgx.Tx, entityType, id string) error {
	tier, known := e.classifier.TierOf(entityType)
	if !known {
		return fmt.Errorf("%w: unknown entity type %q", shared.ErrValidation, entityType)
	}
	if tier.Protected() {
		return fmt.Errorf("%w: entity type %q is %s tier", shared.ErrForbidden, entityType, tier)
	}
	cascader, ok := e.cascaders[entityType]
	if !ok {
		return fmt.Errorf("%w: no cascader for entity type %q", shared.ErrValidation, entityType)
	}
	if err := cascader.CascadeDelete(ctx, tx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: cascade %s/%s: %v", shared.ErrExecutionFailed, entityType, id, err)
	}
	if e.logger != nil {
		e.logger.Info("cascade delete executed",
			slog.String("entity_type", entityType),
			slog.String("entity_id", id))
	}
	return nil
}

// PurgeTransactional empties every transactional-tier collection that
// supports purging, inside tx. Workflow, financial and protected tiers are
// never touched. Returns removed row counts keyed by entity type.
func (e *Executor) PurgeTransactional(ctx context.Context, tx pgx.Tx) (map[string]int64, error) {
	types := make([]string, 0, len(e.cascaders))
	for et := range e.cascaders {
		types = append(types, et)
	}
	sort.Strings(types)

	counts := make(map[string]int64)
	for _, et := range types {
		cascader := e.cascaders[et]
		if cascader.Tier() != TierTransactional {
			continue
		}
		purger, ok := cascader.(Purger)
		if !ok {
			continue
		}
		n, err := purger.PurgeAll(ctx, tx)
		if err != nil {
			return nil, fmt.Errorf("%w: purge %s: %v", shared.ErrExecutionFailed, et, err)
		}
		counts[et] = n
	}
	return counts, nil
}
