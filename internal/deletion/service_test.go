package deletion

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/einstein4784/combined2026-sub002/internal/rbac"
	"github.com/einstein4784/combined2026-sub002/internal/shared"
)

type memoryStore struct {
	reqs map[uuid.UUID]DeleteRequest
}

func newMemoryStore() *memoryStore {
	return &memoryStore{reqs: make(map[uuid.UUID]DeleteRequest)}
}

func (s *memoryStore) Insert(_ context.Context, req DeleteRequest) error {
	s.reqs[req.ID] = req
	return nil
}

func (s *memoryStore) Get(_ context.Context, id uuid.UUID) (DeleteRequest, error) {
	req, ok := s.reqs[id]
	if !ok {
		return DeleteRequest{}, shared.ErrNotFound
	}
	return req, nil
}

func (s *memoryStore) List(_ context.Context, filters ListFilters) ([]DeleteRequest, error) {
	out := make([]DeleteRequest, 0, len(s.reqs))
	for _, req := range s.reqs {
		if filters.Status != "" && req.Status != filters.Status {
			continue
		}
		if filters.EntityType != "" && req.EntityType != filters.EntityType {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

func (s *memoryStore) MarkDecided(_ context.Context, _ pgx.Tx, id uuid.UUID, status Status, decidedBy int64, decidedAt time.Time) (bool, error) {
	req, ok := s.reqs[id]
	if !ok || req.Status != StatusPending {
		return false, nil
	}
	req.Status = status
	req.DecidedBy = &decidedBy
	req.DecidedAt = &decidedAt
	req.UpdatedAt = decidedAt
	s.reqs[id] = req
	return true, nil
}

// snapshot/restore emulates transaction rollback for the in-memory store.
func (s *memoryStore) snapshot() map[uuid.UUID]DeleteRequest {
	snap := make(map[uuid.UUID]DeleteRequest, len(s.reqs))
	for k, v := range s.reqs {
		snap[k] = v
	}
	return snap
}

type stubAudit struct {
	logs []shared.AuditLog
}

func (a *stubAudit) Record(_ context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func (a *stubAudit) RecordOrWarn(ctx context.Context, log shared.AuditLog) {
	_ = a.Record(ctx, log)
}

func (a *stubAudit) actions() []string {
	out := make([]string, 0, len(a.logs))
	for _, l := range a.logs {
		out = append(out, l.Action)
	}
	return out
}

type stubLock struct {
	held     bool
	acquires int
	releases int
}

func (l *stubLock) Acquire(context.Context) (bool, error) {
	l.acquires++
	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *stubLock) Release(context.Context) error {
	l.releases++
	l.held = false
	return nil
}

type stubCascade struct {
	tier       Tier
	deletes    []string
	err        error
	purged     int64
	purgeCalls int
}

func (c *stubCascade) Tier() Tier { return c.tier }

func (c *stubCascade) CascadeDelete(_ context.Context, _ pgx.Tx, id string) error {
	if c.err != nil {
		return c.err
	}
	c.deletes = append(c.deletes, id)
	return nil
}

func (c *stubCascade) PurgeAll(context.Context, pgx.Tx) (int64, error) {
	c.purgeCalls++
	if c.err != nil {
		return 0, c.err
	}
	return c.purged, nil
}

type fixture struct {
	store   *memoryStore
	audit   *stubAudit
	lock    *stubLock
	cascade *stubCascade
	service *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemoryStore()
	audit := &stubAudit{}
	lock := &stubLock{}
	cascade := &stubCascade{tier: TierTransactional, purged: 4}

	exec := NewExecutor(slog.Default())
	exec.Register("Customer", cascade)
	exec.RegisterProtected("User", TierSystem)
	exec.RegisterProtected("RolePermission", TierConfiguration)

	runTx := func(ctx context.Context, fn func(pgx.Tx) error) error {
		snap := store.snapshot()
		if err := fn(nil); err != nil {
			store.reqs = snap
			return err
		}
		return nil
	}

	svc := NewService(store, exec, audit, runTx, lock, slog.Default())
	return &fixture{store: store, audit: audit, lock: lock, cascade: cascade, service: svc}
}

var (
	requester = rbac.Actor{UserID: 7, Role: rbac.RoleCashier}
	approver  = rbac.Actor{UserID: 9, Role: rbac.RoleSupervisor}
)

func TestCreateRecordsPendingRequest(t *testing.T) {
	f := newFixture(t)

	req, err := f.service.Create(context.Background(), requester, CreateInput{
		EntityType: "Customer",
		EntityID:   "c-1",
		Reason:     "duplicate record",
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, req.Status)
	require.Equal(t, requester.UserID, req.RequestedBy)
	require.Nil(t, req.DecidedBy)

	stored, err := f.store.Get(context.Background(), req.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, stored.Status)
	require.Equal(t, []string{ActionRequestCreate}, f.audit.actions())
	require.Empty(t, f.cascade.deletes, "creating a request must not delete anything")
}

func TestCreateResolvesLabelSnapshot(t *testing.T) {
	f := newFixture(t)
	f.service.RegisterLabelResolver("Customer", func(_ context.Context, id string) (string, error) {
		return "Jordan Blake", nil
	})

	req, err := f.service.Create(context.Background(), requester, CreateInput{
		EntityType: "Customer",
		EntityID:   "c-1",
	})
	require.NoError(t, err)
	require.Equal(t, "Jordan Blake", req.EntityLabel)
}

func TestCreateRejectsMissingEntity(t *testing.T) {
	f := newFixture(t)
	f.service.RegisterLabelResolver("Customer", func(context.Context, string) (string, error) {
		return "", shared.ErrNotFound
	})

	_, err := f.service.Create(context.Background(), requester, CreateInput{
		EntityType: "Customer",
		EntityID:   "missing",
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateToleratesLabelLookupOutage(t *testing.T) {
	f := newFixture(t)
	f.service.RegisterLabelResolver("Customer", func(context.Context, string) (string, error) {
		return "", errors.New("connection refused")
	})

	req, err := f.service.Create(context.Background(), requester, CreateInput{
		EntityType: "Customer",
		EntityID:   "c-1",
	})
	require.NoError(t, err)
	require.Empty(t, req.EntityLabel)
}

func TestCreateRejectsProtectedAndUnknownTypes(t *testing.T) {
	f := newFixture(t)

	for _, entityType := range []string{"User", "RolePermission", "Widget"} {
		_, err := f.service.Create(context.Background(), requester, CreateInput{
			EntityType: entityType,
			EntityID:   "x-1",
		})
		require.ErrorIs(t, err, shared.ErrValidation, entityType)
	}
	require.Empty(t, f.audit.logs, "rejected requests must not be audited")
}

func TestApproveExecutesCascadeAndAudits(t *testing.T) {
	f := newFixture(t)
	req, err := f.service.Create(context.Background(), requester, CreateInput{
		EntityType: "Customer", EntityID: "c-1",
	})
	require.NoError(t, err)

	decided, err := f.service.Approve(context.Background(), approver, req.ID)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, decided.Status)
	require.NotNil(t, decided.DecidedBy)
	require.Equal(t, approver.UserID, *decided.DecidedBy)
	require.Equal(t, []string{"c-1"}, f.cascade.deletes)
	require.Equal(t, []string{ActionRequestCreate, ActionRequestApprove}, f.audit.actions())
	require.Equal(t, false, f.audit.logs[1].Details["self_approved"])
}

func TestApproveRecordsSelfApproval(t *testing.T) {
	f := newFixture(t)
	req, err := f.service.Create(context.Background(), requester, CreateInput{
		EntityType: "Customer", EntityID: "c-1",
	})
	require.NoError(t, err)

	_, err = f.service.Approve(context.Background(), requester, req.ID)
	require.NoError(t, err)
	require.Equal(t, true, f.audit.logs[1].Details["self_approved"])
}

func TestSecondDecisionConflicts(t *testing.T) {
	f := newFixture(t)
	req, err := f.service.Create(context.Background(), requester, CreateInput{
		EntityType: "Customer", EntityID: "c-1",
	})
	require.NoError(t, err)

	_, err = f.service.Approve(context.Background(), approver, req.ID)
	require.NoError(t, err)

	_, err = f.service.Approve(context.Background(), approver, req.ID)
	require.ErrorIs(t, err, shared.ErrConflict)
	_, err = f.service.Deny(context.Background(), approver, req.ID, "late")
	require.ErrorIs(t, err, shared.ErrConflict)

	require.Len(t, f.cascade.deletes, 1, "cascade must run exactly once")
}

// raceStore returns a stale pending copy from Get, simulating a concurrent
// decision landing between the read and the claim.
type raceStore struct {
	*memoryStore
}

func (s raceStore) Get(ctx context.Context, id uuid.UUID) (DeleteRequest, error) {
	req, err := s.memoryStore.Get(ctx, id)
	if err != nil {
		return DeleteRequest{}, err
	}
	req.Status = StatusPending
	req.DecidedBy = nil
	req.DecidedAt = nil
	return req, nil
}

func TestConcurrentClaimLoserNeverReachesExecutor(t *testing.T) {
	f := newFixture(t)
	req, err := f.service.Create(context.Background(), requester, CreateInput{
		EntityType: "Customer", EntityID: "c-1",
	})
	require.NoError(t, err)

	now := time.Now().UTC()
	claimed, err := f.store.MarkDecided(context.Background(), nil, req.ID, StatusDenied, approver.UserID, now)
	require.NoError(t, err)
	require.True(t, claimed)

	svc := NewService(raceStore{f.store}, f.service.exec, f.audit, f.service.runTx, f.lock, slog.Default())
	_, err = svc.Approve(context.Background(), approver, req.ID)
	require.ErrorIs(t, err, shared.ErrConflict)
	require.Empty(t, f.cascade.deletes, "claim loser must never reach the executor")

	stored, err := f.store.Get(context.Background(), req.ID)
	require.NoError(t, err)
	require.Equal(t, StatusDenied, stored.Status, "the winning decision must survive")
}

func TestApproveRollsBackWhenCascadeFails(t *testing.T) {
	f := newFixture(t)
	req, err := f.service.Create(context.Background(), requester, CreateInput{
		EntityType: "Customer", EntityID: "c-1",
	})
	require.NoError(t, err)

	f.cascade.err = errors.New("foreign key violation")
	_, err = f.service.Approve(context.Background(), approver, req.ID)
	require.ErrorIs(t, err, shared.ErrExecutionFailed)

	stored, err := f.store.Get(context.Background(), req.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, stored.Status, "failed execution must leave the request pending")

	// The request stays decidable: denial succeeds afterwards.
	f.cascade.err = nil
	decided, err := f.service.Deny(context.Background(), approver, req.ID, "target is referenced")
	require.NoError(t, err)
	require.Equal(t, StatusDenied, decided.Status)
}

func TestDenyNeverInvokesExecutor(t *testing.T) {
	f := newFixture(t)
	req, err := f.service.Create(context.Background(), requester, CreateInput{
		EntityType: "Customer", EntityID: "c-1",
	})
	require.NoError(t, err)

	decided, err := f.service.Deny(context.Background(), approver, req.ID, "not needed")
	require.NoError(t, err)
	require.Equal(t, StatusDenied, decided.Status)
	require.Empty(t, f.cascade.deletes)
	require.Equal(t, []string{ActionRequestCreate, ActionRequestDeny}, f.audit.actions())
	require.Equal(t, "not needed", f.audit.logs[1].Details["deny_reason"])
}

func TestApproveMissingRequest(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Approve(context.Background(), approver, uuid.New())
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListFiltersByStatus(t *testing.T) {
	f := newFixture(t)
	first, err := f.service.Create(context.Background(), requester, CreateInput{
		EntityType: "Customer", EntityID: "c-1",
	})
	require.NoError(t, err)
	_, err = f.service.Create(context.Background(), requester, CreateInput{
		EntityType: "Customer", EntityID: "c-2",
	})
	require.NoError(t, err)
	_, err = f.service.Deny(context.Background(), approver, first.ID, "")
	require.NoError(t, err)

	pending, err := f.service.List(context.Background(), ListFilters{Status: StatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "c-2", pending[0].EntityID)
}

func TestPurgeTransactionalCountsAndAudits(t *testing.T) {
	f := newFixture(t)

	counts, err := f.service.PurgeTransactional(context.Background(), approver)
	require.NoError(t, err)
	require.Equal(t, map[string]int64{"Customer": 4}, counts)
	require.Equal(t, []string{ActionPurgeAll}, f.audit.actions())
	require.Equal(t, 1, f.lock.acquires)
	require.Equal(t, 1, f.lock.releases)
}

func TestPurgeConflictsWhileLockHeld(t *testing.T) {
	f := newFixture(t)
	f.lock.held = true

	_, err := f.service.PurgeTransactional(context.Background(), approver)
	require.ErrorIs(t, err, shared.ErrConflict)
	require.Empty(t, f.audit.logs)
}
