package deletion

import (
	"context"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/einstein4784/combined2026-sub002/internal/shared"
)

func TestTierProtection(t *testing.T) {
	require.False(t, TierTransactional.Protected())
	require.False(t, TierWorkflow.Protected())
	require.False(t, TierFinancial.Protected())
	require.True(t, TierConfiguration.Protected())
	require.True(t, TierSystem.Protected())
}

func TestClassifierDeletable(t *testing.T) {
	c := NewClassifier()
	c.Register("Customer", TierTransactional)
	c.Register("User", TierSystem)

	require.True(t, c.Deletable("Customer"))
	require.False(t, c.Deletable("User"))
	require.False(t, c.Deletable("Unknown"))

	tier, ok := c.TierOf("User")
	require.True(t, ok)
	require.Equal(t, TierSystem, tier)
	require.Len(t, c.Classifications(), 2)
}

func TestExecuteRefusesProtectedTiers(t *testing.T) {
	exec := NewExecutor(slog.Default())
	exec.RegisterProtected("User", TierSystem)
	exec.RegisterProtected("RolePermission", TierConfiguration)

	err := exec.Execute(context.Background(), nil, "User", "1")
	require.ErrorIs(t, err, shared.ErrForbidden)
	err = exec.Execute(context.Background(), nil, "RolePermission", "admin")
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestExecuteUnknownEntityType(t *testing.T) {
	exec := NewExecutor(slog.Default())
	err := exec.Execute(context.Background(), nil, "Widget", "1")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestExecutePassesNotFoundThrough(t *testing.T) {
	exec := NewExecutor(slog.Default())
	exec.Register("Customer", &stubCascade{tier: TierTransactional, err: shared.ErrNotFound})

	err := exec.Execute(context.Background(), nil, "Customer", "missing")
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.NotErrorIs(t, err, shared.ErrExecutionFailed)
}

func TestRegisterProtectedPanicsOnDeletableTier(t *testing.T) {
	exec := NewExecutor(slog.Default())
	require.Panics(t, func() {
		exec.RegisterProtected("Customer", TierTransactional)
	})
}

// bareCascade deletes but never purges.
type bareCascade struct{ tier Tier }

func (c bareCascade) Tier() Tier { return c.tier }

func (c bareCascade) CascadeDelete(context.Context, pgx.Tx, string) error { return nil }

func TestPurgeSkipsNonTransactionalAndNonPurgers(t *testing.T) {
	exec := NewExecutor(slog.Default())
	trans := &stubCascade{tier: TierTransactional, purged: 3}
	fin := &stubCascade{tier: TierFinancial, purged: 99}
	exec.Register("Customer", trans)
	exec.Register("FinancialPeriod", fin)
	exec.Register("ChatThread", bareCascade{tier: TierTransactional})

	counts, err := exec.PurgeTransactional(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, map[string]int64{"Customer": 3}, counts)
}
