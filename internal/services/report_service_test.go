package services

import (
	"context"
	"testing"

	"github.com/mfukui/lockgate/internal/config"
	"github.com/mfukui/lockgate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReports_AgreeUnderNormalOperation(t *testing.T) {
	cfg := config.SecurityConfig{UserLockThreshold: 3, IPBanThreshold: 4}
	env := newLoginTestEnv([]*models.User{
		testUser(1, "alice", "secretpass"),
		testUser(2, "bob", "secretpass"),
	}, cfg)
	ctx := context.Background()

	// alice: locked by 3 straight failures.
	for i := 0; i < 3; i++ {
		_, err := env.service.Attempt(ctx, "alice", "wrongpass", "1.1.1.1")
		require.NoError(t, err)
	}
	// bob: one success then two failures, stays below the lock threshold.
	_, err := env.service.Attempt(ctx, "bob", "secretpass", "2.2.2.2")
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := env.service.Attempt(ctx, "bob", "wrongpass", "2.2.2.2")
		require.NoError(t, err)
	}
	// 8.8.8.8: banned by 4 failures across unknown logins.
	for i := 0; i < 4; i++ {
		_, err := env.service.Attempt(ctx, "nouser", "whatever", "8.8.8.8")
		require.NoError(t, err)
	}

	reports := NewReportService(env.bans, env.attempts, cfg)

	fast, err := reports.FromCounters(ctx)
	require.NoError(t, err)
	audit, err := reports.FromLedger(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"8.8.8.8"}, fast.BannedIPs)
	assert.Equal(t, []string{"alice"}, fast.LockedUsers)
	assert.Equal(t, fast.BannedIPs, audit.BannedIPs, "read models agree absent tampering")
	assert.Equal(t, fast.LockedUsers, audit.LockedUsers)
}

func TestReports_TrailingFailuresAfterSuccess(t *testing.T) {
	cfg := config.SecurityConfig{UserLockThreshold: 3, IPBanThreshold: 3}
	env := newLoginTestEnv([]*models.User{testUser(1, "alice", "secretpass")}, cfg)
	ctx := context.Background()

	// A success followed by threshold failures: the ledger derivation counts
	// only the run after the last success, which still qualifies.
	_, err := env.service.Attempt(ctx, "alice", "secretpass", "1.1.1.1")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := env.service.Attempt(ctx, "alice", "wrongpass", "1.1.1.1")
		require.NoError(t, err)
	}

	reports := NewReportService(env.bans, env.attempts, cfg)

	audit, err := reports.FromLedger(ctx)
	require.NoError(t, err)
	fast, err := reports.FromCounters(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"1.1.1.1"}, audit.BannedIPs)
	assert.Equal(t, []string{"alice"}, audit.LockedUsers)
	assert.Equal(t, fast.BannedIPs, audit.BannedIPs)
	assert.Equal(t, fast.LockedUsers, audit.LockedUsers)
}

func TestReports_DivergeAfterOutOfBandCounterReset(t *testing.T) {
	cfg := config.SecurityConfig{UserLockThreshold: 3, IPBanThreshold: 10}
	env := newLoginTestEnv([]*models.User{testUser(1, "alice", "secretpass")}, cfg)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := env.service.Attempt(ctx, "alice", "wrongpass", "1.1.1.1")
		require.NoError(t, err)
	}

	// Manual intervention wipes the counter without a ledgered success.
	env.bans.userFailures[1] = 0

	reports := NewReportService(env.bans, env.attempts, cfg)

	fast, err := reports.FromCounters(ctx)
	require.NoError(t, err)
	audit, err := reports.FromLedger(ctx)
	require.NoError(t, err)

	// The divergence is intentional: the audit variant preserves the
	// ledger's verdict, the fast variant reflects the tampered counter.
	assert.Empty(t, fast.LockedUsers)
	assert.Equal(t, []string{"alice"}, audit.LockedUsers)
}
