package integration

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfukui/lockgate/internal/cache"
	"github.com/mfukui/lockgate/internal/config"
	"github.com/mfukui/lockgate/internal/models"
	"github.com/mfukui/lockgate/internal/repositories"
	"github.com/mfukui/lockgate/internal/services"
	pkglogger "github.com/mfukui/lockgate/pkg/logger"
)

type loginStack struct {
	users      *repositories.UserRepository
	bans       *repositories.BanRepository
	attempts   *repositories.LoginAttemptRepository
	lastLogins *repositories.LastLoginRepository
	ref        *cache.Reference
	login      *services.LoginService
	reports    *services.ReportService
}

func buildLoginStack(ctx context.Context, t *testing.T, testDB *TestDB, cfg config.SecurityConfig, seed map[string]string) *loginStack {
	t.Helper()

	stack := &loginStack{
		users:      repositories.NewUserRepository(testDB.DB),
		bans:       repositories.NewBanRepository(testDB.DB),
		attempts:   repositories.NewLoginAttemptRepository(testDB.DB),
		lastLogins: repositories.NewLastLoginRepository(testDB.DB),
	}

	for login, password := range seed {
		_, err := SeedUser(ctx, stack.users, login, password)
		require.NoError(t, err)
	}

	users, err := stack.users.ListAll(ctx)
	require.NoError(t, err)
	counters, err := stack.bans.ListIPFailures(ctx)
	require.NoError(t, err)
	stack.ref = cache.NewReference(users, counters)

	logger := slog.Default()
	lockout := services.NewLockoutService(stack.bans, stack.ref, cfg, logger)
	stack.login = services.NewLoginService(stack.ref, lockout, stack.attempts, stack.lastLogins, nil, logger, pkglogger.NewAuditLogger(logger))
	stack.reports = services.NewReportService(stack.bans, stack.attempts, cfg)
	return stack
}

func TestLoginFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	testDB, err := SetupTestDatabase(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { testDB.Teardown(context.Background()) })

	cfg := config.SecurityConfig{UserLockThreshold: 3, IPBanThreshold: 10}

	t.Run("lock after repeated failures then reset on success", func(t *testing.T) {
		require.NoError(t, testDB.CleanupTables(ctx))
		stack := buildLoginStack(ctx, t, testDB, cfg, map[string]string{"alice": "secretpass"})

		for i := 0; i < 2; i++ {
			result, err := stack.login.Attempt(ctx, "alice", "wrongpass", "1.2.3.4")
			require.NoError(t, err)
			assert.Equal(t, models.ReasonWrongPassword, result.Reason)
		}

		// Still below the threshold, the correct password gets in and
		// resets both counters.
		result, err := stack.login.Attempt(ctx, "alice", "secretpass", "1.2.3.4")
		require.NoError(t, err)
		require.True(t, result.Accepted)

		for i := 0; i < 3; i++ {
			_, err := stack.login.Attempt(ctx, "alice", "wrongpass", "1.2.3.4")
			require.NoError(t, err)
		}

		result, err = stack.login.Attempt(ctx, "alice", "secretpass", "1.2.3.4")
		require.NoError(t, err)
		assert.False(t, result.Accepted)
		assert.Equal(t, models.ReasonLocked, result.Reason)

		// Every attempt above landed in the ledger.
		count, err := stack.attempts.CountForIP(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.Equal(t, 7, count)
	})

	t.Run("ip ban rejects valid credentials", func(t *testing.T) {
		require.NoError(t, testDB.CleanupTables(ctx))
		stack := buildLoginStack(ctx, t, testDB, cfg, map[string]string{"bob": "secretpass"})

		for i := 0; i < 10; i++ {
			result, err := stack.login.Attempt(ctx, "ghost", "whatever", "9.9.9.9")
			require.NoError(t, err)
			assert.Equal(t, models.ReasonWrongLogin, result.Reason)
		}

		result, err := stack.login.Attempt(ctx, "bob", "secretpass", "9.9.9.9")
		require.NoError(t, err)
		assert.False(t, result.Accepted)
		assert.Equal(t, models.ReasonBanned, result.Reason)
	})

	t.Run("previous last login round trip", func(t *testing.T) {
		require.NoError(t, testDB.CleanupTables(ctx))
		stack := buildLoginStack(ctx, t, testDB, cfg, map[string]string{"carol": "secretpass"})

		first, err := stack.login.Attempt(ctx, "carol", "secretpass", "1.1.1.1")
		require.NoError(t, err)
		assert.Nil(t, first.PreviousLogin)

		second, err := stack.login.Attempt(ctx, "carol", "secretpass", "2.2.2.2")
		require.NoError(t, err)
		require.NotNil(t, second.PreviousLogin)
		assert.Equal(t, "1.1.1.1", second.PreviousLogin.IP)
	})

	t.Run("report variants agree against real sql", func(t *testing.T) {
		require.NoError(t, testDB.CleanupTables(ctx))
		stack := buildLoginStack(ctx, t, testDB, cfg, map[string]string{"dave": "secretpass"})

		for i := 0; i < 3; i++ {
			_, err := stack.login.Attempt(ctx, "dave", "wrongpass", "3.3.3.3")
			require.NoError(t, err)
		}
		for i := 0; i < 10; i++ {
			_, err := stack.login.Attempt(ctx, "ghost", "whatever", "8.8.8.8")
			require.NoError(t, err)
		}

		fast, err := stack.reports.FromCounters(ctx)
		require.NoError(t, err)
		audit, err := stack.reports.FromLedger(ctx)
		require.NoError(t, err)

		assert.Equal(t, []string{"8.8.8.8"}, fast.BannedIPs)
		assert.Equal(t, []string{"dave"}, fast.LockedUsers)
		assert.Equal(t, fast.BannedIPs, audit.BannedIPs)
		assert.Equal(t, fast.LockedUsers, audit.LockedUsers)
	})
}
