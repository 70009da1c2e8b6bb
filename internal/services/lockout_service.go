package services

import (
	"context"
	"log/slog"

	"github.com/mfukui/lockgate/internal/cache"
	"github.com/mfukui/lockgate/internal/config"
)

// BanRepository defines the counter operations the accountant needs
type BanRepository interface {
	ApplyUserOutcome(ctx context.Context, userID int64, succeeded bool) error
	ApplyIPOutcome(ctx context.Context, ip string, succeeded bool) error
	GetUserFailures(ctx context.Context, userID int64) (int, error)
	GetIPFailures(ctx context.Context, ip string) (int, error)
	BannedIPs(ctx context.Context, threshold int) ([]string, error)
	LockedUsers(ctx context.Context, threshold int) ([]string, error)
}

// LockoutService is the ban/lock accountant: it maintains the per-account
// and per-IP failure counters and answers threshold questions.
type LockoutService struct {
	repo   BanRepository
	ref    *cache.Reference
	cfg    config.SecurityConfig
	logger *slog.Logger
}

// NewLockoutService creates a new LockoutService
func NewLockoutService(repo BanRepository, ref *cache.Reference, cfg config.SecurityConfig, logger *slog.Logger) *LockoutService {
	return &LockoutService{
		repo:   repo,
		ref:    ref,
		cfg:    cfg,
		logger: logger,
	}
}

// IsUserLocked reports whether the account's failure count has reached the
// lock threshold. Lock counters change on every attempt, so this always
// queries the store.
func (s *LockoutService) IsUserLocked(ctx context.Context, userID int64) (bool, error) {
	failures, err := s.repo.GetUserFailures(ctx, userID)
	if err != nil {
		return false, err
	}
	return failures >= s.cfg.UserLockThreshold, nil
}

// IsIPBanned reports whether the address's failure count has reached the
// ban threshold. The cached counter is a fast path in the banned direction
// only: when it says "not yet banned" the store is re-queried and the cache
// refreshed, so a stale cache can never unban an address.
func (s *LockoutService) IsIPBanned(ctx context.Context, ip string) (bool, error) {
	if s.ref.IPFailures(ip) >= s.cfg.IPBanThreshold {
		return true, nil
	}

	failures, err := s.repo.GetIPFailures(ctx, ip)
	if err != nil {
		return false, err
	}

	s.ref.SetIPFailures(ip, failures)
	return failures >= s.cfg.IPBanThreshold, nil
}

// ApplyOutcome updates both counters for a processed attempt: reset on
// success, increment on failure. When no account was resolved only the IP
// counter is touched. Counter writes are best-effort relative to the login
// decision; failures are logged and swallowed.
func (s *LockoutService) ApplyOutcome(ctx context.Context, userID *int64, ip string, succeeded bool) {
	if userID != nil {
		if err := s.repo.ApplyUserOutcome(ctx, *userID, succeeded); err != nil {
			s.logger.Error("failed to update user failure counter",
				slog.Int64("user_id", *userID),
				slog.Any("error", err))
		}
	}

	if err := s.repo.ApplyIPOutcome(ctx, ip, succeeded); err != nil {
		s.logger.Error("failed to update ip failure counter",
			slog.String("ip", ip),
			slog.Any("error", err))
	}
}
