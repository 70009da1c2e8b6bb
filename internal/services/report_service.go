package services

import (
	"context"

	"github.com/mfukui/lockgate/internal/config"
	"golang.org/x/sync/errgroup"
)

// LedgerReportRepository provides the audit-grade report queries derived
// from the full attempt ledger
type LedgerReportRepository interface {
	BannedIPsFromLedger(ctx context.Context, threshold int) ([]string, error)
	LockedUsersFromLedger(ctx context.Context, threshold int) ([]string, error)
}

// Report is the externally observable report shape.
type Report struct {
	BannedIPs   []string `json:"banned_ips"`
	LockedUsers []string `json:"locked_users"`
}

// ReportService produces the ban/lock lists in two read models: a fast
// counter-based one and a ledger-derived one recomputed from first
// principles. Under normal operation the two agree; they diverge only when
// counters were reset out of band, which is exactly what the audit variant
// exists to surface.
type ReportService struct {
	bans   BanRepository
	ledger LedgerReportRepository
	cfg    config.SecurityConfig
}

// NewReportService creates a new ReportService
func NewReportService(bans BanRepository, ledger LedgerReportRepository, cfg config.SecurityConfig) *ReportService {
	return &ReportService{
		bans:   bans,
		ledger: ledger,
		cfg:    cfg,
	}
}

// FromCounters filters the current counter tables by threshold.
func (s *ReportService) FromCounters(ctx context.Context) (*Report, error) {
	report := &Report{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ips, err := s.bans.BannedIPs(gctx, s.cfg.IPBanThreshold)
		report.BannedIPs = ips
		return err
	})
	g.Go(func() error {
		users, err := s.bans.LockedUsers(gctx, s.cfg.UserLockThreshold)
		report.LockedUsers = users
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return report, nil
}

// FromLedger recomputes both lists from the full attempt ledger: an entity
// qualifies if it never succeeded and reached the threshold, or if its run
// of failures after the last success reached the threshold.
func (s *ReportService) FromLedger(ctx context.Context) (*Report, error) {
	report := &Report{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ips, err := s.ledger.BannedIPsFromLedger(gctx, s.cfg.IPBanThreshold)
		report.BannedIPs = ips
		return err
	})
	g.Go(func() error {
		users, err := s.ledger.LockedUsersFromLedger(gctx, s.cfg.UserLockThreshold)
		report.LockedUsers = users
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return report, nil
}
