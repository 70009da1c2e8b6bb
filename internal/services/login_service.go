package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/mfukui/lockgate/internal/cache"
	"github.com/mfukui/lockgate/internal/models"
	pkgauth "github.com/mfukui/lockgate/pkg/auth"
	pkglogger "github.com/mfukui/lockgate/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// AttemptRepository is the append-only attempt ledger
type AttemptRepository interface {
	Record(ctx context.Context, attempt *models.LoginAttempt) error
}

// LastLoginRepository tracks the most recent successful login per user
type LastLoginRepository interface {
	Replace(ctx context.Context, userID int64, at time.Time, ip string) (*models.LastLogin, error)
}

// TimingDelayer pads failed attempts to a uniform minimum response time
type TimingDelayer interface {
	WaitFrom(startTime time.Time, succeeded bool)
}

// LoginResult is the decision handed back to the HTTP layer.
type LoginResult struct {
	Accepted      bool
	Reason        models.Reason
	User          *models.User
	PreviousLogin *models.LastLogin
}

// LoginService orchestrates the attempt-validation workflow.
type LoginService struct {
	ref        *cache.Reference
	lockout    *LockoutService
	attempts   AttemptRepository
	lastLogins LastLoginRepository
	timing     TimingDelayer
	logger     *slog.Logger
	audit      *pkglogger.AuditLogger
}

// NewLoginService creates a new LoginService
func NewLoginService(
	ref *cache.Reference,
	lockout *LockoutService,
	attempts AttemptRepository,
	lastLogins LastLoginRepository,
	timing TimingDelayer,
	logger *slog.Logger,
	audit *pkglogger.AuditLogger,
) *LoginService {
	return &LoginService{
		ref:        ref,
		lockout:    lockout,
		attempts:   attempts,
		lastLogins: lastLogins,
		timing:     timing,
		logger:     logger,
		audit:      audit,
	}
}

// Attempt validates one login submission and returns the decision with its
// reason code. Reason priority is ban, then lock, then credentials: a
// banned address is rejected before even a correct password is evaluated.
//
// A store error during the ban/lock checks fails the attempt closed: the
// caller gets an error, never a success.
func (s *LoginService) Attempt(ctx context.Context, login, password, ip string) (*LoginResult, error) {
	start := time.Now()

	user := s.ref.UserByLogin(login)

	var banned, locked bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		banned, err = s.lockout.IsIPBanned(gctx, ip)
		return err
	})
	if user != nil {
		g.Go(func() error {
			var err error
			locked, err = s.lockout.IsUserLocked(gctx, user.ID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("lockout check failed",
			slog.String("ip", ip),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	reason := models.ReasonNone
	switch {
	case banned:
		reason = models.ReasonBanned
	case locked:
		reason = models.ReasonLocked
	case user == nil:
		reason = models.ReasonWrongLogin
	case !pkgauth.VerifyPassword(user.PasswordHash, password, user.Salt):
		reason = models.ReasonWrongPassword
	}
	succeeded := reason == models.ReasonNone

	s.recordOutcome(ctx, user, login, ip, succeeded, reason)

	result := &LoginResult{
		Accepted: succeeded,
		Reason:   reason,
		User:     user,
	}

	if succeeded {
		previous, err := s.lastLogins.Replace(ctx, user.ID, time.Now(), ip)
		if err != nil {
			// Bookkeeping only; the accept decision stands.
			s.logger.Error("failed to replace last login",
				slog.Int64("user_id", user.ID),
				slog.Any("error", err))
		} else {
			result.PreviousLogin = previous
		}
	}

	if s.timing != nil {
		s.timing.WaitFrom(start, succeeded)
	}

	return result, nil
}

// recordOutcome appends the ledger row and applies both failure counters.
// Both writes are best-effort: an audit-trail failure never blocks the
// credential decision already computed.
func (s *LoginService) recordOutcome(ctx context.Context, user *models.User, login, ip string, succeeded bool, reason models.Reason) {
	var userID *int64
	if user != nil {
		userID = &user.ID
	}

	attempt := &models.LoginAttempt{
		CreatedAt: time.Now(),
		UserID:    userID,
		Login:     login,
		IP:        ip,
		Succeeded: succeeded,
	}
	if err := s.attempts.Record(ctx, attempt); err != nil {
		s.logger.Error("failed to record login attempt",
			slog.String("ip", ip),
			slog.Any("error", err))
	}

	s.lockout.ApplyOutcome(ctx, userID, ip, succeeded)

	s.audit.LogAttempt(pkglogger.AttemptEvent{
		Login:     login,
		UserID:    userID,
		IP:        ip,
		Succeeded: succeeded,
		Reason:    string(reason),
	})
}
