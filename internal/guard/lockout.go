package guard

import (
	"context"
	"log/slog"
	"time"

	"github.com/campusevents/calendar/internal/clock"
	"github.com/campusevents/calendar/internal/domain"
	"github.com/campusevents/calendar/internal/metrics"
	"github.com/campusevents/calendar/internal/repository"
)

const (
	MaxAttempts   = 5
	LockoutWindow = 15 * time.Minute
)

// Lockout blocks a username after repeated failed logins.
type Lockout struct {
	attempts repository.LoginAttemptRepository
	clock    clock.Clock
	logger   *slog.Logger
}

// NewLockout creates a Lockout backed by the login_attempts table.
func NewLockout(attempts repository.LoginAttemptRepository, clk clock.Clock, logger *slog.Logger) *Lockout {
	return &Lockout{attempts: attempts, clock: clk, logger: logger}
}

// RecordAttempt stores a login attempt. Failures to record are logged, not returned.
func (l *Lockout) RecordAttempt(ctx context.Context, username, ip string, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	metrics.LoginAttempts.WithLabelValues(outcome).Inc()

	err := l.attempts.Record(ctx, domain.LoginAttempt{
		Username:  username,
		IPAddress: ip,
		Success:   success,
		CreatedAt: l.clock.Now(),
	})
	if err != nil {
		l.logger.Warn("record login attempt failed", "error", err)
	}
}

// CheckLocked returns ErrAccountLocked if username has >= MaxAttempts failed
// logins within the lockout window.
func (l *Lockout) CheckLocked(ctx context.Context, username string) error {
	count, err := l.attempts.CountFailures(ctx, username, l.clock.Now().Add(-LockoutWindow))
	if err != nil {
		l.logger.Warn("lockout check failed", "error", err)
		return nil // fail open: a store outage must not block logins
	}
	if count >= MaxAttempts {
		return domain.ErrAccountLocked("too many failed login attempts, try again later")
	}
	return nil
}
