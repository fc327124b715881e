package guard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/campusevents/calendar/internal/clock"
	"github.com/campusevents/calendar/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.NoError(t, rl.Allow("10.0.0.1"), "request %d should be allowed", i+1)
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	require.NoError(t, rl.Allow("10.0.0.1"))
	require.NoError(t, rl.Allow("10.0.0.1"))
	err := rl.Allow("10.0.0.1")

	var appErr *domain.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "RATE_LIMITED", appErr.Code)
	assert.Equal(t, 429, appErr.Status)
}

func TestRateLimiter_SeparateKeys(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	assert.NoError(t, rl.Allow("key-a"))
	assert.NoError(t, rl.Allow("key-b"))
	assert.Error(t, rl.Allow("key-a"))
}

type memAttempts struct {
	mu       sync.Mutex
	attempts []domain.LoginAttempt
	err      error
}

func (m *memAttempts) Record(_ context.Context, a domain.LoginAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	m.attempts = append(m.attempts, a)
	return nil
}

func (m *memAttempts) CountFailures(_ context.Context, username string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	n := 0
	for _, a := range m.attempts {
		if a.Username == username && !a.Success && a.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLockout_LocksAfterMaxFailures(t *testing.T) {
	store := &memAttempts{}
	l := NewLockout(store, clock.NewSystem(), discardLogger())
	ctx := context.Background()

	for i := 0; i < MaxAttempts-1; i++ {
		l.RecordAttempt(ctx, "admin", "10.0.0.1", false)
	}
	require.NoError(t, l.CheckLocked(ctx, "admin"))

	l.RecordAttempt(ctx, "admin", "10.0.0.1", false)
	err := l.CheckLocked(ctx, "admin")
	var appErr *domain.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "ACCOUNT_LOCKED", appErr.Code)

	assert.NoError(t, l.CheckLocked(ctx, "someone-else"))
}

func TestLockout_WindowExpires(t *testing.T) {
	store := &memAttempts{}
	c := clock.NewManual(time.Now())
	l := NewLockout(store, c, discardLogger())
	ctx := context.Background()

	for i := 0; i < MaxAttempts; i++ {
		l.RecordAttempt(ctx, "admin", "", false)
	}
	require.Error(t, l.CheckLocked(ctx, "admin"))

	c.Advance(LockoutWindow + time.Minute)
	assert.NoError(t, l.CheckLocked(ctx, "admin"))
}

func TestLockout_FailsOpenOnStoreError(t *testing.T) {
	store := &memAttempts{err: errors.New("db down")}
	l := NewLockout(store, clock.NewSystem(), discardLogger())

	l.RecordAttempt(context.Background(), "admin", "", false)
	assert.NoError(t, l.CheckLocked(context.Background(), "admin"))
}
