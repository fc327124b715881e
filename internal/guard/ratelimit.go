package guard

import (
	"sync"
	"time"

	"github.com/campusevents/calendar/internal/domain"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per key (client IP for logins).
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*entry
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows burst requests per key, refilled at limit per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*entry),
		limit:    rate.Every(window / time.Duration(limit)),
		burst:    limit,
		idleTTL:  window * 2,
	}
}

// Allow returns ErrRateLimited when key has exhausted its bucket.
func (rl *RateLimiter) Allow(key string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.evictIdle(now)

	e, ok := rl.limiters[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = e
	}
	e.lastSeen = now

	if !e.limiter.AllowN(now, 1) {
		return domain.ErrRateLimited("too many requests, try again later")
	}
	return nil
}

func (rl *RateLimiter) evictIdle(now time.Time) {
	for k, e := range rl.limiters {
		if now.Sub(e.lastSeen) > rl.idleTTL {
			delete(rl.limiters, k)
		}
	}
}
