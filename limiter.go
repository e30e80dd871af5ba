package vibeflow

import (
	"sync"
	"time"
)

// RateLimiter is a per-IP sliding-window limiter for the contact form.
// The clock is injected so behavior is deterministic under test; with the
// real clock it remains correct only within a single process.
type RateLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	max      int
	window   time.Duration
	now      func() time.Time
}

// NewRateLimiter creates a limiter allowing max hits per window per key.
// A nil clock defaults to time.Now.
func NewRateLimiter(max int, window time.Duration, clock func() time.Time) *RateLimiter {
	if clock == nil {
		clock = time.Now
	}
	return &RateLimiter{
		attempts: make(map[string][]time.Time),
		max:      max,
		window:   window,
		now:      clock,
	}
}

// Allow reports whether the key may proceed, recording the hit if so.
// Expired hits are pruned on every call, so the map stays bounded by
// active keys without a background sweeper.
func (l *RateLimiter) Allow(key string) bool {
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	hits := l.attempts[key]
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= l.max {
		l.attempts[key] = kept
		return false
	}
	kept = append(kept, now)
	l.attempts[key] = kept
	return true
}
