package security

import (
	"errors"
	"sync"
	"time"
)

// ErrRateLimited is returned when a key exceeds its rate limit.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimitConfig bounds how many inline queries one user may send.
type RateLimitConfig struct {
	// QueriesPerMin is the per-user limit. Zero disables limiting.
	QueriesPerMin int `yaml:"queries_per_min"`
}

// RateLimiter implements a per-key sliding window. Each key tracks the
// timestamps of its recent events. Keys with no recent events are dropped
// on the next sweep.
type RateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	buckets map[string][]time.Time
	sweeps  int
	now     func() time.Time
}

// sweepEvery is the number of Allow calls between sweeps of idle keys.
const sweepEvery = 1024

// NewRateLimiter creates a limiter allowing limit events per window per key.
// A non-positive limit allows everything.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		window:  window,
		limit:   limit,
		buckets: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// NewQueryLimiter creates a limiter from cfg with a one minute window.
func NewQueryLimiter(cfg RateLimitConfig) *RateLimiter {
	return NewRateLimiter(cfg.QueriesPerMin, time.Minute)
}

// Allow records an event for key. It returns ErrRateLimited, without
// recording, when the key already reached the limit inside the window.
func (rl *RateLimiter) Allow(key string) error {
	if rl == nil || rl.limit <= 0 {
		return nil
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	events := evict(rl.buckets[key], now.Add(-rl.window))

	if len(events) >= rl.limit {
		rl.buckets[key] = events
		return ErrRateLimited
	}
	rl.buckets[key] = append(events, now)

	rl.sweeps++
	if rl.sweeps >= sweepEvery {
		rl.sweeps = 0
		rl.sweep(now)
	}
	return nil
}

// Keys returns the number of tracked keys.
func (rl *RateLimiter) Keys() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

func (rl *RateLimiter) sweep(now time.Time) {
	cutoff := now.Add(-rl.window)
	for key, events := range rl.buckets {
		if events = evict(events, cutoff); len(events) == 0 {
			delete(rl.buckets, key)
		} else {
			rl.buckets[key] = events
		}
	}
}

// evict drops events older than cutoff. Events are chronologically ordered.
func evict(events []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(events) && events[i].Before(cutoff) {
		i++
	}
	return events[i:]
}
