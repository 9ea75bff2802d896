package catalog

import (
	"sync"
	"time"
)

// Default rate limit: 30 requests per system per minute.
const (
	DefaultRateLimit       = 30
	DefaultRateLimitWindow = time.Minute
)

// RateLimiter is a sliding-window limiter keyed by catalog system. Each
// system may make at most limit requests in any window-long interval.
// Check-and-record is atomic. Thread-safe for concurrent use.
type RateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	hits   map[string][]time.Time
	now    func() time.Time
}

// NewRateLimiter creates a limiter. Non-positive arguments select the defaults.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	if window <= 0 {
		window = DefaultRateLimitWindow
	}
	return &RateLimiter{
		limit:  limit,
		window: window,
		hits:   make(map[string][]time.Time),
		now:    time.Now,
	}
}

// Limit returns the number of requests allowed per window.
func (limiter *RateLimiter) Limit() int {
	return limiter.limit
}

// Window returns the sliding window length.
func (limiter *RateLimiter) Window() time.Duration {
	return limiter.window
}

// Acquire records a request for key if the window has room. When it does
// not, retryAfter is the time until the oldest request leaves the window.
func (limiter *RateLimiter) Acquire(key string) (ok bool, retryAfter time.Duration) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	now := limiter.now()
	recent := limiter.prune(key, now)
	if len(recent) >= limiter.limit {
		return false, recent[0].Add(limiter.window).Sub(now)
	}
	limiter.hits[key] = append(recent, now)
	return true, 0
}

// Allow is Acquire without the retry hint.
func (limiter *RateLimiter) Allow(key string) bool {
	ok, _ := limiter.Acquire(key)
	return ok
}

// Remaining returns how many requests key may still make in the current window.
func (limiter *RateLimiter) Remaining(key string) int {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	return limiter.limit - len(limiter.prune(key, limiter.now()))
}

// prune drops timestamps that have left the window. Callers hold mu.
func (limiter *RateLimiter) prune(key string, now time.Time) []time.Time {
	hits := limiter.hits[key]
	cutoff := now.Add(-limiter.window)
	firstLive := 0
	for firstLive < len(hits) && !hits[firstLive].After(cutoff) {
		firstLive++
	}
	if firstLive == len(hits) {
		delete(limiter.hits, key)
		return nil
	}
	recent := hits[firstLive:]
	limiter.hits[key] = recent
	return recent
}
