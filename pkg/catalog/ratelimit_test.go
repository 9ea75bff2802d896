package catalog

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// newTestLimiter returns a limiter driven by a manual clock.
func newTestLimiter(limit int, window time.Duration) (*RateLimiter, *time.Time) {
	clock := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(limit, window)
	limiter.now = func() time.Time { return clock }
	return limiter, &clock
}

func TestRateLimiterDefaults(t *testing.T) {
	limiter := NewRateLimiter(0, 0)
	if limiter.Limit() != DefaultRateLimit {
		t.Errorf("Limit: got %d, want %d", limiter.Limit(), DefaultRateLimit)
	}
	if limiter.Window() != DefaultRateLimitWindow {
		t.Errorf("Window: got %s, want %s", limiter.Window(), DefaultRateLimitWindow)
	}
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	limiter, clock := newTestLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !limiter.Allow("ric") {
			t.Fatalf("request %d rejected inside budget", i+1)
		}
		*clock = clock.Add(10 * time.Second)
	}

	ok, retryAfter := limiter.Acquire("ric")
	if ok {
		t.Fatal("fourth request inside the window was allowed")
	}
	// First request was at 0s, now is 30s.
	if retryAfter != 30*time.Second {
		t.Errorf("retryAfter: got %s, want 30s", retryAfter)
	}
	if limiter.Remaining("ric") != 0 {
		t.Errorf("Remaining: got %d, want 0", limiter.Remaining("ric"))
	}

	*clock = clock.Add(30 * time.Second)
	if !limiter.Allow("ric") {
		t.Error("request after the oldest left the window was rejected")
	}
	if limiter.Allow("ric") {
		t.Error("window should be full again")
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(1, time.Minute)
	if !limiter.Allow("ric") {
		t.Fatal("first ric request rejected")
	}
	if limiter.Allow("ric") {
		t.Error("second ric request allowed")
	}
	if !limiter.Allow("crawford") {
		t.Error("crawford request blocked by ric budget")
	}
	if limiter.Remaining("rpc") != 1 {
		t.Errorf("Remaining for unused key: got %d, want 1", limiter.Remaining("rpc"))
	}
}

func TestRateLimiterConcurrentAcquire(t *testing.T) {
	limiter, _ := newTestLimiter(25, time.Minute)

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow("ric") {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := allowed.Load(); got != 25 {
		t.Errorf("allowed: got %d, want exactly 25", got)
	}
}
