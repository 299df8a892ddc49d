package http

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestRateLimiterAllowWithinLimit(t *testing.T) {
	rl := newRateLimiter(3)
	defer rl.stopCleanup()

	metrics := &securityMetrics{}
	for i := 0; i < 3; i++ {
		if !rl.allow("1.2.3.4", metrics) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.allow("1.2.3.4", metrics) {
		t.Fatal("request over the limit should be denied")
	}
	if got := atomic.LoadInt64(&metrics.rateLimitHits); got != 1 {
		t.Errorf("rateLimitHits = %d, want 1", got)
	}
}

func TestRateLimiterTracksClientsSeparately(t *testing.T) {
	rl := newRateLimiter(1)
	defer rl.stopCleanup()

	if !rl.allow("1.2.3.4", nil) {
		t.Fatal("first client should be allowed")
	}
	if !rl.allow("5.6.7.8", nil) {
		t.Fatal("second client has its own budget")
	}
	if rl.allow("1.2.3.4", nil) {
		t.Fatal("first client is over its budget")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	// Built by hand with a short window and no cleanup goroutine.
	rl := &rateLimiter{
		limit:   1,
		window:  10 * time.Millisecond,
		clients: make(map[string]*clientWindow),
	}

	if !rl.allow("1.2.3.4", nil) {
		t.Fatal("first request should be allowed")
	}
	if rl.allow("1.2.3.4", nil) {
		t.Fatal("second request in the same window should be denied")
	}

	time.Sleep(15 * time.Millisecond)
	if !rl.allow("1.2.3.4", nil) {
		t.Fatal("request in a fresh window should be allowed")
	}
}

func TestRateLimiterDefaultLimit(t *testing.T) {
	rl := newRateLimiter(0)
	defer rl.stopCleanup()

	if rl.limit != defaultPostRateLimit {
		t.Errorf("limit = %d, want %d", rl.limit, defaultPostRateLimit)
	}
}

func TestRateLimiterDropIdleClients(t *testing.T) {
	rl := newRateLimiter(5)
	defer rl.stopCleanup()

	rl.allow("1.2.3.4", nil)

	rl.mu.Lock()
	rl.clients["1.2.3.4"].lastSeen = time.Now().Add(-11 * rl.window)
	rl.mu.Unlock()

	rl.dropIdleClients()

	rl.mu.Lock()
	_, ok := rl.clients["1.2.3.4"]
	rl.mu.Unlock()
	if ok {
		t.Error("idle client entry should have been dropped")
	}
}

func TestRateLimiterStopCleanupTwice(t *testing.T) {
	rl := newRateLimiter(1)
	rl.stopCleanup()
	rl.stopCleanup()
}
