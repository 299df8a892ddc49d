package http

import (
	"sync"
	"sync/atomic"
	"time"
)

// defaultPostRateLimit is the per-IP budget of mutating requests per window.
// Every POST here can hold a model call open for 60-120s, so the budget is
// deliberately small; deployments raise it via RATE_LIMIT_PER_MINUTE.
const defaultPostRateLimit = 30

const rateLimitWindow = time.Minute

// rateLimiter counts mutating requests per client IP in fixed windows.
type rateLimiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	clients  map[string]*clientWindow
	stop     chan struct{}
	stopOnce sync.Once
}

type clientWindow struct {
	start    time.Time
	count    int
	lastSeen time.Time
}

func newRateLimiter(limit int) *rateLimiter {
	if limit <= 0 {
		limit = defaultPostRateLimit
	}
	rl := &rateLimiter{
		limit:   limit,
		window:  rateLimitWindow,
		clients: make(map[string]*clientWindow),
		stop:    make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// cleanupLoop drops client entries that have been idle for several windows.
func (rl *rateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.dropIdleClients()
		case <-rl.stop:
			return
		}
	}
}

func (rl *rateLimiter) dropIdleClients() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * rl.window)
	for ip, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// stopCleanup terminates the cleanup goroutine. Safe to call more than once.
func (rl *rateLimiter) stopCleanup() {
	rl.stopOnce.Do(func() {
		close(rl.stop)
	})
}

// allow reports whether a request from the given IP fits in the current
// window. A fresh window starts once the previous one has fully elapsed.
func (rl *rateLimiter) allow(clientIP string, metrics *securityMetrics) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	c, ok := rl.clients[clientIP]
	if !ok || now.Sub(c.start) >= rl.window {
		rl.clients[clientIP] = &clientWindow{start: now, count: 1, lastSeen: now}
		return true
	}

	c.count++
	c.lastSeen = now
	if c.count > rl.limit {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}
	return true
}
