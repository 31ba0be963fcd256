package httpapi

import (
	"sync"
	"time"
)

// RateLimiter caps requests per client key over a fixed window. The window
// starts at a key's first request and the count resets once it has elapsed.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     int
	window    time.Duration
	now       func() time.Time
	lastSweep time.Time
}

type visitor struct {
	count       int
	windowStart time.Time
}

// NewRateLimiter allows maxRequests per window per key. Non-positive values
// fall back to 5 per minute.
func NewRateLimiter(maxRequests int, window time.Duration, now func() time.Time) *RateLimiter {
	if maxRequests <= 0 {
		maxRequests = 5
	}
	if window <= 0 {
		window = time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    maxRequests,
		window:   window,
		now:      now,
	}
}

// Allow counts a request for key. When the key is over its cap it reports
// false along with the time left until its window resets.
func (l *RateLimiter) Allow(key string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)
	v, ok := l.visitors[key]
	if !ok || now.Sub(v.windowStart) >= l.window {
		v = &visitor{windowStart: now}
		l.visitors[key] = v
	}
	if v.count >= l.limit {
		return false, v.windowStart.Add(l.window).Sub(now)
	}
	v.count++
	return true, 0
}

// sweep drops keys whose window has already elapsed.
func (l *RateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	for k, v := range l.visitors {
		if now.Sub(v.windowStart) >= l.window {
			delete(l.visitors, k)
		}
	}
	l.lastSweep = now
}

func (l *RateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}
