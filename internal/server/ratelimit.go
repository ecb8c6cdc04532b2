package server

import (
	"fmt"
	"sync"
	"time"
)

// RateLimiter tracks per-client request rates and daily upload volume.
type RateLimiter struct {
	mu sync.Mutex

	requestsPerMinute int
	maxBytesPerDay    int64

	clients   map[string]*clientUsage
	lastSweep time.Time
}

type clientUsage struct {
	window   time.Time // start of the current one-minute window
	requests int
	day      time.Time // midnight of the current quota day
	bytes    int64
}

// NewRateLimiter creates a limiter. Zero disables the respective limit.
func NewRateLimiter(requestsPerMinute int, maxBytesPerDay int64) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		maxBytesPerDay:    maxBytesPerDay,
		clients:           make(map[string]*clientUsage),
	}
}

// Allow records a request of size bytes from client at now, or returns a
// *RateLimitError without recording anything when a limit would be exceeded.
func (rl *RateLimiter) Allow(client string, size int64, now time.Time) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) >= time.Minute {
		rl.sweep(now)
	}

	u, ok := rl.clients[client]
	if !ok {
		u = &clientUsage{window: now, day: midnight(now)}
		rl.clients[client] = u
	}
	if now.Sub(u.window) >= time.Minute {
		u.window, u.requests = now, 0
	}
	if d := midnight(now); !d.Equal(u.day) {
		u.day, u.bytes = d, 0
	}

	if rl.requestsPerMinute > 0 && u.requests >= rl.requestsPerMinute {
		return &RateLimitError{
			Type:       "minute",
			Limit:      int64(rl.requestsPerMinute),
			RetryAfter: u.window.Add(time.Minute).Sub(now),
		}
	}
	if rl.maxBytesPerDay > 0 && u.bytes+size > rl.maxBytesPerDay {
		return &RateLimitError{
			Type:       "data",
			Limit:      rl.maxBytesPerDay,
			RetryAfter: u.day.AddDate(0, 0, 1).Sub(now),
		}
	}

	u.requests++
	u.bytes += size
	return nil
}

// sweep drops clients whose minute window and quota day have both ended.
func (rl *RateLimiter) sweep(now time.Time) {
	today := midnight(now)
	for client, u := range rl.clients {
		if now.Sub(u.window) >= time.Minute && !u.day.Equal(today) {
			delete(rl.clients, client)
		}
	}
	rl.lastSweep = now
}

// Usage returns the requests in the current window and the bytes uploaded today.
func (rl *RateLimiter) Usage(client string) (requests int, bytes int64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if u, ok := rl.clients[client]; ok {
		return u.requests, u.bytes
	}
	return 0, 0
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// RateLimitError reports which limit was hit.
type RateLimitError struct {
	Type       string // "minute" or "data"
	Limit      int64
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s (limit: %d, retry after: %v)", e.Type, e.Limit, e.RetryAfter)
}
