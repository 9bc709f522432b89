package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kyiku/hiddenword-back/internal/response"
)

// RateLimiter counts requests per client in fixed windows. Scene generation
// is CPU bound, so the server puts one in front of every generating route.
type RateLimiter struct {
	requests map[string]*window
	mu       sync.Mutex
	limit    int
	period   time.Duration
	now      func() time.Time
	stop     chan struct{}
	once     sync.Once
}

type window struct {
	count   int
	resetAt time.Time
}

// NewRateLimiter creates a RateLimiter allowing limit requests per period.
// Call Stop to end its cleanup goroutine.
func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string]*window),
		limit:    limit,
		period:   period,
		now:      time.Now,
		stop:     make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// cleanup periodically removes expired entries.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.period)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for key, w := range rl.requests {
				if now.After(w.resetAt) {
					delete(rl.requests, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Allow reports whether another request from key fits the current window.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.requests[key]
	if !ok || now.After(w.resetAt) {
		rl.requests[key] = &window{count: 1, resetAt: now.Add(rl.period)}
		return true
	}

	if w.count >= rl.limit {
		return false
	}

	w.count++
	return true
}

// Len returns the number of tracked clients.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.requests)
}

// Middleware returns an echo middleware keyed by the client's real IP.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.Allow(c.RealIP()) {
				return response.ErrorWithCode(c, http.StatusTooManyRequests, response.CodeRateLimited,
					"リクエストが多すぎます。しばらく待ってから再試行してください。")
			}
			return next(c)
		}
	}
}

// RateLimitMiddleware returns a rate limiting middleware.
func RateLimitMiddleware(limit int, period time.Duration) echo.MiddlewareFunc {
	return NewRateLimiter(limit, period).Middleware()
}
