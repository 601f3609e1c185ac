package mw

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"karaoke/internal/errors"
)

const minLimiterIdle = time.Minute

// ipLimiters keeps one token bucket per client address. Buckets left idle
// longer than their refill time are full again, so they are evicted.
type ipLimiters struct {
	mu    sync.Mutex
	items *gocache.Cache
	r     rate.Limit
	b     int
}

func newIPLimiters(r rate.Limit, b int, idle time.Duration) *ipLimiters {
	return &ipLimiters{
		items: gocache.New(idle, idle),
		r:     r,
		b:     b,
	}
}

// refillTime is how long an empty bucket takes to hold b tokens again.
func refillTime(r rate.Limit, b int) time.Duration {
	d := time.Duration(float64(b) / float64(r) * float64(time.Second))
	if d < minLimiterIdle {
		return minLimiterIdle
	}
	return d
}

// get returns the bucket for ip and restarts its idle timer.
func (l *ipLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	var limiter *rate.Limiter
	if v, ok := l.items.Get(ip); ok {
		limiter = v.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(l.r, l.b)
	}
	l.items.SetDefault(ip, limiter)
	return limiter
}

// RateLimiter is a middleware for IP-based rate limiting. A non-positive
// rate disables it.
func RateLimiter(r rate.Limit, b int) echo.MiddlewareFunc {
	if r <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	limiters := newIPLimiters(r, b, refillTime(r, b))
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiters.get(c.RealIP()).Allow() {
				return echo.NewHTTPError(http.StatusTooManyRequests, errors.ErrorResponse{
					Error: "too many requests",
					Code:  "RATE_LIMITED",
				})
			}
			return next(c)
		}
	}
}
