package mw

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientLimiters stores a rate limiter per client IP. Controllers poll
// aggressively (heartbeat + command poll every couple of seconds), so
// limits are per-device-address, not global.
type clientLimiters struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	r        rate.Limit
	b        int
}

func newClientLimiters(r rate.Limit, b int) *clientLimiters {
	return &clientLimiters{
		limiters: make(map[string]*rate.Limiter),
		r:        r,
		b:        b,
	}
}

// get returns the limiter for an address, creating it on first sight.
func (cl *clientLimiters) get(addr string) *rate.Limiter {
	cl.mu.RLock()
	limiter, exists := cl.limiters[addr]
	cl.mu.RUnlock()
	if exists {
		return limiter
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()
	if limiter, exists = cl.limiters[addr]; exists {
		return limiter
	}
	limiter = rate.NewLimiter(cl.r, cl.b)
	cl.limiters[addr] = limiter
	return limiter
}

// RateLimiter is a middleware for IP-based rate limiting.
func RateLimiter(r rate.Limit, b int) gin.HandlerFunc {
	limiters := newClientLimiters(r, b)
	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP()).Allow() {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}
