package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientLimiters hands out one token bucket per client IP. Stale buckets
// are pruned opportunistically during lookups, so no background goroutine
// is needed.
type clientLimiters struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	idle    time.Duration

	lastPrune time.Time
}

type bucket struct {
	lim     *rate.Limiter
	touched time.Time
}

func newClientLimiters(rps float64, burst int, idle time.Duration) *clientLimiters {
	return &clientLimiters{
		buckets:   make(map[string]*bucket),
		limit:     rate.Limit(rps),
		burst:     burst,
		idle:      idle,
		lastPrune: time.Now(),
	}
}

func (cl *clientLimiters) allow(key string) bool {
	cl.mu.Lock()

	now := time.Now()
	if now.Sub(cl.lastPrune) > cl.idle {
		for k, b := range cl.buckets {
			if now.Sub(b.touched) > cl.idle {
				delete(cl.buckets, k)
			}
		}
		cl.lastPrune = now
	}

	b, ok := cl.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(cl.limit, cl.burst)}
		cl.buckets[key] = b
	}
	b.touched = now

	cl.mu.Unlock()

	// rate.Limiter is safe for concurrent use, no need to hold the map lock.
	return b.lim.Allow()
}

// RateLimitMiddleware throttles requests per client IP.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	limiters := newClientLimiters(rps, burst, 3*time.Minute)

	return func(c *gin.Context) {
		if !limiters.allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
