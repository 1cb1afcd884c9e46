package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const retryAfterHeader = "Retry-After"

// IPRateLimiter hands out one token bucket per client IP.
type IPRateLimiter struct {
	mu    sync.Mutex
	ips   map[string]*rate.Limiter
	limit rate.Limit
	burst int
}

// NewIPRateLimiter creates a limiter allowing perMinute requests per client
// with the given burst.
func NewIPRateLimiter(perMinute, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		ips:   make(map[string]*rate.Limiter),
		limit: rate.Every(time.Minute / time.Duration(perMinute)),
		burst: burst,
	}
}

// Prune drops every bucket that has refilled completely by now. A full bucket
// behaves exactly like a fresh one, so pruning never changes a client's limit.
// Returns the number of buckets removed.
func (l *IPRateLimiter) Prune(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for ip, limiter := range l.ips {
		if limiter.TokensAt(now) >= float64(l.burst) {
			delete(l.ips, ip)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked clients.
func (l *IPRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ips)
}

// Limiter returns the bucket for ip, creating it on first use.
func (l *IPRateLimiter) Limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.ips[ip]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.ips[ip] = limiter
	}
	return limiter
}

// RateLimit rejects requests from clients that exhausted their bucket and
// tells them, in whole seconds, when to retry. onLimit writes the rejection
// response.
func RateLimit(limiter *IPRateLimiter, onLimit gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		r := limiter.Limiter(c.ClientIP()).ReserveN(now, 1)
		if delay := r.DelayFrom(now); !r.OK() || delay > 0 {
			r.CancelAt(now)
			if r.OK() {
				c.Header(retryAfterHeader, strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			}
			onLimit(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
