package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long a client IP may stay silent before its limiter is dropped.
const limiterIdleTTL = 3 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps one token bucket per client IP. Idle buckets are swept
// at most once per ttl, on the request path, so no background goroutine is needed.
type ipRateLimiter struct {
	mu        sync.Mutex
	rps       int
	ttl       time.Duration
	now       func() time.Time
	clients   map[string]*clientLimiter
	lastSweep time.Time
}

func newIPRateLimiter(rps int, ttl time.Duration, now func() time.Time) *ipRateLimiter {
	return &ipRateLimiter{
		rps:     rps,
		ttl:     ttl,
		now:     now,
		clients: make(map[string]*clientLimiter),
	}
}

func (l *ipRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.ttl {
		l.sweep(now)
	}

	c, ok := l.clients[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(l.rps), l.rps)}
		l.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

func (l *ipRateLimiter) sweep(now time.Time) {
	for ip, c := range l.clients {
		if now.Sub(c.lastSeen) >= l.ttl {
			delete(l.clients, ip)
		}
	}
	l.lastSweep = now
}

func (l *ipRateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// RateLimitMiddleware limits each client IP to rps requests per second with a
// burst of the same size.
func RateLimitMiddleware(rps int) gin.HandlerFunc {
	limiter := newIPRateLimiter(rps, limiterIdleTTL, time.Now)

	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
