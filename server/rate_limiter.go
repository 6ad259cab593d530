package server

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterIdleTimeout is how long an IP may stay quiet before its limiter is forgotten
const limiterIdleTimeout = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps one token bucket per client IP
type ipRateLimiter struct {
	limit     rate.Limit
	burst     int
	nowFunc   func() time.Time
	lock      sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
}

func newIPRateLimiter(limit rate.Limit, burst int, nowFunc func() time.Time) *ipRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &ipRateLimiter{
		limit:   limit,
		burst:   burst,
		nowFunc: nowFunc,
		clients: make(map[string]*clientLimiter),
	}
}

func (l *ipRateLimiter) Allow(ip string) bool {
	l.lock.Lock()
	defer l.lock.Unlock()

	now := l.nowFunc()
	l.sweep(now)

	c, ok := l.clients[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// RetryAfter is the time one token takes to refill
func (l *ipRateLimiter) RetryAfter() time.Duration {
	if l.limit <= 0 {
		return limiterIdleTimeout
	}
	return time.Duration(float64(time.Second) / float64(l.limit))
}

func (l *ipRateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < limiterIdleTimeout {
		return
	}
	l.lastSweep = now
	for ip, c := range l.clients {
		if now.Sub(c.lastSeen) > limiterIdleTimeout {
			delete(l.clients, ip)
		}
	}
}

func (l *ipRateLimiter) size() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return len(l.clients)
}
