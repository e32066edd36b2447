package api

import (
	"sync"

	"golang.org/x/time/rate"
)

// clientLimiter keeps one token bucket per client identity.
type clientLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newClientLimiter(perSecond float64, burst int) *clientLimiter {
	if burst <= 0 {
		burst = int(perSecond) + 1
	}
	return &clientLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
	}
}

// Allow reports whether the client may issue another request now.
func (c *clientLimiter) Allow(id string) bool {
	c.mu.Lock()
	l, ok := c.limiters[id]
	if !ok {
		l = rate.NewLimiter(c.rate, c.burst)
		c.limiters[id] = l
	}
	c.mu.Unlock()
	return l.Allow()
}
