// Package ratelimit provides token bucket rate limiting for the tool
// API, tracked per client.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a token bucket. Tokens refill continuously at refillRate
// per second up to burst.
type Limiter struct {
	mu         sync.Mutex
	tokens     float64
	burst      float64
	refillRate float64
	lastRefill time.Time
}

// NewLimiter creates a full bucket.
func NewLimiter(burst, refillRate float64) *Limiter {
	return &Limiter{
		tokens:     burst,
		burst:      burst,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow consumes one token if available.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	if l.tokens < 1 {
		return false
	}
	l.tokens--
	return true
}

// LastActive returns the time of the last refill, used for idle
// eviction.
func (l *Limiter) LastActive() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastRefill
}

func (l *Limiter) refill() {
	now := time.Now()
	elapsed := now.Sub(l.lastRefill).Seconds()
	l.tokens += elapsed * l.refillRate
	if l.tokens > l.burst {
		l.tokens = l.burst
	}
	l.lastRefill = now
}
