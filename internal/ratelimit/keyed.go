package ratelimit

import (
	"sync"
	"time"
)

// KeyedConfig configures a KeyedLimiter.
type KeyedConfig struct {
	// Name identifies this limiter in metrics.
	Name string

	// Token bucket settings.
	Burst      float64 // Maximum tokens
	RefillRate float64 // Tokens refilled per second

	// CleanupPeriod is how often idle entries are evicted. Entries idle
	// for two periods are removed.
	CleanupPeriod time.Duration

	// Metrics records dropped requests. Optional.
	Metrics MetricsRecorder
}

// MetricsRecorder counts rejected requests.
type MetricsRecorder interface {
	RecordHTTPError(errorType, module string)
}

// KeyedLimiter tracks a token bucket per key (client IP). Idle entries
// are evicted by a background loop; call Stop on shutdown.
type KeyedLimiter struct {
	mu      sync.RWMutex
	entries map[string]*Limiter
	config  KeyedConfig
	stopCh  chan struct{}
	stopped sync.Once
}

// NewKeyedLimiter creates a per-key limiter and starts its cleanup loop.
func NewKeyedLimiter(cfg KeyedConfig) *KeyedLimiter {
	kl := &KeyedLimiter{
		entries: make(map[string]*Limiter),
		config:  cfg,
		stopCh:  make(chan struct{}),
	}
	if cfg.CleanupPeriod > 0 {
		go kl.cleanupLoop()
	}
	return kl
}

// Allow reports whether a request for the key may proceed, consuming a
// token when it does. An empty key is always allowed.
func (kl *KeyedLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	limiter := kl.getOrCreate(key)
	if limiter.Allow() {
		return true
	}
	if kl.config.Metrics != nil {
		kl.config.Metrics.RecordHTTPError("rate_limited", kl.config.Name)
	}
	return false
}

// Len returns the number of tracked keys.
func (kl *KeyedLimiter) Len() int {
	kl.mu.RLock()
	defer kl.mu.RUnlock()
	return len(kl.entries)
}

// Stop terminates the cleanup loop.
func (kl *KeyedLimiter) Stop() {
	kl.stopped.Do(func() { close(kl.stopCh) })
}

func (kl *KeyedLimiter) getOrCreate(key string) *Limiter {
	kl.mu.RLock()
	limiter, ok := kl.entries[key]
	kl.mu.RUnlock()
	if ok {
		return limiter
	}

	kl.mu.Lock()
	defer kl.mu.Unlock()
	if limiter, ok = kl.entries[key]; ok {
		return limiter
	}
	limiter = NewLimiter(kl.config.Burst, kl.config.RefillRate)
	kl.entries[key] = limiter
	return limiter
}

func (kl *KeyedLimiter) cleanupLoop() {
	ticker := time.NewTicker(kl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-kl.stopCh:
			return
		case <-ticker.C:
			kl.evictIdle()
		}
	}
}

func (kl *KeyedLimiter) evictIdle() {
	cutoff := time.Now().Add(-2 * kl.config.CleanupPeriod)

	kl.mu.Lock()
	defer kl.mu.Unlock()
	for key, limiter := range kl.entries {
		if limiter.LastActive().Before(cutoff) {
			delete(kl.entries, key)
		}
	}
}
