package ratelimit

import "testing"

func TestKeyedLimiterIsolatesKeys(t *testing.T) {
	t.Parallel()

	kl := NewKeyedLimiter(KeyedConfig{Name: "api", Burst: 1, RefillRate: 0.001})
	defer kl.Stop()

	if !kl.Allow("10.0.0.1") {
		t.Fatal("Allow() = false on first request")
	}
	if kl.Allow("10.0.0.1") {
		t.Error("Allow() = true after key exhausted its burst")
	}
	if !kl.Allow("10.0.0.2") {
		t.Error("Allow() = false for an unrelated key")
	}
	if kl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", kl.Len())
	}
}

func TestKeyedLimiterEmptyKey(t *testing.T) {
	t.Parallel()

	kl := NewKeyedLimiter(KeyedConfig{Name: "api", Burst: 1, RefillRate: 0.001})
	defer kl.Stop()

	for range 5 {
		if !kl.Allow("") {
			t.Fatal("Allow(\"\") = false, empty keys must pass through")
		}
	}
	if kl.Len() != 0 {
		t.Errorf("Len() = %d, empty key must not be tracked", kl.Len())
	}
}

func TestKeyedLimiterStopIdempotent(t *testing.T) {
	t.Parallel()

	kl := NewKeyedLimiter(KeyedConfig{Name: "api", Burst: 1, RefillRate: 1, CleanupPeriod: 1})
	kl.Stop()
	kl.Stop()
}
