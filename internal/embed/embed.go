// Package embed provides embedding provider clients. Both providers
// implement the Embedder interface: one vector per input text, order
// preserved, transient failures retried with exponential backoff.
package embed

import (
	"context"
	"math/rand"
	"time"
)

// Retry configuration for transient errors (429, 500+)
const (
	defaultMaxRetries    = 3
	defaultInitialDelay  = 1 * time.Second
	defaultBackoffFactor = 2.0
	defaultJitterFactor  = 0.25
)

// Embedder generates embedding vectors for a batch of texts.
// Implementations return exactly one vector per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Provider() string
}

// MetricsRecorder records embedding API calls. Optional.
type MetricsRecorder interface {
	RecordEmbeddingRequest(provider, status string, duration float64, batchSize int)
}

// retryCall runs fn with exponential backoff on retryable errors.
// fn returns (result, retryable, error).
func retryCall[T any](ctx context.Context, maxRetries int, fn func() (T, bool, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)
	delay := defaultInitialDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		result, retryable, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !retryable || attempt == maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(applyJitter(delay)):
		}
		delay = time.Duration(float64(delay) * defaultBackoffFactor)
	}

	return zero, lastErr
}

// applyJitter randomizes a delay by ±25% to avoid thundering herds.
func applyJitter(d time.Duration) time.Duration {
	jitter := 1 + defaultJitterFactor*(2*rand.Float64()-1) //nolint:gosec // Jitter does not need crypto randomness
	return time.Duration(float64(d) * jitter)
}
