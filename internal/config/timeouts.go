// Package config provides centralized timeout constants for the application.
//
// These values are tuned based on:
//   - Embedding API response times (OpenAI and Gemini typically answer in 1-5s)
//   - SQLite performance characteristics (WAL mode, busy timeout)
//   - Object storage round trips for reference-data snapshots
package config

import "time"

// HTTP server timeouts
const (
	// ServerHTTPRead is the HTTP server read timeout.
	// Advisor requests carry small JSON payloads.
	ServerHTTPRead = 10 * time.Second

	// ServerHTTPWrite is the HTTP server write timeout.
	// Must accommodate a full similarity ranking pass, which includes
	// one batched embedding call plus scoring.
	ServerHTTPWrite = 65 * time.Second

	// ServerHTTPIdle is the HTTP server idle timeout for keep-alive connections.
	ServerHTTPIdle = 120 * time.Second
)

// Embedding timeouts
const (
	// EmbeddingRequest is the timeout for a single batched embedding call.
	// Covers retry attempts with exponential backoff inside the client.
	EmbeddingRequest = 30 * time.Second

	// EmbeddingRetryInitial is the initial delay before retrying a failed
	// embedding call. Doubles per attempt with jitter.
	EmbeddingRetryInitial = 1 * time.Second
)

// Database timeouts
const (
	// DatabaseBusyTimeout is SQLite busy_timeout pragma value.
	// Handles concurrent write contention during catalog refresh.
	DatabaseBusyTimeout = 30 * time.Second

	// DatabaseConnMaxLifetime is the maximum lifetime of database connections.
	// Prevents stale connections and allows connection pool refresh.
	DatabaseConnMaxLifetime = time.Hour

	// DatabaseSlowQuery is the threshold above which queries are logged
	// with a warning.
	DatabaseSlowQuery = 100 * time.Millisecond
)

// Reference data
const (
	// RefDataRequest is the timeout for fetching a reference-data snapshot
	// from object storage.
	RefDataRequest = 30 * time.Second

	// RefDataPollInterval is how often the snapshot is checked for updates.
	RefDataPollInterval = 6 * time.Hour
)

// Background job intervals
const (
	// MetricsUpdateInterval is how often catalog size metrics are updated.
	MetricsUpdateInterval = 5 * time.Minute

	// RateLimiterCleanupInterval is how often idle per-client limiters are
	// evicted.
	RateLimiterCleanupInterval = 5 * time.Minute
)

// Startup
const (
	// ReadinessGracePeriod is how long /readyz keeps reporting not-ready
	// while the initial reference-data load runs. After this the service
	// reports ready regardless, so orchestrators stop recycling it.
	ReadinessGracePeriod = 2 * time.Minute
)

// Graceful shutdown
const (
	// GracefulShutdown is the timeout for graceful server shutdown.
	// Allows in-flight requests to complete before forceful termination.
	GracefulShutdown = 30 * time.Second
)
