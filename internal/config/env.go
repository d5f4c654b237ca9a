// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Server
	EnvPort            = "ADVISOR_PORT"
	EnvLogLevel        = "ADVISOR_LOG_LEVEL"
	EnvShutdownTimeout = "ADVISOR_SHUTDOWN_TIMEOUT"
	EnvServerName      = "ADVISOR_SERVER_NAME"
	EnvInstanceID      = "ADVISOR_INSTANCE_ID"

	// Data
	EnvDataDir = "ADVISOR_DATA_DIR"

	// Academic calendar
	EnvCurrentTerm = "ADVISOR_CURRENT_TERM"
	EnvCurrentYear = "ADVISOR_CURRENT_YEAR"

	// Embeddings
	EnvEmbeddingProvider = "ADVISOR_EMBEDDING_PROVIDER"
	EnvOpenAIAPIKey      = "ADVISOR_OPENAI_API_KEY"
	EnvOpenAIBaseURL     = "ADVISOR_OPENAI_BASE_URL"
	EnvOpenAIEmbedModel  = "ADVISOR_OPENAI_EMBED_MODEL"
	EnvGeminiAPIKey      = "ADVISOR_GEMINI_API_KEY"
	EnvGeminiEmbedModel  = "ADVISOR_GEMINI_EMBED_MODEL"
	EnvEmbedMaxRetries   = "ADVISOR_EMBED_MAX_RETRIES"
	EnvEmbedTimeout      = "ADVISOR_EMBED_TIMEOUT"

	// Reference data
	EnvRefDataDir            = "ADVISOR_REFDATA_DIR"
	EnvRefDataBucketEnabled  = "ADVISOR_REFDATA_BUCKET_ENABLED"
	EnvRefDataEndpoint       = "ADVISOR_REFDATA_ENDPOINT"
	EnvRefDataAccessKeyID    = "ADVISOR_REFDATA_ACCESS_KEY_ID"
	EnvRefDataSecretKey      = "ADVISOR_REFDATA_SECRET_ACCESS_KEY"
	EnvRefDataBucketName     = "ADVISOR_REFDATA_BUCKET_NAME"
	EnvRefDataSnapshotKey    = "ADVISOR_REFDATA_SNAPSHOT_KEY"
	EnvRefDataPollInterval   = "ADVISOR_REFDATA_POLL_INTERVAL"
	EnvRefDataRequestTimeout = "ADVISOR_REFDATA_REQUEST_TIMEOUT"

	// Ranking
	EnvRankTopK = "ADVISOR_RANK_TOP_K"

	// Request rate limiting
	EnvRateLimitEnabled = "ADVISOR_RATE_LIMIT_ENABLED"
	EnvRateLimitBurst   = "ADVISOR_RATE_LIMIT_BURST"
	EnvRateLimitRefill  = "ADVISOR_RATE_LIMIT_REFILL"

	// Sentry Feature
	EnvSentryEnabled          = "ADVISOR_SENTRY_ENABLED"
	EnvSentryDSN              = "ADVISOR_SENTRY_DSN"
	EnvSentryEnvironment      = "ADVISOR_SENTRY_ENVIRONMENT"
	EnvSentryRelease          = "ADVISOR_SENTRY_RELEASE"
	EnvSentrySampleRate       = "ADVISOR_SENTRY_SAMPLE_RATE"
	EnvSentryTracesSampleRate = "ADVISOR_SENTRY_TRACES_SAMPLE_RATE"

	// Better Stack Feature
	EnvBetterStackEnabled  = "ADVISOR_BETTERSTACK_ENABLED"
	EnvBetterStackToken    = "ADVISOR_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "ADVISOR_BETTERSTACK_ENDPOINT"

	// Metrics Auth Feature
	EnvMetricsAuthEnabled = "ADVISOR_METRICS_AUTH_ENABLED"
	EnvMetricsUsername    = "ADVISOR_METRICS_USERNAME"
	EnvMetricsPassword    = "ADVISOR_METRICS_PASSWORD"
)
