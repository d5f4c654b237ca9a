// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// the server, the embedding providers, and the reference-data snapshot.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Embedding provider names accepted by EnvEmbeddingProvider.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration
	ServerName      string
	InstanceID      string

	// Data Configuration
	DataDir string // Data directory for the SQLite course catalog

	// Academic calendar. Course offerings are evaluated against this
	// term when deciding whether a course is currently running.
	CurrentTerm string
	CurrentYear int

	// Embedding Configuration (embedded)
	Embedding EmbeddingConfig

	// Reference Data Configuration (embedded)
	RefData RefDataConfig

	// Ranking Configuration
	RankTopK int // Default number of results returned by similarity ranking

	// Request Rate Limiting
	RateLimitEnabled bool
	RateLimitBurst   float64 // Maximum burst of requests per client
	RateLimitRefill  float64 // Requests refilled per second per client

	// Sentry Configuration
	SentryEnabled          bool
	SentryDSN              string
	SentryEnvironment      string
	SentryRelease          string
	SentrySampleRate       float64
	SentryTracesSampleRate float64

	// Better Stack Configuration
	BetterStackEnabled  bool
	BetterStackToken    string
	BetterStackEndpoint string

	// Metrics Authentication
	MetricsAuthEnabled bool
	MetricsUsername    string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword    string // Password for /metrics endpoint Basic Auth (empty = no auth)
}

// EmbeddingConfig holds embedding provider configuration
type EmbeddingConfig struct {
	Provider string // "openai" or "gemini"

	OpenAIAPIKey     string
	OpenAIBaseURL    string // Optional override for OpenAI-compatible gateways
	OpenAIEmbedModel string

	GeminiAPIKey     string
	GeminiEmbedModel string

	MaxRetries int
	Timeout    time.Duration
}

// RefDataConfig holds reference-data source configuration.
// Tables load from a local directory by default; when the bucket is
// enabled, a zstd-compressed snapshot is fetched from S3-compatible
// object storage instead.
type RefDataConfig struct {
	Dir string // Local directory with per-department JSON tables

	BucketEnabled   bool
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	SnapshotKey     string
	PollInterval    time.Duration
	RequestTimeout  time.Duration
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		// Server Configuration
		Port:            getEnv(EnvPort, "10000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),
		ServerName:      getEnv(EnvServerName, "course-advisor"),
		InstanceID:      getEnv(EnvInstanceID, ""),

		// Data Configuration
		DataDir: getEnv(EnvDataDir, getDefaultDataDir()),

		// Academic calendar
		CurrentTerm: getEnv(EnvCurrentTerm, "Autumn"),
		CurrentYear: getIntEnv(EnvCurrentYear, 2025),

		// Embedding Configuration
		Embedding: EmbeddingConfig{
			Provider:         getEnv(EnvEmbeddingProvider, ProviderOpenAI),
			OpenAIAPIKey:     getEnv(EnvOpenAIAPIKey, ""),
			OpenAIBaseURL:    getEnv(EnvOpenAIBaseURL, ""),
			OpenAIEmbedModel: getEnv(EnvOpenAIEmbedModel, "text-embedding-3-small"),
			GeminiAPIKey:     getEnv(EnvGeminiAPIKey, ""),
			GeminiEmbedModel: getEnv(EnvGeminiEmbedModel, "gemini-embedding-001"),
			MaxRetries:       getIntEnv(EnvEmbedMaxRetries, 3),
			Timeout:          getDurationEnv(EnvEmbedTimeout, EmbeddingRequest),
		},

		// Reference Data Configuration
		RefData: RefDataConfig{
			Dir:             getEnv(EnvRefDataDir, "./refdata"),
			BucketEnabled:   getBoolEnv(EnvRefDataBucketEnabled, false),
			Endpoint:        getEnv(EnvRefDataEndpoint, ""),
			AccessKeyID:     getEnv(EnvRefDataAccessKeyID, ""),
			SecretAccessKey: getEnv(EnvRefDataSecretKey, ""),
			BucketName:      getEnv(EnvRefDataBucketName, ""),
			SnapshotKey:     getEnv(EnvRefDataSnapshotKey, "refdata/snapshot.json.zst"),
			PollInterval:    getDurationEnv(EnvRefDataPollInterval, RefDataPollInterval),
			RequestTimeout:  getDurationEnv(EnvRefDataRequestTimeout, RefDataRequest),
		},

		// Ranking Configuration
		RankTopK: getIntEnv(EnvRankTopK, 5),

		// Request Rate Limiting
		RateLimitEnabled: getBoolEnv(EnvRateLimitEnabled, true),
		RateLimitBurst:   getFloatEnv(EnvRateLimitBurst, 20),
		RateLimitRefill:  getFloatEnv(EnvRateLimitRefill, 0.5),

		// Sentry Configuration
		SentryEnabled:          getBoolEnv(EnvSentryEnabled, false),
		SentryDSN:              getEnv(EnvSentryDSN, ""),
		SentryEnvironment:      getEnv(EnvSentryEnvironment, "production"),
		SentryRelease:          getEnv(EnvSentryRelease, ""),
		SentrySampleRate:       getFloatEnv(EnvSentrySampleRate, 1.0),
		SentryTracesSampleRate: getFloatEnv(EnvSentryTracesSampleRate, 0.1),

		// Better Stack Configuration
		BetterStackEnabled:  getBoolEnv(EnvBetterStackEnabled, false),
		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, ""),

		// Metrics Authentication
		MetricsAuthEnabled: getBoolEnv(EnvMetricsAuthEnabled, false),
		MetricsUsername:    getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword:    getEnv(EnvMetricsPassword, ""),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New(EnvPort+" is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New(EnvDataDir+" is required"))
	}
	if c.CurrentTerm == "" {
		errs = append(errs, errors.New(EnvCurrentTerm+" is required"))
	}
	if c.CurrentYear <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", EnvCurrentYear, c.CurrentYear))
	}
	if c.RankTopK <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", EnvRankTopK, c.RankTopK))
	}
	if err := c.Embedding.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("embedding config: %w", err))
	}
	if err := c.RefData.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("refdata config: %w", err))
	}
	if c.RateLimitEnabled {
		if c.RateLimitBurst <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvRateLimitBurst, c.RateLimitBurst))
		}
		if c.RateLimitRefill <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvRateLimitRefill, c.RateLimitRefill))
		}
	}
	if c.SentryEnabled && c.SentryDSN == "" {
		errs = append(errs, errors.New(EnvSentryDSN+" is required when Sentry is enabled"))
	}
	if c.BetterStackEnabled && c.BetterStackToken == "" {
		errs = append(errs, errors.New(EnvBetterStackToken+" is required when Better Stack is enabled"))
	}
	if c.MetricsAuthEnabled && c.MetricsPassword == "" {
		errs = append(errs, errors.New(EnvMetricsPassword+" is required when metrics auth is enabled"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks embedding provider settings.
func (e *EmbeddingConfig) Validate() error {
	var errs []error

	switch e.Provider {
	case ProviderOpenAI:
		if e.OpenAIAPIKey == "" {
			errs = append(errs, errors.New(EnvOpenAIAPIKey+" is required for the openai provider"))
		}
	case ProviderGemini:
		if e.GeminiAPIKey == "" {
			errs = append(errs, errors.New(EnvGeminiAPIKey+" is required for the gemini provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("%s must be %q or %q, got %q", EnvEmbeddingProvider, ProviderOpenAI, ProviderGemini, e.Provider))
	}
	if e.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("%s cannot be negative, got %d", EnvEmbedMaxRetries, e.MaxRetries))
	}
	if e.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvEmbedTimeout, e.Timeout))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks reference-data source settings.
func (r *RefDataConfig) Validate() error {
	if !r.BucketEnabled {
		if r.Dir == "" {
			return errors.New(EnvRefDataDir + " is required when the bucket source is disabled")
		}
		return nil
	}

	var errs []error
	if r.Endpoint == "" {
		errs = append(errs, errors.New(EnvRefDataEndpoint+" is required when the bucket source is enabled"))
	}
	if r.AccessKeyID == "" {
		errs = append(errs, errors.New(EnvRefDataAccessKeyID+" is required when the bucket source is enabled"))
	}
	if r.SecretAccessKey == "" {
		errs = append(errs, errors.New(EnvRefDataSecretKey+" is required when the bucket source is enabled"))
	}
	if r.BucketName == "" {
		errs = append(errs, errors.New(EnvRefDataBucketName+" is required when the bucket source is enabled"))
	}
	if r.SnapshotKey == "" {
		errs = append(errs, errors.New(EnvRefDataSnapshotKey+" is required when the bucket source is enabled"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}

// SQLitePath returns the full path to the SQLite catalog database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "catalog.db")
}
