package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	_ = os.Setenv(EnvOpenAIAPIKey, "test_key")
	defer func() { _ = os.Unsetenv(EnvOpenAIAPIKey) }()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check defaults
	if cfg.Port != "10000" {
		t.Errorf("Expected default port '10000', got '%s'", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.Embedding.Provider != ProviderOpenAI {
		t.Errorf("Expected default provider 'openai', got '%s'", cfg.Embedding.Provider)
	}
	if cfg.Embedding.OpenAIEmbedModel != "text-embedding-3-small" {
		t.Errorf("Expected default embed model, got '%s'", cfg.Embedding.OpenAIEmbedModel)
	}
	if cfg.RankTopK != 5 {
		t.Errorf("Expected default top-k 5, got %d", cfg.RankTopK)
	}
	if cfg.CurrentTerm != "Autumn" {
		t.Errorf("Expected default term 'Autumn', got '%s'", cfg.CurrentTerm)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.ShutdownTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	_ = os.Setenv(EnvOpenAIAPIKey, "test_key")
	_ = os.Setenv(EnvPort, "8080")
	_ = os.Setenv(EnvRankTopK, "10")
	_ = os.Setenv(EnvEmbedTimeout, "5s")
	defer func() {
		_ = os.Unsetenv(EnvOpenAIAPIKey)
		_ = os.Unsetenv(EnvPort)
		_ = os.Unsetenv(EnvRankTopK)
		_ = os.Unsetenv(EnvEmbedTimeout)
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.RankTopK != 10 {
		t.Errorf("Expected top-k 10, got %d", cfg.RankTopK)
	}
	if cfg.Embedding.Timeout != 5*time.Second {
		t.Errorf("Expected embed timeout 5s, got %v", cfg.Embedding.Timeout)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errContains string
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:        "missing port",
			mutate:      func(c *Config) { c.Port = "" },
			wantErr:     true,
			errContains: EnvPort,
		},
		{
			name:        "unknown embedding provider",
			mutate:      func(c *Config) { c.Embedding.Provider = "cohere" },
			wantErr:     true,
			errContains: EnvEmbeddingProvider,
		},
		{
			name:        "gemini provider without key",
			mutate:      func(c *Config) { c.Embedding.Provider = ProviderGemini },
			wantErr:     true,
			errContains: EnvGeminiAPIKey,
		},
		{
			name: "bucket enabled without credentials",
			mutate: func(c *Config) {
				c.RefData.BucketEnabled = true
				c.RefData.Endpoint = "https://storage.example.com"
				c.RefData.BucketName = "refdata"
			},
			wantErr:     true,
			errContains: EnvRefDataAccessKeyID,
		},
		{
			name:        "sentry enabled without DSN",
			mutate:      func(c *Config) { c.SentryEnabled = true },
			wantErr:     true,
			errContains: EnvSentryDSN,
		},
		{
			name:        "non-positive top-k",
			mutate:      func(c *Config) { c.RankTopK = 0 },
			wantErr:     true,
			errContains: EnvRankTopK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Port:        "10000",
				LogLevel:    "info",
				DataDir:     "/data",
				CurrentTerm: "Autumn",
				CurrentYear: 2025,
				RankTopK:    5,
				Embedding: EmbeddingConfig{
					Provider:     ProviderOpenAI,
					OpenAIAPIKey: "k",
					MaxRetries:   3,
					Timeout:      30 * time.Second,
				},
				RefData: RefDataConfig{Dir: "./refdata"},
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Validate() = nil, want error")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not mention %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestSQLitePath(t *testing.T) {
	cfg := &Config{DataDir: "/data"}
	if got := cfg.SQLitePath(); got != "/data/catalog.db" {
		t.Errorf("SQLitePath() = %q", got)
	}
}
