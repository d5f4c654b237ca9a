package embed

import (
	"context"
	"fmt"

	"github.com/coursecompass/advisor-go/internal/config"
)

// NewFromConfig creates the configured embedding provider.
func NewFromConfig(ctx context.Context, cfg config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIEmbedModel, cfg.MaxRetries)
	case config.ProviderGemini:
		return NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.GeminiEmbedModel, cfg.MaxRetries)
	default:
		return nil, fmt.Errorf("embed: unknown provider %q", cfg.Provider)
	}
}
