package embed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	domerrors "github.com/coursecompass/advisor-go/internal/errors"
)

// DefaultOpenAIModel is the embedding model used when none is configured.
const DefaultOpenAIModel = "text-embedding-3-small"

// OpenAIEmbedder generates embeddings via the OpenAI API or any
// OpenAI-compatible gateway.
type OpenAIEmbedder struct {
	client     openai.Client
	model      string
	maxRetries int
	metrics    MetricsRecorder
}

// NewOpenAIEmbedder creates an OpenAI embedding client.
// baseURL is optional and overrides the default endpoint.
func NewOpenAIEmbedder(apiKey, baseURL, model string, maxRetries int) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, errors.New("embed: openai API key is required")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAIEmbedder{
		client:     openai.NewClient(opts...),
		model:      model,
		maxRetries: maxRetries,
	}, nil
}

// SetMetrics sets the metrics recorder for API call monitoring.
func (e *OpenAIEmbedder) SetMetrics(recorder MetricsRecorder) {
	e.metrics = recorder
}

// Provider returns the provider name for logging and metrics.
func (e *OpenAIEmbedder) Provider() string {
	return "openai"
}

// Embed generates one vector per input text, preserving order.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	start := time.Now()
	vectors, err := retryCall(ctx, e.maxRetries, func() ([][]float32, bool, error) {
		return e.embedOnce(ctx, texts)
	})
	if err != nil {
		e.record("error", start, len(texts))
		return nil, domerrors.NewUpstreamError("openai", "embed", err)
	}

	e.record("success", start, len(texts))
	return vectors, nil
}

func (e *OpenAIEmbedder) embedOnce(ctx context.Context, texts []string) ([][]float32, bool, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	})
	if err != nil {
		return nil, isRetryableOpenAI(err), fmt.Errorf("embeddings request: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, false, fmt.Errorf("embeddings response: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		i := int(item.Index)
		if i < 0 || i >= len(texts) {
			return nil, false, fmt.Errorf("embeddings response: index %d out of range", i)
		}
		vec := make([]float32, len(item.Embedding))
		for j, v := range item.Embedding {
			vec[j] = float32(v)
		}
		vectors[i] = vec
	}
	return vectors, false, nil
}

func isRetryableOpenAI(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	// Network errors are retryable
	return true
}

func (e *OpenAIEmbedder) record(status string, start time.Time, batchSize int) {
	if e.metrics != nil {
		e.metrics.RecordEmbeddingRequest(e.Provider(), status, time.Since(start).Seconds(), batchSize)
	}
}
