package embed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	domerrors "github.com/coursecompass/advisor-go/internal/errors"
)

// DefaultGeminiModel is the embedding model used when none is configured.
const DefaultGeminiModel = "gemini-embedding-001"

// GeminiEmbedder generates embeddings via the Gemini API.
type GeminiEmbedder struct {
	client     *genai.Client
	model      string
	maxRetries int
	metrics    MetricsRecorder
}

// NewGeminiEmbedder creates a Gemini embedding client.
func NewGeminiEmbedder(ctx context.Context, apiKey, model string, maxRetries int) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, errors.New("embed: gemini API key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("embed: create gemini client: %w", err)
	}

	return &GeminiEmbedder{
		client:     client,
		model:      model,
		maxRetries: maxRetries,
	}, nil
}

// SetMetrics sets the metrics recorder for API call monitoring.
func (e *GeminiEmbedder) SetMetrics(recorder MetricsRecorder) {
	e.metrics = recorder
}

// Provider returns the provider name for logging and metrics.
func (e *GeminiEmbedder) Provider() string {
	return "gemini"
}

// Embed generates one vector per input text, preserving order.
func (e *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	start := time.Now()
	vectors, err := retryCall(ctx, e.maxRetries, func() ([][]float32, bool, error) {
		return e.embedOnce(ctx, texts)
	})
	if err != nil {
		e.record("error", start, len(texts))
		return nil, domerrors.NewUpstreamError("gemini", "embed", err)
	}

	e.record("success", start, len(texts))
	return vectors, nil
}

func (e *GeminiEmbedder) embedOnce(ctx context.Context, texts []string) ([][]float32, bool, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, isRetryableGemini(err), fmt.Errorf("embed content: %w", err)
	}

	if len(result.Embeddings) != len(texts) {
		return nil, false, fmt.Errorf("embed content: got %d vectors for %d inputs", len(result.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for i, embedding := range result.Embeddings {
		vectors[i] = embedding.Values
	}
	return vectors, false, nil
}

func isRetryableGemini(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429 || apiErr.Code >= 500
	}
	// Network errors are retryable
	return true
}

func (e *GeminiEmbedder) record(status string, start time.Time, batchSize int) {
	if e.metrics != nil {
		e.metrics.RecordEmbeddingRequest(e.Provider(), status, time.Since(start).Seconds(), batchSize)
	}
}
