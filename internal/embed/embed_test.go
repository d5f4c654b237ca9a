package embed

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryCallSucceedsAfterTransientFailure(t *testing.T) {
	t.Parallel()

	attempts := 0
	result, err := retryCall(context.Background(), 3, func() (int, bool, error) {
		attempts++
		if attempts < 3 {
			return 0, true, errors.New("transient")
		}
		return 42, false, nil
	})
	if err != nil {
		t.Fatalf("retryCall() failed: %v", err)
	}
	if result != 42 {
		t.Errorf("result = %d, want 42", result)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryCallStopsOnNonRetryable(t *testing.T) {
	t.Parallel()

	attempts := 0
	wantErr := errors.New("bad request")
	_, err := retryCall(context.Background(), 5, func() (int, bool, error) {
		attempts++
		return 0, false, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("retryCall() error = %v, want %v", err, wantErr)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 for non-retryable error", attempts)
	}
}

func TestRetryCallExhaustsRetries(t *testing.T) {
	t.Parallel()

	attempts := 0
	_, err := retryCall(context.Background(), 2, func() (int, bool, error) {
		attempts++
		return 0, true, errors.New("still failing")
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3 (initial + 2 retries)", attempts)
	}
}

func TestRetryCallRespectsContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := retryCall(ctx, 5, func() (int, bool, error) {
		return 0, true, errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("retryCall() error = %v, want context.Canceled", err)
	}
}

func TestApplyJitter(t *testing.T) {
	t.Parallel()

	base := 1 * time.Second
	for range 100 {
		d := applyJitter(base)
		if d < 750*time.Millisecond || d > 1250*time.Millisecond {
			t.Fatalf("jittered delay %v outside ±25%% of %v", d, base)
		}
	}
}

func TestNewOpenAIEmbedderRequiresKey(t *testing.T) {
	t.Parallel()

	if _, err := NewOpenAIEmbedder("", "", "", 3); err == nil {
		t.Error("expected error for empty API key")
	}

	e, err := NewOpenAIEmbedder("k", "", "", 3)
	if err != nil {
		t.Fatalf("NewOpenAIEmbedder() failed: %v", err)
	}
	if e.model != DefaultOpenAIModel {
		t.Errorf("model = %s, want default", e.model)
	}
	if e.Provider() != "openai" {
		t.Errorf("Provider() = %s", e.Provider())
	}
}

func TestEmbedEmptyBatch(t *testing.T) {
	t.Parallel()

	e, err := NewOpenAIEmbedder("k", "", "", 0)
	if err != nil {
		t.Fatalf("NewOpenAIEmbedder() failed: %v", err)
	}
	vectors, err := e.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("Embed(nil) failed: %v", err)
	}
	if vectors != nil {
		t.Errorf("Embed(nil) = %v, want nil", vectors)
	}
}
