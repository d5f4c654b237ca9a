// Package rank implements per-request embedding similarity ranking.
// Nothing is cached or indexed across calls; the whole index is a
// function-local value.
package rank

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/coursecompass/advisor-go/internal/embed"
)

// MaxTextRunes is the sanity bound on corpus entry length. Entries longer
// than this are dropped before embedding.
const MaxTextRunes = 1000

// structuralMarkers are substrings that indicate a corpus entry leaked
// internal graph or markup structure and must not be ranked.
var structuralMarkers = []string{"Nodes:", "Relationships:", "({", "})", "->", "<-"}

// Item is one candidate text to rank.
type Item struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Result is a ranked item with its similarity score.
type Result struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// MetricsRecorder records filtered corpus entries. Optional.
type MetricsRecorder interface {
	RecordCorpusFiltered(reason string)
}

// Ranker scores corpus entries against a query by embedding cosine
// similarity.
type Ranker struct {
	embedder embed.Embedder
	metrics  MetricsRecorder
}

// New creates a ranker over the given embedder.
func New(embedder embed.Embedder) *Ranker {
	return &Ranker{embedder: embedder}
}

// SetMetrics sets the metrics recorder for filter monitoring.
func (r *Ranker) SetMetrics(recorder MetricsRecorder) {
	r.metrics = recorder
}

// Rank filters degenerate corpus entries, embeds the survivors and the
// query, and returns the top k entries by cosine similarity. Ties keep
// corpus order. A provider failure or a count mismatch between inputs
// and returned vectors aborts the call; there is no partial ranking.
func (r *Ranker) Rank(ctx context.Context, query string, corpus []Item, k int) ([]Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("rank: k must be positive, got %d", k)
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("rank: empty query")
	}

	kept := r.filter(corpus)
	if len(kept) == 0 {
		return nil, nil
	}

	texts := make([]string, len(kept))
	for i, item := range kept {
		texts[i] = item.Text
	}

	corpusVectors, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("rank: embed corpus: %w", err)
	}
	if len(corpusVectors) != len(kept) {
		return nil, fmt.Errorf("rank: got %d corpus vectors for %d entries", len(corpusVectors), len(kept))
	}

	queryVectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("rank: embed query: %w", err)
	}
	if len(queryVectors) != 1 {
		return nil, fmt.Errorf("rank: got %d query vectors for 1 query", len(queryVectors))
	}

	results := make([]Result, len(kept))
	for i, item := range kept {
		results[i] = Result{
			ID:    item.ID,
			Text:  item.Text,
			Score: CosineSimilarity(queryVectors[0], corpusVectors[i]),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// filter drops degenerate corpus entries, preserving order.
func (r *Ranker) filter(corpus []Item) []Item {
	var kept []Item
	for _, item := range corpus {
		switch {
		case strings.TrimSpace(item.Text) == "":
			r.recordFiltered("empty")
		case utf8.RuneCountInString(item.Text) > MaxTextRunes:
			r.recordFiltered("too_long")
		case hasStructuralMarker(item.Text):
			r.recordFiltered("structural")
		default:
			kept = append(kept, item)
		}
	}
	return kept
}

func hasStructuralMarker(text string) bool {
	for _, marker := range structuralMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

func (r *Ranker) recordFiltered(reason string) {
	if r.metrics != nil {
		r.metrics.RecordCorpusFiltered(reason)
	}
}

// CosineSimilarity computes the cosine similarity of two vectors.
// Mismatched lengths or zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
