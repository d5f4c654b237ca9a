package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Tool metrics
	ToolInvocationsTotal   *prometheus.CounterVec
	ToolDurationSeconds    *prometheus.HistogramVec

	// Resolver metrics
	ResolverOutcomesTotal *prometheus.CounterVec

	// Embedding metrics
	EmbeddingRequestsTotal   *prometheus.CounterVec
	EmbeddingDurationSeconds *prometheus.HistogramVec
	EmbeddingBatchSize       prometheus.Histogram

	// Ranking metrics
	RankCorpusFiltered *prometheus.CounterVec

	// Catalog metrics
	CatalogQueryDuration *prometheus.HistogramVec

	// Feedback metrics
	FeedbackSectionsAggregated prometheus.Histogram
	FeedbackMalformedTotal     *prometheus.CounterVec

	// Reference data metrics
	RefDataReloadsTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// Tool metrics
		ToolInvocationsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_tool_invocations_total",
				Help: "Total number of tool invocations by tool and status",
			},
			[]string{"tool", "status"}, // status: success, error, not_found, no_data
		),

		ToolDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "advisor_tool_duration_seconds",
				Help:    "Tool invocation duration in seconds by tool",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"tool"},
		),

		// Resolver metrics
		ResolverOutcomesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_resolver_outcomes_total",
				Help: "Total number of entity resolution attempts by kind and outcome",
			},
			[]string{"kind", "outcome"}, // kind: course, instructor, degree_track; outcome: id_match, fuzzy_match, miss
		),

		// Embedding metrics
		EmbeddingRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_embedding_requests_total",
				Help: "Total number of embedding API calls by provider and status",
			},
			[]string{"provider", "status"}, // status: success, error, retry
		),

		EmbeddingDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "advisor_embedding_duration_seconds",
				Help:    "Embedding API call duration in seconds by provider",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30}, // Matches 30s embedding timeout
			},
			[]string{"provider"},
		),

		EmbeddingBatchSize: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "advisor_embedding_batch_size",
				Help:    "Number of texts per batched embedding call",
				Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
			},
		),

		// Ranking metrics
		RankCorpusFiltered: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_rank_corpus_filtered_total",
				Help: "Total number of corpus entries dropped before ranking by reason",
			},
			[]string{"reason"}, // reason: empty, too_long, structural
		),

		// Catalog metrics
		CatalogQueryDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "advisor_catalog_query_duration_seconds",
				Help:    "Catalog query duration in seconds by query",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"query"},
		),

		// Feedback metrics
		FeedbackSectionsAggregated: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "advisor_feedback_sections_aggregated",
				Help:    "Number of sections combined per feedback aggregation",
				Buckets: []float64{1, 2, 3, 5, 10, 20, 50},
			},
		),

		FeedbackMalformedTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_feedback_malformed_total",
				Help: "Total number of malformed feedback fields skipped during aggregation",
			},
			[]string{"field"}, // field: metrics, buckets, quotes
		),

		// Reference data metrics
		RefDataReloadsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_refdata_reloads_total",
				Help: "Total number of reference data reloads by source and status",
			},
			[]string{"source", "status"}, // source: dir, bucket
		),

		// HTTP metrics
		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_http_errors_total",
				Help: "Total HTTP errors by type and module",
			},
			[]string{"error_type", "module"},
		),
	}

	return m
}

// RecordToolInvocation records a tool invocation with status
func (m *Metrics) RecordToolInvocation(tool, status string, duration float64) {
	m.ToolInvocationsTotal.WithLabelValues(tool, status).Inc()
	m.ToolDurationSeconds.WithLabelValues(tool).Observe(duration)
}

// RecordResolverOutcome records an entity resolution attempt
func (m *Metrics) RecordResolverOutcome(kind, outcome string) {
	m.ResolverOutcomesTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordEmbeddingRequest records an embedding API call
func (m *Metrics) RecordEmbeddingRequest(provider, status string, duration float64, batchSize int) {
	m.EmbeddingRequestsTotal.WithLabelValues(provider, status).Inc()
	m.EmbeddingDurationSeconds.WithLabelValues(provider).Observe(duration)
	m.EmbeddingBatchSize.Observe(float64(batchSize))
}

// RecordCorpusFiltered records a corpus entry dropped before ranking
func (m *Metrics) RecordCorpusFiltered(reason string) {
	m.RankCorpusFiltered.WithLabelValues(reason).Inc()
}

// RecordCatalogQuery records a catalog query duration
func (m *Metrics) RecordCatalogQuery(query string, duration float64) {
	m.CatalogQueryDuration.WithLabelValues(query).Observe(duration)
}

// RecordFeedbackAggregation records the size of a feedback aggregation
func (m *Metrics) RecordFeedbackAggregation(sections int) {
	m.FeedbackSectionsAggregated.Observe(float64(sections))
}

// RecordFeedbackMalformed records a malformed feedback field skipped during aggregation
func (m *Metrics) RecordFeedbackMalformed(field string) {
	m.FeedbackMalformedTotal.WithLabelValues(field).Inc()
}

// RecordRefDataReload records a reference data reload
func (m *Metrics) RecordRefDataReload(source, status string) {
	m.RefDataReloadsTotal.WithLabelValues(source, status).Inc()
}

// RecordHTTPError records HTTP error metrics
func (m *Metrics) RecordHTTPError(errorType, module string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType, module).Inc()
}
