package feedback

import (
	"log/slog"

	"github.com/coursecompass/advisor-go/internal/catalog"
)

// Caps applied after deduplication, in first-seen order.
const (
	MaxSummaries           = 10
	MaxQuotes              = 25
	MaxQuotesPerInstructor = 3 // comparison contexts only
)

// Tagged is a summary or quote tagged with its section provenance.
type Tagged struct {
	Text       string `json:"text"`
	Term       string `json:"term"`
	Year       int    `json:"year"`
	Instructor string `json:"instructor"`
}

// MetricAverage is the unweighted mean of a Likert metric across the
// sections that reported it. Each statistic averages independently over
// its own reporting sections.
type MetricAverage struct {
	Mean          float64 `json:"mean"`
	Median        float64 `json:"median"`
	StronglyAgree float64 `json:"strongly_agree"`
}

// DistributionStat is the aggregated value of a bucketed distribution.
// HasData false means no section contributed a usable data point and the
// renderer shows "N/A".
type DistributionStat struct {
	Value   float64 `json:"value"`
	HasData bool    `json:"has_data"`
}

// Result is the aggregate of one feedback category across sections.
type Result struct {
	Category         Category                 `json:"category"`
	Summaries        []Tagged                 `json:"summaries,omitempty"`
	Quotes           []Tagged                 `json:"quotes,omitempty"`
	Metrics          map[string]MetricAverage `json:"metrics,omitempty"`
	HoursPerWeek     DistributionStat         `json:"hours_per_week"`
	Attendance       DistributionStat         `json:"attendance"`
	InterestBefore   DistributionStat         `json:"interest_before"`
	InterestAfter    DistributionStat         `json:"interest_after"`
	SectionsWithData int                      `json:"sections_with_data"`
}

// HasData reports whether any section carried this category.
func (r *Result) HasData() bool {
	return r.SectionsWithData > 0
}

// Options tunes aggregation for specific contexts.
type Options struct {
	// PerInstructorQuoteCap limits quotes per instructor when positive.
	// Used by instructor comparison tools.
	PerInstructorQuoteCap int
}

// MetricsRecorder records malformed feedback fields and aggregation
// sizes. Optional.
type MetricsRecorder interface {
	RecordFeedbackAggregation(sections int)
	RecordFeedbackMalformed(field string)
}

// Aggregator combines per-section feedback documents.
type Aggregator struct {
	metrics MetricsRecorder
}

// NewAggregator creates an aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// SetMetrics sets the metrics recorder for malformed-field monitoring.
func (a *Aggregator) SetMetrics(recorder MetricsRecorder) {
	a.metrics = recorder
}

// Aggregate combines one category across the given sections. Sections
// without feedback, with malformed feedback, or without the category are
// skipped; they never fail the aggregation.
func (a *Aggregator) Aggregate(sections []catalog.CourseSection, category Category, opts Options) *Result {
	result := &Result{Category: category}

	var (
		summarySeen   = map[string]bool{}
		quoteSeen     = map[string]bool{}
		perInstructor = map[string]int{}

		metricSums   = map[string]*metricAccumulator{}
		hoursValues  []float64
		attendValues []float64
		beforeValues []float64
		afterValues  []float64
	)

	for _, section := range sections {
		if section.Feedback == nil {
			continue
		}

		doc, err := ParseDocument(section.Feedback)
		if err != nil {
			slog.Warn("skipping malformed feedback document",
				"section_id", section.SectionID,
				"error", err)
			a.recordMalformed("document")
			continue
		}

		cf, ok := doc.Category(category)
		if !ok {
			continue
		}
		result.SectionsWithData++

		if cf.AISummary != "" && !summarySeen[cf.AISummary] {
			summarySeen[cf.AISummary] = true
			result.Summaries = append(result.Summaries, Tagged{
				Text:       cf.AISummary,
				Term:       section.Term,
				Year:       section.Year,
				Instructor: section.InstructorName,
			})
		}

		for _, quote := range cf.StudentQuotes {
			if quote == "" || quoteSeen[quote] {
				continue
			}
			if opts.PerInstructorQuoteCap > 0 && perInstructor[section.InstructorName] >= opts.PerInstructorQuoteCap {
				continue
			}
			quoteSeen[quote] = true
			perInstructor[section.InstructorName]++
			result.Quotes = append(result.Quotes, Tagged{
				Text:       quote,
				Term:       section.Term,
				Year:       section.Year,
				Instructor: section.InstructorName,
			})
		}

		for name, stats := range cf.InstructorMetrics {
			acc := metricSums[name]
			if acc == nil {
				acc = &metricAccumulator{}
				metricSums[name] = acc
			}
			acc.add(stats)
		}

		if v, ok := sectionWeightedAverage(cf.HoursPerWeek.Buckets); ok {
			hoursValues = append(hoursValues, v)
		}
		if v, ok := sectionWeightedAverage(cf.Attendance.Buckets); ok {
			attendValues = append(attendValues, v)
		}
		if v, ok := sectionWeightedAverage(cf.InterestLevel.Before.Buckets); ok {
			beforeValues = append(beforeValues, v)
		}
		if v, ok := sectionWeightedAverage(cf.InterestLevel.After.Buckets); ok {
			afterValues = append(afterValues, v)
		}
	}

	if len(result.Summaries) > MaxSummaries {
		result.Summaries = result.Summaries[:MaxSummaries]
	}
	if len(result.Quotes) > MaxQuotes {
		result.Quotes = result.Quotes[:MaxQuotes]
	}

	if len(metricSums) > 0 {
		result.Metrics = make(map[string]MetricAverage, len(metricSums))
		for name, acc := range metricSums {
			result.Metrics[name] = acc.average()
		}
	}

	result.HoursPerWeek = unweightedMean(hoursValues)
	result.Attendance = unweightedMean(attendValues)
	result.InterestBefore = unweightedMean(beforeValues)
	result.InterestAfter = unweightedMean(afterValues)

	if a.metrics != nil {
		a.metrics.RecordFeedbackAggregation(result.SectionsWithData)
	}
	return result
}

// metricAccumulator averages each statistic independently over the
// sections that reported it. A section whose metric omits one field
// contributes only the fields it carries.
type metricAccumulator struct {
	mean, median, stronglyAgree fieldSum
}

type fieldSum struct {
	sum   float64
	count int
}

func (f *fieldSum) add(v float64) {
	f.sum += v
	f.count++
}

func (f fieldSum) average() float64 {
	if f.count == 0 {
		return 0
	}
	return f.sum / float64(f.count)
}

func (m *metricAccumulator) add(stats MetricStats) {
	if stats.Mean != nil {
		m.mean.add(*stats.Mean)
	}
	if stats.Median != nil {
		m.median.add(*stats.Median)
	}
	if stats.StronglyAgree != nil {
		m.stronglyAgree.add(float64(*stats.StronglyAgree))
	}
}

func (m *metricAccumulator) average() MetricAverage {
	return MetricAverage{
		Mean:          m.mean.average(),
		Median:        m.median.average(),
		StronglyAgree: m.stronglyAgree.average(),
	}
}

// unweightedMean averages per-section values; no values means no data.
func unweightedMean(values []float64) DistributionStat {
	if len(values) == 0 {
		return DistributionStat{}
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return DistributionStat{Value: sum / float64(len(values)), HasData: true}
}

func (a *Aggregator) recordMalformed(field string) {
	if a.metrics != nil {
		a.metrics.RecordFeedbackMalformed(field)
	}
}
