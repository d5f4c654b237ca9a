package feedback

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Percent is a percentage that arrives either as a number or as a string
// like "82%" or "82". Unparseable values decode to zero rather than
// failing the document.
type Percent float64

// UnmarshalJSON implements defensive percentage decoding.
func (p *Percent) UnmarshalJSON(data []byte) error {
	*p = 0

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*p = Percent(num)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*p = Percent(v)
	}
	return nil
}

// MetricStats is one Likert metric as reported by a single section.
// Pointer fields distinguish an absent statistic from a reported zero.
type MetricStats struct {
	Mean          *float64 `json:"mean"`
	Median        *float64 `json:"median"`
	StronglyAgree *Percent `json:"stronglyAgree"`
}

// Distribution is a bucketed distribution: free-text bucket label to
// percentage of respondents.
type Distribution struct {
	Buckets map[string]Percent `json:"distribution"`
}

// InterestLevel holds the before/after interest distributions of the
// student-engagement category.
type InterestLevel struct {
	Before Distribution `json:"before"`
	After  Distribution `json:"after"`
}

// CategoryFeedback is one category's payload within a section's feedback
// document. All fields are optional; categories reuse the same shape and
// simply leave unused fields empty.
type CategoryFeedback struct {
	AISummary         string                 `json:"aiSummary"`
	StudentQuotes     []string               `json:"studentQuotes"`
	InstructorMetrics map[string]MetricStats `json:"instructorMetrics"`
	HoursPerWeek      Distribution           `json:"hoursPerWeekOutsideOfSession"`
	Attendance        Distribution           `json:"proportionOfClassAttended"`
	InterestLevel     InterestLevel          `json:"interestLevel"`
}

// Document is a section's full feedback document keyed by category.
type Document map[string]CategoryFeedback

// ParseDocument decodes a raw feedback blob. Unknown top-level keys are
// ignored; a structurally invalid blob is an error and the caller skips
// the section.
func ParseDocument(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Category returns the payload for a category and whether it is present
// and non-empty.
func (d Document) Category(c Category) (CategoryFeedback, bool) {
	cf, ok := d[string(c)]
	if !ok {
		return CategoryFeedback{}, false
	}
	return cf, !cf.empty()
}

func (cf CategoryFeedback) empty() bool {
	return cf.AISummary == "" &&
		len(cf.StudentQuotes) == 0 &&
		len(cf.InstructorMetrics) == 0 &&
		len(cf.HoursPerWeek.Buckets) == 0 &&
		len(cf.Attendance.Buckets) == 0 &&
		len(cf.InterestLevel.Before.Buckets) == 0 &&
		len(cf.InterestLevel.After.Buckets) == 0
}
