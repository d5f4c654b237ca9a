package feedback

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/coursecompass/advisor-go/internal/catalog"
)

func section(t *testing.T, id, term string, year int, instructor string, doc map[string]any) catalog.CourseSection {
	t.Helper()
	s := catalog.CourseSection{
		SectionID:      id,
		Term:           term,
		Year:           year,
		InstructorName: instructor,
	}
	if doc != nil {
		raw, err := json.Marshal(doc)
		if err != nil {
			t.Fatalf("marshal feedback: %v", err)
		}
		s.Feedback = raw
	}
	return s
}

func TestAggregateAbsentCategoryIsNoData(t *testing.T) {
	t.Parallel()

	sections := []catalog.CourseSection{
		section(t, "s1", "Autumn", 2025, "J. Rivera", map[string]any{
			"learningGains": map[string]any{"aiSummary": "Students learned a lot."},
		}),
		section(t, "s2", "Winter", 2025, "A. Chen", nil),
	}

	result := NewAggregator().Aggregate(sections, CategoryTeachingEffectiveness, Options{})
	if result.HasData() {
		t.Error("absent category must be explicit no-data, not zero")
	}
	if result.HoursPerWeek.HasData {
		t.Error("no distribution data expected")
	}
}

func TestAggregateQuoteDedup(t *testing.T) {
	t.Parallel()

	doc := func(quotes ...string) map[string]any {
		return map[string]any{
			"courseDifficulty": map[string]any{
				"aiSummary":     "Hard but fair.",
				"studentQuotes": quotes,
			},
		}
	}

	sections := []catalog.CourseSection{
		section(t, "s1", "Autumn", 2024, "J. Rivera", doc("Very hard.", "Worth it.")),
		section(t, "s2", "Autumn", 2025, "A. Chen", doc("Very hard.", "Do the problem sets.")),
	}

	result := NewAggregator().Aggregate(sections, CategoryCourseDifficulty, Options{})
	if len(result.Quotes) != 3 {
		t.Fatalf("expected 3 deduped quotes, got %d: %v", len(result.Quotes), result.Quotes)
	}
	// First-seen provenance wins
	if result.Quotes[0].Text != "Very hard." || result.Quotes[0].Instructor != "J. Rivera" {
		t.Errorf("unexpected first quote: %+v", result.Quotes[0])
	}
	// Identical summaries dedup too
	if len(result.Summaries) != 1 {
		t.Errorf("expected 1 deduped summary, got %d", len(result.Summaries))
	}
}

func TestAggregateCaps(t *testing.T) {
	t.Parallel()

	var sections []catalog.CourseSection
	for i := range 15 {
		quotes := make([]any, 0, 3)
		for j := range 3 {
			quotes = append(quotes, fmt.Sprintf("quote %d-%d", i, j))
		}
		sections = append(sections, section(t, fmt.Sprintf("s%d", i), "Autumn", 2025, fmt.Sprintf("I%d", i), map[string]any{
			"courseStructure": map[string]any{
				"aiSummary":     fmt.Sprintf("summary %d", i),
				"studentQuotes": quotes,
			},
		}))
	}

	result := NewAggregator().Aggregate(sections, CategoryCourseStructure, Options{})
	if len(result.Summaries) != MaxSummaries {
		t.Errorf("summaries = %d, want %d", len(result.Summaries), MaxSummaries)
	}
	if len(result.Quotes) != MaxQuotes {
		t.Errorf("quotes = %d, want %d", len(result.Quotes), MaxQuotes)
	}
}

func TestAggregatePerInstructorQuoteCap(t *testing.T) {
	t.Parallel()

	quotes := []any{"q1", "q2", "q3", "q4", "q5"}
	sections := []catalog.CourseSection{
		section(t, "s1", "Autumn", 2025, "J. Rivera", map[string]any{
			"teachingEffectiveness": map[string]any{"studentQuotes": quotes},
		}),
	}

	result := NewAggregator().Aggregate(sections, CategoryTeachingEffectiveness, Options{PerInstructorQuoteCap: MaxQuotesPerInstructor})
	if len(result.Quotes) != 3 {
		t.Errorf("expected 3 quotes for one instructor, got %d", len(result.Quotes))
	}
}

func TestAggregateMetricsAverageOverReportingSections(t *testing.T) {
	t.Parallel()

	metric := func(mean float64) map[string]any {
		return map[string]any{
			"teachingEffectiveness": map[string]any{
				"aiSummary": "fine",
				"instructorMetrics": map[string]any{
					"Clarity": map[string]any{"mean": mean, "median": mean, "stronglyAgree": "80%"},
				},
			},
		}
	}

	// Three sections carry the category but only two report the metric
	sections := []catalog.CourseSection{
		section(t, "s1", "Autumn", 2024, "A", metric(4.0)),
		section(t, "s2", "Winter", 2025, "B", metric(5.0)),
		section(t, "s3", "Spring", 2025, "C", map[string]any{
			"teachingEffectiveness": map[string]any{"aiSummary": "no metrics here"},
		}),
	}

	result := NewAggregator().Aggregate(sections, CategoryTeachingEffectiveness, Options{})
	if result.SectionsWithData != 3 {
		t.Fatalf("sections with data = %d, want 3", result.SectionsWithData)
	}
	clarity, ok := result.Metrics["Clarity"]
	if !ok {
		t.Fatal("Clarity metric missing")
	}
	// Mean over the two reporting sections, not all three
	if math.Abs(clarity.Mean-4.5) > 1e-9 {
		t.Errorf("Clarity mean = %f, want 4.5", clarity.Mean)
	}
	if math.Abs(clarity.StronglyAgree-80) > 1e-9 {
		t.Errorf("Clarity stronglyAgree = %f, want 80", clarity.StronglyAgree)
	}
}

func TestAggregateMetricFieldsAverageIndependently(t *testing.T) {
	t.Parallel()

	// The second section reports only a median; its absent mean and
	// stronglyAgree must not drag those averages toward zero.
	sections := []catalog.CourseSection{
		section(t, "s1", "Autumn", 2024, "A", map[string]any{
			"teachingEffectiveness": map[string]any{
				"instructorMetrics": map[string]any{
					"Clarity": map[string]any{"mean": 4.0, "median": 4.0, "stronglyAgree": "60%"},
				},
			},
		}),
		section(t, "s2", "Winter", 2025, "B", map[string]any{
			"teachingEffectiveness": map[string]any{
				"instructorMetrics": map[string]any{
					"Clarity": map[string]any{"median": 5.0},
				},
			},
		}),
	}

	result := NewAggregator().Aggregate(sections, CategoryTeachingEffectiveness, Options{})
	clarity, ok := result.Metrics["Clarity"]
	if !ok {
		t.Fatal("Clarity metric missing")
	}
	if math.Abs(clarity.Mean-4.0) > 1e-9 {
		t.Errorf("Clarity mean = %f, want 4.0 from the one reporting section", clarity.Mean)
	}
	if math.Abs(clarity.Median-4.5) > 1e-9 {
		t.Errorf("Clarity median = %f, want 4.5 over both sections", clarity.Median)
	}
	if math.Abs(clarity.StronglyAgree-60) > 1e-9 {
		t.Errorf("Clarity stronglyAgree = %f, want 60 from the one reporting section", clarity.StronglyAgree)
	}
}

func TestAggregateDistributions(t *testing.T) {
	t.Parallel()

	sections := []catalog.CourseSection{
		section(t, "s1", "Autumn", 2025, "A", map[string]any{
			"studentEngagement": map[string]any{
				"aiSummary": "engaged",
				"hoursPerWeekOutsideOfSession": map[string]any{
					"distribution": map[string]any{"0-2 hours": "50%", "3-5 hours": "50%"},
				},
				"proportionOfClassAttended": map[string]any{
					"distribution": map[string]any{"100%": "100%"},
				},
			},
		}),
		section(t, "s2", "Winter", 2025, "B", map[string]any{
			"studentEngagement": map[string]any{
				"aiSummary": "also engaged",
				"hoursPerWeekOutsideOfSession": map[string]any{
					"distribution": map[string]any{"12+ hours": "100%"},
				},
			},
		}),
	}

	result := NewAggregator().Aggregate(sections, CategoryStudentEngagement, Options{})

	if !result.HoursPerWeek.HasData {
		t.Fatal("expected hours data")
	}
	// Section averages 2.5 and 14, unweighted mean 8.25
	if math.Abs(result.HoursPerWeek.Value-8.25) > 1e-9 {
		t.Errorf("hours = %f, want 8.25", result.HoursPerWeek.Value)
	}

	if !result.Attendance.HasData {
		t.Fatal("expected attendance data")
	}
	if math.Abs(result.Attendance.Value-100) > 1e-9 {
		t.Errorf("attendance = %f, want 100", result.Attendance.Value)
	}

	if result.InterestBefore.HasData || result.InterestAfter.HasData {
		t.Error("no interest data expected")
	}
}

func TestAggregateSkipsMalformedDocuments(t *testing.T) {
	t.Parallel()

	bad := catalog.CourseSection{
		SectionID: "bad",
		Feedback:  json.RawMessage(`{not json`),
	}
	good := section(t, "good", "Autumn", 2025, "A", map[string]any{
		"learningGains": map[string]any{"aiSummary": "learned plenty"},
	})

	result := NewAggregator().Aggregate([]catalog.CourseSection{bad, good}, CategoryLearningGains, Options{})
	if result.SectionsWithData != 1 {
		t.Errorf("sections with data = %d, want 1 (malformed skipped)", result.SectionsWithData)
	}
	if len(result.Summaries) != 1 {
		t.Errorf("expected the good section's summary")
	}
}

func TestParseCategory(t *testing.T) {
	t.Parallel()

	for _, c := range Categories() {
		got, err := ParseCategory(string(c))
		if err != nil || got != c {
			t.Errorf("ParseCategory(%q) = (%q, %v)", c, got, err)
		}
	}
	if _, err := ParseCategory("vibes"); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestPercentUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want float64
	}{
		{`"82%"`, 82},
		{`"82"`, 82},
		{`82.5`, 82.5},
		{`" 7 % "`, 7},
		{`"n/a"`, 0},
		{`null`, 0},
	}
	for _, tt := range tests {
		var p Percent
		if err := json.Unmarshal([]byte(tt.raw), &p); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.raw, err)
		}
		if float64(p) != tt.want {
			t.Errorf("Percent(%s) = %f, want %f", tt.raw, float64(p), tt.want)
		}
	}
}
