package feedbacktools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/coursecompass/advisor-go/internal/catalog"
	domerrors "github.com/coursecompass/advisor-go/internal/errors"
	"github.com/coursecompass/advisor-go/internal/feedback"
	"github.com/coursecompass/advisor-go/internal/randutil"
	"github.com/coursecompass/advisor-go/internal/rank"
	"github.com/coursecompass/advisor-go/internal/refdata"
	"github.com/coursecompass/advisor-go/internal/resolve"
	"github.com/coursecompass/advisor-go/internal/tools"
)

const riveraDoc = `{
	"overallCourseImpression": {
		"aiSummary": "Students found the course transformative.",
		"studentQuotes": ["Best class I have taken.", "Challenging but fair."],
		"instructorMetrics": {
			"The instructor presented material clearly.": {"mean": 4.5, "median": 5, "stronglyAgree": "80%"}
		},
		"hoursPerWeekOutsideOfSession": {"distribution": {"0-2 hours": "50%", "3-5 hours": "50%"}},
		"proportionOfClassAttended": {"distribution": {"100%": "100%"}},
		"interestLevel": {
			"before": {"distribution": {"2": "100%"}},
			"after": {"distribution": {"5": "100%"}}
		}
	}
}`

const chanDoc = `{
	"overallCourseImpression": {
		"aiSummary": "A steady, well organized offering.",
		"studentQuotes": ["Lectures were dry but thorough."]
	}
}`

type fakeStore struct {
	catalog.Store

	sections map[string][]catalog.CourseSection
	courses  []catalog.CourseWithTerms
	err      error
}

func (f *fakeStore) GetCourseSections(_ context.Context, courseID string, filter catalog.SectionFilter) ([]catalog.CourseSection, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []catalog.CourseSection
	for _, s := range f.sections[courseID] {
		if filter.Instructor != "" && s.InstructorName != filter.Instructor {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStore) ListCoursesWithTerms(_ context.Context, _ catalog.CourseFilter) ([]catalog.CourseWithTerms, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.courses, nil
}

type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := f.vectors[text]; ok {
			out[i] = v
			continue
		}
		out[i] = []float32{0, 0, 1}
	}
	return out, nil
}

func (f *fakeEmbedder) Provider() string { return "fake" }

func seededStore() *fakeStore {
	return &fakeStore{
		sections: map[string][]catalog.CourseSection{
			"MATH 20700": {
				{
					SectionID:      "MATH 20700-1",
					CourseID:       "MATH 20700",
					Term:           "Autumn",
					Year:           2025,
					InstructorName: "J. Rivera",
					Feedback:       json.RawMessage(riveraDoc),
				},
				{
					SectionID:      "MATH 20700-2",
					CourseID:       "MATH 20700",
					Term:           "Winter",
					Year:           2025,
					InstructorName: "A. Chan",
					Feedback:       json.RawMessage(chanDoc),
				},
			},
		},
		courses: []catalog.CourseWithTerms{
			{Course: catalog.Course{ID: "MATH 20700", Name: "Honors Analysis I", Department: "MATH"}},
		},
	}
}

func newDeps(store catalog.Store, embedder *fakeEmbedder) tools.Deps {
	snap := refdata.NewSnapshot([]refdata.Table{
		{
			Department: "MATH",
			Courses: []refdata.CourseEntry{
				{ID: "MATH 20700", Name: "Honors Analysis I"},
			},
			Instructors: []refdata.InstructorEntry{
				{CanonicalName: "J. Rivera", SectionsTaught: 6},
				{CanonicalName: "A. Chan", SectionsTaught: 9},
			},
		},
	})
	return tools.Deps{
		Store:       store,
		Snapshot:    snap,
		Resolver:    resolve.New(snap),
		Ranker:      rank.New(embedder),
		Aggregator:  feedback.NewAggregator(),
		Rand:        randutil.Default(),
		CurrentTerm: "Autumn",
		CurrentYear: 2025,
		TopK:        5,
	}
}

func TestCourseFeedback(t *testing.T) {
	t.Parallel()

	h := NewHandler(newDeps(seededStore(), &fakeEmbedder{}))

	t.Run("renders summaries quotes metrics and charts", func(t *testing.T) {
		t.Parallel()
		got, err := h.CourseFeedback(context.Background(), FeedbackRequest{
			Department: "MATH",
			CourseID:   "20700",
			Category:   "overallCourseImpression",
		})
		if err != nil {
			t.Fatalf("CourseFeedback() error = %v", err)
		}
		for _, want := range []string{
			"Overall Course Impression",
			"Students found the course transformative.",
			"Best class I have taken.",
			"Lectures were dry but thorough.",
			"The instructor presented material clearly.",
			"<barchart data=",
			"<longshowmore>",
			"<showmore>",
			"<calltoaction>",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("CourseFeedback() missing %q in %q", want, got)
			}
		}
	})

	t.Run("instructor hint narrows sections", func(t *testing.T) {
		t.Parallel()
		got, err := h.CourseFeedback(context.Background(), FeedbackRequest{
			Department: "MATH",
			CourseID:   "20700",
			Instructor: "rivera",
			Category:   "overallCourseImpression",
		})
		if err != nil {
			t.Fatalf("CourseFeedback() error = %v", err)
		}
		if !strings.Contains(got, "Best class I have taken.") {
			t.Errorf("CourseFeedback() = %q, want Rivera quote", got)
		}
		if strings.Contains(got, "Lectures were dry but thorough.") {
			t.Errorf("CourseFeedback() = %q, other instructor leaked through filter", got)
		}
		if !strings.Contains(got, "taught by J. Rivera") {
			t.Errorf("CourseFeedback() = %q, want resolved instructor in heading", got)
		}
	})

	t.Run("unknown category is invalid input", func(t *testing.T) {
		t.Parallel()
		_, err := h.CourseFeedback(context.Background(), FeedbackRequest{
			Department: "MATH",
			CourseID:   "20700",
			Category:   "vibes",
		})
		if !errors.Is(err, domerrors.ErrInvalidInput) {
			t.Errorf("CourseFeedback() error = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("course miss returns clarifying fallback", func(t *testing.T) {
		t.Parallel()
		got, err := h.CourseFeedback(context.Background(), FeedbackRequest{
			Department: "MATH",
			CourseName: "Underwater Basket Weaving",
			Category:   "overallCourseImpression",
		})
		if err != nil {
			t.Fatalf("CourseFeedback() error = %v", err)
		}
		if !strings.Contains(got, "<fallback>") {
			t.Errorf("CourseFeedback() = %q, want fallback marker", got)
		}
	})

	t.Run("instructor miss returns clarifying fallback", func(t *testing.T) {
		t.Parallel()
		got, err := h.CourseFeedback(context.Background(), FeedbackRequest{
			Department: "MATH",
			CourseID:   "20700",
			Instructor: "Zzyzx Quux",
			Category:   "overallCourseImpression",
		})
		if err != nil {
			t.Fatalf("CourseFeedback() error = %v", err)
		}
		if !strings.Contains(got, "<fallback>") {
			t.Errorf("CourseFeedback() = %q, want fallback marker", got)
		}
	})

	t.Run("category without data yields no-data fallback", func(t *testing.T) {
		t.Parallel()
		got, err := h.CourseFeedback(context.Background(), FeedbackRequest{
			Department: "MATH",
			CourseID:   "20700",
			Category:   "suggestedImprovements",
		})
		if err != nil {
			t.Fatalf("CourseFeedback() error = %v", err)
		}
		if !strings.Contains(got, "<fallback>") {
			t.Errorf("CourseFeedback() = %q, want fallback marker", got)
		}
	})
}

func TestCourseSemanticSearch(t *testing.T) {
	t.Parallel()

	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"fair grading":             {1, 0, 0},
		"Challenging but fair.":    {1, 0, 0},
		"Best class I have taken.": {0, 1, 0},
	}}
	h := NewHandler(newDeps(seededStore(), embedder))

	got, err := h.CourseSemanticSearch(context.Background(), SearchRequest{
		Department: "MATH",
		CourseID:   "20700",
		Criterion:  "fair grading",
		TopK:       1,
	})
	if err != nil {
		t.Fatalf("CourseSemanticSearch() error = %v", err)
	}
	if !strings.Contains(got, "Challenging but fair.") {
		t.Errorf("CourseSemanticSearch() = %q, want best matching quote", got)
	}
	if strings.Contains(got, "Best class I have taken.") {
		t.Errorf("CourseSemanticSearch() = %q, want single result with k=1", got)
	}
}

func TestFeedbackSemanticSuggest(t *testing.T) {
	t.Parallel()

	t.Run("recommends the best matching course", func(t *testing.T) {
		t.Parallel()
		embedder := &fakeEmbedder{vectors: map[string][]float32{
			"rigorous proofs":          {1, 0, 0},
			"Challenging but fair.":    {1, 0, 0},
			"Best class I have taken.": {0, 1, 0},
		}}
		h := NewHandler(newDeps(seededStore(), embedder))

		got, err := h.FeedbackSemanticSuggest(context.Background(), SuggestRequest{
			Department: "MATH",
			Query:      "rigorous proofs",
		})
		if err != nil {
			t.Fatalf("FeedbackSemanticSuggest() error = %v", err)
		}
		if !strings.Contains(got, "Best match: MATH 20700") {
			t.Errorf("FeedbackSemanticSuggest() = %q, want best match heading", got)
		}
	})

	t.Run("no quotes yields no-data fallback", func(t *testing.T) {
		t.Parallel()
		store := &fakeStore{courses: []catalog.CourseWithTerms{
			{Course: catalog.Course{ID: "MATH 20800", Department: "MATH"}},
		}}
		h := NewHandler(newDeps(store, &fakeEmbedder{}))

		got, err := h.FeedbackSemanticSuggest(context.Background(), SuggestRequest{
			Department: "MATH",
			Query:      "anything",
		})
		if err != nil {
			t.Fatalf("FeedbackSemanticSuggest() error = %v", err)
		}
		if !strings.Contains(got, "<fallback>") {
			t.Errorf("FeedbackSemanticSuggest() = %q, want fallback marker", got)
		}
	})
}
