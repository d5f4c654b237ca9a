package instructors

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"testing"

	"github.com/coursecompass/advisor-go/internal/catalog"
	"github.com/coursecompass/advisor-go/internal/feedback"
	"github.com/coursecompass/advisor-go/internal/rank"
	"github.com/coursecompass/advisor-go/internal/refdata"
	"github.com/coursecompass/advisor-go/internal/resolve"
	"github.com/coursecompass/advisor-go/internal/tools"
)

const riveraDoc = `{
	"overallCourseImpression": {
		"aiSummary": "Engaging and demanding.",
		"studentQuotes": ["Office hours were a lifesaver.", "Problem sets were brutal.", "Lectures flew by.", "Grading was transparent."],
		"instructorMetrics": {
			"The instructor presented material clearly.": {"mean": 4.5, "median": 5, "stronglyAgree": "80%"}
		}
	}
}`

const chanDoc = `{
	"overallCourseImpression": {
		"aiSummary": "Methodical and calm.",
		"studentQuotes": ["Very organized."],
		"instructorMetrics": {
			"The instructor presented material clearly.": {"mean": 3.5, "median": 4, "stronglyAgree": "40%"}
		}
	}
}`

// seqSource returns predetermined values, cycling.
type seqSource struct {
	values []int
	i      int
}

func (s *seqSource) Intn(_ int) int {
	v := s.values[s.i%len(s.values)]
	s.i++
	return v
}

type fakeStore struct {
	catalog.Store

	sections map[string][]catalog.CourseSection // by course id
	err      error
}

func (f *fakeStore) GetCourseSections(_ context.Context, courseID string, filter catalog.SectionFilter) ([]catalog.CourseSection, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []catalog.CourseSection
	for _, s := range f.sections[courseID] {
		if filter.Term != "" && s.Term != filter.Term {
			continue
		}
		if filter.Year != 0 && s.Year != filter.Year {
			continue
		}
		if filter.Instructor != "" && s.InstructorName != filter.Instructor {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStore) ListCoursesWithTerms(_ context.Context, filter catalog.CourseFilter) ([]catalog.CourseWithTerms, error) {
	if f.err != nil {
		return nil, f.err
	}
	var ids []string
	for id, sections := range f.sections {
		for _, s := range sections {
			if filter.Term != "" && s.Term != filter.Term {
				continue
			}
			if filter.Year != 0 && s.Year != filter.Year {
				continue
			}
			ids = append(ids, id)
			break
		}
	}
	sort.Strings(ids)
	out := make([]catalog.CourseWithTerms, 0, len(ids))
	for _, id := range ids {
		out = append(out, catalog.CourseWithTerms{Course: catalog.Course{ID: id, Name: id}})
	}
	return out, nil
}

func (f *fakeStore) GetInstructorSections(_ context.Context, _, instructor string, _ catalog.SectionFilter) ([]catalog.CourseSection, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []catalog.CourseSection
	for _, sections := range f.sections {
		for _, s := range sections {
			if s.InstructorName == instructor {
				out = append(out, s)
			}
		}
	}
	return out, nil
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
	return &fakeStore{sections: map[string][]catalog.CourseSection{
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
		"MATH 20800": {
			{
				SectionID:      "MATH 20800-1",
				CourseID:       "MATH 20800",
				Term:           "Spring",
				Year:           2025,
				InstructorName: "J. Rivera",
			},
		},
	}}
}

func newDeps(store catalog.Store, embedder *fakeEmbedder, rand tools.Deps) tools.Deps {
	snap := refdata.NewSnapshot([]refdata.Table{
		{
			Department: "MATH",
			Courses: []refdata.CourseEntry{
				{ID: "MATH 20700", Name: "Honors Analysis I"},
				{ID: "MATH 20800", Name: "Honors Analysis II"},
			},
			Instructors: []refdata.InstructorEntry{
				{CanonicalName: "J. Rivera", SectionsTaught: 6},
				{CanonicalName: "A. Chan", SectionsTaught: 9},
			},
		},
	})
	deps := rand
	deps.Store = store
	deps.Snapshot = snap
	deps.Resolver = resolve.New(snap)
	deps.Ranker = rank.New(embedder)
	deps.Aggregator = feedback.NewAggregator()
	deps.CurrentTerm = "Autumn"
	deps.CurrentYear = 2025
	deps.TopK = 5
	return deps
}

func TestFindInstructorFeedback(t *testing.T) {
	t.Parallel()

	h := NewHandler(newDeps(seededStore(), &fakeEmbedder{}, tools.Deps{Rand: &seqSource{values: []int{0}}}))

	t.Run("aggregates across everything taught", func(t *testing.T) {
		t.Parallel()
		got, err := h.FindInstructorFeedback(context.Background(), InstructorRequest{
			Department: "MATH",
			Instructor: "rivera",
		})
		if err != nil {
			t.Fatalf("FindInstructorFeedback() error = %v", err)
		}
		for _, want := range []string{
			"J. Rivera",
			"Engaging and demanding.",
			"Office hours were a lifesaver.",
			"The instructor presented material clearly.",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("FindInstructorFeedback() missing %q in %q", want, got)
			}
		}
		if strings.Contains(got, "Methodical and calm.") {
			t.Errorf("FindInstructorFeedback() = %q, other instructor leaked", got)
		}
	})

	t.Run("miss returns clarifying fallback", func(t *testing.T) {
		t.Parallel()
		got, err := h.FindInstructorFeedback(context.Background(), InstructorRequest{
			Department: "MATH",
			Instructor: "Zzyzx Quux",
		})
		if err != nil {
			t.Fatalf("FindInstructorFeedback() error = %v", err)
		}
		if !strings.Contains(got, "<fallback>") {
			t.Errorf("FindInstructorFeedback() = %q, want fallback marker", got)
		}
	})
}

func TestFindInstructorQuotes(t *testing.T) {
	t.Parallel()

	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"accessible outside class":       {1, 0, 0},
		"Office hours were a lifesaver.": {1, 0, 0},
	}}
	h := NewHandler(newDeps(seededStore(), embedder, tools.Deps{Rand: &seqSource{values: []int{0}}}))

	got, err := h.FindInstructorQuotes(context.Background(), QuotesRequest{
		Department: "MATH",
		Instructor: "J. Rivera",
		Criterion:  "accessible outside class",
		TopK:       1,
	})
	if err != nil {
		t.Fatalf("FindInstructorQuotes() error = %v", err)
	}
	if !strings.Contains(got, "Office hours were a lifesaver.") {
		t.Errorf("FindInstructorQuotes() = %q, want best matching quote", got)
	}
	if strings.Contains(got, "Problem sets were brutal.") {
		t.Errorf("FindInstructorQuotes() = %q, want single result with k=1", got)
	}
}

func TestCompareInstructorsForCourse(t *testing.T) {
	t.Parallel()

	t.Run("compares every instructor on record", func(t *testing.T) {
		t.Parallel()
		h := NewHandler(newDeps(seededStore(), &fakeEmbedder{}, tools.Deps{Rand: &seqSource{values: []int{0, 1, 2}}}))
		got, err := h.CompareInstructorsForCourse(context.Background(), CompareRequest{
			Department: "MATH",
			CourseID:   "20700",
		})
		if err != nil {
			t.Fatalf("CompareInstructorsForCourse() error = %v", err)
		}
		for _, want := range []string{"J. Rivera", "A. Chan", "<separator>", "<barchart data="} {
			if !strings.Contains(got, want) {
				t.Errorf("CompareInstructorsForCourse() missing %q in %q", want, got)
			}
		}
	})

	t.Run("samples a bounded number of quotes", func(t *testing.T) {
		t.Parallel()
		h := NewHandler(newDeps(seededStore(), &fakeEmbedder{}, tools.Deps{Rand: &seqSource{values: []int{0, 1, 2}}}))
		got, err := h.CompareInstructorsForCourse(context.Background(), CompareRequest{
			Department:  "MATH",
			CourseID:    "20700",
			Instructors: []string{"rivera"},
		})
		if err != nil {
			t.Fatalf("CompareInstructorsForCourse() error = %v", err)
		}
		quoteCount := strings.Count(got, "- \"")
		if quoteCount != feedback.MaxQuotesPerInstructor {
			t.Errorf("CompareInstructorsForCourse() rendered %d quotes, want %d", quoteCount, feedback.MaxQuotesPerInstructor)
		}
		if strings.Contains(got, "A. Chan") {
			t.Errorf("CompareInstructorsForCourse() = %q, unrequested instructor included", got)
		}
	})

	t.Run("deterministic source fixes the sample", func(t *testing.T) {
		t.Parallel()
		// Indexes 3, 0, and 2 select the first, third, and fourth of
		// Rivera's four quotes, reported in original order.
		h := NewHandler(newDeps(seededStore(), &fakeEmbedder{}, tools.Deps{Rand: &seqSource{values: []int{3, 0, 2}}}))
		got, err := h.CompareInstructorsForCourse(context.Background(), CompareRequest{
			Department:  "MATH",
			CourseID:    "20700",
			Instructors: []string{"rivera"},
		})
		if err != nil {
			t.Fatalf("CompareInstructorsForCourse() error = %v", err)
		}
		if strings.Contains(got, "Problem sets were brutal.") {
			t.Errorf("CompareInstructorsForCourse() = %q, unselected quote included", got)
		}
		for _, want := range []string{"Office hours were a lifesaver.", "Lectures flew by.", "Grading was transparent."} {
			if !strings.Contains(got, want) {
				t.Errorf("CompareInstructorsForCourse() missing %q in %q", want, got)
			}
		}
	})
}

func TestFindClassesOfInstructor(t *testing.T) {
	t.Parallel()

	h := NewHandler(newDeps(seededStore(), &fakeEmbedder{}, tools.Deps{Rand: &seqSource{values: []int{0}}}))

	got, err := h.FindClassesOfInstructor(context.Background(), ClassesRequest{
		Department: "MATH",
		Instructor: "rivera",
	})
	if err != nil {
		t.Fatalf("FindClassesOfInstructor() error = %v", err)
	}
	for _, want := range []string{"MATH 20700", "Autumn 2025", "MATH 20800", "Spring 2025"} {
		if !strings.Contains(got, want) {
			t.Errorf("FindClassesOfInstructor() missing %q in %q", want, got)
		}
	}
	if strings.Contains(got, "Winter 2025") {
		t.Errorf("FindClassesOfInstructor() = %q, other instructor's term leaked", got)
	}
}

func TestFindInstructorsAndClassesByDepartment(t *testing.T) {
	t.Parallel()

	h := NewHandler(newDeps(seededStore(), &fakeEmbedder{}, tools.Deps{Rand: &seqSource{values: []int{0}}}))

	t.Run("defaults to the current term", func(t *testing.T) {
		t.Parallel()
		got, err := h.FindInstructorsAndClassesByDepartment(context.Background(), DepartmentTermRequest{
			Department: "MATH",
		})
		if err != nil {
			t.Fatalf("FindInstructorsAndClassesByDepartment() error = %v", err)
		}
		for _, want := range []string{"J. Rivera", "MATH 20700", "<calltoaction>"} {
			if !strings.Contains(got, want) {
				t.Errorf("FindInstructorsAndClassesByDepartment() missing %q in %q", want, got)
			}
		}
		if strings.Contains(got, "A. Chan") {
			t.Errorf("FindInstructorsAndClassesByDepartment() = %q, other term's instructor leaked", got)
		}
	})

	t.Run("explicit term narrows the listing", func(t *testing.T) {
		t.Parallel()
		got, err := h.FindInstructorsAndClassesByDepartment(context.Background(), DepartmentTermRequest{
			Department: "MATH",
			Term:       "Winter",
			Year:       2025,
		})
		if err != nil {
			t.Fatalf("FindInstructorsAndClassesByDepartment() error = %v", err)
		}
		if !strings.Contains(got, "A. Chan") || !strings.Contains(got, "MATH 20700") {
			t.Errorf("FindInstructorsAndClassesByDepartment() = %q, want the Winter instructor", got)
		}
		if strings.Contains(got, "J. Rivera") {
			t.Errorf("FindInstructorsAndClassesByDepartment() = %q, other term's instructor leaked", got)
		}
	})
}

func TestFindClassesInstructorIsNotTeaching(t *testing.T) {
	t.Parallel()

	h := NewHandler(newDeps(seededStore(), &fakeEmbedder{}, tools.Deps{Rand: &seqSource{values: []int{0}}}))

	t.Run("reports past courses off the term schedule", func(t *testing.T) {
		t.Parallel()
		got, err := h.FindClassesInstructorIsNotTeaching(context.Background(), NotTeachingRequest{
			Department: "MATH",
			Instructor: "rivera",
		})
		if err != nil {
			t.Fatalf("FindClassesInstructorIsNotTeaching() error = %v", err)
		}
		if !strings.Contains(got, "- MATH 20800") {
			t.Errorf("FindClassesInstructorIsNotTeaching() = %q, want MATH 20800 listed", got)
		}
		if strings.Contains(got, "- MATH 20700") {
			t.Errorf("FindClassesInstructorIsNotTeaching() = %q, current course leaked", got)
		}
	})

	t.Run("full schedule renders a plain statement", func(t *testing.T) {
		t.Parallel()
		got, err := h.FindClassesInstructorIsNotTeaching(context.Background(), NotTeachingRequest{
			Department: "MATH",
			Instructor: "A. Chan",
			Term:       "Winter",
			Year:       2025,
		})
		if err != nil {
			t.Fatalf("FindClassesInstructorIsNotTeaching() error = %v", err)
		}
		if !strings.Contains(got, "Every course A. Chan has on record") {
			t.Errorf("FindClassesInstructorIsNotTeaching() = %q, want the full-schedule statement", got)
		}
	})

	t.Run("miss returns clarifying fallback", func(t *testing.T) {
		t.Parallel()
		got, err := h.FindClassesInstructorIsNotTeaching(context.Background(), NotTeachingRequest{
			Department: "MATH",
			Instructor: "Zzyzx Quux",
		})
		if err != nil {
			t.Fatalf("FindClassesInstructorIsNotTeaching() error = %v", err)
		}
		if !strings.Contains(got, "<fallback>") {
			t.Errorf("FindClassesInstructorIsNotTeaching() = %q, want fallback marker", got)
		}
	})
}
