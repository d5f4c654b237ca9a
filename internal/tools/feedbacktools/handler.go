// Package feedbacktools implements the feedback retrieval tools: one
// parameterized per-category aggregation over the closed category enum,
// plus quote-level semantic search within and across courses.
package feedbacktools

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/coursecompass/advisor-go/internal/catalog"
	domerrors "github.com/coursecompass/advisor-go/internal/errors"
	"github.com/coursecompass/advisor-go/internal/feedback"
	"github.com/coursecompass/advisor-go/internal/markup"
	"github.com/coursecompass/advisor-go/internal/rank"
	"github.com/coursecompass/advisor-go/internal/resolve"
	"github.com/coursecompass/advisor-go/internal/tools"
)

// ModuleName identifies this tool group in logs and metrics.
const ModuleName = "feedbacktools"

// Handler implements the feedback tools.
type Handler struct {
	deps tools.Deps
	wrap *domerrors.ErrorWrapper
}

// NewHandler creates the feedback tool handler.
func NewHandler(deps tools.Deps) *Handler {
	return &Handler{
		deps: deps,
		wrap: domerrors.NewWrapper(ModuleName, "handle"),
	}
}

// Tools returns the registered tool set.
func (h *Handler) Tools() []tools.Tool {
	return []tools.Tool{
		{
			Name:        "course_feedback",
			Description: "Aggregate one feedback category for a course, optionally narrowed to an instructor",
			Handler:     tools.Decode(h.CourseFeedback),
		},
		{
			Name:        "course_semantic_search",
			Description: "Rank a course's student quotes against a free-form criterion",
			Handler:     tools.Decode(h.CourseSemanticSearch),
		},
		{
			Name:        "feedback_semantic_suggest",
			Description: "Rank student quotes across a department's courses and recommend the best match",
			Handler:     tools.Decode(h.FeedbackSemanticSuggest),
		},
	}
}

// FeedbackRequest identifies a course, an optional instructor, and the
// category to aggregate.
type FeedbackRequest struct {
	Department string `json:"department"`
	CourseID   string `json:"course_id,omitempty"`
	CourseName string `json:"course_name,omitempty"`
	Instructor string `json:"instructor,omitempty"`
	Category   string `json:"category"`
}

// CourseFeedback aggregates one category of feedback across a course's
// sections. Course and instructor hints resolve concurrently.
func (h *Handler) CourseFeedback(ctx context.Context, req FeedbackRequest) (string, error) {
	category, err := feedback.ParseCategory(req.Category)
	if err != nil {
		return "", h.wrap.Wrap(err, "That isn't a feedback category I know. Try one like overallCourseImpression or courseDifficulty.")
	}

	refs, instructor, out, err := h.resolveCourseAndInstructor(ctx, req.Department, req.CourseID, req.CourseName, req.Instructor)
	if err != nil || out != "" {
		return out, err
	}

	course := refs[0]
	sections, err := h.deps.Store.GetCourseSections(ctx, course.ID, catalog.SectionFilter{Instructor: instructor})
	if err != nil {
		return "", h.wrap.Wrap(err, "I couldn't read the feedback data right now. Please try again in a moment.")
	}
	if len(sections) == 0 {
		return tools.NoData(courseLabel(course, instructor)), nil
	}

	result := h.deps.Aggregator.Aggregate(sections, category, feedback.Options{})
	if !result.HasData() {
		return tools.NoData(fmt.Sprintf("%s feedback for %s", category.Title(), courseLabel(course, instructor))), nil
	}

	return h.renderFeedback(course, instructor, result), nil
}

func (h *Handler) renderFeedback(course resolve.CourseRef, instructor string, result *feedback.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s for %s\n\n", result.Category.Title(), courseLabel(course, instructor))

	// Engagement charts
	writeDistributionChart(&b, "Weekly Hours", result.HoursPerWeek)
	writeDistributionChart(&b, "Average Attendance (%)", result.Attendance)
	writeDistributionChart(&b, "Interest Before", result.InterestBefore)
	writeDistributionChart(&b, "Interest After", result.InterestAfter)

	// Likert metric charts
	if len(result.Metrics) > 0 {
		b.WriteString("### Instructor Metrics\n\n")
		for _, name := range sortedMetricNames(result.Metrics) {
			avg := result.Metrics[name]
			chart, err := markup.BarChart(
				[]float64{round2(avg.Mean), round2(avg.Median)},
				[]string{name + " (mean)", name + " (median)"},
				5,
			)
			if err == nil {
				b.WriteString(chart + "\n\n")
			}
			fmt.Fprintf(&b, "- **%s**: mean %.2f, median %.2f, strongly agree %.2f%%\n\n",
				markup.Sanitize(name), avg.Mean, avg.Median, avg.StronglyAgree)
		}
	}

	if len(result.Summaries) > 0 {
		b.WriteString("### AI Summaries\n\n")
		b.WriteString(markup.LongShowMore(tools.TaggedList(result.Summaries)) + "\n\n")
	}
	if len(result.Quotes) > 0 {
		b.WriteString("### Student Quotes\n\n")
		b.WriteString(markup.ShowMore(tools.TaggedList(result.Quotes)) + "\n\n")
	}

	b.WriteString(markup.CallToAction("Want another feedback category, or a different course?"))
	return b.String()
}

// SearchRequest ranks one course's quotes against a criterion.
type SearchRequest struct {
	Department string `json:"department"`
	CourseID   string `json:"course_id,omitempty"`
	CourseName string `json:"course_name,omitempty"`
	Criterion  string `json:"criterion"`
	TopK       int    `json:"top_k,omitempty"`
}

// CourseSemanticSearch collects every student quote across the course's
// sections and categories and ranks them against the criterion.
func (h *Handler) CourseSemanticSearch(ctx context.Context, req SearchRequest) (string, error) {
	refs, err := h.deps.Resolver.ResolveCourse(req.Department, req.CourseID, req.CourseName)
	if err != nil {
		return "", h.wrap.Wrap(err, "I couldn't look at that department. Could you name the department again?")
	}
	if len(refs) == 0 {
		return tools.NotFound("that course", req.Department), nil
	}
	course := refs[0]

	sections, err := h.deps.Store.GetCourseSections(ctx, course.ID, catalog.SectionFilter{})
	if err != nil {
		return "", h.wrap.Wrap(err, "I couldn't read the feedback data right now. Please try again in a moment.")
	}

	corpus := quoteCorpus(sections, course.ID)
	if len(corpus) == 0 {
		return tools.NoData(fmt.Sprintf("student quotes for %s", course.ID)), nil
	}

	k := req.TopK
	if k <= 0 {
		k = h.deps.TopK
	}
	results, err := h.deps.Ranker.Rank(ctx, req.Criterion, corpus, k)
	if err != nil {
		return "", h.wrap.Wrap(err, "I couldn't rank the quotes right now. Please try again in a moment.")
	}
	if len(results) == 0 {
		return tools.NoData(fmt.Sprintf("student quotes for %s", course.ID)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Quotes from %s matching %q\n\n", course.ID, markup.Sanitize(req.Criterion))
	var list strings.Builder
	for _, r := range results {
		fmt.Fprintf(&list, "- \"%s\"\n\n", markup.Sanitize(r.Text))
	}
	b.WriteString(markup.ShowMore(list.String()) + "\n\n")
	b.WriteString(markup.CallToAction("Want the full feedback picture for this course?"))
	return b.String(), nil
}

// SuggestRequest ranks quotes across a department's courses.
type SuggestRequest struct {
	Department string `json:"department"`
	Query      string `json:"query"`
	TopK       int    `json:"top_k,omitempty"`
}

// FeedbackSemanticSuggest ranks student quotes across every course in
// the department and recommends the course whose quotes match best.
func (h *Handler) FeedbackSemanticSuggest(ctx context.Context, req SuggestRequest) (string, error) {
	courses, err := h.deps.Store.ListCoursesWithTerms(ctx, catalog.CourseFilter{Dept: req.Department})
	if err != nil {
		return "", h.wrap.Wrap(err, "I couldn't read the catalog right now. Please try again in a moment.")
	}
	if len(courses) == 0 {
		return tools.NotFound("any courses", req.Department), nil
	}

	var corpus []rank.Item
	for _, course := range courses {
		sections, err := h.deps.Store.GetCourseSections(ctx, course.ID, catalog.SectionFilter{})
		if err != nil {
			return "", h.wrap.Wrap(err, "I couldn't read the feedback data right now. Please try again in a moment.")
		}
		corpus = append(corpus, quoteCorpus(sections, course.ID)...)
	}
	if len(corpus) == 0 {
		return tools.NoData(fmt.Sprintf("student quotes in %s", req.Department)), nil
	}

	k := req.TopK
	if k <= 0 {
		k = h.deps.TopK
	}
	results, err := h.deps.Ranker.Rank(ctx, req.Query, corpus, k)
	if err != nil {
		return "", h.wrap.Wrap(err, "I couldn't rank the quotes right now. Please try again in a moment.")
	}
	if len(results) == 0 {
		return tools.NoData(fmt.Sprintf("student quotes in %s", req.Department)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Best match: %s\n\n", results[0].ID)
	var list strings.Builder
	for _, r := range results {
		fmt.Fprintf(&list, "- \"%s\" (%s)\n\n", markup.Sanitize(r.Text), r.ID)
	}
	b.WriteString(markup.ShowMore(list.String()) + "\n\n")
	b.WriteString(markup.CallToAction(fmt.Sprintf("Want to dig into feedback for %s?", results[0].ID)))
	return b.String(), nil
}

// resolveCourseAndInstructor runs the two independent resolutions
// concurrently. The third return carries a ready fallback blob when a
// hint did not resolve.
func (h *Handler) resolveCourseAndInstructor(ctx context.Context, dept, courseID, courseName, instructorHint string) ([]resolve.CourseRef, string, string, error) {
	var (
		refs       []resolve.CourseRef
		instructor string
		found      bool
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		refs, err = h.deps.Resolver.ResolveCourse(dept, courseID, courseName)
		return err
	})
	if instructorHint != "" {
		g.Go(func() error {
			var err error
			instructor, found, err = h.deps.Resolver.ResolveInstructor(dept, instructorHint)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, domerrors.ErrAmbiguousInput) {
			return nil, "", "", h.wrap.Wrap(err, "That department name is ambiguous. Could you be more specific?")
		}
		return nil, "", "", h.wrap.Wrap(err, "I couldn't look at that department. Could you name the department again?")
	}

	if len(refs) == 0 {
		return nil, "", tools.NotFound("that course", dept), nil
	}
	if instructorHint != "" && !found {
		return nil, "", tools.NotFound(fmt.Sprintf("an instructor matching %q", instructorHint), dept), nil
	}
	return refs, instructor, "", nil
}

// quoteCorpus flattens every quote of every category into rank items
// tagged with the course id.
func quoteCorpus(sections []catalog.CourseSection, courseID string) []rank.Item {
	var items []rank.Item
	seen := map[string]bool{}
	for _, section := range sections {
		if section.Feedback == nil {
			continue
		}
		doc, err := feedback.ParseDocument(section.Feedback)
		if err != nil {
			continue
		}
		for _, category := range feedback.Categories() {
			cf, ok := doc.Category(category)
			if !ok {
				continue
			}
			for _, quote := range cf.StudentQuotes {
				if quote == "" || seen[quote] {
					continue
				}
				seen[quote] = true
				items = append(items, rank.Item{ID: courseID, Text: quote})
			}
		}
	}
	return items
}

func courseLabel(course resolve.CourseRef, instructor string) string {
	label := course.ID
	if course.Name != "" {
		label = fmt.Sprintf("%s (%s)", course.ID, course.Name)
	}
	if instructor != "" {
		label += " taught by " + instructor
	}
	return markup.Sanitize(label)
}

func writeDistributionChart(b *strings.Builder, label string, stat feedback.DistributionStat) {
	if !stat.HasData {
		return
	}
	value := round2(stat.Value)
	chart, err := markup.BarChart([]float64{value}, []string{label}, math.Round(stat.Value)+10)
	if err != nil {
		return
	}
	b.WriteString(chart + "\n\n")
}

func sortedMetricNames(metrics map[string]feedback.MetricAverage) []string {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
