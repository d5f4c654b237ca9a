// Package instructors implements the instructor-centric tools: feedback
// lookup, quote search, side-by-side comparison, teaching history, and
// department schedule listings.
package instructors

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/coursecompass/advisor-go/internal/catalog"
	domerrors "github.com/coursecompass/advisor-go/internal/errors"
	"github.com/coursecompass/advisor-go/internal/feedback"
	"github.com/coursecompass/advisor-go/internal/markup"
	"github.com/coursecompass/advisor-go/internal/randutil"
	"github.com/coursecompass/advisor-go/internal/rank"
	"github.com/coursecompass/advisor-go/internal/sliceutil"
	"github.com/coursecompass/advisor-go/internal/tools"
)

// ModuleName identifies this tool group in logs and metrics.
const ModuleName = "instructors"

// Handler implements the instructor tools.
type Handler struct {
	deps tools.Deps
	wrap *domerrors.ErrorWrapper
}

// NewHandler creates the instructor tool handler.
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
			Name:        "find_instructor_feedback",
			Description: "Aggregate one feedback category across everything an instructor taught",
			Handler:     tools.Decode(h.FindInstructorFeedback),
		},
		{
			Name:        "find_instructor_quotes",
			Description: "Rank an instructor's student quotes against a free-form criterion",
			Handler:     tools.Decode(h.FindInstructorQuotes),
		},
		{
			Name:        "compare_instructors_for_course",
			Description: "Compare instructors of a course with sampled quotes and metric charts",
			Handler:     tools.Decode(h.CompareInstructorsForCourse),
		},
		{
			Name:        "find_classes_of_instructor",
			Description: "List the courses an instructor has taught, with terms",
			Handler:     tools.Decode(h.FindClassesOfInstructor),
		},
		{
			Name:        "find_instructors_and_classes_by_department",
			Description: "List who is teaching what in a department for a term",
			Handler:     tools.Decode(h.FindInstructorsAndClassesByDepartment),
		},
		{
			Name:        "find_classes_instructor_is_not_teaching",
			Description: "List the courses an instructor has taught but is not teaching in a term",
			Handler:     tools.Decode(h.FindClassesInstructorIsNotTeaching),
		},
	}
}

// InstructorRequest identifies an instructor within a department.
type InstructorRequest struct {
	Department string `json:"department"`
	Instructor string `json:"instructor"`
	Category   string `json:"category,omitempty"`
}

// FindInstructorFeedback aggregates one category across every section the
// instructor taught in the department. The category defaults to the
// overall impression.
func (h *Handler) FindInstructorFeedback(ctx context.Context, req InstructorRequest) (string, error) {
	category := feedback.CategoryOverallImpression
	if req.Category != "" {
		var err error
		category, err = feedback.ParseCategory(req.Category)
		if err != nil {
			return "", h.wrap.Wrap(err, "That isn't a feedback category I know. Try one like overallCourseImpression or courseDifficulty.")
		}
	}

	name, found, err := h.deps.Resolver.ResolveInstructor(req.Department, req.Instructor)
	if err != nil {
		return "", h.wrap.Wrap(err, "I couldn't look at that department. Could you name the department again?")
	}
	if !found {
		return tools.NotFound(fmt.Sprintf("an instructor matching %q", req.Instructor), req.Department), nil
	}

	sections, err := h.deps.Store.GetInstructorSections(ctx, req.Department, name, catalog.SectionFilter{})
	if err != nil {
		return "", h.wrap.Wrap(err, "I couldn't read the feedback data right now. Please try again in a moment.")
	}
	if len(sections) == 0 {
		return tools.NoData(fmt.Sprintf("sections taught by %s", name)), nil
	}

	result := h.deps.Aggregator.Aggregate(sections, category, feedback.Options{})
	if !result.HasData() {
		return tools.NoData(fmt.Sprintf("%s feedback for %s", category.Title(), name)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s for %s\n\n", result.Category.Title(), markup.Sanitize(name))
	writeMetricLines(&b, result.Metrics)
	if len(result.Summaries) > 0 {
		b.WriteString("### AI Summaries\n\n")
		b.WriteString(markup.LongShowMore(tools.TaggedList(result.Summaries)) + "\n\n")
	}
	if len(result.Quotes) > 0 {
		b.WriteString("### Student Quotes\n\n")
		b.WriteString(markup.ShowMore(tools.TaggedList(result.Quotes)) + "\n\n")
	}
	b.WriteString(markup.CallToAction("Want to compare this instructor against others for a course?"))
	return b.String(), nil
}

// QuotesRequest ranks an instructor's quotes against a criterion.
type QuotesRequest struct {
	Department string `json:"department"`
	Instructor string `json:"instructor"`
	Criterion  string `json:"criterion"`
	TopK       int    `json:"top_k,omitempty"`
}

// FindInstructorQuotes collects every quote from the instructor's
// sections and ranks them against the criterion.
func (h *Handler) FindInstructorQuotes(ctx context.Context, req QuotesRequest) (string, error) {
	name, found, err := h.deps.Resolver.ResolveInstructor(req.Department, req.Instructor)
	if err != nil {
		return "", h.wrap.Wrap(err, "I couldn't look at that department. Could you name the department again?")
	}
	if !found {
		return tools.NotFound(fmt.Sprintf("an instructor matching %q", req.Instructor), req.Department), nil
	}

	sections, err := h.deps.Store.GetInstructorSections(ctx, req.Department, name, catalog.SectionFilter{})
	if err != nil {
		return "", h.wrap.Wrap(err, "I couldn't read the feedback data right now. Please try again in a moment.")
	}

	corpus := sectionQuotes(sections)
	if len(corpus) == 0 {
		return tools.NoData(fmt.Sprintf("student quotes about %s", name)), nil
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
		return tools.NoData(fmt.Sprintf("student quotes about %s", name)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Quotes about %s matching %q\n\n", markup.Sanitize(name), markup.Sanitize(req.Criterion))
	var list strings.Builder
	for _, r := range results {
		fmt.Fprintf(&list, "- \"%s\" (%s)\n\n", markup.Sanitize(r.Text), r.ID)
	}
	b.WriteString(markup.ShowMore(list.String()) + "\n\n")
	b.WriteString(markup.CallToAction("Want this instructor's full feedback picture?"))
	return b.String(), nil
}

// CompareRequest compares instructors who have taught a course.
type CompareRequest struct {
	Department  string   `json:"department"`
	CourseID    string   `json:"course_id,omitempty"`
	CourseName  string   `json:"course_name,omitempty"`
	Instructors []string `json:"instructors,omitempty"`
	Category    string   `json:"category,omitempty"`
}

// CompareInstructorsForCourse renders a side-by-side comparison of the
// course's instructors: a metric chart and a small random sample of
// quotes for each. Instructor hints narrow the comparison; without them
// every instructor on record is compared.
func (h *Handler) CompareInstructorsForCourse(ctx context.Context, req CompareRequest) (string, error) {
	category := feedback.CategoryOverallImpression
	if req.Category != "" {
		var err error
		category, err = feedback.ParseCategory(req.Category)
		if err != nil {
			return "", h.wrap.Wrap(err, "That isn't a feedback category I know. Try one like overallCourseImpression or courseDifficulty.")
		}
	}

	refs, err := h.deps.Resolver.ResolveCourse(req.Department, req.CourseID, req.CourseName)
	if err != nil {
		return "", h.wrap.Wrap(err, "I couldn't look at that department. Could you name the department again?")
	}
	if len(refs) == 0 {
		return tools.NotFound("that course", req.Department), nil
	}
	course := refs[0]

	names, out, err := h.compareRoster(ctx, course.ID, req)
	if err != nil || out != "" {
		return out, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Comparing Instructors for %s\n\n", course.ID)

	compared := 0
	for _, name := range names {
		sections, err := h.deps.Store.GetCourseSections(ctx, course.ID, catalog.SectionFilter{Instructor: name})
		if err != nil {
			return "", h.wrap.Wrap(err, "I couldn't read the feedback data right now. Please try again in a moment.")
		}
		result := h.deps.Aggregator.Aggregate(sections, category, feedback.Options{})
		if !result.HasData() {
			continue
		}
		if compared > 0 {
			b.WriteString(markup.Separator + "\n\n")
		}
		compared++
		fmt.Fprintf(&b, "### %s\n\n", markup.Sanitize(name))
		writeMetricLines(&b, result.Metrics)

		quotes := randutil.Sample(h.deps.Rand, result.Quotes, feedback.MaxQuotesPerInstructor)
		if len(quotes) > 0 {
			b.WriteString(markup.ShowMore(tools.TaggedList(quotes)) + "\n\n")
		}
	}

	if compared == 0 {
		return tools.NoData(fmt.Sprintf("%s feedback for instructors of %s", category.Title(), course.ID)), nil
	}
	b.WriteString(markup.CallToAction("Want the full feedback picture for one of these instructors?"))
	return b.String(), nil
}

// compareRoster resolves the comparison roster: explicit hints when
// given, otherwise every instructor on the course's sections. The second
// return carries a ready fallback blob on a resolution miss.
func (h *Handler) compareRoster(ctx context.Context, courseID string, req CompareRequest) ([]string, string, error) {
	if len(req.Instructors) > 0 {
		names := make([]string, 0, len(req.Instructors))
		for _, hint := range req.Instructors {
			name, found, err := h.deps.Resolver.ResolveInstructor(req.Department, hint)
			if err != nil {
				return nil, "", h.wrap.Wrap(err, "I couldn't look at that department. Could you name the department again?")
			}
			if !found {
				return nil, tools.NotFound(fmt.Sprintf("an instructor matching %q", hint), req.Department), nil
			}
			names = append(names, name)
		}
		return sliceutil.Deduplicate(names, func(n string) string { return n }), "", nil
	}

	sections, err := h.deps.Store.GetCourseSections(ctx, courseID, catalog.SectionFilter{})
	if err != nil {
		return nil, "", h.wrap.Wrap(err, "I couldn't read the feedback data right now. Please try again in a moment.")
	}
	var names []string
	for _, s := range sliceutil.Deduplicate(sections, func(s catalog.CourseSection) string { return s.InstructorName }) {
		if s.InstructorName != "" {
			names = append(names, s.InstructorName)
		}
	}
	if len(names) == 0 {
		return nil, tools.NoData(fmt.Sprintf("instructors on record for %s", courseID)), nil
	}
	return names, "", nil
}

// ClassesRequest lists an instructor's teaching history.
type ClassesRequest struct {
	Department string `json:"department"`
	Instructor string `json:"instructor"`
}

// FindClassesOfInstructor lists every course the instructor has taught in
// the department, grouped by course with the terms on record.
func (h *Handler) FindClassesOfInstructor(ctx context.Context, req ClassesRequest) (string, error) {
	name, found, err := h.deps.Resolver.ResolveInstructor(req.Department, req.Instructor)
	if err != nil {
		return "", h.wrap.Wrap(err, "I couldn't look at that department. Could you name the department again?")
	}
	if !found {
		return tools.NotFound(fmt.Sprintf("an instructor matching %q", req.Instructor), req.Department), nil
	}

	sections, err := h.deps.Store.GetInstructorSections(ctx, req.Department, name, catalog.SectionFilter{})
	if err != nil {
		return "", h.wrap.Wrap(err, "I couldn't read the teaching history right now. Please try again in a moment.")
	}
	if len(sections) == 0 {
		return tools.NoData(fmt.Sprintf("sections taught by %s", name)), nil
	}

	terms := map[string][]string{}
	var courseIDs []string
	for _, s := range sections {
		label := fmt.Sprintf("%s %d", s.Term, s.Year)
		if _, ok := terms[s.CourseID]; !ok {
			courseIDs = append(courseIDs, s.CourseID)
		}
		if !slices.Contains(terms[s.CourseID], label) {
			terms[s.CourseID] = append(terms[s.CourseID], label)
		}
	}
	sort.Strings(courseIDs)

	var b strings.Builder
	fmt.Fprintf(&b, "## Courses Taught by %s\n\n", markup.Sanitize(name))
	for _, id := range courseIDs {
		fmt.Fprintf(&b, "- **%s**: %s\n", id, strings.Join(terms[id], ", "))
	}
	b.WriteString("\n" + markup.CallToAction("Want feedback on any of these courses?"))
	return b.String(), nil
}

// DepartmentTermRequest scopes a listing to one department and term.
// Term and year default to the current academic term.
type DepartmentTermRequest struct {
	Department string `json:"department"`
	Term       string `json:"term,omitempty"`
	Year       int    `json:"year,omitempty"`
}

// FindInstructorsAndClassesByDepartment lists every instructor with
// sections in the department for the term, with the courses each is
// teaching.
func (h *Handler) FindInstructorsAndClassesByDepartment(ctx context.Context, req DepartmentTermRequest) (string, error) {
	term, year := req.Term, req.Year
	if term == "" {
		term = h.deps.CurrentTerm
	}
	if year == 0 {
		year = h.deps.CurrentYear
	}

	courses, err := h.deps.Store.ListCoursesWithTerms(ctx, catalog.CourseFilter{Dept: req.Department, Term: term, Year: year})
	if err != nil {
		return "", h.wrap.Wrap(err, "I couldn't read the catalog right now. Please try again in a moment.")
	}
	if len(courses) == 0 {
		return tools.NotFound(fmt.Sprintf("courses running in %s %d", term, year), req.Department), nil
	}

	teaching := map[string][]string{}
	for _, course := range courses {
		sections, err := h.deps.Store.GetCourseSections(ctx, course.ID, catalog.SectionFilter{Term: term, Year: year})
		if err != nil {
			return "", h.wrap.Wrap(err, "I couldn't read the schedule right now. Please try again in a moment.")
		}
		for _, s := range sections {
			if s.InstructorName == "" {
				continue
			}
			if !slices.Contains(teaching[s.InstructorName], s.CourseID) {
				teaching[s.InstructorName] = append(teaching[s.InstructorName], s.CourseID)
			}
		}
	}
	if len(teaching) == 0 {
		return tools.NoData(fmt.Sprintf("instructors on the %s %d schedule for %s", term, year, req.Department)), nil
	}

	names := make([]string, 0, len(teaching))
	for name := range teaching {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "## Instructors Teaching in %s, %s %d\n\n", markup.Sanitize(req.Department), term, year)
	var list strings.Builder
	for _, name := range names {
		fmt.Fprintf(&list, "- **%s**: %s\n", markup.Sanitize(name), strings.Join(teaching[name], ", "))
	}
	b.WriteString(markup.LongShowMore(list.String()) + "\n\n")
	for _, name := range randutil.Sample(h.deps.Rand, names, 2) {
		b.WriteString(markup.CallToAction(fmt.Sprintf("Want student feedback on %s?", markup.Sanitize(name))) + "\n")
	}
	return b.String(), nil
}

// NotTeachingRequest asks which of an instructor's past courses are off
// their schedule for a term. Term and year default to the current
// academic term.
type NotTeachingRequest struct {
	Department string `json:"department"`
	Instructor string `json:"instructor"`
	Term       string `json:"term,omitempty"`
	Year       int    `json:"year,omitempty"`
}

// FindClassesInstructorIsNotTeaching lists the courses the instructor
// has taught in the department but is not teaching in the given term:
// the full teaching history minus the term's schedule.
func (h *Handler) FindClassesInstructorIsNotTeaching(ctx context.Context, req NotTeachingRequest) (string, error) {
	term, year := req.Term, req.Year
	if term == "" {
		term = h.deps.CurrentTerm
	}
	if year == 0 {
		year = h.deps.CurrentYear
	}

	name, found, err := h.deps.Resolver.ResolveInstructor(req.Department, req.Instructor)
	if err != nil {
		return "", h.wrap.Wrap(err, "I couldn't look at that department. Could you name the department again?")
	}
	if !found {
		return tools.NotFound(fmt.Sprintf("an instructor matching %q", req.Instructor), req.Department), nil
	}

	all, err := h.deps.Store.GetInstructorSections(ctx, req.Department, name, catalog.SectionFilter{})
	if err != nil {
		return "", h.wrap.Wrap(err, "I couldn't read the teaching history right now. Please try again in a moment.")
	}
	if len(all) == 0 {
		return tools.NoData(fmt.Sprintf("sections taught by %s", name)), nil
	}

	inTerm := map[string]bool{}
	for _, s := range all {
		if s.Term == term && s.Year == year {
			inTerm[s.CourseID] = true
		}
	}

	var others []string
	for _, s := range all {
		if !inTerm[s.CourseID] && !slices.Contains(others, s.CourseID) {
			others = append(others, s.CourseID)
		}
	}
	sort.Strings(others)

	var b strings.Builder
	fmt.Fprintf(&b, "## Courses %s Is Not Teaching in %s %d\n\n", markup.Sanitize(name), term, year)
	if len(others) == 0 {
		fmt.Fprintf(&b, "Every course %s has on record is on their %s %d schedule.\n\n", markup.Sanitize(name), term, year)
	} else {
		for _, id := range others {
			fmt.Fprintf(&b, "- %s\n", id)
		}
		b.WriteString("\n")
	}
	b.WriteString(markup.CallToAction(fmt.Sprintf("Want %s's full teaching history?", markup.Sanitize(name))))
	return b.String(), nil
}

// sectionQuotes flattens every quote of every category into rank items
// tagged with the section's course id.
func sectionQuotes(sections []catalog.CourseSection) []rank.Item {
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
				items = append(items, rank.Item{ID: section.CourseID, Text: quote})
			}
		}
	}
	return items
}

func writeMetricLines(b *strings.Builder, metrics map[string]feedback.MetricAverage) {
	if len(metrics) == 0 {
		return
	}
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make([]float64, 0, len(names))
	labels := make([]string, 0, len(names))
	for _, name := range names {
		avg := metrics[name]
		values = append(values, avg.Mean)
		labels = append(labels, name)
		fmt.Fprintf(b, "- **%s**: mean %.2f, median %.2f, strongly agree %.2f%%\n",
			markup.Sanitize(name), avg.Mean, avg.Median, avg.StronglyAgree)
	}
	b.WriteString("\n")
	if chart, err := markup.BarChart(values, labels, 5); err == nil {
		b.WriteString(chart + "\n\n")
	}
}
