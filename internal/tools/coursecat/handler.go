// Package coursecat implements the course catalog tools: id/name
// resolution, interest-based course suggestions, schedule listings, and
// workload ranking.
package coursecat

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/coursecompass/advisor-go/internal/catalog"
	domerrors "github.com/coursecompass/advisor-go/internal/errors"
	"github.com/coursecompass/advisor-go/internal/feedback"
	"github.com/coursecompass/advisor-go/internal/markup"
	"github.com/coursecompass/advisor-go/internal/rank"
	"github.com/coursecompass/advisor-go/internal/tools"
)

// ModuleName identifies this tool group in logs and metrics.
const ModuleName = "coursecat"

// Handler implements the course catalog tools.
type Handler struct {
	deps tools.Deps
	wrap *domerrors.ErrorWrapper
}

// NewHandler creates the course catalog tool handler.
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
			Name:        "find_course_id",
			Description: "Resolve a course id or name hint to catalog course ids",
			Handler:     tools.Decode(h.FindCourseID),
		},
		{
			Name:        "suggest_courses_by_interests",
			Description: "Rank a department's course descriptions against stated interests",
			Handler:     tools.Decode(h.SuggestCoursesByInterests),
		},
		{
			Name:        "find_course_sections_this_term",
			Description: "List a course's sections running in the current term",
			Handler:     tools.Decode(h.FindCourseSectionsThisTerm),
		},
		{
			Name:        "rank_courses_by_weekly_hours",
			Description: "Rank a term's courses by reported weekly hours outside class, lightest first",
			Handler:     tools.Decode(h.RankCoursesByWeeklyHours),
		},
	}
}

// CourseRequest identifies a course by id and/or name hint within a
// department.
type CourseRequest struct {
	Department string `json:"department"`
	CourseID   string `json:"course_id,omitempty"`
	CourseName string `json:"course_name,omitempty"`
}

// FindCourseID echoes the resolution of a course hint: every id the hint
// matches, in catalog order.
func (h *Handler) FindCourseID(ctx context.Context, req CourseRequest) (string, error) {
	refs, err := h.deps.Resolver.ResolveCourse(req.Department, req.CourseID, req.CourseName)
	if err != nil {
		return "", h.wrap.Wrap(err, "I couldn't look at that department. Could you name the department again?")
	}
	if len(refs) == 0 {
		return tools.NotFound(hintLabel(req.CourseID, req.CourseName), req.Department), nil
	}

	var b strings.Builder
	b.WriteString("## Matching Courses\n\n")
	for _, ref := range refs {
		fmt.Fprintf(&b, "- **%s** — %s\n", ref.ID, markup.Sanitize(ref.Name))
	}
	b.WriteString("\n" + markup.CallToAction("Want feedback or the schedule for one of these?"))
	return b.String(), nil
}

// InterestsRequest carries free-text interests to match against course
// descriptions.
type InterestsRequest struct {
	Department string `json:"department"`
	Interests  string `json:"interests"`
	TopK       int    `json:"top_k,omitempty"`
}

// SuggestCoursesByInterests ranks the department's course descriptions
// against the stated interests and returns the best matches.
func (h *Handler) SuggestCoursesByInterests(ctx context.Context, req InterestsRequest) (string, error) {
	table, err := h.deps.Snapshot.Department(req.Department)
	if err != nil {
		return "", h.wrap.Wrap(err, "I couldn't look at that department. Could you name the department again?")
	}

	corpus := make([]rank.Item, 0, len(table.Courses))
	names := make(map[string]string, len(table.Courses))
	for _, course := range table.Courses {
		if course.Description == "" {
			continue
		}
		corpus = append(corpus, rank.Item{ID: course.ID, Text: course.Description})
		names[course.ID] = course.Name
	}

	k := req.TopK
	if k <= 0 {
		k = h.deps.TopK
	}
	results, err := h.deps.Ranker.Rank(ctx, req.Interests, corpus, k)
	if err != nil {
		return "", h.wrap.Wrap(err, "I couldn't rank courses right now. Please try again in a moment.")
	}
	if len(results) == 0 {
		return tools.NoData(fmt.Sprintf("courses in %s with descriptions", req.Department)), nil
	}

	var b strings.Builder
	b.WriteString("## Courses Matching Your Interests\n\n")
	for _, r := range results {
		fmt.Fprintf(&b, "- **%s — %s**\n\n  %s\n\n", r.ID, markup.Sanitize(names[r.ID]), markup.Sanitize(r.Text))
	}
	b.WriteString(markup.CallToAction("Want student feedback on any of these?"))
	return b.String(), nil
}

// FindCourseSectionsThisTerm lists the sections of a course running in
// the current term.
func (h *Handler) FindCourseSectionsThisTerm(ctx context.Context, req CourseRequest) (string, error) {
	refs, err := h.deps.Resolver.ResolveCourse(req.Department, req.CourseID, req.CourseName)
	if err != nil {
		return "", h.wrap.Wrap(err, "I couldn't look at that department. Could you name the department again?")
	}
	if len(refs) == 0 {
		return tools.NotFound(hintLabel(req.CourseID, req.CourseName), req.Department), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Sections in %s %d\n\n", h.deps.CurrentTerm, h.deps.CurrentYear)

	found := false
	for _, ref := range refs {
		sections, err := h.deps.Store.GetCourseSections(ctx, ref.ID, tools.CurrentTermFilter(h.deps))
		if err != nil {
			return "", h.wrap.Wrap(err, "I couldn't read the schedule right now. Please try again in a moment.")
		}
		if len(sections) == 0 {
			continue
		}
		found = true
		fmt.Fprintf(&b, "### %s — %s\n\n", ref.ID, markup.Sanitize(ref.Name))
		for _, s := range sections {
			fmt.Fprintf(&b, "- Section %s (Instructor: %s)\n", s.SectionID, markup.Sanitize(s.InstructorName))
		}
		b.WriteString("\n")
	}

	if !found {
		return tools.NoData(fmt.Sprintf("sections of %s running this term", refs[0].ID)), nil
	}
	b.WriteString(markup.CallToAction("Want feedback on any of these sections?"))
	return b.String(), nil
}

// HoursRequest scopes the weekly-hours ranking to one department and
// term. Term and year default to the current academic term.
type HoursRequest struct {
	Department string `json:"department"`
	Term       string `json:"term,omitempty"`
	Year       int    `json:"year,omitempty"`
}

// RankCoursesByWeeklyHours ranks every course-instructor pairing of the
// term by the hours per week students reported spending outside class,
// lightest first. Pairings without engagement feedback are left out.
func (h *Handler) RankCoursesByWeeklyHours(ctx context.Context, req HoursRequest) (string, error) {
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

	type pairing struct {
		courseID   string
		courseName string
		instructor string
		hours      float64
	}
	var rows []pairing
	for _, course := range courses {
		sections, err := h.deps.Store.GetCourseSections(ctx, course.ID, catalog.SectionFilter{Term: term, Year: year})
		if err != nil {
			return "", h.wrap.Wrap(err, "I couldn't read the feedback data right now. Please try again in a moment.")
		}

		byInstructor := map[string][]catalog.CourseSection{}
		var order []string
		for _, s := range sections {
			if _, ok := byInstructor[s.InstructorName]; !ok {
				order = append(order, s.InstructorName)
			}
			byInstructor[s.InstructorName] = append(byInstructor[s.InstructorName], s)
		}

		for _, instructor := range order {
			result := h.deps.Aggregator.Aggregate(byInstructor[instructor], feedback.CategoryStudentEngagement, feedback.Options{})
			if !result.HoursPerWeek.HasData {
				continue
			}
			rows = append(rows, pairing{
				courseID:   course.ID,
				courseName: course.Name,
				instructor: instructor,
				hours:      result.HoursPerWeek.Value,
			})
		}
	}
	if len(rows) == 0 {
		return tools.NoData(fmt.Sprintf("weekly-hours feedback for %s courses in %s %d", req.Department, term, year)), nil
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].hours < rows[j].hours })

	var b strings.Builder
	fmt.Fprintf(&b, "## Lightest Workloads in %s, %s %d\n\n", markup.Sanitize(req.Department), term, year)
	var list strings.Builder
	for i, row := range rows {
		fmt.Fprintf(&list, "%d. **%s — %s** with %s: ~%.1f hours/week outside class\n\n",
			i+1, row.courseID, markup.Sanitize(row.courseName), markup.Sanitize(row.instructor), row.hours)
	}
	b.WriteString(markup.LongShowMore(list.String()) + "\n\n")
	b.WriteString(markup.CallToAction("Want the full feedback picture for any of these?"))
	return b.String(), nil
}

func hintLabel(id, name string) string {
	switch {
	case id != "" && name != "":
		return fmt.Sprintf("%q (%s)", name, id)
	case id != "":
		return id
	case name != "":
		return fmt.Sprintf("%q", name)
	default:
		return "that course"
	}
}
