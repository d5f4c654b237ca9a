// Package core implements the core-curriculum tools. The core is a
// college-wide degree track: every student completes it regardless of
// department, so these tools take no department scope and read the
// track by its well-known catalog name.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coursecompass/advisor-go/internal/catalog"
	domerrors "github.com/coursecompass/advisor-go/internal/errors"
	"github.com/coursecompass/advisor-go/internal/markup"
	"github.com/coursecompass/advisor-go/internal/rank"
	"github.com/coursecompass/advisor-go/internal/tools"
)

// ModuleName identifies this tool group in logs and metrics.
const ModuleName = "core"

// TrackName is the catalog name of the college-wide core curriculum
// track.
const TrackName = "Core Curriculum"

// Handler implements the core-curriculum tools.
type Handler struct {
	deps tools.Deps
	wrap *domerrors.ErrorWrapper
}

// NewHandler creates the core-curriculum tool handler.
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
			Name:        "find_course_counts_towards_core",
			Description: "Check whether a course satisfies a core curriculum requirement",
			Handler:     tools.Decode(h.FindCourseCountsTowardsCore),
		},
		{
			Name:        "find_core_curriculum_description",
			Description: "Describe the core curriculum and its requirement areas",
			Handler:     tools.Decode(h.FindCoreCurriculumDescription),
		},
		{
			Name:        "find_core_section_details",
			Description: "List the courses and sequences of one core requirement area",
			Handler:     tools.Decode(h.FindCoreSectionDetails),
		},
		{
			Name:        "suggest_core_courses_by_interests",
			Description: "Rank core curriculum course descriptions against stated interests",
			Handler:     tools.Decode(h.SuggestCoreCoursesByInterests),
		},
	}
}

// CourseRequest identifies a course by id and/or name hint within its
// home department.
type CourseRequest struct {
	Department string `json:"department"`
	CourseID   string `json:"course_id,omitempty"`
	CourseName string `json:"course_name,omitempty"`
}

// FindCourseCountsTowardsCore checks whether the course appears in the
// core curriculum's requirements and reports every placement.
func (h *Handler) FindCourseCountsTowardsCore(ctx context.Context, req CourseRequest) (string, error) {
	refs, err := h.deps.Resolver.ResolveCourse(req.Department, req.CourseID, req.CourseName)
	if err != nil {
		return "", h.wrap.Wrap(err, "I couldn't look at that department. Could you name the department again?")
	}
	if len(refs) == 0 {
		return tools.NotFound("that course", req.Department), nil
	}
	course := refs[0]

	track, out, err := h.loadTrack(ctx)
	if err != nil || out != "" {
		return out, err
	}

	placements := track.Placements(course.ID)
	if len(placements) == 0 {
		return markup.Fallback(fmt.Sprintf(
			"I couldn't find %s in the %s requirements. It may not count, or it may not be in my data yet.",
			course.ID, TrackName)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s Requirement Check\n\n", TrackName)
	fmt.Fprintf(&b, "**%s — %s** counts towards the %s in:\n\n", course.ID, markup.Sanitize(course.Name), TrackName)
	for _, p := range placements {
		b.WriteString(tools.PlacementLine(p))
	}
	b.WriteString("\n" + markup.CallToAction("Want the full course list for one of these requirement areas?"))
	return b.String(), nil
}

// DescriptionRequest is empty: the core curriculum needs no scope.
type DescriptionRequest struct{}

// FindCoreCurriculumDescription describes the core curriculum and each
// of its requirement areas.
func (h *Handler) FindCoreCurriculumDescription(ctx context.Context, _ DescriptionRequest) (string, error) {
	track, out, err := h.loadTrack(ctx)
	if err != nil || out != "" {
		return out, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s (%g units)\n\n", TrackName, track.TotalUnits)
	if track.Description != "" {
		b.WriteString(markup.Sanitize(track.Description) + "\n\n")
	}

	if len(track.Sections) > 0 {
		b.WriteString("### Requirement Areas\n\n")
		var list strings.Builder
		for _, section := range track.Sections {
			fmt.Fprintf(&list, "- **%s**", markup.Sanitize(section.Name))
			if section.Description != "" {
				fmt.Fprintf(&list, ": %s", markup.Sanitize(section.Description))
			}
			list.WriteString("\n\n")
		}
		b.WriteString(markup.LongShowMore(list.String()) + "\n\n")
	}

	b.WriteString(markup.CallToAction("Want the details of one requirement area?"))
	return b.String(), nil
}

// SectionRequest names one core requirement area.
type SectionRequest struct {
	SectionName string `json:"section_name"`
}

// FindCoreSectionDetails lists the courses, sequences, and subsections
// of one core requirement area. Area names match case-insensitively.
func (h *Handler) FindCoreSectionDetails(ctx context.Context, req SectionRequest) (string, error) {
	track, out, err := h.loadTrack(ctx)
	if err != nil || out != "" {
		return out, err
	}

	section := findSection(track.Sections, req.SectionName)
	if section == nil {
		names := make([]string, 0, len(track.Sections))
		for _, s := range track.Sections {
			names = append(names, s.Name)
		}
		return markup.Fallback(fmt.Sprintf(
			"Hmm, I don't know a %s area called %q. The areas I know are: %s.",
			TrackName, req.SectionName, markup.Sanitize(strings.Join(names, ", ")))), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s: %s\n\n", TrackName, markup.Sanitize(section.Name))
	if section.Description != "" {
		b.WriteString(markup.Sanitize(section.Description) + "\n\n")
	}

	if len(section.Sequences) > 0 {
		b.WriteString("### Sequences\n\n")
		var list strings.Builder
		for _, seq := range section.Sequences {
			fmt.Fprintf(&list, "- %s\n\n", markup.Sanitize(strings.Join(seq, " then ")))
		}
		b.WriteString(markup.ShowMore(list.String()) + "\n\n")
	}

	if len(section.Courses) > 0 {
		b.WriteString("### Courses\n\n")
		var list strings.Builder
		for _, id := range section.Courses {
			list.WriteString(h.courseLine(ctx, id))
		}
		b.WriteString(markup.LongShowMore(list.String()) + "\n\n")
	}

	for _, sub := range section.SubSections {
		fmt.Fprintf(&b, "### %s\n\n", markup.Sanitize(sub.Name))
		if sub.Description != "" {
			b.WriteString(markup.Sanitize(sub.Description) + "\n\n")
		}
		var list strings.Builder
		for _, id := range sub.Courses {
			list.WriteString(h.courseLine(ctx, id))
		}
		for _, seq := range sub.Sequences {
			fmt.Fprintf(&list, "- Sequence: %s\n\n", markup.Sanitize(strings.Join(seq, " then ")))
		}
		if list.Len() > 0 {
			b.WriteString(markup.ShowMore(list.String()) + "\n\n")
		}
	}

	b.WriteString(markup.CallToAction("Want feedback on any of these courses?"))
	return b.String(), nil
}

// InterestsRequest carries free-text interests to match against core
// course descriptions.
type InterestsRequest struct {
	Interests string `json:"interests"`
	TopK      int    `json:"top_k,omitempty"`
}

// SuggestCoreCoursesByInterests ranks the descriptions of every course
// the core requires against the stated interests.
func (h *Handler) SuggestCoreCoursesByInterests(ctx context.Context, req InterestsRequest) (string, error) {
	track, out, err := h.loadTrack(ctx)
	if err != nil || out != "" {
		return out, err
	}

	var (
		corpus []rank.Item
		names  = map[string]string{}
	)
	for _, id := range track.CourseIDs() {
		course, err := h.deps.Store.GetCourseByID(ctx, id)
		if err != nil {
			if errors.Is(err, domerrors.ErrNotFound) {
				continue
			}
			return "", h.wrap.Wrap(err, "I couldn't read the catalog right now. Please try again in a moment.")
		}
		if course.Description == "" {
			continue
		}
		corpus = append(corpus, rank.Item{ID: course.ID, Text: course.Description})
		names[course.ID] = course.Name
	}
	if len(corpus) == 0 {
		return tools.NoData(fmt.Sprintf("%s courses with descriptions", TrackName)), nil
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
		return tools.NoData(fmt.Sprintf("%s courses with descriptions", TrackName)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s Courses Matching Your Interests\n\n", TrackName)
	for _, r := range results {
		fmt.Fprintf(&b, "- **%s — %s**\n\n  %s\n\n", r.ID, markup.Sanitize(names[r.ID]), markup.Sanitize(r.Text))
	}
	b.WriteString(markup.CallToAction("Want to know which requirement area one of these satisfies?"))
	return b.String(), nil
}

// loadTrack reads the core curriculum track. The second return carries a
// ready fallback blob when the track is not in the catalog.
func (h *Handler) loadTrack(ctx context.Context) (*catalog.DegreeTrack, string, error) {
	track, err := h.deps.Store.GetDegreeTrackByName(ctx, TrackName)
	if errors.Is(err, domerrors.ErrNotFound) {
		return nil, tools.NoData(fmt.Sprintf("the %s requirements", TrackName)), nil
	}
	if err != nil {
		return nil, "", h.wrap.Wrap(err, "I couldn't read the degree catalog right now. Please try again in a moment.")
	}
	return track, "", nil
}

// courseLine renders one required course, with its name and description
// when the catalog knows the course.
func (h *Handler) courseLine(ctx context.Context, id string) string {
	course, err := h.deps.Store.GetCourseByID(ctx, id)
	if err != nil {
		return fmt.Sprintf("- **%s**\n\n", markup.Sanitize(id))
	}
	line := fmt.Sprintf("- **%s — %s**", course.ID, markup.Sanitize(course.Name))
	if course.Description != "" {
		line += ": " + markup.Sanitize(course.Description)
	}
	return line + "\n\n"
}

func findSection(sections []catalog.DegreeSection, name string) *catalog.DegreeSection {
	for i := range sections {
		if strings.EqualFold(strings.TrimSpace(sections[i].Name), strings.TrimSpace(name)) {
			return &sections[i]
		}
	}
	return nil
}
