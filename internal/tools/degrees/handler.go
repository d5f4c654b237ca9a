// Package degrees implements the degree-track tools: track listings,
// descriptions, requirement breakdowns, course requirement checks, and
// interest-based suggestions.
package degrees

import (
	"context"
	"fmt"
	"strings"

	"github.com/coursecompass/advisor-go/internal/catalog"
	domerrors "github.com/coursecompass/advisor-go/internal/errors"
	"github.com/coursecompass/advisor-go/internal/markup"
	"github.com/coursecompass/advisor-go/internal/rank"
	"github.com/coursecompass/advisor-go/internal/tools"
)

// ModuleName identifies this tool group in logs and metrics.
const ModuleName = "degrees"

// Handler implements the degree-track tools.
type Handler struct {
	deps tools.Deps
	wrap *domerrors.ErrorWrapper
}

// NewHandler creates the degree-track tool handler.
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
			Name:        "find_degree_tracks_by_department",
			Description: "List a department's degree tracks",
			Handler:     tools.Decode(h.FindDegreeTracksByDepartment),
		},
		{
			Name:        "find_degree_track_description",
			Description: "Describe one degree track",
			Handler:     tools.Decode(h.FindDegreeTrackDescription),
		},
		{
			Name:        "find_courses_by_degree_track",
			Description: "List a degree track's required courses grouped by requirement section",
			Handler:     tools.Decode(h.FindCoursesByDegreeTrack),
		},
		{
			Name:        "find_course_counts_towards_degree",
			Description: "Check whether a course satisfies a degree track requirement",
			Handler:     tools.Decode(h.FindCourseCountsTowardsDegree),
		},
		{
			Name:        "suggest_degrees_by_interests",
			Description: "Rank a department's degree track descriptions against stated interests",
			Handler:     tools.Decode(h.SuggestDegreesByInterests),
		},
	}
}

// DepartmentRequest names a department.
type DepartmentRequest struct {
	Department string `json:"department"`
}

// FindDegreeTracksByDepartment lists the department's degree tracks.
func (h *Handler) FindDegreeTracksByDepartment(ctx context.Context, req DepartmentRequest) (string, error) {
	tracks, err := h.deps.Store.ListDegreeTracks(ctx, req.Department)
	if err != nil {
		return "", h.wrap.Wrap(err, "I couldn't read the degree catalog right now. Please try again in a moment.")
	}
	if len(tracks) == 0 {
		return tools.NotFound("any degree tracks", req.Department), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Degree Tracks in %s\n\n", markup.Sanitize(req.Department))
	for _, track := range tracks {
		fmt.Fprintf(&b, "- **%s** (%s, %g units)\n", markup.Sanitize(track.Name), track.Type, track.TotalUnits)
	}
	b.WriteString("\n" + markup.CallToAction("Want the requirements for one of these tracks?"))
	return b.String(), nil
}

// TrackRequest identifies a degree track within a department.
type TrackRequest struct {
	Department string `json:"department"`
	TrackName  string `json:"track_name"`
}

// FindDegreeTrackDescription resolves a track hint and returns its
// description.
func (h *Handler) FindDegreeTrackDescription(ctx context.Context, req TrackRequest) (string, error) {
	track, out, err := h.resolveTrack(ctx, req)
	if err != nil || out != "" {
		return out, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s (%s, %g units)\n\n", markup.Sanitize(track.Name), track.Type, track.TotalUnits)
	if track.Description == "" {
		b.WriteString("No description is on record for this track.\n\n")
	} else {
		b.WriteString(markup.Sanitize(track.Description) + "\n\n")
	}
	b.WriteString(markup.CallToAction("Want the course requirements for this track?"))
	return b.String(), nil
}

// FindCoursesByDegreeTrack lists a track's required courses grouped by
// requirement section, with subsections and sequence alternatives kept
// intact.
func (h *Handler) FindCoursesByDegreeTrack(ctx context.Context, req TrackRequest) (string, error) {
	track, out, err := h.resolveTrack(ctx, req)
	if err != nil || out != "" {
		return out, err
	}
	if len(track.Sections) == 0 {
		return tools.NoData(fmt.Sprintf("course requirements for %s", track.Name)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Requirements for %s\n\n", markup.Sanitize(track.Name))
	for _, section := range track.Sections {
		fmt.Fprintf(&b, "### %s\n\n", markup.Sanitize(section.Name))
		if section.Description != "" {
			b.WriteString(markup.Sanitize(section.Description) + "\n\n")
		}
		writeRequirements(&b, section.Courses, section.Sequences, "")
		for _, sub := range section.SubSections {
			fmt.Fprintf(&b, "- **%s**\n", markup.Sanitize(sub.Name))
			writeRequirements(&b, sub.Courses, sub.Sequences, "  ")
		}
		b.WriteString("\n")
	}
	b.WriteString(markup.CallToAction("Want details or feedback on any of these courses?"))
	return b.String(), nil
}

// CourseTrackRequest pairs a course hint with a degree track, both
// within one department.
type CourseTrackRequest struct {
	Department string `json:"department"`
	TrackName  string `json:"track_name"`
	CourseID   string `json:"course_id,omitempty"`
	CourseName string `json:"course_name,omitempty"`
}

// FindCourseCountsTowardsDegree checks whether the course appears in the
// track's requirements and reports every placement.
func (h *Handler) FindCourseCountsTowardsDegree(ctx context.Context, req CourseTrackRequest) (string, error) {
	track, out, err := h.resolveTrack(ctx, TrackRequest{Department: req.Department, TrackName: req.TrackName})
	if err != nil || out != "" {
		return out, err
	}

	refs, err := h.deps.Resolver.ResolveCourse(req.Department, req.CourseID, req.CourseName)
	if err != nil {
		return "", h.wrap.Wrap(err, "I couldn't look at that department. Could you name the department again?")
	}
	if len(refs) == 0 {
		return tools.NotFound("that course", req.Department), nil
	}
	course := refs[0]

	placements := track.Placements(course.ID)
	if len(placements) == 0 {
		return markup.Fallback(fmt.Sprintf(
			"I couldn't find %s in the requirements for %s. It may not count, or it may not be in my data yet.",
			course.ID, markup.Sanitize(track.Name))), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Requirement Check: %s\n\n", markup.Sanitize(track.Name))
	fmt.Fprintf(&b, "**%s — %s** counts towards **%s** in:\n\n",
		course.ID, markup.Sanitize(course.Name), markup.Sanitize(track.Name))
	for _, p := range placements {
		b.WriteString(tools.PlacementLine(p))
	}
	b.WriteString("\n" + markup.CallToAction("Want the full requirement breakdown for this track?"))
	return b.String(), nil
}

// InterestsRequest carries free-text interests to match against track
// descriptions.
type InterestsRequest struct {
	Department string `json:"department"`
	Interests  string `json:"interests"`
	TopK       int    `json:"top_k,omitempty"`
}

// SuggestDegreesByInterests ranks the department's degree track
// descriptions against the stated interests.
func (h *Handler) SuggestDegreesByInterests(ctx context.Context, req InterestsRequest) (string, error) {
	summaries, err := h.deps.Store.ListDegreeTracks(ctx, req.Department)
	if err != nil {
		return "", h.wrap.Wrap(err, "I couldn't read the degree catalog right now. Please try again in a moment.")
	}
	if len(summaries) == 0 {
		return tools.NotFound("any degree tracks", req.Department), nil
	}

	var corpus []rank.Item
	for _, summary := range summaries {
		track, err := h.deps.Store.GetDegreeTrack(ctx, req.Department, summary.Name)
		if err != nil {
			return "", h.wrap.Wrap(err, "I couldn't read the degree catalog right now. Please try again in a moment.")
		}
		if track.Description == "" {
			continue
		}
		corpus = append(corpus, rank.Item{ID: track.Name, Text: track.Description})
	}
	if len(corpus) == 0 {
		return tools.NoData(fmt.Sprintf("degree tracks in %s with descriptions", req.Department)), nil
	}

	k := req.TopK
	if k <= 0 {
		k = h.deps.TopK
	}
	results, err := h.deps.Ranker.Rank(ctx, req.Interests, corpus, k)
	if err != nil {
		return "", h.wrap.Wrap(err, "I couldn't rank degree tracks right now. Please try again in a moment.")
	}
	if len(results) == 0 {
		return tools.NoData(fmt.Sprintf("degree tracks in %s with descriptions", req.Department)), nil
	}

	var b strings.Builder
	b.WriteString("## Degree Tracks Matching Your Interests\n\n")
	for _, r := range results {
		fmt.Fprintf(&b, "- **%s**\n\n  %s\n\n", markup.Sanitize(r.ID), markup.Sanitize(r.Text))
	}
	b.WriteString(markup.CallToAction("Want the requirements for one of these tracks?"))
	return b.String(), nil
}

// resolveTrack resolves a track name hint and loads the full record. The
// second return carries a ready fallback blob on a miss.
func (h *Handler) resolveTrack(ctx context.Context, req TrackRequest) (*catalog.DegreeTrack, string, error) {
	name, found, err := h.deps.Resolver.ResolveDegreeTrack(req.Department, req.TrackName)
	if err != nil {
		return nil, "", h.wrap.Wrap(err, "I couldn't look at that department. Could you name the department again?")
	}
	if !found {
		return nil, tools.NotFound(fmt.Sprintf("a degree track matching %q", req.TrackName), req.Department), nil
	}

	track, err := h.deps.Store.GetDegreeTrack(ctx, req.Department, name)
	if err != nil {
		return nil, "", h.wrap.Wrap(err, "I couldn't read the degree catalog right now. Please try again in a moment.")
	}
	return track, "", nil
}

// writeRequirements renders direct course requirements and sequence
// alternatives as bullets.
func writeRequirements(b *strings.Builder, courses []string, sequences [][]string, indent string) {
	for _, course := range courses {
		fmt.Fprintf(b, "%s- %s\n", indent, markup.Sanitize(course))
	}
	for _, sequence := range sequences {
		fmt.Fprintf(b, "%s- Sequence: %s\n", indent, markup.Sanitize(strings.Join(sequence, " then ")))
	}
}
