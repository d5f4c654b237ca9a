package catalog

import (
	"encoding/json"
	"strings"
)

// Course represents a catalog course record
type Course struct {
	ID          string `json:"id"` // Department prefix plus number, e.g. "MATH 20700"
	Name        string `json:"name"`
	Department  string `json:"department"`
	Description string `json:"description,omitempty"`
}

// CourseSection represents a single offering of a course.
// Feedback holds the raw evaluation document as stored by the ingestion
// process; it is nil when no evaluations exist for the section.
type CourseSection struct {
	SectionID      string          `json:"section_id"`
	CourseID       string          `json:"course_id"`
	Department     string          `json:"department"`
	Term           string          `json:"term"`
	Year           int             `json:"year"`
	InstructorName string          `json:"instructor_name"`
	Feedback       json.RawMessage `json:"feedback,omitempty"`
}

// SectionFilter narrows section queries. Zero values mean "any".
type SectionFilter struct {
	Term       string
	Year       int
	Instructor string
}

// DegreeTrack represents a degree program with its ordered requirement
// sections.
type DegreeTrack struct {
	Name        string          `json:"name"`
	Department  string          `json:"department"`
	Type        string          `json:"type"` // "major", "minor", "track", or "core"
	TotalUnits  float64         `json:"total_units"`
	Description string          `json:"description,omitempty"`
	Sections    []DegreeSection `json:"sections,omitempty"`
}

// DegreeSection is one requirement block of a degree track.
// A section requires courses and/or sequences directly, or delegates to
// subsections.
type DegreeSection struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Courses     []string           `json:"courses,omitempty"`
	Sequences   [][]string         `json:"sequences,omitempty"`
	SubSections []DegreeSubSection `json:"subsections,omitempty"`
}

// DegreeSubSection is a nested requirement block within a DegreeSection.
type DegreeSubSection struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Courses     []string   `json:"courses,omitempty"`
	Sequences   [][]string `json:"sequences,omitempty"`
}

// RequirementPlacement records one place a course appears in a track's
// requirements: directly in a section, inside a subsection, or as a step
// of a sequence. SubSection and Sequence are empty for a direct hit.
type RequirementPlacement struct {
	Section    string   `json:"section"`
	SubSection string   `json:"subsection,omitempty"`
	Sequence   []string `json:"sequence,omitempty"`
}

// Placements returns every place the course appears in the track's
// requirement sections. Course id matching is case-insensitive.
func (t *DegreeTrack) Placements(courseID string) []RequirementPlacement {
	var out []RequirementPlacement
	for _, section := range t.Sections {
		if containsCourse(section.Courses, courseID) {
			out = append(out, RequirementPlacement{Section: section.Name})
		}
		for _, seq := range section.Sequences {
			if containsCourse(seq, courseID) {
				out = append(out, RequirementPlacement{Section: section.Name, Sequence: seq})
			}
		}
		for _, sub := range section.SubSections {
			if containsCourse(sub.Courses, courseID) {
				out = append(out, RequirementPlacement{Section: section.Name, SubSection: sub.Name})
			}
			for _, seq := range sub.Sequences {
				if containsCourse(seq, courseID) {
					out = append(out, RequirementPlacement{Section: section.Name, SubSection: sub.Name, Sequence: seq})
				}
			}
		}
	}
	return out
}

// CourseIDs returns the distinct course ids the track requires, in
// requirement order, including sequence steps.
func (t *DegreeTrack) CourseIDs() []string {
	var out []string
	seen := map[string]bool{}
	add := func(ids []string) {
		for _, id := range ids {
			key := strings.ToUpper(id)
			if !seen[key] {
				seen[key] = true
				out = append(out, id)
			}
		}
	}
	for _, section := range t.Sections {
		add(section.Courses)
		for _, seq := range section.Sequences {
			add(seq)
		}
		for _, sub := range section.SubSections {
			add(sub.Courses)
			for _, seq := range sub.Sequences {
				add(seq)
			}
		}
	}
	return out
}

func containsCourse(ids []string, courseID string) bool {
	for _, id := range ids {
		if strings.EqualFold(id, courseID) {
			return true
		}
	}
	return false
}

// DegreeTrackSummary is a light listing row for a department's tracks.
type DegreeTrackSummary struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	TotalUnits float64 `json:"total_units"`
}

// TermOffering names one term in which a course runs.
type TermOffering struct {
	Term string `json:"term"`
	Year int    `json:"year"`
}

// CourseWithTerms pairs a course with the distinct terms it is offered in.
type CourseWithTerms struct {
	Course
	Terms []TermOffering `json:"terms,omitempty"`
}

// CourseFilter narrows ListCoursesWithTerms. Dept is required by callers;
// Term and Year are optional.
type CourseFilter struct {
	Dept string
	Term string
	Year int
}
