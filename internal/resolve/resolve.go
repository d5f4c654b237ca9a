// Package resolve implements approximate entity resolution over the
// reference snapshot: course, instructor, and degree-track lookup scoped
// to a single department. Resolution never fabricates identifiers; a hint
// that matches nothing yields an empty result.
package resolve

import (
	"strings"

	"github.com/coursecompass/advisor-go/internal/refdata"
)

// CourseRef identifies a resolved course.
type CourseRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MetricsRecorder records resolution outcomes. Optional.
type MetricsRecorder interface {
	RecordResolverOutcome(kind, outcome string)
}

// Resolver resolves entity hints against the reference snapshot.
type Resolver struct {
	snap    refdata.Source
	metrics MetricsRecorder
}

// New creates a resolver over the given snapshot source.
func New(snap refdata.Source) *Resolver {
	return &Resolver{snap: snap}
}

// SetMetrics sets the metrics recorder for outcome monitoring.
func (r *Resolver) SetMetrics(recorder MetricsRecorder) {
	r.metrics = recorder
}

// ResolveCourse resolves a course hint within a department.
//
// The id hint takes priority: a case-insensitive substring match over the
// department's course ids returns every hit in table order and the name
// path is skipped entirely. Otherwise the name hint is matched
// approximately and the single best candidate at or above the similarity
// threshold is returned as a one-element slice. No match yields an empty
// slice.
func (r *Resolver) ResolveCourse(dept, idHint, nameHint string) ([]CourseRef, error) {
	table, err := r.snap.Department(dept)
	if err != nil {
		return nil, err
	}

	if id := normalize(idHint); id != "" {
		var refs []CourseRef
		for _, course := range table.Courses {
			if strings.Contains(normalize(course.ID), id) {
				refs = append(refs, CourseRef{ID: course.ID, Name: course.Name})
			}
		}
		if len(refs) > 0 {
			r.record("course", "id_match")
			return refs, nil
		}
	}

	if name := normalize(nameHint); name != "" {
		best := -1
		bestScore := 0.0
		for i, course := range table.Courses {
			score := similarity(name, normalize(course.Name))
			if score >= SimilarityThreshold && score > bestScore {
				best = i
				bestScore = score
			}
		}
		if best >= 0 {
			r.record("course", "fuzzy_match")
			return []CourseRef{{ID: table.Courses[best].ID, Name: table.Courses[best].Name}}, nil
		}
	}

	r.record("course", "miss")
	return nil, nil
}

// ResolveInstructor resolves an instructor name hint within a department.
// Among every candidate at or above the similarity threshold, the one
// teaching the most sections wins; ties go to the better match score,
// then roster order. A hint equal to a canonical name always resolves to
// that name, so resolution is idempotent.
func (r *Resolver) ResolveInstructor(dept, nameHint string) (string, bool, error) {
	table, err := r.snap.Department(dept)
	if err != nil {
		return "", false, err
	}

	hint := normalize(nameHint)
	if hint == "" || len(table.Instructors) == 0 {
		r.record("instructor", "miss")
		return "", false, nil
	}

	best := -1
	bestScore := 0.0
	for i, instructor := range table.Instructors {
		score := similarity(hint, normalize(instructor.CanonicalName))
		if score < SimilarityThreshold {
			continue
		}
		if score == 1 {
			best = i
			bestScore = score
			break
		}
		if best < 0 ||
			instructor.SectionsTaught > table.Instructors[best].SectionsTaught ||
			(instructor.SectionsTaught == table.Instructors[best].SectionsTaught && score > bestScore) {
			best = i
			bestScore = score
		}
	}

	if best < 0 {
		r.record("instructor", "miss")
		return "", false, nil
	}
	r.record("instructor", "fuzzy_match")
	return table.Instructors[best].CanonicalName, true, nil
}

// ResolveDegreeTrack resolves a degree-track name hint within a
// department. Empty input is never a match.
func (r *Resolver) ResolveDegreeTrack(dept, nameHint string) (string, bool, error) {
	table, err := r.snap.Department(dept)
	if err != nil {
		return "", false, err
	}

	hint := normalize(nameHint)
	if hint == "" {
		r.record("degree_track", "miss")
		return "", false, nil
	}

	best := -1
	bestScore := 0.0
	for i, track := range table.DegreeTracks {
		score := similarity(hint, normalize(track.Name))
		if score >= SimilarityThreshold && score > bestScore {
			best = i
			bestScore = score
		}
	}

	if best < 0 {
		r.record("degree_track", "miss")
		return "", false, nil
	}
	r.record("degree_track", "fuzzy_match")
	return table.DegreeTracks[best].Name, true, nil
}

func (r *Resolver) record(kind, outcome string) {
	if r.metrics != nil {
		r.metrics.RecordResolverOutcome(kind, outcome)
	}
}
