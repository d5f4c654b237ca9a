// Package refdata holds the reference snapshot: per-department tables of
// courses, instructors, and degree tracks used by entity resolution.
// Tables load once at startup and are read-only afterwards.
package refdata

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	domerrors "github.com/coursecompass/advisor-go/internal/errors"
)

// CourseEntry is one course row in a department table. Order matters:
// id-hint resolution returns hits in table order.
type CourseEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// InstructorEntry is one instructor row in a department table.
type InstructorEntry struct {
	CanonicalName  string `json:"canonical_name"`
	SectionsTaught int    `json:"sections_taught"`
}

// DegreeTrackEntry is one degree track row in a department table.
type DegreeTrackEntry struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Table holds the reference rows for one department.
type Table struct {
	Department   string             `json:"department"`
	Courses      []CourseEntry      `json:"courses,omitempty"`
	Instructors  []InstructorEntry  `json:"instructors,omitempty"`
	DegreeTracks []DegreeTrackEntry `json:"degree_tracks,omitempty"`
}

// Snapshot is the full set of department tables.
type Snapshot struct {
	tables []Table
}

var foldCaser = cases.Fold()

// NewSnapshot builds a snapshot from the given tables.
func NewSnapshot(tables []Table) *Snapshot {
	return &Snapshot{tables: tables}
}

// Department returns the table whose department name matches the token
// case-insensitively. A token matching no table is ErrNotFound; a token
// matching more than one is ErrAmbiguousInput.
func (s *Snapshot) Department(token string) (*Table, error) {
	folded := foldCaser.String(strings.TrimSpace(token))
	if folded == "" {
		return nil, fmt.Errorf("empty department token: %w", domerrors.ErrNotFound)
	}

	var matches []*Table
	for i := range s.tables {
		if foldCaser.String(s.tables[i].Department) == folded {
			matches = append(matches, &s.tables[i])
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("department %q: %w", token, domerrors.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("department %q matches %d tables: %w", token, len(matches), domerrors.ErrAmbiguousInput)
	}
}

// Departments returns the department names in table order.
func (s *Snapshot) Departments() []string {
	names := make([]string, 0, len(s.tables))
	for i := range s.tables {
		names = append(names, s.tables[i].Department)
	}
	return names
}

// Len returns the number of department tables.
func (s *Snapshot) Len() int {
	return len(s.tables)
}
