package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domerrors "github.com/coursecompass/advisor-go/internal/errors"
)

const slowQueryThreshold = 100 * time.Millisecond

// GetCourse returns the course matching the id or the exact name within
// the department. Matching is case-insensitive on both paths.
func (db *DB) GetCourse(ctx context.Context, dept, idOrName string) (*Course, error) {
	query := `
		SELECT id, department, name, COALESCE(description, '')
		FROM courses
		WHERE department = ? AND (id = ? COLLATE NOCASE OR name = ? COLLATE NOCASE)
		LIMIT 1
	`
	start := time.Now()
	row := db.conn.QueryRowContext(ctx, query, dept, idOrName, idOrName)

	var c Course
	err := row.Scan(&c.ID, &c.Department, &c.Name, &c.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("course %q in %s: %w", idOrName, dept, domerrors.ErrNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to get course",
			"department", dept,
			"course", idOrName,
			"error", err)
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	db.warnSlow(ctx, "GetCourse", db.observe("get_course", start))
	return &c, nil
}

// GetCourseByID returns the course with the given id, searched across
// every department.
func (db *DB) GetCourseByID(ctx context.Context, courseID string) (*Course, error) {
	query := `
		SELECT id, department, name, COALESCE(description, '')
		FROM courses
		WHERE id = ? COLLATE NOCASE
		LIMIT 1
	`
	start := time.Now()
	row := db.conn.QueryRowContext(ctx, query, courseID)

	var c Course
	err := row.Scan(&c.ID, &c.Department, &c.Name, &c.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("course %q: %w", courseID, domerrors.ErrNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to get course by id",
			"course_id", courseID,
			"error", err)
		return nil, fmt.Errorf("failed to get course by id: %w", err)
	}

	db.warnSlow(ctx, "GetCourseByID", db.observe("get_course_by_id", start))
	return &c, nil
}

// GetCourseSections returns the sections of a course, optionally narrowed
// by term, year, and instructor. Ordered newest first, then by section id.
func (db *DB) GetCourseSections(ctx context.Context, courseID string, filter SectionFilter) ([]CourseSection, error) {
	query := `
		SELECT section_id, course_id, department, term, year, instructor, feedback
		FROM sections
		WHERE course_id = ? COLLATE NOCASE
	`
	args := []any{courseID}
	query, args = applySectionFilter(query, args, filter)
	query += ` ORDER BY year DESC, term, section_id`

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query course sections",
			"course_id", courseID,
			"error", err)
		return nil, fmt.Errorf("failed to query course sections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sections, err := scanSections(rows)
	if err != nil {
		return nil, err
	}

	db.warnSlow(ctx, "GetCourseSections", db.observe("get_course_sections", start))
	return sections, nil
}

// GetInstructorSections returns every section an instructor taught within
// the department, optionally narrowed by term and year.
func (db *DB) GetInstructorSections(ctx context.Context, dept, instructor string, filter SectionFilter) ([]CourseSection, error) {
	query := `
		SELECT section_id, course_id, department, term, year, instructor, feedback
		FROM sections
		WHERE department = ? AND instructor = ? COLLATE NOCASE
	`
	args := []any{dept, instructor}
	query, args = applySectionFilter(query, args, SectionFilter{Term: filter.Term, Year: filter.Year})
	query += ` ORDER BY year DESC, term, section_id`

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query instructor sections",
			"department", dept,
			"instructor", instructor,
			"error", err)
		return nil, fmt.Errorf("failed to query instructor sections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sections, err := scanSections(rows)
	if err != nil {
		return nil, err
	}

	db.warnSlow(ctx, "GetInstructorSections", db.observe("get_instructor_sections", start))
	return sections, nil
}

// GetDegreeTrack returns a degree track with its nested requirement
// sections.
func (db *DB) GetDegreeTrack(ctx context.Context, dept, trackName string) (*DegreeTrack, error) {
	query := `
		SELECT name, department, type, total_units, COALESCE(description, ''), COALESCE(sections, '')
		FROM degree_tracks
		WHERE department = ? AND name = ? COLLATE NOCASE
		LIMIT 1
	`
	start := time.Now()
	row := db.conn.QueryRowContext(ctx, query, dept, trackName)

	var (
		track        DegreeTrack
		sectionsJSON string
	)
	err := row.Scan(&track.Name, &track.Department, &track.Type, &track.TotalUnits, &track.Description, &sectionsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("degree track %q in %s: %w", trackName, dept, domerrors.ErrNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to get degree track",
			"department", dept,
			"track", trackName,
			"error", err)
		return nil, fmt.Errorf("failed to get degree track: %w", err)
	}

	if sectionsJSON != "" {
		if err := json.Unmarshal([]byte(sectionsJSON), &track.Sections); err != nil {
			slog.ErrorContext(ctx, "malformed degree track sections",
				"department", dept,
				"track", trackName,
				"error", err)
			return nil, fmt.Errorf("degree track %q sections: %w", trackName, domerrors.ErrMalformedRecord)
		}
	}

	db.warnSlow(ctx, "GetDegreeTrack", db.observe("get_degree_track", start))
	return &track, nil
}

// GetDegreeTrackByName returns a degree track matched by name alone,
// for college-wide tracks that no single department owns.
func (db *DB) GetDegreeTrackByName(ctx context.Context, trackName string) (*DegreeTrack, error) {
	query := `
		SELECT name, department, type, total_units, COALESCE(description, ''), COALESCE(sections, '')
		FROM degree_tracks
		WHERE name = ? COLLATE NOCASE
		LIMIT 1
	`
	start := time.Now()
	row := db.conn.QueryRowContext(ctx, query, trackName)

	var (
		track        DegreeTrack
		sectionsJSON string
	)
	err := row.Scan(&track.Name, &track.Department, &track.Type, &track.TotalUnits, &track.Description, &sectionsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("degree track %q: %w", trackName, domerrors.ErrNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to get degree track by name",
			"track", trackName,
			"error", err)
		return nil, fmt.Errorf("failed to get degree track by name: %w", err)
	}

	if sectionsJSON != "" {
		if err := json.Unmarshal([]byte(sectionsJSON), &track.Sections); err != nil {
			slog.ErrorContext(ctx, "malformed degree track sections",
				"track", trackName,
				"error", err)
			return nil, fmt.Errorf("degree track %q sections: %w", trackName, domerrors.ErrMalformedRecord)
		}
	}

	db.warnSlow(ctx, "GetDegreeTrackByName", db.observe("get_degree_track_by_name", start))
	return &track, nil
}

// ListDegreeTracks returns summaries of a department's degree tracks,
// ordered by type then name.
func (db *DB) ListDegreeTracks(ctx context.Context, dept string) ([]DegreeTrackSummary, error) {
	query := `
		SELECT name, type, total_units
		FROM degree_tracks
		WHERE department = ?
		ORDER BY type, name
	`
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, dept)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list degree tracks",
			"department", dept,
			"error", err)
		return nil, fmt.Errorf("failed to list degree tracks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var summaries []DegreeTrackSummary
	for rows.Next() {
		var s DegreeTrackSummary
		if err := rows.Scan(&s.Name, &s.Type, &s.TotalUnits); err != nil {
			return nil, fmt.Errorf("failed to scan degree track summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate degree tracks: %w", err)
	}

	db.warnSlow(ctx, "ListDegreeTracks", db.observe("list_degree_tracks", start))
	return summaries, nil
}

// ListCoursesWithTerms returns a department's courses together with the
// distinct terms each is offered in, ordered by course id.
func (db *DB) ListCoursesWithTerms(ctx context.Context, filter CourseFilter) ([]CourseWithTerms, error) {
	query := `
		SELECT c.id, c.department, c.name, COALESCE(c.description, ''), s.term, s.year
		FROM courses c
		JOIN sections s ON s.course_id = c.id AND s.department = c.department
		WHERE c.department = ?
	`
	args := []any{filter.Dept}
	if filter.Term != "" {
		query += ` AND s.term = ?`
		args = append(args, filter.Term)
	}
	if filter.Year != 0 {
		query += ` AND s.year = ?`
		args = append(args, filter.Year)
	}
	query += `
		GROUP BY c.id, s.term, s.year
		ORDER BY c.id, s.year, s.term
	`

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list courses with terms",
			"department", filter.Dept,
			"error", err)
		return nil, fmt.Errorf("failed to list courses with terms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var (
		result []CourseWithTerms
		index  = map[string]int{}
	)
	for rows.Next() {
		var (
			c        Course
			offering TermOffering
		)
		if err := rows.Scan(&c.ID, &c.Department, &c.Name, &c.Description, &offering.Term, &offering.Year); err != nil {
			return nil, fmt.Errorf("failed to scan course with terms: %w", err)
		}
		i, ok := index[c.ID]
		if !ok {
			result = append(result, CourseWithTerms{Course: c})
			i = len(result) - 1
			index[c.ID] = i
		}
		result[i].Terms = append(result[i].Terms, offering)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate courses with terms: %w", err)
	}

	db.warnSlow(ctx, "ListCoursesWithTerms", db.observe("list_courses_with_terms", start))
	return result, nil
}

func applySectionFilter(query string, args []any, filter SectionFilter) (string, []any) {
	if filter.Term != "" {
		query += ` AND term = ?`
		args = append(args, filter.Term)
	}
	if filter.Year != 0 {
		query += ` AND year = ?`
		args = append(args, filter.Year)
	}
	if filter.Instructor != "" {
		query += ` AND instructor = ? COLLATE NOCASE`
		args = append(args, filter.Instructor)
	}
	return query, args
}

func scanSections(rows *sql.Rows) ([]CourseSection, error) {
	var sections []CourseSection
	for rows.Next() {
		var (
			s        CourseSection
			feedback sql.NullString
		)
		if err := rows.Scan(&s.SectionID, &s.CourseID, &s.Department, &s.Term, &s.Year, &s.InstructorName, &feedback); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		if feedback.Valid && feedback.String != "" {
			s.Feedback = json.RawMessage(feedback.String)
		}
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sections: %w", err)
	}
	return sections, nil
}

func (db *DB) warnSlow(ctx context.Context, operation string, duration time.Duration) {
	if duration > slowQueryThreshold {
		slog.WarnContext(ctx, "slow database query",
			"operation", operation,
			"duration_ms", duration.Milliseconds())
	}
}
