package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// UpsertCourses inserts or replaces course rows in one transaction.
func (db *DB) UpsertCourses(ctx context.Context, courses []Course) error {
	return db.inTx(ctx, "upsert_courses", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO courses (id, department, name, description)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(department, id) DO UPDATE SET
				name = excluded.name,
				description = excluded.description`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, course := range courses {
			if course.ID == "" || course.Department == "" {
				return fmt.Errorf("course %q: id and department are required", course.Name)
			}
			if _, err := stmt.ExecContext(ctx, course.ID, course.Department, course.Name, course.Description); err != nil {
				return fmt.Errorf("upsert course %s: %w", course.ID, err)
			}
		}
		return nil
	})
}

// UpsertSections inserts or replaces section rows in one transaction.
// Feedback documents pass through unparsed; malformed ones are caught
// later at aggregation time, scoped to the single section.
func (db *DB) UpsertSections(ctx context.Context, sections []CourseSection) error {
	return db.inTx(ctx, "upsert_sections", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO sections (section_id, course_id, department, term, year, instructor, feedback)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(section_id) DO UPDATE SET
				course_id = excluded.course_id,
				department = excluded.department,
				term = excluded.term,
				year = excluded.year,
				instructor = excluded.instructor,
				feedback = excluded.feedback`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, section := range sections {
			if section.SectionID == "" || section.CourseID == "" {
				return fmt.Errorf("section %q: section_id and course_id are required", section.SectionID)
			}
			var feedback any
			if len(section.Feedback) > 0 {
				feedback = string(section.Feedback)
			}
			if _, err := stmt.ExecContext(ctx,
				section.SectionID, section.CourseID, section.Department,
				section.Term, section.Year, section.InstructorName, feedback); err != nil {
				return fmt.Errorf("upsert section %s: %w", section.SectionID, err)
			}
		}
		return nil
	})
}

// UpsertDegreeTracks inserts or replaces degree track rows in one
// transaction. Requirement sections are stored as a JSON document.
func (db *DB) UpsertDegreeTracks(ctx context.Context, tracks []DegreeTrack) error {
	return db.inTx(ctx, "upsert_degree_tracks", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO degree_tracks (department, name, type, total_units, description, sections)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(department, name) DO UPDATE SET
				type = excluded.type,
				total_units = excluded.total_units,
				description = excluded.description,
				sections = excluded.sections`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, track := range tracks {
			if track.Name == "" || track.Department == "" {
				return fmt.Errorf("degree track %q: name and department are required", track.Name)
			}
			var sections any
			if len(track.Sections) > 0 {
				encoded, err := json.Marshal(track.Sections)
				if err != nil {
					return fmt.Errorf("encode sections for %s: %w", track.Name, err)
				}
				sections = string(encoded)
			}
			if _, err := stmt.ExecContext(ctx,
				track.Department, track.Name, track.Type,
				track.TotalUnits, track.Description, sections); err != nil {
				return fmt.Errorf("upsert degree track %s: %w", track.Name, err)
			}
		}
		return nil
	})
}

// CountRows returns the number of rows in a catalog table. Used by the
// consistency checker; table names are fixed at call sites.
func (db *DB) CountRows(ctx context.Context, table string) (int, error) {
	start := time.Now()
	defer db.observe("count_"+table, start)

	var count int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return count, nil
}

func (db *DB) inTx(ctx context.Context, name string, fn func(tx *sql.Tx) error) error {
	start := time.Now()
	defer db.observe(name, start)

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s: %w", name, err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", name, err)
	}
	return nil
}
