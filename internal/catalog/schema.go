package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
// Note: WAL mode is configured in db.go.
func InitSchema(db *sql.DB) error {
	if err := createCoursesTable(db); err != nil {
		return err
	}

	if err := createSectionsTable(db); err != nil {
		return err
	}

	return createDegreeTracksTable(db)
}

func createCoursesTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS courses (
		id TEXT NOT NULL,
		department TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		PRIMARY KEY (department, id)
	);
	CREATE INDEX IF NOT EXISTS idx_courses_name ON courses(name);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create courses table: %w", err)
	}

	return nil
}

func createSectionsTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS sections (
		section_id TEXT PRIMARY KEY,
		course_id TEXT NOT NULL,
		department TEXT NOT NULL,
		term TEXT NOT NULL,
		year INTEGER NOT NULL,
		instructor TEXT NOT NULL,
		feedback TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_sections_course ON sections(course_id);
	CREATE INDEX IF NOT EXISTS idx_sections_instructor ON sections(department, instructor);
	CREATE INDEX IF NOT EXISTS idx_sections_term ON sections(year, term);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create sections table: %w", err)
	}

	return nil
}

func createDegreeTracksTable(db *sql.DB) error {
	// Requirement sections are stored as a JSON document; their nesting
	// (subsections, sequences) does not need relational queries.
	query := `
	CREATE TABLE IF NOT EXISTS degree_tracks (
		department TEXT NOT NULL,
		name TEXT NOT NULL,
		type TEXT CHECK(type IN ('major', 'minor', 'track', 'core')) NOT NULL,
		total_units REAL NOT NULL DEFAULT 0,
		description TEXT,
		sections TEXT,
		PRIMARY KEY (department, name)
	);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create degree_tracks table: %w", err)
	}

	return nil
}
