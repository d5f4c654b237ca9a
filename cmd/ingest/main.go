// Command ingest seeds the SQLite catalog from JSON export files.
//
// The input directory is expected to contain any of:
//
//	courses.json        []catalog.Course
//	sections.json       []catalog.CourseSection
//	degree_tracks.json  []catalog.DegreeTrack
//
// Missing files are skipped. Rows are upserted, so re-running against a
// fresh export refreshes the catalog in place.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/coursecompass/advisor-go/internal/catalog"
	"github.com/coursecompass/advisor-go/internal/config"
)

func main() {
	inputDir := flag.String("input", "./export", "directory containing JSON export files")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := catalog.New(cfg.SQLitePath())
	if err != nil {
		log.Fatalf("open catalog: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := run(ctx, db, *inputDir); err != nil {
		log.Fatalf("ingest: %v", err)
	}
}

func run(ctx context.Context, db *catalog.DB, inputDir string) error {
	if err := ingestFile(inputDir, "courses.json", func(courses []catalog.Course) error {
		if err := db.UpsertCourses(ctx, courses); err != nil {
			return err
		}
		fmt.Printf("ingested %d courses\n", len(courses))
		return nil
	}); err != nil {
		return err
	}

	if err := ingestFile(inputDir, "sections.json", func(sections []catalog.CourseSection) error {
		if err := db.UpsertSections(ctx, sections); err != nil {
			return err
		}
		fmt.Printf("ingested %d sections\n", len(sections))
		return nil
	}); err != nil {
		return err
	}

	return ingestFile(inputDir, "degree_tracks.json", func(tracks []catalog.DegreeTrack) error {
		if err := db.UpsertDegreeTracks(ctx, tracks); err != nil {
			return err
		}
		fmt.Printf("ingested %d degree tracks\n", len(tracks))
		return nil
	})
}

// ingestFile decodes one JSON export file and hands the rows to fn.
// Absent files are skipped silently so partial exports work.
func ingestFile[T any](dir, name string, fn func([]T) error) error {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	var rows []T
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return fn(rows)
}
