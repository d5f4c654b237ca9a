// Command verify cross-checks the reference snapshot against the SQLite
// catalog. Entity resolution answers from the snapshot while section and
// degree data comes from the catalog, so the two must agree on which
// courses and degree tracks exist. Exits 1 when they drift apart.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/coursecompass/advisor-go/internal/catalog"
	"github.com/coursecompass/advisor-go/internal/config"
	domerrors "github.com/coursecompass/advisor-go/internal/errors"
	"github.com/coursecompass/advisor-go/internal/refdata"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()

	snap, err := loadSnapshot(ctx, cfg)
	if err != nil {
		log.Fatalf("load reference snapshot: %v", err)
	}

	db, err := catalog.New(cfg.SQLitePath())
	if err != nil {
		log.Fatalf("open catalog: %v", err)
	}
	defer db.Close()

	problems, err := verify(ctx, snap, db)
	if err != nil {
		log.Fatalf("verify: %v", err)
	}

	if len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintln(os.Stderr, p)
		}
		fmt.Fprintf(os.Stderr, "%d inconsistencies found\n", len(problems))
		os.Exit(1)
	}
	fmt.Println("reference snapshot and catalog are consistent")
}

func loadSnapshot(ctx context.Context, cfg *config.Config) (*refdata.Snapshot, error) {
	if !cfg.RefData.BucketEnabled {
		return refdata.LoadDir(cfg.RefData.Dir)
	}

	store, err := refdata.NewObjectStore(ctx, refdata.ObjectStoreConfig{
		Endpoint:    cfg.RefData.Endpoint,
		AccessKeyID: cfg.RefData.AccessKeyID,
		SecretKey:   cfg.RefData.SecretAccessKey,
		BucketName:  cfg.RefData.BucketName,
		SnapshotKey: cfg.RefData.SnapshotKey,
	})
	if err != nil {
		return nil, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, cfg.RefData.RequestTimeout)
	defer cancel()
	return store.FetchSnapshot(fetchCtx)
}

// verify walks every department table and checks that each referenced
// course and degree track has a catalog row. Missing rows are reported
// individually; lookup failures other than not-found abort the run.
func verify(ctx context.Context, snap *refdata.Snapshot, db *catalog.DB) ([]string, error) {
	var problems []string

	for _, dept := range snap.Departments() {
		table, err := snap.Department(dept)
		if err != nil {
			return nil, fmt.Errorf("department %s: %w", dept, err)
		}

		for _, course := range table.Courses {
			_, err := db.GetCourse(ctx, dept, course.ID)
			switch {
			case errors.Is(err, domerrors.ErrNotFound):
				problems = append(problems, fmt.Sprintf("%s: course %s in snapshot but not in catalog", dept, course.ID))
			case err != nil:
				return nil, fmt.Errorf("lookup course %s: %w", course.ID, err)
			}
		}

		for _, track := range table.DegreeTracks {
			_, err := db.GetDegreeTrack(ctx, dept, track.Name)
			switch {
			case errors.Is(err, domerrors.ErrNotFound):
				problems = append(problems, fmt.Sprintf("%s: degree track %q in snapshot but not in catalog", dept, track.Name))
			case err != nil:
				return nil, fmt.Errorf("lookup degree track %q: %w", track.Name, err)
			}
		}
	}

	courses, err := db.CountRows(ctx, "courses")
	if err != nil {
		return nil, err
	}
	sections, err := db.CountRows(ctx, "sections")
	if err != nil {
		return nil, err
	}
	fmt.Printf("checked %d departments against %d courses and %d sections\n",
		snap.Len(), courses, sections)

	return problems, nil
}
