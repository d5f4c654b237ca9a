package refdata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadDir loads per-department JSON tables from a local directory.
// Every *.json file holds one Table. Files are read in name order so the
// snapshot is deterministic.
func LoadDir(dir string) (*Snapshot, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("refdata: read dir %q: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	tables := make([]Table, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("refdata: read %q: %w", path, err)
		}

		var table Table
		if err := json.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("refdata: parse %q: %w", path, err)
		}
		if table.Department == "" {
			return nil, fmt.Errorf("refdata: %q has no department name", path)
		}
		tables = append(tables, table)
	}

	return NewSnapshot(tables), nil
}

// DecodeTables parses a snapshot document: a JSON array of department
// tables.
func DecodeTables(data []byte) ([]Table, error) {
	var tables []Table
	if err := json.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("refdata: parse snapshot: %w", err)
	}
	for i := range tables {
		if tables[i].Department == "" {
			return nil, fmt.Errorf("refdata: snapshot table %d has no department name", i)
		}
	}
	return tables, nil
}
