package refdata

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// Source resolves a department token to its reference table. Satisfied
// by both a fixed Snapshot and a Manager that reloads in the background.
type Source interface {
	Department(token string) (*Table, error)
}

var (
	_ Source = (*Snapshot)(nil)
	_ Source = (*Manager)(nil)
)

// LoadFunc produces a fresh snapshot from the configured source.
type LoadFunc func(ctx context.Context) (*Snapshot, error)

// ManagerMetrics records reload outcomes. Optional.
type ManagerMetrics interface {
	RecordRefDataReload(source, status string)
}

// Manager holds the current snapshot and swaps it atomically when a
// reload succeeds. A failed reload keeps the previous snapshot serving.
type Manager struct {
	current atomic.Pointer[Snapshot]
	load    LoadFunc
	source  string
	metrics ManagerMetrics
}

// NewManager creates a manager over the given loader. The source label
// ("dir" or "bucket") tags reload metrics.
func NewManager(source string, load LoadFunc) *Manager {
	return &Manager{load: load, source: source}
}

// SetMetrics sets the metrics recorder for reload monitoring.
func (m *Manager) SetMetrics(recorder ManagerMetrics) {
	m.metrics = recorder
}

// Reload loads a fresh snapshot and swaps it in. The previous snapshot
// keeps serving readers until the swap, and on failure.
func (m *Manager) Reload(ctx context.Context) error {
	snap, err := m.load(ctx)
	if err != nil {
		m.record("error")
		return fmt.Errorf("refdata reload: %w", err)
	}
	m.current.Store(snap)
	m.record("ok")
	return nil
}

// Current returns the snapshot readers should use. Nil before the first
// successful Reload.
func (m *Manager) Current() *Snapshot {
	return m.current.Load()
}

// Department resolves against the current snapshot.
func (m *Manager) Department(token string) (*Table, error) {
	snap := m.current.Load()
	if snap == nil {
		return nil, fmt.Errorf("reference data not loaded yet")
	}
	return snap.Department(token)
}

// Run reloads the snapshot on the given interval until the context is
// canceled. Failures are logged and the previous snapshot stays live.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Reload(ctx); err != nil {
				slog.WarnContext(ctx, "reference data reload failed, keeping previous snapshot",
					"source", m.source,
					"error", err)
				continue
			}
			if snap := m.Current(); snap != nil {
				slog.InfoContext(ctx, "reference data reloaded",
					"source", m.source,
					"departments", snap.Len())
			}
		}
	}
}

func (m *Manager) record(status string) {
	if m.metrics != nil {
		m.metrics.RecordRefDataReload(m.source, status)
	}
}
