// Package warmup tracks startup readiness: the service is not ready to
// answer tool requests until the reference snapshot and catalog are
// loaded, or a grace timeout has elapsed.
package warmup

import (
	"sync/atomic"
	"time"
)

// ReadinessState tracks whether startup loading has completed. The
// ready flag uses atomic operations; startTime and timeout are
// immutable after construction.
type ReadinessState struct {
	ready     atomic.Bool
	startTime time.Time
	timeout   time.Duration
}

// ReadinessStatus is the readiness state for API responses.
type ReadinessStatus struct {
	Ready          bool   `json:"ready"`
	Reason         string `json:"reason,omitempty"`
	ElapsedSeconds int    `json:"elapsed_seconds,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

// NewReadinessState creates a state that becomes ready when MarkReady
// is called or when the timeout elapses, whichever comes first.
func NewReadinessState(timeout time.Duration) *ReadinessState {
	return &ReadinessState{
		startTime: time.Now(),
		timeout:   timeout,
	}
}

// IsReady reports whether the service may accept traffic.
func (s *ReadinessState) IsReady() bool {
	if s.ready.Load() {
		return true
	}
	return time.Since(s.startTime) >= s.timeout
}

// MarkReady marks startup loading as complete.
func (s *ReadinessState) MarkReady() {
	s.ready.Store(true)
}

// Status returns the current readiness status for API responses.
func (s *ReadinessState) Status() ReadinessStatus {
	elapsed := time.Since(s.startTime)
	isReady := s.IsReady()

	status := ReadinessStatus{
		Ready:          isReady,
		ElapsedSeconds: int(elapsed.Seconds()),
		TimeoutSeconds: int(s.timeout.Seconds()),
	}

	if !isReady {
		status.Reason = "reference data loading"
	} else if !s.ready.Load() {
		status.Reason = "grace timeout reached (loading may still be running)"
	}

	return status
}
