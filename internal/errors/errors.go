// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates no catalog entity could be resolved from the
	// caller's hints. Callers turn this into a clarifying question, never
	// into a fabricated identifier.
	ErrNotFound = errors.New("entity not found")

	// ErrUpstreamUnavailable indicates the catalog store or embedding
	// provider is unreachable or misconfigured. Fatal for the current call.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrMalformedRecord indicates a feedback document could not be parsed.
	// Scoped to one section; aggregation continues without it.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrAmbiguousInput indicates a hint matched more than one real entity
	// (e.g. a department token matching two departments). Callers must ask
	// the user to disambiguate rather than pick arbitrarily.
	ErrAmbiguousInput = errors.New("ambiguous input")

	// ErrNoData indicates the entity resolved fine but zero feedback
	// records matched the request. Distinct from a numeric zero result.
	ErrNoData = errors.New("no data")

	// ErrInvalidInput indicates the caller provided invalid input.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// UpstreamError represents a failure talking to an external collaborator
// (catalog store or embedding provider) with context.
type UpstreamError struct {
	Service string // "catalog" or "embeddings"
	Op      string // operation being performed
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error (service=%s, op=%s): %v", e.Service, e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrUpstreamUnavailable) match any UpstreamError.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}

// NewUpstreamError creates a new upstream error.
func NewUpstreamError(service, op string, err error) *UpstreamError {
	return &UpstreamError{
		Service: service,
		Op:      op,
		Err:     err,
	}
}
