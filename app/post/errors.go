package post

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when an operation targets a pending post or
	// photo id that no longer exists.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a request collides with an entry that is
	// already in the approval queue, e.g. queuing a photo twice.
	ErrConflict = errors.New("conflict")
)

// ValidationError rejects bad input before any state change. Fields maps the
// offending field name to a human-readable reason.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// UpstreamError wraps a failure of an external collaborator. Service names
// which one (drive, caption, instagram).
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s upstream error: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
