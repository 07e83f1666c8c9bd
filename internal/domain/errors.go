package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a short code or URL has no mapping.
	ErrNotFound = errors.New("short code not found")

	// ErrAllocationExhausted is returned when every candidate code for a URL
	// is occupied by a different URL.
	ErrAllocationExhausted = errors.New("short code allocation exhausted")
)

// ValidationError reports input that cannot be shortened. Reason is safe to
// show to the client.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid URL: " + e.Reason
}

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// StoreError wraps a failure reported by a storage backend.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStore reports whether err is or wraps a StoreError.
func IsStore(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
