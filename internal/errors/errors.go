// Package errors provides standardized domain errors that express business intent
// rather than infrastructure details. These errors should be used by use cases
// and mapped to appropriate HTTP status codes by handlers.
package errors

import (
	"errors"
	"fmt"
)

// Standard domain errors that can be used across all domain modules.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data (e.g., duplicate key).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the request lacks valid authentication credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the authenticated principal doesn't have permission.
	// Access-control denials are always audited and never retried automatically.
	ErrForbidden = errors.New("forbidden")

	// ErrIntegrity indicates a cryptographic or data-integrity failure
	// (authentication tag mismatch, checksum mismatch, broken audit chain).
	// Integrity failures are Critical severity, always audited, and never
	// silently retried: retrying with the same inputs cannot fix tampering
	// or corruption.
	ErrIntegrity = errors.New("integrity violation")

	// ErrUnavailable indicates a dependency (object store, managed key service,
	// audit persistence) failed or is unreachable. Transient and safe to retry
	// with backoff, but the overall operation must not be reported successful
	// until the full chain completes.
	ErrUnavailable = errors.New("dependency unavailable")

	// ErrTimeout indicates a dependency call exceeded its deadline. Treated
	// identically to any other dependency failure: no side effect is assumed.
	ErrTimeout = errors.New("timeout")
)

// New creates a new error with the given message.
// This is a convenience wrapper around errors.New for consistency.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
// Use this to add context at each layer without losing the original error type.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's tree matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
