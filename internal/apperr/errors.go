// Package apperr defines the error taxonomy shared across the service.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a referenced book, metadata file, or path as absent.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a duplicate slug on create or an optimistic-concurrency
	// precondition failure on write/delete.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized marks an access-gate denial.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrValidation marks a missing or malformed request field.
	ErrValidation = errors.New("validation failed")
)

// StoreError wraps a remote repository failure that is neither a missing
// path nor a precondition mismatch (network errors, auth failures against
// the repository, malformed stored content).
type StoreError struct {
	Op   string
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
