package history

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by a store used after Close.
var ErrClosed = errors.New("history store is closed")

// StorageError represents a failure of a history backend.
type StorageError struct {
	Backend string // "sqlite" or "memory"
	Op      string // operation that failed
	Cause   error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("history %s: %s: %v", e.Backend, e.Op, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}
