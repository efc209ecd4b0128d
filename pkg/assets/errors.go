package assets

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Lookup for a missing object.
	ErrNotFound = errors.New("object not found")

	// ErrUnsupportedProperty is returned by ApplyProperty for a name the
	// object's kind does not have.
	ErrUnsupportedProperty = errors.New("unsupported property")

	// ErrKindConflict is returned by LocateOrCreate when an object of
	// another kind already exists at the path.
	ErrKindConflict = errors.New("object exists with another kind")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("store closed")
)

// StoreError is a store operation failure.
type StoreError struct {
	Backend string // memory, sqlite
	Op      string // operation name
	Err     error  // underlying error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s store %s: %v", e.Backend, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(backend, op string, err error) *StoreError {
	return &StoreError{Backend: backend, Op: op, Err: err}
}
