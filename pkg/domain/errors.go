package domain

import (
	"errors"
	"fmt"
)

// ErrPrecondition is matched by every PreconditionError.
var ErrPrecondition = errors.New("operation precondition violated")

// ErrSnapshotNotFound is returned when a session ID cannot be found in the store.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrInvalidSnapshot is returned when saved state cannot be decoded into a model.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// ErrUnknownMode is returned when parsing an unsupported operation mode.
var ErrUnknownMode = errors.New("unknown operation mode")

// PreconditionError reports an operation that was applicable by its predicate
// but could not be carried out against the current state.
type PreconditionError struct {
	Operation string
	Reason    string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Operation, e.Reason)
}

func (e *PreconditionError) Unwrap() error {
	return ErrPrecondition
}

// NewPreconditionError is a helper for operation implementations.
func NewPreconditionError(operation, format string, args ...any) error {
	return &PreconditionError{Operation: operation, Reason: fmt.Sprintf(format, args...)}
}
