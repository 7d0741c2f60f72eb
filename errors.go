package sketchbin

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMaxBin is returned when the configured max-bin count is below 2.
	ErrInvalidMaxBin = errors.New("max bin must be at least 2")

	// ErrInvalidPruneTarget is returned when a prune target cannot retain
	// both the minimum and maximum entry of a column.
	ErrInvalidPruneTarget = errors.New("prune target must be at least 2")

	// ErrUnsortedInput is returned when a pushed column is not sorted
	// ascending by value. This is a caller contract violation, never retried.
	ErrUnsortedInput = errors.New("column values must be sorted ascending")

	// ErrNegativeWeight is returned when a pushed sample carries a negative weight.
	ErrNegativeWeight = errors.New("sample weight must not be negative")

	// ErrCommunication is returned when the collective communication layer
	// fails during distributed merge. The container state is undefined
	// afterwards and must be discarded.
	ErrCommunication = errors.New("collective communication failed")

	// ErrAllocation is returned when an entry buffer cannot be grown.
	// There is no partial-result fallback.
	ErrAllocation = errors.New("entry buffer allocation failed")
)

// ErrColumnMismatch indicates a column-count mismatch between the container
// and an input (batch, layout, peer summary or feature type array).
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrColumnMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrColumnMismatch) Error() string {
	return fmt.Sprintf("column count mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrColumnMismatch) Unwrap() error { return e.cause }

// ErrInvalidLayout indicates segment offsets that are not monotonically
// non-decreasing or do not cover the entry buffer.
type ErrInvalidLayout struct {
	Column int
	cause  error
}

func (e *ErrInvalidLayout) Error() string {
	return fmt.Sprintf("invalid segment layout at column %d", e.Column)
}

func (e *ErrInvalidLayout) Unwrap() error { return e.cause }
