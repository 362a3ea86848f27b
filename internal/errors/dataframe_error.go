// Package errors provides standardized error types for DataFrame operations.
// This package defines DataFrameError for consistent error handling across
// all public APIs, with an error kind, operation context and error wrapping support.
package errors

import (
	"fmt"
)

// Kind classifies a DataFrameError so callers can branch on the failure class
// with errors.Is against the predefined sentinels.
type Kind int

const (
	// KindInternal is an unexpected failure inside the library
	KindInternal Kind = iota
	// KindOutOfRange is an index or position outside valid bounds
	KindOutOfRange
	// KindUnknownColumn is a column name that is not present
	KindUnknownColumn
	// KindDuplicateColumn is a column name collision
	KindDuplicateColumn
	// KindTypeMismatch is typed access against a column of another element type
	KindTypeMismatch
	// KindSchemaMismatch is row data whose arity or types do not fit the columns
	KindSchemaMismatch
	// KindPinned is a mutation attempted while column buffers are lent out
	KindPinned
	// KindInvalidInput is any other malformed argument
	KindInvalidInput
)

var kindNames = map[Kind]string{
	KindInternal:        "internal",
	KindOutOfRange:      "out of range",
	KindUnknownColumn:   "unknown column",
	KindDuplicateColumn: "duplicate column",
	KindTypeMismatch:    "type mismatch",
	KindSchemaMismatch:  "schema mismatch",
	KindPinned:          "pinned",
	KindInvalidInput:    "invalid input",
}

// String returns the human-readable kind name
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

// DataFrameError represents standardized errors across all DataFrame operations
type DataFrameError struct {
	Kind    Kind   // Failure class
	Op      string // Operation name (e.g., "RowInsert", "RawCol", "ReadCSV")
	Column  string // Column name if applicable
	Message string // Human-readable error description
	Cause   error  // Underlying error cause
}

// Error implements the error interface
func (e *DataFrameError) Error() string {
	var msg string
	if e.Column != "" {
		msg = fmt.Sprintf("%s operation failed on column '%s': %s", e.Op, e.Column, e.Message)
	} else {
		msg = fmt.Sprintf("%s operation failed: %s", e.Op, e.Message)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error wrapping support
func (e *DataFrameError) Unwrap() error {
	return e.Cause
}

// Is implements error equality checking for errors.Is().
// A target without an Op is a kind sentinel and matches every error of that kind.
func (e *DataFrameError) Is(target error) bool {
	df, ok := target.(*DataFrameError)
	if !ok {
		return false
	}
	if df.Op == "" {
		return e.Kind == df.Kind
	}
	return e.Kind == df.Kind && e.Op == df.Op && e.Column == df.Column && e.Message == df.Message
}

// Common error constructors for consistent error creation

// NewOutOfRangeError creates an error for an index outside [0, limit)
func NewOutOfRangeError(op string, index, limit int) *DataFrameError {
	return &DataFrameError{
		Kind:    KindOutOfRange,
		Op:      op,
		Message: fmt.Sprintf("index %d out of bounds [0, %d)", index, limit),
	}
}

// NewPositionError creates an error for an insert position outside [0, limit]
func NewPositionError(op string, pos, limit int) *DataFrameError {
	return &DataFrameError{
		Kind:    KindOutOfRange,
		Op:      op,
		Message: fmt.Sprintf("position %d out of bounds [0, %d]", pos, limit),
	}
}

// NewStaleViewError creates an error for a row view whose frame was mutated structurally
func NewStaleViewError(op string, pos int) *DataFrameError {
	return &DataFrameError{
		Kind:    KindOutOfRange,
		Op:      op,
		Message: fmt.Sprintf("row view at position %d is stale", pos),
	}
}

// NewColumnNotFoundError creates an error for operations on non-existent columns
func NewColumnNotFoundError(op, column string) *DataFrameError {
	return &DataFrameError{
		Kind:    KindUnknownColumn,
		Op:      op,
		Column:  column,
		Message: "column does not exist",
	}
}

// NewDuplicateColumnError creates an error for a column name that already exists
func NewDuplicateColumnError(op, column string) *DataFrameError {
	return &DataFrameError{
		Kind:    KindDuplicateColumn,
		Op:      op,
		Column:  column,
		Message: "column already exists",
	}
}

// NewTypeMismatchError creates an error for typed access against another element type
func NewTypeMismatchError(op, column, want, got string) *DataFrameError {
	return &DataFrameError{
		Kind:    KindTypeMismatch,
		Op:      op,
		Column:  column,
		Message: fmt.Sprintf("expected %s, got %s", want, got),
	}
}

// NewConversionError creates a type mismatch error for a value that cannot be stored
func NewConversionError(op, column string, cause error) *DataFrameError {
	return &DataFrameError{
		Kind:    KindTypeMismatch,
		Op:      op,
		Column:  column,
		Message: "value not convertible to column type",
		Cause:   cause,
	}
}

// NewSchemaMismatchError creates an error for row data incompatible with the columns
func NewSchemaMismatchError(op, message string, cause error) *DataFrameError {
	return &DataFrameError{
		Kind:    KindSchemaMismatch,
		Op:      op,
		Message: message,
		Cause:   cause,
	}
}

// NewPinnedError creates an error for a mutation attempted while buffers are pinned
func NewPinnedError(op string, pins int) *DataFrameError {
	return &DataFrameError{
		Kind:    KindPinned,
		Op:      op,
		Message: fmt.Sprintf("column buffers are pinned by %d borrower(s)", pins),
	}
}

// NewInvalidInputError creates an error for invalid operation inputs
func NewInvalidInputError(op, message string) *DataFrameError {
	return &DataFrameError{
		Kind:    KindInvalidInput,
		Op:      op,
		Message: message,
	}
}

// NewUnsupportedTypeError creates an error for unsupported data types
func NewUnsupportedTypeError(op, typeName string) *DataFrameError {
	return &DataFrameError{
		Kind:    KindTypeMismatch,
		Op:      op,
		Message: fmt.Sprintf("unsupported type: %s", typeName),
	}
}

// NewInternalError creates an error for internal operation failures
func NewInternalError(op string, cause error) *DataFrameError {
	return &DataFrameError{
		Kind:    KindInternal,
		Op:      op,
		Message: "internal error occurred",
		Cause:   cause,
	}
}

// Kind sentinels, matched by kind through errors.Is
var (
	// ErrOutOfRange indicates out-of-bounds index or position access
	ErrOutOfRange = &DataFrameError{Kind: KindOutOfRange, Message: "index out of bounds"}

	// ErrUnknownColumn indicates a column name that is not present
	ErrUnknownColumn = &DataFrameError{Kind: KindUnknownColumn, Message: "column does not exist"}

	// ErrDuplicateColumn indicates a column name collision
	ErrDuplicateColumn = &DataFrameError{Kind: KindDuplicateColumn, Message: "column already exists"}

	// ErrTypeMismatch indicates typed access against the wrong element type
	ErrTypeMismatch = &DataFrameError{Kind: KindTypeMismatch, Message: "type mismatch"}

	// ErrSchemaMismatch indicates row data incompatible with the existing columns
	ErrSchemaMismatch = &DataFrameError{Kind: KindSchemaMismatch, Message: "schema mismatch"}

	// ErrPinned indicates a mutation while column buffers are lent out
	ErrPinned = &DataFrameError{Kind: KindPinned, Message: "column buffers are pinned"}

	// ErrInvalidInput indicates a malformed argument
	ErrInvalidInput = &DataFrameError{Kind: KindInvalidInput, Message: "invalid input"}

	// ErrInternal indicates a broken invariant or unexpected library failure
	ErrInternal = &DataFrameError{Kind: KindInternal, Message: "internal error occurred"}
)
