package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/paveg/colframe/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestDataFrameError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *errors.DataFrameError
		expected string
	}{
		{
			name:     "Error with column",
			err:      errors.NewColumnNotFoundError("RawCol", "age"),
			expected: "RawCol operation failed on column 'age': column does not exist",
		},
		{
			name:     "Error without column",
			err:      errors.NewOutOfRangeError("RowDrop", 5, 3),
			expected: "RowDrop operation failed: index 5 out of bounds [0, 3)",
		},
		{
			name:     "Error with cause",
			err:      errors.NewSchemaMismatchError("RowInsert", "row rejected", stderrors.New("bad cell")),
			expected: "RowInsert operation failed: row rejected: bad cell",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestDataFrameError_Unwrap(t *testing.T) {
	cause := stderrors.New("underlying error")
	err := errors.NewConversionError("Set", "id", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, stderrors.Is(err, cause))
}

func TestDataFrameError_IsKindSentinel(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"out of range", errors.NewOutOfRangeError("Get", 3, 1), errors.ErrOutOfRange},
		{"position", errors.NewPositionError("RowInsert", 4, 2), errors.ErrOutOfRange},
		{"unknown column", errors.NewColumnNotFoundError("RawCol", "x"), errors.ErrUnknownColumn},
		{"duplicate column", errors.NewDuplicateColumnError("InsertColumn", "x"), errors.ErrDuplicateColumn},
		{"type mismatch", errors.NewTypeMismatchError("Col", "x", "int64", "string"), errors.ErrTypeMismatch},
		{"schema mismatch", errors.NewSchemaMismatchError("RowInsert", "arity", nil), errors.ErrSchemaMismatch},
		{"pinned", errors.NewPinnedError("RowDrop", 1), errors.ErrPinned},
		{"invalid input", errors.NewInvalidInputError("Reshape", "bad shape"), errors.ErrInvalidInput},
		{"stale view", errors.NewStaleViewError("RowView.Get", 2), errors.ErrOutOfRange},
		{"internal", errors.NewInternalError("Validate", stderrors.New("broken")), errors.ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, stderrors.Is(tt.err, tt.sentinel))
			wrapped := fmt.Errorf("context: %w", tt.err)
			assert.True(t, stderrors.Is(wrapped, tt.sentinel))
		})
	}

	assert.False(t, stderrors.Is(errors.NewOutOfRangeError("Get", 3, 1), errors.ErrUnknownColumn))
}

func TestDataFrameError_IsExact(t *testing.T) {
	err1 := errors.NewColumnNotFoundError("RawCol", "age")
	err2 := errors.NewColumnNotFoundError("RawCol", "age")
	err3 := errors.NewColumnNotFoundError("RawCol", "name")

	assert.True(t, stderrors.Is(err1, err2))
	assert.False(t, stderrors.Is(err1, err3))
	assert.False(t, stderrors.Is(err1, stderrors.New("column does not exist")))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "out of range", errors.KindOutOfRange.String())
	assert.Equal(t, "schema mismatch", errors.KindSchemaMismatch.String())
	assert.Equal(t, "unknown(99)", errors.Kind(99).String())
}
