// Package validation provides input validation utilities for DataFrame operations.
// Validators are staged before a mutation touches any column, so a failing
// check always leaves the frame untouched.
package validation

import (
	"fmt"
	"strings"

	"github.com/paveg/colframe/internal/errors"
	"github.com/paveg/colframe/internal/series"
)

// Validator interface for input validation
type Validator interface {
	Validate() error
}

// ColumnProvider interface for types that provide column information
type ColumnProvider interface {
	HasColumn(name string) bool
	Columns() []string
	Len() int
	Width() int
}

// ColumnValidator validates column existence
type ColumnValidator struct {
	df      ColumnProvider
	columns []string
	op      string
}

// NewColumnValidator creates a validator for column operations
func NewColumnValidator(df ColumnProvider, op string, columns ...string) *ColumnValidator {
	return &ColumnValidator{
		df:      df,
		columns: columns,
		op:      op,
	}
}

// Validate checks if all columns exist in the DataFrame
func (v *ColumnValidator) Validate() error {
	for _, column := range v.columns {
		if !v.df.HasColumn(column) {
			return errors.NewColumnNotFoundError(v.op, column)
		}
	}
	return nil
}

// NameValidator validates a new column name: non-empty and not taken
type NameValidator struct {
	df   ColumnProvider
	name string
	op   string
}

// NewNameValidator creates a validator for a column name about to be added
func NewNameValidator(df ColumnProvider, name, op string) *NameValidator {
	return &NameValidator{df: df, name: name, op: op}
}

// Validate checks the name is usable
func (v *NameValidator) Validate() error {
	if strings.TrimSpace(v.name) == "" {
		return errors.NewInvalidInputError(v.op, "column name must not be empty")
	}
	if v.df != nil && v.df.HasColumn(v.name) {
		return errors.NewDuplicateColumnError(v.op, v.name)
	}
	return nil
}

// LengthValidator validates length consistency of row data or columns
type LengthValidator struct {
	expected int
	actual   int
	op       string
	context  string
}

// NewLengthValidator creates a validator for length consistency
func NewLengthValidator(expected, actual int, op, context string) *LengthValidator {
	return &LengthValidator{
		expected: expected,
		actual:   actual,
		op:       op,
		context:  context,
	}
}

// Validate checks if lengths match
func (v *LengthValidator) Validate() error {
	if v.expected != v.actual {
		message := fmt.Sprintf("%s: expected length %d, got %d", v.context, v.expected, v.actual)
		return errors.NewSchemaMismatchError(v.op, message, nil)
	}
	return nil
}

// IndexValidator validates element index bounds [0, max)
type IndexValidator struct {
	index int
	max   int
	op    string
}

// NewIndexValidator creates a validator for index operations
func NewIndexValidator(index, maxIndex int, op string) *IndexValidator {
	return &IndexValidator{
		index: index,
		max:   maxIndex,
		op:    op,
	}
}

// Validate checks if index is within bounds
func (v *IndexValidator) Validate() error {
	if v.index < 0 || v.index >= v.max {
		return errors.NewOutOfRangeError(v.op, v.index, v.max)
	}
	return nil
}

// PositionValidator validates an insertion position [0, max]
type PositionValidator struct {
	pos int
	max int
	op  string
}

// NewPositionValidator creates a validator for insert positions
func NewPositionValidator(pos, maxPos int, op string) *PositionValidator {
	return &PositionValidator{pos: pos, max: maxPos, op: op}
}

// Validate checks if the position is a valid insertion point
func (v *PositionValidator) Validate() error {
	if v.pos < 0 || v.pos > v.max {
		return errors.NewPositionError(v.op, v.pos, v.max)
	}
	return nil
}

// NumericKindValidator requires a column kind usable as a numeric buffer
type NumericKindValidator struct {
	column string
	kind   series.Kind
	op     string
}

// NewNumericKindValidator creates a validator for numeric-only operations
func NewNumericKindValidator(column string, kind series.Kind, op string) *NumericKindValidator {
	return &NumericKindValidator{column: column, kind: kind, op: op}
}

// Validate checks the kind is numeric
func (v *NumericKindValidator) Validate() error {
	if !v.kind.IsNumeric() {
		return errors.NewTypeMismatchError(v.op, v.column, "numeric", v.kind.String())
	}
	return nil
}

// CompoundValidator combines multiple validators
type CompoundValidator struct {
	validators []Validator
}

// NewCompoundValidator creates a validator that checks multiple conditions
func NewCompoundValidator(validators ...Validator) *CompoundValidator {
	return &CompoundValidator{
		validators: validators,
	}
}

// Validate runs all validators and returns the first error encountered
func (v *CompoundValidator) Validate() error {
	for _, validator := range v.validators {
		if err := validator.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Convenience validation functions

// ValidateColumns is a convenience function for column validation
func ValidateColumns(df ColumnProvider, op string, columns ...string) error {
	return NewColumnValidator(df, op, columns...).Validate()
}

// ValidateName is a convenience function for new column names
func ValidateName(df ColumnProvider, name, op string) error {
	return NewNameValidator(df, name, op).Validate()
}

// ValidateLength is a convenience function for length validation
func ValidateLength(expected, actual int, op, context string) error {
	return NewLengthValidator(expected, actual, op, context).Validate()
}

// ValidateIndex is a convenience function for index validation
func ValidateIndex(index, maxIndex int, op string) error {
	return NewIndexValidator(index, maxIndex, op).Validate()
}

// ValidatePosition is a convenience function for insert positions
func ValidatePosition(pos, maxPos int, op string) error {
	return NewPositionValidator(pos, maxPos, op).Validate()
}

// ValidateNumeric is a convenience function for numeric kinds
func ValidateNumeric(column string, kind series.Kind, op string) error {
	return NewNumericKindValidator(column, kind, op).Validate()
}
