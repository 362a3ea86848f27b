// Package series provides the typed columns stored by a DataFrame.
package series

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/colframe/internal/common"
	dferrors "github.com/paveg/colframe/internal/errors"
)

// Column is the type-erased view of a Series used by containers that hold
// columns of different element types side by side.
type Column interface {
	Name() string
	Rename(name string)
	Kind() Kind
	Len() int
	DataType() arrow.DataType
	String() string

	GetAny(index int) (any, error)
	SetAny(index int, value any) error
	InsertAny(index int, value any) error
	AppendAny(value any) error
	Erase(index int) error

	// Coerce converts value into the element type without touching the column.
	Coerce(value any) (any, error)
	// Format renders the element at index for display.
	Format(index int) string
	// RawAny returns the live backing slice as an interface value ([]T).
	RawAny() any
	Clone() Column
	// Attach records owner as the holder of the column; it fails when a
	// different owner already holds it.
	Attach(owner any) error
	// Detach releases the column if owner holds it.
	Detach(owner any)
	// Array exports the column as a new Arrow array owned by the caller.
	Array(mem memory.Allocator) arrow.Array
}

// Series represents a typed data column backed by a contiguous Go slice
type Series[T Element] struct {
	name string
	data []T
	// owner is the frame the column belongs to, nil while unattached
	owner any
}

var (
	_ Column = (*Series[int64])(nil)
	_ Column = (*Series[string])(nil)
)

// New creates a new Series holding a copy of values
func New[T Element](name string, values []T) *Series[T] {
	data := make([]T, len(values))
	copy(data, values)
	return &Series[T]{name: name, data: data}
}

// NewOfKind creates an empty column of the given kind
func NewOfKind(name string, kind Kind) (Column, error) {
	switch kind {
	case KindInt64:
		return New[int64](name, nil), nil
	case KindInt32:
		return New[int32](name, nil), nil
	case KindFloat64:
		return New[float64](name, nil), nil
	case KindFloat32:
		return New[float32](name, nil), nil
	case KindBool:
		return New[bool](name, nil), nil
	case KindString:
		return New[string](name, nil), nil
	default:
		return nil, dferrors.NewUnsupportedTypeError("NewOfKind", kind.String())
	}
}

// As returns the typed Series behind an erased column.
func As[T Element](col Column) (*Series[T], error) {
	s, ok := col.(*Series[T])
	if !ok {
		return nil, dferrors.NewTypeMismatchError("As", col.Name(), KindOf[T]().String(), col.Kind().String())
	}
	return s, nil
}

// Name returns the column name
func (s *Series[T]) Name() string {
	return s.name
}

// Rename changes the column name. Owners keep it in sync with their registry.
func (s *Series[T]) Rename(name string) {
	s.name = name
}

// Kind returns the element kind tag
func (s *Series[T]) Kind() Kind {
	return KindOf[T]()
}

// Len returns the length of the series
func (s *Series[T]) Len() int {
	return len(s.data)
}

// DataType returns the Arrow data type used on export
func (s *Series[T]) DataType() arrow.DataType {
	return s.Kind().DataType()
}

func (s *Series[T]) outOfRange(op string, index, limit int) error {
	err := dferrors.NewOutOfRangeError(op, index, limit)
	err.Column = s.name
	return err
}

// Get returns the value at index
func (s *Series[T]) Get(index int) (T, error) {
	if index < 0 || index >= len(s.data) {
		var zero T
		return zero, s.outOfRange("Get", index, len(s.data))
	}
	return s.data[index], nil
}

// Set overwrites the value at index
func (s *Series[T]) Set(index int, value T) error {
	if index < 0 || index >= len(s.data) {
		return s.outOfRange("Set", index, len(s.data))
	}
	s.data[index] = value
	return nil
}

// Append adds a value at the end
func (s *Series[T]) Append(value T) {
	s.data = append(s.data, value)
}

// Insert places value before index; index may equal Len.
func (s *Series[T]) Insert(index int, value T) error {
	if index < 0 || index > len(s.data) {
		err := dferrors.NewPositionError("Insert", index, len(s.data))
		err.Column = s.name
		return err
	}
	var zero T
	s.data = append(s.data, zero)
	copy(s.data[index+1:], s.data[index:])
	s.data[index] = value
	return nil
}

// Erase removes the value at index
func (s *Series[T]) Erase(index int) error {
	if index < 0 || index >= len(s.data) {
		return s.outOfRange("Erase", index, len(s.data))
	}
	copy(s.data[index:], s.data[index+1:])
	var zero T
	s.data[len(s.data)-1] = zero
	s.data = s.data[:len(s.data)-1]
	return nil
}

// Raw returns the live backing slice. Element writes are visible to the
// column; appending to or reslicing the result is not.
func (s *Series[T]) Raw() []T {
	return s.data
}

// Values returns a copy of the data
func (s *Series[T]) Values() []T {
	out := make([]T, len(s.data))
	copy(out, s.data)
	return out
}

// GetAny returns the value at index as an interface value
func (s *Series[T]) GetAny(index int) (any, error) {
	v, err := s.Get(index)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// SetAny converts value and stores it at index
func (s *Series[T]) SetAny(index int, value any) error {
	if index < 0 || index >= len(s.data) {
		return s.outOfRange("Set", index, len(s.data))
	}
	v, err := s.convert("Set", value)
	if err != nil {
		return err
	}
	s.data[index] = v
	return nil
}

// InsertAny converts value and inserts it before index
func (s *Series[T]) InsertAny(index int, value any) error {
	v, err := s.convert("Insert", value)
	if err != nil {
		return err
	}
	return s.Insert(index, v)
}

// AppendAny converts value and appends it
func (s *Series[T]) AppendAny(value any) error {
	v, err := s.convert("Append", value)
	if err != nil {
		return err
	}
	s.Append(v)
	return nil
}

// Coerce converts value into the element type
func (s *Series[T]) Coerce(value any) (any, error) {
	v, err := s.convert("Coerce", value)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Series[T]) convert(op string, value any) (T, error) {
	v, err := Convert[T](value)
	if err != nil {
		return v, dferrors.NewConversionError(op, s.name, err)
	}
	return v, nil
}

// Convert converts an arbitrary value into T using the shared conversion
// rules: integers reject fractions and booleans, strings accept anything.
func Convert[T Element](value any) (T, error) {
	var zero T
	if v, ok := value.(T); ok {
		return v, nil
	}
	var (
		out any
		err error
	)
	switch any(zero).(type) {
	case int64:
		out, err = common.ToInt64(value)
	case int32:
		out, err = common.ToInt32(value)
	case float64:
		out, err = common.ToFloat64(value)
	case float32:
		out, err = common.ToFloat32(value)
	case bool:
		out, err = common.ToBool(value)
	case string:
		out = common.ToString(value)
	}
	if err != nil {
		return zero, err
	}
	return out.(T), nil
}

// Format renders the element at index; out of range renders empty
func (s *Series[T]) Format(index int) string {
	if index < 0 || index >= len(s.data) {
		return ""
	}
	return common.ToString(s.data[index])
}

// RawAny returns the live backing slice as []T
func (s *Series[T]) RawAny() any {
	return s.data
}

// Clone returns a deep copy
func (s *Series[T]) Clone() Column {
	return New(s.name, s.data)
}

// Attach records owner as the holder of the column. Attaching to the current
// owner again is a no-op.
func (s *Series[T]) Attach(owner any) error {
	if s.owner != nil && s.owner != owner {
		return dferrors.NewInvalidInputError("Attach",
			fmt.Sprintf("column %q already belongs to another frame", s.name))
	}
	s.owner = owner
	return nil
}

// Detach releases the column if owner holds it
func (s *Series[T]) Detach(owner any) {
	if s.owner == owner {
		s.owner = nil
	}
}

// String returns a string representation of the series
func (s *Series[T]) String() string {
	return fmt.Sprintf("Series[%s]: %s (len=%d)", s.Kind(), s.name, s.Len())
}

// Array builds a new Arrow array from the column values
func (s *Series[T]) Array(mem memory.Allocator) arrow.Array {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	switch v := any(s.data).(type) {
	case []string:
		builder := array.NewStringBuilder(mem)
		defer builder.Release()
		builder.AppendValues(v, nil)
		return builder.NewArray()
	case []int64:
		builder := array.NewInt64Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, nil)
		return builder.NewArray()
	case []int32:
		builder := array.NewInt32Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, nil)
		return builder.NewArray()
	case []float64:
		builder := array.NewFloat64Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, nil)
		return builder.NewArray()
	case []float32:
		builder := array.NewFloat32Builder(mem)
		defer builder.Release()
		builder.AppendValues(v, nil)
		return builder.NewArray()
	case []bool:
		builder := array.NewBooleanBuilder(mem)
		defer builder.Release()
		builder.AppendValues(v, nil)
		return builder.NewArray()
	default:
		panic(fmt.Sprintf("unsupported type: %T", s.data))
	}
}

// FromArrow copies an Arrow array into a new column. Null slots become zero values.
func FromArrow(name string, arr arrow.Array) (Column, error) {
	switch a := arr.(type) {
	case *array.String:
		out := make([]string, a.Len())
		for i := range out {
			if a.IsValid(i) {
				out[i] = a.Value(i)
			}
		}
		return &Series[string]{name: name, data: out}, nil
	case *array.LargeString:
		out := make([]string, a.Len())
		for i := range out {
			if a.IsValid(i) {
				out[i] = a.Value(i)
			}
		}
		return &Series[string]{name: name, data: out}, nil
	case *array.Int64:
		return fromPrimitive(name, a.Int64Values(), a), nil
	case *array.Int32:
		return fromPrimitive(name, a.Int32Values(), a), nil
	case *array.Float64:
		return fromPrimitive(name, a.Float64Values(), a), nil
	case *array.Float32:
		return fromPrimitive(name, a.Float32Values(), a), nil
	case *array.Boolean:
		out := make([]bool, a.Len())
		for i := range out {
			if a.IsValid(i) {
				out[i] = a.Value(i)
			}
		}
		return &Series[bool]{name: name, data: out}, nil
	default:
		return nil, dferrors.NewUnsupportedTypeError("FromArrow", arr.DataType().String())
	}
}

func fromPrimitive[T Element](name string, values []T, arr arrow.Array) Column {
	out := make([]T, len(values))
	copy(out, values)
	if arr.NullN() > 0 {
		var zero T
		for i := range out {
			if arr.IsNull(i) {
				out[i] = zero
			}
		}
	}
	return &Series[T]{name: name, data: out}
}
