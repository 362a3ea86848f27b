// Package dataframe provides a typed, columnar, in-memory table with
// positional and name-based access and all-or-nothing row mutation.
//
// A DataFrame is single-owner and performs no internal locking.
package dataframe

import (
	"fmt"

	dferrors "github.com/paveg/colframe/internal/errors"
	"github.com/paveg/colframe/internal/registry"
	"github.com/paveg/colframe/internal/series"
	"github.com/paveg/colframe/internal/validation"
)

// DataFrame represents a table of data with typed columns
type DataFrame struct {
	columns  []ISeries
	registry *registry.IndexMapper[string]
	rows     int

	// version changes on every structural mutation; row views compare it to detect staleness
	version uint64
	// pins counts outstanding borrowers of the raw column buffers
	pins int
}

// NewEmpty creates a DataFrame without columns or rows
func NewEmpty() *DataFrame {
	reg, _ := registry.New[string]()
	return &DataFrame{registry: reg}
}

// New creates a new DataFrame owning the given columns. Names must be unique
// and non-empty and all columns must have the same length. A column already
// owned by another frame is rejected; pass its Clone instead.
func New(columns ...ISeries) (*DataFrame, error) {
	const op = "New"
	df := NewEmpty()
	for i, col := range columns {
		if col == nil {
			return nil, dferrors.NewInvalidInputError(op, fmt.Sprintf("column %d is nil", i))
		}
		if err := validation.ValidateName(df, col.Name(), op); err != nil {
			return nil, err
		}
		if i > 0 {
			if err := validation.ValidateLength(df.rows, col.Len(), op, "column "+col.Name()); err != nil {
				return nil, err
			}
		}
		if _, err := df.registry.Insert(col.Name()); err != nil {
			return nil, err
		}
		df.columns = append(df.columns, col)
		df.rows = col.Len()
	}
	for i, col := range df.columns {
		if err := col.Attach(df); err != nil {
			for _, attached := range df.columns[:i] {
				attached.Detach(df)
			}
			return nil, err
		}
	}
	return df, nil
}

// FromRows builds a DataFrame from row-major data. Every row must supply one
// value per header entry, convertible to the matching kind.
func FromRows(header []string, kinds []series.Kind, rows [][]any) (*DataFrame, error) {
	const op = "FromRows"
	if err := validation.ValidateLength(len(header), len(kinds), op, "header and kinds"); err != nil {
		return nil, err
	}
	columns := make([]ISeries, len(header))
	for i, name := range header {
		col, err := series.NewOfKind(name, kinds[i])
		if err != nil {
			return nil, err
		}
		columns[i] = col
	}
	df, err := New(columns...)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := df.AppendRow(row...); err != nil {
			return nil, err
		}
	}
	return df, nil
}

// Len returns the number of rows
func (df *DataFrame) Len() int {
	return df.rows
}

// Width returns the number of columns
func (df *DataFrame) Width() int {
	return len(df.columns)
}

// Columns returns the names of all columns in order
func (df *DataFrame) Columns() []string {
	return df.registry.Values()
}

// Kinds returns the element kind of every column in order
func (df *DataFrame) Kinds() []series.Kind {
	kinds := make([]series.Kind, len(df.columns))
	for i, col := range df.columns {
		kinds[i] = col.Kind()
	}
	return kinds
}

// HasColumn checks if a column exists
func (df *DataFrame) HasColumn(name string) bool {
	return df.registry.Contains(name)
}

// ColumnIndex returns the position of a column
func (df *DataFrame) ColumnIndex(name string) (int, error) {
	idx, err := df.registry.IndexOf(name)
	if err != nil {
		return -1, dferrors.NewColumnNotFoundError("ColumnIndex", name)
	}
	return idx, nil
}

// RawCol returns the column with the given name
func (df *DataFrame) RawCol(name string) (ISeries, error) {
	idx, err := df.registry.IndexOf(name)
	if err != nil {
		return nil, dferrors.NewColumnNotFoundError("RawCol", name)
	}
	return df.columns[idx], nil
}

// RawCols returns the named columns in the requested order
func (df *DataFrame) RawCols(names ...string) ([]ISeries, error) {
	if err := validation.ValidateColumns(df, "RawCols", names...); err != nil {
		return nil, err
	}
	out := make([]ISeries, 0, len(names))
	for _, name := range names {
		idx, _ := df.registry.IndexOf(name)
		out = append(out, df.columns[idx])
	}
	return out, nil
}

// RawICol returns the column at position i
func (df *DataFrame) RawICol(i int) (ISeries, error) {
	if err := validation.ValidateIndex(i, len(df.columns), "RawICol"); err != nil {
		return nil, err
	}
	return df.columns[i], nil
}

// RawICols returns the columns at the given positions in the requested order
func (df *DataFrame) RawICols(indices ...int) ([]ISeries, error) {
	out := make([]ISeries, 0, len(indices))
	for _, i := range indices {
		if err := validation.ValidateIndex(i, len(df.columns), "RawICols"); err != nil {
			return nil, err
		}
		out = append(out, df.columns[i])
	}
	return out, nil
}

// Select returns a new DataFrame holding copies of the named columns
func (df *DataFrame) Select(names ...string) (*DataFrame, error) {
	cols, err := df.RawCols(names...)
	if err != nil {
		return nil, err
	}
	copies := make([]ISeries, len(cols))
	for i, col := range cols {
		copies[i] = col.Clone()
	}
	return New(copies...)
}

// Slice creates a new DataFrame containing rows from start (inclusive) to end (exclusive)
func (df *DataFrame) Slice(start, end int) (*DataFrame, error) {
	const op = "Slice"
	bounds := validation.NewCompoundValidator(
		validation.NewPositionValidator(start, df.rows, op),
		validation.NewPositionValidator(end, df.rows, op),
	)
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	if end < start {
		return nil, dferrors.NewInvalidInputError(op, fmt.Sprintf("end %d before start %d", end, start))
	}

	sliced := make([]ISeries, len(df.columns))
	for j, col := range df.columns {
		out, err := series.NewOfKind(col.Name(), col.Kind())
		if err != nil {
			return nil, err
		}
		for i := start; i < end; i++ {
			v, _ := col.GetAny(i)
			if err := out.AppendAny(v); err != nil {
				return nil, dferrors.NewInternalError(op, err)
			}
		}
		sliced[j] = out
	}
	return New(sliced...)
}

// Concat concatenates DataFrames vertically (row-wise) into a new DataFrame.
// All DataFrames must have the same column names and kinds in the same order.
func (df *DataFrame) Concat(others ...*DataFrame) (*DataFrame, error) {
	const op = "Concat"
	for i, other := range others {
		if other == nil {
			return nil, dferrors.NewInvalidInputError(op, fmt.Sprintf("frame %d is nil", i))
		}
		if !sameKinds(df.columns, other.columns) {
			return nil, dferrors.NewSchemaMismatchError(op, "column names or kinds differ", nil)
		}
	}

	out := df.Clone()
	for _, other := range others {
		for j, col := range other.columns {
			for i := 0; i < other.rows; i++ {
				v, _ := col.GetAny(i)
				if err := out.columns[j].AppendAny(v); err != nil {
					return nil, dferrors.NewInternalError(op, err)
				}
			}
		}
		out.rows += other.rows
	}
	return out, nil
}

// Clone returns a deep copy. Pins and row views do not carry over.
func (df *DataFrame) Clone() *DataFrame {
	columns := make([]ISeries, len(df.columns))
	for i, col := range df.columns {
		columns[i] = col.Clone()
	}
	out := &DataFrame{
		columns:  columns,
		registry: df.registry.Clone(),
		rows:     df.rows,
	}
	for _, col := range columns {
		// fresh copies have no owner yet
		_ = col.Attach(out)
	}
	return out
}

// Validate re-checks the frame invariants: every column has Len() rows and
// the registry resolves each name to the column holding it.
func (df *DataFrame) Validate() error {
	const op = "Validate"
	if df.registry.Len() != len(df.columns) {
		return dferrors.NewInternalError(op,
			fmt.Errorf("registry holds %d names for %d columns", df.registry.Len(), len(df.columns)))
	}
	if len(df.columns) == 0 && df.rows != 0 {
		return dferrors.NewInternalError(op, fmt.Errorf("%d rows without columns", df.rows))
	}
	for i, col := range df.columns {
		name, err := df.registry.At(i)
		if err != nil {
			return dferrors.NewInternalError(op, err)
		}
		if name == "" || name != col.Name() {
			return dferrors.NewInternalError(op, fmt.Errorf("index %d maps to %q, column is %q", i, name, col.Name()))
		}
		idx, err := df.registry.IndexOf(name)
		if err != nil || idx != i {
			return dferrors.NewInternalError(op, fmt.Errorf("name %q does not resolve to index %d", name, i))
		}
		if col.Len() != df.rows {
			return dferrors.NewInternalError(op, fmt.Errorf("column %q has %d rows, frame has %d", name, col.Len(), df.rows))
		}
	}
	return nil
}
