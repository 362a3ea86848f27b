package dataframe

import (
	dferrors "github.com/paveg/colframe/internal/errors"
	"github.com/paveg/colframe/internal/lazy"
	"github.com/paveg/colframe/internal/validation"
)

// RowView is a projection of one row over selected columns. It holds no
// data; reads and writes go to the columns. A view becomes stale once its
// frame is structurally mutated (row or column insert/drop), after which
// every access fails with an out of range error.
type RowView struct {
	df      *DataFrame
	pos     int
	cols    []int
	version uint64
}

func (r *RowView) check(op string, j int) error {
	if r.version != r.df.version || r.pos >= r.df.rows {
		return dferrors.NewStaleViewError(op, r.pos)
	}
	if j < 0 || j >= len(r.cols) {
		return dferrors.NewOutOfRangeError(op, j, len(r.cols))
	}
	return nil
}

// Len returns the number of projected columns
func (r *RowView) Len() int {
	return len(r.cols)
}

// Position returns the row position in the frame
func (r *RowView) Position() int {
	return r.pos
}

// Valid reports whether the view still refers to its original row
func (r *RowView) Valid() bool {
	return r.version == r.df.version && r.pos < r.df.rows
}

// Columns returns the names of the projected columns
func (r *RowView) Columns() []string {
	names := make([]string, len(r.cols))
	for i, c := range r.cols {
		if c < len(r.df.columns) {
			names[i] = r.df.columns[c].Name()
		}
	}
	return names
}

// Get returns the value of the j-th projected column
func (r *RowView) Get(j int) (any, error) {
	if err := r.check("RowView.Get", j); err != nil {
		return nil, err
	}
	return r.df.columns[r.cols[j]].GetAny(r.pos)
}

// GetByName returns the value of a projected column by name
func (r *RowView) GetByName(name string) (any, error) {
	j, err := r.lookup("RowView.GetByName", name)
	if err != nil {
		return nil, err
	}
	return r.Get(j)
}

// Set overwrites the value of the j-th projected column
func (r *RowView) Set(j int, value any) error {
	if err := r.check("RowView.Set", j); err != nil {
		return err
	}
	return r.df.columns[r.cols[j]].SetAny(r.pos, value)
}

// SetByName overwrites a projected column by name
func (r *RowView) SetByName(name string, value any) error {
	j, err := r.lookup("RowView.SetByName", name)
	if err != nil {
		return err
	}
	return r.Set(j, value)
}

func (r *RowView) lookup(op, name string) (int, error) {
	idx, err := r.df.registry.IndexOf(name)
	if err == nil {
		for j, c := range r.cols {
			if c == idx {
				return j, nil
			}
		}
	}
	return -1, dferrors.NewColumnNotFoundError(op, name)
}

// Values returns a snapshot of the projected values
func (r *RowView) Values() ([]any, error) {
	out := make([]any, len(r.cols))
	for j := range r.cols {
		v, err := r.Get(j)
		if err != nil {
			return nil, err
		}
		out[j] = v
	}
	return out, nil
}

func (df *DataFrame) views(cols []int) []*RowView {
	out := make([]*RowView, df.rows)
	for i := range out {
		out[i] = &RowView{df: df, pos: i, cols: cols, version: df.version}
	}
	return out
}

// RawRows returns one view per row projecting the named columns. An empty
// selection yields views of width zero.
func (df *DataFrame) RawRows(names ...string) ([]*RowView, error) {
	if err := validation.ValidateColumns(df, "RawRows", names...); err != nil {
		return nil, err
	}
	cols, _ := df.registry.IndexesOf(names)
	return df.views(cols), nil
}

// RawIRows returns one view per row projecting the columns at the given positions
func (df *DataFrame) RawIRows(indices ...int) ([]*RowView, error) {
	for _, i := range indices {
		if err := validation.ValidateIndex(i, len(df.columns), "RawIRows"); err != nil {
			return nil, err
		}
	}
	cols := make([]int, len(indices))
	copy(cols, indices)
	return df.views(cols), nil
}

func (df *DataFrame) allColumns() []int {
	cols := make([]int, len(df.columns))
	for i := range cols {
		cols[i] = i
	}
	return cols
}

// Rows lazily enumerates every row across all columns in registry order.
// Views are created as the range is iterated.
func (df *DataFrame) Rows() lazy.Range[*RowView] {
	return lazy.FromSeq[*RowView](func(yield func(*RowView) bool) {
		cols := df.allColumns()
		version := df.version
		for i := 0; i < df.rows; i++ {
			if !yield(&RowView{df: df, pos: i, cols: cols, version: version}) {
				return
			}
		}
	})
}

// Records materializes every row as a slice of values
func (df *DataFrame) Records() [][]any {
	out := make([][]any, df.rows)
	for i := range out {
		row := make([]any, len(df.columns))
		for j, col := range df.columns {
			row[j], _ = col.GetAny(i)
		}
		out[i] = row
	}
	return out
}
