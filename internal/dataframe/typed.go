package dataframe

import (
	dferrors "github.com/paveg/colframe/internal/errors"
	"github.com/paveg/colframe/internal/series"
)

func typed[T series.Element](op string, col ISeries) (*series.Series[T], error) {
	s, ok := col.(*series.Series[T])
	if !ok {
		return nil, dferrors.NewTypeMismatchError(op, col.Name(), series.KindOf[T]().String(), col.Kind().String())
	}
	return s, nil
}

// Col returns the named column as a typed Series
func Col[T series.Element](df *DataFrame, name string) (*series.Series[T], error) {
	col, err := df.RawCol(name)
	if err != nil {
		return nil, err
	}
	return typed[T]("Col", col)
}

// ICol returns the column at position i as a typed Series
func ICol[T series.Element](df *DataFrame, i int) (*series.Series[T], error) {
	col, err := df.RawICol(i)
	if err != nil {
		return nil, err
	}
	return typed[T]("ICol", col)
}

// IndexCol maps every value of the key column to the value of the val column
// in the same row. When a key repeats, its first row wins.
func IndexCol[K, V series.Element](df *DataFrame, key, val string) (map[K]V, error) {
	keyCol, err := Col[K](df, key)
	if err != nil {
		return nil, err
	}
	valCol, err := Col[V](df, val)
	if err != nil {
		return nil, err
	}

	keys, vals := keyCol.Raw(), valCol.Raw()
	out := make(map[K]V, len(keys))
	for i, k := range keys {
		if _, seen := out[k]; !seen {
			out[k] = vals[i]
		}
	}
	return out, nil
}

// IndexCols maps every value of the key column to the values of the given
// columns in the same row, in the requested order. When a key repeats, its
// first row wins.
func IndexCols[K series.Element](df *DataFrame, key string, vals ...string) (map[K][]any, error) {
	keyCol, err := Col[K](df, key)
	if err != nil {
		return nil, err
	}
	rows, err := df.RawRows(vals...)
	if err != nil {
		return nil, err
	}

	keys := keyCol.Raw()
	out := make(map[K][]any, len(keys))
	for i, k := range keys {
		if _, seen := out[k]; seen {
			continue
		}
		values, err := rows[i].Values()
		if err != nil {
			return nil, err
		}
		out[k] = values
	}
	return out, nil
}
