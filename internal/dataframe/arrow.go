package dataframe

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	dferrors "github.com/paveg/colframe/internal/errors"
	"github.com/paveg/colframe/internal/series"
)

// ArrowSchema returns the Arrow schema matching the frame columns
func (df *DataFrame) ArrowSchema() *arrow.Schema {
	fields := make([]arrow.Field, len(df.columns))
	for i, col := range df.columns {
		fields[i] = arrow.Field{Name: col.Name(), Type: col.DataType(), Nullable: false}
	}
	return arrow.NewSchema(fields, nil)
}

// ToRecord exports the frame as an Arrow record. The caller owns the record
// and must Release it.
func (df *DataFrame) ToRecord(mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	arrays := make([]arrow.Array, len(df.columns))
	defer func() {
		for _, arr := range arrays {
			if arr != nil {
				arr.Release()
			}
		}
	}()
	for i, col := range df.columns {
		arrays[i] = col.Array(mem)
	}
	return array.NewRecord(df.ArrowSchema(), arrays, int64(df.rows)), nil
}

// FromRecord copies an Arrow record into a new DataFrame
func FromRecord(rec arrow.Record) (*DataFrame, error) {
	columns := make([]ISeries, rec.NumCols())
	for i := range columns {
		col, err := series.FromArrow(rec.ColumnName(i), rec.Column(i))
		if err != nil {
			return nil, err
		}
		columns[i] = col
	}
	return New(columns...)
}

// FromTable copies an Arrow table, concatenating the chunks of every column
func FromTable(tbl arrow.Table, mem memory.Allocator) (*DataFrame, error) {
	const op = "FromTable"
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	schema := tbl.Schema()
	columns := make([]ISeries, tbl.NumCols())
	for i := range columns {
		field := schema.Field(i)
		chunks := tbl.Column(i).Data().Chunks()

		var col ISeries
		var err error
		if len(chunks) == 0 {
			kind, kerr := series.KindFromDataType(field.Type)
			if kerr != nil {
				return nil, dferrors.NewUnsupportedTypeError(op, field.Type.String())
			}
			col, err = series.NewOfKind(field.Name, kind)
		} else {
			var merged arrow.Array
			merged, err = array.Concatenate(chunks, mem)
			if err != nil {
				return nil, dferrors.NewInternalError(op, err)
			}
			col, err = series.FromArrow(field.Name, merged)
			merged.Release()
		}
		if err != nil {
			return nil, err
		}
		columns[i] = col
	}
	return New(columns...)
}
