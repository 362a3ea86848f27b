package dataframe_test

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/colframe/internal/dataframe"
	dferrors "github.com/paveg/colframe/internal/errors"
	"github.com/paveg/colframe/internal/series"
	"github.com/paveg/colframe/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("valid columns", func(t *testing.T) {
		df, err := dataframe.New(
			series.New("a", []int64{1, 2}),
			series.New("b", []string{"x", "y"}),
		)
		require.NoError(t, err)
		assert.Equal(t, 2, df.Len())
		assert.Equal(t, 2, df.Width())
		assert.Equal(t, []string{"a", "b"}, df.Columns())
		assert.Equal(t, []series.Kind{series.KindInt64, series.KindString}, df.Kinds())
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := dataframe.New(series.New("a", []int64{1}), series.New("a", []int64{2}))
		require.ErrorIs(t, err, dferrors.ErrDuplicateColumn)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := dataframe.New(series.New("", []int64{1}))
		require.ErrorIs(t, err, dferrors.ErrInvalidInput)
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := dataframe.New(series.New("a", []int64{1}), series.New("b", []int64{1, 2}))
		require.ErrorIs(t, err, dferrors.ErrSchemaMismatch)
	})

	t.Run("nil column", func(t *testing.T) {
		_, err := dataframe.New(nil)
		require.ErrorIs(t, err, dferrors.ErrInvalidInput)
	})

	t.Run("empty", func(t *testing.T) {
		df := dataframe.NewEmpty()
		assert.Equal(t, 0, df.Len())
		assert.Equal(t, 0, df.Width())
		assert.Empty(t, df.Columns())
		require.NoError(t, df.Validate())
	})
}

func TestFromRows(t *testing.T) {
	df, err := dataframe.FromRows(
		[]string{"id", "name", "score"},
		[]series.Kind{series.KindInt64, series.KindString, series.KindFloat32},
		[][]any{{1, "a", 0.5}, {"2", "b", 1}},
	)
	require.NoError(t, err)
	assert.Equal(t, [][]any{
		{int64(1), "a", float32(0.5)},
		{int64(2), "b", float32(1)},
	}, df.Records())

	_, err = dataframe.FromRows([]string{"id"}, nil, nil)
	require.ErrorIs(t, err, dferrors.ErrSchemaMismatch)

	_, err = dataframe.FromRows([]string{"id"}, []series.Kind{series.KindInt64}, [][]any{{"x"}})
	require.ErrorIs(t, err, dferrors.ErrSchemaMismatch)
}

func TestColumnAccess(t *testing.T) {
	df := testutil.CreateSimpleTestDataFrame(t)

	t.Run("by name", func(t *testing.T) {
		col, err := df.RawCol("name")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, col.RawAny())

		cols, err := df.RawCols("name", "id")
		require.NoError(t, err)
		require.Len(t, cols, 2)
		assert.Equal(t, "name", cols[0].Name())
		assert.Equal(t, "id", cols[1].Name())

		_, err = df.RawCol("missing")
		require.ErrorIs(t, err, dferrors.ErrUnknownColumn)

		_, err = df.RawCols("id", "missing")
		require.ErrorIs(t, err, dferrors.ErrUnknownColumn)
	})

	t.Run("empty selection", func(t *testing.T) {
		cols, err := df.RawCols()
		require.NoError(t, err)
		assert.Empty(t, cols)

		cols, err = df.RawICols()
		require.NoError(t, err)
		assert.Empty(t, cols)
	})

	t.Run("by index", func(t *testing.T) {
		col, err := df.RawICol(0)
		require.NoError(t, err)
		assert.Equal(t, "id", col.Name())

		cols, err := df.RawICols(1, 0, 1)
		require.NoError(t, err)
		assert.Equal(t, "name", cols[0].Name())
		assert.Equal(t, "id", cols[1].Name())

		_, err = df.RawICol(2)
		require.ErrorIs(t, err, dferrors.ErrOutOfRange)

		_, err = df.RawICols(0, -1)
		require.ErrorIs(t, err, dferrors.ErrOutOfRange)
	})

	t.Run("name and index resolve to the same column", func(t *testing.T) {
		for i, name := range df.Columns() {
			byName, err := df.RawCol(name)
			require.NoError(t, err)
			byIndex, err := df.RawICol(i)
			require.NoError(t, err)
			assert.Same(t, byName, byIndex)

			idx, err := df.ColumnIndex(name)
			require.NoError(t, err)
			assert.Equal(t, i, idx)
		}
	})
}

func TestTypedAccess(t *testing.T) {
	df := testutil.CreateSimpleTestDataFrame(t)

	ids, err := dataframe.Col[int64](df, "id")
	require.NoError(t, err)
	ids.Raw()[0] = 10

	again, err := dataframe.ICol[int64](df, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(10), again.Raw()[0])

	_, err = dataframe.Col[float64](df, "id")
	require.ErrorIs(t, err, dferrors.ErrTypeMismatch)

	_, err = dataframe.ICol[string](df, 0)
	require.ErrorIs(t, err, dferrors.ErrTypeMismatch)

	_, err = dataframe.Col[int64](df, "nope")
	require.ErrorIs(t, err, dferrors.ErrUnknownColumn)
}

func TestRawRows(t *testing.T) {
	df := testutil.CreateSimpleTestDataFrame(t)

	t.Run("projection by index keeps row order and count", func(t *testing.T) {
		rows, err := df.RawIRows(1)
		require.NoError(t, err)
		require.Len(t, rows, 3)

		values, err := rows[1].Values()
		require.NoError(t, err)
		assert.Equal(t, []any{"b"}, values)

		var all [][]any
		for _, r := range rows {
			v, err := r.Values()
			require.NoError(t, err)
			all = append(all, v)
		}
		assert.Equal(t, [][]any{{"a"}, {"b"}, {"c"}}, all)
	})

	t.Run("projection by name in requested order", func(t *testing.T) {
		rows, err := df.RawRows("name", "id")
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "id"}, rows[2].Columns())

		v, err := rows[2].Values()
		require.NoError(t, err)
		assert.Equal(t, []any{"c", int64(3)}, v)
	})

	t.Run("empty selection", func(t *testing.T) {
		rows, err := df.RawIRows()
		require.NoError(t, err)
		require.Len(t, rows, df.Len())
		for _, r := range rows {
			assert.Equal(t, 0, r.Len())
		}

		rows, err = df.RawRows()
		require.NoError(t, err)
		assert.Len(t, rows, df.Len())
	})

	t.Run("invalid selectors", func(t *testing.T) {
		_, err := df.RawRows("missing")
		require.ErrorIs(t, err, dferrors.ErrUnknownColumn)

		_, err = df.RawIRows(0, 5)
		require.ErrorIs(t, err, dferrors.ErrOutOfRange)
	})
}

func TestRowView(t *testing.T) {
	df := testutil.CreateSimpleTestDataFrame(t)
	rows, err := df.RawRows("id")
	require.NoError(t, err)
	row := rows[1]

	assert.Equal(t, 1, row.Position())
	assert.Equal(t, 1, row.Len())
	assert.True(t, row.Valid())

	v, err := row.GetByName("id")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	_, err = row.GetByName("name")
	require.ErrorIs(t, err, dferrors.ErrUnknownColumn, "column exists but is not projected")

	_, err = row.Get(1)
	require.ErrorIs(t, err, dferrors.ErrOutOfRange)

	require.NoError(t, row.Set(0, "20"))
	require.ErrorIs(t, row.SetByName("id", "twenty"), dferrors.ErrTypeMismatch)
	require.ErrorIs(t, row.SetByName("zzz", 1), dferrors.ErrUnknownColumn)

	ids, err := dataframe.Col[int64](df, "id")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 20, 3}, ids.Values())

	t.Run("stale after structural mutation", func(t *testing.T) {
		require.NoError(t, df.RowDrop(0))
		assert.False(t, row.Valid())

		_, err := row.Get(0)
		require.ErrorIs(t, err, dferrors.ErrOutOfRange)
		require.ErrorIs(t, row.Set(0, 1), dferrors.ErrOutOfRange)
		_, err = row.Values()
		require.ErrorIs(t, err, dferrors.ErrOutOfRange)
	})
}

func TestRowsLazy(t *testing.T) {
	df := testutil.CreateSimpleTestDataFrame(t)

	var names []any
	for r := range df.Rows().All() {
		v, err := r.GetByName("name")
		require.NoError(t, err)
		names = append(names, v)
	}
	assert.Equal(t, []any{"a", "b", "c"}, names)

	first := df.Rows().Take(1).Collect()
	require.Len(t, first, 1)
	assert.Equal(t, []string{"id", "name"}, first[0].Columns())

	it := df.Rows().Iterator()
	defer it.Stop()
	r, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, 0, r.Position())

	assert.Empty(t, dataframe.NewEmpty().Rows().Collect())
}

func TestIndexCol(t *testing.T) {
	df, err := dataframe.New(
		series.New("key", []string{"x", "y", "x"}),
		series.New("val", []int64{1, 2, 3}),
		series.New("flag", []bool{true, false, false}),
	)
	require.NoError(t, err)

	m, err := dataframe.IndexCol[string, int64](df, "key", "val")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"x": 1, "y": 2}, m)

	multi, err := dataframe.IndexCols[string](df, "key", "flag", "val")
	require.NoError(t, err)
	assert.Equal(t, map[string][]any{
		"x": {true, int64(1)},
		"y": {false, int64(2)},
	}, multi)

	_, err = dataframe.IndexCol[int64, int64](df, "key", "val")
	require.ErrorIs(t, err, dferrors.ErrTypeMismatch)

	_, err = dataframe.IndexCols[string](df, "key", "nope")
	require.ErrorIs(t, err, dferrors.ErrUnknownColumn)
}

func TestSelectSliceConcat(t *testing.T) {
	df := testutil.CreateTestDataFrame(t)

	sel, err := df.Select("salary", "name")
	require.NoError(t, err)
	assert.Equal(t, []string{"salary", "name"}, sel.Columns())
	assert.Equal(t, df.Len(), sel.Len())

	salaries, err := dataframe.Col[int64](sel, "salary")
	require.NoError(t, err)
	salaries.Raw()[0] = 1
	orig, err := dataframe.Col[int64](df, "salary")
	require.NoError(t, err)
	assert.Equal(t, int64(100000), orig.Raw()[0], "select copies columns")

	sliced, err := df.Slice(1, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, sliced.Len())
	names, err := dataframe.Col[string](sliced, "name")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob", "Charlie"}, names.Values())

	empty, err := df.Slice(2, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, 4, empty.Width())

	_, err = df.Slice(3, 1)
	require.ErrorIs(t, err, dferrors.ErrInvalidInput)
	_, err = df.Slice(0, 5)
	require.ErrorIs(t, err, dferrors.ErrOutOfRange)

	joined, err := sliced.Concat(df, sliced)
	require.NoError(t, err)
	assert.Equal(t, 8, joined.Len())
	testutil.AssertConsistent(t, joined)
	assert.Equal(t, 2, sliced.Len())

	_, err = df.Concat(sel)
	require.ErrorIs(t, err, dferrors.ErrSchemaMismatch)

	_, err = df.Concat(sliced, nil)
	require.ErrorIs(t, err, dferrors.ErrInvalidInput)
}

func TestString(t *testing.T) {
	df, err := dataframe.New(
		series.New("Id", []int64{1, 2}),
		series.New("A", []string{"a1", "a2"}),
		series.New("B", []float64{1.1, 2.25}),
	)
	require.NoError(t, err)

	expected := "" +
		"  Id|   A|     B\n" +
		"----+----+------\n" +
		"   1|  a1|   1.1\n" +
		"   2|  a2|  2.25\n"
	assert.Equal(t, expected, df.String())

	assert.Equal(t, "DataFrame[empty]", dataframe.NewEmpty().String())
	assert.Equal(t, "DataFrame[2x3]\n  Id: int64\n  A: string\n  B: float64", df.Schema())
}

func TestChecksum(t *testing.T) {
	a := testutil.CreateSimpleTestDataFrame(t)
	b := testutil.CreateSimpleTestDataFrame(t)
	assert.Equal(t, a.Checksum(), b.Checksum())

	require.NoError(t, b.RenameColumn("name", "label"))
	assert.NotEqual(t, a.Checksum(), b.Checksum())

	c := a.Clone()
	rows, err := c.RawIRows(1)
	require.NoError(t, err)
	require.NoError(t, rows[0].Set(0, "z"))
	assert.NotEqual(t, a.Checksum(), c.Checksum())
}

func TestArrowRoundTrip(t *testing.T) {
	mem := testutil.SetupMemoryTest(t)
	defer mem.Release()

	df := testutil.CreateTestDataFrame(t, testutil.WithActiveColumn(), testutil.WithScoreColumn())
	rec, err := df.ToRecord(mem.Allocator)
	require.NoError(t, err)
	defer rec.Release()

	assert.Equal(t, int64(df.Len()), rec.NumRows())
	assert.Equal(t, int64(df.Width()), rec.NumCols())

	back, err := dataframe.FromRecord(rec)
	require.NoError(t, err)
	testutil.AssertDataFrameEqual(t, df, back)
	assert.Equal(t, df.Checksum(), back.Checksum())

	tbl := array.NewTableFromRecords(rec.Schema(), []arrow.Record{rec, rec})
	defer tbl.Release()

	doubled, err := dataframe.FromTable(tbl, mem.Allocator)
	require.NoError(t, err)
	assert.Equal(t, 2*df.Len(), doubled.Len())
	testutil.AssertConsistent(t, doubled)
}

func TestFromTableEmpty(t *testing.T) {
	df := testutil.CreateSimpleTestDataFrame(t)
	mem := memory.NewGoAllocator()
	tbl := array.NewTableFromRecords(df.ArrowSchema(), nil)
	defer tbl.Release()

	empty, err := dataframe.FromTable(tbl, mem)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, df.Columns(), empty.Columns())
	assert.Equal(t, df.Kinds(), empty.Kinds())
}
