package dataframe_test

import (
	"testing"
	"testing/quick"

	"github.com/hashicorp/go-multierror"
	"github.com/paveg/colframe/internal/config"
	"github.com/paveg/colframe/internal/dataframe"
	dferrors "github.com/paveg/colframe/internal/errors"
	"github.com/paveg/colframe/internal/series"
	"github.com/paveg/colframe/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowInsert(t *testing.T) {
	tests := []struct {
		name    string
		pos     int
		values  []any
		wantIDs []int64
		wantErr *dferrors.DataFrameError
	}{
		{"front", 0, []any{0, "z"}, []int64{0, 1, 2, 3}, nil},
		{"middle", 1, []any{int64(9), "z"}, []int64{1, 9, 2, 3}, nil},
		{"end behaves as append", 3, []any{"4", "z"}, []int64{1, 2, 3, 4}, nil},
		{"past end", 4, []any{4, "z"}, nil, dferrors.ErrOutOfRange},
		{"negative", -1, []any{4, "z"}, nil, dferrors.ErrOutOfRange},
		{"too few values", 0, []any{4}, nil, dferrors.ErrSchemaMismatch},
		{"too many values", 0, []any{4, "z", true}, nil, dferrors.ErrSchemaMismatch},
		{"unconvertible value", 1, []any{"not-an-int", "x"}, nil, dferrors.ErrSchemaMismatch},
		{"fractional into int", 1, []any{1.5, "x"}, nil, dferrors.ErrSchemaMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			df := testutil.CreateSimpleTestDataFrame(t)
			before := df.Checksum()

			err := df.RowInsert(tt.pos, tt.values)
			testutil.AssertConsistent(t, df)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 3, df.Len())
				assert.Equal(t, before, df.Checksum(), "failed insert must not change the frame")
				return
			}
			require.NoError(t, err)
			ids, err := dataframe.Col[int64](df, "id")
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, ids.Values())
		})
	}
}

func TestRowInsertAtomicity(t *testing.T) {
	df, err := dataframe.New(
		series.New("a", []int64{1, 2, 3}),
		series.New("b", []string{"x", "y", "z"}),
	)
	require.NoError(t, err)
	before := df.Records()

	err = df.RowInsert(1, []any{"not-an-int", "x"})
	require.ErrorIs(t, err, dferrors.ErrSchemaMismatch)

	var dfErr *dferrors.DataFrameError
	require.ErrorAs(t, err, &dfErr)
	var merr *multierror.Error
	require.ErrorAs(t, dfErr.Cause, &merr)
	require.Len(t, merr.Errors, 1)
	assert.ErrorIs(t, merr.Errors[0], dferrors.ErrTypeMismatch)

	for _, name := range df.Columns() {
		col, err := df.RawCol(name)
		require.NoError(t, err)
		assert.Equal(t, 3, col.Len())
	}
	assert.Equal(t, before, df.Records())
}

func TestRowInsertReportsEveryBadColumn(t *testing.T) {
	df, err := dataframe.New(
		series.New("a", []int64{1}),
		series.New("b", []bool{true}),
		series.New("c", []string{"ok"}),
	)
	require.NoError(t, err)

	err = df.AppendRow("x", "maybe", "fine")
	var dfErr *dferrors.DataFrameError
	require.ErrorAs(t, err, &dfErr)
	assert.Equal(t, "AppendRow", dfErr.Op)

	var merr *multierror.Error
	require.ErrorAs(t, dfErr.Cause, &merr)
	assert.Len(t, merr.Errors, 2)
}

func TestRowInsertRecord(t *testing.T) {
	df := testutil.CreateSimpleTestDataFrame(t)

	require.NoError(t, df.RowInsertRecord(0, map[string]any{"name": "first", "id": 0}))
	assert.Equal(t, []any{int64(0), "first"}, df.Records()[0])

	err := df.RowInsertRecord(0, map[string]any{"id": 1})
	require.ErrorIs(t, err, dferrors.ErrSchemaMismatch)

	err = df.RowInsertRecord(0, map[string]any{"id": 1, "name": "x", "extra": 2})
	require.ErrorIs(t, err, dferrors.ErrSchemaMismatch)
	assert.Contains(t, err.Error(), `unexpected key "extra"`)

	err = df.RowInsertRecord(9, map[string]any{"id": 1, "name": "x"})
	require.ErrorIs(t, err, dferrors.ErrOutOfRange)

	assert.Equal(t, 4, df.Len())
}

func TestAppendRow(t *testing.T) {
	df := testutil.CreateSimpleTestDataFrame(t)
	require.NoError(t, df.AppendRow(4, "d"))
	assert.Equal(t, []any{int64(4), "d"}, df.Records()[3])

	empty := dataframe.NewEmpty()
	require.ErrorIs(t, empty.AppendRow(), dferrors.ErrSchemaMismatch)
	assert.Equal(t, 0, empty.Len())
}

func TestRowDrop(t *testing.T) {
	df := testutil.CreateSimpleTestDataFrame(t)

	require.NoError(t, df.RowDrop(0))
	ids, err := dataframe.Col[int64](df, "id")
	require.NoError(t, err)
	names, err := dataframe.Col[string](df, "name")
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, ids.Values())
	assert.Equal(t, []string{"b", "c"}, names.Values())

	before := df.Checksum()
	require.ErrorIs(t, df.RowDrop(2), dferrors.ErrOutOfRange)
	require.ErrorIs(t, df.RowDrop(-1), dferrors.ErrOutOfRange)
	assert.Equal(t, before, df.Checksum())
	testutil.AssertConsistent(t, df)
}

func TestInsertThenDropRoundTrip(t *testing.T) {
	property := func(pos uint8, id int64, name string) bool {
		df := testutil.CreateTestDataFrame(t, testutil.WithActiveColumn(), testutil.WithScoreColumn())
		before := df.Checksum()
		p := int(pos) % (df.Len() + 1)

		if err := df.RowInsert(p, []any{name, id, "dept", id, true, 1.5}); err != nil {
			return false
		}
		if df.Len() != 5 || df.Validate() != nil {
			return false
		}
		if err := df.RowDrop(p); err != nil {
			return false
		}
		return df.Len() == 4 && df.Checksum() == before && df.Validate() == nil
	}

	require.NoError(t, quick.Check(property, &quick.Config{MaxCount: 100}))
}

// Property: arbitrary sequences of inserts and drops keep every column at the row count.
func TestLengthInvariantProperty(t *testing.T) {
	property := func(ops []int16) bool {
		df := testutil.CreateSimpleTestDataFrame(t)
		for _, op := range ops {
			n := int(op)
			if n%2 == 0 {
				_ = df.RowInsert(n%(df.Len()+2), []any{n, "v"})
			} else {
				_ = df.RowDrop(n % (df.Len() + 1))
			}
			if df.Validate() != nil {
				return false
			}
		}
		return true
	}

	require.NoError(t, quick.Check(property, &quick.Config{MaxCount: 200}))
}

func TestColumnMutation(t *testing.T) {
	df := testutil.CreateSimpleTestDataFrame(t)

	t.Run("insert", func(t *testing.T) {
		idx, err := df.InsertColumn(series.New("score", []float64{1, 2, 3}))
		require.NoError(t, err)
		assert.Equal(t, 2, idx)

		_, err = df.InsertColumn(series.New("short", []float64{1}))
		require.ErrorIs(t, err, dferrors.ErrSchemaMismatch)

		_, err = df.InsertColumn(series.New("id", []int64{1, 2, 3}))
		require.ErrorIs(t, err, dferrors.ErrDuplicateColumn)

		_, err = df.InsertColumn(nil)
		require.ErrorIs(t, err, dferrors.ErrInvalidInput)

		assert.Equal(t, []string{"id", "name", "score"}, df.Columns())
		testutil.AssertConsistent(t, df)
	})

	t.Run("rename", func(t *testing.T) {
		require.NoError(t, df.RenameColumn("score", "points"))
		require.NoError(t, df.RenameColumn("points", "points"))
		require.ErrorIs(t, df.RenameColumn("points", "id"), dferrors.ErrDuplicateColumn)
		require.ErrorIs(t, df.RenameColumn("nope", "x"), dferrors.ErrUnknownColumn)
		require.ErrorIs(t, df.RenameColumn("points", ""), dferrors.ErrInvalidInput)

		col, err := df.RawICol(2)
		require.NoError(t, err)
		assert.Equal(t, "points", col.Name())
		testutil.AssertConsistent(t, df)
	})

	t.Run("drop re-densifies", func(t *testing.T) {
		require.NoError(t, df.DropColumn("id"))
		assert.Equal(t, []string{"name", "points"}, df.Columns())

		idx, err := df.ColumnIndex("points")
		require.NoError(t, err)
		assert.Equal(t, 1, idx)

		require.ErrorIs(t, df.DropColumn("id"), dferrors.ErrUnknownColumn)
		require.ErrorIs(t, df.DropIColumn(2), dferrors.ErrOutOfRange)

		require.NoError(t, df.DropIColumn(0))
		require.NoError(t, df.DropIColumn(0))
		assert.Equal(t, 0, df.Width())
		assert.Equal(t, 0, df.Len())
		testutil.AssertConsistent(t, df)
	})

	t.Run("first column sets row count", func(t *testing.T) {
		_, err := df.InsertColumn(series.New("fresh", []bool{true, false}))
		require.NoError(t, err)
		assert.Equal(t, 2, df.Len())
	})
}

func TestColumnOwnership(t *testing.T) {
	t.Run("shared column rejected", func(t *testing.T) {
		a := series.New("a", []int64{1, 2, 3})
		df1, err := dataframe.New(a)
		require.NoError(t, err)

		_, err = dataframe.New(a)
		require.ErrorIs(t, err, dferrors.ErrInvalidInput)

		df2, err := dataframe.New(a.Clone())
		require.NoError(t, err)
		require.NoError(t, df1.RowDrop(0))
		require.NoError(t, df1.Validate())
		require.NoError(t, df2.Validate())
		assert.Equal(t, [][]any{{int64(1)}, {int64(2)}, {int64(3)}}, df2.Records())
	})

	t.Run("failed New releases its columns", func(t *testing.T) {
		owned := series.New("b", []int64{1})
		_, err := dataframe.New(owned)
		require.NoError(t, err)

		free := series.New("a", []int64{1})
		_, err = dataframe.New(free, owned)
		require.ErrorIs(t, err, dferrors.ErrInvalidInput)

		_, err = dataframe.New(free)
		require.NoError(t, err)
	})

	t.Run("column of another frame", func(t *testing.T) {
		df1 := testutil.CreateSimpleTestDataFrame(t)
		df2 := testutil.CreateSimpleTestDataFrame(t)
		require.NoError(t, df2.DropColumn("id"))

		id, err := df1.RawCol("id")
		require.NoError(t, err)
		_, err = df2.InsertColumn(id)
		require.ErrorIs(t, err, dferrors.ErrInvalidInput)
		assert.Equal(t, []string{"name"}, df2.Columns())

		require.NoError(t, df2.AppendRow("d"))
		require.NoError(t, df1.Validate())
		require.NoError(t, df2.Validate())
	})

	t.Run("dropped column can move", func(t *testing.T) {
		df1 := testutil.CreateSimpleTestDataFrame(t)
		df2 := testutil.CreateSimpleTestDataFrame(t)
		require.NoError(t, df2.DropColumn("id"))

		id, err := df1.RawCol("id")
		require.NoError(t, err)
		require.NoError(t, df1.DropColumn("id"))

		_, err = df2.InsertColumn(id)
		require.NoError(t, err)
		require.NoError(t, df2.AppendRow("d", 4))
		require.NoError(t, df1.Validate())
		require.NoError(t, df2.Validate())
	})

	t.Run("clone owns its copies", func(t *testing.T) {
		df := testutil.CreateSimpleTestDataFrame(t)
		clone := df.Clone()
		require.NoError(t, clone.RowDrop(0))
		require.NoError(t, df.Validate())
		require.NoError(t, clone.Validate())
		assert.Equal(t, 3, df.Len())
	})
}

func TestPin(t *testing.T) {
	df := testutil.CreateSimpleTestDataFrame(t)
	before := df.Checksum()

	release := df.Pin()
	assert.True(t, df.Pinned())

	require.ErrorIs(t, df.AppendRow(4, "d"), dferrors.ErrPinned)
	require.ErrorIs(t, df.RowDrop(0), dferrors.ErrPinned)
	require.ErrorIs(t, df.DropColumn("id"), dferrors.ErrPinned)
	_, err := df.InsertColumn(series.New("x", []int64{1, 2, 3}))
	require.ErrorIs(t, err, dferrors.ErrPinned)
	assert.Equal(t, before, df.Checksum())

	release()
	release()
	assert.False(t, df.Pinned())
	require.NoError(t, df.AppendRow(4, "d"))
}

func TestVerifyMutations(t *testing.T) {
	original := config.GetGlobalConfig()
	defer config.SetGlobalConfig(original)

	cfg := config.NewConfig()
	cfg.VerifyMutations = true
	config.SetGlobalConfig(cfg)

	df := testutil.CreateSimpleTestDataFrame(t)
	require.NoError(t, df.AppendRow(4, "d"))
	require.NoError(t, df.RowDrop(0))

	// Resizing through the raw buffer is outside the contract; verification catches it.
	names, err := dataframe.Col[string](df, "name")
	require.NoError(t, err)
	names.Append("stray")

	err = df.AppendRow(5, "e")
	require.Error(t, err)
	assert.ErrorIs(t, err, dferrors.ErrInternal)
}
