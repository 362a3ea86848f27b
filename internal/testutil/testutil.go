// Package testutil provides common testing utilities shared by the colframe
// test suites:
// - Checked memory allocator setup and leak assertion
// - Standard test DataFrame creation
// - Common DataFrame assertions
package testutil

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/colframe/internal/dataframe"
	"github.com/paveg/colframe/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// defaultRowCount is the default number of rows in test DataFrames.
	defaultRowCount = 4
)

// TestMemoryContext provides a checked Arrow allocator that verifies every
// allocation was released.
type TestMemoryContext struct {
	Allocator *memory.CheckedAllocator
	tb        testing.TB
}

// Release asserts that no Arrow memory is still allocated.
func (tmc *TestMemoryContext) Release() {
	tmc.Allocator.AssertSize(tmc.tb, 0)
}

// SetupMemoryTest creates a checked allocator for tests.
//
// Example usage:
//
//	mem := testutil.SetupMemoryTest(t)
//	defer mem.Release()
func SetupMemoryTest(tb testing.TB) *TestMemoryContext {
	tb.Helper()
	return &TestMemoryContext{
		Allocator: memory.NewCheckedAllocator(memory.NewGoAllocator()),
		tb:        tb,
	}
}

// TestDataFrameOption configures test DataFrame creation.
type TestDataFrameOption func(*testDataFrameConfig)

type testDataFrameConfig struct {
	rowCount   int
	withActive bool
	withScore  bool
}

// WithRowCount sets the number of rows in test data.
func WithRowCount(count int) TestDataFrameOption {
	return func(cfg *testDataFrameConfig) {
		cfg.rowCount = count
	}
}

// WithActiveColumn includes an 'active' boolean column.
func WithActiveColumn() TestDataFrameOption {
	return func(cfg *testDataFrameConfig) {
		cfg.withActive = true
	}
}

// WithScoreColumn includes a 'score' float64 column.
func WithScoreColumn() TestDataFrameOption {
	return func(cfg *testDataFrameConfig) {
		cfg.withScore = true
	}
}

// CreateTestDataFrame creates a standard test DataFrame with employee data.
//
// Default DataFrame includes:
// - name (string): ["Alice", "Bob", "Charlie", "David"]
// - age (int64): [25, 30, 35, 28]
// - department (string): ["Engineering", "Sales", "Engineering", "Marketing"]
// - salary (int64): [100000, 80000, 120000, 75000]
func CreateTestDataFrame(tb testing.TB, opts ...TestDataFrameOption) *dataframe.DataFrame {
	tb.Helper()
	cfg := &testDataFrameConfig{rowCount: defaultRowCount}
	for _, opt := range opts {
		opt(cfg)
	}

	columns := []dataframe.ISeries{
		series.New("name", cycle(cfg.rowCount, "Alice", "Bob", "Charlie", "David", "Eve", "Frank", "Grace", "Henry")),
		series.New("age", cycle[int64](cfg.rowCount, 25, 30, 35, 28, 32, 45, 29, 38)),
		series.New("department", cycle(cfg.rowCount,
			"Engineering", "Sales", "Engineering", "Marketing", "HR", "Finance", "Engineering", "Sales")),
		series.New("salary", cycle[int64](cfg.rowCount, 100000, 80000, 120000, 75000, 90000, 110000, 95000, 85000)),
	}
	if cfg.withActive {
		columns = append(columns, series.New("active", cycle(cfg.rowCount, true, true, false, true, true, false, true, false)))
	}
	if cfg.withScore {
		columns = append(columns, series.New("score", cycle(cfg.rowCount, 85.5, 92.0, 78.25, 88.0)))
	}

	df, err := dataframe.New(columns...)
	require.NoError(tb, err)
	return df
}

// CreateSimpleTestDataFrame creates the three-row frame used by most
// mutation tests: id (int64) [1, 2, 3] and name (string) ["a", "b", "c"].
func CreateSimpleTestDataFrame(tb testing.TB) *dataframe.DataFrame {
	tb.Helper()
	df, err := dataframe.New(
		series.New("id", []int64{1, 2, 3}),
		series.New("name", []string{"a", "b", "c"}),
	)
	require.NoError(tb, err)
	return df
}

// AssertDataFrameEqual performs deep equality comparison of DataFrames.
func AssertDataFrameEqual(t *testing.T, expected, actual *dataframe.DataFrame) {
	t.Helper()

	require.NotNil(t, expected, "expected DataFrame should not be nil")
	require.NotNil(t, actual, "actual DataFrame should not be nil")

	assert.Equal(t, expected.Len(), actual.Len(), "DataFrame lengths should match")
	assert.Equal(t, expected.Width(), actual.Width(), "DataFrame widths should match")
	assert.Equal(t, expected.Columns(), actual.Columns(), "DataFrame columns should match")
	assert.Equal(t, expected.Kinds(), actual.Kinds(), "DataFrame kinds should match")

	for _, colName := range expected.Columns() {
		expectedCol, err := expected.RawCol(colName)
		require.NoError(t, err)
		actualCol, err := actual.RawCol(colName)
		require.NoError(t, err, "actual column %s should exist", colName)

		assert.Equal(t, expectedCol.RawAny(), actualCol.RawAny(), "column %s data should match", colName)
	}
}

// AssertDataFrameHasColumns verifies that a DataFrame has the expected columns.
func AssertDataFrameHasColumns(t *testing.T, df *dataframe.DataFrame, expectedColumns []string) {
	t.Helper()

	require.NotNil(t, df, "DataFrame should not be nil")
	assert.Len(t, df.Columns(), len(expectedColumns), "column count should match")

	for _, col := range expectedColumns {
		assert.True(t, df.HasColumn(col), "DataFrame should have column %s", col)
	}
}

// AssertConsistent verifies the frame invariants hold.
func AssertConsistent(t *testing.T, df *dataframe.DataFrame) {
	t.Helper()

	require.NoError(t, df.Validate(), "DataFrame invariants should hold")
	for _, name := range df.Columns() {
		col, err := df.RawCol(name)
		require.NoError(t, err)
		assert.Equal(t, df.Len(), col.Len(), "column %s length should equal row count", name)
	}
}

func cycle[T any](count int, base ...T) []T {
	out := make([]T, count)
	for i := range count {
		out[i] = base[i%len(base)]
	}
	return out
}
