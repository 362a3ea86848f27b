// Package colframe provides a typed, columnar, in-memory DataFrame.
// This package is the sole public API for the library.
//
// Columns are generic typed series behind a type-erased interface. Rows are
// addressed by position and columns by name or index; row and column
// mutations are all-or-nothing.
//
// Basic usage:
//
//	df, err := colframe.New(
//		colframe.NewSeries("name", []string{"Alice", "Bob"}),
//		colframe.NewSeries("age", []int64{25, 30}),
//	)
//	if err != nil {
//		return err
//	}
//	if err := df.AppendRow("Carol", 41); err != nil {
//		return err
//	}
//	ages, _ := colframe.Col[int64](df, "age")
//	fmt.Println(ages.Values()) // [25 30 41]
package colframe

import (
	"context"
	"io"

	"github.com/apache/arrow-go/v18/arrow/tensor"
	"github.com/paveg/colframe/internal/bridge"
	"github.com/paveg/colframe/internal/config"
	"github.com/paveg/colframe/internal/dataframe"
	dferrors "github.com/paveg/colframe/internal/errors"
	cfio "github.com/paveg/colframe/internal/io"
	"github.com/paveg/colframe/internal/logging"
	"github.com/paveg/colframe/internal/series"
	"go.uber.org/zap"
)

type (
	// DataFrame is an ordered set of equally long, uniquely named columns.
	DataFrame = dataframe.DataFrame
	// RowView is a projection of one row onto a set of columns.
	RowView = dataframe.RowView
	// Column is a type-erased series.
	Column = series.Column
	// Series is a typed column.
	Series[T Element] = series.Series[T]
	// Element is the set of supported element types.
	Element = series.Element
	// Kind tags the element type of a column.
	Kind = series.Kind

	// CSVOptions configures CSV reading and writing.
	CSVOptions = cfio.CSVOptions
	// Config holds process-wide settings.
	Config = config.Config

	// Graph consumes and produces named tensors.
	Graph = bridge.Graph
	// GraphFunc adapts a function to Graph.
	GraphFunc = bridge.GraphFunc
	// Binding maps a column onto a graph input.
	Binding = bridge.Binding
)

// Element kinds.
const (
	KindInt64   = series.KindInt64
	KindInt32   = series.KindInt32
	KindFloat64 = series.KindFloat64
	KindFloat32 = series.KindFloat32
	KindBool    = series.KindBool
	KindString  = series.KindString
)

// Error kinds, matched with errors.Is.
var (
	ErrOutOfRange      = dferrors.ErrOutOfRange
	ErrUnknownColumn   = dferrors.ErrUnknownColumn
	ErrDuplicateColumn = dferrors.ErrDuplicateColumn
	ErrTypeMismatch    = dferrors.ErrTypeMismatch
	ErrSchemaMismatch  = dferrors.ErrSchemaMismatch
	ErrPinned          = dferrors.ErrPinned
	ErrInvalidInput    = dferrors.ErrInvalidInput
)

// New creates a DataFrame from columns.
func New(columns ...Column) (*DataFrame, error) {
	return dataframe.New(columns...)
}

// NewEmpty creates a DataFrame with no columns.
func NewEmpty() *DataFrame {
	return dataframe.NewEmpty()
}

// FromRows builds a DataFrame from row-major values and declared kinds.
func FromRows(header []string, kinds []Kind, rows [][]any) (*DataFrame, error) {
	return dataframe.FromRows(header, kinds, rows)
}

// NewSeries creates a typed column holding a copy of values.
func NewSeries[T Element](name string, values []T) *Series[T] {
	return series.New(name, values)
}

// Col returns the named column as a typed series.
func Col[T Element](df *DataFrame, name string) (*Series[T], error) {
	return dataframe.Col[T](df, name)
}

// ICol returns the column at index i as a typed series.
func ICol[T Element](df *DataFrame, i int) (*Series[T], error) {
	return dataframe.ICol[T](df, i)
}

// IndexCol maps each key of column key to the value of column val in the same row.
func IndexCol[K, V Element](df *DataFrame, key, val string) (map[K]V, error) {
	return dataframe.IndexCol[K, V](df, key, val)
}

// IndexCols maps each key of column key to the values of the vals columns.
func IndexCols[K Element](df *DataFrame, key string, vals ...string) (map[K][]any, error) {
	return dataframe.IndexCols[K](df, key, vals...)
}

// DefaultCSVOptions returns CSV options from the global configuration.
func DefaultCSVOptions() CSVOptions {
	return cfio.DefaultCSVOptions()
}

// ReadCSV reads a DataFrame from CSV.
func ReadCSV(r io.Reader, opts CSVOptions) (*DataFrame, error) {
	return cfio.NewCSVReader(r, opts).Read()
}

// WriteCSV writes a DataFrame as CSV.
func WriteCSV(w io.Writer, df *DataFrame, opts CSVOptions) error {
	return cfio.NewCSVWriter(w, opts).Write(df)
}

// ReadFile reads a DataFrame, choosing CSV, TSV, JSON, JSON lines or Parquet
// from the file extension.
func ReadFile(path string) (*DataFrame, error) {
	return cfio.ReadFile(path)
}

// WriteFile writes a DataFrame, choosing the format from the file extension.
func WriteFile(path string, df *DataFrame) error {
	return cfio.WriteFile(path, df)
}

// Feed runs graph over zero-copy tensors of the bound columns.
func Feed(ctx context.Context, df *DataFrame, graph Graph, bindings ...Binding) (map[string]tensor.Interface, error) {
	return bridge.Feed(ctx, df, graph, bindings...)
}

// Configure validates cfg and installs it as the global configuration.
func Configure(cfg Config) error {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	config.SetGlobalConfig(cfg)
	return nil
}

// SetLogger installs the logger used by the library and returns a function
// restoring the previous one. A nil logger silences the library.
func SetLogger(l *zap.Logger) (restore func()) {
	return logging.SetLogger(l)
}
