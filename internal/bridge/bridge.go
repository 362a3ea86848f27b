// Package bridge feeds dataframe columns into an external tensor graph.
//
// Numeric column buffers are wrapped as Arrow tensors without copying. The
// frame is pinned while the graph runs, so a graph can read (or write
// elements of) the buffers but nothing can resize them underneath it.
package bridge

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/arrow/tensor"
	"github.com/paveg/colframe/internal/dataframe"
	dferrors "github.com/paveg/colframe/internal/errors"
	"github.com/paveg/colframe/internal/logging"
	"github.com/paveg/colframe/internal/monitoring"
	"github.com/paveg/colframe/internal/series"
	"github.com/paveg/colframe/internal/validation"
	"github.com/paveg/colframe/internal/vector"
	"go.uber.org/zap"
)

// Graph is a computation that consumes named tensors and produces named tensors.
type Graph interface {
	Run(ctx context.Context, inputs map[string]tensor.Interface) (map[string]tensor.Interface, error)
}

// GraphFunc adapts a function to Graph.
type GraphFunc func(ctx context.Context, inputs map[string]tensor.Interface) (map[string]tensor.Interface, error)

// Run calls f.
func (f GraphFunc) Run(ctx context.Context, inputs map[string]tensor.Interface) (map[string]tensor.Interface, error) {
	return f(ctx, inputs)
}

// Binding maps a column onto a graph input. An empty Shape feeds the column
// as a vector; one dimension may be -1 and is deduced from the column length.
type Binding struct {
	Input  string
	Column string
	Shape  []int64
}

// Feed runs graph with one tensor per binding and returns its outputs. The
// input tensors share memory with the columns and are released when Feed
// returns; outputs belong to the caller.
func Feed(ctx context.Context, df *dataframe.DataFrame, graph Graph, bindings ...Binding) (out map[string]tensor.Interface, err error) {
	const op = "Feed"
	opLog := logging.WithOperation(op, zap.Int("bindings", len(bindings)))
	defer func() { opLog.Done(err) }()

	switch {
	case ctx == nil:
		return nil, dferrors.NewInvalidInputError(op, "context is nil")
	case df == nil:
		return nil, dferrors.NewInvalidInputError(op, "frame is nil")
	case graph == nil:
		return nil, dferrors.NewInvalidInputError(op, "graph is nil")
	}
	if err := checkBindings(op, bindings); err != nil {
		return nil, err
	}

	release := df.Pin()
	defer release()

	inputs := make(map[string]tensor.Interface, len(bindings))
	defer func() {
		for _, t := range inputs {
			t.Release()
		}
	}()
	for _, b := range bindings {
		col, err := df.RawCol(b.Column)
		if err != nil {
			return nil, err
		}
		t, err := ColumnTensor(col, b.Shape)
		if err != nil {
			return nil, err
		}
		inputs[b.Input] = t
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	err = monitoring.Record(op, func(m *monitoring.OperationMetrics) error {
		var runErr error
		out, runErr = graph.Run(ctx, inputs)
		m.RowsProcessed = int64(df.Len())
		return runErr
	})
	if err != nil {
		return nil, fmt.Errorf("running graph: %w", err)
	}
	return out, nil
}

func checkBindings(op string, bindings []Binding) error {
	seen := make(map[string]struct{}, len(bindings))
	for _, b := range bindings {
		if b.Input == "" {
			return dferrors.NewInvalidInputError(op, fmt.Sprintf("binding for column %q has no input name", b.Column))
		}
		if _, dup := seen[b.Input]; dup {
			return dferrors.NewInvalidInputError(op, fmt.Sprintf("input %q is bound twice", b.Input))
		}
		seen[b.Input] = struct{}{}
	}
	return nil
}

// ColumnTensor wraps a numeric column's raw buffer as a row-major tensor.
// The tensor aliases the column: element writes through either are visible
// to both. The caller must Release it and must not resize the column while
// it is alive.
func ColumnTensor(col dataframe.ISeries, shape []int64) (tensor.Interface, error) {
	const op = "ColumnTensor"
	if err := validation.ValidateNumeric(col.Name(), col.Kind(), op); err != nil {
		return nil, err
	}
	dims, err := resolveShape(col.Len(), shape)
	if err != nil {
		return nil, err
	}

	var (
		dt  arrow.DataType
		raw []byte
	)
	switch values := col.RawAny().(type) {
	case []int64:
		dt, raw = arrow.PrimitiveTypes.Int64, arrow.Int64Traits.CastToBytes(values)
	case []int32:
		dt, raw = arrow.PrimitiveTypes.Int32, arrow.Int32Traits.CastToBytes(values)
	case []float64:
		dt, raw = arrow.PrimitiveTypes.Float64, arrow.Float64Traits.CastToBytes(values)
	case []float32:
		dt, raw = arrow.PrimitiveTypes.Float32, arrow.Float32Traits.CastToBytes(values)
	default:
		return nil, dferrors.NewUnsupportedTypeError(op, col.Kind().String())
	}

	data := array.NewData(dt, col.Len(), []*memory.Buffer{nil, memory.NewBufferBytes(raw)}, nil, 0, 0)
	defer data.Release()
	return tensor.New(data, dims, nil, nil), nil
}

func resolveShape(n int, shape []int64) ([]int64, error) {
	if len(shape) == 0 {
		return []int64{int64(n)}, nil
	}
	dims := make([]int, len(shape))
	for i, d := range shape {
		dims[i] = int(d)
	}
	resolved, err := vector.DeduceShape(n, dims)
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(resolved))
	for i, d := range resolved {
		out[i] = int64(d)
	}
	return out, nil
}

// ColumnFromTensor copies a tensor's elements, in row-major order, into a new
// column.
func ColumnFromTensor(name string, t tensor.Interface) (dataframe.ISeries, error) {
	const op = "ColumnFromTensor"
	if !t.IsContiguous() || !t.IsRowMajor() {
		return nil, dferrors.NewInvalidInputError(op, "tensor must be contiguous and row-major")
	}
	switch v := t.(type) {
	case *tensor.Int64:
		return series.New(name, v.Int64Values()), nil
	case *tensor.Int32:
		return series.New(name, v.Int32Values()), nil
	case *tensor.Float64:
		return series.New(name, v.Float64Values()), nil
	case *tensor.Float32:
		return series.New(name, v.Float32Values()), nil
	default:
		return nil, dferrors.NewUnsupportedTypeError(op, t.DataType().String())
	}
}
