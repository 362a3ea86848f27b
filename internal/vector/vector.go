// Package vector provides shape utilities over raw column buffers: nested
// slice shapes, flattening, reshaped views that share the flat buffer, ragged
// resizing, random fill and random group assignment.
//
// The functions operate on plain slices so they can be applied directly to
// Series.Raw(). None of them resize a buffer they were given.
package vector

import (
	"fmt"
	"math/rand/v2"

	dferrors "github.com/paveg/colframe/internal/errors"
	"golang.org/x/exp/constraints"
)

// Number is the set of element types random fill and uniform generators support
type Number interface {
	constraints.Integer | constraints.Float
}

// Sized is anything with a length, such as a column
type Sized interface {
	Len() int
}

// Shape2 returns the shape of a rectangular two-dimensional slice.
// Ragged input fails with an invalid input error.
func Shape2[T any](v [][]T) ([]int, error) {
	shape := []int{len(v), 0}
	if len(v) == 0 {
		return shape, nil
	}
	shape[1] = len(v[0])
	for i, row := range v {
		if len(row) != shape[1] {
			return nil, dferrors.NewInvalidInputError("Shape2",
				fmt.Sprintf("row %d has length %d, expected %d", i, len(row), shape[1]))
		}
	}
	return shape, nil
}

// Shape3 returns the shape of a rectangular three-dimensional slice
func Shape3[T any](v [][][]T) ([]int, error) {
	shape := []int{len(v), 0, 0}
	if len(v) == 0 {
		return shape, nil
	}
	inner, err := Shape2(v[0])
	if err != nil {
		return nil, err
	}
	shape[1], shape[2] = inner[0], inner[1]
	for i, sub := range v {
		s, err := Shape2(sub)
		if err != nil {
			return nil, err
		}
		if s[0] != shape[1] || s[1] != shape[2] {
			return nil, dferrors.NewInvalidInputError("Shape3",
				fmt.Sprintf("block %d has shape %v, expected %v", i, s, shape[1:]))
		}
	}
	return shape, nil
}

// NDimSize2 returns the per-dimension sizes of a possibly ragged slice:
// {{len(v)}, {len(v[0]), len(v[1]), ...}}.
func NDimSize2[T any](v [][]T) [][]int {
	inner := make([]int, len(v))
	for i, row := range v {
		inner[i] = len(row)
	}
	return [][]int{{len(v)}, inner}
}

// NDimSize3 is NDimSize2 for three dimensions
func NDimSize3[T any](v [][][]T) [][]int {
	sizes := [][]int{{len(v)}, make([]int, len(v)), nil}
	for i, sub := range v {
		sizes[1][i] = len(sub)
		for _, row := range sub {
			sizes[2] = append(sizes[2], len(row))
		}
	}
	return sizes
}

// NDimResize2 returns v resized to the given per-dimension sizes, in the
// format NDimSize2 produces. Existing elements are kept and new ones are set
// to pad.
func NDimResize2[T any](v [][]T, sizes [][]int, pad T) ([][]T, error) {
	const op = "NDimResize2"
	if len(sizes) != 2 || len(sizes[0]) != 1 {
		return nil, dferrors.NewInvalidInputError(op, "sizes must describe two dimensions")
	}
	if sizes[0][0] < 0 || len(sizes[1]) != sizes[0][0] {
		return nil, dferrors.NewInvalidInputError(op,
			fmt.Sprintf("%d inner sizes for %d rows", len(sizes[1]), sizes[0][0]))
	}

	out := resize(v, sizes[0][0], nil)
	for i := range out {
		if sizes[1][i] < 0 {
			return nil, dferrors.NewInvalidInputError(op, fmt.Sprintf("negative size for row %d", i))
		}
		out[i] = resize(out[i], sizes[1][i], pad)
	}
	return out, nil
}

func resize[T any](v []T, n int, pad T) []T {
	if n <= len(v) {
		return v[:n:n]
	}
	out := make([]T, n)
	copy(out, v)
	for i := len(v); i < n; i++ {
		out[i] = pad
	}
	return out
}

// Flatten2 concatenates the rows of v into a new slice
func Flatten2[T any](v [][]T) []T {
	n := 0
	for _, row := range v {
		n += len(row)
	}
	out := make([]T, 0, n)
	for _, row := range v {
		out = append(out, row...)
	}
	return out
}

// Flatten3 concatenates all innermost slices of v into a new slice
func Flatten3[T any](v [][][]T) []T {
	out := make([]T, 0)
	for _, sub := range v {
		out = append(out, Flatten2(sub)...)
	}
	return out
}

// DeduceShape validates shape against n elements. At most one dimension may
// be -1, in which case it is computed from the others; it deduces to 0 only
// when n is 0. Explicit dimensions must be positive.
func DeduceShape(n int, shape []int) ([]int, error) {
	const op = "DeduceShape"
	out := make([]int, len(shape))
	copy(out, shape)

	deduced := -1
	product := 1
	for i, d := range out {
		switch {
		case d == -1 && deduced >= 0:
			return nil, dferrors.NewInvalidInputError(op, "only one dimension may be -1")
		case d == -1:
			deduced = i
		case d <= 0:
			return nil, dferrors.NewInvalidInputError(op, fmt.Sprintf("dimension %d must be positive, got %d", i, d))
		default:
			product *= d
		}
	}

	if deduced >= 0 {
		if n%product != 0 {
			return nil, dferrors.NewInvalidInputError(op,
				fmt.Sprintf("cannot split %d elements into shape %v", n, shape))
		}
		out[deduced] = n / product
		product *= out[deduced]
	}
	if product != n {
		return nil, dferrors.NewInvalidInputError(op,
			fmt.Sprintf("shape %v does not hold %d elements", shape, n))
	}
	return out, nil
}

// Reshape2 returns a rows x cols view of flat. The rows share flat's backing
// array, so writes through the view are visible in flat. Either dimension may
// be -1.
func Reshape2[T any](flat []T, rows, cols int) ([][]T, error) {
	shape, err := DeduceShape(len(flat), []int{rows, cols})
	if err != nil {
		return nil, err
	}
	return chunk(flat, shape[0], shape[1]), nil
}

// Reshape3 returns a d0 x d1 x d2 view of flat sharing its backing array
func Reshape3[T any](flat []T, d0, d1, d2 int) ([][][]T, error) {
	shape, err := DeduceShape(len(flat), []int{d0, d1, d2})
	if err != nil {
		return nil, err
	}
	rows := chunk(flat, shape[0]*shape[1], shape[2])
	out := make([][][]T, shape[0])
	for i := range out {
		out[i] = rows[i*shape[1] : (i+1)*shape[1] : (i+1)*shape[1]]
	}
	return out, nil
}

func chunk[T any](flat []T, rows, size int) [][]T {
	out := make([][]T, rows)
	for i := range out {
		// cap the capacity so appending to a row cannot overwrite the next one
		out[i] = flat[i*size : (i+1)*size : (i+1)*size]
	}
	return out
}

// Uniform returns a generator of values uniformly distributed in [lo, hi)
func Uniform[T Number](r *rand.Rand, lo, hi T) func() T {
	return func() T {
		return lo + T(r.Float64()*float64(hi-lo))
	}
}

// RandomFill overwrites v with generated values. When ndims is less than one
// a single generated value fills the whole slice.
func RandomFill[T any](v []T, ndims int, gen func() T) {
	if ndims < 1 {
		fill(v, gen())
		return
	}
	for i := range v {
		v[i] = gen()
	}
}

// RandomFill2 fills v using the generator for the first ndims dimensions;
// deeper dimensions repeat the last generated value.
func RandomFill2[T any](v [][]T, ndims int, gen func() T) {
	if ndims < 1 {
		val := gen()
		for _, row := range v {
			fill(row, val)
		}
		return
	}
	for _, row := range v {
		RandomFill(row, ndims-1, gen)
	}
}

// RandomFill3 is RandomFill2 for three dimensions
func RandomFill3[T any](v [][][]T, ndims int, gen func() T) {
	if ndims < 1 {
		val := gen()
		for _, sub := range v {
			for _, row := range sub {
				fill(row, val)
			}
		}
		return
	}
	for _, sub := range v {
		RandomFill2(sub, ndims-1, gen)
	}
}

func fill[T any](v []T, val T) {
	for i := range v {
		v[i] = val
	}
}

// SameSize reports whether all the given values have equal length.
// No arguments count as the same size.
func SameSize(vs ...Sized) bool {
	for i := 1; i < len(vs); i++ {
		if vs[i].Len() != vs[0].Len() {
			return false
		}
	}
	return true
}
