// Package lazy provides a read-only, pull-or-push range over a sequence of
// values. A Range may be finite or infinite; nothing is evaluated until it
// is iterated.
package lazy

import "iter"

// Range is a lazily evaluated sequence of values.
type Range[T any] struct {
	seq iter.Seq[T]
}

// Empty returns a range yielding nothing.
func Empty[T any]() Range[T] {
	return Range[T]{seq: func(func(T) bool) {}}
}

// Of returns a range over a private copy of values.
func Of[T any](values []T) Range[T] {
	owned := make([]T, len(values))
	copy(owned, values)
	return Shared(owned)
}

// Shared returns a range over values without copying them. Changes to the
// slice made before iteration are observed.
func Shared[T any](values []T) Range[T] {
	return Range[T]{seq: func(yield func(T) bool) {
		for _, v := range values {
			if !yield(v) {
				return
			}
		}
	}}
}

// FromSeq wraps an iterator.
func FromSeq[T any](seq iter.Seq[T]) Range[T] {
	if seq == nil {
		return Empty[T]()
	}
	return Range[T]{seq: seq}
}

// Generate returns an infinite range yielding f(0), f(1), ...
func Generate[T any](f func(i int) T) Range[T] {
	return Range[T]{seq: func(yield func(T) bool) {
		for i := 0; ; i++ {
			if !yield(f(i)) {
				return
			}
		}
	}}
}

// All returns the range as a standard iterator for use with range-over-func.
func (r Range[T]) All() iter.Seq[T] {
	if r.seq == nil {
		return Empty[T]().seq
	}
	return r.seq
}

// Take limits the range to its first n values.
func (r Range[T]) Take(n int) Range[T] {
	seq := r.All()
	return Range[T]{seq: func(yield func(T) bool) {
		if n <= 0 {
			return
		}
		taken := 0
		for v := range seq {
			if !yield(v) {
				return
			}
			taken++
			if taken == n {
				return
			}
		}
	}}
}

// Collect materializes the range. It does not return for an infinite range.
func (r Range[T]) Collect() []T {
	var out []T
	for v := range r.All() {
		out = append(out, v)
	}
	return out
}

// Iterator returns a pull iterator positioned before the first value.
func (r Range[T]) Iterator() *Iterator[T] {
	next, stop := iter.Pull(r.All())
	return &Iterator[T]{next: next, stop: stop}
}

// Iterator pulls values one at a time. Stop must be called when the caller
// abandons the iterator before exhaustion.
type Iterator[T any] struct {
	next func() (T, bool)
	stop func()
	done bool
}

// Next returns the next value; ok is false once the range is exhausted.
func (it *Iterator[T]) Next() (T, bool) {
	if it.done {
		var zero T
		return zero, false
	}
	v, ok := it.next()
	if !ok {
		it.done = true
		it.stop()
	}
	return v, ok
}

// Stop releases the iterator. Further calls to Next report exhaustion.
func (it *Iterator[T]) Stop() {
	if !it.done {
		it.done = true
		it.stop()
	}
}

// Map returns a range applying f to every value.
func Map[T, U any](r Range[T], f func(T) U) Range[U] {
	seq := r.All()
	return Range[U]{seq: func(yield func(U) bool) {
		for v := range seq {
			if !yield(f(v)) {
				return
			}
		}
	}}
}

// Filter returns a range of the values for which keep is true.
func Filter[T any](r Range[T], keep func(T) bool) Range[T] {
	seq := r.All()
	return Range[T]{seq: func(yield func(T) bool) {
		for v := range seq {
			if keep(v) && !yield(v) {
				return
			}
		}
	}}
}
