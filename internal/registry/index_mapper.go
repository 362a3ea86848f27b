// Package registry maps unique values to dense positional indices and back.
package registry

import (
	"fmt"

	dferrors "github.com/paveg/colframe/internal/errors"
)

// IndexMapper is a bidirectional map between unique values and the dense
// indices [0, Len()). Removing a value shifts every higher index down by one.
type IndexMapper[T comparable] struct {
	values  []T
	indexes map[T]int
}

// New creates a mapper holding values in order. Duplicate values are rejected.
func New[T comparable](values ...T) (*IndexMapper[T], error) {
	m := &IndexMapper[T]{
		values:  make([]T, 0, len(values)),
		indexes: make(map[T]int, len(values)),
	}
	for _, v := range values {
		if _, err := m.Insert(v); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Len returns the number of mapped values
func (m *IndexMapper[T]) Len() int {
	return len(m.values)
}

// Contains reports whether value is mapped
func (m *IndexMapper[T]) Contains(value T) bool {
	_, ok := m.indexes[value]
	return ok
}

// IndexOf returns the index of value
func (m *IndexMapper[T]) IndexOf(value T) (int, error) {
	idx, ok := m.indexes[value]
	if !ok {
		return -1, dferrors.NewColumnNotFoundError("IndexOf", fmt.Sprint(value))
	}
	return idx, nil
}

// IndexesOf maps several values, preserving their order
func (m *IndexMapper[T]) IndexesOf(values []T) ([]int, error) {
	out := make([]int, 0, len(values))
	for _, v := range values {
		idx, err := m.IndexOf(v)
		if err != nil {
			return nil, err
		}
		out = append(out, idx)
	}
	return out, nil
}

// At returns the value stored at index
func (m *IndexMapper[T]) At(index int) (T, error) {
	if index < 0 || index >= len(m.values) {
		var zero T
		return zero, dferrors.NewOutOfRangeError("At", index, len(m.values))
	}
	return m.values[index], nil
}

// Insert appends value and returns its index
func (m *IndexMapper[T]) Insert(value T) (int, error) {
	if _, ok := m.indexes[value]; ok {
		return -1, dferrors.NewDuplicateColumnError("Insert", fmt.Sprint(value))
	}
	m.values = append(m.values, value)
	idx := len(m.values) - 1
	m.indexes[value] = idx
	return idx, nil
}

// Remove deletes the value at index and re-densifies the indices above it
func (m *IndexMapper[T]) Remove(index int) (T, error) {
	var zero T
	if index < 0 || index >= len(m.values) {
		return zero, dferrors.NewOutOfRangeError("Remove", index, len(m.values))
	}
	removed := m.values[index]
	delete(m.indexes, removed)
	copy(m.values[index:], m.values[index+1:])
	m.values[len(m.values)-1] = zero
	m.values = m.values[:len(m.values)-1]
	for i := index; i < len(m.values); i++ {
		m.indexes[m.values[i]] = i
	}
	return removed, nil
}

// Rename replaces the value at index keeping its position
func (m *IndexMapper[T]) Rename(index int, value T) error {
	if index < 0 || index >= len(m.values) {
		return dferrors.NewOutOfRangeError("Rename", index, len(m.values))
	}
	old := m.values[index]
	if old == value {
		return nil
	}
	if _, ok := m.indexes[value]; ok {
		return dferrors.NewDuplicateColumnError("Rename", fmt.Sprint(value))
	}
	delete(m.indexes, old)
	m.values[index] = value
	m.indexes[value] = index
	return nil
}

// Values returns a copy of the mapped values in index order
func (m *IndexMapper[T]) Values() []T {
	out := make([]T, len(m.values))
	copy(out, m.values)
	return out
}

// Clone returns an independent copy of the mapper
func (m *IndexMapper[T]) Clone() *IndexMapper[T] {
	c := &IndexMapper[T]{
		values:  m.Values(),
		indexes: make(map[T]int, len(m.indexes)),
	}
	for k, v := range m.indexes {
		c.indexes[k] = v
	}
	return c
}
