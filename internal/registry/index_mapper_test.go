package registry

import (
	"testing"
	"testing/quick"

	dferrors "github.com/paveg/colframe/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexMapperBasics(t *testing.T) {
	m, err := New("Id", "A", "B")
	require.NoError(t, err)

	assert.Equal(t, 3, m.Len())
	assert.True(t, m.Contains("A"))
	assert.False(t, m.Contains("C"))

	idx, err := m.IndexOf("B")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	name, err := m.At(1)
	require.NoError(t, err)
	assert.Equal(t, "A", name)

	idxs, err := m.IndexesOf([]string{"B", "Id"})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0}, idxs)
}

func TestIndexMapperErrors(t *testing.T) {
	m, err := New("a")
	require.NoError(t, err)

	_, err = m.IndexOf("zz")
	require.ErrorIs(t, err, dferrors.ErrUnknownColumn)

	_, err = m.IndexesOf([]string{"a", "zz"})
	require.ErrorIs(t, err, dferrors.ErrUnknownColumn)

	_, err = m.At(1)
	require.ErrorIs(t, err, dferrors.ErrOutOfRange)

	_, err = m.Insert("a")
	require.ErrorIs(t, err, dferrors.ErrDuplicateColumn)

	_, err = m.Remove(-1)
	require.ErrorIs(t, err, dferrors.ErrOutOfRange)

	_, err = New("x", "x")
	require.ErrorIs(t, err, dferrors.ErrDuplicateColumn)
}

func TestIndexMapperRemoveRedensifies(t *testing.T) {
	m, err := New("a", "b", "c", "d")
	require.NoError(t, err)

	removed, err := m.Remove(1)
	require.NoError(t, err)
	assert.Equal(t, "b", removed)
	assert.Equal(t, []string{"a", "c", "d"}, m.Values())

	for i, v := range m.Values() {
		idx, err := m.IndexOf(v)
		require.NoError(t, err)
		assert.Equal(t, i, idx)
	}
	assert.False(t, m.Contains("b"))
}

func TestIndexMapperRename(t *testing.T) {
	m, err := New("a", "b")
	require.NoError(t, err)

	require.NoError(t, m.Rename(0, "z"))
	assert.Equal(t, []string{"z", "b"}, m.Values())
	assert.False(t, m.Contains("a"))

	require.NoError(t, m.Rename(0, "z"))
	require.ErrorIs(t, m.Rename(0, "b"), dferrors.ErrDuplicateColumn)
	require.ErrorIs(t, m.Rename(5, "q"), dferrors.ErrOutOfRange)
}

func TestIndexMapperClone(t *testing.T) {
	m, err := New(1, 2, 3)
	require.NoError(t, err)

	c := m.Clone()
	_, err = c.Remove(0)
	require.NoError(t, err)

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, []int{2, 3}, c.Values())
}

// Property: after any sequence of removals, IndexOf(At(i)) == i for all i.
func TestIndexMapperRoundTripProperty(t *testing.T) {
	property := func(values []uint8, removals []uint8) bool {
		m, err := New[uint8]()
		if err != nil {
			return false
		}
		for _, v := range values {
			if !m.Contains(v) {
				if _, err := m.Insert(v); err != nil {
					return false
				}
			}
		}
		for _, r := range removals {
			if m.Len() == 0 {
				break
			}
			if _, err := m.Remove(int(r) % m.Len()); err != nil {
				return false
			}
		}
		for i := 0; i < m.Len(); i++ {
			v, err := m.At(i)
			if err != nil {
				return false
			}
			idx, err := m.IndexOf(v)
			if err != nil || idx != i {
				return false
			}
		}
		return len(m.indexes) == m.Len()
	}

	require.NoError(t, quick.Check(property, &quick.Config{MaxCount: 200}))
}
