package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGridFromRows(t *testing.T) {
	t.Parallel()

	t.Run("copies input rows", func(t *testing.T) {
		data := [][]Cell{
			{0, 1, 0},
			{1, 1, 0},
		}
		g, err := NewGridFromRows(data)
		require.NoError(t, err)
		assert.Equal(t, 2, g.Rows())
		assert.Equal(t, 3, g.Cols())

		data[0][0] = Alive
		assert.Equal(t, Dead, g.Get(0, 0))
		if diff := cmp.Diff([][]Cell{{0, 1, 0}, {1, 1, 0}}, g.ToRows()); diff != "" {
			t.Errorf("ToRows mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("rejects ragged rows", func(t *testing.T) {
		_, err := NewGridFromRows([][]Cell{{0, 1}, {0}})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInput))
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := NewGridFromRows(nil)
		assert.True(t, errors.Is(err, ErrInput))
	})

	t.Run("rejects non-binary cells", func(t *testing.T) {
		_, err := NewGridFromRows([][]Cell{{0, 2}})
		assert.True(t, errors.Is(err, ErrInput))
	})
}

func TestGridGetSet(t *testing.T) {
	t.Parallel()

	g := NewGrid(3, 4)
	g.Set(2, 3, Alive)
	g.Set(5, 5, Alive)
	g.Set(-1, 0, Alive)

	assert.Equal(t, Alive, g.Get(2, 3))
	assert.Equal(t, Dead, g.Get(-1, 0))
	assert.Equal(t, Dead, g.Get(3, 0))
	assert.Equal(t, 1, g.CountLivingCells())
}

func TestGridCloneIsDeep(t *testing.T) {
	t.Parallel()

	g := NewGrid(2, 2)
	g.Set(0, 0, Alive)

	clone := g.Clone()
	require.True(t, clone.Equal(g))

	clone.Set(1, 1, Alive)
	assert.Equal(t, Dead, g.Get(1, 1))
	assert.False(t, clone.Equal(g))
}

func TestGridEqual(t *testing.T) {
	t.Parallel()

	a := NewGrid(2, 3)
	b := NewGrid(3, 2)
	assert.False(t, a.Equal(b), "different shapes must not compare equal")
	assert.True(t, a.Equal(NewGrid(2, 3)))
}

func TestGridValidate(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.Is(NewGrid(0, 3).Validate(), ErrInput))

	g := NewGrid(2, 2)
	assert.NoError(t, g.Validate())

	g.cells[3] = 7
	assert.True(t, errors.Is(g.Validate(), ErrInput))
}

func TestGetGridHash(t *testing.T) {
	t.Parallel()

	a := NewGrid(2, 2)
	b := NewGrid(2, 2)
	assert.Equal(t, a.GetGridHash(), b.GetGridHash())

	b.Set(0, 1, Alive)
	assert.NotEqual(t, a.GetGridHash(), b.GetGridHash())

	// same cell count, different shape
	assert.NotEqual(t, NewGrid(1, 4).GetGridHash(), NewGrid(4, 1).GetGridHash())
}
