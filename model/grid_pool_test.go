package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGridPool(t *testing.T) {
	t.Parallel()

	pool := NewGridPool()

	g := pool.Get(4, 5)
	assert.Equal(t, 4, g.Rows())
	assert.Equal(t, 5, g.Cols())
	g.Set(3, 4, Alive)
	GridToPool(g, pool)

	// whatever comes back must be fully dead at the requested size
	g = pool.Get(2, 2)
	assert.Equal(t, 2, g.Rows())
	assert.Equal(t, 2, g.Cols())
	assert.Equal(t, 0, g.CountLivingCells())

	// nil pool is a no-op
	GridToPool(g, nil)
}
