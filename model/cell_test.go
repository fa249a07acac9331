package model

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellFromValue(t *testing.T) {
	t.Parallel()

	c, err := CellFromValue(0, false)
	require.NoError(t, err)
	assert.Equal(t, Dead, c)

	c, err = CellFromValue(1, false)
	require.NoError(t, err)
	assert.Equal(t, Alive, c)

	_, err = CellFromValue(255, false)
	assert.True(t, errors.Is(err, ErrInput))

	c, err = CellFromValue(255, true)
	require.NoError(t, err)
	assert.Equal(t, Alive, c)

	c, err = CellFromValue(-3, true)
	require.NoError(t, err)
	assert.Equal(t, Alive, c)
}

func TestCellFromBool(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Alive, CellFromBool(true))
	assert.Equal(t, Dead, CellFromBool(false))
	assert.True(t, Alive.IsAlive())
	assert.False(t, Dead.IsAlive())
}
