package model

import (
	"io/fs"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestWrapKind(t *testing.T) {
	t.Parallel()

	err := WrapKind(ErrOutput, fs.ErrPermission, "[write] %s", "out.tif")
	assert.True(t, errors.Is(err, ErrOutput))
	assert.True(t, errors.Is(err, fs.ErrPermission))
	assert.False(t, errors.Is(err, ErrInput))
	assert.Contains(t, err.Error(), "out.tif")
}
