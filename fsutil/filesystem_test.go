package fsutil

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFileSystem(t *testing.T) {
	t.Parallel()

	m := NewMemoryFileSystem()
	require.NoError(t, m.MkdirAll("out/rasters", 0o755))
	assert.True(t, m.Exists("out"))
	assert.True(t, m.Exists("out/rasters"))

	data := []byte("P5")
	require.NoError(t, m.WriteFile("out/rasters/../rasters/a.tif", data, 0o644))
	data[0] = 'X'

	got, err := m.ReadFile("out/rasters/a.tif")
	require.NoError(t, err)
	assert.Equal(t, []byte("P5"), got)

	_, err = m.ReadFile("missing.tif")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	m.SetReadOnly(true)
	assert.True(t, errors.Is(m.WriteFile("b.tif", nil, 0o644), fs.ErrPermission))
	assert.True(t, errors.Is(m.MkdirAll("other", 0o755), fs.ErrPermission))
}

func TestOSFileSystem(t *testing.T) {
	t.Parallel()

	var osfs OSFileSystem
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	require.NoError(t, osfs.MkdirAll(dir, 0o755))

	path := filepath.Join(dir, "state.tfw")
	assert.False(t, osfs.Exists(path))
	require.NoError(t, osfs.WriteFile(path, []byte("1.0\n"), 0o644))
	assert.True(t, osfs.Exists(path))

	got, err := osfs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1.0\n", string(got))
}
