package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikhrachel/go-gol/fsutil"
	"github.com/sheikhrachel/go-gol/model"
	"github.com/sheikhrachel/go-gol/monitoring"
	"github.com/sheikhrachel/go-gol/raster"
)

func muteLogs(t *testing.T) {
	t.Helper()
	original := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.Logf = original })
}

func blinker(t *testing.T) *model.Grid {
	t.Helper()
	g := model.NewGrid(5, 5)
	g.Set(2, 1, model.Alive)
	g.Set(2, 2, model.Alive)
	g.Set(2, 3, model.Alive)
	return g
}

func TestRunEndToEnd(t *testing.T) {
	muteLogs(t)

	mem := fsutil.NewMemoryFileSystem()
	adapter := raster.NewAdapter(mem, false)
	georef := raster.Georef{OriginX: -1.5, PixelWidth: 0.1, OriginY: 51.5, PixelHeight: -0.1}
	require.NoError(t, adapter.Write("input/start_state.tif", blinker(t), georef))

	o := newOptions()
	o.fs = mem
	o.Input = "input/start_state.tif"
	o.Output = "output/end_state.tif"
	o.Cycles = 1

	require.NoError(t, runWithFlags(context.Background(), o, map[string]bool{"cycles": true}))

	got, gotGeoref, err := adapter.Read("output/end_state.tif")
	require.NoError(t, err)
	assert.Equal(t, model.Alive, got.Get(1, 2))
	assert.Equal(t, model.Alive, got.Get(3, 2))
	assert.Equal(t, model.Dead, got.Get(2, 1))
	assert.InDelta(t, georef.OriginX, gotGeoref.OriginX, 1e-9)
	assert.InDelta(t, georef.OriginY, gotGeoref.OriginY, 1e-9)
	assert.Equal(t, raster.OutputEPSG, gotGeoref.EPSG)
}

func TestRunErrors(t *testing.T) {
	muteLogs(t)

	t.Run("missing paths", func(t *testing.T) {
		err := runWithFlags(context.Background(), newOptions(), nil)
		assert.True(t, errors.Is(err, model.ErrConfig))
	})

	t.Run("unreadable input", func(t *testing.T) {
		o := newOptions()
		o.fs = fsutil.NewMemoryFileSystem()
		o.Input, o.Output = "nope.tif", "out.tif"
		err := runWithFlags(context.Background(), o, nil)
		assert.True(t, errors.Is(err, model.ErrInput))
	})

	t.Run("zero cycles", func(t *testing.T) {
		o := newOptions()
		o.Input, o.Output, o.Cycles = "a.tif", "b.tif", 0
		err := runWithFlags(context.Background(), o, map[string]bool{"cycles": true})
		assert.True(t, errors.Is(err, model.ErrConfig))
	})

	t.Run("unwritable output", func(t *testing.T) {
		mem := fsutil.NewMemoryFileSystem()
		require.NoError(t, raster.NewAdapter(mem, false).Write("in.tif", blinker(t), raster.IdentityGeoref()))
		mem.SetReadOnly(true)

		o := newOptions()
		o.fs = mem
		o.Input, o.Output = "in.tif", "out.tif"
		err := runWithFlags(context.Background(), o, nil)
		assert.True(t, errors.Is(err, model.ErrOutput))
	})
}

func TestLoadRunConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"cycles": 9, "progress": true, "use_parallel": false}`), 0o644))

	o := newOptions()
	o.ConfigFile = path

	config, err := loadRunConfig(o, nil)
	require.NoError(t, err)
	assert.Equal(t, 9, config.Cycles, "config file wins over flag defaults")
	assert.False(t, config.UseParallel)

	o.Cycles, o.Quiet, o.Coerce = 3, true, true
	config, err = loadRunConfig(o, map[string]bool{"cycles": true, "quiet": true, "coerce": true})
	require.NoError(t, err)
	assert.Equal(t, 3, config.Cycles)
	assert.False(t, config.Progress)
	assert.True(t, config.CoerceNonBinary)
}
