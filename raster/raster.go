// Package raster reads the initial generation from a single-band raster and
// writes the final generation back with the input's georeferencing.
//
// 8 and 16-bit pixels are decoded with golang.org/x/image/tiff (or
// image/png); 32-bit integer TIFFs and the GeoTIFF tags go through
// github.com/google/tiff. Output is an Int32 GeoTIFF with world file and
// .prj sidecars alongside.
package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/tiff"

	"github.com/sheikhrachel/go-gol/fsutil"
	"github.com/sheikhrachel/go-gol/model"
	"github.com/sheikhrachel/go-gol/monitoring"
)

// Adapter reads and writes rasters through a FileSystem.
type Adapter struct {
	fs     fsutil.FileSystem
	coerce bool
}

// NewAdapter returns an adapter on fs. With coerce set, any non-zero pixel is
// read as alive; otherwise pixels outside {0, 1} fail with model.ErrInput.
func NewAdapter(fs fsutil.FileSystem, coerce bool) *Adapter {
	if fs == nil {
		fs = fsutil.OSFileSystem{}
	}
	return &Adapter{fs: fs, coerce: coerce}
}

// Read decodes the first band of the raster at path into a grid and returns
// its georeferencing. GeoTIFF tags win over a world file; with neither the
// identity transform is returned and a warning logged.
func (a *Adapter) Read(path string) (*model.Grid, Georef, error) {
	data, err := a.fs.ReadFile(path)
	if err != nil {
		return nil, Georef{}, model.WrapKind(model.ErrInput, err, "[Adapter.Read] failed to read raster: %+v", path)
	}

	var dir *directory
	if isTIFF(data) {
		if dir, err = parseDirectory(data); err != nil {
			return nil, Georef{}, model.WrapKind(model.ErrInput, err, "[Adapter.Read] failed to decode raster: %+v", path)
		}
	}

	var grid *model.Grid
	if dir != nil && dir.isInt32() {
		grid, err = a.readInt32(dir, data)
	} else {
		grid, err = a.readImage(path, data)
	}
	if err != nil {
		return nil, Georef{}, errors.Wrapf(err, "[Adapter.Read] %+v", path)
	}

	georef, err := a.readGeoref(path, dir)
	if err != nil {
		return nil, Georef{}, errors.Wrapf(err, "[Adapter.Read] %+v", path)
	}
	return grid, georef, nil
}

// Write encodes grid as a single-band Int32 GeoTIFF holding 0/1 values, tagged
// with georef and OutputEPSG, and writes the world file and .prj sidecars next
// to it.
func (a *Adapter) Write(path string, grid *model.Grid, georef Georef) error {
	if err := grid.Validate(); err != nil {
		return errors.Wrapf(err, "[Adapter.Write] refusing to write %+v", path)
	}

	data, err := encodeGeoTIFF(grid, georef)
	if err != nil {
		return model.WrapKind(model.ErrOutput, err, "[Adapter.Write] failed to encode raster: %+v", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := a.fs.MkdirAll(dir, 0o755); err != nil {
			return model.WrapKind(model.ErrOutput, err, "[Adapter.Write] failed to create directory: %+v", dir)
		}
	}

	files := []struct {
		name string
		data []byte
	}{
		{path, data},
		{worldFilePath(path), formatWorldFile(georef)},
		{prjPath(path), []byte(wgs84WKT)},
	}
	for _, f := range files {
		if err := a.fs.WriteFile(f.name, f.data, 0o644); err != nil {
			return model.WrapKind(model.ErrOutput, err, "[Adapter.Write] failed to write file: %+v", f.name)
		}
	}
	return nil
}

func decode(path string, data []byte) (image.Image, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return png.Decode(bytes.NewReader(data))
	case ".tif", ".tiff":
		return tiff.Decode(bytes.NewReader(data))
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// pixelValue returns the raw first-band sample at (x, y).
func pixelValue(img image.Image, x, y int) int64 {
	switch im := img.(type) {
	case *image.Gray:
		return int64(im.GrayAt(x, y).Y)
	case *image.Gray16:
		return int64(im.Gray16At(x, y).Y)
	case *image.Paletted:
		return int64(im.ColorIndexAt(x, y))
	}
	return int64(color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y)
}

func (a *Adapter) readImage(path string, data []byte) (*model.Grid, error) {
	img, err := decode(path, data)
	if err != nil {
		return nil, model.WrapKind(model.ErrInput, err, "[Adapter.readImage] failed to decode raster")
	}
	b := img.Bounds()
	return a.toGrid(b.Dy(), b.Dx(), func(r, c int) int64 {
		return pixelValue(img, b.Min.X+c, b.Min.Y+r)
	})
}

func (a *Adapter) readInt32(dir *directory, data []byte) (*model.Grid, error) {
	width, height, samples, err := dir.int32Samples(data)
	if err != nil {
		return nil, model.WrapKind(model.ErrInput, err, "[Adapter.readInt32] failed to decode raster")
	}
	return a.toGrid(height, width, func(r, c int) int64 { return samples[r*width+c] })
}

// toGrid converts rows x cols raw samples into cells.
func (a *Adapter) toGrid(rows, cols int, sample func(r, c int) int64) (*model.Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errors.Wrap(model.ErrInput, "[Adapter.toGrid] raster has no pixels")
	}

	cells := make([][]model.Cell, rows)
	for r := range rows {
		cells[r] = make([]model.Cell, cols)
		for c := range cols {
			cell, err := model.CellFromValue(sample(r, c), a.coerce)
			if err != nil {
				return nil, errors.Wrapf(err, "[Adapter.toGrid] pixel (%d,%d)", r, c)
			}
			cells[r][c] = cell
		}
	}
	return model.NewGridFromRows(cells)
}

// readGeoref looks for the geotransform in the GeoTIFF tags, then in a world
// file. The .prj sidecar only fills in a CRS the tags did not name.
func (a *Adapter) readGeoref(path string, dir *directory) (Georef, error) {
	georef, found := Georef{}, false
	if dir != nil {
		georef, found = dir.georef()
	}

	for _, wf := range []string{worldFilePath(path), strings.TrimSuffix(path, filepath.Ext(path)) + ".wld"} {
		if found {
			break
		}
		if !a.fs.Exists(wf) {
			continue
		}
		data, err := a.fs.ReadFile(wf)
		if err != nil {
			return Georef{}, model.WrapKind(model.ErrInput, err, "[Adapter.readGeoref] failed to read world file: %+v", wf)
		}
		if georef, err = parseWorldFile(data); err != nil {
			return Georef{}, errors.Wrapf(err, "[Adapter.readGeoref] %+v", wf)
		}
		found = true
	}

	if !found {
		monitoring.Warnf("no georeferencing for %s, using identity transform", path)
		georef = IdentityGeoref()
	}

	if prj := prjPath(path); georef.EPSG == 0 && a.fs.Exists(prj) {
		data, err := a.fs.ReadFile(prj)
		if err != nil {
			return Georef{}, model.WrapKind(model.ErrInput, err, "[Adapter.readGeoref] failed to read projection: %+v", prj)
		}
		georef.EPSG = parseEPSG(string(data))
	}
	return georef, nil
}
