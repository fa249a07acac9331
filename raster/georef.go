package raster

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol/model"
)

// OutputEPSG is the coordinate reference system stamped on written rasters.
const OutputEPSG = 4326

// wgs84WKT is the .prj body for EPSG:4326.
const wgs84WKT = `GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563,AUTHORITY["EPSG","7030"]],AUTHORITY["EPSG","6326"]],PRIMEM["Greenwich",0,AUTHORITY["EPSG","8901"]],UNIT["degree",0.0174532925199433,AUTHORITY["EPSG","9122"]],AXIS["Latitude",NORTH],AXIS["Longitude",EAST],AUTHORITY["EPSG","4326"]]`

var epsgAuthority = regexp.MustCompile(`AUTHORITY\["EPSG","(\d+)"\]\]\s*$`)

// Georef is the affine geotransform of a raster in GDAL order plus its EPSG
// code (0 when unknown). It is carried from input to output unchanged.
type Georef struct {
	OriginX     float64
	PixelWidth  float64
	RotationX   float64
	OriginY     float64
	RotationY   float64
	PixelHeight float64
	EPSG        int
}

// IdentityGeoref maps pixel (col, row) to (x, y) = (col, row).
func IdentityGeoref() Georef {
	return Georef{PixelWidth: 1, PixelHeight: 1}
}

// GeoTransform returns the six coefficients in GDAL order.
func (g Georef) GeoTransform() [6]float64 {
	return [6]float64{g.OriginX, g.PixelWidth, g.RotationX, g.OriginY, g.RotationY, g.PixelHeight}
}

// worldFilePath returns the conventional world file sidecar for a raster:
// first and last letters of the extension plus "w" (.tif -> .tfw).
func worldFilePath(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	if len(ext) < 3 {
		return base + ".wld"
	}
	return base + "." + ext[1:2] + ext[len(ext)-1:] + "w"
}

func prjPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".prj"
}

// parseWorldFile reads the six ESRI world file lines (A, D, B, E, C, F). The
// world file anchors on the centre of the top-left pixel, the geotransform on
// its corner.
func parseWorldFile(data []byte) (Georef, error) {
	fields := strings.Fields(string(data))
	if len(fields) != 6 {
		return Georef{}, errors.Wrapf(model.ErrInput, "[parseWorldFile] want 6 values, got %d", len(fields))
	}

	var v [6]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Georef{}, model.WrapKind(model.ErrInput, err, "[parseWorldFile] line %d", i+1)
		}
		v[i] = n
	}

	a, d, b, e, c, f := v[0], v[1], v[2], v[3], v[4], v[5]
	return Georef{
		OriginX:     c - a/2 - b/2,
		PixelWidth:  a,
		RotationX:   b,
		OriginY:     f - d/2 - e/2,
		RotationY:   d,
		PixelHeight: e,
	}, nil
}

func formatWorldFile(g Georef) []byte {
	gt := g.GeoTransform()
	c := gt[0] + gt[1]/2 + gt[2]/2
	f := gt[3] + gt[4]/2 + gt[5]/2

	var sb strings.Builder
	for _, v := range []float64{gt[1], gt[4], gt[2], gt[5], c, f} {
		sb.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}

// parseEPSG returns the top-level EPSG authority code of a WKT string, or 0.
func parseEPSG(wkt string) int {
	m := epsgAuthority.FindStringSubmatch(wkt)
	if m == nil {
		return 0
	}
	code, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return code
}
