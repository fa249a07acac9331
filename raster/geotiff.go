package raster

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"
	"math"
	"sort"

	"github.com/google/tiff"
	_ "github.com/google/tiff/geotiff" // GeoTIFF tag names
	"github.com/pkg/errors"
	"golang.org/x/image/tiff/lzw"

	"github.com/sheikhrachel/go-gol/model"
)

// Baseline and GeoTIFF tag IDs.
const (
	tagImageWidth      uint16 = 256
	tagImageLength     uint16 = 257
	tagBitsPerSample   uint16 = 258
	tagCompression     uint16 = 259
	tagPhotometric     uint16 = 262
	tagStripOffsets    uint16 = 273
	tagSamplesPerPixel uint16 = 277
	tagRowsPerStrip    uint16 = 278
	tagStripByteCounts uint16 = 279
	tagPlanarConfig    uint16 = 284
	tagPredictor       uint16 = 317
	tagTileWidth       uint16 = 322
	tagSampleFormat    uint16 = 339

	tagModelPixelScale     uint16 = 33550
	tagModelTiepoint       uint16 = 33922
	tagModelTransformation uint16 = 34264
	tagGeoKeyDirectory     uint16 = 34735
)

const (
	typeShort  uint16 = 3
	typeLong   uint16 = 4
	typeDouble uint16 = 12

	compressionNone       = 1
	compressionLZW        = 5
	compressionDeflate    = 8
	compressionDeflateOld = 32946

	predictorHorizontal = 2

	sampleFormatUint = 1
	sampleFormatInt  = 2

	geoKeyModelType      = 1024
	geoKeyRasterType     = 1025
	geoKeyGeographicType = 2048
	geoKeyProjectedType  = 3072
	geoKeyUserDefined    = 32767
)

func isTIFF(data []byte) bool {
	return bytes.HasPrefix(data, []byte(tiff.MagicLitEndian)) || bytes.HasPrefix(data, []byte(tiff.MagicBigEndian))
}

// directory is the first IFD of a TIFF file.
type directory struct {
	ifd   tiff.IFD
	order binary.ByteOrder
}

func parseDirectory(data []byte) (*directory, error) {
	t, err := tiff.Parse(bytes.NewReader(data), nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[parseDirectory] failed to parse tiff")
	}
	ifds := t.IFDs()
	if len(ifds) == 0 {
		return nil, errors.New("[parseDirectory] tiff has no image directory")
	}

	var order binary.ByteOrder = binary.LittleEndian
	if t.Order() == "MM" {
		order = binary.BigEndian
	}
	return &directory{ifd: ifds[0], order: order}, nil
}

// uints returns the values of an integer field, nil when absent.
func (d *directory) uints(tag uint16) []uint64 {
	f := d.ifd.GetField(tag)
	if f == nil {
		return nil
	}
	v := f.Value()
	raw, order, n := v.Bytes(), v.Order(), int(f.Count())

	out := make([]uint64, 0, n)
	for i := range n {
		switch f.Type().ID() {
		case 1:
			if i < len(raw) {
				out = append(out, uint64(raw[i]))
			}
		case typeShort:
			if 2*i+2 <= len(raw) {
				out = append(out, uint64(order.Uint16(raw[2*i:])))
			}
		case typeLong:
			if 4*i+4 <= len(raw) {
				out = append(out, uint64(order.Uint32(raw[4*i:])))
			}
		}
	}
	return out
}

func (d *directory) value(tag uint16, def uint64) uint64 {
	if v := d.uints(tag); len(v) > 0 {
		return v[0]
	}
	return def
}

// floats returns the values of a DOUBLE field, nil when absent.
func (d *directory) floats(tag uint16) []float64 {
	f := d.ifd.GetField(tag)
	if f == nil || f.Type().ID() != typeDouble {
		return nil
	}
	v := f.Value()
	raw, order := v.Bytes(), v.Order()

	out := make([]float64, 0, f.Count())
	for i := 0; 8*i+8 <= len(raw) && i < int(f.Count()); i++ {
		out = append(out, math.Float64frombits(order.Uint64(raw[8*i:])))
	}
	return out
}

// isInt32 reports a single-band 32-bit integer raster, which x/image/tiff
// cannot decode.
func (d *directory) isInt32() bool {
	format := d.value(tagSampleFormat, sampleFormatUint)
	return d.value(tagBitsPerSample, 1) == 32 &&
		d.value(tagSamplesPerPixel, 1) == 1 &&
		(format == sampleFormatUint || format == sampleFormatInt)
}

// georef reads ModelTransformation, or ModelPixelScale with ModelTiepoint.
func (d *directory) georef() (Georef, bool) {
	if m := d.floats(tagModelTransformation); len(m) >= 8 {
		return Georef{
			OriginX:     m[3],
			PixelWidth:  m[0],
			RotationX:   m[1],
			OriginY:     m[7],
			RotationY:   m[4],
			PixelHeight: m[5],
			EPSG:        d.epsg(),
		}, true
	}

	scale, tie := d.floats(tagModelPixelScale), d.floats(tagModelTiepoint)
	if len(scale) < 2 || len(tie) < 6 {
		return Georef{}, false
	}
	// tiepoint (I, J, K) -> (X, Y, Z); raster rows grow southwards
	return Georef{
		OriginX:     tie[3] - tie[0]*scale[0],
		PixelWidth:  scale[0],
		OriginY:     tie[4] + tie[1]*scale[1],
		PixelHeight: -scale[1],
		EPSG:        d.epsg(),
	}, true
}

// epsg returns the projected or geographic CRS code from the GeoKey
// directory, 0 when missing or user-defined.
func (d *directory) epsg() int {
	keys := d.uints(tagGeoKeyDirectory)
	if len(keys) < 4 {
		return 0
	}

	found := map[uint64]uint64{}
	for i := 4; i+3 < len(keys); i += 4 {
		// only keys stored inline (location 0) carry a code
		if keys[i+1] == 0 {
			found[keys[i]] = keys[i+3]
		}
	}
	for _, key := range []uint64{geoKeyProjectedType, geoKeyGeographicType} {
		if code, ok := found[key]; ok && code != geoKeyUserDefined {
			return int(code)
		}
	}
	return 0
}

// int32Samples decodes the strips of a 32-bit integer raster into row-major
// samples.
func (d *directory) int32Samples(data []byte) (width, height int, samples []int64, err error) {
	width, height = int(d.value(tagImageWidth, 0)), int(d.value(tagImageLength, 0))
	if width <= 0 || height <= 0 {
		return 0, 0, nil, errors.Errorf("[directory.int32Samples] bad dimensions %dx%d", width, height)
	}
	if d.ifd.HasField(tagTileWidth) {
		return 0, 0, nil, errors.New("[directory.int32Samples] tiled rasters are not supported")
	}

	var (
		compression = d.value(tagCompression, compressionNone)
		predictor   = d.value(tagPredictor, 1)
		signed      = d.value(tagSampleFormat, sampleFormatUint) == sampleFormatInt
		rowsPer     = int(d.value(tagRowsPerStrip, uint64(height)))
		offsets     = d.uints(tagStripOffsets)
		counts      = d.uints(tagStripByteCounts)
		rowBytes    = width * 4
	)
	if rowsPer <= 0 || rowsPer > height {
		rowsPer = height
	}
	if len(offsets) == 0 || len(offsets) != len(counts) {
		return 0, 0, nil, errors.Errorf("[directory.int32Samples] %d strip offsets, %d byte counts", len(offsets), len(counts))
	}

	samples = make([]int64, 0, width*height)
	for i, off := range offsets {
		rows := min(rowsPer, height-i*rowsPer)
		if rows <= 0 {
			break
		}
		end := off + counts[i]
		if end > uint64(len(data)) {
			return 0, 0, nil, errors.Errorf("[directory.int32Samples] strip %d runs past end of file", i)
		}

		strip, err := decompress(data[off:end], compression)
		if err != nil {
			return 0, 0, nil, errors.Wrapf(err, "[directory.int32Samples] strip %d", i)
		}
		if len(strip) < rows*rowBytes {
			return 0, 0, nil, errors.Errorf("[directory.int32Samples] strip %d holds %d bytes, want %d", i, len(strip), rows*rowBytes)
		}

		for r := range rows {
			var acc uint32
			for c := range width {
				v := d.order.Uint32(strip[r*rowBytes+4*c:])
				if predictor == predictorHorizontal {
					acc += v
					v = acc
				}
				if signed {
					samples = append(samples, int64(int32(v)))
				} else {
					samples = append(samples, int64(v))
				}
			}
		}
	}

	if len(samples) != width*height {
		return 0, 0, nil, errors.Errorf("[directory.int32Samples] decoded %d samples, want %d", len(samples), width*height)
	}
	return width, height, samples, nil
}

func decompress(raw []byte, compression uint64) ([]byte, error) {
	var r io.ReadCloser
	switch compression {
	case compressionNone:
		return raw, nil
	case compressionLZW:
		r = lzw.NewReader(bytes.NewReader(raw), lzw.MSB, 8)
	case compressionDeflate, compressionDeflateOld:
		zr, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		r = zr
	default:
		return nil, errors.Errorf("unsupported compression %d", compression)
	}
	defer r.Close()
	return io.ReadAll(r)
}

// ifdEntry is one tag to be written; data is already in the file byte order.
type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

func shortEntry(order binary.ByteOrder, tag uint16, vals ...uint16) ifdEntry {
	data := make([]byte, 2*len(vals))
	for i, v := range vals {
		order.PutUint16(data[2*i:], v)
	}
	return ifdEntry{tag: tag, typ: typeShort, count: uint32(len(vals)), data: data}
}

func longEntry(order binary.ByteOrder, tag uint16, vals ...uint32) ifdEntry {
	data := make([]byte, 4*len(vals))
	for i, v := range vals {
		order.PutUint32(data[4*i:], v)
	}
	return ifdEntry{tag: tag, typ: typeLong, count: uint32(len(vals)), data: data}
}

func doubleEntry(order binary.ByteOrder, tag uint16, vals ...float64) ifdEntry {
	data := make([]byte, 8*len(vals))
	for i, v := range vals {
		order.PutUint64(data[8*i:], math.Float64bits(v))
	}
	return ifdEntry{tag: tag, typ: typeDouble, count: uint32(len(vals)), data: data}
}

// encodeTIFF lays out a single-strip, single-IFD TIFF: header, strip, IFD,
// then the values too large to sit inline.
func encodeTIFF(order binary.ByteOrder, entries []ifdEntry, strip []byte) []byte {
	const stripOffset = 8
	ifdOffset := stripOffset + len(strip) + len(strip)%2

	entries = append(entries,
		longEntry(order, tagStripOffsets, stripOffset),
		longEntry(order, tagStripByteCounts, uint32(len(strip))),
	)
	sort.Slice(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })
	overflow := ifdOffset + 2 + 12*len(entries) + 4

	var buf, extra bytes.Buffer
	if order == binary.BigEndian {
		buf.WriteString("MM")
	} else {
		buf.WriteString("II")
	}
	_ = binary.Write(&buf, order, uint16(42))
	_ = binary.Write(&buf, order, uint32(ifdOffset))
	buf.Write(strip)
	if len(strip)%2 == 1 {
		buf.WriteByte(0)
	}

	_ = binary.Write(&buf, order, uint16(len(entries)))
	for _, e := range entries {
		_ = binary.Write(&buf, order, e.tag)
		_ = binary.Write(&buf, order, e.typ)
		_ = binary.Write(&buf, order, e.count)
		if len(e.data) <= 4 {
			var inline [4]byte
			copy(inline[:], e.data)
			buf.Write(inline[:])
			continue
		}
		_ = binary.Write(&buf, order, uint32(overflow+extra.Len()))
		extra.Write(e.data)
		if extra.Len()%2 == 1 {
			extra.WriteByte(0)
		}
	}
	_ = binary.Write(&buf, order, uint32(0))
	buf.Write(extra.Bytes())
	return buf.Bytes()
}

// georefEntries tags the geotransform and OutputEPSG. Axis-aligned transforms
// use scale + tiepoint; rotated ones need the full matrix.
func georefEntries(order binary.ByteOrder, g Georef) []ifdEntry {
	gt := g.GeoTransform()
	keys := shortEntry(order, tagGeoKeyDirectory,
		1, 1, 0, 3,
		geoKeyModelType, 0, 1, 2, // geographic
		geoKeyRasterType, 0, 1, 1, // pixel is area
		geoKeyGeographicType, 0, 1, OutputEPSG,
	)

	if gt[2] != 0 || gt[4] != 0 {
		return []ifdEntry{
			doubleEntry(order, tagModelTransformation,
				gt[1], gt[2], 0, gt[0],
				gt[4], gt[5], 0, gt[3],
				0, 0, 0, 0,
				0, 0, 0, 1),
			keys,
		}
	}
	return []ifdEntry{
		doubleEntry(order, tagModelPixelScale, gt[1], -gt[5], 0),
		doubleEntry(order, tagModelTiepoint, 0, 0, 0, gt[0], gt[3], 0),
		keys,
	}
}

// encodeGeoTIFF writes grid as a Deflate-compressed single-band Int32
// GeoTIFF carrying g.
func encodeGeoTIFF(grid *model.Grid, g Georef) ([]byte, error) {
	order := binary.LittleEndian
	rows, cols := grid.Rows(), grid.Cols()

	raw := make([]byte, 0, 4*rows*cols)
	for _, row := range grid.ToRows() {
		for _, cell := range row {
			raw = order.AppendUint32(raw, uint32(cell))
		}
	}

	var strip bytes.Buffer
	zw := zlib.NewWriter(&strip)
	if _, err := zw.Write(raw); err != nil {
		return nil, errors.Wrap(err, "[encodeGeoTIFF] failed to compress strip")
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "[encodeGeoTIFF] failed to compress strip")
	}

	entries := []ifdEntry{
		longEntry(order, tagImageWidth, uint32(cols)),
		longEntry(order, tagImageLength, uint32(rows)),
		shortEntry(order, tagBitsPerSample, 32),
		shortEntry(order, tagCompression, compressionDeflate),
		shortEntry(order, tagPhotometric, 1),
		shortEntry(order, tagSamplesPerPixel, 1),
		longEntry(order, tagRowsPerStrip, uint32(rows)),
		shortEntry(order, tagPlanarConfig, 1),
		shortEntry(order, tagSampleFormat, sampleFormatInt),
	}
	entries = append(entries, georefEntries(order, g)...)
	return encodeTIFF(order, entries, strip.Bytes()), nil
}
