// Package palette converts between the canonical 1,000,000-byte chunk
// buffer (one palette index per pixel, row-major 1000x1000) and indexed
// PNGs.
//
// Standard PNG decoding/encoding is out of scope for this module: only
// the palette-remap semantics are core, so this package is a thin layer
// over the standard library's image/png codec. The remapping itself —
// building a small per-image lookup from a PNG's local palette (with tRNS
// alpha) to the canonical global palette — is grounded on
// _examples/original_source/src/indexed_png.rs's PixelMapper.
package palette

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/bczhc/wplace-archiver/internal/wplace"
	"github.com/bczhc/wplace-archiver/internal/wplaceerr"
)

// DecodeChunkFile reads the indexed PNG at path into buf, a
// wplace.ChunkLength-byte canonical buffer.
func DecodeChunkFile(path string, buf []byte) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(wplaceerr.ErrIO, "open %s: %v", path, err)
	}
	defer f.Close()
	return DecodeChunk(f, buf)
}

// DecodeChunk reads one indexed PNG chunk (1000x1000) from r into buf.
func DecodeChunk(r io.Reader, buf []byte) error {
	return Decode(r, wplace.ChunkSide, wplace.ChunkSide, buf)
}

// Decode reads an indexed PNG from r, requires it be exactly wantW x
// wantH, and writes its canonical-index pixels into buf (length
// wantW*wantH).
func Decode(r io.Reader, wantW, wantH int, buf []byte) error {
	if len(buf) != wantW*wantH {
		return errors.Wrapf(wplaceerr.ErrFormat, "buffer length %d does not match %dx%d", len(buf), wantW, wantH)
	}

	img, err := png.Decode(r)
	if err != nil {
		return errors.Wrapf(wplaceerr.ErrFormat, "decode png: %v", err)
	}
	paletted, ok := img.(*image.Paletted)
	if !ok {
		return errors.Wrapf(wplaceerr.ErrFormat, "png color type is not indexed (got %T)", img)
	}
	bounds := paletted.Bounds()
	if bounds.Dx() != wantW || bounds.Dy() != wantH {
		return errors.Wrapf(wplaceerr.ErrFormat, "png dimensions %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), wantW, wantH)
	}
	if len(paletted.Palette) > 64 {
		return errors.Wrapf(wplaceerr.ErrFormat, "png local palette has %d entries, want <= 64", len(paletted.Palette))
	}

	fastMap, err := buildFastMap(paletted.Palette)
	if err != nil {
		return err
	}

	minX, minY := bounds.Min.X, bounds.Min.Y
	for y := 0; y < wantH; y++ {
		rowOff := y * wantW
		for x := 0; x < wantW; x++ {
			localIdx := paletted.Pix[paletted.PixOffset(minX+x, minY+y)]
			buf[rowOff+x] = fastMap[localIdx]
		}
	}
	return nil
}

// buildFastMap builds a per-image 256-entry local-index -> canonical-index
// table. It lives entirely in L1 for the duration of one decode, rebuilt
// per PNG since every PNG can carry a different local palette order.
func buildFastMap(pal color.Palette) ([256]uint8, error) {
	var fastMap [256]uint8
	for i, c := range pal {
		r16, g16, b16, a16 := c.RGBA()
		if a16>>8 == 0 {
			// fully transparent: canonical index 0, regardless of RGB.
			fastMap[i] = 0
			continue
		}
		idx, ok := lookupRGB(uint8(r16>>8), uint8(g16>>8), uint8(b16>>8))
		if !ok {
			return fastMap, errors.Wrapf(wplaceerr.ErrFormat, "local palette color (%d,%d,%d) is not in the global palette", r16>>8, g16>>8, b16>>8)
		}
		fastMap[i] = idx
	}
	return fastMap, nil
}
