package palette

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/bczhc/wplace-archiver/internal/wplace"
	"github.com/bczhc/wplace-archiver/internal/wplaceerr"
)

var (
	encodePaletteOnce sync.Once
	encodePalette     color.Palette
)

func buildEncodePalette() {
	encodePalette = make(color.Palette, 64)
	for i, rgb := range wplace.GlobalPalette {
		alpha := uint8(0xFF)
		if i == 0 {
			alpha = 0 // index 0 is the only transparent entry.
		}
		encodePalette[i] = color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: alpha}
	}
}

// EncodeChunkFile writes buf (a wplace.ChunkLength-byte canonical buffer)
// as a 1000x1000 indexed PNG at path.
func EncodeChunkFile(path string, buf []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(wplaceerr.ErrIO, "create %s: %v", path, err)
	}
	defer f.Close()
	return EncodeChunk(f, buf)
}

// EncodeChunk writes buf as a 1000x1000 indexed PNG to w.
func EncodeChunk(w io.Writer, buf []byte) error {
	return Encode(w, wplace.ChunkSide, wplace.ChunkSide, buf)
}

// EncodeFileDims writes buf (width*height canonical indices) as an
// indexed PNG at path, for callers with non-chunk dimensions (the
// stitched-canvas writer in internal/restore).
func EncodeFileDims(path string, width, height int, buf []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(wplaceerr.ErrIO, "create %s: %v", path, err)
	}
	defer f.Close()
	return Encode(f, width, height, buf)
}

// Encode writes buf (width*height canonical indices, row-major) as an
// indexed PNG using the fixed global 64-color palette, with tRNS
// restricted to palette index 0. This general form (arbitrary dimensions)
// backs the stitched-canvas writer in internal/restore.
func Encode(w io.Writer, width, height int, buf []byte) error {
	if len(buf) != width*height {
		return errors.Wrapf(wplaceerr.ErrFormat, "buffer length %d does not match %dx%d", len(buf), width, height)
	}
	encodePaletteOnce.Do(buildEncodePalette)

	img := image.NewPaletted(image.Rect(0, 0, width, height), encodePalette)
	copy(img.Pix, buf)

	enc := &png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, img); err != nil {
		return errors.Wrapf(wplaceerr.ErrIO, "encode png: %v", err)
	}
	return nil
}
