package restore

import (
	"github.com/bczhc/wplace-archiver/internal/palette"
	"github.com/bczhc/wplace-archiver/internal/wplace"
)

// Canvas is a stitched 2D byte buffer spanning the bounding rectangle of a
// requested chunk set, one canonical palette-index byte per pixel.
//
// Grounded on _examples/original_source/src/bin/stitch.rs's
// Canvas::from_chunk_list/copy/save usage; the Canvas type itself is not
// present in the retrieved source slice, so its layout follows that
// usage directly.
type Canvas struct {
	min, max wplace.ChunkNumber
	width    int
	height   int
	buf      []byte
}

// NewCanvas sizes a Canvas to the bounding rectangle of chunks.
func NewCanvas(chunks []wplace.ChunkNumber) *Canvas {
	if len(chunks) == 0 {
		return &Canvas{}
	}
	min, max := chunks[0], chunks[0]
	for _, c := range chunks[1:] {
		if c.X < min.X {
			min.X = c.X
		}
		if c.Y < min.Y {
			min.Y = c.Y
		}
		if c.X > max.X {
			max.X = c.X
		}
		if c.Y > max.Y {
			max.Y = c.Y
		}
	}
	width := (int(max.X-min.X) + 1) * wplace.ChunkSide
	height := (int(max.Y-min.Y) + 1) * wplace.ChunkSide
	return &Canvas{
		min:    min,
		max:    max,
		width:  width,
		height: height,
		buf:    make([]byte, width*height),
	}
}

// Width and Height report the stitched buffer's pixel dimensions.
func (c *Canvas) Width() int  { return c.width }
func (c *Canvas) Height() int { return c.height }

// Copy writes a wplace.ChunkLength-byte canonical chunk buffer into its
// offset within the canvas.
func (c *Canvas) Copy(n wplace.ChunkNumber, chunkBuf []byte) {
	originX := int(n.X-c.min.X) * wplace.ChunkSide
	originY := int(n.Y-c.min.Y) * wplace.ChunkSide
	for row := 0; row < wplace.ChunkSide; row++ {
		dstOff := (originY+row)*c.width + originX
		srcOff := row * wplace.ChunkSide
		copy(c.buf[dstOff:dstOff+wplace.ChunkSide], chunkBuf[srcOff:srcOff+wplace.ChunkSide])
	}
}

// Save encodes the stitched canvas as one indexed PNG.
func (c *Canvas) Save(path string) error {
	return palette.EncodeFileDims(path, c.width, c.height, c.buf)
}
