package palette

import (
	"sync"

	"github.com/bczhc/wplace-archiver/internal/wplace"
)

// rgbLookupTable maps a packed 24-bit RGB value to its canonical palette
// index, or 0xFF if the color is not in the global palette. It is built
// once, process-wide, via a one-shot initializer, then treated as
// immutable read-only memory for the remainder of the process, grounded on
// _examples/original_source/src/indexed_png.rs's create_palette_lookup_table.
var (
	rgbLookupOnce  sync.Once
	rgbLookupTable [1 << 24]uint8
)

const noIndex = 0xFF

func packRGB(r, g, b uint8) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

func buildRGBLookupTable() {
	for i := range rgbLookupTable {
		rgbLookupTable[i] = noIndex
	}
	// Index 0 and 1 both map to RGB (0,0,0); index 1 (opaque black) wins
	// the collision for RGB lookup purposes, since index 0 (transparent)
	// is always resolved separately via the tRNS/alpha channel before a
	// lookup is ever attempted.
	for i, rgb := range wplace.GlobalPalette {
		if i == 0 {
			continue
		}
		rgbLookupTable[packRGB(rgb[0], rgb[1], rgb[2])] = uint8(i)
	}
}

// lookupRGB returns the canonical palette index for an opaque RGB triple,
// and false if the color is not in the global palette.
func lookupRGB(r, g, b uint8) (uint8, bool) {
	rgbLookupOnce.Do(buildRGBLookupTable)
	idx := rgbLookupTable[packRGB(r, g, b)]
	return idx, idx != noIndex
}
