// Package wplace holds the constants and the chunk-number type shared by
// every other package in this module: the canonical chunk buffer size, the
// pixel mutation/index bit masks, and the fixed 64-entry global palette.
//
// Grounded on _examples/original_source/src/lib.rs (CHUNK_LENGTH,
// MUTATION_MASK, PALETTE_INDEX_MASK, PALETTE).
package wplace

import "fmt"

// ChunkLength is the size in bytes of a canonical chunk buffer: 1000x1000
// pixels, one canonical palette index per byte.
const ChunkLength = 1_000_000

// ChunkSide is the width and height, in pixels, of a chunk.
const ChunkSide = 1000

// MutationMask is bit 6 of a diff mask byte: set when the pixel changed.
const MutationMask byte = 0b0100_0000

// IndexMask is bits 0..5 of a diff mask byte or a canonical buffer byte:
// the canonical palette index.
const IndexMask byte = 0b0011_1111

// ChunkNumber identifies a 1000x1000 chunk by its (x, y) tile coordinate.
// The valid range is a rectangular subset of [0, 2047] x [0, 2047]. Chunk
// numbers order lexicographically by (X, Y).
type ChunkNumber struct {
	X uint16
	Y uint16
}

// Less reports whether n sorts before o under the canonical (x, y) order.
func (n ChunkNumber) Less(o ChunkNumber) bool {
	if n.X != o.X {
		return n.X < o.X
	}
	return n.Y < o.Y
}

func (n ChunkNumber) String() string {
	return fmt.Sprintf("%d-%d", n.X, n.Y)
}

// Compare returns -1, 0, or 1 comparing n to o under the canonical order.
func (n ChunkNumber) Compare(o ChunkNumber) int {
	switch {
	case n.X < o.X:
		return -1
	case n.X > o.X:
		return 1
	case n.Y < o.Y:
		return -1
	case n.Y > o.Y:
		return 1
	default:
		return 0
	}
}
