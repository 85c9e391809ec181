// Package chunkspec parses the CHUNK_SPEC command-line grammar: a
// comma-separated list of single chunks "X-Y" or inclusive rectangles
// "X1-Y1..X2-Y2".
//
// Grounded on _examples/original_source/src/bin/retrieve.rs's
// parse_chunk_string, extended here with the ".." rectangle form.
package chunkspec

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/bczhc/wplace-archiver/internal/wplace"
	"github.com/bczhc/wplace-archiver/internal/wplaceerr"
)

// Parse parses a CHUNK_SPEC string into the set of chunks it names, in no
// particular order and without deduplication (callers that need a stable
// iteration order should sort the result).
func Parse(s string) ([]wplace.ChunkNumber, error) {
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return nil, nil
	}

	var out []wplace.ChunkNumber
	for _, term := range strings.Split(s, ",") {
		if term == "" {
			continue
		}
		chunks, err := parseTerm(term)
		if err != nil {
			return nil, err
		}
		out = append(out, chunks...)
	}
	return out, nil
}

func parseTerm(term string) ([]wplace.ChunkNumber, error) {
	if strings.Contains(term, "..") {
		parts := strings.SplitN(term, "..", 2)
		if len(parts) != 2 {
			return nil, errors.Wrapf(wplaceerr.ErrSpec, "malformed chunk range %q", term)
		}
		from, err := parseSingle(parts[0])
		if err != nil {
			return nil, err
		}
		to, err := parseSingle(parts[1])
		if err != nil {
			return nil, err
		}
		return rectangle(from, to), nil
	}

	single, err := parseSingle(term)
	if err != nil {
		return nil, err
	}
	return []wplace.ChunkNumber{single}, nil
}

func parseSingle(term string) (wplace.ChunkNumber, error) {
	parts := strings.SplitN(term, "-", 2)
	if len(parts) != 2 {
		return wplace.ChunkNumber{}, errors.Wrapf(wplaceerr.ErrSpec, "malformed chunk %q, want X-Y", term)
	}
	x, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return wplace.ChunkNumber{}, errors.Wrapf(wplaceerr.ErrSpec, "bad chunk x %q: %v", parts[0], err)
	}
	y, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return wplace.ChunkNumber{}, errors.Wrapf(wplaceerr.ErrSpec, "bad chunk y %q: %v", parts[1], err)
	}
	return wplace.ChunkNumber{X: uint16(x), Y: uint16(y)}, nil
}

// rectangle enumerates the inclusive rectangle spanned by its two diagonal
// corners, regardless of which corner is numerically smaller.
func rectangle(a, b wplace.ChunkNumber) []wplace.ChunkNumber {
	x0, x1 := a.X, b.X
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	y0, y1 := a.Y, b.Y
	if y0 > y1 {
		y0, y1 = y1, y0
	}

	out := make([]wplace.ChunkNumber, 0, (int(x1-x0)+1)*(int(y1-y0)+1))
	for x := x0; ; x++ {
		for y := y0; ; y++ {
			out = append(out, wplace.ChunkNumber{X: x, Y: y})
			if y == y1 {
				break
			}
		}
		if x == x1 {
			break
		}
	}
	return out
}
