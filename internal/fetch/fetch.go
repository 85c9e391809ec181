// Package fetch provides a uniform chunk-fetcher abstraction over three
// snapshot storage shapes: a directory of per-chunk PNGs, a tar archive of
// the same layout, and a read-only squashfs image. Every implementation
// exposes the same capability surface so the diff/apply/restore pipelines
// never branch on storage kind.
//
// Grounded on _examples/original_source/src/bin/archive_tool.rs's
// collect_chunks (directory walk) and _examples/original_source/src/tar.rs's
// ChunksTarReader (tar indexing via a BTreeMap<ChunkNumber, Range>, ported
// here to github.com/tidwall/btree since Go's stdlib has no ordered map).
package fetch

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/bczhc/wplace-archiver/internal/wplace"
	"github.com/bczhc/wplace-archiver/internal/wplaceerr"
)

// Fetcher is the read-only capability surface every snapshot source
// implements: enumerate the chunks it holds, and fetch any one of them
// either as a decoded canonical buffer or as a raw byte stream (the PNG
// bytes as stored, for callers that only need to re-encode or copy them
// verbatim).
type Fetcher interface {
	// Chunks returns every chunk number this source holds, in ascending
	// (x, y) order.
	Chunks() []wplace.ChunkNumber

	// Len reports len(Chunks()) without requiring callers to materialize it.
	Len() int

	// Fetch decodes the chunk into buf, a wplace.ChunkLength-byte canonical
	// buffer. Returns an absent-chunk error (wplaceerr.ErrAbsentChunk) if
	// the fetcher holds no such chunk.
	Fetch(chunk wplace.ChunkNumber, buf []byte) error

	// FetchRaw opens the chunk's encoded bytes (its PNG form) for
	// streaming, without decoding. The caller must Close the result.
	FetchRaw(chunk wplace.ChunkNumber) (io.ReadCloser, error)

	// Close releases any resources (open file handles, mmaps) held by the
	// fetcher.
	Close() error
}

// Open dispatches on path's shape: a directory opens a DirFetcher, a
// ".tar" file opens a TarFetcher, anything else is tried as a squashfs
// image. Mirrors original_source/src/bin/retrieve.rs's retrieve_chunk
// dispatch (path.is_dir() / extension "tar" / else).
func Open(path string) (Fetcher, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(wplaceerr.ErrIO, err.Error())
	}
	if info.IsDir() {
		return OpenDir(path)
	}
	if strings.EqualFold(filepath.Ext(path), ".tar") {
		return OpenTar(path)
	}
	return OpenSquashfs(path)
}
