package fetch

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/bczhc/wplace-archiver/internal/palette"
	"github.com/bczhc/wplace-archiver/internal/wplace"
	"github.com/bczhc/wplace-archiver/internal/wplaceerr"
)

// DirFetcher serves chunks from a snapshot laid out as <root>/<x>/<y>.png,
// the layout original_source/src/bin/archive_tool.rs's collect_chunks walks.
type DirFetcher struct {
	root   string
	chunks []wplace.ChunkNumber
}

// OpenDir walks root and indexes every <x>/<y>.png chunk file it finds.
func OpenDir(root string) (*DirFetcher, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrap(wplaceerr.ErrIO, err.Error())
	}

	var chunks []wplace.ChunkNumber
	for _, xEnt := range entries {
		if !xEnt.IsDir() {
			continue
		}
		x, err := strconv.ParseUint(xEnt.Name(), 10, 16)
		if err != nil {
			continue
		}
		yEntries, err := os.ReadDir(filepath.Join(root, xEnt.Name()))
		if err != nil {
			return nil, errors.Wrap(wplaceerr.ErrIO, err.Error())
		}
		for _, yEnt := range yEntries {
			name := yEnt.Name()
			if filepath.Ext(name) != ".png" {
				continue
			}
			y, err := strconv.ParseUint(name[:len(name)-len(".png")], 10, 16)
			if err != nil {
				continue
			}
			chunks = append(chunks, wplace.ChunkNumber{X: uint16(x), Y: uint16(y)})
		}
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Less(chunks[j]) })

	return &DirFetcher{root: root, chunks: chunks}, nil
}

func (f *DirFetcher) Chunks() []wplace.ChunkNumber { return f.chunks }
func (f *DirFetcher) Len() int                     { return len(f.chunks) }

func (f *DirFetcher) pngPath(chunk wplace.ChunkNumber) string {
	return filepath.Join(f.root, strconv.Itoa(int(chunk.X)), strconv.Itoa(int(chunk.Y))+".png")
}

func (f *DirFetcher) Fetch(chunk wplace.ChunkNumber, buf []byte) error {
	path := f.pngPath(chunk)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(wplaceerr.ErrAbsentChunk, "%s", chunk)
		}
		return errors.Wrap(wplaceerr.ErrIO, err.Error())
	}
	return palette.DecodeChunkFile(path, buf)
}

func (f *DirFetcher) FetchRaw(chunk wplace.ChunkNumber) (io.ReadCloser, error) {
	path := f.pngPath(chunk)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(wplaceerr.ErrAbsentChunk, "%s", chunk)
		}
		return nil, errors.Wrap(wplaceerr.ErrIO, err.Error())
	}
	return file, nil
}

func (f *DirFetcher) Close() error { return nil }
