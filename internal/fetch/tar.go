package fetch

import (
	"archive/tar"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"github.com/tidwall/btree"

	"github.com/bczhc/wplace-archiver/internal/palette"
	"github.com/bczhc/wplace-archiver/internal/wplace"
	"github.com/bczhc/wplace-archiver/internal/wplaceerr"
)

var tarChunkPathRe = regexp.MustCompile(`(?:^|/)(\d+)/(\d+)\.png$`)

type tarRange struct {
	start int64
	size  int64
}

// TarFetcher serves chunks out of a tar archive whose entries are laid out
// as <root>/<x>/<y>.png, indexing byte ranges once at open time so later
// fetches seek directly instead of re-scanning.
//
// Grounded on _examples/original_source/src/tar.rs's ChunksTarReader,
// whose BTreeMap<ChunkNumber, Range> index is ported here to
// github.com/tidwall/btree.Map. btree.Map's key type must satisfy Go's
// built-in ordered constraint, which a ChunkNumber struct doesn't, so the
// index is keyed on the same x*2048+y packing restore.ChunkStore uses.
type TarFetcher struct {
	path   string
	file   *os.File
	index  *btree.Map[uint32, tarRange]
	chunks []wplace.ChunkNumber
}

func tarSlot(c wplace.ChunkNumber) uint32 { return uint32(c.X)*2048 + uint32(c.Y) }

// OpenTar indexes every <x>/<y>.png entry in the tar file at path.
func OpenTar(path string) (*TarFetcher, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(wplaceerr.ErrIO, err.Error())
	}

	index := btree.NewMap[uint32, tarRange](32)
	tr := tar.NewReader(file)
	var chunks []wplace.ChunkNumber
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			file.Close()
			return nil, errors.Wrapf(wplaceerr.ErrFormat, "read tar: %v", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		m := tarChunkPathRe.FindStringSubmatch(hdr.Name)
		if m == nil {
			continue
		}
		x, errX := strconv.ParseUint(m[1], 10, 16)
		y, errY := strconv.ParseUint(m[2], 10, 16)
		if errX != nil || errY != nil {
			continue
		}
		pos, err := file.Seek(0, io.SeekCurrent)
		if err != nil {
			file.Close()
			return nil, errors.Wrap(wplaceerr.ErrIO, err.Error())
		}
		chunk := wplace.ChunkNumber{X: uint16(x), Y: uint16(y)}
		index.Set(tarSlot(chunk), tarRange{start: pos, size: hdr.Size})
		chunks = append(chunks, chunk)
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Less(chunks[j]) })

	return &TarFetcher{path: path, file: file, index: index, chunks: chunks}, nil
}

func (f *TarFetcher) Chunks() []wplace.ChunkNumber { return f.chunks }
func (f *TarFetcher) Len() int                     { return len(f.chunks) }

func (f *TarFetcher) FetchRaw(chunk wplace.ChunkNumber) (io.ReadCloser, error) {
	r, ok := f.index.Get(tarSlot(chunk))
	if !ok {
		return nil, errors.Wrapf(wplaceerr.ErrAbsentChunk, "%s", chunk)
	}
	return io.NopCloser(io.NewSectionReader(f.file, r.start, r.size)), nil
}

func (f *TarFetcher) Fetch(chunk wplace.ChunkNumber, buf []byte) error {
	r, err := f.FetchRaw(chunk)
	if err != nil {
		return err
	}
	defer r.Close()
	return palette.DecodeChunk(r, buf)
}

func (f *TarFetcher) Close() error {
	return f.file.Close()
}
