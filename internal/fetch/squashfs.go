package fetch

import (
	"io"
	"io/fs"
	"regexp"
	"sort"
	"strconv"

	"github.com/KarpelesLab/squashfs"
	"github.com/pkg/errors"

	"github.com/bczhc/wplace-archiver/internal/palette"
	"github.com/bczhc/wplace-archiver/internal/wplace"
	"github.com/bczhc/wplace-archiver/internal/wplaceerr"
)

var squashChunkPathRe = regexp.MustCompile(`(?:^|/)(\d+)/(\d+)\.png$`)

// SquashFetcher serves chunks out of a read-only squashfs image built from
// the same <x>/<y>.png layout as DirFetcher, via fs.WalkDir over the
// library's fs.FS implementation.
type SquashFetcher struct {
	sb     *squashfs.Superblock
	chunks []wplace.ChunkNumber
}

// OpenSquashfs mounts (in-process, read-only) the squashfs image at path
// and indexes its chunk entries.
func OpenSquashfs(path string) (*SquashFetcher, error) {
	sb, err := squashfs.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(wplaceerr.ErrIO, err.Error())
	}

	var chunks []wplace.ChunkNumber
	err = fs.WalkDir(sb, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		m := squashChunkPathRe.FindStringSubmatch(p)
		if m == nil {
			return nil
		}
		x, errX := strconv.ParseUint(m[1], 10, 16)
		y, errY := strconv.ParseUint(m[2], 10, 16)
		if errX != nil || errY != nil {
			return nil
		}
		chunks = append(chunks, wplace.ChunkNumber{X: uint16(x), Y: uint16(y)})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(wplaceerr.ErrFormat, "walk squashfs image: %v", err)
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Less(chunks[j]) })

	return &SquashFetcher{sb: sb, chunks: chunks}, nil
}

func (f *SquashFetcher) Chunks() []wplace.ChunkNumber { return f.chunks }
func (f *SquashFetcher) Len() int                     { return len(f.chunks) }

func (f *SquashFetcher) pngPath(chunk wplace.ChunkNumber) string {
	return strconv.Itoa(int(chunk.X)) + "/" + strconv.Itoa(int(chunk.Y)) + ".png"
}

func (f *SquashFetcher) FetchRaw(chunk wplace.ChunkNumber) (io.ReadCloser, error) {
	file, err := f.sb.Open(f.pngPath(chunk))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(wplaceerr.ErrAbsentChunk, "%s", chunk)
		}
		return nil, errors.Wrap(wplaceerr.ErrIO, err.Error())
	}
	rc, ok := file.(io.ReadCloser)
	if !ok {
		return nil, errors.Wrapf(wplaceerr.ErrIO, "squashfs entry for %s is not readable", chunk)
	}
	return rc, nil
}

func (f *SquashFetcher) Fetch(chunk wplace.ChunkNumber, buf []byte) error {
	r, err := f.FetchRaw(chunk)
	if err != nil {
		return err
	}
	defer r.Close()
	return palette.DecodeChunk(r, buf)
}

func (f *SquashFetcher) Close() error { return nil }
