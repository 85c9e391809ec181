package diffformat

import (
	"io"
	"sort"

	"github.com/pkg/errors"

	"github.com/bczhc/wplace-archiver/internal/wplace"
	"github.com/bczhc/wplace-archiver/internal/wplaceerr"
)

// Writer assembles a diff file. It is single-writer only: AddChanged and
// AddUnchanged must only ever be called from one goroutine at a time (the
// consumer side of the diff pipeline), never concurrently.
type Writer struct {
	w          io.WriteSeeker
	currentPos uint64
	entries    []IndexEntry
}

// Create writes the file header (magic, version, index_pos/entry_count
// placeholders, metadata) and returns a Writer ready for AddChanged /
// AddUnchanged calls. The position immediately after the header is where
// the payload region begins.
func Create(w io.WriteSeeker, metadata Metadata) (*Writer, error) {
	if _, err := w.Write(Magic[:]); err != nil {
		return nil, errors.Wrap(wplaceerr.ErrIO, err.Error())
	}
	if err := writeU16(w, Version); err != nil {
		return nil, err
	}
	if err := writeU64(w, 0); err != nil { // index_pos placeholder
		return nil, err
	}
	if err := writeU32(w, 0); err != nil { // entry_count placeholder
		return nil, err
	}

	metaJSON, err := metadata.marshal()
	if err != nil {
		return nil, errors.Wrapf(wplaceerr.ErrFormat, "marshal metadata: %v", err)
	}
	if err := writeU32(w, uint32(len(metaJSON))); err != nil {
		return nil, err
	}
	if _, err := w.Write(metaJSON); err != nil {
		return nil, errors.Wrap(wplaceerr.ErrIO, err.Error())
	}

	pos, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, errors.Wrap(wplaceerr.ErrIO, err.Error())
	}

	return &Writer{w: w, currentPos: uint64(pos)}, nil
}

// AddEntry records chunk's status in the diff. A nil compressedDiff marks
// the chunk unchanged from base (pos=len=0); otherwise the bytes are
// appended to the payload region and the entry records their range.
func (dw *Writer) AddEntry(chunk wplace.ChunkNumber, compressedDiff []byte, checksum uint32) error {
	if compressedDiff == nil {
		dw.entries = append(dw.entries, IndexEntry{Chunk: chunk, Checksum: checksum})
		return nil
	}

	start := dw.currentPos
	n, err := dw.w.Write(compressedDiff)
	if err != nil {
		return errors.Wrap(wplaceerr.ErrIO, err.Error())
	}
	dw.currentPos += uint64(n)

	dw.entries = append(dw.entries, IndexEntry{
		Chunk:    chunk,
		Checksum: checksum,
		Pos:      start,
		Len:      uint64(n),
	})
	return nil
}

// AddChanged is AddEntry with a non-nil payload.
func (dw *Writer) AddChanged(chunk wplace.ChunkNumber, compressedDiff []byte, checksum uint32) error {
	return dw.AddEntry(chunk, compressedDiff, checksum)
}

// AddUnchanged is AddEntry for a chunk identical to base at this diff step.
func (dw *Writer) AddUnchanged(chunk wplace.ChunkNumber, checksum uint32) error {
	return dw.AddEntry(chunk, nil, checksum)
}

// Finalize sorts the in-memory index ascending by (x, y), writes it
// contiguously after the payload region, then seeks back to the header to
// fill in the true index_pos and entry_count. The caller is responsible
// for the temp-file + rename atomicity discipline; Finalize itself only
// guarantees the stream it was given ends up self-consistent.
func (dw *Writer) Finalize() error {
	sort.Slice(dw.entries, func(i, j int) bool {
		return dw.entries[i].Chunk.Less(dw.entries[j].Chunk)
	})

	indexPos := dw.currentPos
	for _, e := range dw.entries {
		if err := writeIndexEntry(dw.w, e); err != nil {
			return err
		}
	}

	headerPos := int64(len(Magic)) + 2 // magic + version(u16)
	if _, err := dw.w.Seek(headerPos, io.SeekStart); err != nil {
		return errors.Wrap(wplaceerr.ErrIO, err.Error())
	}
	if err := writeU64(dw.w, indexPos); err != nil {
		return err
	}
	if err := writeU32(dw.w, uint32(len(dw.entries))); err != nil {
		return err
	}
	return nil
}

func writeIndexEntry(w io.Writer, e IndexEntry) error {
	if err := writeU16(w, e.Chunk.X); err != nil {
		return err
	}
	if err := writeU16(w, e.Chunk.Y); err != nil {
		return err
	}
	if err := writeU32(w, e.Checksum); err != nil {
		return err
	}
	if err := writeU64(w, e.Pos); err != nil {
		return err
	}
	return writeU64(w, e.Len)
}
