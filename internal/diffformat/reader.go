package diffformat

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/pkg/errors"

	"github.com/bczhc/wplace-archiver/internal/wplace"
	"github.com/bczhc/wplace-archiver/internal/wplaceerr"
)

// Reader is a read-only, random-access view of a diff file. It loads the
// index into memory once at Open and otherwise reads
// the payload region lazily, so opening a multi-GB diff file costs only
// entry_count*24 bytes of memory.
//
// Grounded on _examples/original_source/src/diff3.rs's DiffFile::open and
// its get_chunk_diff binary search.
type Reader struct {
	r        io.ReaderAt
	Metadata Metadata
	index    []IndexEntry // sorted ascending by Chunk, per the on-disk invariant
}

// Open parses the header and index of a diff file accessible through r.
func Open(r io.ReaderAt) (*Reader, error) {
	header := io.NewSectionReader(r, 0, 11+2+8+4+4)

	var magic [11]byte
	if _, err := io.ReadFull(header, magic[:]); err != nil {
		return nil, errors.Wrap(wplaceerr.ErrIO, err.Error())
	}
	if magic != Magic {
		return nil, errors.Wrapf(wplaceerr.ErrFormat, "bad magic %q", magic)
	}

	version, err := readU16(header)
	if err != nil {
		return nil, err
	}
	if version != Version {
		return nil, errors.Wrapf(wplaceerr.ErrFormat, "unsupported diff file version %d", version)
	}

	indexPos, err := readU64(header)
	if err != nil {
		return nil, err
	}
	entryCount, err := readU32(header)
	if err != nil {
		return nil, err
	}
	metaLen, err := readU32(header)
	if err != nil {
		return nil, err
	}

	metaJSON := make([]byte, metaLen)
	if _, err := r.ReadAt(metaJSON, 11+2+8+4+4); err != nil {
		return nil, errors.Wrap(wplaceerr.ErrIO, err.Error())
	}
	var metadata Metadata
	if err := json.Unmarshal(metaJSON, &metadata); err != nil {
		return nil, errors.Wrapf(wplaceerr.ErrFormat, "decode metadata: %v", err)
	}

	indexSize := int64(entryCount) * IndexEntrySize
	indexSection := io.NewSectionReader(r, int64(indexPos), indexSize)
	index := make([]IndexEntry, entryCount)
	for i := range index {
		e, err := readIndexEntry(indexSection)
		if err != nil {
			return nil, errors.Wrapf(wplaceerr.ErrFormat, "index entry %d: %v", i, err)
		}
		index[i] = e
	}
	if !sort.SliceIsSorted(index, func(i, j int) bool { return index[i].Chunk.Less(index[j].Chunk) }) {
		return nil, errors.Wrap(wplaceerr.ErrFormat, "diff file index is not sorted by chunk")
	}

	return &Reader{r: r, Metadata: metadata, index: index}, nil
}

func readIndexEntry(r io.Reader) (IndexEntry, error) {
	x, err := readU16(r)
	if err != nil {
		return IndexEntry{}, err
	}
	y, err := readU16(r)
	if err != nil {
		return IndexEntry{}, err
	}
	checksum, err := readU32(r)
	if err != nil {
		return IndexEntry{}, err
	}
	pos, err := readU64(r)
	if err != nil {
		return IndexEntry{}, err
	}
	length, err := readU64(r)
	if err != nil {
		return IndexEntry{}, err
	}
	return IndexEntry{
		Chunk:    wplace.ChunkNumber{X: x, Y: y},
		Checksum: checksum,
		Pos:      pos,
		Len:      length,
	}, nil
}

// Len reports how many chunks this diff file's index covers.
func (dr *Reader) Len() int { return len(dr.index) }

// Index returns the full sorted index. Callers must not mutate it.
func (dr *Reader) Index() []IndexEntry { return dr.index }

// Query binary-searches the index for chunk, returning (entry, true) if
// present, or (zero, false) otherwise.
func (dr *Reader) Query(chunk wplace.ChunkNumber) (IndexEntry, bool) {
	i := sort.Search(len(dr.index), func(i int) bool {
		return !dr.index[i].Chunk.Less(chunk)
	})
	if i < len(dr.index) && dr.index[i].Chunk == chunk {
		return dr.index[i], true
	}
	return IndexEntry{}, false
}

// OpenPayload returns a bounded reader over the compressed diff payload for
// entry. Callers must only call this for entries where IsChanged() is true.
func (dr *Reader) OpenPayload(entry IndexEntry) (io.Reader, error) {
	if !entry.IsChanged() {
		return nil, errors.Wrapf(wplaceerr.ErrSpec, "chunk %s has no payload", entry.Chunk)
	}
	return io.NewSectionReader(dr.r, int64(entry.Pos), int64(entry.Len)), nil
}
