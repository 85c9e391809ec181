// Package diffformat implements the on-disk diff container: the versioned
// file of magic + metadata + streamed compressed diff payloads + a sorted
// fixed-width index enabling binary search and partial-file range reads.
//
// Grounded on _examples/original_source/src/diff3.rs's version-3 format
// (magic/version/index_pos/entry_count/metadata/payload/index ordering).
package diffformat

import (
	"encoding/json"
	"time"

	"github.com/bczhc/wplace-archiver/internal/wplace"
)

// Magic is the fixed 11-byte file signature "wplace-diff".
var Magic = [11]byte{'w', 'p', 'l', 'a', 'c', 'e', '-', 'd', 'i', 'f', 'f'}

// Version is the only diff file version this package reads or writes.
const Version uint16 = 3

// IndexEntrySize is the fixed on-disk size of one index entry, in bytes.
const IndexEntrySize = 24

// Metadata is the diff file's opaque metadata JSON payload. The binary
// layout treats this as an opaque length-prefixed blob; this module's
// chosen schema mirrors original_source/src/archive_tool.rs's Metadata
// struct family (name/parent/creation_time), decoded permissively so
// foreign or older {}-only metadata still parses.
type Metadata struct {
	Name         string `json:"name,omitempty"`
	Parent       string `json:"parent,omitempty"`
	CreationTime int64  `json:"creation_time,omitempty"` // Unix milliseconds
}

// NewMetadata builds Metadata for a diff from parent to name, stamped with
// the current time.
func NewMetadata(name, parent string) Metadata {
	return Metadata{Name: name, Parent: parent, CreationTime: time.Now().UnixMilli()}
}

func (m Metadata) marshal() ([]byte, error) {
	return json.Marshal(m)
}

// IndexEntry is the fixed 24-byte on-disk record describing one chunk's
// status in a diff file.
type IndexEntry struct {
	Chunk    wplace.ChunkNumber
	Checksum uint32
	Pos      uint64
	Len      uint64
}

// IsChanged reports whether this entry carries a compressed pixel diff
// payload, as opposed to marking the chunk unchanged from base.
func (e IndexEntry) IsChanged() bool {
	return e.Pos != 0 || e.Len != 0
}
