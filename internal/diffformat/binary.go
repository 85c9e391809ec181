package diffformat

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/bczhc/wplace-archiver/internal/wplaceerr"
)

// The diff file is little-endian throughout, matching
// original_source/src/diff3.rs's use of Rust's to_le_bytes/from_le_bytes.

func writeU16(w io.Writer, v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	if _, err := w.Write(b[:]); err != nil {
		return errors.Wrap(wplaceerr.ErrIO, err.Error())
	}
	return nil
}

func writeU32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	if _, err := w.Write(b[:]); err != nil {
		return errors.Wrap(wplaceerr.ErrIO, err.Error())
	}
	return nil
}

func writeU64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	if _, err := w.Write(b[:]); err != nil {
		return errors.Wrap(wplaceerr.ErrIO, err.Error())
	}
	return nil
}

func readU16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, errors.Wrap(wplaceerr.ErrIO, err.Error())
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, errors.Wrap(wplaceerr.ErrIO, err.Error())
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readU64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, errors.Wrap(wplaceerr.ErrIO, err.Error())
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
