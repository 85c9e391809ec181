// Package wplaceerr declares the error kinds surfaced to callers of this
// module and the chunk-scoped context wrapper that the apply and restore
// engines attach to pixel-diff and checksum failures. The wrapper is context, not a taxonomy tag: callers
// still compare against the sentinel kinds with errors.Is.
package wplaceerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel error kinds. Wrap these with errors.Wrap / fmt.Errorf("...: %w")
// (or ChunkError, below) rather than constructing ad hoc error strings, so
// callers can branch on kind with errors.Is.
var (
	// ErrIO marks any underlying read/write failure.
	ErrIO = errors.New("io_error")
	// ErrFormat marks bad magic, wrong version, malformed metadata JSON,
	// a truncated index entry, a wrong decompressed diff length, an
	// invalid bit depth, or an index entry whose byte range falls
	// outside the payload region.
	ErrFormat = errors.New("format_error")
	// ErrChecksum marks a post-apply CRC-32 mismatch.
	ErrChecksum = errors.New("checksum_error")
	// ErrAbsentChunk marks a chunk that a fetcher does not hold. The diff
	// pipeline and the apply and restore engines treat such a chunk as
	// zero-filled instead of failing, also when the index entry marks it
	// unchanged.
	ErrAbsentChunk = errors.New("absent_chunk_error")
	// ErrSpec marks a user-supplied chunk or range string, or diff-list
	// ordering, that does not match the required grammar.
	ErrSpec = errors.New("spec_error")
)

// ChunkError attaches a chunk number and, if applicable, a diff file name
// to an inner error. The apply and restore engines wrap pixel-diff
// decoding failures and checksum mismatches in one; other failures (fetch,
// PNG encode, file I/O, and every failure in the diff pipeline) are
// returned without it. Its cause is always one of the sentinel kinds above
// or wraps one.
type ChunkError struct {
	Cause    error
	Chunk    fmt.Stringer
	DiffFile string // empty if not applicable
}

func (e *ChunkError) Error() string {
	if e.DiffFile != "" {
		return fmt.Sprintf("chunk %s (diff %s): %v", e.Chunk, e.DiffFile, e.Cause)
	}
	return fmt.Sprintf("chunk %s: %v", e.Chunk, e.Cause)
}

func (e *ChunkError) Unwrap() error { return e.Cause }

// WrapChunk builds a ChunkError for a failure tied to a single chunk,
// outside of any particular diff file (e.g. during a plain diff/apply).
func WrapChunk(cause error, chunk fmt.Stringer) error {
	if cause == nil {
		return nil
	}
	return &ChunkError{Cause: cause, Chunk: chunk}
}

// WrapChunkInDiff builds a ChunkError for a failure tied to a chunk while
// processing a specific diff file (restore engine, multi-diff apply).
func WrapChunkInDiff(cause error, chunk fmt.Stringer, diffFile string) error {
	if cause == nil {
		return nil
	}
	return &ChunkError{Cause: cause, Chunk: chunk, DiffFile: diffFile}
}
