// Package diffcodec derives and applies the per-chunk pixel diff mask,
// and compresses/decompresses it with zstd.
//
// Grounded on _examples/original_source/src/archive_tool.rs's diff_png /
// apply_png: the mask-byte encoding and the mutation-mask apply loop.
package diffcodec

import (
	"bytes"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/bczhc/wplace-archiver/internal/wplace"
	"github.com/bczhc/wplace-archiver/internal/wplaceerr"
)

// ZstdLevel is the compression level used for every pixel diff mask.
// Mirrors the reference implementation's configurable
// DIFF_DATA_ZSTD_COMPRESSION_LEVEL constant.
const ZstdLevel = zstd.SpeedBetterCompression // what zstd.EncoderLevelFromZstd(7) returns

// Derive computes the pixel diff mask between base and new, both
// wplace.ChunkLength-byte canonical buffers. It returns (nil, false) when
// the chunks are identical ("unchanged"), otherwise the zstd-compressed
// mask and true.
//
// Both inputs are masked with wplace.IndexMask before comparison, to
// tolerate stray high bits in either buffer.
func Derive(base, next []byte) (compressed []byte, changed bool, err error) {
	if len(base) != wplace.ChunkLength || len(next) != wplace.ChunkLength {
		return nil, false, errors.Wrapf(wplaceerr.ErrFormat, "chunk buffers must be %d bytes", wplace.ChunkLength)
	}

	mask := make([]byte, wplace.ChunkLength)
	anyChange := false
	for i := range mask {
		a := base[i] & wplace.IndexMask
		b := next[i] & wplace.IndexMask
		if a != b {
			mask[i] = wplace.MutationMask | b
			anyChange = true
		}
	}
	if !anyChange {
		return nil, false, nil
	}

	enc := getEncoder()
	compressed = enc.EncodeAll(mask, nil)
	return compressed, true, nil
}

// Apply decompresses a compressed pixel diff mask and applies it to base
// in place: base[i] = mask[i]&IndexMask wherever mask[i]&MutationMask is
// set, left untouched otherwise.
func Apply(base []byte, compressedMask []byte) error {
	if len(base) != wplace.ChunkLength {
		return errors.Wrapf(wplaceerr.ErrFormat, "base buffer must be %d bytes", wplace.ChunkLength)
	}

	dec := getDecoder()
	mask, err := dec.DecodeAll(compressedMask, make([]byte, 0, wplace.ChunkLength))
	if err != nil {
		return errors.Wrapf(wplaceerr.ErrFormat, "decompress pixel diff: %v", err)
	}
	if len(mask) != wplace.ChunkLength {
		return errors.Wrapf(wplaceerr.ErrFormat, "decompressed mask is %d bytes, want %d", len(mask), wplace.ChunkLength)
	}

	for i, m := range mask {
		if m&wplace.MutationMask != 0 {
			base[i] = m & wplace.IndexMask
		}
	}
	return nil
}

// ApplyFromReader is like Apply but reads the compressed mask from r
// (e.g. a bounded range reader over a diff file's payload region) instead
// of requiring the caller to have it fully buffered.
func ApplyFromReader(base []byte, r io.Reader) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return errors.Wrapf(wplaceerr.ErrIO, "read compressed diff: %v", err)
	}
	return Apply(base, buf.Bytes())
}

// The EncodeAll/DecodeAll entry points on *zstd.Encoder/*zstd.Decoder are
// safe for concurrent use by multiple worker goroutines, so a single
// process-wide instance of each (built once, like the palette lookup
// table) avoids spinning up a fresh worker pool per chunk.
var (
	codecOnce sync.Once
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
)

func buildCodecs() {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(ZstdLevel))
	if err != nil {
		panic(err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		panic(err)
	}
	encoder, decoder = enc, dec
}

func getEncoder() *zstd.Encoder {
	codecOnce.Do(buildCodecs)
	return encoder
}

func getDecoder() *zstd.Decoder {
	codecOnce.Do(buildCodecs)
	return decoder
}
