package restore

import (
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/bczhc/wplace-archiver/internal/wplace"
	"github.com/bczhc/wplace-archiver/internal/wplaceerr"
)

// chunkSlot indexes the in-memory intermediate store with a trivial
// packing: n.X*2048 + n.Y. This is exact (not a real hash) because the
// valid coordinate range is [0, 2047] on each axis.
func chunkSlot(n wplace.ChunkNumber) uint32 {
	return uint32(n.X)*2048 + uint32(n.Y)
}

// ChunkStore holds zstd-recompressed intermediate chunk buffers for a
// multi-diff restore, keeping the working set off the raw 1 MB/chunk cost
// (a full 2048^2 fleet of chunks cannot be kept raw in memory — ~4 TB).
type ChunkStore struct {
	mu    sync.RWMutex
	slots map[uint32][]byte
}

// NewChunkStore returns an empty store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{slots: make(map[uint32][]byte)}
}

// Load decompresses the stored buffer for chunk into dst. Returns false
// if the chunk has no slot yet (dst is left untouched).
func (s *ChunkStore) Load(chunk wplace.ChunkNumber, dst []byte) (bool, error) {
	s.mu.RLock()
	compressed, ok := s.slots[chunkSlot(chunk)]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}

	dec := getStoreDecoder()
	out, err := dec.DecodeAll(compressed, dst[:0])
	if err != nil {
		return false, errors.Wrapf(wplaceerr.ErrFormat, "decompress chunk store slot: %v", err)
	}
	if len(out) != wplace.ChunkLength {
		return false, errors.Wrapf(wplaceerr.ErrFormat, "chunk store slot is %d bytes, want %d", len(out), wplace.ChunkLength)
	}
	copy(dst, out)
	return true, nil
}

// Store recompresses buf (low level, favoring speed over ratio since this
// runs on every intermediate step) and saves it into chunk's slot.
func (s *ChunkStore) Store(chunk wplace.ChunkNumber, buf []byte) error {
	enc := getStoreEncoder()
	compressed := enc.EncodeAll(buf, nil)
	s.mu.Lock()
	s.slots[chunkSlot(chunk)] = compressed
	s.mu.Unlock()
	return nil
}

var (
	storeCodecOnce sync.Once
	storeEncoder   *zstd.Encoder
	storeDecoder   *zstd.Decoder
)

func buildStoreCodecs() {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		panic(err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		panic(err)
	}
	storeEncoder, storeDecoder = enc, dec
}

func getStoreEncoder() *zstd.Encoder {
	storeCodecOnce.Do(buildStoreCodecs)
	return storeEncoder
}

func getStoreDecoder() *zstd.Decoder {
	storeCodecOnce.Do(buildStoreCodecs)
	return storeDecoder
}
