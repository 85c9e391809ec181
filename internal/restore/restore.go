package restore

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/bczhc/wplace-archiver/internal/checksum"
	"github.com/bczhc/wplace-archiver/internal/diffcodec"
	"github.com/bczhc/wplace-archiver/internal/diffformat"
	"github.com/bczhc/wplace-archiver/internal/fetch"
	"github.com/bczhc/wplace-archiver/internal/palette"
	"github.com/bczhc/wplace-archiver/internal/snapshot"
	"github.com/bczhc/wplace-archiver/internal/wplace"
	"github.com/bczhc/wplace-archiver/internal/wplaceerr"
)

// Options configures Restore.
type Options struct {
	// Timelapse, if true, writes one PNG per diff step instead of only at
	// the final (target) step.
	Timelapse bool
	// Stitch, if true, also saves a combined Canvas PNG per emitted step.
	Stitch bool
	// OnlyStitched suppresses the per-chunk PNG output, leaving only the
	// stitched canvas (requires Stitch).
	OnlyStitched bool
	NoChecksum   bool
	Progress     func(step, totalSteps int, chunk, totalChunks int)
}

// Restore reconstructs chunks at the snapshot named by the last entry of
// diffs. base seeds every chunk's initial state; diffs must already be in
// [base, target] application order (snapshot.Range).
//
// Single diff (len(diffs)==1) runs without an intermediate chunk store,
// matching the single-diff apply engine exactly; multi-diff uses a
// zstd-recompressed ChunkStore between steps.
func Restore(base fetch.Fetcher, diffs []snapshot.File, chunks []wplace.ChunkNumber, outDir string, opts Options) error {
	if len(diffs) == 0 {
		return errors.Wrap(wplaceerr.ErrSpec, "restore requires at least one diff")
	}

	// Single diff: no later step will ever read a stored chunk back, so
	// skip the intermediate store entirely rather than paying to
	// zstd-recompress and retain every chunk for nothing.
	var store *ChunkStore
	if len(diffs) > 1 {
		store = NewChunkStore()
	}
	buf := make([]byte, wplace.ChunkLength)

	for step, diffFile := range diffs {
		f, err := os.Open(diffFile.Path)
		if err != nil {
			return errors.Wrap(wplaceerr.ErrIO, err.Error())
		}
		dr, err := diffformat.Open(f)
		if err != nil {
			f.Close()
			return err
		}

		isLast := step == len(diffs)-1
		emit := isLast || opts.Timelapse

		var canvas *Canvas
		if emit && opts.Stitch {
			canvas = NewCanvas(chunks)
		}

		for ci, chunk := range chunks {
			if err := loadChunk(store, base, chunk, step, buf); err != nil {
				f.Close()
				return err
			}

			entry, found := dr.Query(chunk)
			if found && entry.IsChanged() {
				payload, err := dr.OpenPayload(entry)
				if err != nil {
					f.Close()
					return err
				}
				if err := diffcodec.ApplyFromReader(buf, payload); err != nil {
					f.Close()
					return wplaceerr.WrapChunkInDiff(err, chunk, diffFile.Name)
				}
				if !opts.NoChecksum {
					if got := checksum.Chunk(buf); got != entry.Checksum {
						f.Close()
						return wplaceerr.WrapChunkInDiff(wplaceerr.ErrChecksum, chunk, diffFile.Name)
					}
				}
			}
			// found && !entry.IsChanged(): chunk unchanged this step, buf
			// already holds the right bytes.
			// !found: chunk didn't exist in this diff's snapshot yet,
			// buf keeps whatever it held (zero-filled if never seen).

			if store != nil {
				if err := store.Store(chunk, buf); err != nil {
					f.Close()
					return err
				}
			}

			if emit {
				if !opts.OnlyStitched {
					if err := writeStepPNG(outDir, diffFile.Name, chunk, buf); err != nil {
						f.Close()
						return err
					}
				}
				if canvas != nil {
					canvas.Copy(chunk, buf)
				}
			}
			if opts.Progress != nil {
				opts.Progress(step+1, len(diffs), ci+1, len(chunks))
			}
		}

		if canvas != nil {
			if err := canvas.Save(filepath.Join(outDir, "stitched", diffFile.Name+".png")); err != nil {
				f.Close()
				return err
			}
		}

		f.Close()
	}

	return nil
}

// loadChunk fills buf with chunk's state as of the previous step: from the
// in-memory store if a slot already exists, otherwise from the base
// fetcher (zero-filled if base doesn't have it either). store is nil in
// single-diff mode, where step is always 0 and the store is never used.
func loadChunk(store *ChunkStore, base fetch.Fetcher, chunk wplace.ChunkNumber, step int, buf []byte) error {
	if store != nil && step > 0 {
		ok, err := store.Load(chunk, buf)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}

	for i := range buf {
		buf[i] = 0
	}
	if err := base.Fetch(chunk, buf); err != nil && !errors.Is(err, wplaceerr.ErrAbsentChunk) {
		return err
	}
	return nil
}

func writeStepPNG(outDir, stepName string, chunk wplace.ChunkNumber, buf []byte) error {
	dir := filepath.Join(outDir, strconv.Itoa(int(chunk.X))+"-"+strconv.Itoa(int(chunk.Y)))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(wplaceerr.ErrIO, err.Error())
	}
	return palette.EncodeChunkFile(filepath.Join(dir, stepName+".png"), buf)
}
