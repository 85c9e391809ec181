// Package pipeline runs the parallel producer/consumer diff pipeline: a
// worker pool derives each chunk's pixel diff against a base snapshot
// concurrently, feeds results through a bounded channel to a single
// consumer that owns the diff file's sequential writer, and finalizes the
// output atomically via temp-file + rename.
//
// Grounded on _examples/original_source/src/archive_tool.rs's Diff command
// (rayon par-iter producers, a sync_channel(1024) consumer, and the
// temp-file/persist atomicity), re-expressed with golang.org/x/sync/errgroup
// and a buffered channel in place of rayon/mpsc.
package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/bczhc/wplace-archiver/internal/archivehash"
	"github.com/bczhc/wplace-archiver/internal/checksum"
	"github.com/bczhc/wplace-archiver/internal/diffcodec"
	"github.com/bczhc/wplace-archiver/internal/diffformat"
	"github.com/bczhc/wplace-archiver/internal/fetch"
	"github.com/bczhc/wplace-archiver/internal/wplace"
	"github.com/bczhc/wplace-archiver/internal/wplaceerr"
)

// ChannelCapacity is the bounded producer→consumer channel size, matching
// the reference sync_channel(1024) buffer.
const ChannelCapacity = 1024

// Options configures Run.
type Options struct {
	// Workers is the number of concurrent chunk-diff producer goroutines.
	Workers int
	// Progress, if non-nil, is called once per chunk processed (changed or
	// not), for progress-bar style reporting.
	Progress func(done, total int)
}

type result struct {
	chunk    wplace.ChunkNumber
	changed  bool
	payload  []byte
	checksum uint32
}

// Run diffs every chunk new holds against base (a chunk absent from base
// is treated as a zero-filled canonical buffer), and writes the resulting
// diff file to outputPath.
//
// The new snapshot's chunk set determines which chunks are covered: every
// chunk enumerated by newFetcher gets an index entry, changed or not.
// Chunks only base holds get no entry.
//
// It also returns the whole-archive digest (internal/archivehash) of the
// new snapshot's chunks, computed for free while diffing, for callers that
// want to record or print it alongside the diff (the diff command prints
// it, so a later run of the checksum command on the new snapshot can be
// cross-checked against it).
func Run(ctx context.Context, baseFetcher, newFetcher fetch.Fetcher, outputPath string, metadata diffformat.Metadata, opts Options) ([32]byte, error) {
	var zero [32]byte
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	chunks := newFetcher.Chunks()
	total := len(chunks)

	outDir := filepath.Dir(outputPath)
	tmp, err := os.CreateTemp(outDir, ".diff-*.tmp")
	if err != nil {
		return zero, errors.Wrap(wplaceerr.ErrIO, err.Error())
	}
	tmpPath := tmp.Name()
	succeeded := false
	defer func() {
		if !succeeded {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	writer, err := diffformat.Create(tmp, metadata)
	if err != nil {
		return zero, err
	}

	results := make(chan result, ChannelCapacity)
	archiveSum := archivehash.New()

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer close(results)
		jobs := make(chan wplace.ChunkNumber)

		inner, innerCtx := errgroup.WithContext(gctx)
		inner.Go(func() error {
			defer close(jobs)
			for _, c := range chunks {
				select {
				case jobs <- c:
				case <-innerCtx.Done():
					return innerCtx.Err()
				}
			}
			return nil
		})

		for i := 0; i < opts.Workers; i++ {
			inner.Go(func() error {
				baseBuf := make([]byte, wplace.ChunkLength)
				newBuf := make([]byte, wplace.ChunkLength)
				for c := range jobs {
					for i := range baseBuf {
						baseBuf[i] = 0
					}
					if err := baseFetcher.Fetch(c, baseBuf); err != nil && !errors.Is(err, wplaceerr.ErrAbsentChunk) {
						return err
					}
					if err := newFetcher.Fetch(c, newBuf); err != nil {
						return err
					}

					compressed, changed, err := diffcodec.Derive(baseBuf, newBuf)
					if err != nil {
						return err
					}
					archiveSum.AddChunk(c, newBuf)
					r := result{chunk: c, changed: changed, payload: compressed, checksum: checksum.Chunk(newBuf)}
					select {
					case results <- r:
					case <-innerCtx.Done():
						return innerCtx.Err()
					}
				}
				return nil
			})
		}
		return inner.Wait()
	})

	done := 0
	for r := range results {
		if r.changed {
			if err := writer.AddChanged(r.chunk, r.payload, r.checksum); err != nil {
				return zero, err
			}
		} else {
			if err := writer.AddUnchanged(r.chunk, r.checksum); err != nil {
				return zero, err
			}
		}
		done++
		if opts.Progress != nil {
			opts.Progress(done, total)
		}
	}

	if err := group.Wait(); err != nil {
		return zero, err
	}

	if err := writer.Finalize(); err != nil {
		return zero, err
	}
	if err := tmp.Sync(); err != nil {
		return zero, errors.Wrap(wplaceerr.ErrIO, err.Error())
	}
	if err := tmp.Close(); err != nil {
		return zero, errors.Wrap(wplaceerr.ErrIO, err.Error())
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		return zero, errors.Wrap(wplaceerr.ErrIO, err.Error())
	}
	succeeded = true
	return archiveSum.Sum(), nil
}
