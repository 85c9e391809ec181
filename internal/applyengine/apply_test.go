package applyengine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bczhc/wplace-archiver/internal/diffformat"
	"github.com/bczhc/wplace-archiver/internal/fetch"
	"github.com/bczhc/wplace-archiver/internal/palette"
	"github.com/bczhc/wplace-archiver/internal/pipeline"
	"github.com/bczhc/wplace-archiver/internal/wplace"
)

func writeChunk(t *testing.T, root string, chunk wplace.ChunkNumber, fill byte) {
	t.Helper()
	dir := filepath.Join(root, itoaChunk(chunk.X))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	buf := make([]byte, wplace.ChunkLength)
	for i := range buf {
		buf[i] = fill
	}
	require.NoError(t, palette.EncodeChunkFile(filepath.Join(dir, itoaChunk(chunk.Y)+".png"), buf))
}

func itoaChunk(v uint16) string {
	if v == 0 {
		return "0"
	}
	digits := ""
	for v > 0 {
		digits = string(rune('0'+v%10)) + digits
		v /= 10
	}
	return digits
}

func TestApplyRoundTrip(t *testing.T) {
	base := t.TempDir()
	next := t.TempDir()
	diffPath := filepath.Join(t.TempDir(), "out.diff")
	outDir := t.TempDir()

	writeChunk(t, base, wplace.ChunkNumber{X: 1, Y: 1}, 3)
	writeChunk(t, next, wplace.ChunkNumber{X: 1, Y: 1}, 3) // unchanged
	writeChunk(t, next, wplace.ChunkNumber{X: 2, Y: 0}, 8) // changed/new

	baseFetcher, err := fetch.OpenDir(base)
	require.NoError(t, err)
	defer baseFetcher.Close()
	nextFetcher, err := fetch.OpenDir(next)
	require.NoError(t, err)
	defer nextFetcher.Close()

	_, err = pipeline.Run(context.Background(), baseFetcher, nextFetcher, diffPath,
		diffformat.NewMetadata("next", "base"), pipeline.Options{Workers: 2})
	require.NoError(t, err)

	f, err := os.Open(diffPath)
	require.NoError(t, err)
	defer f.Close()
	dr, err := diffformat.Open(f)
	require.NoError(t, err)

	require.NoError(t, Apply(context.Background(), baseFetcher, dr, outDir, Options{Workers: 2}))

	outFetcher, err := fetch.OpenDir(outDir)
	require.NoError(t, err)
	defer outFetcher.Close()

	got := make([]byte, wplace.ChunkLength)
	require.NoError(t, outFetcher.Fetch(wplace.ChunkNumber{X: 1, Y: 1}, got))
	for _, b := range got {
		require.Equal(t, byte(3), b)
	}

	require.NoError(t, outFetcher.Fetch(wplace.ChunkNumber{X: 2, Y: 0}, got))
	for _, b := range got {
		require.Equal(t, byte(8), b)
	}
}
