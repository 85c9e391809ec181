package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bczhc/wplace-archiver/internal/diffformat"
	"github.com/bczhc/wplace-archiver/internal/fetch"
	"github.com/bczhc/wplace-archiver/internal/palette"
	"github.com/bczhc/wplace-archiver/internal/wplace"
)

func writeSnapshotChunk(t *testing.T, root string, x, y int, fill byte) {
	t.Helper()
	dir := filepath.Join(root, strconv.Itoa(x))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	buf := make([]byte, wplace.ChunkLength)
	for i := range buf {
		buf[i] = fill
	}
	require.NoError(t, palette.EncodeChunkFile(filepath.Join(dir, strconv.Itoa(y)+".png"), buf))
}

func TestRunProducesQueryableDiff(t *testing.T) {
	base := t.TempDir()
	next := t.TempDir()
	out := filepath.Join(t.TempDir(), "out.diff")

	writeSnapshotChunk(t, base, 1, 1, 5)
	writeSnapshotChunk(t, next, 1, 1, 5) // unchanged
	writeSnapshotChunk(t, next, 2, 2, 9) // new/changed (absent from base)

	baseFetcher, err := fetch.OpenDir(base)
	require.NoError(t, err)
	defer baseFetcher.Close()
	newFetcher, err := fetch.OpenDir(next)
	require.NoError(t, err)
	defer newFetcher.Close()

	digest, err := Run(context.Background(), baseFetcher, newFetcher, out, diffformat.NewMetadata("next", "base"), Options{Workers: 2})
	require.NoError(t, err)
	require.NotZero(t, digest)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	dr, err := diffformat.Open(f)
	require.NoError(t, err)
	require.Equal(t, 2, dr.Len())

	unchanged, ok := dr.Query(wplace.ChunkNumber{X: 1, Y: 1})
	require.True(t, ok)
	require.False(t, unchanged.IsChanged())

	changed, ok := dr.Query(wplace.ChunkNumber{X: 2, Y: 2})
	require.True(t, ok)
	require.True(t, changed.IsChanged())
}
