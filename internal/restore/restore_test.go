package restore

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
	"github.com/bczhc/wplace-archiver/internal/pipeline"
	"github.com/bczhc/wplace-archiver/internal/snapshot"
	"github.com/bczhc/wplace-archiver/internal/wplace"
)

func writeSnap(t *testing.T, root string, chunk wplace.ChunkNumber, fill byte) {
	t.Helper()
	dir := filepath.Join(root, strconv.Itoa(int(chunk.X)))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	buf := make([]byte, wplace.ChunkLength)
	for i := range buf {
		buf[i] = fill
	}
	require.NoError(t, palette.EncodeChunkFile(filepath.Join(dir, strconv.Itoa(int(chunk.Y))+".png"), buf))
}

func makeDiff(t *testing.T, baseDir, newDir, diffPath, name, parent string) {
	t.Helper()
	baseFetcher, err := fetch.OpenDir(baseDir)
	require.NoError(t, err)
	defer baseFetcher.Close()
	newFetcher, err := fetch.OpenDir(newDir)
	require.NoError(t, err)
	defer newFetcher.Close()

	_, err = pipeline.Run(context.Background(), baseFetcher, newFetcher, diffPath,
		diffformat.NewMetadata(name, parent), pipeline.Options{Workers: 2})
	require.NoError(t, err)
}

func TestMultiDiffRestoreSequence(t *testing.T) {
	chunk := wplace.ChunkNumber{X: 3, Y: 3}

	s0 := t.TempDir()
	writeSnap(t, s0, chunk, 1)
	s1 := t.TempDir()
	writeSnap(t, s1, chunk, 2)
	s2 := t.TempDir()
	writeSnap(t, s2, chunk, 3)

	diffDir := t.TempDir()
	makeDiff(t, s0, s1, filepath.Join(diffDir, "snap1.diff"), "snap1", "snap0")
	makeDiff(t, s1, s2, filepath.Join(diffDir, "snap2.diff"), "snap2", "snap1")

	files, err := snapshot.List([]string{diffDir})
	require.NoError(t, err)
	ordered, err := snapshot.Range(files, "", "snap2")
	require.NoError(t, err)
	require.Len(t, ordered, 2)

	baseFetcher, err := fetch.OpenDir(s0)
	require.NoError(t, err)
	defer baseFetcher.Close()

	outDir := t.TempDir()
	require.NoError(t, Restore(baseFetcher, ordered, []wplace.ChunkNumber{chunk}, outDir, Options{}))

	data, err := os.ReadFile(filepath.Join(outDir, "3-3", "snap2.png"))
	require.NoError(t, err)
	require.NotEmpty(t, data)

	got := make([]byte, wplace.ChunkLength)
	require.NoError(t, palette.DecodeChunkFile(filepath.Join(outDir, "3-3", "snap2.png"), got))
	for _, b := range got {
		require.Equal(t, byte(3), b)
	}
}

func TestCanvasStitchesChunksAtOffset(t *testing.T) {
	chunks := []wplace.ChunkNumber{{X: 0, Y: 0}, {X: 1, Y: 0}}
	canvas := NewCanvas(chunks)
	require.Equal(t, 2*wplace.ChunkSide, canvas.Width())
	require.Equal(t, wplace.ChunkSide, canvas.Height())

	a := make([]byte, wplace.ChunkLength)
	for i := range a {
		a[i] = 1
	}
	b := make([]byte, wplace.ChunkLength)
	for i := range b {
		b[i] = 2
	}
	canvas.Copy(chunks[0], a)
	canvas.Copy(chunks[1], b)

	require.Equal(t, byte(1), canvas.buf[0])
	require.Equal(t, byte(2), canvas.buf[wplace.ChunkSide])
}
