package fetch

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bczhc/wplace-archiver/internal/palette"
	"github.com/bczhc/wplace-archiver/internal/wplace"
)

func TestDirFetcherRoundTrip(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "5"), 0o755))

	buf := make([]byte, wplace.ChunkLength)
	for i := range buf {
		buf[i] = byte(i % 64)
	}
	require.NoError(t, palette.EncodeChunkFile(filepath.Join(root, "5", "7.png"), buf))

	f, err := OpenDir(root)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, 1, f.Len())
	require.Equal(t, []wplace.ChunkNumber{{X: 5, Y: 7}}, f.Chunks())

	got := make([]byte, wplace.ChunkLength)
	require.NoError(t, f.Fetch(wplace.ChunkNumber{X: 5, Y: 7}, got))
	require.Equal(t, buf, got)

	err = f.Fetch(wplace.ChunkNumber{X: 99, Y: 99}, got)
	require.Error(t, err)

	raw, err := f.FetchRaw(wplace.ChunkNumber{X: 5, Y: 7})
	require.NoError(t, err)
	defer raw.Close()
	data, err := io.ReadAll(raw)
	require.NoError(t, err)
	require.NotEmpty(t, data)
}

func TestOpenDispatchesOnDirectory(t *testing.T) {
	root := t.TempDir()
	f, err := Open(root)
	require.NoError(t, err)
	defer f.Close()
	_, ok := f.(*DirFetcher)
	require.True(t, ok)
}
