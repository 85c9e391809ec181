package diffformat

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bczhc/wplace-archiver/internal/wplace"
)

func buildFile(t *testing.T, entries []struct {
	chunk   wplace.ChunkNumber
	payload []byte // nil means unchanged
}) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "diff-*.bin")
	require.NoError(t, err)

	dw, err := Create(f, NewMetadata("snap-2", "snap-1"))
	require.NoError(t, err)

	for _, e := range entries {
		if e.payload == nil {
			require.NoError(t, dw.AddUnchanged(e.chunk, 0))
		} else {
			require.NoError(t, dw.AddChanged(e.chunk, e.payload, 0xDEADBEEF))
		}
	}
	require.NoError(t, dw.Finalize())
	return f
}

func TestWriteReadRoundTrip(t *testing.T) {
	entries := []struct {
		chunk   wplace.ChunkNumber
		payload []byte
	}{
		{wplace.ChunkNumber{X: 5, Y: 3}, []byte("compressed-a")},
		{wplace.ChunkNumber{X: 1, Y: 9}, nil},
		{wplace.ChunkNumber{X: 2, Y: 2}, []byte("compressed-b")},
	}
	f := buildFile(t, entries)
	defer f.Close()

	dr, err := Open(f)
	require.NoError(t, err)
	require.Equal(t, "snap-2", dr.Metadata.Name)
	require.Equal(t, "snap-1", dr.Metadata.Parent)
	require.Equal(t, 3, dr.Len())

	e, ok := dr.Query(wplace.ChunkNumber{X: 5, Y: 3})
	require.True(t, ok)
	require.True(t, e.IsChanged())
	require.Equal(t, uint32(0xDEADBEEF), e.Checksum)

	payloadReader, err := dr.OpenPayload(e)
	require.NoError(t, err)
	data, err := io.ReadAll(payloadReader)
	require.NoError(t, err)
	require.Equal(t, []byte("compressed-a"), data)

	unchanged, ok := dr.Query(wplace.ChunkNumber{X: 1, Y: 9})
	require.True(t, ok)
	require.False(t, unchanged.IsChanged())

	_, ok = dr.Query(wplace.ChunkNumber{X: 99, Y: 99})
	require.False(t, ok)
}

func TestIndexIsSortedRegardlessOfInsertOrder(t *testing.T) {
	entries := []struct {
		chunk   wplace.ChunkNumber
		payload []byte
	}{
		{wplace.ChunkNumber{X: 9, Y: 0}, []byte("z")},
		{wplace.ChunkNumber{X: 0, Y: 0}, []byte("a")},
		{wplace.ChunkNumber{X: 5, Y: 5}, []byte("m")},
		{wplace.ChunkNumber{X: 0, Y: 1}, []byte("b")},
	}
	f := buildFile(t, entries)
	defer f.Close()

	dr, err := Open(f)
	require.NoError(t, err)
	index := dr.Index()
	for i := 1; i < len(index); i++ {
		require.True(t, index[i-1].Chunk.Less(index[i].Chunk) || index[i-1].Chunk == index[i].Chunk)
	}
}

func TestOpenRejectsBadMagic(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "bad-*.bin")
	require.NoError(t, err)
	defer f.Close()
	_, err = f.Write([]byte("not-a-diff-file-at-all-00000000"))
	require.NoError(t, err)

	_, err = Open(f)
	require.Error(t, err)
}
