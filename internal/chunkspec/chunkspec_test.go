package chunkspec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bczhc/wplace-archiver/internal/wplace"
)

func TestParseSingleChunks(t *testing.T) {
	got, err := Parse("10-20,10-21")
	require.NoError(t, err)
	require.Equal(t, []wplace.ChunkNumber{
		{X: 10, Y: 20},
		{X: 10, Y: 21},
	}, got)
}

func TestParseRectangle(t *testing.T) {
	got, err := Parse("0-0..1-1")
	require.NoError(t, err)
	require.ElementsMatch(t, []wplace.ChunkNumber{
		{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 0}, {X: 1, Y: 1},
	}, got)
}

func TestParseRectangleReversedCorners(t *testing.T) {
	got, err := Parse("1-1..0-0")
	require.NoError(t, err)
	require.ElementsMatch(t, []wplace.ChunkNumber{
		{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 0}, {X: 1, Y: 1},
	}, got)
}

func TestParseIgnoresWhitespace(t *testing.T) {
	got, err := Parse(" 3-4 , 5-6 ")
	require.NoError(t, err)
	require.Equal(t, []wplace.ChunkNumber{{X: 3, Y: 4}, {X: 5, Y: 6}}, got)
}

func TestParseEmpty(t *testing.T) {
	got, err := Parse("")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestParseRejectsMalformed(t *testing.T) {
	_, err := Parse("not-a-chunk-x")
	require.Error(t, err)
}
