package diffcodec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bczhc/wplace-archiver/internal/wplace"
)

func TestIdentityDiffIsUnchanged(t *testing.T) {
	buf := make([]byte, wplace.ChunkLength)
	for i := range buf {
		buf[i] = byte(i % 64)
	}
	_, changed, err := Derive(buf, buf)
	require.NoError(t, err)
	require.False(t, changed)
}

func TestSinglePixelChange(t *testing.T) {
	base := make([]byte, wplace.ChunkLength)
	next := make([]byte, wplace.ChunkLength)
	copy(next, base)
	next[42] = 9

	compressed, changed, err := Derive(base, next)
	require.NoError(t, err)
	require.True(t, changed)

	got := make([]byte, wplace.ChunkLength)
	require.NoError(t, Apply(got, compressed))
	require.Equal(t, next, got)
}

func TestApplyOverUnchangedMaskIsIdentity(t *testing.T) {
	base := make([]byte, wplace.ChunkLength)
	for i := range base {
		base[i] = byte(i % 64)
	}
	before := make([]byte, wplace.ChunkLength)
	copy(before, base)

	zeroMask := make([]byte, wplace.ChunkLength)
	enc := getEncoder()
	compressed := enc.EncodeAll(zeroMask, nil)

	require.NoError(t, Apply(base, compressed))
	require.Equal(t, before, base)
}

func TestDeriveApplyRoundTrip(t *testing.T) {
	base := make([]byte, wplace.ChunkLength)
	next := make([]byte, wplace.ChunkLength)
	for i := range base {
		base[i] = byte(i % 64)
		next[i] = byte((i * 7) % 64)
	}

	compressed, changed, err := Derive(base, next)
	require.NoError(t, err)
	require.True(t, changed)

	got := make([]byte, wplace.ChunkLength)
	copy(got, base)
	require.NoError(t, Apply(got, compressed))
	require.Equal(t, next, got)
}

func TestApplyRejectsWrongLength(t *testing.T) {
	base := make([]byte, wplace.ChunkLength)
	enc := getEncoder()
	compressed := enc.EncodeAll([]byte{1, 2, 3}, nil)
	err := Apply(base, compressed)
	require.Error(t, err)
}
