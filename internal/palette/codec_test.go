package palette

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bczhc/wplace-archiver/internal/wplace"
)

func TestRoundTrip(t *testing.T) {
	buf := make([]byte, wplace.ChunkLength)
	for i := range buf {
		buf[i] = byte(i % 64)
	}

	var out bytes.Buffer
	require.NoError(t, EncodeChunk(&out, buf))

	decoded := make([]byte, wplace.ChunkLength)
	require.NoError(t, DecodeChunk(bytes.NewReader(out.Bytes()), decoded))

	require.Equal(t, buf, decoded)
}

func TestRoundTripAllTransparent(t *testing.T) {
	buf := make([]byte, wplace.ChunkLength)

	var out bytes.Buffer
	require.NoError(t, EncodeChunk(&out, buf))

	decoded := make([]byte, wplace.ChunkLength)
	require.NoError(t, DecodeChunk(bytes.NewReader(out.Bytes()), decoded))

	require.Equal(t, buf, decoded)
}

func TestDecodeWrongDimensions(t *testing.T) {
	buf := make([]byte, 10*10)
	var out bytes.Buffer
	require.NoError(t, Encode(&out, 10, 10, buf))

	decoded := make([]byte, wplace.ChunkLength)
	err := DecodeChunk(bytes.NewReader(out.Bytes()), decoded)
	require.Error(t, err)
}

func TestEncodeStitchedDimensions(t *testing.T) {
	width, height := 2000, 1000
	buf := make([]byte, width*height)
	for i := range buf {
		buf[i] = byte((i / 7) % 64)
	}

	var out bytes.Buffer
	require.NoError(t, Encode(&out, width, height, buf))

	decoded := make([]byte, width*height)
	require.NoError(t, Decode(bytes.NewReader(out.Bytes()), width, height, decoded))
	require.Equal(t, buf, decoded)
}
