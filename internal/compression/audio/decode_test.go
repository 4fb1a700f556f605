package audio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeWAV16(t *testing.T) {
	data := wavBytes(t, 8000, 2, 16, []int{16384, -16384, 32767, -32768})

	buf, err := decodeNative(data)
	require.NoError(t, err)

	assert.Equal(t, 8000, buf.SampleRate)
	assert.Equal(t, 2, buf.Channels)
	assert.Equal(t, 2, buf.Frames())
	assert.InDeltaSlice(t, []float64{0.5, -0.5, 1, -1}, toFloat64(buf.Samples), 1e-4)
}

func TestDecodeWAV8IsUnsigned(t *testing.T) {
	data := wavBytes(t, 8000, 1, 8, []int{128, 255, 0, 128})

	buf, err := decodeNative(data)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{0, 127.0 / 128, -1, 0}, toFloat64(buf.Samples), 1e-6)
}

func TestDecodeNative_UnknownFormat(t *testing.T) {
	_, err := decodeNative([]byte("definitely not an audio file"))
	assert.True(t, errors.Is(err, errNoNativeDecoder))
}

func TestDecodeNative_TruncatedWAV(t *testing.T) {
	data := sineWAV(t, 8000, 1, 0.1)

	_, err := decodeNative(data[:20])
	assert.Error(t, err)
}
