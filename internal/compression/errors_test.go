package compression

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompressionError_Is(t *testing.T) {
	err := NewCompressionError("transcode audio", "voice.amr", "audio/amr", ErrUnsupportedCodec, io.ErrUnexpectedEOF)

	assert.ErrorIs(t, err, ErrUnsupportedCodec)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.False(t, errors.Is(err, ErrDecode))

	var ce *CompressionError
	assert.True(t, errors.As(err, &ce))
	assert.Equal(t, "voice.amr", ce.File)
}

func TestCompressionError_UnsupportedCodecMessage(t *testing.T) {
	err := NewCompressionError("transcode audio", "voice.amr", "audio/amr", ErrUnsupportedCodec, nil)

	assert.Contains(t, err.Error(), "audio/amr")
	assert.Contains(t, err.Error(), "use MP3 or WAV")
}

func TestCompressionError_NoDataIsDistinct(t *testing.T) {
	noData := NewCompressionError("transcode audio", "a.wav", "audio/wav", ErrEncodingProducedNoData, nil)
	empty := NewCompressionError("transcode audio", "a.wav", "audio/wav", ErrEmptyAudio, nil)

	assert.Contains(t, noData.Error(), "encoder produced no data")
	assert.NotEqual(t, noData.Error(), empty.Error())
	assert.False(t, errors.Is(noData, ErrEmptyAudio))
}
