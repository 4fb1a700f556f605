package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"log/slog"
	"math"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// wavBytes builds a PCM WAV file. samples are interleaved and already in the
// integer range of bits.
func wavBytes(t *testing.T, rate, channels, bits int, samples []int) []byte {
	t.Helper()
	bytesPerSample := bits / 8
	dataSize := len(samples) * bytesPerSample

	var buf bytes.Buffer
	le := binary.LittleEndian
	buf.WriteString("RIFF")
	binary.Write(&buf, le, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, le, uint32(16))
	binary.Write(&buf, le, uint16(1))
	binary.Write(&buf, le, uint16(channels))
	binary.Write(&buf, le, uint32(rate))
	binary.Write(&buf, le, uint32(rate*channels*bytesPerSample))
	binary.Write(&buf, le, uint16(channels*bytesPerSample))
	binary.Write(&buf, le, uint16(bits))
	buf.WriteString("data")
	binary.Write(&buf, le, uint32(dataSize))
	for _, s := range samples {
		switch bits {
		case 8:
			buf.WriteByte(byte(s))
		case 16:
			binary.Write(&buf, le, int16(s))
		default:
			t.Fatalf("unsupported bit depth %d", bits)
		}
	}
	return buf.Bytes()
}

// sineWAV returns a 16-bit WAV holding a 440 Hz tone on every channel.
func sineWAV(t *testing.T, rate, channels int, seconds float64) []byte {
	t.Helper()
	frames := int(float64(rate) * seconds)
	samples := make([]int, 0, frames*channels)
	for i := 0; i < frames; i++ {
		v := int(math.Sin(2*math.Pi*440*float64(i)/float64(rate)) * 0.5 * 32767)
		for c := 0; c < channels; c++ {
			samples = append(samples, v)
		}
	}
	return wavBytes(t, rate, channels, 16, samples)
}

// fakeEncoder records block sizes and emits one byte per block after the
// first, mimicking an encoder with internal buffering.
type fakeEncoder struct {
	opts    EncoderOptions
	blocks  []int
	flushed bool
	closed  bool
	silent  bool
}

func (f *fakeEncoder) EncodeBlock(samples []int16) ([]byte, error) {
	f.blocks = append(f.blocks, len(samples))
	if f.silent || len(f.blocks) == 1 {
		return nil, nil
	}
	return []byte{0xFF}, nil
}

func (f *fakeEncoder) Flush() ([]byte, error) {
	f.flushed = true
	if f.silent {
		return nil, nil
	}
	return []byte{0xEE, 0xEE}, nil
}

func (f *fakeEncoder) Close() error {
	f.closed = true
	return nil
}

func fakeFactory(enc *fakeEncoder) EncoderFactory {
	return func(_ context.Context, opts EncoderOptions) (Encoder, error) {
		enc.opts = opts
		return enc, nil
	}
}
