package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/braheezy/shine-mp3/pkg/mp3"
)

// Encoder names accepted in configuration.
const (
	EncoderBuiltin = "builtin"
	EncoderFFmpeg  = "ffmpeg"
)

// EncoderByName returns the factory for a configured encoder. An empty name
// selects the built-in encoder.
func EncoderByName(name string, host *Host) (EncoderFactory, error) {
	switch name {
	case "", EncoderBuiltin:
		return NewMP3Encoder, nil
	case EncoderFFmpeg:
		if host == nil {
			return nil, ErrHostCodecUnavailable
		}
		return host.NewEncoder, nil
	}
	return nil, fmt.Errorf("unknown mp3 encoder %q", name)
}

// NewMP3Encoder starts an in-process layer III encoder. It encodes at the
// library's fixed bitrate and writes no tags.
func NewMP3Encoder(_ context.Context, opts EncoderOptions) (Encoder, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &shineEncoder{enc: mp3.NewEncoder(opts.SampleRate, 1)}, nil
}

type shineEncoder struct {
	enc  *mp3.Encoder
	out  bytes.Buffer
	done bool
}

func (e *shineEncoder) EncodeBlock(samples []int16) ([]byte, error) {
	if e.done {
		return nil, errors.New("encoder already flushed")
	}
	if len(samples) == 0 {
		return nil, nil
	}
	e.out.Reset()
	if err := e.enc.Write(&e.out, samples); err != nil {
		return nil, fmt.Errorf("mp3 encode: %w", err)
	}
	return bytes.Clone(e.out.Bytes()), nil
}

// Flush ends the stream. Every block is written out as whole frames, so
// nothing is buffered.
func (e *shineEncoder) Flush() ([]byte, error) {
	e.done = true
	return nil, nil
}

func (e *shineEncoder) Close() error {
	e.done = true
	e.enc = nil
	return nil
}
