package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

var errNoNativeDecoder = errors.New("no native decoder for format")

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// decodeNative decodes the formats that have a pure Go decoder. It returns
// errNoNativeDecoder when the sniffed container is something else.
func decodeNative(data []byte) (*Buffer, error) {
	kind := mimetype.Detect(data)
	switch {
	case kind.Is("audio/wav"):
		return decodeWAV(data)
	case kind.Is("audio/mpeg"):
		return decodeMP3(data)
	case kind.Is("audio/flac"):
		return decodeFLAC(data)
	case kind.Is("audio/ogg"):
		return decodeVorbis(data)
	}
	return nil, fmt.Errorf("%w: %s", errNoNativeDecoder, kind.String())
}

func decodeWAV(data []byte) (*Buffer, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, errors.New("wav: invalid file")
	}
	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("%w: wav format %d", errNoNativeDecoder, dec.WavAudioFormat)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("wav: %w", err)
	}
	return fromIntBuffer(pcm, int(dec.BitDepth)), nil
}

func fromIntBuffer(pcm *goaudio.IntBuffer, bitDepth int) *Buffer {
	out := &Buffer{
		SampleRate: pcm.Format.SampleRate,
		Channels:   pcm.Format.NumChannels,
		Samples:    make([]float32, len(pcm.Data)),
	}
	if bitDepth == 8 {
		// 8-bit WAV is unsigned with a 128 midpoint
		for i, v := range pcm.Data {
			out.Samples[i] = float32(v-128) / 128
		}
		return out
	}
	if bitDepth <= 0 || bitDepth > 32 {
		bitDepth = 16
	}
	scale := float32(int64(1) << (bitDepth - 1))
	for i, v := range pcm.Data {
		out.Samples[i] = float32(v) / scale
	}
	return out
}

func decodeMP3(data []byte) (*Buffer, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}

	// go-mp3 always yields 16-bit little endian stereo
	n := len(raw) / 2
	out := &Buffer{SampleRate: dec.SampleRate(), Channels: 2, Samples: make([]float32, n)}
	for i := 0; i < n; i++ {
		v := int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8)
		out.Samples[i] = float32(v) / 32768
	}
	return out, nil
}

func decodeFLAC(data []byte) (*Buffer, error) {
	stream, err := flac.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("flac: %w", err)
	}
	defer stream.Close()

	channels := int(stream.Info.NChannels)
	if channels == 0 || stream.Info.BitsPerSample == 0 {
		return nil, errors.New("flac: missing stream info")
	}
	scale := float32(int64(1) << (stream.Info.BitsPerSample - 1))
	out := &Buffer{SampleRate: int(stream.Info.SampleRate), Channels: channels}
	if stream.Info.NSamples > 0 {
		out.Samples = make([]float32, 0, int(stream.Info.NSamples)*channels)
	}

	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("flac: %w", err)
		}
		if len(frame.Subframes) != channels {
			return nil, fmt.Errorf("flac: frame has %d channels, stream has %d", len(frame.Subframes), channels)
		}
		for i := range frame.Subframes[0].Samples {
			for c := 0; c < channels; c++ {
				out.Samples = append(out.Samples, float32(frame.Subframes[c].Samples[i])/scale)
			}
		}
	}
	return out, nil
}

func decodeVorbis(data []byte) (*Buffer, error) {
	samples, format, err := oggvorbis.ReadAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("vorbis: %w", err)
	}
	return &Buffer{SampleRate: format.SampleRate, Channels: format.Channels, Samples: samples}, nil
}
