// Package audio decodes arbitrary recordings and re-encodes them as mono MP3.
package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"kleinpress/internal/compression"
)

const opTranscode = "transcode audio"

var errRateTooLow = fmt.Errorf("sample rate below the %d Hz MP3 minimum", MinSampleRate)

// Transcoder converts audio files to MP3 at a level's bitrate and rate.
type Transcoder struct {
	logger     *slog.Logger
	host       *Host
	newEncoder EncoderFactory
}

// Option customizes a Transcoder.
type Option func(*Transcoder)

// WithEncoderFactory replaces the built-in MP3 encoder.
func WithEncoderFactory(factory EncoderFactory) Option {
	return func(t *Transcoder) {
		t.newEncoder = factory
	}
}

// NewTranscoder creates a transcoder that encodes in process and falls back
// to host for formats the native decoders do not read.
func NewTranscoder(logger *slog.Logger, host *Host, opts ...Option) *Transcoder {
	if logger == nil {
		logger = slog.Default()
	}
	if host == nil {
		host = NewHost("", "")
	}
	t := &Transcoder{logger: logger, host: host, newEncoder: NewMP3Encoder}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transcode decodes file, downmixes it to mono, lowers the sample rate to
// at most cfg.SampleRateHz and encodes MP3 in BlockSize sample blocks.
func (t *Transcoder) Transcode(ctx context.Context, file compression.InputFile, cfg compression.AudioConfig) (*compression.TranscodeResult, error) {
	mediaType := compression.ResolveMediaType(file.MediaType, file.Data)

	decoded, err := t.decode(ctx, file.Data)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, compression.NewCompressionError(opTranscode, file.Name, mediaType, compression.ErrUnsupportedCodec, err)
	}
	if decoded.Duration() <= 0 {
		return nil, compression.NewCompressionError(opTranscode, file.Name, mediaType, compression.ErrEmptyAudio, nil)
	}

	mono := Downmix(decoded)
	target := mono.SampleRate
	if cfg.SampleRateHz > 0 {
		target = min(target, cfg.SampleRateHz)
	}
	rate := SnapSampleRate(target)
	if rate == 0 {
		err := fmt.Errorf("%w: %d Hz", errRateTooLow, decoded.SampleRate)
		return nil, compression.NewCompressionError(opTranscode, file.Name, mediaType, compression.ErrUnsupportedCodec, err)
	}
	mono = Resample(mono, rate)
	pcm := FloatToInt16(mono.Samples)

	opts := EncoderOptions{
		SampleRate:  mono.SampleRate,
		BitrateKbps: cfg.BitrateKbps,
		Tags:        ReadTags(file.Data),
	}
	data, err := t.encode(ctx, pcm, opts)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, compression.NewCompressionError(opTranscode, file.Name, mediaType, compression.ErrEncode, err)
	}
	if len(data) == 0 {
		return nil, compression.NewCompressionError(opTranscode, file.Name, mediaType, compression.ErrEncodingProducedNoData, nil)
	}

	t.logger.Debug("audio transcoded",
		slog.String("file", file.Name),
		slog.Int("source_rate", decoded.SampleRate),
		slog.Int("source_channels", decoded.Channels),
		slog.Int("output_rate", opts.SampleRate),
		slog.Int64("original_size", file.Size()),
		slog.Int("compressed_size", len(data)),
	)

	return &compression.TranscodeResult{
		Data:         data,
		OriginalSize: file.Size(),
		Extension:    ".mp3",
	}, nil
}

func (t *Transcoder) decode(ctx context.Context, data []byte) (*Buffer, error) {
	buf, err := decodeNative(data)
	if err == nil {
		return buf, nil
	}
	if !t.host.Available() {
		return nil, err
	}

	t.logger.Debug("native audio decode failed, trying ffmpeg", slog.Any("error", err))
	hostBuf, hostErr := t.host.DecodePCM(ctx, data)
	if hostErr != nil {
		return nil, errors.Join(err, hostErr)
	}
	return hostBuf, nil
}

func (t *Transcoder) encode(ctx context.Context, pcm []int16, opts EncoderOptions) ([]byte, error) {
	enc, err := t.newEncoder(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer enc.Close()

	var chunks [][]byte
	total := 0
	for start := 0; start < len(pcm); start += BlockSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+BlockSize, len(pcm))
		chunk, err := enc.EncodeBlock(pcm[start:end])
		if err != nil {
			return nil, fmt.Errorf("block at sample %d: %w", start, err)
		}
		if len(chunk) > 0 {
			chunks = append(chunks, chunk)
			total += len(chunk)
		}
	}

	tail, err := enc.Flush()
	if err != nil {
		return nil, fmt.Errorf("flush: %w", err)
	}
	if len(tail) > 0 {
		chunks = append(chunks, tail)
		total += len(tail)
	}

	out := make([]byte, 0, total)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out, nil
}
