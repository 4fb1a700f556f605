package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Encoder turns mono 16-bit PCM into MP3 bytes. Each call returns whatever
// the encoder emitted so far, which may be empty.
type Encoder interface {
	EncodeBlock(samples []int16) ([]byte, error)
	Flush() ([]byte, error)
	Close() error
}

// EncoderOptions configures one encoder instance.
type EncoderOptions struct {
	// SampleRate is the rate of the PCM handed to EncodeBlock and of the
	// MP3 produced. It must be one of the layer III rates.
	SampleRate  int
	BitrateKbps int
	Tags        map[string]string
}

func (o EncoderOptions) validate() error {
	if o.SampleRate <= 0 || SnapSampleRate(o.SampleRate) != o.SampleRate {
		return fmt.Errorf("sample rate %d Hz is not an MP3 rate", o.SampleRate)
	}
	return nil
}

// EncoderFactory starts a new encoder.
type EncoderFactory func(ctx context.Context, opts EncoderOptions) (Encoder, error)

// NewEncoder starts a streaming libmp3lame encoder. Unlike the built-in
// encoder it honors BitrateKbps and writes Tags as ID3v2.
func (h *Host) NewEncoder(ctx context.Context, opts EncoderOptions) (Encoder, error) {
	if !h.Available() {
		return nil, ErrHostCodecUnavailable
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	rate := strconv.Itoa(opts.SampleRate)
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "s16le", "-ar", rate, "-ac", "1",
		"-i", "pipe:0",
	}
	args = append(args, metadataArgs(opts.Tags)...)
	args = append(args,
		"-codec:a", "libmp3lame",
		"-b:a", strconv.Itoa(ClampBitrate(opts.BitrateKbps, opts.SampleRate))+"k",
		"-ar", rate,
		"-write_xing", "0",
		"-id3v2_version", "3",
		"-f", "mp3", "pipe:1",
	)

	cmd := exec.CommandContext(ctx, h.FFmpegPath, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	enc := &ffmpegEncoder{cmd: cmd, stdin: stdin, done: make(chan struct{})}
	cmd.Stderr = &enc.stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	go enc.drain(stdout)
	return enc, nil
}

func metadataArgs(tags map[string]string) []string {
	keys := make([]string, 0, len(tags))
	for k, v := range tags {
		if strings.TrimSpace(v) != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	args := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		args = append(args, "-metadata", k+"="+tags[k])
	}
	return args
}

type ffmpegEncoder struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	done  chan struct{}

	mu      sync.Mutex
	pending []byte
	readErr error

	stderr  lockedBuffer
	scratch []byte
	waited  bool
	waitErr error
}

func (e *ffmpegEncoder) drain(stdout io.Reader) {
	defer close(e.done)
	buf := make([]byte, 32*1024)
	for {
		n, err := stdout.Read(buf)
		if n > 0 {
			e.mu.Lock()
			e.pending = append(e.pending, buf[:n]...)
			e.mu.Unlock()
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				e.mu.Lock()
				e.readErr = err
				e.mu.Unlock()
			}
			return
		}
	}
}

func (e *ffmpegEncoder) take() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.pending
	e.pending = nil
	return out
}

func (e *ffmpegEncoder) EncodeBlock(samples []int16) ([]byte, error) {
	if e.waited {
		return nil, errors.New("encoder already flushed")
	}
	size := 2 * len(samples)
	if cap(e.scratch) < size {
		e.scratch = make([]byte, size)
	}
	raw := e.scratch[:size]
	for i, s := range samples {
		binary.LittleEndian.PutUint16(raw[2*i:], uint16(s))
	}
	if _, err := e.stdin.Write(raw); err != nil {
		return nil, fmt.Errorf("ffmpeg encode: %w: %s", err, e.stderr.String())
	}
	return e.take(), nil
}

func (e *ffmpegEncoder) Flush() ([]byte, error) {
	if e.waited {
		return e.take(), e.waitErr
	}
	e.stdin.Close()
	<-e.done
	e.waited = true
	if err := e.cmd.Wait(); err != nil {
		e.waitErr = fmt.Errorf("ffmpeg encode: %w: %s", err, strings.TrimSpace(e.stderr.String()))
		return nil, e.waitErr
	}
	e.mu.Lock()
	readErr := e.readErr
	e.mu.Unlock()
	if readErr != nil {
		e.waitErr = fmt.Errorf("ffmpeg output: %w", readErr)
		return nil, e.waitErr
	}
	return e.take(), nil
}

// Close stops the process if Flush was never reached.
func (e *ffmpegEncoder) Close() error {
	if e.waited {
		return nil
	}
	e.waited = true
	e.stdin.Close()
	if e.cmd.Process != nil {
		_ = e.cmd.Process.Kill()
	}
	<-e.done
	_ = e.cmd.Wait()
	return nil
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
