package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ErrHostCodecUnavailable is returned when ffmpeg is not installed.
var ErrHostCodecUnavailable = errors.New("ffmpeg not available")

// Host runs the ffmpeg and ffprobe binaries for formats without a native
// decoder and for MP3 encoding.
type Host struct {
	FFmpegPath  string
	FFprobePath string
}

// NewHost returns a Host using the given binaries, falling back to the names
// on PATH when empty.
func NewHost(ffmpegPath, ffprobePath string) *Host {
	ffmpegPath = strings.TrimSpace(ffmpegPath)
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	ffprobePath = strings.TrimSpace(ffprobePath)
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Host{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath}
}

// Available reports whether ffmpeg can be found.
func (h *Host) Available() bool {
	if h == nil {
		return false
	}
	_, err := exec.LookPath(h.FFmpegPath)
	return err == nil
}

// BinaryStatus reports the availability of one external binary.
type BinaryStatus struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Check evaluates both binaries. Both are optional: MP3 encoding runs in
// process by default and ffprobe only refines fallback decoding.
func (h *Host) Check() []BinaryStatus {
	reqs := []BinaryStatus{
		{Name: "FFmpeg", Command: h.FFmpegPath, Description: "Fallback decoding and the ffmpeg MP3 encoder", Optional: true},
		{Name: "FFprobe", Command: h.FFprobePath, Description: "Stream inspection for fallback decoding", Optional: true},
	}
	for i := range reqs {
		path, err := exec.LookPath(reqs[i].Command)
		if err != nil {
			reqs[i].Detail = fmt.Sprintf("binary %q not found", reqs[i].Command)
			continue
		}
		reqs[i].Available = true
		reqs[i].Detail = path
	}
	return reqs
}

// StreamInfo describes the first audio stream of a probed file.
type StreamInfo struct {
	CodecName  string
	SampleRate int
	Channels   int
	Duration   float64
}

type probeOutput struct {
	Streams []struct {
		CodecName  string `json:"codec_name"`
		CodecType  string `json:"codec_type"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
		Duration   string `json:"duration"`
	} `json:"streams"`
}

// Probe inspects the audio stream stored at path.
func (h *Host) Probe(ctx context.Context, path string) (StreamInfo, error) {
	cmd := exec.CommandContext(ctx, h.FFprobePath, "-v", "error", "-hide_banner",
		"-select_streams", "a:0", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		return StreamInfo{}, fmt.Errorf("ffprobe inspect: %w%s", err, exitDetail(err))
	}

	var parsed probeOutput
	if err := json.Unmarshal(output, &parsed); err != nil {
		return StreamInfo{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	for _, s := range parsed.Streams {
		if !strings.EqualFold(s.CodecType, "audio") {
			continue
		}
		rate, _ := strconv.Atoi(s.SampleRate)
		duration, _ := strconv.ParseFloat(s.Duration, 64)
		return StreamInfo{CodecName: s.CodecName, SampleRate: rate, Channels: s.Channels, Duration: duration}, nil
	}
	return StreamInfo{}, errors.New("ffprobe inspect: no audio stream")
}

// DecodePCM decodes any container ffmpeg understands into float samples at
// the stream's own rate and channel count.
func (h *Host) DecodePCM(ctx context.Context, data []byte) (*Buffer, error) {
	if !h.Available() {
		return nil, ErrHostCodecUnavailable
	}

	// Containers with trailing indexes cannot be read from a pipe.
	tmp, err := os.CreateTemp("", "kleinpress-audio-*")
	if err != nil {
		return nil, fmt.Errorf("create temp input: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp input: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("write temp input: %w", err)
	}

	info, err := h.Probe(ctx, tmp.Name())
	if err != nil {
		// Without ffprobe fall back to a layout ffmpeg can always produce.
		info = StreamInfo{SampleRate: 44100, Channels: 2}
	}
	if info.SampleRate <= 0 {
		info.SampleRate = 44100
	}
	if info.Channels <= 0 {
		info.Channels = 2
	}

	args := []string{
		"-hide_banner", "-loglevel", "error", "-nostdin",
		"-i", tmp.Name(),
		"-vn", "-map", "0:a:0",
		"-f", "f32le", "-acodec", "pcm_f32le",
		"-ar", strconv.Itoa(info.SampleRate),
		"-ac", strconv.Itoa(info.Channels),
		"pipe:1",
	}
	cmd := exec.CommandContext(ctx, h.FFmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	raw, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg decode: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	n := len(raw) / 4
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return &Buffer{SampleRate: info.SampleRate, Channels: info.Channels, Samples: samples}, nil
}

func exitDetail(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return ": " + strings.TrimSpace(string(exitErr.Stderr))
	}
	return ""
}
