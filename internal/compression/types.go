package compression

import (
	"fmt"
	"strings"
)

// Pipeline selects one of the independent transformation flows.
type Pipeline string

const (
	PipelineImage Pipeline = "image"
	PipelineAudio Pipeline = "audio"
	PipelinePDF   Pipeline = "pdf"
	PipelineWebP  Pipeline = "webp"
)

// Pipelines lists every supported pipeline in display order.
var Pipelines = []Pipeline{PipelineImage, PipelineAudio, PipelinePDF, PipelineWebP}

// ParsePipeline converts a user-facing name into a Pipeline.
func ParsePipeline(value string) (Pipeline, error) {
	switch Pipeline(strings.ToLower(strings.TrimSpace(value))) {
	case PipelineImage:
		return PipelineImage, nil
	case PipelineAudio:
		return PipelineAudio, nil
	case PipelinePDF:
		return PipelinePDF, nil
	case PipelineWebP:
		return PipelineWebP, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPipeline, value)
}

func (p Pipeline) String() string {
	return string(p)
}

// Level is the operator-selected compression aggressiveness.
type Level int

const (
	LevelLow Level = iota
	LevelMedium
	LevelHigh

	levelCount
)

// Levels lists every level from least to most aggressive.
var Levels = []Level{LevelLow, LevelMedium, LevelHigh}

var levelNames = [levelCount]string{
	LevelLow:    "low",
	LevelMedium: "medium",
	LevelHigh:   "high",
}

// ParseLevel converts "low", "medium" or "high" into a Level.
func ParseLevel(value string) (Level, error) {
	cleaned := strings.ToLower(strings.TrimSpace(value))
	for i, name := range levelNames {
		if name == cleaned {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, value)
}

func (l Level) String() string {
	if l < 0 || l >= levelCount {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool {
	return l >= 0 && l < levelCount
}

// MarshalText implements encoding.TextMarshaler so levels travel as strings
// through JSON and TOML.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLevel, int(l))
	}
	return []byte(levelNames[l]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ImageConfig controls the raster image compressor for one level.
type ImageConfig struct {
	MaxSizeMB   float64 `json:"max_size_mb"`
	MaxLongEdge int     `json:"max_long_edge"`
	Quality     float64 `json:"quality"`
}

// AudioConfig controls the audio transcoder for one level. Channels is
// carried for reporting only; output is always mono.
type AudioConfig struct {
	BitrateKbps  int `json:"bitrate_kbps"`
	SampleRateHz int `json:"sample_rate_hz"`
	Channels     int `json:"channels"`
}

var imageConfigs = [levelCount]ImageConfig{
	LevelLow:    {MaxSizeMB: 2.0, MaxLongEdge: 2560, Quality: 0.90},
	LevelMedium: {MaxSizeMB: 1.0, MaxLongEdge: 1920, Quality: 0.75},
	LevelHigh:   {MaxSizeMB: 0.5, MaxLongEdge: 1280, Quality: 0.60},
}

var audioConfigs = [levelCount]AudioConfig{
	LevelLow:    {BitrateKbps: 192, SampleRateHz: 44100, Channels: 2},
	LevelMedium: {BitrateKbps: 128, SampleRateHz: 22050, Channels: 1},
	LevelHigh:   {BitrateKbps: 64, SampleRateHz: 16000, Channels: 1},
}

// ImageConfigFor returns the image settings for level. Out-of-range levels
// fall back to medium.
func ImageConfigFor(level Level) ImageConfig {
	if !level.Valid() {
		level = LevelMedium
	}
	return imageConfigs[level]
}

// AudioConfigFor returns the audio settings for level. Out-of-range levels
// fall back to medium.
func AudioConfigFor(level Level) AudioConfig {
	if !level.Valid() {
		level = LevelMedium
	}
	return audioConfigs[level]
}

// WebPQualityFor returns the WebP quality factor in (0,1] for level.
func WebPQualityFor(level Level) float64 {
	return ImageConfigFor(level).Quality
}

// InputFile is one user-selected file. It is never mutated once built.
type InputFile struct {
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	Data      []byte `json:"-"`
}

// Size returns the byte length of the file.
func (f InputFile) Size() int64 {
	return int64(len(f.Data))
}

// TranscodeResult is the output of one pipeline step for one file.
type TranscodeResult struct {
	Data         []byte
	OriginalSize int64
	Extension    string
}

// Size returns the byte length of the produced output.
func (r *TranscodeResult) Size() int64 {
	if r == nil {
		return 0
	}
	return int64(len(r.Data))
}
