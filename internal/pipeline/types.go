package pipeline

import (
	"context"
	"errors"
	"time"

	"kleinpress/internal/compression"
)

var (
	ErrRunInProgress = errors.New("a run is already in progress")
	ErrNoFiles       = errors.New("no files selected")
)

// State is the orchestrator's position in its run lifecycle.
type State int

const (
	StateIdle State = iota
	StatePreviewing
	StateProcessing
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreviewing:
		return "previewing"
	case StateProcessing:
		return "processing"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// MarshalText lets states travel as strings to the frontend.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Request selects the files, pipeline and level of one run.
type Request struct {
	Pipeline compression.Pipeline
	Level    compression.Level
	Files    []compression.InputFile
}

func (r Request) validate() error {
	if _, err := compression.ParsePipeline(string(r.Pipeline)); err != nil {
		return err
	}
	if !r.Level.Valid() {
		return compression.ErrUnknownLevel
	}
	if len(r.Files) == 0 {
		return ErrNoFiles
	}
	return nil
}

// Preview holds the estimates shown before a run is confirmed.
type Preview struct {
	Pipeline  compression.Pipeline       `json:"pipeline"`
	Level     compression.Level          `json:"level"`
	Files     []compression.SizeEstimate `json:"files"`
	Aggregate compression.SizeEstimate   `json:"aggregate"`
}

// Progress stages.
const (
	StageStarted   = "started"
	StageFileDone  = "file_done"
	StageFallback  = "file_fallback"
	StageArchiving = "archiving"
	StageComplete  = "complete"
)

// ProgressEvent reports run progress. Percent follows completed/total
// scaled to 90 while files are processed and reaches 100 only when the
// downloadable result is ready.
type ProgressEvent struct {
	RunID     string `json:"run_id"`
	FileID    string `json:"file_id,omitempty"`
	File      string `json:"file,omitempty"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Percent   int    `json:"percent"`
	Stage     string `json:"stage"`
}

// ProgressFunc receives progress events from a single goroutine.
type ProgressFunc func(ProgressEvent)

// FileReport describes what happened to one input file.
type FileReport struct {
	FileID        string        `json:"file_id"`
	Name          string        `json:"name"`
	OutputName    string        `json:"output_name"`
	OriginalBytes int64         `json:"original_bytes"`
	NewBytes      int64         `json:"new_bytes"`
	FellBack      bool          `json:"fell_back"`
	Error         string        `json:"error,omitempty"`
	Elapsed       time.Duration `json:"elapsed_ns"`
}

// RunResult is the downloadable artifact of a finished run.
type RunResult struct {
	RunID              string               `json:"run_id"`
	Pipeline           compression.Pipeline `json:"pipeline"`
	Level              compression.Level    `json:"level"`
	Data               []byte               `json:"-"`
	FileName           string               `json:"file_name"`
	OriginalTotalBytes int64                `json:"original_total_bytes"`
	NewTotalBytes      int64                `json:"new_total_bytes"`
	Files              []FileReport         `json:"files"`
}

// FallbackCount returns how many files were kept as their original bytes.
func (r *RunResult) FallbackCount() int {
	n := 0
	for _, f := range r.Files {
		if f.FellBack {
			n++
		}
	}
	return n
}

// ReductionPercent is the size reduction of the downloadable result.
func (r *RunResult) ReductionPercent() float64 {
	if r.OriginalTotalBytes <= 0 {
		return 0
	}
	return float64(r.OriginalTotalBytes-r.NewTotalBytes) / float64(r.OriginalTotalBytes) * 100
}

// AudioTranscoder is the audio step of the audio pipeline.
type AudioTranscoder interface {
	Transcode(ctx context.Context, file compression.InputFile, cfg compression.AudioConfig) (*compression.TranscodeResult, error)
}
