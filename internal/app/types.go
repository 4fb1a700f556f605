package app

import (
	"context"
	"log/slog"
	"sync"

	"kleinpress/internal/compression/audio"
	"kleinpress/internal/config"
	"kleinpress/internal/database"
	"kleinpress/internal/pipeline"
)

// EventEmitter publishes an event to the frontend.
type EventEmitter func(ctx context.Context, name string, data ...interface{})

// Event names
const (
	EventRunProgress  = "compression:progress"
	EventFileProgress = "file:progress"
	EventStatsUpdate  = "stats:update"
)

// App represents the main application structure
type App struct {
	ctx          context.Context
	config       *config.Config
	logger       *slog.Logger
	db           *database.Database
	lock         *config.InstanceLock
	host         *audio.Host
	orchestrator *pipeline.Orchestrator
	emit         EventEmitter

	mu         sync.Mutex
	stats      *AppStats
	lastResult *pipeline.RunResult
}

// FileUpload represents uploaded file data
type FileUpload struct {
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	Data      []byte `json:"data"`
}

// CompressionRequest selects files by path or by uploaded content.
type CompressionRequest struct {
	Pipeline string       `json:"pipeline"`
	Level    string       `json:"level"`
	Paths    []string     `json:"paths"`
	Uploads  []FileUpload `json:"uploads"`
}

// CompressionResponse represents the result of a compression operation
type CompressionResponse struct {
	Success            bool                  `json:"success"`
	RunID              string                `json:"run_id,omitempty"`
	FileName           string                `json:"file_name,omitempty"`
	Pipeline           string                `json:"pipeline"`
	Level              string                `json:"level"`
	Files              []pipeline.FileReport `json:"files"`
	TotalFiles         int                   `json:"total_files"`
	OriginalTotalBytes int64                 `json:"original_total_bytes"`
	NewTotalBytes      int64                 `json:"new_total_bytes"`
	ReductionPercent   float64               `json:"reduction_percent"`
	SavedPath          string                `json:"saved_path,omitempty"`
	Error              string                `json:"error,omitempty"`
}

// AppStats holds application statistics
type AppStats struct {
	TotalFilesCompressed   int64 `json:"total_files_compressed"`
	TotalDataSaved         int64 `json:"total_data_saved"`
	TotalRuns              int64 `json:"total_runs"`
	SessionFilesCompressed int   `json:"session_files_compressed"`
	SessionDataSaved       int64 `json:"session_data_saved"`
}

// AppStatus is reported to the frontend's about panel.
type AppStatus struct {
	Status          string               `json:"status"`
	AppName         string               `json:"app_name"`
	State           pipeline.State       `json:"state"`
	DataDir         string               `json:"data_dir"`
	OutputDir       string               `json:"output_dir"`
	Codecs          []audio.BinaryStatus `json:"codecs"`
	MP3Encoder      string               `json:"mp3_encoder"`
	FFmpegAvailable bool                 `json:"ffmpeg_available"`
	MaxWorkers      int                  `json:"max_workers"`
	FileTimeoutSecs int                  `json:"file_timeout_seconds"`
}
