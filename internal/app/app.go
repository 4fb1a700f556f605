package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"kleinpress/internal/compression"
	"kleinpress/internal/config"
	"kleinpress/internal/database"
	"kleinpress/internal/pipeline"
)

// NewApp creates a new application instance
func NewApp() *App {
	return &App{
		emit:  wailsruntime.EventsEmit,
		stats: &AppStats{},
	}
}

// OnStartup is called when the app context is ready
func (a *App) OnStartup(ctx context.Context) {
	a.ctx = ctx

	cfg, path, exists, err := config.Load("")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		defaults := config.Default()
		cfg = &defaults
	}
	a.config = cfg

	svc, err := buildServices(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		return
	}
	a.attach(svc)
	a.logger.Info("Wails app initialized successfully", "config_path", path, "config_file_found", exists)
	a.loadPersistedStats()
}

// OnShutdown releases the database and the instance lock.
func (a *App) OnShutdown(ctx context.Context) {
	if a.orchestrator != nil {
		a.orchestrator.Cancel()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("Failed to close database", "error", err)
		}
	}
	if err := a.lock.Release(); err != nil && a.logger != nil {
		a.logger.Warn("Failed to release instance lock", "error", err)
	}
}

func (a *App) attach(svc *services) {
	a.logger = svc.logger
	a.db = svc.db
	a.lock = svc.lock
	a.host = svc.host
	a.orchestrator = svc.orchestrator
}

func (a *App) ready() error {
	if a.orchestrator == nil {
		return errors.New("application failed to initialize, check the log for details")
	}
	return nil
}

// Estimate returns predicted sizes for the selected files.
func (a *App) Estimate(request CompressionRequest) (*pipeline.Preview, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	req, err := a.buildRequest(request)
	if err != nil {
		return nil, err
	}
	return a.orchestrator.Preview(req)
}

// Compress runs the selected pipeline and keeps the result for SaveResult.
func (a *App) Compress(request CompressionRequest) CompressionResponse {
	if err := a.ready(); err != nil {
		return CompressionResponse{Success: false, Error: err.Error()}
	}

	req, err := a.buildRequest(request)
	if err != nil {
		a.logger.Error("Compression request validation failed", "error", err)
		return CompressionResponse{Success: false, Error: err.Error()}
	}

	result, err := a.orchestrator.Run(a.ctx, req, a.publishProgress)
	if err != nil {
		a.logger.Error("Compression failed", "pipeline", req.Pipeline, "error", err)
		return CompressionResponse{
			Success:  false,
			Pipeline: req.Pipeline.String(),
			Level:    req.Level.String(),
			Error:    userMessage(err),
		}
	}

	a.mu.Lock()
	a.lastResult = result
	a.mu.Unlock()
	a.recordRun(result)

	response := CompressionResponse{
		Success:            true,
		RunID:              result.RunID,
		FileName:           result.FileName,
		Pipeline:           result.Pipeline.String(),
		Level:              result.Level.String(),
		Files:              result.Files,
		TotalFiles:         len(result.Files),
		OriginalTotalBytes: result.OriginalTotalBytes,
		NewTotalBytes:      result.NewTotalBytes,
		ReductionPercent:   result.ReductionPercent(),
	}

	prefs, err := a.db.GetPreferences()
	if err == nil && prefs.AutoDownloadEnabled {
		saved, err := a.SaveResult(prefs.DefaultDownloadFolder)
		if err != nil {
			a.logger.Warn("Automatic save failed", "error", err)
		} else {
			response.SavedPath = saved
		}
	}
	return response
}

// Cancel stops the active run.
func (a *App) Cancel() {
	if a.orchestrator != nil {
		a.orchestrator.Cancel()
	}
}

// Reset discards the last result.
func (a *App) Reset() error {
	if err := a.ready(); err != nil {
		return err
	}
	a.mu.Lock()
	a.lastResult = nil
	a.mu.Unlock()
	return a.orchestrator.Reset()
}

// GetAppStatus returns application status information
func (a *App) GetAppStatus() AppStatus {
	status := AppStatus{Status: "running", AppName: "KleinPress"}
	if a.config != nil {
		status.DataDir = a.config.Paths.DataDir
		status.OutputDir = a.config.Paths.OutputDir
		status.MaxWorkers = a.config.Processing.MaxWorkers
		status.FileTimeoutSecs = a.config.Processing.FileTimeoutSeconds
		status.MP3Encoder = a.config.Codecs.MP3Encoder
	}
	if a.orchestrator == nil {
		status.Status = "unavailable"
		return status
	}
	status.State = a.orchestrator.State()
	status.Codecs = a.host.Check()
	status.FFmpegAvailable = a.host.Available()
	return status
}

// GetStats returns application statistics
func (a *App) GetStats() AppStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return *a.stats
}

func (a *App) buildRequest(request CompressionRequest) (pipeline.Request, error) {
	p, err := a.resolvePipeline(request.Pipeline)
	if err != nil {
		return pipeline.Request{}, err
	}
	level, err := a.resolveCompressionLevel(request.Level)
	if err != nil {
		return pipeline.Request{}, err
	}

	files, err := compression.ReadInputFiles(request.Paths)
	if err != nil {
		return pipeline.Request{}, err
	}
	for _, upload := range request.Uploads {
		files = append(files, compression.InputFile{Name: upload.Name, MediaType: upload.MediaType, Data: upload.Data})
	}
	return pipeline.Request{Pipeline: p, Level: level, Files: files}, nil
}

// resolvePipeline resolves the pipeline from request or preferences
func (a *App) resolvePipeline(requested string) (compression.Pipeline, error) {
	if strings.TrimSpace(requested) != "" {
		return compression.ParsePipeline(requested)
	}
	prefs, err := a.db.GetPreferences()
	if err != nil {
		a.logger.Warn("Failed to load preferences, using default pipeline", "error", err)
		return compression.PipelineImage, nil
	}
	return compression.ParsePipeline(prefs.DefaultPipeline)
}

// resolveCompressionLevel resolves the compression level from request or preferences
func (a *App) resolveCompressionLevel(requested string) (compression.Level, error) {
	if strings.TrimSpace(requested) != "" {
		return compression.ParseLevel(requested)
	}
	prefs, err := a.db.GetPreferences()
	if err != nil {
		a.logger.Warn("Failed to load preferences, using default compression level", "error", err)
		return compression.LevelMedium, nil
	}
	return compression.ParseLevel(prefs.DefaultCompressionLevel)
}

func (a *App) publishProgress(event pipeline.ProgressEvent) {
	if event.FileID != "" {
		a.emit(a.ctx, EventFileProgress, event)
	}
	a.emit(a.ctx, EventRunProgress, event)
}

func (a *App) recordRun(result *pipeline.RunResult) {
	saved := max(result.OriginalTotalBytes-result.NewTotalBytes, 0)

	a.mu.Lock()
	a.stats.SessionFilesCompressed += len(result.Files)
	a.stats.SessionDataSaved += saved
	a.stats.TotalFilesCompressed += int64(len(result.Files))
	a.stats.TotalDataSaved += saved
	a.stats.TotalRuns++
	stats := *a.stats
	a.mu.Unlock()

	err := a.db.RecordRun(database.RunRecord{
		ID:            result.RunID,
		Pipeline:      result.Pipeline.String(),
		Level:         result.Level.String(),
		FileCount:     len(result.Files),
		FailedCount:   result.FallbackCount(),
		OriginalBytes: result.OriginalTotalBytes,
		NewBytes:      result.NewTotalBytes,
		ResultName:    result.FileName,
	})
	if err != nil {
		a.logger.Warn("Failed to persist run statistics", "error", err)
	}
	a.emit(a.ctx, EventStatsUpdate, stats)
}

func (a *App) loadPersistedStats() {
	totals, err := a.db.Totals()
	if err != nil {
		a.logger.Warn("Failed to load statistics", "error", err)
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.TotalFilesCompressed = totals.Files
	a.stats.TotalDataSaved = totals.Saved()
	a.stats.TotalRuns = totals.Runs
}

// userMessage keeps the codec hint and drops wrapping noise for the UI.
func userMessage(err error) string {
	var ce *compression.CompressionError
	if errors.As(err, &ce) {
		return ce.Error()
	}
	if errors.Is(err, context.Canceled) {
		return "compression canceled"
	}
	return fmt.Sprintf("compression failed: %v", err)
}
