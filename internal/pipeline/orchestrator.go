// Package pipeline runs one selected pipeline over a set of files and
// produces a single downloadable result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"sync"
	"time"

	"kleinpress/internal/app/concurrency"
	"kleinpress/internal/common"
	"kleinpress/internal/compression"
)

const opValidate = "validate input"

// Options configures an Orchestrator.
type Options struct {
	Logger *slog.Logger
	Audio  AudioTranscoder
	// Workers caps concurrent files. Zero picks a limit from the host.
	Workers int
	// FileTimeout bounds one file's step. Zero uses common.DefaultFileTimeout,
	// a negative value disables it.
	FileTimeout time.Duration
}

// Orchestrator sequences estimators, converters and the archive builder.
// Only one run may be processing at a time.
type Orchestrator struct {
	logger  *slog.Logger
	images  *compression.ImageCompressor
	webp    *compression.WebPConverter
	audio   AudioTranscoder
	workers int
	timeout time.Duration

	mu         sync.Mutex
	state      State
	generation uint64
	cancel     context.CancelFunc
	result     *RunResult
	err        error
}

// New creates an idle orchestrator.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.FileTimeout
	switch {
	case timeout == 0:
		timeout = common.DefaultFileTimeout
	case timeout < 0:
		timeout = 0
	}
	return &Orchestrator{
		logger:  logger,
		images:  compression.NewImageCompressor(logger),
		webp:    compression.NewWebPConverter(logger),
		audio:   opts.Audio,
		workers: opts.Workers,
		timeout: timeout,
	}
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Result returns the outcome of the last finished run.
func (o *Orchestrator) Result() (*RunResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.result, o.err
}

// Preview estimates the outcome of req without touching file contents.
func (o *Orchestrator) Preview(req Request) (*Preview, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateProcessing {
		return nil, ErrRunInProgress
	}
	o.state = StatePreviewing
	o.result, o.err = nil, nil

	files, aggregate := compression.EstimateBatch(req.Files, req.Level, req.Pipeline)
	return &Preview{Pipeline: req.Pipeline, Level: req.Level, Files: files, Aggregate: aggregate}, nil
}

// Cancel stops a processing run and returns to Idle. Files already being
// processed finish in the background and their output is discarded.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateProcessing {
		return
	}
	o.cancel()
	o.generation++
	o.state = StateIdle
	o.result, o.err = nil, nil
}

// Reset discards a finished result and returns to Idle.
func (o *Orchestrator) Reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateProcessing {
		return ErrRunInProgress
	}
	o.state = StateIdle
	o.result, o.err = nil, nil
	return nil
}

// Run processes req. A single file yields the pipeline's direct output and
// its error, several files yield an archive where failed files keep their
// original bytes. progress may be nil.
func (o *Orchestrator) Run(ctx context.Context, req Request, progress ProgressFunc) (*RunResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	o.mu.Lock()
	if o.state == StateProcessing {
		o.mu.Unlock()
		return nil, ErrRunInProgress
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	o.state = StateProcessing
	o.cancel = cancel
	o.result, o.err = nil, nil
	generation := o.generation
	o.mu.Unlock()

	run := &run{
		id:       common.GenerateUUID(),
		req:      req,
		progress: progress,
		started:  time.Now(),
	}
	o.logger.Info("run started",
		slog.String("run_id", run.id),
		slog.String("pipeline", req.Pipeline.String()),
		slog.String("level", req.Level.String()),
		slog.Int("files", len(req.Files)),
	)

	result, err := o.execute(runCtx, run)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.generation != generation {
		o.logger.Info("run canceled", slog.String("run_id", run.id))
		return nil, context.Canceled
	}
	if err != nil {
		o.state = StateFailed
		o.err = err
		o.logger.Error("run failed", slog.String("run_id", run.id), slog.Any("error", err))
		return nil, err
	}
	o.state = StateComplete
	o.result = result
	o.logger.Info("run complete",
		slog.String("run_id", run.id),
		slog.String("file_name", result.FileName),
		slog.Int64("original_bytes", result.OriginalTotalBytes),
		slog.Int64("new_bytes", result.NewTotalBytes),
		slog.Int("fallbacks", result.FallbackCount()),
		slog.Duration("elapsed", time.Since(run.started)),
	)
	return result, nil
}

type run struct {
	id       string
	req      Request
	progress ProgressFunc
	started  time.Time
}

func (r *run) emit(stage string, completed int, percent int, fileID, file string) {
	r.progress(ProgressEvent{
		RunID:     r.id,
		FileID:    fileID,
		File:      file,
		Completed: completed,
		Total:     len(r.req.Files),
		Percent:   percent,
		Stage:     stage,
	})
}

// processingPercent maps completed files onto 0..90.
func processingPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 90))
}

type outcome struct {
	fileID  string
	result  *compression.TranscodeResult
	err     error
	elapsed time.Duration
}

func (o *Orchestrator) execute(ctx context.Context, r *run) (*RunResult, error) {
	files := r.req.Files
	total := len(files)
	outcomes := make([]outcome, total)
	for i := range outcomes {
		outcomes[i].fileID = common.GenerateUUID()
	}
	r.emit(StageStarted, 0, 0, "", "")

	pool := concurrency.NewWorkerPool(concurrency.Options{
		Workers:     o.workers,
		TaskTimeout: o.timeout,
		Logger:      o.logger,
	})
	completed := 0
	err := concurrency.Run(ctx, pool, total, func(ctx context.Context, i int) (*compression.TranscodeResult, error) {
		return o.process(ctx, r.req.Pipeline, r.req.Level, files[i])
	}, func(res concurrency.Result[*compression.TranscodeResult]) {
		out := &outcomes[res.Index]
		out.result, out.err, out.elapsed = res.Value, res.Err, res.Elapsed
		completed++

		stage := StageFileDone
		if res.Err != nil {
			stage = StageFallback
			o.logger.Warn("file step failed",
				slog.String("run_id", r.id),
				slog.String("file_id", out.fileID),
				slog.String("file", files[res.Index].Name),
				slog.Any("error", res.Err),
			)
		}
		r.emit(stage, completed, processingPercent(completed, total), out.fileID, files[res.Index].Name)
	})
	if err != nil {
		return nil, err
	}

	if total == 1 {
		return o.single(r, outcomes[0])
	}
	return o.bundle(r, outcomes)
}

func (o *Orchestrator) single(r *run, out outcome) (*RunResult, error) {
	file := r.req.Files[0]
	if out.err != nil {
		return nil, out.err
	}

	name := compression.OutputName(r.req.Pipeline, file.Name, out.result.Extension)
	r.emit(StageComplete, 1, 100, out.fileID, file.Name)
	return &RunResult{
		RunID:              r.id,
		Pipeline:           r.req.Pipeline,
		Level:              r.req.Level,
		Data:               out.result.Data,
		FileName:           name,
		OriginalTotalBytes: file.Size(),
		NewTotalBytes:      out.result.Size(),
		Files: []FileReport{{
			FileID:        out.fileID,
			Name:          file.Name,
			OutputName:    name,
			OriginalBytes: file.Size(),
			NewBytes:      out.result.Size(),
			Elapsed:       out.elapsed,
		}},
	}, nil
}

func (o *Orchestrator) bundle(r *run, outcomes []outcome) (*RunResult, error) {
	files := r.req.Files
	entries := make([]compression.ArchiveEntry, 0, len(files))
	reports := make([]FileReport, 0, len(files))
	var originalTotal, payload int64

	for i, file := range files {
		out := outcomes[i]
		report := FileReport{
			FileID:        out.fileID,
			Name:          file.Name,
			OriginalBytes: file.Size(),
			Elapsed:       out.elapsed,
		}
		entry := compression.ArchiveEntry{Name: filepath.Base(file.Name), Data: file.Data}
		if out.err != nil {
			report.FellBack = true
			report.Error = out.err.Error()
		} else {
			entry = compression.ArchiveEntry{
				Name: compression.EntryName(r.req.Pipeline, file.Name, out.result.Extension),
				Data: out.result.Data,
			}
		}
		report.OutputName = entry.Name
		report.NewBytes = int64(len(entry.Data))

		originalTotal += file.Size()
		payload += report.NewBytes
		entries = append(entries, entry)
		reports = append(reports, report)
	}
	if payload == 0 {
		return nil, compression.ErrNoProcessableFiles
	}

	r.emit(StageArchiving, len(files), 90, "", "")
	archive, err := compression.BuildArchive(entries)
	if err != nil {
		return nil, fmt.Errorf("build archive: %w", err)
	}
	r.emit(StageComplete, len(files), 100, "", "")

	return &RunResult{
		RunID:              r.id,
		Pipeline:           r.req.Pipeline,
		Level:              r.req.Level,
		Data:               archive,
		FileName:           compression.ArchiveName(r.req.Pipeline),
		OriginalTotalBytes: originalTotal,
		NewTotalBytes:      int64(len(archive)),
		Files:              reports,
	}, nil
}

// process runs the pipeline step for one file.
func (o *Orchestrator) process(ctx context.Context, p compression.Pipeline, level compression.Level, file compression.InputFile) (*compression.TranscodeResult, error) {
	mediaType := compression.ResolveMediaType(file.MediaType, file.Data)
	// Unrecognized bytes go to the step so it reports its own error kind.
	// PDFs are passed through untouched and need a positive match.
	if !p.Accepts(mediaType) && (p == compression.PipelinePDF || !compression.IsGenericMediaType(mediaType)) {
		return nil, compression.NewMediaTypeError(p, opValidate, file.Name, mediaType)
	}

	switch p {
	case compression.PipelineImage:
		return o.images.Compress(ctx, file.Name, file.Data, compression.ImageConfigFor(level))
	case compression.PipelineWebP:
		return o.webp.Convert(ctx, file.Name, file.Data, compression.WebPQualityFor(level))
	case compression.PipelineAudio:
		if o.audio == nil {
			return nil, errors.New("audio pipeline not configured")
		}
		return o.audio.Transcode(ctx, file, compression.AudioConfigFor(level))
	case compression.PipelinePDF:
		return &compression.TranscodeResult{
			Data:         file.Data,
			OriginalSize: file.Size(),
			Extension:    filepath.Ext(file.Name),
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", compression.ErrUnknownPipeline, p)
}
