package app

import (
	"fmt"
	"log/slog"

	"kleinpress/internal/app/concurrency"
	"kleinpress/internal/compression/audio"
	"kleinpress/internal/config"
	"kleinpress/internal/database"
	"kleinpress/internal/logging"
	"kleinpress/internal/pipeline"
)

// services bundles everything the app builds from its configuration.
type services struct {
	logger       *slog.Logger
	db           *database.Database
	lock         *config.InstanceLock
	host         *audio.Host
	orchestrator *pipeline.Orchestrator
}

// buildServices wires logging, storage, codecs and the orchestrator from cfg.
// The instance lock is taken first so a second window fails fast.
func buildServices(cfg *config.Config) (*services, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	lock, err := config.AcquireInstanceLock(cfg.LockPath())
	if err != nil {
		return nil, err
	}

	db, err := database.NewDatabase(cfg.DatabasePath())
	if err != nil {
		_ = lock.Release()
		return nil, fmt.Errorf("open database: %w", err)
	}

	host := audio.NewHost(cfg.Codecs.FFmpegPath, cfg.Codecs.FFprobePath)
	encoder, err := audio.EncoderByName(cfg.Codecs.MP3Encoder, host)
	if err != nil {
		_ = db.Close()
		_ = lock.Release()
		return nil, err
	}
	workers := concurrency.WorkerCount(cfg.Processing.MaxWorkers, cfg.Processing.WorkerMemoryMB)
	orchestrator := pipeline.New(pipeline.Options{
		Logger:      logger,
		Audio:       audio.NewTranscoder(logger, host, audio.WithEncoderFactory(encoder)),
		Workers:     workers,
		FileTimeout: cfg.FileTimeout(),
	})

	logger.Info("application configuration",
		slog.String("database_path", cfg.DatabasePath()),
		slog.String("output_dir", cfg.Paths.OutputDir),
		slog.Int("workers", workers),
		slog.String("mp3_encoder", cfg.Codecs.MP3Encoder),
		slog.Bool("ffmpeg_available", host.Available()),
	)

	return &services{logger: logger, db: db, lock: lock, host: host, orchestrator: orchestrator}, nil
}
