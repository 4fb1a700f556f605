package main

import (
	"log/slog"

	"kleinpress/internal/app/concurrency"
	"kleinpress/internal/compression/audio"
	"kleinpress/internal/config"
	"kleinpress/internal/pipeline"
)

func newOrchestrator(cfg *config.Config, logger *slog.Logger, workersFlag int) (*pipeline.Orchestrator, error) {
	configured := cfg.Processing.MaxWorkers
	if workersFlag > 0 {
		configured = workersFlag
	}
	host := audio.NewHost(cfg.Codecs.FFmpegPath, cfg.Codecs.FFprobePath)
	encoder, err := audio.EncoderByName(cfg.Codecs.MP3Encoder, host)
	if err != nil {
		return nil, err
	}
	return pipeline.New(pipeline.Options{
		Logger:      logger,
		Audio:       audio.NewTranscoder(logger, host, audio.WithEncoderFactory(encoder)),
		Workers:     concurrency.WorkerCount(configured, cfg.Processing.WorkerMemoryMB),
		FileTimeout: cfg.FileTimeout(),
	}), nil
}
