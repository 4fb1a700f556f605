package config

import (
	"errors"
	"fmt"

	"kleinpress/internal/compression"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateProcessing(); err != nil {
		return err
	}
	switch c.Codecs.MP3Encoder {
	case "builtin", "ffmpeg":
	default:
		return fmt.Errorf("codecs.mp3_encoder: unsupported value %q", c.Codecs.MP3Encoder)
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateProcessing() error {
	if c.Processing.MaxWorkers < 0 {
		return errors.New("processing.max_workers must not be negative")
	}
	if c.Processing.FileTimeoutSeconds < 0 {
		return errors.New("processing.file_timeout_seconds must not be negative")
	}
	if c.Processing.WorkerMemoryMB < 0 {
		return errors.New("processing.worker_memory_mb must not be negative")
	}
	if _, err := compression.ParsePipeline(c.Processing.DefaultPipeline); err != nil {
		return fmt.Errorf("processing.default_pipeline: %w", err)
	}
	if _, err := compression.ParseLevel(c.Processing.DefaultLevel); err != nil {
		return fmt.Errorf("processing.default_level: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "text", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
