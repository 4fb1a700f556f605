package config

import (
	"fmt"
	"strings"

	"kleinpress/internal/common"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeProcessing()
	c.normalizeCodecs()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir()
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir()
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeProcessing() {
	if c.Processing.MaxWorkers == 0 {
		c.Processing.MaxWorkers = common.MaxConcurrencyLimit
	}
	if c.Processing.FileTimeoutSeconds == 0 {
		c.Processing.FileTimeoutSeconds = int(common.DefaultFileTimeout.Seconds())
	}
	c.Processing.DefaultPipeline = strings.ToLower(strings.TrimSpace(c.Processing.DefaultPipeline))
	if c.Processing.DefaultPipeline == "" {
		c.Processing.DefaultPipeline = common.DefaultPipeline
	}
	c.Processing.DefaultLevel = strings.ToLower(strings.TrimSpace(c.Processing.DefaultLevel))
	if c.Processing.DefaultLevel == "" {
		c.Processing.DefaultLevel = common.DefaultLevel
	}
}

func (c *Config) normalizeCodecs() {
	c.Codecs.FFmpegPath = strings.TrimSpace(c.Codecs.FFmpegPath)
	if c.Codecs.FFmpegPath == "" {
		c.Codecs.FFmpegPath = "ffmpeg"
	}
	c.Codecs.FFprobePath = strings.TrimSpace(c.Codecs.FFprobePath)
	if c.Codecs.FFprobePath == "" {
		c.Codecs.FFprobePath = "ffprobe"
	}
	c.Codecs.MP3Encoder = strings.ToLower(strings.TrimSpace(c.Codecs.MP3Encoder))
	if c.Codecs.MP3Encoder == "" {
		c.Codecs.MP3Encoder = "builtin"
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}
