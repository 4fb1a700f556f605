package config

import (
	"os"
	"path/filepath"
	"strings"

	"kleinpress/internal/common"
)

const (
	defaultWorkerMemoryMB = 256
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"
)

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Processing: Processing{
			MaxWorkers:         common.MaxConcurrencyLimit,
			FileTimeoutSeconds: int(common.DefaultFileTimeout.Seconds()),
			WorkerMemoryMB:     defaultWorkerMemoryMB,
			DefaultPipeline:    common.DefaultPipeline,
			DefaultLevel:       common.DefaultLevel,
		},
		Codecs: Codecs{
			FFmpegPath:  "ffmpeg",
			FFprobePath: "ffprobe",
			MP3Encoder:  "builtin",
		},
		Paths: Paths{
			DataDir:   defaultDataDir(),
			OutputDir: defaultOutputDir(),
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}

func defaultDataDir() string {
	if base, ok := os.LookupEnv("XDG_DATA_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "kleinpress")
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "KleinPress")
	}
	return "~/.local/share/kleinpress"
}

func defaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/Downloads"
	}
	return filepath.Join(home, "Downloads")
}
