package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kleinpress/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and initialise configuration",
	}

	var initPath string
	var overwrite bool
	initCmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a default configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := strings.TrimSpace(initPath)
			if path == "" {
				var err error
				path, err = config.DefaultConfigPath()
				if err != nil {
					return err
				}
			}
			path, err := config.ExpandPath(path)
			if err != nil {
				return err
			}
			if !overwrite && fileExists(path) {
				return fmt.Errorf("config file %s already exists (use --overwrite)", path)
			}
			cfg := config.Default()
			if err := cfg.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&initPath, "path", "p", "", "Destination path")
	initCmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			rows := [][]string{
				{"processing.max_workers", fmt.Sprintf("%d", cfg.Processing.MaxWorkers)},
				{"processing.file_timeout_seconds", fmt.Sprintf("%d", cfg.Processing.FileTimeoutSeconds)},
				{"processing.worker_memory_mb", fmt.Sprintf("%d", cfg.Processing.WorkerMemoryMB)},
				{"processing.default_pipeline", cfg.Processing.DefaultPipeline},
				{"processing.default_level", cfg.Processing.DefaultLevel},
				{"codecs.ffmpeg_path", cfg.Codecs.FFmpegPath},
				{"codecs.ffprobe_path", cfg.Codecs.FFprobePath},
				{"paths.data_dir", cfg.Paths.DataDir},
				{"paths.output_dir", cfg.Paths.OutputDir},
				{"logging.level", cfg.Logging.Level},
				{"logging.format", cfg.Logging.Format},
			}
			sizeTable{headers: []string{"Key", "Value"}, rows: rows}.write(cmd.OutOrStdout())
			return nil
		},
	}

	configCmd.AddCommand(initCmd, showCmd)
	return configCmd
}
