package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"kleinpress/internal/common"
	"kleinpress/internal/compression"
	"kleinpress/internal/config"
	"kleinpress/internal/database"
	"kleinpress/internal/pipeline"
)

func newCompressCommand(ctx *commandContext) *cobra.Command {
	var pipelineFlag string
	var levelFlag string
	var outputFlag string
	var workersFlag int
	var noHistory bool

	cmd := &cobra.Command{
		Use:   "compress <file>...",
		Short: "Compress files and write the result to the output directory",
		Long: `Compress one or more files with the selected pipeline.

A single file is written as its compressed counterpart. Several files are
bundled into a ZIP archive; files that fail to compress are stored unchanged.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			p, level, err := ctx.pipelineAndLevel(pipelineFlag, levelFlag)
			if err != nil {
				return err
			}
			outputDir := cfg.Paths.OutputDir
			if strings.TrimSpace(outputFlag) != "" {
				outputDir, err = config.ExpandPath(outputFlag)
				if err != nil {
					return err
				}
			}

			files, err := compression.ReadInputFiles(args)
			if err != nil {
				return err
			}

			orchestrator, err := newOrchestrator(cfg, logger, workersFlag)
			if err != nil {
				return err
			}

			lock, err := config.AcquireInstanceLock(cfg.LockPath())
			if err != nil {
				return err
			}
			defer func() {
				if err := lock.Release(); err != nil {
					logger.Warn("failed to release instance lock", "error", err)
				}
			}()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			progress, finish := progressReporter(out, len(files))
			result, err := orchestrator.Run(runCtx, pipeline.Request{Pipeline: p, Level: level, Files: files}, progress)
			finish()
			if err != nil {
				if runCtx.Err() != nil {
					return context.Canceled
				}
				return err
			}

			path := common.UniquePath(outputDir, result.FileName)
			if err := common.WriteFile(path, result.Data); err != nil {
				return fmt.Errorf("write result: %w", err)
			}

			if !noHistory {
				recordHistory(cfg, logger, result)
			}
			printRunSummary(out, result, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&pipelineFlag, "pipeline", "p", "", "Pipeline: image, webp, audio or pdf")
	cmd.Flags().StringVarP(&levelFlag, "level", "l", "", "Compression level: low, medium or high")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Directory for the result (defaults to the configured output_dir)")
	cmd.Flags().IntVarP(&workersFlag, "workers", "w", 0, "Maximum concurrent files (defaults to max_workers)")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record this run in the statistics database")
	return cmd
}

// progressReporter draws a bar on terminals and stays silent otherwise.
func progressReporter(out io.Writer, total int) (pipeline.ProgressFunc, func()) {
	if !isTerminal(out) {
		return nil, func() {}
	}
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(fmt.Sprintf("Compressing %d file(s)", total)),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
	progress := func(event pipeline.ProgressEvent) {
		_ = bar.Set(event.Percent)
	}
	return progress, func() { _ = bar.Finish() }
}

func recordHistory(cfg *config.Config, logger *slog.Logger, result *pipeline.RunResult) {
	db, err := database.NewDatabase(cfg.DatabasePath())
	if err != nil {
		logger.Warn("history unavailable", "error", err)
		return
	}
	defer db.Close()

	err = db.RecordRun(database.RunRecord{
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
		logger.Warn("failed to record run", "error", err)
	}
}

func printRunSummary(out io.Writer, result *pipeline.RunResult, path string) {
	rows := make([][]string, 0, len(result.Files))
	for _, f := range result.Files {
		status := "ok"
		if f.FellBack {
			status = "kept original: " + f.Error
		}
		rows = append(rows, []string{
			f.Name,
			f.OutputName,
			humanize.Bytes(uint64(f.OriginalBytes)),
			humanize.Bytes(uint64(f.NewBytes)),
			status,
		})
	}
	sizeTable{
		headers: []string{"File", "Output", "Original", "New", "Status"},
		rows:    rows,
		right:   []int{2, 3},
	}.write(out)
	fmt.Fprintf(out, "Wrote %s (%s -> %s, %.1f%% smaller)\n",
		path,
		humanize.Bytes(uint64(result.OriginalTotalBytes)),
		humanize.Bytes(uint64(result.NewTotalBytes)),
		result.ReductionPercent(),
	)
}
