package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"kleinpress/internal/compression"
	"kleinpress/internal/pipeline"
)

func newEstimateCommand(ctx *commandContext) *cobra.Command {
	var pipelineFlag string
	var levelFlag string

	cmd := &cobra.Command{
		Use:   "estimate <file>...",
		Short: "Predict output sizes without compressing",
		Args:  cobra.MinimumNArgs(1),
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
			files, err := compression.ReadInputFiles(args)
			if err != nil {
				return err
			}

			orchestrator, err := newOrchestrator(cfg, logger, 0)
			if err != nil {
				return err
			}
			preview, err := orchestrator.Preview(pipeline.Request{Pipeline: p, Level: level, Files: files})
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(files))
			for i, f := range files {
				rows = append(rows, estimateRow(f.Name, preview.Files[i]))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Pipeline: %s  Level: %s\n", p, level)
			sizeTable{
				headers: []string{"File", "Original", "Estimated", "Reduction"},
				rows:    rows,
				footer:  estimateRow("Total", preview.Aggregate),
				right:   []int{1, 2, 3},
			}.write(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVarP(&pipelineFlag, "pipeline", "p", "", "Pipeline: image, webp, audio or pdf")
	cmd.Flags().StringVarP(&levelFlag, "level", "l", "", "Compression level: low, medium or high")
	return cmd
}

func estimateRow(name string, e compression.SizeEstimate) []string {
	return []string{
		name,
		humanize.Bytes(uint64(e.OriginalBytes)),
		humanize.Bytes(uint64(e.EstimatedBytes)),
		fmt.Sprintf("%.1f%%", e.ReductionPercent),
	}
}
