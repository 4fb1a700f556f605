package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"kleinpress/internal/database"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs and lifetime savings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			db, err := database.NewDatabase(cfg.DatabasePath())
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := db.RecentRuns(limit)
			if err != nil {
				return err
			}
			totals, err := db.Totals()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				rows = append(rows, []string{
					humanize.Time(r.CreatedAt),
					r.Pipeline,
					r.Level,
					fmt.Sprintf("%d", r.FileCount),
					fmt.Sprintf("%d", r.FailedCount),
					humanize.Bytes(uint64(r.OriginalBytes)),
					humanize.Bytes(uint64(r.NewBytes)),
					r.ResultName,
				})
			}
			sizeTable{
				headers: []string{"When", "Pipeline", "Level", "Files", "Kept", "Original", "New", "Result"},
				rows:    rows,
				right:   []int{3, 4, 5, 6},
			}.write(out)
			fmt.Fprintf(out, "%s runs, %s files, %s saved\n",
				humanize.Comma(totals.Runs),
				humanize.Comma(totals.Files),
				humanize.Bytes(uint64(totals.Saved())),
			)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	return cmd
}
