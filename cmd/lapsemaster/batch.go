package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/backmassage/lapsemaster/internal/check"
	"github.com/backmassage/lapsemaster/internal/display"
	"github.com/backmassage/lapsemaster/internal/pipeline"
)

func newBatchCommand(ctx *appContext) *cobra.Command {
	var (
		outputDir string
		timestamp bool
	)

	cmd := &cobra.Command{
		Use:   "batch <description-file>",
		Short: "Run every job in a batch description, one at a time",
		Long: `Run every job in a batch description, one at a time.

Each line describes one job as comma-separated fields:

    date, folder, start[, end[, fps[, rotation]]]

Blank lines and lines starting with # are skipped. Omitted trailing fields
take the configured defaults; an omitted end frame is detected from the
filenames. Output files are named <output-dir>/<date>.mp4.

A failing job is reported and counted, and the batch moves on to the next
line; the process exit code only reflects whether the batch itself ran.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := check.CheckDeps(&ctx.cfg, timestamp); err != nil {
				return err
			}

			display.PrintBanner()

			runner := pipeline.NewRunner(&ctx.cfg, ctx.log)
			stats, err := pipeline.RunBatch(cmd.Context(), runner, args[0], pipeline.BatchOptions{
				OutputDir: outputDir,
				Timestamp: timestamp,
			})
			if err != nil {
				return err
			}

			fmt.Println(display.RenderSummary(stats))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", ".", "Directory for output videos")
	cmd.Flags().BoolVar(&timestamp, "timestamp", false, "Overlay capture timestamps on every job")

	return cmd
}
