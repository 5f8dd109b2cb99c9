package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/backmassage/lapsemaster/internal/autoplan"
	"github.com/backmassage/lapsemaster/internal/check"
	"github.com/backmassage/lapsemaster/internal/display"
	"github.com/backmassage/lapsemaster/internal/pipeline"
)

func newAutoCommand(ctx *appContext) *cobra.Command {
	var (
		outputDir string
		timestamp bool
		overlap   bool
	)

	cmd := &cobra.Command{
		Use:   "auto <input-folder>",
		Short: "Find sunrise and sunset clips in captured frames and encode them",
		Long: `Find sunrise and sunset clips in captured frames and encode them.

The input folder either holds frames directly or contains one subfolder per
capture session. Capture timestamps of the first and last frame bound each
folder's time range; every sunrise and sunset inside that range becomes one
clip, named <date>_<event>.mp4 in the output directory. Clips whose output
file already exists are skipped.

With --overlap, every session folder is indexed onto one continuous timeline
instead of being planned on its own. A clip whose window crosses a session
boundary is staged as a renumbered symlink sequence in a temporary folder, so
it still encodes at full length.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Planning always reads capture times, so exiftool is required
			// even without the timestamp overlay.
			if err := check.CheckDeps(&ctx.cfg, true); err != nil {
				return err
			}

			display.PrintBanner()

			planner, err := autoplan.New(&ctx.cfg, ctx.log)
			if err != nil {
				return err
			}
			opts := autoplan.Options{
				OutputDir: outputDir,
				Timestamp: timestamp,
			}

			var jobs []pipeline.Job
			if overlap {
				stageRoot, err := os.MkdirTemp("", "lapsemaster-stage-")
				if err != nil {
					return fmt.Errorf("create staging folder: %w", err)
				}
				defer os.RemoveAll(stageRoot)
				jobs, err = planner.PlanTimeline(cmd.Context(), args[0], stageRoot, opts)
				if err != nil {
					return err
				}
			} else {
				jobs, err = planner.Plan(cmd.Context(), args[0], opts)
				if err != nil {
					return err
				}
			}
			if len(jobs) == 0 {
				ctx.log.Info().Msg("nothing to encode")
				return nil
			}

			runner := pipeline.NewRunner(&ctx.cfg, ctx.log)
			var stats pipeline.Stats
			for _, job := range jobs {
				stats.Record(runner.Run(cmd.Context(), job))
			}

			fmt.Println(display.RenderSummary(stats))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", ".", "Directory for output videos")
	cmd.Flags().BoolVar(&timestamp, "timestamp", false, "Overlay capture timestamps on generated clips")
	cmd.Flags().BoolVar(&overlap, "overlap", false, "Index all session folders onto one timeline; clips may span folder boundaries")

	return cmd
}
