package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/backmassage/lapsemaster/internal/check"
	"github.com/backmassage/lapsemaster/internal/pipeline"
)

func newEncodeCommand(ctx *appContext) *cobra.Command {
	var (
		start     int
		end       int
		fps       int
		rotation  string
		timestamp bool
	)

	cmd := &cobra.Command{
		Use:   "encode <frame-folder> <output.mp4>",
		Short: "Encode one time-lapse from a folder of numbered frames",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := check.CheckDeps(&ctx.cfg, timestamp); err != nil {
				return err
			}

			job := pipeline.NewJob(&ctx.cfg, args[1], args[0], args[1])
			job.StartFrame = start
			job.EndFrame = end
			if fps > 0 {
				job.FPS = fps
			}
			job.Rotation = rotationFromFlag(ctx, rotation)
			job.Timestamp = timestamp

			runner := pipeline.NewRunner(&ctx.cfg, ctx.log)
			outcome := runner.Run(cmd.Context(), job)
			if !outcome.Succeeded() {
				return fmt.Errorf("%s: %s", outcome.Reason, outcome.Detail)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&start, "start", 1, "First frame index")
	cmd.Flags().IntVar(&end, "end", 0, "Last frame index (0 = detect from filenames)")
	cmd.Flags().IntVar(&fps, "fps", 0, "Frame rate (0 = configured default)")
	cmd.Flags().StringVar(&rotation, "rotation", "none", "Rotation: cw | ccw | 180 | none")
	cmd.Flags().BoolVar(&timestamp, "timestamp", false, "Overlay capture timestamps from EXIF metadata")

	return cmd
}
