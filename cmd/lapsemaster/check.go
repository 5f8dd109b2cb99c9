package main

import (
	"github.com/spf13/cobra"

	"github.com/backmassage/lapsemaster/internal/check"
	"github.com/backmassage/lapsemaster/internal/display"
)

func newCheckCommand(ctx *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify ffmpeg, exiftool and overlay fonts are available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			display.PrintBanner()
			check.RunCheck(&ctx.cfg, ctx.log)
			return nil
		},
	}
}
