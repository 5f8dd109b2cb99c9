package display

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/backmassage/lapsemaster/internal/pipeline"
)

// RenderSummary returns the batch summary table: one row per job outcome and
// a footer with the overall tally. The summary never drops a job, including
// those that failed before reaching the encoder.
func RenderSummary(stats pipeline.Stats) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Footer = text.FormatDefault

	tw.AppendHeader(table.Row{"Job", "Status", "Size", "Reason"})
	for _, o := range stats.Outcomes {
		size, reason := "", ""
		if o.Succeeded() {
			size = FormatBytes(o.OutputSize)
		} else {
			reason = string(o.Reason)
		}
		tw.AppendRow(table.Row{o.Job.Name, string(o.Status), size, reason})
	}
	tw.AppendFooter(table.Row{
		fmt.Sprintf("%d total", stats.Total),
		fmt.Sprintf("%d ok / %d failed", stats.Succeeded, stats.Failed),
		FormatBytes(stats.OutputBytes),
		"",
	})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})

	return tw.Render()
}
