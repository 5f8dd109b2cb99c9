package display

import (
	"strings"
	"testing"

	"github.com/backmassage/lapsemaster/internal/pipeline"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"zero", 0, "0 B"},
		{"small bytes", 512, "512 B"},
		{"exactly 1 KiB", 1024, "1.0 KiB"},
		{"1.5 KiB", 1536, "1.5 KiB"},
		{"1 MiB", 1024 * 1024, "1.0 MiB"},
		{"typical clip 45 MiB", 47185920, "45.0 MiB"},
		{"1 GiB", 1024 * 1024 * 1024, "1.0 GiB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestRenderSummaryListsEveryJob(t *testing.T) {
	var stats pipeline.Stats
	stats.Record(pipeline.Outcome{
		Job:        pipeline.Job{Name: "2025-12-14"},
		Status:     pipeline.StatusSucceeded,
		OutputSize: 2048,
	})
	stats.Record(pipeline.Outcome{
		Job:    pipeline.Job{Name: "2025-12-15"},
		Status: pipeline.StatusFailed,
		Reason: pipeline.ReasonFolderNotFound,
	})

	out := RenderSummary(stats)
	for _, want := range []string{
		"2025-12-14", "2025-12-15",
		"succeeded", "failed",
		"FolderNotFound",
		"2.0 KiB",
		"2 total", "1 ok / 1 failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
