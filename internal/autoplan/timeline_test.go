package autoplan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/backmassage/lapsemaster/internal/config"
	"github.com/backmassage/lapsemaster/internal/frames"
)

// timelinePlanner synthesizes per-folder capture times from the frame index,
// looking up each folder's start time in starts.
func timelinePlanner(t *testing.T, cfg *config.Config, starts map[string]time.Time) *Planner {
	t.Helper()
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	return &Planner{
		cfg: cfg,
		log: zerolog.Nop(),
		loc: loc,
		readTime: func(_ context.Context, path string) (time.Time, error) {
			t0, ok := starts[filepath.Dir(path)]
			if !ok {
				return time.Time{}, errors.New("unknown folder")
			}
			idx, ok := frames.ParseIndex(cfg, filepath.Base(path))
			if !ok {
				return time.Time{}, errors.New("not a frame")
			}
			return t0.Add(time.Duration(idx-1) * time.Duration(cfg.CaptureInterval) * time.Second), nil
		},
	}
}

// writeFrameRange creates frame files 1..n; the timeline indexes every file.
func writeFrameRange(t *testing.T, cfg *config.Config, dir string, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		if err := os.WriteFile(filepath.Join(dir, frames.FrameName(cfg, i)), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestPlanTimelineClipSpansFolderBoundary(t *testing.T) {
	cfg := config.Default()
	cfg.ClipSeconds = 10 // 300-frame clips keep the fixture small

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	root := t.TempDir()
	dirA := filepath.Join(root, "session_a")
	dirB := filepath.Join(root, "session_b")
	for _, d := range []string{dirA, dirB} {
		if err := os.Mkdir(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	// Session A covers 16:00 to 16:45, session B picks up ten seconds later
	// and runs past sunset.
	writeFrameRange(t, &cfg, dirA, 271)
	writeFrameRange(t, &cfg, dirB, 271)
	starts := map[string]time.Time{
		dirA: time.Date(2025, time.December, 15, 16, 0, 0, 0, loc),
		dirB: time.Date(2025, time.December, 15, 16, 45, 10, 0, loc),
	}

	p := timelinePlanner(t, &cfg, starts)
	stageRoot := t.TempDir()
	jobs, err := p.PlanTimeline(context.Background(), root, stageRoot, Options{OutputDir: t.TempDir()})
	if err != nil {
		t.Fatalf("PlanTimeline: %v", err)
	}
	if len(jobs) != 1 || !strings.HasSuffix(jobs[0].Name, "_sunset") {
		t.Fatalf("jobs = %+v, want one sunset clip", jobs)
	}

	job := jobs[0]
	if job.StartFrame != 1 || job.EndFrame != 300 {
		t.Errorf("staged range = %d..%d, want 1..300", job.StartFrame, job.EndFrame)
	}
	if filepath.Dir(job.Folder) != stageRoot {
		t.Errorf("job folder %q not under the stage root", job.Folder)
	}

	// The clip window straddles the session boundary: the renumbered sequence
	// starts in session A and ends in session B.
	first, err := os.Readlink(filepath.Join(job.Folder, frames.FrameName(&cfg, 1)))
	if err != nil {
		t.Fatalf("first staged frame: %v", err)
	}
	last, err := os.Readlink(filepath.Join(job.Folder, frames.FrameName(&cfg, 300)))
	if err != nil {
		t.Fatalf("last staged frame: %v", err)
	}
	if filepath.Dir(first) != dirA {
		t.Errorf("first frame links to %q, want session A", first)
	}
	if filepath.Dir(last) != dirB {
		t.Errorf("last frame links to %q, want session B", last)
	}
}

func TestPlanTimelineShiftsWindowBackAtEnd(t *testing.T) {
	cfg := config.Default()
	cfg.ClipSeconds = 10

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	// 250 frames from 16:30: sunset sits close to the end, so the window is
	// shifted back and the whole timeline is staged.
	dir := t.TempDir()
	writeFrameRange(t, &cfg, dir, 250)
	starts := map[string]time.Time{
		dir: time.Date(2025, time.December, 15, 16, 30, 0, 0, loc),
	}

	p := timelinePlanner(t, &cfg, starts)
	jobs, err := p.PlanTimeline(context.Background(), dir, t.TempDir(), Options{OutputDir: t.TempDir()})
	if err != nil {
		t.Fatalf("PlanTimeline: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("jobs = %+v, want one sunset clip", jobs)
	}
	if jobs[0].StartFrame != 1 || jobs[0].EndFrame != 250 {
		t.Errorf("staged range = %d..%d, want the full 250-frame timeline", jobs[0].StartFrame, jobs[0].EndFrame)
	}
	if _, err := os.Lstat(filepath.Join(jobs[0].Folder, frames.FrameName(&cfg, 250))); err != nil {
		t.Errorf("last staged frame missing: %v", err)
	}
}

func TestPlanTimelineSkipsExistingOutputs(t *testing.T) {
	cfg := config.Default()
	cfg.ClipSeconds = 10

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	dir := t.TempDir()
	writeFrameRange(t, &cfg, dir, 250)
	starts := map[string]time.Time{
		dir: time.Date(2025, time.December, 15, 16, 30, 0, 0, loc),
	}

	outDir := t.TempDir()
	existing := filepath.Join(outDir, "2025-12-15_sunset.mp4")
	if err := os.WriteFile(existing, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := timelinePlanner(t, &cfg, starts)
	stageRoot := t.TempDir()
	jobs, err := p.PlanTimeline(context.Background(), dir, stageRoot, Options{OutputDir: outDir})
	if err != nil {
		t.Fatalf("PlanTimeline: %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("jobs = %+v, want none", jobs)
	}
	// Skipped clips are never staged.
	if _, err := os.Stat(filepath.Join(stageRoot, "2025-12-15_sunset")); err == nil {
		t.Error("staging folder created for a skipped clip")
	}
}

func TestPlanTimelineIgnoresThumbnailFolders(t *testing.T) {
	cfg := config.Default()
	cfg.ClipSeconds = 10

	root := t.TempDir()
	thumb := filepath.Join(root, "thumbnail")
	if err := os.Mkdir(thumb, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFrameRange(t, &cfg, thumb, 10)

	p := timelinePlanner(t, &cfg, nil)
	jobs, err := p.PlanTimeline(context.Background(), root, t.TempDir(), Options{OutputDir: t.TempDir()})
	if err != nil {
		t.Fatalf("PlanTimeline: %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("jobs = %+v, want none from thumbnail folders", jobs)
	}
}
