package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/backmassage/lapsemaster/internal/config"
	"github.com/backmassage/lapsemaster/internal/exif"
	"github.com/backmassage/lapsemaster/internal/ffmpeg"
	"github.com/backmassage/lapsemaster/internal/frames"
)

// encodeRecorder is a fake encoder that records invocations and optionally
// writes the output file, standing in for the ffmpeg process.
type encodeRecorder struct {
	invocations []*ffmpeg.Invocation
	writeOutput bool
	err         error
}

func (e *encodeRecorder) encode(_ context.Context, _ *config.Config, inv *ffmpeg.Invocation) ffmpeg.ExecResult {
	e.invocations = append(e.invocations, inv)
	if e.writeOutput {
		_ = os.WriteFile(inv.OutputPath, []byte("mp4"), 0o644)
	}
	return ffmpeg.ExecResult{Err: e.err}
}

func noTimestamp(context.Context, string) (string, error) {
	return "", exif.ErrUnavailable
}

func testRunner(cfg *config.Config, enc *encodeRecorder, ts func(context.Context, string) (string, error)) *Runner {
	return &Runner{
		cfg:       cfg,
		log:       zerolog.Nop(),
		encode:    enc.encode,
		timestamp: ts,
	}
}

func frameFolder(t *testing.T, cfg *config.Config, n int) string {
	t.Helper()
	dir := t.TempDir()
	for i := 1; i <= n; i++ {
		if err := os.WriteFile(filepath.Join(dir, frames.FrameName(cfg, i)), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestRunAutoDetectWithRotation(t *testing.T) {
	// Frames 1..100, end auto-detected, cw rotation, no timestamp.
	cfg := config.Default()
	dir := frameFolder(t, &cfg, 100)
	enc := &encodeRecorder{writeOutput: true}
	r := testRunner(&cfg, enc, noTimestamp)

	job := NewJob(&cfg, "2025-12-15", dir, filepath.Join(t.TempDir(), "2025-12-15.mp4"))
	job.Rotation = config.RotationCW

	out := r.Run(context.Background(), job)
	if !out.Succeeded() {
		t.Fatalf("outcome = %+v", out)
	}
	if len(enc.invocations) != 1 {
		t.Fatalf("encoder invoked %d times, want 1", len(enc.invocations))
	}

	inv := enc.invocations[0]
	if inv.StartNumber != 1 || inv.FrameCount != 100 {
		t.Errorf("range: start=%d count=%d, want 1/100", inv.StartNumber, inv.FrameCount)
	}
	if inv.FilterChain != "transpose=1" {
		t.Errorf("filter chain = %q, want transpose=1", inv.FilterChain)
	}
	if !strings.HasSuffix(inv.InputPattern, "TLS_%09d.jpg") {
		t.Errorf("input pattern = %q", inv.InputPattern)
	}
	if out.OutputSize == 0 {
		t.Error("output size not recorded")
	}
}

func TestRunFolderMissing(t *testing.T) {
	cfg := config.Default()
	enc := &encodeRecorder{}
	r := testRunner(&cfg, enc, noTimestamp)

	job := NewJob(&cfg, "x", "/does/not/exist", "out.mp4")
	out := r.Run(context.Background(), job)

	if out.Status != StatusFailed || out.Reason != ReasonFolderNotFound {
		t.Errorf("outcome = %+v, want FolderNotFound failure", out)
	}
	if len(enc.invocations) != 0 {
		t.Error("encoder must not be invoked for a missing folder")
	}
}

func TestRunEmptyRange(t *testing.T) {
	cfg := config.Default()
	dir := frameFolder(t, &cfg, 3)
	enc := &encodeRecorder{}
	r := testRunner(&cfg, enc, noTimestamp)

	job := NewJob(&cfg, "x", dir, "out.mp4")
	job.StartFrame = 50
	job.EndFrame = 10

	out := r.Run(context.Background(), job)
	if out.Reason != ReasonEmptyRange {
		t.Errorf("reason = %q, want EmptyRange", out.Reason)
	}
	if len(enc.invocations) != 0 {
		t.Error("encoder must not be invoked for an empty range")
	}
}

func TestRunNoFramesFound(t *testing.T) {
	cfg := config.Default()
	enc := &encodeRecorder{}
	r := testRunner(&cfg, enc, noTimestamp)

	job := NewJob(&cfg, "x", t.TempDir(), "out.mp4")
	out := r.Run(context.Background(), job)
	if out.Reason != ReasonNoFramesFound {
		t.Errorf("reason = %q, want NoFramesFound", out.Reason)
	}
}

func TestRunMissingParameters(t *testing.T) {
	cfg := config.Default()
	enc := &encodeRecorder{}
	r := testRunner(&cfg, enc, noTimestamp)

	for name, mutate := range map[string]func(*Job){
		"no folder": func(j *Job) { j.Folder = "" },
		"no output": func(j *Job) { j.OutputPath = "" },
		"bad start": func(j *Job) { j.StartFrame = 0 },
		"bad fps":   func(j *Job) { j.FPS = 0 },
	} {
		job := NewJob(&cfg, "x", t.TempDir(), "out.mp4")
		mutate(&job)
		out := r.Run(context.Background(), job)
		if out.Reason != ReasonMissingParameter {
			t.Errorf("%s: reason = %q, want MissingParameter", name, out.Reason)
		}
	}
	if len(enc.invocations) != 0 {
		t.Error("encoder must not be invoked for invalid jobs")
	}
}

func TestRunCleanExitWithoutOutputIsFailure(t *testing.T) {
	cfg := config.Default()
	dir := frameFolder(t, &cfg, 5)
	enc := &encodeRecorder{writeOutput: false} // exit 0, no file written
	r := testRunner(&cfg, enc, noTimestamp)

	job := NewJob(&cfg, "x", dir, filepath.Join(t.TempDir(), "out.mp4"))
	out := r.Run(context.Background(), job)
	if out.Reason != ReasonEncodeFailed {
		t.Errorf("reason = %q, want EncodeFailed", out.Reason)
	}
}

func TestRunEncoderError(t *testing.T) {
	cfg := config.Default()
	dir := frameFolder(t, &cfg, 5)
	enc := &encodeRecorder{writeOutput: true, err: errors.New("exit status 1")}
	r := testRunner(&cfg, enc, noTimestamp)

	job := NewJob(&cfg, "x", dir, filepath.Join(t.TempDir(), "out.mp4"))
	out := r.Run(context.Background(), job)
	if out.Reason != ReasonEncodeFailed {
		t.Errorf("reason = %q, want EncodeFailed", out.Reason)
	}
}

func TestRunMetadataDowngrade(t *testing.T) {
	// Both metadata fields empty: the overlay is dropped, the job proceeds.
	cfg := config.Default()
	dir := frameFolder(t, &cfg, 5)
	enc := &encodeRecorder{writeOutput: true}
	r := testRunner(&cfg, enc, noTimestamp)

	job := NewJob(&cfg, "x", dir, filepath.Join(t.TempDir(), "out.mp4"))
	job.Timestamp = true

	out := r.Run(context.Background(), job)
	if !out.Succeeded() {
		t.Fatalf("downgraded job should succeed, got %+v", out)
	}
	if chain := enc.invocations[0].FilterChain; strings.Contains(chain, "drawtext") {
		t.Errorf("overlay should be disabled, chain = %q", chain)
	}
}

func TestRunTimestampOverlay(t *testing.T) {
	cfg := config.Default()
	cfg.FontCandidates = nil // no font on the test host
	dir := frameFolder(t, &cfg, 5)
	enc := &encodeRecorder{writeOutput: true}

	var probed string
	ts := func(_ context.Context, path string) (string, error) {
		probed = path
		return "2025-12-15 16:42:10", nil
	}
	r := testRunner(&cfg, enc, ts)

	job := NewJob(&cfg, "x", dir, filepath.Join(t.TempDir(), "out.mp4"))
	job.Timestamp = true
	job.Rotation = config.RotationCW

	out := r.Run(context.Background(), job)
	if !out.Succeeded() {
		t.Fatalf("outcome = %+v", out)
	}

	if filepath.Base(probed) != frames.FrameName(&cfg, 1) {
		t.Errorf("metadata probed against %q, want first frame", probed)
	}

	chain := enc.invocations[0].FilterChain
	if !strings.Contains(chain, `%{metadata\:DateTimeOriginal}`) {
		t.Errorf("chain missing metadata directive: %q", chain)
	}
	if strings.Index(chain, "transpose=1") > strings.Index(chain, "drawtext") {
		t.Errorf("rotation must precede drawtext: %q", chain)
	}
}

func TestStatsRecord(t *testing.T) {
	var s Stats
	s.Record(Outcome{Status: StatusSucceeded, OutputSize: 100})
	s.Record(Outcome{Status: StatusSucceeded, OutputSize: 50})
	s.Record(Outcome{Status: StatusFailed, Reason: ReasonEncodeFailed})

	if s.Total != 3 || s.Succeeded != 2 || s.Failed != 1 {
		t.Errorf("stats = %+v", s)
	}
	if s.OutputBytes != 150 {
		t.Errorf("OutputBytes = %d, want 150", s.OutputBytes)
	}
	if len(s.Outcomes) != 3 {
		t.Errorf("Outcomes = %d, want 3", len(s.Outcomes))
	}
}
