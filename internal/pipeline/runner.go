package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/backmassage/lapsemaster/internal/config"
	"github.com/backmassage/lapsemaster/internal/exif"
	"github.com/backmassage/lapsemaster/internal/ffmpeg"
	"github.com/backmassage/lapsemaster/internal/filter"
	"github.com/backmassage/lapsemaster/internal/frames"
)

// Runner executes jobs strictly sequentially. The encoder and metadata tool
// are held as function fields so tests can substitute fakes for the external
// processes.
type Runner struct {
	cfg *config.Config
	log zerolog.Logger

	encode    func(ctx context.Context, cfg *config.Config, inv *ffmpeg.Invocation) ffmpeg.ExecResult
	timestamp func(ctx context.Context, path string) (string, error)
}

// NewRunner wires a Runner to the real external tools from cfg.
func NewRunner(cfg *config.Config, log zerolog.Logger) *Runner {
	reader := exif.NewReader(cfg)
	return &Runner{
		cfg:    cfg,
		log:    log,
		encode: ffmpeg.Execute,
		timestamp: func(ctx context.Context, path string) (string, error) {
			return reader.Timestamp(ctx, path)
		},
	}
}

// Run executes one job end to end and returns its Outcome. Validation and
// resolution failures are terminal for the job and never reach the encoder;
// metadata unavailability only downgrades the overlay.
func (r *Runner) Run(ctx context.Context, job Job) Outcome {
	log := r.log.With().Str("job", job.Name).Str("job_id", job.ID).Logger()

	if reason, detail := validate(job); reason != ReasonNone {
		log.Error().Str("reason", string(reason)).Msg(detail)
		return fail(job, reason, detail)
	}

	if fi, err := os.Stat(job.Folder); err != nil || !fi.IsDir() {
		detail := fmt.Sprintf("source folder missing: %s", job.Folder)
		log.Error().Str("reason", string(ReasonFolderNotFound)).Msg(detail)
		return fail(job, ReasonFolderNotFound, detail)
	}

	rng, err := frames.Resolve(r.cfg, job.Folder, job.StartFrame, job.EndFrame)
	if err != nil {
		reason := resolveReason(err)
		log.Error().Str("reason", string(reason)).Msg(err.Error())
		return fail(job, reason, err.Error())
	}

	overlay := r.prepareOverlay(ctx, &log, job, rng)

	count := rng.Count()
	duration := float64(count) / float64(job.FPS)
	log.Info().
		Int("start", rng.Start).
		Int("end", rng.End).
		Int("frames", count).
		Float64("seconds", duration).
		Msg("encoding")

	chain := filter.Build(job.Rotation, overlay)
	if chain != "" {
		log.Debug().Str("filter", chain).Msg("filter chain")
	}

	inv := &ffmpeg.Invocation{
		StartNumber:  rng.Start,
		InputFPS:     job.FPS,
		InputPattern: filepath.Join(job.Folder, frames.InputPattern(r.cfg)),
		FrameCount:   count,
		FilterChain:  chain,
		OutputFPS:    job.FPS,
		OutputPath:   job.OutputPath,
	}

	if dir := filepath.Dir(job.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			detail := fmt.Sprintf("cannot create output directory: %v", err)
			log.Error().Str("reason", string(ReasonEncodeFailed)).Msg(detail)
			return fail(job, ReasonEncodeFailed, detail)
		}
	}

	res := r.encode(ctx, r.cfg, inv)

	// A clean exit status alone is not success: a stale partial file, or an
	// encoder that reported success without writing, must still count as
	// failure, so the output file is checked as well.
	fi, statErr := os.Stat(job.OutputPath)
	if res.Err != nil || statErr != nil {
		detail := "encoder did not produce output"
		if res.Err != nil {
			detail = res.Err.Error()
		}
		logEncoderTail(&log, res.Stderr)
		log.Error().Str("reason", string(ReasonEncodeFailed)).Msg(detail)
		return fail(job, ReasonEncodeFailed, detail)
	}

	log.Info().Int64("bytes", fi.Size()).Str("output", job.OutputPath).Msg("done")
	return Outcome{
		Job:        job,
		Status:     StatusSucceeded,
		OutputSize: fi.Size(),
	}
}

// prepareOverlay probes metadata availability for the job's first frame and
// returns the drawtext overlay, or nil when the overlay is off or had to be
// downgraded because neither candidate field has a value.
func (r *Runner) prepareOverlay(ctx context.Context, log *zerolog.Logger, job Job, rng frames.Range) *filter.Overlay {
	if !job.Timestamp {
		return nil
	}

	firstFrame := filepath.Join(job.Folder, frames.FrameName(r.cfg, rng.Start))
	ts, err := r.timestamp(ctx, firstFrame)
	if err != nil {
		if errors.Is(err, exif.ErrUnavailable) {
			log.Warn().Str("frame", firstFrame).Msg("no capture timestamp in metadata, overlay disabled")
		} else {
			log.Warn().Err(err).Msg("metadata probe failed, overlay disabled")
		}
		return nil
	}
	log.Debug().Str("first_frame_time", ts).Msg("timestamp overlay active")

	return &filter.Overlay{
		FontFile: filter.ProbeFont(r.cfg),
		Field:    exif.PrimaryField(),
		Style:    job.Style,
	}
}

func validate(job Job) (FailReason, string) {
	switch {
	case job.Folder == "":
		return ReasonMissingParameter, "source folder not set"
	case job.OutputPath == "":
		return ReasonMissingParameter, "output path not set"
	case job.StartFrame < 1:
		return ReasonMissingParameter, fmt.Sprintf("start frame must be positive, got %d", job.StartFrame)
	case job.FPS < 1:
		return ReasonMissingParameter, fmt.Sprintf("frame rate must be positive, got %d", job.FPS)
	}
	return ReasonNone, ""
}

func resolveReason(err error) FailReason {
	switch {
	case errors.Is(err, frames.ErrFolderNotFound):
		return ReasonFolderNotFound
	case errors.Is(err, frames.ErrNoFramesFound):
		return ReasonNoFramesFound
	case errors.Is(err, frames.ErrEmptyRange):
		return ReasonEmptyRange
	}
	return ReasonMissingParameter
}

func fail(job Job, reason FailReason, detail string) Outcome {
	return Outcome{
		Job:    job,
		Status: StatusFailed,
		Reason: reason,
		Detail: detail,
	}
}

// logEncoderTail logs the last lines of encoder stderr for diagnosis. The
// stream is not parsed or classified beyond this.
func logEncoderTail(log *zerolog.Logger, stderr string) {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return
	}
	lines := strings.Split(stderr, "\n")
	if len(lines) > 10 {
		lines = lines[len(lines)-10:]
	}
	for _, l := range lines {
		log.Error().Msg("  " + l)
	}
}
