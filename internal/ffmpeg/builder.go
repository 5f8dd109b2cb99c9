package ffmpeg

import (
	"strconv"

	"github.com/backmassage/lapsemaster/internal/config"
)

// Invocation is the structured descriptor of one encoder run. The job runner
// fills it in; Build maps each field to its argument explicitly so nothing is
// ever assembled by string concatenation, in particular the filter chain with
// its encoder-side metadata directive.
type Invocation struct {
	StartNumber  int    // First frame index of the sequence.
	InputFPS     int    // Rate the frame sequence is read at.
	InputPattern string // Folder-joined printf pattern, e.g. "shots/TLS_%09d.jpg".
	FrameCount   int    // Total frames to consume.
	FilterChain  string // Video filter chain; empty means no -vf at all.
	OutputFPS    int    // Output stream frame rate.
	OutputPath   string
}

// Build constructs the complete argument slice for one invocation, starting
// with the ffmpeg binary itself. The output profile is fixed: libx264
// constant quality, slow preset, yuv420p for broad playback compatibility,
// faststart MP4 layout, source metadata carried over, existing output
// overwritten.
func Build(cfg *config.Config, inv *Invocation) []string {
	args := make([]string, 0, 32)

	args = append(args, cfg.FFmpegBin, "-hide_banner", "-nostdin", "-y")

	if cfg.Verbose {
		args = append(args, "-loglevel", "info", "-stats")
	} else {
		args = append(args, "-loglevel", "error")
	}

	// Input: numbered JPEG sequence.
	args = append(args,
		"-start_number", strconv.Itoa(inv.StartNumber),
		"-framerate", strconv.Itoa(inv.InputFPS),
		"-pixel_format", cfg.InputPixFmt,
		"-i", inv.InputPattern,
		"-frames:v", strconv.Itoa(inv.FrameCount),
	)

	if inv.FilterChain != "" {
		args = append(args, "-vf", inv.FilterChain)
	}

	// Output profile.
	args = append(args,
		"-c:v", "libx264",
		"-crf", strconv.Itoa(cfg.CRF),
		"-preset", cfg.Preset,
		"-pix_fmt", cfg.OutputPixFmt,
		"-movflags", "+faststart",
		"-r", strconv.Itoa(inv.OutputFPS),
		"-map_metadata", "0",
	)

	args = append(args, inv.OutputPath)
	return args
}
