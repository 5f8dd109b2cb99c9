package ffmpeg

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/backmassage/lapsemaster/internal/config"
)

// ExecResult holds the outcome of a single ffmpeg invocation.
type ExecResult struct {
	Stderr string
	Err    error
}

// Execute builds and runs the ffmpeg command for one invocation, blocking
// until the process exits. When verbose, stderr is tee'd to os.Stderr in real
// time; otherwise it is captured silently for failure reporting. A non-nil
// Err alone does not decide job failure: the runner also checks that the
// output file exists.
func Execute(ctx context.Context, cfg *config.Config, inv *Invocation) ExecResult {
	args := Build(cfg, inv)

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stderrBuf bytes.Buffer
	if cfg.Verbose {
		cmd.Stderr = io.MultiWriter(&stderrBuf, os.Stderr)
	} else {
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()
	return ExecResult{
		Stderr: stderrBuf.String(),
		Err:    err,
	}
}
