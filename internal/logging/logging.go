// Package logging configures the process-wide zerolog logger: console output
// with optional color, debug level gated by --verbose.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/backmassage/lapsemaster/internal/config"
)

// New returns a console logger writing to w (os.Stderr in production).
// Color is resolved from cfg.ColorMode; auto mode requires a TTY and honors
// NO_COLOR and TERM=dumb.
func New(cfg *config.Config, w io.Writer) zerolog.Logger {
	out := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.DateTime,
		NoColor:    !colorEnabled(cfg, w),
	}

	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func colorEnabled(cfg *config.Config, w io.Writer) bool {
	switch cfg.ColorMode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return false
	}
	return os.Getenv("NO_COLOR") == "" && strings.ToLower(os.Getenv("TERM")) != "dumb"
}
