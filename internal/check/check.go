// Package check provides system diagnostics (the check command) and
// pre-pipeline dependency validation for the external ffmpeg and exiftool
// binaries.
package check

import (
	"errors"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/backmassage/lapsemaster/internal/config"
	"github.com/backmassage/lapsemaster/internal/filter"
)

// Sentinel errors returned by CheckDeps when a required tool is missing.
var (
	ErrFfmpegNotFound   = errors.New("ffmpeg not found")
	ErrExiftoolNotFound = errors.New("exiftool not found (needed for timestamp overlay and auto mode)")
	ErrX264Missing      = errors.New("ffmpeg has no libx264 encoder")
)

// RunCheck runs the interactive diagnostics flow: tool versions, libx264
// availability, and the overlay font probe. Informational only; it does not
// stop on failure.
func RunCheck(cfg *config.Config, log zerolog.Logger) {
	checkFfmpeg(cfg, log)
	checkExiftool(cfg, log)
	checkFonts(cfg, log)
}

// CheckDeps is the pre-pipeline validation. exiftool is only required when
// the timestamp overlay or auto planning will run, so callers state whether
// they need it.
func CheckDeps(cfg *config.Config, needExiftool bool) error {
	if _, err := exec.LookPath(cfg.FFmpegBin); err != nil {
		return ErrFfmpegNotFound
	}
	if !hasX264(cfg) {
		return ErrX264Missing
	}
	if needExiftool {
		if _, err := exec.LookPath(cfg.ExiftoolBin); err != nil {
			return ErrExiftoolNotFound
		}
	}
	return nil
}

func checkFfmpeg(cfg *config.Config, log zerolog.Logger) {
	out, err := exec.Command(cfg.FFmpegBin, "-version").Output()
	if err != nil {
		log.Error().Str("bin", cfg.FFmpegBin).Msg("ffmpeg not runnable")
		return
	}
	log.Info().Str("version", firstLine(out)).Msg("ffmpeg")

	if hasX264(cfg) {
		log.Info().Msg("libx264 encoder available")
	} else {
		log.Error().Msg("libx264 encoder missing")
	}
}

func checkExiftool(cfg *config.Config, log zerolog.Logger) {
	out, err := exec.Command(cfg.ExiftoolBin, "-ver").Output()
	if err != nil {
		log.Warn().Str("bin", cfg.ExiftoolBin).Msg("exiftool not runnable; timestamp overlay and auto mode unavailable")
		return
	}
	log.Info().Str("version", firstLine(out)).Msg("exiftool")
}

func checkFonts(cfg *config.Config, log zerolog.Logger) {
	if font := filter.ProbeFont(cfg); font != "" {
		log.Info().Str("font", font).Msg("overlay font")
		return
	}
	log.Warn().Msg("no overlay font found; the encoder's default font will be used")
}

// hasX264 scans the encoder list for libx264.
func hasX264(cfg *config.Config) bool {
	out, err := exec.Command(cfg.FFmpegBin, "-hide_banner", "-encoders").Output()
	if err != nil {
		return false
	}
	return strings.Contains(string(out), "libx264")
}

func firstLine(out []byte) string {
	s := strings.TrimSpace(string(out))
	if i := strings.IndexByte(s, '\n'); i > 0 {
		s = s[:i]
	}
	return s
}
