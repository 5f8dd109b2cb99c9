// Package config holds runtime configuration: defaults, optional TOML file
// overlay, environment overrides, and validation. Encoder defaults match the
// legacy make_timelapse.sh behavior for parity.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// SampleConfig returns the annotated sample configuration file.
func SampleConfig() string { return sampleConfig }

// Rotation selects the frame re-orientation applied before encoding.
type Rotation string

const (
	RotationNone Rotation = "none" // No rotation (default).
	RotationCW   Rotation = "cw"   // 90 degrees clockwise.
	RotationCCW  Rotation = "ccw"  // 90 degrees counter-clockwise.
	Rotation180  Rotation = "180"  // Upside down (clockwise twice).
)

// ParseRotation maps a user-supplied rotation word to a Rotation. Unknown
// values fall back to RotationNone with ok=false so callers can warn without
// failing the job.
func ParseRotation(s string) (Rotation, bool) {
	switch Rotation(s) {
	case RotationCW, RotationCCW, Rotation180:
		return Rotation(s), true
	case RotationNone, "":
		return RotationNone, true
	}
	return RotationNone, false
}

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stderr is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// TimestampStyle describes the drawtext overlay. XOffset/YOffset are measured
// from the right and bottom frame edges so the overlay stays anchored to the
// corner regardless of frame size or rotation.
type TimestampStyle struct {
	FontPath   string `toml:"font_path"` // Explicit font file; empty = probe well-known paths.
	FontSize   int    `toml:"font_size"`
	FontColor  string `toml:"font_color"` // Name or hex, drawtext syntax.
	XOffset    int    `toml:"x_offset"`
	YOffset    int    `toml:"y_offset"`
	Box        bool   `toml:"box"`
	BoxColor   string `toml:"box_color"` // Includes alpha, e.g. "black@0.4".
	BoxPadding int    `toml:"box_padding"`
}

// Config holds all runtime settings. It is populated by [Default], optionally
// overlaid by [Load], and then mutated by CLI flags before being passed (by
// pointer) to packages that need it.
type Config struct {
	// External tool binaries. Overridable via LAPSEMASTER_FFMPEG and
	// LAPSEMASTER_EXIFTOOL.
	FFmpegBin   string `toml:"ffmpeg_bin"`
	ExiftoolBin string `toml:"exiftool_bin"`

	// Frame naming convention. Fixed by the capture pipeline; kept in config
	// so the ffmpeg input pattern and the range resolver agree on one
	// definition.
	FramePrefix string `toml:"frame_prefix"`
	FrameDigits int    `toml:"frame_digits"`
	FrameExt    string `toml:"frame_ext"`

	// Encoder settings.
	CRF          int    `toml:"crf"`            // Default: 18 (constant quality).
	Preset       string `toml:"preset"`         // Default: "slow".
	InputPixFmt  string `toml:"input_pix_fmt"`  // Default: "yuvj420p" (JPEG full-range).
	OutputPixFmt string `toml:"output_pix_fmt"` // Default: "yuv420p" (playback compatibility).

	// Per-job defaults applied when a batch line omits the field.
	DefaultFPS      int      `toml:"default_fps"`
	DefaultRotation Rotation `toml:"default_rotation"`

	// Timestamp overlay.
	Timestamp      TimestampStyle `toml:"timestamp"`
	FontCandidates []string       `toml:"font_candidates"`

	// Auto mode: sun-event job planning.
	Latitude        float64 `toml:"latitude"`
	Longitude       float64 `toml:"longitude"`
	Timezone        string  `toml:"timezone"`
	CaptureInterval int     `toml:"capture_interval"` // Seconds between source frames.
	ClipSeconds     int     `toml:"clip_seconds"`     // Output clip length.
	SunriseRatio    float64 `toml:"sunrise_ratio"`    // Fraction of the clip before the event.
	SunsetRatio     float64 `toml:"sunset_ratio"`

	// Display and logging.
	Verbose   bool      `toml:"-"`
	ColorMode ColorMode `toml:"color"`
}

// Default returns a Config matching legacy make_timelapse.sh and
// automate_timelapse.py behavior.
func Default() Config {
	return Config{
		FFmpegBin:   "ffmpeg",
		ExiftoolBin: "exiftool",

		FramePrefix: "TLS_",
		FrameDigits: 9,
		FrameExt:    ".jpg",

		CRF:          18,
		Preset:       "slow",
		InputPixFmt:  "yuvj420p",
		OutputPixFmt: "yuv420p",

		DefaultFPS:      30,
		DefaultRotation: RotationNone,

		Timestamp: TimestampStyle{
			FontSize:   40,
			FontColor:  "white",
			XOffset:    450,
			YOffset:    80,
			Box:        true,
			BoxColor:   "black@0.4",
			BoxPadding: 8,
		},
		FontCandidates: []string{
			"/Library/Fonts/Arial.ttf",
			"/System/Library/Fonts/Helvetica.ttc",
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		},

		Latitude:        37.791667734079596,
		Longitude:       -122.41549323195979,
		Timezone:        "America/Los_Angeles",
		CaptureInterval: 10,
		ClipSeconds:     60,
		SunriseRatio:    0.45,
		SunsetRatio:     0.5,

		ColorMode: ColorAuto,
	}
}

// Load overlays cfg with values from the TOML file at path. A missing file is
// an error; callers decide whether the config file is optional.
func Load(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %q: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %q: %w", path, err)
	}
	return nil
}

// ApplyEnv applies environment overrides for the external tool paths.
// Typically paired with godotenv so a project-local .env works too.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("LAPSEMASTER_FFMPEG"); v != "" {
		cfg.FFmpegBin = v
	}
	if v := os.Getenv("LAPSEMASTER_EXIFTOOL"); v != "" {
		cfg.ExiftoolBin = v
	}
}

// Validate checks enum fields and numeric ranges.
func (c *Config) Validate() error {
	if _, ok := ParseRotation(string(c.DefaultRotation)); !ok {
		return fmt.Errorf("invalid default rotation %q (use cw, ccw, 180 or none)", c.DefaultRotation)
	}
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}
	if c.DefaultFPS <= 0 {
		return errors.New("default fps must be positive")
	}
	if c.CRF < 0 || c.CRF > 51 {
		return fmt.Errorf("crf %d out of range 0-51", c.CRF)
	}
	if c.FrameDigits <= 0 {
		return errors.New("frame digits must be positive")
	}
	if c.Timestamp.FontSize <= 0 {
		return errors.New("timestamp font size must be positive")
	}
	if c.Timestamp.BoxPadding < 0 {
		return errors.New("timestamp box padding must not be negative")
	}
	if c.CaptureInterval <= 0 || c.ClipSeconds <= 0 {
		return errors.New("capture interval and clip seconds must be positive")
	}
	if c.SunriseRatio <= 0 || c.SunriseRatio >= 1 || c.SunsetRatio <= 0 || c.SunsetRatio >= 1 {
		return errors.New("event ratios must be strictly between 0 and 1")
	}
	return nil
}
