// Package filter constructs the comma-joined ffmpeg video filter chain:
// an optional rotation stage followed by an optional drawtext timestamp
// overlay. Ordering is fixed: rotating after drawing would tip the overlay
// on its side, so rotation always comes first.
package filter

import (
	"fmt"
	"os"
	"strings"

	"github.com/backmassage/lapsemaster/internal/config"
)

// ffmpeg transpose filter arguments: 1 = 90 degrees clockwise,
// 2 = 90 degrees counter-clockwise.
const (
	transposeCW  = "transpose=1"
	transposeCCW = "transpose=2"
)

// Rotation returns the filter primitive for rot, empty for RotationNone.
// The mapping is total: values outside the enum also yield empty, and the
// caller is expected to have warned about them at parse time.
func Rotation(rot config.Rotation) string {
	switch rot {
	case config.RotationCW:
		return transposeCW
	case config.RotationCCW:
		return transposeCCW
	case config.Rotation180:
		// No single 180 primitive in the reference encoder's vocabulary;
		// two clockwise quarter turns are bit-identical.
		return transposeCW + "," + transposeCW
	}
	return ""
}

// Overlay parameterizes the drawtext stage. Field names a metadata key the
// encoder substitutes per output frame; it is passed through verbatim and
// never evaluated by this program.
type Overlay struct {
	FontFile string // Empty means the encoder's default font.
	Field    string // e.g. "DateTimeOriginal".
	Style    config.TimestampStyle
}

// filterEscaper escapes characters that are special at the filtergraph or
// option-parsing level (backslash first so it does not re-escape the rest).
var filterEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`:`, `\:`,
	`,`, `\,`,
)

// Drawtext renders the drawtext primitive for o. The text source is the
// encoder-side metadata substitution directive %{metadata:<field>}, with the
// colon escaped per filtergraph quoting rules.
func Drawtext(o Overlay) string {
	opts := make([]string, 0, 9)
	if o.FontFile != "" {
		opts = append(opts, "fontfile="+filterEscaper.Replace(o.FontFile))
	}
	opts = append(opts,
		`text='%{metadata\:`+o.Field+`}'`,
		"fontcolor="+o.Style.FontColor,
		fmt.Sprintf("fontsize=%d", o.Style.FontSize),
		fmt.Sprintf("x=w-%d", o.Style.XOffset),
		fmt.Sprintf("y=h-%d", o.Style.YOffset),
	)
	if o.Style.Box {
		opts = append(opts,
			"box=1",
			"boxcolor="+o.Style.BoxColor,
			fmt.Sprintf("boxborderw=%d", o.Style.BoxPadding),
		)
	}
	return "drawtext=" + strings.Join(opts, ":")
}

// Build returns the complete filter chain for rot and overlay, or an empty
// string when neither stage applies. Callers must omit the filter argument
// entirely on empty: some encoder versions reject -vf "".
func Build(rot config.Rotation, overlay *Overlay) string {
	var stages []string
	if r := Rotation(rot); r != "" {
		stages = append(stages, r)
	}
	if overlay != nil {
		stages = append(stages, Drawtext(*overlay))
	}
	return strings.Join(stages, ",")
}

// ProbeFont returns the font file for the overlay: the configured explicit
// path when set, otherwise the first existing candidate, otherwise empty
// ("use encoder default" is a valid state).
func ProbeFont(cfg *config.Config) string {
	if cfg.Timestamp.FontPath != "" {
		return cfg.Timestamp.FontPath
	}
	for _, p := range cfg.FontCandidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
