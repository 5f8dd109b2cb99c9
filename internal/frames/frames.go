// Package frames resolves first/last frame indices for a numbered JPEG
// sequence. Frames follow a fixed convention: a literal prefix, a fixed-width
// zero-padded index, and an extension (e.g. TLS_000000001.jpg).
package frames

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/backmassage/lapsemaster/internal/config"
)

// Sentinel errors surfaced to the job runner as per-job failure reasons.
var (
	ErrFolderNotFound = errors.New("frame folder not found")
	ErrNoFramesFound  = errors.New("no frames matching the naming convention")
	ErrEmptyRange     = errors.New("end frame precedes start frame")
)

// Range is a resolved, inclusive frame index range.
type Range struct {
	Start int
	End   int
}

// Count returns the number of frames in the range.
func (r Range) Count() int { return r.End - r.Start + 1 }

// InputPattern returns the printf-style sequence pattern understood by the
// encoder's image demuxer, e.g. "TLS_%09d.jpg".
func InputPattern(cfg *config.Config) string {
	return fmt.Sprintf("%s%%0%dd%s", cfg.FramePrefix, cfg.FrameDigits, cfg.FrameExt)
}

// FrameName returns the filename of the frame at index, e.g. "TLS_000000042.jpg".
func FrameName(cfg *config.Config, index int) string {
	return fmt.Sprintf("%s%0*d%s", cfg.FramePrefix, cfg.FrameDigits, index, cfg.FrameExt)
}

// Matches reports whether name follows the frame naming convention: prefix,
// exactly FrameDigits decimal digits, extension.
func Matches(cfg *config.Config, name string) bool {
	if !strings.HasPrefix(name, cfg.FramePrefix) || !strings.HasSuffix(name, cfg.FrameExt) {
		return false
	}
	digits := name[len(cfg.FramePrefix) : len(name)-len(cfg.FrameExt)]
	if len(digits) != cfg.FrameDigits {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseIndex extracts the frame index from a matching filename. The numeric
// field is read with leading zeros stripped; a field that is empty or zero
// after stripping yields 1, matching the legacy script's fallback. Returns
// ok=false when name does not follow the convention.
func ParseIndex(cfg *config.Config, name string) (int, bool) {
	if !Matches(cfg, name) {
		return 0, false
	}
	digits := name[len(cfg.FramePrefix) : len(name)-len(cfg.FrameExt)]
	stripped := strings.TrimLeft(digits, "0")
	if stripped == "" {
		return 1, true
	}
	n, err := strconv.Atoi(stripped)
	if err != nil || n == 0 {
		return 1, true
	}
	return n, true
}

// List returns the frame filenames in folder that match the convention.
// The returned order is unspecified; callers needing the last frame should
// compare names, which is safe because the index width is fixed.
func List(cfg *config.Config, folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, folder)
		}
		return nil, fmt.Errorf("read frame folder %q: %w", folder, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if Matches(cfg, e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Resolve determines the frame range to encode. A positive end is trusted as
// given (no filesystem access); end <= 0 means "auto-detect from the folder",
// selecting the lexicographically-maximal matching filename, equivalent to
// numerically-maximal because the width is fixed.
func Resolve(cfg *config.Config, folder string, start, end int) (Range, error) {
	if start < 1 {
		return Range{}, fmt.Errorf("start frame must be positive, got %d", start)
	}

	if end <= 0 {
		names, err := List(cfg, folder)
		if err != nil {
			return Range{}, err
		}
		if len(names) == 0 {
			return Range{}, fmt.Errorf("%w in %s", ErrNoFramesFound, folder)
		}
		last := names[0]
		for _, n := range names[1:] {
			if n > last {
				last = n
			}
		}
		end, _ = ParseIndex(cfg, last)
	}

	if end < start {
		return Range{}, fmt.Errorf("%w: %d..%d", ErrEmptyRange, start, end)
	}
	return Range{Start: start, End: end}, nil
}
