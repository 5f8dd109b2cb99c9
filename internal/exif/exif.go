// Package exif wraps the external exiftool binary to read capture timestamps
// from image files. One call requests the ordered field candidates
// (DateTimeOriginal, then CreateDate); the first non-empty value wins.
package exif

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/backmassage/lapsemaster/internal/config"
)

// TimeLayout is the exiftool output format requested via -d, and the layout
// used to parse it back into a time.Time.
const TimeLayout = "2006-01-02 15:04:05"

// exiftoolDateFormat is TimeLayout in strftime form for exiftool's -d flag.
const exiftoolDateFormat = "%Y-%m-%d %H:%M:%S"

// fieldCandidates are the metadata fields tried in order.
var fieldCandidates = []string{"DateTimeOriginal", "CreateDate"}

// ErrUnavailable means none of the candidate fields yielded a value. Callers
// treat this as a feature downgrade, not a failure.
var ErrUnavailable = errors.New("no capture timestamp in metadata")

// Reader invokes exiftool. The zero value is not usable; construct with [NewReader].
type Reader struct {
	bin string
}

// NewReader returns a Reader using the exiftool binary from cfg.
func NewReader(cfg *config.Config) *Reader {
	return &Reader{bin: cfg.ExiftoolBin}
}

// PrimaryField is the metadata field the encoder substitutes per frame when
// the timestamp overlay is active.
func PrimaryField() string { return fieldCandidates[0] }

// Timestamp returns the capture timestamp of path as a "YYYY-MM-DD HH:MM:SS"
// string. Returns ErrUnavailable (possibly wrapped with tool detail) when no
// candidate field has a value or the tool cannot be run.
func (r *Reader) Timestamp(ctx context.Context, path string) (string, error) {
	args := make([]string, 0, len(fieldCandidates)+4)
	for _, f := range fieldCandidates {
		args = append(args, "-"+f)
	}
	args = append(args, "-d", exiftoolDateFormat, "-s3", path)

	out, err := exec.CommandContext(ctx, r.bin, args...).Output()
	if err != nil {
		return "", fmt.Errorf("%w (exiftool %q: %v)", ErrUnavailable, path, err)
	}

	ts, ok := ParseOutput(out)
	if !ok {
		return "", fmt.Errorf("%w in %q", ErrUnavailable, path)
	}
	return ts, nil
}

// Time reads the capture timestamp of path and parses it in loc.
func (r *Reader) Time(ctx context.Context, path string, loc *time.Location) (time.Time, error) {
	ts, err := r.Timestamp(ctx, path)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation(TimeLayout, ts, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q from %q: %w", ts, path, err)
	}
	return t, nil
}

// ParseOutput extracts the first non-empty line from exiftool -s3 output.
// With multiple requested fields exiftool prints one line per present field,
// in request order, so the first line is the highest-priority candidate.
// Exported for testing without a real exiftool binary.
func ParseOutput(out []byte) (string, bool) {
	for _, line := range strings.Split(string(out), "\n") {
		if s := strings.TrimSpace(line); s != "" {
			return s, true
		}
	}
	return "", false
}
