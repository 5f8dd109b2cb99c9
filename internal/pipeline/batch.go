package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/backmassage/lapsemaster/internal/config"
)

// BatchOptions configures how batch description lines become jobs.
type BatchOptions struct {
	OutputDir string // Destination for <date>.mp4 outputs.
	Timestamp bool   // Overlay capture timestamps on every job.
}

// ParseLine parses one batch description line of the form
//
//	date, folder, start[, end[, fps[, rotation]]]
//
// Fields are whitespace-trimmed; trailing optional fields may be omitted or
// left empty to take the configured default. The returned warnings describe
// non-fatal downgrades (currently only unknown rotation words); err is
// non-nil for lines that cannot produce a job at all.
func ParseLine(cfg *config.Config, line string, opts BatchOptions) (Job, []string, error) {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) < 3 {
		return Job{}, nil, fmt.Errorf("need at least date, folder, start: %q", line)
	}

	date, folder := fields[0], fields[1]
	if date == "" || folder == "" {
		return Job{}, nil, fmt.Errorf("empty date or folder: %q", line)
	}

	start, err := strconv.Atoi(fields[2])
	if err != nil || start < 1 {
		return Job{}, nil, fmt.Errorf("invalid start frame %q", fields[2])
	}

	job := NewJob(cfg, date, folder, filepath.Join(opts.OutputDir, date+".mp4"))
	job.StartFrame = start
	job.Timestamp = opts.Timestamp

	if len(fields) > 3 && fields[3] != "" {
		end, err := strconv.Atoi(fields[3])
		if err != nil || end < 1 {
			return Job{}, nil, fmt.Errorf("invalid end frame %q", fields[3])
		}
		job.EndFrame = end
	}

	if len(fields) > 4 && fields[4] != "" {
		fps, err := strconv.Atoi(fields[4])
		if err != nil || fps < 1 {
			return Job{}, nil, fmt.Errorf("invalid frame rate %q", fields[4])
		}
		job.FPS = fps
	}

	var warnings []string
	if len(fields) > 5 && fields[5] != "" {
		rot, ok := config.ParseRotation(fields[5])
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown rotation %q, using none", fields[5]))
		}
		job.Rotation = rot
	}

	return job, warnings, nil
}

// RunBatch reads the batch description at path and runs each job in file
// order, one fully completing before the next begins. A single job's failure
// never aborts the batch; the returned error is non-nil only when the
// description itself cannot be read.
func RunBatch(ctx context.Context, r *Runner, path string, opts BatchOptions) (Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Stats{}, fmt.Errorf("read batch description %q: %w", path, err)
	}

	var stats Stats
	for lineNo, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		job, warnings, err := ParseLine(r.cfg, line, opts)
		if err != nil {
			detail := fmt.Sprintf("line %d: %v", lineNo+1, err)
			r.log.Error().Str("reason", string(ReasonMissingParameter)).Msg(detail)
			stats.Record(fail(Job{Name: fmt.Sprintf("line %d", lineNo+1)}, ReasonMissingParameter, detail))
			continue
		}
		for _, w := range warnings {
			r.log.Warn().Str("job", job.Name).Msg(w)
		}

		stats.Record(r.Run(ctx, job))
	}
	return stats, nil
}
