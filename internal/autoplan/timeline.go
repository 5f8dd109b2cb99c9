package autoplan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/backmassage/lapsemaster/internal/frames"
	"github.com/backmassage/lapsemaster/internal/pipeline"
	"github.com/backmassage/lapsemaster/internal/sun"
)

// segment places one folder's frames on the global timeline. Per-frame
// capture times are estimated from the first frame's time plus the capture
// interval, so indexing a folder costs one metadata read instead of one per
// frame.
type segment struct {
	folder string
	start  time.Time // capture time of the first frame
	names  []string  // sorted frame filenames
	offset int       // global index of names[0]
}

func (p *Planner) interval() time.Duration {
	return time.Duration(p.cfg.CaptureInterval) * time.Second
}

func (p *Planner) segmentEnd(s segment) time.Time {
	return s.start.Add(time.Duration(len(s.names)-1) * p.interval())
}

// PlanTimeline stitches every frame folder under root into one timeline
// ordered by estimated capture time and emits one job per sun event the
// timeline covers. Each clip's frames are symlinked into a folder under
// stageRoot, renumbered from 1, so a clip spanning a folder boundary still
// encodes as one contiguous sequence.
func (p *Planner) PlanTimeline(ctx context.Context, root, stageRoot string, opts Options) ([]pipeline.Job, error) {
	segs, total, err := p.loadSegments(ctx, root)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		p.log.Info().Str("root", root).Msg("no frames on the timeline")
		return nil, nil
	}

	t0 := segs[0].start
	tn := p.segmentEnd(segs[len(segs)-1])
	p.log.Info().
		Int("frames", total).
		Time("from", t0).
		Time("to", tn).
		Msg("timeline indexed")

	var jobs []pipeline.Job
	day := time.Date(t0.Year(), t0.Month(), t0.Day(), 0, 0, 0, 0, p.loc)
	lastDay := time.Date(tn.Year(), tn.Month(), tn.Day(), 0, 0, 0, 0, p.loc)

	for !day.After(lastDay) {
		for _, ev := range []sun.Event{sun.Sunrise, sun.Sunset} {
			eventTime, ok := sun.EventTime(day, p.cfg.Latitude, p.cfg.Longitude, ev, p.loc)
			if !ok || eventTime.Before(t0) || eventTime.After(tn) {
				continue
			}
			job, ok, err := p.timelineEventJob(segs, total, eventTime, ev, stageRoot, opts)
			if err != nil {
				return nil, err
			}
			if ok {
				jobs = append(jobs, job)
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return jobs, nil
}

// loadSegments indexes every folder under root that holds matching frames.
// Folders without a readable first-frame time are skipped with a warning;
// thumbnail folders are not descended into.
func (p *Planner) loadSegments(ctx context.Context, root string) ([]segment, int, error) {
	var segs []segment
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.Contains(d.Name(), "thumbnail") {
			return filepath.SkipDir
		}
		names, err := frames.List(p.cfg, path)
		if err != nil || len(names) == 0 {
			return nil
		}
		sort.Strings(names)
		t0, err := p.readTime(ctx, filepath.Join(path, names[0]))
		if err != nil {
			p.log.Warn().Err(err).Str("folder", path).Msg("cannot read first frame time")
			return nil
		}
		segs = append(segs, segment{folder: path, start: t0, names: names})
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("index %q: %w", root, err)
	}

	sort.Slice(segs, func(i, j int) bool { return segs[i].start.Before(segs[j].start) })
	total := 0
	for i := range segs {
		segs[i].offset = total
		total += len(segs[i].names)
	}
	return segs, total, nil
}

// indexAt returns the global index of the frame nearest t. A time falling in
// a gap between sessions maps to the next session's first frame.
func (p *Planner) indexAt(segs []segment, total int, t time.Time) int {
	for _, s := range segs {
		if t.Before(s.start) {
			return s.offset
		}
		if !t.After(p.segmentEnd(s)) {
			return s.offset + int(t.Sub(s.start)/p.interval())
		}
	}
	return total - 1
}

// timelineEventJob stages the frame window around one sun event and returns
// its job. Windows running past the end of the timeline are shifted back so
// the clip keeps its full length.
func (p *Planner) timelineEventJob(segs []segment, total int, eventTime time.Time, ev sun.Event, stageRoot string, opts Options) (pipeline.Job, bool, error) {
	ratio := p.cfg.SunsetRatio
	if ev == sun.Sunrise {
		ratio = p.cfg.SunriseRatio
	}
	num := p.cfg.ClipSeconds * p.cfg.DefaultFPS
	if num > total {
		num = total
	}

	target := p.indexAt(segs, total, eventTime)
	start := target - int(float64(num)*ratio)
	if start < 0 {
		start = 0
	}
	end := start + num - 1
	if end > total-1 {
		end = total - 1
		start = end - num + 1
	}

	name := eventTime.Format(time.DateOnly) + "_" + string(ev)
	output := filepath.Join(opts.OutputDir, name+".mp4")
	if _, err := os.Stat(output); err == nil {
		p.log.Info().Str("output", output).Msg("skip: already exists")
		return pipeline.Job{}, false, nil
	}

	dir, n, err := p.stage(stageRoot, name, segs, start, end)
	if err != nil {
		return pipeline.Job{}, false, err
	}

	p.log.Info().
		Str("event", string(ev)).
		Str("at", eventTime.Format("15:04")).
		Int("frames", n).
		Msg("planned clip")

	job := pipeline.NewJob(p.cfg, name, dir, output)
	job.StartFrame = 1
	job.EndFrame = n
	job.Timestamp = opts.Timestamp
	return job, true, nil
}

// stage symlinks the global frame range [start, end] into a fresh folder
// under stageRoot, renumbered from 1, and returns the folder and frame count.
func (p *Planner) stage(stageRoot, name string, segs []segment, start, end int) (string, int, error) {
	dir := filepath.Join(stageRoot, name)
	if err := os.RemoveAll(dir); err != nil {
		return "", 0, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, err
	}

	n := 0
	for _, s := range segs {
		lo, hi := s.offset, s.offset+len(s.names)-1
		if hi < start || lo > end {
			continue
		}
		for g := max(start, lo); g <= min(end, hi); g++ {
			src, err := filepath.Abs(filepath.Join(s.folder, s.names[g-s.offset]))
			if err != nil {
				return "", 0, err
			}
			n++
			if err := os.Symlink(src, filepath.Join(dir, frames.FrameName(p.cfg, n))); err != nil {
				return "", 0, fmt.Errorf("stage %q: %w", dir, err)
			}
		}
	}
	return dir, n, nil
}
