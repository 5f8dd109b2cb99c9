// Package autoplan generates encode jobs from sunrise and sunset events
// found in a folder of captured frames. It reads the capture timestamps of
// the first and last frame, walks the covered days, and emits one job per
// sun event that falls inside the folder's time range.
package autoplan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/backmassage/lapsemaster/internal/config"
	"github.com/backmassage/lapsemaster/internal/exif"
	"github.com/backmassage/lapsemaster/internal/frames"
	"github.com/backmassage/lapsemaster/internal/pipeline"
	"github.com/backmassage/lapsemaster/internal/sun"
)

// eventSlack extends the folder's time range when matching sun events, so an
// event just past the last frame still produces a (shorter) clip.
const eventSlack = 2 * time.Hour

// Options configures job generation.
type Options struct {
	OutputDir string
	Timestamp bool // Overlay capture timestamps on generated jobs.
}

// Planner turns frame folders into jobs. The metadata reader is a function
// field so tests can plan without an exiftool binary.
type Planner struct {
	cfg *config.Config
	log zerolog.Logger
	loc *time.Location

	readTime func(ctx context.Context, path string) (time.Time, error)
}

// New returns a Planner for cfg's location and timezone.
func New(cfg *config.Config, log zerolog.Logger) (*Planner, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	reader := exif.NewReader(cfg)
	return &Planner{
		cfg: cfg,
		log: log,
		loc: loc,
		readTime: func(ctx context.Context, path string) (time.Time, error) {
			return reader.Time(ctx, path, loc)
		},
	}, nil
}

// Plan inspects root and returns jobs for every sun event it covers. When
// root itself holds frames it is planned directly; otherwise each subfolder
// is planned, most recent (lexicographically last) first.
func (p *Planner) Plan(ctx context.Context, root string, opts Options) ([]pipeline.Job, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read folder %q: %w", root, err)
	}

	var subdirs []string
	for _, e := range entries {
		if e.IsDir() {
			subdirs = append(subdirs, filepath.Join(root, e.Name()))
			continue
		}
		if frames.Matches(p.cfg, e.Name()) {
			return p.planFolder(ctx, root, opts)
		}
	}

	sort.Sort(sort.Reverse(sort.StringSlice(subdirs)))

	var jobs []pipeline.Job
	for _, dir := range subdirs {
		j, err := p.planFolder(ctx, dir, opts)
		if err != nil {
			p.log.Warn().Err(err).Str("folder", dir).Msg("skipping folder")
			continue
		}
		jobs = append(jobs, j...)
	}
	return jobs, nil
}

// planFolder emits the jobs for one frames folder. A folder without frames
// or without readable capture timestamps plans to nothing.
func (p *Planner) planFolder(ctx context.Context, folder string, opts Options) ([]pipeline.Job, error) {
	names, err := frames.List(p.cfg, folder)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		p.log.Debug().Str("folder", folder).Msg("no frames")
		return nil, nil
	}
	sort.Strings(names)

	t0, err := p.readTime(ctx, filepath.Join(folder, names[0]))
	if err != nil {
		p.log.Warn().Err(err).Str("folder", folder).Msg("cannot read first frame time")
		return nil, nil
	}
	tn, err := p.readTime(ctx, filepath.Join(folder, names[len(names)-1]))
	if err != nil {
		p.log.Warn().Err(err).Str("folder", folder).Msg("cannot read last frame time")
		return nil, nil
	}
	lastIndex, _ := frames.ParseIndex(p.cfg, names[len(names)-1])

	p.log.Info().
		Str("folder", folder).
		Time("from", t0).
		Time("to", tn).
		Msg("scanning for sun events")

	var jobs []pipeline.Job
	day := time.Date(t0.Year(), t0.Month(), t0.Day(), 0, 0, 0, 0, p.loc)
	lastDay := time.Date(tn.Year(), tn.Month(), tn.Day(), 0, 0, 0, 0, p.loc)

	for !day.After(lastDay) {
		for _, ev := range []sun.Event{sun.Sunrise, sun.Sunset} {
			eventTime, ok := sun.EventTime(day, p.cfg.Latitude, p.cfg.Longitude, ev, p.loc)
			if !ok {
				continue
			}
			if eventTime.Before(t0.Add(-eventSlack)) || eventTime.After(tn.Add(eventSlack)) {
				continue
			}
			if job, ok := p.eventJob(folder, t0, eventTime, ev, lastIndex, opts); ok {
				jobs = append(jobs, job)
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return jobs, nil
}

// eventJob derives the frame window for one sun event. The event sits at the
// configured ratio into the clip (sunrise earlier so the brightening sky
// dominates, sunset centered).
func (p *Planner) eventJob(folder string, t0, eventTime time.Time, ev sun.Event, lastIndex int, opts Options) (pipeline.Job, bool) {
	ratio := p.cfg.SunsetRatio
	if ev == sun.Sunrise {
		ratio = p.cfg.SunriseRatio
	}

	offset := eventTime.Sub(t0).Seconds()
	targetFrame := int(offset)/p.cfg.CaptureInterval + 1
	numFrames := p.cfg.ClipSeconds * p.cfg.DefaultFPS

	start := targetFrame - int(float64(numFrames)*ratio)
	if start < 1 {
		start = 1
	}
	end := start + numFrames
	if end > lastIndex {
		end = lastIndex
	}
	if start > lastIndex || end < start {
		return pipeline.Job{}, false
	}

	name := eventTime.Format(time.DateOnly) + "_" + string(ev)
	output := filepath.Join(opts.OutputDir, name+".mp4")
	if _, err := os.Stat(output); err == nil {
		p.log.Info().Str("output", output).Msg("skip: already exists")
		return pipeline.Job{}, false
	}

	p.log.Info().
		Str("event", string(ev)).
		Str("at", eventTime.Format("15:04")).
		Int("start", start).
		Int("end", end).
		Msg("planned clip")

	job := pipeline.NewJob(p.cfg, name, folder, output)
	job.StartFrame = start
	job.EndFrame = end
	job.Timestamp = opts.Timestamp
	return job, true
}
