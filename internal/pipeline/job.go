// Package pipeline orchestrates per-job validation, frame range resolution,
// filter construction, encoder invocation, and batch summary accounting.
package pipeline

import (
	"github.com/google/uuid"

	"github.com/backmassage/lapsemaster/internal/config"
)

// Job describes one time-lapse encode. A Job is owned by the Runner for the
// duration of its encode; nothing is shared between jobs.
type Job struct {
	ID         string // Random identifier threaded through logs.
	Name       string // Display label, normally the batch date field.
	Folder     string // Source frame folder.
	OutputPath string
	StartFrame int
	EndFrame   int // 0 = auto-detect from the folder.
	FPS        int
	Rotation   config.Rotation
	Timestamp  bool // Overlay capture timestamps on each frame.
	Style      config.TimestampStyle
}

// NewJob returns a Job with a fresh ID and per-config defaults filled in.
func NewJob(cfg *config.Config, name, folder, outputPath string) Job {
	return Job{
		ID:         uuid.NewString(),
		Name:       name,
		Folder:     folder,
		OutputPath: outputPath,
		StartFrame: 1,
		FPS:        cfg.DefaultFPS,
		Rotation:   cfg.DefaultRotation,
		Style:      cfg.Timestamp,
	}
}

// Status is the terminal state of a job.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// FailReason classifies why a job failed. Non-fatal conditions (metadata
// unavailable, unknown rotation) are downgraded in place and never appear
// here.
type FailReason string

const (
	ReasonNone             FailReason = ""
	ReasonFolderNotFound   FailReason = "FolderNotFound"
	ReasonNoFramesFound    FailReason = "NoFramesFound"
	ReasonEmptyRange       FailReason = "EmptyRange"
	ReasonMissingParameter FailReason = "MissingParameter"
	ReasonEncodeFailed     FailReason = "EncodeFailed"
)

// Outcome records how one job ended. Created exactly once per job after the
// encoder terminates (or the job is rejected before reaching it); immutable
// thereafter.
type Outcome struct {
	Job        Job
	Status     Status
	Reason     FailReason
	Detail     string // Human-readable elaboration of Reason.
	OutputSize int64  // Bytes written, success only.
}

// Succeeded reports whether the job produced its output.
func (o Outcome) Succeeded() bool { return o.Status == StatusSucceeded }
