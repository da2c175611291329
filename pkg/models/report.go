package models

import (
	"time"
)

// Phase identifies where in the run an error occurred
type Phase string

const (
	// PhaseDiff covers traversal, fingerprinting, and classification
	PhaseDiff Phase = "diff"
	// PhaseApply covers materializing copy/modify actions
	PhaseApply Phase = "apply"
)

// RunReport represents the results of a diff/apply run
type RunReport struct {
	// Operation details
	OperationID string
	SourceRoot  string
	TargetRoot  string
	Commit      bool

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Statistics
	Stats Statistics

	// Results classified during the diff phase, in discovery order
	Results []Result

	// Errors encountered, aggregated across both phases
	Errors []EntryError

	// Overall status
	Status RunStatus
}

// Statistics holds run metrics
type Statistics struct {
	FilesScanned   int // Regular files discovered under the source root
	FilesCopied    int
	FilesModified  int
	FilesUnchanged int
	FilesErrored   int

	BytesScanned     int64
	BytesTransferred int64
}

// RunStatus represents the overall result
type RunStatus string

const (
	// StatusSuccess indicates all entries processed without error
	StatusSuccess RunStatus = "success"
	// StatusPartial indicates some entries failed but the run completed
	StatusPartial RunStatus = "partial"
	// StatusFailed indicates the run could not complete
	StatusFailed RunStatus = "failed"
	// StatusCancelled indicates the run was cancelled
	StatusCancelled RunStatus = "cancelled"
)

// EntryError records a per-file failure. Every error names the offending
// path and the phase it occurred in; no failure is folded into "no action".
type EntryError struct {
	Path      string
	Phase     Phase
	Action    Action
	Error     string
	Timestamp time.Time
}

// ExitCode returns the appropriate process exit code for the run status
func (s RunStatus) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusPartial:
		return 1
	case StatusFailed:
		return 2
	case StatusCancelled:
		return 3
	default:
		return 2
	}
}
