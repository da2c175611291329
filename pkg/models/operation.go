package models

import (
	"time"
)

// RunOperation represents a single diff/apply run configuration
type RunOperation struct {
	ID             string
	SourceRoot     string
	TargetRoot     string
	Commit         bool // false = dry run, report actions without mutating
	MaxWorkers     int
	BufferSize     int
	BandwidthLimit int64 // bytes per second, 0 = unlimited
	CreatedAt      time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
}

// Validate checks if the operation configuration is valid
func (op *RunOperation) Validate() error {
	if op.SourceRoot == "" {
		return &ValidationError{Field: "SourceRoot", Message: "source root is required"}
	}
	if op.TargetRoot == "" {
		return &ValidationError{Field: "TargetRoot", Message: "target root is required"}
	}
	if op.MaxWorkers < 1 {
		return &ValidationError{Field: "MaxWorkers", Message: "max workers must be at least 1"}
	}
	if op.BufferSize < 1024 {
		return &ValidationError{Field: "BufferSize", Message: "buffer size must be at least 1024 bytes"}
	}
	return nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
