// Package diff classifies every regular file under a source tree against a
// target tree: copy when the target path is missing, modify when it exists
// with different content, no action when the two are identical.
package diff

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sdejongh/treesync/pkg/fingerprint"
	"github.com/sdejongh/treesync/pkg/logging"
	"github.com/sdejongh/treesync/pkg/models"
	"github.com/sdejongh/treesync/pkg/storage"
)

// TypeMismatchError reports a target path that exists as a directory where a
// regular file is expected. Such an entry is never classified and never
// compared; the caller decides how to resolve the collision.
type TypeMismatchError struct {
	Path string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("target path is a directory, expected a file: %s", e.Path)
}

// Outcome holds everything a single diff pass produced
type Outcome struct {
	// Results in source-walk discovery order, one per classified file
	Results []models.Result

	// Errors for files that could not be classified, in discovery order.
	// A classification error never removes other files from Results.
	Errors []models.EntryError

	// BytesScanned is the total size of all discovered source files
	BytesScanned int64
}

// Differ walks the source tree and classifies each file against the target
type Differ struct {
	source   storage.Backend
	target   storage.Backend
	computer *fingerprint.Computer
	logger   logging.Logger
}

// NewDiffer creates a differ over the two backends
func NewDiffer(source, target storage.Backend, computer *fingerprint.Computer, logger logging.Logger) *Differ {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Differ{
		source:   source,
		target:   target,
		computer: computer,
		logger:   logger,
	}
}

// Run walks the source tree recursively and returns one result per regular
// file, in walk order. Directories are only ever descended into, never
// emitted. The target tree is read but never written.
func (d *Differ) Run(ctx context.Context) (*Outcome, error) {
	entries, err := d.source.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to walk source tree %s: %w", d.source.Root(), err)
	}

	outcome := &Outcome{}

	for _, entry := range entries {
		if entry.IsDir {
			continue
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		outcome.BytesScanned += entry.Size

		rel := entry.RelativePath
		result := models.Result{
			SourcePath:   entry.Path,
			TargetPath:   filepath.Join(d.target.Root(), rel),
			RelativePath: rel,
			Size:         entry.Size,
		}

		action, err := d.classify(ctx, rel, entry.Size)
		if err != nil {
			d.logger.Error(ctx, "classification failed", err, logging.Fields{"path": entry.Path})
			outcome.Errors = append(outcome.Errors, models.EntryError{
				Path:      entry.Path,
				Phase:     models.PhaseDiff,
				Error:     err.Error(),
				Timestamp: time.Now(),
			})
			continue
		}

		result.Action = action
		outcome.Results = append(outcome.Results, result)
		d.logger.Debug(ctx, "classified file", logging.Fields{
			"path":   entry.Path,
			"action": string(action),
		})
	}

	return outcome, nil
}

// classify decides the action for a single source file
func (d *Differ) classify(ctx context.Context, rel string, sourceSize int64) (models.Action, error) {
	targetInfo, err := d.target.Stat(ctx, rel)
	if err != nil {
		if os.IsNotExist(err) {
			return models.ActionCopy, nil
		}
		return "", fmt.Errorf("failed to stat target %s: %w", rel, err)
	}

	if targetInfo.IsDir {
		return "", &TypeMismatchError{Path: targetInfo.Path}
	}

	// Different sizes can never be identical content, so skip hashing the
	// target. No action is only ever returned after full fingerprints match.
	if sourceSize != targetInfo.Size {
		return models.ActionModify, nil
	}

	sourceFp, err := d.computer.Compute(ctx, d.source, rel)
	if err != nil {
		return "", err
	}

	targetFp, err := d.computer.Compute(ctx, d.target, rel)
	if err != nil {
		return "", err
	}

	if sourceFp.Equal(targetFp) {
		return models.ActionNone, nil
	}
	return models.ActionModify, nil
}
