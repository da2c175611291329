// Package apply materializes copy and modify actions against a target tree.
// A dry run never touches the target; a committed run transfers files through
// a bounded worker pool, preserving modification time and permission bits.
package apply

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sdejongh/treesync/pkg/logging"
	"github.com/sdejongh/treesync/pkg/models"
	"github.com/sdejongh/treesync/pkg/ratelimit"
	"github.com/sdejongh/treesync/pkg/storage"
)

// ProgressFunc is called with byte increments as file content is transferred
type ProgressFunc func(n int64)

// Options tunes an apply run
type Options struct {
	// MaxWorkers bounds concurrent transfers. Values below 1 mean serial.
	MaxWorkers int

	// Limiter throttles aggregate read bandwidth; nil means unlimited
	Limiter *ratelimit.Limiter

	// Progress receives transferred byte counts; nil disables reporting
	Progress ProgressFunc
}

// Outcome summarizes an apply run
type Outcome struct {
	Stats  models.Statistics
	Errors []models.EntryError
	Status models.RunStatus
}

// Applier executes the actions a diff pass produced
type Applier struct {
	source storage.Backend
	target storage.Backend
	logger logging.Logger
	opts   Options
}

// NewApplier creates an applier over the two backends
func NewApplier(source, target storage.Backend, logger logging.Logger, opts Options) *Applier {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = 1
	}
	return &Applier{
		source: source,
		target: target,
		logger: logger,
		opts:   opts,
	}
}

// Apply executes the given results. When commit is false no write of any kind
// reaches the target; the outcome still counts what a committed run would do.
// When commit is true, copy and modify entries are transferred concurrently
// and a failed entry never stops the others.
func (a *Applier) Apply(ctx context.Context, results []models.Result, commit bool) (*Outcome, error) {
	outcome := &Outcome{Status: models.StatusSuccess}

	grouped := models.GroupByAction(results)
	outcome.Stats.FilesScanned = len(results)
	outcome.Stats.FilesUnchanged = len(grouped[models.ActionNone])

	var mutations []models.Result
	for _, r := range results {
		if r.Action.MutatesTarget() {
			mutations = append(mutations, r)
		}
	}

	if !commit {
		outcome.Stats.FilesCopied = len(grouped[models.ActionCopy])
		outcome.Stats.FilesModified = len(grouped[models.ActionModify])
		a.logger.Info(ctx, "dry run complete", logging.Fields{
			"copy":      outcome.Stats.FilesCopied,
			"modify":    outcome.Stats.FilesModified,
			"no_action": outcome.Stats.FilesUnchanged,
		})
		return outcome, nil
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, a.opts.MaxWorkers)
	)

	for _, result := range mutations {
		select {
		case <-ctx.Done():
			wg.Wait()
			outcome.Status = models.StatusCancelled
			return outcome, ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(r models.Result) {
			defer wg.Done()
			defer func() { <-sem }()

			transferred, err := a.transfer(ctx, r)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				a.logger.Error(ctx, "transfer failed", err, logging.Fields{
					"path":   r.SourcePath,
					"action": string(r.Action),
				})
				outcome.Stats.FilesErrored++
				outcome.Errors = append(outcome.Errors, models.EntryError{
					Path:      r.SourcePath,
					Phase:     models.PhaseApply,
					Action:    r.Action,
					Error:     err.Error(),
					Timestamp: time.Now(),
				})
				return
			}

			outcome.Stats.BytesTransferred += transferred
			switch r.Action {
			case models.ActionCopy:
				outcome.Stats.FilesCopied++
			case models.ActionModify:
				outcome.Stats.FilesModified++
			}
			a.logger.Debug(ctx, "transferred file", logging.Fields{
				"path":  r.RelativePath,
				"bytes": transferred,
			})
		}(result)
	}

	wg.Wait()

	if ctx.Err() != nil {
		outcome.Status = models.StatusCancelled
		return outcome, ctx.Err()
	}
	if len(outcome.Errors) > 0 {
		outcome.Status = models.StatusPartial
	}
	return outcome, nil
}

// transfer streams one file from source to target, carrying its metadata
func (a *Applier) transfer(ctx context.Context, r models.Result) (int64, error) {
	info, err := a.source.Stat(ctx, r.RelativePath)
	if err != nil {
		return 0, err
	}

	reader, err := a.source.Read(ctx, r.RelativePath)
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	var src io.Reader = a.opts.Limiter.Wrap(ctx, reader)

	counter := &countingReader{inner: src, progress: a.opts.Progress}
	if err := a.target.Write(ctx, r.RelativePath, counter, info.Size, info); err != nil {
		return counter.total, err
	}

	return counter.total, nil
}

type countingReader struct {
	inner    io.Reader
	progress ProgressFunc
	total    int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.inner.Read(p)
	if n > 0 {
		c.total += int64(n)
		if c.progress != nil {
			c.progress(int64(n))
		}
	}
	return n, err
}
