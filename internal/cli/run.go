package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"

	"github.com/sdejongh/treesync/pkg/apply"
	"github.com/sdejongh/treesync/pkg/config"
	"github.com/sdejongh/treesync/pkg/diff"
	"github.com/sdejongh/treesync/pkg/fingerprint"
	"github.com/sdejongh/treesync/pkg/logging"
	"github.com/sdejongh/treesync/pkg/models"
	"github.com/sdejongh/treesync/pkg/output"
	"github.com/sdejongh/treesync/pkg/ratelimit"
	"github.com/sdejongh/treesync/pkg/storage"
)

// executeRun drives the full diff/apply pipeline shared by both commands.
// A diff command is simply a run that never commits.
func executeRun(cmd *cobra.Command, flags *RunFlags, commit, interactive bool) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := validateRunFlags(flags); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyFlagsToConfig(cfg, flags); err != nil {
		return err
	}

	operation, err := createRunOperation(cfg, flags, commit)
	if err != nil {
		return fmt.Errorf("failed to create run operation: %w", err)
	}

	logger, err := createLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	source, err := storage.NewLocal(operation.SourceRoot)
	if err != nil {
		return fmt.Errorf("failed to open source tree: %w", err)
	}
	defer source.Close()

	target, err := storage.NewLocal(operation.TargetRoot)
	if err != nil {
		return fmt.Errorf("failed to open target tree: %w", err)
	}
	defer target.Close()

	limiter := ratelimit.NewLimiter(operation.BandwidthLimit)

	computer := fingerprint.NewComputer(operation.BufferSize)
	if limiter != nil {
		computer.SetReaderWrapper(func(r io.Reader) io.Reader {
			return limiter.Wrap(ctx, r)
		})
	}

	logger.Info(ctx, "starting run", logging.Fields{
		"operation": operation.ID,
		"source":    operation.SourceRoot,
		"target":    operation.TargetRoot,
		"commit":    commit,
	})

	startTime := time.Now()

	differ := diff.NewDiffer(source, target, computer, logger)
	diffOutcome, err := differ.Run(ctx)
	if err != nil {
		return fmt.Errorf("diff failed: %w", err)
	}

	formatter, err := output.NewFormatter(cfg.Output.Format)
	if err != nil {
		return err
	}

	if !cfg.Output.Quiet {
		if err := formatter.WriteResults(cmd.OutOrStdout(), diffOutcome.Results); err != nil {
			return fmt.Errorf("failed to render results: %w", err)
		}
	}

	if commit && interactive {
		confirmed, err := confirmApply(cmd, diffOutcome.Results)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted, no changes applied.")
			commit = false
			operation.Commit = false
		}
	}

	opts := apply.Options{
		MaxWorkers: operation.MaxWorkers,
		Limiter:    limiter,
	}

	var bar *pb.ProgressBar
	if commit && cfg.Output.Progress && !cfg.Output.Quiet {
		if total := mutationBytes(diffOutcome.Results); total > 0 {
			bar = pb.Full.Start64(total)
			opts.Progress = func(n int64) { bar.Add64(n) }
		}
	}

	applier := apply.NewApplier(source, target, logger, opts)
	applyOutcome, err := applier.Apply(ctx, diffOutcome.Results, commit)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		if applyOutcome != nil && applyOutcome.Status == models.StatusCancelled {
			report := buildReport(operation, diffOutcome, applyOutcome, startTime)
			writeSummaryAndReport(cmd, formatter, cfg, flags, report)
			os.Exit(report.Status.ExitCode())
		}
		return fmt.Errorf("apply failed: %w", err)
	}

	report := buildReport(operation, diffOutcome, applyOutcome, startTime)

	logger.Info(ctx, "run complete", logging.Fields{
		"operation": operation.ID,
		"status":    string(report.Status),
		"errors":    len(report.Errors),
	})

	if err := writeSummaryAndReport(cmd, formatter, cfg, flags, report); err != nil {
		return err
	}

	os.Exit(report.Status.ExitCode())
	return nil
}

// confirmApply prompts for confirmation before mutating the target
func confirmApply(cmd *cobra.Command, results []models.Result) (bool, error) {
	pending := 0
	for _, r := range results {
		if r.Action.MutatesTarget() {
			pending++
		}
	}
	if pending == 0 {
		return true, nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Apply %d change(s) to the target tree? [y/N]: ", pending)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		return false, scanner.Err()
	}

	return ParseAnswer(scanner.Text())
}

// mutationBytes sums the sizes of all entries that will be transferred
func mutationBytes(results []models.Result) int64 {
	var total int64
	for _, r := range results {
		if r.Action.MutatesTarget() {
			total += r.Size
		}
	}
	return total
}

// buildReport merges the diff and apply outcomes into a single run report
func buildReport(operation *models.RunOperation, diffOutcome *diff.Outcome, applyOutcome *apply.Outcome, startTime time.Time) *models.RunReport {
	endTime := time.Now()

	report := &models.RunReport{
		OperationID: operation.ID,
		SourceRoot:  operation.SourceRoot,
		TargetRoot:  operation.TargetRoot,
		Commit:      operation.Commit,
		StartTime:   startTime,
		EndTime:     endTime,
		Duration:    endTime.Sub(startTime),
		Stats:       applyOutcome.Stats,
		Results:     diffOutcome.Results,
		Status:      applyOutcome.Status,
	}

	report.Stats.FilesScanned = len(diffOutcome.Results) + len(diffOutcome.Errors)
	report.Stats.BytesScanned = diffOutcome.BytesScanned
	report.Stats.FilesErrored += len(diffOutcome.Errors)

	report.Errors = append(report.Errors, diffOutcome.Errors...)
	report.Errors = append(report.Errors, applyOutcome.Errors...)

	if report.Status == models.StatusSuccess && len(report.Errors) > 0 {
		report.Status = models.StatusPartial
	}

	return report
}

// writeSummaryAndReport renders the summary and writes the report file if one
// was requested
func writeSummaryAndReport(cmd *cobra.Command, formatter output.Formatter, cfg *config.Config, flags *RunFlags, report *models.RunReport) error {
	if !cfg.Output.Quiet {
		if err := formatter.WriteSummary(cmd.OutOrStdout(), report); err != nil {
			return fmt.Errorf("failed to render summary: %w", err)
		}
	}

	if flags.Report != "" {
		if err := output.WriteReportFile(report, flags.Report, flags.ReportFormat); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	return nil
}
