package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sdejongh/treesync/pkg/models"
)

// WriteReportFile writes the run report to a file
// Format can be "human" or "json"
func WriteReportFile(report *models.RunReport, path string, format string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	switch format {
	case "json":
		return NewJSONFormatter().WriteSummary(file, report)
	case "human", "":
		return writeReportHuman(report, file)
	default:
		return fmt.Errorf("unknown report format: %s", format)
	}
}

// writeReportHuman writes the report in human-readable form
func writeReportHuman(report *models.RunReport, w io.Writer) error {
	fmt.Fprintf(w, "Run Report\n")
	fmt.Fprintf(w, "==========\n\n")
	fmt.Fprintf(w, "Generated: %s\n", time.Now().Format(time.RFC3339))
	if report.OperationID != "" {
		fmt.Fprintf(w, "Operation: %s\n", report.OperationID)
	}
	fmt.Fprintf(w, "Source: %s\n", report.SourceRoot)
	fmt.Fprintf(w, "Target: %s\n", report.TargetRoot)
	fmt.Fprintf(w, "Committed: %v\n", report.Commit)
	fmt.Fprintf(w, "Duration: %s\n\n", report.Duration.Round(time.Millisecond))

	grouped := models.GroupByAction(report.Results)
	sections := []struct {
		title   string
		entries []models.Result
	}{
		{"Unchanged", grouped[models.ActionNone]},
		{"To Copy", grouped[models.ActionCopy]},
		{"To Modify", grouped[models.ActionModify]},
	}

	for _, section := range sections {
		if len(section.entries) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s (%d):\n", section.title, len(section.entries))
		for _, r := range section.entries {
			fmt.Fprintf(w, "  %s -> %s (%s)\n", r.SourcePath, r.TargetPath, formatBytes(r.Size))
		}
		fmt.Fprintf(w, "\n")
	}

	if len(report.Errors) > 0 {
		fmt.Fprintf(w, "Errors (%d):\n", len(report.Errors))
		for _, e := range report.Errors {
			fmt.Fprintf(w, "  [%s] %s: %s\n", e.Phase, e.Path, e.Error)
		}
		fmt.Fprintf(w, "\n")
	}

	fmt.Fprintf(w, "Status: %s\n", report.Status)
	return nil
}
