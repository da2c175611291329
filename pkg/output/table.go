package output

import (
	"fmt"
	"io"
	"time"

	"github.com/pterm/pterm"

	"github.com/sdejongh/treesync/pkg/models"
)

// TableFormatter renders results as a terminal table
type TableFormatter struct{}

// NewTableFormatter creates a new table formatter
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{}
}

// WriteResults renders one row per classified file. Unchanged files are shown
// as a leading block so that the pending actions read as a contiguous list.
func (f *TableFormatter) WriteResults(w io.Writer, results []models.Result) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No files found under the source tree.")
		return err
	}

	data := pterm.TableData{models.TableHeaders()}
	for _, r := range orderedForDisplay(results) {
		data = append(data, []string{r.SourcePath, r.TargetPath, r.Action.DisplayName()})
	}

	return pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithData(data).
		WithWriter(w).
		Render()
}

// WriteSummary renders the final run summary
func (f *TableFormatter) WriteSummary(w io.Writer, report *models.RunReport) error {
	fmt.Fprintf(w, "\n")
	if report.Commit {
		fmt.Fprintf(w, "Run completed in %s\n", report.Duration.Round(time.Millisecond))
	} else {
		fmt.Fprintf(w, "Dry run completed in %s (no changes applied)\n", report.Duration.Round(time.Millisecond))
	}
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Scanned:     %d files (%s)\n", report.Stats.FilesScanned, formatBytes(report.Stats.BytesScanned))
	fmt.Fprintf(w, "  Copied:      %d\n", report.Stats.FilesCopied)
	fmt.Fprintf(w, "  Modified:    %d\n", report.Stats.FilesModified)
	fmt.Fprintf(w, "  Unchanged:   %d\n", report.Stats.FilesUnchanged)
	if report.Stats.FilesErrored > 0 {
		fmt.Fprintf(w, "  Errors:      %d\n", report.Stats.FilesErrored)
	}
	if report.Commit && report.Stats.BytesTransferred > 0 {
		fmt.Fprintf(w, "  Transferred: %s\n", formatBytes(report.Stats.BytesTransferred))
	}

	if len(report.Errors) > 0 {
		fmt.Fprintf(w, "\nErrors:\n")
		for _, e := range report.Errors {
			fmt.Fprintf(w, "  [%s] %s: %s\n", e.Phase, e.Path, e.Error)
		}
	}

	fmt.Fprintf(w, "\nStatus: %s\n", report.Status)
	return nil
}

// Name returns the formatter name
func (f *TableFormatter) Name() string {
	return "table"
}
