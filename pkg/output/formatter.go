// Package output renders run results for terminals, automation, and report
// files.
package output

import (
	"fmt"
	"io"

	"github.com/sdejongh/treesync/pkg/models"
)

// Formatter defines the interface for rendering results
// Implementations include a terminal table and JSON for scripting
type Formatter interface {
	// WriteResults renders the classified results
	WriteResults(w io.Writer, results []models.Result) error

	// WriteSummary renders the final run summary
	WriteSummary(w io.Writer, report *models.RunReport) error

	// Name returns the formatter name
	Name() string
}

// NewFormatter returns the formatter registered under the given name
func NewFormatter(name string) (Formatter, error) {
	switch name {
	case "table", "":
		return NewTableFormatter(), nil
	case "json":
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", name)
	}
}

// orderedForDisplay returns results with the no-action block first, followed
// by copy and modify entries in their original discovery order
func orderedForDisplay(results []models.Result) []models.Result {
	ordered := make([]models.Result, 0, len(results))
	for _, r := range results {
		if !r.Action.MutatesTarget() {
			ordered = append(ordered, r)
		}
	}
	for _, r := range results {
		if r.Action.MutatesTarget() {
			ordered = append(ordered, r)
		}
	}
	return ordered
}

// formatBytes formats a byte count in human-readable form
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
