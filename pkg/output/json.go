package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/sdejongh/treesync/pkg/models"
)

// JSONFormatter formats output as JSON for automation and scripting
type JSONFormatter struct{}

// JSONResultData represents a single classified file
type JSONResultData struct {
	SourcePath   string `json:"source_path"`
	TargetPath   string `json:"target_path"`
	RelativePath string `json:"relative_path"`
	Size         int64  `json:"size"`
	Action       string `json:"action"`
}

// JSONReportData represents the final report data
type JSONReportData struct {
	OperationID string           `json:"operation_id,omitempty"`
	SourceRoot  string           `json:"source_root"`
	TargetRoot  string           `json:"target_root"`
	Commit      bool             `json:"commit"`
	Status      string           `json:"status"`
	Duration    string           `json:"duration"`
	DurationMs  int64            `json:"duration_ms"`
	Stats       JSONStatsData    `json:"stats"`
	Results     []JSONResultData `json:"results,omitempty"`
	Errors      []JSONErrorData  `json:"errors,omitempty"`
}

// JSONStatsData represents statistics in JSON format
type JSONStatsData struct {
	FilesScanned     int   `json:"files_scanned"`
	FilesCopied      int   `json:"files_copied"`
	FilesModified    int   `json:"files_modified"`
	FilesUnchanged   int   `json:"files_unchanged"`
	FilesErrored     int   `json:"files_errored"`
	BytesScanned     int64 `json:"bytes_scanned"`
	BytesTransferred int64 `json:"bytes_transferred"`
}

// JSONErrorData represents an error entry
type JSONErrorData struct {
	Path      string `json:"path"`
	Phase     string `json:"phase"`
	Action    string `json:"action,omitempty"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// WriteResults renders the classified results as a JSON array
func (f *JSONFormatter) WriteResults(w io.Writer, results []models.Result) error {
	data := make([]JSONResultData, 0, len(results))
	for _, r := range orderedForDisplay(results) {
		data = append(data, newJSONResult(r))
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteSummary renders the complete report as a single JSON document
func (f *JSONFormatter) WriteSummary(w io.Writer, report *models.RunReport) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newJSONReport(report))
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}

func newJSONResult(r models.Result) JSONResultData {
	return JSONResultData{
		SourcePath:   r.SourcePath,
		TargetPath:   r.TargetPath,
		RelativePath: r.RelativePath,
		Size:         r.Size,
		Action:       string(r.Action),
	}
}

func newJSONReport(report *models.RunReport) JSONReportData {
	data := JSONReportData{
		OperationID: report.OperationID,
		SourceRoot:  report.SourceRoot,
		TargetRoot:  report.TargetRoot,
		Commit:      report.Commit,
		Status:      string(report.Status),
		Duration:    report.Duration.Round(time.Millisecond).String(),
		DurationMs:  report.Duration.Milliseconds(),
		Stats: JSONStatsData{
			FilesScanned:     report.Stats.FilesScanned,
			FilesCopied:      report.Stats.FilesCopied,
			FilesModified:    report.Stats.FilesModified,
			FilesUnchanged:   report.Stats.FilesUnchanged,
			FilesErrored:     report.Stats.FilesErrored,
			BytesScanned:     report.Stats.BytesScanned,
			BytesTransferred: report.Stats.BytesTransferred,
		},
	}

	for _, r := range report.Results {
		data.Results = append(data.Results, newJSONResult(r))
	}

	for _, e := range report.Errors {
		data.Errors = append(data.Errors, JSONErrorData{
			Path:      e.Path,
			Phase:     string(e.Phase),
			Action:    string(e.Action),
			Error:     e.Error,
			Timestamp: e.Timestamp.Format(time.RFC3339),
		})
	}

	return data
}
