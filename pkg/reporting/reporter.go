package reporting

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ducminhle1904/indicator-engine/pkg/types"
)

// DefaultReporter implements the complete Reporter interface
type DefaultReporter struct {
	console *DefaultConsoleReporter
	csv     *DefaultCSVReporter
	excel   *DefaultExcelReporter
	paths   *DefaultPathManager
}

// NewDefaultReporter creates a new default reporter with all functionality
func NewDefaultReporter(colors bool) *DefaultReporter {
	return &DefaultReporter{
		console: NewDefaultConsoleReporter(colors),
		csv:     NewDefaultCSVReporter(),
		excel:   NewDefaultExcelReporter(),
		paths:   NewDefaultPathManager(),
	}
}

func (r *DefaultReporter) OutputFrame(w io.Writer, frame *types.ResultFrame, tail int) {
	r.console.OutputFrame(w, frame, tail)
}

func (r *DefaultReporter) OutputSummary(w io.Writer, summary Summary) {
	r.console.OutputSummary(w, summary)
}

func (r *DefaultReporter) WriteFrameCSV(frame *types.ResultFrame, path string) error {
	return r.csv.WriteFrameCSV(frame, path)
}

func (r *DefaultReporter) WriteFrameXLSX(frame *types.ResultFrame, path string) error {
	return r.excel.WriteFrameXLSX(frame, path)
}

func (r *DefaultReporter) WriteSummaryJSON(summary Summary, path string) error {
	return WriteSummaryJSON(summary, path)
}

func (r *DefaultReporter) GetDefaultOutputDir(symbol, interval string) string {
	return r.paths.GetDefaultOutputDir(symbol, interval)
}

func (r *DefaultReporter) GetDefaultOutputPath(symbol, interval string) string {
	return r.paths.GetDefaultOutputPath(symbol, interval)
}

func (r *DefaultReporter) EnsureDirectoryExists(path string) error {
	return r.paths.EnsureDirectoryExists(path)
}

// WriteOutput picks the writer from the file extension
func (r *DefaultReporter) WriteOutput(frame *types.ResultFrame, summary Summary, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return r.WriteFrameCSV(frame, path)
	case ".xlsx":
		return r.WriteFrameXLSX(frame, path)
	case ".json":
		return r.WriteSummaryJSON(summary, path)
	default:
		return fmt.Errorf("unsupported output format %q (use .csv, .xlsx or .json)", filepath.Ext(path))
	}
}

var (
	_ Reporter       = (*DefaultReporter)(nil)
	_ ExcelFormatter = (*DefaultExcelReporter)(nil)
)
