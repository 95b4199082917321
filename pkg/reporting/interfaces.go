// Package reporting renders computed indicator frames to the console, CSV, XLSX and JSON
package reporting

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/indicator-engine/pkg/types"
)

// ConsoleReporter defines interface for console output
type ConsoleReporter interface {
	OutputFrame(w io.Writer, frame *types.ResultFrame, tail int)
	OutputSummary(w io.Writer, summary Summary)
}

// FileReporter defines interface for file output
type FileReporter interface {
	WriteFrameCSV(frame *types.ResultFrame, path string) error
	WriteFrameXLSX(frame *types.ResultFrame, path string) error
	WriteSummaryJSON(summary Summary, path string) error
}

// PathManager defines interface for output path management
type PathManager interface {
	GetDefaultOutputDir(symbol, interval string) string
	GetDefaultOutputPath(symbol, interval string) string
	EnsureDirectoryExists(path string) error
}

// Reporter combines all reporting interfaces
type Reporter interface {
	ConsoleReporter
	FileReporter
	PathManager
}

// ExcelStyles holds Excel formatting styles
type ExcelStyles struct {
	HeaderStyle int
	PriceStyle  int
	BaseStyle   int
	UpStyle     int
	DownStyle   int
	EntryStyle  int
	ExitStyle   int
}

// ExcelFormatter defines interface for Excel-specific formatting
type ExcelFormatter interface {
	WriteIndicatorSheet(fx *excelize.File, sheet string, frame *types.ResultFrame, styles ExcelStyles) error
	WriteTradesSheet(fx *excelize.File, sheet string, frame *types.ResultFrame, styles ExcelStyles) error
}
