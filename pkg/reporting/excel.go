package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/indicator-engine/pkg/expr"
	"github.com/ducminhle1904/indicator-engine/pkg/types"
)

// Sheet names of the workbook
const (
	IndicatorsSheet = "Indicators"
	TradesSheet     = "Trades"
	SummarySheet    = "Summary"
)

// DefaultExcelReporter implements Excel output functionality
type DefaultExcelReporter struct{}

// NewDefaultExcelReporter creates a new Excel reporter
func NewDefaultExcelReporter() *DefaultExcelReporter {
	return &DefaultExcelReporter{}
}

// WriteFrameXLSX writes the frame, its trade table and a summary to a workbook
func (r *DefaultExcelReporter) WriteFrameXLSX(frame *types.ResultFrame, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	if err := fx.SetSheetName(fx.GetSheetName(0), IndicatorsSheet); err != nil {
		return err
	}
	if _, err := fx.NewSheet(TradesSheet); err != nil {
		return err
	}
	if _, err := fx.NewSheet(SummarySheet); err != nil {
		return err
	}

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return err
	}

	if err := r.WriteIndicatorSheet(fx, IndicatorsSheet, frame, styles); err != nil {
		return err
	}
	if err := r.WriteTradesSheet(fx, TradesSheet, frame, styles); err != nil {
		return err
	}
	if err := r.writeSummarySheet(fx, SummarySheet, Summarize(frame), styles); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

// createExcelStyles creates all Excel styles
func (r *DefaultExcelReporter) createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	border := []excelize.Border{
		{Type: "left", Color: "E0E0E0", Style: 1},
		{Type: "right", Color: "E0E0E0", Style: 1},
		{Type: "bottom", Color: "E0E0E0", Style: 1},
	}

	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF", Family: "Calibri"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F4F4F"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	priceFormat := "0.0000"
	styles.PriceStyle, err = fx.NewStyle(&excelize.Style{
		CustomNumFmt: &priceFormat,
		Alignment:    &excelize.Alignment{Horizontal: "right"},
		Border:       border,
	})
	if err != nil {
		return styles, err
	}

	styles.BaseStyle, err = fx.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    border,
	})
	if err != nil {
		return styles, err
	}

	styles.UpStyle, err = fx.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "006100"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"C6EFCE"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    border,
	})
	if err != nil {
		return styles, err
	}

	styles.DownStyle, err = fx.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "9C0006"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    border,
	})
	if err != nil {
		return styles, err
	}

	styles.EntryStyle, err = fx.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    border,
	})
	if err != nil {
		return styles, err
	}

	styles.ExitStyle, err = fx.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFF2E6"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    border,
	})
	if err != nil {
		return styles, err
	}

	return styles, nil
}

func (r *DefaultExcelReporter) writeHeader(fx *excelize.File, sheet string, headers []string, styles ExcelStyles) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := fx.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle); err != nil {
			return err
		}
	}
	return fx.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// WriteIndicatorSheet writes one row per bar; missing cells stay empty
func (r *DefaultExcelReporter) WriteIndicatorSheet(fx *excelize.File, sheet string, frame *types.ResultFrame, styles ExcelStyles) error {
	cols := frameColumns(frame)
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.name
	}
	if err := r.writeHeader(fx, sheet, headers, styles); err != nil {
		return err
	}

	for row := 0; row < frame.Len(); row++ {
		for i, c := range cols {
			v := c.value(row)
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(i+1, row+2)
			if err != nil {
				return err
			}
			if t, ok := v.(time.Time); ok {
				v = formatCell(t)
			}
			if err := fx.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
			if err := fx.SetCellStyle(sheet, cell, cell, r.styleFor(c, v, styles)); err != nil {
				return err
			}
		}
	}

	for i, c := range cols {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := 12.0
		if c.kind == kindTime {
			width = 20
		}
		if err := fx.SetColWidth(sheet, name, name, width); err != nil {
			return err
		}
	}
	return nil
}

func (r *DefaultExcelReporter) styleFor(c column, v interface{}, styles ExcelStyles) int {
	switch c.kind {
	case kindPrice:
		return styles.PriceStyle
	case kindDirection:
		if v.(int) > 0 {
			return styles.UpStyle
		}
		return styles.DownStyle
	case kindSignal:
		if v.(bool) {
			if c.name == "entry" || c.name == "clean_entry" {
				return styles.EntryStyle
			}
			return styles.ExitStyle
		}
	}
	return styles.BaseStyle
}

// WriteTradesSheet writes the trade table aggregated from the position id column
func (r *DefaultExcelReporter) WriteTradesSheet(fx *excelize.File, sheet string, frame *types.ResultFrame, styles ExcelStyles) error {
	headers := []string{"trade_id", "entry_idx", "exit_idx", "bars"}
	hasTime := len(frame.Timestamps) == frame.Len() && frame.Len() > 0
	if hasTime {
		headers = append(headers, "entry_time", "exit_time")
	}
	if err := r.writeHeader(fx, sheet, headers, styles); err != nil {
		return err
	}

	var spans []expr.TradeSpan
	if len(frame.PositionIDs) == frame.Len() {
		spans = expr.SpansFromPositionIDs(frame.PositionIDs)
	}
	for i, span := range spans {
		values := []interface{}{span.TradeID, span.EntryIndex, span.ExitIndex, span.ExitIndex - span.EntryIndex + 1}
		if hasTime {
			values = append(values, formatCell(frame.Timestamps[span.EntryIndex]), formatCell(frame.Timestamps[span.ExitIndex]))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := fx.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

func (r *DefaultExcelReporter) writeSummarySheet(fx *excelize.File, sheet string, s Summary, styles ExcelStyles) error {
	if err := r.writeHeader(fx, sheet, []string{"metric", "value"}, styles); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"rows", s.Rows},
		{"missing_rows", s.MissingRows},
		{"warmup_rows", s.WarmupRows},
		{"up_bars", s.UpBars},
		{"down_bars", s.DownBars},
		{"direction_flips", s.Flips},
		{"trades", len(s.Trades)},
		{"open_at_end", s.OpenAtEnd},
	}
	for i, values := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := fx.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return fx.SetColWidth(sheet, "A", "A", 18)
}
