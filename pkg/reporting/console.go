package reporting

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ducminhle1904/indicator-engine/pkg/types"
)

// DefaultTail is the number of trailing rows printed by default
const DefaultTail = 20

// DefaultConsoleReporter implements console output functionality
type DefaultConsoleReporter struct {
	colors bool
}

// NewDefaultConsoleReporter creates a new console reporter
func NewDefaultConsoleReporter(colors bool) *DefaultConsoleReporter {
	return &DefaultConsoleReporter{colors: colors}
}

// RenderFrame returns the last tail rows of frame as a table; tail <= 0 prints every row
func (r *DefaultConsoleReporter) RenderFrame(frame *types.ResultFrame, tail int) string {
	cols := frameColumns(frame)

	t := table.NewWriter()
	t.SetTitle("INDICATORS")
	t.SetStyle(table.StyleRounded)

	header := make(table.Row, 0, len(cols)+1)
	header = append(header, "#")
	configs := []table.ColumnConfig{{Number: 1, Align: text.AlignRight}}
	for i, c := range cols {
		header = append(header, c.name)
		align := text.AlignRight
		if c.kind == kindTime {
			align = text.AlignLeft
		}
		configs = append(configs, table.ColumnConfig{Number: i + 2, Align: align})
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	start := 0
	if tail > 0 && frame.Len() > tail {
		start = frame.Len() - tail
	}
	for i := start; i < frame.Len(); i++ {
		row := make(table.Row, 0, len(cols)+1)
		row = append(row, i)
		for _, c := range cols {
			row = append(row, r.cell(c, i))
		}
		t.AppendRow(row)
	}
	if start > 0 {
		t.SetCaption("showing last %d of %d rows", frame.Len()-start, frame.Len())
	}
	return t.Render()
}

func (r *DefaultConsoleReporter) cell(c column, i int) string {
	v := c.value(i)
	if v == nil {
		return "-"
	}
	s := formatCell(v)
	if c.kind == kindPrice {
		s = fmt.Sprintf("%.4f", v.(float64))
	}
	if !r.colors {
		return s
	}
	switch c.kind {
	case kindDirection:
		if v.(int) > 0 {
			return text.FgGreen.Sprint(s)
		}
		return text.FgRed.Sprint(s)
	case kindSignal:
		if v.(bool) {
			return text.FgYellow.Sprint(s)
		}
	}
	return s
}

// OutputFrame prints the frame table to w
func (r *DefaultConsoleReporter) OutputFrame(w io.Writer, frame *types.ResultFrame, tail int) {
	fmt.Fprintln(w, r.RenderFrame(frame, tail))
}

// RenderSummary returns the summary as a two-column table
func (r *DefaultConsoleReporter) RenderSummary(s Summary) string {
	t := table.NewWriter()
	t.SetTitle("SUMMARY")
	t.SetStyle(table.StyleRounded)

	if s.Symbol != "" {
		t.AppendRow(table.Row{"📊 Symbol", s.Symbol})
	}
	if s.Interval != "" {
		t.AppendRow(table.Row{"⏰ Interval", s.Interval})
	}
	t.AppendRows([]table.Row{
		{"📈 Rows", s.Rows},
		{"⚠️ Missing rows", s.MissingRows},
		{"⏳ Warm-up rows", s.WarmupRows},
		{"🟢 Up bars", s.UpBars},
		{"🔴 Down bars", s.DownBars},
		{"🔄 Direction flips", s.Flips},
		{"💼 Trades", len(s.Trades)},
		{"📌 Open at end", s.OpenAtEnd},
	})
	if s.LastDirection != nil {
		t.AppendRow(table.Row{"🧭 Last direction", *s.LastDirection})
	}
	if s.LastTrend != nil {
		t.AppendRow(table.Row{"📉 Last SuperTrend", fmt.Sprintf("%.4f", *s.LastTrend)})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 20, Align: text.AlignLeft},
		{Number: 2, WidthMin: 15, Align: text.AlignRight},
	})
	return t.Render()
}

// OutputSummary prints the summary table to w
func (r *DefaultConsoleReporter) OutputSummary(w io.Writer, s Summary) {
	fmt.Fprintln(w, r.RenderSummary(s))
}
