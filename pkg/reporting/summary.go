package reporting

import (
	"github.com/ducminhle1904/indicator-engine/pkg/expr"
	"github.com/ducminhle1904/indicator-engine/pkg/types"
)

// Summary aggregates a computed frame
type Summary struct {
	Symbol   string `json:"symbol,omitempty"`
	Interval string `json:"interval,omitempty"`

	Rows        int `json:"rows"`
	MissingRows int `json:"missing_rows"`
	WarmupRows  int `json:"warmup_rows"`

	UpBars   int `json:"up_bars"`
	DownBars int `json:"down_bars"`
	Flips    int `json:"direction_flips"`

	// Last regime and line value, nil before warm-up completes
	LastDirection *int     `json:"last_direction,omitempty"`
	LastTrend     *float64 `json:"last_trend,omitempty"`

	Trades    []expr.TradeSpan `json:"trades"`
	OpenAtEnd bool             `json:"open_at_end"`
}

// Summarize computes counts over whatever columns frame carries
func Summarize(frame *types.ResultFrame) Summary {
	s := Summary{Rows: frame.Len(), Trades: []expr.TradeSpan{}}

	for i := 0; i < s.Rows; i++ {
		if !frame.High[i].Valid || !frame.Low[i].Valid || !frame.Close[i].Valid {
			s.MissingRows++
		}
	}

	if len(frame.ATR) == s.Rows {
		for _, v := range frame.ATR {
			if v.Valid {
				break
			}
			s.WarmupRows++
		}
	}

	if len(frame.Direction) == s.Rows {
		prev := int32(0)
		for _, d := range frame.Direction {
			if !d.Valid {
				continue
			}
			switch d.Int32 {
			case 1:
				s.UpBars++
			case -1:
				s.DownBars++
			}
			if prev != 0 && d.Int32 != prev {
				s.Flips++
			}
			prev = d.Int32
			last := int(d.Int32)
			s.LastDirection = &last
		}
	}

	if len(frame.Trend) == s.Rows {
		for i := s.Rows - 1; i >= 0; i-- {
			if frame.Trend[i].Valid {
				v := frame.Trend[i].Float64
				s.LastTrend = &v
				break
			}
		}
	}

	if len(frame.PositionIDs) == s.Rows {
		s.Trades = expr.SpansFromPositionIDs(frame.PositionIDs)
		s.OpenAtEnd = s.Rows > 0 && frame.PositionIDs[s.Rows-1] != expr.FlatID &&
			(len(frame.Exits) != s.Rows || !frame.Exits[s.Rows-1])
	}
	if s.Trades == nil {
		s.Trades = []expr.TradeSpan{}
	}

	return s
}
