package arrowhost

import (
	"sort"
	"time"

	"github.com/apache/arrow/go/v14/arrow"

	"github.com/ducminhle1904/indicator-engine/internal/errors"
)

// Column names looked up by Invoke
const (
	ColHigh     = "high"
	ColLow      = "low"
	ColClose    = "close"
	ColATR      = "atr"
	ColEntries  = "entries"
	ColExits    = "exits"
	ColTradeID  = "trade_id"
	ColEntryIdx = "entry_idx"
	ColExitIdx  = "exit_idx"
)

// Args carries the scalar parameters of a function call
type Args struct {
	ATRPeriod       int
	Multiplier      float64
	UpperMultiplier float64
	LowerMultiplier float64
	EntryFirst      bool
	Length          int
}

type invoker func(h *Host, rec arrow.Record, args Args) (arrow.Array, error)

var registry = map[string]invoker{
	"atr": func(h *Host, rec arrow.Record, args Args) (arrow.Array, error) {
		cols, err := columns(rec, "atr", ColHigh, ColLow, ColClose)
		if err != nil {
			return nil, err
		}
		return result(h.ATR(cols[0], cols[1], cols[2], args.ATRPeriod))
	},
	"supertrend": func(h *Host, rec arrow.Record, args Args) (arrow.Array, error) {
		cols, err := columns(rec, "supertrend", ColHigh, ColLow, ColClose)
		if err != nil {
			return nil, err
		}
		return result(h.SuperTrend(cols[0], cols[1], cols[2], args.ATRPeriod, args.Multiplier))
	},
	"supertrend_direction": func(h *Host, rec arrow.Record, args Args) (arrow.Array, error) {
		cols, err := columns(rec, "supertrend_direction", ColHigh, ColLow, ColClose)
		if err != nil {
			return nil, err
		}
		return result(h.SuperTrendDirection(cols[0], cols[1], cols[2], args.ATRPeriod, args.Multiplier))
	},
	"supertrend_with_atr": func(h *Host, rec arrow.Record, args Args) (arrow.Array, error) {
		cols, err := columns(rec, "supertrend_with_atr", ColHigh, ColLow, ColClose, ColATR)
		if err != nil {
			return nil, err
		}
		return result(h.SuperTrendWithATR(cols[0], cols[1], cols[2], cols[3], args.UpperMultiplier, args.LowerMultiplier))
	},
	"supertrend_bands": func(h *Host, rec arrow.Record, args Args) (arrow.Array, error) {
		cols, err := columns(rec, "supertrend_bands", ColHigh, ColLow, ColClose, ColATR)
		if err != nil {
			return nil, err
		}
		return result(h.SuperTrendBands(cols[0], cols[1], cols[2], cols[3], args.UpperMultiplier, args.LowerMultiplier))
	},
	"clean_entries": func(h *Host, rec arrow.Record, args Args) (arrow.Array, error) {
		cols, err := columns(rec, "clean_entries", ColEntries, ColExits)
		if err != nil {
			return nil, err
		}
		return result(h.CleanEntries(cols[0], cols[1], args.EntryFirst))
	},
	"clean_exits": func(h *Host, rec arrow.Record, args Args) (arrow.Array, error) {
		cols, err := columns(rec, "clean_exits", ColEntries, ColExits)
		if err != nil {
			return nil, err
		}
		return result(h.CleanExits(cols[0], cols[1], args.EntryFirst))
	},
	"clean_enex_position_ids": func(h *Host, rec arrow.Record, args Args) (arrow.Array, error) {
		cols, err := columns(rec, "clean_enex_position_ids", ColEntries, ColExits)
		if err != nil {
			return nil, err
		}
		return result(h.CleanEnexPositionIDs(cols[0], cols[1], args.EntryFirst))
	},
	"clean_enex_position": func(h *Host, rec arrow.Record, args Args) (arrow.Array, error) {
		cols, err := columns(rec, "clean_enex_position", ColEntries, ColExits)
		if err != nil {
			return nil, err
		}
		return result(h.CleanEnexPosition(cols[0], cols[1], args.EntryFirst))
	},
	"reshape_position_id_array": func(h *Host, rec arrow.Record, args Args) (arrow.Array, error) {
		cols, err := columns(rec, "reshape_position_id_array", ColTradeID, ColEntryIdx, ColExitIdx)
		if err != nil {
			return nil, err
		}
		return result(h.ReshapePositionIDArray(args.Length, cols[0], cols[1], cols[2]))
	},
}

// Functions lists the names accepted by Invoke
func Functions() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the named function over the columns of rec
func (h *Host) Invoke(name string, rec arrow.Record, args Args) (arrow.Array, error) {
	fn, ok := registry[name]
	if !ok {
		err := errors.NewValidationError(component, "Invoke", "unknown function").WithContext("function", name)
		h.observe(name, 0, time.Now(), err)
		return nil, err
	}
	if rec == nil {
		return nil, errors.NewValidationError(component, "Invoke", "record is nil").WithContext("function", name)
	}
	return fn(h, rec, args)
}

// result drops the typed nil a failed call returns
func result(arr arrow.Array, err error) (arrow.Array, error) {
	if err != nil {
		return nil, err
	}
	return arr, nil
}

// columns resolves record columns by name
func columns(rec arrow.Record, function string, names ...string) ([]arrow.Array, error) {
	out := make([]arrow.Array, len(names))
	for i, name := range names {
		idx := rec.Schema().FieldIndices(name)
		if len(idx) == 0 {
			return nil, errors.NewValidationError(component, "Invoke", "missing column").
				WithContext("function", function).
				WithContext("column", name)
		}
		out[i] = rec.Column(idx[0])
	}
	return out, nil
}
