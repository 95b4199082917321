// Package arrowhost exposes the indicator functions over Apache Arrow arrays.
//
// Null bitmaps carry missing values in and out. Returned arrays are owned by the
// caller and must be released; input arrays are never retained.
package arrowhost

import (
	"time"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"go.uber.org/zap"

	"github.com/ducminhle1904/indicator-engine/internal/errors"
	"github.com/ducminhle1904/indicator-engine/internal/monitoring"
	"github.com/ducminhle1904/indicator-engine/pkg/expr"
	"github.com/ducminhle1904/indicator-engine/pkg/types"
)

// Field names of struct-valued outputs
var (
	BandFields     = []string{"direction", "long", "short", "trend"}
	FullBandFields = append(append([]string{}, BandFields...), "final_upper", "final_lower")
	PositionFields = []string{"entries_out", "exits_out", "positions_out"}
)

// Host evaluates indicator functions on Arrow data
type Host struct {
	mem     memory.Allocator
	logger  *zap.Logger
	metrics *monitoring.Metrics
	engine  *expr.Engine
}

// Option configures a Host
type Option func(*Host)

// WithAllocator sets the allocator used for output arrays
func WithAllocator(mem memory.Allocator) Option {
	return func(h *Host) { h.mem = mem }
}

// WithLogger sets the structured logger
func WithLogger(logger *zap.Logger) Option {
	return func(h *Host) { h.logger = logger }
}

// WithMetrics records every invocation on m
func WithMetrics(m *monitoring.Metrics) Option {
	return func(h *Host) { h.metrics = m }
}

// WithEngineOptions overrides the gap, seed and overlap policies
func WithEngineOptions(opts expr.Options) Option {
	return func(h *Host) { h.engine = expr.New(opts) }
}

// New creates a host; without options it uses the Go allocator, a no-op logger and default policies
func New(opts ...Option) *Host {
	h := &Host{
		mem:    memory.NewGoAllocator(),
		logger: zap.NewNop(),
		engine: expr.New(expr.DefaultOptions()),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Allocator returns the allocator used for output arrays
func (h *Host) Allocator() memory.Allocator {
	return h.mem
}

// observe logs and counts one finished invocation
func (h *Host) observe(function string, rows int, start time.Time, err error) {
	if err != nil {
		category := errors.CategoryOf(err)
		if h.metrics != nil {
			h.metrics.RecordError(function, string(category))
		}
		h.logger.Warn("Indicator invocation rejected",
			zap.String("function", function),
			zap.String("category", string(category)),
			zap.Error(err))
		return
	}

	elapsed := time.Since(start)
	if h.metrics != nil {
		h.metrics.ObserveInvocation(function, rows, elapsed)
	}
	h.logger.Debug("Indicator invocation",
		zap.String("function", function),
		zap.Int("rows", rows),
		zap.Duration("duration", elapsed))
}

func (h *Host) prices(operation string, high, low, close arrow.Array) (hs, ls, cs []types.NullFloat64, err error) {
	if hs, err = floatColumn(operation, "high", high); err != nil {
		return
	}
	if ls, err = floatColumn(operation, "low", low); err != nil {
		return
	}
	cs, err = floatColumn(operation, "close", close)
	return
}

// ATR returns the average true range as a Float64 array
func (h *Host) ATR(high, low, close arrow.Array, period int) (_ *array.Float64, err error) {
	start := time.Now()
	defer func() { h.observe("atr", lenOf(close), start, err) }()

	hs, ls, cs, err := h.prices("ATR", high, low, close)
	if err != nil {
		return nil, err
	}
	out, err := h.engine.ATR(hs, ls, cs, period)
	if err != nil {
		return nil, err
	}
	return buildFloat64(h.mem, out), nil
}

// SuperTrend returns the SuperTrend line computed with an internal ATR
func (h *Host) SuperTrend(high, low, close arrow.Array, atrPeriod int, multiplier float64) (_ *array.Float64, err error) {
	start := time.Now()
	defer func() { h.observe("supertrend", lenOf(close), start, err) }()

	hs, ls, cs, err := h.prices("SuperTrend", high, low, close)
	if err != nil {
		return nil, err
	}
	out, err := h.engine.SuperTrend(hs, ls, cs, atrPeriod, multiplier)
	if err != nil {
		return nil, err
	}
	return buildFloat64(h.mem, out), nil
}

// SuperTrendDirection returns the regime as an Int32 array (1 up, -1 down)
func (h *Host) SuperTrendDirection(high, low, close arrow.Array, atrPeriod int, multiplier float64) (_ *array.Int32, err error) {
	start := time.Now()
	defer func() { h.observe("supertrend_direction", lenOf(close), start, err) }()

	hs, ls, cs, err := h.prices("SuperTrendDirection", high, low, close)
	if err != nil {
		return nil, err
	}
	out, err := h.engine.SuperTrendDirection(hs, ls, cs, atrPeriod, multiplier)
	if err != nil {
		return nil, err
	}
	return buildInt32(h.mem, out), nil
}

// SuperTrendWithATR runs SuperTrend over a supplied ATR array and returns a
// struct array with fields direction, long, short and trend
func (h *Host) SuperTrendWithATR(high, low, close, atr arrow.Array, upperMultiplier, lowerMultiplier float64) (_ *array.Struct, err error) {
	start := time.Now()
	defer func() { h.observe("supertrend_with_atr", lenOf(close), start, err) }()

	hs, ls, cs, err := h.prices("SuperTrendWithATR", high, low, close)
	if err != nil {
		return nil, err
	}
	as, err := floatColumn("SuperTrendWithATR", "atr", atr)
	if err != nil {
		return nil, err
	}
	bands, err := h.engine.SuperTrendWithATR(hs, ls, cs, as, upperMultiplier, lowerMultiplier)
	if err != nil {
		return nil, err
	}
	return buildStruct(BandFields,
		buildInt32(h.mem, bands.Direction),
		buildFloat64(h.mem, bands.Long),
		buildFloat64(h.mem, bands.Short),
		buildFloat64(h.mem, bands.Trend),
	)
}

// SuperTrendBands is SuperTrendWithATR with the final_upper and final_lower bands appended
func (h *Host) SuperTrendBands(high, low, close, atr arrow.Array, upperMultiplier, lowerMultiplier float64) (_ *array.Struct, err error) {
	start := time.Now()
	defer func() { h.observe("supertrend_bands", lenOf(close), start, err) }()

	hs, ls, cs, err := h.prices("SuperTrendBands", high, low, close)
	if err != nil {
		return nil, err
	}
	as, err := floatColumn("SuperTrendBands", "atr", atr)
	if err != nil {
		return nil, err
	}
	bands, err := h.engine.SuperTrendWithATR(hs, ls, cs, as, upperMultiplier, lowerMultiplier)
	if err != nil {
		return nil, err
	}
	return buildStruct(FullBandFields,
		buildInt32(h.mem, bands.Direction),
		buildFloat64(h.mem, bands.Long),
		buildFloat64(h.mem, bands.Short),
		buildFloat64(h.mem, bands.Trend),
		buildFloat64(h.mem, bands.FinalUpper),
		buildFloat64(h.mem, bands.FinalLower),
	)
}

func (h *Host) signals(operation string, entries, exits arrow.Array, entryFirst bool) (expr.PositionResult, error) {
	en, err := boolColumn(operation, "entries", entries)
	if err != nil {
		return expr.PositionResult{}, err
	}
	ex, err := boolColumn(operation, "exits", exits)
	if err != nil {
		return expr.PositionResult{}, err
	}
	return h.engine.CleanEnexPosition(en, ex, entryFirst)
}

// CleanEntries returns the cleaned entry column
func (h *Host) CleanEntries(entries, exits arrow.Array, entryFirst bool) (_ *array.Boolean, err error) {
	start := time.Now()
	defer func() { h.observe("clean_entries", lenOf(entries), start, err) }()

	res, err := h.signals("CleanEntries", entries, exits, entryFirst)
	if err != nil {
		return nil, err
	}
	return buildBool(h.mem, res.Entries), nil
}

// CleanExits returns the cleaned exit column
func (h *Host) CleanExits(entries, exits arrow.Array, entryFirst bool) (_ *array.Boolean, err error) {
	start := time.Now()
	defer func() { h.observe("clean_exits", lenOf(entries), start, err) }()

	res, err := h.signals("CleanExits", entries, exits, entryFirst)
	if err != nil {
		return nil, err
	}
	return buildBool(h.mem, res.Exits), nil
}

// CleanEnexPositionIDs returns the position id column as Int64 (-1 while flat)
func (h *Host) CleanEnexPositionIDs(entries, exits arrow.Array, entryFirst bool) (_ *array.Int64, err error) {
	start := time.Now()
	defer func() { h.observe("clean_enex_position_ids", lenOf(entries), start, err) }()

	res, err := h.signals("CleanEnexPositionIDs", entries, exits, entryFirst)
	if err != nil {
		return nil, err
	}
	return buildInt64(h.mem, res.PositionIDs), nil
}

// CleanEnexPosition returns a struct array with fields entries_out, exits_out and positions_out
func (h *Host) CleanEnexPosition(entries, exits arrow.Array, entryFirst bool) (_ *array.Struct, err error) {
	start := time.Now()
	defer func() { h.observe("clean_enex_position", lenOf(entries), start, err) }()

	res, err := h.signals("CleanEnexPosition", entries, exits, entryFirst)
	if err != nil {
		return nil, err
	}
	return buildStruct(PositionFields,
		buildBool(h.mem, res.Entries),
		buildBool(h.mem, res.Exits),
		buildInt64(h.mem, res.PositionIDs),
	)
}

// ReshapePositionIDArray expands a trade table into an Int64 position id array.
// Table rows with a null in any column are skipped.
func (h *Host) ReshapePositionIDArray(length int, tradeIDs, entryIndices, exitIndices arrow.Array) (_ *array.Int64, err error) {
	start := time.Now()
	defer func() { h.observe("reshape_position_id_array", lenOf(tradeIDs), start, err) }()

	const op = "ReshapePositionIDArray"
	ids, idValid, err := indexColumn(op, "trade_id", tradeIDs)
	if err != nil {
		return nil, err
	}
	entry, entryValid, err := indexColumn(op, "entry_idx", entryIndices)
	if err != nil {
		return nil, err
	}
	exit, exitValid, err := indexColumn(op, "exit_idx", exitIndices)
	if err != nil {
		return nil, err
	}
	if len(ids) != len(entry) || len(ids) != len(exit) {
		return nil, errors.NewConfigurationError(component, op, "trade table columns have different lengths").
			WithContext("trade_id", len(ids)).
			WithContext("entry_idx", len(entry)).
			WithContext("exit_idx", len(exit))
	}

	keptIDs := make([]int64, 0, len(ids))
	keptEntry := make([]int64, 0, len(ids))
	keptExit := make([]int64, 0, len(ids))
	for i := range ids {
		if !idValid[i] || !entryValid[i] || !exitValid[i] {
			continue
		}
		keptIDs = append(keptIDs, ids[i])
		keptEntry = append(keptEntry, entry[i])
		keptExit = append(keptExit, exit[i])
	}

	out, err := h.engine.ReshapePositionIDArray(length, keptIDs, keptEntry, keptExit)
	if err != nil {
		return nil, err
	}
	return buildInt64(h.mem, out), nil
}

func lenOf(arr arrow.Array) int {
	if arr == nil {
		return 0
	}
	return arr.Len()
}
