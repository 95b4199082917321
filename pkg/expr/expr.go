// Package expr exposes the indicator and signal functions over plain Go columns.
//
// Every function is pure: outputs depend only on the arguments, each call owns its
// scan state, and configuration errors are returned before any row is processed.
// Column-valued outputs have the same length as the inputs, except
// ReshapePositionIDArray whose length is explicit.
package expr

import (
	"github.com/ducminhle1904/indicator-engine/internal/indicators"
	"github.com/ducminhle1904/indicator-engine/internal/position"
	"github.com/ducminhle1904/indicator-engine/pkg/types"
)

// Re-exported so callers outside the module can name results and policies
type (
	Bands          = indicators.Bands
	Direction      = indicators.Direction
	GapPolicy      = indicators.GapPolicy
	SeedPolicy     = indicators.SeedPolicy
	PositionResult = position.Result
	TradeSpan      = position.TradeSpan
	OverlapPolicy  = position.OverlapPolicy
)

const (
	GapResume = indicators.GapResume
	GapRewarm = indicators.GapRewarm

	SeedUnknown = indicators.SeedUnknown
	SeedUp      = indicators.SeedUp

	OverlapLastWins  = position.OverlapLastWins
	OverlapFirstWins = position.OverlapFirstWins
	OverlapReject    = position.OverlapReject

	FlatID = position.FlatID
)

// Options tunes the policies left open by the indicator definitions.
// The zero value is not the default; start from DefaultOptions.
type Options struct {
	Gaps    GapPolicy
	Overlap OverlapPolicy

	// Seed regime for the internal-ATR SuperTrend functions
	InternalSeed SeedPolicy
	// Seed regime when the caller supplies the ATR column
	ExternalSeed SeedPolicy
}

// DefaultOptions returns the policies used by the package-level functions
func DefaultOptions() Options {
	return Options{
		Gaps:         GapResume,
		Overlap:      OverlapLastWins,
		InternalSeed: SeedUp,
		ExternalSeed: SeedUnknown,
	}
}

// Engine evaluates the functions with a fixed set of options
type Engine struct {
	opts Options
}

// New creates an engine with the given options
func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Options returns the engine's options
func (e *Engine) Options() Options {
	return e.opts
}

var defaultEngine = New(DefaultOptions())

// ATR returns the Wilder-smoothed average true range
func (e *Engine) ATR(high, low, close []types.NullFloat64, period int) ([]types.NullFloat64, error) {
	return indicators.NewATR(period).WithGapPolicy(e.opts.Gaps).Compute(high, low, close)
}

// SuperTrendBands runs SuperTrend with an internally computed ATR and returns every band column
func (e *Engine) SuperTrendBands(high, low, close []types.NullFloat64, atrPeriod int, multiplier float64) (Bands, error) {
	st := indicators.NewSuperTrendWithParams(multiplier, multiplier).WithSeedPolicy(e.opts.InternalSeed)
	atr := indicators.NewATR(atrPeriod).WithGapPolicy(e.opts.Gaps)
	// Validate everything before the first scan
	if err := atr.Validate(); err != nil {
		return Bands{}, err
	}
	return st.ComputeFromPrices(high, low, close, atr)
}

// SuperTrend returns the SuperTrend line computed with an internal ATR
func (e *Engine) SuperTrend(high, low, close []types.NullFloat64, atrPeriod int, multiplier float64) ([]types.NullFloat64, error) {
	bands, err := e.SuperTrendBands(high, low, close, atrPeriod, multiplier)
	if err != nil {
		return nil, err
	}
	return bands.Trend, nil
}

// SuperTrendDirection returns the regime column (1 up, -1 down) computed with an internal ATR
func (e *Engine) SuperTrendDirection(high, low, close []types.NullFloat64, atrPeriod int, multiplier float64) ([]types.NullInt32, error) {
	bands, err := e.SuperTrendBands(high, low, close, atrPeriod, multiplier)
	if err != nil {
		return nil, err
	}
	return bands.Direction, nil
}

// SuperTrendWithATR runs SuperTrend over a caller-supplied ATR column
func (e *Engine) SuperTrendWithATR(high, low, close, atr []types.NullFloat64, upperMultiplier, lowerMultiplier float64) (Bands, error) {
	return indicators.NewSuperTrendWithParams(upperMultiplier, lowerMultiplier).
		WithSeedPolicy(e.opts.ExternalSeed).
		Compute(high, low, close, atr)
}

// CleanEnexPosition returns cleaned entries, exits and position ids from a single run
func (e *Engine) CleanEnexPosition(entries, exits []bool, entryFirst bool) (PositionResult, error) {
	return position.Clean(entries, exits, entryFirst)
}

// CleanEntries returns only the cleaned entry column
func (e *Engine) CleanEntries(entries, exits []bool, entryFirst bool) ([]bool, error) {
	res, err := position.Clean(entries, exits, entryFirst)
	if err != nil {
		return nil, err
	}
	return res.Entries, nil
}

// CleanExits returns only the cleaned exit column
func (e *Engine) CleanExits(entries, exits []bool, entryFirst bool) ([]bool, error) {
	res, err := position.Clean(entries, exits, entryFirst)
	if err != nil {
		return nil, err
	}
	return res.Exits, nil
}

// CleanEnexPositionIDs returns only the position id column (-1 while flat)
func (e *Engine) CleanEnexPositionIDs(entries, exits []bool, entryFirst bool) ([]int64, error) {
	res, err := position.Clean(entries, exits, entryFirst)
	if err != nil {
		return nil, err
	}
	return res.PositionIDs, nil
}

// ReshapePositionIDArray expands a trade table into a position id array of the given length
func (e *Engine) ReshapePositionIDArray(length int, tradeIDs, entryIndices, exitIndices []int64) ([]int64, error) {
	return position.ReshapeColumns(length, tradeIDs, entryIndices, exitIndices, e.opts.Overlap)
}

// SpansFromPositionIDs aggregates a position id column into its trade table
func (e *Engine) SpansFromPositionIDs(ids []int64) []TradeSpan {
	return position.SpansFromIDs(ids)
}

// Package-level functions use DefaultOptions.

func ATR(high, low, close []types.NullFloat64, period int) ([]types.NullFloat64, error) {
	return defaultEngine.ATR(high, low, close, period)
}

func SuperTrend(high, low, close []types.NullFloat64, atrPeriod int, multiplier float64) ([]types.NullFloat64, error) {
	return defaultEngine.SuperTrend(high, low, close, atrPeriod, multiplier)
}

func SuperTrendDirection(high, low, close []types.NullFloat64, atrPeriod int, multiplier float64) ([]types.NullInt32, error) {
	return defaultEngine.SuperTrendDirection(high, low, close, atrPeriod, multiplier)
}

func SuperTrendWithATR(high, low, close, atr []types.NullFloat64, upperMultiplier, lowerMultiplier float64) (Bands, error) {
	return defaultEngine.SuperTrendWithATR(high, low, close, atr, upperMultiplier, lowerMultiplier)
}

func CleanEnexPosition(entries, exits []bool, entryFirst bool) (PositionResult, error) {
	return defaultEngine.CleanEnexPosition(entries, exits, entryFirst)
}

func CleanEntries(entries, exits []bool, entryFirst bool) ([]bool, error) {
	return defaultEngine.CleanEntries(entries, exits, entryFirst)
}

func CleanExits(entries, exits []bool, entryFirst bool) ([]bool, error) {
	return defaultEngine.CleanExits(entries, exits, entryFirst)
}

func CleanEnexPositionIDs(entries, exits []bool, entryFirst bool) ([]int64, error) {
	return defaultEngine.CleanEnexPositionIDs(entries, exits, entryFirst)
}

func ReshapePositionIDArray(length int, tradeIDs, entryIndices, exitIndices []int64) ([]int64, error) {
	return defaultEngine.ReshapePositionIDArray(length, tradeIDs, entryIndices, exitIndices)
}

func SpansFromPositionIDs(ids []int64) []TradeSpan {
	return defaultEngine.SpansFromPositionIDs(ids)
}

// SignalsFromDirection marks an entry where the regime turns up and an exit where it turns down
func SignalsFromDirection(direction []types.NullInt32) (entries, exits []bool) {
	entries = make([]bool, len(direction))
	exits = make([]bool, len(direction))
	prev := indicators.DirectionUnknown
	for i, d := range direction {
		if !d.Valid {
			continue
		}
		cur := indicators.Direction(d.Int32)
		if cur != prev {
			entries[i] = cur == indicators.DirectionUp
			exits[i] = cur == indicators.DirectionDown
		}
		prev = cur
	}
	return entries, exits
}
