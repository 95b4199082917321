package indicators

import (
	"fmt"
	"math"
	"strings"

	"github.com/ducminhle1904/indicator-engine/internal/errors"
	"github.com/ducminhle1904/indicator-engine/pkg/types"
)

const (
	// DefaultSuperTrendPeriod is the default period value for ATR calculation
	DefaultSuperTrendPeriod = DefaultATRPeriod

	// DefaultSuperTrendMultiplier is the default multiplier value for bands calculation
	DefaultSuperTrendMultiplier = 3.0
)

// Direction is the SuperTrend regime
type Direction int8

const (
	DirectionUnknown Direction = 0
	DirectionUp      Direction = 1
	DirectionDown    Direction = -1
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "UP"
	case DirectionDown:
		return "DOWN"
	default:
		return "UNKNOWN"
	}
}

// Null encodes the regime for an int column; unknown is missing
func (d Direction) Null() types.NullInt32 {
	if d == DirectionUnknown {
		return types.NullInt32{}
	}
	return types.Int32(int32(d))
}

// SeedPolicy decides the regime on the first bar where bands exist
type SeedPolicy int

const (
	// SeedUnknown leaves the regime unknown until the first band break
	SeedUnknown SeedPolicy = iota
	// SeedUp starts in an uptrend so output begins on the same bar as ATR
	SeedUp
)

func (p SeedPolicy) String() string {
	switch p {
	case SeedUnknown:
		return "unknown"
	case SeedUp:
		return "up"
	default:
		return fmt.Sprintf("SeedPolicy(%d)", int(p))
	}
}

// ParseSeedPolicy parses "unknown" or "up"
func ParseSeedPolicy(s string) (SeedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unknown", "none":
		return SeedUnknown, nil
	case "up":
		return SeedUp, nil
	default:
		return SeedUnknown, errors.NewConfigurationError("SuperTrend", "ParseSeedPolicy", "unknown seed policy").
			WithContext("seed_policy", s)
	}
}

// Bands is the per-bar SuperTrend output
type Bands struct {
	Direction  []types.NullInt32
	Long       []types.NullFloat64
	Short      []types.NullFloat64
	Trend      []types.NullFloat64
	FinalUpper []types.NullFloat64
	FinalLower []types.NullFloat64
}

// Len returns the number of rows
func (b Bands) Len() int {
	return len(b.Trend)
}

func newBands(n int) Bands {
	return Bands{
		Direction:  make([]types.NullInt32, n),
		Long:       make([]types.NullFloat64, n),
		Short:      make([]types.NullFloat64, n),
		Trend:      make([]types.NullFloat64, n),
		FinalUpper: make([]types.NullFloat64, n),
		FinalLower: make([]types.NullFloat64, n),
	}
}

// SuperTrend represents the SuperTrend technical indicator
// SuperTrend is a trend-following indicator that uses ATR to create dynamic support and resistance levels
type SuperTrend struct {
	upperMultiplier float64
	lowerMultiplier float64
	seed            SeedPolicy
}

// NewSuperTrend creates a new SuperTrend indicator with the default multiplier
func NewSuperTrend() *SuperTrend {
	return NewSuperTrendWithParams(DefaultSuperTrendMultiplier, DefaultSuperTrendMultiplier)
}

// NewSuperTrendWithParams creates a SuperTrend with separate band multipliers
func NewSuperTrendWithParams(upperMultiplier, lowerMultiplier float64) *SuperTrend {
	return &SuperTrend{
		upperMultiplier: upperMultiplier,
		lowerMultiplier: lowerMultiplier,
		seed:            SeedUnknown,
	}
}

// WithSeedPolicy sets the regime used on the first computable bar
func (st *SuperTrend) WithSeedPolicy(seed SeedPolicy) *SuperTrend {
	st.seed = seed
	return st
}

// GetName returns the indicator name
func (st *SuperTrend) GetName() string {
	return "SuperTrend"
}

// GetMultipliers returns the multipliers used for band calculation
func (st *SuperTrend) GetMultipliers() (upper, lower float64) {
	return st.upperMultiplier, st.lowerMultiplier
}

// Validate checks the static parameters
func (st *SuperTrend) Validate() error {
	if !validMultiplier(st.upperMultiplier) || !validMultiplier(st.lowerMultiplier) {
		return errors.NewConfigurationError("SuperTrend", "Validate", "multipliers must be finite and non-negative").
			WithContext("upper_multiplier", st.upperMultiplier).
			WithContext("lower_multiplier", st.lowerMultiplier)
	}
	if st.seed != SeedUnknown && st.seed != SeedUp {
		return errors.NewConfigurationError("SuperTrend", "Validate", "unknown seed policy").
			WithContext("seed_policy", int(st.seed))
	}
	return nil
}

func validMultiplier(m float64) bool {
	return !math.IsNaN(m) && !math.IsInf(m, 0) && m >= 0
}

// Compute runs the band recursion over prices and an already computed ATR column
func (st *SuperTrend) Compute(high, low, close, atr []types.NullFloat64) (Bands, error) {
	if err := st.Validate(); err != nil {
		return Bands{}, err
	}
	if err := checkLengths("SuperTrend", "Compute",
		lengthOf("high", high), lengthOf("low", low), lengthOf("close", close), lengthOf("atr", atr)); err != nil {
		return Bands{}, err
	}

	out := newBands(len(close))
	state := bandState{upperMultiplier: st.upperMultiplier, lowerMultiplier: st.lowerMultiplier, seed: st.seed}
	for i := range close {
		if !high[i].Valid || !low[i].Valid || !close[i].Valid || !atr[i].Valid {
			continue
		}
		state.update(high[i].Float64, low[i].Float64, close[i].Float64, atr[i].Float64)
		state.emit(&out, i)
	}
	return out, nil
}

// ComputeFromPrices derives the ATR column with atr before running the bands
func (st *SuperTrend) ComputeFromPrices(high, low, close []types.NullFloat64, atr *ATR) (Bands, error) {
	if err := st.Validate(); err != nil {
		return Bands{}, err
	}
	atrValues, err := atr.Compute(high, low, close)
	if err != nil {
		return Bands{}, err
	}
	return st.Compute(high, low, close, atrValues)
}

// bandState is the state carried from the last known-good bar
type bandState struct {
	upperMultiplier float64
	lowerMultiplier float64
	seed            SeedPolicy

	seeded     bool
	finalUpper float64
	finalLower float64
	prevClose  float64
	direction  Direction
}

func (s *bandState) update(high, low, close, atr float64) {
	mid := (high + low) / 2.0
	basicUpper := mid + s.upperMultiplier*atr
	basicLower := mid - s.lowerMultiplier*atr

	if !s.seeded {
		s.finalUpper = basicUpper
		s.finalLower = basicLower
		if s.seed == SeedUp {
			s.direction = DirectionUp
		}
		s.prevClose = close
		s.seeded = true
		return
	}

	// Direction compares against the bands finalized on the previous good bar.
	switch {
	case close > s.finalUpper:
		s.direction = DirectionUp
	case close < s.finalLower:
		s.direction = DirectionDown
	}

	if basicUpper < s.finalUpper || s.prevClose > s.finalUpper {
		s.finalUpper = basicUpper
	}
	if basicLower > s.finalLower || s.prevClose < s.finalLower {
		s.finalLower = basicLower
	}
	s.prevClose = close
}

func (s *bandState) emit(out *Bands, i int) {
	out.FinalUpper[i] = types.Float(s.finalUpper)
	out.FinalLower[i] = types.Float(s.finalLower)
	out.Direction[i] = s.direction.Null()
	switch s.direction {
	case DirectionUp:
		out.Long[i] = types.Float(s.finalLower)
		out.Trend[i] = out.Long[i]
	case DirectionDown:
		out.Short[i] = types.Float(s.finalUpper)
		out.Trend[i] = out.Short[i]
	}
}
