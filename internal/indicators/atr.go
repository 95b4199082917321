package indicators

import (
	"fmt"
	"math"
	"strings"

	"github.com/ducminhle1904/indicator-engine/internal/errors"
	"github.com/ducminhle1904/indicator-engine/pkg/types"
)

const (
	// DefaultATRPeriod is the default smoothing period for ATR
	DefaultATRPeriod = 14
)

// GapPolicy decides how the Wilder recursion behaves after a missing true range
type GapPolicy int

const (
	// GapResume suppresses only the affected row and continues from the last good ATR
	GapResume GapPolicy = iota
	// GapRewarm drops the smoothing chain and re-seeds after a fresh run of period true ranges
	GapRewarm
)

func (p GapPolicy) String() string {
	switch p {
	case GapResume:
		return "resume"
	case GapRewarm:
		return "rewarm"
	default:
		return fmt.Sprintf("GapPolicy(%d)", int(p))
	}
}

// ParseGapPolicy parses "resume" or "rewarm"
func ParseGapPolicy(s string) (GapPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "resume":
		return GapResume, nil
	case "rewarm":
		return GapRewarm, nil
	default:
		return GapResume, errors.NewConfigurationError("ATR", "ParseGapPolicy", "unknown gap policy").
			WithContext("gap_policy", s)
	}
}

// ATR represents the Average True Range technical indicator
// ATR measures market volatility as a Wilder-smoothed average of true range
type ATR struct {
	period int
	gaps   GapPolicy
}

// NewATR creates a new ATR indicator with the resume gap policy
func NewATR(period int) *ATR {
	return &ATR{
		period: period,
		gaps:   GapResume,
	}
}

// WithGapPolicy sets the gap policy
func (a *ATR) WithGapPolicy(policy GapPolicy) *ATR {
	a.gaps = policy
	return a
}

// GetName returns the indicator name
func (a *ATR) GetName() string {
	return "ATR"
}

// GetPeriod returns the period used for ATR calculation
func (a *ATR) GetPeriod() int {
	return a.period
}

// GetIdlePeriod returns how many leading rows stay missing on fully present input.
// Period 1 still leaves row 0 missing because the first bar has no true range.
func (a *ATR) GetIdlePeriod() int {
	if a.period <= 1 {
		return 1
	}
	return a.period - 1
}

// Validate checks the static parameters
func (a *ATR) Validate() error {
	if a.period < 1 {
		return errors.NewConfigurationError("ATR", "Validate", "period must be at least 1").
			WithContext("period", a.period)
	}
	if a.gaps != GapResume && a.gaps != GapRewarm {
		return errors.NewConfigurationError("ATR", "Validate", "unknown gap policy").
			WithContext("gap_policy", int(a.gaps))
	}
	return nil
}

// Compute returns the ATR column for the given price columns
func (a *ATR) Compute(high, low, close []types.NullFloat64) ([]types.NullFloat64, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := checkLengths("ATR", "Compute", lengthOf("high", high), lengthOf("low", low), lengthOf("close", close)); err != nil {
		return nil, err
	}

	out := make([]types.NullFloat64, len(close))
	state := newWilderState(a.period, a.gaps)
	// Bar 0 has no previous close, so its true range never enters the chain.
	for i := 1; i < len(close); i++ {
		out[i] = state.update(trueRange(high[i], low[i], close[i-1]))
	}
	return out, nil
}

// TrueRange returns the per-bar true range; the first bar is always missing
func TrueRange(high, low, close []types.NullFloat64) ([]types.NullFloat64, error) {
	if err := checkLengths("TrueRange", "Compute", lengthOf("high", high), lengthOf("low", low), lengthOf("close", close)); err != nil {
		return nil, err
	}

	out := make([]types.NullFloat64, len(close))
	for i := 1; i < len(close); i++ {
		out[i] = trueRange(high[i], low[i], close[i-1])
	}
	return out, nil
}

// trueRange = max(High-Low, |High-PrevClose|, |Low-PrevClose|)
func trueRange(high, low, prevClose types.NullFloat64) types.NullFloat64 {
	if !high.Valid || !low.Valid || !prevClose.Valid {
		return types.NullFloat64{}
	}
	hl := high.Float64 - low.Float64
	hc := math.Abs(high.Float64 - prevClose.Float64)
	lc := math.Abs(low.Float64 - prevClose.Float64)
	return types.Float(math.Max(hl, math.Max(hc, lc)))
}

// wilderState carries the smoothing chain between bars
type wilderState struct {
	period int
	policy GapPolicy

	need   int // defined true ranges required before the next seed
	count  int
	sum    float64
	value  float64
	seeded bool
}

func newWilderState(period int, policy GapPolicy) wilderState {
	// The first window spans bars 1..period-1 because bar 0 has no true range.
	need := period - 1
	if need < 1 {
		need = 1
	}
	return wilderState{period: period, policy: policy, need: need}
}

func (s *wilderState) update(tr types.NullFloat64) types.NullFloat64 {
	if !tr.Valid {
		// Before the first value there is no state to resume from.
		if !s.seeded || s.policy == GapRewarm {
			s.seeded = false
			s.count = 0
			s.sum = 0
			s.need = s.period
		}
		return types.NullFloat64{}
	}

	if !s.seeded {
		s.sum += tr.Float64
		s.count++
		if s.count < s.need {
			return types.NullFloat64{}
		}
		s.value = s.sum / float64(s.count)
		s.seeded = true
		return types.Float(s.value)
	}

	s.value = (s.value*float64(s.period-1) + tr.Float64) / float64(s.period)
	return types.Float(s.value)
}
