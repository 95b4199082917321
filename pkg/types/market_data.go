package types

import (
	"math"
	"time"
)

// NullFloat64 is a float64 column cell that may be missing
type NullFloat64 struct {
	Float64 float64
	Valid   bool
}

// NullInt32 is an int32 column cell that may be missing
type NullInt32 struct {
	Int32 int32
	Valid bool
}

// Float returns a present cell holding v
func Float(v float64) NullFloat64 {
	return NullFloat64{Float64: v, Valid: true}
}

// Int32 returns a present cell holding v
func Int32(v int32) NullInt32 {
	return NullInt32{Int32: v, Valid: true}
}

// FloatOrNull treats NaN as missing, which is how most CSV exports encode gaps
func FloatOrNull(v float64) NullFloat64 {
	if math.IsNaN(v) {
		return NullFloat64{}
	}
	return Float(v)
}

// Floats wraps fully present values into a column
func Floats(values ...float64) []NullFloat64 {
	out := make([]NullFloat64, len(values))
	for i, v := range values {
		out[i] = Float(v)
	}
	return out
}

// PriceColumns holds aligned high/low/close columns for one symbol
type PriceColumns struct {
	High  []NullFloat64
	Low   []NullFloat64
	Close []NullFloat64
}

// Len returns the number of bars, using the close column as reference
func (p PriceColumns) Len() int {
	return len(p.Close)
}

// ResultFrame collects every computed column for reporting
type ResultFrame struct {
	Timestamps []time.Time
	High       []NullFloat64
	Low        []NullFloat64
	Close      []NullFloat64

	ATR        []NullFloat64
	Trend      []NullFloat64
	Long       []NullFloat64
	Short      []NullFloat64
	FinalUpper []NullFloat64
	FinalLower []NullFloat64
	Direction  []NullInt32

	RawEntries  []bool
	RawExits    []bool
	Entries     []bool
	Exits       []bool
	PositionIDs []int64
	Reshaped    []int64
}

// Len returns the number of rows in the frame
func (f *ResultFrame) Len() int {
	return len(f.Close)
}

// Series is a loaded input table: aligned price columns plus optional raw signals
type Series struct {
	Timestamps []time.Time
	PriceColumns

	// Nil when the source carries no signal columns
	Entries []bool
	Exits   []bool
}

// HasSignals reports whether both signal columns were loaded
func (s *Series) HasSignals() bool {
	return s.Entries != nil && s.Exits != nil
}

// HasTimestamps reports whether rows carry timestamps
func (s *Series) HasTimestamps() bool {
	return len(s.Timestamps) == s.Len() && s.Len() > 0
}

// Slice returns rows [start, end) sharing no memory with s
func (s *Series) Slice(start, end int) *Series {
	out := &Series{
		PriceColumns: PriceColumns{
			High:  append([]NullFloat64(nil), s.High[start:end]...),
			Low:   append([]NullFloat64(nil), s.Low[start:end]...),
			Close: append([]NullFloat64(nil), s.Close[start:end]...),
		},
	}
	if s.HasTimestamps() {
		out.Timestamps = append([]time.Time(nil), s.Timestamps[start:end]...)
	}
	if s.HasSignals() {
		out.Entries = append([]bool{}, s.Entries[start:end]...)
		out.Exits = append([]bool{}, s.Exits[start:end]...)
	}
	return out
}

// Clone returns a deep copy of s
func (s *Series) Clone() *Series {
	return s.Slice(0, s.Len())
}
