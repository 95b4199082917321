package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/indicator-engine/internal/errors"
	"github.com/ducminhle1904/indicator-engine/pkg/types"
)

// Five bars with a constant ATR of 1; regime turns up on bar 1 and down on bar 3
func handBars() (high, low, close, atr []types.NullFloat64) {
	high = types.Floats(11, 12, 13, 12, 11)
	low = types.Floats(9, 10, 11, 10, 9)
	close = types.Floats(10, 11.5, 12.5, 10.5, 9.5)
	atr = types.Floats(1, 1, 1, 1, 1)
	return
}

func TestSuperTrend_HandComputed(t *testing.T) {
	high, low, close, atr := handBars()

	bands, err := NewSuperTrendWithParams(1, 1).Compute(high, low, close, atr)
	require.NoError(t, err)

	assert.Equal(t, []types.NullInt32{{}, types.Int32(1), types.Int32(1), types.Int32(-1), types.Int32(-1)}, bands.Direction)
	assert.Equal(t, []types.NullFloat64{{}, types.Float(10), types.Float(11), {}, {}}, bands.Long)
	assert.Equal(t, []types.NullFloat64{{}, {}, {}, types.Float(12), types.Float(11)}, bands.Short)
	assert.Equal(t, []types.NullFloat64{{}, types.Float(10), types.Float(11), types.Float(12), types.Float(11)}, bands.Trend)
	assert.Equal(t, types.Floats(11, 11, 13, 12, 11), bands.FinalUpper)
	assert.Equal(t, types.Floats(9, 10, 11, 11, 9), bands.FinalLower)
}

func TestSuperTrend_SeedUp(t *testing.T) {
	high, low, close, atr := handBars()

	bands, err := NewSuperTrendWithParams(1, 1).WithSeedPolicy(SeedUp).Compute(high, low, close, atr)
	require.NoError(t, err)

	assert.Equal(t, types.Int32(1), bands.Direction[0])
	assert.Equal(t, types.Float(9), bands.Long[0])
	assert.Equal(t, types.Float(9), bands.Trend[0])
	assert.False(t, bands.Short[0].Valid)
	// Later bars are unaffected by the seed regime once a break occurs
	assert.Equal(t, types.Int32(-1), bands.Direction[3])
}

func TestSuperTrend_AsymmetricMultipliers(t *testing.T) {
	high, low, close, atr := handBars()

	bands, err := NewSuperTrendWithParams(2, 0.5).WithSeedPolicy(SeedUp).Compute(high, low, close, atr)
	require.NoError(t, err)

	assert.Equal(t, types.Float(12), bands.FinalUpper[0])
	assert.Equal(t, types.Float(9.5), bands.FinalLower[0])
}

func TestSuperTrend_InteriorNullsDoNotCorruptLaterRows(t *testing.T) {
	high, low, close, atr := handBars()
	reference, err := NewSuperTrendWithParams(1, 1).Compute(high, low, close, atr)
	require.NoError(t, err)

	insertNull := func(col []types.NullFloat64, at int) []types.NullFloat64 {
		out := append([]types.NullFloat64{}, col[:at]...)
		out = append(out, types.NullFloat64{})
		return append(out, col[at:]...)
	}
	for _, column := range []string{"high", "low", "close", "atr"} {
		t.Run(column, func(t *testing.T) {
			h, l, c, a := high, low, close, atr
			// Keep other columns aligned by duplicating the neighbouring present value
			pad := func(col []types.NullFloat64) []types.NullFloat64 {
				out := append([]types.NullFloat64{}, col[:3]...)
				out = append(out, col[2])
				return append(out, col[3:]...)
			}
			h, l, c, a = pad(h), pad(l), pad(c), pad(a)
			switch column {
			case "high":
				h = insertNull(high, 3)
			case "low":
				l = insertNull(low, 3)
			case "close":
				c = insertNull(close, 3)
			case "atr":
				a = insertNull(atr, 3)
			}

			bands, err := NewSuperTrendWithParams(1, 1).Compute(h, l, c, a)
			require.NoError(t, err)
			require.Equal(t, 6, bands.Len())

			assert.False(t, bands.Direction[3].Valid)
			assert.False(t, bands.Long[3].Valid)
			assert.False(t, bands.Short[3].Valid)
			assert.False(t, bands.Trend[3].Valid)
			for i := 0; i < 3; i++ {
				assert.Equal(t, reference.Trend[i], bands.Trend[i])
				assert.Equal(t, reference.Direction[i], bands.Direction[i])
			}
			for i := 4; i < 6; i++ {
				assert.Equal(t, reference.Trend[i-1], bands.Trend[i])
				assert.Equal(t, reference.Direction[i-1], bands.Direction[i])
			}
		})
	}
}

func TestSuperTrend_WarmUpMatchesATR(t *testing.T) {
	high, low, close := refColumns()
	atr := NewATR(14)

	bands, err := NewSuperTrendWithParams(3, 3).WithSeedPolicy(SeedUp).ComputeFromPrices(high, low, close, atr)
	require.NoError(t, err)
	atrValues, err := atr.Compute(high, low, close)
	require.NoError(t, err)

	for i := range atrValues {
		assert.Equal(t, atrValues[i].Valid, bands.Trend[i].Valid, "index %d", i)
		assert.Equal(t, atrValues[i].Valid, bands.Direction[i].Valid, "index %d", i)
	}
	require.True(t, bands.Trend[13].Valid)
	assert.Greater(t, bands.Trend[13].Float64, 0.0)
	assert.Contains(t, []int32{1, -1}, bands.Direction[13].Int32)
}

func TestSuperTrend_DirectionDomain(t *testing.T) {
	h, l, c := randomWalk(500, 11)
	high, low, close := types.Floats(h...), types.Floats(l...), types.Floats(c...)
	for _, i := range []int{40, 41, 200, 333} {
		close[i] = types.NullFloat64{}
	}

	for _, seed := range []SeedPolicy{SeedUnknown, SeedUp} {
		bands, err := NewSuperTrendWithParams(2, 2).WithSeedPolicy(seed).ComputeFromPrices(high, low, close, NewATR(10))
		require.NoError(t, err)

		for i, d := range bands.Direction {
			if !d.Valid {
				assert.False(t, bands.Trend[i].Valid)
				continue
			}
			assert.Contains(t, []int32{1, -1}, d.Int32, "index %d", i)
			if d.Int32 == 1 {
				assert.Equal(t, bands.FinalLower[i], bands.Trend[i])
				assert.False(t, bands.Short[i].Valid)
			} else {
				assert.Equal(t, bands.FinalUpper[i], bands.Trend[i])
				assert.False(t, bands.Long[i].Valid)
			}
		}
	}
}

func TestSuperTrend_EmptyInput(t *testing.T) {
	bands, err := NewSuperTrend().Compute(nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, bands.Len())
	assert.NotNil(t, bands.Direction)
}

func TestSuperTrend_ConfigurationErrors(t *testing.T) {
	high, low, close, atr := handBars()

	tests := []struct {
		name  string
		upper float64
		lower float64
	}{
		{"negative upper", -1, 3},
		{"negative lower", 3, -0.1},
		{"nan", math.NaN(), 3},
		{"inf", 3, math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bands, err := NewSuperTrendWithParams(tt.upper, tt.lower).Compute(high, low, close, atr)
			require.Error(t, err)
			assert.True(t, errors.IsConfiguration(err))
			assert.Contains(t, err.Error(), "upper_multiplier")
			assert.Equal(t, 0, bands.Len())
		})
	}

	_, err := NewSuperTrend().Compute(high, low, close, atr[:2])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "atr=2")
}

func TestSuperTrend_ZeroMultiplierAllowed(t *testing.T) {
	high, low, close, atr := handBars()
	bands, err := NewSuperTrendWithParams(0, 0).WithSeedPolicy(SeedUp).Compute(high, low, close, atr)
	require.NoError(t, err)
	assert.Equal(t, types.Float(10), bands.FinalUpper[0])
}

func TestSuperTrend_Deterministic(t *testing.T) {
	h, l, c := randomWalk(200, 5)
	high, low, close := types.Floats(h...), types.Floats(l...), types.Floats(c...)

	st := NewSuperTrend().WithSeedPolicy(SeedUp)
	first, err := st.ComputeFromPrices(high, low, close, NewATR(14))
	require.NoError(t, err)
	second, err := st.ComputeFromPrices(high, low, close, NewATR(14))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParseSeedPolicy(t *testing.T) {
	p, err := ParseSeedPolicy("UP")
	require.NoError(t, err)
	assert.Equal(t, SeedUp, p)

	_, err = ParseSeedPolicy("sideways")
	assert.True(t, errors.IsConfiguration(err))
}
