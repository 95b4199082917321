package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/indicator-engine/internal/errors"
	"github.com/ducminhle1904/indicator-engine/pkg/types"
)

func sampleColumns() (high, low, close []types.NullFloat64) {
	high = types.Floats(102.0, 103.5, 104.2, 103.8, 105.1, 106.3, 105.9, 107.2, 108.1, 107.8, 109.5, 108.9, 110.2, 111.0, 109.8, 112.1)
	low = types.Floats(100.2, 101.8, 102.1, 101.9, 103.2, 104.5, 103.8, 105.1, 106.2, 105.9, 107.1, 106.8, 108.5, 109.2, 107.9, 110.3)
	close = types.Floats(101.5, 102.8, 103.1, 102.9, 104.2, 105.8, 104.9, 106.5, 107.3, 106.8, 108.9, 107.5, 109.8, 110.1, 108.7, 111.5)
	return
}

func TestSuperTrend_AllIndicators(t *testing.T) {
	high, low, close := sampleColumns()

	atr, err := ATR(high, low, close, 14)
	require.NoError(t, err)
	line, err := SuperTrend(high, low, close, 14, 3.0)
	require.NoError(t, err)
	direction, err := SuperTrendDirection(high, low, close, 14, 3.0)
	require.NoError(t, err)

	require.Len(t, atr, 16)
	require.Len(t, line, 16)
	require.Len(t, direction, 16)

	for i := 0; i < 13; i++ {
		assert.False(t, atr[i].Valid)
		assert.False(t, line[i].Valid)
		assert.False(t, direction[i].Valid)
	}
	for i := 13; i < 16; i++ {
		assert.True(t, atr[i].Valid)
		assert.True(t, line[i].Valid)
		require.True(t, direction[i].Valid)
		assert.Contains(t, []int32{1, -1}, direction[i].Int32)
	}
}

func TestSuperTrendWithATR_UsesSuppliedColumn(t *testing.T) {
	high, low, close := sampleColumns()
	atr, err := ATR(high, low, close, 5)
	require.NoError(t, err)

	bands, err := SuperTrendWithATR(high, low, close, atr, 2, 1)
	require.NoError(t, err)
	require.Equal(t, len(close), bands.Len())

	// The externally fed variant waits for a band break before reporting a regime
	assert.False(t, bands.FinalUpper[3].Valid)
	assert.False(t, bands.Direction[4].Valid)
	assert.True(t, bands.FinalUpper[4].Valid)
	for i, d := range bands.Direction {
		if d.Valid {
			assert.Contains(t, []int32{1, -1}, d.Int32, "index %d", i)
		}
	}
}

func TestEngine_Options(t *testing.T) {
	high, low, close := sampleColumns()
	atr, err := ATR(high, low, close, 5)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.ExternalSeed = SeedUp
	bands, err := New(opts).SuperTrendWithATR(high, low, close, atr, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, types.Int32(1), bands.Direction[4])
	assert.Equal(t, opts, New(opts).Options())
}

func TestSuperTrend_ConfigurationErrorsBeforeWork(t *testing.T) {
	high, low, close := sampleColumns()

	_, err := SuperTrend(high, low, close, 0, 3)
	assert.True(t, errors.IsConfiguration(err))

	_, err = SuperTrendDirection(high, low, close, 14, -3)
	assert.True(t, errors.IsConfiguration(err))

	_, err = SuperTrend(high, low[:3], close, 14, 3)
	assert.True(t, errors.IsConfiguration(err))
}

func TestEmptyInputs(t *testing.T) {
	empty := []types.NullFloat64{}

	atr, err := ATR(empty, empty, empty, 14)
	require.NoError(t, err)
	assert.Len(t, atr, 0)

	line, err := SuperTrend(empty, empty, empty, 14, 3)
	require.NoError(t, err)
	assert.Len(t, line, 0)

	direction, err := SuperTrendDirection(empty, empty, empty, 14, 3)
	require.NoError(t, err)
	assert.Len(t, direction, 0)

	ids, err := CleanEnexPositionIDs([]bool{}, []bool{}, true)
	require.NoError(t, err)
	assert.Len(t, ids, 0)

	reshaped, err := ReshapePositionIDArray(0, nil, nil, nil)
	require.NoError(t, err)
	assert.Len(t, reshaped, 0)
}

func TestCleanViews_AreConsistent(t *testing.T) {
	entries := []bool{false, true, true, true, false}
	exits := []bool{false, true, false, true, true}

	combined, err := CleanEnexPosition(entries, exits, false)
	require.NoError(t, err)

	cleanEntries, err := CleanEntries(entries, exits, false)
	require.NoError(t, err)
	cleanExits, err := CleanExits(entries, exits, false)
	require.NoError(t, err)
	ids, err := CleanEnexPositionIDs(entries, exits, false)
	require.NoError(t, err)

	assert.Equal(t, combined.Entries, cleanEntries)
	assert.Equal(t, combined.Exits, cleanExits)
	assert.Equal(t, combined.PositionIDs, ids)
	assert.Equal(t, []bool{false, false, true, false, false}, cleanEntries)
	assert.Equal(t, []bool{false, false, false, true, false}, cleanExits)
	assert.Equal(t, []int64{-1, -1, 0, 0, -1}, ids)
}

func TestReshapePositionIDArray(t *testing.T) {
	out, err := ReshapePositionIDArray(10, []int64{0, 1, 2}, []int64{1, 3, 6}, []int64{2, 4, 8})
	require.NoError(t, err)
	assert.Equal(t, []int64{-1, 0, 0, 1, 1, -1, 2, 2, 2, -1}, out)

	_, err = ReshapePositionIDArray(3, []int64{0}, []int64{0}, []int64{3})
	assert.True(t, errors.IsConfiguration(err))

	out, err = New(Options{Overlap: OverlapFirstWins}).ReshapePositionIDArray(4, []int64{1, 2}, []int64{0, 1}, []int64{2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 1, 1, 2}, out)
}

func TestSignalsFromDirection(t *testing.T) {
	direction := []types.NullInt32{{}, types.Int32(1), types.Int32(1), {}, types.Int32(-1), types.Int32(-1), types.Int32(1)}

	entries, exits := SignalsFromDirection(direction)
	assert.Equal(t, []bool{false, true, false, false, false, false, true}, entries)
	assert.Equal(t, []bool{false, false, false, false, true, false, false}, exits)

	ids, err := CleanEnexPositionIDs(entries, exits, true)
	require.NoError(t, err)
	assert.Equal(t, []int64{-1, 0, 0, 0, 0, -1, 1}, ids)
}

func TestIdempotence(t *testing.T) {
	high, low, close := sampleColumns()
	close[7] = types.NullFloat64{}

	a, err := SuperTrend(high, low, close, 4, 2)
	require.NoError(t, err)
	b, err := SuperTrend(high, low, close, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
