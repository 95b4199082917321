package arrowhost

import (
	"testing"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ducminhle1904/indicator-engine/internal/errors"
	"github.com/ducminhle1904/indicator-engine/internal/monitoring"
	"github.com/ducminhle1904/indicator-engine/pkg/expr"
	"github.com/ducminhle1904/indicator-engine/pkg/types"
)

var (
	sampleHigh  = []float64{102.0, 103.5, 104.2, 103.8, 105.1, 106.3, 105.9, 107.2, 108.1, 107.8, 109.5, 108.9}
	sampleLow   = []float64{100.2, 101.8, 102.1, 101.9, 103.2, 104.5, 103.8, 105.1, 106.2, 105.9, 107.1, 106.8}
	sampleClose = []float64{101.5, 102.8, 103.1, 102.9, 104.2, 105.8, 104.9, 106.5, 107.3, 106.8, 108.9, 107.5}
)

func floatArray(mem memory.Allocator, values []float64, nulls ...int) *array.Float64 {
	valid := make([]bool, len(values))
	for i := range valid {
		valid[i] = true
	}
	for _, i := range nulls {
		valid[i] = false
	}
	b := array.NewFloat64Builder(mem)
	defer b.Release()
	b.AppendValues(values, valid)
	return b.NewFloat64Array()
}

func boolArray(mem memory.Allocator, values []bool, valid []bool) *array.Boolean {
	b := array.NewBooleanBuilder(mem)
	defer b.Release()
	b.AppendValues(values, valid)
	return b.NewBooleanArray()
}

func int64Array(mem memory.Allocator, values []int64, valid []bool) *array.Int64 {
	b := array.NewInt64Builder(mem)
	defer b.Release()
	b.AppendValues(values, valid)
	return b.NewInt64Array()
}

func nullableFloats(values []float64, nulls ...int) []types.NullFloat64 {
	out := types.Floats(values...)
	for _, i := range nulls {
		out[i] = types.NullFloat64{}
	}
	return out
}

func TestHost_ATRMatchesSliceAPI(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)
	h := New(WithAllocator(mem))

	high := floatArray(mem, sampleHigh)
	defer high.Release()
	low := floatArray(mem, sampleLow, 6)
	defer low.Release()
	close := floatArray(mem, sampleClose)
	defer close.Release()

	out, err := h.ATR(high, low, close, 3)
	require.NoError(t, err)
	defer out.Release()

	want, err := expr.ATR(nullableFloats(sampleHigh), nullableFloats(sampleLow, 6), nullableFloats(sampleClose), 3)
	require.NoError(t, err)

	got, err := FloatColumn(out)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.True(t, out.IsNull(0))
	assert.True(t, out.IsNull(6))
	assert.Equal(t, len(sampleClose), out.Len())
}

func TestHost_SuperTrendAndDirection(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)
	h := New(WithAllocator(mem))

	high, low, close := floatArray(mem, sampleHigh), floatArray(mem, sampleLow), floatArray(mem, sampleClose)
	defer high.Release()
	defer low.Release()
	defer close.Release()

	line, err := h.SuperTrend(high, low, close, 4, 2)
	require.NoError(t, err)
	defer line.Release()
	direction, err := h.SuperTrendDirection(high, low, close, 4, 2)
	require.NoError(t, err)
	defer direction.Release()

	assert.Equal(t, arrow.PrimitiveTypes.Float64, line.DataType())
	assert.Equal(t, arrow.PrimitiveTypes.Int32, direction.DataType())
	for i := 0; i < 3; i++ {
		assert.True(t, line.IsNull(i))
		assert.True(t, direction.IsNull(i))
	}
	for i := 3; i < direction.Len(); i++ {
		require.True(t, direction.IsValid(i))
		assert.Contains(t, []int32{1, -1}, direction.Value(i))
	}
}

func TestHost_SuperTrendWithATRStruct(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)
	h := New(WithAllocator(mem))

	high := floatArray(mem, []float64{11, 12, 13, 12, 11})
	defer high.Release()
	low := floatArray(mem, []float64{9, 10, 11, 10, 9})
	defer low.Release()
	close := floatArray(mem, []float64{10, 11.5, 12.5, 10.5, 9.5})
	defer close.Release()
	atr := floatArray(mem, []float64{1, 1, 1, 1, 1})
	defer atr.Release()

	out, err := h.SuperTrendWithATR(high, low, close, atr, 1, 1)
	require.NoError(t, err)
	defer out.Release()

	st := out.DataType().(*arrow.StructType)
	require.Equal(t, 4, len(st.Fields()))
	for i, name := range BandFields {
		assert.Equal(t, name, st.Field(i).Name)
	}

	direction, err := Int32Column(out.Field(0))
	require.NoError(t, err)
	assert.Equal(t, []types.NullInt32{{}, types.Int32(1), types.Int32(1), types.Int32(-1), types.Int32(-1)}, direction)

	trend, err := FloatColumn(out.Field(3))
	require.NoError(t, err)
	assert.Equal(t, []types.NullFloat64{{}, types.Float(10), types.Float(11), types.Float(12), types.Float(11)}, trend)
}

func TestHost_SuperTrendBandsAppendsFinalBands(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)
	h := New(WithAllocator(mem))

	high := floatArray(mem, []float64{11, 12, 13, 12, 11})
	defer high.Release()
	low := floatArray(mem, []float64{9, 10, 11, 10, 9})
	defer low.Release()
	close := floatArray(mem, []float64{10, 11.5, 12.5, 10.5, 9.5})
	defer close.Release()
	atr := floatArray(mem, []float64{1, 1, 1, 1, 1})
	defer atr.Release()

	out, err := h.SuperTrendBands(high, low, close, atr, 1, 1)
	require.NoError(t, err)
	defer out.Release()

	require.Equal(t, 6, out.NumField())
	upper, err := FloatColumn(out.Field(4))
	require.NoError(t, err)
	assert.Equal(t, types.Floats(11, 11, 13, 12, 11), upper)
	lower, err := FloatColumn(out.Field(5))
	require.NoError(t, err)
	assert.Equal(t, types.Floats(9, 10, 11, 11, 9), lower)
}

func TestHost_SignalFunctions(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)
	h := New(WithAllocator(mem))

	// The null entry at index 4 reads as false
	entries := boolArray(mem, []bool{true, false, true, false, true, false}, []bool{true, true, true, true, false, true})
	defer entries.Release()
	exits := boolArray(mem, []bool{false, true, false, false, false, true}, nil)
	defer exits.Release()

	cleanEntries, err := h.CleanEntries(entries, exits, true)
	require.NoError(t, err)
	defer cleanEntries.Release()
	got, err := BoolColumn(cleanEntries)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true, false, false, false}, got)

	cleanExits, err := h.CleanExits(entries, exits, true)
	require.NoError(t, err)
	defer cleanExits.Release()
	got, err = BoolColumn(cleanExits)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false, false, false, true}, got)

	ids, err := h.CleanEnexPositionIDs(entries, exits, true)
	require.NoError(t, err)
	defer ids.Release()
	assert.Equal(t, []int64{0, 0, 1, 1, 1, 1}, ids.Int64Values())

	combined, err := h.CleanEnexPosition(entries, exits, true)
	require.NoError(t, err)
	defer combined.Release()
	st := combined.DataType().(*arrow.StructType)
	for i, name := range PositionFields {
		assert.Equal(t, name, st.Field(i).Name)
	}
	positions, err := Int64Column(combined.Field(2))
	require.NoError(t, err)
	assert.Equal(t, ids.Int64Values(), positions)
}

func TestHost_ReshapeSkipsNullRows(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)
	h := New(WithAllocator(mem))

	tradeIDs := int64Array(mem, []int64{0, 1, 2}, nil)
	defer tradeIDs.Release()
	entryIdx := int64Array(mem, []int64{1, 3, 6}, []bool{true, false, true})
	defer entryIdx.Release()
	exitIdx := int64Array(mem, []int64{2, 4, 8}, nil)
	defer exitIdx.Release()

	out, err := h.ReshapePositionIDArray(10, tradeIDs, entryIdx, exitIdx)
	require.NoError(t, err)
	defer out.Release()
	assert.Equal(t, []int64{-1, 0, 0, -1, -1, -1, 2, 2, 2, -1}, out.Int64Values())
}

func TestHost_Errors(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)
	h := New(WithAllocator(mem))

	high, low, close := floatArray(mem, sampleHigh), floatArray(mem, sampleLow), floatArray(mem, sampleClose)
	defer high.Release()
	defer low.Release()
	defer close.Release()
	flags := boolArray(mem, []bool{true, false}, nil)
	defer flags.Release()

	_, err := h.ATR(high, flags, close, 14)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrValidation)
	assert.Contains(t, err.Error(), "column=low")

	_, err = h.ATR(high, low, close, 0)
	assert.True(t, errors.IsConfiguration(err))

	_, err = h.CleanEntries(flags, high, true)
	assert.ErrorIs(t, err, errors.ErrValidation)

	short := int64Array(mem, []int64{1}, nil)
	defer short.Release()
	pair := int64Array(mem, []int64{1, 2}, nil)
	defer pair.Release()
	_, err = h.ReshapePositionIDArray(5, short, pair, pair)
	assert.True(t, errors.IsConfiguration(err))
}

func TestHost_Invoke(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)
	h := New(WithAllocator(mem))

	high, low, close := floatArray(mem, sampleHigh), floatArray(mem, sampleLow), floatArray(mem, sampleClose)
	defer high.Release()
	defer low.Release()
	defer close.Release()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: ColHigh, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: ColLow, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: ColClose, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	}, nil)
	rec := array.NewRecord(schema, []arrow.Array{high, low, close}, int64(len(sampleClose)))
	defer rec.Release()

	out, err := h.Invoke("supertrend_direction", rec, Args{ATRPeriod: 3, Multiplier: 3})
	require.NoError(t, err)
	defer out.Release()
	assert.Equal(t, arrow.PrimitiveTypes.Int32, out.DataType())

	direct, err := h.SuperTrendDirection(high, low, close, 3, 3)
	require.NoError(t, err)
	defer direct.Release()
	assert.True(t, array.Equal(direct, out))

	out, err = h.Invoke("median_price", rec, Args{})
	assert.Nil(t, out)
	assert.ErrorIs(t, err, errors.ErrValidation)

	_, err = h.Invoke("clean_entries", rec, Args{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column=entries")

	assert.Contains(t, Functions(), "reshape_position_id_array")
	assert.Len(t, Functions(), 10)
}

func TestHost_LogsAndMetrics(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	metrics := monitoring.NewMetrics()
	h := New(WithLogger(zap.New(core)), WithMetrics(metrics))
	mem := h.Allocator()

	high, low, close := floatArray(mem, sampleHigh), floatArray(mem, sampleLow), floatArray(mem, sampleClose)
	defer high.Release()
	defer low.Release()
	defer close.Release()

	out, err := h.ATR(high, low, close, 5)
	require.NoError(t, err)
	out.Release()

	_, err = h.ATR(high, low, close, -1)
	require.Error(t, err)

	debug := logs.FilterMessage("Indicator invocation").All()
	require.Len(t, debug, 1)
	assert.Equal(t, "atr", debug[0].ContextMap()["function"])
	assert.Equal(t, int64(len(sampleClose)), debug[0].ContextMap()["rows"])

	warn := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warn, 1)
	assert.Equal(t, "CONFIG", warn[0].ContextMap()["category"])

	count, err := testutil.GatherAndCount(metrics.Registry(), "indicator_engine_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	count, err = testutil.GatherAndCount(metrics.Registry(), "indicator_engine_rows_processed_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
