package orchestrator

import (
	"context"
	"fmt"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"

	"github.com/ducminhle1904/indicator-engine/pkg/arrowhost"
	"github.com/ducminhle1904/indicator-engine/pkg/config"
	"github.com/ducminhle1904/indicator-engine/pkg/expr"
	"github.com/ducminhle1904/indicator-engine/pkg/types"
)

// Pipeline runs every indicator step over a series through the Arrow host
type Pipeline struct {
	host       *arrowhost.Host
	atrPeriod  int
	upper      float64
	lower      float64
	entryFirst bool
}

// NewPipeline creates a pipeline for cfg. Host options (logger, metrics, allocator) are
// applied after the engine policies derived from cfg.
func NewPipeline(cfg *config.IndicatorConfig, hostOpts ...arrowhost.Option) (*Pipeline, error) {
	opts, err := cfg.EngineOptions()
	if err != nil {
		return nil, err
	}
	// Bands are computed from the ATR column, so they follow the internal seed
	opts.ExternalSeed = opts.InternalSeed

	upper, lower := cfg.Multipliers()
	return &Pipeline{
		host:       arrowhost.New(append([]arrowhost.Option{arrowhost.WithEngineOptions(opts)}, hostOpts...)...),
		atrPeriod:  cfg.ATRPeriod,
		upper:      upper,
		lower:      lower,
		entryFirst: cfg.EntryFirst,
	}, nil
}

func float64Field(name string) arrow.Field {
	return arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Float64, Nullable: true}
}

// priceRecord builds the input record; released by the caller
func (p *Pipeline) priceRecord(series *types.Series) arrow.Record {
	mem := p.host.Allocator()
	build := func(col []types.NullFloat64) arrow.Array {
		values := make([]float64, len(col))
		valid := make([]bool, len(col))
		for i, v := range col {
			values[i], valid[i] = v.Float64, v.Valid
		}
		b := array.NewFloat64Builder(mem)
		defer b.Release()
		b.AppendValues(values, valid)
		return b.NewArray()
	}

	cols := []arrow.Array{build(series.High), build(series.Low), build(series.Close)}
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()
	schema := arrow.NewSchema([]arrow.Field{
		float64Field(arrowhost.ColHigh),
		float64Field(arrowhost.ColLow),
		float64Field(arrowhost.ColClose),
	}, nil)
	return array.NewRecord(schema, cols, int64(series.Len()))
}

// withColumn returns rec plus one extra column; released by the caller
func withColumn(rec arrow.Record, field arrow.Field, col arrow.Array) arrow.Record {
	fields := append(append([]arrow.Field{}, rec.Schema().Fields()...), field)
	cols := append(append([]arrow.Array{}, rec.Columns()...), col)
	return array.NewRecord(arrow.NewSchema(fields, nil), cols, rec.NumRows())
}

func (p *Pipeline) boolArray(values []bool) arrow.Array {
	b := array.NewBooleanBuilder(p.host.Allocator())
	defer b.Release()
	b.AppendValues(values, nil)
	return b.NewArray()
}

func (p *Pipeline) int64Array(values []int64) arrow.Array {
	b := array.NewInt64Builder(p.host.Allocator())
	defer b.Release()
	b.AppendValues(values, nil)
	return b.NewArray()
}

// Run computes ATR, SuperTrend bands, cleaned signals, position ids and their reshaped
// round trip. Signals come from the series when present, else from direction flips.
func (p *Pipeline) Run(ctx context.Context, series *types.Series) (*types.ResultFrame, error) {
	frame := &types.ResultFrame{
		Timestamps: series.Timestamps,
		High:       series.High,
		Low:        series.Low,
		Close:      series.Close,
	}

	prices := p.priceRecord(series)
	defer prices.Release()

	atr, err := p.host.Invoke("atr", prices, arrowhost.Args{ATRPeriod: p.atrPeriod})
	if err != nil {
		return nil, fmt.Errorf("atr: %w", err)
	}
	defer atr.Release()
	if frame.ATR, err = arrowhost.FloatColumn(atr); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	withATR := withColumn(prices, float64Field(arrowhost.ColATR), atr)
	defer withATR.Release()
	bands, err := p.host.Invoke("supertrend_bands", withATR, arrowhost.Args{UpperMultiplier: p.upper, LowerMultiplier: p.lower})
	if err != nil {
		return nil, fmt.Errorf("supertrend: %w", err)
	}
	defer bands.Release()
	if err := unpackBands(bands.(*array.Struct), frame); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if series.HasSignals() {
		frame.RawEntries, frame.RawExits = series.Entries, series.Exits
	} else {
		frame.RawEntries, frame.RawExits = expr.SignalsFromDirection(frame.Direction)
	}
	entries, exits := p.boolArray(frame.RawEntries), p.boolArray(frame.RawExits)
	defer entries.Release()
	defer exits.Release()
	signals := array.NewRecord(arrow.NewSchema([]arrow.Field{
		{Name: arrowhost.ColEntries, Type: arrow.FixedWidthTypes.Boolean, Nullable: true},
		{Name: arrowhost.ColExits, Type: arrow.FixedWidthTypes.Boolean, Nullable: true},
	}, nil), []arrow.Array{entries, exits}, int64(series.Len()))
	defer signals.Release()

	cleaned, err := p.host.Invoke("clean_enex_position", signals, arrowhost.Args{EntryFirst: p.entryFirst})
	if err != nil {
		return nil, fmt.Errorf("clean signals: %w", err)
	}
	defer cleaned.Release()
	if err := unpackPositions(cleaned.(*array.Struct), frame); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	frame.Reshaped, err = p.reshape(frame)
	if err != nil {
		return nil, fmt.Errorf("reshape: %w", err)
	}
	return frame, nil
}

// reshape rebuilds the position id column from its trade table
func (p *Pipeline) reshape(frame *types.ResultFrame) ([]int64, error) {
	spans := expr.SpansFromPositionIDs(frame.PositionIDs)
	ids := make([]int64, len(spans))
	entryIdx := make([]int64, len(spans))
	exitIdx := make([]int64, len(spans))
	for i, s := range spans {
		ids[i], entryIdx[i], exitIdx[i] = s.TradeID, s.EntryIndex, s.ExitIndex
	}

	cols := []arrow.Array{p.int64Array(ids), p.int64Array(entryIdx), p.int64Array(exitIdx)}
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()
	int64Field := func(name string) arrow.Field {
		return arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Int64}
	}
	table := array.NewRecord(arrow.NewSchema([]arrow.Field{
		int64Field(arrowhost.ColTradeID),
		int64Field(arrowhost.ColEntryIdx),
		int64Field(arrowhost.ColExitIdx),
	}, nil), cols, int64(len(spans)))
	defer table.Release()

	out, err := p.host.Invoke("reshape_position_id_array", table, arrowhost.Args{Length: frame.Len()})
	if err != nil {
		return nil, err
	}
	defer out.Release()
	return arrowhost.Int64Column(out)
}

func unpackBands(st *array.Struct, frame *types.ResultFrame) error {
	var err error
	if frame.Direction, err = arrowhost.Int32Column(st.Field(0)); err != nil {
		return err
	}
	for i, dst := range []*[]types.NullFloat64{&frame.Long, &frame.Short, &frame.Trend, &frame.FinalUpper, &frame.FinalLower} {
		if *dst, err = arrowhost.FloatColumn(st.Field(i + 1)); err != nil {
			return err
		}
	}
	return nil
}

func unpackPositions(st *array.Struct, frame *types.ResultFrame) error {
	var err error
	if frame.Entries, err = arrowhost.BoolColumn(st.Field(0)); err != nil {
		return err
	}
	if frame.Exits, err = arrowhost.BoolColumn(st.Field(1)); err != nil {
		return err
	}
	frame.PositionIDs, err = arrowhost.Int64Column(st.Field(2))
	return err
}
