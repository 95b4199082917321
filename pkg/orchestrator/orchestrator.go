package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ducminhle1904/indicator-engine/internal/monitoring"
	"github.com/ducminhle1904/indicator-engine/pkg/arrowhost"
	"github.com/ducminhle1904/indicator-engine/pkg/config"
	datamanager "github.com/ducminhle1904/indicator-engine/pkg/data"
	"github.com/ducminhle1904/indicator-engine/pkg/reporting"
	"github.com/ducminhle1904/indicator-engine/pkg/types"
)

// DefaultOrchestrator implements the Orchestrator interface
type DefaultOrchestrator struct {
	data    *datamanager.DataManager
	logger  *zap.Logger
	metrics *monitoring.Metrics
	health  *monitoring.HealthChecker
	workers int
}

// Option configures a DefaultOrchestrator
type Option func(*DefaultOrchestrator)

// WithLogger sets the logger used for run progress and host invocations
func WithLogger(logger *zap.Logger) Option {
	return func(o *DefaultOrchestrator) { o.logger = logger }
}

// WithMetrics records host invocations on m
func WithMetrics(m *monitoring.Metrics) Option {
	return func(o *DefaultOrchestrator) { o.metrics = m }
}

// WithHealth reports run outcomes to h
func WithHealth(h *monitoring.HealthChecker) Option {
	return func(o *DefaultOrchestrator) { o.health = h }
}

// WithWorkers bounds concurrent interval runs; zero uses one per CPU
func WithWorkers(n int) Option {
	return func(o *DefaultOrchestrator) { o.workers = n }
}

// WithDataManager replaces the default CSV data manager
func WithDataManager(dm *datamanager.DataManager) Option {
	return func(o *DefaultOrchestrator) { o.data = dm }
}

// NewOrchestrator creates a new orchestrator with default components
func NewOrchestrator(opts ...Option) *DefaultOrchestrator {
	o := &DefaultOrchestrator{
		data:   datamanager.NewDataManager(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *DefaultOrchestrator) pipeline(cfg *config.IndicatorConfig) (*Pipeline, error) {
	hostOpts := []arrowhost.Option{arrowhost.WithLogger(o.logger)}
	if o.metrics != nil {
		hostOpts = append(hostOpts, arrowhost.WithMetrics(o.metrics))
	}
	return NewPipeline(cfg, hostOpts...)
}

// RunFile loads cfg.DataFile and runs the pipeline over it
func (o *DefaultOrchestrator) RunFile(ctx context.Context, cfg *config.IndicatorConfig, period time.Duration) (*RunResult, error) {
	if cfg.DataFile == "" {
		return nil, fmt.Errorf("no data file configured")
	}
	series, err := o.data.Load(cfg.DataFile)
	if err != nil {
		o.recordError(err)
		return nil, err
	}
	if period > 0 {
		series = o.data.FilterByPeriod(series, period)
	}
	o.logger.Info("Loaded data",
		zap.String("file", cfg.DataFile),
		zap.Int("rows", series.Len()),
		zap.Bool("signals", series.HasSignals()))
	return o.RunSeries(ctx, cfg, series)
}

// RunSeries runs the pipeline over series and summarizes the frame
func (o *DefaultOrchestrator) RunSeries(ctx context.Context, cfg *config.IndicatorConfig, series *types.Series) (*RunResult, error) {
	p, err := o.pipeline(cfg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	frame, err := p.Run(ctx, series)
	if err != nil {
		o.recordError(err)
		return nil, err
	}
	if o.health != nil {
		o.health.RecordRun(frame.Len())
	}

	summary := reporting.Summarize(frame)
	summary.Symbol, summary.Interval = cfg.Symbol, cfg.Interval
	o.logger.Info("Indicators computed",
		zap.String("symbol", cfg.Symbol),
		zap.String("interval", cfg.Interval),
		zap.Int("rows", summary.Rows),
		zap.Int("trades", len(summary.Trades)),
		zap.Duration("elapsed", time.Since(start)))

	return &RunResult{Frame: frame, Summary: summary}, nil
}

func (o *DefaultOrchestrator) recordError(err error) {
	if o.health != nil {
		o.health.RecordError(err)
	}
}

// RunMultiInterval runs every available interval on a worker pool. Failed intervals are kept
// in the result with their error; the call fails only when none succeed.
func (o *DefaultOrchestrator) RunMultiInterval(ctx context.Context, cfg *config.IndicatorConfig, dataRoot, exchange string, period time.Duration) (*IntervalAnalysisResult, error) {
	intervals, err := FindAvailableIntervals(dataRoot, exchange, cfg.Symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to find available intervals: %w", err)
	}
	o.logger.Info("Starting multi-interval run",
		zap.String("symbol", cfg.Symbol),
		zap.String("exchange", exchange),
		zap.Strings("intervals", intervals))

	pool := NewWorkerPool(ctx, o.workers, len(intervals), func(ctx context.Context, interval string) IntervalResult {
		return o.runInterval(ctx, cfg, dataRoot, exchange, interval, period)
	})
	results := pool.RunAll(intervals)

	succeeded := 0
	for _, r := range results {
		if r.Error != nil {
			o.logger.Warn("Interval failed", zap.String("interval", r.Interval), zap.Error(r.Error))
			continue
		}
		succeeded++
	}
	if succeeded == 0 {
		return nil, fmt.Errorf("no successful results found for any interval")
	}

	return &IntervalAnalysisResult{
		Symbol:   cfg.Symbol,
		Exchange: exchange,
		Results:  results,
	}, nil
}

func (o *DefaultOrchestrator) runInterval(ctx context.Context, cfg *config.IndicatorConfig, dataRoot, exchange, interval string, period time.Duration) IntervalResult {
	res := IntervalResult{Interval: interval}

	dataFile, err := o.data.FindDataFile(dataRoot, exchange, cfg.Symbol, interval)
	if err != nil {
		res.Error = err
		return res
	}
	res.DataFile = dataFile

	cfgCopy := *cfg
	cfgCopy.DataFile = dataFile
	cfgCopy.Interval = interval
	res.Result, res.Error = o.RunFile(ctx, &cfgCopy, period)
	return res
}
