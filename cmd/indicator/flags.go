package main

import (
	"flag"

	"github.com/ducminhle1904/indicator-engine/cmd/common"
	"github.com/ducminhle1904/indicator-engine/pkg/config"
)

// IndicatorFlags holds all command line flags for the indicator command
type IndicatorFlags struct {
	fs *flag.FlagSet
	*common.CommonFlags

	// Configuration
	ConfigFile *string
	DataFile   *string
	Symbol     *string
	Interval   *string
	Exchange   *string

	// Indicator parameters
	ATRPeriod       *int
	Multiplier      *float64
	UpperMultiplier *float64
	LowerMultiplier *float64
	GapPolicy       *string
	SeedPolicy      *string

	// Signal parameters
	EntryFirst    *bool
	OverlapPolicy *string

	// Analysis options
	AllIntervals *bool
	Period       *string

	// Output and observability
	OutputFile  *string
	Tail        *int
	MetricsAddr *string
	LogLevel    *string
	LogDir      *string
}

// NewIndicatorFlags registers every flag on fs
func NewIndicatorFlags(fs *flag.FlagSet) *IndicatorFlags {
	return &IndicatorFlags{
		fs:          fs,
		CommonFlags: common.RegisterCommonFlags(fs),

		ConfigFile: fs.String("config", "", "Configuration file (flat or nested JSON)"),
		DataFile:   fs.String("data", "", "Candles CSV file; looked up under -data-root when empty"),
		Symbol:     fs.String("symbol", "BTCUSDT", "Trading symbol"),
		Interval:   fs.String("interval", "5m", "Candle interval (5m, 1h, 4h, 1d)"),
		Exchange:   fs.String("exchange", "bybit", "Exchange directory under -data-root"),

		ATRPeriod:       fs.Int("atr-period", config.DefaultATRPeriod, "ATR period"),
		Multiplier:      fs.Float64("multiplier", config.DefaultMultiplier, "Band multiplier for both bands"),
		UpperMultiplier: fs.Float64("upper-multiplier", 0, "Upper band multiplier (overrides -multiplier)"),
		LowerMultiplier: fs.Float64("lower-multiplier", 0, "Lower band multiplier (overrides -multiplier)"),
		GapPolicy:       fs.String("gap-policy", config.DefaultGapPolicy, "ATR behaviour after a missing row (resume, rewarm)"),
		SeedPolicy:      fs.String("seed-policy", config.DefaultSeedPolicy, "Initial SuperTrend regime (up, unknown)"),

		EntryFirst:    fs.Bool("entry-first", config.DefaultEntryFirst, "Entry wins when entry and exit fire on the same bar"),
		OverlapPolicy: fs.String("overlap-policy", config.DefaultOverlapPolicy, "Overlapping trade spans (last, first, reject)"),

		AllIntervals: fs.Bool("all-intervals", false, "Run every interval found for -symbol under -data-root"),
		Period:       fs.String("period", "", "Trailing window to keep (7d, 30d, 180d)"),

		OutputFile:  fs.String("output", "", "Output file (.csv, .xlsx, .json)"),
		Tail:        fs.Int("tail", 20, "Rows shown in the console table"),
		MetricsAddr: fs.String("metrics-addr", "", "Serve Prometheus metrics on this address"),
		LogLevel:    fs.String("log-level", "info", "Log level (debug, info, warn, error)"),
		LogDir:      fs.String("log-dir", "", "Also write logs to a dated file in this directory"),
	}
}

// Set reports whether the flag was given on the command line
func (f *IndicatorFlags) Set(name string) bool {
	found := false
	f.fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})
	return found
}

// ValidateIndicatorFlags checks flag values before any work is done
func ValidateIndicatorFlags(f *IndicatorFlags) error {
	v := common.NewFlagValidator().
		ValidateInt("atr-period", *f.ATRPeriod, 1, config.MaxATRPeriod).
		ValidateFloat("multiplier", *f.Multiplier, 0, config.MaxMultiplier).
		ValidateFloat("upper-multiplier", *f.UpperMultiplier, 0, config.MaxMultiplier).
		ValidateFloat("lower-multiplier", *f.LowerMultiplier, 0, config.MaxMultiplier).
		ValidateChoice("gap-policy", *f.GapPolicy, []string{"resume", "rewarm"}).
		ValidateChoice("seed-policy", *f.SeedPolicy, []string{"up", "unknown"}).
		ValidateChoice("overlap-policy", *f.OverlapPolicy, []string{"last", "first", "reject"}).
		ValidateChoice("log-level", *f.LogLevel, []string{"debug", "info", "warn", "error"}).
		ValidateInt("tail", *f.Tail, 0, 100000).
		ValidateFile("data", *f.DataFile, false)

	if *f.AllIntervals && *f.DataFile != "" {
		v.AddError("-all-intervals and -data are mutually exclusive")
	}
	return v.GetError()
}

// ApplyOverrides copies explicitly set flags onto cfg
func ApplyOverrides(f *IndicatorFlags, cfg *config.IndicatorConfig) {
	strOverrides := map[string]struct {
		dst *string
		src *string
	}{
		"data":           {&cfg.DataFile, f.DataFile},
		"symbol":         {&cfg.Symbol, f.Symbol},
		"interval":       {&cfg.Interval, f.Interval},
		"gap-policy":     {&cfg.GapPolicy, f.GapPolicy},
		"seed-policy":    {&cfg.SeedPolicy, f.SeedPolicy},
		"overlap-policy": {&cfg.OverlapPolicy, f.OverlapPolicy},
		"output":         {&cfg.OutputFile, f.OutputFile},
		"metrics-addr":   {&cfg.MetricsAddr, f.MetricsAddr},
		"log-level":      {&cfg.LogLevel, f.LogLevel},
	}
	for name, o := range strOverrides {
		if f.Set(name) {
			*o.dst = *o.src
		}
	}

	// Symbol and interval have no config default; the interval is read from the data path first
	if cfg.Symbol == "" {
		cfg.Symbol = *f.Symbol
	}
	if cfg.Interval == "" {
		cfg.Interval = config.ExtractIntervalFromPath(cfg.DataFile)
	}
	if cfg.Interval == "" {
		cfg.Interval = *f.Interval
	}

	if f.Set("atr-period") {
		cfg.ATRPeriod = *f.ATRPeriod
	}
	if f.Set("multiplier") {
		cfg.Multiplier = *f.Multiplier
	}
	if f.Set("upper-multiplier") {
		upper := *f.UpperMultiplier
		cfg.UpperMultiplier = &upper
	}
	if f.Set("lower-multiplier") {
		lower := *f.LowerMultiplier
		cfg.LowerMultiplier = &lower
	}
	if f.Set("entry-first") {
		cfg.EntryFirst = *f.EntryFirst
	}
}

// newUsage builds the grouped help text
func newUsage(f *IndicatorFlags) *common.UsageFormatter {
	return common.NewUsageFormatter(AppName, "ATR, SuperTrend and position signal computation").
		AddExample(AppName+" -symbol BTCUSDT -interval 5m", "SuperTrend(14, 3) on local candles").
		AddExample(AppName+" -data candles.csv -atr-period 10 -multiplier 2 -output out.xlsx", "Custom parameters with an Excel report").
		AddExample(AppName+" -symbol ETHUSDT -all-intervals -period 30d", "Every available interval over the last 30 days").
		AddGroup(f.fs, "Configuration", "config", "data", "symbol", "interval", "exchange", "period", "all-intervals").
		AddGroup(f.fs, "Indicator Parameters", "atr-period", "multiplier", "upper-multiplier", "lower-multiplier", "gap-policy", "seed-policy").
		AddGroup(f.fs, "Signals", "entry-first", "overlap-policy").
		AddGroup(f.fs, "Output", "output", "tail", "console-only", "no-colors", "metrics-addr", "log-level", "log-dir").
		AddGroup(f.fs, "Common", "env", "data-root", "version", "help")
}
