package config

import (
	"github.com/ducminhle1904/indicator-engine/internal/indicators"
	"github.com/ducminhle1904/indicator-engine/internal/position"
	"github.com/ducminhle1904/indicator-engine/pkg/expr"
)

// IndicatorConfig holds every tunable of an indicator run
type IndicatorConfig struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	DataFile string `json:"data_file"`

	ATRPeriod int    `json:"atr_period"`
	GapPolicy string `json:"gap_policy"`

	// Multiplier applies to both bands unless an explicit side is set; nil means unset, 0 is valid
	Multiplier      float64  `json:"multiplier"`
	UpperMultiplier *float64 `json:"upper_multiplier,omitempty"`
	LowerMultiplier *float64 `json:"lower_multiplier,omitempty"`
	SeedPolicy      string   `json:"seed_policy"`

	EntryFirst    bool   `json:"entry_first"`
	OverlapPolicy string `json:"overlap_policy"`

	OutputFile  string `json:"output_file,omitempty"`
	MetricsAddr string `json:"metrics_addr,omitempty"`
	LogLevel    string `json:"log_level,omitempty"`
}

// NewDefaultIndicatorConfig returns a configuration with default values
func NewDefaultIndicatorConfig() *IndicatorConfig {
	return &IndicatorConfig{
		ATRPeriod:     DefaultATRPeriod,
		GapPolicy:     DefaultGapPolicy,
		Multiplier:    DefaultMultiplier,
		SeedPolicy:    DefaultSeedPolicy,
		EntryFirst:    DefaultEntryFirst,
		OverlapPolicy: DefaultOverlapPolicy,
		LogLevel:      "info",
	}
}

// Multipliers returns the effective upper and lower band multipliers
func (c *IndicatorConfig) Multipliers() (upper, lower float64) {
	upper, lower = c.Multiplier, c.Multiplier
	if c.UpperMultiplier != nil {
		upper = *c.UpperMultiplier
	}
	if c.LowerMultiplier != nil {
		lower = *c.LowerMultiplier
	}
	return upper, lower
}

// EngineOptions converts the policy names into engine options
func (c *IndicatorConfig) EngineOptions() (expr.Options, error) {
	opts := expr.DefaultOptions()

	gaps, err := indicators.ParseGapPolicy(c.GapPolicy)
	if err != nil {
		return opts, err
	}
	seedName := c.SeedPolicy
	if seedName == "" {
		seedName = DefaultSeedPolicy
	}
	seed, err := indicators.ParseSeedPolicy(seedName)
	if err != nil {
		return opts, err
	}
	overlap, err := position.ParseOverlapPolicy(c.OverlapPolicy)
	if err != nil {
		return opts, err
	}

	opts.Gaps = gaps
	opts.InternalSeed = seed
	opts.Overlap = overlap
	return opts, nil
}
