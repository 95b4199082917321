package config

import (
	"math"

	"github.com/ducminhle1904/indicator-engine/internal/errors"
)

// IndicatorValidator implements validation for indicator configurations
type IndicatorValidator struct{}

// NewIndicatorValidator creates a new indicator validator
func NewIndicatorValidator() *IndicatorValidator {
	return &IndicatorValidator{}
}

// Validate checks parameter ranges and policy names
func (v *IndicatorValidator) Validate(cfg *IndicatorConfig) error {
	if cfg == nil {
		return errors.NewConfigurationError("Config", "Validate", "configuration is nil")
	}

	if cfg.ATRPeriod < 1 || cfg.ATRPeriod > MaxATRPeriod {
		return errors.NewConfigurationError("Config", "Validate", "atr period out of range").
			WithContext("atr_period", cfg.ATRPeriod).
			WithContext("max", MaxATRPeriod)
	}

	upper, lower := cfg.Multipliers()
	for name, value := range map[string]float64{"upper_multiplier": upper, "lower_multiplier": lower} {
		if math.IsNaN(value) || value < 0 || value > MaxMultiplier {
			return errors.NewConfigurationError("Config", "Validate", "multiplier out of range").
				WithContext(name, value).
				WithContext("max", MaxMultiplier)
		}
	}

	// Policy names are checked by parsing them
	if _, err := cfg.EngineOptions(); err != nil {
		return err
	}
	return nil
}
