// Package config loads and validates the indicator engine configuration
package config

// Validator interface for configuration validation
type Validator interface {
	Validate(cfg *IndicatorConfig) error
}

// Common configuration constants
const (
	// Default parameter values
	DefaultATRPeriod     = 14
	DefaultMultiplier    = 3.0
	DefaultEntryFirst    = true
	DefaultGapPolicy     = "resume"
	DefaultSeedPolicy    = "up"
	DefaultOverlapPolicy = "last"

	// Validation limits
	MaxATRPeriod  = 10000
	MaxMultiplier = 100.0

	// Environment
	DefaultEnvFile = ".env"
	EnvPrefix      = "INDICATOR_"

	// Data lookup root for data/{exchange}/{category}/{symbol}/{interval}/candles.csv
	DefaultDataRoot = "data"
)
