package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ConfigManager handles loading, validation and saving of indicator configurations
type ConfigManager struct {
	validator Validator
	lookupEnv func(string) (string, bool)
}

// NewConfigManager creates a manager that reads overrides from the process environment
func NewConfigManager() *ConfigManager {
	return &ConfigManager{
		validator: NewIndicatorValidator(),
		lookupEnv: os.LookupEnv,
	}
}

// WithEnvFile layers the variables of a dotenv file under the process environment.
// A missing file is not an error.
func (m *ConfigManager) WithEnvFile(path string) (*ConfigManager, error) {
	if path == "" {
		return m, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return m, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	process := m.lookupEnv
	m.lookupEnv = func(key string) (string, bool) {
		if v, ok := process(key); ok {
			return v, true
		}
		v, ok := values[key]
		return v, ok
	}
	return m, nil
}

// LoadConfig builds a configuration from defaults, then the config file, then INDICATOR_* variables
func (m *ConfigManager) LoadConfig(configFile string) (*IndicatorConfig, error) {
	cfg := NewDefaultIndicatorConfig()

	if configFile != "" {
		if err := m.loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := m.applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	if err := m.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a JSON file
func (m *ConfigManager) loadFromFile(configFile string, cfg *IndicatorConfig) error {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}

	// Sectioned format first, flat format for hand-written files
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		return fmt.Errorf("could not parse config file: %w", err)
	}
	if _, nested := sections["supertrend"]; nested {
		return m.loadFromNestedConfig(data, cfg)
	}
	if _, nested := sections["atr"]; nested {
		return m.loadFromNestedConfig(data, cfg)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("could not parse config file as flat format: %w", err)
	}
	return nil
}

// loadFromNestedConfig maps the sectioned format onto the flat configuration
func (m *ConfigManager) loadFromNestedConfig(data []byte, cfg *IndicatorConfig) error {
	var nested NestedConfig
	if err := json.Unmarshal(data, &nested); err != nil {
		return fmt.Errorf("could not parse nested config: %w", err)
	}

	cfg.Symbol = nested.Data.Symbol
	cfg.Interval = nested.Data.Interval
	cfg.DataFile = nested.Data.DataFile

	if nested.ATR.Period != 0 {
		cfg.ATRPeriod = nested.ATR.Period
	}
	if nested.ATR.GapPolicy != "" {
		cfg.GapPolicy = nested.ATR.GapPolicy
	}

	if nested.SuperTrend.Multiplier != 0 {
		cfg.Multiplier = nested.SuperTrend.Multiplier
	}
	cfg.UpperMultiplier = nested.SuperTrend.UpperMultiplier
	cfg.LowerMultiplier = nested.SuperTrend.LowerMultiplier
	if nested.SuperTrend.SeedPolicy != "" {
		cfg.SeedPolicy = nested.SuperTrend.SeedPolicy
	}

	if nested.Signals.EntryFirst != nil {
		cfg.EntryFirst = *nested.Signals.EntryFirst
	}
	if nested.Signals.OverlapPolicy != "" {
		cfg.OverlapPolicy = nested.Signals.OverlapPolicy
	}

	cfg.OutputFile = nested.Output.File
	cfg.MetricsAddr = nested.Output.MetricsAddr
	if nested.Output.LogLevel != "" {
		cfg.LogLevel = nested.Output.LogLevel
	}
	return nil
}

// applyEnv overrides fields from INDICATOR_* variables
func (m *ConfigManager) applyEnv(cfg *IndicatorConfig) error {
	str := func(name string, dst *string) {
		if v, ok := m.lookupEnv(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	str("SYMBOL", &cfg.Symbol)
	str("INTERVAL", &cfg.Interval)
	str("DATA_FILE", &cfg.DataFile)
	str("GAP_POLICY", &cfg.GapPolicy)
	str("SEED_POLICY", &cfg.SeedPolicy)
	str("OVERLAP_POLICY", &cfg.OverlapPolicy)
	str("OUTPUT_FILE", &cfg.OutputFile)
	str("METRICS_ADDR", &cfg.MetricsAddr)
	str("LOG_LEVEL", &cfg.LogLevel)

	if v, ok := m.lookupEnv(EnvPrefix + "ATR_PERIOD"); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sATR_PERIOD: %w", EnvPrefix, err)
		}
		cfg.ATRPeriod = n
	}
	float := func(name string) (*float64, error) {
		v, ok := m.lookupEnv(EnvPrefix + name)
		if !ok || v == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		return &f, nil
	}
	for name, dst := range map[string]**float64{
		"UPPER_MULTIPLIER": &cfg.UpperMultiplier,
		"LOWER_MULTIPLIER": &cfg.LowerMultiplier,
	} {
		f, err := float(name)
		if err != nil {
			return err
		}
		if f != nil {
			*dst = f
		}
	}
	multiplier, err := float("MULTIPLIER")
	if err != nil {
		return err
	}
	if multiplier != nil {
		cfg.Multiplier = *multiplier
	}
	if v, ok := m.lookupEnv(EnvPrefix + "ENTRY_FIRST"); ok && v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sENTRY_FIRST: %w", EnvPrefix, err)
		}
		cfg.EntryFirst = b
	}
	return nil
}

// ValidateConfig validates a configuration using the validator
func (m *ConfigManager) ValidateConfig(cfg *IndicatorConfig) error {
	return m.validator.Validate(cfg)
}

// ConvertToNested converts a flat config to the sectioned file format
func (m *ConfigManager) ConvertToNested(cfg *IndicatorConfig) NestedConfig {
	entryFirst := cfg.EntryFirst
	return NestedConfig{
		Data: DataConfig{
			Symbol:   cfg.Symbol,
			Interval: cfg.Interval,
			DataFile: cfg.DataFile,
		},
		ATR: ATRConfig{
			Period:    cfg.ATRPeriod,
			GapPolicy: cfg.GapPolicy,
		},
		SuperTrend: SuperTrendConfig{
			Multiplier:      cfg.Multiplier,
			UpperMultiplier: cfg.UpperMultiplier,
			LowerMultiplier: cfg.LowerMultiplier,
			SeedPolicy:      cfg.SeedPolicy,
		},
		Signals: SignalsConfig{
			EntryFirst:    &entryFirst,
			OverlapPolicy: cfg.OverlapPolicy,
		},
		Output: OutputConfig{
			File:        cfg.OutputFile,
			MetricsAddr: cfg.MetricsAddr,
			LogLevel:    cfg.LogLevel,
		},
	}
}

// SaveConfig saves configuration to file
func (m *ConfigManager) SaveConfig(cfg *IndicatorConfig, path string) error {
	data, err := json.MarshalIndent(m.ConvertToNested(cfg), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	return os.WriteFile(path, data, 0644)
}

// ExtractIntervalFromPath extracts interval from data file path
// Example: "data/bybit/linear/BTCUSDT/5m/candles.csv" -> "5m"
func ExtractIntervalFromPath(dataPath string) string {
	if dataPath == "" {
		return ""
	}

	parts := strings.Split(filepath.ToSlash(dataPath), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		part := parts[i]
		if len(part) < 2 {
			continue
		}
		last := part[len(part)-1]
		if last != 'm' && last != 'h' && last != 'd' {
			continue
		}
		if _, err := strconv.Atoi(part[:len(part)-1]); err == nil {
			return part
		}
	}
	return ""
}
