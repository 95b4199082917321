package config

// NestedConfig is the sectioned file format written by SaveConfig
type NestedConfig struct {
	Data       DataConfig       `json:"data"`
	ATR        ATRConfig        `json:"atr"`
	SuperTrend SuperTrendConfig `json:"supertrend"`
	Signals    SignalsConfig    `json:"signals"`
	Output     OutputConfig     `json:"output"`
}

type DataConfig struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	DataFile string `json:"data_file"`
}

type ATRConfig struct {
	Period    int    `json:"period"`
	GapPolicy string `json:"gap_policy"`
}

type SuperTrendConfig struct {
	Multiplier      float64  `json:"multiplier"`
	UpperMultiplier *float64 `json:"upper_multiplier,omitempty"`
	LowerMultiplier *float64 `json:"lower_multiplier,omitempty"`
	SeedPolicy      string   `json:"seed_policy"`
}

type SignalsConfig struct {
	EntryFirst    *bool  `json:"entry_first,omitempty"`
	OverlapPolicy string `json:"overlap_policy"`
}

type OutputConfig struct {
	File        string `json:"file,omitempty"`
	MetricsAddr string `json:"metrics_addr,omitempty"`
	LogLevel    string `json:"log_level,omitempty"`
}
