package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/indicator-engine/pkg/config"
)

func writeCandles(t *testing.T, dir string, rows int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("timestamp,open,high,low,close,volume\n")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	price := 100.0
	for i := 0; i < rows; i++ {
		// Rising then falling so the regime flips at least once
		if i < rows/2 {
			price += 1.5
		} else {
			price -= 2.5
		}
		fmt.Fprintf(&b, "%s,%g,%g,%g,%g,1\n", start.Add(time.Duration(i)*time.Hour).Format("2006-01-02 15:04:05"),
			price, price+1, price-1, price)
	}
	path := filepath.Join(dir, "candles.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
	return path
}

func TestRun_ConsoleOnly(t *testing.T) {
	dataFile := writeCandles(t, t.TempDir(), 40)

	var out bytes.Buffer
	err := run([]string{"-data", dataFile, "-atr-period", "5", "-multiplier", "2", "-console-only", "-no-colors",
		"-env", filepath.Join(t.TempDir(), "none.env"), "-log-level", "error"}, &out)
	require.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, "ATR: period=5, gaps=resume")
	assert.Contains(t, s, "SuperTrend: multiplier=2, seed=up")
	assert.Contains(t, s, "INDICATORS")
	assert.NotContains(t, s, "Results saved")
}

func TestRun_WritesJSONSummary(t *testing.T) {
	dir := t.TempDir()
	dataFile := writeCandles(t, dir, 40)
	output := filepath.Join(dir, "out", "summary.json")

	var out bytes.Buffer
	err := run([]string{"-data", dataFile, "-atr-period", "5", "-output", output,
		"-env", filepath.Join(dir, "none.env"), "-log-level", "error"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Results saved to "+output)

	raw, err := os.ReadFile(output)
	require.NoError(t, err)
	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &summary))
	assert.Equal(t, 40.0, summary["rows"])
	assert.Equal(t, 4.0, summary["warmup_rows"])
	assert.NotEmpty(t, summary["trades"])
}

func TestRun_FlagErrors(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"-atr-period", "0"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "atr-period must be between")

	err = run([]string{"-gap-policy", "skip", "-all-intervals", "-data", "missing.csv"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation errors:")
	assert.Contains(t, err.Error(), "mutually exclusive")

	err = run([]string{"-period", "soon", "-data-root", t.TempDir(), "-env", "none.env", "-log-level", "error"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid period format")
}

func TestRun_VersionAndHelp(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"-version"}, &out))
	assert.Contains(t, out.String(), AppName+" v")

	out.Reset()
	require.NoError(t, run([]string{"-help"}, &out))
	assert.Contains(t, out.String(), "INDICATOR PARAMETERS:")
	assert.Contains(t, out.String(), "-overlap-policy")
}

func TestApplyOverrides(t *testing.T) {
	fs := flag.NewFlagSet(AppName, flag.ContinueOnError)
	flags := NewIndicatorFlags(fs)
	require.NoError(t, fs.Parse([]string{"-multiplier", "2.5", "-entry-first=false", "-data", "data/bybit/spot/BTCUSDT/1h/candles.csv"}))

	cfg := config.NewDefaultIndicatorConfig()
	cfg.ATRPeriod = 21
	ApplyOverrides(flags, cfg)

	assert.Equal(t, 2.5, cfg.Multiplier)
	assert.False(t, cfg.EntryFirst)
	assert.Equal(t, 21, cfg.ATRPeriod, "unset flags keep the loaded value")
	assert.Equal(t, "BTCUSDT", cfg.Symbol)
	assert.Equal(t, "1h", cfg.Interval)
	assert.True(t, flags.Set("data"))
	assert.False(t, flags.Set("symbol"))
}

func TestApplyOverrides_ZeroBandMultiplier(t *testing.T) {
	fs := flag.NewFlagSet(AppName, flag.ContinueOnError)
	flags := NewIndicatorFlags(fs)
	require.NoError(t, fs.Parse([]string{"-multiplier", "2", "-upper-multiplier", "0"}))

	cfg := config.NewDefaultIndicatorConfig()
	ApplyOverrides(flags, cfg)

	upper, lower := cfg.Multipliers()
	assert.Equal(t, 0.0, upper)
	assert.Equal(t, 2.0, lower)
	assert.Nil(t, cfg.LowerMultiplier, "unset side follows -multiplier")
}
