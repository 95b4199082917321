package data

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/indicator-engine/internal/errors"
	"github.com/ducminhle1904/indicator-engine/pkg/types"
)

const sampleCSV = `timestamp,open,high,low,close,volume
2024-01-01 00:00:00,100,102,99,101,10
2024-01-01 00:05:00,101,103,,102,12
2024-01-01 00:10:00,102,NaN,100,null,9
2024-01-01 00:15:00,102,104,101,103,11
`

func TestCSVProvider_ReadMissingCells(t *testing.T) {
	series, err := NewCSVProvider().Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	require.Equal(t, 4, series.Len())
	assert.Equal(t, []types.NullFloat64{types.Float(102), types.Float(103), {}, types.Float(104)}, series.High)
	assert.Equal(t, []types.NullFloat64{types.Float(99), {}, types.Float(100), types.Float(101)}, series.Low)
	assert.Equal(t, []types.NullFloat64{types.Float(101), types.Float(102), {}, types.Float(103)}, series.Close)
	assert.False(t, series.HasSignals())
	require.True(t, series.HasTimestamps())
	assert.Equal(t, time.Date(2024, 1, 1, 0, 15, 0, 0, time.UTC), series.Timestamps[3])
}

func TestCSVProvider_ReadSignals(t *testing.T) {
	input := "time,High,Low,Close,entry,exit\n" +
		"1704067200000,2,1,1.5,1,0\n" +
		"1704067500000,2,1,1.5,false,true\n" +
		"1704067800000,2,1,1.5,,\n"

	series, err := NewCSVProvider().Read(strings.NewReader(input))
	require.NoError(t, err)
	require.True(t, series.HasSignals())
	assert.Equal(t, []bool{true, false, false}, series.Entries)
	assert.Equal(t, []bool{false, true, false}, series.Exits)
	assert.Equal(t, time.UnixMilli(1704067200000).UTC(), series.Timestamps[0])
}

func TestCSVProvider_SingleSignalColumnIgnored(t *testing.T) {
	series, err := NewCSVProvider().Read(strings.NewReader("high,low,close,entry\n2,1,1.5,1\n"))
	require.NoError(t, err)
	assert.False(t, series.HasSignals())
	assert.False(t, series.HasTimestamps())
}

func TestCSVProvider_ReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "no header row"},
		{"missing columns", "timestamp,open,close\n", "missing required columns: high, low"},
		{"bad price", "high,low,close\n2,1,abc\n", `invalid close "abc" at line 2`},
		{"bad signal", "high,low,close,entry,exit\n2,1,1,maybe,0\n", "invalid entry"},
		{"bad timestamp", "timestamp,high,low,close\nyesterday,2,1,1\n", "invalid timestamp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCSVProvider().Read(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCSVProvider_LoadDataIsDataError(t *testing.T) {
	_, err := NewCSVProvider().LoadData(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrorCategoryData, errors.CategoryOf(err))
}

func TestCSVProvider_ValidateData(t *testing.T) {
	p := NewCSVProvider()

	series, err := p.Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.NoError(t, p.ValidateData(series))

	inverted := series.Clone()
	inverted.High[0] = types.Float(90)
	assert.Error(t, p.ValidateData(inverted))

	unordered := series.Clone()
	unordered.Timestamps[1], unordered.Timestamps[2] = unordered.Timestamps[2], unordered.Timestamps[1]
	assert.Error(t, p.ValidateData(unordered))

	assert.Error(t, p.ValidateData(&types.Series{}))
}

func TestCachedProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))

	p := NewCachedProvider(NewCSVProvider())
	first, err := p.LoadData(path)
	require.NoError(t, err)
	assert.Equal(t, 1, p.GetCacheSize())

	// Mutating a returned series does not leak into the cache
	first.Close[0] = types.Float(-1)
	require.NoError(t, os.Remove(path))
	second, err := p.LoadData(path)
	require.NoError(t, err)
	assert.Equal(t, types.Float(101), second.Close[0])

	p.ClearCache()
	assert.Equal(t, 0, p.GetCacheSize())
	_, err = p.LoadData(path)
	assert.Error(t, err)
}

func TestDataFilter(t *testing.T) {
	series, err := NewCSVProvider().Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	f := NewDefaultDataFilter()

	last := f.FilterByPeriod(series, 5*time.Minute)
	assert.Equal(t, 2, last.Len())
	assert.Equal(t, types.Float(103), last.Close[1])

	ranged := f.FilterByDateRange(series,
		time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 10, 0, 0, time.UTC))
	require.Equal(t, 2, ranged.Len())
	assert.Equal(t, types.Float(102), ranged.Close[0])

	open := f.FilterByDateRange(series, time.Time{}, time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC))
	assert.Equal(t, 2, open.Len())
}

func TestFileLocator(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "bybit", "linear", "BTCUSDT", "60")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "candles.csv"), []byte(sampleCSV), 0644))

	dm := NewDataManager()
	path, err := dm.FindDataFile(root, "bybit", "btcusdt", "1h")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "candles.csv"), path)

	series, err := dm.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, series.Len())

	_, err = dm.FindDataFile(root, "bybit", "ETHUSDT", "5m")
	assert.Error(t, err)

	assert.Equal(t, "240", NewDefaultFileLocator().ConvertIntervalToMinutes("4h"))
}

func TestParseTrailingPeriod(t *testing.T) {
	d, ok := ParseTrailingPeriod("30d")
	require.True(t, ok)
	assert.Equal(t, 30*24*time.Hour, d)

	d, ok = ParseTrailingPeriod("168h")
	require.True(t, ok)
	assert.Equal(t, 168*time.Hour, d)

	_, ok = ParseTrailingPeriod("soon")
	assert.False(t, ok)
}
