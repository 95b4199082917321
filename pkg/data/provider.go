package data

import (
	"strconv"
	"strings"
	"time"

	"github.com/ducminhle1904/indicator-engine/pkg/types"
)

// DataManager combines loading, filtering and file lookup
type DataManager struct {
	provider DataProvider
	filter   DataFilter
	locator  FileLocator
}

// NewDataManager creates a new data manager with default components
func NewDataManager() *DataManager {
	return NewDataManagerWithProvider(NewCachedProvider(NewCSVProvider()))
}

// NewDataManagerWithProvider creates a data manager with a custom provider
func NewDataManagerWithProvider(provider DataProvider) *DataManager {
	return &DataManager{
		provider: provider,
		filter:   NewDefaultDataFilter(),
		locator:  NewDefaultFileLocator(),
	}
}

// Load reads and validates a series
func (dm *DataManager) Load(source string) (*types.Series, error) {
	series, err := dm.provider.LoadData(source)
	if err != nil {
		return nil, err
	}
	if err := dm.provider.ValidateData(series); err != nil {
		return nil, err
	}
	return series, nil
}

// FilterByPeriod keeps the trailing period of the series
func (dm *DataManager) FilterByPeriod(series *types.Series, period time.Duration) *types.Series {
	return dm.filter.FilterByPeriod(series, period)
}

// FilterByDateRange keeps rows within [start, end]
func (dm *DataManager) FilterByDateRange(series *types.Series, start, end time.Time) *types.Series {
	return dm.filter.FilterByDateRange(series, start, end)
}

// FindDataFile locates the candles file for a symbol
func (dm *DataManager) FindDataFile(dataRoot, exchange, symbol, interval string) (string, error) {
	return dm.locator.FindDataFile(dataRoot, exchange, symbol, interval)
}

// ParseTrailingPeriod parses period strings like "7d", "30d", "180d" or Go durations
func ParseTrailingPeriod(s string) (time.Duration, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasSuffix(s, "days") {
		s = strings.TrimSuffix(s, "days") + "d"
	}
	if strings.HasSuffix(s, "d") {
		n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil || n <= 0 {
			return 0, false
		}
		return time.Duration(n) * 24 * time.Hour, true
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d, true
	}
	return 0, false
}
