package data

import (
	"time"

	"github.com/ducminhle1904/indicator-engine/pkg/types"
)

// DataProvider interface for loading price series from various sources
type DataProvider interface {
	// LoadData loads a series from the specified source
	LoadData(source string) (*types.Series, error)

	// ValidateData validates the integrity of the loaded data
	ValidateData(series *types.Series) error

	// GetName returns the name of the data provider
	GetName() string
}

// DataCache interface for caching loaded data
type DataCache interface {
	Get(key string) (*types.Series, bool)
	Set(key string, series *types.Series)
	Clear()
	Size() int
}

// DataFilter interface for filtering and checking series
type DataFilter interface {
	// FilterByPeriod keeps the trailing period of the series
	FilterByPeriod(series *types.Series, period time.Duration) *types.Series

	// FilterByDateRange keeps rows within [start, end]
	FilterByDateRange(series *types.Series, start, end time.Time) *types.Series

	// ValidateTimeSequence ensures rows are in chronological order
	ValidateTimeSequence(series *types.Series) error
}

// CSVColumnMapping lists accepted header names per column; matching is case-insensitive
type CSVColumnMapping struct {
	Timestamp []string
	High      []string
	Low       []string
	Close     []string
	Entry     []string
	Exit      []string

	// Layouts tried in order when a timestamp is not a unix number
	DateFormats []string
}

// Predefined CSV formats
var (
	DefaultCSVFormat = CSVColumnMapping{
		Timestamp:   []string{"timestamp", "time", "date", "datetime", "open_time"},
		High:        []string{"high", "h"},
		Low:         []string{"low", "l"},
		Close:       []string{"close", "c"},
		Entry:       []string{"entry", "entries", "enter"},
		Exit:        []string{"exit", "exits"},
		DateFormats: []string{"2006-01-02 15:04:05", time.RFC3339, "2006-01-02"},
	}
)

// FileLocator interface for finding data files
type FileLocator interface {
	// FindDataFile attempts to locate data files for a specific exchange and symbol
	FindDataFile(dataRoot, exchange, symbol, interval string) (string, error)

	// ConvertIntervalToMinutes converts interval strings like "5m", "1h", "4h" to minute numbers
	ConvertIntervalToMinutes(interval string) string
}
