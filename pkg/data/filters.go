package data

import (
	"fmt"
	"sort"
	"time"

	"github.com/ducminhle1904/indicator-engine/pkg/types"
)

// DefaultDataFilter implements DataFilter over timestamped series
type DefaultDataFilter struct{}

// NewDefaultDataFilter creates a new default data filter
func NewDefaultDataFilter() *DefaultDataFilter {
	return &DefaultDataFilter{}
}

// FilterByPeriod keeps rows within period of the last timestamp.
// Series without timestamps are returned unchanged.
func (f *DefaultDataFilter) FilterByPeriod(series *types.Series, period time.Duration) *types.Series {
	if period <= 0 || !series.HasTimestamps() {
		return series
	}

	cutoff := series.Timestamps[len(series.Timestamps)-1].Add(-period)
	start := sort.Search(len(series.Timestamps), func(i int) bool {
		return !series.Timestamps[i].Before(cutoff)
	})
	return series.Slice(start, series.Len())
}

// FilterByDateRange keeps rows with start <= timestamp <= end; zero bounds are open
func (f *DefaultDataFilter) FilterByDateRange(series *types.Series, start, end time.Time) *types.Series {
	if !series.HasTimestamps() {
		return series
	}

	from := 0
	if !start.IsZero() {
		from = sort.Search(len(series.Timestamps), func(i int) bool {
			return !series.Timestamps[i].Before(start)
		})
	}
	to := len(series.Timestamps)
	if !end.IsZero() {
		to = sort.Search(len(series.Timestamps), func(i int) bool {
			return series.Timestamps[i].After(end)
		})
	}
	if to < from {
		to = from
	}
	return series.Slice(from, to)
}

// ValidateTimeSequence ensures rows are strictly increasing in time
func (f *DefaultDataFilter) ValidateTimeSequence(series *types.Series) error {
	if !series.HasTimestamps() {
		return nil
	}

	ts := series.Timestamps
	for i := 1; i < len(ts); i++ {
		if ts[i].Before(ts[i-1]) {
			return fmt.Errorf("data not in chronological order at index %d: %s comes after %s",
				i, ts[i].Format(time.RFC3339), ts[i-1].Format(time.RFC3339))
		}
		if ts[i].Equal(ts[i-1]) {
			return fmt.Errorf("duplicate timestamp at index %d: %s", i, ts[i].Format(time.RFC3339))
		}
	}
	return nil
}
