package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// FindAvailableIntervals lists the interval directories holding a candles.csv for symbol,
// ordered by minutes
func FindAvailableIntervals(dataRoot, exchange, symbol string) ([]string, error) {
	sym := strings.ToUpper(symbol)

	var categories []string
	switch strings.ToLower(exchange) {
	case "bybit":
		categories = []string{"spot", "linear", "inverse"}
	case "binance":
		categories = []string{"spot", "futures"}
	default:
		categories = []string{"spot", "futures", "linear", "inverse"}
	}

	seen := make(map[string]bool)
	var intervals []string
	for _, category := range categories {
		categoryDir := filepath.Join(dataRoot, exchange, category, sym)
		entries, err := os.ReadDir(categoryDir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() || seen[e.Name()] {
				continue
			}
			if _, err := os.Stat(filepath.Join(categoryDir, e.Name(), "candles.csv")); err == nil {
				seen[e.Name()] = true
				intervals = append(intervals, e.Name())
			}
		}
	}

	if len(intervals) == 0 {
		return nil, fmt.Errorf("no data found for symbol %s in exchange %s at %s", sym, exchange, dataRoot)
	}

	sort.Slice(intervals, func(i, j int) bool {
		a, errA := strconv.Atoi(intervals[i])
		b, errB := strconv.Atoi(intervals[j])
		if errA != nil || errB != nil {
			return intervals[i] < intervals[j]
		}
		return a < b
	})
	return intervals, nil
}
