package data

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultFileLocator implements FileLocator for the data/{exchange}/{category}/{symbol}/{interval} layout
type DefaultFileLocator struct{}

// NewDefaultFileLocator creates a new default file locator
func NewDefaultFileLocator() *DefaultFileLocator {
	return &DefaultFileLocator{}
}

// ConvertIntervalToMinutes converts interval strings like "5m", "1h", "4h" to minute numbers
func (f *DefaultFileLocator) ConvertIntervalToMinutes(interval string) string {
	if _, err := strconv.Atoi(interval); err == nil {
		return interval
	}

	interval = strings.ToLower(strings.TrimSpace(interval))
	if len(interval) < 2 {
		return interval
	}

	num, err := strconv.Atoi(interval[:len(interval)-1])
	if err != nil {
		return interval
	}

	switch interval[len(interval)-1] {
	case 'm':
		return strconv.Itoa(num)
	case 'h':
		return strconv.Itoa(num * 60)
	case 'd':
		return strconv.Itoa(num * 24 * 60)
	case 'w':
		return strconv.Itoa(num * 7 * 24 * 60)
	default:
		return interval
	}
}

// FindDataFile locates data/{exchange}/{category}/{symbol}/{interval}/candles.csv
func (f *DefaultFileLocator) FindDataFile(dataRoot, exchange, symbol, interval string) (string, error) {
	symbol = strings.ToUpper(symbol)
	intervalMinutes := f.ConvertIntervalToMinutes(interval)

	var categories []string
	switch strings.ToLower(exchange) {
	case "bybit":
		categories = []string{"spot", "linear", "inverse"}
	case "binance":
		categories = []string{"spot", "futures"}
	default:
		categories = []string{"spot", "futures", "linear", "inverse"}
	}

	attempted := make([]string, 0, len(categories))
	for _, category := range categories {
		path := filepath.Join(dataRoot, exchange, category, symbol, intervalMinutes, "candles.csv")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		attempted = append(attempted, path)
	}

	return "", fmt.Errorf("no data file found for %s %s %s, tried: %s",
		exchange, symbol, interval, strings.Join(attempted, ", "))
}
