package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ducminhle1904/indicator-engine/internal/errors"
	"github.com/ducminhle1904/indicator-engine/pkg/types"
)

// CSVProvider implements DataProvider for CSV files with a header row
type CSVProvider struct {
	format CSVColumnMapping
}

// NewCSVProvider creates a new CSV data provider with default format
func NewCSVProvider() *CSVProvider {
	return &CSVProvider{
		format: DefaultCSVFormat,
	}
}

// NewCSVProviderWithFormat creates a new CSV data provider with custom format
func NewCSVProviderWithFormat(format CSVColumnMapping) *CSVProvider {
	return &CSVProvider{
		format: format,
	}
}

// GetName returns the name of the data provider
func (p *CSVProvider) GetName() string {
	return "CSV Provider"
}

// LoadData loads a series from a CSV file
func (p *CSVProvider) LoadData(source string) (*types.Series, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, errors.NewDataError("CSVProvider", "LoadData", err).WithContext("file", source)
	}
	defer file.Close()

	series, err := p.Read(file)
	if err != nil {
		return nil, errors.NewDataError("CSVProvider", "LoadData", err).WithContext("file", source)
	}
	return series, nil
}

type columnIndex struct {
	timestamp, high, low, close, entry, exit int
}

func (p *CSVProvider) resolve(header []string) (columnIndex, error) {
	find := func(names []string) int {
		for i, h := range header {
			h = strings.ToLower(strings.TrimSpace(h))
			for _, name := range names {
				if h == name {
					return i
				}
			}
		}
		return -1
	}
	idx := columnIndex{
		timestamp: find(p.format.Timestamp),
		high:      find(p.format.High),
		low:       find(p.format.Low),
		close:     find(p.format.Close),
		entry:     find(p.format.Entry),
		exit:      find(p.format.Exit),
	}
	var missing []string
	for name, i := range map[string]int{"high": idx.high, "low": idx.low, "close": idx.close} {
		if i < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return idx, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	// Signals only count as a pair
	if idx.entry < 0 || idx.exit < 0 {
		idx.entry, idx.exit = -1, -1
	}
	return idx, nil
}

// Read parses CSV content. Empty, "null", "NaN" and "NA" cells are missing values.
func (p *CSVProvider) Read(r io.Reader) (*types.Series, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty CSV: no header row")
		}
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}
	idx, err := p.resolve(header)
	if err != nil {
		return nil, err
	}

	series := &types.Series{}
	if idx.entry >= 0 {
		series.Entries, series.Exits = []bool{}, []bool{}
	}

	lineNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNum++
		if err != nil {
			return nil, fmt.Errorf("error reading CSV at line %d: %w", lineNum, err)
		}

		cell := func(i int) string {
			if i < 0 || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		if idx.timestamp >= 0 {
			ts, err := p.parseTimestamp(cell(idx.timestamp))
			if err != nil {
				return nil, fmt.Errorf("invalid timestamp %q at line %d: %w", cell(idx.timestamp), lineNum, err)
			}
			series.Timestamps = append(series.Timestamps, ts)
		}

		for _, col := range []struct {
			name string
			i    int
			dst  *[]types.NullFloat64
		}{
			{"high", idx.high, &series.High},
			{"low", idx.low, &series.Low},
			{"close", idx.close, &series.Close},
		} {
			v, err := parseFloat(cell(col.i))
			if err != nil {
				return nil, fmt.Errorf("invalid %s %q at line %d: %w", col.name, cell(col.i), lineNum, err)
			}
			*col.dst = append(*col.dst, v)
		}

		if idx.entry >= 0 {
			entry, err := parseSignal(cell(idx.entry))
			if err != nil {
				return nil, fmt.Errorf("invalid entry %q at line %d: %w", cell(idx.entry), lineNum, err)
			}
			exit, err := parseSignal(cell(idx.exit))
			if err != nil {
				return nil, fmt.Errorf("invalid exit %q at line %d: %w", cell(idx.exit), lineNum, err)
			}
			series.Entries = append(series.Entries, entry)
			series.Exits = append(series.Exits, exit)
		}
	}

	return series, nil
}

func isMissing(s string) bool {
	switch strings.ToLower(s) {
	case "", "null", "nan", "na", "none":
		return true
	}
	return false
}

func parseFloat(s string) (types.NullFloat64, error) {
	if isMissing(s) {
		return types.NullFloat64{}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return types.NullFloat64{}, err
	}
	return types.FloatOrNull(v), nil
}

// parseSignal reads booleans and 0/1 flags; missing reads as false
func parseSignal(s string) (bool, error) {
	if isMissing(s) {
		return false, nil
	}
	return strconv.ParseBool(strings.ToLower(s))
}

func (p *CSVProvider) parseTimestamp(s string) (time.Time, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		// Exchange exports use milliseconds
		if n > 1e11 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	var lastErr error
	for _, layout := range p.format.DateFormats {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no date format configured")
	}
	return time.Time{}, lastErr
}

// ValidateData checks column alignment and that present prices are finite
func (p *CSVProvider) ValidateData(series *types.Series) error {
	if series == nil || series.Len() == 0 {
		return errors.NewDataError("CSVProvider", "ValidateData", fmt.Errorf("no data provided"))
	}
	n := series.Len()
	if len(series.High) != n || len(series.Low) != n {
		return errors.NewDataError("CSVProvider", "ValidateData", fmt.Errorf("price columns are not aligned"))
	}

	for i := 0; i < n; i++ {
		h, l := series.High[i], series.Low[i]
		for _, v := range []types.NullFloat64{h, l, series.Close[i]} {
			if v.Valid && math.IsInf(v.Float64, 0) {
				return errors.NewDataError("CSVProvider", "ValidateData", fmt.Errorf("infinite price at index %d", i))
			}
		}
		if h.Valid && l.Valid && h.Float64 < l.Float64 {
			return errors.NewDataError("CSVProvider", "ValidateData",
				fmt.Errorf("invalid price data at index %d: high (%.4f) cannot be less than low (%.4f)", i, h.Float64, l.Float64))
		}
	}

	if err := NewDefaultDataFilter().ValidateTimeSequence(series); err != nil {
		return errors.NewDataError("CSVProvider", "ValidateData", err)
	}
	return nil
}
