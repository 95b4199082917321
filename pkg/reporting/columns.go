package reporting

import (
	"strconv"
	"time"

	"github.com/ducminhle1904/indicator-engine/pkg/types"
)

// columnKind selects formatting per output
type columnKind int

const (
	kindTime columnKind = iota
	kindPrice
	kindDirection
	kindSignal
	kindID
)

// column is one printable frame column; value returns nil for a missing cell
type column struct {
	name  string
	kind  columnKind
	value func(i int) interface{}
}

func floatColumn(name string, kind columnKind, col []types.NullFloat64) column {
	return column{name: name, kind: kind, value: func(i int) interface{} {
		if !col[i].Valid {
			return nil
		}
		return col[i].Float64
	}}
}

// frameColumns lists the columns of frame that are populated, in report order
func frameColumns(frame *types.ResultFrame) []column {
	n := frame.Len()
	var cols []column

	if len(frame.Timestamps) == n && n > 0 {
		cols = append(cols, column{name: "timestamp", kind: kindTime, value: func(i int) interface{} {
			return frame.Timestamps[i]
		}})
	}
	for _, c := range []struct {
		name string
		data []types.NullFloat64
	}{
		{"high", frame.High},
		{"low", frame.Low},
		{"close", frame.Close},
		{"atr", frame.ATR},
		{"supertrend", frame.Trend},
		{"long", frame.Long},
		{"short", frame.Short},
		{"final_upper", frame.FinalUpper},
		{"final_lower", frame.FinalLower},
	} {
		if len(c.data) == n {
			cols = append(cols, floatColumn(c.name, kindPrice, c.data))
		}
	}
	if len(frame.Direction) == n {
		cols = append(cols, column{name: "direction", kind: kindDirection, value: func(i int) interface{} {
			if !frame.Direction[i].Valid {
				return nil
			}
			return int(frame.Direction[i].Int32)
		}})
	}
	for _, c := range []struct {
		name string
		data []bool
	}{
		{"entry", frame.RawEntries},
		{"exit", frame.RawExits},
		{"clean_entry", frame.Entries},
		{"clean_exit", frame.Exits},
	} {
		if len(c.data) == n {
			data := c.data
			cols = append(cols, column{name: c.name, kind: kindSignal, value: func(i int) interface{} {
				return data[i]
			}})
		}
	}
	for _, c := range []struct {
		name string
		data []int64
	}{
		{"position_id", frame.PositionIDs},
		{"reshaped_position_id", frame.Reshaped},
	} {
		if len(c.data) == n {
			data := c.data
			cols = append(cols, column{name: c.name, kind: kindID, value: func(i int) interface{} {
				return data[i]
			}})
		}
	}
	return cols
}

// formatCell renders a cell as text; missing cells are empty
func formatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x.UTC().Format("2006-01-02 15:04:05")
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}
