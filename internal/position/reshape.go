package position

import (
	"fmt"
	"strings"

	"github.com/ducminhle1904/indicator-engine/internal/errors"
)

// TradeSpan is one aggregated trade: the bars from EntryIndex to ExitIndex inclusive
type TradeSpan struct {
	TradeID    int64 `json:"trade_id"`
	EntryIndex int64 `json:"entry_idx"`
	ExitIndex  int64 `json:"exit_idx"`
}

// OverlapPolicy decides which span owns a bar claimed by more than one span
type OverlapPolicy int

const (
	// OverlapLastWins lets later table rows overwrite earlier ones
	OverlapLastWins OverlapPolicy = iota
	// OverlapFirstWins keeps the id written by the earliest row
	OverlapFirstWins
	// OverlapReject fails the call on any overlap
	OverlapReject
)

func (p OverlapPolicy) String() string {
	switch p {
	case OverlapLastWins:
		return "last"
	case OverlapFirstWins:
		return "first"
	case OverlapReject:
		return "reject"
	default:
		return fmt.Sprintf("OverlapPolicy(%d)", int(p))
	}
}

// ParseOverlapPolicy parses "last", "first" or "reject"
func ParseOverlapPolicy(s string) (OverlapPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last", "last-wins":
		return OverlapLastWins, nil
	case "first", "first-wins":
		return OverlapFirstWins, nil
	case "reject":
		return OverlapReject, nil
	default:
		return OverlapLastWins, errors.NewConfigurationError("PositionReshape", "ParseOverlapPolicy", "unknown overlap policy").
			WithContext("overlap_policy", s)
	}
}

// Reshape expands trade spans into a dense position-id array of the given length
func Reshape(length int, spans []TradeSpan, policy OverlapPolicy) ([]int64, error) {
	if err := validateSpans(length, spans, policy); err != nil {
		return nil, err
	}

	out := make([]int64, length)
	for i := range out {
		out[i] = FlatID
	}
	// owner tracks which table row wrote each bar, only needed for overlap handling
	var owner []int
	if policy != OverlapLastWins {
		owner = make([]int, length)
		for i := range owner {
			owner[i] = -1
		}
	}

	for row, span := range spans {
		for i := span.EntryIndex; i <= span.ExitIndex; i++ {
			if owner != nil {
				if prev := owner[i]; prev >= 0 {
					if policy == OverlapReject {
						return nil, errors.NewConfigurationError("PositionReshape", "Reshape", "trade spans overlap").
							WithContext("rows", fmt.Sprintf("%d,%d", prev, row)).
							WithContext("index", i)
					}
					continue
				}
				owner[i] = row
			}
			out[i] = span.TradeID
		}
	}
	return out, nil
}

// ReshapeColumns is Reshape over parallel table columns
func ReshapeColumns(length int, tradeIDs, entryIndices, exitIndices []int64, policy OverlapPolicy) ([]int64, error) {
	if len(tradeIDs) != len(entryIndices) || len(tradeIDs) != len(exitIndices) {
		return nil, errors.NewConfigurationError("PositionReshape", "ReshapeColumns", "trade table columns have different lengths").
			WithContext("trade_id", len(tradeIDs)).
			WithContext("entry_index", len(entryIndices)).
			WithContext("exit_index", len(exitIndices))
	}

	spans := make([]TradeSpan, len(tradeIDs))
	for j := range tradeIDs {
		spans[j] = TradeSpan{TradeID: tradeIDs[j], EntryIndex: entryIndices[j], ExitIndex: exitIndices[j]}
	}
	return Reshape(length, spans, policy)
}

func validateSpans(length int, spans []TradeSpan, policy OverlapPolicy) error {
	if length < 0 {
		return errors.NewConfigurationError("PositionReshape", "Reshape", "length must be non-negative").
			WithContext("length", length)
	}
	if policy < OverlapLastWins || policy > OverlapReject {
		return errors.NewConfigurationError("PositionReshape", "Reshape", "unknown overlap policy").
			WithContext("overlap_policy", int(policy))
	}
	for row, span := range spans {
		if span.EntryIndex < 0 || span.EntryIndex >= int64(length) ||
			span.ExitIndex < 0 || span.ExitIndex >= int64(length) {
			return errors.NewConfigurationError("PositionReshape", "Reshape", "index out of bounds").
				WithContext("row", row).
				WithContext("entry_index", span.EntryIndex).
				WithContext("exit_index", span.ExitIndex).
				WithContext("length", length)
		}
		if span.EntryIndex > span.ExitIndex {
			return errors.NewConfigurationError("PositionReshape", "Reshape", "entry index after exit index").
				WithContext("row", row).
				WithContext("entry_index", span.EntryIndex).
				WithContext("exit_index", span.ExitIndex)
		}
	}
	return nil
}

// SpansFromIDs aggregates a position-id column into one span per trade, in order of entry
func SpansFromIDs(ids []int64) []TradeSpan {
	spans := make([]TradeSpan, 0)
	for i, id := range ids {
		if id == FlatID {
			continue
		}
		if n := len(spans); n > 0 && spans[n-1].TradeID == id && spans[n-1].ExitIndex == int64(i-1) {
			spans[n-1].ExitIndex = int64(i)
			continue
		}
		spans = append(spans, TradeSpan{TradeID: id, EntryIndex: int64(i), ExitIndex: int64(i)})
	}
	return spans
}
