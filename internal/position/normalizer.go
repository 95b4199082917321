// Package position turns raw entry/exit flags into clean, alternating trade signals
// and converts between per-bar position ids and aggregated trade spans.
package position

import (
	"fmt"

	"github.com/ducminhle1904/indicator-engine/internal/errors"
)

// FlatID is the position id reported for bars without an open trade
const FlatID int64 = -1

// State is the position register: Flat, or Open with the id of the trade
type State struct {
	open bool
	id   int64
}

// Flat returns the flat state
func Flat() State {
	return State{}
}

// Open returns the state of an open trade with the given id
func Open(id int64) State {
	return State{open: true, id: id}
}

// IsOpen reports whether a trade is open
func (s State) IsOpen() bool {
	return s.open
}

// ID returns the open trade id, or FlatID when flat
func (s State) ID() int64 {
	if !s.open {
		return FlatID
	}
	return s.id
}

func (s State) String() string {
	if !s.open {
		return "Flat"
	}
	return fmt.Sprintf("Open(%d)", s.id)
}

// Bar is the cleaned output for one bar
type Bar struct {
	Entry      bool
	Exit       bool
	PositionID int64
}

// Normalizer debounces entry/exit flags one bar at a time.
// A zero Normalizer resolves simultaneous signals in favour of the exit.
type Normalizer struct {
	entryFirst bool
	state      State
	nextID     int64
}

// NewNormalizer creates a flat normalizer; entryFirst picks the winner when both flags are set
func NewNormalizer(entryFirst bool) *Normalizer {
	return &Normalizer{entryFirst: entryFirst}
}

// State returns the register after the last processed bar
func (n *Normalizer) State() State {
	return n.state
}

// Reset returns the normalizer to flat and restarts ids at 0
func (n *Normalizer) Reset() {
	n.state = Flat()
	n.nextID = 0
}

// Step applies one bar's signals and returns the cleaned bar
func (n *Normalizer) Step(entry, exit bool) Bar {
	if entry && exit {
		if n.entryFirst {
			exit = false
		} else {
			entry = false
		}
	}

	switch {
	case entry && !n.state.open:
		n.state = Open(n.nextID)
		n.nextID++
		return Bar{Entry: true, PositionID: n.state.id}
	case exit && n.state.open:
		closed := n.state.id
		n.state = Flat()
		// The closing bar still belongs to the trade it closes.
		return Bar{Exit: true, PositionID: closed}
	default:
		// Repeated entries while open and exits while flat are dropped.
		return Bar{PositionID: n.state.ID()}
	}
}

// Result holds the three cleaned columns of one normalizer run
type Result struct {
	Entries     []bool
	Exits       []bool
	PositionIDs []int64
}

// Len returns the number of rows
func (r Result) Len() int {
	return len(r.PositionIDs)
}

// Clean runs a fresh normalizer over aligned entry/exit columns
func Clean(entries, exits []bool, entryFirst bool) (Result, error) {
	if len(entries) != len(exits) {
		return Result{}, errors.NewConfigurationError("SignalNormalizer", "Clean", "entry and exit columns have different lengths").
			WithContext("entries", len(entries)).
			WithContext("exits", len(exits))
	}

	n := len(entries)
	res := Result{
		Entries:     make([]bool, n),
		Exits:       make([]bool, n),
		PositionIDs: make([]int64, n),
	}
	norm := NewNormalizer(entryFirst)
	for i := 0; i < n; i++ {
		bar := norm.Step(entries[i], exits[i])
		res.Entries[i] = bar.Entry
		res.Exits[i] = bar.Exit
		res.PositionIDs[i] = bar.PositionID
	}
	return res, nil
}
