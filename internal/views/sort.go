// Package views derives read-only projections from the current signal set.
// Every function returns new slices and leaves its input untouched.
package views

import (
	"sort"
	"strings"

	"github.com/newthinker/signaldeck/internal/core"
)

// SortKey selects the ordering of a signal list.
type SortKey string

const (
	SortBySymbol     SortKey = "symbol"
	SortByConfidence SortKey = "confidence"
	SortByMove       SortKey = "move"
	SortByDirection  SortKey = "direction"
)

// ParseSortKey maps user input to a SortKey. Unknown or empty input yields
// "" which SortBy treats as input order.
func ParseSortKey(raw string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(raw))); k {
	case SortBySymbol, SortByConfidence, SortByMove, SortByDirection:
		return k
	case "move_pct", "change":
		return SortByMove
	default:
		return ""
	}
}

// SortBy returns records ordered by key. Symbol sorts ascending,
// confidence and move descending, direction puts BUY before SELL.
// Ties keep input order.
func SortBy(records []core.SignalRecord, key SortKey) []core.SignalRecord {
	out := clone(records)

	var less func(a, b core.SignalRecord) bool
	switch key {
	case SortBySymbol:
		less = func(a, b core.SignalRecord) bool { return a.Symbol < b.Symbol }
	case SortByConfidence:
		less = func(a, b core.SignalRecord) bool { return a.Confidence > b.Confidence }
	case SortByMove:
		less = func(a, b core.SignalRecord) bool { return a.MovePct > b.MovePct }
	case SortByDirection:
		less = func(a, b core.SignalRecord) bool { return directionRank(a.Direction) < directionRank(b.Direction) }
	default:
		return out
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func directionRank(d core.Direction) int {
	switch d {
	case core.DirectionBuy:
		return 0
	case core.DirectionSell:
		return 1
	default:
		return 2
	}
}

func clone(records []core.SignalRecord) []core.SignalRecord {
	out := make([]core.SignalRecord, len(records))
	copy(out, records)
	return out
}
