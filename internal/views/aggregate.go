package views

import (
	"sort"

	"github.com/newthinker/signaldeck/internal/core"
)

const (
	DefaultTopMoversLimit      = 5
	DefaultSuggestionLimit     = 5
	DefaultSuggestionThreshold = 0.30
)

// Summary holds portfolio-level statistics. All fields are zero for an
// empty record set.
type Summary struct {
	Count         int     `json:"count"`
	BuyCount      int     `json:"buy_count"`
	SellCount     int     `json:"sell_count"`
	StrongCount   int     `json:"strong_count"`
	AvgConfidence float64 `json:"avg_confidence"`
	AvgMovePct    float64 `json:"avg_move_pct"`
}

// Aggregate computes summary statistics over records.
func Aggregate(records []core.SignalRecord) Summary {
	var s Summary
	if len(records) == 0 {
		return s
	}

	var confidence, move float64
	for _, r := range records {
		switch r.Direction {
		case core.DirectionBuy:
			s.BuyCount++
		case core.DirectionSell:
			s.SellCount++
		}
		if r.IsStrongSignal {
			s.StrongCount++
		}
		confidence += r.Confidence
		move += r.MovePct
	}

	s.Count = len(records)
	s.AvgConfidence = confidence / float64(len(records))
	s.AvgMovePct = move / float64(len(records))
	return s
}

// MoverDirection selects gainers or losers.
type MoverDirection string

const (
	Gainers MoverDirection = "gainers"
	Losers  MoverDirection = "losers"
)

// TopMovers returns up to limit records ordered by move_pct, descending
// for gainers and ascending for losers. limit <= 0 means the default of 5.
func TopMovers(records []core.SignalRecord, dir MoverDirection, limit int) []core.SignalRecord {
	if limit <= 0 {
		limit = DefaultTopMoversLimit
	}

	out := clone(records)
	if dir == Losers {
		sort.SliceStable(out, func(i, j int) bool { return out[i].MovePct < out[j].MovePct })
	} else {
		sort.SliceStable(out, func(i, j int) bool { return out[i].MovePct > out[j].MovePct })
	}
	return head(out, limit)
}

// Suggestions returns records whose move_pct is strictly above threshold,
// largest first, capped at limit (default 5).
func Suggestions(records []core.SignalRecord, threshold float64, limit int) []core.SignalRecord {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	out := make([]core.SignalRecord, 0, len(records))
	for _, r := range records {
		if r.MovePct > threshold {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MovePct > out[j].MovePct })
	return head(out, limit)
}

func head(records []core.SignalRecord, n int) []core.SignalRecord {
	if len(records) > n {
		return records[:n]
	}
	return records
}
