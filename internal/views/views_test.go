package views

import (
	"testing"

	"github.com/newthinker/signaldeck/internal/core"
	"github.com/stretchr/testify/assert"
)

func rec(sym string, dir core.Direction, confidence, move float64) core.SignalRecord {
	return core.SignalRecord{
		Symbol:     core.Symbol(sym),
		Direction:  dir,
		Confidence: confidence,
		MovePct:    move,
	}
}

func symbols(records []core.SignalRecord) []core.Symbol {
	out := make([]core.Symbol, len(records))
	for i, r := range records {
		out[i] = r.Symbol
	}
	return out
}

func sample() []core.SignalRecord {
	return []core.SignalRecord{
		rec("TSLA", core.DirectionSell, 70, -1.2),
		rec("AAPL", core.DirectionBuy, 85, 0.8),
		rec("MSFT", core.DirectionBuy, 70, 0.1),
		rec("GOOGL", core.DirectionSell, 92, -0.4),
		rec("NVDA", core.DirectionBuy, 60, 2.5),
	}
}

func TestSortBy(t *testing.T) {
	tests := []struct {
		name string
		key  SortKey
		want []core.Symbol
	}{
		{"symbol ascending", SortBySymbol, []core.Symbol{"AAPL", "GOOGL", "MSFT", "NVDA", "TSLA"}},
		{"confidence descending, ties stable", SortByConfidence, []core.Symbol{"GOOGL", "AAPL", "TSLA", "MSFT", "NVDA"}},
		{"move descending", SortByMove, []core.Symbol{"NVDA", "AAPL", "MSFT", "GOOGL", "TSLA"}},
		{"direction buy first, stable", SortByDirection, []core.Symbol{"AAPL", "MSFT", "NVDA", "TSLA", "GOOGL"}},
		{"unknown key keeps input order", SortKey("volume"), []core.Symbol{"TSLA", "AAPL", "MSFT", "GOOGL", "NVDA"}},
		{"empty key keeps input order", "", []core.Symbol{"TSLA", "AAPL", "MSFT", "GOOGL", "NVDA"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, symbols(SortBy(sample(), tt.key)))
		})
	}
}

func TestSortBy_ConfidenceNonIncreasing(t *testing.T) {
	records := []core.SignalRecord{
		rec("A", core.DirectionBuy, 12, 0), rec("B", core.DirectionBuy, 99, 0),
		rec("C", core.DirectionBuy, 55, 0), rec("D", core.DirectionBuy, 55, 0),
		rec("E", core.DirectionBuy, 0, 0), rec("F", core.DirectionBuy, 100, 0),
	}

	sorted := SortBy(records, SortByConfidence)
	for i := 1; i < len(sorted); i++ {
		assert.GreaterOrEqual(t, sorted[i-1].Confidence, sorted[i].Confidence)
	}
}

func TestSortBy_DoesNotMutateInput(t *testing.T) {
	in := sample()
	SortBy(in, SortBySymbol)
	assert.Equal(t, core.Symbol("TSLA"), in[0].Symbol)
}

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		in   string
		want SortKey
	}{
		{"symbol", SortBySymbol},
		{" Confidence ", SortByConfidence},
		{"MOVE", SortByMove},
		{"move_pct", SortByMove},
		{"direction", SortByDirection},
		{"", ""},
		{"price", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSortKey(tt.in))
		})
	}
}

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(nil)
	assert.Equal(t, Summary{}, s)
	assert.Equal(t, 0.0, s.AvgConfidence)
}

func TestAggregate(t *testing.T) {
	records := sample()
	records[1].IsStrongSignal = true

	s := Aggregate(records)

	assert.Equal(t, 5, s.Count)
	assert.Equal(t, 3, s.BuyCount)
	assert.Equal(t, 2, s.SellCount)
	assert.Equal(t, 1, s.StrongCount)
	assert.InDelta(t, 75.4, s.AvgConfidence, 1e-9)
	assert.InDelta(t, 0.36, s.AvgMovePct, 1e-9)
}

func TestAggregate_SingleBuyScenario(t *testing.T) {
	s := Aggregate([]core.SignalRecord{rec("AAPL", core.DirectionBuy, 80, 0)})

	assert.Equal(t, 1, s.BuyCount)
	assert.Equal(t, 0, s.SellCount)
	assert.Equal(t, 80.0, s.AvgConfidence)
}

func TestTopMovers(t *testing.T) {
	gainers := TopMovers(sample(), Gainers, 2)
	assert.Equal(t, []core.Symbol{"NVDA", "AAPL"}, symbols(gainers))

	losers := TopMovers(sample(), Losers, 2)
	assert.Equal(t, []core.Symbol{"TSLA", "GOOGL"}, symbols(losers))
}

func TestTopMovers_DefaultLimitAndTies(t *testing.T) {
	var records []core.SignalRecord
	for _, s := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		records = append(records, rec(s, core.DirectionBuy, 50, 1.0))
	}

	top := TopMovers(records, Gainers, 0)
	assert.Equal(t, []core.Symbol{"A", "B", "C", "D", "E"}, symbols(top))
}

func TestSuggestions(t *testing.T) {
	got := Suggestions(sample(), 0.3, 0)
	assert.Equal(t, []core.Symbol{"NVDA", "AAPL"}, symbols(got))

	// threshold is exclusive
	got = Suggestions(sample(), 0.8, 0)
	assert.Equal(t, []core.Symbol{"NVDA"}, symbols(got))
}

func TestSuggestions_Capped(t *testing.T) {
	var records []core.SignalRecord
	for i, s := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		records = append(records, rec(s, core.DirectionBuy, 50, float64(i+1)))
	}

	got := Suggestions(records, 0, 0)
	assert.Len(t, got, DefaultSuggestionLimit)
	assert.Equal(t, core.Symbol("G"), got[0].Symbol)

	assert.Empty(t, Suggestions(nil, 0, 0))
}

func TestFilter(t *testing.T) {
	records := sample()
	records[3].IsStrongSignal = true

	tests := []struct {
		name   string
		filter Filter
		want   []core.Symbol
	}{
		{"zero matches all", Filter{}, []core.Symbol{"TSLA", "AAPL", "MSFT", "GOOGL", "NVDA"}},
		{"direction", Filter{Direction: core.DirectionSell}, []core.Symbol{"TSLA", "GOOGL"}},
		{"direction lowercase", Filter{Direction: "buy"}, []core.Symbol{"AAPL", "MSFT", "NVDA"}},
		{"query substring", Filter{Query: "oo"}, []core.Symbol{"GOOGL"}},
		{"strong only", Filter{StrongOnly: true}, []core.Symbol{"GOOGL"}},
		{"combined", Filter{Direction: core.DirectionBuy, Query: "a"}, []core.Symbol{"AAPL", "NVDA"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, symbols(tt.filter.Apply(records)))
		})
	}

	assert.True(t, Filter{}.IsZero())
	assert.False(t, Filter{StrongOnly: true}.IsZero())
}
