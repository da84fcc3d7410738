package views

import (
	"math"
	"time"

	"github.com/newthinker/signaldeck/internal/core"
	"github.com/newthinker/signaldeck/internal/indicator"
)

// ChartPoint is one bar of the chart view with its overlays. Overlays are
// nil until enough history exists for their window.
type ChartPoint struct {
	Time  time.Time `json:"time"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
	SMA   *float64  `json:"sma"`
	RSI   *float64  `json:"rsi"`
}

// ChartView is the single-symbol chart page.
type ChartView struct {
	Symbol     core.Symbol        `json:"symbol"`
	Record     *core.SignalRecord `json:"record,omitempty"`
	Points     []ChartPoint       `json:"points"`
	PriceDelta float64            `json:"price_delta"`
	Error      string             `json:"error,omitempty"`
	Stale      bool               `json:"stale"`
}

// ChartSeries shapes a record's chart data with SMA20 and RSI14 overlays.
func ChartSeries(r core.SignalRecord) []ChartPoint {
	closes := r.Closes()
	sma := indicator.Align(indicator.SMA(closes, indicator.SMAWindow), len(closes))
	rsi := indicator.Align(indicator.RSI(closes, indicator.RSIWindow), len(closes))

	points := make([]ChartPoint, len(r.ChartData))
	for i, p := range r.ChartData {
		points[i] = ChartPoint{
			Time:  p.Time,
			Open:  p.Open,
			High:  p.High,
			Low:   p.Low,
			Close: p.Close,
			SMA:   finite(sma[i]),
			RSI:   finite(rsi[i]),
		}
	}
	return points
}

// Chart builds the chart view. When fetchErr is set and a prior record
// exists the prior record is still rendered and the view is marked stale.
func Chart(symbol core.Symbol, record *core.SignalRecord, fetchErr error) ChartView {
	view := ChartView{Symbol: symbol, Points: []ChartPoint{}}
	if fetchErr != nil {
		view.Error = fetchErr.Error()
		view.Stale = record != nil
	}
	if record != nil {
		r := *record
		view.Record = &r
		view.Points = ChartSeries(r)
		view.PriceDelta = PriceDelta(r.CurrentPrice, r.PredictedPrice)
	}
	return view
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
