package core

import (
	"strings"
	"time"
)

// Symbol is a normalized (trimmed, uppercase) ticker
type Symbol string

// NormalizeSymbol trims and uppercases raw user input.
func NormalizeSymbol(raw string) Symbol {
	return Symbol(strings.ToUpper(strings.TrimSpace(raw)))
}

// ParseSymbol normalizes raw input and rejects empty symbols.
func ParseSymbol(raw string) (Symbol, error) {
	s := NormalizeSymbol(raw)
	if s == "" {
		return "", ErrInvalidSymbol
	}
	return s, nil
}

func (s Symbol) String() string {
	return string(s)
}

// Direction is the predicted side of a signal
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// Valid reports whether d is BUY or SELL.
func (d Direction) Valid() bool {
	return d == DirectionBuy || d == DirectionSell
}

// ChartPoint is one OHLC bar of a signal's chart series
type ChartPoint struct {
	Time  time.Time `json:"time"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

// SignalRecord is one prediction snapshot for a symbol
type SignalRecord struct {
	Symbol         Symbol       `json:"symbol"`
	CurrentPrice   float64      `json:"current_price"`
	PredictedPrice float64      `json:"predicted_price"`
	Direction      Direction    `json:"direction"`
	Confidence     float64      `json:"confidence"` // 0-100
	MovePct        float64      `json:"move_pct"`
	IsStrongSignal bool         `json:"is_strong_signal"`
	StatusMessage  string       `json:"status_message"`
	LastUpdated    string       `json:"last_updated"`
	ChartData      []ChartPoint `json:"chart_data"`
}

// IsBuy reports whether the record suggests buying.
func (r SignalRecord) IsBuy() bool {
	return r.Direction == DirectionBuy
}

// Closes returns the close prices of the chart series in time order.
func (r SignalRecord) Closes() []float64 {
	closes := make([]float64, len(r.ChartData))
	for i, p := range r.ChartData {
		closes[i] = p.Close
	}
	return closes
}
