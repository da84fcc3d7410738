package views

import (
	"math"

	"github.com/shopspring/decimal"
)

// FormatPrice renders a price with two decimal places, rounded half away
// from zero.
func FormatPrice(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// FormatPercent renders a percentage with two decimal places and an
// explicit sign for positive values.
func FormatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	d := decimal.NewFromFloat(v).Round(2)
	s := d.StringFixed(2) + "%"
	if d.IsPositive() {
		return "+" + s
	}
	return s
}

// FormatConfidence renders a 0-100 confidence score.
func FormatConfidence(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return decimal.NewFromFloat(v).StringFixed(2) + "%"
}

// PriceDelta returns predicted minus current price, rounded to cents.
func PriceDelta(current, predicted float64) float64 {
	d := decimal.NewFromFloat(predicted).Sub(decimal.NewFromFloat(current)).Round(2)
	f, _ := d.Float64()
	return f
}
