package views

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{189.5, "189.50"},
		{1.005, "1.01"},
		{0, "0.00"},
		{-2.345, "-2.35"},
		{math.NaN(), "-"},
		{math.Inf(1), "-"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPrice(tt.in))
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.31, "+0.31%"},
		{-1.234, "-1.23%"},
		{0, "0.00%"},
		{-0.001, "0.00%"},
		{math.NaN(), "-"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPercent(tt.in))
	}
}

func TestFormatConfidence(t *testing.T) {
	assert.Equal(t, "87.25%", FormatConfidence(87.25))
}

func TestPriceDelta(t *testing.T) {
	assert.Equal(t, 1.25, PriceDelta(100, 101.25))
	assert.Equal(t, -0.5, PriceDelta(10.5, 10))
}
