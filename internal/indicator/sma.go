// Package indicator computes technical overlays for chart series.
package indicator

import "math"

// Overlay windows drawn on the chart page.
const (
	SMAWindow = 20
	RSIWindow = 14
)

// SMA returns the simple moving average of closes over window bars. Entry i
// of the result covers closes[i : i+window], so the result is
// len(closes)-window+1 long, or empty when there is not enough history.
func SMA(closes []float64, window int) []float64 {
	if window < 1 || len(closes) < window {
		return []float64{}
	}

	// prefix[i] is the sum of closes[:i]
	prefix := make([]float64, len(closes)+1)
	for i, c := range closes {
		prefix[i+1] = prefix[i] + c
	}

	out := make([]float64, len(closes)-window+1)
	w := float64(window)
	for i := range out {
		out[i] = (prefix[i+window] - prefix[i]) / w
	}
	return out
}

// Align pads an indicator series on the left with NaN so that index i lines
// up with closes[i].
func Align(series []float64, n int) []float64 {
	out := make([]float64, n)
	pad := n - len(series)
	for i := range out {
		if i < pad {
			out[i] = math.NaN()
			continue
		}
		out[i] = series[i-pad]
	}
	return out
}
