package indicator

// RSI calculates the Relative Strength Index using simple rolling averages
// of gains and losses over period price changes.
// Returns slice of length: len(prices) - period
func RSI(prices []float64, period int) []float64 {
	if period < 1 || len(prices) <= period {
		return []float64{}
	}

	result := make([]float64, 0, len(prices)-period)

	var gain, loss float64
	for i := 1; i <= period; i++ {
		g, l := change(prices[i-1], prices[i])
		gain += g
		loss += l
	}
	result = append(result, rsiValue(gain, loss))

	// Rolling window over the last period changes
	for i := period + 1; i < len(prices); i++ {
		og, ol := change(prices[i-period-1], prices[i-period])
		ng, nl := change(prices[i-1], prices[i])
		gain += ng - og
		loss += nl - ol
		result = append(result, rsiValue(gain, loss))
	}

	return result
}

func change(prev, cur float64) (gain, loss float64) {
	d := cur - prev
	if d > 0 {
		return d, 0
	}
	return 0, -d
}

// rsiValue works on sums; the period divisor cancels out in gain/loss.
func rsiValue(gain, loss float64) float64 {
	if gain < 1e-12 {
		gain = 0
	}
	if loss < 1e-12 {
		loss = 0
	}
	switch {
	case gain == 0 && loss == 0:
		return 50
	case loss == 0:
		return 100
	}
	rs := gain / loss
	return 100 - 100/(1+rs)
}
