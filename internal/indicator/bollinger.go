package indicator

import (
	"fmt"
	"math"

	"stockmaster/internal/model"
)

// Bollinger computes Bollinger Bands: middle is the SMA over period, upper
// and lower are middle plus/minus stdDev times the population standard
// deviation over the same window.
func Bollinger(candles []model.Candle, period int, stdDev float64) (upper, middle, lower []float64, err error) {
	if err := checkPeriod("bollinger", period); err != nil {
		return nil, nil, nil, err
	}
	if stdDev <= 0 {
		return nil, nil, nil, fmt.Errorf("bollinger stddev multiplier %g: must be positive", stdDev)
	}

	n := len(candles)
	closes := model.Closes(candles)
	middle = SMA(closes, period)
	upper = nanSeries(n)
	lower = nanSeries(n)

	for i := period - 1; i < n; i++ {
		var variance float64
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - middle[i]
			variance += d * d
		}
		sd := math.Sqrt(variance / float64(period))
		upper[i] = middle[i] + sd*stdDev
		lower[i] = middle[i] - sd*stdDev
	}
	return upper, middle, lower, nil
}
