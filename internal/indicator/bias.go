package indicator

import (
	"math"

	"stockmaster/internal/model"
)

// BIAS computes the percentage deviation of the close from its SMA:
// (close - SMA) / SMA * 100.
func BIAS(candles []model.Candle, period int) ([]float64, error) {
	if err := checkPeriod("bias", period); err != nil {
		return nil, err
	}
	closes := model.Closes(candles)
	sma := SMA(closes, period)
	out := nanSeries(len(candles))
	for i := range closes {
		if math.IsNaN(sma[i]) || sma[i] == 0 {
			continue
		}
		out[i] = (closes[i] - sma[i]) / sma[i] * 100.0
	}
	return out, nil
}
