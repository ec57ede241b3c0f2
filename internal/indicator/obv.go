package indicator

import (
	"stockmaster/internal/model"
)

// OBV computes on-balance volume as a single forward scan: volume is added
// on up-closes, subtracted on down-closes and carried on flat closes. The
// series is defined from the first bar with a seed of zero.
func OBV(candles []model.Candle) []float64 {
	out := make([]float64, len(candles))
	if len(candles) == 0 {
		return out
	}
	out[0] = 0
	for i := 1; i < len(candles); i++ {
		switch {
		case candles[i].Close > candles[i-1].Close:
			out[i] = out[i-1] + float64(candles[i].Volume)
		case candles[i].Close < candles[i-1].Close:
			out[i] = out[i-1] - float64(candles[i].Volume)
		default:
			out[i] = out[i-1]
		}
	}
	return out
}
