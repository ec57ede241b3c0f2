package indicator

import (
	"stockmaster/internal/model"
)

// WilliamsR computes Williams %R over the given period. Defined values lie
// in [-100, 0]; a zero-range window is defined as 0 rather than faulting.
func WilliamsR(candles []model.Candle, period int) ([]float64, error) {
	if err := checkPeriod("williams", period); err != nil {
		return nil, err
	}
	out := nanSeries(len(candles))
	if len(candles) < period {
		return out, nil
	}
	for i := period - 1; i < len(candles); i++ {
		hh := highestHigh(candles, i-period+1, i)
		ll := lowestLow(candles, i-period+1, i)
		if hh == ll {
			out[i] = 0
			continue
		}
		out[i] = (hh - candles[i].Close) / (hh - ll) * -100.0
	}
	return out, nil
}
