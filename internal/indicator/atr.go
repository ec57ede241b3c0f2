package indicator

import (
	"math"

	"stockmaster/internal/model"
)

// ATR computes the Wilder-smoothed average true range. Entries before
// index period are undefined.
func ATR(candles []model.Candle, period int) ([]float64, error) {
	if err := checkPeriod("atr", period); err != nil {
		return nil, err
	}
	out := nanSeries(len(candles))
	if len(candles) < period+1 {
		return out, nil
	}

	var sum float64
	for i := 1; i <= period; i++ {
		sum += trueRange(candles[i], candles[i-1])
	}
	out[period] = sum / float64(period)

	for i := period + 1; i < len(candles); i++ {
		tr := trueRange(candles[i], candles[i-1])
		out[i] = (out[i-1]*float64(period-1) + tr) / float64(period)
	}
	return out, nil
}

// trueRange is max(high-low, |high-prevClose|, |low-prevClose|).
func trueRange(c, prev model.Candle) float64 {
	tr := c.High - c.Low
	if d := math.Abs(c.High - prev.Close); d > tr {
		tr = d
	}
	if d := math.Abs(c.Low - prev.Close); d > tr {
		tr = d
	}
	return tr
}
