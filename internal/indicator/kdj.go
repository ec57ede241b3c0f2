package indicator

import (
	"stockmaster/internal/model"
)

// KDJ computes the stochastic K/D lines with the derived J line
// (J = 3K - 2D). K and D are smoothed with the usual 1/3 factor and
// seeded at 50; a zero-range window also yields an RSV of 50.
func KDJ(candles []model.Candle, period int) (k, d, j []float64, err error) {
	if err := checkPeriod("kdj", period); err != nil {
		return nil, nil, nil, err
	}
	n := len(candles)
	k = nanSeries(n)
	d = nanSeries(n)
	j = nanSeries(n)
	if n < period {
		return k, d, j, nil
	}

	prevK, prevD := 50.0, 50.0
	for i := period - 1; i < n; i++ {
		hh := highestHigh(candles, i-period+1, i)
		ll := lowestLow(candles, i-period+1, i)

		rsv := 50.0
		if hh > ll {
			rsv = (candles[i].Close - ll) / (hh - ll) * 100.0
		}
		k[i] = prevK*2.0/3.0 + rsv/3.0
		d[i] = prevD*2.0/3.0 + k[i]/3.0
		j[i] = 3.0*k[i] - 2.0*d[i]
		prevK, prevD = k[i], d[i]
	}
	return k, d, j, nil
}
