package indicator

import (
	"fmt"
	"math"

	"stockmaster/internal/model"
)

// MACD computes the MACD line (fast EMA minus slow EMA), its signal line
// (EMA of the MACD line) and the histogram (line minus signal). All three
// series are aligned with the input candles.
func MACD(candles []model.Candle, fastPeriod, slowPeriod, signalPeriod int) (line, signal, hist []float64, err error) {
	if err := checkPeriod("macd fast", fastPeriod); err != nil {
		return nil, nil, nil, err
	}
	if err := checkPeriod("macd slow", slowPeriod); err != nil {
		return nil, nil, nil, err
	}
	if err := checkPeriod("macd signal", signalPeriod); err != nil {
		return nil, nil, nil, err
	}
	if fastPeriod >= slowPeriod {
		return nil, nil, nil, fmt.Errorf("macd fast period %d: %w (must be below slow period %d)",
			fastPeriod, ErrInvalidPeriod, slowPeriod)
	}

	n := len(candles)
	line = nanSeries(n)
	signal = nanSeries(n)
	hist = nanSeries(n)
	if n < slowPeriod+signalPeriod-1 {
		return line, signal, hist, nil
	}

	closes := model.Closes(candles)
	fastEMA := EMA(closes, fastPeriod)
	slowEMA := EMA(closes, slowPeriod)
	for i := slowPeriod - 1; i < n; i++ {
		line[i] = fastEMA[i] - slowEMA[i]
	}

	signal = emaOfSeries(line, signalPeriod)
	for i := range hist {
		if !math.IsNaN(line[i]) && !math.IsNaN(signal[i]) {
			hist[i] = line[i] - signal[i]
		}
	}
	return line, signal, hist, nil
}
