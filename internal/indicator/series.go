// Package indicator implements the oscillator and band calculators.
//
// Every calculator is a pure function over a candle series. Results are
// returned as slices aligned 1:1 with the input; warm-up entries where not
// enough history exists are NaN. A series shorter than an indicator's
// minimum window yields an entirely-NaN result rather than a partial one.
package indicator

import (
	"errors"
	"fmt"
	"math"

	"stockmaster/internal/model"
)

// ErrInvalidPeriod is returned for non-positive periods.
var ErrInvalidPeriod = errors.New("period must be positive")

func checkPeriod(name string, period int) error {
	if period <= 0 {
		return fmt.Errorf("%s period %d: %w", name, period, ErrInvalidPeriod)
	}
	return nil
}

// nanSeries returns a series of length n with every entry undefined.
func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// Defined reports whether the series value at i exists.
func Defined(series []float64, i int) bool {
	return i >= 0 && i < len(series) && !math.IsNaN(series[i])
}

// Last returns the latest defined value of a series, or NaN when the whole
// series is undefined.
func Last(series []float64) float64 {
	v, _ := LastAt(series)
	return v
}

// LastAt returns the latest defined value and its index, or (NaN, -1).
func LastAt(series []float64) (float64, int) {
	for i := len(series) - 1; i >= 0; i-- {
		if !math.IsNaN(series[i]) {
			return series[i], i
		}
	}
	return math.NaN(), -1
}

// SMA computes the simple moving average over the given period. Entries
// before period-1 are NaN.
func SMA(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA computes the exponential moving average with smoothing factor
// 2/(period+1), seeded by the simple average of the first period values.
func EMA(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	var seed float64
	for i := 0; i < period; i++ {
		seed += values[i]
	}
	out[period-1] = seed / float64(period)

	alpha := 2.0 / (float64(period) + 1.0)
	for i := period; i < len(values); i++ {
		out[i] = values[i]*alpha + out[i-1]*(1.0-alpha)
	}
	return out
}

// emaOfSeries applies EMA to a series that begins with a NaN warm-up
// prefix, keeping the output aligned with the input.
func emaOfSeries(series []float64, period int) []float64 {
	out := nanSeries(len(series))
	start := -1
	for i, v := range series {
		if !math.IsNaN(v) {
			start = i
			break
		}
	}
	if start < 0 {
		return out
	}
	inner := EMA(series[start:], period)
	copy(out[start:], inner)
	return out
}

// highestHigh returns the maximum high over candles[from..to] inclusive.
func highestHigh(candles []model.Candle, from, to int) float64 {
	h := candles[from].High
	for i := from + 1; i <= to; i++ {
		if candles[i].High > h {
			h = candles[i].High
		}
	}
	return h
}

// lowestLow returns the minimum low over candles[from..to] inclusive.
func lowestLow(candles []model.Candle, from, to int) float64 {
	l := candles[from].Low
	for i := from + 1; i <= to; i++ {
		if candles[i].Low < l {
			l = candles[i].Low
		}
	}
	return l
}
