// Package swing extracts local price extrema over a symmetric comparison
// window. Both the divergence detector and the chart pattern recognizer
// build on it.
package swing

import (
	"math"

	"stockmaster/internal/model"
)

// Point is a single swing high or low.
type Point struct {
	Index int
	Value float64
	High  bool
}

// Extrema finds the indices of local maxima and minima in values: index i
// qualifies when it is the max (resp. min) among window bars on each side.
// NaN entries never qualify and never block a neighbor.
func Extrema(values []float64, window int) (highs, lows []int) {
	for i := window; i < len(values)-window; i++ {
		if math.IsNaN(values[i]) {
			continue
		}
		isHigh, isLow := true, true
		for j := i - window; j <= i+window; j++ {
			if j == i || math.IsNaN(values[j]) {
				continue
			}
			if values[j] > values[i] {
				isHigh = false
			}
			if values[j] < values[i] {
				isLow = false
			}
			if !isHigh && !isLow {
				break
			}
		}
		if isHigh {
			highs = append(highs, i)
		}
		if isLow {
			lows = append(lows, i)
		}
	}
	return highs, lows
}

// PricePoints extracts swing highs (from bar highs) and swing lows (from
// bar lows) as an interleaved, index-ordered sequence.
func PricePoints(candles []model.Candle, window int) []Point {
	highsSrc := make([]float64, len(candles))
	lowsSrc := make([]float64, len(candles))
	for i, c := range candles {
		highsSrc[i] = c.High
		lowsSrc[i] = c.Low
	}
	highs, _ := Extrema(highsSrc, window)
	_, lows := Extrema(lowsSrc, window)

	points := make([]Point, 0, len(highs)+len(lows))
	hi, li := 0, 0
	for hi < len(highs) || li < len(lows) {
		switch {
		case li >= len(lows) || (hi < len(highs) && highs[hi] < lows[li]):
			points = append(points, Point{Index: highs[hi], Value: candles[highs[hi]].High, High: true})
			hi++
		default:
			points = append(points, Point{Index: lows[li], Value: candles[lows[li]].Low, High: false})
			li++
		}
	}
	return points
}

// Alternating reduces a swing sequence to strictly alternating highs and
// lows, keeping the more extreme point of any same-type run.
func Alternating(points []Point) []Point {
	var out []Point
	for _, p := range points {
		if len(out) == 0 || out[len(out)-1].High != p.High {
			out = append(out, p)
			continue
		}
		last := &out[len(out)-1]
		if (p.High && p.Value > last.Value) || (!p.High && p.Value < last.Value) {
			*last = p
		}
	}
	return out
}
