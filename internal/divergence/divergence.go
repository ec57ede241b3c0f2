// Package divergence finds price-vs-oscillator divergences. The algorithm
// is indicator-agnostic: it pairs each price swing point with the next
// same-type swing point at least MinDistance bars away and compares the
// price move between them against the indicator move at the same two
// indices.
package divergence

import (
	"fmt"
	"math"
	"sort"

	"stockmaster/internal/model"
	"stockmaster/internal/swing"
)

// Options configures the detector.
type Options struct {
	Window      int     // symmetric comparison window for swing extraction
	MinDistance int     // minimum bar distance between paired extrema
	Epsilon     float64 // relative tolerance below which a move counts as flat
	Max         int     // maximum number of divergences returned (0 = all)
}

// DefaultOptions mirror the engine defaults.
func DefaultOptions() Options {
	return Options{Window: 3, MinDistance: 5, Epsilon: 1e-3, Max: 3}
}

// Detect finds regular and hidden divergences between the price series and
// the given indicator series. Results are ordered most recent first and
// capped at opts.Max. Detection is idempotent: the same inputs always
// produce the same events.
func Detect(candles []model.Candle, indicator []float64, name string, opts Options) ([]model.Divergence, error) {
	if opts.Window <= 0 {
		return nil, fmt.Errorf("divergence window %d: must be positive", opts.Window)
	}
	if opts.MinDistance <= 0 {
		return nil, fmt.Errorf("divergence min distance %d: must be positive", opts.MinDistance)
	}
	if len(indicator) != len(candles) {
		return nil, fmt.Errorf("indicator series length %d does not match %d candles", len(indicator), len(candles))
	}

	highsSrc := make([]float64, len(candles))
	lowsSrc := make([]float64, len(candles))
	for i, c := range candles {
		highsSrc[i] = c.High
		lowsSrc[i] = c.Low
	}
	peaks, _ := swing.Extrema(highsSrc, opts.Window)
	_, troughs := swing.Extrema(lowsSrc, opts.Window)

	var out []model.Divergence
	out = append(out, pairPeaks(candles, indicator, name, peaks, opts)...)
	out = append(out, pairTroughs(candles, indicator, name, troughs, opts)...)

	sort.Slice(out, func(i, j int) bool {
		return out[i].PricePoints[1].Index > out[j].PricePoints[1].Index
	})
	if opts.Max > 0 && len(out) > opts.Max {
		out = out[:opts.Max]
	}
	return out, nil
}

// pairPeaks classifies peak-to-peak pairs: higher price high with a lower
// indicator high is a regular bearish divergence; lower price high with a
// higher indicator high is a hidden bearish one.
func pairPeaks(candles []model.Candle, indicator []float64, name string, peaks []int, opts Options) []model.Divergence {
	var out []model.Divergence
	for i := 0; i < len(peaks); i++ {
		p1 := peaks[i]
		j := i + 1
		for j < len(peaks) && peaks[j]-p1 < opts.MinDistance {
			j++
		}
		if j == len(peaks) {
			break
		}
		p2 := peaks[j]
		priceMove, indMove, ok := moves(candles[p1].High, candles[p2].High, indicator, p1, p2, opts.Epsilon)
		if !ok {
			continue
		}
		var kind string
		switch {
		case priceMove > 0 && indMove < 0:
			kind = model.DivergenceRegular
		case priceMove < 0 && indMove > 0:
			kind = model.DivergenceHidden
		default:
			continue
		}
		out = append(out, model.Divergence{
			Type:      kind,
			Direction: model.Bearish,
			Indicator: name,
			PricePoints: [2]model.DivergencePoint{
				{Index: p1, Value: candles[p1].High},
				{Index: p2, Value: candles[p2].High},
			},
			IndicatorPoints: [2]model.DivergencePoint{
				{Index: p1, Value: indicator[p1]},
				{Index: p2, Value: indicator[p2]},
			},
		})
	}
	return out
}

// pairTroughs classifies trough-to-trough pairs: lower price low with a
// higher indicator low is a regular bullish divergence; higher price low
// with a lower indicator low is a hidden bullish one.
func pairTroughs(candles []model.Candle, indicator []float64, name string, troughs []int, opts Options) []model.Divergence {
	var out []model.Divergence
	for i := 0; i < len(troughs); i++ {
		p1 := troughs[i]
		j := i + 1
		for j < len(troughs) && troughs[j]-p1 < opts.MinDistance {
			j++
		}
		if j == len(troughs) {
			break
		}
		p2 := troughs[j]
		priceMove, indMove, ok := moves(candles[p1].Low, candles[p2].Low, indicator, p1, p2, opts.Epsilon)
		if !ok {
			continue
		}
		var kind string
		switch {
		case priceMove < 0 && indMove > 0:
			kind = model.DivergenceRegular
		case priceMove > 0 && indMove < 0:
			kind = model.DivergenceHidden
		default:
			continue
		}
		out = append(out, model.Divergence{
			Type:      kind,
			Direction: model.Bullish,
			Indicator: name,
			PricePoints: [2]model.DivergencePoint{
				{Index: p1, Value: candles[p1].Low},
				{Index: p2, Value: candles[p2].Low},
			},
			IndicatorPoints: [2]model.DivergencePoint{
				{Index: p1, Value: indicator[p1]},
				{Index: p2, Value: indicator[p2]},
			},
		})
	}
	return out
}

// moves returns the signed price and indicator deltas between the two
// indices. ok is false when either indicator value is undefined or either
// move is within the flatness tolerance, in which case no divergence may
// be reported.
func moves(price1, price2 float64, indicator []float64, p1, p2 int, epsilon float64) (priceMove, indMove float64, ok bool) {
	if math.IsNaN(indicator[p1]) || math.IsNaN(indicator[p2]) {
		return 0, 0, false
	}
	priceMove = price2 - price1
	indMove = indicator[p2] - indicator[p1]

	priceFlat := math.Abs(priceMove) <= epsilon*math.Max(math.Abs(price1), 1)
	indFlat := math.Abs(indMove) <= epsilon*math.Max(math.Abs(indicator[p1]), 1)
	if priceFlat || indFlat {
		return 0, 0, false
	}
	return priceMove, indMove, true
}
