// Package levels computes ranked support/resistance candidates from
// recent-range extremes, Fibonacci retracements/extensions of the latest
// significant swing, and round-number levels near the current price.
package levels

import (
	"fmt"
	"math"
	"sort"

	"stockmaster/internal/model"
)

var (
	retraceRatios = []float64{0.236, 0.382, 0.5, 0.618, 0.786}
	extendRatios  = []float64{1.272, 1.618, 2.0}
)

type candidate struct {
	price float64
	kind  string
}

// kindPriority orders cluster kinds when merged candidates disagree.
var kindPriority = map[string]int{
	model.LevelRecentHigh:  0,
	model.LevelRecentLow:   1,
	model.LevelFibRetrace:  2,
	model.LevelFibExtend:   3,
	model.LevelRoundNumber: 4,
}

// Calculate produces the ranked level list. Levels within tolerance
// (relative to the current price) are merged into one cluster; rank
// improves with the number of agreeing methods and with proximity to the
// current price.
func Calculate(candles []model.Candle, lookback int, tolerance float64) ([]model.Level, error) {
	if lookback <= 0 {
		return nil, fmt.Errorf("level lookback %d: must be positive", lookback)
	}
	if tolerance <= 0 || tolerance >= 1 {
		return nil, fmt.Errorf("level tolerance %g: must be in (0,1)", tolerance)
	}
	if len(candles) < 2 {
		return nil, nil
	}

	start := len(candles) - lookback
	if start < 0 {
		start = 0
	}
	window := candles[start:]
	current := candles[len(candles)-1].Close

	hiIdx, loIdx := 0, 0
	for i, c := range window {
		if c.High > window[hiIdx].High {
			hiIdx = i
		}
		if c.Low < window[loIdx].Low {
			loIdx = i
		}
	}
	high := window[hiIdx].High
	low := window[loIdx].Low

	cands := []candidate{
		{price: high, kind: model.LevelRecentHigh},
		{price: low, kind: model.LevelRecentLow},
	}
	cands = append(cands, fibCandidates(high, low, hiIdx > loIdx)...)
	cands = append(cands, roundCandidates(current)...)

	return cluster(cands, current, tolerance), nil
}

// fibCandidates projects retracement and extension levels from the most
// recent swing. upswing means the high came after the low.
func fibCandidates(high, low float64, upswing bool) []candidate {
	span := high - low
	if span <= 0 {
		return nil
	}
	var out []candidate
	for _, r := range retraceRatios {
		if upswing {
			out = append(out, candidate{price: high - r*span, kind: model.LevelFibRetrace})
		} else {
			out = append(out, candidate{price: low + r*span, kind: model.LevelFibRetrace})
		}
	}
	for _, r := range extendRatios {
		if upswing {
			out = append(out, candidate{price: low + r*span, kind: model.LevelFibExtend})
		} else {
			p := high - r*span
			if p > 0 {
				out = append(out, candidate{price: p, kind: model.LevelFibExtend})
			}
		}
	}
	return out
}

// roundCandidates picks the round-number levels bracketing the current
// price at an increment appropriate to its magnitude.
func roundCandidates(price float64) []candidate {
	if price <= 0 {
		return nil
	}
	inc := roundIncrement(price)
	base := math.Floor(price/inc) * inc

	var out []candidate
	for _, p := range []float64{base - inc, base, base + inc, base + 2*inc} {
		if p > 0 {
			out = append(out, candidate{price: p, kind: model.LevelRoundNumber})
		}
	}
	return out
}

func roundIncrement(price float64) float64 {
	switch {
	case price < 10:
		return 0.5
	case price < 50:
		return 1
	case price < 200:
		return 5
	case price < 1000:
		return 10
	case price < 5000:
		return 50
	default:
		return 100
	}
}

// cluster merges candidates within the proximity tolerance and ranks the
// resulting clusters: more agreeing methods first, then closer to the
// current price.
func cluster(cands []candidate, current, tolerance float64) []model.Level {
	sort.Slice(cands, func(i, j int) bool { return cands[i].price < cands[j].price })

	maxGap := tolerance * current
	var groups [][]candidate
	for _, c := range cands {
		n := len(groups)
		if n > 0 && c.price-groups[n-1][0].price <= maxGap {
			groups[n-1] = append(groups[n-1], c)
			continue
		}
		groups = append(groups, []candidate{c})
	}

	out := make([]model.Level, 0, len(groups))
	for _, g := range groups {
		var sum float64
		kind := g[0].kind
		for _, c := range g {
			sum += c.price
			if kindPriority[c.kind] < kindPriority[kind] {
				kind = c.kind
			}
		}
		out = append(out, model.Level{
			Price:   sum / float64(len(g)),
			Kind:    kind,
			Methods: len(g),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Methods != out[j].Methods {
			return out[i].Methods > out[j].Methods
		}
		return math.Abs(out[i].Price-current) < math.Abs(out[j].Price-current)
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
