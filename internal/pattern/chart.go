package pattern

import (
	"math"

	"stockmaster/internal/model"
	"stockmaster/internal/swing"
)

// Chart pattern names.
const (
	DoubleTop            = "DOUBLE_TOP"
	DoubleBottom         = "DOUBLE_BOTTOM"
	HeadAndShoulders     = "HEAD_AND_SHOULDERS"
	InverseHeadShoulders = "INVERSE_HEAD_AND_SHOULDERS"
	AscendingTriangle    = "ASCENDING_TRIANGLE"
	DescendingTriangle   = "DESCENDING_TRIANGLE"
	SymmetricTriangle    = "SYMMETRIC_TRIANGLE"
)

// minChartBars is the minimum series length for chart pattern detection.
const minChartBars = 60

// Charts matches the long-window geometric patterns over the swing-point
// sequence. window is the extremum comparison half-width, tolerance the
// relative price tolerance for near-equality checks.
func Charts(candles []model.Candle, window int, tolerance float64) []model.PatternMatch {
	if len(candles) < minChartBars || window <= 0 || tolerance <= 0 {
		return nil
	}
	points := swing.Alternating(swing.PricePoints(candles, window))
	if len(points) < 3 {
		return nil
	}

	var out []model.PatternMatch
	if m, ok := matchDouble(points, tolerance); ok {
		out = append(out, m)
	}
	if m, ok := matchHeadShoulders(points, tolerance); ok {
		out = append(out, m)
	}
	if m, ok := matchTriangle(points, tolerance); ok {
		out = append(out, m)
	}
	return out
}

// matchDouble looks at the last three swings for a double top (two
// near-equal peaks around a materially lower trough) or double bottom.
func matchDouble(points []swing.Point, tolerance float64) (model.PatternMatch, bool) {
	n := len(points)
	for end := n - 1; end >= 2; end-- {
		a, mid, b := points[end-2], points[end-1], points[end]
		if a.High != b.High || mid.High == a.High {
			continue
		}
		if math.Abs(a.Value-b.Value) > tolerance*a.Value {
			continue
		}
		if a.High {
			// Two peaks; the trough between must be materially lower.
			if mid.Value < math.Min(a.Value, b.Value)*(1-tolerance) {
				return model.PatternMatch{
					Name:      DoubleTop,
					Scope:     model.ScopeChart,
					StartIdx:  a.Index,
					EndIdx:    b.Index,
					Direction: model.Bearish,
					Strength:  model.StrengthStrong,
				}, true
			}
			continue
		}
		if mid.Value > math.Max(a.Value, b.Value)*(1+tolerance) {
			return model.PatternMatch{
				Name:      DoubleBottom,
				Scope:     model.ScopeChart,
				StartIdx:  a.Index,
				EndIdx:    b.Index,
				Direction: model.Bullish,
				Strength:  model.StrengthStrong,
			}, true
		}
	}
	return model.PatternMatch{}, false
}

// matchHeadShoulders scans the last five-swing sequences for a head that
// exceeds both shoulders by more than the tolerance while the shoulders
// stay within tolerance of each other.
func matchHeadShoulders(points []swing.Point, tolerance float64) (model.PatternMatch, bool) {
	n := len(points)
	for end := n - 1; end >= 4; end-- {
		seq := points[end-4 : end+1]
		first := seq[0]
		left, head, right := seq[0], seq[2], seq[4]
		if left.High != head.High || head.High != right.High {
			continue
		}
		if math.Abs(left.Value-right.Value) > tolerance*left.Value {
			continue
		}
		if first.High {
			// Peaks at 0,2,4: head must top both shoulders.
			if head.Value > left.Value*(1+tolerance) && head.Value > right.Value*(1+tolerance) {
				return model.PatternMatch{
					Name:      HeadAndShoulders,
					Scope:     model.ScopeChart,
					StartIdx:  left.Index,
					EndIdx:    right.Index,
					Direction: model.Bearish,
					Strength:  model.StrengthVeryStrong,
				}, true
			}
			continue
		}
		if head.Value < left.Value*(1-tolerance) && head.Value < right.Value*(1-tolerance) {
			return model.PatternMatch{
				Name:      InverseHeadShoulders,
				Scope:     model.ScopeChart,
				StartIdx:  left.Index,
				EndIdx:    right.Index,
				Direction: model.Bullish,
				Strength:  model.StrengthVeryStrong,
			}, true
		}
	}
	return model.PatternMatch{}, false
}

// matchTriangle fits linear trends through the recent swing highs and
// swing lows and classifies the envelope: flat top with rising bottom is
// ascending, falling top with flat bottom descending, falling top with
// rising bottom symmetric.
func matchTriangle(points []swing.Point, tolerance float64) (model.PatternMatch, bool) {
	recent := points
	if len(recent) > 6 {
		recent = recent[len(recent)-6:]
	}
	var highs, lows []swing.Point
	for _, p := range recent {
		if p.High {
			highs = append(highs, p)
		} else {
			lows = append(lows, p)
		}
	}
	if len(highs) < 2 || len(lows) < 2 {
		return model.PatternMatch{}, false
	}

	upper := relativeSlope(highs)
	lower := relativeSlope(lows)
	flat := tolerance / 10 // per-bar relative slope below this counts as flat

	start := recent[0].Index
	end := recent[len(recent)-1].Index
	match := func(name, direction, strength string) (model.PatternMatch, bool) {
		return model.PatternMatch{
			Name:      name,
			Scope:     model.ScopeChart,
			StartIdx:  start,
			EndIdx:    end,
			Direction: direction,
			Strength:  strength,
		}, true
	}

	switch {
	case math.Abs(upper) <= flat && lower > flat:
		return match(AscendingTriangle, model.Bullish, model.StrengthMedium)
	case upper < -flat && math.Abs(lower) <= flat:
		return match(DescendingTriangle, model.Bearish, model.StrengthMedium)
	case upper < -flat && lower > flat:
		return match(SymmetricTriangle, model.Neutral, model.StrengthWeak)
	default:
		return model.PatternMatch{}, false
	}
}

// relativeSlope is the least-squares slope of value over bar index,
// normalized by the mean value: relative price change per bar.
func relativeSlope(points []swing.Point) float64 {
	n := float64(len(points))
	var sumX, sumY, sumXY, sumXX float64
	for _, p := range points {
		x := float64(p.Index)
		sumX += x
		sumY += p.Value
		sumXY += x * p.Value
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	slope := (n*sumXY - sumX*sumY) / denom
	mean := sumY / n
	if mean == 0 {
		return 0
	}
	return slope / mean
}
