// Package pattern recognizes candlestick and chart patterns. Candlestick
// patterns are matched on the last one to three bars of the series; chart
// patterns on the swing-point sequence of a longer window. Overlapping
// matches are all reported, disambiguation belongs to the scorer.
package pattern

import (
	"math"

	"stockmaster/internal/model"
)

// Candlestick pattern names.
const (
	Doji               = "DOJI"
	Hammer             = "HAMMER"
	HangingMan         = "HANGING_MAN"
	BullishEngulfing   = "BULLISH_ENGULFING"
	BearishEngulfing   = "BEARISH_ENGULFING"
	MorningStar        = "MORNING_STAR"
	EveningStar        = "EVENING_STAR"
	ThreeWhiteSoldiers = "THREE_WHITE_SOLDIERS"
	ThreeBlackCrows    = "THREE_BLACK_CROWS"
)

const (
	dojiBodyFraction   = 0.1 // body below this fraction of the range
	shadowBodyRatio    = 2.0 // lower shadow at least this multiple of the body
	smallShadowFaction = 0.1 // "no shadow" threshold relative to the range
	starBodyFraction   = 0.3 // star middle body relative to the average body
)

// Candlesticks matches the 1-3 bar patterns anchored at the final bar.
func Candlesticks(candles []model.Candle) []model.PatternMatch {
	n := len(candles)
	if n == 0 {
		return nil
	}

	var out []model.PatternMatch
	last := n - 1
	c := candles[last]

	if m, ok := matchDoji(c, last); ok {
		out = append(out, m)
	}
	if m, ok := matchHammer(candles, last); ok {
		out = append(out, m)
	}
	if n >= 2 {
		if m, ok := matchEngulfing(candles[last-1], c, last); ok {
			out = append(out, m)
		}
	}
	if n >= 3 {
		if m, ok := matchStar(candles[last-2], candles[last-1], c, last); ok {
			out = append(out, m)
		}
		if m, ok := matchThree(candles[last-2], candles[last-1], c, last); ok {
			out = append(out, m)
		}
	}
	return out
}

func matchDoji(c model.Candle, idx int) (model.PatternMatch, bool) {
	r := c.Range()
	if r <= 0 || c.Body() >= r*dojiBodyFraction {
		return model.PatternMatch{}, false
	}
	return model.PatternMatch{
		Name:      Doji,
		Scope:     model.ScopeCandlestick,
		StartIdx:  idx,
		EndIdx:    idx,
		Direction: model.Neutral,
		Strength:  model.StrengthWeak,
	}, true
}

// matchHammer requires a long lower shadow, a near-absent upper shadow and
// a small body near the top of the range. The same shape is a hammer after
// a decline and a hanging man after an advance.
func matchHammer(candles []model.Candle, idx int) (model.PatternMatch, bool) {
	c := candles[idx]
	r := c.Range()
	body := c.Body()
	if r <= 0 || body <= 0 {
		return model.PatternMatch{}, false
	}
	if c.LowerShadow() < body*shadowBodyRatio || c.UpperShadow() > r*smallShadowFaction {
		return model.PatternMatch{}, false
	}

	name, direction := Hammer, model.Bullish
	if priorTrend(candles, idx) > 0 {
		name, direction = HangingMan, model.Bearish
	}
	return model.PatternMatch{
		Name:      name,
		Scope:     model.ScopeCandlestick,
		StartIdx:  idx,
		EndIdx:    idx,
		Direction: direction,
		Strength:  model.StrengthWeak,
	}, true
}

func matchEngulfing(prev, c model.Candle, idx int) (model.PatternMatch, bool) {
	if c.Body() <= prev.Body() {
		return model.PatternMatch{}, false
	}
	if c.Bullish() && !prev.Bullish() && c.Open <= prev.Close && c.Close >= prev.Open {
		return model.PatternMatch{
			Name:      BullishEngulfing,
			Scope:     model.ScopeCandlestick,
			StartIdx:  idx - 1,
			EndIdx:    idx,
			Direction: model.Bullish,
			Strength:  model.StrengthMedium,
		}, true
	}
	if !c.Bullish() && prev.Bullish() && c.Open >= prev.Close && c.Close <= prev.Open {
		return model.PatternMatch{
			Name:      BearishEngulfing,
			Scope:     model.ScopeCandlestick,
			StartIdx:  idx - 1,
			EndIdx:    idx,
			Direction: model.Bearish,
			Strength:  model.StrengthMedium,
		}, true
	}
	return model.PatternMatch{}, false
}

// matchStar looks for morning/evening stars: a large body, a gapped small
// middle bar, then a large opposite body closing back past the midpoint of
// the first.
func matchStar(c1, c2, c3 model.Candle, idx int) (model.PatternMatch, bool) {
	avgBody := (c1.Body() + c2.Body() + c3.Body()) / 3
	if avgBody <= 0 {
		return model.PatternMatch{}, false
	}
	bigFirst := c1.Body() > avgBody
	smallMiddle := c2.Body() < avgBody*starBodyFraction
	bigThird := c3.Body() > avgBody
	if !bigFirst || !smallMiddle || !bigThird {
		return model.PatternMatch{}, false
	}

	mid1 := (c1.Open + c1.Close) / 2
	bodyTop2 := math.Max(c2.Open, c2.Close)
	bodyBot2 := math.Min(c2.Open, c2.Close)

	if !c1.Bullish() && c3.Bullish() && bodyTop2 < c1.Close && c3.Close > mid1 {
		return model.PatternMatch{
			Name:      MorningStar,
			Scope:     model.ScopeCandlestick,
			StartIdx:  idx - 2,
			EndIdx:    idx,
			Direction: model.Bullish,
			Strength:  model.StrengthStrong,
		}, true
	}
	if c1.Bullish() && !c3.Bullish() && bodyBot2 > c1.Close && c3.Close < mid1 {
		return model.PatternMatch{
			Name:      EveningStar,
			Scope:     model.ScopeCandlestick,
			StartIdx:  idx - 2,
			EndIdx:    idx,
			Direction: model.Bearish,
			Strength:  model.StrengthStrong,
		}, true
	}
	return model.PatternMatch{}, false
}

// matchThree looks for three white soldiers / black crows: three
// consecutive same-direction bodies, each opening within the prior body
// and closing beyond the prior close.
func matchThree(c1, c2, c3 model.Candle, idx int) (model.PatternMatch, bool) {
	if c1.Bullish() && c2.Bullish() && c3.Bullish() &&
		c2.Open >= c1.Open && c2.Open <= c1.Close && c2.Close > c1.Close &&
		c3.Open >= c2.Open && c3.Open <= c2.Close && c3.Close > c2.Close {
		return model.PatternMatch{
			Name:      ThreeWhiteSoldiers,
			Scope:     model.ScopeCandlestick,
			StartIdx:  idx - 2,
			EndIdx:    idx,
			Direction: model.Bullish,
			Strength:  model.StrengthVeryStrong,
		}, true
	}
	if !c1.Bullish() && !c2.Bullish() && !c3.Bullish() &&
		c2.Open <= c1.Open && c2.Open >= c1.Close && c2.Close < c1.Close &&
		c3.Open <= c2.Open && c3.Open >= c2.Close && c3.Close < c2.Close {
		return model.PatternMatch{
			Name:      ThreeBlackCrows,
			Scope:     model.ScopeCandlestick,
			StartIdx:  idx - 2,
			EndIdx:    idx,
			Direction: model.Bearish,
			Strength:  model.StrengthVeryStrong,
		}, true
	}
	return model.PatternMatch{}, false
}

// priorTrend reports the sign of the close move over the few bars before
// idx: positive after an advance, negative after a decline.
func priorTrend(candles []model.Candle, idx int) int {
	lookback := 5
	from := idx - lookback
	if from < 0 {
		from = 0
	}
	if from >= idx {
		return 0
	}
	diff := candles[idx].Close - candles[from].Close
	switch {
	case diff > 0:
		return 1
	case diff < 0:
		return -1
	default:
		return 0
	}
}
