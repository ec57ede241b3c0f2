// Package score reduces every detected signal to one weighted composite
// score and a recommendation tier. The weight policy is fixed: divergences
// +/-4 and +/-3, MA crosses and strong patterns +/-3, overbought/oversold up to 3,
// medium patterns 2, weak confirmations 1. The scorer performs no I/O.
package score

import (
	"math"

	"stockmaster/internal/model"
)

// Derived signal kinds shared with the orchestrator.
const (
	OBVConfirmedUp  = "OBV_CONFIRMED_UP"
	OBVConfirmedDn  = "OBV_CONFIRMED_DOWN"
	OBVBullishDiv   = "OBV_BULLISH_DIVERGENCE"
	OBVBearishDiv   = "OBV_BEARISH_DIVERGENCE"
	VolumeSurgeUp   = "VOLUME_SURGE_UP"
	VolumeSurgeDown = "VOLUME_SURGE_DOWN"
	VolumeShrinkDn  = "VOLUME_SHRINK_DOWN"
)

// srProximity is the relative distance under which a support or
// resistance level counts as "near".
const srProximity = 0.03

// Inputs bundles everything the scorer consumes. All fields are
// read-only; the scorer never mutates them.
type Inputs struct {
	Snapshot    model.IndicatorSnapshot
	LastClose   float64
	LastIndex   int
	MonthChange float64 // percent close move over the trend lookback, NaN when unknown
	OBVSignal   string
	VolSignal   string
	Divergences []model.Divergence
	Levels      []model.Level
	Patterns    []model.PatternMatch
}

// Evaluate derives the individual weighted signals and their composite
// sum. The recommendation tier follows the fixed thresholds: >= 6 strong
// buy, >= 3 buy, <= -6 strong sell, <= -3 sell, hold otherwise.
func Evaluate(in Inputs) (signals []model.Signal, total int, recommendation string) {
	signals = append(signals, oscillatorSignals(in)...)
	signals = append(signals, divergenceSignals(in.Divergences)...)
	signals = append(signals, flowSignals(in)...)
	signals = append(signals, trendSignals(in)...)
	signals = append(signals, maSignals(in.Snapshot.MA, in.LastIndex)...)
	signals = append(signals, levelSignals(in.Levels, in.LastClose, in.LastIndex)...)
	signals = append(signals, patternSignals(in.Patterns)...)

	for _, s := range signals {
		total += s.Weight
	}
	return signals, total, Recommendation(total)
}

// Recommendation maps a composite score to its tier.
func Recommendation(total int) string {
	switch {
	case total >= 6:
		return model.StrongBuy
	case total >= 3:
		return model.Buy
	case total <= -6:
		return model.StrongSell
	case total <= -3:
		return model.Sell
	default:
		return model.Hold
	}
}

func oscillatorSignals(in Inputs) []model.Signal {
	var out []model.Signal
	snap := in.Snapshot
	idx := in.LastIndex

	if !math.IsNaN(snap.RSI) {
		switch {
		case snap.RSI < 30:
			out = append(out, signal("RSI_OVERSOLD", model.Bullish, 3, idx, snap.RSI))
		case snap.RSI < 40:
			out = append(out, signal("RSI_LOW", model.Bullish, 1, idx, snap.RSI))
		case snap.RSI > 70:
			out = append(out, signal("RSI_OVERBOUGHT", model.Bearish, -3, idx, snap.RSI))
		case snap.RSI > 60:
			out = append(out, signal("RSI_HIGH", model.Bearish, -1, idx, snap.RSI))
		}
	}

	if !math.IsNaN(snap.MACDHist) {
		prev := snap.PrevMACDHist
		switch {
		case !math.IsNaN(prev) && snap.MACDHist > 0 && prev <= 0:
			out = append(out, signal("MACD_GOLDEN_CROSS", model.Bullish, 3, idx, snap.MACDHist))
		case !math.IsNaN(prev) && snap.MACDHist < 0 && prev >= 0:
			out = append(out, signal("MACD_DEATH_CROSS", model.Bearish, -3, idx, snap.MACDHist))
		case snap.MACDHist > 0:
			out = append(out, signal("MACD_BULLISH", model.Bullish, 1, idx, snap.MACDHist))
		case snap.MACDHist < 0:
			out = append(out, signal("MACD_BEARISH", model.Bearish, -1, idx, snap.MACDHist))
		}
	}

	if !math.IsNaN(snap.BBLower) && !math.IsNaN(snap.BBUpper) {
		price := in.LastClose
		switch {
		case price < snap.BBLower:
			out = append(out, signal("BB_BELOW_LOWER", model.Bullish, 2, idx, price))
		case price < snap.BBLower+(snap.BBMiddle-snap.BBLower)*0.3:
			out = append(out, signal("BB_NEAR_LOWER", model.Bullish, 1, idx, price))
		case price > snap.BBUpper:
			out = append(out, signal("BB_ABOVE_UPPER", model.Bearish, -2, idx, price))
		case price > snap.BBUpper-(snap.BBUpper-snap.BBMiddle)*0.3:
			out = append(out, signal("BB_NEAR_UPPER", model.Bearish, -1, idx, price))
		}
	}

	if !math.IsNaN(snap.K) && !math.IsNaN(snap.D) {
		crossUp := !math.IsNaN(snap.PrevK) && !math.IsNaN(snap.PrevD) &&
			snap.K > snap.D && snap.PrevK <= snap.PrevD
		crossDown := !math.IsNaN(snap.PrevK) && !math.IsNaN(snap.PrevD) &&
			snap.K < snap.D && snap.PrevK >= snap.PrevD
		switch {
		case crossUp:
			out = append(out, signal("KDJ_GOLDEN_CROSS", model.Bullish, 3, idx, snap.K))
		case crossDown:
			out = append(out, signal("KDJ_DEATH_CROSS", model.Bearish, -3, idx, snap.K))
		case snap.K < 20:
			out = append(out, signal("KDJ_OVERSOLD", model.Bullish, 2, idx, snap.K))
		case snap.K > 80:
			out = append(out, signal("KDJ_OVERBOUGHT", model.Bearish, -2, idx, snap.K))
		}
	}

	if !math.IsNaN(snap.WilliamsR) {
		switch {
		case snap.WilliamsR < -80:
			out = append(out, signal("WILLIAMS_OVERSOLD", model.Bullish, 1, idx, snap.WilliamsR))
		case snap.WilliamsR > -20:
			out = append(out, signal("WILLIAMS_OVERBOUGHT", model.Bearish, -1, idx, snap.WilliamsR))
		}
	}

	if !math.IsNaN(snap.BIAS) {
		switch {
		case snap.BIAS <= -6:
			out = append(out, signal("BIAS_OVERSOLD", model.Bullish, 1, idx, snap.BIAS))
		case snap.BIAS >= 6:
			out = append(out, signal("BIAS_OVERBOUGHT", model.Bearish, -1, idx, snap.BIAS))
		}
	}
	return out
}

// divergenceSignals weighs each event: regular MACD divergences are the
// strongest signal (weight 4), regular RSI 3, hidden continuations 2.
func divergenceSignals(divs []model.Divergence) []model.Signal {
	var out []model.Signal
	for _, d := range divs {
		weight := 3
		if d.Indicator == "MACD" {
			weight = 4
		}
		if d.Type == model.DivergenceHidden {
			weight = 2
		}
		if d.Direction == model.Bearish {
			weight = -weight
		}
		out = append(out, model.Signal{
			Kind:      "DIVERGENCE_" + d.Type + "_" + d.Indicator,
			Direction: d.Direction,
			Strength:  strengthForWeight(weight),
			Index:     d.PricePoints[1].Index,
			Weight:    weight,
		})
	}
	return out
}

func flowSignals(in Inputs) []model.Signal {
	var out []model.Signal
	idx := in.LastIndex

	switch in.OBVSignal {
	case OBVBullishDiv:
		out = append(out, signal(OBVBullishDiv, model.Bullish, 2, idx, in.Snapshot.OBV))
	case OBVBearishDiv:
		out = append(out, signal(OBVBearishDiv, model.Bearish, -2, idx, in.Snapshot.OBV))
	case OBVConfirmedUp:
		out = append(out, signal(OBVConfirmedUp, model.Bullish, 1, idx, in.Snapshot.OBV))
	case OBVConfirmedDn:
		out = append(out, signal(OBVConfirmedDn, model.Bearish, -1, idx, in.Snapshot.OBV))
	}

	switch in.VolSignal {
	case VolumeSurgeUp:
		out = append(out, signal(VolumeSurgeUp, model.Bullish, 2, idx, in.Snapshot.VolumeRatio))
	case VolumeSurgeDown:
		out = append(out, signal(VolumeSurgeDown, model.Bearish, -2, idx, in.Snapshot.VolumeRatio))
	case VolumeShrinkDn:
		out = append(out, signal(VolumeShrinkDn, model.Bullish, 1, idx, in.Snapshot.VolumeRatio))
	}
	return out
}

// trendSignals fades stretched monthly moves: a rally past +15% warns
// against chasing, a slide past -15% counts as potentially oversold.
func trendSignals(in Inputs) []model.Signal {
	if math.IsNaN(in.MonthChange) {
		return nil
	}
	var out []model.Signal
	switch {
	case in.MonthChange > 15:
		out = append(out, signal("TREND_STRETCHED_UP", model.Bearish, -1, in.LastIndex, in.MonthChange))
	case in.MonthChange < -15:
		out = append(out, signal("TREND_STRETCHED_DOWN", model.Bullish, 1, in.LastIndex, in.MonthChange))
	}
	return out
}

func maSignals(ma model.MASnapshot, idx int) []model.Signal {
	var out []model.Signal
	switch ma.Cross {
	case model.GoldenCross:
		out = append(out, signal("MA_GOLDEN_CROSS", model.Bullish, 3, idx, 0))
	case model.DeathCross:
		out = append(out, signal("MA_DEATH_CROSS", model.Bearish, -3, idx, 0))
	}
	switch ma.Alignment {
	case model.Bullish:
		out = append(out, signal("MA_BULLISH_ALIGNMENT", model.Bullish, 2, idx, 0))
	case model.Bearish:
		out = append(out, signal("MA_BEARISH_ALIGNMENT", model.Bearish, -2, idx, 0))
	}
	return out
}

func levelSignals(lvls []model.Level, price float64, idx int) []model.Signal {
	var out []model.Signal
	if price <= 0 {
		return nil
	}
	if sup, ok := model.NearestSupport(lvls, price); ok {
		if (price-sup.Price)/price < srProximity {
			out = append(out, signal("NEAR_SUPPORT", model.Bullish, 1, idx, sup.Price))
		}
	}
	if res, ok := model.NearestResistance(lvls, price); ok {
		if (res.Price-price)/price < srProximity {
			out = append(out, signal("NEAR_RESISTANCE", model.Bearish, -1, idx, res.Price))
		}
	}
	return out
}

// patternSignals maps pattern strength tiers to weights: strong and very
// strong 3, medium 2, weak 1. Neutral patterns contribute nothing.
func patternSignals(patterns []model.PatternMatch) []model.Signal {
	var out []model.Signal
	for _, p := range patterns {
		var weight int
		switch p.Strength {
		case model.StrengthVeryStrong, model.StrengthStrong:
			weight = 3
		case model.StrengthMedium:
			weight = 2
		case model.StrengthWeak:
			weight = 1
		}
		switch p.Direction {
		case model.Bearish:
			weight = -weight
		case model.Neutral:
			continue
		}
		out = append(out, model.Signal{
			Kind:      "PATTERN_" + p.Name,
			Direction: p.Direction,
			Strength:  p.Strength,
			Index:     p.EndIdx,
			Weight:    weight,
		})
	}
	return out
}

// OBVTrend classifies the volume flow against the price move over the
// last lookback bars.
func OBVTrend(obv, closes []float64, lookback int) string {
	if lookback <= 0 || len(obv) < lookback+1 || len(closes) < lookback+1 {
		return ""
	}
	last := len(closes) - 1
	priceMove := closes[last] - closes[last-lookback]
	obvMove := obv[len(obv)-1] - obv[len(obv)-1-lookback]

	switch {
	case priceMove > 0 && obvMove > 0:
		return OBVConfirmedUp
	case priceMove < 0 && obvMove < 0:
		return OBVConfirmedDn
	case priceMove < 0 && obvMove > 0:
		return OBVBullishDiv
	case priceMove > 0 && obvMove < 0:
		return OBVBearishDiv
	default:
		return ""
	}
}

// VolumeTrend classifies the latest bar's volume ratio together with its
// close direction.
func VolumeTrend(ratio float64, up bool) string {
	if math.IsNaN(ratio) {
		return ""
	}
	switch {
	case ratio >= 1.5 && up:
		return VolumeSurgeUp
	case ratio >= 1.5:
		return VolumeSurgeDown
	case ratio < 0.7 && !up:
		return VolumeShrinkDn
	default:
		return ""
	}
}

func signal(kind, direction string, weight, idx int, value float64) model.Signal {
	return model.Signal{
		Kind:      kind,
		Direction: direction,
		Strength:  strengthForWeight(weight),
		Index:     idx,
		Weight:    weight,
		Value:     value,
	}
}

func strengthForWeight(weight int) string {
	switch w := abs(weight); {
	case w >= 4:
		return model.StrengthVeryStrong
	case w == 3:
		return model.StrengthStrong
	case w == 2:
		return model.StrengthMedium
	default:
		return model.StrengthWeak
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
