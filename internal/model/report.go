package model

import (
	"time"
)

// Direction of a signal, pattern or divergence.
const (
	Bullish = "BULLISH"
	Bearish = "BEARISH"
	Neutral = "NEUTRAL"
)

// Strength tiers. Each tier maps to a fixed scoring weight.
const (
	StrengthWeak       = "WEAK"
	StrengthMedium     = "MEDIUM"
	StrengthStrong     = "STRONG"
	StrengthVeryStrong = "VERY_STRONG"
)

// Recommendation tiers produced by the composite scorer.
const (
	StrongBuy  = "STRONG_BUY"
	Buy        = "BUY"
	Hold       = "HOLD"
	Sell       = "SELL"
	StrongSell = "STRONG_SELL"
)

// Signal is a single scored observation derived from an indicator, level,
// divergence or pattern. Immutable once produced.
type Signal struct {
	Kind      string  `json:"kind"`
	Direction string  `json:"direction"`
	Strength  string  `json:"strength"`
	Index     int     `json:"index"`
	Weight    int     `json:"weight"`
	Reason    string  `json:"reason,omitempty"`
	Value     float64 `json:"value,omitempty"`
}

// Divergence types.
const (
	DivergenceRegular = "REGULAR"
	DivergenceHidden  = "HIDDEN"
)

// DivergencePoint anchors one leg of a divergence to a bar index.
type DivergencePoint struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
}

// Divergence is a price-vs-indicator disagreement between two same-type
// swing points.
type Divergence struct {
	Type            string             `json:"type"`      // REGULAR or HIDDEN
	Direction       string             `json:"direction"` // BULLISH or BEARISH
	Indicator       string             `json:"indicator"`
	PricePoints     [2]DivergencePoint `json:"price_points"`
	IndicatorPoints [2]DivergencePoint `json:"indicator_points"`
}

// Level kinds.
const (
	LevelRecentHigh  = "RECENT_HIGH"
	LevelRecentLow   = "RECENT_LOW"
	LevelFibRetrace  = "FIB_RETRACEMENT"
	LevelFibExtend   = "FIB_EXTENSION"
	LevelRoundNumber = "ROUND_NUMBER"
)

// Level is a clustered support/resistance candidate. Rank starts at 1 for
// the strongest cluster; Methods counts how many level sources agreed.
type Level struct {
	Price   float64 `json:"price"`
	Kind    string  `json:"kind"`
	Methods int     `json:"methods"`
	Rank    int     `json:"rank"`
}

// Pattern scopes.
const (
	ScopeCandlestick = "CANDLESTICK"
	ScopeChart       = "CHART"
)

// PatternMatch is a recognized candlestick or chart pattern over a bar range.
type PatternMatch struct {
	Name      string `json:"name"`
	Scope     string `json:"scope"`
	StartIdx  int    `json:"start_idx"`
	EndIdx    int    `json:"end_idx"`
	Direction string `json:"direction"`
	Strength  string `json:"strength"`
}

// MASnapshot captures the moving-average system state at the latest bar.
type MASnapshot struct {
	Values    map[int]float64 `json:"values"`    // period -> latest SMA value
	Alignment string          `json:"alignment"` // BULLISH, BEARISH or MIXED
	Cross     string          `json:"cross"`     // GOLDEN, DEATH or empty
}

// MA cross kinds.
const (
	GoldenCross = "GOLDEN"
	DeathCross  = "DEATH"
)

// IndicatorSnapshot holds the latest defined value of every indicator.
// A NaN field means the series was too short for that indicator.
type IndicatorSnapshot struct {
	RSI          float64    `json:"rsi"`
	MACD         float64    `json:"macd"`
	MACDSignal   float64    `json:"macd_signal"`
	MACDHist     float64    `json:"macd_hist"`
	PrevMACDHist float64    `json:"prev_macd_hist"`
	BBUpper      float64    `json:"bb_upper"`
	BBMiddle     float64    `json:"bb_middle"`
	BBLower      float64    `json:"bb_lower"`
	ATR          float64    `json:"atr"`
	ATRPercent   float64    `json:"atr_percent"`
	K            float64    `json:"kdj_k"`
	D            float64    `json:"kdj_d"`
	J            float64    `json:"kdj_j"`
	PrevK        float64    `json:"prev_kdj_k"`
	PrevD        float64    `json:"prev_kdj_d"`
	OBV          float64    `json:"obv"`
	WilliamsR    float64    `json:"williams_r"`
	BIAS         float64    `json:"bias"`
	VolumeRatio  float64    `json:"volume_ratio"`
	MA           MASnapshot `json:"ma"`
}

// AnalysisReport aggregates everything a single analysis run produced.
// It is created once per invocation and never mutated afterwards.
type AnalysisReport struct {
	Symbol              string            `json:"symbol"`
	GeneratedAt         time.Time         `json:"generated_at"`
	Bars                int               `json:"bars"`
	LastClose           float64           `json:"last_close"`
	ChangePercent       float64           `json:"change_percent"`
	Indicators          IndicatorSnapshot `json:"indicators"`
	Signals             []Signal          `json:"signals"`
	Divergences         []Divergence      `json:"divergences"`
	Levels              []Level           `json:"levels"`
	CandlestickPatterns []PatternMatch    `json:"candlestick_patterns"`
	ChartPatterns       []PatternMatch    `json:"chart_patterns"`
	Score               int               `json:"score"`
	Recommendation      string            `json:"recommendation"`
}

// NearestSupport returns the highest-ranked level below the given price.
func NearestSupport(levels []Level, price float64) (Level, bool) {
	best := Level{}
	found := false
	for _, l := range levels {
		if l.Price >= price {
			continue
		}
		if !found || l.Price > best.Price {
			best = l
			found = true
		}
	}
	return best, found
}

// NearestResistance returns the closest level above the given price.
func NearestResistance(levels []Level, price float64) (Level, bool) {
	best := Level{}
	found := false
	for _, l := range levels {
		if l.Price <= price {
			continue
		}
		if !found || l.Price < best.Price {
			best = l
			found = true
		}
	}
	return best, found
}
