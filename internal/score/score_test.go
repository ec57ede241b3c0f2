package score

import (
	"math"
	"testing"

	"stockmaster/internal/model"
)

func nanSnapshot() model.IndicatorSnapshot {
	nan := math.NaN()
	return model.IndicatorSnapshot{
		RSI: nan, MACD: nan, MACDSignal: nan, MACDHist: nan, PrevMACDHist: nan,
		BBUpper: nan, BBMiddle: nan, BBLower: nan,
		ATR: nan, ATRPercent: nan,
		K: nan, D: nan, J: nan, PrevK: nan, PrevD: nan,
		OBV: nan, WilliamsR: nan, BIAS: nan, VolumeRatio: nan,
	}
}

func TestRecommendation(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{10, model.StrongBuy},
		{6, model.StrongBuy},
		{5, model.Buy},
		{3, model.Buy},
		{2, model.Hold},
		{0, model.Hold},
		{-2, model.Hold},
		{-3, model.Sell},
		{-5, model.Sell},
		{-6, model.StrongSell},
		{-10, model.StrongSell},
	}
	for _, tt := range tests {
		if got := Recommendation(tt.score); got != tt.want {
			t.Errorf("Recommendation(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestEvaluateUndefinedSnapshotScoresZero(t *testing.T) {
	signals, total, rec := Evaluate(Inputs{
		Snapshot:  nanSnapshot(),
		LastClose: 100,
		LastIndex: 5,
	})
	if len(signals) != 0 {
		t.Errorf("Evaluate() signals = %v, want none from an all-NaN snapshot", signals)
	}
	if total != 0 || rec != model.Hold {
		t.Errorf("Evaluate() = (%d, %s), want (0, HOLD)", total, rec)
	}
}

func TestEvaluateOversoldStack(t *testing.T) {
	snap := nanSnapshot()
	snap.RSI = 25          // +3
	snap.MACDHist = 0.5    // golden cross with prev below zero: +3
	snap.PrevMACDHist = -0.2

	signals, total, rec := Evaluate(Inputs{
		Snapshot:  snap,
		LastClose: 100,
		LastIndex: 30,
	})
	if total != 6 {
		t.Fatalf("Evaluate() total = %d, want 6: %v", total, signals)
	}
	if rec != model.StrongBuy {
		t.Errorf("Evaluate() recommendation = %s, want %s", rec, model.StrongBuy)
	}
}

func TestEvaluateOverboughtStack(t *testing.T) {
	snap := nanSnapshot()
	snap.RSI = 75          // -3
	snap.MACDHist = -0.5   // death cross: -3
	snap.PrevMACDHist = 0.2
	snap.K, snap.D = 85, 82 // overbought without a cross: -2
	snap.PrevK, snap.PrevD = 86, 83

	_, total, rec := Evaluate(Inputs{
		Snapshot:  snap,
		LastClose: 100,
		LastIndex: 30,
	})
	if total != -8 {
		t.Fatalf("Evaluate() total = %d, want -8", total)
	}
	if rec != model.StrongSell {
		t.Errorf("Evaluate() recommendation = %s, want %s", rec, model.StrongSell)
	}
}

func TestEvaluateDivergenceWeights(t *testing.T) {
	tests := []struct {
		name string
		div  model.Divergence
		want int
	}{
		{
			name: "regular macd bullish",
			div:  model.Divergence{Type: model.DivergenceRegular, Direction: model.Bullish, Indicator: "MACD"},
			want: 4,
		},
		{
			name: "regular rsi bearish",
			div:  model.Divergence{Type: model.DivergenceRegular, Direction: model.Bearish, Indicator: "RSI"},
			want: -3,
		},
		{
			name: "hidden macd bearish",
			div:  model.Divergence{Type: model.DivergenceHidden, Direction: model.Bearish, Indicator: "MACD"},
			want: -2,
		},
		{
			name: "hidden rsi bullish",
			div:  model.Divergence{Type: model.DivergenceHidden, Direction: model.Bullish, Indicator: "RSI"},
			want: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, total, _ := Evaluate(Inputs{
				Snapshot:    nanSnapshot(),
				LastClose:   100,
				LastIndex:   30,
				Divergences: []model.Divergence{tt.div},
			})
			if total != tt.want {
				t.Errorf("Evaluate() total = %d, want %d", total, tt.want)
			}
		})
	}
}

func TestEvaluatePatternWeights(t *testing.T) {
	tests := []struct {
		name    string
		pattern model.PatternMatch
		want    int
	}{
		{
			name:    "very strong bullish",
			pattern: model.PatternMatch{Name: "THREE_WHITE_SOLDIERS", Direction: model.Bullish, Strength: model.StrengthVeryStrong},
			want:    3,
		},
		{
			name:    "strong bearish",
			pattern: model.PatternMatch{Name: "DOUBLE_TOP", Direction: model.Bearish, Strength: model.StrengthStrong},
			want:    -3,
		},
		{
			name:    "medium bullish",
			pattern: model.PatternMatch{Name: "BULLISH_ENGULFING", Direction: model.Bullish, Strength: model.StrengthMedium},
			want:    2,
		},
		{
			name:    "weak bearish",
			pattern: model.PatternMatch{Name: "HANGING_MAN", Direction: model.Bearish, Strength: model.StrengthWeak},
			want:    -1,
		},
		{
			name:    "neutral contributes nothing",
			pattern: model.PatternMatch{Name: "DOJI", Direction: model.Neutral, Strength: model.StrengthWeak},
			want:    0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, total, _ := Evaluate(Inputs{
				Snapshot:  nanSnapshot(),
				LastClose: 100,
				LastIndex: 30,
				Patterns:  []model.PatternMatch{tt.pattern},
			})
			if total != tt.want {
				t.Errorf("Evaluate() total = %d, want %d", total, tt.want)
			}
		})
	}
}

func TestEvaluateLevels(t *testing.T) {
	levels := []model.Level{
		{Price: 98.5, Kind: model.LevelRecentLow, Methods: 2, Rank: 1},
		{Price: 120, Kind: model.LevelRecentHigh, Methods: 1, Rank: 2},
	}
	signals, total, _ := Evaluate(Inputs{
		Snapshot:  nanSnapshot(),
		LastClose: 100,
		LastIndex: 30,
		Levels:    levels,
	})
	// Support at 1.5% away counts; resistance at 20% away does not.
	if total != 1 {
		t.Errorf("Evaluate() total = %d, want 1: %v", total, signals)
	}
}

func TestEvaluateMASignals(t *testing.T) {
	snap := nanSnapshot()
	snap.MA = model.MASnapshot{Alignment: model.Bullish, Cross: model.GoldenCross}
	_, total, _ := Evaluate(Inputs{Snapshot: snap, LastClose: 100, LastIndex: 30})
	if total != 5 {
		t.Errorf("Evaluate() total = %d, want 5 for golden cross plus bullish alignment", total)
	}
}

func TestEvaluateTrendStretch(t *testing.T) {
	tests := []struct {
		name        string
		monthChange float64
		want        int
	}{
		{"stretched rally fades", 18.2, -1},
		{"deep slide counts as oversold", -20.5, 1},
		{"moderate move is silent", 9.0, 0},
		{"unknown history is silent", math.NaN(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, total, _ := Evaluate(Inputs{
				Snapshot:    nanSnapshot(),
				LastClose:   100,
				LastIndex:   30,
				MonthChange: tt.monthChange,
			})
			if total != tt.want {
				t.Errorf("Evaluate() total = %d, want %d", total, tt.want)
			}
		})
	}
}

func TestOBVTrend(t *testing.T) {
	up := []float64{100, 101, 102, 103, 104, 105, 106, 107, 108, 109, 110, 111}
	down := []float64{110, 109, 108, 107, 106, 105, 104, 103, 102, 101, 100, 99}

	tests := []struct {
		name   string
		obv    []float64
		closes []float64
		want   string
	}{
		{"confirmed up", up, up, OBVConfirmedUp},
		{"confirmed down", down, down, OBVConfirmedDn},
		{"bullish divergence", up, down, OBVBullishDiv},
		{"bearish divergence", down, up, OBVBearishDiv},
		{"too short", up[:5], up[:5], ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OBVTrend(tt.obv, tt.closes, 10); got != tt.want {
				t.Errorf("OBVTrend() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVolumeTrend(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
		up    bool
		want  string
	}{
		{"surge on an up close", 2.1, true, VolumeSurgeUp},
		{"surge on a down close", 1.6, false, VolumeSurgeDown},
		{"shrinking decline", 0.5, false, VolumeShrinkDn},
		{"ordinary volume", 1.0, true, ""},
		{"undefined ratio", math.NaN(), true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VolumeTrend(tt.ratio, tt.up); got != tt.want {
				t.Errorf("VolumeTrend() = %q, want %q", got, tt.want)
			}
		})
	}
}
