package pattern

import (
	"sort"
	"testing"
	"time"

	"stockmaster/internal/model"
)

// pathCandles builds a series whose mid price follows the piecewise
// linear path through the anchor points. Highs and lows are offset by one
// so swing extraction sees sharp, unambiguous extrema.
func pathCandles(n int, anchors map[int]float64) []model.Candle {
	idxs := make([]int, 0, len(anchors))
	for i := range anchors {
		idxs = append(idxs, i)
	}
	sort.Ints(idxs)

	price := make([]float64, n)
	for k := 0; k < len(idxs)-1; k++ {
		from, to := idxs[k], idxs[k+1]
		v0, v1 := anchors[from], anchors[to]
		for i := from; i <= to; i++ {
			frac := float64(i-from) / float64(to-from)
			price[i] = v0 + (v1-v0)*frac
		}
	}

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]model.Candle, n)
	for i, p := range price {
		candles[i] = model.Candle{
			Timestamp: base.Add(time.Duration(i) * 24 * time.Hour),
			Open:      p, High: p + 1, Low: p - 1, Close: p,
			Volume: 1000,
		}
	}
	return candles
}

func TestCharts(t *testing.T) {
	tests := []struct {
		name    string
		anchors map[int]float64
		want    string
		dir     string
	}{
		{
			name:    "double top",
			anchors: map[int]float64{0: 100, 20: 110, 32: 95, 45: 110.4, 59: 100},
			want:    DoubleTop,
			dir:     model.Bearish,
		},
		{
			name:    "double bottom",
			anchors: map[int]float64{0: 100, 20: 90, 32: 105, 45: 89.6, 59: 100},
			want:    DoubleBottom,
			dir:     model.Bullish,
		},
		{
			name:    "head and shoulders",
			anchors: map[int]float64{0: 95, 10: 105, 17: 98, 25: 115, 33: 98.5, 40: 105.5, 59: 96},
			want:    HeadAndShoulders,
			dir:     model.Bearish,
		},
		{
			name:    "inverse head and shoulders",
			anchors: map[int]float64{0: 105, 10: 95, 17: 102, 25: 85, 33: 101.5, 40: 94.5, 59: 104},
			want:    InverseHeadShoulders,
			dir:     model.Bullish,
		},
		{
			name:    "ascending triangle",
			anchors: map[int]float64{0: 100, 10: 110, 17: 95, 25: 110, 33: 102, 40: 110, 59: 106},
			want:    AscendingTriangle,
			dir:     model.Bullish,
		},
		{
			name:    "descending triangle",
			anchors: map[int]float64{0: 100, 10: 115, 17: 95, 25: 108, 33: 95, 40: 103, 59: 98},
			want:    DescendingTriangle,
			dir:     model.Bearish,
		},
		{
			name:    "symmetric triangle",
			anchors: map[int]float64{0: 100, 10: 120, 17: 90, 25: 110, 33: 98, 40: 102, 59: 100},
			want:    SymmetricTriangle,
			dir:     model.Neutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candles := pathCandles(60, tt.anchors)
			matches := Charts(candles, 3, 0.03)
			if !hasPattern(matches, tt.want) {
				t.Fatalf("Charts() = %v, want %s", matches, tt.want)
			}
			for _, m := range matches {
				if m.Name != tt.want {
					continue
				}
				if m.Direction != tt.dir {
					t.Errorf("%s direction = %s, want %s", tt.want, m.Direction, tt.dir)
				}
				if m.Scope != model.ScopeChart {
					t.Errorf("%s scope = %s, want %s", tt.want, m.Scope, model.ScopeChart)
				}
				if m.StartIdx >= m.EndIdx {
					t.Errorf("%s span = [%d,%d], want start before end", tt.want, m.StartIdx, m.EndIdx)
				}
			}
		})
	}
}

func TestChartsShortSeries(t *testing.T) {
	candles := pathCandles(59, map[int]float64{0: 100, 20: 110, 32: 95, 45: 110, 58: 100})
	if matches := Charts(candles, 3, 0.03); matches != nil {
		t.Errorf("Charts() = %v, want nil below the minimum series length", matches)
	}
}

func TestChartsTrendOnly(t *testing.T) {
	// A monotone trend has no interior swing structure.
	candles := pathCandles(70, map[int]float64{0: 100, 69: 140})
	if matches := Charts(candles, 3, 0.03); len(matches) != 0 {
		t.Errorf("Charts() = %v, want none on a monotone trend", matches)
	}
}
