package indicator

import (
	"math"
	"sort"

	"stockmaster/internal/model"
)

// MASet is the moving-average system: one SMA series per configured
// period plus the ordering relation derived from them.
type MASet struct {
	Periods []int             // ascending
	Series  map[int][]float64 // period -> aligned SMA series
	length  int
}

// MASystem computes an SMA series for every period in the set. Periods are
// deduplicated and sorted ascending.
func MASystem(candles []model.Candle, periods []int) (*MASet, error) {
	seen := make(map[int]bool, len(periods))
	var sorted []int
	for _, p := range periods {
		if err := checkPeriod("ma", p); err != nil {
			return nil, err
		}
		if !seen[p] {
			seen[p] = true
			sorted = append(sorted, p)
		}
	}
	sort.Ints(sorted)

	closes := model.Closes(candles)
	set := &MASet{
		Periods: sorted,
		Series:  make(map[int][]float64, len(sorted)),
		length:  len(candles),
	}
	for _, p := range sorted {
		set.Series[p] = SMA(closes, p)
	}
	return set, nil
}

// Alignment classifies the ordering of the averages at index i: BULLISH
// when every shorter-period average exceeds the next longer one, BEARISH
// when fully inverted, MIXED otherwise. Undefined averages make the
// ordering MIXED.
func (s *MASet) Alignment(i int) string {
	if len(s.Periods) < 2 || i < 0 || i >= s.length {
		return "MIXED"
	}
	bullish, bearish := true, true
	for j := 0; j < len(s.Periods)-1; j++ {
		short := s.Series[s.Periods[j]][i]
		long := s.Series[s.Periods[j+1]][i]
		if math.IsNaN(short) || math.IsNaN(long) {
			return "MIXED"
		}
		if short <= long {
			bullish = false
		}
		if short >= long {
			bearish = false
		}
	}
	switch {
	case bullish:
		return model.Bullish
	case bearish:
		return model.Bearish
	default:
		return "MIXED"
	}
}

// CrossAt detects a golden or death cross of the shortest average over the
// longest one at index i. Returns GOLDEN, DEATH or the empty string.
func (s *MASet) CrossAt(i int) string {
	if len(s.Periods) < 2 || i < 1 || i >= s.length {
		return ""
	}
	short := s.Series[s.Periods[0]]
	long := s.Series[s.Periods[len(s.Periods)-1]]
	if math.IsNaN(short[i]) || math.IsNaN(long[i]) ||
		math.IsNaN(short[i-1]) || math.IsNaN(long[i-1]) {
		return ""
	}
	prev := short[i-1] - long[i-1]
	curr := short[i] - long[i]
	switch {
	case prev <= 0 && curr > 0:
		return model.GoldenCross
	case prev >= 0 && curr < 0:
		return model.DeathCross
	default:
		return ""
	}
}

// Snapshot captures the latest state of the system for the report.
func (s *MASet) Snapshot() model.MASnapshot {
	last := s.length - 1
	snap := model.MASnapshot{
		Values:    make(map[int]float64, len(s.Periods)),
		Alignment: s.Alignment(last),
		Cross:     s.CrossAt(last),
	}
	for _, p := range s.Periods {
		if s.length > 0 {
			snap.Values[p] = s.Series[p][last]
		} else {
			snap.Values[p] = math.NaN()
		}
	}
	return snap
}
