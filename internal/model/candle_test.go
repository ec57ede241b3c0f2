package model

import (
	"errors"
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(n) * 24 * time.Hour)
}

func TestCandleGeometry(t *testing.T) {
	c := Candle{Open: 100, High: 106, Low: 98, Close: 104}
	if got := c.Body(); got != 4 {
		t.Errorf("Body() = %v, want 4", got)
	}
	if got := c.Range(); got != 8 {
		t.Errorf("Range() = %v, want 8", got)
	}
	if !c.Bullish() {
		t.Error("Bullish() = false, want true for close above open")
	}
	if got := c.UpperShadow(); got != 2 {
		t.Errorf("UpperShadow() = %v, want 2", got)
	}
	if got := c.LowerShadow(); got != 2 {
		t.Errorf("LowerShadow() = %v, want 2", got)
	}
}

func TestValidateSeries(t *testing.T) {
	valid := []Candle{
		{Timestamp: day(0), Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 1000},
		{Timestamp: day(1), Open: 100.5, High: 102, Low: 100, Close: 101, Volume: 1200},
	}

	tests := []struct {
		name      string
		candles   []Candle
		wantErr   bool
		wantIndex int
	}{
		{"valid series", valid, false, 0},
		{"empty series", nil, false, 0},
		{
			"duplicate timestamp",
			[]Candle{
				{Timestamp: day(0), Open: 100, High: 101, Low: 99, Close: 100, Volume: 1},
				{Timestamp: day(0), Open: 100, High: 101, Low: 99, Close: 100, Volume: 1},
			},
			true, 1,
		},
		{
			"out of order timestamps",
			[]Candle{
				{Timestamp: day(1), Open: 100, High: 101, Low: 99, Close: 100, Volume: 1},
				{Timestamp: day(0), Open: 100, High: 101, Low: 99, Close: 100, Volume: 1},
			},
			true, 1,
		},
		{
			"low above close",
			[]Candle{{Timestamp: day(0), Open: 101, High: 102, Low: 100.5, Close: 100, Volume: 1}},
			true, 0,
		},
		{
			"high below open",
			[]Candle{{Timestamp: day(0), Open: 103, High: 102, Low: 100, Close: 101, Volume: 1}},
			true, 0,
		},
		{
			"negative volume",
			[]Candle{{Timestamp: day(0), Open: 100, High: 101, Low: 99, Close: 100, Volume: -1}},
			true, 0,
		},
		{
			"negative prices",
			[]Candle{
				{Timestamp: day(0), Open: 100, High: 101, Low: 99, Close: 100, Volume: 1},
				{Timestamp: day(1), Open: -100, High: -99, Low: -101, Close: -100, Volume: 1},
			},
			true, 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSeries(tt.candles)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateSeries() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error type = %T, want *ValidationError", err)
			}
			if vErr.Index != tt.wantIndex {
				t.Errorf("error index = %d, want %d", vErr.Index, tt.wantIndex)
			}
		})
	}
}

func TestNearestLevels(t *testing.T) {
	levels := []Level{
		{Price: 95, Kind: LevelRecentLow},
		{Price: 98, Kind: LevelFibRetrace},
		{Price: 103, Kind: LevelRoundNumber},
		{Price: 110, Kind: LevelRecentHigh},
	}

	sup, ok := NearestSupport(levels, 100)
	if !ok || sup.Price != 98 {
		t.Errorf("NearestSupport() = (%v, %v), want price 98", sup, ok)
	}
	res, ok := NearestResistance(levels, 100)
	if !ok || res.Price != 103 {
		t.Errorf("NearestResistance() = (%v, %v), want price 103", res, ok)
	}

	if _, ok := NearestSupport(levels, 90); ok {
		t.Error("NearestSupport() below every level must report none")
	}
	if _, ok := NearestResistance(levels, 120); ok {
		t.Error("NearestResistance() above every level must report none")
	}
}
