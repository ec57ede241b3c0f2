package model

import (
	"fmt"
	"time"
)

// Candle represents a single OHLCV bar.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume,omitempty"`
}

// Body returns the absolute body size of the candle.
func (c Candle) Body() float64 {
	if c.Close >= c.Open {
		return c.Close - c.Open
	}
	return c.Open - c.Close
}

// Range returns the full high-to-low range of the candle.
func (c Candle) Range() float64 {
	return c.High - c.Low
}

// Bullish reports whether the candle closed above its open.
func (c Candle) Bullish() bool {
	return c.Close > c.Open
}

// UpperShadow returns the distance between the high and the body top.
func (c Candle) UpperShadow() float64 {
	if c.Close >= c.Open {
		return c.High - c.Close
	}
	return c.High - c.Open
}

// LowerShadow returns the distance between the body bottom and the low.
func (c Candle) LowerShadow() float64 {
	if c.Close >= c.Open {
		return c.Open - c.Low
	}
	return c.Close - c.Low
}

// ValidationError describes a malformed candle series. Index points at the
// offending bar.
type ValidationError struct {
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid series at bar %d: %s", e.Index, e.Reason)
}

// ValidateSeries checks the series invariants before any computation:
// strictly increasing timestamps, non-negative prices, OHLC ordering and
// non-negative volume. The first violation is returned; nothing is fixed
// silently.
func ValidateSeries(candles []Candle) error {
	for i, c := range candles {
		if i > 0 && !candles[i-1].Timestamp.Before(c.Timestamp) {
			return &ValidationError{Index: i, Reason: "timestamps must be strictly increasing"}
		}
		if c.Low < 0 {
			return &ValidationError{Index: i, Reason: "price must be non-negative"}
		}
		if c.Low > c.Open || c.Low > c.Close {
			return &ValidationError{Index: i, Reason: "low exceeds open or close"}
		}
		if c.High < c.Open || c.High < c.Close {
			return &ValidationError{Index: i, Reason: "high below open or close"}
		}
		if c.Volume < 0 {
			return &ValidationError{Index: i, Reason: "negative volume"}
		}
	}
	return nil
}

// Closes extracts the close prices from a candle series.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}
