// Package analyze runs the full pipeline over one candle series: every
// indicator, divergence detection, support/resistance levels, pattern
// recognition and the composite score, collected into one immutable
// report. A series too short for an indicator yields NaN snapshot fields
// instead of aborting the run.
package analyze

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"stockmaster/internal/config"
	"stockmaster/internal/divergence"
	"stockmaster/internal/indicator"
	"stockmaster/internal/levels"
	"stockmaster/internal/model"
	"stockmaster/internal/pattern"
	"stockmaster/internal/score"
)

// obvLookback is the bar span used to compare volume flow against price.
const obvLookback = 10

// trendLookback approximates one month of daily bars for the stretched
// trend check.
const trendLookback = 21

// Run analyzes the candle series and produces the full report. The series
// must validate (increasing timestamps, consistent OHLC) and the config
// periods must be sane; any other shortfall degrades gracefully.
func Run(symbol string, candles []model.Candle, cfg *config.Config) (*model.AnalysisReport, error) {
	if len(candles) == 0 {
		return nil, fmt.Errorf("analyze %s: empty candle series", symbol)
	}
	if err := model.ValidateSeries(candles); err != nil {
		return nil, fmt.Errorf("validate %s series: %w", symbol, err)
	}

	last := len(candles) - 1

	snap, series, err := buildSnapshot(candles, cfg)
	if err != nil {
		return nil, fmt.Errorf("indicators for %s: %w", symbol, err)
	}

	divs := detectDivergences(candles, series, cfg)

	lvls, err := levels.Calculate(candles, cfg.SRLookback, cfg.PatternTolerance)
	if err != nil {
		return nil, fmt.Errorf("levels for %s: %w", symbol, err)
	}

	candlePatterns := pattern.Candlesticks(candles)
	chartPatterns := pattern.Charts(candles, cfg.ChartSwingWindow, cfg.PatternTolerance)

	obvSignal := score.OBVTrend(series.obv, model.Closes(candles), obvLookback)
	volSignal := ""
	if !math.IsNaN(snap.VolumeRatio) {
		volSignal = score.VolumeTrend(snap.VolumeRatio, candles[last].Bullish())
	}

	patterns := make([]model.PatternMatch, 0, len(candlePatterns)+len(chartPatterns))
	patterns = append(patterns, candlePatterns...)
	patterns = append(patterns, chartPatterns...)

	signals, total, recommendation := score.Evaluate(score.Inputs{
		Snapshot:    snap,
		LastClose:   candles[last].Close,
		LastIndex:   last,
		MonthChange: monthChange(candles),
		OBVSignal:   obvSignal,
		VolSignal:   volSignal,
		Divergences: divs,
		Levels:      lvls,
		Patterns:    patterns,
	})

	report := &model.AnalysisReport{
		Symbol:              symbol,
		GeneratedAt:         time.Now().UTC(),
		Bars:                len(candles),
		LastClose:           candles[last].Close,
		ChangePercent:       changePercent(candles),
		Indicators:          snap,
		Signals:             signals,
		Divergences:         divs,
		Levels:              lvls,
		CandlestickPatterns: candlePatterns,
		ChartPatterns:       chartPatterns,
		Score:               total,
		Recommendation:      recommendation,
	}

	log.Debug().
		Str("symbol", symbol).
		Int("bars", report.Bars).
		Int("score", report.Score).
		Str("recommendation", report.Recommendation).
		Int("signals", len(signals)).
		Msg("analysis complete")

	return report, nil
}

// indicatorSeries keeps the full series the scorer and divergence
// detector need after the snapshot is taken.
type indicatorSeries struct {
	rsi      []float64
	macdHist []float64
	obv      []float64
}

// buildSnapshot computes every indicator series and captures the latest
// defined values. Only configuration errors propagate; short series leave
// NaN fields behind.
func buildSnapshot(candles []model.Candle, cfg *config.Config) (model.IndicatorSnapshot, indicatorSeries, error) {
	var snap model.IndicatorSnapshot
	var series indicatorSeries
	last := len(candles) - 1

	rsi, err := indicator.RSI(candles, cfg.RSIPeriod)
	if err != nil {
		return snap, series, err
	}
	series.rsi = rsi
	snap.RSI = valueAt(rsi, last)

	macdLine, macdSignal, macdHist, err := indicator.MACD(candles, cfg.MACDFastPeriod, cfg.MACDSlowPeriod, cfg.MACDSignalPeriod)
	if err != nil {
		return snap, series, err
	}
	series.macdHist = macdHist
	snap.MACD = valueAt(macdLine, last)
	snap.MACDSignal = valueAt(macdSignal, last)
	snap.MACDHist = valueAt(macdHist, last)
	snap.PrevMACDHist = valueAt(macdHist, last-1)

	upper, middle, lower, err := indicator.Bollinger(candles, cfg.BBPeriod, cfg.BBStdDev)
	if err != nil {
		return snap, series, err
	}
	snap.BBUpper = valueAt(upper, last)
	snap.BBMiddle = valueAt(middle, last)
	snap.BBLower = valueAt(lower, last)

	atr, err := indicator.ATR(candles, cfg.ATRPeriod)
	if err != nil {
		return snap, series, err
	}
	snap.ATR = valueAt(atr, last)
	snap.ATRPercent = math.NaN()
	if !math.IsNaN(snap.ATR) && candles[last].Close > 0 {
		snap.ATRPercent = snap.ATR / candles[last].Close * 100
	}

	k, d, j, err := indicator.KDJ(candles, cfg.KDJPeriod)
	if err != nil {
		return snap, series, err
	}
	snap.K = valueAt(k, last)
	snap.D = valueAt(d, last)
	snap.J = valueAt(j, last)
	snap.PrevK = valueAt(k, last-1)
	snap.PrevD = valueAt(d, last-1)

	series.obv = indicator.OBV(candles)
	snap.OBV = valueAt(series.obv, last)

	wr, err := indicator.WilliamsR(candles, cfg.RSIPeriod)
	if err != nil {
		return snap, series, err
	}
	snap.WilliamsR = valueAt(wr, last)

	bias, err := indicator.BIAS(candles, cfg.BIASPeriod)
	if err != nil {
		return snap, series, err
	}
	snap.BIAS = valueAt(bias, last)

	volume, err := indicator.Volume(candles, cfg.VolumePeriod, cfg.VolumeThreshold)
	if err != nil {
		return snap, series, err
	}
	snap.VolumeRatio = valueAt(volume.Ratio, last)

	maSet, err := indicator.MASystem(candles, cfg.MAPeriods)
	if err != nil {
		return snap, series, err
	}
	snap.MA = maSet.Snapshot()

	return snap, series, nil
}

// detectDivergences runs detection over the MACD histogram and RSI.
// Detection failures are logged and skipped rather than aborting the
// analysis: a missing divergence list is a weaker report, not a broken one.
func detectDivergences(candles []model.Candle, series indicatorSeries, cfg *config.Config) []model.Divergence {
	opts := divergence.Options{
		Window:      cfg.DivergenceWindow,
		MinDistance: cfg.DivergenceMinDist,
		Epsilon:     divergence.DefaultOptions().Epsilon,
		Max:         cfg.DivergenceMax,
	}

	var all []model.Divergence
	if divs, err := divergence.Detect(candles, series.macdHist, "MACD", opts); err == nil {
		all = append(all, divs...)
	} else {
		log.Warn().Err(err).Msg("macd divergence detection skipped")
	}
	if divs, err := divergence.Detect(candles, series.rsi, "RSI", opts); err == nil {
		all = append(all, divs...)
	} else {
		log.Warn().Err(err).Msg("rsi divergence detection skipped")
	}

	// The two detections are each ordered but the merge is not: restore
	// most-recent-first before applying the cap.
	sort.Slice(all, func(i, j int) bool {
		return all[i].PricePoints[1].Index > all[j].PricePoints[1].Index
	})
	if opts.Max > 0 && len(all) > opts.Max {
		all = all[:opts.Max]
	}
	return all
}

// monthChange returns the percent close-to-close move over roughly one
// month of bars, shrinking the span on shorter histories. NaN on series
// too short to judge a trend at all.
func monthChange(candles []model.Candle) float64 {
	if len(candles) < 5 {
		return math.NaN()
	}
	span := trendLookback
	if span > len(candles)-1 {
		span = len(candles) - 1
	}
	base := candles[len(candles)-1-span].Close
	if base == 0 {
		return math.NaN()
	}
	return (candles[len(candles)-1].Close - base) / base * 100
}

func changePercent(candles []model.Candle) float64 {
	if len(candles) < 2 {
		return 0
	}
	prev := candles[len(candles)-2].Close
	if prev == 0 {
		return 0
	}
	return (candles[len(candles)-1].Close - prev) / prev * 100
}

func valueAt(series []float64, i int) float64 {
	if i < 0 || i >= len(series) {
		return math.NaN()
	}
	return series[i]
}
