package analyze

import (
	"math"
	"testing"
	"time"

	"stockmaster/internal/config"
	"stockmaster/internal/model"
	"stockmaster/internal/score"
)

func testConfig() *config.Config {
	return &config.Config{
		RSIPeriod:        14,
		MACDFastPeriod:   12,
		MACDSlowPeriod:   26,
		MACDSignalPeriod: 9,
		BBPeriod:         20,
		BBStdDev:         2.0,
		ATRPeriod:        14,
		MAPeriods:        []int{5, 10, 20, 50, 200},
		VolumePeriod:     20,
		VolumeThreshold:  2.0,
		KDJPeriod:        9,
		BIASPeriod:       6,

		DivergenceWindow:  3,
		DivergenceMinDist: 5,
		DivergenceMax:     3,
		SRLookback:        60,
		PatternTolerance:  0.03,
		ChartSwingWindow:  4,
	}
}

func generateTestCandles(n int, generator func(int) model.Candle) []model.Candle {
	candles := make([]model.Candle, n)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		candles[i] = generator(i)
		if candles[i].Timestamp.IsZero() {
			candles[i].Timestamp = base.Add(time.Duration(i) * 24 * time.Hour)
		}
	}
	return candles
}

func waveCandle(i int) model.Candle {
	p := 100 + 10*math.Sin(float64(i)/8) + float64(i)*0.05
	return model.Candle{
		Open: p - 0.3, High: p + 1.5, Low: p - 1.5, Close: p,
		Volume: int64(1000 + 50*(i%7)),
	}
}

func TestRunFullSeries(t *testing.T) {
	candles := generateTestCandles(250, waveCandle)
	report, err := Run("AAPL", candles, testConfig())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Symbol != "AAPL" {
		t.Errorf("Symbol = %q, want AAPL", report.Symbol)
	}
	if report.Bars != 250 {
		t.Errorf("Bars = %d, want 250", report.Bars)
	}
	if report.LastClose != candles[249].Close {
		t.Errorf("LastClose = %v, want %v", report.LastClose, candles[249].Close)
	}
	if report.GeneratedAt.IsZero() {
		t.Error("GeneratedAt not set")
	}

	ind := report.Indicators
	if math.IsNaN(ind.RSI) || ind.RSI < 0 || ind.RSI > 100 {
		t.Errorf("RSI = %v, want a defined value in [0,100]", ind.RSI)
	}
	if math.IsNaN(ind.MACD) || math.IsNaN(ind.MACDSignal) || math.IsNaN(ind.MACDHist) {
		t.Error("MACD snapshot has undefined fields on a 250-bar series")
	}
	if math.IsNaN(ind.BBUpper) || ind.BBUpper < ind.BBLower {
		t.Errorf("bands = %v/%v, want defined with upper >= lower", ind.BBUpper, ind.BBLower)
	}
	if math.IsNaN(ind.ATR) || ind.ATR <= 0 {
		t.Errorf("ATR = %v, want positive", ind.ATR)
	}
	if math.IsNaN(ind.ATRPercent) {
		t.Error("ATRPercent undefined despite a defined ATR")
	}
	if math.IsNaN(ind.K) || math.IsNaN(ind.D) || math.IsNaN(ind.J) {
		t.Error("KDJ snapshot has undefined fields")
	}
	if math.IsNaN(ind.WilliamsR) || ind.WilliamsR > 0 || ind.WilliamsR < -100 {
		t.Errorf("WilliamsR = %v, want a defined value in [-100,0]", ind.WilliamsR)
	}
	if len(ind.MA.Values) != 5 {
		t.Errorf("MA values = %v, want one entry per period", ind.MA.Values)
	}
	if len(report.Levels) == 0 {
		t.Error("no support/resistance levels on a 250-bar series")
	}
}

func TestRunScoreConsistency(t *testing.T) {
	candles := generateTestCandles(250, waveCandle)
	report, err := Run("AAPL", candles, testConfig())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	sum := 0
	for _, s := range report.Signals {
		sum += s.Weight
	}
	if report.Score != sum {
		t.Errorf("Score = %d, want the signal weight sum %d", report.Score, sum)
	}
	if got := score.Recommendation(report.Score); got != report.Recommendation {
		t.Errorf("Recommendation = %s, want %s for score %d", report.Recommendation, got, report.Score)
	}
}

func TestRunDeterministic(t *testing.T) {
	candles := generateTestCandles(250, waveCandle)
	first, err := Run("AAPL", candles, testConfig())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	second, err := Run("AAPL", candles, testConfig())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if first.Score != second.Score || first.Recommendation != second.Recommendation {
		t.Errorf("runs differ: (%d, %s) vs (%d, %s)",
			first.Score, first.Recommendation, second.Score, second.Recommendation)
	}
	if len(first.Signals) != len(second.Signals) {
		t.Errorf("signal counts differ: %d vs %d", len(first.Signals), len(second.Signals))
	}
}

func TestRunShortSeriesDegradesGracefully(t *testing.T) {
	candles := generateTestCandles(10, waveCandle)
	report, err := Run("AAPL", candles, testConfig())
	if err != nil {
		t.Fatalf("Run() error = %v, want graceful degradation", err)
	}

	if !math.IsNaN(report.Indicators.RSI) {
		t.Errorf("RSI = %v, want NaN on a 10-bar series", report.Indicators.RSI)
	}
	if !math.IsNaN(report.Indicators.MACDHist) {
		t.Errorf("MACDHist = %v, want NaN on a 10-bar series", report.Indicators.MACDHist)
	}
	if report.Recommendation == "" {
		t.Error("Recommendation empty, want a tier even without indicators")
	}
	if len(report.ChartPatterns) != 0 {
		t.Errorf("ChartPatterns = %v, want none below the minimum window", report.ChartPatterns)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	t.Run("empty series", func(t *testing.T) {
		if _, err := Run("AAPL", nil, testConfig()); err == nil {
			t.Error("Run() accepted an empty series")
		}
	})

	t.Run("unordered timestamps", func(t *testing.T) {
		candles := generateTestCandles(5, waveCandle)
		candles[3].Timestamp = candles[1].Timestamp
		if _, err := Run("AAPL", candles, testConfig()); err == nil {
			t.Error("Run() accepted duplicate timestamps")
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := testConfig()
		cfg.RSIPeriod = 0
		candles := generateTestCandles(50, waveCandle)
		if _, err := Run("AAPL", candles, cfg); err == nil {
			t.Error("Run() accepted a zero RSI period")
		}
	})
}

func TestDetectDivergencesMergeOrdering(t *testing.T) {
	// Successively lower lows at bars 5, 12, 20 and 28. The histogram
	// only diverges on the oldest trough pair, the RSI only on the most
	// recent one; with a cap of one the RSI event must survive the merge.
	lows := []float64{
		100, 99, 98, 97, 96, 95, 96.5, 97.5, 98,
		97, 96, 95.5, 94, 95, 96, 97,
		96.5, 96, 95.5, 94.5, 93, 94, 95, 96,
		95.5, 95, 94.5, 93.5, 92, 93, 94, 95, 96, 97, 98,
	}
	candles := generateTestCandles(len(lows), func(i int) model.Candle {
		return model.Candle{
			Open: lows[i] + 0.5, High: lows[i] + 1, Low: lows[i], Close: lows[i] + 0.5,
			Volume: 1000,
		}
	})

	flat := func(overrides map[int]float64) []float64 {
		out := make([]float64, len(lows))
		for i := range out {
			out[i] = 40
			if v, ok := overrides[i]; ok {
				out[i] = v
			}
		}
		return out
	}
	series := indicatorSeries{
		macdHist: flat(map[int]float64{5: 30}),
		rsi:      flat(map[int]float64{28: 50}),
	}

	cfg := testConfig()
	cfg.DivergenceWindow = 2
	cfg.DivergenceMinDist = 3
	cfg.DivergenceMax = 1

	divs := detectDivergences(candles, series, cfg)
	if len(divs) != 1 {
		t.Fatalf("detectDivergences() returned %d events, cap is 1", len(divs))
	}
	if divs[0].Indicator != "RSI" || divs[0].PricePoints[1].Index != 28 {
		t.Errorf("kept event = %s at %d, want the RSI event at 28",
			divs[0].Indicator, divs[0].PricePoints[1].Index)
	}
}

func TestMonthChange(t *testing.T) {
	rising := func(i int) model.Candle {
		p := 100 + float64(i)
		return model.Candle{Open: p, High: p + 1, Low: p - 1, Close: p, Volume: 1000}
	}

	got := monthChange(generateTestCandles(40, rising))
	want := (139.0 - 118.0) / 118.0 * 100
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("monthChange() = %v, want %v over the full lookback", got, want)
	}

	got = monthChange(generateTestCandles(10, rising))
	if math.Abs(got-9.0) > 1e-9 {
		t.Errorf("monthChange() = %v, want 9 on the shrunken span", got)
	}

	if got := monthChange(generateTestCandles(3, rising)); !math.IsNaN(got) {
		t.Errorf("monthChange() = %v, want NaN below five bars", got)
	}
}
