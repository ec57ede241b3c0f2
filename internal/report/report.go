// Package report renders an analysis report as plain-language Markdown,
// suitable for the console and for Telegram push.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"stockmaster/internal/model"
)

// Stop distances scale with the volatility regime; the target extends
// the stop distance by targetStopRatio. Stops and targets are clamped
// past the nearest level with a small padding so the plan never sits on
// the wrong side of a known support or resistance.
const (
	atrMultipleLow  = 1.5 // ATR under 3% of price
	atrMultipleMid  = 2.0 // ATR between 3% and 5%
	atrMultipleHigh = 2.5 // ATR above 5%
	targetStopRatio = 2.5
	levelPadding    = 0.02
)

var recommendationLabels = map[string]string{
	model.StrongBuy:  "Strong buy",
	model.Buy:        "Buy",
	model.Hold:       "Hold / wait",
	model.Sell:       "Sell",
	model.StrongSell: "Strong sell",
}

// Format renders the full report.
func Format(r *model.AnalysisReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*%s* — %s\n", r.Symbol, r.GeneratedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "Price %.2f (%+.2f%%), %d bars analyzed\n\n", r.LastClose, r.ChangePercent, r.Bars)

	label := recommendationLabels[r.Recommendation]
	if label == "" {
		label = r.Recommendation
	}
	fmt.Fprintf(&b, "*Verdict: %s* (score %+d)\n\n", label, r.Score)

	writeSignals(&b, r.Signals)
	writeIndicators(&b, r)
	writeLevels(&b, r)
	writePatterns(&b, r)
	writeDivergences(&b, r.Divergences)
	writeTradePlan(&b, r)

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// Summary renders the one-paragraph push message.
func Summary(r *model.AnalysisReport) string {
	label := recommendationLabels[r.Recommendation]
	if label == "" {
		label = r.Recommendation
	}
	return fmt.Sprintf("*%s*: %s (score %+d) at %.2f (%+.2f%%)",
		r.Symbol, label, r.Score, r.LastClose, r.ChangePercent)
}

func writeSignals(b *strings.Builder, signals []model.Signal) {
	if len(signals) == 0 {
		return
	}
	sorted := make([]model.Signal, len(signals))
	copy(sorted, signals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return abs(sorted[i].Weight) > abs(sorted[j].Weight)
	})

	b.WriteString("*Signals*\n")
	for _, s := range sorted {
		fmt.Fprintf(b, "  %+d  %s\n", s.Weight, humanize(s.Kind))
	}
	b.WriteString("\n")
}

func writeIndicators(b *strings.Builder, r *model.AnalysisReport) {
	ind := r.Indicators
	b.WriteString("*Indicators*\n")
	writeValue(b, "RSI", ind.RSI, "%.1f")
	writeValue(b, "MACD hist", ind.MACDHist, "%.4f")
	writeValue(b, "KDJ K/D", ind.K, "%.1f")
	writeValue(b, "Williams %R", ind.WilliamsR, "%.1f")
	writeValue(b, "BIAS", ind.BIAS, "%.2f%%")
	writeValue(b, "ATR", ind.ATRPercent, "%.2f%% of price")
	writeValue(b, "Volume ratio", ind.VolumeRatio, "%.2fx average")
	if ind.MA.Alignment != "" {
		fmt.Fprintf(b, "  MA system: %s", strings.ToLower(ind.MA.Alignment))
		if ind.MA.Cross != "" {
			fmt.Fprintf(b, ", %s cross", strings.ToLower(ind.MA.Cross))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeLevels(b *strings.Builder, r *model.AnalysisReport) {
	if len(r.Levels) == 0 {
		return
	}
	b.WriteString("*Key levels*\n")
	if sup, ok := model.NearestSupport(r.Levels, r.LastClose); ok {
		fmt.Fprintf(b, "  Support %.2f (%s, %d methods)\n", sup.Price, humanize(sup.Kind), sup.Methods)
	}
	if res, ok := model.NearestResistance(r.Levels, r.LastClose); ok {
		fmt.Fprintf(b, "  Resistance %.2f (%s, %d methods)\n", res.Price, humanize(res.Kind), res.Methods)
	}
	b.WriteString("\n")
}

func writePatterns(b *strings.Builder, r *model.AnalysisReport) {
	patterns := make([]model.PatternMatch, 0, len(r.CandlestickPatterns)+len(r.ChartPatterns))
	patterns = append(patterns, r.CandlestickPatterns...)
	patterns = append(patterns, r.ChartPatterns...)
	if len(patterns) == 0 {
		return
	}
	b.WriteString("*Patterns*\n")
	for _, p := range patterns {
		fmt.Fprintf(b, "  %s (%s, %s)\n", humanize(p.Name),
			strings.ToLower(p.Direction), strings.ToLower(p.Strength))
	}
	b.WriteString("\n")
}

func writeDivergences(b *strings.Builder, divs []model.Divergence) {
	if len(divs) == 0 {
		return
	}
	b.WriteString("*Divergences*\n")
	for _, d := range divs {
		fmt.Fprintf(b, "  %s %s on %s (bars %d-%d)\n",
			strings.ToLower(d.Type), strings.ToLower(d.Direction), d.Indicator,
			d.PricePoints[0].Index, d.PricePoints[1].Index)
	}
	b.WriteString("\n")
}

// writeTradePlan derives stop and target distances from the ATR, scaled
// by the volatility regime and clamped to the nearest level. A hold
// verdict or an undefined ATR yields no plan.
func writeTradePlan(b *strings.Builder, r *model.AnalysisReport) {
	if math.IsNaN(r.Indicators.ATR) || r.Recommendation == model.Hold {
		return
	}
	stopDist := r.Indicators.ATR * atrMultiple(r.Indicators.ATRPercent)
	targetDist := stopDist * targetStopRatio

	b.WriteString("*Trade plan*\n")
	switch r.Recommendation {
	case model.Buy, model.StrongBuy:
		stop := r.LastClose - stopDist
		target := r.LastClose + targetDist
		if sup, ok := model.NearestSupport(r.Levels, r.LastClose); ok && stop > sup.Price {
			stop = sup.Price * (1 - levelPadding)
		}
		if res, ok := model.NearestResistance(r.Levels, r.LastClose); ok && target > res.Price {
			target = res.Price * (1 - levelPadding)
		}
		fmt.Fprintf(b, "  Entry near %.2f, stop %.2f, target %.2f\n", r.LastClose, stop, target)
	case model.Sell, model.StrongSell:
		stop := r.LastClose + stopDist
		target := r.LastClose - targetDist
		if res, ok := model.NearestResistance(r.Levels, r.LastClose); ok && stop < res.Price {
			stop = res.Price * (1 + levelPadding)
		}
		if sup, ok := model.NearestSupport(r.Levels, r.LastClose); ok && target < sup.Price {
			target = sup.Price * (1 + levelPadding)
		}
		fmt.Fprintf(b, "  Exit/short near %.2f, stop %.2f, target %.2f\n", r.LastClose, stop, target)
	}
	b.WriteString("\n")
}

// atrMultiple picks the stop multiple for the volatility regime. An
// undefined ATR percent falls through to the low-volatility multiple.
func atrMultiple(atrPercent float64) float64 {
	switch {
	case atrPercent > 5:
		return atrMultipleHigh
	case atrPercent > 3:
		return atrMultipleMid
	default:
		return atrMultipleLow
	}
}

func writeValue(b *strings.Builder, name string, v float64, format string) {
	if math.IsNaN(v) {
		return
	}
	fmt.Fprintf(b, "  %s: "+format+"\n", name, v)
}

// humanize turns SNAKE_CASE signal and level names into readable text.
func humanize(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", " ")
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
