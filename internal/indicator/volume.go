package indicator

import (
	"fmt"
	"math"

	"stockmaster/internal/model"
)

// VolumeProfile holds the rolling volume analysis: the average-volume
// series, the ratio of each bar's volume to that average, and the indices
// of bars whose ratio exceeded the anomaly threshold.
type VolumeProfile struct {
	Average   []float64
	Ratio     []float64
	Anomalies []int
}

// Volume computes the rolling average volume over period and flags bars
// whose volume exceeds threshold times the average.
func Volume(candles []model.Candle, period int, threshold float64) (*VolumeProfile, error) {
	if err := checkPeriod("volume", period); err != nil {
		return nil, err
	}
	if threshold <= 0 {
		return nil, fmt.Errorf("volume anomaly threshold %g: must be positive", threshold)
	}

	vols := make([]float64, len(candles))
	for i, c := range candles {
		vols[i] = float64(c.Volume)
	}
	avg := SMA(vols, period)

	ratio := nanSeries(len(candles))
	var anomalies []int
	for i := range candles {
		if math.IsNaN(avg[i]) || avg[i] == 0 {
			continue
		}
		ratio[i] = vols[i] / avg[i]
		if ratio[i] >= threshold {
			anomalies = append(anomalies, i)
		}
	}
	return &VolumeProfile{Average: avg, Ratio: ratio, Anomalies: anomalies}, nil
}
