package analytics

import (
	"math"

	"github.com/agrilink/pricewatch/internal/models"
)

const anomalyMinPoints = 5

// DetectAnomalies flags observations whose z-score against the windowed
// mean and standard deviation exceeds the threshold (default 2.5, window
// default 90 days). A zero standard deviation leaves the z-score undefined
// and flags nothing; that is a degenerate input, not an error. Detection
// is deterministic: the same series and threshold always yield the same
// flagged set.
func DetectAnomalies(obs []models.PriceObservation, threshold float64, windowDays int) ([]models.Anomaly, error) {
	if threshold <= 0 {
		threshold = DefaultAnomalyThreshold
	}
	if windowDays <= 0 {
		windowDays = DefaultAnomalyLookbackDays
	}

	windowed := windowObservations(SortObservations(obs), windowDays)
	if len(windowed) < anomalyMinPoints {
		return nil, insufficientData("anomaly detection", anomalyMinPoints, len(windowed))
	}

	prices := Prices(windowed)
	mean := Mean(prices)
	stddev := StdDev(prices)
	if stddev == 0 {
		return []models.Anomaly{}, nil
	}

	anomalies := []models.Anomaly{}
	for _, o := range windowed {
		z := (o.Price - mean) / stddev
		if math.Abs(z) <= threshold {
			continue
		}
		deviation := o.Price - mean
		percentDeviation := 0.0
		if mean != 0 {
			percentDeviation = deviation / mean * 100
		}
		anomalies = append(anomalies, models.Anomaly{
			Observation:      o,
			ZScore:           z,
			Deviation:        deviation,
			PercentDeviation: percentDeviation,
		})
	}
	return anomalies, nil
}
