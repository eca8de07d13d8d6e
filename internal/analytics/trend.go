package analytics

import (
	"math"

	"github.com/agrilink/pricewatch/internal/models"
)

const (
	stableSlopeThreshold   = 0.001
	strongTrendRSquaredMin = 0.7
)

// AnalyzeTrend classifies price direction over the trailing lookback
// window (default 30 days). Fewer than two windowed points yields the
// insufficient_data label with zero slope and confidence rather than an
// error, so callers can render a result unconditionally.
//
// The regression x-axis is the sequential observation index, not calendar
// distance: gaps in the series are treated as equally spaced, so slope is
// price change per observation. PercentChange is taken from the first and
// last window prices and is independent of the fitted line.
func AnalyzeTrend(obs []models.PriceObservation, lookbackDays int) *models.TrendResult {
	if lookbackDays <= 0 {
		lookbackDays = DefaultTrendLookbackDays
	}

	sorted := SortObservations(obs)
	windowed := windowObservations(sorted, lookbackDays)
	if len(windowed) < 2 {
		return &models.TrendResult{
			Label:        models.TrendInsufficientData,
			WindowDays:   lookbackDays,
			Observations: len(windowed),
		}
	}

	prices := Prices(windowed)
	fit := LinearRegression(prices)

	label := models.TrendStable
	if math.Abs(fit.Slope) >= stableSlopeThreshold {
		if fit.Slope > 0 {
			label = models.TrendIncreasing
			if fit.RSquared > strongTrendRSquaredMin {
				label = models.TrendStronglyIncreasing
			}
		} else {
			label = models.TrendDecreasing
			if fit.RSquared > strongTrendRSquaredMin {
				label = models.TrendStronglyDecreasing
			}
		}
	}

	percentChange := 0.0
	if first := prices[0]; first != 0 {
		percentChange = (prices[len(prices)-1] - first) / first * 100
	}

	return &models.TrendResult{
		Label:         label,
		Slope:         fit.Slope,
		Intercept:     fit.Intercept,
		RSquared:      fit.RSquared,
		PercentChange: percentChange,
		Confidence:    fit.RSquared,
		WindowDays:    lookbackDays,
		Observations:  len(windowed),
	}
}
