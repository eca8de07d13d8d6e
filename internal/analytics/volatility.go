package analytics

import "github.com/agrilink/pricewatch/internal/models"

const (
	volatilityLowMax    = 0.05
	volatilityMediumMax = 0.15
)

// CalculateVolatility measures relative price dispersion (stddev/mean)
// over the trailing window (default 30 days). A zero mean (degenerate
// all-zero series) yields volatility 0 rather than a division by zero;
// that is a defined statistical outcome, not an error.
func CalculateVolatility(obs []models.PriceObservation, windowDays int) (*models.VolatilityResult, error) {
	if windowDays <= 0 {
		windowDays = DefaultVolatilityLookbackDays
	}

	windowed := windowObservations(SortObservations(obs), windowDays)
	if len(windowed) < 2 {
		return nil, insufficientData("volatility", 2, len(windowed))
	}

	prices := Prices(windowed)
	mean := Mean(prices)
	stddev := StdDev(prices)

	volatility := 0.0
	if mean != 0 {
		volatility = stddev / mean
	}

	interpretation := models.VolatilityHigh
	switch {
	case volatility < volatilityLowMax:
		interpretation = models.VolatilityLow
	case volatility < volatilityMediumMax:
		interpretation = models.VolatilityMedium
	}

	return &models.VolatilityResult{
		Volatility:        volatility,
		AveragePrice:      mean,
		StandardDeviation: stddev,
		Interpretation:    interpretation,
		WindowDays:        windowDays,
		Observations:      len(windowed),
	}, nil
}
