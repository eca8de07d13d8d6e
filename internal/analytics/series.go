package analytics

import (
	"sort"
	"time"

	"github.com/agrilink/pricewatch/internal/models"
)

// Default tuning knobs. Every engine entry point treats a zero or negative
// parameter as "use the default".
const (
	DefaultTrendLookbackDays      = 30
	DefaultVolatilityLookbackDays = 30
	DefaultAnomalyThreshold       = 2.5
	DefaultAnomalyLookbackDays    = 90
	DefaultForecastHorizonDays    = 7
	DefaultForecastWindow         = 14
	DefaultSmoothingFactor        = 0.3
	DefaultSeasonalPeriod         = 7
	DefaultSeasonalityMinPoints   = 30
	DefaultEnsembleMinPoints      = 14
)

// SortObservations returns a new slice sorted ascending by date. The sort
// is stable: observations sharing a date keep their input order. The
// engine assumes one observation per date; deduplication is the caller's
// responsibility. An empty input yields an empty output, never an error.
func SortObservations(obs []models.PriceObservation) []models.PriceObservation {
	sorted := make([]models.PriceObservation, len(obs))
	copy(sorted, obs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// windowObservations returns the tail of a date-sorted series whose dates
// fall within the trailing window, measured back from the latest
// observation rather than from wall-clock time so that historical series
// analyze the same way regardless of when the call happens.
func windowObservations(sorted []models.PriceObservation, days int) []models.PriceObservation {
	if len(sorted) == 0 || days <= 0 {
		return sorted
	}
	cutoff := sorted[len(sorted)-1].Date.AddDate(0, 0, -days)
	start := sort.Search(len(sorted), func(i int) bool {
		return !sorted[i].Date.Before(cutoff)
	})
	return sorted[start:]
}

// Prices extracts the price column.
func Prices(obs []models.PriceObservation) []float64 {
	prices := make([]float64, len(obs))
	for i, o := range obs {
		prices[i] = o.Price
	}
	return prices
}

// LastDate returns the date of the latest observation in a sorted series,
// or the zero time for an empty series.
func LastDate(sorted []models.PriceObservation) time.Time {
	if len(sorted) == 0 {
		return time.Time{}
	}
	return sorted[len(sorted)-1].Date
}
