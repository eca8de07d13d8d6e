package analytics

import (
	"sort"

	"github.com/agrilink/pricewatch/internal/models"
)

const (
	seasonalityQualifyMin = 0.5
	significanceHighMin   = 0.7
)

var candidatePeriods = []struct {
	days int
	name string
}{
	{7, "weekly"},
	{30, "monthly"},
	{90, "quarterly"},
}

// DetectSeasonality looks for periodic self-similarity at 7, 30 and 90 day
// candidate periods. For each candidate the series is split into
// contiguous non-overlapping windows of that length and every pair of
// temporally adjacent windows is correlated; the candidate's score is the
// average of those correlations. Candidates scoring above 0.5 qualify and
// are ranked descending; the top one sets the result's confidence.
//
// Windows are taken over day-to-day price changes rather than raw prices:
// any trending series correlates near 1 across raw windows, which would
// read every monotonic series as seasonal.
//
// Fewer than minPoints observations (default 30) yields a no-seasonality
// result rather than an error.
func DetectSeasonality(obs []models.PriceObservation, minPoints int) *models.SeasonalityResult {
	if minPoints <= 0 {
		minPoints = DefaultSeasonalityMinPoints
	}

	sorted := SortObservations(obs)
	if len(sorted) < minPoints {
		return &models.SeasonalityResult{Observations: len(sorted)}
	}

	changes := priceChanges(Prices(sorted))

	var patterns []models.SeasonalPattern
	for _, candidate := range candidatePeriods {
		avg, ok := adjacentWindowCorrelation(changes, candidate.days)
		if !ok || avg <= seasonalityQualifyMin {
			continue
		}

		significance := "medium"
		if avg > significanceHighMin {
			significance = "high"
		}
		patterns = append(patterns, models.SeasonalPattern{
			PeriodDays:   candidate.days,
			PeriodType:   candidate.name,
			Correlation:  avg,
			Significance: significance,
		})
	}

	sort.Slice(patterns, func(i, j int) bool {
		return patterns[i].Correlation > patterns[j].Correlation
	})

	result := &models.SeasonalityResult{
		Patterns:     patterns,
		Observations: len(sorted),
	}
	if len(patterns) > 0 {
		result.HasSeasonality = true
		result.Confidence = patterns[0].Correlation
	}
	return result
}

// priceChanges returns first differences of the price series.
func priceChanges(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	changes := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		changes = append(changes, prices[i]-prices[i-1])
	}
	return changes
}

// adjacentWindowCorrelation splits values into non-overlapping windows of
// the given length and averages the correlation of each consecutive pair.
// Reports ok=false when fewer than two full windows fit.
func adjacentWindowCorrelation(values []float64, period int) (float64, bool) {
	windows := len(values) / period
	if windows < 2 {
		return 0, false
	}

	var sum float64
	pairs := 0
	for w := 0; w < windows-1; w++ {
		current := values[w*period : (w+1)*period]
		next := values[(w+1)*period : (w+2)*period]
		sum += Correlation(current, next)
		pairs++
	}
	return sum / float64(pairs), true
}
