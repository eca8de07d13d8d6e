package analytics

import (
	"testing"

	"github.com/agrilink/pricewatch/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestAnalyzeTrendStableForFlatSeries(t *testing.T) {
	result := AnalyzeTrend(flatSeries(20, 100), 30)

	assert.Equal(t, models.TrendStable, result.Label)
	assert.Equal(t, 0.0, result.Slope)
	assert.Equal(t, 0.0, result.PercentChange)
	assert.Equal(t, 0.0, result.Confidence)
}

func TestAnalyzeTrendStronglyIncreasing(t *testing.T) {
	// 14 points rising linearly from 100 to 113.
	result := AnalyzeTrend(linearSeries(14, 100, 1), 30)

	assert.Equal(t, models.TrendStronglyIncreasing, result.Label)
	assert.InDelta(t, 1.0, result.Slope, 1e-9)
	assert.InDelta(t, 1.0, result.RSquared, 1e-9)
	assert.InDelta(t, 13.0, result.PercentChange, 1e-9)
	assert.Equal(t, result.RSquared, result.Confidence)
}

func TestAnalyzeTrendStronglyDecreasing(t *testing.T) {
	result := AnalyzeTrend(linearSeries(14, 113, -1), 30)

	assert.Equal(t, models.TrendStronglyDecreasing, result.Label)
	assert.Negative(t, result.Slope)
	assert.Negative(t, result.PercentChange)
}

func TestAnalyzeTrendWeakDirectionStaysPlain(t *testing.T) {
	// Rising overall but noisy enough that the fit is poor.
	result := AnalyzeTrend(dailySeries(100, 108, 95, 111, 93, 115, 96, 118, 94, 120), 30)

	assert.Equal(t, models.TrendIncreasing, result.Label)
	assert.LessOrEqual(t, result.RSquared, 0.7)
}

func TestAnalyzeTrendInsufficientData(t *testing.T) {
	result := AnalyzeTrend(flatSeries(1, 100), 30)

	assert.Equal(t, models.TrendInsufficientData, result.Label)
	assert.Equal(t, 0.0, result.Slope)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Equal(t, 1, result.Observations)
}

func TestAnalyzeTrendUsesLookbackWindow(t *testing.T) {
	// 60 days falling, then 10 days rising; a 10-day lookback should see
	// only the rise.
	obs := linearSeries(60, 200, -1)
	lastDate := obs[len(obs)-1].Date
	for i := 1; i <= 10; i++ {
		obs = append(obs, models.PriceObservation{
			Date:  lastDate.AddDate(0, 0, i),
			Price: 141 + float64(i)*2,
		})
	}

	result := AnalyzeTrend(obs, 10)

	assert.Equal(t, models.TrendStronglyIncreasing, result.Label)
}

func TestAnalyzeTrendDefaultsLookback(t *testing.T) {
	result := AnalyzeTrend(linearSeries(14, 100, 1), 0)
	assert.Equal(t, DefaultTrendLookbackDays, result.WindowDays)
}
