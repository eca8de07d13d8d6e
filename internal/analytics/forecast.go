package analytics

import (
	"time"

	"github.com/agrilink/pricewatch/internal/models"
)

// Method-intrinsic confidence constants. The moving-average family carries
// fixed heuristic scores; the regression family reports fit quality. The
// two are different quantities, which is why predictions carry a
// confidence basis alongside the number.
const (
	movingAverageConfidence    = 0.5
	weightedAverageConfidence  = 0.6
	smoothingConfidence        = 0.65
	seasonalConfidenceDiscount = 0.9
	seasonalSubstitutionMin    = 0.6
)

// ForecastOptions tunes the forecasting methods. Zero values mean "use the
// default" for every field.
type ForecastOptions struct {
	HorizonDays          int
	Window               int
	SmoothingFactor      float64
	SeasonalPeriod       int
	SeasonalityMinPoints int
	EnsembleMinPoints    int
}

func (o ForecastOptions) withDefaults() ForecastOptions {
	if o.HorizonDays <= 0 {
		o.HorizonDays = DefaultForecastHorizonDays
	}
	if o.Window <= 0 {
		o.Window = DefaultForecastWindow
	}
	if o.SmoothingFactor <= 0 || o.SmoothingFactor > 1 {
		o.SmoothingFactor = DefaultSmoothingFactor
	}
	if o.SeasonalPeriod <= 0 {
		o.SeasonalPeriod = DefaultSeasonalPeriod
	}
	if o.SeasonalityMinPoints <= 0 {
		o.SeasonalityMinPoints = DefaultSeasonalityMinPoints
	}
	if o.EnsembleMinPoints <= 0 {
		o.EnsembleMinPoints = DefaultEnsembleMinPoints
	}
	return o
}

// ForecastMovingAverage projects the mean of the last window prices
// (default 14) as a constant forecast for every future day.
func ForecastMovingAverage(obs []models.PriceObservation, horizonDays, window int) (*models.ForecastResult, error) {
	opts := ForecastOptions{HorizonDays: horizonDays, Window: window}.withDefaults()
	sorted := SortObservations(obs)
	if len(sorted) < opts.Window {
		return nil, insufficientData(models.MethodMovingAverage, opts.Window, len(sorted))
	}

	prices := Prices(sorted)
	avg := Mean(prices[len(prices)-opts.Window:])

	return buildForecast(models.MethodMovingAverage, sorted, opts.HorizonDays, func(day int) models.Prediction {
		return models.Prediction{
			Price:           avg,
			Confidence:      movingAverageConfidence,
			ConfidenceBasis: models.ConfidenceFixed,
		}
	}), nil
}

// ForecastWeightedMovingAverage is the moving average with linearly
// increasing weights 1..window, favoring recent prices.
func ForecastWeightedMovingAverage(obs []models.PriceObservation, horizonDays, window int) (*models.ForecastResult, error) {
	opts := ForecastOptions{HorizonDays: horizonDays, Window: window}.withDefaults()
	sorted := SortObservations(obs)
	if len(sorted) < opts.Window {
		return nil, insufficientData(models.MethodWeightedMovingAverage, opts.Window, len(sorted))
	}

	prices := Prices(sorted)
	tail := prices[len(prices)-opts.Window:]
	var weightedSum, weightTotal float64
	for i, p := range tail {
		w := float64(i + 1)
		weightedSum += p * w
		weightTotal += w
	}
	avg := weightedSum / weightTotal

	return buildForecast(models.MethodWeightedMovingAverage, sorted, opts.HorizonDays, func(day int) models.Prediction {
		return models.Prediction{
			Price:           avg,
			Confidence:      weightedAverageConfidence,
			ConfidenceBasis: models.ConfidenceFixed,
		}
	}), nil
}

// ForecastLinearRegression extrapolates an OLS fit over the observation
// index forward by day offset. Confidence is the fit's rSquared.
func ForecastLinearRegression(obs []models.PriceObservation, horizonDays int) (*models.ForecastResult, error) {
	opts := ForecastOptions{HorizonDays: horizonDays}.withDefaults()
	sorted := SortObservations(obs)
	if len(sorted) < 2 {
		return nil, insufficientData(models.MethodLinearRegression, 2, len(sorted))
	}

	prices := Prices(sorted)
	fit := LinearRegression(prices)
	lastIndex := float64(len(prices) - 1)

	return buildForecast(models.MethodLinearRegression, sorted, opts.HorizonDays, func(day int) models.Prediction {
		return models.Prediction{
			Price:           fit.Intercept + fit.Slope*(lastIndex+float64(day)),
			Confidence:      fit.RSquared,
			ConfidenceBasis: models.ConfidenceRegressionFit,
		}
	}), nil
}

// ForecastExponentialSmoothing runs S_t = alpha*P_t + (1-alpha)*S_{t-1}
// over the series (alpha default 0.3) and holds the final smoothed value
// constant for all future days.
func ForecastExponentialSmoothing(obs []models.PriceObservation, horizonDays int, alpha float64) (*models.ForecastResult, error) {
	opts := ForecastOptions{HorizonDays: horizonDays, SmoothingFactor: alpha}.withDefaults()
	sorted := SortObservations(obs)
	if len(sorted) < 2 {
		return nil, insufficientData(models.MethodExponentialSmoothing, 2, len(sorted))
	}

	prices := Prices(sorted)
	smoothed := prices[0]
	for _, p := range prices[1:] {
		smoothed = opts.SmoothingFactor*p + (1-opts.SmoothingFactor)*smoothed
	}

	return buildForecast(models.MethodExponentialSmoothing, sorted, opts.HorizonDays, func(day int) models.Prediction {
		return models.Prediction{
			Price:           smoothed,
			Confidence:      smoothingConfidence,
			ConfidenceBasis: models.ConfidenceFixed,
		}
	}), nil
}

// ForecastSeasonal multiplies a linear-regression base forecast by a
// seasonal index: the per-offset-in-cycle average price normalized to mean
// 1 (period default 7 days). Requires two full cycles. Confidence is the
// base method's confidence discounted by 0.9.
func ForecastSeasonal(obs []models.PriceObservation, horizonDays, period int) (*models.ForecastResult, error) {
	opts := ForecastOptions{HorizonDays: horizonDays, SeasonalPeriod: period}.withDefaults()
	sorted := SortObservations(obs)
	required := 2 * opts.SeasonalPeriod
	if len(sorted) < required {
		return nil, insufficientData(models.MethodSeasonal, required, len(sorted))
	}

	prices := Prices(sorted)
	index := seasonalIndex(prices, opts.SeasonalPeriod)

	fit := LinearRegression(prices)
	lastIndex := float64(len(prices) - 1)
	n := len(prices)

	result := buildForecast(models.MethodSeasonal, sorted, opts.HorizonDays, func(day int) models.Prediction {
		base := fit.Intercept + fit.Slope*(lastIndex+float64(day))
		offset := (n - 1 + day) % opts.SeasonalPeriod
		return models.Prediction{
			Price:           base * index[offset],
			Confidence:      fit.RSquared * seasonalConfidenceDiscount,
			ConfidenceBasis: models.ConfidenceDerived,
		}
	})
	return result, nil
}

// seasonalIndex averages prices by their offset within the cycle and
// normalizes the averages to mean 1. Offsets with no complete data fall
// back to the neutral index 1.
func seasonalIndex(prices []float64, period int) []float64 {
	sums := make([]float64, period)
	counts := make([]int, period)
	for i, p := range prices {
		offset := i % period
		sums[offset] += p
		counts[offset]++
	}

	index := make([]float64, period)
	var total float64
	for i := range index {
		if counts[i] > 0 {
			index[i] = sums[i] / float64(counts[i])
		}
		total += index[i]
	}

	mean := total / float64(period)
	if mean == 0 {
		for i := range index {
			index[i] = 1
		}
		return index
	}
	for i := range index {
		if counts[i] == 0 {
			index[i] = 1
			continue
		}
		index[i] /= mean
	}
	return index
}

// ForecastEnsemble blends the four non-seasonal methods with a
// confidence-weighted average price per day. The reported confidence is
// the MAX of the four component confidences, not the weighted mean; this
// deliberately optimistic rule is long-standing behavior and is pinned by
// a test. Per-method prices are retained in Components for transparency.
func ForecastEnsemble(obs []models.PriceObservation, opts ForecastOptions) (*models.ForecastResult, error) {
	opts = opts.withDefaults()
	sorted := SortObservations(obs)
	if len(sorted) < opts.EnsembleMinPoints {
		return nil, insufficientData(models.MethodEnsemble, opts.EnsembleMinPoints, len(sorted))
	}

	ma, err := ForecastMovingAverage(sorted, opts.HorizonDays, opts.Window)
	if err != nil {
		return nil, err
	}
	wma, err := ForecastWeightedMovingAverage(sorted, opts.HorizonDays, opts.Window)
	if err != nil {
		return nil, err
	}
	lr, err := ForecastLinearRegression(sorted, opts.HorizonDays)
	if err != nil {
		return nil, err
	}
	es, err := ForecastExponentialSmoothing(sorted, opts.HorizonDays, opts.SmoothingFactor)
	if err != nil {
		return nil, err
	}
	components := []*models.ForecastResult{ma, wma, lr, es}

	result := buildForecast(models.MethodEnsemble, sorted, opts.HorizonDays, func(day int) models.Prediction {
		var weightedSum, weightTotal, maxConfidence float64
		parts := make(map[string]float64, len(components))
		for _, component := range components {
			p := component.Predictions[day-1]
			parts[component.Method] = p.Price
			weightedSum += p.Price * p.Confidence
			weightTotal += p.Confidence
			if p.Confidence > maxConfidence {
				maxConfidence = p.Confidence
			}
		}
		price := 0.0
		if weightTotal > 0 {
			price = weightedSum / weightTotal
		}
		return models.Prediction{
			Price:           price,
			Confidence:      maxConfidence,
			ConfidenceBasis: models.ConfidenceDerived,
			Components:      parts,
		}
	})
	return result, nil
}

// ComprehensiveForecast is the caller-facing wrapper: it runs the ensemble
// and seasonality detection, substitutes the seasonal method as the
// primary forecast when seasonality confidence is high, and derives a
// purchase-timing recommendation from the projected percent change over
// the horizon.
func ComprehensiveForecast(obs []models.PriceObservation, opts ForecastOptions) (*models.ForecastReport, error) {
	opts = opts.withDefaults()
	sorted := SortObservations(obs)

	forecast, err := ForecastEnsemble(sorted, opts)
	if err != nil {
		return nil, err
	}

	seasonality := DetectSeasonality(sorted, opts.SeasonalityMinPoints)
	usedSeasonal := false
	if seasonality.HasSeasonality && seasonality.Confidence > seasonalSubstitutionMin {
		period := opts.SeasonalPeriod
		if len(seasonality.Patterns) > 0 {
			period = seasonality.Patterns[0].PeriodDays
		}
		if seasonal, err := ForecastSeasonal(sorted, opts.HorizonDays, period); err == nil {
			forecast = seasonal
			usedSeasonal = true
		}
	}

	changePct := 0.0
	if last := forecast.LastObserved; last != 0 && len(forecast.Predictions) > 0 {
		final := forecast.Predictions[len(forecast.Predictions)-1].Price
		changePct = (final - last) / last * 100
	}

	recommendation := models.RecommendationAcceleratePurchase
	switch {
	case changePct < -5:
		recommendation = models.RecommendationDelayPurchase
	case changePct < 0:
		recommendation = models.RecommendationMildDecrease
	case changePct < 5:
		recommendation = models.RecommendationMildIncrease
	}

	return &models.ForecastReport{
		Forecast:           forecast,
		Seasonality:        seasonality,
		UsedSeasonalMethod: usedSeasonal,
		ProjectedChangePct: changePct,
		Recommendation:     recommendation,
		GeneratedAt:        time.Now(),
	}, nil
}

// buildForecast emits one prediction per calendar day 1..horizon after the
// last observed date, delegating the price and confidence for each day to
// predict.
func buildForecast(method string, sorted []models.PriceObservation, horizonDays int, predict func(day int) models.Prediction) *models.ForecastResult {
	lastDate := LastDate(sorted)
	lastPrice := sorted[len(sorted)-1].Price

	predictions := make([]models.Prediction, 0, horizonDays)
	for day := 1; day <= horizonDays; day++ {
		p := predict(day)
		p.Date = lastDate.AddDate(0, 0, day)
		p.Method = method
		predictions = append(predictions, p)
	}

	return &models.ForecastResult{
		Method:       method,
		HorizonDays:  horizonDays,
		LastObserved: lastPrice,
		LastDate:     lastDate,
		Predictions:  predictions,
		GeneratedAt:  time.Now(),
	}
}
