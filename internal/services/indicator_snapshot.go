package services

import (
	"context"
	"time"

	"github.com/agrilink/pricewatch/internal/analytics"
	"github.com/agrilink/pricewatch/internal/models"
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
)

// IndicatorSnapshot computes a supplementary technical-indicator view
// (SMA, EMA, RSI) over the same price series the analytics engine
// consumes. Useful alongside the trend result when callers want the
// conventional market framing of the series.
func (s *PriceAnalysisService) IndicatorSnapshot(ctx context.Context, productID, marketID int64, period int) (*models.IndicatorSnapshot, error) {
	if period <= 0 {
		period = s.config.IndicatorPeriod
	}
	if period <= 0 {
		period = analytics.DefaultForecastWindow
	}

	obs, err := s.getPriceSeries(ctx, productID, marketID)
	if err != nil {
		return nil, err
	}

	prices := analytics.Prices(analytics.SortObservations(obs))
	// RSI needs one change beyond the averaging period.
	required := period + 1
	if len(prices) < required {
		return nil, &analytics.InsufficientDataError{
			Op:       "indicator snapshot",
			Required: required,
			Actual:   len(prices),
		}
	}

	smaValues := helper.ChanToSlice(trend.NewSmaWithPeriod[float64](period).Compute(helper.SliceToChan(prices)))
	emaValues := helper.ChanToSlice(trend.NewEmaWithPeriod[float64](period).Compute(helper.SliceToChan(prices)))
	rsiValues := helper.ChanToSlice(momentum.NewRsiWithPeriod[float64](period).Compute(helper.SliceToChan(prices)))

	snapshot := &models.IndicatorSnapshot{
		ProductID:   productID,
		MarketID:    marketID,
		Period:      period,
		LastPrice:   prices[len(prices)-1],
		GeneratedAt: time.Now(),
	}
	if len(smaValues) > 0 {
		snapshot.SMA = smaValues[len(smaValues)-1]
	}
	if len(emaValues) > 0 {
		snapshot.EMA = emaValues[len(emaValues)-1]
	}
	if len(rsiValues) > 0 {
		snapshot.RSI = rsiValues[len(rsiValues)-1]
	}
	return snapshot, nil
}
