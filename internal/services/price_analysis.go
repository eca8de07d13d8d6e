package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/agrilink/pricewatch/internal/analytics"
	"github.com/agrilink/pricewatch/internal/config"
	"github.com/agrilink/pricewatch/internal/database"
	"github.com/agrilink/pricewatch/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
)

// ErrNoPriceData reports an empty series for the requested product and
// market pair.
var ErrNoPriceData = errors.New("no price data")

// ErrUnknownMethod reports an unrecognized forecast method name.
var ErrUnknownMethod = errors.New("unknown forecast method")

// PriceQuerier defines the database operations needed for price analytics.
type PriceQuerier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// PriceAnalysisService pulls a product/market price series from storage,
// runs the analytics engine over it, and caches serialized results. The
// engine itself stays pure; fetching, caching and logging all live here.
type PriceAnalysisService struct {
	db       PriceQuerier
	cache    *database.RedisClient
	config   config.AnalyticsConfig
	logger   *logrus.Logger
	cacheTTL time.Duration
}

// NewPriceAnalysisService creates a new price analysis service. The cache
// client may be nil, in which case every request recomputes.
func NewPriceAnalysisService(db *database.PostgresDB, cache *database.RedisClient, cfg config.AnalyticsConfig, logger *logrus.Logger) *PriceAnalysisService {
	var querier PriceQuerier
	if db != nil {
		querier = db.Pool
	}
	return newService(querier, cache, cfg, logger)
}

// NewPriceAnalysisServiceWithQuerier creates a new price analysis service
// with a custom querier (for tests).
func NewPriceAnalysisServiceWithQuerier(db PriceQuerier, cache *database.RedisClient, cfg config.AnalyticsConfig, logger *logrus.Logger) *PriceAnalysisService {
	return newService(db, cache, cfg, logger)
}

func newService(db PriceQuerier, cache *database.RedisClient, cfg config.AnalyticsConfig, logger *logrus.Logger) *PriceAnalysisService {
	if logger == nil {
		logger = logrus.New()
	}
	ttl, err := time.ParseDuration(cfg.CacheTTL)
	if err != nil || ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PriceAnalysisService{
		db:       db,
		cache:    cache,
		config:   cfg,
		logger:   logger,
		cacheTTL: ttl,
	}
}

// AnalyzeTrend classifies price direction for one product/market pair.
func (s *PriceAnalysisService) AnalyzeTrend(ctx context.Context, productID, marketID int64, lookbackDays int) (*models.TrendResult, error) {
	if lookbackDays <= 0 {
		lookbackDays = s.config.TrendLookbackDays
	}

	key := fmt.Sprintf("analytics:trend:%d:%d:%d", productID, marketID, lookbackDays)
	var cached models.TrendResult
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	obs, err := s.getPriceSeries(ctx, productID, marketID)
	if err != nil {
		return nil, err
	}

	result := analytics.AnalyzeTrend(obs, lookbackDays)
	s.storeCache(ctx, key, result)
	return result, nil
}

// CalculateVolatility measures relative price dispersion for one
// product/market pair.
func (s *PriceAnalysisService) CalculateVolatility(ctx context.Context, productID, marketID int64, windowDays int) (*models.VolatilityResult, error) {
	if windowDays <= 0 {
		windowDays = s.config.VolatilityLookbackDays
	}

	key := fmt.Sprintf("analytics:volatility:%d:%d:%d", productID, marketID, windowDays)
	var cached models.VolatilityResult
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	obs, err := s.getPriceSeries(ctx, productID, marketID)
	if err != nil {
		return nil, err
	}

	result, err := analytics.CalculateVolatility(obs, windowDays)
	if err != nil {
		return nil, err
	}
	s.storeCache(ctx, key, result)
	return result, nil
}

// DetectAnomalies flags statistically distant observations.
func (s *PriceAnalysisService) DetectAnomalies(ctx context.Context, productID, marketID int64, threshold float64, windowDays int) ([]models.Anomaly, error) {
	if threshold <= 0 {
		threshold = s.config.AnomalyZThreshold
	}
	if windowDays <= 0 {
		windowDays = s.config.AnomalyLookbackDays
	}

	obs, err := s.getPriceSeries(ctx, productID, marketID)
	if err != nil {
		return nil, err
	}
	return analytics.DetectAnomalies(obs, threshold, windowDays)
}

// DetectSeasonality looks for periodic self-similarity in the series.
func (s *PriceAnalysisService) DetectSeasonality(ctx context.Context, productID, marketID int64) (*models.SeasonalityResult, error) {
	key := fmt.Sprintf("analytics:seasonality:%d:%d", productID, marketID)
	var cached models.SeasonalityResult
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	obs, err := s.getPriceSeries(ctx, productID, marketID)
	if err != nil {
		return nil, err
	}

	result := analytics.DetectSeasonality(obs, s.config.SeasonalityMinPoints)
	s.storeCache(ctx, key, result)
	return result, nil
}

// Forecast runs one named forecasting method over the series.
func (s *PriceAnalysisService) Forecast(ctx context.Context, productID, marketID int64, method string, horizonDays int) (*models.ForecastResult, error) {
	if horizonDays <= 0 {
		horizonDays = s.config.ForecastHorizonDays
	}

	obs, err := s.getPriceSeries(ctx, productID, marketID)
	if err != nil {
		return nil, err
	}

	switch method {
	case models.MethodMovingAverage:
		return analytics.ForecastMovingAverage(obs, horizonDays, s.config.ForecastWindow)
	case models.MethodWeightedMovingAverage:
		return analytics.ForecastWeightedMovingAverage(obs, horizonDays, s.config.ForecastWindow)
	case models.MethodLinearRegression:
		return analytics.ForecastLinearRegression(obs, horizonDays)
	case models.MethodExponentialSmoothing:
		return analytics.ForecastExponentialSmoothing(obs, horizonDays, s.config.SmoothingFactor)
	case models.MethodSeasonal:
		return analytics.ForecastSeasonal(obs, horizonDays, s.config.SeasonalPeriod)
	case models.MethodEnsemble, "":
		return analytics.ForecastEnsemble(obs, s.forecastOptions(horizonDays))
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownMethod, method)
	}
}

// ComprehensiveForecast runs the ensemble with seasonality substitution
// and a purchase recommendation.
func (s *PriceAnalysisService) ComprehensiveForecast(ctx context.Context, productID, marketID int64, horizonDays int) (*models.ForecastReport, error) {
	if horizonDays <= 0 {
		horizonDays = s.config.ForecastHorizonDays
	}

	key := fmt.Sprintf("analytics:forecast:%d:%d:%d", productID, marketID, horizonDays)
	var cached models.ForecastReport
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	obs, err := s.getPriceSeries(ctx, productID, marketID)
	if err != nil {
		return nil, err
	}

	report, err := analytics.ComprehensiveForecast(obs, s.forecastOptions(horizonDays))
	if err != nil {
		return nil, err
	}
	s.storeCache(ctx, key, report)
	return report, nil
}

// CalculateCorrelationMatrix builds a pairwise log-return correlation
// matrix for a set of products within one market.
func (s *PriceAnalysisService) CalculateCorrelationMatrix(ctx context.Context, marketID int64, productIDs []int64) (*models.PriceCorrelationMatrix, error) {
	if len(productIDs) < 2 {
		return nil, fmt.Errorf("at least two products are required")
	}

	series := make(map[int64][]float64, len(productIDs))
	minLen := -1
	for _, productID := range productIDs {
		obs, err := s.getPriceSeries(ctx, productID, marketID)
		if err != nil {
			return nil, err
		}
		prices := analytics.Prices(analytics.SortObservations(obs))
		series[productID] = prices
		if minLen < 0 || len(prices) < minLen {
			minLen = len(prices)
		}
	}

	if minLen < s.config.CorrelationMinPoints {
		return nil, &analytics.InsufficientDataError{
			Op:       "correlation matrix",
			Required: s.config.CorrelationMinPoints,
			Actual:   minLen,
		}
	}

	ordered := make([]int64, len(productIDs))
	copy(ordered, productIDs)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	matrix := make([][]float64, len(ordered))
	for i := range ordered {
		matrix[i] = make([]float64, len(ordered))
		for j := range ordered {
			if i == j {
				matrix[i][j] = 1
				continue
			}
			x := series[ordered[i]]
			y := series[ordered[j]]
			xReturns := analytics.LogReturns(x[len(x)-minLen:])
			yReturns := analytics.LogReturns(y[len(y)-minLen:])
			n := len(xReturns)
			if len(yReturns) < n {
				n = len(yReturns)
			}
			if n < s.config.CorrelationMinPoints-1 {
				continue
			}
			matrix[i][j] = analytics.Correlation(xReturns[len(xReturns)-n:], yReturns[len(yReturns)-n:])
		}
	}

	return &models.PriceCorrelationMatrix{
		MarketID:    marketID,
		ProductIDs:  ordered,
		Matrix:      matrix,
		WindowSize:  minLen,
		GeneratedAt: time.Now(),
	}, nil
}

func (s *PriceAnalysisService) forecastOptions(horizonDays int) analytics.ForecastOptions {
	return analytics.ForecastOptions{
		HorizonDays:          horizonDays,
		Window:               s.config.ForecastWindow,
		SmoothingFactor:      s.config.SmoothingFactor,
		SeasonalPeriod:       s.config.SeasonalPeriod,
		SeasonalityMinPoints: s.config.SeasonalityMinPoints,
		EnsembleMinPoints:    s.config.EnsembleMinPoints,
	}
}

// getPriceSeries loads the stored observations for one product/market
// pair, newest first from storage, reversed to ascending date order for
// the engine.
func (s *PriceAnalysisService) getPriceSeries(ctx context.Context, productID, marketID int64) ([]models.PriceObservation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("price database is not available")
	}

	limit := s.config.SeriesLookbackLimit
	if limit <= 0 {
		limit = 365
	}

	query := `
		SELECT pr.price, pr.recorded_at
		FROM price_records pr
		WHERE pr.product_id = $1 AND pr.market_id = $2 AND pr.price > 0
		ORDER BY pr.recorded_at DESC
		LIMIT $3
	`

	rows, err := s.db.Query(ctx, query, productID, marketID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query price series: %w", err)
	}
	defer rows.Close()

	var obs []models.PriceObservation
	for rows.Next() {
		var record models.PriceRecord
		if err := rows.Scan(&record.Price, &record.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price record: %w", err)
		}
		obs = append(obs, record.Observation())
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	if len(obs) == 0 {
		return nil, fmt.Errorf("%w for product %d in market %d", ErrNoPriceData, productID, marketID)
	}

	// Reverse to ascending date order
	for i, j := 0, len(obs)-1; i < j; i, j = i+1, j-1 {
		obs[i], obs[j] = obs[j], obs[i]
	}

	return obs, nil
}

// fromCache loads a cached result into out. A miss, a disabled cache or a
// stale payload all report false; callers recompute in every case.
func (s *PriceAnalysisService) fromCache(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil || !s.config.EnableCache {
		return false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.logger.WithField("key", key).WithError(err).Warn("Discarding undecodable cached analytics result")
		return false
	}
	s.logger.WithField("key", key).Debug("Analytics cache hit")
	return true
}

func (s *PriceAnalysisService) storeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil || !s.config.EnableCache {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
		s.logger.WithField("key", key).WithError(err).Warn("Failed to cache analytics result")
	}
}
