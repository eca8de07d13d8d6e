package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrilink/pricewatch/internal/config"
	"github.com/agrilink/pricewatch/internal/models"
	"github.com/agrilink/pricewatch/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func handlerTestConfig() config.AnalyticsConfig {
	return config.AnalyticsConfig{
		TrendLookbackDays:      30,
		VolatilityLookbackDays: 30,
		AnomalyZThreshold:      2.5,
		AnomalyLookbackDays:    90,
		ForecastHorizonDays:    7,
		ForecastWindow:         14,
		SmoothingFactor:        0.3,
		SeasonalPeriod:         7,
		SeasonalityMinPoints:   30,
		EnsembleMinPoints:      14,
		SeriesLookbackLimit:    365,
		CorrelationMinPoints:   5,
		IndicatorPeriod:        14,
		CacheTTL:               "5m",
	}
}

// newTestRouter wires the analytics handler onto a bare router backed by
// a mock database pool.
func newTestRouter(t *testing.T) (*gin.Engine, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)

	service := services.NewPriceAnalysisServiceWithQuerier(mockPool, nil, handlerTestConfig(), nil)
	handler := NewAnalyticsHandler(service, nil)

	router := gin.New()
	analytics := router.Group("/api/v1/analytics")
	analytics.GET("/trend", handler.GetTrend)
	analytics.GET("/volatility", handler.GetVolatility)
	analytics.GET("/anomalies", handler.GetAnomalies)
	analytics.GET("/seasonality", handler.GetSeasonality)
	analytics.GET("/forecast", handler.GetForecast)
	analytics.GET("/comprehensive", handler.GetComprehensiveForecast)
	analytics.GET("/correlation", handler.GetCorrelationMatrix)
	analytics.GET("/indicators", handler.GetIndicators)
	return router, mockPool
}

func seriesRows(start time.Time, prices ...float64) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"price", "recorded_at"})
	for i := len(prices) - 1; i >= 0; i-- {
		rows.AddRow(decimal.NewFromFloat(prices[i]), start.AddDate(0, 0, i))
	}
	return rows
}

func doRequest(router *gin.Engine, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestGetTrend(t *testing.T) {
	router, mockPool := newTestRouter(t)
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	mockPool.ExpectQuery("SELECT pr.price, pr.recorded_at").
		WithArgs(int64(1), int64(2), 365).
		WillReturnRows(seriesRows(start, 100, 101, 102, 103, 104, 105, 106, 107, 108, 109))

	w := doRequest(router, "/api/v1/analytics/trend?product_id=1&market_id=2")

	require.Equal(t, http.StatusOK, w.Code)
	var result models.TrendResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, models.TrendStronglyIncreasing, result.Label)
	require.NoError(t, mockPool.ExpectationsWereMet())
}

func TestGetTrendMissingProductID(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, "/api/v1/analytics/trend?market_id=2")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "product_id")
}

func TestGetTrendNoDataReturns404(t *testing.T) {
	router, mockPool := newTestRouter(t)

	mockPool.ExpectQuery("SELECT pr.price, pr.recorded_at").
		WithArgs(int64(9), int64(9), 365).
		WillReturnRows(pgxmock.NewRows([]string{"price", "recorded_at"}))

	w := doRequest(router, "/api/v1/analytics/trend?product_id=9&market_id=9")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "no price data")
}

func TestGetForecastInsufficientDataReturns422(t *testing.T) {
	router, mockPool := newTestRouter(t)
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	mockPool.ExpectQuery("SELECT pr.price, pr.recorded_at").
		WithArgs(int64(1), int64(2), 365).
		WillReturnRows(seriesRows(start, 100, 101, 102, 103, 104, 105, 106, 107, 108, 109))

	w := doRequest(router, "/api/v1/analytics/forecast?product_id=1&market_id=2")

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body struct {
		Error    string `json:"error"`
		Required int    `json:"required"`
		Actual   int    `json:"actual"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 14, body.Required)
	assert.Equal(t, 10, body.Actual)
}

func TestGetForecastUnknownMethodReturns400(t *testing.T) {
	router, mockPool := newTestRouter(t)
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	mockPool.ExpectQuery("SELECT pr.price, pr.recorded_at").
		WithArgs(int64(1), int64(2), 365).
		WillReturnRows(seriesRows(start, 100, 101))

	w := doRequest(router, "/api/v1/analytics/forecast?product_id=1&market_id=2&method=prophet")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown forecast method")
}

func TestGetForecastNamedMethod(t *testing.T) {
	router, mockPool := newTestRouter(t)
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	mockPool.ExpectQuery("SELECT pr.price, pr.recorded_at").
		WithArgs(int64(1), int64(2), 365).
		WillReturnRows(seriesRows(start, prices...))

	w := doRequest(router, "/api/v1/analytics/forecast?product_id=1&market_id=2&method=linear_regression&horizon=3")

	require.Equal(t, http.StatusOK, w.Code)
	var result models.ForecastResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, models.MethodLinearRegression, result.Method)
	assert.Len(t, result.Predictions, 3)
}

func TestGetComprehensiveForecast(t *testing.T) {
	router, mockPool := newTestRouter(t)
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	mockPool.ExpectQuery("SELECT pr.price, pr.recorded_at").
		WithArgs(int64(1), int64(2), 365).
		WillReturnRows(seriesRows(start, prices...))

	w := doRequest(router, "/api/v1/analytics/comprehensive?product_id=1&market_id=2")

	require.Equal(t, http.StatusOK, w.Code)
	var report models.ForecastReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.NotNil(t, report.Forecast)
	assert.Len(t, report.Forecast.Predictions, 7)
	assert.NotEmpty(t, report.Recommendation)
}

func TestGetAnomaliesInvalidThreshold(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, "/api/v1/analytics/anomalies?product_id=1&market_id=2&threshold=-1")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "threshold")
}

func TestGetAnomalies(t *testing.T) {
	router, mockPool := newTestRouter(t)
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100
	}
	prices[10] = 1000
	mockPool.ExpectQuery("SELECT pr.price, pr.recorded_at").
		WithArgs(int64(1), int64(2), 365).
		WillReturnRows(seriesRows(start, prices...))

	w := doRequest(router, "/api/v1/analytics/anomalies?product_id=1&market_id=2")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Anomalies []models.Anomaly `json:"anomalies"`
		Count     int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Anomalies, 1)
	assert.InDelta(t, 1000, body.Anomalies[0].Observation.Price, 1e-9)
}

func TestGetCorrelationMatrixBadProducts(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, "/api/v1/analytics/correlation?market_id=5&products=1")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, "/api/v1/analytics/correlation?market_id=5&products=1,abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, "/api/v1/analytics/correlation?market_id=5")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCorrelationMatrix(t *testing.T) {
	router, mockPool := newTestRouter(t)
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	mockPool.ExpectQuery("SELECT pr.price, pr.recorded_at").
		WithArgs(int64(1), int64(5), 365).
		WillReturnRows(seriesRows(start, 100, 102, 104, 103, 105, 107, 106, 108))
	mockPool.ExpectQuery("SELECT pr.price, pr.recorded_at").
		WithArgs(int64(2), int64(5), 365).
		WillReturnRows(seriesRows(start, 200, 204, 208, 206, 210, 214, 212, 216))

	w := doRequest(router, "/api/v1/analytics/correlation?market_id=5&products=1,2")

	require.Equal(t, http.StatusOK, w.Code)
	var matrix models.PriceCorrelationMatrix
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &matrix))
	assert.Equal(t, []int64{1, 2}, matrix.ProductIDs)
	assert.Greater(t, matrix.Matrix[0][1], 0.9)
}

func TestGetIndicators(t *testing.T) {
	router, mockPool := newTestRouter(t)
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	mockPool.ExpectQuery("SELECT pr.price, pr.recorded_at").
		WithArgs(int64(1), int64(2), 365).
		WillReturnRows(seriesRows(start, prices...))

	w := doRequest(router, "/api/v1/analytics/indicators?product_id=1&market_id=2")

	require.Equal(t, http.StatusOK, w.Code)
	var snapshot models.IndicatorSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
	assert.Equal(t, 14, snapshot.Period)
	assert.InDelta(t, 129, snapshot.LastPrice, 1e-9)
	// A strictly rising series pins RSI at its ceiling.
	assert.InDelta(t, 100, snapshot.RSI, 1e-6)
}
