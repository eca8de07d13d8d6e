package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/agrilink/pricewatch/internal/analytics"
	"github.com/agrilink/pricewatch/internal/services"
)

// AnalyticsHandler exposes the price analytics service over HTTP. Every
// endpoint identifies a series by product_id and market_id; tuning
// parameters are optional and fall back to configured defaults inside
// the service.
type AnalyticsHandler struct {
	service *services.PriceAnalysisService
	logger  *logrus.Logger
}

func NewAnalyticsHandler(service *services.PriceAnalysisService, logger *logrus.Logger) *AnalyticsHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &AnalyticsHandler{service: service, logger: logger}
}

// GetTrend classifies the price direction of a series.
func (h *AnalyticsHandler) GetTrend(c *gin.Context) {
	productID, marketID, ok := h.seriesParams(c)
	if !ok {
		return
	}
	days := intQuery(c, "days", 0)

	result, err := h.service.AnalyzeTrend(c.Request.Context(), productID, marketID, days)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetVolatility reports relative price dispersion.
func (h *AnalyticsHandler) GetVolatility(c *gin.Context) {
	productID, marketID, ok := h.seriesParams(c)
	if !ok {
		return
	}
	days := intQuery(c, "days", 0)

	result, err := h.service.CalculateVolatility(c.Request.Context(), productID, marketID, days)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetAnomalies lists observations flagged by the z-score detector.
func (h *AnalyticsHandler) GetAnomalies(c *gin.Context) {
	productID, marketID, ok := h.seriesParams(c)
	if !ok {
		return
	}
	days := intQuery(c, "days", 0)

	threshold := 0.0
	if raw := c.Query("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "threshold must be a positive number"})
			return
		}
		threshold = parsed
	}

	anomalies, err := h.service.DetectAnomalies(c.Request.Context(), productID, marketID, threshold, days)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product_id": productID,
		"market_id":  marketID,
		"anomalies":  anomalies,
		"count":      len(anomalies),
	})
}

// GetSeasonality reports periodic self-similarity in the series.
func (h *AnalyticsHandler) GetSeasonality(c *gin.Context) {
	productID, marketID, ok := h.seriesParams(c)
	if !ok {
		return
	}

	result, err := h.service.DetectSeasonality(c.Request.Context(), productID, marketID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetForecast runs one named forecasting method. An empty method selects
// the ensemble.
func (h *AnalyticsHandler) GetForecast(c *gin.Context) {
	productID, marketID, ok := h.seriesParams(c)
	if !ok {
		return
	}
	horizon := intQuery(c, "horizon", 0)
	method := c.Query("method")

	result, err := h.service.Forecast(c.Request.Context(), productID, marketID, method, horizon)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetComprehensiveForecast runs the full pipeline: ensemble forecast,
// seasonality substitution and a purchase recommendation.
func (h *AnalyticsHandler) GetComprehensiveForecast(c *gin.Context) {
	productID, marketID, ok := h.seriesParams(c)
	if !ok {
		return
	}
	horizon := intQuery(c, "horizon", 0)

	report, err := h.service.ComprehensiveForecast(c.Request.Context(), productID, marketID, horizon)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetCorrelationMatrix computes pairwise log-return correlations for a
// comma-separated product list within one market.
func (h *AnalyticsHandler) GetCorrelationMatrix(c *gin.Context) {
	marketID, err := strconv.ParseInt(c.Query("market_id"), 10, 64)
	if err != nil || marketID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "market_id parameter is required"})
		return
	}

	rawProducts := c.Query("products")
	if rawProducts == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "products parameter is required"})
		return
	}
	var productIDs []int64
	for _, part := range strings.Split(rawProducts, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "products must be a comma-separated list of product ids"})
			return
		}
		productIDs = append(productIDs, id)
	}
	if len(productIDs) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least two products are required"})
		return
	}

	matrix, err := h.service.CalculateCorrelationMatrix(c.Request.Context(), marketID, productIDs)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, matrix)
}

// GetIndicators returns the SMA/EMA/RSI snapshot for a series.
func (h *AnalyticsHandler) GetIndicators(c *gin.Context) {
	productID, marketID, ok := h.seriesParams(c)
	if !ok {
		return
	}
	period := intQuery(c, "period", 0)

	snapshot, err := h.service.IndicatorSnapshot(c.Request.Context(), productID, marketID, period)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// seriesParams parses the mandatory product_id and market_id query
// parameters, writing a 400 response itself on failure.
func (h *AnalyticsHandler) seriesParams(c *gin.Context) (productID, marketID int64, ok bool) {
	productID, err := strconv.ParseInt(c.Query("product_id"), 10, 64)
	if err != nil || productID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id parameter is required"})
		return 0, 0, false
	}
	marketID, err = strconv.ParseInt(c.Query("market_id"), 10, 64)
	if err != nil || marketID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "market_id parameter is required"})
		return 0, 0, false
	}
	return productID, marketID, true
}

// writeError maps service errors onto HTTP statuses. Short series are a
// client-resolvable condition and carry the required and actual counts.
func (h *AnalyticsHandler) writeError(c *gin.Context, err error) {
	var insufficient *analytics.InsufficientDataError
	switch {
	case errors.As(err, &insufficient):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":    insufficient.Error(),
			"required": insufficient.Required,
			"actual":   insufficient.Actual,
		})
	case errors.Is(err, services.ErrNoPriceData):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUnknownMethod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.WithError(err).Error("Analytics request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// intQuery parses an optional positive integer query parameter. Missing
// or malformed values yield the fallback; the service substitutes its
// configured default for non-positive inputs.
func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
