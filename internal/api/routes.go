package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/agrilink/pricewatch/internal/api/handlers"
	"github.com/agrilink/pricewatch/internal/database"
	"github.com/agrilink/pricewatch/internal/middleware"
	"github.com/agrilink/pricewatch/internal/services"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Services  Services  `json:"services"`
}

type Services struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

func SetupRoutes(router *gin.Engine, db *database.PostgresDB, redis *database.RedisClient, analysisService *services.PriceAnalysisService, logger *logrus.Logger) {
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))

	// Health check endpoint
	router.GET("/health", healthCheck(db, redis))

	analyticsHandler := handlers.NewAnalyticsHandler(analysisService, logger)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		analytics := v1.Group("/analytics")
		{
			analytics.GET("/trend", analyticsHandler.GetTrend)
			analytics.GET("/volatility", analyticsHandler.GetVolatility)
			analytics.GET("/anomalies", analyticsHandler.GetAnomalies)
			analytics.GET("/seasonality", analyticsHandler.GetSeasonality)
			analytics.GET("/forecast", analyticsHandler.GetForecast)
			analytics.GET("/comprehensive", analyticsHandler.GetComprehensiveForecast)
			analytics.GET("/correlation", analyticsHandler.GetCorrelationMatrix)
			analytics.GET("/indicators", analyticsHandler.GetIndicators)
		}
	}
}

func healthCheck(db *database.PostgresDB, redis *database.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
			Version:   "1.0.0",
			Services: Services{
				Database: "ok",
				Redis:    "ok",
			},
		}

		// Check database health
		if db == nil || db.HealthCheck(c.Request.Context()) != nil {
			response.Services.Database = "error"
			response.Status = "degraded"
		}

		// The cache is optional; a missing client is reported but does not
		// degrade overall status.
		if redis == nil {
			response.Services.Redis = "disabled"
		} else if err := redis.HealthCheck(c.Request.Context()); err != nil {
			response.Services.Redis = "error"
			response.Status = "degraded"
		}

		statusCode := http.StatusOK
		if response.Status == "degraded" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, response)
	}
}
