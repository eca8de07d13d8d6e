package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 6379, cfg.Redis.Port)

	a := cfg.Analytics
	assert.Equal(t, 30, a.TrendLookbackDays)
	assert.Equal(t, 30, a.VolatilityLookbackDays)
	assert.Equal(t, 2.5, a.AnomalyZThreshold)
	assert.Equal(t, 90, a.AnomalyLookbackDays)
	assert.Equal(t, 7, a.ForecastHorizonDays)
	assert.Equal(t, 14, a.ForecastWindow)
	assert.Equal(t, 0.3, a.SmoothingFactor)
	assert.Equal(t, 7, a.SeasonalPeriod)
	assert.Equal(t, 30, a.SeasonalityMinPoints)
	assert.Equal(t, 14, a.EnsembleMinPoints)
	assert.True(t, a.EnableCache)
}

func TestLoadEnvOverride(t *testing.T) {
	viper.Reset()
	t.Setenv("ANALYTICS_FORECAST_HORIZON_DAYS", "10")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Analytics.ForecastHorizonDays)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestValidateConfigRejectsBadKnobs(t *testing.T) {
	base := func() *Config {
		return &Config{
			Environment: "development",
			Analytics: AnalyticsConfig{
				SmoothingFactor:     0.3,
				AnomalyZThreshold:   2.5,
				ForecastHorizonDays: 7,
			},
		}
	}

	cfg := base()
	require.NoError(t, validateConfig(cfg))

	cfg = base()
	cfg.Analytics.SmoothingFactor = 1.5
	assert.Error(t, validateConfig(cfg))

	cfg = base()
	cfg.Analytics.AnomalyZThreshold = -1
	assert.Error(t, validateConfig(cfg))

	cfg = base()
	cfg.Analytics.ForecastHorizonDays = 0
	assert.Error(t, validateConfig(cfg))
}

func TestValidateConfigProductionPassword(t *testing.T) {
	cfg := &Config{
		Environment: "production",
		Database:    DatabaseConfig{Password: "change-me-in-production"},
		Analytics: AnalyticsConfig{
			SmoothingFactor:     0.3,
			AnomalyZThreshold:   2.5,
			ForecastHorizonDays: 7,
		},
	}
	assert.Error(t, validateConfig(cfg))

	cfg.Database.Password = "a-real-secret"
	assert.NoError(t, validateConfig(cfg))
}
