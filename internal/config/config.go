package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config aggregates all configuration settings for the application.
type Config struct {
	// Environment indicates the running environment (e.g., "development", "production").
	Environment string `mapstructure:"environment"`
	// LogLevel sets the global logging verbosity.
	LogLevel string `mapstructure:"log_level"`
	// Server holds configuration for the HTTP server.
	Server ServerConfig `mapstructure:"server"`
	// Database holds configuration for the database connection.
	Database DatabaseConfig `mapstructure:"database"`
	// Redis holds configuration for the Redis connection.
	Redis RedisConfig `mapstructure:"redis"`
	// Analytics holds configuration for the price analytics engine.
	Analytics AnalyticsConfig `mapstructure:"analytics"`
}

// ServerConfig defines the HTTP server settings.
type ServerConfig struct {
	// Port is the TCP port the server listens on.
	Port int `mapstructure:"port"`
	// AllowedOrigins is a list of CORS allowed origins.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig defines the PostgreSQL database connection settings.
type DatabaseConfig struct {
	// Host is the database server hostname or IP.
	Host string `mapstructure:"host"`
	// Port is the database server port.
	Port int `mapstructure:"port"`
	// User is the database username.
	User string `mapstructure:"user"`
	// Password is the database password.
	Password string `mapstructure:"password"`
	// DBName is the name of the database to connect to.
	DBName string `mapstructure:"dbname"`
	// SSLMode defines the SSL connection mode.
	SSLMode string `mapstructure:"sslmode"`
	// DatabaseURL is a connection string that can override individual fields.
	DatabaseURL string `mapstructure:"database_url"`
	// MaxOpenConns is the maximum number of open connections.
	MaxOpenConns int `mapstructure:"max_open_conns"`
}

// RedisConfig defines the Redis connection settings.
type RedisConfig struct {
	// Host is the Redis server hostname.
	Host string `mapstructure:"host"`
	// Port is the Redis server port.
	Port int `mapstructure:"port"`
	// Password is the Redis authentication password.
	Password string `mapstructure:"password"`
	// DB is the Redis database index to use.
	DB int `mapstructure:"db"`
}

// AnalyticsConfig defines tuning knobs for the analytics engine. Every
// value can be overridden per request; these are the fallbacks applied
// when a request leaves a knob unset.
type AnalyticsConfig struct {
	TrendLookbackDays      int     `mapstructure:"trend_lookback_days"`
	VolatilityLookbackDays int     `mapstructure:"volatility_lookback_days"`
	AnomalyZThreshold      float64 `mapstructure:"anomaly_z_threshold"`
	AnomalyLookbackDays    int     `mapstructure:"anomaly_lookback_days"`
	ForecastHorizonDays    int     `mapstructure:"forecast_horizon_days"`
	ForecastWindow         int     `mapstructure:"forecast_window"`
	SmoothingFactor        float64 `mapstructure:"smoothing_factor"`
	SeasonalPeriod         int     `mapstructure:"seasonal_period"`
	SeasonalityMinPoints   int     `mapstructure:"seasonality_min_points"`
	EnsembleMinPoints      int     `mapstructure:"ensemble_min_points"`
	SeriesLookbackLimit    int     `mapstructure:"series_lookback_limit"`
	CorrelationMinPoints   int     `mapstructure:"correlation_min_points"`
	IndicatorPeriod        int     `mapstructure:"indicator_period"`
	CacheTTL               string  `mapstructure:"cache_ttl"`
	EnableCache            bool    `mapstructure:"enable_cache"`
}

// Load reads the configuration from the config file and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Bind standard DATABASE_URL
	_ = viper.BindEnv("database.database_url", "DATABASE_URL")

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults initializes the default configuration values in Viper.
func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "change-me-in-production")
	viper.SetDefault("database.dbname", "pricewatch")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.database_url", "")
	viper.SetDefault("database.max_open_conns", 25)

	// Redis
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Analytics
	viper.SetDefault("analytics.trend_lookback_days", 30)
	viper.SetDefault("analytics.volatility_lookback_days", 30)
	viper.SetDefault("analytics.anomaly_z_threshold", 2.5)
	viper.SetDefault("analytics.anomaly_lookback_days", 90)
	viper.SetDefault("analytics.forecast_horizon_days", 7)
	viper.SetDefault("analytics.forecast_window", 14)
	viper.SetDefault("analytics.smoothing_factor", 0.3)
	viper.SetDefault("analytics.seasonal_period", 7)
	viper.SetDefault("analytics.seasonality_min_points", 30)
	viper.SetDefault("analytics.ensemble_min_points", 14)
	viper.SetDefault("analytics.series_lookback_limit", 365)
	viper.SetDefault("analytics.correlation_min_points", 10)
	viper.SetDefault("analytics.indicator_period", 14)
	viper.SetDefault("analytics.cache_ttl", "5m")
	viper.SetDefault("analytics.enable_cache", true)
}

// validateConfig validates critical operational settings.
func validateConfig(config *Config) error {
	if config.Environment == "production" || config.Environment == "staging" {
		if config.Database.Password == "change-me-in-production" && config.Database.DatabaseURL == "" {
			return fmt.Errorf("database password must be set in %s environment", config.Environment)
		}
	}

	a := config.Analytics
	if a.SmoothingFactor <= 0 || a.SmoothingFactor > 1 {
		return fmt.Errorf("analytics.smoothing_factor must be in (0, 1], got %v", a.SmoothingFactor)
	}
	if a.AnomalyZThreshold <= 0 {
		return fmt.Errorf("analytics.anomaly_z_threshold must be positive, got %v", a.AnomalyZThreshold)
	}
	if a.ForecastHorizonDays <= 0 {
		return fmt.Errorf("analytics.forecast_horizon_days must be positive, got %d", a.ForecastHorizonDays)
	}

	return nil
}
