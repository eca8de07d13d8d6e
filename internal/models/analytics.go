package models

import "time"

// Trend labels, ordered from no-signal to strongest signal.
const (
	TrendInsufficientData   = "insufficient_data"
	TrendStable             = "stable"
	TrendIncreasing         = "increasing"
	TrendStronglyIncreasing = "strongly_increasing"
	TrendDecreasing         = "decreasing"
	TrendStronglyDecreasing = "strongly_decreasing"
)

// Volatility interpretation labels.
const (
	VolatilityLow    = "low"
	VolatilityMedium = "medium"
	VolatilityHigh   = "high"
)

// TrendResult describes price direction over a lookback window. Slope and
// rSquared come from the regression; PercentChange is computed from the
// first and last window prices and is an independent signal.
type TrendResult struct {
	Label         string  `json:"label"`
	Slope         float64 `json:"slope"`
	Intercept     float64 `json:"intercept"`
	RSquared      float64 `json:"r_squared"`
	PercentChange float64 `json:"percent_change"`
	Confidence    float64 `json:"confidence"`
	WindowDays    int     `json:"window_days"`
	Observations  int     `json:"observations"`
}

// VolatilityResult describes relative price dispersion over a window.
type VolatilityResult struct {
	Volatility        float64 `json:"volatility"`
	AveragePrice      float64 `json:"average_price"`
	StandardDeviation float64 `json:"standard_deviation"`
	Interpretation    string  `json:"interpretation"`
	WindowDays        int     `json:"window_days"`
	Observations      int     `json:"observations"`
}

// SeasonalPattern is one candidate period's measured self-similarity.
type SeasonalPattern struct {
	PeriodDays   int     `json:"period_days"`
	PeriodType   string  `json:"period_type"` // weekly, monthly, quarterly
	Correlation  float64 `json:"correlation"`
	Significance string  `json:"significance"` // high, medium, low
}

// SeasonalityResult reports whether a periodic pattern exists and at what
// period. Patterns are sorted by correlation descending.
type SeasonalityResult struct {
	HasSeasonality bool              `json:"has_seasonality"`
	Confidence     float64           `json:"confidence"`
	Patterns       []SeasonalPattern `json:"patterns"`
	Observations   int               `json:"observations"`
}

// Anomaly is a view over an observation that is statistically distant from
// the series mean.
type Anomaly struct {
	Observation      PriceObservation `json:"observation"`
	ZScore           float64          `json:"z_score"`
	Deviation        float64          `json:"deviation"`
	PercentDeviation float64          `json:"percent_deviation"`
}

// Forecast method identifiers.
const (
	MethodMovingAverage         = "moving_average"
	MethodWeightedMovingAverage = "weighted_moving_average"
	MethodLinearRegression      = "linear_regression"
	MethodExponentialSmoothing  = "exponential_smoothing"
	MethodSeasonal              = "seasonal"
	MethodEnsemble              = "ensemble"
)

// Confidence provenance. Fixed heuristic constants and regression fit
// quality are not comparable quantities; callers weighting by confidence
// need to know which one they are looking at.
const (
	ConfidenceFixed         = "fixed"
	ConfidenceRegressionFit = "regression_fit"
	ConfidenceDerived       = "derived"
)

// Prediction is a single projected price for one future day. Components is
// populated only for ensemble predictions and holds the per-method prices
// that were blended.
type Prediction struct {
	Date            time.Time          `json:"date"`
	Price           float64            `json:"price"`
	Method          string             `json:"method"`
	Confidence      float64            `json:"confidence"`
	ConfidenceBasis string             `json:"confidence_basis"`
	Components      map[string]float64 `json:"components,omitempty"`
}

// ForecastResult is the output of one forecasting run.
type ForecastResult struct {
	Method       string       `json:"method"`
	HorizonDays  int          `json:"horizon_days"`
	LastObserved float64      `json:"last_observed"`
	LastDate     time.Time    `json:"last_date"`
	Predictions  []Prediction `json:"predictions"`
	GeneratedAt  time.Time    `json:"generated_at"`
}

// Purchase-timing recommendations derived from projected percent change.
const (
	RecommendationDelayPurchase      = "prices_expected_to_fall_consider_delaying_purchase"
	RecommendationMildDecrease       = "mild_price_decrease_expected"
	RecommendationMildIncrease       = "mild_price_increase_expected"
	RecommendationAcceleratePurchase = "prices_expected_to_rise_consider_accelerating_purchase"
)

// ForecastReport is the comprehensive caller-facing forecast: the primary
// forecast (ensemble, or the seasonal method when seasonality confidence is
// high), the seasonality analysis that drove the choice, and a purchase
// recommendation.
type ForecastReport struct {
	Forecast           *ForecastResult    `json:"forecast"`
	Seasonality        *SeasonalityResult `json:"seasonality"`
	UsedSeasonalMethod bool               `json:"used_seasonal_method"`
	ProjectedChangePct float64            `json:"projected_change_pct"`
	Recommendation     string             `json:"recommendation"`
	GeneratedAt        time.Time          `json:"generated_at"`
}

// PriceCorrelationMatrix holds pairwise log-return correlations across
// products within one market.
type PriceCorrelationMatrix struct {
	MarketID    int64       `json:"market_id"`
	ProductIDs  []int64     `json:"product_ids"`
	Matrix      [][]float64 `json:"matrix"`
	WindowSize  int         `json:"window_size"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// IndicatorSnapshot is a supplementary technical-indicator view over the
// same price series the analytics engine consumes.
type IndicatorSnapshot struct {
	ProductID   int64     `json:"product_id"`
	MarketID    int64     `json:"market_id"`
	SMA         float64   `json:"sma"`
	EMA         float64   `json:"ema"`
	RSI         float64   `json:"rsi"`
	Period      int       `json:"period"`
	LastPrice   float64   `json:"last_price"`
	GeneratedAt time.Time `json:"generated_at"`
}
