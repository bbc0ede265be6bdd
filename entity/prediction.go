package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Forecast methods.
const (
	MethodLinearRegression     = "linear_regression"
	MethodMovingAverage        = "moving_average"
	MethodExponentialSmoothing = "exponential_smoothing"
)

// PredictionPoint is one forecast value with an optional confidence band.
type PredictionPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Lower     *float64  `json:"lower,omitempty"`
	Upper     *float64  `json:"upper,omitempty"`
}

// Prediction is one forecast run. Later forecasts supersede earlier rows, they
// never update them.
type Prediction struct {
	ID               uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	GeneratedAt      time.Time      `json:"generated_at" gorm:"not null;index"`
	MetricName       string         `json:"metric_name" gorm:"not null;index"`
	Method           string         `json:"method" gorm:"not null"`
	ForecastHorizon  string         `json:"forecast_horizon"`
	HistoricalWindow string         `json:"historical_window"`
	Points           datatypes.JSON `json:"points" gorm:"type:jsonb"` // []PredictionPoint
	ModelAccuracy    float64        `json:"model_accuracy"`
	ExpiresAt        time.Time      `json:"expires_at"`
}
