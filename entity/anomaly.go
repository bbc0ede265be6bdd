package entity

import (
	"time"

	"github.com/google/uuid"
)

// Anomaly classification.
const (
	AnomalyTypeSpike       = "spike"
	AnomalyTypeDrop        = "drop"
	AnomalyTypeOutlier     = "outlier"
	AnomalyTypeTrendChange = "trend_change"
	AnomalyTypeMissingData = "missing_data"
)

// AnomalyDetection is one append-only deviation record; only Acknowledged is
// ever mutated after insert.
type AnomalyDetection struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	MetricName     string    `json:"metric_name" gorm:"not null;index"`
	DetectedAt     time.Time `json:"detected_at" gorm:"not null;index"`
	Method         string    `json:"method" gorm:"not null"`
	Type           string    `json:"type" gorm:"not null"`
	Severity       string    `json:"severity" gorm:"not null;index"`
	ObservedValue  float64   `json:"observed_value"`
	ExpectedValue  float64   `json:"expected_value"`
	DeviationScore float64   `json:"deviation_score"`
	Confidence     float64   `json:"confidence"`
	BaselineWindow string    `json:"baseline_window"`
	Acknowledged   bool      `json:"acknowledged" gorm:"not null;default:false;index"`
}
