package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MetricSample is one raw timestamped sample produced by the telemetry
// pipeline. Rows are append-only and never mutated.
type MetricSample struct {
	ID         uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	MetricName string            `json:"metric_name" binding:"required" gorm:"not null;index:idx_sample_metric_ts"`
	Value      float64           `json:"value" gorm:"not null"`
	Labels     datatypes.JSONMap `json:"labels" gorm:"type:jsonb"`
	Timestamp  time.Time         `json:"timestamp" binding:"required" gorm:"not null;index:idx_sample_metric_ts;index"`
}

// MetricAggregate is one pre-aggregated row written by the aggregator for a
// (metric, interval, window_start) bucket. Re-running aggregation for the same
// bucket is a no-op.
type MetricAggregate struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	MetricName  string    `json:"metric_name" gorm:"not null;uniqueIndex:idx_agg_bucket"`
	Interval    string    `json:"interval" gorm:"not null;uniqueIndex:idx_agg_bucket"`
	WindowStart time.Time `json:"window_start" gorm:"not null;uniqueIndex:idx_agg_bucket;index"`
	Count       int64     `json:"count" gorm:"not null"`
	Sum         float64   `json:"sum"`
	Min         float64   `json:"min"`
	Max         float64   `json:"max"`
	Avg         float64   `json:"avg"`
	P50         float64   `json:"p50"`
	P90         float64   `json:"p90"`
	P95         float64   `json:"p95"`
	P99         float64   `json:"p99"`
	StdDev      float64   `json:"stddev"`
	CreatedAt   time.Time `json:"created_at"`
}
