package dto

import "time"

type MetricSampleDTO struct {
	MetricName string            `json:"metric_name" binding:"required"`
	Value      float64           `json:"value"`
	Labels     map[string]string `json:"labels,omitempty"`
	Timestamp  *time.Time        `json:"timestamp,omitempty"` // defaults to ingestion time
}

type IngestMetricsRequestDTO struct {
	Samples []MetricSampleDTO `json:"samples" binding:"required,min=1,dive"`
}
