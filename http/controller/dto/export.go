package dto

import "github.com/tnqbao/gau-observability/entity"

type CreateExportRequestDTO struct {
	Name              string                 `json:"name" binding:"required"`
	ExportType        string                 `json:"export_type" binding:"required,oneof=scheduled manual"`
	Format            string                 `json:"format" binding:"required,oneof=csv json excel parquet"`
	Query             entity.AnalyticsQuery  `json:"query" binding:"required"`
	Schedule          string                 `json:"schedule,omitempty"` // hourly | daily | weekly
	DestinationType   string                 `json:"destination_type" binding:"required,oneof=local s3 http"`
	DestinationConfig map[string]interface{} `json:"destination_config,omitempty"`
}
