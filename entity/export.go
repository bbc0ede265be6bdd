package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Export job types and statuses.
const (
	ExportTypeScheduled = "scheduled"
	ExportTypeManual    = "manual"

	ExportStatusActive   = "active"
	ExportStatusPaused   = "paused"
	ExportStatusArchived = "archived"

	ExecutionStatusRunning = "running"
	ExecutionStatusSuccess = "success"
	ExecutionStatusFailed  = "failed"
)

// Export formats. Excel and parquet are degraded fallbacks: the bytes are CSV
// and JSON respectively, written under the renamed extension.
const (
	FormatCSV     = "csv"
	FormatJSON    = "json"
	FormatExcel   = "excel"
	FormatParquet = "parquet"
)

// Destination types.
const (
	DestinationLocal = "local"
	DestinationS3    = "s3"
	DestinationHTTP  = "http"
)

// BIExport is one export job. A job owns its execution history 1:N.
type BIExport struct {
	ID                uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	Name              string            `json:"name" binding:"required" gorm:"not null"`
	ExportType        string            `json:"export_type" binding:"required,oneof=scheduled manual" gorm:"not null;index"`
	Format            string            `json:"format" binding:"required" gorm:"not null"`
	Query             datatypes.JSON    `json:"query" gorm:"type:jsonb"` // AnalyticsQuery
	Schedule          string            `json:"schedule"`                // hourly | daily | weekly (stub interpretation)
	DestinationType   string            `json:"destination_type" gorm:"not null"`
	DestinationConfig datatypes.JSONMap `json:"destination_config" gorm:"type:jsonb"`
	Status            string            `json:"status" gorm:"not null;default:active;index"`
	NextRunAt         *time.Time        `json:"next_run_at,omitempty" gorm:"index"`
	Executions        []ExportExecution `json:"executions,omitempty" gorm:"foreignKey:ExportID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// ExportExecution is one run of an export job; rows are append-only history.
type ExportExecution struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	ExportID     uuid.UUID  `json:"export_id" gorm:"type:uuid;not null;index"`
	StartedAt    time.Time  `json:"started_at" gorm:"not null"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Status       string     `json:"status" gorm:"not null;index"`
	RowsExported int        `json:"rows_exported"`
	FilePath     string     `json:"file_path"`
	FileSize     int64      `json:"file_size"`
	Error        string     `json:"error,omitempty" gorm:"type:text"`
}
