package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Dashboard owns its panels exclusively: deleting a dashboard deletes them.
type Dashboard struct {
	ID              uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	Name            string           `json:"name" binding:"required" gorm:"not null"`
	Tags            datatypes.JSON   `json:"tags" gorm:"type:jsonb"` // []string
	RefreshInterval string           `json:"refresh_interval"`
	TimeRange       string           `json:"time_range"` // relative duration string, e.g. "6h"
	Layout          string           `json:"layout"`
	IsDefault       bool             `json:"is_default" gorm:"not null;default:false"`
	IsPublic        bool             `json:"is_public" gorm:"not null;default:false"`
	Panels          []DashboardPanel `json:"panels,omitempty" gorm:"foreignKey:DashboardID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// DashboardPanel embeds its query by value, not by reference.
type DashboardPanel struct {
	ID                  uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	DashboardID         uuid.UUID      `json:"dashboard_id" gorm:"type:uuid;not null;index"`
	Title               string         `json:"title" binding:"required" gorm:"not null"`
	Type                string         `json:"type" gorm:"not null"` // timeseries, gauge, table, stat, heatmap, pie, bar
	Query               datatypes.JSON `json:"query" gorm:"type:jsonb"` // AnalyticsQuery
	VisualizationConfig datatypes.JSON `json:"visualization_config" gorm:"type:jsonb"`
	GridX               int            `json:"grid_x"`
	GridY               int            `json:"grid_y"`
	GridW               int            `json:"grid_w"`
	GridH               int            `json:"grid_h"`
	Position            int            `json:"position" gorm:"not null;default:0"` // ordering within the dashboard
}
