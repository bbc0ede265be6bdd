package dto

import "github.com/tnqbao/gau-observability/entity"

type DashboardPanelDTO struct {
	Title               string                 `json:"title" binding:"required"`
	Type                string                 `json:"type,omitempty"`
	Query               entity.AnalyticsQuery  `json:"query"`
	VisualizationConfig map[string]interface{} `json:"visualization_config,omitempty"`
	GridX               int                    `json:"grid_x"`
	GridY               int                    `json:"grid_y"`
	GridW               int                    `json:"grid_w"`
	GridH               int                    `json:"grid_h"`
}

type CreateDashboardRequestDTO struct {
	Name            string              `json:"name" binding:"required"`
	Tags            []string            `json:"tags,omitempty"`
	RefreshInterval string              `json:"refresh_interval,omitempty"`
	TimeRange       string              `json:"time_range,omitempty"`
	Layout          string              `json:"layout,omitempty"`
	IsDefault       bool                `json:"is_default"`
	IsPublic        bool                `json:"is_public"`
	Panels          []DashboardPanelDTO `json:"panels,omitempty" binding:"dive"`
}

type UpdateDashboardRequestDTO struct {
	Name            *string             `json:"name,omitempty"`
	Tags            []string            `json:"tags,omitempty"`
	RefreshInterval *string             `json:"refresh_interval,omitempty"`
	TimeRange       *string             `json:"time_range,omitempty"`
	Layout          *string             `json:"layout,omitempty"`
	IsDefault       *bool               `json:"is_default,omitempty"`
	IsPublic        *bool               `json:"is_public,omitempty"`
	Panels          []DashboardPanelDTO `json:"panels,omitempty" binding:"omitempty,dive"`
}
