package dto

type NotificationChannelDTO struct {
	Type    string                 `json:"type" binding:"required,oneof=log webhook chat email pager"`
	Name    string                 `json:"name" binding:"required"`
	Enabled *bool                  `json:"enabled,omitempty"`
	Config  map[string]interface{} `json:"config,omitempty"`
}

type CreateAlertRequestDTO struct {
	Name               string                   `json:"name" binding:"required"`
	Severity           string                   `json:"severity" binding:"required,oneof=low medium high critical"`
	Metric             string                   `json:"metric" binding:"required"`
	Operator           string                   `json:"operator" binding:"required,oneof=gt lt gte lte eq neq"`
	Threshold          float64                  `json:"threshold"`
	Duration           int                      `json:"duration" binding:"min=0"` // seconds
	EvaluationInterval int                      `json:"evaluation_interval" binding:"min=0"`
	LabelFilter        map[string]interface{}   `json:"label_filter,omitempty"`
	Channels           []NotificationChannelDTO `json:"channels,omitempty" binding:"dive"`
}

type UpdateAlertRequestDTO struct {
	Name               *string                  `json:"name,omitempty"`
	Severity           *string                  `json:"severity,omitempty" binding:"omitempty,oneof=low medium high critical"`
	Operator           *string                  `json:"operator,omitempty" binding:"omitempty,oneof=gt lt gte lte eq neq"`
	Threshold          *float64                 `json:"threshold,omitempty"`
	Duration           *int                     `json:"duration,omitempty" binding:"omitempty,min=0"`
	EvaluationInterval *int                     `json:"evaluation_interval,omitempty" binding:"omitempty,min=0"`
	LabelFilter        map[string]interface{}   `json:"label_filter,omitempty"`
	Channels           []NotificationChannelDTO `json:"channels,omitempty" binding:"omitempty,dive"`
	Enabled            *bool                    `json:"enabled,omitempty"`
}

type SilenceAlertRequestDTO struct {
	DurationMinutes int `json:"duration_minutes" binding:"required,min=1"`
}
