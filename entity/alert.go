package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Alert statuses.
const (
	AlertStatusActive    = "active"
	AlertStatusTriggered = "triggered"
	AlertStatusSilenced  = "silenced"
	AlertStatusResolved  = "resolved"
)

// Trigger history statuses.
const (
	TriggerStatusTriggered = "triggered"
	TriggerStatusResolved  = "resolved"
)

// Notification channel types. The set is closed: buildChannel in the engine
// rejects anything else.
const (
	ChannelTypeLog     = "log"
	ChannelTypeWebhook = "webhook"
	ChannelTypeChat    = "chat"
	ChannelTypeEmail   = "email"
	ChannelTypePager   = "pager"
)

type Alert struct {
	ID                 uuid.UUID             `json:"id" gorm:"type:uuid;primaryKey"`
	Name               string                `json:"name" binding:"required" gorm:"not null"`
	Severity           string                `json:"severity" binding:"required,oneof=low medium high critical" gorm:"not null"`
	Metric             string                `json:"metric" binding:"required" gorm:"not null;index"`
	Operator           string                `json:"operator" binding:"required,oneof=gt lt gte lte eq neq" gorm:"not null"`
	Threshold          float64               `json:"threshold" gorm:"not null"`
	Duration           int                   `json:"duration" gorm:"not null"` // seconds the condition must hold before triggering
	EvaluationInterval int                   `json:"evaluation_interval" gorm:"not null"` // seconds between evaluations; 0 means every batch
	LabelFilter        datatypes.JSONMap     `json:"label_filter" gorm:"type:jsonb"`
	Channels           []NotificationChannel `json:"channels,omitempty" gorm:"foreignKey:AlertID;constraint:OnDelete:CASCADE"`
	Status             string                `json:"status" gorm:"not null;default:active;index"`
	SilenceUntil       *time.Time            `json:"silence_until,omitempty"`
	Enabled            bool                  `json:"enabled" gorm:"not null;default:true;index"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

type NotificationChannel struct {
	ID      uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	AlertID uuid.UUID      `json:"alert_id" gorm:"type:uuid;not null;index"`
	Type    string         `json:"type" binding:"required,oneof=log webhook chat email pager" gorm:"not null"`
	Name    string         `json:"name" binding:"required" gorm:"not null"`
	Enabled bool           `json:"enabled" gorm:"not null;default:true"`
	Config  datatypes.JSON `json:"config" gorm:"type:jsonb"`
}

// AlertTrigger is one trigger episode in the alert history. An alert has at
// most one open (status=triggered) row at a time.
type AlertTrigger struct {
	ID                   uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	AlertID              uuid.UUID      `json:"alert_id" gorm:"type:uuid;not null;index"`
	Severity             string         `json:"severity" gorm:"not null"`
	Status               string         `json:"status" gorm:"not null;index"`
	TriggeredAt          time.Time      `json:"triggered_at" gorm:"not null;index"`
	ResolvedAt           *time.Time     `json:"resolved_at,omitempty"`
	TriggerValue         float64        `json:"trigger_value"`
	Threshold            float64        `json:"threshold"`
	NotificationSent     bool           `json:"notification_sent"`
	NotificationChannels datatypes.JSON `json:"notification_channels" gorm:"type:jsonb"` // names of channels that succeeded
	NotificationError    string         `json:"notification_error,omitempty" gorm:"type:text"`
}
