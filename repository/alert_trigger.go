package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-observability/entity"
	"gorm.io/gorm"
)

type AlertTriggerRepository struct {
	db *gorm.DB
}

func NewAlertTriggerRepository(db *gorm.DB) *AlertTriggerRepository {
	return &AlertTriggerRepository{db: db}
}

func (r *AlertTriggerRepository) Create(trigger *entity.AlertTrigger) error {
	return r.db.Create(trigger).Error
}

func (r *AlertTriggerRepository) Update(trigger *entity.AlertTrigger) error {
	return r.db.Save(trigger).Error
}

// FindOpen returns the open (status=triggered) row for an alert, or nil when
// there is none. An alert has at most one open row at a time.
func (r *AlertTriggerRepository) FindOpen(alertID uuid.UUID) (*entity.AlertTrigger, error) {
	var trigger entity.AlertTrigger
	err := r.db.
		Where("alert_id = ? AND status = ?", alertID, entity.TriggerStatusTriggered).
		Order("triggered_at DESC").
		First(&trigger).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &trigger, nil
}

func (r *AlertTriggerRepository) Resolve(id uuid.UUID, at time.Time) error {
	return r.db.Model(&entity.AlertTrigger{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":      entity.TriggerStatusResolved,
		"resolved_at": at,
	}).Error
}

func (r *AlertTriggerRepository) ListByAlertID(alertID uuid.UUID, limit int) ([]entity.AlertTrigger, error) {
	if limit <= 0 {
		limit = 100
	}
	var triggers []entity.AlertTrigger
	err := r.db.
		Where("alert_id = ?", alertID).
		Order("triggered_at DESC").
		Limit(limit).
		Find(&triggers).Error
	if err != nil {
		return nil, err
	}
	return triggers, nil
}
