package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-observability/entity"
	"gorm.io/gorm"
)

type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Create(alert *entity.Alert) error {
	return r.db.Create(alert).Error
}

func (r *AlertRepository) FindByID(id uuid.UUID) (*entity.Alert, error) {
	var alert entity.Alert
	err := r.db.Preload("Channels").Where("id = ?", id).First(&alert).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *AlertRepository) List() ([]entity.Alert, error) {
	var alerts []entity.Alert
	err := r.db.Preload("Channels").Order("created_at DESC").Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

// ListForEvaluation fetches enabled alerts whose silence window has elapsed.
// Silencing is enforced here at fetch time; nothing reverts the status field.
func (r *AlertRepository) ListForEvaluation(now time.Time) ([]entity.Alert, error) {
	var alerts []entity.Alert
	err := r.db.Preload("Channels").
		Where("enabled = ?", true).
		Where("silence_until IS NULL OR silence_until < ?", now).
		Order("created_at ASC").
		Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *AlertRepository) Update(alert *entity.Alert) error {
	return r.db.Save(alert).Error
}

func (r *AlertRepository) UpdateStatus(id uuid.UUID, status string) error {
	return r.db.Model(&entity.Alert{}).Where("id = ?", id).Update("status", status).Error
}

func (r *AlertRepository) Silence(id uuid.UUID, until time.Time) error {
	return r.db.Model(&entity.Alert{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        entity.AlertStatusSilenced,
		"silence_until": until,
	}).Error
}

func (r *AlertRepository) SetEnabled(id uuid.UUID, enabled bool) error {
	return r.db.Model(&entity.Alert{}).Where("id = ?", id).Update("enabled", enabled).Error
}

func (r *AlertRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&entity.Alert{}, "id = ?", id).Error
}
