package repository

import (
	"github.com/google/uuid"
	"github.com/tnqbao/gau-observability/entity"
	"gorm.io/gorm"
)

type AnomalyRepository struct {
	db *gorm.DB
}

func NewAnomalyRepository(db *gorm.DB) *AnomalyRepository {
	return &AnomalyRepository{db: db}
}

func (r *AnomalyRepository) Create(anomaly *entity.AnomalyDetection) error {
	return r.db.Create(anomaly).Error
}

func (r *AnomalyRepository) FindByID(id uuid.UUID) (*entity.AnomalyDetection, error) {
	var anomaly entity.AnomalyDetection
	err := r.db.Where("id = ?", id).First(&anomaly).Error
	if err != nil {
		return nil, err
	}
	return &anomaly, nil
}

// List returns recent detections, newest first. metric narrows to one metric
// when non-empty; acknowledged filters on the flag when non-nil.
func (r *AnomalyRepository) List(metric string, acknowledged *bool, limit int) ([]entity.AnomalyDetection, error) {
	if limit <= 0 {
		limit = 100
	}
	query := r.db.Order("detected_at DESC").Limit(limit)
	if metric != "" {
		query = query.Where("metric_name = ?", metric)
	}
	if acknowledged != nil {
		query = query.Where("acknowledged = ?", *acknowledged)
	}

	var anomalies []entity.AnomalyDetection
	err := query.Find(&anomalies).Error
	if err != nil {
		return nil, err
	}
	return anomalies, nil
}

func (r *AnomalyRepository) Acknowledge(id uuid.UUID) error {
	return r.db.Model(&entity.AnomalyDetection{}).Where("id = ?", id).Update("acknowledged", true).Error
}
