package repository

import (
	"github.com/tnqbao/gau-observability/entity"
	"gorm.io/gorm"
)

type PredictionRepository struct {
	db *gorm.DB
}

func NewPredictionRepository(db *gorm.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) Create(prediction *entity.Prediction) error {
	return r.db.Create(prediction).Error
}

func (r *PredictionRepository) ListByMetric(metric string, limit int) ([]entity.Prediction, error) {
	if limit <= 0 {
		limit = 20
	}
	var predictions []entity.Prediction
	err := r.db.
		Where("metric_name = ?", metric).
		Order("generated_at DESC").
		Limit(limit).
		Find(&predictions).Error
	if err != nil {
		return nil, err
	}
	return predictions, nil
}
