package repository

import (
	"time"

	"github.com/tnqbao/gau-observability/entity"
	"gorm.io/gorm"
)

type AggregateRepository struct {
	db *gorm.DB
}

func NewAggregateRepository(db *gorm.DB) *AggregateRepository {
	return &AggregateRepository{db: db}
}

func (r *AggregateRepository) Create(aggregate *entity.MetricAggregate) error {
	return r.db.Create(aggregate).Error
}

func (r *AggregateRepository) ExistsForWindow(metric, interval string, windowStart time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&entity.MetricAggregate{}).
		Where("metric_name = ? AND interval = ? AND window_start = ?", metric, interval, windowStart).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AggregateRepository) ListByMetricInterval(metric, interval string, from, to time.Time) ([]entity.MetricAggregate, error) {
	var aggregates []entity.MetricAggregate
	err := r.db.
		Where("metric_name = ? AND interval = ?", metric, interval).
		Where("window_start >= ? AND window_start < ?", from, to).
		Order("window_start ASC").
		Find(&aggregates).Error
	if err != nil {
		return nil, err
	}
	return aggregates, nil
}

// DeleteOlderThan enforces retention for one window interval.
func (r *AggregateRepository) DeleteOlderThan(interval string, cutoff time.Time) (int64, error) {
	result := r.db.
		Where("interval = ? AND window_start < ?", interval, cutoff).
		Delete(&entity.MetricAggregate{})
	return result.RowsAffected, result.Error
}
