package repository

import (
	"encoding/json"
	"time"

	"github.com/tnqbao/gau-observability/entity"
	"gorm.io/gorm"
)

type MetricRepository struct {
	db *gorm.DB
}

func NewMetricRepository(db *gorm.DB) *MetricRepository {
	return &MetricRepository{db: db}
}

func (r *MetricRepository) Create(sample *entity.MetricSample) error {
	return r.db.Create(sample).Error
}

func (r *MetricRepository) CreateBatch(samples []entity.MetricSample) error {
	if len(samples) == 0 {
		return nil
	}
	return r.db.CreateInBatches(samples, 500).Error
}

// ListByMetrics returns raw samples for the given metric names in [from, to),
// ordered by timestamp ascending.
func (r *MetricRepository) ListByMetrics(metrics []string, from, to time.Time) ([]entity.MetricSample, error) {
	var samples []entity.MetricSample
	err := r.db.
		Where("metric_name IN ?", metrics).
		Where("timestamp >= ? AND timestamp < ?", from, to).
		Order("timestamp ASC").
		Find(&samples).Error
	if err != nil {
		return nil, err
	}
	return samples, nil
}

// ListByMetric returns samples for one metric, optionally restricted to rows
// whose label set contains every pair in labels.
func (r *MetricRepository) ListByMetric(metric string, labels map[string]string, from, to time.Time) ([]entity.MetricSample, error) {
	query := r.db.
		Where("metric_name = ?", metric).
		Where("timestamp >= ? AND timestamp < ?", from, to)

	if len(labels) > 0 {
		labelJSON, err := json.Marshal(labels)
		if err != nil {
			return nil, err
		}
		query = query.Where("labels @> ?::jsonb", string(labelJSON))
	}

	var samples []entity.MetricSample
	err := query.Order("timestamp ASC").Find(&samples).Error
	if err != nil {
		return nil, err
	}
	return samples, nil
}

// ValuesInRange returns just the values for one metric ordered by timestamp.
func (r *MetricRepository) ValuesInRange(metric string, from, to time.Time) ([]float64, error) {
	var values []float64
	err := r.db.Model(&entity.MetricSample{}).
		Where("metric_name = ?", metric).
		Where("timestamp >= ? AND timestamp < ?", from, to).
		Order("timestamp ASC").
		Pluck("value", &values).Error
	if err != nil {
		return nil, err
	}
	return values, nil
}

// AverageValue computes AVG(value) over matching samples. Returns the sample
// count alongside so callers can distinguish "no data" from a real zero.
func (r *MetricRepository) AverageValue(metric string, labels map[string]string, from, to time.Time) (float64, int64, error) {
	query := r.db.Model(&entity.MetricSample{}).
		Where("metric_name = ?", metric).
		Where("timestamp >= ? AND timestamp < ?", from, to)

	if len(labels) > 0 {
		labelJSON, err := json.Marshal(labels)
		if err != nil {
			return 0, 0, err
		}
		query = query.Where("labels @> ?::jsonb", string(labelJSON))
	}

	var result struct {
		Avg   float64
		Count int64
	}
	err := query.Select("COALESCE(AVG(value), 0) AS avg, COUNT(*) AS count").Scan(&result).Error
	if err != nil {
		return 0, 0, err
	}
	return result.Avg, result.Count, nil
}

// DistinctMetricNames lists every metric observed in [from, to).
func (r *MetricRepository) DistinctMetricNames(from, to time.Time) ([]string, error) {
	var names []string
	err := r.db.Model(&entity.MetricSample{}).
		Where("timestamp >= ? AND timestamp < ?", from, to).
		Distinct("metric_name").
		Order("metric_name ASC").
		Pluck("metric_name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}
