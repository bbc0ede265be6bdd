package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tnqbao/gau-observability/entity"
	"gorm.io/datatypes"
)

func TestCacheKeyOrderInvariance(t *testing.T) {
	a := entity.AnalyticsQuery{
		Metrics:      []string{"cpu_usage", "mem_usage"},
		Dimensions:   []string{"host", "region"},
		Aggregations: []string{"avg", "p95"},
		TimeRange:    entity.TimeRange{Relative: "6h"},
	}
	b := entity.AnalyticsQuery{
		Metrics:      []string{"mem_usage", "cpu_usage"},
		Dimensions:   []string{"region", "host"},
		Aggregations: []string{"p95", "avg"},
		TimeRange:    entity.TimeRange{Relative: "6h"},
	}

	keyA, _ := CacheKey(a)
	keyB, _ := CacheKey(b)
	assert.Equal(t, keyA, keyB)
}

func TestCacheKeyDiffersByRange(t *testing.T) {
	a := entity.AnalyticsQuery{Metrics: []string{"cpu_usage"}, TimeRange: entity.TimeRange{Relative: "6h"}}
	b := entity.AnalyticsQuery{Metrics: []string{"cpu_usage"}, TimeRange: entity.TimeRange{Relative: "24h"}}

	keyA, _ := CacheKey(a)
	keyB, _ := CacheKey(b)
	assert.NotEqual(t, keyA, keyB)
}

func TestNormalizeQueryDefaults(t *testing.T) {
	normalized := normalizeQuery(entity.AnalyticsQuery{Metrics: []string{"cpu_usage"}})

	assert.Equal(t, entity.GranularityMinute, normalized.Granularity)
	assert.Equal(t, []string{entity.AggAvg}, normalized.Aggregations)
}

func TestAggregateSamplesBucketsAndValues(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 30, 0, time.UTC)
	samples := []entity.MetricSample{
		{MetricName: "cpu_usage", Value: 10, Timestamp: base},
		{MetricName: "cpu_usage", Value: 30, Timestamp: base.Add(10 * time.Second)},
		{MetricName: "cpu_usage", Value: 50, Timestamp: base.Add(time.Minute)},
	}
	query := entity.AnalyticsQuery{
		Metrics:      []string{"cpu_usage"},
		Granularity:  entity.GranularityMinute,
		Aggregations: []string{entity.AggAvg, entity.AggMax},
	}

	points := aggregateSamples(samples, query)

	assert.Len(t, points, 2)
	first := points[0]
	if first.Timestamp.After(points[1].Timestamp) {
		first = points[1]
	}
	assert.Equal(t, 20.0, first.Values["cpu_usage:avg"])
	assert.Equal(t, 30.0, first.Values["cpu_usage:max"])
}

func TestAggregateSamplesGroupsByDimension(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	samples := []entity.MetricSample{
		{MetricName: "cpu_usage", Value: 10, Timestamp: base, Labels: datatypes.JSONMap{"host": "a"}},
		{MetricName: "cpu_usage", Value: 90, Timestamp: base, Labels: datatypes.JSONMap{"host": "b"}},
	}
	query := entity.AnalyticsQuery{
		Metrics:      []string{"cpu_usage"},
		Dimensions:   []string{"host"},
		Granularity:  entity.GranularityMinute,
		Aggregations: []string{entity.AggAvg},
	}

	points := aggregateSamples(samples, query)
	assert.Len(t, points, 2)

	byHost := map[string]float64{}
	for _, p := range points {
		byHost[p.Labels["host"]] = p.Values["cpu_usage:avg"]
	}
	assert.Equal(t, 10.0, byHost["a"])
	assert.Equal(t, 90.0, byHost["b"])
}

func TestApplyAggregation(t *testing.T) {
	values := []float64{1, 2, 3, 4}

	assert.Equal(t, 10.0, applyAggregation(values, entity.AggSum))
	assert.Equal(t, 2.5, applyAggregation(values, entity.AggAvg))
	assert.Equal(t, 4.0, applyAggregation(values, entity.AggCount))
	assert.Equal(t, 1.0, applyAggregation(values, entity.AggMin))
	assert.Equal(t, 4.0, applyAggregation(values, entity.AggMax))
	assert.Equal(t, 2.0, applyAggregation(values, entity.AggP50))
}

func TestSortPoints(t *testing.T) {
	early := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)
	points := []entity.AggregatedDataPoint{
		{Timestamp: late, Values: map[string]float64{"cpu_usage:avg": 1}},
		{Timestamp: early, Values: map[string]float64{"cpu_usage:avg": 9}},
	}

	sortPoints(points, "")
	assert.Equal(t, early, points[0].Timestamp)

	sortPoints(points, "timestamp desc")
	assert.Equal(t, late, points[0].Timestamp)

	sortPoints(points, "cpu_usage:avg desc")
	assert.Equal(t, 9.0, points[0].Values["cpu_usage:avg"])
}

func TestSortPointsBlankOrderBy(t *testing.T) {
	early := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)
	points := []entity.AggregatedDataPoint{
		{Timestamp: late, Values: map[string]float64{"cpu_usage:avg": 1}},
		{Timestamp: early, Values: map[string]float64{"cpu_usage:avg": 9}},
	}

	assert.NotPanics(t, func() {
		sortPoints(points, " ")
	})
	assert.Equal(t, early, points[0].Timestamp)

	sortPoints(points, "\t  ")
	assert.Equal(t, early, points[0].Timestamp)
}
