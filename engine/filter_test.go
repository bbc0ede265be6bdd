package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tnqbao/gau-observability/entity"
	"gorm.io/datatypes"
)

func filterSample() *entity.MetricSample {
	return &entity.MetricSample{
		MetricName: "http_requests",
		Value:      42.5,
		Labels:     datatypes.JSONMap{"host": "Web-01", "region": "eu-west"},
		Timestamp:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMatchesFiltersEmptyPasses(t *testing.T) {
	assert.True(t, MatchesFilters(filterSample(), nil))
}

func TestFilterEquality(t *testing.T) {
	sample := filterSample()

	assert.True(t, MatchesFilters(sample, []entity.FilterExpr{
		{Field: "metric_name", Operator: "eq", Value: "http_requests"},
	}))
	assert.True(t, MatchesFilters(sample, []entity.FilterExpr{
		{Field: "label.host", Operator: "eq", Value: "web-01"},
	}), "case-insensitive by default")
	assert.False(t, MatchesFilters(sample, []entity.FilterExpr{
		{Field: "label.host", Operator: "eq", Value: "web-01", CaseSensitive: true},
	}))
	assert.True(t, MatchesFilters(sample, []entity.FilterExpr{
		{Field: "label.host", Operator: "neq", Value: "db-01"},
	}))
}

func TestFilterNumericComparison(t *testing.T) {
	sample := filterSample()

	assert.True(t, MatchesFilters(sample, []entity.FilterExpr{
		{Field: "value", Operator: "gt", Value: 40},
	}))
	assert.True(t, MatchesFilters(sample, []entity.FilterExpr{
		{Field: "value", Operator: "lte", Value: 42.5},
	}))
	assert.False(t, MatchesFilters(sample, []entity.FilterExpr{
		{Field: "value", Operator: "lt", Value: "10"},
	}))
}

func TestFilterInNotIn(t *testing.T) {
	sample := filterSample()

	assert.True(t, MatchesFilters(sample, []entity.FilterExpr{
		{Field: "label.region", Operator: "in", Value: []interface{}{"us-east", "eu-west"}},
	}))
	assert.False(t, MatchesFilters(sample, []entity.FilterExpr{
		{Field: "label.region", Operator: "nin", Value: []interface{}{"us-east", "eu-west"}},
	}))
}

func TestFilterContainsAndRegex(t *testing.T) {
	sample := filterSample()

	assert.True(t, MatchesFilters(sample, []entity.FilterExpr{
		{Field: "metric_name", Operator: "contains", Value: "requests"},
	}))
	assert.True(t, MatchesFilters(sample, []entity.FilterExpr{
		{Field: "label.host", Operator: "regex", Value: `^web-\d+$`},
	}), "regex is case-insensitive by default")
	assert.False(t, MatchesFilters(sample, []entity.FilterExpr{
		{Field: "label.host", Operator: "regex", Value: `^web-\d+$`, CaseSensitive: true},
	}))
}

func TestFilterMissingFieldFails(t *testing.T) {
	sample := filterSample()

	assert.False(t, MatchesFilters(sample, []entity.FilterExpr{
		{Field: "label.missing", Operator: "eq", Value: "anything"},
	}))
	assert.False(t, MatchesFilters(sample, []entity.FilterExpr{
		{Field: "bogus", Operator: "eq", Value: "anything"},
	}))
}

func TestFilterUnknownOperatorFails(t *testing.T) {
	assert.False(t, MatchesFilters(filterSample(), []entity.FilterExpr{
		{Field: "value", Operator: "between", Value: 1},
	}))
}
