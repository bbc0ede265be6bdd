package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseAggregationWindows(t *testing.T) {
	windows, err := ParseAggregationWindows("1m=24h,5m=168h,1h=720h")
	assert.NoError(t, err)
	assert.Len(t, windows, 3)

	assert.Equal(t, "1m", windows[0].Label)
	assert.Equal(t, time.Minute, windows[0].Interval)
	assert.Equal(t, 24*time.Hour, windows[0].Retention)
	assert.Equal(t, 720*time.Hour, windows[2].Retention)
}

func TestParseAggregationWindowsInvalid(t *testing.T) {
	for _, spec := range []string{"", "1m", "bogus=24h", "1m=bogus", "1m=-24h", "0s=24h"} {
		_, err := ParseAggregationWindows(spec)
		assert.ErrorIs(t, err, ErrInvalidInterval, "spec=%q", spec)
	}
}

func TestComputeAggregate(t *testing.T) {
	windowStart := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	values := []float64{10, 20, 30, 40, 50}

	agg := ComputeAggregate("cpu_usage", "1m", windowStart, values)

	assert.Equal(t, "cpu_usage", agg.MetricName)
	assert.Equal(t, "1m", agg.Interval)
	assert.Equal(t, windowStart, agg.WindowStart)
	assert.Equal(t, int64(5), agg.Count)
	assert.Equal(t, 150.0, agg.Sum)
	assert.Equal(t, 10.0, agg.Min)
	assert.Equal(t, 50.0, agg.Max)
	assert.Equal(t, 30.0, agg.Avg)
	assert.Equal(t, 30.0, agg.P50)
	assert.Equal(t, 50.0, agg.P99)
	assert.InDelta(t, 14.142, agg.StdDev, 0.001)
}
