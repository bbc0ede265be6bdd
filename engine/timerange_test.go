package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tnqbao/gau-observability/entity"
)

func TestParseRelativeRange(t *testing.T) {
	assert.Equal(t, 30*time.Second, ParseRelativeRange("30s"))
	assert.Equal(t, 15*time.Minute, ParseRelativeRange("15m"))
	assert.Equal(t, 6*time.Hour, ParseRelativeRange("6h"))
	assert.Equal(t, 7*24*time.Hour, ParseRelativeRange("7d"))
}

func TestParseRelativeRangeMalformedDefaultsToOneHour(t *testing.T) {
	for _, relative := range []string{"", "abc", "h6", "6w", "-6h", "6.5h", "6 h"} {
		assert.Equal(t, time.Hour, ParseRelativeRange(relative), "input=%q", relative)
	}
}

func TestResolveTimeRangeAbsoluteWins(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	start := now.Add(-48 * time.Hour)
	end := now.Add(-24 * time.Hour)

	from, to := ResolveTimeRange(entity.TimeRange{Relative: "6h", Start: &start, End: &end}, now)
	assert.Equal(t, start, from)
	assert.Equal(t, end, to)
}

func TestResolveTimeRangeRelative(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	from, to := ResolveTimeRange(entity.TimeRange{Relative: "6h"}, now)
	assert.Equal(t, now.Add(-6*time.Hour), from)
	assert.Equal(t, now, to)
}

func TestTruncateToGranularity(t *testing.T) {
	// A Thursday.
	ts := time.Date(2026, 3, 5, 14, 37, 42, 123, time.UTC)

	assert.Equal(t, time.Date(2026, 3, 5, 14, 37, 0, 0, time.UTC), TruncateToGranularity(ts, entity.GranularityMinute))
	assert.Equal(t, time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC), TruncateToGranularity(ts, entity.GranularityHour))
	assert.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), TruncateToGranularity(ts, entity.GranularityDay))
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), TruncateToGranularity(ts, entity.GranularityWeek))
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), TruncateToGranularity(ts, entity.GranularityMonth))
	assert.Equal(t, time.Date(2026, 3, 5, 14, 37, 0, 0, time.UTC), TruncateToGranularity(ts, "bogus"))
}

func TestRecommendedInterval(t *testing.T) {
	assert.Equal(t, "1m", RecommendedInterval(1))
	assert.Equal(t, "1m", RecommendedInterval(6))
	assert.Equal(t, "5m", RecommendedInterval(24))
	assert.Equal(t, "1h", RecommendedInterval(168))
	assert.Equal(t, "1d", RecommendedInterval(720))
}
