package engine

import (
	"regexp"
	"strconv"
	"time"

	"github.com/tnqbao/gau-observability/entity"
)

var relativeRangePattern = regexp.MustCompile(`^(\d+)([smhd])$`)

// ResolveTimeRange converts a TimeRange into absolute [start, end) bounds
// measured against now. Absolute bounds win when both are present. A malformed
// relative string silently resolves to the last hour; callers must treat that
// as the documented default, not an error.
func ResolveTimeRange(tr entity.TimeRange, now time.Time) (time.Time, time.Time) {
	if tr.Start != nil && tr.End != nil {
		return *tr.Start, *tr.End
	}

	duration := ParseRelativeRange(tr.Relative)
	return now.Add(-duration), now
}

// ParseRelativeRange parses "<amount><unit>" with unit one of s/m/h/d.
// Unrecognized strings fall back to one hour.
func ParseRelativeRange(relative string) time.Duration {
	matches := relativeRangePattern.FindStringSubmatch(relative)
	if matches == nil {
		return time.Hour
	}

	amount, err := strconv.Atoi(matches[1])
	if err != nil || amount <= 0 {
		return time.Hour
	}

	switch matches[2] {
	case "s":
		return time.Duration(amount) * time.Second
	case "m":
		return time.Duration(amount) * time.Minute
	case "h":
		return time.Duration(amount) * time.Hour
	case "d":
		return time.Duration(amount) * 24 * time.Hour
	}
	return time.Hour
}

// TruncateToGranularity floors ts to the start of its minute/hour/day/ISO
// week/month bucket. Unknown granularities bucket by minute.
func TruncateToGranularity(ts time.Time, granularity string) time.Time {
	ts = ts.UTC()
	switch granularity {
	case entity.GranularityHour:
		return time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), 0, 0, 0, time.UTC)
	case entity.GranularityDay:
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
	case entity.GranularityWeek:
		// ISO weeks start on Monday
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case entity.GranularityMonth:
		return time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute(), 0, 0, time.UTC)
	}
}

// RecommendedInterval suggests a pre-aggregation interval for a query range.
// Callers are free to ignore it.
func RecommendedInterval(rangeHours float64) string {
	switch {
	case rangeHours <= 6:
		return "1m"
	case rangeHours <= 48:
		return "5m"
	case rangeHours <= 168:
		return "1h"
	default:
		return "1d"
	}
}
