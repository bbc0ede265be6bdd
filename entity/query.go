package entity

import "time"

// Supported aggregation names for AnalyticsQuery.Aggregations.
const (
	AggSum    = "sum"
	AggAvg    = "avg"
	AggCount  = "count"
	AggMin    = "min"
	AggMax    = "max"
	AggP50    = "p50"
	AggP90    = "p90"
	AggP95    = "p95"
	AggP99    = "p99"
	AggStdDev = "stddev"
)

// Granularity values for time bucketing.
const (
	GranularityMinute = "minute"
	GranularityHour   = "hour"
	GranularityDay    = "day"
	GranularityWeek   = "week"
	GranularityMonth  = "month"
)

// FilterExpr is a single filter clause of an analytics query. Fields prefixed
// "label." read from the sample's label set.
type FilterExpr struct {
	Field         string      `json:"field" binding:"required"`
	Operator      string      `json:"operator" binding:"required,oneof=eq neq gt gte lt lte in nin contains regex"`
	Value         interface{} `json:"value"`
	CaseSensitive bool        `json:"case_sensitive"`
}

// TimeRange is either a relative duration string ("30m", "6h", "7d") or an
// absolute [start, end) pair. A malformed relative string resolves to the last
// hour instead of erroring.
type TimeRange struct {
	Relative string     `json:"relative,omitempty"`
	Start    *time.Time `json:"start,omitempty"`
	End      *time.Time `json:"end,omitempty"`
}

// AnalyticsQuery is the declarative query model. It is an immutable value
// object: the same struct is used for ad-hoc requests, dashboard panel queries
// and export job queries.
type AnalyticsQuery struct {
	Metrics      []string     `json:"metrics" binding:"required,min=1"`
	Dimensions   []string     `json:"dimensions,omitempty"`
	Filters      []FilterExpr `json:"filters,omitempty"`
	TimeRange    TimeRange    `json:"time_range"`
	Granularity  string       `json:"granularity,omitempty"`
	Aggregations []string     `json:"aggregations,omitempty"`
	OrderBy      string       `json:"order_by,omitempty"`
	Limit        int          `json:"limit,omitempty"`
}

// AggregatedDataPoint is one row of a query result. Values is keyed by
// "<metric>:<aggregation>".
type AggregatedDataPoint struct {
	Timestamp time.Time          `json:"timestamp"`
	Labels    map[string]string  `json:"labels,omitempty"`
	Values    map[string]float64 `json:"values"`
}

// QueryResult carries the data points plus execution metadata. It is derived,
// never persisted except through a cache entry.
type QueryResult struct {
	Points      []AggregatedDataPoint `json:"points"`
	RowCount    int                   `json:"row_count"`
	Cached      bool                  `json:"cached"`
	ElapsedMs   int64                 `json:"elapsed_ms"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// CacheEntry is one cached query result, keyed by the canonical hash of the
// normalized query. Valid only while now < ExpiresAt.
type CacheEntry struct {
	CacheKey         string                `json:"cache_key"`
	QueryFingerprint string                `json:"query_fingerprint"`
	DataPoints       []AggregatedDataPoint `json:"data_points"`
	RowCount         int                   `json:"row_count"`
	CreatedAt        time.Time             `json:"created_at"`
	ExpiresAt        time.Time             `json:"expires_at"`
	HitCount         int64                 `json:"hit_count"`
	LastAccessed     time.Time             `json:"last_accessed"`
}
