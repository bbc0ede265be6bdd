package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tnqbao/gau-observability/entity"
	"github.com/tnqbao/gau-observability/infra"
	"github.com/tnqbao/gau-observability/repository"
)

const cacheKeyPrefix = "analytics:cache:"

// QueryEngine executes declarative analytics queries against the metric store
// and caches results in Redis keyed by the canonical query hash.
type QueryEngine struct {
	repository   *repository.Repository
	cache        *infra.RedisClient
	logger       *infra.LoggerClient
	cacheEnabled bool
	cacheTTL     time.Duration
}

func NewQueryEngine(repo *repository.Repository, cache *infra.RedisClient, logger *infra.LoggerClient, cacheEnabled bool, cacheTTL time.Duration) *QueryEngine {
	return &QueryEngine{
		repository:   repo,
		cache:        cache,
		logger:       logger,
		cacheEnabled: cacheEnabled,
		cacheTTL:     cacheTTL,
	}
}

// Execute resolves the time range, consults the cache, and on a miss runs the
// grouped aggregation over raw samples. Non-empty results are written back to
// the cache with a fresh TTL.
func (e *QueryEngine) Execute(ctx context.Context, query entity.AnalyticsQuery) (*entity.QueryResult, error) {
	start := time.Now()
	from, to := ResolveTimeRange(query.TimeRange, start)

	normalized := normalizeQuery(query)
	key, fingerprint := CacheKey(query)

	if e.cacheEnabled {
		if entry := e.lookupCache(ctx, key); entry != nil {
			return &entity.QueryResult{
				Points:      entry.DataPoints,
				RowCount:    entry.RowCount,
				Cached:      true,
				ElapsedMs:   time.Since(start).Milliseconds(),
				GeneratedAt: entry.CreatedAt,
			}, nil
		}
	}

	samples, err := e.repository.MetricRepo.ListByMetrics(normalized.Metrics, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	points := aggregateSamples(samples, normalized)
	sortPoints(points, normalized.OrderBy)
	if normalized.Limit > 0 && len(points) > normalized.Limit {
		points = points[:normalized.Limit]
	}

	result := &entity.QueryResult{
		Points:      points,
		RowCount:    len(points),
		Cached:      false,
		ElapsedMs:   time.Since(start).Milliseconds(),
		GeneratedAt: start,
	}

	if e.cacheEnabled && len(points) > 0 {
		e.storeCache(ctx, key, fingerprint, result)
	}

	return result, nil
}

func (e *QueryEngine) lookupCache(ctx context.Context, key string) *entity.CacheEntry {
	var entry entity.CacheEntry
	err := e.cache.Get(ctx, cacheKeyPrefix+key, &entry)
	if err != nil {
		if !errors.Is(err, infra.ErrCacheMiss) {
			e.logger.WarningWithContextf(ctx, "[Query Engine] Cache lookup failed for key %s: %v", key, err)
		}
		return nil
	}

	now := time.Now()
	if !now.Before(entry.ExpiresAt) {
		return nil
	}

	entry.HitCount++
	entry.LastAccessed = now
	if err := e.cache.Set(ctx, cacheKeyPrefix+key, entry, time.Until(entry.ExpiresAt)); err != nil {
		e.logger.WarningWithContextf(ctx, "[Query Engine] Failed to refresh cache entry %s: %v", key, err)
	}

	return &entry
}

func (e *QueryEngine) storeCache(ctx context.Context, key, fingerprint string, result *entity.QueryResult) {
	now := time.Now()
	entry := entity.CacheEntry{
		CacheKey:         key,
		QueryFingerprint: fingerprint,
		DataPoints:       result.Points,
		RowCount:         result.RowCount,
		CreatedAt:        now,
		ExpiresAt:        now.Add(e.cacheTTL),
		HitCount:         0,
		LastAccessed:     now,
	}
	if err := e.cache.Set(ctx, cacheKeyPrefix+key, entry, e.cacheTTL); err != nil {
		e.logger.WarningWithContextf(ctx, "[Query Engine] Failed to store cache entry %s: %v", key, err)
	}
}

// InvalidateCache drops every cached query result and returns how many entries
// were removed. Exposed for use after bulk backfills.
func (e *QueryEngine) InvalidateCache(ctx context.Context) (int, error) {
	keys, err := e.cache.Keys(ctx, cacheKeyPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("failed to list cache keys: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := e.cache.Delete(ctx, keys...); err != nil {
		return 0, fmt.Errorf("failed to delete cache keys: %w", err)
	}
	return len(keys), nil
}

// CacheKey computes the canonical cache key and fingerprint of a query. Two
// queries that differ only in list ordering or optional-field defaults map to
// the same key.
func CacheKey(query entity.AnalyticsQuery) (string, string) {
	normalized := normalizeQuery(query)
	serialized, _ := json.Marshal(normalized)
	sum := sha256.Sum256(serialized)
	return hex.EncodeToString(sum[:]), string(serialized)
}

func normalizeQuery(query entity.AnalyticsQuery) entity.AnalyticsQuery {
	normalized := query

	normalized.Metrics = sortedCopy(query.Metrics)
	normalized.Dimensions = sortedCopy(query.Dimensions)
	normalized.Aggregations = sortedCopy(query.Aggregations)

	if len(normalized.Aggregations) == 0 {
		normalized.Aggregations = []string{entity.AggAvg}
	}
	if normalized.Granularity == "" {
		normalized.Granularity = entity.GranularityMinute
	}

	return normalized
}

func sortedCopy(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}

type groupKey struct {
	bucket    time.Time
	labelsKey string
}

// aggregateSamples buckets filtered samples by granularity and requested
// dimensions, then computes every metric x aggregation pair per bucket.
func aggregateSamples(samples []entity.MetricSample, query entity.AnalyticsQuery) []entity.AggregatedDataPoint {
	groups := make(map[groupKey]map[string][]float64)
	groupLabels := make(map[groupKey]map[string]string)

	for i := range samples {
		sample := &samples[i]
		if !MatchesFilters(sample, query.Filters) {
			continue
		}

		labels := make(map[string]string, len(query.Dimensions))
		for _, dim := range query.Dimensions {
			if v, ok := sample.Labels[dim]; ok {
				labels[dim] = toString(v)
			}
		}

		key := groupKey{
			bucket:    TruncateToGranularity(sample.Timestamp, query.Granularity),
			labelsKey: labelsFingerprint(labels),
		}

		if _, ok := groups[key]; !ok {
			groups[key] = make(map[string][]float64)
			groupLabels[key] = labels
		}
		groups[key][sample.MetricName] = append(groups[key][sample.MetricName], sample.Value)
	}

	points := make([]entity.AggregatedDataPoint, 0, len(groups))
	for key, byMetric := range groups {
		values := make(map[string]float64)
		for _, metric := range query.Metrics {
			metricValues, ok := byMetric[metric]
			if !ok || len(metricValues) == 0 {
				// buckets with no samples for a metric carry no series value
				continue
			}
			for _, agg := range query.Aggregations {
				values[metric+":"+agg] = applyAggregation(metricValues, agg)
			}
		}
		if len(values) == 0 {
			continue
		}
		points = append(points, entity.AggregatedDataPoint{
			Timestamp: key.bucket,
			Labels:    groupLabels[key],
			Values:    values,
		})
	}

	return points
}

func applyAggregation(values []float64, agg string) float64 {
	switch agg {
	case entity.AggSum:
		var sum float64
		for _, v := range values {
			sum += v
		}
		return sum
	case entity.AggCount:
		return float64(len(values))
	case entity.AggMin:
		min := values[0]
		for _, v := range values[1:] {
			if v < min {
				min = v
			}
		}
		return min
	case entity.AggMax:
		max := values[0]
		for _, v := range values[1:] {
			if v > max {
				max = v
			}
		}
		return max
	case entity.AggP50:
		return Percentile(values, 0.50)
	case entity.AggP90:
		return Percentile(values, 0.90)
	case entity.AggP95:
		return Percentile(values, 0.95)
	case entity.AggP99:
		return Percentile(values, 0.99)
	case entity.AggStdDev:
		return StdDev(values)
	default:
		return Mean(values)
	}
}

func labelsFingerprint(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
		b.WriteByte(';')
	}
	return b.String()
}

// sortPoints orders by the requested "field [asc|desc]" clause, defaulting to
// ascending time bucket. A non-timestamp field addresses a values key.
func sortPoints(points []entity.AggregatedDataPoint, orderBy string) {
	field := "timestamp"
	descending := false

	if parts := strings.Fields(orderBy); len(parts) > 0 {
		field = parts[0]
		if len(parts) > 1 && strings.EqualFold(parts[1], "desc") {
			descending = true
		}
	}

	sort.SliceStable(points, func(i, j int) bool {
		var less bool
		if field == "timestamp" {
			less = points[i].Timestamp.Before(points[j].Timestamp)
		} else {
			less = points[i].Values[field] < points[j].Values[field]
		}
		if descending {
			return !less
		}
		return less
	})
}
