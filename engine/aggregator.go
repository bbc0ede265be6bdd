package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-observability/entity"
	"github.com/tnqbao/gau-observability/infra"
	"github.com/tnqbao/gau-observability/repository"
)

// AggregationWindow pairs a pre-aggregation interval with how long its rows
// are retained.
type AggregationWindow struct {
	Label     string
	Interval  time.Duration
	Retention time.Duration
}

// ParseAggregationWindows parses a "1m=24h,1h=720h" spec. A malformed interval
// or retention fails fast with ErrInvalidInterval.
func ParseAggregationWindows(spec string) ([]AggregationWindow, error) {
	var windows []AggregationWindow
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidInterval, pair)
		}
		interval, err := time.ParseDuration(parts[0])
		if err != nil || interval <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidInterval, parts[0])
		}
		retention, err := time.ParseDuration(parts[1])
		if err != nil || retention <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidInterval, parts[1])
		}
		windows = append(windows, AggregationWindow{
			Label:     parts[0],
			Interval:  interval,
			Retention: retention,
		})
	}
	if len(windows) == 0 {
		return nil, fmt.Errorf("%w: empty window spec", ErrInvalidInterval)
	}
	return windows, nil
}

// Aggregator periodically pre-aggregates raw samples into fixed windows and
// enforces per-window retention.
type Aggregator struct {
	repository *repository.Repository
	logger     *infra.LoggerClient
	windows    []AggregationWindow
	interval   time.Duration
	cancel     context.CancelFunc
}

func NewAggregator(repo *repository.Repository, logger *infra.LoggerClient, windowSpec string, interval time.Duration) (*Aggregator, error) {
	windows, err := ParseAggregationWindows(windowSpec)
	if err != nil {
		return nil, err
	}
	return &Aggregator{
		repository: repo,
		logger:     logger,
		windows:    windows,
		interval:   interval,
	}, nil
}

func (a *Aggregator) Start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)
	a.logger.InfoWithContextf(ctx, "[Aggregator] Started with %d windows, interval %s", len(a.windows), a.interval)
	runPeriodic(ctx, a.logger, "Aggregator", a.interval, a.RunAggregation)
}

func (a *Aggregator) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
}

// RunAggregation aggregates the current window of every configured interval,
// then runs retention cleanup. A failure on one window or metric is logged
// and skipped; it never aborts the rest of the run.
func (a *Aggregator) RunAggregation(ctx context.Context) {
	now := time.Now().UTC()

	for _, window := range a.windows {
		if err := a.aggregateWindow(ctx, window, now); err != nil {
			a.logger.ErrorWithContextf(ctx, err, "[Aggregator] Window %s failed: %v", window.Label, err)
		}
	}

	for _, window := range a.windows {
		cutoff := now.Add(-window.Retention)
		deleted, err := a.repository.AggregateRepo.DeleteOlderThan(window.Label, cutoff)
		if err != nil {
			a.logger.ErrorWithContextf(ctx, err, "[Aggregator] Retention cleanup for %s failed: %v", window.Label, err)
			continue
		}
		if deleted > 0 {
			a.logger.InfoWithContextf(ctx, "[Aggregator] Retention cleanup removed %d %s rows", deleted, window.Label)
		}
	}
}

func (a *Aggregator) aggregateWindow(ctx context.Context, window AggregationWindow, now time.Time) error {
	windowStart := now.Truncate(window.Interval)
	windowEnd := windowStart.Add(window.Interval)

	metrics, err := a.repository.MetricRepo.DistinctMetricNames(windowStart, windowEnd)
	if err != nil {
		return fmt.Errorf("failed to list metrics for window %s: %w", window.Label, err)
	}

	for _, metric := range metrics {
		if err := a.aggregateMetric(metric, window, windowStart); err != nil {
			a.logger.ErrorWithContextf(ctx, err, "[Aggregator] Metric %s in window %s failed: %v", metric, window.Label, err)
		}
	}

	return nil
}

// aggregateMetric is idempotent per (metric, interval, windowStart): re-running
// a window that already has a row is a no-op.
func (a *Aggregator) aggregateMetric(metric string, window AggregationWindow, windowStart time.Time) error {
	exists, err := a.repository.AggregateRepo.ExistsForWindow(metric, window.Label, windowStart)
	if err != nil {
		return fmt.Errorf("failed to check existing aggregate: %w", err)
	}
	if exists {
		return nil
	}

	values, err := a.repository.MetricRepo.ValuesInRange(metric, windowStart, windowStart.Add(window.Interval))
	if err != nil {
		return fmt.Errorf("failed to load samples: %w", err)
	}
	if len(values) == 0 {
		// empty buckets are never stored
		return nil
	}

	aggregate := ComputeAggregate(metric, window.Label, windowStart, values)
	if err := a.repository.AggregateRepo.Create(aggregate); err != nil {
		return fmt.Errorf("failed to store aggregate: %w", err)
	}
	return nil
}

// ComputeAggregate builds the aggregate row for one metric window.
func ComputeAggregate(metric, intervalLabel string, windowStart time.Time, values []float64) *entity.MetricAggregate {
	min := values[0]
	max := values[0]
	var sum float64
	for _, v := range values {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	return &entity.MetricAggregate{
		ID:          uuid.New(),
		MetricName:  metric,
		Interval:    intervalLabel,
		WindowStart: windowStart,
		Count:       int64(len(values)),
		Sum:         sum,
		Min:         min,
		Max:         max,
		Avg:         sum / float64(len(values)),
		P50:         Percentile(values, 0.50),
		P90:         Percentile(values, 0.90),
		P95:         Percentile(values, 0.95),
		P99:         Percentile(values, 0.99),
		StdDev:      StdDev(values),
		CreatedAt:   time.Now(),
	}
}
