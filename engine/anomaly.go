package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-observability/entity"
	"github.com/tnqbao/gau-observability/infra"
	"github.com/tnqbao/gau-observability/repository"
)

// recentWindow is the trailing window whose average is compared against the
// baseline distribution.
const recentWindow = 5 * time.Minute

// AnomalyDetector scans every active metric on a schedule and records
// statistical deviations as anomaly rows.
type AnomalyDetector struct {
	repository      *repository.Repository
	logger          *infra.LoggerClient
	interval        time.Duration
	lookback        time.Duration
	stddevThreshold float64
	minDataPoints   int
	cancel          context.CancelFunc
}

func NewAnomalyDetector(repo *repository.Repository, logger *infra.LoggerClient, interval, lookback time.Duration, stddevThreshold float64, minDataPoints int) *AnomalyDetector {
	return &AnomalyDetector{
		repository:      repo,
		logger:          logger,
		interval:        interval,
		lookback:        lookback,
		stddevThreshold: stddevThreshold,
		minDataPoints:   minDataPoints,
	}
}

func (d *AnomalyDetector) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)
	d.logger.InfoWithContextf(ctx, "[Anomaly Detector] Started with interval %s, lookback %s, threshold %.1f sigma", d.interval, d.lookback, d.stddevThreshold)
	runPeriodic(ctx, d.logger, "Anomaly Detector", d.interval, d.DetectAll)
}

func (d *AnomalyDetector) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
}

// DetectAll runs detection for every metric that reported a sample in the
// last hour. A per-metric failure is logged and never aborts the scan.
func (d *AnomalyDetector) DetectAll(ctx context.Context) {
	now := time.Now()

	metrics, err := d.repository.MetricRepo.DistinctMetricNames(now.Add(-time.Hour), now)
	if err != nil {
		d.logger.ErrorWithContextf(ctx, err, "[Anomaly Detector] Failed to list active metrics: %v", err)
		return
	}

	for _, metric := range metrics {
		detection, err := d.DetectMetric(metric, now)
		if err != nil {
			d.logger.ErrorWithContextf(ctx, err, "[Anomaly Detector] Metric %s failed: %v", metric, err)
			continue
		}
		if detection == nil {
			continue
		}
		if err := d.repository.AnomalyRepo.Create(detection); err != nil {
			d.logger.ErrorWithContextf(ctx, err, "[Anomaly Detector] Failed to record anomaly for %s: %v", metric, err)
			continue
		}
		d.logger.WarningWithContextf(ctx, "[Anomaly Detector] %s anomaly on %s: value %.4f vs expected %.4f (%.2f sigma)",
			detection.Severity, metric, detection.ObservedValue, detection.ExpectedValue, detection.DeviationScore)
	}
}

// DetectMetric compares the recent average of a metric against its baseline
// distribution over the lookback window. Returns nil when no anomaly is
// present or the baseline does not carry enough data.
func (d *AnomalyDetector) DetectMetric(metric string, now time.Time) (*entity.AnomalyDetection, error) {
	baseline, err := d.repository.MetricRepo.ValuesInRange(metric, now.Add(-d.lookback), now)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline: %w", err)
	}
	if len(baseline) < d.minDataPoints {
		return nil, nil
	}

	recent, count, err := d.repository.MetricRepo.AverageValue(metric, nil, now.Add(-recentWindow), now)
	if err != nil {
		return nil, fmt.Errorf("failed to read recent value: %w", err)
	}
	if count == 0 {
		return nil, nil
	}

	mean := Mean(baseline)
	stddev := StdDev(baseline)

	// A flat baseline cannot deviate.
	if stddev == 0 {
		return nil, nil
	}

	deviation := math.Abs(recent-mean) / stddev
	if deviation < d.stddevThreshold {
		return nil, nil
	}

	anomalyType := entity.AnomalyTypeSpike
	if recent < mean {
		anomalyType = entity.AnomalyTypeDrop
	}

	return &entity.AnomalyDetection{
		ID:             uuid.New(),
		MetricName:     metric,
		DetectedAt:     now,
		Method:         "zscore",
		Type:           anomalyType,
		Severity:       deviationSeverity(deviation),
		ObservedValue:  recent,
		ExpectedValue:  mean,
		DeviationScore: deviation,
		Confidence:     deviationConfidence(deviation),
		BaselineWindow: d.lookback.String(),
	}, nil
}

// deviationSeverity buckets a z-score into a severity level.
func deviationSeverity(deviation float64) string {
	switch {
	case deviation < 3:
		return "low"
	case deviation < 4:
		return "medium"
	case deviation < 5:
		return "high"
	default:
		return "critical"
	}
}

// deviationConfidence maps a z-score onto [0, 1].
func deviationConfidence(deviation float64) float64 {
	return math.Min(deviation/10, 1.0)
}
