package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-observability/entity"
	"github.com/tnqbao/gau-observability/infra"
	"github.com/tnqbao/gau-observability/repository"
	"gorm.io/datatypes"
)

// evaluationWindow is the trailing window the current metric value is averaged
// over.
const evaluationWindow = 5 * time.Minute

// AlertStore is the persistence surface the evaluator works against.
type AlertStore interface {
	ListForEvaluation(now time.Time) ([]entity.Alert, error)
	UpdateAlertStatus(id uuid.UUID, status string) error
	AverageValue(metric string, labels map[string]string, from, to time.Time) (float64, int64, error)
	FindOpenTrigger(alertID uuid.UUID) (*entity.AlertTrigger, error)
	CreateTrigger(trigger *entity.AlertTrigger) error
	UpdateTrigger(trigger *entity.AlertTrigger) error
	ResolveTrigger(id uuid.UUID, at time.Time) error
}

// repositoryAlertStore adapts the gorm repositories to AlertStore.
type repositoryAlertStore struct {
	repo *repository.Repository
}

func NewRepositoryAlertStore(repo *repository.Repository) AlertStore {
	return &repositoryAlertStore{repo: repo}
}

func (s *repositoryAlertStore) ListForEvaluation(now time.Time) ([]entity.Alert, error) {
	return s.repo.AlertRepo.ListForEvaluation(now)
}

func (s *repositoryAlertStore) UpdateAlertStatus(id uuid.UUID, status string) error {
	return s.repo.AlertRepo.UpdateStatus(id, status)
}

func (s *repositoryAlertStore) AverageValue(metric string, labels map[string]string, from, to time.Time) (float64, int64, error) {
	return s.repo.MetricRepo.AverageValue(metric, labels, from, to)
}

func (s *repositoryAlertStore) FindOpenTrigger(alertID uuid.UUID) (*entity.AlertTrigger, error) {
	return s.repo.TriggerRepo.FindOpen(alertID)
}

func (s *repositoryAlertStore) CreateTrigger(trigger *entity.AlertTrigger) error {
	return s.repo.TriggerRepo.Create(trigger)
}

func (s *repositoryAlertStore) UpdateTrigger(trigger *entity.AlertTrigger) error {
	return s.repo.TriggerRepo.Update(trigger)
}

func (s *repositoryAlertStore) ResolveTrigger(id uuid.UUID, at time.Time) error {
	return s.repo.TriggerRepo.Resolve(id, at)
}

// AlertEvaluator periodically evaluates alert conditions and manages the
// trigger/resolve lifecycle. The duration-hysteresis map is process-local and
// in-memory only: a restart loses in-progress counters, which is documented
// behavior.
type AlertEvaluator struct {
	store    AlertStore
	logger   *infra.LoggerClient
	notifier *Notifier
	interval time.Duration
	cancel   context.CancelFunc

	mu      sync.Mutex
	pending map[uuid.UUID]time.Time // alert id -> first time the condition was seen true
	lastRun map[uuid.UUID]time.Time // alert id -> last evaluation, for per-alert intervals
}

func NewAlertEvaluator(store AlertStore, logger *infra.LoggerClient, notifier *Notifier, interval time.Duration) *AlertEvaluator {
	return &AlertEvaluator{
		store:    store,
		logger:   logger,
		notifier: notifier,
		interval: interval,
		pending:  make(map[uuid.UUID]time.Time),
		lastRun:  make(map[uuid.UUID]time.Time),
	}
}

func (e *AlertEvaluator) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)
	e.logger.InfoWithContextf(ctx, "[Alert Evaluator] Started with interval %s", e.interval)
	runPeriodic(ctx, e.logger, "Alert Evaluator", e.interval, e.EvaluateAll)
}

func (e *AlertEvaluator) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
}

// EvaluateAll evaluates every enabled, non-silenced alert. A per-alert failure
// is logged and never aborts the batch.
func (e *AlertEvaluator) EvaluateAll(ctx context.Context) {
	now := time.Now()

	alerts, err := e.store.ListForEvaluation(now)
	if err != nil {
		e.logger.ErrorWithContextf(ctx, err, "[Alert Evaluator] Failed to fetch alerts: %v", err)
		return
	}

	for i := range alerts {
		if !e.due(&alerts[i], now) {
			continue
		}
		if err := e.evaluateAlert(ctx, &alerts[i], now); err != nil {
			e.logger.ErrorWithContextf(ctx, err, "[Alert Evaluator] Alert %s failed: %v", alerts[i].Name, err)
		}
	}
}

// due reports whether the alert's own evaluation interval has elapsed since
// its last evaluation. A zero interval means every batch.
func (e *AlertEvaluator) due(alert *entity.Alert, now time.Time) bool {
	if alert.EvaluationInterval <= 0 {
		return true
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if last, ok := e.lastRun[alert.ID]; ok && now.Sub(last) < time.Duration(alert.EvaluationInterval)*time.Second {
		return false
	}
	e.lastRun[alert.ID] = now
	return true
}

func (e *AlertEvaluator) evaluateAlert(ctx context.Context, alert *entity.Alert, now time.Time) error {
	// No matching samples means value 0: a documented default, not an error.
	value, _, err := e.store.AverageValue(
		alert.Metric,
		labelFilter(alert.LabelFilter),
		now.Add(-evaluationWindow),
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to read current value: %w", err)
	}

	if !CompareThreshold(value, alert.Operator, alert.Threshold) {
		e.EvictPending(alert.ID)
		return e.resolveIfOpen(ctx, alert, now)
	}

	e.mu.Lock()
	firstSeen, tracked := e.pending[alert.ID]
	if !tracked {
		e.pending[alert.ID] = now
	}
	e.mu.Unlock()
	if !tracked {
		return nil
	}

	if now.Sub(firstSeen) < time.Duration(alert.Duration)*time.Second {
		return nil
	}

	return e.trigger(ctx, alert, value, now)
}

// resolveIfOpen closes the alert's open trigger row if one exists.
func (e *AlertEvaluator) resolveIfOpen(ctx context.Context, alert *entity.Alert, now time.Time) error {
	open, err := e.store.FindOpenTrigger(alert.ID)
	if err != nil {
		return fmt.Errorf("failed to look up open trigger: %w", err)
	}
	if open == nil {
		return nil
	}

	if err := e.store.ResolveTrigger(open.ID, now); err != nil {
		return fmt.Errorf("failed to resolve trigger: %w", err)
	}
	if err := e.store.UpdateAlertStatus(alert.ID, entity.AlertStatusActive); err != nil {
		return fmt.Errorf("failed to update alert status: %w", err)
	}

	e.logger.InfoWithContextf(ctx, "[Alert Evaluator] Alert %s resolved", alert.Name)
	return nil
}

// trigger opens a new trigger episode and fans out notifications. Triggering
// is idempotent: an already-open trigger row means a persisting condition, not
// a new episode.
func (e *AlertEvaluator) trigger(ctx context.Context, alert *entity.Alert, value float64, now time.Time) error {
	open, err := e.store.FindOpenTrigger(alert.ID)
	if err != nil {
		return fmt.Errorf("failed to look up open trigger: %w", err)
	}
	if open != nil {
		return nil
	}

	trigger := &entity.AlertTrigger{
		ID:           uuid.New(),
		AlertID:      alert.ID,
		Severity:     alert.Severity,
		Status:       entity.TriggerStatusTriggered,
		TriggeredAt:  now,
		TriggerValue: value,
		Threshold:    alert.Threshold,
	}
	if err := e.store.CreateTrigger(trigger); err != nil {
		return fmt.Errorf("failed to create trigger: %w", err)
	}

	payload := &NotificationPayload{
		AlertID:     alert.ID,
		AlertName:   alert.Name,
		Severity:    alert.Severity,
		Value:       value,
		Threshold:   alert.Threshold,
		Message:     TriggerMessage(alert, value),
		TriggeredAt: now,
	}

	succeeded, lastErr := e.notifier.Dispatch(ctx, alert.Channels, payload)

	trigger.NotificationSent = len(succeeded) > 0
	if names, err := marshalChannelNames(succeeded); err == nil {
		trigger.NotificationChannels = names
	}
	if lastErr != nil {
		trigger.NotificationError = lastErr.Error()
	}
	if err := e.store.UpdateTrigger(trigger); err != nil {
		e.logger.ErrorWithContextf(ctx, err, "[Alert Evaluator] Failed to record notification results for %s: %v", alert.Name, err)
	}

	if err := e.store.UpdateAlertStatus(alert.ID, entity.AlertStatusTriggered); err != nil {
		return fmt.Errorf("failed to update alert status: %w", err)
	}

	e.EvictPending(alert.ID)
	e.logger.WarningWithContextf(ctx, "[Alert Evaluator] Alert %s triggered: value %.4f %s %.4f", alert.Name, value, alert.Operator, alert.Threshold)
	return nil
}

// EvictPending drops the hysteresis entry for an alert. Called whenever the
// condition is observed false and when an alert is deleted or disabled, to
// keep the map from growing without bound.
func (e *AlertEvaluator) EvictPending(alertID uuid.UUID) {
	e.mu.Lock()
	delete(e.pending, alertID)
	delete(e.lastRun, alertID)
	e.mu.Unlock()
}

// PendingSince returns the first-seen time for an alert with an in-progress
// duration counter.
func (e *AlertEvaluator) PendingSince(alertID uuid.UUID) (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	firstSeen, ok := e.pending[alertID]
	return firstSeen, ok
}

// CompareThreshold applies an alert condition operator.
func CompareThreshold(value float64, operator string, threshold float64) bool {
	switch operator {
	case "gt":
		return value > threshold
	case "lt":
		return value < threshold
	case "gte":
		return value >= threshold
	case "lte":
		return value <= threshold
	case "eq":
		return value == threshold
	case "neq":
		return value != threshold
	default:
		return false
	}
}

// TriggerMessage renders the human-readable notification text.
func TriggerMessage(alert *entity.Alert, value float64) string {
	return fmt.Sprintf("%s: %s is %.4f (%s %.4f)", alert.Name, alert.Metric, value, alert.Operator, alert.Threshold)
}

func labelFilter(filter datatypes.JSONMap) map[string]string {
	if len(filter) == 0 {
		return nil
	}
	labels := make(map[string]string, len(filter))
	for k, v := range filter {
		labels[k] = toString(v)
	}
	return labels
}

func marshalChannelNames(names []string) (datatypes.JSON, error) {
	if names == nil {
		names = []string{}
	}
	data, err := json.Marshal(names)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}
