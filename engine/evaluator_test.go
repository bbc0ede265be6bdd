package engine

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/tnqbao/gau-observability/config"
	"github.com/tnqbao/gau-observability/entity"
	"github.com/tnqbao/gau-observability/infra"
	"gorm.io/datatypes"
)

// stubAlertStore keeps the trigger lifecycle in memory so the evaluator's
// state machine can be driven without a database.
type stubAlertStore struct {
	alerts   []entity.Alert
	value    float64
	open     *entity.AlertTrigger
	created  []*entity.AlertTrigger
	resolved []uuid.UUID
	statuses map[uuid.UUID]string
	reads    int
}

func newStubAlertStore(value float64, alerts ...entity.Alert) *stubAlertStore {
	return &stubAlertStore{
		alerts:   alerts,
		value:    value,
		statuses: make(map[uuid.UUID]string),
	}
}

func (s *stubAlertStore) ListForEvaluation(now time.Time) ([]entity.Alert, error) {
	return s.alerts, nil
}

func (s *stubAlertStore) UpdateAlertStatus(id uuid.UUID, status string) error {
	s.statuses[id] = status
	return nil
}

func (s *stubAlertStore) AverageValue(metric string, labels map[string]string, from, to time.Time) (float64, int64, error) {
	s.reads++
	return s.value, 1, nil
}

func (s *stubAlertStore) FindOpenTrigger(alertID uuid.UUID) (*entity.AlertTrigger, error) {
	if s.open != nil && s.open.AlertID == alertID {
		return s.open, nil
	}
	return nil, nil
}

func (s *stubAlertStore) CreateTrigger(trigger *entity.AlertTrigger) error {
	s.created = append(s.created, trigger)
	s.open = trigger
	return nil
}

func (s *stubAlertStore) UpdateTrigger(trigger *entity.AlertTrigger) error {
	return nil
}

func (s *stubAlertStore) ResolveTrigger(id uuid.UUID, at time.Time) error {
	s.resolved = append(s.resolved, id)
	s.open = nil
	return nil
}

func newTestEvaluator(store AlertStore) *AlertEvaluator {
	cfg := &config.EnvConfig{}
	cfg.Environment.Mode = "development"
	logger := infra.InitLoggerClient(cfg)
	return NewAlertEvaluator(store, logger, NewNotifier(logger, nil), time.Minute)
}

func testAlert(duration int) entity.Alert {
	return entity.Alert{
		ID:        uuid.New(),
		Name:      "High CPU",
		Severity:  "high",
		Metric:    "cpu_usage",
		Operator:  "gt",
		Threshold: 90,
		Duration:  duration,
		Status:    entity.AlertStatusActive,
		Enabled:   true,
	}
}

func TestCompareThreshold(t *testing.T) {
	assert.True(t, CompareThreshold(10, "gt", 5))
	assert.False(t, CompareThreshold(5, "gt", 5))
	assert.True(t, CompareThreshold(5, "gte", 5))
	assert.True(t, CompareThreshold(3, "lt", 5))
	assert.True(t, CompareThreshold(5, "lte", 5))
	assert.True(t, CompareThreshold(5, "eq", 5))
	assert.True(t, CompareThreshold(4, "neq", 5))
	assert.False(t, CompareThreshold(4, "bogus", 5))
}

func TestTriggerMessage(t *testing.T) {
	alert := &entity.Alert{
		Name:      "High CPU",
		Metric:    "cpu_usage",
		Operator:  "gt",
		Threshold: 90,
	}

	msg := TriggerMessage(alert, 97.5)
	assert.Equal(t, "High CPU: cpu_usage is 97.5000 (gt 90.0000)", msg)
}

func TestEvictPending(t *testing.T) {
	e := NewAlertEvaluator(nil, nil, nil, 0)
	id := uuid.New()

	_, tracked := e.PendingSince(id)
	assert.False(t, tracked)

	e.pending[id] = time.Now()
	_, tracked = e.PendingSince(id)
	assert.True(t, tracked)

	e.EvictPending(id)
	_, tracked = e.PendingSince(id)
	assert.False(t, tracked)
}

func TestEvaluateAlertWaitsForDuration(t *testing.T) {
	alert := testAlert(60)
	store := newStubAlertStore(95, alert)
	e := newTestEvaluator(store)
	ctx := context.Background()
	t0 := time.Now()

	// First true observation only starts the counter.
	assert.NoError(t, e.evaluateAlert(ctx, &alert, t0))
	assert.Empty(t, store.created)
	_, tracked := e.PendingSince(alert.ID)
	assert.True(t, tracked)

	// Still true but the duration has not elapsed.
	assert.NoError(t, e.evaluateAlert(ctx, &alert, t0.Add(30*time.Second)))
	assert.Empty(t, store.created)

	assert.NoError(t, e.evaluateAlert(ctx, &alert, t0.Add(60*time.Second)))
	assert.Len(t, store.created, 1)
	assert.Equal(t, alert.ID, store.created[0].AlertID)
	assert.Equal(t, 95.0, store.created[0].TriggerValue)
	assert.Equal(t, entity.TriggerStatusTriggered, store.created[0].Status)
	assert.Equal(t, entity.AlertStatusTriggered, store.statuses[alert.ID])

	_, tracked = e.PendingSince(alert.ID)
	assert.False(t, tracked)
}

func TestEvaluateAlertIdempotentWhileOpen(t *testing.T) {
	alert := testAlert(60)
	store := newStubAlertStore(95, alert)
	e := newTestEvaluator(store)
	ctx := context.Background()
	t0 := time.Now()

	assert.NoError(t, e.evaluateAlert(ctx, &alert, t0))
	assert.NoError(t, e.evaluateAlert(ctx, &alert, t0.Add(time.Minute)))
	assert.Len(t, store.created, 1)

	// The condition persists past the duration again: the existing open
	// trigger row means no new episode.
	assert.NoError(t, e.evaluateAlert(ctx, &alert, t0.Add(2*time.Minute)))
	assert.NoError(t, e.evaluateAlert(ctx, &alert, t0.Add(5*time.Minute)))
	assert.Len(t, store.created, 1)
	assert.Empty(t, store.resolved)
}

func TestEvaluateAlertResolvesOnRecovery(t *testing.T) {
	alert := testAlert(60)
	store := newStubAlertStore(95, alert)
	e := newTestEvaluator(store)
	ctx := context.Background()
	t0 := time.Now()

	assert.NoError(t, e.evaluateAlert(ctx, &alert, t0))
	assert.NoError(t, e.evaluateAlert(ctx, &alert, t0.Add(time.Minute)))
	assert.Len(t, store.created, 1)
	openID := store.created[0].ID

	store.value = 50
	assert.NoError(t, e.evaluateAlert(ctx, &alert, t0.Add(2*time.Minute)))
	assert.Equal(t, []uuid.UUID{openID}, store.resolved)
	assert.Equal(t, entity.AlertStatusActive, store.statuses[alert.ID])

	// Recovering again with nothing open is a no-op.
	assert.NoError(t, e.evaluateAlert(ctx, &alert, t0.Add(3*time.Minute)))
	assert.Len(t, store.resolved, 1)
}

func TestEvaluateAllHonorsPerAlertInterval(t *testing.T) {
	alert := testAlert(60)
	alert.EvaluationInterval = 300
	store := newStubAlertStore(50, alert)
	e := newTestEvaluator(store)
	ctx := context.Background()

	e.EvaluateAll(ctx)
	assert.Equal(t, 1, store.reads)

	// Within the alert's own interval the batch skips it.
	e.EvaluateAll(ctx)
	assert.Equal(t, 1, store.reads)

	// Eviction resets the interval clock along with the hysteresis counter.
	e.EvictPending(alert.ID)
	e.EvaluateAll(ctx)
	assert.Equal(t, 2, store.reads)
}

func TestEvaluatorDue(t *testing.T) {
	alert := testAlert(60)
	alert.EvaluationInterval = 300
	e := newTestEvaluator(newStubAlertStore(0))
	t0 := time.Now()

	assert.True(t, e.due(&alert, t0))
	assert.False(t, e.due(&alert, t0.Add(299*time.Second)))
	assert.True(t, e.due(&alert, t0.Add(300*time.Second)))

	// A zero interval evaluates every batch.
	every := testAlert(60)
	assert.True(t, e.due(&every, t0))
	assert.True(t, e.due(&every, t0))
}

func TestLabelFilterConversion(t *testing.T) {
	assert.Nil(t, labelFilter(nil))
	assert.Nil(t, labelFilter(datatypes.JSONMap{}))

	labels := labelFilter(datatypes.JSONMap{"host": "web-01", "shard": 3})
	assert.Equal(t, "web-01", labels["host"])
	assert.Equal(t, "3", labels["shard"])
}
