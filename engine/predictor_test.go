package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tnqbao/gau-observability/entity"
)

func TestLinearRegressionFit(t *testing.T) {
	// y = 2x + 1
	values := []float64{1, 3, 5, 7, 9}

	slope, intercept := LinearRegression(values)
	assert.InDelta(t, 2.0, slope, 1e-9)
	assert.InDelta(t, 1.0, intercept, 1e-9)
}

func TestLinearRegressionFlat(t *testing.T) {
	slope, intercept := LinearRegression([]float64{4, 4, 4})
	assert.InDelta(t, 0.0, slope, 1e-9)
	assert.InDelta(t, 4.0, intercept, 1e-9)
}

func TestForecastLinearContinuesTrend(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = float64(2 * i) // y = 2x
	}
	last := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	points := Forecast(entity.MethodLinearRegression, values, last, time.Minute, 10*time.Minute)
	assert.Len(t, points, 10)

	// First forecast index is n, so the trend continues at 2*50.
	assert.InDelta(t, 100.0, points[0].Value, 1e-6)
	assert.InDelta(t, 118.0, points[9].Value, 1e-6)
	assert.Equal(t, last.Add(time.Minute), points[0].Timestamp)

	for _, p := range points {
		assert.NotNil(t, p.Lower)
		assert.NotNil(t, p.Upper)
		assert.LessOrEqual(t, *p.Lower, p.Value)
		assert.GreaterOrEqual(t, *p.Upper, p.Value)
	}
}

func TestForecastPointCountIsCeil(t *testing.T) {
	values := []float64{1, 2, 3}
	last := time.Now()

	points := Forecast(entity.MethodMovingAverage, values, last, 4*time.Minute, 10*time.Minute)
	assert.Len(t, points, 3) // ceil(10/4)
}

func TestForecastMovingAverageHeldFlat(t *testing.T) {
	values := []float64{10, 20, 30, 40}
	last := time.Now()

	points := Forecast(entity.MethodMovingAverage, values, last, time.Minute, 3*time.Minute)
	assert.Len(t, points, 3)

	// Trailing window is min(10, n/2) = 2 points: mean of {30, 40}.
	for _, p := range points {
		assert.Equal(t, 35.0, p.Value)
	}
}

func TestForecastExponentialSmoothing(t *testing.T) {
	values := []float64{10, 20}
	last := time.Now()

	points := Forecast(entity.MethodExponentialSmoothing, values, last, time.Minute, time.Minute)
	assert.Len(t, points, 1)

	// 0.3*20 + 0.7*10
	assert.InDelta(t, 13.0, points[0].Value, 1e-9)
}

func TestForecastTooFewPoints(t *testing.T) {
	assert.Nil(t, Forecast(entity.MethodLinearRegression, []float64{1}, time.Now(), time.Minute, time.Hour))
}

func TestModelAccuracyShortHistory(t *testing.T) {
	assert.Equal(t, 0.5, ModelAccuracy([]float64{1, 2, 3}))
}

func TestModelAccuracyPerfectLinearFit(t *testing.T) {
	values := make([]float64, 40)
	for i := range values {
		values[i] = float64(3*i + 7)
	}
	assert.InDelta(t, 1.0, ModelAccuracy(values), 1e-9)
}

func TestModelAccuracyClampedToZero(t *testing.T) {
	// Rising train segment, collapsing test segment: R² goes negative and is
	// clamped.
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, -100, 100, -100, 100}
	accuracy := ModelAccuracy(values)
	assert.GreaterOrEqual(t, accuracy, 0.0)
	assert.LessOrEqual(t, accuracy, 1.0)
}

func TestAverageSpacing(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	timestamps := []time.Time{base, base.Add(2 * time.Minute), base.Add(4 * time.Minute)}

	assert.Equal(t, 2*time.Minute, averageSpacing(timestamps))
	assert.Equal(t, time.Duration(0), averageSpacing(timestamps[:1]))
}
