package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tnqbao/gau-observability/entity"
	"github.com/tnqbao/gau-observability/infra"
	"github.com/tnqbao/gau-observability/repository"
	"gorm.io/datatypes"
)

const smoothingAlpha = 0.3

// Predictor fits simple forecast models to historical samples on demand.
type Predictor struct {
	repository       *repository.Repository
	logger           *infra.LoggerClient
	defaultMethod    string
	forecastHorizon  time.Duration
	historicalWindow time.Duration
}

func NewPredictor(repo *repository.Repository, logger *infra.LoggerClient, defaultMethod string, horizon, window time.Duration) *Predictor {
	return &Predictor{
		repository:       repo,
		logger:           logger,
		defaultMethod:    defaultMethod,
		forecastHorizon:  horizon,
		historicalWindow: window,
	}
}

// Predict fits the requested model over the historical window, persists the
// resulting forecast and returns it. With fewer than two historical points the
// forecast is empty but still recorded.
func (p *Predictor) Predict(metric string, labels map[string]string, method string) (*entity.Prediction, error) {
	if method == "" {
		method = p.defaultMethod
	}
	switch method {
	case entity.MethodLinearRegression, entity.MethodMovingAverage, entity.MethodExponentialSmoothing:
	default:
		return nil, fmt.Errorf("unknown forecast method %q", method)
	}

	now := time.Now()
	samples, err := p.repository.MetricRepo.ListByMetric(metric, labels, now.Add(-p.historicalWindow), now)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	var points []entity.PredictionPoint
	accuracy := 0.5
	if len(samples) >= 2 {
		timestamps := make([]time.Time, len(samples))
		values := make([]float64, len(samples))
		for i := range samples {
			timestamps[i] = samples[i].Timestamp
			values[i] = samples[i].Value
		}
		cadence := averageSpacing(timestamps)
		points = Forecast(method, values, timestamps[len(timestamps)-1], cadence, p.forecastHorizon)
		accuracy = ModelAccuracy(values)
	}

	encoded, err := json.Marshal(points)
	if err != nil {
		return nil, fmt.Errorf("failed to encode forecast points: %w", err)
	}

	prediction := &entity.Prediction{
		ID:               uuid.New(),
		GeneratedAt:      now,
		MetricName:       metric,
		Method:           method,
		ForecastHorizon:  p.forecastHorizon.String(),
		HistoricalWindow: p.historicalWindow.String(),
		Points:           datatypes.JSON(encoded),
		ModelAccuracy:    accuracy,
		ExpiresAt:        now.Add(p.forecastHorizon),
	}
	if err := p.repository.PredictionRepo.Create(prediction); err != nil {
		return nil, fmt.Errorf("failed to persist prediction: %w", err)
	}
	return prediction, nil
}

// Forecast produces forecast points for the given method. Cadence is the
// spacing between forecast points, horizon bounds how far ahead they reach.
func Forecast(method string, values []float64, lastSample time.Time, cadence, horizon time.Duration) []entity.PredictionPoint {
	if len(values) < 2 || cadence <= 0 || horizon <= 0 {
		return nil
	}

	count := int(math.Ceil(float64(horizon) / float64(cadence)))
	points := make([]entity.PredictionPoint, 0, count)

	switch method {
	case entity.MethodLinearRegression:
		slope, intercept := LinearRegression(values)
		n := float64(len(values))
		for i := 1; i <= count; i++ {
			value := slope*(n+float64(i)-1) + intercept
			points = append(points, bandedPoint(lastSample.Add(time.Duration(i)*cadence), value, 0.9, 1.1))
		}
	case entity.MethodMovingAverage:
		window := len(values) / 2
		if window > 10 {
			window = 10
		}
		if window < 1 {
			window = 1
		}
		value := Mean(values[len(values)-window:])
		for i := 1; i <= count; i++ {
			points = append(points, bandedPoint(lastSample.Add(time.Duration(i)*cadence), value, 0.85, 1.15))
		}
	case entity.MethodExponentialSmoothing:
		value := values[0]
		for _, v := range values[1:] {
			value = smoothingAlpha*v + (1-smoothingAlpha)*value
		}
		for i := 1; i <= count; i++ {
			points = append(points, bandedPoint(lastSample.Add(time.Duration(i)*cadence), value, 0.8, 1.2))
		}
	}

	return points
}

// LinearRegression fits ordinary least squares over index-vs-value pairs.
func LinearRegression(values []float64) (slope, intercept float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 0
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// ModelAccuracy fits a regression on the first 80% of history and scores it
// with R-squared against the held-out last 20%, clamped to [0, 1]. Short
// histories get a fixed low-confidence 0.5 instead of an unstable fit.
func ModelAccuracy(values []float64) float64 {
	if len(values) < 10 {
		return 0.5
	}

	split := len(values) * 8 / 10
	train, test := values[:split], values[split:]
	slope, intercept := LinearRegression(train)

	testMean := Mean(test)
	var ssRes, ssTot float64
	for i, actual := range test {
		predicted := slope*float64(split+i) + intercept
		ssRes += (actual - predicted) * (actual - predicted)
		ssTot += (actual - testMean) * (actual - testMean)
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1.0
		}
		return 0.0
	}

	r2 := 1 - ssRes/ssTot
	return math.Max(0, math.Min(1, r2))
}

// averageSpacing is the forecast cadence: mean gap between consecutive samples.
func averageSpacing(timestamps []time.Time) time.Duration {
	if len(timestamps) < 2 {
		return 0
	}
	sorted := make([]time.Time, len(timestamps))
	copy(sorted, timestamps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
	total := sorted[len(sorted)-1].Sub(sorted[0])
	return total / time.Duration(len(sorted)-1)
}

func bandedPoint(ts time.Time, value, lowerFactor, upperFactor float64) entity.PredictionPoint {
	lower := value * lowerFactor
	upper := value * upperFactor
	if lower > upper {
		lower, upper = upper, lower
	}
	return entity.PredictionPoint{Timestamp: ts, Value: value, Lower: &lower, Upper: &upper}
}
