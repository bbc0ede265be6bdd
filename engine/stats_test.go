package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 5.0, Mean([]float64{5}))
	assert.Equal(t, 2.5, Mean([]float64{1, 2, 3, 4}))
}

func TestPercentileSingleElement(t *testing.T) {
	for _, p := range []float64{0, 0.01, 0.5, 0.95, 0.99, 1} {
		assert.Equal(t, 42.0, Percentile([]float64{42}, p), "p=%v", p)
	}
}

func TestPercentileNearestRank(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

	assert.Equal(t, 50.0, Percentile(values, 0.5))
	assert.Equal(t, 90.0, Percentile(values, 0.9))
	assert.Equal(t, 100.0, Percentile(values, 0.99))
	assert.Equal(t, 10.0, Percentile(values, 0))
	assert.Equal(t, 100.0, Percentile(values, 1))
}

func TestPercentileDoesNotMutateInput(t *testing.T) {
	values := []float64{30, 10, 20}
	Percentile(values, 0.5)
	assert.Equal(t, []float64{30, 10, 20}, values)
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, 0.0, StdDev([]float64{7, 7, 7}))

	// Population stddev of {2, 4, 4, 4, 5, 5, 7, 9} is exactly 2.
	assert.InDelta(t, 2.0, StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
}
