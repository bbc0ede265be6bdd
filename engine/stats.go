package engine

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Percentile estimates the p-th percentile (p in [0,1]) with the nearest-rank
// method: sort ascending, index = ceil(n*p)-1 clamped to [0, n-1]. A
// single-element slice returns that element for any p.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// StdDev returns the population standard deviation:
// sqrt(avg(x^2) - avg(x)^2).
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum, sumSq float64
	for _, v := range values {
		sum += v
		sumSq += v * v
	}
	n := float64(len(values))
	variance := sumSq/n - (sum/n)*(sum/n)
	if variance < 0 {
		// guard against floating point rounding below zero
		variance = 0
	}
	return math.Sqrt(variance)
}
