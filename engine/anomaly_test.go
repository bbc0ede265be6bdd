package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeviationSeverityBuckets(t *testing.T) {
	assert.Equal(t, "low", deviationSeverity(0))
	assert.Equal(t, "low", deviationSeverity(2.9))
	assert.Equal(t, "medium", deviationSeverity(3))
	assert.Equal(t, "medium", deviationSeverity(3.9))
	assert.Equal(t, "high", deviationSeverity(4))
	assert.Equal(t, "high", deviationSeverity(4.9))
	assert.Equal(t, "critical", deviationSeverity(5))
	assert.Equal(t, "critical", deviationSeverity(6))
}

// Severity must never decrease as deviation grows.
func TestDeviationSeverityMonotonic(t *testing.T) {
	rank := map[string]int{"low": 0, "medium": 1, "high": 2, "critical": 3}

	previous := -1
	for deviation := 0.0; deviation <= 10; deviation += 0.1 {
		current := rank[deviationSeverity(deviation)]
		assert.GreaterOrEqual(t, current, previous, "deviation=%v", deviation)
		previous = current
	}
}

func TestDeviationConfidence(t *testing.T) {
	assert.Equal(t, 0.3, deviationConfidence(3))
	assert.Equal(t, 0.6, deviationConfidence(6))
	assert.Equal(t, 1.0, deviationConfidence(10))
	assert.Equal(t, 1.0, deviationConfidence(25))
}
