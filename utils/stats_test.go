package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatsUpdate(t *testing.T) {
	t.Parallel()

	s := NewStats()
	s.Update(1, 2, 100*time.Millisecond)
	s.Update(2, 4, 100*time.Millisecond)
	s.Update(3, 6, 100*time.Millisecond)

	assert.Equal(t, 3, s.TotalGenerations)
	assert.Equal(t, []float64{2, 4, 6}, s.Populations)
	assert.InDelta(t, 4.0, s.AveragePopulation, 1e-9)
	assert.InDelta(t, 2.0, s.PopulationStdDev, 1e-9)
	assert.InDelta(t, 10.0, s.GenerationsPerSecond, 1e-6)
}
