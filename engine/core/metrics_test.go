package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniformMetrics(t *testing.T) {
	var m UniformMetrics
	assert.Zero(t, m.HitRatio())

	m.Dispatches = 1
	m.CacheHits = 3
	m.Skipped = 2
	m.BlockWrites = 5
	assert.InDelta(t, 0.75, m.HitRatio(), 1e-9)
	assert.Equal(t, "dispatches=1 hits=3 skipped=2 blocks=5", m.String())

	m.Reset()
	assert.Equal(t, UniformMetrics{}, m)
}
