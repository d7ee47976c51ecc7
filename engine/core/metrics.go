package core

import "fmt"

// UniformMetrics counts what the uniform updater did. It is owned by a single
// pipeline and only touched from the graphics thread.
type UniformMetrics struct {
	// Driver uniform calls issued.
	Dispatches uint64
	// Uniforms whose bytes matched the last written value.
	CacheHits uint64
	// Uniforms of a kind the current capability tier cannot upload.
	Skipped uint64
	// Uniform blocks rewritten.
	BlockWrites uint64
}

func (m *UniformMetrics) Reset() {
	*m = UniformMetrics{}
}

// HitRatio is the share of filtered uniforms that did not reach the driver.
func (m *UniformMetrics) HitRatio() float64 {
	total := m.Dispatches + m.CacheHits
	if total == 0 {
		return 0
	}
	return float64(m.CacheHits) / float64(total)
}

func (m UniformMetrics) String() string {
	return fmt.Sprintf("dispatches=%d hits=%d skipped=%d blocks=%d", m.Dispatches, m.CacheHits, m.Skipped, m.BlockWrites)
}
