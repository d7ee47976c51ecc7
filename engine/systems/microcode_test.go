package systems

import (
	"testing"

	"github.com/spaghettifunk/anima-pipeline/engine/core"
	"github.com/spaghettifunk/anima-pipeline/engine/renderer/gles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMicrocodeCache(t *testing.T) {
	mc, err := NewMicrocodeCache(2, core.DiscardLogger())
	require.NoError(t, err)

	mc.Put("a", gles.Microcode{Format: 1, Binary: []byte{1}})
	mc.Put("b", gles.Microcode{Format: 1, Binary: []byte{2}})
	m, ok := mc.Get("a")
	require.True(t, ok)
	assert.Equal(t, []byte{1}, m.Binary)

	// "b" is the least recently used entry now.
	mc.Put("c", gles.Microcode{Format: 1, Binary: []byte{3}})
	_, ok = mc.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 2, mc.Len())

	assert.True(t, mc.Evict("a"))
	assert.False(t, mc.Evict("a"))
	_, ok = mc.Get("a")
	assert.False(t, ok)

	mc.Purge()
	assert.Equal(t, 0, mc.Len())
}

func TestMicrocodeCacheRejectsZeroCapacity(t *testing.T) {
	_, err := NewMicrocodeCache(0, core.DiscardLogger())
	assert.Error(t, err)
}
