package gles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniformCache(t *testing.T) {
	c := NewUniformCache()
	a := appendFloats(nil, []float32{1, 0, 0, 1})
	b := appendFloats(nil, []float32{1, 0, 0, 0.5})

	assert.True(t, c.UpdateUniform(0, a), "first write")
	assert.False(t, c.UpdateUniform(0, a), "same bytes")
	assert.True(t, c.UpdateUniform(1, a), "other location")
	assert.True(t, c.UpdateUniform(0, b), "changed bytes")
	assert.False(t, c.UpdateUniform(0, b))
	assert.Equal(t, 2, c.Len())

	// The cache keeps its own copy.
	b[0] = 0xFF
	assert.True(t, c.UpdateUniform(0, b))

	c.Clear()
	assert.Zero(t, c.Len())
	assert.True(t, c.UpdateUniform(0, a))
}

func TestIntAndFloatBytesDiffer(t *testing.T) {
	// 1 as int32 and 1.0 as float32 have different bit patterns.
	assert.NotEqual(t, appendInts(nil, []int32{1}), appendFloats(nil, []float32{1}))
	assert.Len(t, appendInts(nil, []int32{1, 2, 3}), 12)
}
