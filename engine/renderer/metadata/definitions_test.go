package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddConstantAllocatesPerBuffer(t *testing.T) {
	defs := NewGpuConstantDefinitions()

	mvp, err := defs.AddConstant("worldViewProj", GpuConstMatrix4x4, 1, GpuVariabilityPerObject)
	require.NoError(t, err)
	diffuse, err := defs.AddConstant("diffuseMap", GpuConstSampler2D, 1, 0)
	require.NoError(t, err)
	lights, err := defs.AddConstant("lightPositions", GpuConstFloat4, 4, GpuVariabilityLights)
	require.NoError(t, err)
	offsets, err := defs.AddConstant("offsets", GpuConstInt2, 0, GpuVariabilityGlobal)
	require.NoError(t, err)

	assert.Equal(t, 0, mvp.PhysicalIndex)
	assert.Equal(t, 16, lights.PhysicalIndex)
	assert.Equal(t, 0, diffuse.PhysicalIndex)
	assert.Equal(t, 1, offsets.PhysicalIndex)
	assert.Equal(t, 1, offsets.ArraySize, "array size is at least one")
	assert.Equal(t, GpuVariabilityGlobal, diffuse.Variability, "variability defaults to global")
	assert.Equal(t, 32, defs.FloatBufferSize)
	assert.Equal(t, 3, defs.IntBufferSize)
	assert.Equal(t, 16, lights.Scalars())

	_, err = defs.AddConstant("worldViewProj", GpuConstFloat1, 1, 0)
	assert.Error(t, err)
	_, err = defs.AddConstant("", GpuConstFloat1, 1, 0)
	assert.Error(t, err)

	assert.Equal(t, []string{"diffuseMap", "lightPositions", "offsets", "worldViewProj"}, defs.Names())
}

func TestAddBlock(t *testing.T) {
	defs := NewGpuConstantDefinitions()
	require.NoError(t, defs.AddBlock("Frame", 64))
	assert.Error(t, defs.AddBlock("Frame", 16))
	assert.Error(t, defs.AddBlock("Empty", 0))
	assert.Error(t, defs.AddBlock("", 16))
	assert.Equal(t, []UniformBlockDefinition{{Name: "Frame", SizeInBytes: 64}}, defs.Blocks)
}
