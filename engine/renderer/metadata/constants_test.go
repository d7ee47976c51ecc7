package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGpuConstantTypeNames(t *testing.T) {
	for i := 0; i < GpuConstantTypeCount; i++ {
		typ := GpuConstantType(i)
		got, err := GpuConstantTypeFromString(typ.String())
		require.NoError(t, err, typ.String())
		assert.Equal(t, typ, got)
	}

	got, err := GpuConstantTypeFromString("mat4x4")
	require.NoError(t, err)
	assert.Equal(t, GpuConstMatrix4x4, got)

	_, err = GpuConstantTypeFromString("vec5")
	assert.Error(t, err)
}

func TestGpuConstantTypeClassification(t *testing.T) {
	cases := []struct {
		typ     GpuConstantType
		size    int
		isInt   bool
		sampler bool
		double  bool
	}{
		{GpuConstFloat3, 3, false, false, false},
		{GpuConstInt2, 2, true, false, false},
		{GpuConstMatrix3x4, 12, false, false, false},
		{GpuConstSampler2D, 1, true, true, false},
		{GpuConstSamplerRect, 1, true, true, false},
		{GpuConstDouble4, 4, false, false, true},
		{GpuConstMatrixDouble4x3, 12, false, false, true},
		{GpuConstSubroutine, 1, true, false, false},
		{GpuConstUnknown, 0, false, false, false},
	}
	for _, c := range cases {
		t.Run(c.typ.String(), func(t *testing.T) {
			assert.Equal(t, c.size, c.typ.ElementSize())
			assert.Equal(t, c.isInt, c.typ.IsInt())
			assert.Equal(t, c.sampler, c.typ.IsSampler())
			assert.Equal(t, c.double, c.typ.IsDouble())
		})
	}
}

func TestMatrixShape(t *testing.T) {
	cols, rows, ok := GpuConstMatrix2x4.MatrixShape()
	require.True(t, ok)
	assert.Equal(t, 2, cols)
	assert.Equal(t, 4, rows)
	assert.True(t, GpuConstMatrix2x4.IsNonSquareMatrix())
	assert.False(t, GpuConstMatrix4x4.IsNonSquareMatrix())

	_, _, ok = GpuConstMatrixDouble2x2.MatrixShape()
	assert.False(t, ok, "double matrices have no float shape")
}
