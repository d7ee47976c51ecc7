package metadata

import (
	"fmt"
	"strings"
)

/**
 * @brief The type of a constant declared by a shader stage, as reported by
 * the reflection front end.
 */
type GpuConstantType int

const (
	GpuConstUnknown GpuConstantType = iota
	GpuConstFloat1
	GpuConstFloat2
	GpuConstFloat3
	GpuConstFloat4
	GpuConstInt1
	GpuConstInt2
	GpuConstInt3
	GpuConstInt4
	GpuConstMatrix2x2
	GpuConstMatrix2x3
	GpuConstMatrix2x4
	GpuConstMatrix3x2
	GpuConstMatrix3x3
	GpuConstMatrix3x4
	GpuConstMatrix4x2
	GpuConstMatrix4x3
	GpuConstMatrix4x4
	GpuConstSampler1D
	GpuConstSampler1DShadow
	GpuConstSampler2D
	GpuConstSampler2DShadow
	GpuConstSampler2DArray
	GpuConstSampler3D
	GpuConstSamplerCube
	GpuConstSamplerRect
	GpuConstDouble1
	GpuConstDouble2
	GpuConstDouble3
	GpuConstDouble4
	GpuConstMatrixDouble2x2
	GpuConstMatrixDouble2x3
	GpuConstMatrixDouble2x4
	GpuConstMatrixDouble3x2
	GpuConstMatrixDouble3x3
	GpuConstMatrixDouble3x4
	GpuConstMatrixDouble4x2
	GpuConstMatrixDouble4x3
	GpuConstMatrixDouble4x4
	GpuConstSubroutine

	gpuConstCount
)

var gpuConstantNames = [gpuConstCount]string{
	GpuConstUnknown:         "unknown",
	GpuConstFloat1:          "float",
	GpuConstFloat2:          "vec2",
	GpuConstFloat3:          "vec3",
	GpuConstFloat4:          "vec4",
	GpuConstInt1:            "int",
	GpuConstInt2:            "ivec2",
	GpuConstInt3:            "ivec3",
	GpuConstInt4:            "ivec4",
	GpuConstMatrix2x2:       "mat2",
	GpuConstMatrix2x3:       "mat2x3",
	GpuConstMatrix2x4:       "mat2x4",
	GpuConstMatrix3x2:       "mat3x2",
	GpuConstMatrix3x3:       "mat3",
	GpuConstMatrix3x4:       "mat3x4",
	GpuConstMatrix4x2:       "mat4x2",
	GpuConstMatrix4x3:       "mat4x3",
	GpuConstMatrix4x4:       "mat4",
	GpuConstSampler1D:       "sampler1D",
	GpuConstSampler1DShadow: "sampler1DShadow",
	GpuConstSampler2D:       "sampler2D",
	GpuConstSampler2DShadow: "sampler2DShadow",
	GpuConstSampler2DArray:  "sampler2DArray",
	GpuConstSampler3D:       "sampler3D",
	GpuConstSamplerCube:     "samplerCube",
	GpuConstSamplerRect:     "sampler2DRect",
	GpuConstDouble1:         "double",
	GpuConstDouble2:         "dvec2",
	GpuConstDouble3:         "dvec3",
	GpuConstDouble4:         "dvec4",
	GpuConstMatrixDouble2x2: "dmat2",
	GpuConstMatrixDouble2x3: "dmat2x3",
	GpuConstMatrixDouble2x4: "dmat2x4",
	GpuConstMatrixDouble3x2: "dmat3x2",
	GpuConstMatrixDouble3x3: "dmat3",
	GpuConstMatrixDouble3x4: "dmat3x4",
	GpuConstMatrixDouble4x2: "dmat4x2",
	GpuConstMatrixDouble4x3: "dmat4x3",
	GpuConstMatrixDouble4x4: "dmat4",
	GpuConstSubroutine:      "subroutine",
}

// GpuConstantTypeCount is the number of known constant types, usable as an
// array length for per-type tables.
const GpuConstantTypeCount = int(gpuConstCount)

func (t GpuConstantType) String() string {
	if t < 0 || t >= gpuConstCount {
		return fmt.Sprintf("GpuConstantType(%d)", int(t))
	}
	return gpuConstantNames[t]
}

// GpuConstantTypeFromString maps a GLSL type name to its constant type.
func GpuConstantTypeFromString(s string) (GpuConstantType, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "mat2x2":
		return GpuConstMatrix2x2, nil
	case "mat3x3":
		return GpuConstMatrix3x3, nil
	case "mat4x4":
		return GpuConstMatrix4x4, nil
	}
	for i, name := range gpuConstantNames {
		if name == s {
			return GpuConstantType(i), nil
		}
	}
	return GpuConstUnknown, fmt.Errorf("string %s is not a valid GpuConstantType", s)
}

func (t GpuConstantType) IsSampler() bool {
	return t >= GpuConstSampler1D && t <= GpuConstSamplerRect
}

// IsInt reports whether values of this type live in the int buffer.
// Samplers hold a texture unit index, so they count as ints.
func (t GpuConstantType) IsInt() bool {
	return (t >= GpuConstInt1 && t <= GpuConstInt4) || t.IsSampler() || t == GpuConstSubroutine
}

func (t GpuConstantType) IsDouble() bool {
	return t >= GpuConstDouble1 && t <= GpuConstMatrixDouble4x4
}

// MatrixShape returns the column and row count of a float matrix type.
func (t GpuConstantType) MatrixShape() (cols, rows int, ok bool) {
	switch t {
	case GpuConstMatrix2x2:
		return 2, 2, true
	case GpuConstMatrix2x3:
		return 2, 3, true
	case GpuConstMatrix2x4:
		return 2, 4, true
	case GpuConstMatrix3x2:
		return 3, 2, true
	case GpuConstMatrix3x3:
		return 3, 3, true
	case GpuConstMatrix3x4:
		return 3, 4, true
	case GpuConstMatrix4x2:
		return 4, 2, true
	case GpuConstMatrix4x3:
		return 4, 3, true
	case GpuConstMatrix4x4:
		return 4, 4, true
	}
	return 0, 0, false
}

func (t GpuConstantType) IsNonSquareMatrix() bool {
	cols, rows, ok := t.MatrixShape()
	return ok && cols != rows
}

// ElementSize returns the number of scalars one element of the type occupies
// in a parameter buffer. Sub-vec4 types are not padded.
func (t GpuConstantType) ElementSize() int {
	switch t {
	case GpuConstFloat1, GpuConstInt1, GpuConstDouble1, GpuConstSubroutine:
		return 1
	case GpuConstFloat2, GpuConstInt2, GpuConstDouble2:
		return 2
	case GpuConstFloat3, GpuConstInt3, GpuConstDouble3:
		return 3
	case GpuConstFloat4, GpuConstInt4, GpuConstDouble4:
		return 4
	case GpuConstMatrixDouble2x2:
		return 4
	case GpuConstMatrixDouble2x3, GpuConstMatrixDouble3x2:
		return 6
	case GpuConstMatrixDouble2x4, GpuConstMatrixDouble4x2:
		return 8
	case GpuConstMatrixDouble3x3:
		return 9
	case GpuConstMatrixDouble3x4, GpuConstMatrixDouble4x3:
		return 12
	case GpuConstMatrixDouble4x4:
		return 16
	}
	if cols, rows, ok := t.MatrixShape(); ok {
		return cols * rows
	}
	if t.IsSampler() {
		return 1
	}
	return 0
}
