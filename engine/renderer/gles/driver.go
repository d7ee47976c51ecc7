// Package gles drives separable program pipelines: it links vertex and
// fragment stage programs, resolves their active uniforms and keeps GPU
// uniform state in sync with CPU side parameters.
package gles

import "github.com/spaghettifunk/anima-pipeline/engine/renderer/metadata"

// InvalidBlockIndex is returned by GetUniformBlockIndex for unknown blocks.
const InvalidBlockIndex uint32 = 0xFFFFFFFF

/**
 * @brief A linked program binary as returned by the driver, reusable to skip
 * compiling a stage from source.
 */
type Microcode struct {
	Format uint32
	Binary []byte
}

// MicrocodeCache stores program binaries by stage program name.
type MicrocodeCache interface {
	Get(name string) (Microcode, bool)
	Put(name string, m Microcode)
}

// Driver is the slice of the graphics API the pipeline talks to. All calls
// happen on the thread owning the graphics context.
type Driver interface {
	GenProgramPipeline() uint32
	DeleteProgramPipeline(pipeline uint32)
	BindProgramPipeline(pipeline uint32)
	UseProgramStages(pipeline uint32, stage metadata.ShaderStage, program uint32)
	LabelProgramPipeline(pipeline uint32, label string)

	CreateProgram() uint32
	DeleteProgram(program uint32)
	// CompileShader returns the shader object, whether it compiled and the info log.
	CompileShader(stage metadata.ShaderStage, source string) (shader uint32, ok bool, infoLog string)
	DeleteShader(shader uint32)
	AttachShader(program, shader uint32)
	BindAttribLocation(program, index uint32, name string)
	SetProgramSeparable(program uint32)
	LinkProgram(program uint32) (ok bool, infoLog string)
	GetProgramBinary(program uint32) (Microcode, bool)
	ProgramBinary(program uint32, m Microcode) bool

	// GetUniformLocation returns metadata.InvalidLocation for inactive uniforms.
	GetUniformLocation(program uint32, name string) int32
	// ProgramUniformfv uploads count vectors of components floats.
	ProgramUniformfv(program uint32, location int32, components int, count int32, value []float32)
	// ProgramUniformiv uploads count vectors of components ints.
	ProgramUniformiv(program uint32, location int32, components int, count int32, value []int32)
	ProgramUniformMatrixfv(program uint32, location int32, cols, rows int, count int32, transpose bool, value []float32)
	GetUniformBlockIndex(program uint32, name string) uint32
	UniformBlockBinding(program, blockIndex, binding uint32)

	// ClearError drops a pending driver error so it is not reported against
	// the next call.
	ClearError()
}

// HardwareUniformBuffer is a GPU buffer backing one uniform block.
type HardwareUniformBuffer interface {
	Binding() uint32
	SizeInBytes() int
	WriteData(offset int, data []float32)
}

// UniformBufferManager hands out uniform buffers for declared blocks.
type UniformBufferManager interface {
	CreateUniformBuffer(name string, sizeInBytes int) (HardwareUniformBuffer, error)
}
