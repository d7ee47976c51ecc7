// Package gldriver implements the gles Driver on top of OpenGL 4.1 core,
// which exposes separable programs and program pipelines natively.
package gldriver

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/charmbracelet/log"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/spaghettifunk/anima-pipeline/engine/renderer/gles"
	"github.com/spaghettifunk/anima-pipeline/engine/renderer/metadata"
)

type Driver struct {
	logger *log.Logger
}

// New loads the GL entry points. A context must be current on the calling
// thread.
func New(logger *log.Logger) (*Driver, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize gl: %w", err)
	}
	logger.Info("OpenGL initialized", "version", gl.GoStr(gl.GetString(gl.VERSION)), "renderer", gl.GoStr(gl.GetString(gl.RENDERER)))
	return &Driver{logger: logger}, nil
}

func (d *Driver) GenProgramPipeline() uint32 {
	var pipeline uint32
	gl.GenProgramPipelines(1, &pipeline)
	return pipeline
}

func (d *Driver) DeleteProgramPipeline(pipeline uint32) {
	gl.DeleteProgramPipelines(1, &pipeline)
}

func (d *Driver) BindProgramPipeline(pipeline uint32) {
	gl.BindProgramPipeline(pipeline)
}

func (d *Driver) UseProgramStages(pipeline uint32, stage metadata.ShaderStage, program uint32) {
	gl.UseProgramStages(pipeline, stageBit(stage), program)
}

// LabelProgramPipeline only logs: object labels need GL 4.3 or KHR_debug,
// neither of which the 4.1 core bindings expose.
func (d *Driver) LabelProgramPipeline(pipeline uint32, label string) {
	d.logger.Debug("program pipeline", "handle", pipeline, "label", label)
}

func (d *Driver) CreateProgram() uint32 {
	return gl.CreateProgram()
}

func (d *Driver) DeleteProgram(program uint32) {
	gl.DeleteProgram(program)
}

func (d *Driver) CompileShader(stage metadata.ShaderStage, source string) (uint32, bool, string) {
	shader := gl.CreateShader(shaderType(stage))
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	var logLength int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
	infoLog := ""
	if logLength > 1 {
		buf := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(buf))
		infoLog = strings.TrimRight(buf, "\x00")
	}
	return shader, status == gl.TRUE, infoLog
}

func (d *Driver) DeleteShader(shader uint32) {
	gl.DeleteShader(shader)
}

func (d *Driver) AttachShader(program, shader uint32) {
	gl.AttachShader(program, shader)
}

func (d *Driver) BindAttribLocation(program, index uint32, name string) {
	gl.BindAttribLocation(program, index, gl.Str(name+"\x00"))
}

func (d *Driver) SetProgramSeparable(program uint32) {
	gl.ProgramParameteri(program, gl.PROGRAM_SEPARABLE, gl.TRUE)
	gl.ProgramParameteri(program, gl.PROGRAM_BINARY_RETRIEVABLE_HINT, gl.TRUE)
}

func (d *Driver) LinkProgram(program uint32) (bool, string) {
	gl.LinkProgram(program)
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	infoLog := ""
	if logLength > 1 {
		buf := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(buf))
		infoLog = strings.TrimRight(buf, "\x00")
	}
	return status == gl.TRUE, infoLog
}

func (d *Driver) GetProgramBinary(program uint32) (gles.Microcode, bool) {
	var length int32
	gl.GetProgramiv(program, gl.PROGRAM_BINARY_LENGTH, &length)
	if length <= 0 {
		return gles.Microcode{}, false
	}
	m := gles.Microcode{Binary: make([]byte, length)}
	var written int32
	gl.GetProgramBinary(program, length, &written, &m.Format, unsafe.Pointer(&m.Binary[0]))
	if written <= 0 {
		return gles.Microcode{}, false
	}
	m.Binary = m.Binary[:written]
	return m, true
}

func (d *Driver) ProgramBinary(program uint32, m gles.Microcode) bool {
	if len(m.Binary) == 0 {
		return false
	}
	gl.ProgramBinary(program, m.Format, unsafe.Pointer(&m.Binary[0]), int32(len(m.Binary)))
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	return status == gl.TRUE
}

func (d *Driver) GetUniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (d *Driver) ProgramUniformfv(program uint32, location int32, components int, count int32, value []float32) {
	if len(value) == 0 {
		return
	}
	switch components {
	case 1:
		gl.ProgramUniform1fv(program, location, count, &value[0])
	case 2:
		gl.ProgramUniform2fv(program, location, count, &value[0])
	case 3:
		gl.ProgramUniform3fv(program, location, count, &value[0])
	case 4:
		gl.ProgramUniform4fv(program, location, count, &value[0])
	}
}

func (d *Driver) ProgramUniformiv(program uint32, location int32, components int, count int32, value []int32) {
	if len(value) == 0 {
		return
	}
	switch components {
	case 1:
		gl.ProgramUniform1iv(program, location, count, &value[0])
	case 2:
		gl.ProgramUniform2iv(program, location, count, &value[0])
	case 3:
		gl.ProgramUniform3iv(program, location, count, &value[0])
	case 4:
		gl.ProgramUniform4iv(program, location, count, &value[0])
	}
}

func (d *Driver) ProgramUniformMatrixfv(program uint32, location int32, cols, rows int, count int32, transpose bool, value []float32) {
	if len(value) == 0 {
		return
	}
	v := &value[0]
	switch {
	case cols == 2 && rows == 2:
		gl.ProgramUniformMatrix2fv(program, location, count, transpose, v)
	case cols == 3 && rows == 3:
		gl.ProgramUniformMatrix3fv(program, location, count, transpose, v)
	case cols == 4 && rows == 4:
		gl.ProgramUniformMatrix4fv(program, location, count, transpose, v)
	case cols == 2 && rows == 3:
		gl.ProgramUniformMatrix2x3fv(program, location, count, transpose, v)
	case cols == 2 && rows == 4:
		gl.ProgramUniformMatrix2x4fv(program, location, count, transpose, v)
	case cols == 3 && rows == 2:
		gl.ProgramUniformMatrix3x2fv(program, location, count, transpose, v)
	case cols == 3 && rows == 4:
		gl.ProgramUniformMatrix3x4fv(program, location, count, transpose, v)
	case cols == 4 && rows == 2:
		gl.ProgramUniformMatrix4x2fv(program, location, count, transpose, v)
	case cols == 4 && rows == 3:
		gl.ProgramUniformMatrix4x3fv(program, location, count, transpose, v)
	}
}

func (d *Driver) GetUniformBlockIndex(program uint32, name string) uint32 {
	return gl.GetUniformBlockIndex(program, gl.Str(name+"\x00"))
}

func (d *Driver) UniformBlockBinding(program, blockIndex, binding uint32) {
	gl.UniformBlockBinding(program, blockIndex, binding)
}

func (d *Driver) ClearError() {
	for i := 0; i < 16 && gl.GetError() != gl.NO_ERROR; i++ {
	}
}

func shaderType(stage metadata.ShaderStage) uint32 {
	if stage == metadata.ShaderStageVertex {
		return gl.VERTEX_SHADER
	}
	return gl.FRAGMENT_SHADER
}

func stageBit(stage metadata.ShaderStage) uint32 {
	if stage == metadata.ShaderStageVertex {
		return gl.VERTEX_SHADER_BIT
	}
	return gl.FRAGMENT_SHADER_BIT
}
