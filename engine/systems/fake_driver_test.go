package systems

import (
	"errors"

	"github.com/spaghettifunk/anima-pipeline/engine/renderer/gles"
	"github.com/spaghettifunk/anima-pipeline/engine/renderer/metadata"
)

type uniformCall struct {
	program  uint32
	location int32
	floats   []float32
	ints     []int32
}

// fakeDriver reports every uniform as active at a fresh location and
// records uploads.
type fakeDriver struct {
	next      uint32
	locations map[string]int32
	compiled  []string
	failOn    string
	binaries  int
	uniforms  []uniformCall
	bound     []uint32
	deleted   []uint32
	pipelines []uint32
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{next: 1, locations: map[string]int32{}}
}

func (d *fakeDriver) handle() uint32 {
	h := d.next
	d.next++
	return h
}

func (d *fakeDriver) GenProgramPipeline() uint32 {
	h := d.handle()
	d.pipelines = append(d.pipelines, h)
	return h
}

func (d *fakeDriver) DeleteProgramPipeline(pipeline uint32) {
	d.deleted = append(d.deleted, pipeline)
}

func (d *fakeDriver) BindProgramPipeline(pipeline uint32) {
	d.bound = append(d.bound, pipeline)
}

func (d *fakeDriver) UseProgramStages(pipeline uint32, stage metadata.ShaderStage, program uint32) {}
func (d *fakeDriver) LabelProgramPipeline(pipeline uint32, label string)                           {}
func (d *fakeDriver) CreateProgram() uint32                                                        { return d.handle() }
func (d *fakeDriver) DeleteProgram(program uint32)                                                 {}

func (d *fakeDriver) CompileShader(stage metadata.ShaderStage, source string) (uint32, bool, string) {
	d.compiled = append(d.compiled, source)
	if source == d.failOn {
		return 0, false, "syntax error"
	}
	return d.handle(), true, ""
}

func (d *fakeDriver) DeleteShader(shader uint32)                            {}
func (d *fakeDriver) AttachShader(program, shader uint32)                   {}
func (d *fakeDriver) BindAttribLocation(program, index uint32, name string) {}
func (d *fakeDriver) SetProgramSeparable(program uint32)                    {}
func (d *fakeDriver) LinkProgram(program uint32) (bool, string)             { return true, "" }

func (d *fakeDriver) GetProgramBinary(program uint32) (gles.Microcode, bool) {
	return gles.Microcode{Format: 7, Binary: []byte{byte(program)}}, true
}

func (d *fakeDriver) ProgramBinary(program uint32, m gles.Microcode) bool {
	d.binaries++
	return true
}

func (d *fakeDriver) GetUniformLocation(program uint32, name string) int32 {
	loc, ok := d.locations[name]
	if !ok {
		loc = int32(len(d.locations))
		d.locations[name] = loc
	}
	return loc
}

func (d *fakeDriver) ProgramUniformfv(program uint32, location int32, components int, count int32, value []float32) {
	d.uniforms = append(d.uniforms, uniformCall{program: program, location: location, floats: append([]float32(nil), value...)})
}

func (d *fakeDriver) ProgramUniformiv(program uint32, location int32, components int, count int32, value []int32) {
	d.uniforms = append(d.uniforms, uniformCall{program: program, location: location, ints: append([]int32(nil), value...)})
}

func (d *fakeDriver) ProgramUniformMatrixfv(program uint32, location int32, cols, rows int, count int32, transpose bool, value []float32) {
	d.uniforms = append(d.uniforms, uniformCall{program: program, location: location, floats: append([]float32(nil), value...)})
}

func (d *fakeDriver) GetUniformBlockIndex(program uint32, name string) uint32 { return 0 }
func (d *fakeDriver) UniformBlockBinding(program, blockIndex, binding uint32) {}
func (d *fakeDriver) ClearError()                                             {}

var errNotFound = errors.New("not found")

type fakeSource map[string]struct {
	config *metadata.ShaderConfig
	source string
}

func (s fakeSource) LoadShader(name string) (*metadata.ShaderConfig, string, error) {
	e, ok := s[name]
	if !ok {
		return nil, "", errNotFound
	}
	return e.config, e.source, nil
}
