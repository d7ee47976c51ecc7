package gles

import (
	"fmt"

	"github.com/spaghettifunk/anima-pipeline/engine/core"
	"github.com/spaghettifunk/anima-pipeline/engine/renderer/metadata"
)

type uniformCall struct {
	Kind       string // "f", "i" or "m"
	Program    uint32
	Location   int32
	Components int
	Cols, Rows int
	Count      int32
	Transpose  bool
	Floats     []float32
	Ints       []int32
}

type blockWrite struct {
	Name   string
	Offset int
	Data   []float32
}

// fakeDriver records every call the pipeline makes.
type fakeDriver struct {
	nextHandle uint32

	// Programs that fail; keyed by source.
	failCompile map[string]bool
	failLink    map[uint32]bool
	// Active uniform locations per source text, by name.
	locations map[string]map[string]int32
	// Active uniform blocks per source text.
	blocks map[string]map[string]uint32

	programSource map[uint32]string
	shaderSource  map[uint32]string
	binaries      map[uint32]Microcode
	rejectBinary  bool

	compiles        int
	links           int
	locationQueries int
	bound           []uint32
	stagesUsed      map[metadata.ShaderStage]uint32
	labels          map[uint32]string
	separable       map[uint32]bool
	attribs         map[uint32][]string
	uniformCalls    []uniformCall
	blockBindings   map[uint32]map[uint32]uint32
	deletedPipeline []uint32
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		failCompile:   map[string]bool{},
		failLink:      map[uint32]bool{},
		locations:     map[string]map[string]int32{},
		blocks:        map[string]map[string]uint32{},
		programSource: map[uint32]string{},
		shaderSource:  map[uint32]string{},
		binaries:      map[uint32]Microcode{},
		stagesUsed:    map[metadata.ShaderStage]uint32{},
		labels:        map[uint32]string{},
		separable:     map[uint32]bool{},
		attribs:       map[uint32][]string{},
		blockBindings: map[uint32]map[uint32]uint32{},
	}
}

func (d *fakeDriver) gen() uint32 {
	d.nextHandle++
	return d.nextHandle
}

func (d *fakeDriver) GenProgramPipeline() uint32 { return d.gen() }
func (d *fakeDriver) DeleteProgramPipeline(pipeline uint32) {
	d.deletedPipeline = append(d.deletedPipeline, pipeline)
}
func (d *fakeDriver) BindProgramPipeline(pipeline uint32) { d.bound = append(d.bound, pipeline) }
func (d *fakeDriver) UseProgramStages(pipeline uint32, stage metadata.ShaderStage, program uint32) {
	d.stagesUsed[stage] = program
}
func (d *fakeDriver) LabelProgramPipeline(pipeline uint32, label string) { d.labels[pipeline] = label }
func (d *fakeDriver) CreateProgram() uint32                              { return d.gen() }
func (d *fakeDriver) DeleteProgram(program uint32)                       {}

func (d *fakeDriver) CompileShader(stage metadata.ShaderStage, source string) (uint32, bool, string) {
	d.compiles++
	h := d.gen()
	d.shaderSource[h] = source
	if d.failCompile[source] {
		return h, false, "ERROR: 0:1: syntax error"
	}
	return h, true, ""
}

func (d *fakeDriver) DeleteShader(shader uint32) {}
func (d *fakeDriver) AttachShader(program, shader uint32) {
	d.programSource[program] = d.shaderSource[shader]
}
func (d *fakeDriver) BindAttribLocation(program, index uint32, name string) {
	d.attribs[program] = append(d.attribs[program], name)
}
func (d *fakeDriver) SetProgramSeparable(program uint32) { d.separable[program] = true }

func (d *fakeDriver) LinkProgram(program uint32) (bool, string) {
	d.links++
	if d.failLink[program] {
		return false, "link error"
	}
	d.binaries[program] = Microcode{Format: 0x8741, Binary: []byte(d.programSource[program])}
	return true, ""
}

func (d *fakeDriver) GetProgramBinary(program uint32) (Microcode, bool) {
	m, ok := d.binaries[program]
	return m, ok
}

func (d *fakeDriver) ProgramBinary(program uint32, m Microcode) bool {
	if d.rejectBinary {
		return false
	}
	d.binaries[program] = m
	d.programSource[program] = string(m.Binary)
	return true
}

func (d *fakeDriver) GetUniformLocation(program uint32, name string) int32 {
	d.locationQueries++
	if loc, ok := d.locations[d.programSource[program]][name]; ok {
		return loc
	}
	return metadata.InvalidLocation
}

func (d *fakeDriver) ProgramUniformfv(program uint32, location int32, components int, count int32, value []float32) {
	d.uniformCalls = append(d.uniformCalls, uniformCall{Kind: "f", Program: program, Location: location,
		Components: components, Count: count, Floats: append([]float32(nil), value...)})
}

func (d *fakeDriver) ProgramUniformiv(program uint32, location int32, components int, count int32, value []int32) {
	d.uniformCalls = append(d.uniformCalls, uniformCall{Kind: "i", Program: program, Location: location,
		Components: components, Count: count, Ints: append([]int32(nil), value...)})
}

func (d *fakeDriver) ProgramUniformMatrixfv(program uint32, location int32, cols, rows int, count int32, transpose bool, value []float32) {
	d.uniformCalls = append(d.uniformCalls, uniformCall{Kind: "m", Program: program, Location: location,
		Cols: cols, Rows: rows, Count: count, Transpose: transpose, Floats: append([]float32(nil), value...)})
}

func (d *fakeDriver) GetUniformBlockIndex(program uint32, name string) uint32 {
	if idx, ok := d.blocks[d.programSource[program]][name]; ok {
		return idx
	}
	return InvalidBlockIndex
}

func (d *fakeDriver) UniformBlockBinding(program, blockIndex, binding uint32) {
	if d.blockBindings[program] == nil {
		d.blockBindings[program] = map[uint32]uint32{}
	}
	d.blockBindings[program][blockIndex] = binding
}

func (d *fakeDriver) ClearError() {}

type fakeBuffer struct {
	name    string
	binding uint32
	size    int
	writes  []blockWrite
}

func (b *fakeBuffer) Binding() uint32  { return b.binding }
func (b *fakeBuffer) SizeInBytes() int { return b.size }
func (b *fakeBuffer) WriteData(offset int, data []float32) {
	b.writes = append(b.writes, blockWrite{Name: b.name, Offset: offset, Data: append([]float32(nil), data...)})
}

type fakeBufferManager struct {
	created []*fakeBuffer
	fail    map[string]bool
}

func (m *fakeBufferManager) CreateUniformBuffer(name string, sizeInBytes int) (HardwareUniformBuffer, error) {
	if m.fail[name] {
		return nil, fmt.Errorf("out of buffer bindings")
	}
	b := &fakeBuffer{name: name, binding: uint32(len(m.created)), size: sizeInBytes}
	m.created = append(m.created, b)
	return b, nil
}

type mapMicrocodeCache map[string]Microcode

func (c mapMicrocodeCache) Get(name string) (Microcode, bool) {
	m, ok := c[name]
	return m, ok
}

func (c mapMicrocodeCache) Put(name string, m Microcode) { c[name] = m }

func allCapabilities() metadata.Capabilities {
	return metadata.Capabilities{
		metadata.CapabilityUniformBuffers:    true,
		metadata.CapabilityNonSquareMatrices: true,
		metadata.CapabilityArraySamplers:     true,
		metadata.CapabilityDebug:             true,
	}
}

func testOptions(d Driver) PipelineOptions {
	return PipelineOptions{
		Driver:       d,
		Capabilities: allCapabilities(),
		Logger:       core.DiscardLogger(),
	}
}
