package gles

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spaghettifunk/anima-pipeline/engine/core"
	"github.com/spaghettifunk/anima-pipeline/engine/renderer/metadata"
)

type linkMask uint8

const (
	vertexProgramLinked   linkMask = 1 << 0
	fragmentProgramLinked linkMask = 1 << 1
)

func stageBit(stage metadata.ShaderStage) linkMask {
	if stage == metadata.ShaderStageVertex {
		return vertexProgramLinked
	}
	return fragmentProgramLinked
}

/** @brief Lifecycle state of a pipeline. */
type PipelineState int

const (
	PipelineUnlinked PipelineState = iota
	PipelineLinking
	PipelineLinked
	PipelineFailed
)

func (s PipelineState) String() string {
	switch s {
	case PipelineUnlinked:
		return "unlinked"
	case PipelineLinking:
		return "linking"
	case PipelineLinked:
		return "linked"
	case PipelineFailed:
		return "failed"
	}
	return "unknown"
}

type PipelineOptions struct {
	Driver       Driver
	Capabilities metadata.CapabilityQuery
	Logger       *log.Logger
	// Optional. Without it every stage is compiled from source.
	MicrocodeCache MicrocodeCache
	// Optional. Without it uniform blocks are not bound.
	Buffers UniformBufferManager
}

/**
 * @brief A program pipeline binding a separable vertex and fragment program
 * for draw calls, together with the uniform references of both stages.
 */
type Pipeline struct {
	ID uuid.UUID

	vertex   *StageProgram
	fragment *StageProgram

	driver    Driver
	caps      metadata.CapabilityQuery
	logger    *log.Logger
	microcode MicrocodeCache
	buffers   UniformBufferManager

	handle               uint32
	linked               linkMask
	linking              bool
	triedToLinkAndFailed bool

	uniformRefsBuilt bool
	uniformRefs      []metadata.UniformReference
	bufferRefs       []*UniformBufferReference
	bufferRefsByName map[metadata.ShaderStage]map[string]*UniformBufferReference
	supported        [metadata.GpuConstantTypeCount]bool

	scratch      []byte
	blockScratch []float32

	Metrics core.UniformMetrics
}

// NewPipeline creates a pipeline for the given stages. Either stage may be
// nil. Nothing is compiled until the first Activate.
func NewPipeline(vertex, fragment *StageProgram, opts PipelineOptions) *Pipeline {
	caps := opts.Capabilities
	if caps == nil {
		caps = metadata.Capabilities{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = core.Logger()
	}
	p := &Pipeline{
		ID:               uuid.New(),
		vertex:           vertex,
		fragment:         fragment,
		driver:           opts.Driver,
		caps:             caps,
		microcode:        opts.MicrocodeCache,
		buffers:          opts.Buffers,
		bufferRefsByName: make(map[metadata.ShaderStage]map[string]*UniformBufferReference),
	}
	p.logger = logger.With("pipeline", p.CombinedName(), "id", p.ID.String())
	return p
}

func (p *Pipeline) VertexProgram() *StageProgram {
	return p.vertex
}

func (p *Pipeline) FragmentProgram() *StageProgram {
	return p.fragment
}

// CombinedName is "<vertex>/<fragment>", with empty names for missing stages.
func (p *Pipeline) CombinedName() string {
	var v, f string
	if p.vertex != nil {
		v = p.vertex.Name
	}
	if p.fragment != nil {
		f = p.fragment.Name
	}
	return v + "/" + f
}

func (p *Pipeline) Handle() uint32 {
	return p.handle
}

// IsLinked reports whether every present stage is linked into the pipeline.
func (p *Pipeline) IsLinked() bool {
	if p.triedToLinkAndFailed || p.linked == 0 {
		return false
	}
	for _, sp := range p.stages() {
		if p.linked&stageBit(sp.Stage) == 0 {
			return false
		}
	}
	return true
}

func (p *Pipeline) TriedToLinkAndFailed() bool {
	return p.triedToLinkAndFailed
}

func (p *Pipeline) State() PipelineState {
	switch {
	case p.triedToLinkAndFailed:
		return PipelineFailed
	case p.linking:
		return PipelineLinking
	case p.IsLinked():
		return PipelineLinked
	}
	return PipelineUnlinked
}

func (p *Pipeline) stages() []*StageProgram {
	out := make([]*StageProgram, 0, 2)
	if p.vertex != nil {
		out = append(out, p.vertex)
	}
	if p.fragment != nil {
		out = append(out, p.fragment)
	}
	return out
}

func (p *Pipeline) stage(stage metadata.ShaderStage) *StageProgram {
	switch stage {
	case metadata.ShaderStageVertex:
		return p.vertex
	case metadata.ShaderStageFragment:
		return p.fragment
	}
	return nil
}

// Activate links the pipeline on first use and binds it. A pipeline that
// failed to link once is never retried; Activate then returns
// core.ErrPipelineFailed without touching the driver.
func (p *Pipeline) Activate() error {
	if p.triedToLinkAndFailed {
		return fmt.Errorf("pipeline %s: %w", p.CombinedName(), core.ErrPipelineFailed)
	}
	if !p.IsLinked() {
		p.driver.ClearError()
		if err := p.compileAndLink(); err != nil {
			return fmt.Errorf("pipeline %s: %w", p.CombinedName(), err)
		}
		p.BuildUniformReferences()
	}
	if p.IsLinked() {
		p.driver.BindProgramPipeline(p.handle)
	}
	return nil
}

func (p *Pipeline) compileAndLink() error {
	p.linking = true
	defer func() { p.linking = false }()

	if p.handle == 0 {
		p.handle = p.driver.GenProgramPipeline()
	}

	for _, sp := range p.stages() {
		if err := p.linkStage(sp); err != nil {
			p.linked = 0
			p.triedToLinkAndFailed = true
			return err
		}
	}

	if p.linked == 0 {
		return nil
	}
	for _, sp := range p.stages() {
		if !sp.IsLinked() {
			continue
		}
		p.driver.UseProgramStages(p.handle, sp.Stage, sp.Handle())
		p.writeToCache(sp)
	}
	p.logger.Debug("program pipeline linked")
	if p.vertex != nil && p.fragment != nil && p.caps.HasCapability(metadata.CapabilityDebug) {
		p.driver.LabelProgramPipeline(p.handle, p.CombinedName())
	}
	return nil
}

func (p *Pipeline) linkStage(sp *StageProgram) error {
	bit := stageBit(sp.Stage)
	if sp.IsLinked() {
		p.linked |= bit
		return nil
	}
	if p.loadFromCache(sp) {
		sp.SetLinked(true)
		p.linked |= bit
		p.triedToLinkAndFailed = false
		return nil
	}

	if !sp.Compile(p.driver, p.logger) {
		p.logger.Error("stage program failed to compile, see compile log above for details", "program", sp.Name, "stage", sp.Stage)
		return fmt.Errorf("%s program %s: %w", sp.Stage, sp.Name, core.ErrCompileFailed)
	}
	handle := sp.Handle()
	if sp.Stage == metadata.ShaderStageVertex {
		bindFixedAttributes(p.driver, handle)
	}
	p.driver.SetProgramSeparable(handle)
	sp.AttachToProgramObject(p.driver, handle)
	ok, infoLog := p.driver.LinkProgram(handle)
	if infoLog != "" {
		p.logger.Debug("link log", "program", sp.Name, "stage", sp.Stage, "log", infoLog)
	}
	if !ok {
		p.logger.Error("stage program failed to link", "program", sp.Name, "stage", sp.Stage)
		return fmt.Errorf("%s program %s: %w", sp.Stage, sp.Name, core.ErrLinkFailed)
	}
	sp.SetLinked(true)
	p.linked |= bit
	return nil
}

func (p *Pipeline) loadFromCache(sp *StageProgram) bool {
	if p.microcode == nil {
		return false
	}
	m, ok := p.microcode.Get(sp.Name)
	if !ok {
		return false
	}
	handle := sp.CreateProgramHandle(p.driver)
	p.driver.SetProgramSeparable(handle)
	if !p.driver.ProgramBinary(handle, m) {
		p.logger.Warn("cached microcode rejected by driver, compiling from source", "program", sp.Name)
		return false
	}
	return true
}

func (p *Pipeline) writeToCache(sp *StageProgram) {
	if p.microcode == nil {
		return
	}
	if m, ok := p.driver.GetProgramBinary(sp.Handle()); ok {
		p.microcode.Put(sp.Name, m)
	}
}

// Uses reports whether sp is one of the pipeline's stages.
func (p *Pipeline) Uses(sp *StageProgram) bool {
	return sp != nil && (p.vertex == sp || p.fragment == sp)
}

// Reset forgets the link state and the uniform references so the next
// Activate links the stages again, a failed pipeline included. The pipeline
// object and its uniform buffers are kept.
func (p *Pipeline) Reset() {
	p.linked = 0
	p.triedToLinkAndFailed = false
	p.uniformRefsBuilt = false
	p.uniformRefs = nil
	p.logger.Debug("program pipeline reset")
}

// Destroy deletes the pipeline object. Stage programs belong to whoever
// created them and are left alone.
func (p *Pipeline) Destroy() {
	if p.handle != 0 {
		p.driver.DeleteProgramPipeline(p.handle)
		p.handle = 0
	}
	p.linked = 0
}
