package gles

import "github.com/spaghettifunk/anima-pipeline/engine/renderer/metadata"

/**
 * @brief The GPU buffer backing one uniform block of a stage.
 */
type UniformBufferReference struct {
	Name   string
	Stage  metadata.ShaderStage
	Buffer HardwareUniformBuffer
}

// supportedKinds resolves the capability tier into the set of constant types
// the updater may upload. It is computed once per build.
func supportedKinds(caps metadata.CapabilityQuery) [metadata.GpuConstantTypeCount]bool {
	var set [metadata.GpuConstantTypeCount]bool
	for _, t := range []metadata.GpuConstantType{
		metadata.GpuConstFloat1, metadata.GpuConstFloat2, metadata.GpuConstFloat3, metadata.GpuConstFloat4,
		metadata.GpuConstInt1, metadata.GpuConstInt2, metadata.GpuConstInt3, metadata.GpuConstInt4,
		metadata.GpuConstMatrix2x2, metadata.GpuConstMatrix3x3, metadata.GpuConstMatrix4x4,
		metadata.GpuConstSampler1D, metadata.GpuConstSampler1DShadow,
		metadata.GpuConstSampler2D, metadata.GpuConstSampler2DShadow,
		metadata.GpuConstSampler3D, metadata.GpuConstSamplerCube,
	} {
		set[t] = true
	}
	if caps.HasCapability(metadata.CapabilityNonSquareMatrices) {
		for _, t := range []metadata.GpuConstantType{
			metadata.GpuConstMatrix2x3, metadata.GpuConstMatrix2x4,
			metadata.GpuConstMatrix3x2, metadata.GpuConstMatrix3x4,
			metadata.GpuConstMatrix4x2, metadata.GpuConstMatrix4x3,
		} {
			set[t] = true
		}
	}
	if caps.HasCapability(metadata.CapabilityArraySamplers) {
		set[metadata.GpuConstSampler2DArray] = true
	}
	return set
}

// BuildUniformReferences resolves the active uniforms of both linked stages,
// vertex first. It runs once; later calls return immediately. Constants the
// driver reports as inactive are left out, which is not an error.
func (p *Pipeline) BuildUniformReferences() {
	if p.uniformRefsBuilt {
		return
	}
	p.supported = supportedKinds(p.caps)
	for _, sp := range p.stages() {
		if !sp.IsLinked() || sp.Handle() == 0 {
			continue
		}
		p.extractUniforms(sp)
		p.extractUniformBlocks(sp)
	}
	p.uniformRefsBuilt = true
	p.logger.Debug("uniform references built", "uniforms", len(p.uniformRefs), "blocks", len(p.bufferRefs))
}

func (p *Pipeline) extractUniforms(sp *StageProgram) {
	for _, name := range sp.Definitions.Names() {
		location := p.driver.GetUniformLocation(sp.Handle(), name)
		if location == metadata.InvalidLocation {
			continue
		}
		p.uniformRefs = append(p.uniformRefs, metadata.UniformReference{
			ConstantDef: sp.Definitions.Map[name],
			Location:    location,
			SourceStage: sp.Stage,
		})
	}
}

func (p *Pipeline) extractUniformBlocks(sp *StageProgram) {
	if p.buffers == nil || !p.caps.HasCapability(metadata.CapabilityUniformBuffers) {
		return
	}
	byName := p.bufferRefsByName[sp.Stage]
	if byName == nil {
		byName = make(map[string]*UniformBufferReference)
		p.bufferRefsByName[sp.Stage] = byName
	}
	for _, block := range sp.Definitions.Blocks {
		if _, ok := byName[block.Name]; ok {
			continue
		}
		buf, err := p.buffers.CreateUniformBuffer(block.Name, block.SizeInBytes)
		if err != nil {
			p.logger.Warn("unable to create uniform buffer", "block", block.Name, "stage", sp.Stage, "err", err)
			continue
		}
		ref := &UniformBufferReference{Name: block.Name, Stage: sp.Stage, Buffer: buf}
		byName[block.Name] = ref
		p.bufferRefs = append(p.bufferRefs, ref)
	}
}

func (p *Pipeline) UniformReferences() []metadata.UniformReference {
	return p.uniformRefs
}

func (p *Pipeline) UniformBufferReferences() []*UniformBufferReference {
	return p.bufferRefs
}

func (p *Pipeline) UniformReferencesBuilt() bool {
	return p.uniformRefsBuilt
}
