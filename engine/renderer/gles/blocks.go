package gles

import "github.com/spaghettifunk/anima-pipeline/engine/renderer/metadata"

// UpdateUniformBlocks rewrites the uniform buffer of every shared parameter
// set used by params that stage declares as a block. Whole blocks are
// written on each call. mask is accepted for symmetry with UpdateUniforms;
// shared sets carry no variability of their own.
func (p *Pipeline) UpdateUniformBlocks(params *metadata.ProgramParameters, mask metadata.GpuParamVariability, stage metadata.ShaderStage) {
	if params == nil || !p.caps.HasCapability(metadata.CapabilityUniformBuffers) {
		return
	}
	sp := p.stage(stage)
	if sp == nil || !sp.IsLinked() {
		return
	}
	byName := p.bufferRefsByName[stage]
	if len(byName) == 0 {
		return
	}
	program := sp.Handle()
	for _, usage := range params.SharedParameters() {
		ref, ok := byName[usage.Name]
		if !ok || usage.Params == nil {
			continue
		}
		blockIndex := p.driver.GetUniformBlockIndex(program, usage.Name)
		if blockIndex == InvalidBlockIndex {
			p.logger.Debug("uniform block not active", "block", usage.Name, "stage", stage)
			continue
		}
		p.driver.UniformBlockBinding(program, blockIndex, ref.Buffer.Binding())

		// The whole block is rewritten: a short set is padded with zeros.
		data := usage.Params.Floats
		if size := ref.Buffer.SizeInBytes() / 4; len(data) > size {
			data = data[:size]
		} else if len(data) < size {
			p.blockScratch = append(p.blockScratch[:0], data...)
			p.blockScratch = append(p.blockScratch, make([]float32, size-len(data))...)
			data = p.blockScratch
		}
		ref.Buffer.WriteData(0, data)
		p.Metrics.BlockWrites++
	}
}
