package gles

import "github.com/spaghettifunk/anima-pipeline/engine/renderer/metadata"

// UpdateUniforms uploads the uniforms of stage whose variability intersects
// mask. Values equal to the last upload at the same location are skipped.
// It is called once per stage with that stage's parameters.
func (p *Pipeline) UpdateUniforms(params *metadata.ProgramParameters, mask metadata.GpuParamVariability, stage metadata.ShaderStage) {
	sp := p.stage(stage)
	if sp == nil || params == nil {
		return
	}
	program := sp.Handle()
	cache := sp.UniformCache()

	for i := range p.uniformRefs {
		ref := &p.uniformRefs[i]
		if ref.SourceStage != stage {
			continue
		}
		def := ref.ConstantDef
		if !def.Variability.Matches(mask) {
			continue
		}
		if !p.supported[def.ConstType] {
			p.Metrics.Skipped++
			continue
		}

		var (
			floats []float32
			ints   []int32
			ok     bool
		)
		p.scratch = p.scratch[:0]
		if def.ConstType.IsInt() {
			ints, ok = params.IntSpan(def.PhysicalIndex, def.Scalars())
			p.scratch = appendInts(p.scratch, ints)
		} else {
			floats, ok = params.FloatSpan(def.PhysicalIndex, def.Scalars())
			p.scratch = appendFloats(p.scratch, floats)
		}
		if !ok {
			p.logger.Debug("parameter buffer too short for uniform", "stage", stage, "location", ref.Location, "index", def.PhysicalIndex)
			p.Metrics.Skipped++
			continue
		}

		if !cache.UpdateUniform(ref.Location, p.scratch) {
			p.Metrics.CacheHits++
			continue
		}
		if p.dispatch(program, ref, floats, ints) {
			p.Metrics.Dispatches++
		} else {
			p.Metrics.Skipped++
		}
	}
}

// dispatch issues the driver call matching the constant type. It reports
// false for types this backend never uploads.
func (p *Pipeline) dispatch(program uint32, ref *metadata.UniformReference, floats []float32, ints []int32) bool {
	def := ref.ConstantDef
	count := int32(def.ArraySize)
	switch def.ConstType {
	case metadata.GpuConstFloat1:
		p.driver.ProgramUniformfv(program, ref.Location, 1, count, floats)
	case metadata.GpuConstFloat2:
		p.driver.ProgramUniformfv(program, ref.Location, 2, count, floats)
	case metadata.GpuConstFloat3:
		p.driver.ProgramUniformfv(program, ref.Location, 3, count, floats)
	case metadata.GpuConstFloat4:
		p.driver.ProgramUniformfv(program, ref.Location, 4, count, floats)
	case metadata.GpuConstMatrix2x2, metadata.GpuConstMatrix3x3, metadata.GpuConstMatrix4x4,
		metadata.GpuConstMatrix2x3, metadata.GpuConstMatrix2x4,
		metadata.GpuConstMatrix3x2, metadata.GpuConstMatrix3x4,
		metadata.GpuConstMatrix4x2, metadata.GpuConstMatrix4x3:
		// Parameters are stored column major.
		cols, rows, _ := def.ConstType.MatrixShape()
		p.driver.ProgramUniformMatrixfv(program, ref.Location, cols, rows, count, false, floats)
	case metadata.GpuConstInt1:
		p.driver.ProgramUniformiv(program, ref.Location, 1, count, ints)
	case metadata.GpuConstInt2:
		p.driver.ProgramUniformiv(program, ref.Location, 2, count, ints)
	case metadata.GpuConstInt3:
		p.driver.ProgramUniformiv(program, ref.Location, 3, count, ints)
	case metadata.GpuConstInt4:
		p.driver.ProgramUniformiv(program, ref.Location, 4, count, ints)
	case metadata.GpuConstSampler1D, metadata.GpuConstSampler1DShadow,
		metadata.GpuConstSampler2D, metadata.GpuConstSampler2DShadow,
		metadata.GpuConstSampler2DArray, metadata.GpuConstSampler3D,
		metadata.GpuConstSamplerCube:
		// A sampler holds a single texture unit whatever its array size.
		p.driver.ProgramUniformiv(program, ref.Location, 1, 1, ints[:1])
	case metadata.GpuConstSamplerRect, metadata.GpuConstSubroutine,
		metadata.GpuConstDouble1, metadata.GpuConstDouble2, metadata.GpuConstDouble3, metadata.GpuConstDouble4,
		metadata.GpuConstMatrixDouble2x2, metadata.GpuConstMatrixDouble2x3, metadata.GpuConstMatrixDouble2x4,
		metadata.GpuConstMatrixDouble3x2, metadata.GpuConstMatrixDouble3x3, metadata.GpuConstMatrixDouble3x4,
		metadata.GpuConstMatrixDouble4x2, metadata.GpuConstMatrixDouble4x3, metadata.GpuConstMatrixDouble4x4,
		metadata.GpuConstUnknown:
		// No separable-program entry point on this API; never uploaded.
		return false
	default:
		return false
	}
	return true
}

// UpdatePassIterationUniforms uploads the pass iteration number of a
// multi-pass render to the uniform of stage holding it. The upload always
// goes to the driver since the value changes every pass.
func (p *Pipeline) UpdatePassIterationUniforms(params *metadata.ProgramParameters, stage metadata.ShaderStage) {
	if params == nil || !params.HasPassIterationNumber() {
		return
	}
	sp := p.stage(stage)
	if sp == nil {
		return
	}
	index := params.PassIterationNumberIndex()
	value, ok := params.FloatSpan(index, 1)
	if !ok {
		return
	}
	for i := range p.uniformRefs {
		ref := &p.uniformRefs[i]
		if ref.SourceStage != stage {
			continue
		}
		def := ref.ConstantDef
		if def.PhysicalIndex != index || def.ConstType != metadata.GpuConstFloat1 {
			continue
		}
		sp.UniformCache().UpdateUniform(ref.Location, appendFloats(nil, value))
		p.driver.ProgramUniformfv(sp.Handle(), ref.Location, 1, 1, value)
		p.Metrics.Dispatches++
		// There is only one pass iteration uniform per stage.
		return
	}
}
