package metadata

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

/**
 * @brief A named set of float constants shared between programs and
 * uploaded as a whole uniform block.
 */
type SharedParameters struct {
	Name   string
	Floats []float32
}

func NewSharedParameters(name string, floatCount int) *SharedParameters {
	return &SharedParameters{
		Name:   name,
		Floats: make([]float32, floatCount),
	}
}

// Set writes values starting at offset, growing the set when needed.
func (s *SharedParameters) Set(offset int, values ...float32) {
	if need := offset + len(values); need > len(s.Floats) {
		s.Floats = append(s.Floats, make([]float32, need-len(s.Floats))...)
	}
	copy(s.Floats[offset:], values)
}

/** @brief Links a program's parameters to a shared parameter set. */
type SharedParamUsage struct {
	Name   string
	Params *SharedParameters
}

/**
 * @brief The CPU side values of every constant of one stage, laid out in a
 * float buffer and an int buffer addressed by ConstantDefinition.PhysicalIndex.
 */
type ProgramParameters struct {
	Floats []float32
	Ints   []int32

	definitions *GpuConstantDefinitions
	shared      []SharedParamUsage

	hasPassIteration   bool
	passIterationIndex int
}

func NewProgramParameters(defs *GpuConstantDefinitions) *ProgramParameters {
	p := &ProgramParameters{definitions: defs}
	if defs != nil {
		p.Floats = make([]float32, defs.FloatBufferSize)
		p.Ints = make([]int32, defs.IntBufferSize)
	}
	return p
}

// Redefine lays the buffers out for defs, keeping the values of constants
// declared again with the same type. Shared parameter usages are kept; the
// pass iteration constant is cleared and must be set again.
func (p *ProgramParameters) Redefine(defs *GpuConstantDefinitions) {
	floats, ints := p.Floats, p.Ints
	old := p.definitions

	p.definitions = defs
	p.Floats, p.Ints = nil, nil
	if defs != nil {
		p.Floats = make([]float32, defs.FloatBufferSize)
		p.Ints = make([]int32, defs.IntBufferSize)
	}
	p.hasPassIteration = false
	p.passIterationIndex = 0
	if old == nil || defs == nil {
		return
	}

	for name, def := range defs.Map {
		prev, ok := old.Map[name]
		if !ok || prev.ConstType != def.ConstType {
			continue
		}
		n := min(prev.Scalars(), def.Scalars())
		if def.ConstType.IsInt() {
			if src, ok := span(ints, prev.PhysicalIndex, n); ok {
				copy(p.Ints[def.PhysicalIndex:], src)
			}
		} else if src, ok := span(floats, prev.PhysicalIndex, n); ok {
			copy(p.Floats[def.PhysicalIndex:], src)
		}
	}
}

func span[T constraints.Integer | constraints.Float](buf []T, index, n int) ([]T, bool) {
	if index < 0 || n < 0 || index+n > len(buf) {
		return nil, false
	}
	return buf[index : index+n], true
}

// FloatSpan returns n floats starting at index, or false when out of range.
func (p *ProgramParameters) FloatSpan(index, n int) ([]float32, bool) {
	return span(p.Floats, index, n)
}

// IntSpan returns n ints starting at index, or false when out of range.
func (p *ProgramParameters) IntSpan(index, n int) ([]int32, bool) {
	return span(p.Ints, index, n)
}

func (p *ProgramParameters) lookup(name string) (*ConstantDefinition, error) {
	if p.definitions == nil {
		return nil, fmt.Errorf("parameters have no constant definitions")
	}
	def, ok := p.definitions.Map[name]
	if !ok {
		return nil, fmt.Errorf("no constant named '%s'", name)
	}
	return def, nil
}

// SetNamedConstant writes float values for a float, vector or matrix constant.
func (p *ProgramParameters) SetNamedConstant(name string, values ...float32) error {
	def, err := p.lookup(name)
	if err != nil {
		return err
	}
	if def.ConstType.IsInt() {
		return fmt.Errorf("constant '%s' is %s, not a float type", name, def.ConstType)
	}
	if len(values) > def.Scalars() {
		return fmt.Errorf("constant '%s' holds %d scalars, got %d", name, def.Scalars(), len(values))
	}
	copy(p.Floats[def.PhysicalIndex:], values)
	return nil
}

// SetNamedConstantInt writes int values, including texture units for samplers.
func (p *ProgramParameters) SetNamedConstantInt(name string, values ...int32) error {
	def, err := p.lookup(name)
	if err != nil {
		return err
	}
	if !def.ConstType.IsInt() {
		return fmt.Errorf("constant '%s' is %s, not an int type", name, def.ConstType)
	}
	if len(values) > def.Scalars() {
		return fmt.Errorf("constant '%s' holds %d scalars, got %d", name, def.Scalars(), len(values))
	}
	copy(p.Ints[def.PhysicalIndex:], values)
	return nil
}

func (p *ProgramParameters) AddSharedParameters(sp *SharedParameters) {
	for i := range p.shared {
		if p.shared[i].Name == sp.Name {
			p.shared[i].Params = sp
			return
		}
	}
	p.shared = append(p.shared, SharedParamUsage{Name: sp.Name, Params: sp})
}

func (p *ProgramParameters) SharedParameters() []SharedParamUsage {
	return p.shared
}

// SetPassIterationNumber marks the named float constant as the one carrying
// the current pass iteration for multi-pass rendering.
func (p *ProgramParameters) SetPassIterationNumber(name string) error {
	def, err := p.lookup(name)
	if err != nil {
		return err
	}
	if def.ConstType != GpuConstFloat1 {
		return fmt.Errorf("pass iteration constant '%s' must be a float, got %s", name, def.ConstType)
	}
	p.hasPassIteration = true
	p.passIterationIndex = def.PhysicalIndex
	return nil
}

func (p *ProgramParameters) HasPassIterationNumber() bool {
	return p.hasPassIteration
}

func (p *ProgramParameters) PassIterationNumberIndex() int {
	return p.passIterationIndex
}

// IncPassIterationNumber bumps the pass iteration value, if one is tracked.
func (p *ProgramParameters) IncPassIterationNumber() {
	if p.hasPassIteration && p.passIterationIndex < len(p.Floats) {
		p.Floats[p.passIterationIndex]++
	}
}
