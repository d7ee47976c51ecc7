package metadata

import (
	"fmt"

	"golang.org/x/exp/slices"
)

/**
 * @brief Describes a single constant declared by a shader stage.
 */
type ConstantDefinition struct {
	/** @brief The data type of the constant. */
	ConstType GpuConstantType
	/** @brief Number of array elements, 1 for non-arrays. */
	ArraySize int
	/** @brief Number of scalars in one array element. */
	ElementSize int
	/**
	 * @brief Offset of the first scalar in the owning stage's parameter
	 * buffer. Float kinds index the float buffer, int and sampler kinds the int buffer.
	 */
	PhysicalIndex int
	/** @brief How often the value changes. Never zero. */
	Variability GpuParamVariability
}

// Scalars is the total scalar count of the constant, all elements included.
func (d *ConstantDefinition) Scalars() int {
	return d.ElementSize * d.ArraySize
}

/**
 * @brief A declared uniform block (shared parameter set) of a stage.
 */
type UniformBlockDefinition struct {
	/** @brief The block name, which is also the shared parameter set name. */
	Name string
	/** @brief Size of the block backing store in bytes. */
	SizeInBytes int
}

/**
 * @brief The reflection table of one shader stage: constants by name plus
 * the uniform blocks the stage declares.
 */
type GpuConstantDefinitions struct {
	Map    map[string]*ConstantDefinition
	Blocks []UniformBlockDefinition
	/** @brief Scalars needed in the float buffer. */
	FloatBufferSize int
	/** @brief Scalars needed in the int buffer. */
	IntBufferSize int
}

func NewGpuConstantDefinitions() *GpuConstantDefinitions {
	return &GpuConstantDefinitions{
		Map: make(map[string]*ConstantDefinition),
	}
}

// AddConstant declares a constant and assigns it the next free physical
// index in the buffer matching its type.
func (d *GpuConstantDefinitions) AddConstant(name string, constType GpuConstantType, arraySize int, variability GpuParamVariability) (*ConstantDefinition, error) {
	if name == "" {
		return nil, fmt.Errorf("constant name must exist")
	}
	if _, ok := d.Map[name]; ok {
		return nil, fmt.Errorf("a constant by the name '%s' already exists", name)
	}
	if arraySize < 1 {
		arraySize = 1
	}
	if variability == 0 {
		variability = GpuVariabilityGlobal
	}
	def := &ConstantDefinition{
		ConstType:   constType,
		ArraySize:   arraySize,
		ElementSize: constType.ElementSize(),
		Variability: variability,
	}
	if constType.IsInt() {
		def.PhysicalIndex = d.IntBufferSize
		d.IntBufferSize += def.Scalars()
	} else {
		def.PhysicalIndex = d.FloatBufferSize
		d.FloatBufferSize += def.Scalars()
	}
	d.Map[name] = def
	return def, nil
}

func (d *GpuConstantDefinitions) AddBlock(name string, sizeInBytes int) error {
	if name == "" || sizeInBytes <= 0 {
		return fmt.Errorf("uniform block needs a name and a positive size, got '%s' (%d bytes)", name, sizeInBytes)
	}
	for _, b := range d.Blocks {
		if b.Name == name {
			return fmt.Errorf("a uniform block by the name '%s' already exists", name)
		}
	}
	d.Blocks = append(d.Blocks, UniformBlockDefinition{Name: name, SizeInBytes: sizeInBytes})
	return nil
}

// Names returns the constant names in sorted order so that walks over the
// table are deterministic.
func (d *GpuConstantDefinitions) Names() []string {
	names := make([]string, 0, len(d.Map))
	for name := range d.Map {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
