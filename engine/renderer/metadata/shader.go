package metadata

import (
	"fmt"
	"strings"
)

/** @brief Shader stages available in the system. */
type ShaderStage int

const (
	ShaderStageVertex   ShaderStage = 0x00000001
	ShaderStageFragment ShaderStage = 0x00000004
)

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "vertex"
	case ShaderStageFragment:
		return "fragment"
	}
	return fmt.Sprintf("ShaderStage(%d)", int(s))
}

func ShaderStageFromString(s string) (ShaderStage, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vertex", "vert":
		return ShaderStageVertex, nil
	case "fragment", "frag":
		return ShaderStageFragment, nil
	}
	return 0, fmt.Errorf("string %s is not a valid ShaderStage", s)
}

func GpuParamVariabilityFromStrings(names []string) (GpuParamVariability, error) {
	var v GpuParamVariability
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "global":
			v |= GpuVariabilityGlobal
		case "per_object", "object":
			v |= GpuVariabilityPerObject
		case "lights":
			v |= GpuVariabilityLights
		case "pass_iteration", "pass_iteration_number":
			v |= GpuVariabilityPassIterationNumber
		case "all":
			v |= GpuVariabilityAll
		default:
			return 0, fmt.Errorf("string %s is not a valid GpuParamVariability", n)
		}
	}
	if v == 0 {
		v = GpuVariabilityGlobal
	}
	return v, nil
}

/** @brief Configuration for a declared constant. */
type ShaderConstantConfig struct {
	/** @brief The name of the constant, as used in the source. */
	Name string `toml:"name"`
	/** @brief The GLSL type name, e.g. vec4 or sampler2D. */
	Type string `toml:"type"`
	/** @brief Number of array elements. Defaults to 1. */
	ArraySize int `toml:"array_size"`
	/** @brief Variability names, e.g. ["per_object"]. Defaults to global. */
	Variability []string `toml:"variability"`
}

/** @brief Configuration for a uniform block. */
type UniformBlockConfig struct {
	Name        string `toml:"name"`
	SizeInBytes int    `toml:"size"`
}

/**
 * @brief Configuration for a single shader stage program. Typically loaded
 * from a .shader.toml resource file by the shader config loader.
 */
type ShaderConfig struct {
	/** @brief The name of the stage program, also the microcode cache key. */
	Name string `toml:"name"`
	/** @brief "vertex" or "fragment". */
	Stage string `toml:"stage"`
	/** @brief Source file name, relative to the config file. */
	Source string `toml:"source"`
	/** @brief Float constant carrying the pass iteration number, if any. */
	PassIteration string `toml:"pass_iteration"`
	/** @brief The collection of constants. */
	Constants []ShaderConstantConfig `toml:"constants"`
	/** @brief The collection of uniform blocks. */
	Blocks []UniformBlockConfig `toml:"blocks"`
}

// Definitions builds the stage's constant table, assigning physical indices
// in declaration order.
func (c *ShaderConfig) Definitions() (*GpuConstantDefinitions, error) {
	defs := NewGpuConstantDefinitions()
	for _, cc := range c.Constants {
		t, err := GpuConstantTypeFromString(cc.Type)
		if err != nil {
			return nil, fmt.Errorf("shader '%s' constant '%s': %w", c.Name, cc.Name, err)
		}
		v, err := GpuParamVariabilityFromStrings(cc.Variability)
		if err != nil {
			return nil, fmt.Errorf("shader '%s' constant '%s': %w", c.Name, cc.Name, err)
		}
		if _, err := defs.AddConstant(cc.Name, t, cc.ArraySize, v); err != nil {
			return nil, fmt.Errorf("shader '%s': %w", c.Name, err)
		}
	}
	for _, bc := range c.Blocks {
		if err := defs.AddBlock(bc.Name, bc.SizeInBytes); err != nil {
			return nil, fmt.Errorf("shader '%s': %w", c.Name, err)
		}
	}
	return defs, nil
}
