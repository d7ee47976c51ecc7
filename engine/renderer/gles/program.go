package gles

import (
	"github.com/charmbracelet/log"
	"github.com/spaghettifunk/anima-pipeline/engine/renderer/metadata"
)

/**
 * @brief A vertex attribute bound to a fixed location before the vertex
 * stage is linked, so meshes can be drawn with any vertex program.
 */
type FixedAttribute struct {
	Name  string
	Index uint32
}

var FixedAttributes = []FixedAttribute{
	{Name: "vertex", Index: 0},
	{Name: "blendWeights", Index: 1},
	{Name: "normal", Index: 2},
	{Name: "colour", Index: 3},
	{Name: "secondary_colour", Index: 4},
	{Name: "blendIndices", Index: 7},
	{Name: "uv0", Index: 8},
	{Name: "uv1", Index: 9},
	{Name: "uv2", Index: 10},
	{Name: "uv3", Index: 11},
	{Name: "uv4", Index: 12},
	{Name: "uv5", Index: 13},
	{Name: "tangent", Index: 14},
	{Name: "binormal", Index: 15},
}

/**
 * @brief One separable stage program. A stage program may be shared by
 * several pipelines; once linked, later pipelines reuse it as is.
 */
type StageProgram struct {
	/** @brief The program name, used as the microcode cache key. */
	Name string
	/** @brief The stage this program implements. */
	Stage metadata.ShaderStage
	/** @brief GLSL source text. */
	Source string
	/** @brief Reflection table of the stage. */
	Definitions *metadata.GpuConstantDefinitions

	handle uint32
	shader uint32
	linked bool
	cache  *UniformCache
}

func NewStageProgram(name string, stage metadata.ShaderStage, source string, defs *metadata.GpuConstantDefinitions) *StageProgram {
	if defs == nil {
		defs = metadata.NewGpuConstantDefinitions()
	}
	return &StageProgram{
		Name:        name,
		Stage:       stage,
		Source:      source,
		Definitions: defs,
		cache:       NewUniformCache(),
	}
}

func (sp *StageProgram) Handle() uint32 {
	return sp.handle
}

func (sp *StageProgram) IsLinked() bool {
	return sp.linked
}

func (sp *StageProgram) SetLinked(linked bool) {
	sp.linked = linked
}

func (sp *StageProgram) UniformCache() *UniformCache {
	return sp.cache
}

// CreateProgramHandle makes sure the program object exists and returns it.
func (sp *StageProgram) CreateProgramHandle(d Driver) uint32 {
	if sp.handle == 0 {
		sp.handle = d.CreateProgram()
	}
	return sp.handle
}

// Compile compiles the source into a shader object and creates the program
// object it will be attached to. The compile log goes to logger.
func (sp *StageProgram) Compile(d Driver, logger *log.Logger) bool {
	if sp.shader != 0 {
		d.DeleteShader(sp.shader)
		sp.shader = 0
	}
	shader, ok, infoLog := d.CompileShader(sp.Stage, sp.Source)
	if infoLog != "" {
		logger.Debug("compile log", "program", sp.Name, "stage", sp.Stage, "log", infoLog)
	}
	if !ok {
		if shader != 0 {
			d.DeleteShader(shader)
		}
		return false
	}
	sp.shader = shader
	sp.CreateProgramHandle(d)
	return true
}

func (sp *StageProgram) AttachToProgramObject(d Driver, program uint32) {
	if sp.shader != 0 {
		d.AttachShader(program, sp.shader)
	}
}

// Release deletes the driver objects and marks the program unlinked.
func (sp *StageProgram) Release(d Driver) {
	if sp.shader != 0 {
		d.DeleteShader(sp.shader)
		sp.shader = 0
	}
	if sp.handle != 0 {
		d.DeleteProgram(sp.handle)
		sp.handle = 0
	}
	sp.linked = false
	sp.cache.Clear()
}

// Replace releases the driver objects and swaps in new source and
// definitions. Pipelines using the program must be Reset to relink it.
func (sp *StageProgram) Replace(d Driver, source string, defs *metadata.GpuConstantDefinitions) {
	sp.Release(d)
	if defs == nil {
		defs = metadata.NewGpuConstantDefinitions()
	}
	sp.Source = source
	sp.Definitions = defs
}

func bindFixedAttributes(d Driver, program uint32) {
	for _, a := range FixedAttributes {
		d.BindAttribLocation(program, a.Index, a.Name)
	}
}
