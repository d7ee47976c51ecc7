package systems

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spaghettifunk/anima-pipeline/engine/core"
	"github.com/spaghettifunk/anima-pipeline/engine/renderer/gles"
	"github.com/spaghettifunk/anima-pipeline/engine/renderer/metadata"
)

/** @brief Provides shader configs and their stage source by name. */
type ShaderSource interface {
	LoadShader(name string) (*metadata.ShaderConfig, string, error)
}

/** @brief Configuration for the shader system. */
type ShaderSystemConfig struct {
	/** @brief The maximum number of stage programs held in the system. */
	MaxProgramCount uint16
	/** @brief The driver every pipeline talks to. */
	Driver gles.Driver
	/** @brief What the context supports. */
	Capabilities metadata.CapabilityQuery
	/** @brief Optional cache of linked program binaries. */
	MicrocodeCache gles.MicrocodeCache
	/** @brief Optional allocator for uniform block buffers. */
	Buffers gles.UniformBufferManager
	/** @brief Optional loader used by Load. */
	Source ShaderSource
	Logger *log.Logger
}

type pipelineKey struct {
	vertex   string
	fragment string
}

/**
 * @brief Registry of stage programs and of the pipelines built from them.
 * A pipeline is created on first use of a (vertex, fragment) pair and kept
 * until shutdown.
 */
type ShaderSystem struct {
	// This system's configuration.
	Config *ShaderSystemConfig

	programs  map[string]*gles.StageProgram
	params    map[string]*metadata.ProgramParameters
	pipelines map[pipelineKey]*gles.Pipeline
	// The pipeline of the last successful Use.
	current *gles.Pipeline
	logger  *log.Logger
}

func NewShaderSystem(config *ShaderSystemConfig) (*ShaderSystem, error) {
	if config.MaxProgramCount == 0 {
		err := fmt.Errorf("NewShaderSystem - config.MaxProgramCount must be greater than 0")
		core.LogError(err.Error())
		return nil, err
	}
	if config.Driver == nil {
		return nil, fmt.Errorf("NewShaderSystem - config.Driver is required")
	}
	if config.Capabilities == nil {
		config.Capabilities = metadata.Capabilities{}
	}
	logger := config.Logger
	if logger == nil {
		logger = core.Logger()
	}
	return &ShaderSystem{
		Config:    config,
		programs:  make(map[string]*gles.StageProgram),
		params:    make(map[string]*metadata.ProgramParameters),
		pipelines: make(map[pipelineKey]*gles.Pipeline),
		logger:    logger.WithPrefix("shaders"),
	}, nil
}

/**
 * @brief Registers a stage program from its config and source text.
 *
 * @param config The stage config, usually loaded from a .shader.toml file.
 * @param source The GLSL source of the stage.
 * @return The stage program, or an error when the config is invalid or the
 * name is taken.
 */
func (s *ShaderSystem) Register(config *metadata.ShaderConfig, source string) (*gles.StageProgram, error) {
	if _, exists := s.programs[config.Name]; exists {
		return nil, fmt.Errorf("shader program '%s' is already registered", config.Name)
	}
	if len(s.programs) >= int(s.Config.MaxProgramCount) {
		return nil, fmt.Errorf("unable to register shader program '%s': limit of %d reached", config.Name, s.Config.MaxProgramCount)
	}
	stage, err := metadata.ShaderStageFromString(config.Stage)
	if err != nil {
		return nil, fmt.Errorf("shader program '%s': %w", config.Name, err)
	}
	defs, err := config.Definitions()
	if err != nil {
		return nil, err
	}
	params := metadata.NewProgramParameters(defs)
	if config.PassIteration != "" {
		if err := params.SetPassIterationNumber(config.PassIteration); err != nil {
			return nil, fmt.Errorf("shader program '%s': %w", config.Name, err)
		}
	}

	sp := gles.NewStageProgram(config.Name, stage, source, defs)
	s.programs[config.Name] = sp
	s.params[config.Name] = params
	s.logger.Debug("registered", "program", config.Name, "stage", stage, "constants", len(defs.Map), "blocks", len(defs.Blocks))
	return sp, nil
}

/**
 * @brief Loads a stage program through the configured ShaderSource and
 * registers it. Already registered programs are returned as they are.
 */
func (s *ShaderSystem) Load(name string) (*gles.StageProgram, error) {
	if sp, ok := s.programs[name]; ok {
		return sp, nil
	}
	if s.Config.Source == nil {
		return nil, fmt.Errorf("%w: '%s' (no shader source configured)", core.ErrUnknownShader, name)
	}
	config, source, err := s.Config.Source.LoadShader(name)
	if err != nil {
		return nil, err
	}
	return s.Register(config, source)
}

/**
 * @brief Reads and parses the given stage programs on the job system, then
 * registers them in order on the calling thread. Names already registered
 * are skipped. Every failure is reported in the returned error.
 */
func (s *ShaderSystem) Preload(names []string, js *JobSystem) error {
	if s.Config.Source == nil {
		return fmt.Errorf("%w: no shader source configured", core.ErrUnknownShader)
	}
	type loaded struct {
		config *metadata.ShaderConfig
		source string
		err    error
	}
	results := make([]loaded, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		if _, ok := s.programs[name]; ok {
			continue
		}
		wg.Add(1)
		js.Submit(JobTask{
			Run: func() error {
				config, source, err := s.Config.Source.LoadShader(name)
				results[i] = loaded{config: config, source: source, err: err}
				return err
			},
			OnComplete: wg.Done,
			OnFailure:  func(error) { wg.Done() },
		})
	}
	wg.Wait()

	var errs []error
	for i, r := range results {
		if r.err != nil {
			errs = append(errs, fmt.Errorf("shader '%s': %w", names[i], r.err))
			continue
		}
		if r.config == nil {
			continue
		}
		if _, err := s.Register(r.config, r.source); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

/**
 * @brief Reads a registered stage program again through the configured
 * ShaderSource and swaps in its new source and constants. Every pipeline
 * using it is reset, so the next Use compiles the new text. Parameter values
 * of constants that kept their name and type survive the reload.
 */
func (s *ShaderSystem) Reload(name string) error {
	sp, ok := s.programs[name]
	if !ok {
		return fmt.Errorf("%w: '%s'", core.ErrUnknownShader, name)
	}
	if s.Config.Source == nil {
		return fmt.Errorf("%w: '%s' (no shader source configured)", core.ErrUnknownShader, name)
	}
	config, source, err := s.Config.Source.LoadShader(name)
	if err != nil {
		return err
	}
	stage, err := metadata.ShaderStageFromString(config.Stage)
	if err != nil {
		return fmt.Errorf("shader program '%s': %w", name, err)
	}
	if stage != sp.Stage {
		return fmt.Errorf("shader program '%s' changed stage from %s to %s", name, sp.Stage, stage)
	}
	defs, err := config.Definitions()
	if err != nil {
		return err
	}
	if config.PassIteration != "" {
		if err := metadata.NewProgramParameters(defs).SetPassIterationNumber(config.PassIteration); err != nil {
			return fmt.Errorf("shader program '%s': %w", name, err)
		}
	}

	params := s.params[name]
	params.Redefine(defs)
	if config.PassIteration != "" {
		_ = params.SetPassIterationNumber(config.PassIteration)
	}
	sp.Replace(s.Config.Driver, source, defs)

	reset := 0
	for _, p := range s.pipelines {
		if p.Uses(sp) {
			p.Reset()
			reset++
		}
	}
	s.logger.Info("reloaded", "program", name, "pipelines", reset)
	return nil
}

func (s *ShaderSystem) GetProgram(name string) (*gles.StageProgram, error) {
	sp, ok := s.programs[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", core.ErrUnknownShader, name)
	}
	return sp, nil
}

/**
 * @brief Returns the parameter block of a stage program. Callers fill it
 * before Apply.
 */
func (s *ShaderSystem) Parameters(name string) (*metadata.ProgramParameters, error) {
	p, ok := s.params[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", core.ErrUnknownShader, name)
	}
	return p, nil
}

/**
 * @brief Returns the pipeline for the given stage programs, creating it on
 * first use. Either name may be empty for a single stage pipeline.
 */
func (s *ShaderSystem) Pipeline(vertexName, fragmentName string) (*gles.Pipeline, error) {
	key := pipelineKey{vertex: vertexName, fragment: fragmentName}
	if p, ok := s.pipelines[key]; ok {
		return p, nil
	}
	if vertexName == "" && fragmentName == "" {
		return nil, fmt.Errorf("%w: a pipeline needs at least one stage", core.ErrUnknownShader)
	}

	var vertex, fragment *gles.StageProgram
	var err error
	if vertexName != "" {
		if vertex, err = s.GetProgram(vertexName); err != nil {
			return nil, err
		}
		if vertex.Stage != metadata.ShaderStageVertex {
			return nil, fmt.Errorf("shader program '%s' is a %s program", vertexName, vertex.Stage)
		}
	}
	if fragmentName != "" {
		if fragment, err = s.GetProgram(fragmentName); err != nil {
			return nil, err
		}
		if fragment.Stage != metadata.ShaderStageFragment {
			return nil, fmt.Errorf("shader program '%s' is a %s program", fragmentName, fragment.Stage)
		}
	}

	p := gles.NewPipeline(vertex, fragment, gles.PipelineOptions{
		Driver:         s.Config.Driver,
		Capabilities:   s.Config.Capabilities,
		Logger:         s.logger,
		MicrocodeCache: s.Config.MicrocodeCache,
		Buffers:        s.Config.Buffers,
	})
	s.pipelines[key] = p
	return p, nil
}

/**
 * @brief Activates the pipeline of the given pair, linking it if needed,
 * and makes it current for Apply.
 */
func (s *ShaderSystem) Use(vertexName, fragmentName string) (*gles.Pipeline, error) {
	p, err := s.Pipeline(vertexName, fragmentName)
	if err != nil {
		return nil, err
	}
	if err := p.Activate(); err != nil {
		s.current = nil
		return nil, err
	}
	s.current = p
	return p, nil
}

// Current returns the pipeline of the last successful Use, or nil.
func (s *ShaderSystem) Current() *gles.Pipeline {
	return s.current
}

/**
 * @brief Pushes the parameters of both stages of the current pipeline whose
 * variability intersects mask: individual uniforms first, then blocks.
 */
func (s *ShaderSystem) Apply(mask metadata.GpuParamVariability) error {
	p := s.current
	if p == nil {
		return fmt.Errorf("apply called without a pipeline in use")
	}
	for _, sp := range []*gles.StageProgram{p.VertexProgram(), p.FragmentProgram()} {
		if sp == nil {
			continue
		}
		params := s.params[sp.Name]
		p.UpdateUniforms(params, mask, sp.Stage)
		p.UpdateUniformBlocks(params, mask, sp.Stage)
	}
	return nil
}

/**
 * @brief Advances the pass iteration number of every stage of the current
 * pipeline that tracks one and uploads it.
 */
func (s *ShaderSystem) NextPass() {
	p := s.current
	if p == nil {
		return
	}
	for _, sp := range []*gles.StageProgram{p.VertexProgram(), p.FragmentProgram()} {
		if sp == nil {
			continue
		}
		params := s.params[sp.Name]
		if !params.HasPassIterationNumber() {
			continue
		}
		params.IncPassIterationNumber()
		p.UpdatePassIterationUniforms(params, sp.Stage)
	}
}

func (s *ShaderSystem) PipelineCount() int {
	return len(s.pipelines)
}

/**
 * @brief Shuts down the shader system, deleting every pipeline and stage
 * program it created.
 */
func (s *ShaderSystem) Shutdown() {
	for key, p := range s.pipelines {
		s.logger.Debug("destroying pipeline", "pipeline", p.CombinedName(), "dispatches", p.Metrics.Dispatches, "hit_ratio", p.Metrics.HitRatio())
		p.Destroy()
		delete(s.pipelines, key)
	}
	for name, sp := range s.programs {
		sp.Release(s.Config.Driver)
		delete(s.programs, name)
		delete(s.params, name)
	}
	s.current = nil
}
