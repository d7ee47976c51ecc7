package systems

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spaghettifunk/anima-pipeline/engine/core"
	"github.com/spaghettifunk/anima-pipeline/engine/renderer/gles"
	"github.com/spaghettifunk/anima-pipeline/engine/renderer/metadata"
	"golang.org/x/exp/slices"
)

type SystemManagerConfig struct {
	Config       *core.Config
	Driver       gles.Driver
	Capabilities metadata.CapabilityQuery
	Buffers      gles.UniformBufferManager
	Source       ShaderSource
	Logger       *log.Logger
}

type SystemManager struct {
	jobSystem      *JobSystem
	microcodeCache *MicrocodeCache
	shaderSystem   *ShaderSystem

	// Stage programs changed on disk, waiting for ReloadChanged.
	mutex   sync.Mutex
	changed map[string]struct{}
}

func NewSystemManager(config SystemManagerConfig) (*SystemManager, error) {
	if config.Config == nil {
		config.Config = core.DefaultConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = core.Logger()
	}

	js, err := NewJobSystem(min(runtime.NumCPU(), 4), 16)
	if err != nil {
		return nil, err
	}
	sm := &SystemManager{jobSystem: js, changed: make(map[string]struct{})}
	// Left as a nil interface when disabled so pipelines compile from source.
	var microcode gles.MicrocodeCache
	if mcc := config.Config.MicrocodeCache; mcc.Enabled {
		mc, err := NewMicrocodeCache(mcc.Capacity, logger.WithPrefix("microcode"))
		if err != nil {
			_ = js.Shutdown()
			return nil, err
		}
		sm.microcodeCache = mc
		microcode = mc
	}

	ss, err := NewShaderSystem(&ShaderSystemConfig{
		MaxProgramCount: 1024,
		Driver:          config.Driver,
		Capabilities:    config.Capabilities,
		MicrocodeCache:  microcode,
		Buffers:         config.Buffers,
		Source:          config.Source,
		Logger:          logger,
	})
	if err != nil {
		_ = js.Shutdown()
		return nil, fmt.Errorf("failed to create shader system: %w", err)
	}
	sm.shaderSystem = ss
	return sm, nil
}

func (sm *SystemManager) Jobs() *JobSystem {
	return sm.jobSystem
}

// Preload reads the named stage programs in parallel and registers them.
func (sm *SystemManager) Preload(names ...string) error {
	return sm.shaderSystem.Preload(names, sm.jobSystem)
}

func (sm *SystemManager) Shaders() *ShaderSystem {
	return sm.shaderSystem
}

// Microcode returns the microcode cache, or nil when it is disabled.
func (sm *SystemManager) Microcode() *MicrocodeCache {
	return sm.microcodeCache
}

// InvalidateProgram drops the cached binary of a stage program whose source
// changed and queues it for ReloadChanged. It is safe to call from the asset
// watcher goroutine.
func (sm *SystemManager) InvalidateProgram(name string) {
	if sm.microcodeCache != nil && sm.microcodeCache.Evict(name) {
		core.LogDebug("cached microcode of '%s' dropped", name)
	}
	sm.mutex.Lock()
	sm.changed[name] = struct{}{}
	sm.mutex.Unlock()
}

// ReloadChanged reloads every registered stage program queued by
// InvalidateProgram. It must run on the graphics thread, between frames.
func (sm *SystemManager) ReloadChanged() error {
	sm.mutex.Lock()
	names := make([]string, 0, len(sm.changed))
	for name := range sm.changed {
		names = append(names, name)
	}
	clear(sm.changed)
	sm.mutex.Unlock()
	slices.Sort(names)

	var errs []error
	for _, name := range names {
		if _, err := sm.shaderSystem.GetProgram(name); err != nil {
			continue
		}
		if err := sm.shaderSystem.Reload(name); err != nil {
			errs = append(errs, fmt.Errorf("reload '%s': %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func (sm *SystemManager) Shutdown() error {
	sm.shaderSystem.Shutdown()
	if sm.microcodeCache != nil {
		sm.microcodeCache.Purge()
	}
	return sm.jobSystem.Shutdown()
}
