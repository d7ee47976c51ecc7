package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/spaghettifunk/anima-pipeline/engine/assets"
	"github.com/spaghettifunk/anima-pipeline/engine/containers"
	"github.com/spaghettifunk/anima-pipeline/engine/core"
	"github.com/spaghettifunk/anima-pipeline/engine/platform"
	"github.com/spaghettifunk/anima-pipeline/engine/renderer/gles/gldriver"
	"github.com/spaghettifunk/anima-pipeline/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	config        *core.Config
	quit          atomic.Bool
	isSuspended   bool
	platform      *platform.Platform
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
	buffers       *gldriver.UniformBufferManager
	width         uint32
	height        uint32
	clock         *core.Clock
	lastTime      float64
	frameTimes    *containers.RingQueue[float64]
	frameCount    uint64
	logger        *log.Logger
}

// Frame times kept for the average reported every statsInterval frames.
const (
	frameWindow   = 120
	statsInterval = 600
)

func New(g *Game) (*Engine, error) {
	if g.Config == nil {
		g.Config = core.DefaultConfig()
	}
	if err := g.Config.Validate(); err != nil {
		return nil, err
	}
	core.SetLogLevel(g.Config.LogLevel())

	logger := core.Logger()
	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       g.Config,
		clock:        core.NewClock(),
		frameTimes:   containers.NewRingQueue[float64](frameWindow),
		platform:     platform.New(),
		assetManager: assets.NewAssetManager(logger),
		width:        g.Config.Application.Width,
		height:       g.Config.Application.Height,
		logger:       logger,
	}, nil
}

/**
 * @brief Opens the window and GL context, then builds the shader stack on
 * top of it: driver, capabilities, uniform buffers, assets and systems.
 */
func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	e.platform.OnResize = e.onResized
	if err := e.platform.Startup(e.config.Application); err != nil {
		return err
	}

	driver, err := gldriver.New(e.logger.WithPrefix("gl"))
	if err != nil {
		return err
	}
	caps := gldriver.QueryCapabilities(e.config.Capabilities)
	e.logger.Info("capabilities", "caps", fmt.Sprint(caps))
	e.buffers = gldriver.NewUniformBufferManager()

	if err := e.assetManager.Initialize(e.config.Shaders.Dir, e.config.Shaders.Watch); err != nil {
		return err
	}

	sm, err := systems.NewSystemManager(systems.SystemManagerConfig{
		Config:       e.config,
		Driver:       driver,
		Capabilities: caps,
		Buffers:      e.buffers,
		Source:       e.assetManager,
		Logger:       e.logger,
	})
	if err != nil {
		return err
	}
	e.systemManager = sm
	e.assetManager.OnChange(sm.InvalidateProgram)
	e.gameInstance.SystemManager = sm

	if err := e.gameInstance.FnInitialize(); err != nil {
		return err
	}
	e.width, e.height = e.platform.FramebufferSize()
	if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
		return err
	}

	e.currentStage = EngineStageInitialized
	return nil
}

// Quit asks the main loop to stop after the current frame. Safe to call
// from any goroutine.
func (e *Engine) Quit() {
	e.quit.Store(true)
}

func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for !e.quit.Load() {
		if !e.platform.PumpMessages() {
			break
		}
		if e.isSuspended {
			continue
		}

		if err := e.systemManager.ReloadChanged(); err != nil {
			core.LogWarn("Shader reload failed: %s", err)
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime

		if err := e.gameInstance.FnUpdate(delta); err != nil {
			core.LogError("Game update failed, shutting down: %s", err)
			return err
		}
		if err := e.gameInstance.FnRender(delta); err != nil {
			core.LogError("Game render failed, shutting down: %s", err)
			return err
		}
		e.platform.SwapBuffers()

		e.recordFrame(delta)
		e.lastTime = currentTime
	}
	return nil
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	e.clock.Stop()
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			return err
		}
	}
	if err := e.assetManager.Shutdown(); err != nil {
		return err
	}
	if e.systemManager != nil {
		if err := e.systemManager.Shutdown(); err != nil {
			return err
		}
	}
	if e.buffers != nil {
		e.buffers.Destroy()
	}
	return e.platform.Shutdown()
}

func (e *Engine) recordFrame(delta float64) {
	e.frameTimes.Push(delta)
	e.frameCount++
	if e.frameCount%statsInterval != 0 {
		return
	}
	var total float64
	e.frameTimes.Each(func(d float64) { total += d })
	avg := total / float64(e.frameTimes.Len())
	if avg > 0 {
		e.logger.Debug("frame stats", "avg_ms", avg*1000, "fps", 1/avg)
	}
}

func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onResized(width, height uint32) {
	if width == e.width && height == e.height {
		return
	}
	e.width = width
	e.height = height
	core.LogDebug("Window resize: %d, %d", width, height)

	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if err := e.gameInstance.FnOnResize(width, height); err != nil {
		core.LogError(err.Error())
	}
}
