package testbed

import (
	"errors"
	"math"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/spaghettifunk/anima-pipeline/engine"
	"github.com/spaghettifunk/anima-pipeline/engine/core"
	"github.com/spaghettifunk/anima-pipeline/engine/renderer/metadata"
)

const (
	vertexProgram   = "fullscreen_vs"
	fragmentProgram = "tint_fs"
	passCount       = 2
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	time       float64
	sinceStats float64
	width      uint32
	height     uint32
	vao        uint32
	frame      *metadata.SharedParameters
}

func NewTestGame(config *core.Config) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			Config: config,
			State:  &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *TestGame) Initialize() error {
	core.LogInfo("initializing testbed...")
	if err := g.SystemManager.Preload(vertexProgram, fragmentProgram); err != nil {
		return err
	}
	ss := g.SystemManager.Shaders()

	s := g.state()
	s.frame = metadata.NewSharedParameters("Frame", 4)
	params, err := ss.Parameters(fragmentProgram)
	if err != nil {
		return err
	}
	params.AddSharedParameters(s.frame)
	if err := params.SetNamedConstant("tint", 0.9, 0.4, 0.1, 1); err != nil {
		return err
	}

	// Vertices come from gl_VertexID, an empty VAO is all core needs.
	gl.GenVertexArrays(1, &s.vao)
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	s := g.state()
	s.time += deltaTime
	s.sinceStats += deltaTime

	t := float32(s.time)
	s.frame.Set(0, 0.5+0.5*float32(math.Sin(float64(t))), 0.2, 0.6, 1)

	ss := g.SystemManager.Shaders()
	vs, err := ss.Parameters(vertexProgram)
	if err != nil {
		return err
	}
	if err := vs.SetNamedConstant("time", t); err != nil {
		return err
	}

	if s.sinceStats >= 5 {
		s.sinceStats = 0
		if p := ss.Current(); p != nil {
			core.LogInfo("uniforms %s: %s", p.CombinedName(), p.Metrics.String())
		}
	}
	return nil
}

func (g *TestGame) Render(deltaTime float64) error {
	s := g.state()
	ss := g.SystemManager.Shaders()

	gl.ClearColor(0.05, 0.05, 0.08, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	// Additive passes, each fading the tint by its iteration number.
	fs, err := ss.Parameters(fragmentProgram)
	if err != nil {
		return err
	}
	if err := fs.SetNamedConstant("pass", 0); err != nil {
		return err
	}
	if _, err := ss.Use(vertexProgram, fragmentProgram); err != nil {
		if errors.Is(err, core.ErrCompileFailed) || errors.Is(err, core.ErrLinkFailed) || errors.Is(err, core.ErrPipelineFailed) {
			// Keep running until the shader is fixed on disk.
			return nil
		}
		return err
	}
	if err := ss.Apply(metadata.GpuVariabilityAll); err != nil {
		return err
	}
	gl.BindVertexArray(s.vao)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.ONE, gl.ONE)
	for pass := 0; pass < passCount; pass++ {
		if pass > 0 {
			ss.NextPass()
		}
		gl.DrawArrays(gl.TRIANGLES, 0, 3)
	}
	gl.Disable(gl.BLEND)
	gl.BindVertexArray(0)
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	s := g.state()
	s.width, s.height = width, height
	gl.Viewport(0, 0, int32(width), int32(height))

	vs, err := g.SystemManager.Shaders().Parameters(vertexProgram)
	if err != nil {
		return err
	}
	// Keep the triangle square-ish on wide windows.
	aspect := float32(height) / float32(max(width, 1))
	return vs.SetNamedConstant("scale", min(1, aspect*16/9), 1)
}

func (g *TestGame) Shutdown() error {
	s := g.state()
	if s.vao != 0 {
		gl.DeleteVertexArrays(1, &s.vao)
		s.vao = 0
	}
	return nil
}
