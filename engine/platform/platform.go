package platform

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/anima-pipeline/engine/core"
)

func init() {
	// GLFW event handling and the GL context must stay on the main OS thread
	runtime.LockOSThread()
}

// ResizeFunc receives the new framebuffer size in pixels.
type ResizeFunc func(width, height uint32)

type Platform struct {
	Window   *glfw.Window
	OnResize ResizeFunc
}

func New() *Platform {
	return &Platform{}
}

/**
 * @brief Opens the window and makes an OpenGL 4.1 core context current on
 * the calling thread. 4.1 is the first core version with separable programs
 * and program binaries.
 */
func (p *Platform) Startup(app core.ApplicationSection) error {
	if err := glfw.Init(); err != nil {
		core.LogFatal("failed to initialize glfw: %s", err)
		return err
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(int(app.Width), int(app.Height), app.Name, nil, nil)
	if err != nil {
		core.LogFatal("failed to create window: %s", err)
		glfw.Terminate()
		return err
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)
	p.Window = window

	p.Window.SetKeyCallback(keyCallback)
	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.Window.SetPos(int(app.StartPosX), int(app.StartPosY))
	p.Window.Show()

	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// PumpMessages processes pending window events. It returns false once the
// window was asked to close.
func (p *Platform) PumpMessages() bool {
	glfw.PollEvents()
	return !p.Window.ShouldClose()
}

func (p *Platform) SwapBuffers() {
	p.Window.SwapBuffers()
}

func (p *Platform) FramebufferSize() (uint32, uint32) {
	w, h := p.Window.GetFramebufferSize()
	return uint32(w), uint32(h)
}

func keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		w.SetShouldClose(true)
	}
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	if p.OnResize != nil {
		p.OnResize(uint32(width), uint32(height))
	}
}
