package engine

import (
	"github.com/spaghettifunk/anima-pipeline/engine/core"
	"github.com/spaghettifunk/anima-pipeline/engine/systems"
)

type Game struct {
	Config        *core.Config
	SystemManager *systems.SystemManager
	State         interface{}
	FnInitialize  Initialize
	FnUpdate      Update
	FnRender      Render
	FnOnResize    OnResize
	FnShutdown    Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error
type Render func(deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
