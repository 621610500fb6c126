package engine

import (
	"github.com/spaghettifunk/panelpop/engine/config"
	"github.com/spaghettifunk/panelpop/engine/renderer"
	"github.com/spaghettifunk/panelpop/engine/systems"
)

type Game struct {
	Config        *config.Config
	SystemManager *systems.SystemManager
	State         interface{}
	FnInitialize  Initialize
	FnRender      Render
	FnShutdown    Shutdown
}

type Initialize func() error
type Render func(backend renderer.RendererBackend, deltaTime float64) error
type Shutdown func() error
