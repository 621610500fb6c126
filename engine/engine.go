package engine

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/spaghettifunk/panelpop/engine/assets"
	"github.com/spaghettifunk/panelpop/engine/core"
	"github.com/spaghettifunk/panelpop/engine/renderer"
	"github.com/spaghettifunk/panelpop/engine/resources"
	"github.com/spaghettifunk/panelpop/engine/resources/loaders"
	"github.com/spaghettifunk/panelpop/engine/systems"
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

func (s Stage) String() string {
	switch s {
	case EngineStageInitializing:
		return "initializing"
	case EngineStageInitialized:
		return "initialized"
	case EngineStageRunning:
		return "running"
	case EngineStageShuttingDown:
		return "shutting_down"
	default:
		return "uninitialized"
	}
}

type Engine struct {
	mu            sync.Mutex
	currentStage  Stage
	gameInstance  *Game
	events        *core.EventSystem
	assetIndex    *assets.Index
	systemManager *systems.SystemManager
	renderer      *renderer.Renderer
	clock         *core.Clock
	preloaded     []resources.Releaser
	staleAssets   map[string]struct{}
	shutdownOnce  sync.Once
	shutdownErr   error
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.Config == nil {
		return nil, fmt.Errorf("func New - game and its config must be set")
	}
	if err := g.Config.Validate(); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	if g.FnRender == nil {
		return nil, fmt.Errorf("func New - game must provide FnRender")
	}

	sm, err := systems.NewSystemManager(systems.ResourceSystemConfig{
		AssetBasePath:  g.Config.Assets.Dir,
		FontDPI:        g.Config.Assets.DPI,
		PreloadWorkers: 4,
	})
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	g.SystemManager = sm

	return &Engine{
		currentStage:  EngineStageUninitialized,
		gameInstance:  g,
		events:        core.NewEventSystem(),
		systemManager: sm,
		renderer:      renderer.NewRenderer(renderer.NewSoftwareBackend()),
		clock:         core.NewClock(),
		staleAssets:   make(map[string]struct{}),
	}, nil
}

func (e *Engine) Stage() Stage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentStage
}

func (e *Engine) setStage(s Stage) {
	e.mu.Lock()
	e.currentStage = s
	e.mu.Unlock()
}

// Events exposes the engine event bus so games can listen for asset changes.
func (e *Engine) Events() *core.EventSystem { return e.events }

func (e *Engine) Initialize() error {
	if e.Stage() != EngineStageUninitialized {
		return core.ErrAlreadyRunning
	}
	e.setStage(EngineStageInitializing)

	cfg := e.gameInstance.Config
	core.SetLogLevel(cfg.Application.LogLevel)

	// register some events
	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_ASSET_CHANGED, e, e.onAsset)
	e.events.Register(core.EVENT_CODE_ASSET_REMOVED, e, e.onAsset)

	if cfg.Assets.Watch {
		ix, err := assets.NewIndex(cfg.Assets.Dir, e.events)
		if err != nil {
			return err
		}
		if err := ix.Initialize(); err != nil {
			return errors.Join(err, ix.Close())
		}
		e.assetIndex = ix
	}

	if len(cfg.Assets.Preload) > 0 {
		handles, err := e.systemManager.Preload(cfg.Assets.Preload...)
		e.preloaded = handles
		if err != nil {
			return err
		}
		core.LogInfo("preloaded %d assets", len(handles))
	}

	if err := e.renderer.Initialize(cfg.Application.Name, cfg.Application.Width, cfg.Application.Height); err != nil {
		return err
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			core.LogError("Game failed to initialize.")
			return err
		}
	}

	e.setStage(EngineStageInitialized)
	core.LogInfo("engine initialized (%dx%d)", cfg.Application.Width, cfg.Application.Height)
	return nil
}

// Run renders a single frame and writes it to the configured output path.
func (e *Engine) Run() error {
	if e.Stage() != EngineStageInitialized {
		return core.ErrNotInitialized
	}
	e.setStage(EngineStageRunning)

	e.clock.Start()
	e.clock.Update()
	delta := e.clock.Elapsed().Seconds()

	if err := e.renderer.DrawFrame(delta, func(b renderer.RendererBackend) error {
		return e.gameInstance.FnRender(b, delta)
	}); err != nil {
		core.LogError("Game render failed, shutting down.")
		return err
	}

	out := e.gameInstance.Config.Application.OutputPath
	if err := e.renderer.SavePNG(out); err != nil {
		return err
	}
	e.clock.Update()
	core.LogInfo("frame %d written to '%s' in %s", e.renderer.FrameNumber(), out, e.clock.Elapsed())

	for _, s := range e.systemManager.Stats() {
		if s.Stats.Hits+s.Stats.Misses == 0 {
			continue
		}
		core.LogInfo("cache %s: %d entries, %d hits, %d misses", s.Name, s.Len, s.Stats.Hits, s.Stats.Misses)
	}
	e.setStage(EngineStageInitialized)
	return nil
}

// Shutdown releases every engine resource. Calling it more than once is safe.
func (e *Engine) Shutdown() error {
	e.shutdownOnce.Do(func() {
		e.setStage(EngineStageShuttingDown)
		e.events.Fire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{Message: "shutdown"})

		var errs []error
		if e.gameInstance.FnShutdown != nil {
			errs = append(errs, e.gameInstance.FnShutdown())
		}
		for _, h := range e.preloaded {
			errs = append(errs, h.Release())
		}
		e.preloaded = nil
		errs = append(errs, e.systemManager.Shutdown())
		if e.assetIndex != nil {
			errs = append(errs, e.assetIndex.Close())
		}
		errs = append(errs, e.renderer.Shutdown())
		e.events.Shutdown()
		e.clock.Stop()

		e.shutdownErr = errors.Join(errs...)
	})
	return e.shutdownErr
}

func (e *Engine) onEvent(code core.SystemEventCode, sender, listener interface{}, context core.EventContext) bool {
	if code == core.EVENT_CODE_APPLICATION_QUIT {
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received (%s), shutting down.", context.Message)
	}
	// let the game listen too
	return false
}

// StaleAssets returns the cached asset paths that changed or disappeared on
// disk since they were loaded, sorted.
func (e *Engine) StaleAssets() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.staleAssets))
	for p := range e.staleAssets {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// isCached reports whether any cache holds a resource loaded from path.
func (e *Engine) isCached(path string) bool {
	sm := e.systemManager
	return sm.Textures.Contains(path) ||
		sm.Fonts.ContainsFunc(func(d loaders.FontDetails) bool { return d.Path == path }) ||
		sm.ShapingFonts.Contains(path) ||
		sm.BitmapFonts.Contains(path) ||
		sm.Binaries.Contains(path)
}

func (e *Engine) onAsset(code core.SystemEventCode, sender, listener interface{}, context core.EventContext) bool {
	if !e.isCached(context.Path) {
		return false
	}
	e.mu.Lock()
	e.staleAssets[context.Path] = struct{}{}
	e.mu.Unlock()

	switch code {
	case core.EVENT_CODE_ASSET_CHANGED:
		core.LogWarn("asset '%s' changed; the cached copy is kept until restart", context.Path)
	case core.EVENT_CODE_ASSET_REMOVED:
		core.LogWarn("asset '%s' removed; the cached copy is kept until restart", context.Path)
	}
	return false
}
