package engine

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/spaghettifunk/panelpop/engine/config"
	"github.com/spaghettifunk/panelpop/engine/core"
	"github.com/spaghettifunk/panelpop/engine/renderer"
	"github.com/spaghettifunk/panelpop/engine/resources"
	"github.com/spaghettifunk/panelpop/engine/resources/loaders"
)

func writePNG(t *testing.T, path string, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	writePNG(t, filepath.Join(root, "bg.png"), color.RGBA{G: 255, A: 255})

	cfg := config.Default()
	cfg.Application.Width = 16
	cfg.Application.Height = 8
	cfg.Application.OutputPath = filepath.Join(t.TempDir(), "frame.png")
	cfg.Assets.Dir = root
	cfg.TitleScreen.Image = "bg.png"
	return cfg
}

func TestEngineLifecycle(t *testing.T) {
	cfg := testConfig(t)

	renders := 0
	g := &Game{Config: cfg}
	g.FnInitialize = func() error {
		_, err := g.SystemManager.Textures.Get("bg.png")
		return err
	}
	g.FnRender = func(b renderer.RendererBackend, deltaTime float64) error {
		renders++
		h, err := g.SystemManager.Textures.Get("bg.png")
		if err != nil {
			return err
		}
		defer h.Release()
		return b.DrawTexture(h.Value(), nil)
	}

	e, err := New(g)
	require.NoError(t, err)
	require.NotNil(t, g.SystemManager)
	assert.Equal(t, EngineStageUninitialized, e.Stage())
	assert.ErrorIs(t, e.Run(), core.ErrNotInitialized)

	require.NoError(t, e.Initialize())
	assert.Equal(t, EngineStageInitialized, e.Stage())
	assert.ErrorIs(t, e.Initialize(), core.ErrAlreadyRunning)

	quit := false
	e.Events().Register(core.EVENT_CODE_APPLICATION_QUIT, t, func(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
		quit = true
		return true
	})

	require.NoError(t, e.Run())
	assert.Equal(t, 1, renders)

	f, err := os.Open(cfg.Application.OutputPath)
	require.NoError(t, err)
	img, err := png.Decode(f)
	require.NoError(t, f.Close())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 8), img.Bounds())
	_, green, _, _ := img.At(8, 4).RGBA()
	assert.Greater(t, green>>8, uint32(250))

	stats := g.SystemManager.Textures.Stats()
	assert.EqualValues(t, 1, stats.Loads)
	assert.EqualValues(t, 1, stats.Hits)

	require.NoError(t, e.Shutdown())
	require.NoError(t, e.Shutdown())
	assert.True(t, quit)
	assert.Equal(t, EngineStageShuttingDown, e.Stage())
}

func TestEngineRenderFailure(t *testing.T) {
	cfg := testConfig(t)
	g := &Game{Config: cfg}
	g.FnRender = func(b renderer.RendererBackend, deltaTime float64) error {
		_, err := g.SystemManager.Textures.Get("missing.png")
		return err
	}

	e, err := New(g)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	assert.Error(t, e.Run())
	_, err = os.Stat(cfg.Application.OutputPath)
	assert.ErrorIs(t, err, os.ErrNotExist)
	require.NoError(t, e.Shutdown())
}

func TestEngineTracksStaleCachedAssets(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Assets.Dir, "font.ttf"), goregular.TTF, 0o644))

	g := &Game{Config: cfg, FnRender: func(renderer.RendererBackend, float64) error { return nil }}
	e, err := New(g)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())

	tex, err := g.SystemManager.Textures.Get("bg.png")
	require.NoError(t, err)
	defer tex.Release()
	font, err := g.SystemManager.Fonts.Get(loaders.FontDetails{Path: "font.ttf", Size: 10})
	require.NoError(t, err)
	defer font.Release()

	events := e.Events()
	events.Fire(core.EVENT_CODE_ASSET_CHANGED, nil, core.EventContext{Path: "bg.png"})
	events.Fire(core.EVENT_CODE_ASSET_REMOVED, nil, core.EventContext{Path: "font.ttf"})
	events.Fire(core.EVENT_CODE_ASSET_CHANGED, nil, core.EventContext{Path: "never-loaded.png"})

	assert.Equal(t, []string{"bg.png", "font.ttf"}, e.StaleAssets())
	require.NoError(t, e.Shutdown())
}

func TestEnginePreload(t *testing.T) {
	cfg := testConfig(t)
	cfg.Assets.Preload = []string{"bg.png"}

	g := &Game{Config: cfg, FnRender: func(renderer.RendererBackend, float64) error { return nil }}
	e, err := New(g)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	assert.True(t, g.SystemManager.Textures.Contains("bg.png"))
	require.NoError(t, e.Shutdown())

	cfg = testConfig(t)
	cfg.Assets.Preload = []string{"missing.png"}
	g = &Game{Config: cfg, FnRender: func(renderer.RendererBackend, float64) error { return nil }}
	e, err = New(g)
	require.NoError(t, err)
	assert.ErrorIs(t, e.Initialize(), resources.ErrLoadFailure)
	require.NoError(t, e.Shutdown())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	cfg := config.Default()
	cfg.Application.Width = 0
	_, err = New(&Game{Config: cfg})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	_, err = New(&Game{Config: config.Default()})
	assert.ErrorContains(t, err, "FnRender")
}
