package systems

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spaghettifunk/panelpop/engine/assets"
	"github.com/spaghettifunk/panelpop/engine/core"
	"github.com/spaghettifunk/panelpop/engine/resources"
	"github.com/spaghettifunk/panelpop/engine/resources/loaders"
)

// SystemManager owns one resource cache per resource kind. The loaders are
// owned here too, so no cache outlives its loader.
type SystemManager struct {
	Textures     *TextureManager
	Fonts        *FontManager
	BitmapFonts  *BitmapFontManager
	ShapingFonts *ShapingFontManager
	Binaries     *BinaryManager

	config ResourceSystemConfig
}

func NewSystemManager(config ResourceSystemConfig) (*SystemManager, error) {
	if config.AssetBasePath == "" {
		err := fmt.Errorf("func NewSystemManager - config.AssetBasePath must be set")
		core.LogError(err.Error())
		return nil, err
	}
	if config.PreloadWorkers <= 0 {
		config.PreloadWorkers = 1
	}

	sm := &SystemManager{
		Textures: resources.New[string, *loaders.Texture](
			&loaders.TextureLoader{Root: config.AssetBasePath}, resources.WithName("textures")),
		Fonts: resources.New[loaders.FontDetails, *loaders.Font](
			&loaders.FontLoader{Root: config.AssetBasePath, DPI: config.FontDPI}, resources.WithName("fonts")),
		BitmapFonts: resources.New[string, *loaders.BitmapFont](
			&loaders.BitmapFontLoader{Root: config.AssetBasePath}, resources.WithName("bitmap_fonts")),
		ShapingFonts: resources.New[string, *loaders.ShapingFont](
			&loaders.ShapingFontLoader{Root: config.AssetBasePath}, resources.WithName("shaping_fonts")),
		Binaries: resources.New[string, []byte](
			&loaders.BinaryLoader{Root: config.AssetBasePath}, resources.WithName("binaries")),
		config: config,
	}

	core.LogInfo("Resource system initialized with base path '%s'.", config.AssetBasePath)
	return sm, nil
}

// Preload warms the caches for the given asset paths on a pool of workers.
// Each path goes to the cache matching its type; fonts are loaded for
// shaping since a face needs a size. The returned handles must be released
// by the caller.
func (sm *SystemManager) Preload(paths ...string) ([]resources.Releaser, error) {
	js, err := NewJobSystem(sm.config.PreloadWorkers, len(paths))
	if err != nil {
		return nil, err
	}

	var (
		mu       sync.Mutex
		handles  []resources.Releaser
		failures []error
	)
	keep := func(h resources.Releaser, err error) error {
		if err != nil {
			return err
		}
		mu.Lock()
		handles = append(handles, h)
		mu.Unlock()
		return nil
	}

	for _, path := range paths {
		path := path
		js.Submit(JobTask{
			Name: path,
			Run: func() error {
				switch assets.DetermineAssetType(path) {
				case resources.ResourceTypeImage:
					return keep(sm.Textures.Get(path))
				case resources.ResourceTypeSystemFont:
					return keep(sm.ShapingFonts.Get(path))
				case resources.ResourceTypeBitmapFont:
					return keep(sm.BitmapFonts.Get(path))
				default:
					return keep(sm.Binaries.Get(path))
				}
			},
			OnFailure: func(err error) {
				mu.Lock()
				failures = append(failures, err)
				mu.Unlock()
			},
		})
	}
	if err := js.Shutdown(); err != nil {
		return handles, err
	}
	return handles, errors.Join(failures...)
}

// Stats returns the counters of every cache.
func (sm *SystemManager) Stats() []CacheStats {
	return collectStats(sm.Textures, sm.Fonts, sm.BitmapFonts, sm.ShapingFonts, sm.Binaries)
}

// Shutdown closes every cache. Resources still held by handles are unloaded
// when those handles are released.
func (sm *SystemManager) Shutdown() error {
	for _, s := range sm.Stats() {
		core.LogDebug("cache %s: %d entries, %d hits, %d misses, %d loads, %d failures",
			s.Name, s.Len, s.Stats.Hits, s.Stats.Misses, s.Stats.Loads, s.Stats.Failures)
	}
	return errors.Join(
		sm.Textures.Close(),
		sm.Fonts.Close(),
		sm.BitmapFonts.Close(),
		sm.ShapingFonts.Close(),
		sm.Binaries.Close(),
	)
}
