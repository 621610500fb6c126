package systems

import (
	"github.com/spaghettifunk/panelpop/engine/resources"
	"github.com/spaghettifunk/panelpop/engine/resources/loaders"
)

/** @brief The configuration for the resource system */
type ResourceSystemConfig struct {
	/** @brief The base path relative asset paths are resolved against. */
	AssetBasePath string
	/** @brief DPI used when building font faces. */
	FontDPI float64
	/** @brief Number of workers used to preload assets. */
	PreloadWorkers int
}

type (
	TextureManager     = resources.Cache[string, *loaders.Texture]
	FontManager        = resources.Cache[loaders.FontDetails, *loaders.Font]
	BitmapFontManager  = resources.Cache[string, *loaders.BitmapFont]
	ShapingFontManager = resources.Cache[string, *loaders.ShapingFont]
	BinaryManager      = resources.Cache[string, []byte]
)

// CacheStats pairs a cache name with its counters.
type CacheStats struct {
	Name  string
	Len   int
	Stats resources.Stats
}

type statsSource interface {
	Name() string
	Len() int
	Stats() resources.Stats
}

func collectStats(caches ...statsSource) []CacheStats {
	out := make([]CacheStats, 0, len(caches))
	for _, c := range caches {
		out = append(out, CacheStats{Name: c.Name(), Len: c.Len(), Stats: c.Stats()})
	}
	return out
}
