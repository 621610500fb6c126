package assets

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/panelpop/engine/core"
	"github.com/spaghettifunk/panelpop/engine/resources"
)

var ErrIndexClosed = errors.New("asset index already closed")

type AssetInfo struct {
	// Path relative to the assets root, slash separated.
	Path    string
	Type    resources.ResourceType
	Size    int64
	ModTime time.Time
}

// Index keeps track of the asset files available under a root directory and
// follows changes with fsnotify. Changes are reported through the event
// system; loaded resources are never replaced behind their handles.
type Index struct {
	root   string
	assets map[string]AssetInfo
	events *core.EventSystem

	mutex sync.RWMutex

	fsnotify *fsnotify.Watcher
	done     chan struct{}
	wg       sync.WaitGroup
	isClosed bool
}

// NewIndex creates an index for root. events may be nil.
func NewIndex(root string, events *core.EventSystem) (*Index, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Index{
		root:     filepath.Clean(root),
		assets:   make(map[string]AssetInfo),
		events:   events,
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}, nil
}

// Initialize scans the root directory and starts watching it recursively.
func (ix *Index) Initialize() error {
	if err := ix.addRecursive(ix.root); err != nil {
		return err
	}

	ix.wg.Add(1)
	go ix.start()

	core.LogInfo("asset index initialized with %d assets under '%s'", ix.Len(), ix.root)
	return nil
}

// Root returns the directory the index watches.
func (ix *Index) Root() string { return ix.root }

// Lookup returns the asset registered under path (relative to the root).
func (ix *Index) Lookup(path string) (AssetInfo, bool) {
	ix.mutex.RLock()
	defer ix.mutex.RUnlock()
	info, ok := ix.assets[ix.relative(path)]
	return info, ok
}

// List returns the known assets of the given type sorted by path.
// ResourceTypeNone lists every asset.
func (ix *Index) List(assetType resources.ResourceType) []AssetInfo {
	ix.mutex.RLock()
	out := make([]AssetInfo, 0, len(ix.assets))
	for _, a := range ix.assets {
		if assetType == resources.ResourceTypeNone || a.Type == assetType {
			out = append(out, a)
		}
	}
	ix.mutex.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (ix *Index) Len() int {
	ix.mutex.RLock()
	defer ix.mutex.RUnlock()
	return len(ix.assets)
}

// Close stops watching. It is safe to call more than once.
func (ix *Index) Close() error {
	ix.mutex.Lock()
	if ix.isClosed {
		ix.mutex.Unlock()
		return nil
	}
	ix.isClosed = true
	ix.mutex.Unlock()

	close(ix.done)
	ix.wg.Wait()
	return ix.fsnotify.Close()
}

func (ix *Index) start() {
	defer ix.wg.Done()
	for {
		select {
		case e, ok := <-ix.fsnotify.Events:
			if !ok {
				return
			}
			ix.handleEvent(e)

		case err, ok := <-ix.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err.Error())

		case <-ix.done:
			return
		}
	}
}

func (ix *Index) handleEvent(e fsnotify.Event) {
	s, err := os.Stat(e.Name)
	if err == nil && s.IsDir() {
		if e.Has(fsnotify.Create) {
			if err := ix.addRecursive(e.Name); err != nil {
				core.LogWarn("failed to watch new directory '%s': %s", e.Name, err.Error())
			}
		}
		return
	}

	if e.Has(fsnotify.Create) || e.Has(fsnotify.Write) {
		if info, ok := ix.indexFile(e.Name); ok {
			ix.fire(core.EVENT_CODE_ASSET_CHANGED, info.Path)
		}
	}
	// Can't stat a deleted path, so removals are matched against the index only.
	if e.Has(fsnotify.Remove) || e.Has(fsnotify.Rename) {
		if path, ok := ix.removeAsset(e.Name); ok {
			ix.fire(core.EVENT_CODE_ASSET_REMOVED, path)
		}
	}
}

func (ix *Index) fire(code core.SystemEventCode, path string) {
	if ix.events == nil {
		return
	}
	ix.events.Fire(code, ix, core.EventContext{Path: path})
}

// addRecursive watches the named directory and all sub-directories, indexing the files found.
func (ix *Index) addRecursive(name string) error {
	ix.mutex.RLock()
	closed := ix.isClosed
	ix.mutex.RUnlock()
	if closed {
		return ErrIndexClosed
	}

	return filepath.WalkDir(name, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return ix.fsnotify.Add(walkPath)
		}
		ix.indexFile(walkPath)
		return nil
	})
}

// indexFile records a file if its extension maps to a known resource type.
func (ix *Index) indexFile(path string) (AssetInfo, bool) {
	assetType := DetermineAssetType(path)
	if assetType == resources.ResourceTypeNone {
		return AssetInfo{}, false
	}
	s, err := os.Stat(path)
	if err != nil {
		return AssetInfo{}, false
	}

	info := AssetInfo{
		Path:    ix.relative(path),
		Type:    assetType,
		Size:    s.Size(),
		ModTime: s.ModTime(),
	}
	ix.mutex.Lock()
	ix.assets[info.Path] = info
	ix.mutex.Unlock()
	return info, true
}

func (ix *Index) removeAsset(path string) (string, bool) {
	rel := ix.relative(path)
	ix.mutex.Lock()
	defer ix.mutex.Unlock()
	if _, ok := ix.assets[rel]; !ok {
		return "", false
	}
	delete(ix.assets, rel)
	return rel, true
}

// relative maps a path to its slash separated form relative to the root.
// Paths that are not under the root are returned cleaned.
func (ix *Index) relative(path string) string {
	clean := filepath.Clean(path)
	if rel, err := filepath.Rel(ix.root, clean); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(clean)
}

// DetermineAssetType maps a file extension to the resource type that loads it.
func DetermineAssetType(path string) resources.ResourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return resources.ResourceTypeImage
	case ".ttf", ".otf", ".ttc":
		return resources.ResourceTypeSystemFont
	case ".fnt":
		return resources.ResourceTypeBitmapFont
	case ".bin", ".spv":
		return resources.ResourceTypeBinary
	default:
		return resources.ResourceTypeNone
	}
}
