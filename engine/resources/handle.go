package resources

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// entry is the shared, reference counted slot behind every handle to one resource.
type entry[R any] struct {
	id     uuid.UUID
	value  R
	refs   atomic.Int64
	unload func(R) error
}

// newEntry returns an entry holding one reference, owned by the cache.
func newEntry[R any](value R, unload func(R) error) *entry[R] {
	e := &entry[R]{
		id:     uuid.New(),
		value:  value,
		unload: unload,
	}
	e.refs.Store(1)
	return e
}

func (e *entry[R]) acquire() *Handle[R] {
	e.refs.Add(1)
	return &Handle[R]{entry: e}
}

// release drops one reference and unloads the resource when it was the last one.
func (e *entry[R]) release() error {
	if e.refs.Add(-1) != 0 || e.unload == nil {
		return nil
	}
	return e.unload(e.value)
}

// Releaser is satisfied by every Handle, whatever its resource type.
type Releaser interface {
	Release() error
}

// Handle is one holder's reference to a cached resource.
//
// Handles obtained for the same key share a single resource instance. Each
// handle must be released at most once; releasing it does not affect other
// handles, and the resource is unloaded only after every handle and the cache
// itself have let go of it.
type Handle[R any] struct {
	entry    *entry[R]
	released atomic.Bool
}

// Value returns the shared resource.
func (h *Handle[R]) Value() R {
	return h.entry.value
}

// ID identifies the shared resource. Handles to the same instance report the same ID.
func (h *Handle[R]) ID() uuid.UUID {
	return h.entry.id
}

// Refs returns the number of live references to the shared resource, the cache's included.
func (h *Handle[R]) Refs() int64 {
	return h.entry.refs.Load()
}

// Same reports whether both handles refer to the same resource instance.
func (h *Handle[R]) Same(other *Handle[R]) bool {
	return other != nil && h.entry == other.entry
}

// Clone returns a new holder of the same resource.
func (h *Handle[R]) Clone() (*Handle[R], error) {
	if h.released.Load() {
		return nil, ErrReleased
	}
	return h.entry.acquire(), nil
}

// Release gives up this handle's reference. The unload error, if any, is
// reported to whoever drops the last reference.
func (h *Handle[R]) Release() error {
	if !h.released.CompareAndSwap(false, true) {
		return ErrReleased
	}
	return h.entry.release()
}
