package resources

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/spaghettifunk/panelpop/engine/core"
)

// Stats is a snapshot of the cache counters.
type Stats struct {
	Hits     uint64
	Misses   uint64
	Loads    uint64
	Failures uint64
}

// Cache memoizes the resources produced by a Loader.
//
// Every distinct descriptor is loaded at most once for the lifetime of the
// cache, and every Get for that descriptor returns a handle to the same
// instance. Failed loads are not remembered: the next Get for the same
// descriptor calls the loader again. There is no eviction.
//
// Cache is safe for concurrent use. Concurrent misses on the same descriptor
// share a single load.
type Cache[D comparable, R any] struct {
	name   string
	loader Loader[D, R]
	unload func(R) error
	logger *log.Logger

	mu      sync.RWMutex
	entries map[D]*entry[R]
	closed  bool

	// flights maps a descriptor being loaded to its singleflight key, so
	// only descriptors equal under == ever join the same load.
	flights    map[D]uint64
	nextFlight uint64
	loadGroup  singleflight.Group

	hits     atomic.Uint64
	misses   atomic.Uint64
	loads    atomic.Uint64
	failures atomic.Uint64
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	name   string
	logger *log.Logger
}

// WithName sets the name used in log lines and load errors.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger replaces the engine logger.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New binds an empty cache to loader. No I/O happens until the first Get.
// If loader also implements Unloader[R], resources are unloaded when their
// last reference is released.
func New[D comparable, R any](loader Loader[D, R], opts ...Option) *Cache[D, R] {
	o := &options{name: "resources"}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(o)
	}
	if o.logger == nil {
		o.logger = core.Logger().WithPrefix(o.name)
	}

	c := &Cache[D, R]{
		name:    o.name,
		loader:  loader,
		logger:  o.logger,
		entries: make(map[D]*entry[R]),
		flights: make(map[D]uint64),
	}
	if u, ok := loader.(Unloader[R]); ok {
		c.unload = u.Unload
	}
	return c
}

// Get returns a handle to the resource for descriptor, loading it on the first request.
//
// A load error is returned wrapped in a *LoadError and nothing is stored.
func (c *Cache[D, R]) Get(descriptor D) (*Handle[R], error) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return nil, ErrClosed
	}
	if e, ok := c.entries[descriptor]; ok {
		h := e.acquire()
		c.mu.RUnlock()
		c.hits.Add(1)
		return h, nil
	}
	c.mu.RUnlock()

	c.misses.Add(1)
	flight := c.claimFlight(descriptor)
	v, err, shared := c.loadGroup.Do(strconv.FormatUint(flight, 10), func() (any, error) {
		return c.load(descriptor, flight)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("joined in-flight load", "key", describe(descriptor))
	}

	// Close may have run between the load and now; the entry is only safe to
	// acquire while the cache still owns its reference.
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrClosed
	}
	return v.(*entry[R]).acquire(), nil
}

// claimFlight returns the flight for descriptor, starting a new one when no
// load for it is in progress.
func (c *Cache[D, R]) claimFlight(descriptor D) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.flights[descriptor]
	if !ok {
		c.nextFlight++
		id = c.nextFlight
		c.flights[descriptor] = id
	}
	return id
}

func (c *Cache[D, R]) endFlight(descriptor D, flight uint64) {
	c.mu.Lock()
	if c.flights[descriptor] == flight {
		delete(c.flights, descriptor)
	}
	c.mu.Unlock()
}

func (c *Cache[D, R]) load(descriptor D, flight uint64) (*entry[R], error) {
	defer c.endFlight(descriptor, flight)

	// another flight may have published the entry since the first lookup
	c.mu.RLock()
	e, ok := c.entries[descriptor]
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}
	if ok {
		return e, nil
	}

	key := describe(descriptor)
	clock := core.NewClock()
	clock.Start()
	c.loads.Add(1)
	resource, err := c.loader.Load(descriptor)
	clock.Update()
	if err != nil {
		c.failures.Add(1)
		c.logger.Error("load failed", "key", key, "err", err)
		return nil, &LoadError{Cache: c.name, Key: key, Err: err}
	}
	e = newEntry(resource, c.unload)
	c.logger.Debug("loaded", "key", key, "id", e.id, "elapsed", clock.Elapsed())

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, errors.Join(ErrClosed, e.release())
	}
	if existing, ok := c.entries[descriptor]; ok {
		// a stale flight raced a newer one; the published entry wins
		c.mu.Unlock()
		if err := e.release(); err != nil {
			c.logger.Warn("unload of duplicate failed", "key", key, "id", e.id, "err", err)
		}
		return existing, nil
	}
	c.entries[descriptor] = e
	c.mu.Unlock()
	return e, nil
}

// Contains reports whether descriptor has a loaded entry. It never calls the loader.
func (c *Cache[D, R]) Contains(descriptor D) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[descriptor]
	return ok
}

// ContainsFunc reports whether any loaded descriptor satisfies match.
func (c *Cache[D, R]) ContainsFunc(match func(D) bool) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for d := range c.entries {
		if match(d) {
			return true
		}
	}
	return false
}

// Len returns the number of loaded entries.
func (c *Cache[D, R]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Name returns the name given with WithName.
func (c *Cache[D, R]) Name() string {
	return c.name
}

func (c *Cache[D, R]) Stats() Stats {
	return Stats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Loads:    c.loads.Load(),
		Failures: c.failures.Load(),
	}
}

// Close drops the cache's reference on every entry. Resources that are not
// held by any outstanding handle are unloaded immediately; the others are
// unloaded when their last handle is released. Close is idempotent.
func (c *Cache[D, R]) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	entries := c.entries
	c.entries = make(map[D]*entry[R])
	c.mu.Unlock()

	var errs []error
	for d, e := range entries {
		c.logger.Debug("released", "key", describe(d), "id", e.id)
		if err := e.release(); err != nil {
			errs = append(errs, fmt.Errorf("unload %s: %w", describe(d), err))
		}
	}
	c.logger.Debug("closed", "entries", len(entries))
	return errors.Join(errs...)
}

// describe returns the printable form of a descriptor used in logs and errors.
func describe[D comparable](descriptor D) string {
	if s, ok := any(descriptor).(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", descriptor)
}
