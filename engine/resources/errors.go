package resources

import (
	"errors"
	"fmt"
)

var (
	// ErrLoadFailure is matched by every error returned from a failed load.
	ErrLoadFailure = errors.New("resource load failed")

	// ErrClosed is returned by Get once the cache has been closed.
	ErrClosed = errors.New("resource cache closed")

	// ErrReleased is returned when a handle is used after Release.
	ErrReleased = errors.New("resource handle already released")
)

// LoadError reports why a loader could not produce a resource.
type LoadError struct {
	// Cache is the name of the cache that triggered the load.
	Cache string
	// Key is a printable form of the descriptor.
	Key string
	// Err is the loader's error, returned verbatim by Unwrap.
	Err error
}

func (e *LoadError) Error() string {
	if e.Cache == "" {
		return fmt.Sprintf("failed to load %q: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("%s: failed to load %q: %v", e.Cache, e.Key, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrLoadFailure }
