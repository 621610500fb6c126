package resources

// Loader knows how to turn a descriptor into a resource.
//
// Implementations may perform I/O and allocate backing memory. A failed load
// must return a descriptive error; the cache never retries on its own.
type Loader[D comparable, R any] interface {
	Load(descriptor D) (R, error)
}

// Unloader is implemented by loaders that need to free a resource once the
// last handle to it is released.
type Unloader[R any] interface {
	Unload(resource R) error
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc[D comparable, R any] func(descriptor D) (R, error)

func (f LoaderFunc[D, R]) Load(descriptor D) (R, error) {
	return f(descriptor)
}
