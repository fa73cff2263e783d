package gcd

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates and caches Algorithm instances by name.
type Factory interface {
	// Get returns the cached Algorithm registered under name.
	Get(name string) (Algorithm, error)

	// List returns the registered names in sorted order.
	List() []string

	// Has reports whether name is registered.
	Has(name string) bool
}

// DefaultFactory is a thread-safe registry of algorithm creators. Engines are
// created lazily and cached for reuse.
type DefaultFactory struct {
	mu         sync.RWMutex
	creators   map[string]func() coreAlgorithm
	algorithms map[string]Algorithm
}

// NewDefaultFactory returns a factory with the three standard algorithms
// registered:
//   - "classic": ClassicEuclid
//   - "binary": BinaryEuclid
//   - "fast-binary": FastBinaryEuclid
func NewDefaultFactory() *DefaultFactory {
	f := &DefaultFactory{
		creators:   make(map[string]func() coreAlgorithm),
		algorithms: make(map[string]Algorithm),
	}
	_ = f.Register(ClassicEuclid{}.Name(), func() coreAlgorithm { return ClassicEuclid{} })
	_ = f.Register(BinaryEuclid{}.Name(), func() coreAlgorithm { return BinaryEuclid{} })
	_ = f.Register(FastBinaryEuclid{}.Name(), func() coreAlgorithm { return FastBinaryEuclid{} })
	return f
}

// Register adds or replaces the creator for name. The creator is called
// lazily on the first Get; a cached engine for name is dropped.
func (f *DefaultFactory) Register(name string, creator func() coreAlgorithm) error {
	if name == "" || creator == nil {
		return fmt.Errorf("register %q: name and creator are required", name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creators[name] = creator
	delete(f.algorithms, name)
	return nil
}

// Create returns a fresh, uncached engine for name.
func (f *DefaultFactory) Create(name string) (Algorithm, error) {
	f.mu.RLock()
	creator, ok := f.creators[name]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown algorithm: %s", name)
	}
	return NewEngine(creator()), nil
}

// Get returns the cached engine for name, creating it on first use.
func (f *DefaultFactory) Get(name string) (Algorithm, error) {
	f.mu.RLock()
	if alg, exists := f.algorithms[name]; exists {
		f.mu.RUnlock()
		return alg, nil
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	// Double-check after acquiring write lock
	if alg, exists := f.algorithms[name]; exists {
		return alg, nil
	}
	creator, ok := f.creators[name]
	if !ok {
		return nil, fmt.Errorf("unknown algorithm: %s", name)
	}
	alg := NewEngine(creator())
	f.algorithms[name] = alg
	return alg, nil
}

// MustGet is like Get but panics if name is not registered.
func (f *DefaultFactory) MustGet(name string) Algorithm {
	alg, err := f.Get(name)
	if err != nil {
		panic(fmt.Sprintf("gcd: required algorithm not found: %s", name))
	}
	return alg
}

// List returns the registered names sorted alphabetically.
func (f *DefaultFactory) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.creators))
	for name := range f.creators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is registered.
func (f *DefaultFactory) Has(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, exists := f.creators[name]
	return exists
}

// GetAll returns every registered engine, creating missing ones.
func (f *DefaultFactory) GetAll() map[string]Algorithm {
	f.mu.Lock()
	defer f.mu.Unlock()

	for name, creator := range f.creators {
		if _, exists := f.algorithms[name]; !exists {
			f.algorithms[name] = NewEngine(creator())
		}
	}
	result := make(map[string]Algorithm, len(f.algorithms))
	for name, alg := range f.algorithms {
		result[name] = alg
	}
	return result
}

var globalFactory = NewDefaultFactory()

// GlobalFactory returns the process-wide factory.
func GlobalFactory() *DefaultFactory {
	return globalFactory
}
