// Package factory implements the hash-consing arena described in spec.md
// §4.1: two create(args) calls with structurally equal arguments return the
// same node identity, and position is stamped on the canonical instance
// after lookup rather than participating in that identity.
//
// The reference compiler keeps one process-wide static map per C++
// template instantiation (core/factory.hpp). This implementation replaces
// that with an explicit, per-compilation-unit arena: one Factory[K,V] per
// node kind, owned by the ast.Builder that is compiling (spec.md §4.1, §5 —
// "a per-module factory suffices").
package factory

import "sync"

// Factory is a hash-consing arena for node kind V, keyed by a comparable
// tuple K built from that kind's constructor arguments. It is not
// goroutine-safe across factories sharing state — per spec.md §5,
// compilation is single-threaded per module; the mutex below only guards
// against accidental concurrent use within one module, it is not a
// performance feature.
type Factory[K comparable, V any] struct {
	mu      sync.Mutex
	storage map[K]*V
}

// New creates an empty arena.
func New[K comparable, V any]() *Factory[K, V] {
	return &Factory[K, V]{storage: make(map[K]*V)}
}

// Create returns the canonical *V for key, constructing it via build only
// on the first call with that key. Subsequent calls with an equal key
// return the identical pointer, regardless of how build would behave this
// time — build is expected to be a pure function of key.
func (f *Factory[K, V]) Create(key K, build func() *V) *V {
	f.mu.Lock()
	defer f.mu.Unlock()

	if v, ok := f.storage[key]; ok {
		return v
	}
	v := build()
	f.storage[key] = v
	return v
}

// Len reports how many distinct instances this arena has allocated so far;
// used by tests asserting the hash-consing invariant (spec.md §8).
func (f *Factory[K, V]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.storage)
}
