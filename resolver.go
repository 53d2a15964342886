package butylene

import (
	"reflect"
	"sync"
)

// TypeResolver maps an abstract type (an interface, including `any`) to
// the concrete type the mapper should construct when it encounters that
// interface as a declared argument or field type. Go's built-in container
// kinds (slice, array, map) are already concrete, so a TypeResolver only
// ever needs to fire for genuinely abstract (interface) fields.
type TypeResolver interface {
	// Resolve returns the concrete type registered for an abstract type,
	// and whether a mapping was found.
	Resolve(abstract reflect.Type) (concrete reflect.Type, ok bool)
}

// MapTypeResolver is a TypeResolver backed by a plain map, safe for
// concurrent registration and lookup. The zero value is ready to use.
type MapTypeResolver struct {
	mu       sync.RWMutex
	mappings map[reflect.Type]reflect.Type
}

// NewMapTypeResolver returns an empty MapTypeResolver.
func NewMapTypeResolver() *MapTypeResolver {
	return &MapTypeResolver{mappings: make(map[reflect.Type]reflect.Type)}
}

// Register binds an abstract (interface) type to a concrete implementation
// type. Registering a non-interface abstract type is allowed but pointless
// since such types are already concrete and never consult the resolver.
func (r *MapTypeResolver) Register(abstract, concrete reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mappings == nil {
		r.mappings = make(map[reflect.Type]reflect.Type)
	}
	r.mappings[abstract] = concrete
}

// Resolve implements TypeResolver.
func (r *MapTypeResolver) Resolve(abstract reflect.Type) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	concrete, ok := r.mappings[abstract]
	return concrete, ok
}

// resolveType follows an interface type through the resolver, returning
// the concrete type to classify/construct. Non-interface types pass
// through unchanged. An unresolved interface is returned unchanged too;
// the matcher then fails to find any signature for it, surfacing as
// ErrNoMatchingSignature.
func resolveType(rt reflect.Type, resolver TypeResolver) reflect.Type {
	if rt.Kind() != reflect.Interface || resolver == nil {
		return rt
	}
	if concrete, ok := resolver.Resolve(rt); ok {
		return concrete
	}
	return rt
}
