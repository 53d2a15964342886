package butylene

import (
	"fmt"
	"reflect"
	"sync"
)

// Token is a reified, possibly-generic type handle. Go's reflect package
// already carries full instantiation information for slice, array, map,
// pointer, and channel types (Elem/Key resolve through named types
// transparently), so Token is a thin wrapper: its job is to additionally
// support types minted from dynamically loaded code (the `plugin` package)
// whose metadata a host process may later consider retired, modeled as a
// weak reference that fails closed with [ErrTypeUnavailable].
type Token struct {
	rt    reflect.Type
	arena *typeArena // nil for ordinary, statically-known types
}

// TokenOf returns the Token for the static Go type T.
func TokenOf[T any]() Token {
	return Token{rt: reflect.TypeFor[T]()}
}

// TokenFromType returns the Token wrapping a reflect.Type discovered at
// runtime (e.g. a struct field's declared type).
func TokenFromType(rt reflect.Type) Token {
	return Token{rt: rt}
}

// RawType resolves the Token to its reflect.Type. It fails with
// [ErrTypeUnavailable] if the Token was minted from a plugin-loaded type
// that has since been retired via [RetirePluginType].
func (t Token) RawType() (reflect.Type, error) {
	if t.arena != nil {
		return t.arena.resolve()
	}
	if t.rt == nil {
		return nil, fmt.Errorf("%w: zero-value Token", ErrTypeUnavailable)
	}
	return t.rt, nil
}

// Name returns a stable diagnostic/caching name for the Token. Plugin-
// backed tokens return their registered id even after retirement, since
// diagnostics must still be able to name what went missing.
func (t Token) Name() string {
	if t.arena != nil {
		return t.arena.id
	}
	if t.rt == nil {
		return "<invalid>"
	}
	return t.rt.String()
}

// ElementType returns the single type argument of a container Token: the
// element type of a slice/array/chan/pointer, or an error if the raw type
// has no single element type. Use [Token.KeyType] for maps.
func (t Token) ElementType() (Token, error) {
	rt, err := t.RawType()
	if err != nil {
		return Token{}, err
	}
	switch rt.Kind() {
	case reflect.Slice, reflect.Array, reflect.Chan, reflect.Ptr:
		return TokenFromType(rt.Elem()), nil
	case reflect.Map:
		return TokenFromType(rt.Elem()), nil
	default:
		return Token{}, fmt.Errorf("%w: %s has no element type", ErrSignatureShape, rt)
	}
}

// KeyType returns a map Token's key type.
func (t Token) KeyType() (Token, error) {
	rt, err := t.RawType()
	if err != nil {
		return Token{}, err
	}
	if rt.Kind() != reflect.Map {
		return Token{}, fmt.Errorf("%w: %s is not a map", ErrSignatureShape, rt)
	}
	return TokenFromType(rt.Key()), nil
}

// Parameterize constructs the Token for Raw<args...> when Raw is one of
// Go's built-in composite kinds (slice, array, map, pointer, channel). Go
// cannot reflectively instantiate a user-defined generic type with a chosen
// type argument; those instantiations must already exist in compiled code.
// Parameterize only ever synthesizes the shapes Go's own reflect package
// can construct: [reflect.SliceOf], [reflect.MapOf], [reflect.PointerTo].
// Anything else fails with [ErrSignatureShape].
func (t Token) Parameterize(args ...Token) (Token, error) {
	rt, err := t.RawType()
	if err != nil {
		return Token{}, err
	}
	switch rt.Kind() {
	case reflect.Slice:
		if len(args) != 1 {
			return Token{}, fmt.Errorf("%w: slice takes exactly one type argument", ErrSignatureShape)
		}
		elem, err := args[0].RawType()
		if err != nil {
			return Token{}, err
		}
		return TokenFromType(reflect.SliceOf(elem)), nil
	case reflect.Map:
		if len(args) != 2 {
			return Token{}, fmt.Errorf("%w: map takes exactly two type arguments", ErrSignatureShape)
		}
		key, err := args[0].RawType()
		if err != nil {
			return Token{}, err
		}
		val, err := args[1].RawType()
		if err != nil {
			return Token{}, err
		}
		return TokenFromType(reflect.MapOf(key, val)), nil
	case reflect.Ptr:
		if len(args) != 1 {
			return Token{}, fmt.Errorf("%w: pointer takes exactly one type argument", ErrSignatureShape)
		}
		elem, err := args[0].RawType()
		if err != nil {
			return Token{}, err
		}
		return TokenFromType(reflect.PointerTo(elem)), nil
	default:
		return Token{}, fmt.Errorf("%w: %s cannot be reflectively parameterized in Go", ErrSignatureShape, rt)
	}
}

// typeArena holds a weakly-referenced type binding for plugin-loaded code.
// Go's plugin package never unloads a shared object, so in practice a
// typeArena only ever becomes invalid when a host process explicitly
// retires it, e.g. because it's tearing down a sandboxed plugin's logical
// lifetime even though the .so stays mapped.
type typeArena struct {
	mu    sync.RWMutex
	id    string
	rt    reflect.Type
	valid bool
}

func (a *typeArena) resolve() (reflect.Type, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.valid {
		return nil, fmt.Errorf("%w: type %q", ErrTypeUnavailable, a.id)
	}
	return a.rt, nil
}

func (a *typeArena) retire() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.valid = false
}

var (
	arenaMu sync.Mutex
	arenas  = make(map[string]*typeArena)
)

// TokenFromPlugin mints a Token for a type discovered from dynamically
// loaded code, identified by a stable id (typically "<plugin path>#<type
// name>"). The returned Token is a weak reference: it resolves normally
// until [RetirePluginType] is called with the same id, after which
// [Token.RawType] fails with [ErrTypeUnavailable].
func TokenFromPlugin(id string, rt reflect.Type) Token {
	arenaMu.Lock()
	defer arenaMu.Unlock()
	a, ok := arenas[id]
	if !ok {
		a = &typeArena{id: id, rt: rt, valid: true}
		arenas[id] = a
	}
	return Token{rt: rt, arena: a}
}

// RetirePluginType invalidates every Token minted from id via
// [TokenFromPlugin]. Subsequent calls to [Token.RawType] on those tokens
// return [ErrTypeUnavailable]. Retiring an unknown id is a no-op.
func RetirePluginType(id string) {
	arenaMu.Lock()
	a, ok := arenas[id]
	arenaMu.Unlock()
	if ok {
		a.retire()
	}
}
