package butylene

import (
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// fieldAnnotation is the parsed form of a `butylene:"..."` struct tag:
// Name, Order, Include, and Exclude, at field granularity.
type fieldAnnotation struct {
	Name     string
	HasName  bool
	Order    int
	HasOrder bool
	Include  bool
	Exclude  bool
}

func parseFieldAnnotation(tag string) fieldAnnotation {
	var a fieldAnnotation
	if tag == "" {
		return a
	}
	if tag == "-" {
		a.Exclude = true
		return a
	}
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "include":
			a.Include = true
		case part == "exclude":
			a.Exclude = true
		case strings.HasPrefix(part, "name="):
			a.Name = strings.TrimPrefix(part, "name=")
			a.HasName = true
		case strings.HasPrefix(part, "order="):
			if n, err := strconv.Atoi(strings.TrimPrefix(part, "order=")); err == nil {
				a.Order = n
				a.HasOrder = true
			}
		}
	}
	return a
}

// BuilderMode selects the construction strategy the signature source uses
// for a target type: [BuilderConstructor] or [BuilderField].
// [BuilderDefault] uses a registered constructor if one exists via
// [RegisterConstructor], otherwise falls back to field-based, since Go has
// no runtime reflection over a type's constructor functions the way the
// matcher's classification does over its fields.
type BuilderMode int

const (
	BuilderDefault BuilderMode = iota
	BuilderConstructor
	BuilderField
)

// Type-level annotations (Widen, Builder) have no natural home on a Go
// struct tag, since tags attach to fields rather than to the type itself.
// They're expressed instead as package-level registration calls made once,
// typically from an init function near the type declaration.
var (
	typeAnnoMu sync.RWMutex
	widened    = make(map[reflect.Type]bool)
	builders   = make(map[reflect.Type]BuilderMode)
)

// RegisterWidened opts T into widened field access: field signatures for T
// may read and set unexported fields in addition to exported ones. Safe to
// call concurrently; intended to be called once at init time, before the
// first mapping call involving T.
func RegisterWidened[T any]() {
	typeAnnoMu.Lock()
	defer typeAnnoMu.Unlock()
	widened[reflect.TypeFor[T]()] = true
}

func isWidened(rt reflect.Type) bool {
	typeAnnoMu.RLock()
	defer typeAnnoMu.RUnlock()
	return widened[rt]
}

// RegisterBuilder selects the construction strategy the signature source
// uses for T: [BuilderConstructor] or [BuilderField]. Without a
// registration, the source falls back to [BuilderDefault]: the registered
// constructor if there is one, otherwise field-based.
func RegisterBuilder[T any](mode BuilderMode) {
	typeAnnoMu.Lock()
	defer typeAnnoMu.Unlock()
	builders[reflect.TypeFor[T]()] = mode
}

func builderModeFor(rt reflect.Type) BuilderMode {
	typeAnnoMu.RLock()
	defer typeAnnoMu.RUnlock()
	if m, ok := builders[rt]; ok {
		return m
	}
	return BuilderDefault
}

// constructorRegistry holds functions registered via RegisterConstructor,
// keyed by the type they build. A constructor function must have the shape
// func(args...) T or func(args...) (T, error); argument names for name
// matching are the argNames given at registration, and without them (or
// when their count differs from the parameter count) arguments bind by
// declared order.
var constructorRegistry = struct {
	mu    sync.RWMutex
	funcs map[reflect.Type]reflect.Value
	names map[reflect.Type][]string
}{funcs: make(map[reflect.Type]reflect.Value), names: make(map[reflect.Type][]string)}

// RegisterConstructor registers fn as the canonical constructor for T,
// used by [BuilderConstructor] (and by [BuilderDefault] when present). fn
// must be a func(args...) T or func(args...) (T, error); argNames must
// have one entry per parameter, naming it for name-based matching, or be
// nil for positional-only matching. RegisterConstructor panics if fn's
// signature doesn't return T as its first result.
func RegisterConstructor[T any](fn any, argNames ...string) {
	rt := reflect.TypeFor[T]()
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func || ft.NumOut() == 0 || ft.Out(0) != rt {
		panic("butylene: RegisterConstructor: fn must be func(...) " + rt.String() + " or func(...) (" + rt.String() + ", error)")
	}
	constructorRegistry.mu.Lock()
	defer constructorRegistry.mu.Unlock()
	constructorRegistry.funcs[rt] = fv
	constructorRegistry.names[rt] = argNames
}

func lookupConstructor(rt reflect.Type) (reflect.Value, []string, bool) {
	constructorRegistry.mu.RLock()
	defer constructorRegistry.mu.RUnlock()
	fv, ok := constructorRegistry.funcs[rt]
	if !ok {
		return reflect.Value{}, nil, false
	}
	return fv, constructorRegistry.names[rt], true
}
