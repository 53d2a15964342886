package butylene

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"time"
)

// emptyInterfaceType is the reflect.Type of a bare `any`/interface{} with
// no methods. A declared field, argument, or element type of exactly this
// type (and with no registered TypeResolver mapping) is handled by the
// generic any-walk below instead of the signature matcher, since there is
// no concrete type to build a Signature against.
var emptyInterfaceType = reflect.TypeOf((*any)(nil)).Elem()

func isBareAny(rt reflect.Type) bool {
	return rt == emptyInterfaceType
}

// Processor is the recursive mapping driver for one target type T. It owns
// no mutable state of its own beyond what's shared read-mostly across
// calls (the signature source's cache); every cycleTable and work stack is
// scoped to a single DataFromElement/ElementFromData call.
type Processor[T any] struct {
	codec    Codec // optional; nil Processors can still be used via DataFromElement/ElementFromData directly
	source   *SignatureSource
	hinter   *TypeHinter
	resolver TypeResolver
	scalar   scalarOptions
	strict   bool
}

// NewProcessor builds a Processor for T using codec (which may be nil) and
// the given options.
func NewProcessor[T any](codec Codec, opts ...ProcessorOption) (*Processor[T], error) {
	cfg := &processorConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	resolver := cfg.resolver
	if resolver == nil {
		resolver = NewMapTypeResolver()
	}
	hinter := NewTypeHinter(resolver)
	sourceOpts := cfg.sourceOpts
	source := NewSignatureSource(hinter, resolver, sourceOpts...)

	return &Processor[T]{
		codec:    codec,
		source:   source,
		hinter:   hinter,
		resolver: resolver,
		scalar:   scalarOptions{enumCaseInsensitive: cfg.enumCaseInsensitive},
		strict:   cfg.strictUnknownKeys,
	}, nil
}

// DataFromElement maps element into a value of type T (element to object).
func (p *Processor[T]) DataFromElement(ctx context.Context, element Element) (T, error) {
	var zero T
	start := nowOrZero()
	token := TokenOf[T]()

	emitDataFromElementStart(ctx, token.Name(), element.Kind().String())

	rv, err := p.runElementToObject(ctx, token, element)
	emitDataFromElementComplete(ctx, token.Name(), sinceOrZero(start), err)
	if err != nil {
		return zero, wrapTop("dataFromElement", err)
	}

	out, ok := rv.Interface().(T)
	if !ok {
		return zero, wrapTop("dataFromElement", newMapperError(ErrConversion, token.Name(), nil))
	}
	return out, nil
}

// ElementFromData maps obj into its Element representation (object to
// element).
func (p *Processor[T]) ElementFromData(ctx context.Context, obj T) (Element, error) {
	token := TokenOf[T]()
	start := nowOrZero()

	emitElementFromDataStart(ctx, token.Name())

	e, err := p.runObjectToElement(ctx, token, reflect.ValueOf(obj))
	emitElementFromDataComplete(ctx, token.Name(), sinceOrZero(start), err)
	if err != nil {
		return nil, wrapTop("elementFromData", err)
	}
	return e, nil
}

// nowOrZero/sinceOrZero exist only so signal emission has a duration
// field without the core depending on wall-clock time for anything
// semantic; callers never observe these values except as log fields.
func nowOrZero() time.Time { return time.Now() }
func sinceOrZero(t time.Time) time.Duration {
	if t.IsZero() {
		return 0
	}
	return time.Since(t)
}

// --- Element -> Object -------------------------------------------------

// pendingBuild is the frame state for one in-flight struct/container
// build: its args slice fills in as each child's visit job completes, and
// its finalize job (pushed onto the work stack ahead of its children, so
// it runs only after they've all resolved) calls sig.Build once they have.
type pendingBuild struct {
	sig      Signature
	element  Element
	prebuilt reflect.Value
	args     []reflect.Value
	slot     *reflect.Value
}

// elementWorkStack is the explicit work stack described by the core's
// design notes: rather than recursing directly, each step pushes closures
// representing "visit this child" and "finalize this parent" jobs, and an
// ordinary LIFO loop drains them. A parent's finalize job is always pushed
// immediately before its children's visit jobs, so it sits beneath them on
// the stack and only runs once every child above it has been popped and
// processed — the standard iterative post-order traversal shape. This
// avoids deep Go call-stack recursion on deep or cyclic element trees.
type elementWorkStack struct {
	jobs []func() error
}

func (s *elementWorkStack) push(job func() error) {
	s.jobs = append(s.jobs, job)
}

func (s *elementWorkStack) drain() error {
	for len(s.jobs) > 0 {
		job := s.jobs[len(s.jobs)-1]
		s.jobs = s.jobs[:len(s.jobs)-1]
		if err := job(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor[T]) runElementToObject(ctx context.Context, rootToken Token, rootElement Element) (reflect.Value, error) {
	cycleTable := make(map[Element]reflect.Value)
	inProgress := make(map[Element]bool)

	var root reflect.Value
	stack := &elementWorkStack{}
	p.pushVisitElement(ctx, stack, rootToken, rootElement, &root, cycleTable, inProgress)

	if err := stack.drain(); err != nil {
		return reflect.Value{}, err
	}
	return root, nil
}

// pushVisitElement enqueues the job that resolves one (token, element)
// pair into *slot. Scalars and cycle-table hits resolve inline since they
// need no children; everything else pushes a finalize job followed by one
// visit job per child argument.
func (p *Processor[T]) pushVisitElement(
	ctx context.Context,
	stack *elementWorkStack,
	token Token,
	element Element,
	slot *reflect.Value,
	cycleTable map[Element]reflect.Value,
	inProgress map[Element]bool,
) {
	stack.push(func() error {
		rt, err := token.RawType()
		if err != nil {
			return err
		}

		if isBareAny(rt) {
			if _, resolved := p.resolver.Resolve(rt); !resolved {
				return p.visitBareAnyElement(ctx, stack, element, slot, cycleTable, inProgress)
			}
		}

		if p.hinter.classifyType(rt) == KindScalar {
			s, ok := element.(Scalar)
			if !ok {
				return newMapperError(ErrConversion, token.Name(), nil)
			}
			v, err := scalarToValue(s, resolveType(rt, p.resolver), p.scalar)
			if err != nil {
				return err
			}
			*slot = v
			return nil
		}

		if v, ok := cycleTable[element]; ok {
			*slot = v
			return nil
		}
		if inProgress[element] {
			return newMapperError(ErrCycleRequiresPrebuilt, token.Name(), nil)
		}

		matcher, err := p.source.MatcherFor(ctx, token)
		if err != nil {
			return err
		}
		match, err := matcher.Match(element, reflect.Value{})
		if err != nil {
			return err
		}

		sig := match.Signature
		children := match.Children

		if p.strict {
			if err := checkUnknownKeys(element, sig); err != nil {
				return err
			}
		}

		var prebuilt reflect.Value
		if sig.SupportsPrebuilt() {
			prebuilt = sig.MakeBuildingObject(len(children))
			cycleTable[element] = prebuilt
		} else {
			inProgress[element] = true
		}

		pb := &pendingBuild{
			sig:      sig,
			element:  element,
			prebuilt: prebuilt,
			args:     make([]reflect.Value, len(children)),
			slot:     slot,
		}

		stack.push(func() error {
			result, err := pb.sig.Build(pb.prebuilt, pb.args)
			delete(inProgress, pb.element)
			if err != nil {
				return err
			}
			if !pb.sig.SupportsPrebuilt() {
				cycleTable[pb.element] = result
			}
			*pb.slot = result
			return nil
		})

		argTypes := sig.Arguments()
		mapSig, isMap := sig.(*mapEntrySignature)
		var keys []string
		if isMap {
			if node, ok := element.(*Node); ok {
				keys = node.Keys()
			}
		}

		for i := len(children) - 1; i >= 0; i-- {
			childToken := argTypeFor(argTypes, i, token)

			if isMap {
				idx := i
				keyName := ""
				if idx < len(keys) {
					keyName = keys[idx]
				}
				temp := new(reflect.Value)
				stack.push(func() error {
					pb.args[idx] = reflect.ValueOf(MapEntry{Key: reflect.ValueOf(keyName), Value: *temp})
					return nil
				})
				p.pushVisitElement(ctx, stack, childToken, children[i], temp, cycleTable, inProgress)
				continue
			}

			p.pushVisitElement(ctx, stack, childToken, children[i], &pb.args[i], cycleTable, inProgress)
		}
		_ = mapSig

		return nil
	})
}

// visitBareAnyElement resolves an element declared as bare `any` by
// dispatching directly on the element's own Kind rather than through a
// Signature: a Scalar becomes its native Go value, a List becomes []any,
// and a Node becomes map[string]any. It shares the caller's cycleTable, so
// a self-reference that loops back through a concretely-typed ancestor
// (the ordinary case for a List holding itself as one of its own elements)
// still resolves to the identical built value rather than a fresh copy.
func (p *Processor[T]) visitBareAnyElement(
	ctx context.Context,
	stack *elementWorkStack,
	element Element,
	slot *reflect.Value,
	cycleTable map[Element]reflect.Value,
	inProgress map[Element]bool,
) error {
	if v, ok := cycleTable[element]; ok {
		*slot = v
		return nil
	}
	if inProgress[element] {
		return newMapperError(ErrCycleRequiresPrebuilt, "any", nil)
	}

	switch e := element.(type) {
	case Scalar:
		if e.IsNull() {
			*slot = reflect.Zero(emptyInterfaceType)
			return nil
		}
		*slot = reflect.ValueOf(e.Value())
		return nil

	case *List:
		sl := reflect.MakeSlice(reflect.SliceOf(emptyInterfaceType), e.Size(), e.Size())
		cycleTable[element] = sl
		*slot = sl
		for i := e.Size() - 1; i >= 0; i-- {
			idx := i
			child := new(reflect.Value)
			stack.push(func() error {
				sl.Index(idx).Set(*child)
				return nil
			})
			p.pushVisitElement(ctx, stack, TokenFromType(emptyInterfaceType), e.Get(idx), child, cycleTable, inProgress)
		}
		return nil

	case *Node:
		m := reflect.MakeMapWithSize(reflect.MapOf(reflect.TypeOf(""), emptyInterfaceType), e.Size())
		cycleTable[element] = m
		*slot = m
		keys := e.Keys()
		for i := len(keys) - 1; i >= 0; i-- {
			key := keys[i]
			child := new(reflect.Value)
			stack.push(func() error {
				m.SetMapIndex(reflect.ValueOf(key), *child)
				return nil
			})
			val, _ := e.Get(key)
			p.pushVisitElement(ctx, stack, TokenFromType(emptyInterfaceType), val, child, cycleTable, inProgress)
		}
		return nil

	default:
		return newMapperError(ErrConversion, "any", fmt.Errorf("unrecognized element kind %T", element))
	}
}

// argTypeFor returns the declared argument type for child i, clamped to the
// last declared argument when the signature reports fewer argument types
// than children (collection and map signatures declare exactly one
// argument type, reused for every child, since their real arity depends on
// the element rather than on the signature). fallback is only used when the
// signature declares no arguments at all, which should not happen for a
// signature that matched successfully but is guarded against defensively
// here.
func argTypeFor(args []Argument, i int, fallback Token) Token {
	if i < len(args) {
		return args[i].Type
	}
	if len(args) > 0 {
		return args[len(args)-1].Type
	}
	return fallback
}

// checkUnknownKeys implements WithStrictUnknownKeys: a Node element whose
// keys aren't all accounted for by the matched signature's arguments
// fails with ErrUnknownKey instead of silently dropping the extra keys.
func checkUnknownKeys(element Element, sig Signature) error {
	if !sig.MatchesArgumentNames() {
		return nil
	}
	node, ok := element.(*Node)
	if !ok {
		return nil
	}
	known := make(map[string]bool, len(sig.Arguments()))
	for _, a := range sig.Arguments() {
		known[a.Name] = true
	}
	for _, key := range node.Keys() {
		if !known[key] {
			return newMapperError(ErrUnknownKey, "", nil).withArgument(key)
		}
	}
	return nil
}

// --- Object -> Element -------------------------------------------------

// objectIdentity returns a stable identity key for rv's cycle table entry
// and whether rv has one at all. Only reference-kind values (pointer, map,
// slice, chan, unsafe pointer, func) get an identity; every other value,
// including a struct reached inside a slice or another struct, reports
// ok=false and is never cycle-checked.
func objectIdentity(rv reflect.Value) (uintptr, bool) {
	for rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return 0, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.UnsafePointer, reflect.Func:
		if rv.IsNil() {
			return 0, false
		}
		return rv.Pointer(), true
	default:
		return 0, false
	}
}

// pendingElement is the object-to-element counterpart of pendingBuild: a
// container Element whose children fill in as each typed object's visit
// job completes.
type pendingElement struct {
	container Element
	slot      *Element
}

func (p *Processor[T]) runObjectToElement(ctx context.Context, rootToken Token, rootObject reflect.Value) (Element, error) {
	cycleTable := make(map[uintptr]Element)

	var root Element
	stack := &elementWorkStack{}
	p.pushVisitObject(ctx, stack, rootToken, rootObject, &root, cycleTable)

	if err := stack.drain(); err != nil {
		return nil, err
	}
	return root, nil
}

func (p *Processor[T]) pushVisitObject(
	ctx context.Context,
	stack *elementWorkStack,
	token Token,
	object reflect.Value,
	slot *Element,
	cycleTable map[uintptr]Element,
) {
	stack.push(func() error {
		rt, err := token.RawType()
		if err != nil {
			return err
		}

		if isBareAny(rt) {
			if _, resolved := p.resolver.Resolve(rt); !resolved {
				return p.visitBareAnyObject(ctx, stack, object, slot, cycleTable)
			}
		}

		if p.hinter.classifyType(rt) == KindScalar {
			s, err := valueToScalar(object)
			if err != nil {
				return err
			}
			*slot = s
			return nil
		}

		id, hasID := objectIdentity(object)
		if hasID {
			if e, ok := cycleTable[id]; ok {
				*slot = e
				return nil
			}
		}

		matcher, err := p.source.MatcherFor(ctx, token)
		if err != nil {
			return err
		}
		match, err := matcher.Match(nil, object)
		if err != nil {
			return err
		}

		sig := match.Signature
		objects := match.Objects

		container := sig.InitContainer(len(objects))
		if hasID {
			cycleTable[id] = container
		}

		pe := &pendingElement{container: container, slot: slot}

		stack.push(func() error {
			*pe.slot = pe.container
			return nil
		})

		for i := len(objects) - 1; i >= 0; i-- {
			obj := objects[i]
			var childSlot Element
			idx := i
			stack.push(func() error {
				return appendChild(pe.container, idx, objects[idx].Name, childSlot)
			})
			p.pushVisitObject(ctx, stack, obj.Type, obj.Value, &childSlot, cycleTable)
		}

		return nil
	})
}

// visitBareAnyObject is the object-to-element counterpart of
// visitBareAnyElement: it unwraps the interface{} box by hand and
// dispatches on the boxed value's own reflect.Kind, since there is no
// concrete declared type to build a Signature against.
func (p *Processor[T]) visitBareAnyObject(
	ctx context.Context,
	stack *elementWorkStack,
	object reflect.Value,
	slot *Element,
	cycleTable map[uintptr]Element,
) error {
	rv := object
	for rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			*slot = Null()
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		*slot = Null()
		return nil
	}

	id, hasID := objectIdentity(rv)
	if hasID {
		if e, ok := cycleTable[id]; ok {
			*slot = e
			return nil
		}
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		list := NewListOfSize(rv.Len())
		if hasID {
			cycleTable[id] = list
		}
		*slot = list
		for i := rv.Len() - 1; i >= 0; i-- {
			idx := i
			var child Element
			stack.push(func() error {
				list.Set(idx, child)
				return nil
			})
			p.pushVisitObject(ctx, stack, TokenFromType(emptyInterfaceType), rv.Index(idx), &child, cycleTable)
		}
		return nil

	case reflect.Map:
		node := NewNode()
		if hasID {
			cycleTable[id] = node
		}
		*slot = node
		keys := rv.MapKeys()
		names := make([]string, len(keys))
		byName := make(map[string]reflect.Value, len(keys))
		for i, k := range keys {
			name := fmt.Sprint(k.Interface())
			names[i] = name
			byName[name] = k
		}
		sort.Strings(names)
		for i := len(names) - 1; i >= 0; i-- {
			name := names[i]
			k := byName[name]
			var child Element
			stack.push(func() error {
				node.Put(name, child)
				return nil
			})
			p.pushVisitObject(ctx, stack, TokenFromType(emptyInterfaceType), rv.MapIndex(k), &child, cycleTable)
		}
		return nil

	default:
		s, err := valueToScalar(rv)
		*slot = s
		return err
	}
}

// appendChild writes a resolved child element into container at the
// position matching name (Node) or at index idx (List), appending when
// the List is shorter than idx+1.
func appendChild(container Element, idx int, name string, child Element) error {
	switch c := container.(type) {
	case *Node:
		c.Put(name, child)
	case *List:
		if idx < c.Size() {
			c.Set(idx, child)
		} else {
			c.Append(child)
		}
	default:
		return newMapperError(ErrSignatureShape, "", nil)
	}
	return nil
}
