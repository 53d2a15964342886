package butylene

import (
	"reflect"
	"sort"

	"github.com/zoobzio/sentinel"
)

// buildRecordSignatures is the signature builder selector: it produces the
// candidate signatures for a user-defined record type rt, per the
// registered [BuilderMode] (defaulting to field-based when no constructor
// is registered). Both a registered constructor and the field-based path
// can be returned together, the constructor signature given a strictly
// higher priority so the matcher prefers it when both fit the element.
func buildRecordSignatures(t Token, rt reflect.Type, resolver TypeResolver) ([]Signature, error) {
	if rt.Kind() != reflect.Struct {
		return nil, nil
	}

	widen := isWidened(rt)
	meta := scanType(rt, widen)
	fields := orderedFields(meta.Fields)

	var sigs []Signature

	mode := builderModeFor(rt)
	fn, names, hasCtor := lookupConstructor(rt)

	if (mode == BuilderConstructor || mode == BuilderDefault) && hasCtor {
		sig, err := newConstructorSignatureFromFunc(t, rt, fn, names, fields, resolver)
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)
	}

	if mode != BuilderConstructor || !hasCtor {
		sigs = append(sigs, newFieldSignature(t, rt, fields, widen, resolver))
	}

	return sigs, nil
}

// orderedFields applies the declared field ordering rules: exclude
// annotated-out fields, then sort ascending by annotation order for any
// field that carries one, with declared source order as the tiebreak and
// the fallback for fields with no order annotation at all.
func orderedFields(all []sentinel.FieldMetadata) []sentinel.FieldMetadata {
	type ranked struct {
		fm    sentinel.FieldMetadata
		order int
		seq   int
	}
	kept := make([]ranked, 0, len(all))
	for i, fm := range all {
		anno := parseFieldAnnotation(fm.Tags[fieldTag])
		if anno.Exclude {
			continue
		}
		order := i
		if anno.HasOrder {
			order = anno.Order
		}
		kept = append(kept, ranked{fm: fm, order: order, seq: i})
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].order < kept[j].order
	})
	out := make([]sentinel.FieldMetadata, len(kept))
	for i, r := range kept {
		out[i] = r.fm
	}
	return out
}

func fieldArgName(fm sentinel.FieldMetadata) string {
	anno := parseFieldAnnotation(fm.Tags[fieldTag])
	if anno.HasName {
		return anno.Name
	}
	return fm.Name
}

func newFieldSignature(t Token, rt reflect.Type, fields []sentinel.FieldMetadata, widen bool, resolver TypeResolver) Signature {
	args := make([]Argument, len(fields))
	for i, fm := range fields {
		ft := resolveType(fm.ReflectType, resolver)
		args[i] = Argument{Name: fieldArgName(fm), Type: TokenFromType(ft)}
	}
	return &fieldSignature{
		returnType: t,
		rt:         rt,
		fields:     fields,
		args:       args,
		widen:      widen,
		byName:     true,
		checkHints: true,
		priority:   0,
	}
}

// pointerRecordSignature adapts a struct-shaped Signature (field- or
// constructor-based) to build and read a pointer to that struct, so that
// the idiomatic Go self-referential pattern — a struct field declared as
// *T — resolves through the same record signatures as an unpointered T.
// Every method but the three that actually touch the pointer/struct
// boundary delegates straight to inner.
type pointerRecordSignature struct {
	returnType Token
	inner      Signature
}

func newPointerRecordSignature(t Token, inner Signature) Signature {
	return &pointerRecordSignature{returnType: t, inner: inner}
}

func (p *pointerRecordSignature) ReturnType() Token        { return p.returnType }
func (p *pointerRecordSignature) Arguments() []Argument     { return p.inner.Arguments() }
func (p *pointerRecordSignature) MatchesArgumentNames() bool { return p.inner.MatchesArgumentNames() }
func (p *pointerRecordSignature) MatchesTypeHints() bool     { return p.inner.MatchesTypeHints() }
func (p *pointerRecordSignature) Priority() int               { return p.inner.Priority() }
func (p *pointerRecordSignature) Length(element Element) int  { return p.inner.Length(element) }
func (p *pointerRecordSignature) SupportsPrebuilt() bool      { return p.inner.SupportsPrebuilt() }
func (p *pointerRecordSignature) PreferredContainerShape() ContainerShape {
	return p.inner.PreferredContainerShape()
}
func (p *pointerRecordSignature) InitContainer(sizeHint int) Element {
	return p.inner.InitContainer(sizeHint)
}

// MakeBuildingObject allocates the underlying struct via inner, then takes
// its address: reflect.New(...).Elem() (what every struct-based inner
// signature uses) is always addressable, so Addr() is safe.
func (p *pointerRecordSignature) MakeBuildingObject(sizeHint int) reflect.Value {
	built := p.inner.MakeBuildingObject(sizeHint)
	if !built.IsValid() || !built.CanAddr() {
		return reflect.Value{}
	}
	return built.Addr()
}

func (p *pointerRecordSignature) Build(prebuilt reflect.Value, args []reflect.Value) (reflect.Value, error) {
	var inner reflect.Value
	if prebuilt.IsValid() {
		inner = prebuilt.Elem()
	}
	built, err := p.inner.Build(inner, args)
	if err != nil {
		return reflect.Value{}, err
	}
	if prebuilt.IsValid() {
		return prebuilt, nil
	}
	if built.CanAddr() {
		return built.Addr(), nil
	}
	ptr := reflect.New(built.Type())
	ptr.Elem().Set(built)
	return ptr, nil
}

// ObjectData delegates directly: indirectForRead (used by both
// fieldSignature and constructorSignature's ObjectData) already unwraps a
// pointer receiver on its own.
func (p *pointerRecordSignature) ObjectData(value reflect.Value) ([]TypedObject, error) {
	return p.inner.ObjectData(value)
}

func newConstructorSignatureFromFunc(t Token, rt reflect.Type, fn reflect.Value, names []string, fields []sentinel.FieldMetadata, resolver TypeResolver) (Signature, error) {
	ft := fn.Type()
	n := ft.NumIn()
	args := make([]Argument, n)
	refs := make([]sentinelFieldRef, n)
	byName := len(names) == n && n > 0

	for i := 0; i < n; i++ {
		argType := resolveType(ft.In(i), resolver)
		name := ""
		if byName {
			name = names[i]
		}
		args[i] = Argument{Name: name, Type: TokenFromType(argType)}

		ref := sentinelFieldRef{rt: ft.In(i)}
		for _, fm := range fields {
			if byName && fieldArgName(fm) == name {
				ref = sentinelFieldRef{index: fm.Index, rt: fm.ReflectType}
				break
			}
			if !byName && fm.Name == "" {
				break
			}
		}
		if !byName && i < len(fields) {
			ref = sentinelFieldRef{index: fields[i].Index, rt: fields[i].ReflectType}
		}
		refs[i] = ref
	}

	return &constructorSignature{
		returnType:   t,
		fn:           fn,
		args:         args,
		byName:       byName,
		checkHints:   true,
		priority:     10,
		fieldsForGet: refs,
	}, nil
}
