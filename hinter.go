package butylene

import (
	"encoding"
	"reflect"
)

// TypeHinter classifies a type into {SCALAR, LIST, NODE} and tests
// element/type compatibility. It never fails: every reflect.Type lands in
// exactly one of the three buckets.
type TypeHinter struct {
	resolver TypeResolver
	strict   bool // reserved for future use; currently unused by Classify
}

// NewTypeHinter returns a TypeHinter that resolves abstract (interface)
// types through resolver. A nil resolver is valid; interface types then
// never resolve and classify as NODE by default (see Classify).
func NewTypeHinter(resolver TypeResolver) *TypeHinter {
	return &TypeHinter{resolver: resolver}
}

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
var textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()

// IsScalarType reports whether rt has a registered scalar handler: the
// boolean, integer, float, and string kinds, plus any named type with one
// of those underlying kinds (Go's "enum" idiom of const blocks on a named
// type), and any type implementing both encoding.TextMarshaler and
// encoding.TextUnmarshaler (the idiomatic Go enum-as-string contract,
// grounded on the stdlib interfaces rather than reflecting over const
// declarations, which Go cannot enumerate generically).
func IsScalarType(rt reflect.Type) bool {
	switch rt.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return true
	}
	if rt.Implements(textMarshalerType) && reflect.PointerTo(rt).Implements(textUnmarshalerType) {
		return true
	}
	return false
}

func isNilableKind(k reflect.Kind) bool {
	switch k {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return true
	default:
		return false
	}
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// underlyingType unwraps a single level of pointer so that the classifier
// sees the pointee's shape. Go uses `*T` pervasively for "optional T" and
// for the indirection self-referential structs require; treating `*Foo`
// the same as `Foo` for classification purposes (but not for construction,
// which still allocates the pointer) matches how the rest of the mapper
// already has to special-case pointers for nilability. Multiple pointer
// levels unwrap fully.
func underlyingType(rt reflect.Type) reflect.Type {
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	return rt
}

// Classify applies the classification rules, in order:
//  1. Array/slice types → LIST.
//  2. Map types → NODE.
//  3. A type with a registered scalar handler → SCALAR.
//  4. Otherwise → NODE (treated as a record).
//
// Interface types are first resolved via the hinter's TypeResolver; an
// unresolved interface classifies as NODE (the matcher will then fail to
// find a signature and report ErrNoMatchingSignature, which is the correct
// "I don't know how to build this" outcome).
func (h *TypeHinter) Classify(t Token) (ElementKind, error) {
	rt, err := t.RawType()
	if err != nil {
		return 0, err
	}
	return h.classifyType(rt), nil
}

func (h *TypeHinter) classifyType(rt reflect.Type) ElementKind {
	rt = underlyingType(rt)
	rt = resolveType(rt, h.resolver)
	rt = underlyingType(rt)

	switch rt.Kind() {
	case reflect.Slice, reflect.Array:
		return KindList
	case reflect.Map:
		return KindNode
	}
	if IsScalarType(rt) {
		return KindScalar
	}
	return KindNode
}

// Assignable reports whether element's runtime classification is
// compatible with target's classified shape. A null Scalar is
// assignable to any nilable target. Numeric scalars are mutually
// assignable across all numeric targets; actual narrowing/overflow is
// checked later, at conversion time, not here. A bare `any` target with
// no resolver mapping accepts every element.
func (h *TypeHinter) Assignable(element Element, target Token) bool {
	rt, err := target.RawType()
	if err != nil {
		return false
	}
	underlying := underlyingType(rt)
	underlying = resolveType(underlying, h.resolver)
	underlying = underlyingType(underlying)
	if isBareAny(underlying) {
		return true
	}

	if s, ok := element.(Scalar); ok && s.IsNull() {
		return isNilableKind(rt.Kind()) || isNilableKind(underlying.Kind())
	}

	targetKind := h.classifyType(rt)
	switch element.Kind() {
	case KindScalar:
		if targetKind != KindScalar {
			return false
		}
		s := element.(Scalar)
		switch s.Value().(type) {
		case int64:
			return isNumericKind(underlying.Kind())
		case float64:
			return isNumericKind(underlying.Kind())
		case bool:
			return underlying.Kind() == reflect.Bool
		case string:
			if underlying.Kind() == reflect.String {
				return true
			}
			return underlying.Implements(textUnmarshalerType) || reflect.PointerTo(underlying).Implements(textUnmarshalerType)
		default:
			return false
		}
	case KindList:
		return targetKind == KindList
	case KindNode:
		return targetKind == KindNode
	default:
		return false
	}
}
