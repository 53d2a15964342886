package butylene

import "reflect"

// FuncSignature is a ready-made [Signature] for registering a plain
// function as the way to build some type, without requiring callers to
// implement all twelve Signature methods by hand. Pass one to
// [WithCustomSignature] to take priority over an automatically classified
// signature for the same type. Useful for types the builder selector
// would otherwise get wrong (a third-party struct field doesn't have an
// associated identity, so annotation-based configuration has no hook for
// it), or for constructing values that aren't structs at all.
type FuncSignature struct {
	Target     Token
	Fn         reflect.Value
	Args       []Argument
	ByName     bool
	CheckHints bool
	Prio       int

	// Decompose reads an already-built value back into the arguments an
	// equivalent call to Fn would have taken, for object mode. Required
	// only if the signature is ever used to serialize.
	Decompose func(reflect.Value) ([]TypedObject, error)

	// Shape controls InitContainer/PreferredContainerShape; defaults to
	// ShapeList when unset and ByName is false.
	Shape ContainerShape
}

// NewFuncSignature wraps fn (func(args...) T or func(args...) (T, error))
// as a custom [Signature] targeting T, with positional, non-type-hinted
// arguments named after args. Use the FuncSignature struct literal
// directly for named-argument or type-hint-checked variants.
func NewFuncSignature[T any](fn any, args ...Argument) *FuncSignature {
	return &FuncSignature{
		Target: TokenOf[T](),
		Fn:     reflect.ValueOf(fn),
		Args:   args,
	}
}

func (f *FuncSignature) ReturnType() Token            { return f.Target }
func (f *FuncSignature) Arguments() []Argument         { return f.Args }
func (f *FuncSignature) MatchesArgumentNames() bool     { return f.ByName }
func (f *FuncSignature) MatchesTypeHints() bool         { return f.CheckHints }
func (f *FuncSignature) Priority() int                  { return f.Prio }
func (f *FuncSignature) SupportsPrebuilt() bool          { return false }

func (f *FuncSignature) PreferredContainerShape() ContainerShape {
	if f.Shape == ShapeNode || f.ByName {
		return ShapeNode
	}
	return ShapeList
}

func (f *FuncSignature) Length(Element) int {
	return len(f.Args)
}

func (f *FuncSignature) MakeBuildingObject(int) reflect.Value {
	return reflect.Value{}
}

func (f *FuncSignature) Build(prebuilt reflect.Value, args []reflect.Value) (reflect.Value, error) {
	if prebuilt.IsValid() {
		return reflect.Value{}, newMapperError(ErrUnsupportedPrebuilt, f.Target.Name(), nil)
	}
	if len(args) != len(f.Args) {
		return reflect.Value{}, newMapperError(ErrSignatureShape, f.Target.Name(), nil)
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		want := f.Fn.Type().In(i)
		if a.Type() != want && a.Type().ConvertibleTo(want) {
			a = a.Convert(want)
		}
		in[i] = a
	}
	out := f.Fn.Call(in)
	switch len(out) {
	case 1:
		return out[0], nil
	case 2:
		if !out[1].IsNil() {
			return reflect.Value{}, newMapperError(ErrConversion, f.Target.Name(), out[1].Interface().(error))
		}
		return out[0], nil
	default:
		return reflect.Value{}, newMapperError(ErrSignatureShape, f.Target.Name(), nil)
	}
}

func (f *FuncSignature) ObjectData(value reflect.Value) ([]TypedObject, error) {
	if f.Decompose == nil {
		return nil, newMapperError(ErrSignatureShape, f.Target.Name(), nil).withArgument("no Decompose registered")
	}
	return f.Decompose(value)
}

func (f *FuncSignature) InitContainer(sizeHint int) Element {
	if f.PreferredContainerShape() == ShapeNode {
		return NewNode()
	}
	return NewListOfSize(sizeHint)
}
