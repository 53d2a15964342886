package butylene

import (
	"reflect"

	"github.com/zoobzio/sentinel"
)

// fieldSignature builds a struct value field by field: allocate a zero T,
// then assign each argument directly into its matching field. The builder
// selector (builder.go) produces one of these for every record type that
// has no registered constructor, and alongside a constructorSignature for
// types that do unless [BuilderConstructor] is registered for the type.
// Supports prebuilt, since the zero value can be allocated,
// registered in a cycle table, and filled in afterward; fieldSignature
// always assumes T is addressable via reflect.New.
type fieldSignature struct {
	returnType Token
	rt         reflect.Type
	meta       sentinel.Metadata
	fields     []sentinel.FieldMetadata // parallel to args
	args       []Argument
	widen      bool
	byName     bool
	checkHints bool
	priority   int
}

func (f *fieldSignature) ReturnType() Token        { return f.returnType }
func (f *fieldSignature) Arguments() []Argument     { return f.args }
func (f *fieldSignature) MatchesArgumentNames() bool { return f.byName }
func (f *fieldSignature) MatchesTypeHints() bool     { return f.checkHints }
func (f *fieldSignature) Priority() int              { return f.priority }
func (f *fieldSignature) SupportsPrebuilt() bool     { return true }

func (f *fieldSignature) PreferredContainerShape() ContainerShape {
	if f.byName {
		return ShapeNode
	}
	return ShapeList
}

func (f *fieldSignature) Length(Element) int {
	return len(f.args)
}

// MakeBuildingObject allocates the zero struct (addressable, via
// reflect.New) ahead of recursing into field values. The processor
// registers this value's address in its cycle table before calling Build,
// so a self-referential field resolves to the same pointer instead of
// recursing forever.
func (f *fieldSignature) MakeBuildingObject(int) reflect.Value {
	return reflect.New(f.rt).Elem()
}

func (f *fieldSignature) Build(prebuilt reflect.Value, args []reflect.Value) (reflect.Value, error) {
	var rv reflect.Value
	if prebuilt.IsValid() {
		rv = prebuilt
	} else {
		rv = reflect.New(f.rt).Elem()
	}

	if len(args) != len(f.fields) {
		return reflect.Value{}, newMapperError(ErrSignatureShape, f.returnType.Name(), nil)
	}

	for i, fm := range f.fields {
		val := args[i]
		target := fieldValue(rv, fm)
		if val.Type() != target.Type() && val.Type().ConvertibleTo(target.Type()) {
			val = val.Convert(target.Type())
		}
		target.Set(val)
	}
	return rv, nil
}

func (f *fieldSignature) ObjectData(value reflect.Value) ([]TypedObject, error) {
	rv := indirectForRead(value)
	if !rv.IsValid() || rv.Kind() != reflect.Struct {
		return nil, newMapperError(ErrSignatureShape, f.returnType.Name(), nil)
	}

	out := make([]TypedObject, len(f.args))
	for i, a := range f.args {
		fm := f.fields[i]
		out[i] = TypedObject{Name: a.Name, Type: a.Type, Value: fieldValue(rv, fm)}
	}
	return out, nil
}

func (f *fieldSignature) InitContainer(sizeHint int) Element {
	if f.byName {
		return NewNode()
	}
	return NewListOfSize(sizeHint)
}
