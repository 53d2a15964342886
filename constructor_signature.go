package butylene

import "reflect"

// constructorSignature builds a value by invoking a single function of the
// shape func(args...) T or func(args...) (T, error). It never supports a
// prebuilt value: a function call has no partially-constructed state to
// register in a cycle table ahead of evaluating its arguments, so a type
// whose only signature is constructor-based cannot participate in a cycle.
type constructorSignature struct {
	returnType   Token
	fn           reflect.Value
	args         []Argument
	byName       bool
	checkHints   bool
	priority     int
	fieldsForGet []sentinelFieldRef // parallel to args, for ObjectData
}

// sentinelFieldRef names the struct field ObjectData reads back for one
// constructor argument, resolved once at registration time rather than by
// name lookup on every call.
type sentinelFieldRef struct {
	index []int
	rt    reflect.Type
}

func (c *constructorSignature) ReturnType() Token        { return c.returnType }
func (c *constructorSignature) Arguments() []Argument     { return c.args }
func (c *constructorSignature) MatchesArgumentNames() bool { return c.byName }
func (c *constructorSignature) MatchesTypeHints() bool     { return c.checkHints }
func (c *constructorSignature) Priority() int              { return c.priority }
func (c *constructorSignature) SupportsPrebuilt() bool      { return false }
func (c *constructorSignature) PreferredContainerShape() ContainerShape {
	if c.byName {
		return ShapeNode
	}
	return ShapeList
}

func (c *constructorSignature) Length(Element) int {
	return len(c.args)
}

func (c *constructorSignature) MakeBuildingObject(int) reflect.Value {
	return reflect.Value{}
}

func (c *constructorSignature) Build(prebuilt reflect.Value, args []reflect.Value) (reflect.Value, error) {
	if prebuilt.IsValid() {
		return reflect.Value{}, newMapperError(ErrUnsupportedPrebuilt, c.returnType.Name(), nil)
	}
	if len(args) != len(c.args) {
		return reflect.Value{}, newMapperError(ErrSignatureShape, c.returnType.Name(),
			nil).withArgument("argument count mismatch")
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		want := c.fn.Type().In(i)
		if a.Type() != want && a.Type().ConvertibleTo(want) {
			a = a.Convert(want)
		}
		in[i] = a
	}

	out := c.fn.Call(in)
	switch len(out) {
	case 1:
		return out[0], nil
	case 2:
		if !out[1].IsNil() {
			return reflect.Value{}, newMapperError(ErrConversion, c.returnType.Name(), out[1].Interface().(error))
		}
		return out[0], nil
	default:
		return reflect.Value{}, newMapperError(ErrSignatureShape, c.returnType.Name(), nil)
	}
}

func (c *constructorSignature) ObjectData(value reflect.Value) ([]TypedObject, error) {
	rv := indirectForRead(value)
	if !rv.IsValid() || rv.Kind() != reflect.Struct {
		return nil, newMapperError(ErrSignatureShape, c.returnType.Name(), nil)
	}

	out := make([]TypedObject, len(c.args))
	for i, a := range c.args {
		ref := c.fieldsForGet[i]
		fv := rv.FieldByIndex(ref.index)
		out[i] = TypedObject{Name: a.Name, Type: TokenFromType(ref.rt), Value: fv}
	}
	return out, nil
}

func (c *constructorSignature) InitContainer(sizeHint int) Element {
	if c.byName {
		return NewNode()
	}
	return NewListOfSize(sizeHint)
}
