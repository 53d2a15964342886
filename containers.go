package butylene

import (
	"reflect"
	"sort"
)

// arraySignature builds a fixed-size Go array ([N]T). Its length is fixed
// by the type itself rather than by the element being matched, so Length
// ignores its argument. Arrays are value types with no separate backing
// storage to pre-allocate identity for, so, like constructorSignature,
// arraySignature never supports prebuilt.
type arraySignature struct {
	returnType Token
	rt         reflect.Type
	elemType   Token
}

func (a *arraySignature) ReturnType() Token            { return a.returnType }
func (a *arraySignature) MatchesArgumentNames() bool    { return false }
func (a *arraySignature) MatchesTypeHints() bool        { return true }
func (a *arraySignature) Priority() int                 { return 0 }
func (a *arraySignature) SupportsPrebuilt() bool         { return false }
func (a *arraySignature) PreferredContainerShape() ContainerShape { return ShapeList }

func (a *arraySignature) Arguments() []Argument {
	n := a.rt.Len()
	out := make([]Argument, n)
	for i := range out {
		out[i] = Argument{Type: a.elemType}
	}
	return out
}

func (a *arraySignature) Length(Element) int {
	return a.rt.Len()
}

func (a *arraySignature) MakeBuildingObject(int) reflect.Value {
	return reflect.Value{}
}

func (a *arraySignature) Build(prebuilt reflect.Value, args []reflect.Value) (reflect.Value, error) {
	if prebuilt.IsValid() {
		return reflect.Value{}, newMapperError(ErrUnsupportedPrebuilt, a.returnType.Name(), nil)
	}
	if len(args) != a.rt.Len() {
		return reflect.Value{}, newMapperError(ErrSignatureShape, a.returnType.Name(), nil)
	}
	rv := reflect.New(a.rt).Elem()
	for i, arg := range args {
		rv.Index(i).Set(arg)
	}
	return rv, nil
}

func (a *arraySignature) ObjectData(value reflect.Value) ([]TypedObject, error) {
	rv := indirectForRead(value)
	if !rv.IsValid() || rv.Kind() != reflect.Array {
		return nil, newMapperError(ErrSignatureShape, a.returnType.Name(), nil)
	}
	out := make([]TypedObject, rv.Len())
	for i := range out {
		out[i] = TypedObject{Type: a.elemType, Value: rv.Index(i)}
	}
	return out, nil
}

func (a *arraySignature) InitContainer(sizeHint int) Element {
	return NewListOfSize(sizeHint)
}

// collectionSignature builds a Go slice. Length is unbounded (it depends
// on however many children the matched element actually has). Supports
// prebuilt: the processor allocates the slice with reflect.MakeSlice at
// its final length up front (length == capacity), so later element-by-
// element Set calls never trigger a reallocation that would silently
// detach the identity registered in the cycle table from the value the
// caller holds.
type collectionSignature struct {
	returnType Token
	rt         reflect.Type
	elemType   Token
}

func (c *collectionSignature) ReturnType() Token            { return c.returnType }
func (c *collectionSignature) MatchesArgumentNames() bool    { return false }
func (c *collectionSignature) MatchesTypeHints() bool        { return true }
func (c *collectionSignature) Priority() int                 { return 0 }
func (c *collectionSignature) SupportsPrebuilt() bool         { return true }
func (c *collectionSignature) PreferredContainerShape() ContainerShape { return ShapeList }

func (c *collectionSignature) Arguments() []Argument {
	return []Argument{{Type: c.elemType}}
}

func (c *collectionSignature) Length(element Element) int {
	if element == nil {
		return UnboundedLength
	}
	if lst, ok := element.(*List); ok {
		return lst.Size()
	}
	return UnboundedLength
}

func (c *collectionSignature) MakeBuildingObject(sizeHint int) reflect.Value {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return reflect.MakeSlice(c.rt, sizeHint, sizeHint)
}

func (c *collectionSignature) Build(prebuilt reflect.Value, args []reflect.Value) (reflect.Value, error) {
	var rv reflect.Value
	if prebuilt.IsValid() {
		rv = prebuilt
		if rv.Len() != len(args) {
			return reflect.Value{}, newMapperError(ErrSignatureShape, c.returnType.Name(), nil)
		}
	} else {
		rv = reflect.MakeSlice(c.rt, len(args), len(args))
	}
	for i, arg := range args {
		target := rv.Index(i)
		if arg.Type() != target.Type() && arg.Type().ConvertibleTo(target.Type()) {
			arg = arg.Convert(target.Type())
		}
		target.Set(arg)
	}
	return rv, nil
}

func (c *collectionSignature) ObjectData(value reflect.Value) ([]TypedObject, error) {
	rv := indirectForRead(value)
	if !rv.IsValid() {
		return nil, nil
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, newMapperError(ErrSignatureShape, c.returnType.Name(), nil)
	}
	out := make([]TypedObject, rv.Len())
	for i := range out {
		out[i] = TypedObject{Type: c.elemType, Value: rv.Index(i)}
	}
	return out, nil
}

func (c *collectionSignature) InitContainer(sizeHint int) Element {
	return NewListOfSize(sizeHint)
}

// mapEntrySignature builds a Go map. Its argument list is a sequence of
// key/value entries rather than fixed named/typed parameters, so
// Arguments reports the map's value type as the one representative
// argument for every entry, Build takes MapEntry (key, value) pairs, and
// ObjectData yields one TypedObject per key, named by that key. Supports prebuilt via
// reflect.MakeMapWithSize; unlike a slice, a map's identity is the map
// header itself, which reflect.MakeMap already returns as a stable
// reference type, so no length == capacity precaution is required.
type mapEntrySignature struct {
	returnType Token
	rt         reflect.Type
	keyType    Token
	valType    Token
}

func (m *mapEntrySignature) ReturnType() Token            { return m.returnType }
func (m *mapEntrySignature) MatchesArgumentNames() bool    { return false }
func (m *mapEntrySignature) MatchesTypeHints() bool        { return true }
func (m *mapEntrySignature) Priority() int                 { return 0 }
func (m *mapEntrySignature) SupportsPrebuilt() bool         { return true }
func (m *mapEntrySignature) PreferredContainerShape() ContainerShape { return ShapeNode }

func (m *mapEntrySignature) Arguments() []Argument {
	return []Argument{{Type: m.valType}}
}

func (m *mapEntrySignature) Length(element Element) int {
	if element == nil {
		return UnboundedLength
	}
	if node, ok := element.(*Node); ok {
		return node.Size()
	}
	return UnboundedLength
}

func (m *mapEntrySignature) MakeBuildingObject(sizeHint int) reflect.Value {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return reflect.MakeMapWithSize(m.rt, sizeHint)
}

// MapEntry carries one key and its value for building a mapEntrySignature;
// the processor supplies one per Node key, in that Node's key order.
type MapEntry struct {
	Key   reflect.Value
	Value reflect.Value
}

func (m *mapEntrySignature) Build(prebuilt reflect.Value, args []reflect.Value) (reflect.Value, error) {
	var rv reflect.Value
	if prebuilt.IsValid() {
		rv = prebuilt
	} else {
		rv = reflect.MakeMapWithSize(m.rt, len(args))
	}
	for _, arg := range args {
		entry, ok := arg.Interface().(MapEntry)
		if !ok {
			return reflect.Value{}, newMapperError(ErrSignatureShape, m.returnType.Name(), nil)
		}
		key, val := entry.Key, entry.Value
		if key.Type() != m.rt.Key() {
			if key.Kind() == reflect.String && m.rt.Key().Kind() != reflect.String {
				converted, err := scalarToValue(String(key.String()), m.rt.Key(), scalarOptions{})
				if err != nil {
					return reflect.Value{}, err
				}
				key = converted
			} else if key.Type().ConvertibleTo(m.rt.Key()) {
				key = key.Convert(m.rt.Key())
			}
		}
		if val.Type() != m.rt.Elem() && val.Type().ConvertibleTo(m.rt.Elem()) {
			val = val.Convert(m.rt.Elem())
		}
		rv.SetMapIndex(key, val)
	}
	return rv, nil
}

func (m *mapEntrySignature) ObjectData(value reflect.Value) ([]TypedObject, error) {
	rv := indirectForRead(value)
	if !rv.IsValid() {
		return nil, nil
	}
	if rv.Kind() != reflect.Map {
		return nil, newMapperError(ErrSignatureShape, m.returnType.Name(), nil)
	}
	keys := rv.MapKeys()
	out := make([]TypedObject, len(keys))
	for i, k := range keys {
		name, err := mapKeyName(k)
		if err != nil {
			return nil, err
		}
		out[i] = TypedObject{Name: name, Type: m.valType, Value: rv.MapIndex(k)}
	}
	// Go map iteration order is randomized; sort by key so that
	// serializing the same map twice produces the same Node key order.
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mapEntrySignature) InitContainer(sizeHint int) Element {
	return NewNode()
}

// mapKeyName renders a map key as the string used for the Node key the
// entry serializes under. Only string-kind and TextMarshaler keys are
// supported; anything else fails, since a Node's keys are always strings.
func mapKeyName(k reflect.Value) (string, error) {
	if k.Kind() == reflect.String {
		return k.String(), nil
	}
	if k.Type().Implements(textMarshalerType) {
		text, err := k.Interface().(interface{ MarshalText() ([]byte, error) }).MarshalText()
		if err != nil {
			return "", newMapperError(ErrConversion, k.Type().String(), err)
		}
		return string(text), nil
	}
	return "", newMapperError(ErrSignatureShape, k.Type().String(), nil)
}
