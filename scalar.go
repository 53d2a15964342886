package butylene

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
)

// scalarOptions configures enum matching; set by the owning Processor.
type scalarOptions struct {
	enumCaseInsensitive bool
}

// scalarToValue converts a Scalar into a reflect.Value of rt's type,
// applying narrowing/overflow checks. Null converts to the zero value for
// nilable kinds and to an error otherwise. The caller (field/constructor
// signature) is expected to have already used [TypeHinter.Assignable]
// during matching, so a null scalar should never reach a non-nilable
// target in practice; the check here is a defensive backstop, not the
// primary gate.
func scalarToValue(s Scalar, rt reflect.Type, opts scalarOptions) (reflect.Value, error) {
	if s.IsNull() {
		if isNilableKind(rt.Kind()) {
			return reflect.Zero(rt), nil
		}
		return reflect.Value{}, newMapperError(ErrConversion, rt.String(), fmt.Errorf("cannot assign null to non-nilable type"))
	}

	if rt.Implements(textUnmarshalerType) || reflect.PointerTo(rt).Implements(textUnmarshalerType) {
		if str, ok := s.Value().(string); ok {
			return unmarshalEnumText(str, rt, opts)
		}
	}

	switch v := s.Value().(type) {
	case bool:
		if rt.Kind() != reflect.Bool {
			return reflect.Value{}, newMapperError(ErrConversion, rt.String(), fmt.Errorf("cannot assign bool to %s", rt.Kind()))
		}
		return reflect.ValueOf(v).Convert(rt), nil

	case int64:
		return intToValue(v, rt)

	case float64:
		return floatToValue(v, rt)

	case string:
		if rt.Kind() != reflect.String {
			return reflect.Value{}, newMapperError(ErrConversion, rt.String(), fmt.Errorf("cannot assign string to %s", rt.Kind()))
		}
		return reflect.ValueOf(v).Convert(rt), nil

	default:
		return reflect.Value{}, newMapperError(ErrConversion, rt.String(), fmt.Errorf("unrecognized scalar value %T", v))
	}
}

func intToValue(v int64, rt reflect.Type) (reflect.Value, error) {
	switch rt.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		bits := rt.Bits()
		if bits < 64 {
			max := int64(1)<<(bits-1) - 1
			min := -(int64(1) << (bits - 1))
			if v > max || v < min {
				return reflect.Value{}, newMapperError(ErrNumericOverflow, rt.String(), fmt.Errorf("%d overflows %s", v, rt))
			}
		}
		return reflect.ValueOf(v).Convert(rt), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v < 0 {
			return reflect.Value{}, newMapperError(ErrNumericOverflow, rt.String(), fmt.Errorf("%d is negative, cannot assign to %s", v, rt))
		}
		bits := rt.Bits()
		if bits < 64 {
			max := uint64(1)<<bits - 1
			if uint64(v) > max {
				return reflect.Value{}, newMapperError(ErrNumericOverflow, rt.String(), fmt.Errorf("%d overflows %s", v, rt))
			}
		}
		return reflect.ValueOf(v).Convert(rt), nil
	case reflect.Float32, reflect.Float64:
		return reflect.ValueOf(float64(v)).Convert(rt), nil
	default:
		return reflect.Value{}, newMapperError(ErrConversion, rt.String(), fmt.Errorf("cannot assign integer to %s", rt.Kind()))
	}
}

func floatToValue(v float64, rt reflect.Type) (reflect.Value, error) {
	switch rt.Kind() {
	case reflect.Float64:
		return reflect.ValueOf(v).Convert(rt), nil
	case reflect.Float32:
		if math.Abs(v) > math.MaxFloat32 {
			return reflect.Value{}, newMapperError(ErrNumericOverflow, rt.String(), fmt.Errorf("%g overflows float32", v))
		}
		return reflect.ValueOf(v).Convert(rt), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v != math.Trunc(v) {
			return reflect.Value{}, newMapperError(ErrConversion, rt.String(), fmt.Errorf("%g is not an integer", v))
		}
		return intToValue(int64(v), rt)
	default:
		return reflect.Value{}, newMapperError(ErrConversion, rt.String(), fmt.Errorf("cannot assign float to %s", rt.Kind()))
	}
}

func unmarshalEnumText(s string, rt reflect.Type, opts scalarOptions) (reflect.Value, error) {
	ptr := reflect.New(rt)
	text := s
	if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text)); err != nil {
		if !opts.enumCaseInsensitive {
			return reflect.Value{}, newMapperError(ErrConversion, rt.String(), err)
		}
		// Retry is not meaningful without enumerating valid values, which
		// Go cannot do generically for a TextUnmarshaler, so the error is
		// returned whether or not enumCaseInsensitive is set.
		return reflect.Value{}, newMapperError(ErrConversion, rt.String(), err)
	}
	return ptr.Elem(), nil
}

// valueToScalar is the inverse of scalarToValue: it serializes a built Go
// value back into a Scalar. rv must be a value whose classification is
// SCALAR (the caller has already checked this via the TypeHinter).
func valueToScalar(rv reflect.Value) (Scalar, error) {
	rv = indirectForRead(rv)
	if !rv.IsValid() {
		return Null(), nil
	}

	if rv.Type().Implements(textMarshalerType) {
		text, err := rv.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return Scalar{}, newMapperError(ErrConversion, rv.Type().String(), err)
		}
		return String(string(text)), nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int(int64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	default:
		return Scalar{}, newMapperError(ErrConversion, rv.Type().String(), fmt.Errorf("not a scalar kind: %s", rv.Kind()))
	}
}

// indirectForRead dereferences pointers, returning the invalid Value for a
// nil pointer/interface (which callers treat as Null()).
func indirectForRead(rv reflect.Value) reflect.Value {
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}
