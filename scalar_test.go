package butylene

import (
	"errors"
	"reflect"
	"testing"
)

type testEnum int

const (
	testEnumA testEnum = iota
	testEnumB
)

func (e testEnum) MarshalText() ([]byte, error) {
	if e == testEnumA {
		return []byte("a"), nil
	}
	return []byte("b"), nil
}

func (e *testEnum) UnmarshalText(text []byte) error {
	switch string(text) {
	case "a":
		*e = testEnumA
	case "b":
		*e = testEnumB
	default:
		return errors.New("unknown enum value")
	}
	return nil
}

func TestScalarToValue(t *testing.T) {
	opts := scalarOptions{}
	tests := []struct {
		name    string
		scalar  Scalar
		target  reflect.Type
		want    any
		wantErr error
	}{
		{"bool", Bool(true), reflect.TypeOf(false), true, nil},
		{"int to int", Int(7), reflect.TypeOf(int(0)), int(7), nil},
		{"int to int8 overflow", Int(200), reflect.TypeOf(int8(0)), nil, ErrNumericOverflow},
		{"int to uint negative", Int(-1), reflect.TypeOf(uint(0)), nil, ErrNumericOverflow},
		{"float to float32", Float(1.5), reflect.TypeOf(float32(0)), float32(1.5), nil},
		{"float to int non-integral", Float(1.5), reflect.TypeOf(int(0)), nil, ErrConversion},
		{"float to int integral", Float(3.0), reflect.TypeOf(int(0)), int(3), nil},
		{"string", String("hi"), reflect.TypeOf(""), "hi", nil},
		{"string to non-string", String("hi"), reflect.TypeOf(0), nil, ErrConversion},
		{"null to pointer", Null(), reflect.TypeOf((*int)(nil)), (*int)(nil), nil},
		{"null to non-nilable", Null(), reflect.TypeOf(0), nil, ErrConversion},
		{"enum text", String("b"), reflect.TypeOf(testEnumA), testEnumB, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scalarToValue(tt.scalar, tt.target, opts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("scalarToValue() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("scalarToValue() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got.Interface(), tt.want) {
				t.Errorf("scalarToValue() = %v, want %v", got.Interface(), tt.want)
			}
		})
	}
}

func TestValueToScalar(t *testing.T) {
	tests := []struct {
		name string
		rv   reflect.Value
		want Scalar
	}{
		{"bool", reflect.ValueOf(true), Bool(true)},
		{"int", reflect.ValueOf(int32(5)), Int(5)},
		{"uint", reflect.ValueOf(uint8(5)), Int(5)},
		{"float", reflect.ValueOf(float32(1.25)), Float(float64(float32(1.25)))},
		{"string", reflect.ValueOf("hi"), String("hi")},
		{"enum", reflect.ValueOf(testEnumA), String("a")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := valueToScalar(tt.rv)
			if err != nil {
				t.Fatalf("valueToScalar() error: %v", err)
			}
			if got.Value() != tt.want.Value() {
				t.Errorf("valueToScalar() = %v, want %v", got.Value(), tt.want.Value())
			}
		})
	}
}

func TestValueToScalarNilPointer(t *testing.T) {
	var p *int
	got, err := valueToScalar(reflect.ValueOf(p))
	if err != nil {
		t.Fatalf("valueToScalar() error: %v", err)
	}
	if !got.IsNull() {
		t.Errorf("valueToScalar(nil *int) = %v, want Null", got)
	}
}
