package butylene

import (
	"reflect"
	"testing"
)

func TestClassify(t *testing.T) {
	h := NewTypeHinter(nil)
	tests := []struct {
		name string
		rt   reflect.Type
		want ElementKind
	}{
		{"slice", reflect.TypeOf([]string{}), KindList},
		{"array", reflect.TypeOf([2]int{}), KindList},
		{"map", reflect.TypeOf(map[string]int{}), KindNode},
		{"bool", reflect.TypeOf(false), KindScalar},
		{"int", reflect.TypeOf(0), KindScalar},
		{"float", reflect.TypeOf(0.0), KindScalar},
		{"string", reflect.TypeOf(""), KindScalar},
		{"named int enum", reflect.TypeOf(testEnumA), KindScalar},
		{"struct", reflect.TypeOf(struct{ X int }{}), KindNode},
		{"pointer to struct unwraps", reflect.TypeOf(&struct{ X int }{}), KindNode},
		{"unresolved interface", reflect.TypeOf((*any)(nil)).Elem(), KindNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.classifyType(tt.rt); got != tt.want {
				t.Errorf("classifyType(%s) = %v, want %v", tt.rt, got, tt.want)
			}
		})
	}
}

func TestClassifyResolvesInterfaceViaResolver(t *testing.T) {
	resolver := NewMapTypeResolver()
	ifaceType := reflect.TypeOf((*interface{ Foo() })(nil)).Elem()
	resolver.Register(ifaceType, reflect.TypeOf(0))

	h := NewTypeHinter(resolver)
	if got := h.classifyType(ifaceType); got != KindScalar {
		t.Errorf("classifyType(resolved interface) = %v, want KindScalar", got)
	}
}

func TestIsScalarType(t *testing.T) {
	if !IsScalarType(reflect.TypeOf(testEnumA)) {
		t.Error("IsScalarType(testEnum) = false, want true (implements TextMarshaler/TextUnmarshaler)")
	}
	if IsScalarType(reflect.TypeOf(struct{}{})) {
		t.Error("IsScalarType(struct{}) = true, want false")
	}
}

func TestAssignable(t *testing.T) {
	h := NewTypeHinter(nil)
	tests := []struct {
		name    string
		element Element
		target  reflect.Type
		want    bool
	}{
		{"null to pointer", Null(), reflect.TypeOf((*int)(nil)), true},
		{"null to non-nilable", Null(), reflect.TypeOf(0), false},
		{"int to int", Int(1), reflect.TypeOf(0), true},
		{"int to float", Int(1), reflect.TypeOf(0.0), true},
		{"int to bool", Int(1), reflect.TypeOf(false), false},
		{"float to int", Float(1), reflect.TypeOf(0), true},
		{"bool to bool", Bool(true), reflect.TypeOf(false), true},
		{"bool to int", Bool(true), reflect.TypeOf(0), false},
		{"string to string", String("s"), reflect.TypeOf(""), true},
		{"string to int", String("s"), reflect.TypeOf(0), false},
		{"string to enum", String("a"), reflect.TypeOf(testEnumA), true},
		{"list to list target", NewList(), reflect.TypeOf([]int{}), true},
		{"list to node target", NewList(), reflect.TypeOf(map[string]int{}), false},
		{"node to node target", NewNode(), reflect.TypeOf(map[string]int{}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.Assignable(tt.element, TokenFromType(tt.target)); got != tt.want {
				t.Errorf("Assignable(%v, %s) = %v, want %v", tt.element, tt.target, got, tt.want)
			}
		})
	}
}
