package butylene

import (
	"reflect"
	"testing"
)

func TestMapTypeResolver(t *testing.T) {
	r := NewMapTypeResolver()
	ifaceType := reflect.TypeOf((*error)(nil)).Elem()
	concreteType := reflect.TypeOf(struct{}{})

	if _, ok := r.Resolve(ifaceType); ok {
		t.Error("Resolve() on an empty resolver returned ok=true")
	}

	r.Register(ifaceType, concreteType)
	got, ok := r.Resolve(ifaceType)
	if !ok || got != concreteType {
		t.Errorf("Resolve() = %v, %v, want %v, true", got, ok, concreteType)
	}
}

func TestResolveTypeNonInterfacePassesThrough(t *testing.T) {
	r := NewMapTypeResolver()
	rt := reflect.TypeOf(0)
	if got := resolveType(rt, r); got != rt {
		t.Errorf("resolveType(int) = %v, want int unchanged", got)
	}
}

func TestResolveTypeNilResolver(t *testing.T) {
	ifaceType := reflect.TypeOf((*error)(nil)).Elem()
	if got := resolveType(ifaceType, nil); got != ifaceType {
		t.Errorf("resolveType(iface, nil resolver) = %v, want iface unchanged", got)
	}
}

func TestResolveTypeUnregisteredInterfacePassesThrough(t *testing.T) {
	r := NewMapTypeResolver()
	ifaceType := reflect.TypeOf((*error)(nil)).Elem()
	if got := resolveType(ifaceType, r); got != ifaceType {
		t.Errorf("resolveType(unregistered iface) = %v, want iface unchanged", got)
	}
}
