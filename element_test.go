package butylene

import "testing"

func TestScalarValue(t *testing.T) {
	tests := []struct {
		name   string
		scalar Scalar
		isNull bool
		value  any
	}{
		{"null", Null(), true, nil},
		{"bool", Bool(true), false, true},
		{"int", Int(42), false, int64(42)},
		{"float", Float(3.5), false, 3.5},
		{"string", String("x"), false, "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.scalar.Kind() != KindScalar {
				t.Errorf("Kind() = %v, want KindScalar", tt.scalar.Kind())
			}
			if tt.scalar.IsNull() != tt.isNull {
				t.Errorf("IsNull() = %v, want %v", tt.scalar.IsNull(), tt.isNull)
			}
			if tt.scalar.Value() != tt.value {
				t.Errorf("Value() = %v, want %v", tt.scalar.Value(), tt.value)
			}
		})
	}
}

func TestListBasics(t *testing.T) {
	l := NewList(String("a"), String("b"))
	if l.Kind() != KindList {
		t.Errorf("Kind() = %v, want KindList", l.Kind())
	}
	if l.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", l.Size())
	}
	if l.Get(0) != Element(String("a")) {
		t.Errorf("Get(0) = %v, want String(a)", l.Get(0))
	}
	l.Set(1, String("c"))
	if l.Get(1) != Element(String("c")) {
		t.Errorf("Get(1) after Set = %v, want String(c)", l.Get(1))
	}
	l.Append(String("d"))
	if l.Size() != 3 {
		t.Errorf("Size() after Append = %d, want 3", l.Size())
	}
}

func TestNewListOfSize(t *testing.T) {
	l := NewListOfSize(3)
	if l.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", l.Size())
	}
	for i := 0; i < 3; i++ {
		if !l.Get(i).(Scalar).IsNull() {
			t.Errorf("Get(%d) = %v, want Null", i, l.Get(i))
		}
	}
}

func TestNodeBasics(t *testing.T) {
	n := NewNode()
	if n.Kind() != KindNode {
		t.Errorf("Kind() = %v, want KindNode", n.Kind())
	}
	n.Put("b", Int(2))
	n.Put("a", Int(1))
	n.Put("b", Int(20))

	if n.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", n.Size())
	}
	wantKeys := []string{"b", "a"}
	for i, k := range n.Keys() {
		if k != wantKeys[i] {
			t.Errorf("Keys()[%d] = %q, want %q (insertion order must survive updates)", i, k, wantKeys[i])
		}
	}
	v, ok := n.Get("b")
	if !ok || v != Element(Int(20)) {
		t.Errorf("Get(b) = %v, %v, want Int(20), true (Put on existing key updates value)", v, ok)
	}
	if _, ok := n.Get("missing"); ok {
		t.Error("Get(missing) ok = true, want false")
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Element
		want bool
	}{
		{"equal scalars", Int(1), Int(1), true},
		{"different scalar kinds", Int(1), Float(1), false},
		{"different kinds", Int(1), NewList(), false},
		{"equal lists", NewList(String("a")), NewList(String("a")), true},
		{"different length lists", NewList(String("a")), NewList(String("a"), String("b")), false},
		{
			"equal nodes regardless of internal key order",
			func() Element { n := NewNode(); n.Put("x", Int(1)); n.Put("y", Int(2)); return n }(),
			func() Element { n := NewNode(); n.Put("y", Int(2)); n.Put("x", Int(1)); return n }(),
			true,
		},
		{"node missing key", func() Element { n := NewNode(); n.Put("x", Int(1)); return n }(),
			func() Element { n := NewNode(); n.Put("y", Int(1)); return n }(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEqualCyclic(t *testing.T) {
	a := NewList(String("x"))
	a.Append(a)

	b := NewList(String("x"))
	b.Append(b)

	if !Equal(a, b) {
		t.Error("Equal() on two structurally-identical self-referential lists = false, want true")
	}

	c := NewList(String("x"))
	d := NewList(String("x"))
	c.Append(d)
	d.Append(c)
	if !Equal(a, c) {
		t.Error("Equal() on a direct cycle vs a mutual two-list cycle of the same shape = false, want true")
	}
}
