package conformance

import (
	"context"
	"errors"
	"testing"

	"github.com/tigritik/Butylene"
)

// TestS1_FlatList covers the flat-list scenario: a List<String> element
// maps to []string and back.
func TestS1_FlatList(t *testing.T) {
	ctx := context.Background()
	proc, err := butylene.NewProcessor[[]string](nil)
	if err != nil {
		t.Fatalf("NewProcessor() error: %v", err)
	}

	elem := butylene.NewList(butylene.String("a"), butylene.String("b"), butylene.String("c"))
	got, err := proc.DataFromElement(ctx, elem)
	if err != nil {
		t.Fatalf("DataFromElement() error: %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("DataFromElement() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("DataFromElement()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	back, err := proc.ElementFromData(ctx, got)
	if err != nil {
		t.Fatalf("ElementFromData() error: %v", err)
	}
	if !butylene.Equal(elem, back) {
		t.Errorf("ElementFromData() round-trip mismatch: got %v, want %v", back, elem)
	}
}

// TestS2_NamedArgsRecord covers the named-argument record scenario against
// both candidate shapes: a plain field record (Flat) and a record with a
// registered constructor (NamedArgs), the latter also confirming the
// constructor (not the field fallback) is the one actually invoked.
func TestS2_NamedArgsRecord(t *testing.T) {
	ctx := context.Background()
	elem := namedArgsElement()

	t.Run("field", func(t *testing.T) {
		proc, err := butylene.NewProcessor[Flat](nil)
		if err != nil {
			t.Fatalf("NewProcessor() error: %v", err)
		}
		got, err := proc.DataFromElement(ctx, elem)
		if err != nil {
			t.Fatalf("DataFromElement() error: %v", err)
		}
		assertFlatShape(t, got.Strings, got.Value, got.IntSet)

		back, err := proc.ElementFromData(ctx, got)
		if err != nil {
			t.Fatalf("ElementFromData() error: %v", err)
		}
		assertNodeKeyOrder(t, back, "strings", "value", "intSet")
	})

	t.Run("constructor", func(t *testing.T) {
		before := NamedArgsConstructorCalls.Load()
		proc, err := butylene.NewProcessor[NamedArgs](nil)
		if err != nil {
			t.Fatalf("NewProcessor() error: %v", err)
		}
		got, err := proc.DataFromElement(ctx, elem)
		if err != nil {
			t.Fatalf("DataFromElement() error: %v", err)
		}
		assertFlatShape(t, got.Strings, got.Value, got.IntSet)
		if NamedArgsConstructorCalls.Load() == before {
			t.Error("DataFromElement() did not invoke the registered constructor")
		}
	})
}

// TestS3_SelfReferentialList covers the List<Object> scenario: a list that
// contains itself twice and a trailing scalar.
func TestS3_SelfReferentialList(t *testing.T) {
	ctx := context.Background()
	proc, err := butylene.NewProcessor[[]any](nil)
	if err != nil {
		t.Fatalf("NewProcessor() error: %v", err)
	}

	l := butylene.NewList(butylene.String("a"))
	l.Append(l)
	l.Append(l)
	l.Append(butylene.Int(1))

	got, err := proc.DataFromElement(ctx, l)
	if err != nil {
		t.Fatalf("DataFromElement() error: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("DataFromElement() length = %d, want 4", len(got))
	}
	if s, ok := got[0].(string); !ok || s != "a" {
		t.Errorf("DataFromElement()[0] = %v, want %q", got[0], "a")
	}
	self1, ok := got[1].([]any)
	if !ok {
		t.Fatalf("DataFromElement()[1] = %T, want []any", got[1])
	}
	self2, ok := got[2].([]any)
	if !ok {
		t.Fatalf("DataFromElement()[2] = %T, want []any", got[2])
	}
	if &self1[0] != &got[0] || &self2[0] != &got[0] {
		t.Error("DataFromElement()[1] and [2] do not alias the outer list's backing array")
	}
	if n, ok := got[3].(int64); !ok || n != 1 {
		t.Errorf("DataFromElement()[3] = %v, want 1", got[3])
	}

	back, err := proc.ElementFromData(ctx, got)
	if err != nil {
		t.Fatalf("ElementFromData() error: %v", err)
	}
	backList, ok := back.(*butylene.List)
	if !ok || backList.Size() != 4 {
		t.Fatalf("ElementFromData() = %v, want a 4-element list", back)
	}
	if backList.Get(1) != butylene.Element(backList) || backList.Get(2) != butylene.Element(backList) {
		t.Error("ElementFromData() lost self-reference identity at indices 1 and 2")
	}
}

// TestS4_SelfReferentialRecord covers the access-widened field record
// scenario: a struct whose unexported pointer field refers back to the
// same struct instance.
func TestS4_SelfReferentialRecord(t *testing.T) {
	ctx := context.Background()
	proc, err := butylene.NewProcessor[*SelfRef](nil)
	if err != nil {
		t.Fatalf("NewProcessor() error: %v", err)
	}

	node := butylene.NewNode()
	node.Put("string", butylene.String("v"))
	node.Put("bool", butylene.Bool(true))
	node.Put("selfReference", node)

	got, err := proc.DataFromElement(ctx, node)
	if err != nil {
		t.Fatalf("DataFromElement() error: %v", err)
	}
	if got.Str != "v" || !got.Bool {
		t.Fatalf("DataFromElement() = %+v, want Str=v Bool=true", got)
	}
	if got.SelfReference() != got {
		t.Error("DataFromElement() o.selfReference != o")
	}

	back, err := proc.ElementFromData(ctx, got)
	if err != nil {
		t.Fatalf("ElementFromData() error: %v", err)
	}
	backNode, ok := back.(*butylene.Node)
	if !ok {
		t.Fatalf("ElementFromData() = %T, want *Node", back)
	}
	self, ok := backNode.Get("selfReference")
	if !ok || self != butylene.Element(backNode) {
		t.Error("ElementFromData() lost the Node's self-reference under selfReference")
	}
}

// TestS5_NestedGenerics covers List<List<String>>.
func TestS5_NestedGenerics(t *testing.T) {
	ctx := context.Background()
	proc, err := butylene.NewProcessor[[][]string](nil)
	if err != nil {
		t.Fatalf("NewProcessor() error: %v", err)
	}

	elem := butylene.NewList(
		butylene.NewList(butylene.String("a"), butylene.String("b")),
		butylene.NewList(butylene.String("c"), butylene.String("d")),
	)

	got, err := proc.DataFromElement(ctx, elem)
	if err != nil {
		t.Fatalf("DataFromElement() error: %v", err)
	}
	want := [][]string{{"a", "b"}, {"c", "d"}}
	if len(got) != len(want) {
		t.Fatalf("DataFromElement() = %v, want %v", got, want)
	}
	for i := range want {
		if len(got[i]) != len(want[i]) {
			t.Fatalf("DataFromElement()[%d] = %v, want %v", i, got[i], want[i])
		}
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Fatalf("DataFromElement()[%d][%d] = %q, want %q", i, j, got[i][j], want[i][j])
			}
		}
	}

	back, err := proc.ElementFromData(ctx, got)
	if err != nil {
		t.Fatalf("ElementFromData() error: %v", err)
	}
	if !butylene.Equal(elem, back) {
		t.Errorf("ElementFromData() round-trip mismatch: got %v, want %v", back, elem)
	}
}

// TestS6_TypeHintRejection covers matching a string-valued Node against a
// signature whose sole argument is classified int.
func TestS6_TypeHintRejection(t *testing.T) {
	ctx := context.Background()
	proc, err := butylene.NewProcessor[IntOnly](nil)
	if err != nil {
		t.Fatalf("NewProcessor() error: %v", err)
	}

	node := butylene.NewNode()
	node.Put("x", butylene.String("s"))

	_, err = proc.DataFromElement(ctx, node)
	if err == nil {
		t.Fatal("DataFromElement() succeeded, want ErrNoMatchingSignature")
	}
	if !errors.Is(err, butylene.ErrNoMatchingSignature) {
		t.Errorf("DataFromElement() error = %v, want ErrNoMatchingSignature", err)
	}
}

func namedArgsElement() *butylene.Node {
	node := butylene.NewNode()
	node.Put("strings", butylene.NewList(butylene.String("a"), butylene.String("b")))
	node.Put("value", butylene.Int(69))
	node.Put("intSet", butylene.NewList(butylene.Int(1), butylene.Int(2), butylene.Int(3)))
	return node
}

func assertFlatShape(t *testing.T, strings []string, value int, intSet []int) {
	t.Helper()
	if len(strings) != 2 || strings[0] != "a" || strings[1] != "b" {
		t.Errorf("Strings = %v, want [a b]", strings)
	}
	if value != 69 {
		t.Errorf("Value = %d, want 69", value)
	}
	if len(intSet) != 3 || intSet[0] != 1 || intSet[1] != 2 || intSet[2] != 3 {
		t.Errorf("IntSet = %v, want [1 2 3]", intSet)
	}
}

func assertNodeKeyOrder(t *testing.T, e butylene.Element, keys ...string) {
	t.Helper()
	node, ok := e.(*butylene.Node)
	if !ok {
		t.Fatalf("ElementFromData() = %T, want *Node", e)
	}
	got := node.Keys()
	if len(got) != len(keys) {
		t.Fatalf("Node keys = %v, want %v", got, keys)
	}
	for i, k := range keys {
		if got[i] != k {
			t.Fatalf("Node keys = %v, want %v", got, keys)
		}
	}
}
