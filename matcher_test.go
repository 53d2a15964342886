package butylene

import (
	"errors"
	"reflect"
	"testing"
)

// fixedFuncSignature returns a by-name FuncSignature over int/string
// arguments, usable for exercising SignatureMatcher directly without going
// through the struct-reflection builders.
func fixedFuncSignature(name string, priority int, checkHints bool) *FuncSignature {
	fn := func(n int, s string) string { return s }
	return &FuncSignature{
		Target: TokenOf[string](),
		Fn:     reflect.ValueOf(fn),
		Args: []Argument{
			{Name: "n", Type: TokenOf[int]()},
			{Name: "s", Type: TokenOf[string]()},
		},
		ByName:     true,
		CheckHints: checkHints,
		Prio:       priority,
	}
}

func TestSignatureMatcherPicksHighestPriority(t *testing.T) {
	hinter := NewTypeHinter(nil)
	low := fixedFuncSignature("low", 0, true)
	high := fixedFuncSignature("high", 10, true)
	matcher := NewSignatureMatcher(TokenOf[string](), []Signature{low, high}, hinter)

	node := NewNode()
	node.Put("n", Int(1))
	node.Put("s", String("v"))

	match, err := matcher.Match(node, reflect.Value{})
	if err != nil {
		t.Fatalf("Match() error: %v", err)
	}
	if match.Signature != Signature(high) {
		t.Error("Match() did not pick the higher-priority candidate")
	}
}

func TestSignatureMatcherRejectsOnTypeHint(t *testing.T) {
	hinter := NewTypeHinter(nil)
	sig := fixedFuncSignature("only", 0, true)
	matcher := NewSignatureMatcher(TokenOf[string](), []Signature{sig}, hinter)

	node := NewNode()
	node.Put("n", String("not an int"))
	node.Put("s", String("v"))

	_, err := matcher.Match(node, reflect.Value{})
	if !errors.Is(err, ErrNoMatchingSignature) {
		t.Errorf("Match() error = %v, want ErrNoMatchingSignature", err)
	}
}

func TestSignatureMatcherRejectsOnMissingName(t *testing.T) {
	hinter := NewTypeHinter(nil)
	sig := fixedFuncSignature("only", 0, false)
	matcher := NewSignatureMatcher(TokenOf[string](), []Signature{sig}, hinter)

	node := NewNode()
	node.Put("n", Int(1))
	node.Put("other", Int(9)) // same size as the signature's arity, but "s" is absent.

	_, err := matcher.Match(node, reflect.Value{})
	if !errors.Is(err, ErrNoMatchingSignature) {
		t.Errorf("Match() error = %v, want ErrNoMatchingSignature", err)
	}
}

func TestSignatureMatcherRejectsNonNodeForNamedSignature(t *testing.T) {
	hinter := NewTypeHinter(nil)
	sig := fixedFuncSignature("only", 0, false)
	matcher := NewSignatureMatcher(TokenOf[string](), []Signature{sig}, hinter)

	_, err := matcher.Match(NewList(Int(1), String("v")), reflect.Value{})
	if !errors.Is(err, ErrNoMatchingSignature) {
		t.Errorf("Match() error = %v, want ErrNoMatchingSignature", err)
	}
}

func TestArgTypeAtClampsForUnboundedArity(t *testing.T) {
	args := []Argument{{Name: "only", Type: TokenOf[int]()}}
	if got := argTypeAt(args, 0); got.Name() != "int" {
		t.Errorf("argTypeAt(0) = %v, want int", got.Name())
	}
	if got := argTypeAt(args, 5); got.Name() != "int" {
		t.Errorf("argTypeAt(5) = %v, want int (clamped to last declared argument)", got.Name())
	}
}
