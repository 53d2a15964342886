package butylene

import (
	"errors"
	"reflect"
	"testing"
)

func TestTokenOfAndRawType(t *testing.T) {
	tok := TokenOf[int]()
	rt, err := tok.RawType()
	if err != nil {
		t.Fatalf("RawType() error: %v", err)
	}
	if rt != reflect.TypeOf(0) {
		t.Errorf("RawType() = %v, want int", rt)
	}
	if tok.Name() != "int" {
		t.Errorf("Name() = %q, want %q", tok.Name(), "int")
	}
}

func TestTokenElementTypeAndKeyType(t *testing.T) {
	sliceTok := TokenFromType(reflect.TypeOf([]string{}))
	elem, err := sliceTok.ElementType()
	if err != nil {
		t.Fatalf("ElementType() error: %v", err)
	}
	if rt, _ := elem.RawType(); rt != reflect.TypeOf("") {
		t.Errorf("ElementType() = %v, want string", rt)
	}

	if _, err := sliceTok.KeyType(); err == nil {
		t.Error("KeyType() on a slice succeeded, want an error")
	}

	mapTok := TokenFromType(reflect.TypeOf(map[string]int{}))
	key, err := mapTok.KeyType()
	if err != nil {
		t.Fatalf("KeyType() error: %v", err)
	}
	if rt, _ := key.RawType(); rt != reflect.TypeOf("") {
		t.Errorf("KeyType() = %v, want string", rt)
	}
	val, err := mapTok.ElementType()
	if err != nil {
		t.Fatalf("ElementType() error: %v", err)
	}
	if rt, _ := val.RawType(); rt != reflect.TypeOf(0) {
		t.Errorf("ElementType() = %v, want int", rt)
	}
}

func TestTokenParameterize(t *testing.T) {
	sliceTok := TokenFromType(reflect.TypeOf([]int{}))
	got, err := sliceTok.Parameterize(TokenOf[string]())
	if err != nil {
		t.Fatalf("Parameterize() error: %v", err)
	}
	rt, _ := got.RawType()
	if rt != reflect.TypeOf([]string{}) {
		t.Errorf("Parameterize() = %v, want []string", rt)
	}

	mapTok := TokenFromType(reflect.TypeOf(map[string]int{}))
	got, err = mapTok.Parameterize(TokenOf[string](), TokenOf[bool]())
	if err != nil {
		t.Fatalf("Parameterize() error: %v", err)
	}
	rt, _ = got.RawType()
	if rt != reflect.TypeOf(map[string]bool{}) {
		t.Errorf("Parameterize() = %v, want map[string]bool", rt)
	}

	structTok := TokenFromType(reflect.TypeOf(struct{}{}))
	if _, err := structTok.Parameterize(TokenOf[int]()); !errors.Is(err, ErrSignatureShape) {
		t.Errorf("Parameterize() on a struct error = %v, want ErrSignatureShape", err)
	}
}

func TestTokenFromPluginRetirement(t *testing.T) {
	id := "test-plugin#Widget"
	tok := TokenFromPlugin(id, reflect.TypeOf(0))

	if _, err := tok.RawType(); err != nil {
		t.Fatalf("RawType() before retirement errored: %v", err)
	}

	RetirePluginType(id)

	if _, err := tok.RawType(); !errors.Is(err, ErrTypeUnavailable) {
		t.Errorf("RawType() after retirement = %v, want ErrTypeUnavailable", err)
	}
	if tok.Name() != id {
		t.Errorf("Name() after retirement = %q, want %q", tok.Name(), id)
	}

	RetirePluginType("unknown-id-never-minted")
}
