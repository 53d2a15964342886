// Package conformance holds target types shared by the mapping engine's
// scenario and property tests, grounded on the teacher's testing/ submodule
// of shared fixtures (SimpleUser, HashUser, ...): one small, differently-
// shaped type per dispatch path the matcher needs to exercise.
package conformance

import (
	"sync/atomic"

	"github.com/tigritik/Butylene"
)

// Flat is a plain field-based record: three named arguments of different
// shapes (a list, a scalar, and a second list rendered as a Go slice for
// the "Set<Int>" idiom, since Go has no built-in set type and the mapper's
// map signature only ever reads from a Node, never a List).
type Flat struct {
	Strings []string `butylene:"name=strings"`
	Value   int      `butylene:"name=value"`
	IntSet  []int    `butylene:"name=intSet"`
}

// NamedArgs has the same shape as Flat but also has a registered
// constructor, so the source always offers two candidates for it: the
// constructor (priority 10) and the plain field fallback (priority 0),
// both matching the same three-key Node equally well. The matcher's
// priority tie-break always has something real to choose between.
type NamedArgs struct {
	Strings []string `butylene:"name=strings"`
	Value   int      `butylene:"name=value"`
	IntSet  []int    `butylene:"name=intSet"`
}

// NamedArgsConstructorCalls counts invocations of the registered
// constructor, letting a test confirm the constructor candidate (rather
// than the field fallback) is the one the matcher actually picked.
var NamedArgsConstructorCalls atomic.Int64

func newNamedArgs(strings []string, value int, intSet []int) NamedArgs {
	NamedArgsConstructorCalls.Add(1)
	return NamedArgs{Strings: strings, Value: value, IntSet: intSet}
}

// SelfRef is a field-based record with an unexported, self-typed pointer
// field, exercising both [butylene.RegisterWidened] (unexported field
// access) and the pointer-to-struct record dispatch the self-reference
// idiom needs.
type SelfRef struct {
	Str  string   `butylene:"name=string"`
	Bool bool     `butylene:"name=bool"`
	self *SelfRef `butylene:"name=selfReference"`
}

func (s *SelfRef) SelfReference() *SelfRef { return s.self }

// NestedGeneric is a record containing a slice of itself: a tree rather
// than a cycle, exercising List<Record> nesting independent of the
// identity-cycle machinery SelfRef and the self-referential-list scenario
// cover.
type NestedGeneric struct {
	Name     string          `butylene:"name=name"`
	Children []NestedGeneric `butylene:"name=children"`
}

// IntOnly is a single-field record used for the type-hint rejection
// scenario: its one argument is classified SCALAR/int, so a Node whose
// value at that key is a string Scalar must fail to match.
type IntOnly struct {
	X int `butylene:"name=x"`
}

func init() {
	butylene.RegisterWidened[SelfRef]()
	butylene.RegisterConstructor[NamedArgs](newNamedArgs, "strings", "value", "intSet")
}
