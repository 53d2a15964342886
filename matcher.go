package butylene

import (
	"fmt"
	"reflect"
	"sort"
)

// MatchingSignature pairs a chosen Signature with the arguments to feed it,
// in the order Build/ObjectData expect. Exactly one of Children and
// Objects is set, depending on which mode produced the match.
type MatchingSignature struct {
	Signature Signature
	Children  []Element     // element mode
	Objects   []TypedObject // object mode
}

// SignatureMatcher holds the candidate signatures known for one target
// type, sorted once by descending priority, and matches an element or an
// already-built object against them.
type SignatureMatcher struct {
	target     Token
	candidates []Signature
	hinter     *TypeHinter
}

// NewSignatureMatcher returns a matcher over candidates for target,
// sorted once (descending priority, stable by input order on ties) so
// that Match never re-sorts.
func NewSignatureMatcher(target Token, candidates []Signature, hinter *TypeHinter) *SignatureMatcher {
	sorted := make([]Signature, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() > sorted[j].Priority()
	})
	return &SignatureMatcher{target: target, candidates: sorted, hinter: hinter}
}

// Match runs element mode if element is non-nil, object mode if object is
// a valid reflect.Value, otherwise object mode is skipped. Exactly one of
// the two should be supplied by the caller (the processor).
func (m *SignatureMatcher) Match(element Element, object reflect.Value) (MatchingSignature, error) {
	if element != nil {
		return m.matchElement(element)
	}
	if object.IsValid() {
		return m.matchObject(object)
	}
	return MatchingSignature{}, fmt.Errorf("%w: %s: neither element nor object supplied", ErrNoMatchingSignature, m.target.Name())
}

func (m *SignatureMatcher) matchElement(element Element) (MatchingSignature, error) {
	for _, sig := range m.candidates {
		if sig.MatchesArgumentNames() {
			if _, ok := element.(*Node); !ok {
				continue
			}
		}

		n := sig.Length(element)
		size := containerSize(element)
		if n != UnboundedLength && n != size {
			continue
		}

		args := sig.Arguments()

		if !sig.MatchesArgumentNames() && !sig.MatchesTypeHints() {
			return MatchingSignature{Signature: sig, Children: containerChildren(element)}, nil
		}

		children := containerChildren(element)
		if sig.MatchesArgumentNames() {
			node := element.(*Node)
			ordered := make([]Element, len(args))
			ok := true
			for i, a := range args {
				child, found := node.Get(a.Name)
				if !found {
					ok = false
					break
				}
				ordered[i] = child
			}
			if !ok {
				continue
			}
			children = ordered
		}

		if sig.MatchesTypeHints() {
			// Fixed-arity signatures (field/constructor) need exactly one
			// argument type per child. Unbounded signatures (collection,
			// map) declare a single representative argument type that
			// every child is checked against, since their real arity
			// depends on the element rather than on the signature.
			if sig.Length(nil) == UnboundedLength {
				if len(args) != 1 {
					continue
				}
			} else if len(children) != len(args) {
				continue
			}
			match := true
			for i, child := range children {
				match = match && m.hinter.Assignable(child, argTypeAt(args, i))
				if !match {
					break
				}
			}
			if !match {
				continue
			}
		}

		return MatchingSignature{Signature: sig, Children: children}, nil
	}

	return MatchingSignature{}, fmt.Errorf("%w: %s", ErrNoMatchingSignature, m.target.Name())
}

func (m *SignatureMatcher) matchObject(object reflect.Value) (MatchingSignature, error) {
	for _, sig := range m.candidates {
		objects, err := sig.ObjectData(object)
		if err != nil {
			continue
		}

		n := sig.Length(nil)
		if n != UnboundedLength && n != len(objects) {
			continue
		}

		args := sig.Arguments()

		if !sig.MatchesArgumentNames() && !sig.MatchesTypeHints() {
			return MatchingSignature{Signature: sig, Objects: objects}, nil
		}

		ordered := objects
		if sig.MatchesArgumentNames() {
			byName := make(map[string]TypedObject, len(objects))
			for _, o := range objects {
				byName[o.Name] = o
			}
			tmp := make([]TypedObject, len(args))
			ok := true
			for i, a := range args {
				o, found := byName[a.Name]
				if !found {
					ok = false
					break
				}
				tmp[i] = o
			}
			if !ok {
				continue
			}
			ordered = tmp
		}

		if sig.MatchesTypeHints() {
			if n == UnboundedLength {
				if len(args) != 1 {
					continue
				}
			} else if len(ordered) != len(args) {
				continue
			}
			match := true
			for i, o := range ordered {
				rt, err := argTypeAt(args, i).RawType()
				if err != nil {
					match = false
					break
				}
				if isBareAny(resolveType(rt, m.hinter.resolver)) {
					continue
				}
				if classifyValueKind(o.Value, m.hinter) != m.hinter.classifyType(rt) {
					match = false
					break
				}
			}
			if !match {
				continue
			}
		}

		return MatchingSignature{Signature: sig, Objects: ordered}, nil
	}

	return MatchingSignature{}, fmt.Errorf("%w: %s", ErrNoMatchingSignature, m.target.Name())
}

// argTypeAt returns args[i].Type, clamped to the last declared argument
// for signatures whose argument list is shorter than the child count
// (collection and map signatures declare exactly one, reused for every
// child).
func argTypeAt(args []Argument, i int) Token {
	if i < len(args) {
		return args[i].Type
	}
	return args[len(args)-1].Type
}

func containerSize(element Element) int {
	if c, ok := element.(Container); ok {
		return c.Size()
	}
	return 0
}

func containerChildren(element Element) []Element {
	if c, ok := element.(Container); ok {
		return c.Children()
	}
	return nil
}

// classifyValueKind classifies an already-built reflect.Value the same way
// the hinter classifies a declared type, for object-mode type-hint checks
// where only a runtime value (not a declared Token) is on hand.
func classifyValueKind(rv reflect.Value, hinter *TypeHinter) ElementKind {
	rv = indirectForRead(rv)
	if !rv.IsValid() {
		return KindScalar
	}
	return hinter.classifyType(rv.Type())
}
