package butylene

import "fmt"

// ElementKind identifies which of the three Element variants a value is.
type ElementKind int

const (
	// KindScalar marks a null, bool, integer, float, or string leaf.
	KindScalar ElementKind = iota
	// KindList marks an ordered sequence of elements.
	KindList
	// KindNode marks an insertion-ordered string-keyed mapping.
	KindNode
)

func (k ElementKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindNode:
		return "node"
	default:
		return fmt.Sprintf("ElementKind(%d)", int(k))
	}
}

// Element is a node in the untyped configuration tree: a [Scalar], a
// [*List], or a [*Node]. Every Element is exactly one of these three.
type Element interface {
	// Kind reports which variant this Element is.
	Kind() ElementKind
}

// Container is the subset of the Element contract shared by List and Node:
// both carry an ordered sequence of child elements.
type Container interface {
	Element
	// Size returns the number of direct children.
	Size() int
	// Children returns the direct children in their natural order: index
	// order for a List, insertion order for a Node.
	Children() []Element
}

// Scalar is a leaf Element: null, bool, int64, float64, or string. Scalar
// is a value type; two Scalars are equal iff their underlying Go values are
// equal (after the numeric-width normalization described on [Equal]).
type Scalar struct {
	value any
}

// Null returns the Scalar representing the absence of a value.
func Null() Scalar { return Scalar{} }

// Bool returns a boolean Scalar.
func Bool(v bool) Scalar { return Scalar{value: v} }

// Int returns an integer Scalar. All integer widths normalize to int64.
func Int(v int64) Scalar { return Scalar{value: v} }

// Float returns a floating-point Scalar. float32 normalizes to float64.
func Float(v float64) Scalar { return Scalar{value: v} }

// String returns a string Scalar.
func String(v string) Scalar { return Scalar{value: v} }

// Kind always returns KindScalar.
func (Scalar) Kind() ElementKind { return KindScalar }

// IsNull reports whether this Scalar represents the absence of a value.
func (s Scalar) IsNull() bool { return s.value == nil }

// Value returns the underlying Go value: nil, bool, int64, float64, or
// string.
func (s Scalar) Value() any { return s.value }

// List is an ordered, mutable sequence of elements. A List is a reference
// type: the zero value is not usable, construct one with [NewList]. Lists
// may contain themselves or participate in longer cycles; identity is
// preserved by pointer equality.
type List struct {
	items []Element
}

// NewList returns a new List containing the given items in order.
func NewList(items ...Element) *List {
	l := &List{items: make([]Element, len(items))}
	copy(l.items, items)
	return l
}

// NewListOfSize returns a new List of length n, all of whose slots are
// initialized to Null(). It is used by container signatures to allocate a
// prebuilt slot before recursing into children, so the List's identity can
// be registered in the cycle table ahead of its contents.
func NewListOfSize(n int) *List {
	l := &List{items: make([]Element, n)}
	for i := range l.items {
		l.items[i] = Null()
	}
	return l
}

// Kind always returns KindList.
func (*List) Kind() ElementKind { return KindList }

// Size returns the number of items.
func (l *List) Size() int { return len(l.items) }

// Children returns the items in index order. The returned slice aliases
// the List's backing array; callers must not retain it across mutation.
func (l *List) Children() []Element { return l.items }

// Get returns the item at index i.
func (l *List) Get(i int) Element { return l.items[i] }

// Set replaces the item at index i. Used to populate a prebuilt List
// in place, preserving the List's identity for cycle detection.
func (l *List) Set(i int, e Element) { l.items[i] = e }

// Append adds an item to the end of the List.
func (l *List) Append(e Element) { l.items = append(l.items, e) }

// Node is an insertion-ordered, string-keyed mapping of elements. Like
// List, Node is a reference type: construct one with [NewNode]. Keys are
// non-null strings and must be unique; inserting an existing key updates
// its value without changing its position.
type Node struct {
	keys   []string
	values map[string]Element
}

// NewNode returns a new, empty Node.
func NewNode() *Node {
	return &Node{values: make(map[string]Element)}
}

// Kind always returns KindNode.
func (*Node) Kind() ElementKind { return KindNode }

// Size returns the number of key/value pairs.
func (n *Node) Size() int { return len(n.keys) }

// Children returns the values in insertion (key) order.
func (n *Node) Children() []Element {
	out := make([]Element, len(n.keys))
	for i, k := range n.keys {
		out[i] = n.values[k]
	}
	return out
}

// Keys returns the keys in insertion order. The returned slice must not be
// mutated by the caller.
func (n *Node) Keys() []string { return n.keys }

// Get returns the value for key and whether it was present.
func (n *Node) Get(key string) (Element, bool) {
	v, ok := n.values[key]
	return v, ok
}

// Put inserts or updates key's value, preserving insertion order on first
// insert.
func (n *Node) Put(key string, value Element) {
	if _, exists := n.values[key]; !exists {
		n.keys = append(n.keys, key)
	}
	n.values[key] = value
}

// elemPair identifies a (a, b) comparison already in progress, used to
// short-circuit cycle-aware equality: pointer identity is comparable via
// the `any` comparison rules since List and Node are always pointer types.
type elemPair struct {
	a, b Element
}

// Equal reports whether a and b represent the same configuration tree.
// Numeric scalars are compared after normalization (all integer widths
// collapse to int64, all float widths to float64, matching the
// representable range of [Scalar]). Self-referential List/Node trees are
// compared by walking both graphs in lockstep and treating a repeated pair
// of identities as trivially equal, so cyclic structures terminate instead
// of looping forever.
func Equal(a, b Element) bool {
	return equal(a, b, make(map[elemPair]bool))
}

func equal(a, b Element, seen map[elemPair]bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch av := a.(type) {
	case Scalar:
		bv, ok := b.(Scalar)
		return ok && av.value == bv.value
	case *List:
		bv, ok := b.(*List)
		if !ok {
			return false
		}
		pair := elemPair{a: av, b: bv}
		if seen[pair] {
			return true
		}
		seen[pair] = true
		if av.Size() != bv.Size() {
			return false
		}
		for i := 0; i < av.Size(); i++ {
			if !equal(av.Get(i), bv.Get(i), seen) {
				return false
			}
		}
		return true
	case *Node:
		bv, ok := b.(*Node)
		if !ok {
			return false
		}
		pair := elemPair{a: av, b: bv}
		if seen[pair] {
			return true
		}
		seen[pair] = true
		if av.Size() != bv.Size() {
			return false
		}
		for _, k := range av.Keys() {
			aChild, _ := av.Get(k)
			bChild, ok := bv.Get(k)
			if !ok {
				return false
			}
			if !equal(aChild, bChild, seen) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
