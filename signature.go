package butylene

import "reflect"

// UnboundedLength is returned by Signature.Length when the expected
// argument count depends on the element/object being matched rather than
// being fixed (e.g. a collection signature's length is however many items
// the element actually has).
const UnboundedLength = -1

// ContainerShape says whether a Signature serializes to a List or a Node.
type ContainerShape int

const (
	ShapeList ContainerShape = iota
	ShapeNode
)

// Argument describes one parameter of a Signature: its declared type, and,
// for named signatures, the name used to bind it.
type Argument struct {
	Name string // empty when the signature is positional
	Type Token
}

// TypedObject pairs a value read back out of an already-built object
// (object mode, i.e. serialization) with the Token it should be matched
// and recursively encoded against.
type TypedObject struct {
	Name  string
	Type  Token
	Value reflect.Value
}

// Signature is a constructive recipe binding arguments to one target type.
type Signature interface {
	// ReturnType is the type this signature constructs.
	ReturnType() Token

	// Arguments returns the ordered argument list. Names are either all
	// present (MatchesArgumentNames true) or all absent.
	Arguments() []Argument

	// MatchesArgumentNames reports whether the matcher binds arguments by
	// name (which requires the provided element to be a Node).
	MatchesArgumentNames() bool

	// MatchesTypeHints reports whether the matcher checks each argument's
	// classification against the corresponding child element/object.
	MatchesTypeHints() bool

	// Priority tie-breaks among same-shape candidates: higher wins.
	Priority() int

	// Length returns the expected number of arguments for element (which
	// may be nil, in object mode), or UnboundedLength if that count
	// depends on the element itself (variable-length containers).
	Length(element Element) int

	// SupportsPrebuilt reports whether Build accepts a non-zero prebuilt
	// value, required to resolve cycles during element-to-object mapping.
	SupportsPrebuilt() bool

	// MakeBuildingObject allocates a prebuilt value ahead of recursing
	// into children, sized by sizeHint (meaningful only for containers;
	// struct-based signatures ignore it). Returns the zero reflect.Value
	// if SupportsPrebuilt is false.
	MakeBuildingObject(sizeHint int) reflect.Value

	// Build constructs (prebuilt is the zero Value) or fills (prebuilt is
	// non-zero) a value of ReturnType from args, in argument order. Must
	// fail with ErrUnsupportedPrebuilt if prebuilt is non-zero and
	// SupportsPrebuilt is false.
	Build(prebuilt reflect.Value, args []reflect.Value) (reflect.Value, error)

	// ObjectData is Build's inverse: given an already-built value, read
	// back one TypedObject per argument, in argument order.
	ObjectData(value reflect.Value) ([]TypedObject, error)

	// InitContainer returns the Element shape used to serialize this
	// signature's output: a *Node for named signatures, a *List
	// otherwise, sized by sizeHint where that's known ahead of time.
	InitContainer(sizeHint int) Element

	// PreferredContainerShape reports InitContainer's shape without
	// allocating one.
	PreferredContainerShape() ContainerShape
}
