// Package butylene is a bidirectional object mapper between an in-memory
// tree of self-describing configuration elements and arbitrary user-defined
// object graphs, driven by reflective type information.
//
// # Element tree
//
// A [Element] is one of three variants: [Scalar] (null, bool, int64,
// float64, string), [*List] (an ordered, mutable sequence that may contain
// itself), or [*Node] (an insertion-ordered string-keyed map that may
// contain itself). Codecs (see the codec/ subpackages) translate between
// byte streams and this tree; the mapper never touches bytes directly.
//
// # Mapping
//
// [Processor.DataFromElement] walks an [Element] and synthesizes a Go value
// of the requested type, selecting among candidate [Signature]s (built-in
// container signatures, reflective constructor/field signatures, or
// user-registered [FuncSignature]s) by argument count, name, and type
// compatibility. [Processor.ElementFromData] performs the inverse walk. Both
// directions maintain an identity-keyed cycle table so that self-referential
// graphs round-trip without infinite recursion.
//
// # Usage
//
//	type Server struct {
//	    Host string `butylene:"name=host"`
//	    Port int    `butylene:"name=port"`
//	}
//
//	proc, err := butylene.NewProcessor[Server](nil)
//	elem, err := proc.ElementFromData(ctx, Server{Host: "localhost", Port: 8080})
//	srv, err := proc.DataFromElement(ctx, elem)
//
// Combine with a codec to go to/from bytes:
//
//	data, err := butylene.Encode(ctx, json.New(), Server{Host: "localhost", Port: 8080})
//	srv, err := butylene.Decode[Server](ctx, json.New(), data)
//
// json.New (and the other codec/ subpackages) return a [Codec]: codecs
// only ever produce or consume an [Element], never a typed value directly,
// so [Decode] and [Encode] always compose a codec with a [Processor].
package butylene
