// Package toml provides a TOML codec implementation.
package toml

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/tigritik/Butylene"
)

// tomlCodec implements butylene.Codec for TOML.
type tomlCodec struct{}

// New returns a TOML codec.
func New() butylene.Codec {
	return &tomlCodec{}
}

// ContentType returns the MIME type for TOML.
func (c *tomlCodec) ContentType() string {
	return "application/toml"
}

// Marshal encodes e as TOML. A TOML document is always a table, so e must
// be a *butylene.Node at the top level. Like codec/msgpack, go-toml/v2's
// encoding boundary is map[string]any, so a Node's key order is not
// preserved across a round-trip.
func (c *tomlCodec) Marshal(e butylene.Element) ([]byte, error) {
	node, ok := e.(*butylene.Node)
	if !ok {
		return nil, fmt.Errorf("toml: top-level element must be a node, got %v", e.Kind())
	}
	return toml.Marshal(toAny(node))
}

// Unmarshal decodes TOML data into a *butylene.Node.
func (c *tomlCodec) Unmarshal(data []byte) (butylene.Element, error) {
	var v map[string]any
	if err := toml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return fromAny(v)
}

func toAny(e butylene.Element) any {
	switch v := e.(type) {
	case butylene.Scalar:
		return v.Value()
	case *butylene.List:
		out := make([]any, v.Size())
		for i, child := range v.Children() {
			out[i] = toAny(child)
		}
		return out
	case *butylene.Node:
		out := make(map[string]any, v.Size())
		for _, k := range v.Keys() {
			child, _ := v.Get(k)
			out[k] = toAny(child)
		}
		return out
	default:
		return nil
	}
}

func fromAny(v any) (butylene.Element, error) {
	switch t := v.(type) {
	case nil:
		return butylene.Null(), nil
	case bool:
		return butylene.Bool(t), nil
	case int64:
		return butylene.Int(t), nil
	case int:
		return butylene.Int(int64(t)), nil
	case float64:
		return butylene.Float(t), nil
	case string:
		return butylene.String(t), nil
	case []any:
		list := butylene.NewList()
		for _, item := range t {
			elem, err := fromAny(item)
			if err != nil {
				return nil, err
			}
			list.Append(elem)
		}
		return list, nil
	case map[string]any:
		node := butylene.NewNode()
		for k, val := range t {
			elem, err := fromAny(val)
			if err != nil {
				return nil, err
			}
			node.Put(k, elem)
		}
		return node, nil
	default:
		return nil, fmt.Errorf("toml: unsupported decoded type %T", v)
	}
}
