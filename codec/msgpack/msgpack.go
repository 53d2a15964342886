// Package msgpack provides a MessagePack codec implementation.
package msgpack

import (
	"fmt"

	"github.com/tigritik/Butylene"
	"github.com/vmihailenco/msgpack/v5"
)

// msgpackCodec implements butylene.Codec for MessagePack.
type msgpackCodec struct{}

// New returns a MessagePack codec.
func New() butylene.Codec {
	return &msgpackCodec{}
}

// ContentType returns the MIME type for MessagePack.
func (c *msgpackCodec) ContentType() string {
	return "application/msgpack"
}

// Marshal encodes e as MessagePack via an intermediate any tree. The
// underlying library only exposes a map[string]any encoding boundary, so a
// Node's key order is not preserved across a round-trip; this is a
// documented limitation of this codec, not of the Element model itself.
func (c *msgpackCodec) Marshal(e butylene.Element) ([]byte, error) {
	return msgpack.Marshal(toAny(e))
}

// Unmarshal decodes MessagePack data into an Element tree via an
// intermediate any value.
func (c *msgpackCodec) Unmarshal(data []byte) (butylene.Element, error) {
	var v any
	if err := msgpack.Unmarshal(data, &v); err != nil {
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
	case int8:
		return butylene.Int(int64(t)), nil
	case int16:
		return butylene.Int(int64(t)), nil
	case int32:
		return butylene.Int(int64(t)), nil
	case int64:
		return butylene.Int(t), nil
	case int:
		return butylene.Int(int64(t)), nil
	case uint8:
		return butylene.Int(int64(t)), nil
	case uint16:
		return butylene.Int(int64(t)), nil
	case uint32:
		return butylene.Int(int64(t)), nil
	case uint64:
		return butylene.Int(int64(t)), nil
	case float32:
		return butylene.Float(float64(t)), nil
	case float64:
		return butylene.Float(t), nil
	case string:
		return butylene.String(t), nil
	case []byte:
		return butylene.String(string(t)), nil
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
		return nil, fmt.Errorf("msgpack: unsupported decoded type %T", v)
	}
}
