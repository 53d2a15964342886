// Package json provides a JSON codec implementation.
package json

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tigritik/Butylene"
)

// jsonCodec implements butylene.Codec for JSON.
type jsonCodec struct{}

// New returns a JSON codec.
func New() butylene.Codec {
	return &jsonCodec{}
}

// ContentType returns the MIME type for JSON.
func (c *jsonCodec) ContentType() string {
	return "application/json"
}

// Marshal encodes e as JSON. Node children are written in insertion
// order rather than through encoding/json's map marshaling, which would
// sort keys alphabetically and lose that order on round-trip.
func (c *jsonCodec) Marshal(e butylene.Element) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeElement(&buf, e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes JSON data into an Element tree by walking the token
// stream directly, rather than decoding into map[string]any, which would
// lose both key order and the int/float distinction. UseNumber keeps
// integers and floats distinguishable on the way into Scalar.
func (c *jsonCodec) Unmarshal(data []byte) (butylene.Element, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return decodeValue(dec)
}

func encodeElement(buf *bytes.Buffer, e butylene.Element) error {
	switch v := e.(type) {
	case butylene.Scalar:
		return encodeScalar(buf, v)
	case *butylene.List:
		buf.WriteByte('[')
		for i, child := range v.Children() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeElement(buf, child); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case *butylene.Node:
		buf.WriteByte('{')
		for i, k := range v.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			child, _ := v.Get(k)
			if err := encodeElement(buf, child); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	default:
		return fmt.Errorf("json: unsupported element %T", e)
	}
}

func encodeScalar(buf *bytes.Buffer, s butylene.Scalar) error {
	if s.IsNull() {
		buf.WriteString("null")
		return nil
	}
	data, err := json.Marshal(s.Value())
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

func decodeValue(dec *json.Decoder) (butylene.Element, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (butylene.Element, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			node := butylene.NewNode()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("json: expected object key, got %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				node.Put(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return node, nil
		case '[':
			list := butylene.NewList()
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				list.Append(val)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return list, nil
		default:
			return nil, fmt.Errorf("json: unexpected delimiter %v", t)
		}
	case bool:
		return butylene.Bool(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return butylene.Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return butylene.Float(f), nil
	case string:
		return butylene.String(t), nil
	case nil:
		return butylene.Null(), nil
	default:
		return nil, fmt.Errorf("json: unexpected token %v", tok)
	}
}
