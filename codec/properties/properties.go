// Package properties provides a Java-properties-style codec
// implementation: flat `key=value` lines, with nested Node/List structure
// represented by dotted keys (`key.subkey=value`, `key.0=value` for list
// indices).
package properties

import (
	"bufio"
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tigritik/Butylene"
)

// propertiesCodec implements butylene.Codec for flat key=value files.
type propertiesCodec struct{}

// New returns a properties codec.
func New() butylene.Codec {
	return &propertiesCodec{}
}

// ContentType returns the MIME type for properties files.
func (c *propertiesCodec) ContentType() string {
	return "text/x-java-properties"
}

// Marshal encodes e as a flat properties file. Only *butylene.Node is
// supported at the top level, since a properties file has no notion of a
// bare scalar or list document.
func (c *propertiesCodec) Marshal(e butylene.Element) ([]byte, error) {
	node, ok := e.(*butylene.Node)
	if !ok {
		return nil, fmt.Errorf("properties: top-level element must be a node, got %v", e.Kind())
	}
	lines := make(map[string]string)
	flatten("", node, lines)

	keys := make([]string, 0, len(lines))
	for k := range lines {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		fmt.Fprintf(&buf, "%s=%s\n", k, lines[k])
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a flat properties file into a *butylene.Node,
// reconstructing nested Node/List structure from dotted keys.
func (c *propertiesCodec) Unmarshal(data []byte) (butylene.Element, error) {
	root := butylene.NewNode()
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			return nil, fmt.Errorf("properties: malformed line %q", line)
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		if err := assign(root, strings.Split(key, "."), parseScalar(value)); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return root, nil
}

func flatten(prefix string, e butylene.Element, out map[string]string) {
	switch v := e.(type) {
	case butylene.Scalar:
		out[prefix] = formatScalar(v)
	case *butylene.List:
		for i, child := range v.Children() {
			flatten(joinKey(prefix, strconv.Itoa(i)), child, out)
		}
	case *butylene.Node:
		for _, k := range v.Keys() {
			child, _ := v.Get(k)
			flatten(joinKey(prefix, k), child, out)
		}
	}
}

func joinKey(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return prefix + "." + segment
}

func formatScalar(s butylene.Scalar) string {
	if s.IsNull() {
		return ""
	}
	switch v := s.Value().(type) {
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return v
	default:
		return ""
	}
}

// parseScalar recovers a typed Scalar from a raw properties value, since
// the flat text format carries no type information of its own.
func parseScalar(raw string) butylene.Scalar {
	if raw == "" {
		return butylene.Null()
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return butylene.Int(i)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return butylene.Float(f)
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return butylene.Bool(b)
	}
	return butylene.String(raw)
}

// assign walks/builds the Node/List tree under root for a dotted key path,
// creating intermediate Nodes (or Lists, when nothing exists yet at that
// point and the next segment is numeric) as needed.
func assign(root *butylene.Node, segments []string, value butylene.Scalar) error {
	if len(segments) == 0 {
		return fmt.Errorf("properties: empty key")
	}
	return assignNode(root, segments, value)
}

func assignNode(node *butylene.Node, segments []string, value butylene.Scalar) error {
	key := segments[0]
	if len(segments) == 1 {
		node.Put(key, value)
		return nil
	}
	next := segments[1]
	child, ok := node.Get(key)
	if !ok {
		if _, err := strconv.Atoi(next); err == nil {
			list := butylene.NewList()
			node.Put(key, list)
			child = list
		} else {
			n := butylene.NewNode()
			node.Put(key, n)
			child = n
		}
	}
	switch c := child.(type) {
	case *butylene.Node:
		return assignNode(c, segments[1:], value)
	case *butylene.List:
		return assignList(c, segments[1:], value)
	default:
		return fmt.Errorf("properties: key %q conflicts with scalar value at %q", strings.Join(segments, "."), key)
	}
}

func assignList(list *butylene.List, segments []string, value butylene.Scalar) error {
	idx, err := strconv.Atoi(segments[0])
	if err != nil {
		return fmt.Errorf("properties: expected list index, got %q", segments[0])
	}
	for list.Size() <= idx {
		list.Append(butylene.Null())
	}
	if len(segments) == 1 {
		list.Set(idx, value)
		return nil
	}
	next := segments[1]
	existing := list.Get(idx)
	if existing.Kind() == butylene.KindScalar && existing.(butylene.Scalar).IsNull() {
		if _, err := strconv.Atoi(next); err == nil {
			existing = butylene.NewList()
		} else {
			existing = butylene.NewNode()
		}
		list.Set(idx, existing)
	}
	switch c := existing.(type) {
	case *butylene.Node:
		return assignNode(c, segments[1:], value)
	case *butylene.List:
		return assignList(c, segments[1:], value)
	default:
		return fmt.Errorf("properties: key conflicts with scalar value at index %d", idx)
	}
}
