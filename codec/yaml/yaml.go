// Package yaml provides a YAML codec implementation.
package yaml

import (
	"fmt"
	"strconv"

	"github.com/tigritik/Butylene"
	"gopkg.in/yaml.v3"
)

// yamlCodec implements butylene.Codec for YAML.
type yamlCodec struct{}

// New returns a YAML codec.
func New() butylene.Codec {
	return &yamlCodec{}
}

// ContentType returns the MIME type for YAML.
func (c *yamlCodec) ContentType() string {
	return "application/yaml"
}

// Marshal encodes e as YAML by building an equivalent yaml.Node tree and
// marshaling that, rather than a map[string]any, so that a Node's
// insertion order survives encoding instead of being reordered by
// yaml.v3's own map-key sorting.
func (c *yamlCodec) Marshal(e butylene.Element) ([]byte, error) {
	node, err := elementToNode(e)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(node)
}

// Unmarshal decodes YAML data by walking a yaml.Node tree (which preserves
// mapping key order via its Content slice) instead of decoding into
// map[string]any, which would lose that order.
func (c *yamlCodec) Unmarshal(data []byte) (butylene.Element, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return butylene.Null(), nil
	}
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return butylene.Null(), nil
		}
		return nodeToElement(doc.Content[0])
	}
	return nodeToElement(&doc)
}

func elementToNode(e butylene.Element) (*yaml.Node, error) {
	switch v := e.(type) {
	case butylene.Scalar:
		return scalarToNode(v), nil
	case *butylene.List:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, child := range v.Children() {
			cn, err := elementToNode(child)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, cn)
		}
		return n, nil
	case *butylene.Node:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range v.Keys() {
			child, _ := v.Get(k)
			cn, err := elementToNode(child)
			if err != nil {
				return nil, err
			}
			keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
			n.Content = append(n.Content, keyNode, cn)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("yaml: unsupported element %T", e)
	}
}

func scalarToNode(s butylene.Scalar) *yaml.Node {
	if s.IsNull() {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	switch v := s.Value().(type) {
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v)}
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v, 10)}
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(v, 'g', -1, 64)}
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

func nodeToElement(n *yaml.Node) (butylene.Element, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return scalarFromNode(n)
	case yaml.SequenceNode:
		list := butylene.NewList()
		for _, c := range n.Content {
			elem, err := nodeToElement(c)
			if err != nil {
				return nil, err
			}
			list.Append(elem)
		}
		return list, nil
	case yaml.MappingNode:
		node := butylene.NewNode()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			val, err := nodeToElement(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			node.Put(key, val)
		}
		return node, nil
	case yaml.AliasNode:
		return nodeToElement(n.Alias)
	default:
		return nil, fmt.Errorf("yaml: unsupported node kind %v", n.Kind)
	}
}

func scalarFromNode(n *yaml.Node) (butylene.Element, error) {
	switch n.Tag {
	case "!!null":
		return butylene.Null(), nil
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			return nil, err
		}
		return butylene.Bool(b), nil
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 10, 64)
		if err != nil {
			return nil, err
		}
		return butylene.Int(i), nil
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return nil, err
		}
		return butylene.Float(f), nil
	default:
		return butylene.String(n.Value), nil
	}
}
