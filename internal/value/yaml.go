package value

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

const mergeTag = "!!merge"

// Decode parses a YAML document. An empty document decodes to null.
func Decode(data []byte) (Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Null(), err
	}
	return FromNode(&doc)
}

// FromNode converts a decoded yaml.v3 node tree into a Value.
func FromNode(n *yaml.Node) (Value, error) {
	if n == nil || n.Kind == 0 {
		return Null(), nil
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return FromNode(n.Content[0])
	case yaml.AliasNode:
		return FromNode(n.Alias)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			item, err := FromNode(c)
			if err != nil {
				return Null(), err
			}
			items = append(items, item)
		}
		return Value{kind: KindSequence, items: items}, nil
	case yaml.MappingNode:
		return mappingFromNode(n)
	case yaml.ScalarNode:
		var raw any
		if err := n.Decode(&raw); err != nil {
			return Null(), fmt.Errorf("line %d: %w", n.Line, err)
		}
		return Scalar(raw), nil
	default:
		return Null(), fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
	}
}

// mappingFromNode decodes mapping pairs in order. Merge keys (<<) contribute
// entries that are not set explicitly in the mapping itself.
func mappingFromNode(n *yaml.Node) (Value, error) {
	out := Mapping()
	var inherited []Value
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]
		item, err := FromNode(valNode)
		if err != nil {
			return Null(), err
		}
		if keyNode.ShortTag() == mergeTag {
			switch item.Kind() {
			case KindMapping:
				inherited = append(inherited, item)
			case KindSequence:
				inherited = append(inherited, item.Items()...)
			default:
				return Null(), fmt.Errorf("line %d: merge key requires a mapping", keyNode.Line)
			}
			continue
		}
		out.Set(keyNode.Value, item)
	}
	for _, src := range inherited {
		for _, k := range src.Keys() {
			if !out.Has(k) {
				entry, _ := src.Get(k)
				out.Set(k, entry)
			}
		}
	}
	return out, nil
}

// ToNode converts v into a yaml.v3 node, keeping mapping key order.
func (v Value) ToNode() *yaml.Node {
	switch v.kind {
	case KindMapping:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range v.m.keys {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				v.m.fields[k].ToNode())
		}
		return n
	case KindSequence:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.items {
			n.Content = append(n.Content, item.ToNode())
		}
		return n
	case KindScalar:
		var n yaml.Node
		if err := n.Encode(v.scalar); err != nil {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprint(v.scalar)}
		}
		return &n
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (any, error) {
	return v.ToNode(), nil
}
