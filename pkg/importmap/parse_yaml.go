// SPDX-License-Identifier: MPL-2.0

package importmap

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

var errEmptyDocument = errors.New("document is empty")

func decodeYAML(data []byte) (*rawValue, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || (doc.Kind == yaml.DocumentNode && len(doc.Content) == 0) {
		return nil, errEmptyDocument
	}
	var budget rawBudget
	return fromYAML(&doc, &budget, 0)
}

func fromYAML(n *yaml.Node, budget *rawBudget, depth int) (*rawValue, error) {
	if err := budget.take(depth); err != nil {
		return nil, err
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, errEmptyDocument
		}
		return fromYAML(n.Content[0], budget, depth)
	case yaml.AliasNode:
		return fromYAML(n.Alias, budget, depth+1)
	case yaml.MappingNode:
		obj := &rawValue{kind: rawObject}
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i]
			if key.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", key.Line)
			}
			value, err := fromYAML(n.Content[i+1], budget, depth+1)
			if err != nil {
				return nil, err
			}
			obj.set(key.Value, value)
		}
		return obj, nil
	case yaml.SequenceNode:
		list := &rawValue{kind: rawList}
		for _, c := range n.Content {
			item, err := fromYAML(c, budget, depth+1)
			if err != nil {
				return nil, err
			}
			list.items = append(list.items, item)
		}
		return list, nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return &rawValue{kind: rawNull}, nil
		case "!!str":
			return &rawValue{kind: rawString, text: n.Value}, nil
		case "!!int", "!!float":
			return &rawValue{kind: rawNumber, text: n.Value}, nil
		case "!!bool":
			return &rawValue{kind: rawBool, text: n.Value}, nil
		default:
			return &rawValue{kind: rawOther, text: n.Value, typeName: n.ShortTag()}, nil
		}
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
	}
}
