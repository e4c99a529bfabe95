// SPDX-License-Identifier: MPL-2.0

package importmap

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// MarshalJSON writes the normalized map in declaration order, with null for
// blocked targets. Re-parsing the output yields an equivalent map.
func (m *ImportMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"imports":`)
	writeTableJSON(&buf, m.Imports())
	if scopes := m.Scopes(); len(scopes) > 0 {
		buf.WriteString(`,"scopes":{`)
		for i, s := range scopes {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeStringJSON(&buf, s.Prefix)
			buf.WriteByte(':')
			writeTableJSON(&buf, s.Specifiers)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML implements yaml.Marshaler with the same layout as MarshalJSON.
func (m *ImportMap) MarshalYAML() (any, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	root.Content = append(root.Content, yamlString("imports"), tableYAML(m.Imports()))
	if scopes := m.Scopes(); len(scopes) > 0 {
		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, s := range scopes {
			node.Content = append(node.Content, yamlString(s.Prefix), tableYAML(s.Specifiers))
		}
		root.Content = append(root.Content, yamlString("scopes"), node)
	}
	return root, nil
}

func writeTableJSON(buf *bytes.Buffer, table SpecifierMap) {
	buf.WriteByte('{')
	for i, mapping := range table.mappings {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeStringJSON(buf, mapping.Key)
		buf.WriteByte(':')
		if mapping.Target.IsBlocked() {
			buf.WriteString("null")
		} else {
			writeStringJSON(buf, mapping.Target.String())
		}
	}
	buf.WriteByte('}')
}

// writeStringJSON quotes s without HTML escaping so URLs stay readable.
func writeStringJSON(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	// Encode appends a newline.
	buf.Truncate(buf.Len() - 1)
}

func tableYAML(table SpecifierMap) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, mapping := range table.mappings {
		value := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
		if !mapping.Target.IsBlocked() {
			value = yamlString(mapping.Target.String())
		}
		node.Content = append(node.Content, yamlString(mapping.Key), value)
	}
	return node
}

func yamlString(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
