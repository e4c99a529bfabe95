// SPDX-License-Identifier: MPL-2.0

package importmap

import "errors"

// maxRawDepth bounds nesting in every front-end. Import maps are three
// levels deep; anything far deeper is rejected rather than walked.
const maxRawDepth = 64

// maxRawNodes bounds the size of the lowered tree (YAML aliases expand).
const maxRawNodes = 1 << 20

const (
	rawNull rawKind = iota
	rawString
	rawNumber
	rawBool
	rawList
	rawObject
	rawOther
)

var (
	errTooDeep  = errors.New("document nesting is too deep")
	errTooLarge = errors.New("document has too many values")
)

type (
	rawKind int

	// rawValue is the format-independent tree every front-end lowers into.
	// Objects keep first-declaration order; a repeated key replaces the value
	// in place.
	rawValue struct {
		kind rawKind
		// text holds string contents, or the literal form of numbers, booleans
		// and other scalars.
		text   string
		items  []*rawValue
		fields []rawField
		// index maps an object key to its position in fields.
		index map[string]int
		// typeName describes rawOther values in warnings.
		typeName string
	}

	rawField struct {
		key   string
		value *rawValue
	}

	// rawBudget counts lowered nodes.
	rawBudget struct {
		nodes int
	}
)

func (b *rawBudget) take(depth int) error {
	if depth > maxRawDepth {
		return errTooDeep
	}
	b.nodes++
	if b.nodes > maxRawNodes {
		return errTooLarge
	}
	return nil
}

func (v *rawValue) set(key string, value *rawValue) {
	if i, ok := v.index[key]; ok {
		v.fields[i].value = value
		return
	}
	if v.index == nil {
		v.index = make(map[string]int)
	}
	v.index[key] = len(v.fields)
	v.fields = append(v.fields, rawField{key: key, value: value})
}

func (k rawKind) String() string {
	switch k {
	case rawNull:
		return "null"
	case rawString:
		return "string"
	case rawNumber:
		return "number"
	case rawBool:
		return "boolean"
	case rawList:
		return "array"
	case rawObject:
		return "object"
	default:
		return "value"
	}
}

func (v *rawValue) describe() string {
	if v.kind == rawOther && v.typeName != "" {
		return v.typeName
	}
	return v.kind.String()
}
