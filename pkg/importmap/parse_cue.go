// SPDX-License-Identifier: MPL-2.0

package importmap

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/invowk/importmap/pkg/cueutil"
)

// decodeCUE compiles data as a concrete CUE document and lowers it. Hidden
// fields and definitions are not part of the map, so a CUE source may carry
// its own helpers.
func decodeCUE(data []byte, source string) (*rawValue, error) {
	value, err := cueutil.Compile(data, cueutil.WithFilename(source), cueutil.WithConcrete(true))
	if err != nil {
		return nil, err
	}
	var budget rawBudget
	return fromCUE(value, &budget, 0)
}

func fromCUE(v cue.Value, budget *rawBudget, depth int) (*rawValue, error) {
	if err := budget.take(depth); err != nil {
		return nil, err
	}

	switch k := v.Kind(); k {
	case cue.NullKind:
		return &rawValue{kind: rawNull}, nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, err
		}
		return &rawValue{kind: rawString, text: s}, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, err
		}
		return &rawValue{kind: rawBool, text: fmt.Sprint(b)}, nil
	case cue.IntKind, cue.FloatKind, cue.NumberKind:
		return &rawValue{kind: rawNumber, text: fmt.Sprint(v)}, nil
	case cue.ListKind:
		it, err := v.List()
		if err != nil {
			return nil, err
		}
		list := &rawValue{kind: rawList}
		for it.Next() {
			item, err := fromCUE(it.Value(), budget, depth+1)
			if err != nil {
				return nil, err
			}
			list.items = append(list.items, item)
		}
		return list, nil
	case cue.StructKind:
		it, err := v.Fields()
		if err != nil {
			return nil, err
		}
		obj := &rawValue{kind: rawObject}
		for it.Next() {
			value, err := fromCUE(it.Value(), budget, depth+1)
			if err != nil {
				return nil, err
			}
			obj.set(it.Selector().Unquoted(), value)
		}
		return obj, nil
	case cue.BottomKind:
		if err := v.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%s: value is not concrete", v.Path())
	default:
		return &rawValue{kind: rawOther, typeName: k.String()}, nil
	}
}
