// SPDX-License-Identifier: MPL-2.0

package importmap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var errTrailingData = errors.New("unexpected data after top-level value")

// decodeJSON reads data through the token stream so object keys keep their
// declaration order.
func decodeJSON(data []byte) (*rawValue, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var budget rawBudget
	v, err := readJSON(dec, &budget, 0)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}
		return nil, errTrailingData
	}
	return v, nil
}

func readJSON(dec *json.Decoder, budget *rawBudget, depth int) (*rawValue, error) {
	if err := budget.take(depth); err != nil {
		return nil, err
	}
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch t := tok.(type) {
	case nil:
		return &rawValue{kind: rawNull}, nil
	case string:
		return &rawValue{kind: rawString, text: t}, nil
	case json.Number:
		return &rawValue{kind: rawNumber, text: t.String()}, nil
	case bool:
		return &rawValue{kind: rawBool, text: fmt.Sprint(t)}, nil
	case json.Delim:
		switch t {
		case '{':
			obj := &rawValue{kind: rawObject}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyTok)
				}
				value, err := readJSON(dec, budget, depth+1)
				if err != nil {
					return nil, err
				}
				obj.set(key, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			list := &rawValue{kind: rawList}
			for dec.More() {
				item, err := readJSON(dec, budget, depth+1)
				if err != nil {
					return nil, err
				}
				list.items = append(list.items, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		}
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}
