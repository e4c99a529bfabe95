// SPDX-License-Identifier: MPL-2.0

package importmap

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

var errNoImportMapScript = errors.New(`no <script type="importmap"> element found`)

// decodeHTML extracts the first inline <script type="importmap"> and decodes
// its body as JSON. Later import map scripts and external ones (with a src
// attribute) are reported as warnings.
func decodeHTML(data []byte) (*rawValue, []Warning, error) {
	z := html.NewTokenizer(bytes.NewReader(data))

	var (
		body     []byte
		found    bool
		warnings []Warning
	)
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				break
			}
			return nil, nil, z.Err()
		}
		if tt != html.StartTagToken {
			continue
		}
		name, hasAttr := z.TagName()
		if string(name) != "script" {
			continue
		}
		isMap, external := scriptAttrs(z, hasAttr)
		if !isMap {
			continue
		}
		switch {
		case external:
			warnings = append(warnings, Warning{Message: `external <script type="importmap" src> is not supported; ignored`})
		case found:
			warnings = append(warnings, Warning{Message: `additional <script type="importmap"> ignored`})
		default:
			found = true
			body = scriptText(z)
		}
	}

	if !found {
		return nil, nil, errNoImportMapScript
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil, errors.New(`<script type="importmap"> is empty`)
	}
	root, err := decodeJSON(body)
	if err != nil {
		return nil, nil, err
	}
	return root, warnings, nil
}

func scriptAttrs(z *html.Tokenizer, hasAttr bool) (isMap, external bool) {
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		switch string(key) {
		case "type":
			isMap = strings.EqualFold(strings.TrimSpace(string(val)), "importmap")
		case "src":
			external = true
		}
	}
	return isMap, external
}

// scriptText collects the raw text up to the closing </script>.
func scriptText(z *html.Tokenizer) []byte {
	var buf bytes.Buffer
	for {
		switch z.Next() {
		case html.TextToken:
			buf.Write(z.Text())
		default:
			return buf.Bytes()
		}
	}
}
