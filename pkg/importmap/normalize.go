// SPDX-License-Identifier: MPL-2.0

package importmap

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/invowk/importmap/pkg/urlutil"
)

type normalizer struct {
	base     *url.URL
	source   string
	warnings []Warning
}

func (n *normalizer) warn(path, format string, args ...any) {
	n.warnings = append(n.warnings, Warning{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (n *normalizer) invalid(path, reason string) error {
	return &InvalidImportMapError{Source: n.source, Path: path, Reason: reason}
}

func (n *normalizer) importMap(root *rawValue) (*ImportMap, error) {
	if root.kind != rawObject {
		return nil, n.invalid("", fmt.Sprintf("top-level value must be an object, got %s", root.describe()))
	}

	m := &ImportMap{}
	for _, f := range root.fields {
		switch f.key {
		case "imports":
			if f.value.kind != rawObject {
				return nil, n.invalid("imports", fmt.Sprintf("must be an object, got %s", f.value.describe()))
			}
			m.imports = n.specifierMap(f.value, "imports")
		case "scopes":
			if f.value.kind != rawObject {
				return nil, n.invalid("scopes", fmt.Sprintf("must be an object, got %s", f.value.describe()))
			}
			if err := n.scopes(m, f.value); err != nil {
				return nil, err
			}
		default:
			n.warn(fmt.Sprintf("%q", f.key), "unknown top-level key ignored")
		}
	}
	return m, nil
}

func (n *normalizer) scopes(m *ImportMap, obj *rawValue) error {
	for _, f := range obj.fields {
		path := fmt.Sprintf("scopes[%q]", f.key)
		if f.value.kind != rawObject {
			return n.invalid(path, fmt.Sprintf("must be an object, got %s", f.value.describe()))
		}
		prefix, err := urlutil.ParseRelative(f.key, n.base)
		if err != nil {
			n.warn(path, "scope prefix is not a valid URL; scope ignored")
			continue
		}
		m.setScope(urlutil.Serialize(prefix), n.specifierMap(f.value, path))
	}
	return nil
}

func (n *normalizer) specifierMap(obj *rawValue, path string) SpecifierMap {
	var table SpecifierMap
	for _, f := range obj.fields {
		p := fmt.Sprintf("%s[%q]", path, f.key)
		if f.key == "" {
			n.warn(p, "empty specifier key ignored")
			continue
		}
		target, ok := n.target(f.value, p)
		if !ok {
			continue
		}
		if strings.HasSuffix(f.key, "/") && !target.IsBlocked() && !hasTrailingSlash(target.url) {
			n.warn(p, "address %q for a prefix key must end in \"/\"; entry ignored", target.String())
			continue
		}
		table.set(f.key, target)
	}
	return table
}

func (n *normalizer) target(v *rawValue, path string) (Target, bool) {
	switch v.kind {
	case rawNull:
		return Blocked(), true
	case rawString:
		u, ok := n.address(v.text, path)
		if !ok {
			return Target{}, false
		}
		return Address(u), true
	case rawList:
		if len(v.items) == 0 {
			return Blocked(), true
		}
		var valid []*url.URL
		for i, item := range v.items {
			p := fmt.Sprintf("%s[%d]", path, i)
			if item.kind != rawString {
				n.warn(p, "address must be a string, got %s; ignored", item.describe())
				continue
			}
			if u, ok := n.address(item.text, p); ok {
				valid = append(valid, u)
			}
		}
		switch len(valid) {
		case 0:
			n.warn(path, "no valid addresses; entry ignored")
			return Target{}, false
		case 1:
		default:
			n.warn(path, "fallback addresses are not supported; using %q", urlutil.Serialize(valid[0]))
		}
		return Address(valid[0]), true
	default:
		n.warn(path, "target must be a string, an array or null, got %s; entry ignored", v.describe())
		return Target{}, false
	}
}

// address accepts absolute URLs and "/", "./" or "../" references resolved
// against the map base URL. Bare specifiers are not valid targets.
func (n *normalizer) address(s, path string) (*url.URL, bool) {
	if isURLReference(s) {
		if n.base == nil {
			n.warn(path, "relative address %q needs a map base URL; ignored", s)
			return nil, false
		}
		u, err := urlutil.ParseRelative(s, n.base)
		if err != nil {
			n.warn(path, "invalid address %q: %v", s, err)
			return nil, false
		}
		return u, true
	}
	u, err := urlutil.ParseAbsolute(s)
	if err != nil {
		n.warn(path, "invalid address %q: not an absolute URL or a /, ./ or ../ reference", s)
		return nil, false
	}
	return u, true
}

func isURLReference(s string) bool {
	return strings.HasPrefix(s, "/") || strings.HasPrefix(s, "./") || strings.HasPrefix(s, "../")
}
