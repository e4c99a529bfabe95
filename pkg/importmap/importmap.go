// SPDX-License-Identifier: MPL-2.0

package importmap

import (
	"net/url"
	"slices"
	"strings"

	"github.com/invowk/importmap/pkg/urlutil"
)

type (
	// Target is the right-hand side of a mapping: either an absolute URL or the
	// blocked marker produced by a null or empty-list declaration.
	Target struct {
		url *url.URL
	}

	// Mapping is a single specifier key and its target.
	Mapping struct {
		// Key is the specifier key exactly as declared. A key ending in "/" is a
		// prefix mapping.
		Key string
		// Target is the address the key maps to.
		Target Target
	}

	// SpecifierMap is an ordered table of mappings. Keys are unique; a later
	// declaration of the same key replaces the earlier target in place.
	SpecifierMap struct {
		mappings []Mapping
		index    map[string]int
	}

	// Scope is a specifier table that applies to referrers whose serialized URL
	// starts with Prefix.
	Scope struct {
		// Prefix is the absolute URL string the referrer must start with.
		Prefix string
		// Specifiers holds the scope's mappings.
		Specifiers SpecifierMap
	}

	// ImportMap is a normalized import map: top-level imports plus scopes in
	// declaration order. It is read-only after construction.
	ImportMap struct {
		imports SpecifierMap
		scopes  []Scope
	}
)

// Address returns a Target pointing at u. A nil u yields the blocked marker.
func Address(u *url.URL) Target {
	if u == nil {
		return Target{}
	}
	c := *u
	return Target{url: &c}
}

// Blocked returns the blocked marker.
func Blocked() Target { return Target{} }

// IsBlocked reports whether the target forbids resolution.
func (t Target) IsBlocked() bool { return t.url == nil }

// URL returns a copy of the target URL, or nil for a blocked target.
func (t Target) URL() *url.URL {
	if t.url == nil {
		return nil
	}
	c := *t.url
	return &c
}

// String returns the serialized URL, or "null" for a blocked target.
func (t Target) String() string {
	if t.url == nil {
		return "null"
	}
	return urlutil.Serialize(t.url)
}

// IsPrefix reports whether the mapping is a prefix ("package") mapping.
func (m Mapping) IsPrefix() bool { return strings.HasSuffix(m.Key, "/") }

// Len returns the number of mappings.
func (s SpecifierMap) Len() int { return len(s.mappings) }

// Mappings returns the mappings in declaration order.
func (s SpecifierMap) Mappings() []Mapping { return slices.Clone(s.mappings) }

// Get returns the target declared for key.
func (s SpecifierMap) Get(key string) (Target, bool) {
	i, ok := s.index[key]
	if !ok {
		return Target{}, false
	}
	return s.mappings[i].Target, true
}

// set adds or replaces key. Replacement keeps the original position.
func (s *SpecifierMap) set(key string, target Target) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[key]; ok {
		s.mappings[i].Target = target
		return
	}
	s.index[key] = len(s.mappings)
	s.mappings = append(s.mappings, Mapping{Key: key, Target: target})
}

func (s SpecifierMap) clone() SpecifierMap {
	out := SpecifierMap{
		mappings: slices.Clone(s.mappings),
		index:    make(map[string]int, len(s.index)),
	}
	for k, v := range s.index {
		out.index[k] = v
	}
	return out
}

// Imports returns the top-level specifier table.
func (m *ImportMap) Imports() SpecifierMap {
	if m == nil {
		return SpecifierMap{}
	}
	return m.imports
}

// Scopes returns the scopes in declaration order.
func (m *ImportMap) Scopes() []Scope {
	if m == nil {
		return nil
	}
	return slices.Clone(m.scopes)
}

// Scope returns the scope declared for prefix.
func (m *ImportMap) Scope(prefix string) (Scope, bool) {
	if m == nil {
		return Scope{}, false
	}
	for _, s := range m.scopes {
		if s.Prefix == prefix {
			return s, true
		}
	}
	return Scope{}, false
}

// IsEmpty reports whether the map has no mappings and no scopes.
func (m *ImportMap) IsEmpty() bool {
	return m == nil || (m.imports.Len() == 0 && len(m.scopes) == 0)
}

// Resolve resolves specifier against m for a module located at baseURL.
func (m *ImportMap) Resolve(specifier string, baseURL *url.URL) (*url.URL, error) {
	return Resolve(specifier, m, baseURL)
}

// setScope adds or replaces the table for prefix, keeping the first position.
func (m *ImportMap) setScope(prefix string, table SpecifierMap) {
	for i := range m.scopes {
		if m.scopes[i].Prefix == prefix {
			m.scopes[i].Specifiers = table
			return
		}
	}
	m.scopes = append(m.scopes, Scope{Prefix: prefix, Specifiers: table})
}
