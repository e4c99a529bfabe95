// SPDX-License-Identifier: MPL-2.0

package importmap

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/invowk/importmap/pkg/urlutil"
)

type (
	// Builder constructs an ImportMap from code. Address strings must be
	// absolute URLs; relative addresses are only accepted by Parse, which knows
	// the map base URL.
	Builder struct {
		m    ImportMap
		errs []error
	}

	// ScopeBuilder adds mappings to one scope of a Builder.
	ScopeBuilder struct {
		parent *Builder
		prefix string
		table  SpecifierMap
	}
)

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Import maps key to the absolute URL address in the top-level imports.
func (b *Builder) Import(key, address string) *Builder {
	b.set(&b.m.imports, fmt.Sprintf("imports[%q]", key), key, address, false)
	return b
}

// Block marks key as blocked in the top-level imports.
func (b *Builder) Block(key string) *Builder {
	b.set(&b.m.imports, fmt.Sprintf("imports[%q]", key), key, "", true)
	return b
}

// Scope starts a scope for the absolute URL prefix. Call Done to return to
// the Builder.
func (b *Builder) Scope(prefix string) *ScopeBuilder {
	sb := &ScopeBuilder{parent: b}
	u, err := urlutil.ParseAbsolute(prefix)
	if err != nil {
		b.errs = append(b.errs, &InvalidImportMapError{
			Source: "<builder>",
			Path:   fmt.Sprintf("scopes[%q]", prefix),
			Reason: "scope prefix is not an absolute URL",
			Cause:  err,
		})
		return sb
	}
	sb.prefix = urlutil.Serialize(u)
	if existing, ok := b.m.Scope(sb.prefix); ok {
		sb.table = existing.Specifiers.clone()
	}
	return sb
}

// Build returns the ImportMap, or every error recorded while building.
func (b *Builder) Build() (*ImportMap, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	out := &ImportMap{imports: b.m.imports.clone()}
	for _, s := range b.m.scopes {
		out.scopes = append(out.scopes, Scope{Prefix: s.Prefix, Specifiers: s.Specifiers.clone()})
	}
	return out, nil
}

// Import maps key to address within the scope.
func (s *ScopeBuilder) Import(key, address string) *ScopeBuilder {
	s.parent.set(&s.table, fmt.Sprintf("scopes[%q][%q]", s.prefix, key), key, address, false)
	return s
}

// Block marks key as blocked within the scope.
func (s *ScopeBuilder) Block(key string) *ScopeBuilder {
	s.parent.set(&s.table, fmt.Sprintf("scopes[%q][%q]", s.prefix, key), key, "", true)
	return s
}

// Done stores the scope and returns the parent Builder.
func (s *ScopeBuilder) Done() *Builder {
	if s.prefix != "" {
		s.parent.m.setScope(s.prefix, s.table)
	}
	return s.parent
}

func (b *Builder) set(table *SpecifierMap, path, key, address string, blocked bool) {
	invalid := func(reason string, cause error) {
		b.errs = append(b.errs, &InvalidImportMapError{Source: "<builder>", Path: path, Reason: reason, Cause: cause})
	}
	if key == "" {
		invalid("specifier key must not be empty", nil)
		return
	}
	if blocked {
		table.set(key, Blocked())
		return
	}
	u, err := urlutil.ParseAbsolute(address)
	if err != nil {
		invalid("address is not an absolute URL", err)
		return
	}
	if strings.HasSuffix(key, "/") && !hasTrailingSlash(u) {
		invalid(fmt.Sprintf("address %q must end in \"/\" for a prefix key", address), nil)
		return
	}
	table.set(key, Address(u))
}

func hasTrailingSlash(u *url.URL) bool {
	return strings.HasSuffix(urlutil.Serialize(u), "/")
}
