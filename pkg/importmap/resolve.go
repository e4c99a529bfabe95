// SPDX-License-Identifier: MPL-2.0

package importmap

import (
	"cmp"
	"net/url"
	"slices"
	"strings"

	"github.com/invowk/importmap/pkg/urlutil"
)

type (
	// Trace records every decision taken while resolving one specifier.
	Trace struct {
		Specifier string
		// BaseURL is the serialized referrer; empty when none was given.
		BaseURL string
		// FastPath is true when the specifier was itself an absolute URL.
		FastPath bool
		// Scopes lists every declared scope in consultation order: matching
		// scopes first (most specific first), then the ones that did not match.
		Scopes []ScopeStep
		// Imports is the top-level lookup; nil when a scope decided or the fast
		// path applied.
		Imports *LookupResult
		// URL is the resolved URL; nil on failure.
		URL *url.URL
		// Err is the resolution error; nil on success.
		Err error
	}

	// ScopeStep is one scope's part in a Trace.
	ScopeStep struct {
		Prefix string
		// Matched reports whether Prefix is a prefix of the referrer URL.
		Matched bool
		// Consulted is false for matching scopes after the deciding one.
		Consulted bool
		// Result is the lookup in this scope, meaningful when Consulted.
		Result LookupResult
	}
)

// Resolve resolves specifier against m for a module located at baseURL.
//
// An absolute-URL specifier resolves to its canonical form without consulting
// the map. Otherwise the most specific scope with an entry for the specifier
// decides, and the top-level imports are the fallback. A nil baseURL consults
// only the top-level imports. Failures are *ResolutionError values wrapping
// ErrUnresolvable.
func Resolve(specifier string, m *ImportMap, baseURL *url.URL) (*url.URL, error) {
	return resolve(specifier, m, baseURL, nil)
}

// Explain resolves specifier like Resolve and returns the decisions taken.
func Explain(specifier string, m *ImportMap, baseURL *url.URL) Trace {
	t := Trace{Specifier: specifier, BaseURL: urlutil.Serialize(baseURL)}
	t.URL, t.Err = resolve(specifier, m, baseURL, &t)
	return t
}

// Succeeded reports whether the traced resolution produced a URL.
func (t Trace) Succeeded() bool { return t.Err == nil }

// DecidingScope returns the scope whose lookup decided the result.
func (t Trace) DecidingScope() (ScopeStep, bool) {
	for _, s := range t.Scopes {
		if s.Consulted && s.Result.Outcome != OutcomeAbsent {
			return s, true
		}
	}
	return ScopeStep{}, false
}

func resolve(specifier string, m *ImportMap, baseURL *url.URL, trace *Trace) (*url.URL, error) {
	if u, err := urlutil.ParseAbsolute(specifier); err == nil {
		if trace != nil {
			trace.FastPath = true
		}
		return u, nil
	}

	base := urlutil.Serialize(baseURL)
	fail := func(reason Reason, scope, key string) error {
		return &ResolutionError{Specifier: specifier, BaseURL: base, Reason: reason, Scope: scope, Key: key}
	}

	candidates := applicableScopes(m, baseURL)
	if trace != nil {
		trace.Scopes = scopeSteps(m, candidates)
	}

	for i, s := range candidates {
		r := Lookup(specifier, s.Specifiers)
		if trace != nil {
			trace.Scopes[i].Consulted = true
			trace.Scopes[i].Result = r
		}
		switch r.Outcome {
		case OutcomeMapped:
			return r.URL, nil
		case OutcomeBlocked:
			return nil, fail(r.Reason, s.Prefix, r.Key)
		}
	}

	r := Lookup(specifier, m.Imports())
	if trace != nil {
		trace.Imports = &r
	}
	switch r.Outcome {
	case OutcomeMapped:
		return r.URL, nil
	case OutcomeBlocked:
		return nil, fail(r.Reason, "", r.Key)
	default:
		return nil, fail(ReasonUnmapped, "", "")
	}
}

// applicableScopes returns the scopes whose prefix is a literal prefix of
// baseURL's serialization, longest prefix first. The sort is stable so equal
// lengths keep declaration order.
func applicableScopes(m *ImportMap, baseURL *url.URL) []Scope {
	if m == nil || baseURL == nil {
		return nil
	}
	base := urlutil.Serialize(baseURL)
	var out []Scope
	for _, s := range m.scopes {
		if strings.HasPrefix(base, s.Prefix) {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, func(a, b Scope) int {
		return cmp.Compare(len(b.Prefix), len(a.Prefix))
	})
	return out
}

// scopeSteps lists matching scopes in consultation order followed by the
// remaining scopes in declaration order.
func scopeSteps(m *ImportMap, candidates []Scope) []ScopeStep {
	steps := make([]ScopeStep, 0, len(m.Scopes()))
	matched := make(map[string]bool, len(candidates))
	for _, s := range candidates {
		matched[s.Prefix] = true
		steps = append(steps, ScopeStep{Prefix: s.Prefix, Matched: true})
	}
	for _, s := range m.Scopes() {
		if !matched[s.Prefix] {
			steps = append(steps, ScopeStep{Prefix: s.Prefix})
		}
	}
	return steps
}
