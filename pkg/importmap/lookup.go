// SPDX-License-Identifier: MPL-2.0

package importmap

import (
	"net/url"
	"strings"

	"github.com/invowk/importmap/pkg/urlutil"
)

// Lookup outcomes.
const (
	// OutcomeAbsent means no key in the table applies to the specifier.
	OutcomeAbsent Outcome = iota
	// OutcomeMapped means the specifier maps to LookupResult.URL.
	OutcomeMapped
	// OutcomeBlocked means the matching entry forbids resolution.
	OutcomeBlocked
)

type (
	// Outcome is the three-way result of looking a specifier up in one table.
	Outcome int

	// LookupResult reports how one specifier table treated a specifier.
	LookupResult struct {
		Outcome Outcome
		// URL is set for OutcomeMapped.
		URL *url.URL
		// Key is the matching key; empty for OutcomeAbsent.
		Key string
		// Prefix is true when Key matched as a prefix key.
		Prefix bool
		// Reason is ReasonBlocked or ReasonInvalidTarget for OutcomeBlocked.
		Reason Reason
	}
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeMapped:
		return "mapped"
	case OutcomeBlocked:
		return "blocked"
	default:
		return "absent"
	}
}

// Lookup resolves specifier within a single table. An exact key wins;
// otherwise the longest key ending in "/" that prefixes specifier applies,
// with the earliest declaration winning among equal lengths. A target
// joined with the specifier remainder that fails to parse yields
// OutcomeBlocked with ReasonInvalidTarget.
func Lookup(specifier string, table SpecifierMap) LookupResult {
	if target, ok := table.Get(specifier); ok {
		if target.IsBlocked() {
			return LookupResult{Outcome: OutcomeBlocked, Key: specifier, Reason: ReasonBlocked}
		}
		return LookupResult{Outcome: OutcomeMapped, URL: target.URL(), Key: specifier}
	}

	best := -1
	for i, m := range table.mappings {
		if !m.IsPrefix() || !strings.HasPrefix(specifier, m.Key) {
			continue
		}
		if best < 0 || len(m.Key) > len(table.mappings[best].Key) {
			best = i
		}
	}
	if best < 0 {
		return LookupResult{Outcome: OutcomeAbsent}
	}

	m := table.mappings[best]
	if m.Target.IsBlocked() {
		return LookupResult{Outcome: OutcomeBlocked, Key: m.Key, Prefix: true, Reason: ReasonBlocked}
	}
	remainder := specifier[len(m.Key):]
	u, err := urlutil.ParseAbsolute(m.Target.String() + remainder)
	if err != nil {
		return LookupResult{Outcome: OutcomeBlocked, Key: m.Key, Prefix: true, Reason: ReasonInvalidTarget}
	}
	return LookupResult{Outcome: OutcomeMapped, URL: u, Key: m.Key, Prefix: true}
}
