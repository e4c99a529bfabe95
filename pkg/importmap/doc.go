// SPDX-License-Identifier: MPL-2.0

// Package importmap resolves module specifiers against import maps.
//
// An import map is a declarative table that maps bare, package-like specifiers
// ("moment", "lodash/fp") to absolute URLs, with optional scopes that override
// the top-level mappings for modules whose URL starts with a given prefix.
//
// # Resolution
//
// [Resolve] is a pure function of a specifier, an [ImportMap] and the URL of the
// referencing module:
//
//  1. A specifier that is itself an absolute URL resolves to its canonical form;
//     the map is not consulted.
//  2. Scopes whose prefix is a literal prefix of the referrer URL are consulted
//     from the longest prefix to the shortest (declaration order breaks ties).
//     The first scope with any entry for the specifier decides the outcome, even
//     when that entry is blocked.
//  3. Otherwise the top-level imports decide.
//
// Within one table an exact key wins over prefix keys ("moment/"), and the
// longest matching prefix key wins over shorter ones. A key mapped to null or
// to an empty list blocks the specifier. Every failure is a [*ResolutionError]
// wrapping [ErrUnresolvable].
//
// [Explain] runs the same algorithm and records each decision in a [Trace].
//
// # Building maps
//
// [Parse] normalizes JSON, CUE, YAML or HTML-embedded import maps into an
// [ImportMap], returning non-fatal problems as [Warning] values. [NewBuilder]
// constructs maps programmatically. An ImportMap is immutable once built and
// safe for concurrent use.
package importmap
