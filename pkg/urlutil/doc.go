// SPDX-License-Identifier: MPL-2.0

// Package urlutil parses and serializes the absolute URLs that import maps are
// built from.
//
// The package is a thin canonicalizing layer over net/url. It gives the rest of
// the module three guarantees:
//
//   - [ParseAbsolute] only succeeds for strings that carry a scheme, and for
//     special schemes (http, https, ws, wss, ftp, file) only for hierarchical
//     URLs with an authority.
//   - Every URL it returns is canonical: lowercase scheme and host, no default
//     port, no dot segments, and "/" instead of an empty path for special schemes.
//   - [Serialize] is total and stable, so the same input always produces
//     byte-identical output.
package urlutil
