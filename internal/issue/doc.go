// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and the catalog of user-facing
// issue pages.
//
// ActionableError carries the operation, resource and suggestions the CLI
// prints for a failure. Issue entries are Markdown pages, rendered with
// glamour, explaining a class of failure (missing import map, unresolvable
// specifier, bad configuration) and how to fix it.
package issue
