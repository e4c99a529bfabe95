// SPDX-License-Identifier: MPL-2.0

// Package tui provides the interactive import map explorer, a Bubble Tea
// program that resolves a specifier against a map as it is typed.
package tui
