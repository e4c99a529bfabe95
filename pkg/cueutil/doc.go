// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides the CUE compilation helpers shared by the import map
// CUE front-end and the configuration loader.
//
// Two entry points cover both call sites:
//
//   - [Compile] checks the input size, compiles the document and validates it,
//     returning the concrete [cue.Value] for callers that walk fields in
//     declaration order (import maps).
//   - [ParseAndDecode] additionally unifies the document with an embedded schema
//     definition and decodes it into a Go value (configuration).
//
// # Usage
//
//	//go:embed config_schema.cue
//	var configSchema string
//
//	result, err := cueutil.ParseAndDecodeString[map[string]any](
//	    configSchema,
//	    data,
//	    "#Config",
//	    cueutil.WithFilename("config.cue"),
//	)
//	if err != nil {
//	    return err // *ValidationError with CUE paths
//	}
//
// Every CUE failure is reported as a [*ValidationError] listing one issue per
// offending field in JSON-path notation.
package cueutil
