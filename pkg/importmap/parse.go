// SPDX-License-Identifier: MPL-2.0

package importmap

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/invowk/importmap/pkg/urlutil"
)

// Source formats accepted by Parse.
const (
	FormatJSON Format = "json"
	FormatCUE  Format = "cue"
	FormatYAML Format = "yaml"
	FormatHTML Format = "html"
)

const defaultSource = "<input>"

type (
	// Format names an import map source syntax.
	Format string

	// Warning is a non-fatal problem found while normalizing a map. The
	// offending entry has been dropped or simplified.
	Warning struct {
		// Path locates the entry, e.g. `scopes["/js"]["lodash"]`.
		Path    string
		Message string
	}

	// ParseOption configures Parse.
	ParseOption func(*parseOptions)

	parseOptions struct {
		source string
	}
)

// WithSource names the input in errors (usually the file path).
func WithSource(name string) ParseOption {
	return func(o *parseOptions) {
		o.source = name
	}
}

// String returns the format name.
func (f Format) String() string { return string(f) }

// IsValid reports whether f is a known format.
func (f Format) IsValid() (bool, []error) {
	switch f {
	case FormatJSON, FormatCUE, FormatYAML, FormatHTML:
		return true, nil
	default:
		return false, []error{fmt.Errorf("%w: %q (expected json, cue, yaml or html)", ErrInvalidFormat, string(f))}
	}
}

// ParseFormat converts a flag value such as "yml" into a Format.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "yml" {
		f = FormatYAML
	}
	if f == "htm" {
		f = FormatHTML
	}
	if ok, errs := f.IsValid(); !ok {
		return "", errs[0]
	}
	return f, nil
}

// FormatFromPath picks the format from the file extension. Unknown
// extensions (including ".importmap") are treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return FormatCUE
	case ".yaml", ".yml":
		return FormatYAML
	case ".html", ".htm":
		return FormatHTML
	default:
		return FormatJSON
	}
}

// String renders the warning as "path: message".
func (w Warning) String() string {
	if w.Path == "" {
		return w.Message
	}
	return w.Path + ": " + w.Message
}

// Parse normalizes an import map source. Relative addresses and scope
// prefixes are resolved against baseURL; with a nil baseURL they are dropped
// with a warning. Structural problems are returned as *InvalidImportMapError.
func Parse(data []byte, format Format, baseURL *url.URL, opts ...ParseOption) (*ImportMap, []Warning, error) {
	o := parseOptions{source: defaultSource}
	for _, opt := range opts {
		opt(&o)
	}

	if ok, errs := format.IsValid(); !ok {
		return nil, nil, errs[0]
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil, &InvalidImportMapError{Source: o.source, Reason: "input is empty"}
	}

	var (
		root     *rawValue
		warnings []Warning
		err      error
	)
	switch format {
	case FormatCUE:
		root, err = decodeCUE(data, o.source)
	case FormatYAML:
		root, err = decodeYAML(data)
	case FormatHTML:
		root, warnings, err = decodeHTML(data)
	default:
		root, err = decodeJSON(data)
	}
	if err != nil {
		return nil, nil, asInvalidMap(err, o.source, format)
	}

	n := &normalizer{base: baseURL, source: o.source, warnings: warnings}
	m, err := n.importMap(root)
	if err != nil {
		return nil, nil, err
	}
	return m, n.warnings, nil
}

// ParseString parses a JSON import map.
func ParseString(text string, baseURL *url.URL, opts ...ParseOption) (*ImportMap, []Warning, error) {
	return Parse([]byte(text), FormatJSON, baseURL, opts...)
}

// ParseFile reads and parses the import map at path, picking the format from
// the extension. A nil baseURL defaults to the file's own file: URL.
func ParseFile(path string, baseURL *url.URL) (*ImportMap, []Warning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if baseURL == nil {
		abs, absErr := filepath.Abs(path)
		if absErr != nil {
			return nil, nil, absErr
		}
		if baseURL, err = urlutil.FromFilePath(abs); err != nil {
			return nil, nil, err
		}
	}
	return Parse(data, FormatFromPath(path), baseURL, WithSource(path))
}

func asInvalidMap(err error, source string, format Format) error {
	if _, ok := err.(*InvalidImportMapError); ok {
		return err
	}
	return &InvalidImportMapError{Source: source, Reason: fmt.Sprintf("malformed %s", format), Cause: err}
}
