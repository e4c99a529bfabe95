// SPDX-License-Identifier: MPL-2.0

package importmap

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/invowk/importmap/pkg/cueutil"
	"github.com/invowk/importmap/pkg/urlutil"
)

func parseWithWarnings(t *testing.T, text string) (*ImportMap, []Warning) {
	t.Helper()

	m, warnings, err := ParseString(text, urlutil.MustParseAbsolute(mapBaseURL))
	if err != nil {
		t.Fatalf("ParseString returned error: %v", err)
	}
	return m, warnings
}

func keysOf(table SpecifierMap) []string {
	keys := make([]string, 0, table.Len())
	for _, m := range table.Mappings() {
		keys = append(keys, m.Key)
	}
	return keys
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		path  string
	}{
		{"empty", "", ""},
		{"whitespace only", " \n\t ", ""},
		{"malformed JSON", `{"imports": `, ""},
		{"trailing data", `{} {}`, ""},
		{"top level array", `[]`, ""},
		{"top level string", `"imports"`, ""},
		{"imports not an object", `{"imports": []}`, "imports"},
		{"imports null", `{"imports": null}`, "imports"},
		{"scopes not an object", `{"scopes": "x"}`, "scopes"},
		{"scope value not an object", `{"scopes": {"/js": ["a"]}}`, `scopes["/js"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := ParseString(tt.input, urlutil.MustParseAbsolute(mapBaseURL))
			if !errors.Is(err, ErrInvalidImportMap) {
				t.Fatalf("ParseString(%q) error = %v, want ErrInvalidImportMap", tt.input, err)
			}
			var mapErr *InvalidImportMapError
			if !errors.As(err, &mapErr) {
				t.Fatalf("expected *InvalidImportMapError, got %T", err)
			}
			if mapErr.Path != tt.path {
				t.Errorf("Path = %q, want %q", mapErr.Path, tt.path)
			}
			if mapErr.Source != "<input>" {
				t.Errorf("Source = %q, want <input>", mapErr.Source)
			}
		})
	}
}

func TestParse_Warnings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		path     string
		contains string
		keys     []string
	}{
		{
			name:     "unknown top-level key",
			input:    `{"imports": {}, "integrity": {}}`,
			path:     `"integrity"`,
			contains: "unknown top-level key",
		},
		{
			name:     "empty specifier key",
			input:    `{"imports": {"": "/x.js", "a": "/a.js"}}`,
			path:     `imports[""]`,
			contains: "empty specifier key",
			keys:     []string{"a"},
		},
		{
			name:     "bare target",
			input:    `{"imports": {"a": "lodash", "b": "/b.js"}}`,
			path:     `imports["a"]`,
			contains: "not an absolute URL",
			keys:     []string{"b"},
		},
		{
			name:     "number target",
			input:    `{"imports": {"a": 42}}`,
			path:     `imports["a"]`,
			contains: "got number",
			keys:     []string{},
		},
		{
			name:     "object target",
			input:    `{"imports": {"a": {}}}`,
			path:     `imports["a"]`,
			contains: "got object",
			keys:     []string{},
		},
		{
			name:     "prefix key without trailing slash",
			input:    `{"imports": {"moment/": "/node_modules/moment/src"}}`,
			path:     `imports["moment/"]`,
			contains: `must end in "/"`,
			keys:     []string{},
		},
		{
			name:     "non-string list item",
			input:    `{"imports": {"a": [1, "/a.js"]}}`,
			path:     `imports["a"][0]`,
			contains: "must be a string",
			keys:     []string{"a"},
		},
		{
			name:     "list with only invalid items",
			input:    `{"imports": {"a": [1, "bare"]}}`,
			path:     `imports["a"]`,
			contains: "no valid addresses",
			keys:     []string{},
		},
		{
			name:     "list fallbacks",
			input:    `{"imports": {"a": ["/a.js", "/b.js"]}}`,
			path:     `imports["a"]`,
			contains: "fallback addresses",
			keys:     []string{"a"},
		},
		{
			name:     "bad scope entry",
			input:    `{"scopes": {"/js": {"lodash": "lodash"}}}`,
			path:     `scopes["/js"]["lodash"]`,
			contains: "invalid address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, warnings := parseWithWarnings(t, tt.input)
			idx := slices.IndexFunc(warnings, func(w Warning) bool { return w.Path == tt.path })
			if idx < 0 {
				t.Fatalf("no warning at %s in %v", tt.path, warnings)
			}
			if !strings.Contains(warnings[idx].Message, tt.contains) {
				t.Errorf("warning %q should contain %q", warnings[idx].Message, tt.contains)
			}
			if tt.keys != nil {
				if got := keysOf(m.Imports()); !slices.Equal(got, tt.keys) {
					t.Errorf("imports keys = %v, want %v", got, tt.keys)
				}
			}
		})
	}
}

func TestParse_Targets(t *testing.T) {
	t.Parallel()

	m, warnings := parseWithWarnings(t, `{
		"imports": {
			"null": null,
			"empty": [],
			"single": ["/single.js"],
			"first": ["bare", "/first.js"],
			"abs": "https://cdn.example/abs.js",
			"root": "/root.js",
			"dot": "./dot.js",
			"dotdot": "../dotdot.js",
			"scheme-relative": "//cdn.example/x.js",
			"pkg/": "/pkg/",
			"blocked-pkg/": null
		}
	}`)

	want := map[string]string{
		"null":            "null",
		"empty":           "null",
		"single":          "https://example.com/single.js",
		"first":           "https://example.com/first.js",
		"abs":             "https://cdn.example/abs.js",
		"root":            "https://example.com/root.js",
		"dot":             "https://example.com/app/dot.js",
		"dotdot":          "https://example.com/dotdot.js",
		"scheme-relative": "https://cdn.example/x.js",
		"pkg/":            "https://example.com/pkg/",
		"blocked-pkg/":    "null",
	}
	for key, w := range want {
		target, ok := m.Imports().Get(key)
		if !ok {
			t.Errorf("key %q missing", key)
			continue
		}
		if target.String() != w {
			t.Errorf("imports[%q] = %q, want %q", key, target.String(), w)
		}
	}
	// "bare" inside the list is the only problem.
	if len(warnings) != 1 || warnings[0].Path != `imports["first"][0]` {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestParse_OrderAndDuplicates(t *testing.T) {
	t.Parallel()

	m, _ := parseWithWarnings(t, `{
		"imports": {"b": "/b.js", "a": "/a1.js", "c": "/c.js", "a": "/a2.js"},
		"scopes": {
			"/js": {"x": "/x1.js"},
			"/": {"x": "/root.js"},
			"https://example.com/js": {"y": "/y.js"}
		}
	}`)

	if got := keysOf(m.Imports()); !slices.Equal(got, []string{"b", "a", "c"}) {
		t.Errorf("imports order = %v", got)
	}
	if target, _ := m.Imports().Get("a"); target.String() != "https://example.com/a2.js" {
		t.Errorf("later duplicate should win, got %q", target.String())
	}

	scopes := m.Scopes()
	if len(scopes) != 2 {
		t.Fatalf("len(scopes) = %d, want 2 (same prefix merged)", len(scopes))
	}
	if scopes[0].Prefix != "https://example.com/js" || scopes[1].Prefix != "https://example.com/" {
		t.Errorf("scope order = %q, %q", scopes[0].Prefix, scopes[1].Prefix)
	}
	if _, ok := scopes[0].Specifiers.Get("x"); ok {
		t.Error("later scope declaration for the same prefix should replace the table")
	}
	if _, ok := scopes[0].Specifiers.Get("y"); !ok {
		t.Error("replacement table should be used")
	}
}

func TestParse_KeysAreVerbatim(t *testing.T) {
	t.Parallel()

	m, _ := parseWithWarnings(t, `{"imports": {"./local.js": "/x.js", "https://EXAMPLE.com/a.js": "/y.js"}}`)
	if got := keysOf(m.Imports()); !slices.Equal(got, []string{"./local.js", "https://EXAMPLE.com/a.js"}) {
		t.Errorf("keys = %v", got)
	}
}

func TestParse_NilBaseURL(t *testing.T) {
	t.Parallel()

	m, warnings, err := ParseString(`{"imports": {"a": "/a.js", "b": "https://cdn.example/b.js"}, "scopes": {"/js": {}}}`, nil)
	if err != nil {
		t.Fatalf("ParseString returned error: %v", err)
	}
	if got := keysOf(m.Imports()); !slices.Equal(got, []string{"b"}) {
		t.Errorf("keys = %v, want [b]", got)
	}
	if len(m.Scopes()) != 0 {
		t.Errorf("relative scope prefix should be dropped without a base URL")
	}
	if len(warnings) != 2 {
		t.Errorf("warnings = %v, want 2", warnings)
	}
}

func TestParse_CUE(t *testing.T) {
	t.Parallel()

	src := `
_cdn: "https://cdn.example"

imports: {
	moment:    "\(_cdn)/moment.js"
	"moment/": "\(_cdn)/moment/"
	blocked:   null
}
scopes: "/js": lodash: ["/lodash.js"]
`
	m, warnings, err := Parse([]byte(src), FormatCUE, urlutil.MustParseAbsolute(mapBaseURL), WithSource("map.cue"))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if got := keysOf(m.Imports()); !slices.Equal(got, []string{"moment", "moment/", "blocked"}) {
		t.Errorf("imports keys = %v", got)
	}
	expectResolved(t, m, "moment/x.js", "https://example.com/app.mjs", "https://cdn.example/moment/x.js")
	expectResolved(t, m, "lodash", "https://example.com/js/a.mjs", "https://example.com/lodash.js")
	expectUnresolvable(t, m, "blocked", "https://example.com/app.mjs", ReasonBlocked)
}

func TestParse_CUEErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `imports: {`},
		{"not concrete", `imports: a: string`},
		{"conflict", "imports: a: \"/a.js\"\nimports: a: \"/b.js\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := Parse([]byte(tt.src), FormatCUE, urlutil.MustParseAbsolute(mapBaseURL), WithSource("map.cue"))
			if !errors.Is(err, ErrInvalidImportMap) {
				t.Fatalf("error = %v, want ErrInvalidImportMap", err)
			}
			if !errors.Is(err, cueutil.ErrValidation) {
				t.Errorf("CUE errors should be wrapped, got %v", err)
			}
		})
	}
}

func TestParse_YAML(t *testing.T) {
	t.Parallel()

	src := `
imports:
  moment: /node_modules/moment/src/moment.js
  moment/: /node_modules/moment/src/
  blocked: ~
  empty: []
  shared: &shared /shared.js
scopes:
  /js:
    moment: ./node_modules_2/moment.js
    shared: *shared
`
	m, warnings, err := Parse([]byte(src), FormatYAML, urlutil.MustParseAbsolute(mapBaseURL))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	expectResolved(t, m, "moment/foo", "https://example.com/app.mjs", "https://example.com/node_modules/moment/src/foo")
	expectResolved(t, m, "moment", "https://example.com/js/app.mjs", "https://example.com/app/node_modules_2/moment.js")
	expectResolved(t, m, "shared", "https://example.com/js/app.mjs", "https://example.com/shared.js")
	expectUnresolvable(t, m, "blocked", "https://example.com/app.mjs", ReasonBlocked)
	expectUnresolvable(t, m, "empty", "https://example.com/app.mjs", ReasonBlocked)
}

func TestParse_YAMLTypedScalars(t *testing.T) {
	t.Parallel()

	m, warnings, err := Parse([]byte("imports:\n  a: 1\n  b: true\n  c: '/c.js'\n"), FormatYAML, urlutil.MustParseAbsolute(mapBaseURL))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got := keysOf(m.Imports()); !slices.Equal(got, []string{"c"}) {
		t.Errorf("keys = %v, want [c]", got)
	}
	if len(warnings) != 2 {
		t.Errorf("warnings = %v, want 2", warnings)
	}
}

func TestParse_YAMLErrors(t *testing.T) {
	t.Parallel()

	for _, src := range []string{"# only a comment\n", "imports: [a\n", "- a\n- b\n", "? [a]\n: b\n"} {
		if _, _, err := Parse([]byte(src), FormatYAML, nil); !errors.Is(err, ErrInvalidImportMap) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidImportMap", src, err)
		}
	}
}

func TestParse_HTML(t *testing.T) {
	t.Parallel()

	page := `<!doctype html>
<html>
<head>
  <script type="module" src="/app.mjs"></script>
  <script type="importmap" src="/external.json"></script>
  <script type="importmap">
    {"imports": {"moment": "./vendor/moment.js", "a<b": "/lt.js"}}
  </script>
  <script type="importmap">{"imports": {"ignored": "/x.js"}}</script>
</head>
</html>`

	m, warnings, err := Parse([]byte(page), FormatHTML, urlutil.MustParseAbsolute(mapBaseURL))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got := keysOf(m.Imports()); !slices.Equal(got, []string{"moment", "a<b"}) {
		t.Errorf("keys = %v", got)
	}
	expectResolved(t, m, "moment", "https://example.com/app.mjs", "https://example.com/app/vendor/moment.js")
	if len(warnings) != 2 {
		t.Fatalf("warnings = %v, want external and additional script warnings", warnings)
	}
	if !strings.Contains(warnings[0].Message, "external") || !strings.Contains(warnings[1].Message, "additional") {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestParse_HTMLErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		page string
	}{
		{"no import map", `<html><script type="module">import "a";</script></html>`},
		{"empty script", `<script type="importmap">  </script>`},
		{"malformed body", `<script type="importmap">{"imports":</script>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, _, err := Parse([]byte(tt.page), FormatHTML, nil); !errors.Is(err, ErrInvalidImportMap) {
				t.Errorf("error = %v, want ErrInvalidImportMap", err)
			}
		})
	}
}

func TestParse_DepthLimit(t *testing.T) {
	t.Parallel()

	deep := `{"imports": {"a": ` + strings.Repeat("[", maxRawDepth+8) + strings.Repeat("]", maxRawDepth+8) + `}}`
	_, _, err := ParseString(deep, nil)
	if !errors.Is(err, errTooDeep) {
		t.Errorf("error = %v, want errTooDeep", err)
	}
}

func TestParse_LargeObject(t *testing.T) {
	t.Parallel()

	const n = 200000
	var b strings.Builder
	b.WriteString(`{"imports": {`)
	for i := range n {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, `"pkg-%d": "/p/%d.js"`, i, i)
	}
	// A repeated key replaces the first declaration in place.
	b.WriteString(`, "pkg-0": "/replaced.js"}}`)

	done := make(chan struct{})
	var (
		m   *ImportMap
		err error
	)
	go func() {
		defer close(done)
		m, _, err = ParseString(b.String(), urlutil.MustParseAbsolute(mapBaseURL))
	}()
	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("parsing a large object did not finish in time")
	}
	if err != nil {
		t.Fatalf("ParseString returned error: %v", err)
	}
	if m.Imports().Len() != n {
		t.Fatalf("imports = %d, want %d", m.Imports().Len(), n)
	}
	first := m.Imports().Mappings()[0]
	if first.Key != "pkg-0" || first.Target.String() != "https://example.com/replaced.js" {
		t.Errorf("first mapping = %s -> %s", first.Key, first.Target)
	}
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "importmap.yaml")
	if err := os.WriteFile(path, []byte("imports:\n  a: ./lib/a.js\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, _, err := ParseFile(path, nil)
	if err != nil {
		t.Fatalf("ParseFile returned error: %v", err)
	}
	base, err := urlutil.FromFilePath(filepath.Join(dir, "lib", "a.js"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := m.Resolve("a", nil)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if urlutil.Serialize(got) != urlutil.Serialize(base) {
		t.Errorf("Resolve = %q, want %q", urlutil.Serialize(got), urlutil.Serialize(base))
	}

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		if _, _, err := ParseFile(filepath.Join(dir, "missing.json"), nil); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error = %v, want os.ErrNotExist", err)
		}
	})

	t.Run("source in errors", func(t *testing.T) {
		t.Parallel()

		bad := filepath.Join(dir, "bad.json")
		if err := os.WriteFile(bad, []byte(`[]`), 0o644); err != nil {
			t.Fatal(err)
		}
		_, _, err := ParseFile(bad, nil)
		var mapErr *InvalidImportMapError
		if !errors.As(err, &mapErr) || mapErr.Source != bad {
			t.Errorf("error = %v, want InvalidImportMapError for %s", err, bad)
		}
	})
}

func TestFormat(t *testing.T) {
	t.Parallel()

	pathTests := map[string]Format{
		"importmap.json":      FormatJSON,
		"site.importmap":      FormatJSON,
		"map.CUE":             FormatCUE,
		"map.yml":             FormatYAML,
		"map.yaml":            FormatYAML,
		"index.html":          FormatHTML,
		"index.htm":           FormatHTML,
		"no-extension-at-all": FormatJSON,
	}
	for path, want := range pathTests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", path, got, want)
		}
	}

	for in, want := range map[string]Format{"JSON": FormatJSON, "yml": FormatYAML, " cue ": FormatCUE, "htm": FormatHTML} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("toml"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("ParseFormat(toml) error = %v, want ErrInvalidFormat", err)
	}
	if _, _, err := Parse([]byte(`{}`), Format("xml"), nil); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("Parse with unknown format error = %v, want ErrInvalidFormat", err)
	}
}
