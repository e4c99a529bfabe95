// SPDX-License-Identifier: MPL-2.0

package importmap

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/invowk/importmap/pkg/urlutil"
)

func TestMarshalJSON(t *testing.T) {
	t.Parallel()

	m := mustParseMap(t, `{
		"imports": {"z": "/z.js", "a&b": "/a.js", "x": null},
		"scopes": {"/js": {"moment/": "./m/"}}
	}`)

	data, err := m.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON returned error: %v", err)
	}
	want := `{"imports":{"z":"https://example.com/z.js","a&b":"https://example.com/a.js","x":null},` +
		`"scopes":{"https://example.com/js":{"moment/":"https://example.com/app/m/"}}}`
	if string(data) != want {
		t.Errorf("MarshalJSON =\n%s\nwant\n%s", data, want)
	}

	again, warnings, err := ParseString(string(data), urlutil.MustParseAbsolute("https://other.example/"))
	if err != nil || len(warnings) > 0 {
		t.Fatalf("re-parse failed: %v %v", err, warnings)
	}
	roundTrip, _ := again.MarshalJSON()
	if string(roundTrip) != want {
		t.Errorf("round trip changed the map:\n%s", roundTrip)
	}
}

func TestMarshalJSON_Empty(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(mustParseMap(t, `{}`))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"imports":{}}` {
		t.Errorf("got %s", data)
	}
}

func TestMarshalYAML(t *testing.T) {
	t.Parallel()

	m := mustParseMap(t, `{"imports": {"b": "/b.js", "a": null}, "scopes": {"/": {"c": "/c.js"}}}`)
	data, err := yaml.Marshal(m)
	if err != nil {
		t.Fatalf("yaml.Marshal returned error: %v", err)
	}
	out := string(data)
	if strings.Index(out, "b:") > strings.Index(out, "a:") {
		t.Errorf("declaration order lost:\n%s", out)
	}

	again, warnings, err := Parse(data, FormatYAML, nil)
	if err != nil || len(warnings) > 0 {
		t.Fatalf("re-parse failed: %v %v\n%s", err, warnings, out)
	}
	if target, _ := again.Imports().Get("a"); !target.IsBlocked() {
		t.Error("blocked target should survive YAML round trip")
	}
	if _, ok := again.Scope("https://example.com/"); !ok {
		t.Error("scope should survive YAML round trip")
	}
}
