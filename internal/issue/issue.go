// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

// Catalog entries.
const (
	MapNotFoundId Id = iota + 1
	MapParseErrorId
	SpecifierUnresolvableId
	InvalidBaseURLId
	ConfigLoadFailedId
	WatchFailedId
)

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is the Markdown body of an issue.
	MarkdownMsg string

	// HttpLink is a documentation URL.
	HttpLink string

	// Issue is a user-facing explanation of a failure class with remediation
	// steps, rendered as Markdown.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue with the glamour style at stylePath ("dark",
// "light", "notty" or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range slices.Concat(i.docLinks, i.extLinks) {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	mapNotFoundIssue = &Issue{
		id: MapNotFoundId,
		mdMsg: `
# Import map not found!

The import map file could not be read.

## Lookup order
1. The ` + "`--map`" + ` flag
2. ` + "`map_path`" + ` in your config file
3. ` + "`importmap.json`" + ` in the current directory

## Things you can try:
- Point at the file explicitly:
~~~
$ importmap resolve --map ./public/importmap.json moment
~~~

- Import maps embedded in a page work too:
~~~
$ importmap resolve --map ./index.html moment
~~~`,
		extLinks: []HttpLink{"https://html.spec.whatwg.org/multipage/webappapis.html#import-maps"},
	}

	mapParseErrorIssue = &Issue{
		id: MapParseErrorId,
		mdMsg: `
# Failed to parse the import map!

The file is not a valid import map.

## Common issues:
- The top-level value is not an object
- ` + "`imports`" + ` or ` + "`scopes`" + ` is not an object
- A scope value is not an object
- Invalid JSON, YAML or CUE syntax

## Things you can try:
- Check the location reported above
- List every warning and the normalized result:
~~~
$ importmap check --map importmap.json
~~~

## Example of a valid import map:
~~~json
{
  "imports": {
    "moment": "/node_modules/moment/src/moment.js",
    "moment/": "/node_modules/moment/src/"
  },
  "scopes": {
    "/legacy/": { "moment": "/node_modules/moment-1/moment.js" }
  }
}
~~~`,
	}

	specifierUnresolvableIssue = &Issue{
		id: SpecifierUnresolvableId,
		mdMsg: `
# Specifier could not be resolved!

No import map entry applies to this specifier from the given referrer, or the
deciding entry is ` + "`null`" + ` or ` + "`[]`" + `.

## Things you can try:
- See which scopes and keys were considered:
~~~
$ importmap explain moment --referrer https://example.com/js/app.mjs
~~~

- Add a prefix mapping (note both trailing slashes) for deep imports:
~~~json
"moment/": "/node_modules/moment/src/"
~~~

- Remember that a matching scope entry hides the top-level one, even when it
  is blocked`,
	}

	invalidBaseURLIssue = &Issue{
		id: InvalidBaseURLId,
		mdMsg: `
# Invalid base URL!

The map base URL and the referrer must be absolute URLs.

## Things you can try:
- Use a full URL:
~~~
$ importmap resolve moment --map-base-url https://example.com/index.html
~~~

- Leave both unset to use the map file's own ` + "`file://`" + ` URL`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or does not match the schema.

## Things you can try:
- Show where the configuration is looked up:
~~~
$ importmap config path
~~~

- Write a fresh file with the defaults:
~~~
$ importmap config init
~~~

## Example config.cue:
~~~cue
map_path:  "public/importmap.json"
log_level: "info"
output:    "json"
watch: debounce: "500ms"
~~~`,
	}

	watchFailedIssue = &Issue{
		id: WatchFailedId,
		mdMsg: `
# Failed to watch the import map!

The file watcher could not be started.

## Things you can try:
- Check that the map file and its directory exist
- On Linux, raise the inotify watch limit:
~~~
$ sudo sysctl fs.inotify.max_user_watches=524288
~~~`,
	}

	issues = map[Id]*Issue{
		mapNotFoundIssue.Id():           mapNotFoundIssue,
		mapParseErrorIssue.Id():         mapParseErrorIssue,
		specifierUnresolvableIssue.Id(): specifierUnresolvableIssue,
		invalidBaseURLIssue.Id():        invalidBaseURLIssue,
		configLoadFailedIssue.Id():      configLoadFailedIssue,
		watchFailedIssue.Id():           watchFailedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	ids := maps.Keys(issues)
	slices.Sort(ids)
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
