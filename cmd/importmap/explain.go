// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/invowk/importmap/pkg/importmap"
	"github.com/invowk/importmap/pkg/types"
	"github.com/invowk/importmap/pkg/urlutil"
)

func newExplainCommand(app *App, root *rootFlagValues) *cobra.Command {
	mf := &mapFlagValues{}

	cmd := &cobra.Command{
		Use:   "explain <specifier>",
		Short: "Show how a specifier is resolved",
		Long: `Print every scope that applies to the referrer, in the order they are
consulted, the entry each one matched and the entry that decided the result.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.settings(cmd.Context(), root, mf)
			if err != nil {
				return err
			}
			lm, err := app.loadMap(cmd.Context(), s)
			if err != nil {
				return err
			}

			trace := importmap.Explain(args[0], lm.Map, s.referrerFor(lm))
			writeTrace(app.stdout, trace)
			if !trace.Succeeded() {
				return exitWith(types.ExitUnresolved, nil)
			}
			return nil
		},
	}

	mf.register(cmd)
	return cmd
}

func writeTrace(w io.Writer, t importmap.Trace) {
	fmt.Fprintf(w, "%s %s\n", KeyStyle.Render("specifier:"), t.Specifier)
	referrer := t.BaseURL
	if referrer == "" {
		referrer = SubtitleStyle.Render("(none, imports only)")
	}
	fmt.Fprintf(w, "%s  %s\n", KeyStyle.Render("referrer:"), referrer)

	if t.FastPath {
		fmt.Fprintln(w, SubtitleStyle.Render("absolute URL: the map is not consulted"))
	} else {
		writeScopeSteps(w, t)
		fmt.Fprintf(w, "%s\n", KeyStyle.Render("imports:"))
		if t.Imports == nil {
			fmt.Fprintln(w, "  "+SubtitleStyle.Render("not consulted"))
		} else {
			fmt.Fprintln(w, "  "+describeStep(*t.Imports, true))
		}
	}

	fmt.Fprintln(w)
	if t.Err != nil {
		fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("✗"), t.Err)
		return
	}
	fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("→"), urlutil.Serialize(t.URL))
}

func writeScopeSteps(w io.Writer, t importmap.Trace) {
	fmt.Fprintf(w, "%s\n", KeyStyle.Render("scopes:"))
	if len(t.Scopes) == 0 {
		fmt.Fprintln(w, "  "+SubtitleStyle.Render("(none declared)"))
		return
	}
	for _, step := range t.Scopes {
		var detail string
		switch {
		case !step.Matched:
			detail = SubtitleStyle.Render("does not apply")
		case !step.Consulted:
			detail = SubtitleStyle.Render("not reached")
		default:
			detail = describeStep(step.Result, step.Result.Outcome != importmap.OutcomeAbsent)
		}
		fmt.Fprintf(w, "  %s  %s\n", step.Prefix, detail)
	}
}

// describeStep renders one lookup. deciding marks the lookup that fixed the
// result.
func describeStep(r importmap.LookupResult, deciding bool) string {
	var s string
	switch r.Outcome {
	case importmap.OutcomeMapped:
		s = fmt.Sprintf("%q -> %s", r.Key, urlutil.Serialize(r.URL))
	case importmap.OutcomeBlocked:
		s = fmt.Sprintf("%q blocked (%s)", r.Key, r.Reason)
	default:
		return SubtitleStyle.Render("no entry")
	}
	if deciding {
		return decidingStyle.Render(s + " [decided]")
	}
	return s
}
