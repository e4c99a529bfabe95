// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/invowk/importmap/internal/tui"
	"github.com/invowk/importmap/pkg/types"
	"github.com/invowk/importmap/pkg/urlutil"
)

func newExploreCommand(app *App, root *rootFlagValues) *cobra.Command {
	mf := &mapFlagValues{}
	var width int

	cmd := &cobra.Command{
		Use:   "explore [specifier]",
		Short: "Interactively resolve specifiers",
		Long: `Open an interactive view that re-resolves the specifier as you type and
shows which scope or top-level entry decided the result.

Tab switches between the specifier and referrer inputs, Enter records the
current result and Esc quits.`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(app.stdin) {
				return exitWith(types.ExitUsage, errors.New("explore needs an interactive terminal; use 'importmap explain' instead"))
			}
			dim := tui.TerminalDimension(width)
			if ok, errs := dim.IsValid(); !ok {
				return exitWith(types.ExitUsage, errs[0])
			}

			s, err := app.settings(cmd.Context(), root, mf)
			if err != nil {
				return err
			}
			lm, err := app.loadMap(cmd.Context(), s)
			if err != nil {
				return err
			}

			opts := tui.ExploreOptions{
				Map:      lm.Map,
				Source:   lm.Path.String(),
				Referrer: urlutil.Serialize(s.referrerFor(lm)),
				Width:    dim,
			}
			if len(args) == 1 {
				opts.Specifier = args[0]
			}

			model, err := tui.Explore(cmd.Context(), opts, app.stdin, app.stdout)
			if err != nil {
				return exitWith(types.ExitUsage, err)
			}
			if model != nil {
				for _, line := range model.History() {
					fmt.Fprintln(app.stdout, line)
				}
			}
			return nil
		},
	}

	mf.register(cmd)
	cmd.Flags().IntVar(&width, "width", 0, "maximum view width in columns (default: terminal width)")
	return cmd
}
