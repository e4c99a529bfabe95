// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/invowk/importmap/pkg/types"
)

func newCheckCommand(app *App, root *rootFlagValues) *cobra.Command {
	mf := &mapFlagValues{}
	var (
		format string
		strict bool
		quiet  bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate an import map and print it normalized",
		Long: `Parse the import map, report every ignored entry and print the normalized
map with all addresses and scope prefixes resolved to absolute URLs.

With --strict any warning makes the exit status 3.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return exitWith(types.ExitUsage, fmt.Errorf("invalid --format %q (valid: json, yaml)", format))
			}
			s, err := app.settings(cmd.Context(), root, mf)
			if err != nil {
				return err
			}
			lm, err := app.Maps.Load(cmd.Context(), MapRequest{Path: s.mapPath, Format: s.mapFormat, BaseURL: s.mapBaseURL})
			if err != nil {
				return exitWith(types.ExitInvalidMap, mapLoadError(s.mapPath, err))
			}

			for _, w := range lm.Warnings {
				fmt.Fprintf(app.stderr, "%s %s\n", WarningStyle.Render("warning:"), w)
			}

			if !quiet {
				out, err := encodeMap(lm, format)
				if err != nil {
					return exitWith(types.ExitInvalidMap, err)
				}
				if _, err := app.stdout.Write(out); err != nil {
					return err
				}
			}

			if strict && len(lm.Warnings) > 0 {
				return exitWith(types.ExitInvalidMap, fmt.Errorf("%d warning(s) in %s", len(lm.Warnings), lm.Path))
			}
			app.logger.Info("import map is valid", "path", lm.Path, "imports", lm.Map.Imports().Len(), "scopes", len(lm.Map.Scopes()))
			return nil
		},
	}

	mf.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "o", "json", "output format: json or yaml")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with status 3 when the map produces warnings")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print the normalized map")
	return cmd
}

func encodeMap(lm *LoadedMap, format string) ([]byte, error) {
	if format == "yaml" {
		return yaml.Marshal(lm.Map)
	}
	compact, err := lm.Map.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
