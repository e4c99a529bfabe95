// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/invowk/importmap/internal/config"
	"github.com/invowk/importmap/pkg/importmap"
	"github.com/invowk/importmap/pkg/types"
	"github.com/invowk/importmap/pkg/urlutil"
)

type (
	// resolveResult is one line of resolve output.
	resolveResult struct {
		Specifier string `json:"specifier" yaml:"specifier" toml:"specifier"`
		URL       string `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`
		Error     string `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
		Reason    string `json:"reason,omitempty" yaml:"reason,omitempty" toml:"reason,omitempty"`
	}

	// resolveReport is the document written for the structured formats.
	resolveReport struct {
		Referrer string          `json:"referrer,omitempty" yaml:"referrer,omitempty" toml:"referrer,omitempty"`
		Results  []resolveResult `json:"results" yaml:"results" toml:"result"`
	}
)

func newResolveCommand(app *App, root *rootFlagValues) *cobra.Command {
	mf := &mapFlagValues{}
	var format string

	cmd := &cobra.Command{
		Use:   "resolve <specifier>...",
		Short: "Resolve specifiers to URLs",
		Long: `Resolve each specifier through the import map and print the resulting URL.

The exit status is 1 when any specifier cannot be resolved.`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.settings(cmd.Context(), root, mf)
			if err != nil {
				return err
			}
			output := s.cfg.Output
			if format != "" {
				output = config.OutputFormat(format)
				if ok, errs := output.IsValid(); !ok {
					return exitWith(types.ExitUsage, errs[0])
				}
			}

			lm, err := app.loadMap(cmd.Context(), s)
			if err != nil {
				return err
			}
			report := app.resolveAll(cmd.Context(), lm, s.referrerFor(lm), args)
			if err := writeReport(app.stdout, app.stderr, output, report); err != nil {
				return exitWith(types.ExitUsage, err)
			}
			if report.failed() {
				return exitWith(types.ExitUnresolved, nil)
			}
			return nil
		},
	}

	mf.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "o", "", "output format: text, json, yaml or toml (default from config output)")
	return cmd
}

// resolveAll resolves every specifier, logging each trace at debug level.
func (a *App) resolveAll(ctx context.Context, lm *LoadedMap, referrer *url.URL, specifiers []string) resolveReport {
	report := resolveReport{Referrer: urlutil.Serialize(referrer)}
	for _, spec := range specifiers {
		if ctx.Err() != nil {
			break
		}
		trace := importmap.Explain(spec, lm.Map, referrer)
		a.logTrace(trace)

		r := resolveResult{Specifier: spec}
		if trace.Err != nil {
			r.Error = trace.Err.Error()
			var resErr *importmap.ResolutionError
			if errors.As(trace.Err, &resErr) {
				r.Reason = string(resErr.Reason)
			}
		} else {
			r.URL = urlutil.Serialize(trace.URL)
		}
		report.Results = append(report.Results, r)
	}
	return report
}

func (a *App) logTrace(t importmap.Trace) {
	if t.FastPath {
		a.logger.Debug("absolute URL specifier", "specifier", t.Specifier)
		return
	}
	for _, step := range t.Scopes {
		if step.Consulted {
			a.logger.Debug("scope lookup", "specifier", t.Specifier, "scope", step.Prefix, "outcome", step.Result.Outcome, "key", step.Result.Key)
		}
	}
	if t.Imports != nil {
		a.logger.Debug("imports lookup", "specifier", t.Specifier, "outcome", t.Imports.Outcome, "key", t.Imports.Key)
	}
}

func (r resolveReport) failed() bool {
	for _, res := range r.Results {
		if res.Error != "" {
			return true
		}
	}
	return false
}

// writeReport prints the report. In text mode failures go to stderr.
func writeReport(stdout, stderr io.Writer, format config.OutputFormat, report resolveReport) error {
	switch format {
	case config.OutputJSON:
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(report)
	case config.OutputYAML:
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case config.OutputTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(report); err != nil {
			return err
		}
		_, err := stdout.Write(buf.Bytes())
		return err
	default:
		for _, res := range report.Results {
			if res.Error != "" {
				fmt.Fprintln(stderr, ErrorStyle.Render("✗")+" "+res.Error)
				continue
			}
			fmt.Fprintf(stdout, "%s -> %s\n", res.Specifier, SuccessStyle.Render(res.URL))
		}
		return nil
	}
}

// usageArgs marks argument validation failures as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return exitWith(types.ExitUsage, err)
		}
		return nil
	}
}
