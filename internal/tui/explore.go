// SPDX-License-Identifier: MPL-2.0

package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/invowk/importmap/pkg/importmap"
	"github.com/invowk/importmap/pkg/urlutil"
)

const (
	fieldSpecifier = iota
	fieldReferrer
	fieldCount
)

type (
	// ExploreOptions configures the explorer.
	ExploreOptions struct {
		// Map is resolved against. It may be nil, in which case only absolute
		// URL specifiers resolve.
		Map *importmap.ImportMap
		// Source names the map in the header, usually its file path.
		Source string
		// Specifier and Referrer prefill the two inputs.
		Specifier string
		Referrer  string
		// Width limits the rendered view; zero follows the terminal.
		Width TerminalDimension
	}

	// ExploreModel is a bubbletea model that re-resolves the specifier on
	// every keystroke and shows the resolution trace.
	ExploreModel struct {
		m         *importmap.ImportMap
		source    string
		inputs    [fieldCount]textinput.Model
		focus     int
		width     TerminalDimension
		trace     importmap.Trace
		baseErr   error
		quitting  bool
		styles    exploreStyles
		committed []string
	}

	exploreStyles struct {
		title    lipgloss.Style
		label    lipgloss.Style
		ok       lipgloss.Style
		fail     lipgloss.Style
		muted    lipgloss.Style
		deciding lipgloss.Style
	}
)

// NewExploreModel returns a model with the specifier input focused.
func NewExploreModel(opts ExploreOptions) *ExploreModel {
	specifier := textinput.New()
	specifier.Prompt = "specifier › "
	specifier.Placeholder = "lodash/fp"
	specifier.SetValue(opts.Specifier)

	referrer := textinput.New()
	referrer.Prompt = "referrer  › "
	referrer.Placeholder = "https://example.com/app/main.js"
	referrer.SetValue(opts.Referrer)

	model := &ExploreModel{
		m:      opts.Map,
		source: opts.Source,
		inputs: [fieldCount]textinput.Model{specifier, referrer},
		width:  opts.Width,
		styles: defaultExploreStyles(),
	}
	model.inputs[fieldSpecifier].Focus()
	model.resolve()
	return model
}

func defaultExploreStyles() exploreStyles {
	return exploreStyles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		label:    lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		ok:       lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")),
		fail:     lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Faint(true),
		deciding: lipgloss.NewStyle().Bold(true),
	}
}

// Init implements tea.Model.
func (m *ExploreModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab", "shift+tab", "up", "down":
			m.focusNext()
			return m, nil
		case "enter":
			m.committed = append(m.committed, m.summary())
			return m, nil
		}
	case tea.WindowSizeMsg:
		if m.width == 0 {
			for i := range m.inputs {
				m.inputs[i].Width = max(1, msg.Width-len(m.inputs[i].Prompt)-1)
			}
		}
	}

	var cmd tea.Cmd
	before := m.inputs[m.focus].Value()
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if m.inputs[m.focus].Value() != before {
		m.resolve()
	}
	return m, cmd
}

func (m *ExploreModel) focusNext() {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + 1) % fieldCount
	m.inputs[m.focus].Focus()
}

// resolve recomputes the trace from the current input values.
func (m *ExploreModel) resolve() {
	m.baseErr = nil
	m.trace = importmap.Explain(m.Specifier(), m.m, m.referrerURL())
}

// referrerURL returns nil for an empty or invalid referrer, which limits
// resolution to the top-level imports.
func (m *ExploreModel) referrerURL() *url.URL {
	raw := strings.TrimSpace(m.inputs[fieldReferrer].Value())
	if raw == "" {
		return nil
	}
	u, err := urlutil.ParseAbsolute(raw)
	if err != nil {
		m.baseErr = err
		return nil
	}
	return u
}

// Specifier returns the current specifier input.
func (m *ExploreModel) Specifier() string { return m.inputs[fieldSpecifier].Value() }

// Trace returns the resolution of the current inputs.
func (m *ExploreModel) Trace() importmap.Trace { return m.trace }

// History returns one summary line per resolution committed with enter.
func (m *ExploreModel) History() []string { return m.committed }

func (m *ExploreModel) summary() string {
	if m.trace.Err != nil {
		return fmt.Sprintf("%s ✗ %v", m.trace.Specifier, m.trace.Err)
	}
	return fmt.Sprintf("%s → %s", m.trace.Specifier, urlutil.Serialize(m.trace.URL))
}

// View implements tea.Model.
func (m *ExploreModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	title := "import map explorer"
	if m.source != "" {
		title += " · " + m.source
	}
	b.WriteString(m.styles.title.Render(title))
	b.WriteString("\n\n")
	for _, in := range m.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	if m.baseErr != nil {
		b.WriteString(m.styles.fail.Render("referrer ignored: " + m.baseErr.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.Specifier() != "" {
		m.writeTrace(&b)
	}

	for _, line := range m.committed {
		b.WriteString(m.styles.muted.Render(line))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.label.Render("tab switch field • enter keep result • esc quit"))

	view := b.String()
	if m.width > 0 {
		view = lipgloss.NewStyle().MaxWidth(int(m.width)).Render(view)
	}
	return view
}

func (m *ExploreModel) writeTrace(b *strings.Builder) {
	t := m.trace
	if t.Err != nil {
		b.WriteString(m.styles.fail.Render("✗ " + t.Err.Error()))
	} else {
		b.WriteString(m.styles.ok.Render("→ " + urlutil.Serialize(t.URL)))
	}
	b.WriteString("\n")

	if t.FastPath {
		b.WriteString(m.styles.label.Render("  absolute URL, map not consulted"))
		b.WriteString("\n\n")
		return
	}

	deciding, _ := t.DecidingScope()
	for _, s := range t.Scopes {
		var line string
		switch {
		case !s.Matched:
			line = m.styles.muted.Render(fmt.Sprintf("  scope %s: does not apply", s.Prefix))
		case !s.Consulted:
			line = m.styles.muted.Render(fmt.Sprintf("  scope %s: not reached", s.Prefix))
		default:
			line = fmt.Sprintf("  scope %s: %s", s.Prefix, describeLookup(s.Result))
			if s.Prefix == deciding.Prefix && s.Result.Outcome != importmap.OutcomeAbsent {
				line = m.styles.deciding.Render(line)
			}
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if t.Imports != nil {
		fmt.Fprintf(b, "  imports: %s\n", describeLookup(*t.Imports))
	}
	b.WriteString("\n")
}

func describeLookup(r importmap.LookupResult) string {
	switch r.Outcome {
	case importmap.OutcomeMapped:
		return fmt.Sprintf("%q → %s", r.Key, urlutil.Serialize(r.URL))
	case importmap.OutcomeBlocked:
		return fmt.Sprintf("%q blocked (%s)", r.Key, r.Reason)
	default:
		return "no entry"
	}
}

// Explore runs the explorer until the user quits or ctx is done.
func Explore(ctx context.Context, opts ExploreOptions, in io.Reader, out io.Writer) (*ExploreModel, error) {
	p := tea.NewProgram(NewExploreModel(opts),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return nil, fmt.Errorf("explore: %w", err)
	}
	model, _ := final.(*ExploreModel)
	return model, nil
}
