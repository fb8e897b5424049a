package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/justapithecus/objext/cli/reader"
)

// InspectModel is a Bubble Tea model for the store inspect view.
// Up and down move the collection cursor.
type InspectModel struct {
	viewType string
	data     any
	cursor   int
	width    int
	height   int
	quitting bool
}

// NewInspectModel creates a new inspect model.
func NewInspectModel(viewType string, data any) InspectModel {
	return InspectModel{
		viewType: viewType,
		data:     data,
	}
}

// Init implements tea.Model.
func (m InspectModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if n := m.collectionCount(); m.cursor < n-1 {
				m.cursor++
			}
		}
	}

	return m, nil
}

func (m InspectModel) collectionCount() int {
	if data, ok := m.data.(*reader.InspectStoreResponse); ok {
		return len(data.Collections)
	}
	return 0
}

// View implements tea.Model.
func (m InspectModel) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.viewType {
	case ViewInspectStore:
		content = m.renderInspectStore()
	default:
		content = fmt.Sprintf("Unknown view type: %s", m.viewType)
	}

	help := HelpStyle.Render("↑/↓ select collection • q quit")
	return content + "\n" + help
}

func (m InspectModel) renderInspectStore() string {
	data, ok := m.data.(*reader.InspectStoreResponse)
	if !ok {
		return "Invalid data type for inspect_store"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Event Store"))
	b.WriteString("\n\n")

	events := fmt.Sprintf("%d", data.Events)
	if data.Truncated {
		events += " " + OutcomeStyle("truncated").Render("(limit reached)")
	}

	rows := [][]string{
		{"Input", data.Input},
		{"Format", fmt.Sprintf("v%d", data.FormatVersion)},
		{"Producer", data.Producer},
		{"Events", events},
		{"Runs", formatRuns(data.Runs)},
	}
	if data.FirstEvent != nil {
		rows = append(rows, []string{"First Event", data.FirstEvent.String()})
	}
	if data.LastEvent != nil {
		rows = append(rows, []string{"Last Event", data.LastEvent.String()})
	}
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render(row[0]+":"), ValueStyle.Render(row[1])))
	}

	b.WriteString("\n")
	b.WriteString(TitleStyle.Render("Collections"))
	b.WriteString("\n")
	if len(data.Collections) == 0 {
		b.WriteString(HelpStyle.Render("(none)"))
		return BoxStyle.Render(b.String())
	}

	header := fmt.Sprintf("  %-16s %-9s %8s %8s %6s %7s", "NAME", "KIND", "EVENTS", "OBJECTS", "MAX", "MEAN")
	b.WriteString(LabelStyle.Width(0).Render(header))
	b.WriteString("\n")
	for i, c := range data.Collections {
		line := fmt.Sprintf("%-16s %-9s %8d %8d %6d %7.2f",
			c.Name, c.Kind, c.Events, c.Objects, c.MaxPerEvent, c.MeanPerEvent())
		if i == m.cursor {
			b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(highlightColor).Render("> " + line))
		} else {
			b.WriteString(ValueStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	if sel := data.Collections[min(m.cursor, len(data.Collections)-1)]; sel.Global > 0 {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%s %s\n",
			LabelStyle.Render("Global muons:"),
			ValueStyle.Render(fmt.Sprintf("%d of %d", sel.Global, sel.Objects))))
	}

	return BoxStyle.Render(b.String())
}

func formatRuns(runs []uint64) string {
	if len(runs) == 0 {
		return "-"
	}
	parts := make([]string, len(runs))
	for i, r := range runs {
		parts[i] = fmt.Sprintf("%d", r)
	}
	return strings.Join(parts, ", ")
}

// keyMap defines key bindings.
type keyMap struct {
	Quit key.Binding
	Up   key.Binding
	Down key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
}

// RunInspectTUI runs the inspect TUI.
func RunInspectTUI(viewType string, data any) error {
	model := NewInspectModel(viewType, data)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderInspectStatic renders inspect data without full TUI (for fallback).
func RenderInspectStatic(viewType string, data any) string {
	model := NewInspectModel(viewType, data)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
