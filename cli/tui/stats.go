package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/justapithecus/objext/cli/reader"
)

// StatsModel is a Bubble Tea model for stats views.
type StatsModel struct {
	viewType string
	data     any
	width    int
	height   int
	quitting bool
}

// NewStatsModel creates a new stats model.
func NewStatsModel(viewType string, data any) StatsModel {
	return StatsModel{
		viewType: viewType,
		data:     data,
	}
}

// Init implements tea.Model.
func (m StatsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m StatsModel) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.viewType {
	case ViewStatsMetrics:
		content = m.renderStatsMetrics()
	default:
		content = fmt.Sprintf("Unknown view type: %s", m.viewType)
	}

	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	return content + "\n" + help
}

func (m StatsModel) renderStatsMetrics() string {
	data, ok := m.data.(*reader.MetricsSnapshot)
	if !ok {
		return "Invalid data type for stats_metrics"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Job Metrics"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render("Job ID:"), ValueStyle.Render(data.JobID)))
	b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render("Analyzer:"),
		ValueStyle.Render(data.Analyzer+" / "+data.Collection)))
	b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render("Sink:"),
		ValueStyle.Render(data.SinkMode+" ("+data.Policy+")")))
	b.WriteString(fmt.Sprintf("%s %s\n\n", LabelStyle.Render("Completed:"), ValueStyle.Render(data.CompletedAt)))

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderStatBox("Events", data.EventsRead, highlightColor),
		m.renderStatBox("With Errors", data.EventsWithErrors, warningColor),
		m.renderStatBox("Records", data.RecordsPersisted, successColor),
	))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderStatBox("Objects", data.ObjectsResolved, highlightColor),
		m.renderStatBox("Truncated", data.RecordsTruncated, warningColor),
		m.renderStatBox("Write Failures", data.SinkWriteFailure, errorColor),
	))

	if len(data.ResolveErrors) > 0 {
		b.WriteString("\n\n")
		b.WriteString(TitleStyle.Render("Resolve Errors"))
		b.WriteString("\n")
		kinds := make([]string, 0, len(data.ResolveErrors))
		for k := range data.ResolveErrors {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			b.WriteString(fmt.Sprintf("%s %s\n",
				LabelStyle.Render("  "+k+":"),
				ErrorStyle.Render(fmt.Sprintf("%d", data.ResolveErrors[k]))))
		}
	}

	return b.String()
}

func (m StatsModel) renderStatBox(label string, value int64, color lipgloss.Color) string {
	boxStyle := StatBoxStyle.BorderForeground(color)

	valueStr := StatValueStyle.Foreground(color).Render(fmt.Sprintf("%d", value))
	labelStr := StatLabelStyle.Render(label)

	content := lipgloss.JoinVertical(lipgloss.Center, valueStr, labelStr)

	return boxStyle.Render(content)
}

// RunStatsTUI runs the stats TUI.
func RunStatsTUI(viewType string, data any) error {
	model := NewStatsModel(viewType, data)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderStatsStatic renders stats data without full TUI (for fallback).
func RenderStatsStatic(viewType string, data any) string {
	model := NewStatsModel(viewType, data)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
