package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/justapithecus/objext/cli/reader"
)

func TestIsTUISupported(t *testing.T) {
	tests := []struct {
		viewType string
		want     bool
	}{
		{"inspect_store", true},
		{"stats_metrics", true},

		// Not supported: job and utility commands
		{"run", false},
		{"generate", false},
		{"version", false},

		// Not supported: unknown
		{"inspect_other", false},
		{"unknown", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.viewType, func(t *testing.T) {
			got := IsTUISupported(tt.viewType)
			if got != tt.want {
				t.Errorf("IsTUISupported(%q) = %v, want %v", tt.viewType, got, tt.want)
			}
		})
	}
}

func TestSupportedTUIViews(t *testing.T) {
	views := SupportedTUIViews()

	if len(views) != 2 {
		t.Errorf("SupportedTUIViews() returned %d views, expected 2", len(views))
	}

	for _, v := range views {
		if !IsTUISupported(v) {
			t.Errorf("SupportedTUIViews() returned %q but IsTUISupported returns false", v)
		}
	}
}

func TestRun_UnsupportedViewType(t *testing.T) {
	err := Run("version", nil)
	if err == nil {
		t.Error("Expected error for unsupported view type")
	}
}

func sampleInspect() *reader.InspectStoreResponse {
	return &reader.InspectStoreResponse{
		Input:         "file:///data/events.objx",
		FormatVersion: 1,
		Producer:      "objext-test",
		Events:        3,
		Runs:          []uint64{1, 2},
		FirstEvent:    &reader.EventRef{Run: 1, Lumi: 1, Event: 10},
		LastEvent:     &reader.EventRef{Run: 2, Lumi: 4, Event: 99},
		Collections: []reader.CollectionSummary{
			{Name: "electrons", Kind: "electron", Events: 3, Objects: 4, MaxPerEvent: 2},
			{Name: "muons", Kind: "muon", Events: 2, Objects: 5, MaxPerEvent: 3, Global: 2},
		},
	}
}

func TestRenderInspectStatic(t *testing.T) {
	out := RenderInspectStatic(ViewInspectStore, sampleInspect())

	for _, want := range []string{"Event Store", "objext-test", "1:1:10", "2:4:99", "electrons", "muons"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect view missing %q:\n%s", want, out)
		}
	}
}

func TestRenderInspectStatic_WrongType(t *testing.T) {
	out := RenderInspectStatic(ViewInspectStore, "not a response")
	if !strings.Contains(out, "Invalid data type") {
		t.Errorf("expected invalid data message, got:\n%s", out)
	}
}

func TestInspectModel_CursorBounds(t *testing.T) {
	var m tea.Model = NewInspectModel(ViewInspectStore, sampleInspect())

	up := tea.KeyMsg{Type: tea.KeyUp}
	down := tea.KeyMsg{Type: tea.KeyDown}

	m, _ = m.Update(up)
	if got := m.(InspectModel).cursor; got != 0 {
		t.Errorf("cursor after up at top = %d, want 0", got)
	}

	for range 5 {
		m, _ = m.Update(down)
	}
	if got := m.(InspectModel).cursor; got != 1 {
		t.Errorf("cursor after repeated down = %d, want 1", got)
	}

	// Selecting muons shows the global count.
	if !strings.Contains(m.View(), "Global muons") {
		t.Errorf("expected global muon line for selected muon collection")
	}
}

func TestInspectModel_Quit(t *testing.T) {
	m := NewInspectModel(ViewInspectStore, sampleInspect())
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if next.View() != "" {
		t.Errorf("expected empty view after quit")
	}
}

func TestRenderStatsStatic(t *testing.T) {
	snap := &reader.MetricsSnapshot{
		CompletedAt:      "2026-01-02T03:04:05Z",
		JobID:            "job-1",
		Analyzer:         "muon",
		Collection:       "muons",
		Policy:           "strict",
		SinkMode:         "lode",
		EventsRead:       42,
		RecordsPersisted: 17,
		ResolveErrors:    map[string]int64{"missing": 2},
	}

	out := RenderStatsStatic(ViewStatsMetrics, snap)
	for _, want := range []string{"Job Metrics", "job-1", "muon / muons", "42", "17", "Resolve Errors", "missing"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats view missing %q:\n%s", want, out)
		}
	}
}

func TestRenderStatsStatic_UnknownView(t *testing.T) {
	out := RenderStatsStatic("stats_other", &reader.MetricsSnapshot{})
	if !strings.Contains(out, "Unknown view type") {
		t.Errorf("expected unknown view message, got:\n%s", out)
	}
}
