package cli

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestDashboardModel_Init(t *testing.T) {
	m := newDashboardModel()

	if m.activePanel != panelGardens {
		t.Errorf("expected activePanel = %d, got %d", panelGardens, m.activePanel)
	}
	if !m.loading {
		t.Error("expected loading = true on init")
	}
	if m.taskCounts == nil {
		t.Error("expected taskCounts to be initialized")
	}

	// Init should return a command (loadData).
	if m.Init() == nil {
		t.Error("expected Init to return a non-nil command")
	}
}

func TestDashboardModel_KeyQ(t *testing.T) {
	m := newDashboardModel()
	m.loading = false

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected tea.Quit command from q key")
	}
	msg := cmd()
	if _, ok := msg.(tea.QuitMsg); !ok {
		t.Errorf("expected tea.QuitMsg, got %T", msg)
	}

	dm := updated.(dashboardModel)
	if dm.activePanel != panelGardens {
		t.Errorf("expected activePanel unchanged, got %d", dm.activePanel)
	}
}

func TestDashboardModel_KeyTab(t *testing.T) {
	m := newDashboardModel()

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if cmd != nil {
		t.Error("expected no command from tab key")
	}
	dm := updated.(dashboardModel)
	if dm.activePanel != panelTasks {
		t.Errorf("expected panel %d after first tab, got %d", panelTasks, dm.activePanel)
	}

	updated, _ = dm.Update(tea.KeyMsg{Type: tea.KeyTab})
	dm = updated.(dashboardModel)
	if dm.activePanel != panelMetrics {
		t.Errorf("expected panel %d after second tab, got %d", panelMetrics, dm.activePanel)
	}

	// Tab wraps around.
	updated, _ = dm.Update(tea.KeyMsg{Type: tea.KeyTab})
	dm = updated.(dashboardModel)
	if dm.activePanel != panelGardens {
		t.Errorf("expected panel %d after wrap, got %d", panelGardens, dm.activePanel)
	}
}

func TestDashboardModel_KeyShiftTab(t *testing.T) {
	m := newDashboardModel()

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if cmd != nil {
		t.Error("expected no command from shift+tab")
	}
	dm := updated.(dashboardModel)
	if dm.activePanel != panelMetrics {
		t.Errorf("expected panel %d after shift+tab from 0, got %d", panelMetrics, dm.activePanel)
	}
}

func TestDashboardModel_KeyR(t *testing.T) {
	m := newDashboardModel()
	m.loading = false

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	dm := updated.(dashboardModel)
	if !dm.loading {
		t.Error("expected loading = true after pressing r")
	}
	if cmd == nil {
		t.Error("expected a command (loadData) from r key")
	}
}

func TestDashboardModel_DataLoaded(t *testing.T) {
	m := newDashboardModel()

	msg := dataLoadedMsg{
		gardens: []gardenSnapshot{
			{id: "backyard", area: 100, plants: 2, utilization: 72, hasLayout: true},
			{id: "patio", area: 30, plants: 1},
		},
		taskCounts: map[string]int{"pending": 5, "done": 2},
		overdue:    1,
		metrics: &metricsSnapshot{
			gardensOptimized:   3,
			meanUtilization:    64.5,
			schedulesGenerated: 2,
			tasksCompleted:     4,
			eventCount:         42,
		},
	}

	updated, cmd := m.Update(msg)
	if cmd != nil {
		t.Error("expected no command after dataLoadedMsg")
	}

	dm := updated.(dashboardModel)
	if dm.loading {
		t.Error("expected loading = false after data loaded")
	}
	if dm.err != nil {
		t.Errorf("expected no error, got: %v", dm.err)
	}
	if len(dm.gardens) != 2 {
		t.Errorf("expected 2 gardens, got %d", len(dm.gardens))
	}
	if dm.taskCounts["pending"] != 5 {
		t.Errorf("expected pending = 5, got %d", dm.taskCounts["pending"])
	}
	if dm.overdue != 1 {
		t.Errorf("expected overdue = 1, got %d", dm.overdue)
	}
	if dm.metricsData == nil || dm.metricsData.eventCount != 42 {
		t.Errorf("unexpected metrics snapshot: %+v", dm.metricsData)
	}
}

func TestDashboardModel_DataLoadedError(t *testing.T) {
	m := newDashboardModel()

	updated, _ := m.Update(dataLoadedMsg{err: errors.New("boom")})
	dm := updated.(dashboardModel)
	if dm.loading {
		t.Error("expected loading = false after error")
	}
	if dm.err == nil {
		t.Error("expected error to be recorded")
	}

	dm.width = 80
	if !strings.Contains(dm.View(), "boom") {
		t.Error("expected error to appear in the view")
	}
}

func TestDashboardModel_View(t *testing.T) {
	m := newDashboardModel()
	m.loading = false
	m.width = 80
	m.height = 24
	m.gardens = []gardenSnapshot{{id: "backyard", area: 100, plants: 2, utilization: 72, hasLayout: true}}
	m.taskCounts = map[string]int{"pending": 3, "done": 1}
	m.overdue = 1
	m.metricsData = &metricsSnapshot{gardensOptimized: 2, meanUtilization: 72, eventCount: 10}

	view := m.View()
	for _, want := range []string{"Trellis Dashboard", "backyard", "pending", "overdue", "Metrics"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestDashboardLoadData(t *testing.T) {
	tmpDir := setupServices(t)
	registerGarden(t, tmpDir)
	if err := optimizeCmd.RunE(optimizeCmd, []string{"backyard"}); err != nil {
		t.Fatalf("optimize: %v", err)
	}

	msg := loadData()
	loaded, ok := msg.(dataLoadedMsg)
	if !ok {
		t.Fatalf("expected dataLoadedMsg, got %T", msg)
	}
	if loaded.err != nil {
		t.Fatalf("loadData error: %v", loaded.err)
	}
	if len(loaded.gardens) != 1 {
		t.Fatalf("expected 1 garden, got %d", len(loaded.gardens))
	}
	g := loaded.gardens[0]
	if !g.hasLayout || g.utilization <= 0 {
		t.Errorf("expected optimized garden snapshot, got %+v", g)
	}
}
