package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/calebshay/trellis/internal/core"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// Dashboard panel indices.
const (
	panelGardens = iota
	panelTasks
	panelMetrics
	panelCount
)

type dashboardModel struct {
	activePanel int
	width       int
	height      int

	// Data.
	gardens     []gardenSnapshot
	taskCounts  map[string]int
	overdue     int
	metricsData *metricsSnapshot

	// State.
	loading bool
	err     error
}

type gardenSnapshot struct {
	id          string
	area        float64
	plants      int
	utilization float64
	hasLayout   bool
}

type metricsSnapshot struct {
	gardensOptimized   int
	meanUtilization    float64
	schedulesGenerated int
	tasksCompleted     int
	eventCount         int
}

// dataLoadedMsg carries loaded data back to the model.
type dataLoadedMsg struct {
	gardens    []gardenSnapshot
	taskCounts map[string]int
	overdue    int
	metrics    *metricsSnapshot
	err        error
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("28")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("28")).
				Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("28")).
			MarginBottom(1)

	taskPending = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	taskDone    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	taskOverdue = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel() dashboardModel {
	return dashboardModel{
		activePanel: panelGardens,
		loading:     true,
		taskCounts:  make(map[string]int),
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return loadData
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "r":
			m.loading = true
			return m, loadData
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dataLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.gardens = msg.gardens
		m.taskCounts = msg.taskCounts
		m.overdue = msg.overdue
		m.metricsData = msg.metrics
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" Trellis Dashboard ")
	help := helpStyle.Render("tab: switch panel | r: refresh | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading data...\n\n%s", title, help)
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	gardensPanel := m.renderGardensPanel()
	tasksPanel := m.renderTasksPanel()
	metricsPanel := m.renderMetricsPanel()

	// Available width for panels after accounting for margins.
	availableWidth := m.width - 2

	var body string
	if availableWidth > 120 {
		// Horizontal layout: three columns.
		colWidth := availableWidth / 3
		gardensPanel = m.applyPanelStyle(panelGardens, gardensPanel, colWidth-4)
		tasksPanel = m.applyPanelStyle(panelTasks, tasksPanel, colWidth-4)
		metricsPanel = m.applyPanelStyle(panelMetrics, metricsPanel, colWidth-4)
		body = lipgloss.JoinHorizontal(lipgloss.Top, gardensPanel, tasksPanel, metricsPanel)
	} else {
		// Vertical layout: stacked.
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		gardensPanel = m.applyPanelStyle(panelGardens, gardensPanel, panelWidth)
		tasksPanel = m.applyPanelStyle(panelTasks, tasksPanel, panelWidth)
		metricsPanel = m.applyPanelStyle(panelMetrics, metricsPanel, panelWidth)
		body = lipgloss.JoinVertical(lipgloss.Left, gardensPanel, tasksPanel, metricsPanel)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderGardensPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Gardens"))
	b.WriteString("\n")

	if len(m.gardens) == 0 {
		b.WriteString("  No gardens registered.")
		return b.String()
	}

	for _, g := range m.gardens {
		util := "unoptimized"
		if g.hasLayout {
			util = fmt.Sprintf("%.0f%% used", g.utilization)
		}
		b.WriteString(fmt.Sprintf("  %-14s %5.0f sq ft  %2d plants  %s\n", g.id, g.area, g.plants, util))
	}

	return b.String()
}

func (m dashboardModel) renderTasksPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Care Tasks"))
	b.WriteString("\n")

	total := 0
	for _, c := range m.taskCounts {
		total += c
	}
	if total == 0 {
		b.WriteString("  No care tasks scheduled.")
		return b.String()
	}

	if m.overdue > 0 {
		b.WriteString(taskOverdue.Render(fmt.Sprintf("  %-14s %d", "overdue", m.overdue)))
		b.WriteString("\n")
	}
	if c := m.taskCounts["pending"]; c > 0 {
		b.WriteString(taskPending.Render(fmt.Sprintf("  %-14s %d", "pending", c)))
		b.WriteString("\n")
	}
	if c := m.taskCounts["done"]; c > 0 {
		b.WriteString(taskDone.Render(fmt.Sprintf("  %-14s %d", "done", c)))
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("\n  Total: %d", total))

	return b.String()
}

func (m dashboardModel) renderMetricsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Metrics (7d)"))
	b.WriteString("\n")

	if m.metricsData == nil {
		b.WriteString("  No metrics available.")
		return b.String()
	}

	md := m.metricsData
	b.WriteString(fmt.Sprintf("  %-16s %d\n", "Events", md.eventCount))
	b.WriteString(fmt.Sprintf("  %-16s %d\n", "Optimizations", md.gardensOptimized))
	b.WriteString(fmt.Sprintf("  %-16s %.1f%%\n", "Mean util.", md.meanUtilization))
	b.WriteString(fmt.Sprintf("  %-16s %d\n", "Schedules", md.schedulesGenerated))
	b.WriteString(fmt.Sprintf("  %-16s %d\n", "Completed", md.tasksCompleted))

	return b.String()
}

func loadData() tea.Msg {
	result := dataLoadedMsg{
		taskCounts: make(map[string]int),
	}

	now := time.Now().UTC()

	// Load garden summaries, joining in the stored layout when it exists.
	if GardenMgr != nil {
		gardens, err := GardenMgr.GetAllGardens()
		if err != nil {
			result.err = fmt.Errorf("loading gardens: %w", err)
			return result
		}
		for _, g := range gardens {
			snap := gardenSnapshot{id: g.ID, area: g.Area, plants: len(g.Plants)}
			if LayoutMgr != nil {
				if hash, err := core.GardenHash(g); err == nil {
					if layout, ok := LayoutMgr.GetFresh(g.ID, hash, now, LayoutTTL); ok {
						snap.hasLayout = true
						snap.utilization = layout.SpaceUtilizationPercent
					}
				}
			}
			result.gardens = append(result.gardens, snap)
		}
	}

	// Load task counts from ScheduleMgr.
	if ScheduleMgr != nil {
		tasks, err := ScheduleMgr.GetAllTasks()
		if err != nil {
			result.err = fmt.Errorf("loading tasks: %w", err)
			return result
		}
		for _, task := range tasks {
			if task.Completed {
				result.taskCounts["done"]++
				continue
			}
			result.taskCounts["pending"]++
			if ScheduleGen != nil && ScheduleGen.IsOverdue(task, now) {
				result.overdue++
			}
		}
	}

	// Load metrics from MetricsCalc.
	if MetricsCalc != nil {
		since := now.AddDate(0, 0, -7)
		metrics, err := MetricsCalc.Calculate(since)
		if err != nil {
			result.err = fmt.Errorf("loading metrics: %w", err)
			return result
		}
		result.metrics = &metricsSnapshot{
			gardensOptimized:   metrics.GardensOptimized,
			meanUtilization:    metrics.MeanUtilization,
			schedulesGenerated: metrics.SchedulesGenerated,
			tasksCompleted:     metrics.TasksCompleted,
			eventCount:         metrics.EventCount,
		}
	}

	return result
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI dashboard for gardens, tasks, and metrics",
	Long: `Launch an interactive terminal dashboard showing registered gardens,
care task state, and event-log metrics.

Navigate between panels with Tab, refresh with r, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if GardenMgr == nil {
			return fmt.Errorf("garden manager not initialized")
		}
		p := tea.NewProgram(newDashboardModel(), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
