// Package mcp provides an MCP (Model Context Protocol) server that exposes
// trellis functionality as MCP tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/calebshay/trellis/internal/core"
	"github.com/calebshay/trellis/internal/observability"
	"github.com/calebshay/trellis/internal/storage"
	"github.com/calebshay/trellis/pkg/models"
	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps trellis services and exposes them as MCP tools.
type Server struct {
	server      *gomcp.Server
	gardenMgr   storage.GardenManager
	scheduleMgr storage.ScheduleManager
	layoutMgr   storage.LayoutManager
	optimizer   core.LayoutOptimizer
	scheduleGen core.ScheduleGenerator
	metricsCalc observability.MetricsCalculator
	layoutTTL   time.Duration
}

// NewServer creates a new MCP server with the given trellis service
// dependencies. metricsCalc may be nil if observability is disabled.
func NewServer(gardenMgr storage.GardenManager, scheduleMgr storage.ScheduleManager, layoutMgr storage.LayoutManager, optimizer core.LayoutOptimizer, scheduleGen core.ScheduleGenerator, metricsCalc observability.MetricsCalculator, layoutTTL time.Duration, version string) *Server {
	if version == "" {
		version = "dev"
	}
	if layoutTTL <= 0 {
		layoutTTL = core.DefaultLayoutTTL
	}

	s := &Server{
		gardenMgr:   gardenMgr,
		scheduleMgr: scheduleMgr,
		layoutMgr:   layoutMgr,
		optimizer:   optimizer,
		scheduleGen: scheduleGen,
		metricsCalc: metricsCalc,
		layoutTTL:   layoutTTL,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "trellis", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on the given transport, blocking until the client
// disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type optimizeGardenInput struct {
	GardenID string `json:"garden_id" jsonschema:"required,the unique garden identifier"`
	Force    bool   `json:"force,omitempty" jsonschema:"recompute even when a fresh layout for the unchanged garden exists"`
}

type zoneLayoutOutput struct {
	ZoneID   string   `json:"zone_id"`
	Area     float64  `json:"area_sq_ft"`
	Sunlight string   `json:"sunlight"`
	PlantIDs []string `json:"plant_ids"`
	UsedArea float64  `json:"used_area_sq_ft"`
}

type layoutOutput struct {
	GardenID           string             `json:"garden_id"`
	Zones              []zoneLayoutOutput `json:"zones"`
	UnplacedPlantIDs   []string           `json:"unplaced_plant_ids,omitempty"`
	UtilizationPercent float64            `json:"utilization_percent"`
	GeneratedAt        string             `json:"generated_at"`
	FromCache          bool               `json:"from_cache"`
}

type getLayoutInput struct {
	GardenID string `json:"garden_id" jsonschema:"required,the unique garden identifier"`
}

type listCareTasksInput struct {
	PlantID     string `json:"plant_id,omitempty" jsonschema:"filter tasks by plant ID"`
	TaskType    string `json:"task_type,omitempty" jsonschema:"filter tasks by type (watering, fertilizing, pruning, harvesting, pest_control, weeding, soil_amendment, support_adjustment)"`
	PendingOnly bool   `json:"pending_only,omitempty" jsonschema:"return only tasks that are not completed"`
	OverdueOnly bool   `json:"overdue_only,omitempty" jsonschema:"return only tasks past their due date plus grace period"`
}

type careTaskOutput struct {
	ID            string `json:"id"`
	PlantID       string `json:"plant_id"`
	TaskType      string `json:"task_type"`
	DueDate       string `json:"due_date"`
	Completed     bool   `json:"completed"`
	CompletedDate string `json:"completed_date,omitempty"`
	Priority      int    `json:"priority"`
	Overdue       bool   `json:"overdue"`
	Notes         string `json:"notes,omitempty"`
}

type listCareTasksOutput struct {
	Tasks []careTaskOutput `json:"tasks"`
	Count int              `json:"count"`
}

type completeCareTaskInput struct {
	TaskID         string `json:"task_id" jsonschema:"required,the unique care task identifier (e.g. tomato-1-watering-1)"`
	CompletionDate string `json:"completion_date,omitempty" jsonschema:"completion date in RFC 3339 or 2006-01-02 form. Defaults to now."`
}

type completeCareTaskOutput struct {
	Message  string          `json:"message"`
	NextTask *careTaskOutput `json:"next_task,omitempty"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	GardensCreated     int            `json:"gardens_created"`
	GardensOptimized   int            `json:"gardens_optimized"`
	MeanUtilization    float64        `json:"mean_utilization"`
	SchedulesGenerated int            `json:"schedules_generated"`
	TasksCompleted     int            `json:"tasks_completed"`
	TasksRescheduled   int            `json:"tasks_rescheduled"`
	TasksByType        map[string]int `json:"tasks_by_type"`
	RemindersQueued    int            `json:"reminders_queued"`
	EventCount         int            `json:"event_count"`
	OldestEvent        string         `json:"oldest_event,omitempty"`
	NewestEvent        string         `json:"newest_event,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "optimize_garden",
		Description: "Compute the space-optimized plant layout for a garden, honoring sunlight needs and companion constraints. Reuses a fresh stored layout unless force is set.",
	}, s.handleOptimizeGarden)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_layout",
		Description: "Get the stored layout for a garden. Fails if no layout exists or the stored one is stale or out of date with the garden.",
	}, s.handleGetLayout)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_care_tasks",
		Description: "List care tasks with optional plant, type, pending, and overdue filters. Tasks are ordered by due date.",
	}, s.handleListCareTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "complete_care_task",
		Description: "Mark a care task completed. Recurring task types (watering, fertilizing) get a follow-up task scheduled from the completion date.",
	}, s.handleCompleteCareTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get aggregated metrics from the event log, including optimization runs, mean utilization, and task completions.",
	}, s.handleGetMetrics)
}

// --- Tool handlers ---

func (s *Server) handleOptimizeGarden(_ context.Context, _ *gomcp.CallToolRequest, input optimizeGardenInput) (*gomcp.CallToolResult, layoutOutput, error) {
	if input.GardenID == "" {
		return errorResult("garden_id is required"), layoutOutput{}, nil
	}

	garden, err := s.gardenMgr.GetGarden(input.GardenID)
	if err != nil {
		return errorResult(fmt.Sprintf("getting garden %s: %s", input.GardenID, err)), layoutOutput{}, nil
	}

	hash, err := core.GardenHash(*garden)
	if err != nil {
		return errorResult(fmt.Sprintf("hashing garden %s: %s", input.GardenID, err)), layoutOutput{}, nil
	}

	if !input.Force {
		if cached, ok := s.layoutMgr.GetFresh(garden.ID, hash, time.Now().UTC(), s.layoutTTL); ok {
			return nil, layoutToOutput(cached, true), nil
		}
	}

	layout, err := s.optimizer.Optimize(*garden)
	if err != nil {
		return errorResult(fmt.Sprintf("optimizing garden %s: %s", input.GardenID, err)), layoutOutput{}, nil
	}
	layout.SourceHash = hash

	if err := s.layoutMgr.PutLayout(*layout); err != nil {
		return errorResult(fmt.Sprintf("storing layout for garden %s: %s", input.GardenID, err)), layoutOutput{}, nil
	}
	if err := s.layoutMgr.Save(); err != nil {
		return errorResult(fmt.Sprintf("saving layouts: %s", err)), layoutOutput{}, nil
	}

	return nil, layoutToOutput(layout, false), nil
}

func (s *Server) handleGetLayout(_ context.Context, _ *gomcp.CallToolRequest, input getLayoutInput) (*gomcp.CallToolResult, layoutOutput, error) {
	if input.GardenID == "" {
		return errorResult("garden_id is required"), layoutOutput{}, nil
	}

	garden, err := s.gardenMgr.GetGarden(input.GardenID)
	if err != nil {
		return errorResult(fmt.Sprintf("getting garden %s: %s", input.GardenID, err)), layoutOutput{}, nil
	}

	hash, err := core.GardenHash(*garden)
	if err != nil {
		return errorResult(fmt.Sprintf("hashing garden %s: %s", input.GardenID, err)), layoutOutput{}, nil
	}

	layout, ok := s.layoutMgr.GetFresh(garden.ID, hash, time.Now().UTC(), s.layoutTTL)
	if !ok {
		return errorResult(fmt.Sprintf("no fresh layout for garden %s: run optimize_garden first", input.GardenID)), layoutOutput{}, nil
	}

	return nil, layoutToOutput(layout, true), nil
}

func (s *Server) handleListCareTasks(_ context.Context, _ *gomcp.CallToolRequest, input listCareTasksInput) (*gomcp.CallToolResult, listCareTasksOutput, error) {
	filter := storage.TaskFilter{PlantID: input.PlantID}
	if input.TaskType != "" {
		taskType := models.CareTaskType(input.TaskType)
		if !taskType.Valid() {
			return errorResult(fmt.Sprintf("invalid task type %q", input.TaskType)), listCareTasksOutput{}, nil
		}
		filter.TaskType = taskType
	}
	if input.PendingOnly || input.OverdueOnly {
		pending := false
		filter.Completed = &pending
	}

	tasks, err := s.scheduleMgr.FilterTasks(filter)
	if err != nil {
		return errorResult(fmt.Sprintf("listing care tasks: %s", err)), listCareTasksOutput{}, nil
	}

	now := time.Now().UTC()
	out := listCareTasksOutput{Tasks: []careTaskOutput{}}
	for _, task := range tasks {
		overdue := s.scheduleGen.IsOverdue(task, now)
		if input.OverdueOnly && !overdue {
			continue
		}
		out.Tasks = append(out.Tasks, taskToOutput(task, overdue))
	}
	out.Count = len(out.Tasks)

	return nil, out, nil
}

func (s *Server) handleCompleteCareTask(_ context.Context, _ *gomcp.CallToolRequest, input completeCareTaskInput) (*gomcp.CallToolResult, completeCareTaskOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), completeCareTaskOutput{}, nil
	}

	completionDate := time.Now().UTC()
	if input.CompletionDate != "" {
		parsed, err := parseDate(input.CompletionDate)
		if err != nil {
			return errorResult(fmt.Sprintf("parsing completion date: %s", err)), completeCareTaskOutput{}, nil
		}
		completionDate = parsed
	}

	task, err := s.scheduleMgr.GetTask(input.TaskID)
	if err != nil {
		return errorResult(fmt.Sprintf("getting task %s: %s", input.TaskID, err)), completeCareTaskOutput{}, nil
	}

	plant, err := s.findPlant(task.PlantID)
	if err != nil {
		return errorResult(fmt.Sprintf("resolving plant %s for task %s: %s", task.PlantID, input.TaskID, err)), completeCareTaskOutput{}, nil
	}

	done, next, err := s.scheduleGen.CompleteTask(*task, *plant, completionDate)
	if err != nil {
		return errorResult(fmt.Sprintf("completing task %s: %s", input.TaskID, err)), completeCareTaskOutput{}, nil
	}

	if err := s.scheduleMgr.UpdateTask(done); err != nil {
		return errorResult(fmt.Sprintf("updating task %s: %s", input.TaskID, err)), completeCareTaskOutput{}, nil
	}
	if next != nil {
		if err := s.scheduleMgr.AddTask(*next); err != nil {
			return errorResult(fmt.Sprintf("adding follow-up task %s: %s", next.ID, err)), completeCareTaskOutput{}, nil
		}
	}
	if err := s.scheduleMgr.Save(); err != nil {
		return errorResult(fmt.Sprintf("saving tasks: %s", err)), completeCareTaskOutput{}, nil
	}

	out := completeCareTaskOutput{
		Message: fmt.Sprintf("task %s completed on %s", done.ID, completionDate.Format("2006-01-02")),
	}
	if next != nil {
		nextOut := taskToOutput(*next, false)
		out.NextTask = &nextOut
	}
	return nil, out, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (observability may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		GardensCreated:     metrics.GardensCreated,
		GardensOptimized:   metrics.GardensOptimized,
		MeanUtilization:    metrics.MeanUtilization,
		SchedulesGenerated: metrics.SchedulesGenerated,
		TasksCompleted:     metrics.TasksCompleted,
		TasksRescheduled:   metrics.TasksRescheduled,
		TasksByType:        metrics.TasksByType,
		RemindersQueued:    metrics.RemindersQueued,
		EventCount:         metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

// --- Helpers ---

// findPlant searches all gardens for the plant with the given ID. The garden
// store enforces cross-garden plant-ID uniqueness, so at most one garden can
// match.
func (s *Server) findPlant(plantID string) (*models.Plant, error) {
	gardens, err := s.gardenMgr.GetAllGardens()
	if err != nil {
		return nil, fmt.Errorf("listing gardens: %w", err)
	}
	for _, garden := range gardens {
		if plant := garden.PlantByID(plantID); plant != nil {
			return plant, nil
		}
	}
	return nil, fmt.Errorf("plant %s not found in any garden", plantID)
}

func layoutToOutput(layout *models.Layout, fromCache bool) layoutOutput {
	out := layoutOutput{
		GardenID:           layout.GardenID,
		Zones:              make([]zoneLayoutOutput, len(layout.Zones)),
		UnplacedPlantIDs:   layout.UnplacedPlantIDs,
		UtilizationPercent: layout.SpaceUtilizationPercent,
		GeneratedAt:        layout.GeneratedAt.Format(time.RFC3339),
		FromCache:          fromCache,
	}
	for i, zl := range layout.Zones {
		out.Zones[i] = zoneLayoutOutput{
			ZoneID:   zl.ZoneID,
			Area:     zl.Area,
			Sunlight: string(zl.SunlightCondition),
			PlantIDs: zl.PlantIDs,
			UsedArea: zl.UsedArea,
		}
	}
	return out
}

func taskToOutput(task models.CareTask, overdue bool) careTaskOutput {
	out := careTaskOutput{
		ID:        task.ID,
		PlantID:   task.PlantID,
		TaskType:  string(task.TaskType),
		DueDate:   task.DueDate.Format(time.RFC3339),
		Completed: task.Completed,
		Priority:  task.Priority,
		Overdue:   overdue,
		Notes:     task.Notes,
	}
	if task.CompletedDate != nil {
		out.CompletedDate = task.CompletedDate.Format(time.RFC3339)
	}
	return out
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{TasksByType: make(map[string]int)}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseDate accepts either a full RFC 3339 timestamp or a bare 2006-01-02
// date.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use RFC 3339 or 2006-01-02)", s)
	}
	return t, nil
}

// parseSince parses a human-friendly duration string like "7d", "30d", or
// "24h" into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
