package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/calebshay/trellis/pkg/models"
	"gopkg.in/yaml.v3"
)

// TaskFilter specifies criteria for filtering care tasks. All specified
// fields use AND logic: a task must match every criterion.
type TaskFilter struct {
	PlantID   string
	TaskType  models.CareTaskType
	Completed *bool
	DueBefore *time.Time
}

// ScheduleFile represents the top-level structure of tasks.yaml.
type ScheduleFile struct {
	Version string                     `yaml:"version"`
	Tasks   map[string]models.CareTask `yaml:"tasks"`
}

// PruneResult reports what retention housekeeping removed.
type PruneResult struct {
	CompletedRemoved int
	StaleRemoved     int
}

// ScheduleManager defines the interface for the care-task registry.
type ScheduleManager interface {
	AddTask(task models.CareTask) error
	UpdateTask(task models.CareTask) error
	GetTask(taskID string) (*models.CareTask, error)
	GetAllTasks() ([]models.CareTask, error)
	FilterTasks(filter TaskFilter) ([]models.CareTask, error)
	Prune(now time.Time, retention models.RetentionSettings) (PruneResult, error)
	Load() error
	Save() error
}

type fileScheduleManager struct {
	basePath string
	data     ScheduleFile
}

// NewScheduleManager creates a ScheduleManager backed by a tasks.yaml file
// in the given base directory.
func NewScheduleManager(basePath string) ScheduleManager {
	return &fileScheduleManager{
		basePath: basePath,
		data: ScheduleFile{
			Version: "1.0",
			Tasks:   make(map[string]models.CareTask),
		},
	}
}

func (m *fileScheduleManager) filePath() string {
	return filepath.Join(m.basePath, "tasks.yaml")
}

func (m *fileScheduleManager) AddTask(task models.CareTask) error {
	if task.ID == "" {
		return fmt.Errorf("adding task: ID must not be empty")
	}
	if _, exists := m.data.Tasks[task.ID]; exists {
		return fmt.Errorf("adding task: task %s already exists", task.ID)
	}
	m.data.Tasks[task.ID] = task
	return nil
}

func (m *fileScheduleManager) UpdateTask(task models.CareTask) error {
	if _, exists := m.data.Tasks[task.ID]; !exists {
		return fmt.Errorf("updating task: task %s not found", task.ID)
	}
	m.data.Tasks[task.ID] = task
	return nil
}

func (m *fileScheduleManager) GetTask(taskID string) (*models.CareTask, error) {
	task, exists := m.data.Tasks[taskID]
	if !exists {
		return nil, fmt.Errorf("getting task: task %s not found", taskID)
	}
	return &task, nil
}

// GetAllTasks returns all tasks sorted by due date, then ID, for stable
// output.
func (m *fileScheduleManager) GetAllTasks() ([]models.CareTask, error) {
	tasks := make([]models.CareTask, 0, len(m.data.Tasks))
	for _, t := range m.data.Tasks {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].DueDate.Equal(tasks[j].DueDate) {
			return tasks[i].DueDate.Before(tasks[j].DueDate)
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

func (m *fileScheduleManager) FilterTasks(filter TaskFilter) ([]models.CareTask, error) {
	all, err := m.GetAllTasks()
	if err != nil {
		return nil, err
	}

	var matched []models.CareTask
	for _, t := range all {
		if filter.PlantID != "" && t.PlantID != filter.PlantID {
			continue
		}
		if filter.TaskType != "" && t.TaskType != filter.TaskType {
			continue
		}
		if filter.Completed != nil && t.Completed != *filter.Completed {
			continue
		}
		if filter.DueBefore != nil && !t.DueDate.Before(*filter.DueBefore) {
			continue
		}
		matched = append(matched, t)
	}
	return matched, nil
}

// Prune applies the retention policy: completed tasks are dropped once their
// completion date is older than the completed window, and incomplete tasks
// are dropped once their due date is older than the stale window.
func (m *fileScheduleManager) Prune(now time.Time, retention models.RetentionSettings) (PruneResult, error) {
	if retention.CompletedDays <= 0 || retention.StaleDays <= 0 {
		return PruneResult{}, fmt.Errorf("pruning tasks: retention windows must be positive, got %+v", retention)
	}

	completedCutoff := now.AddDate(0, 0, -retention.CompletedDays)
	staleCutoff := now.AddDate(0, 0, -retention.StaleDays)

	var result PruneResult
	for id, t := range m.data.Tasks {
		switch {
		case t.Completed && t.CompletedDate != nil && t.CompletedDate.Before(completedCutoff):
			delete(m.data.Tasks, id)
			result.CompletedRemoved++
		case !t.Completed && t.DueDate.Before(staleCutoff):
			delete(m.data.Tasks, id)
			result.StaleRemoved++
		}
	}
	return result, nil
}

// Load reads tasks.yaml from disk. A missing file leaves the store empty.
func (m *fileScheduleManager) Load() error {
	data, err := os.ReadFile(m.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading tasks.yaml: %w", err)
	}

	var file ScheduleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing tasks.yaml: %w", err)
	}
	if file.Tasks == nil {
		file.Tasks = make(map[string]models.CareTask)
	}
	m.data = file
	return nil
}

// Save writes the store back to tasks.yaml.
func (m *fileScheduleManager) Save() error {
	data, err := yaml.Marshal(m.data)
	if err != nil {
		return fmt.Errorf("marshalling tasks.yaml: %w", err)
	}
	if err := os.WriteFile(m.filePath(), data, 0o600); err != nil {
		return fmt.Errorf("writing tasks.yaml: %w", err)
	}
	return nil
}
