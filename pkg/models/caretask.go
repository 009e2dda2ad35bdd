package models

import "time"

// CareTaskType is the kind of maintenance action a CareTask schedules.
type CareTaskType string

const (
	TaskWatering          CareTaskType = "watering"
	TaskFertilizing       CareTaskType = "fertilizing"
	TaskPruning           CareTaskType = "pruning"
	TaskHarvesting        CareTaskType = "harvesting"
	TaskPestControl       CareTaskType = "pest_control"
	TaskWeeding           CareTaskType = "weeding"
	TaskSoilAmendment     CareTaskType = "soil_amendment"
	TaskSupportAdjustment CareTaskType = "support_adjustment"
)

// AllCareTaskTypes lists every known task type, in a fixed order.
var AllCareTaskTypes = []CareTaskType{
	TaskWatering,
	TaskFertilizing,
	TaskPruning,
	TaskHarvesting,
	TaskPestControl,
	TaskWeeding,
	TaskSoilAmendment,
	TaskSupportAdjustment,
}

// Valid reports whether t is one of the known task types.
func (t CareTaskType) Valid() bool {
	for _, known := range AllCareTaskTypes {
		if t == known {
			return true
		}
	}
	return false
}

// CareTask is a single scheduled maintenance action for one plant.
//
// Lifecycle: a task is created pending, and either completes (terminal for
// this instance; recurring types spawn a fresh pending instance) or is
// rescheduled (same instance, new due date). There is no cancelled state.
type CareTask struct {
	ID            string       `yaml:"id"`
	PlantID       string       `yaml:"plant_id"`
	TaskType      CareTaskType `yaml:"task_type"`
	DueDate       time.Time    `yaml:"due_date"`
	Completed     bool         `yaml:"completed"`
	CompletedDate *time.Time   `yaml:"completed_date,omitempty"`
	Priority      int          `yaml:"priority"`
	Notes         string       `yaml:"notes,omitempty"`
}
