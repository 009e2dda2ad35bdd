package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/calebshay/trellis/pkg/models"
)

// taskPriorities assigns a default priority (1 = most urgent, 5 = least) to
// each task type. Types not listed get defaultTaskPriority.
var taskPriorities = map[models.CareTaskType]int{
	models.TaskWatering:    2,
	models.TaskPestControl: 1,
}

const defaultTaskPriority = 3

// DefaultPriority returns the default priority for a task type.
func DefaultPriority(t models.CareTaskType) int {
	if p, ok := taskPriorities[t]; ok {
		return p
	}
	return defaultTaskPriority
}

// graceDays maps a task priority to the number of days past due before the
// task counts as overdue. Monotonic: lower-priority tasks get more slack.
var graceDays = map[int]int{
	1: 1,
	2: 2,
	3: 3,
	4: 5,
	5: 7,
}

const defaultGraceDays = 3

// GraceDays returns the overdue grace period for a priority. Priorities
// outside [1,5] fall back to the default.
func GraceDays(priority int) int {
	if g, ok := graceDays[priority]; ok {
		return g
	}
	return defaultGraceDays
}

// ScheduleGenerator produces and evolves recurring care tasks for a plant.
// All methods are pure functions of their arguments (plus the injectable
// clock used by Reschedule); no method mutates its inputs.
type ScheduleGenerator interface {
	GenerateInitialSchedule(plant models.Plant, startDate time.Time) ([]models.CareTask, error)
	CompleteTask(task models.CareTask, plant models.Plant, completionDate time.Time) (models.CareTask, *models.CareTask, error)
	IsOverdue(task models.CareTask, asOf time.Time) bool
	Reschedule(task models.CareTask, newDueDate time.Time) (models.CareTask, error)
}

type scheduleGenerator struct{}

// NewScheduleGenerator creates a ScheduleGenerator.
func NewScheduleGenerator() ScheduleGenerator {
	return scheduleGenerator{}
}

// GenerateInitialSchedule emits the first watering and fertilizing tasks for
// a newly planted plant, due one frequency interval after startDate.
func (scheduleGenerator) GenerateInitialSchedule(plant models.Plant, startDate time.Time) ([]models.CareTask, error) {
	if plant.ID == "" {
		return nil, &ScheduleError{Kind: ErrInvalidPlant, Detail: "plant has no ID"}
	}
	if plant.WateringFrequencyDays <= 0 {
		return nil, &ScheduleError{
			Kind:   ErrInvalidPlant,
			Detail: fmt.Sprintf("plant %s has watering frequency %d, must be positive", plant.ID, plant.WateringFrequencyDays),
		}
	}
	if plant.FertilizingFrequencyDays <= 0 {
		return nil, &ScheduleError{
			Kind:   ErrInvalidPlant,
			Detail: fmt.Sprintf("plant %s has fertilizing frequency %d, must be positive", plant.ID, plant.FertilizingFrequencyDays),
		}
	}

	tasks := []models.CareTask{
		{
			ID:       taskID(plant.ID, models.TaskWatering, 1),
			PlantID:  plant.ID,
			TaskType: models.TaskWatering,
			DueDate:  startDate.AddDate(0, 0, plant.WateringFrequencyDays),
			Priority: DefaultPriority(models.TaskWatering),
		},
		{
			ID:       taskID(plant.ID, models.TaskFertilizing, 1),
			PlantID:  plant.ID,
			TaskType: models.TaskFertilizing,
			DueDate:  startDate.AddDate(0, 0, plant.FertilizingFrequencyDays),
			Priority: DefaultPriority(models.TaskFertilizing),
		},
	}
	return tasks, nil
}

// CompleteTask marks the task completed as of completionDate and, for
// recurring task types, spawns the next pending occurrence due one frequency
// interval after the completion. Early completion is allowed: the next
// occurrence is measured from when the work was done, not when it was due.
func (scheduleGenerator) CompleteTask(task models.CareTask, plant models.Plant, completionDate time.Time) (models.CareTask, *models.CareTask, error) {
	if task.Completed {
		return task, nil, &ScheduleError{
			Kind:   ErrAlreadyCompleted,
			Detail: fmt.Sprintf("task %s was completed on %s", task.ID, formatDate(task.CompletedDate)),
		}
	}

	done := task
	done.Completed = true
	completed := completionDate
	done.CompletedDate = &completed

	freq := recurrenceDays(task.TaskType, plant)
	if freq <= 0 {
		return done, nil, nil
	}

	next := &models.CareTask{
		ID:       nextTaskID(task.ID),
		PlantID:  task.PlantID,
		TaskType: task.TaskType,
		DueDate:  completionDate.AddDate(0, 0, freq),
		Priority: task.Priority,
	}
	return done, next, nil
}

// IsOverdue reports whether the task is past due as of asOf, allowing the
// grace period for its priority. Completed tasks are never overdue.
func (scheduleGenerator) IsOverdue(task models.CareTask, asOf time.Time) bool {
	if task.Completed {
		return false
	}
	deadline := task.DueDate.AddDate(0, 0, GraceDays(task.Priority))
	return asOf.After(deadline)
}

// Reschedule moves the task to a new due date and resets its completion
// state. The new date must be in the future.
func (scheduleGenerator) Reschedule(task models.CareTask, newDueDate time.Time) (models.CareTask, error) {
	if !newDueDate.After(timeNow()) {
		return task, &ScheduleError{
			Kind:   ErrPastDate,
			Detail: fmt.Sprintf("cannot reschedule task %s to %s", task.ID, newDueDate.Format("2006-01-02")),
		}
	}
	moved := task
	moved.DueDate = newDueDate
	moved.Completed = false
	moved.CompletedDate = nil
	return moved, nil
}

// recurrenceDays returns the recurrence interval for a task type, taken from
// the plant's care frequencies. Types without a frequency do not recur.
func recurrenceDays(t models.CareTaskType, plant models.Plant) int {
	switch t {
	case models.TaskWatering:
		return plant.WateringFrequencyDays
	case models.TaskFertilizing:
		return plant.FertilizingFrequencyDays
	default:
		return 0
	}
}

// taskID builds a deterministic care task ID so repeated schedule generation
// for the same plant yields identical IDs.
func taskID(plantID string, t models.CareTaskType, seq int) string {
	return fmt.Sprintf("%s-%s-%d", plantID, t, seq)
}

// nextTaskID increments the trailing sequence number of a task ID. IDs that
// do not end in a number get "-2" appended.
func nextTaskID(id string) string {
	idx := strings.LastIndex(id, "-")
	if idx >= 0 {
		if seq, err := strconv.Atoi(id[idx+1:]); err == nil {
			return fmt.Sprintf("%s-%d", id[:idx], seq+1)
		}
	}
	return id + "-2"
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "unknown date"
	}
	return t.Format("2006-01-02")
}
