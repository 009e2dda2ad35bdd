package cli

import (
	"fmt"
	"time"

	"github.com/calebshay/trellis/internal/observability"
	"github.com/calebshay/trellis/internal/storage"
	"github.com/calebshay/trellis/pkg/models"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage care tasks (list, complete, reschedule)",
}

var (
	taskListPlant   string
	taskListType    string
	taskListPending bool
	taskListOverdue bool
)

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List care tasks ordered by due date",
	Long: `List care tasks, ordered by due date.

Filter with --plant and --type, restrict to pending work with --pending, or
to tasks past their due date plus grace period with --overdue.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ScheduleMgr == nil || ScheduleGen == nil {
			return fmt.Errorf("schedule manager not initialized")
		}

		filter := storage.TaskFilter{PlantID: taskListPlant}
		if taskListType != "" {
			taskType := models.CareTaskType(taskListType)
			if !taskType.Valid() {
				return fmt.Errorf("invalid task type %q", taskListType)
			}
			filter.TaskType = taskType
		}
		if taskListPending || taskListOverdue {
			pending := false
			filter.Completed = &pending
		}

		tasks, err := ScheduleMgr.FilterTasks(filter)
		if err != nil {
			return fmt.Errorf("listing care tasks: %w", err)
		}

		now := time.Now().UTC()
		shown := 0
		for _, task := range tasks {
			overdue := ScheduleGen.IsOverdue(task, now)
			if taskListOverdue && !overdue {
				continue
			}
			state := "pending"
			if task.Completed {
				state = "done"
			} else if overdue {
				state = "OVERDUE"
			}
			fmt.Printf("  %-32s %-18s due %s  P%d  %s\n",
				task.ID, task.TaskType, task.DueDate.Format("2006-01-02"), task.Priority, state)
			shown++
		}
		if shown == 0 {
			fmt.Println("No care tasks match.")
		}
		return nil
	},
}

var taskCompleteDate string

var taskCompleteCmd = &cobra.Command{
	Use:   "complete <task-id>",
	Short: "Mark a care task completed",
	Long: `Mark a care task completed.

Recurring task types (watering, fertilizing) get their next occurrence
scheduled one frequency interval after the completion date, so completing
early or late shifts the whole cadence. The default completion date is now.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ScheduleMgr == nil || ScheduleGen == nil || GardenMgr == nil {
			return fmt.Errorf("schedule manager not initialized")
		}

		completionDate := time.Now().UTC()
		if taskCompleteDate != "" {
			parsed, err := parseDateFlag(taskCompleteDate)
			if err != nil {
				return fmt.Errorf("parsing --date: %w", err)
			}
			completionDate = parsed
		}

		task, err := ScheduleMgr.GetTask(args[0])
		if err != nil {
			return fmt.Errorf("getting task %s: %w", args[0], err)
		}

		plant, err := findPlant(task.PlantID)
		if err != nil {
			return fmt.Errorf("resolving plant for task %s: %w", args[0], err)
		}

		done, next, err := ScheduleGen.CompleteTask(*task, *plant, completionDate)
		if err != nil {
			return fmt.Errorf("completing task %s: %w", args[0], err)
		}

		if err := ScheduleMgr.UpdateTask(done); err != nil {
			return fmt.Errorf("updating task %s: %w", done.ID, err)
		}
		if next != nil {
			if err := ScheduleMgr.AddTask(*next); err != nil {
				return fmt.Errorf("adding follow-up task %s: %w", next.ID, err)
			}
		}
		if err := ScheduleMgr.Save(); err != nil {
			return fmt.Errorf("saving tasks: %w", err)
		}

		logEvent(observability.EventTaskCompleted, "care task completed", map[string]any{
			"task_id":   done.ID,
			"plant_id":  done.PlantID,
			"task_type": string(done.TaskType),
		})

		fmt.Printf("Completed %s on %s\n", done.ID, completionDate.Format("2006-01-02"))
		if next != nil {
			fmt.Printf("  Next %s due %s (%s)\n", next.TaskType, next.DueDate.Format("2006-01-02"), next.ID)
		}
		return nil
	},
}

var taskRescheduleDate string

var taskRescheduleCmd = &cobra.Command{
	Use:   "reschedule <task-id>",
	Short: "Move a care task to a new due date",
	Long: `Move a care task to a new future due date.

Rescheduling clears any completion state, so a completed task can be
reopened by rescheduling it. Past dates are rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ScheduleMgr == nil || ScheduleGen == nil {
			return fmt.Errorf("schedule manager not initialized")
		}
		if taskRescheduleDate == "" {
			return fmt.Errorf("--date is required")
		}

		newDue, err := parseDateFlag(taskRescheduleDate)
		if err != nil {
			return fmt.Errorf("parsing --date: %w", err)
		}

		task, err := ScheduleMgr.GetTask(args[0])
		if err != nil {
			return fmt.Errorf("getting task %s: %w", args[0], err)
		}

		updated, err := ScheduleGen.Reschedule(*task, newDue)
		if err != nil {
			return fmt.Errorf("rescheduling task %s: %w", args[0], err)
		}

		if err := ScheduleMgr.UpdateTask(updated); err != nil {
			return fmt.Errorf("updating task %s: %w", updated.ID, err)
		}
		if err := ScheduleMgr.Save(); err != nil {
			return fmt.Errorf("saving tasks: %w", err)
		}

		logEvent(observability.EventTaskRescheduled, "care task rescheduled", map[string]any{
			"task_id":  updated.ID,
			"due_date": newDue.Format(time.RFC3339),
		})

		fmt.Printf("Rescheduled %s to %s\n", updated.ID, newDue.Format("2006-01-02"))
		return nil
	},
}

func init() {
	taskListCmd.Flags().StringVar(&taskListPlant, "plant", "", "Filter by plant ID")
	taskListCmd.Flags().StringVar(&taskListType, "type", "", "Filter by task type (watering, fertilizing, ...)")
	taskListCmd.Flags().BoolVar(&taskListPending, "pending", false, "Show only pending tasks")
	taskListCmd.Flags().BoolVar(&taskListOverdue, "overdue", false, "Show only overdue tasks")

	taskCompleteCmd.Flags().StringVar(&taskCompleteDate, "date", "", "Completion date (default: now)")
	taskRescheduleCmd.Flags().StringVar(&taskRescheduleDate, "date", "", "New due date (required)")

	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskCompleteCmd)
	taskCmd.AddCommand(taskRescheduleCmd)
	rootCmd.AddCommand(taskCmd)
}
