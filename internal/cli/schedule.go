package cli

import (
	"fmt"
	"time"

	"github.com/calebshay/trellis/internal/core"
	"github.com/calebshay/trellis/internal/observability"
	"github.com/calebshay/trellis/internal/storage"
	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Generate care schedules and queue reminders",
}

var scheduleStartFlag string

var scheduleGenerateCmd = &cobra.Command{
	Use:   "generate <garden-id>",
	Short: "Generate the initial care schedule for a garden's placed plants",
	Long: `Generate initial care tasks for every plant the current layout placed.

Each plant gets a watering task and a fertilizing task, due one frequency
interval after the start date. Completing a recurring task later spawns its
next occurrence. Run 'trellis optimize' first; unplaced plants get no tasks.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if GardenMgr == nil || ScheduleMgr == nil || LayoutMgr == nil || ScheduleGen == nil {
			return fmt.Errorf("schedule generator not initialized")
		}

		garden, err := GardenMgr.GetGarden(args[0])
		if err != nil {
			return fmt.Errorf("getting garden %s: %w", args[0], err)
		}

		startDate := time.Now().UTC().Truncate(24 * time.Hour).Add(time.Duration(DefaultStartHour) * time.Hour)
		if scheduleStartFlag != "" {
			startDate, err = parseDateFlag(scheduleStartFlag)
			if err != nil {
				return fmt.Errorf("parsing --start: %w", err)
			}
		}

		hash, err := core.GardenHash(*garden)
		if err != nil {
			return fmt.Errorf("hashing garden %s: %w", garden.ID, err)
		}
		layout, ok := LayoutMgr.GetFresh(garden.ID, hash, time.Now().UTC(), LayoutTTL)
		if !ok {
			return fmt.Errorf("no current layout for garden %s: run 'trellis optimize %s' first", garden.ID, garden.ID)
		}

		created, skipped := 0, 0
		for _, zl := range layout.Zones {
			for _, plantID := range zl.PlantIDs {
				plant := garden.PlantByID(plantID)
				if plant == nil {
					return fmt.Errorf("layout references unknown plant %s", plantID)
				}
				tasks, err := ScheduleGen.GenerateInitialSchedule(*plant, startDate)
				if err != nil {
					return fmt.Errorf("generating schedule for plant %s: %w", plantID, err)
				}
				for _, task := range tasks {
					// Task IDs are deterministic, so a re-run sees its own
					// earlier output; keep the existing task untouched.
					if _, err := ScheduleMgr.GetTask(task.ID); err == nil {
						skipped++
						continue
					}
					if err := ScheduleMgr.AddTask(task); err != nil {
						return fmt.Errorf("adding task %s: %w", task.ID, err)
					}
					created++
				}
			}
		}
		if err := ScheduleMgr.Save(); err != nil {
			return fmt.Errorf("saving tasks: %w", err)
		}

		logEvent(observability.EventScheduleGenerated, "schedule generated", map[string]any{
			"garden_id": garden.ID,
			"tasks":     created,
			"start":     startDate.Format(time.RFC3339),
		})

		fmt.Printf("Generated %d care tasks for garden %s (start %s)\n", created, garden.ID, startDate.Format("2006-01-02"))
		if skipped > 0 {
			fmt.Printf("Skipped %d task(s) that already exist\n", skipped)
		}
		return nil
	},
}

var scheduleRemindersDays int

var scheduleRemindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Queue reminders for care tasks coming due",
	Long: `Queue a reminder for every pending task due within the next N days.

Reminders due inside the configured quiet hours are deferred to the end of
the window. Delivery goes to the configured webhook; without one, reminders
are only printed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ScheduleMgr == nil {
			return fmt.Errorf("schedule manager not initialized")
		}

		now := time.Now().UTC()
		horizon := now.AddDate(0, 0, scheduleRemindersDays)
		pending := false
		tasks, err := ScheduleMgr.FilterTasks(storage.TaskFilter{Completed: &pending, DueBefore: &horizon})
		if err != nil {
			return fmt.Errorf("listing pending tasks: %w", err)
		}

		var reminders []observability.Reminder
		for _, task := range tasks {
			deliverAt := observability.DeliveryTime(task.DueDate, Notifications.Quiet)
			reminders = append(reminders, observability.Reminder{
				TaskID:    task.ID,
				PlantID:   task.PlantID,
				TaskType:  string(task.TaskType),
				DueDate:   task.DueDate,
				DeliverAt: deliverAt,
				Message:   fmt.Sprintf("%s due for plant %s on %s", task.TaskType, task.PlantID, task.DueDate.Format("2006-01-02")),
			})
		}

		if len(reminders) == 0 {
			fmt.Println("No care tasks due in the reminder window.")
			return nil
		}

		for _, r := range reminders {
			fmt.Printf("  %-28s deliver %s\n", r.TaskID, r.DeliverAt.Format("2006-01-02 15:04"))
		}

		if Notifier != nil {
			if err := Notifier.Notify(reminders); err != nil {
				return fmt.Errorf("delivering reminders: %w", err)
			}
		}

		logEvent(observability.EventReminderQueued, "reminders queued", map[string]any{
			"count": len(reminders),
		})

		fmt.Printf("Queued %d reminder(s)\n", len(reminders))
		return nil
	},
}

func init() {
	scheduleGenerateCmd.Flags().StringVar(&scheduleStartFlag, "start", "", "Schedule start date (default: today)")
	scheduleRemindersCmd.Flags().IntVar(&scheduleRemindersDays, "days", 3, "Reminder window in days")
	scheduleCmd.AddCommand(scheduleGenerateCmd)
	scheduleCmd.AddCommand(scheduleRemindersCmd)
	rootCmd.AddCommand(scheduleCmd)
}
