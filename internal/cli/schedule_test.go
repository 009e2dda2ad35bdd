package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/calebshay/trellis/internal/observability"
	"github.com/calebshay/trellis/pkg/models"
)

// captureNotifier records the reminders it was asked to deliver.
type captureNotifier struct {
	reminders []observability.Reminder
}

func (n *captureNotifier) Notify(reminders []observability.Reminder) error {
	n.reminders = append(n.reminders, reminders...)
	return nil
}

func TestScheduleGenerateCmd(t *testing.T) {
	tmpDir := setupServices(t)
	log := &memoryEventLog{}
	EventLog = log
	registerGarden(t, tmpDir)

	// No layout yet: generation must refuse.
	err := scheduleGenerateCmd.RunE(scheduleGenerateCmd, []string{"backyard"})
	if err == nil || !strings.Contains(err.Error(), "no current layout") {
		t.Fatalf("expected no-layout error, got %v", err)
	}

	if err := optimizeCmd.RunE(optimizeCmd, []string{"backyard"}); err != nil {
		t.Fatalf("optimize: %v", err)
	}

	origStart := scheduleStartFlag
	defer func() { scheduleStartFlag = origStart }()
	scheduleStartFlag = "2026-04-01"

	if err := scheduleGenerateCmd.RunE(scheduleGenerateCmd, []string{"backyard"}); err != nil {
		t.Fatalf("schedule generate: %v", err)
	}

	tasks, err := ScheduleMgr.GetAllTasks()
	if err != nil {
		t.Fatal(err)
	}
	// Two placed plants, each with a watering and a fertilizing task.
	if len(tasks) != 4 {
		t.Fatalf("expected 4 tasks, got %d", len(tasks))
	}

	byID := make(map[string]models.CareTask, len(tasks))
	for _, task := range tasks {
		byID[task.ID] = task
	}
	watering, ok := byID["tomato-1-watering-1"]
	if !ok {
		t.Fatalf("missing tomato watering task; have %v", tasks)
	}
	wantDue := time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC)
	if !watering.DueDate.Equal(wantDue) {
		t.Errorf("tomato watering due %s, want %s", watering.DueDate, wantDue)
	}
	if watering.Priority != 2 {
		t.Errorf("watering priority = %d, want 2", watering.Priority)
	}

	if log.countByType(observability.EventScheduleGenerated) != 1 {
		t.Error("expected a schedule.generated event")
	}
}

// Re-running generation is idempotent: existing tasks are kept as they are,
// only missing ones are created.
func TestScheduleGenerateCmd_Rerun(t *testing.T) {
	tmpDir := setupServices(t)
	registerGarden(t, tmpDir)

	if err := optimizeCmd.RunE(optimizeCmd, []string{"backyard"}); err != nil {
		t.Fatalf("optimize: %v", err)
	}

	origStart := scheduleStartFlag
	defer func() { scheduleStartFlag = origStart }()
	scheduleStartFlag = "2026-04-01"

	if err := scheduleGenerateCmd.RunE(scheduleGenerateCmd, []string{"backyard"}); err != nil {
		t.Fatalf("schedule generate: %v", err)
	}

	// Second run from a different start date must not fail and must not touch
	// the tasks the first run created.
	scheduleStartFlag = "2026-06-01"
	if err := scheduleGenerateCmd.RunE(scheduleGenerateCmd, []string{"backyard"}); err != nil {
		t.Fatalf("schedule generate rerun: %v", err)
	}

	tasks, err := ScheduleMgr.GetAllTasks()
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 4 {
		t.Fatalf("expected 4 tasks after rerun, got %d", len(tasks))
	}
	watering, err := ScheduleMgr.GetTask("tomato-1-watering-1")
	if err != nil {
		t.Fatal(err)
	}
	wantDue := time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC)
	if !watering.DueDate.Equal(wantDue) {
		t.Errorf("rerun changed due date to %s, want %s", watering.DueDate, wantDue)
	}
}

func TestScheduleRemindersCmd(t *testing.T) {
	setupServices(t)
	log := &memoryEventLog{}
	EventLog = log
	notifier := &captureNotifier{}
	Notifier = notifier
	Notifications = models.NotificationSettings{Quiet: models.QuietHours{StartHour: 21, EndHour: 7}}

	now := time.Now().UTC()
	mustAdd := func(task models.CareTask) {
		t.Helper()
		if err := ScheduleMgr.AddTask(task); err != nil {
			t.Fatal(err)
		}
	}
	mustAdd(models.CareTask{ID: "due-soon", PlantID: "tomato-1", TaskType: models.TaskWatering, DueDate: now.Add(24 * time.Hour), Priority: 2})
	mustAdd(models.CareTask{ID: "far-out", PlantID: "tomato-1", TaskType: models.TaskFertilizing, DueDate: now.AddDate(0, 0, 20), Priority: 3})
	done := now
	mustAdd(models.CareTask{ID: "already-done", PlantID: "lettuce-1", TaskType: models.TaskWatering, DueDate: now.Add(24 * time.Hour), Completed: true, CompletedDate: &done})

	if err := scheduleRemindersCmd.RunE(scheduleRemindersCmd, nil); err != nil {
		t.Fatalf("schedule reminders: %v", err)
	}

	if len(notifier.reminders) != 1 {
		t.Fatalf("expected 1 reminder, got %d: %+v", len(notifier.reminders), notifier.reminders)
	}
	r := notifier.reminders[0]
	if r.TaskID != "due-soon" {
		t.Errorf("reminder for %s, want due-soon", r.TaskID)
	}
	if r.DeliverAt.Before(r.DueDate) {
		t.Errorf("delivery %s before due %s", r.DeliverAt, r.DueDate)
	}

	if log.countByType(observability.EventReminderQueued) != 1 {
		t.Error("expected a reminder.queued event")
	}
}

func TestScheduleRemindersCmd_NothingDue(t *testing.T) {
	setupServices(t)
	notifier := &captureNotifier{}
	Notifier = notifier

	if err := scheduleRemindersCmd.RunE(scheduleRemindersCmd, nil); err != nil {
		t.Fatalf("schedule reminders: %v", err)
	}
	if len(notifier.reminders) != 0 {
		t.Errorf("expected no reminders, got %d", len(notifier.reminders))
	}
}
