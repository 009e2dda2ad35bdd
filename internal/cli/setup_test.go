package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/calebshay/trellis/internal/core"
	"github.com/calebshay/trellis/internal/observability"
	"github.com/calebshay/trellis/internal/storage"
	"github.com/calebshay/trellis/pkg/models"
)

// setupServices wires real file-backed services into the CLI package
// variables, rooted in a fresh temp directory. Originals are restored when
// the test finishes.
func setupServices(t *testing.T) string {
	t.Helper()

	origBasePath := BasePath
	origGardenMgr := GardenMgr
	origScheduleMgr := ScheduleMgr
	origLayoutMgr := LayoutMgr
	origOptimizer := Optimizer
	origScheduleGen := ScheduleGen
	origLayoutTTL := LayoutTTL
	origRetention := Retention
	origNotifications := Notifications
	origStartHour := DefaultStartHour
	origEventLog := EventLog
	origMetricsCalc := MetricsCalc
	origNotifier := Notifier
	t.Cleanup(func() {
		BasePath = origBasePath
		GardenMgr = origGardenMgr
		ScheduleMgr = origScheduleMgr
		LayoutMgr = origLayoutMgr
		Optimizer = origOptimizer
		ScheduleGen = origScheduleGen
		LayoutTTL = origLayoutTTL
		Retention = origRetention
		Notifications = origNotifications
		DefaultStartHour = origStartHour
		EventLog = origEventLog
		MetricsCalc = origMetricsCalc
		Notifier = origNotifier
	})

	tmpDir := t.TempDir()
	BasePath = tmpDir
	GardenMgr = storage.NewGardenManager(tmpDir)
	ScheduleMgr = storage.NewScheduleManager(tmpDir)
	LayoutMgr = storage.NewLayoutManager(tmpDir)

	settings := core.DefaultOptimizerSettings()
	settings.MinUtilizationPercent = 0
	Optimizer = core.NewLayoutOptimizer(core.DefaultCompanionTable(), settings)
	ScheduleGen = core.NewScheduleGenerator()
	LayoutTTL = core.DefaultLayoutTTL
	Retention = models.RetentionSettings{CompletedDays: 365, StaleDays: 30}
	Notifications = models.NotificationSettings{}
	DefaultStartHour = 9
	EventLog = nil
	MetricsCalc = nil
	Notifier = nil

	return tmpDir
}

// writeGardenFile writes a two-zone, two-plant garden description and
// returns its path.
func writeGardenFile(t *testing.T, dir string) string {
	t.Helper()

	content := `id: backyard
name: Backyard Bed
area: 100
zones:
  - id: z1
    area: 60
    sunlight: full_sun
  - id: z2
    area: 40
    sunlight: partial_shade
plants:
  - id: tomato-1
    type: tomato
    spacing_inches: 24
    sunlight_needs: full_sun
    watering_frequency_days: 2
    fertilizing_frequency_days: 14
  - id: lettuce-1
    type: lettuce
    spacing_inches: 12
    sunlight_needs: partial_shade
    watering_frequency_days: 1
    fertilizing_frequency_days: 21
`
	path := filepath.Join(dir, "backyard.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// registerGarden adds the sample garden through the CLI command.
func registerGarden(t *testing.T, dir string) {
	t.Helper()
	path := writeGardenFile(t, dir)
	if err := gardenAddCmd.RunE(gardenAddCmd, []string{path}); err != nil {
		t.Fatalf("garden add: %v", err)
	}
}

// memoryEventLog is an in-memory EventLog for asserting emitted events.
type memoryEventLog struct {
	events []observability.Event
}

func (l *memoryEventLog) Write(event observability.Event) error {
	l.events = append(l.events, event)
	return nil
}

func (l *memoryEventLog) Read(filter observability.EventFilter) ([]observability.Event, error) {
	var out []observability.Event
	for _, e := range l.events {
		if filter.Type != "" && e.Type != filter.Type {
			continue
		}
		if filter.Since != nil && e.Time.Before(*filter.Since) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (l *memoryEventLog) Close() error { return nil }

func (l *memoryEventLog) countByType(eventType string) int {
	n := 0
	for _, e := range l.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}
