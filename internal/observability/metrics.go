package observability

import (
	"fmt"
	"time"
)

// Metrics holds calculated metrics derived from the event log.
type Metrics struct {
	GardensCreated     int            `json:"gardens_created"`
	GardensOptimized   int            `json:"gardens_optimized"`
	MeanUtilization    float64        `json:"mean_utilization"`
	SchedulesGenerated int            `json:"schedules_generated"`
	TasksCompleted     int            `json:"tasks_completed"`
	TasksRescheduled   int            `json:"tasks_rescheduled"`
	TasksByType        map[string]int `json:"tasks_by_type"`
	RemindersQueued    int            `json:"reminders_queued"`
	EventCount         int            `json:"event_count"`
	OldestEvent        *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent        *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them into metrics.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		TasksByType: make(map[string]int),
	}
	m.EventCount = len(events)

	var utilizationSum float64
	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case EventGardenCreated:
			m.GardensCreated++
		case EventGardenOptimized:
			m.GardensOptimized++
			if util, ok := event.Data["utilization"].(float64); ok {
				utilizationSum += util
			}
		case EventScheduleGenerated:
			m.SchedulesGenerated++
		case EventTaskCompleted:
			m.TasksCompleted++
			if taskType, ok := event.Data["task_type"].(string); ok {
				m.TasksByType[taskType]++
			}
		case EventTaskRescheduled:
			m.TasksRescheduled++
		case EventReminderQueued:
			m.RemindersQueued++
		}
	}

	if m.GardensOptimized > 0 {
		m.MeanUtilization = utilizationSum / float64(m.GardensOptimized)
	}

	return m, nil
}
