package cli

import (
	"fmt"
	"time"

	"github.com/calebshay/trellis/internal/observability"
	"github.com/calebshay/trellis/pkg/models"
)

// logEvent writes an event to the event log if observability is enabled.
// Logging failures never fail the command that triggered them.
func logEvent(eventType, message string, data map[string]any) {
	if EventLog == nil {
		return
	}
	_ = EventLog.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   "INFO",
		Type:    eventType,
		Message: message,
		Data:    data,
	})
}

// findPlant searches all gardens for the plant with the given ID. The garden
// store enforces cross-garden plant-ID uniqueness, so at most one garden can
// match.
func findPlant(plantID string) (*models.Plant, error) {
	gardens, err := GardenMgr.GetAllGardens()
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

// parseDateFlag accepts either a full RFC 3339 timestamp or a bare
// 2006-01-02 date.
func parseDateFlag(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use RFC 3339 or 2006-01-02)", s)
	}
	return t, nil
}
