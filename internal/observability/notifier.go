package observability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/calebshay/trellis/pkg/models"
)

// Reminder is a request to deliver a care reminder no earlier than DeliverAt.
type Reminder struct {
	TaskID    string    `json:"task_id"`
	PlantID   string    `json:"plant_id"`
	TaskType  string    `json:"task_type"`
	DueDate   time.Time `json:"due_date"`
	DeliverAt time.Time `json:"deliver_at"`
	Message   string    `json:"message"`
}

// ReminderNotifier sends care reminders to an external channel. Delivery,
// retry, and backoff policy all live behind this boundary; the core never
// retries.
type ReminderNotifier interface {
	Notify(reminders []Reminder) error
}

// DeliveryTime returns the earliest delivery time for a task due at due:
// never before the due date, and pushed out of the configured quiet-hours
// window to the end of the window. A window with StartHour == EndHour is
// disabled.
func DeliveryTime(due time.Time, quiet models.QuietHours) time.Time {
	if quiet.StartHour == quiet.EndHour {
		return due
	}
	if !inQuietHours(due.Hour(), quiet) {
		return due
	}

	deliver := time.Date(due.Year(), due.Month(), due.Day(), quiet.EndHour, 0, 0, 0, due.Location())
	if !deliver.After(due) {
		// The window wraps midnight and the due time sits in the late
		// part of it; delivery slips to the window's end tomorrow.
		deliver = deliver.AddDate(0, 0, 1)
	}
	return deliver
}

// inQuietHours reports whether the hour falls inside the window, handling
// windows that wrap midnight (e.g. 21 to 7).
func inQuietHours(hour int, quiet models.QuietHours) bool {
	if quiet.StartHour < quiet.EndHour {
		return hour >= quiet.StartHour && hour < quiet.EndHour
	}
	return hour >= quiet.StartHour || hour < quiet.EndHour
}

// webhookNotifier posts reminders as JSON to a configured webhook URL.
type webhookNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewWebhookNotifier creates a ReminderNotifier that posts reminders to the
// given webhook URL.
func NewWebhookNotifier(webhookURL string) ReminderNotifier {
	return &webhookNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{},
	}
}

type webhookPayload struct {
	Reminders []Reminder `json:"reminders"`
	Count     int        `json:"count"`
}

// Notify posts the given reminders to the configured webhook. It returns
// nil without making a request if the reminders slice is empty.
func (n *webhookNotifier) Notify(reminders []Reminder) error {
	if len(reminders) == 0 {
		return nil
	}

	body, err := json.Marshal(webhookPayload{Reminders: reminders, Count: len(reminders)})
	if err != nil {
		return fmt.Errorf("marshalling reminder payload: %w", err)
	}

	resp, err := n.client.Post(n.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("posting to reminder webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reminder webhook returned status %d", resp.StatusCode)
	}

	return nil
}
