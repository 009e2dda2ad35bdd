package models

// OptimizerSettings are the tunable constants of the layout optimizer.
type OptimizerSettings struct {
	// MinUtilizationPercent is the floor below which an optimization
	// result is rejected rather than returned.
	MinUtilizationPercent float64 `yaml:"min_utilization_percent"`
	// AccessibilityBuffer multiplies plant footprints so the gardener can
	// actually reach the plants.
	AccessibilityBuffer float64 `yaml:"accessibility_buffer"`
	// FullSunWeight is the utilization weight applied to area used in
	// full-sun zones.
	FullSunWeight float64 `yaml:"full_sun_weight"`
}

// RetentionSettings control the schedule store's housekeeping job.
type RetentionSettings struct {
	// CompletedDays is how long completed tasks are kept after completion.
	CompletedDays int `yaml:"completed_days"`
	// StaleDays is how long incomplete tasks are kept past their due date.
	StaleDays int `yaml:"stale_days"`
}

// QuietHours is a daily window during which reminders are not delivered.
// Start and End are hours of the day [0,24); a window may wrap midnight
// (e.g. 21 to 7). Start == End disables the window.
type QuietHours struct {
	StartHour int `yaml:"start_hour"`
	EndHour   int `yaml:"end_hour"`
}

// NotificationSettings configure the reminder collaborator.
type NotificationSettings struct {
	Enabled    bool       `yaml:"enabled"`
	WebhookURL string     `yaml:"webhook_url,omitempty"`
	Quiet      QuietHours `yaml:"quiet_hours"`
}

// GlobalConfig is the merged configuration read from .gardenconfig.
type GlobalConfig struct {
	Optimizer        OptimizerSettings    `yaml:"optimizer"`
	CacheTTLHours    int                  `yaml:"cache_ttl_hours"`
	Retention        RetentionSettings    `yaml:"retention"`
	Notifications    NotificationSettings `yaml:"notifications"`
	DefaultStartHour int                  `yaml:"default_start_hour"`
}
