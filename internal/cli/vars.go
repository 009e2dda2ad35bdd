package cli

import (
	"time"

	"github.com/calebshay/trellis/internal/core"
	"github.com/calebshay/trellis/internal/observability"
	"github.com/calebshay/trellis/internal/storage"
	"github.com/calebshay/trellis/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	// BasePath is the root directory holding all trellis data files.
	BasePath string

	// Storage layer.
	GardenMgr   storage.GardenManager
	ScheduleMgr storage.ScheduleManager
	LayoutMgr   storage.LayoutManager

	// Core services.
	Optimizer   core.LayoutOptimizer
	ScheduleGen core.ScheduleGenerator

	// Configuration snapshot taken at startup.
	LayoutTTL        time.Duration
	Retention        models.RetentionSettings
	Notifications    models.NotificationSettings
	DefaultStartHour int

	// Observability service instances; nil when observability is disabled.
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.ReminderNotifier
)
