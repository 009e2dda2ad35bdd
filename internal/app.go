// Package internal provides the App struct that wires all components of
// Trellis together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/calebshay/trellis/internal/cli"
	"github.com/calebshay/trellis/internal/core"
	"github.com/calebshay/trellis/internal/observability"
	"github.com/calebshay/trellis/internal/storage"
)

// App holds all service dependencies for the Trellis system.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager

	// Storage layer
	GardenMgr   storage.GardenManager
	ScheduleMgr storage.ScheduleManager
	LayoutMgr   storage.LayoutManager

	// Core services
	Companions  core.CompanionTable
	Optimizer   core.LayoutOptimizer
	ScheduleGen core.ScheduleGenerator

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.ReminderNotifier
}

// NewApp creates and wires all components of the Trellis system. basePath is
// the root directory where all data is stored (typically the directory
// containing .gardenconfig).
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	globalCfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		// Use defaults if the config file is missing or unreadable.
		globalCfg = core.DefaultGlobalConfig()
	}
	if err := app.ConfigMgr.ValidateConfig(globalCfg); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	layoutTTL := time.Duration(globalCfg.CacheTTLHours) * time.Hour
	if layoutTTL <= 0 {
		layoutTTL = core.DefaultLayoutTTL
	}

	// --- Storage layer ---
	app.GardenMgr = storage.NewGardenManager(basePath)
	if err := app.GardenMgr.Load(); err != nil {
		return nil, fmt.Errorf("loading gardens: %w", err)
	}
	app.ScheduleMgr = storage.NewScheduleManager(basePath)
	if err := app.ScheduleMgr.Load(); err != nil {
		return nil, fmt.Errorf("loading care tasks: %w", err)
	}
	app.LayoutMgr = storage.NewLayoutManager(basePath)
	if err := app.LayoutMgr.Load(); err != nil {
		return nil, fmt.Errorf("loading layouts: %w", err)
	}

	// --- Observability ---
	eventLogPath := filepath.Join(basePath, ".trellis_events.jsonl")
	app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
	if err != nil {
		// Non-fatal: disable observability if the log can't be created.
		app.EventLog = nil
	}
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}
	if globalCfg.Notifications.Enabled && globalCfg.Notifications.WebhookURL != "" {
		app.Notifier = observability.NewWebhookNotifier(globalCfg.Notifications.WebhookURL)
	}

	// --- Core services ---
	app.Companions = core.DefaultCompanionTable()
	optimizer := core.NewLayoutOptimizer(app.Companions, globalCfg.Optimizer)
	app.Optimizer = core.NewCachingOptimizer(optimizer, core.NewMemoryLayoutCache(), layoutTTL)
	app.ScheduleGen = core.NewScheduleGenerator()

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.GardenMgr = app.GardenMgr
	cli.ScheduleMgr = app.ScheduleMgr
	cli.LayoutMgr = app.LayoutMgr
	cli.Optimizer = app.Optimizer
	cli.ScheduleGen = app.ScheduleGen
	cli.LayoutTTL = layoutTTL
	cli.Retention = globalCfg.Retention
	cli.Notifications = globalCfg.Notifications
	cli.DefaultStartHour = globalCfg.DefaultStartHour

	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc
	cli.Notifier = app.Notifier

	return app, nil
}

// Close releases resources held by the App, such as the event log file handle.
// It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the base path for the Trellis data directory.
// It checks the TRELLIS_HOME env var, then walks up from the current
// directory looking for a .gardenconfig file.
func ResolveBasePath() string {
	if home := os.Getenv("TRELLIS_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".gardenconfig")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	// Fall back to cwd.
	cwd, _ := os.Getwd()
	return cwd
}
