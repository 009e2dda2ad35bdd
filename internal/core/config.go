package core

import (
	"fmt"
	"strings"

	"github.com/calebshay/trellis/pkg/models"
	"github.com/spf13/viper"
)

// ConfigurationManager loads and validates Trellis configuration from the
// .gardenconfig file at the base path.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading the YAML configuration file.
type viperConfigManager struct {
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads
// .gardenconfig from basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultGlobalConfig returns a GlobalConfig populated with sensible defaults.
func DefaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		Optimizer:     DefaultOptimizerSettings(),
		CacheTTLHours: 24,
		Retention: models.RetentionSettings{
			CompletedDays: 365,
			StaleDays:     30,
		},
		Notifications: models.NotificationSettings{
			Enabled: false,
			Quiet:   models.QuietHours{StartHour: 21, EndHour: 7},
		},
		DefaultStartHour: 9,
	}
}

// LoadGlobalConfig reads the .gardenconfig file using Viper. If the file
// does not exist, defaults are returned.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(".gardenconfig")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	// Set Viper defaults so missing keys fall back gracefully.
	v.SetDefault("optimizer.min_utilization_percent", cfg.Optimizer.MinUtilizationPercent)
	v.SetDefault("optimizer.accessibility_buffer", cfg.Optimizer.AccessibilityBuffer)
	v.SetDefault("optimizer.full_sun_weight", cfg.Optimizer.FullSunWeight)
	v.SetDefault("cache.ttl_hours", cfg.CacheTTLHours)
	v.SetDefault("retention.completed_days", cfg.Retention.CompletedDays)
	v.SetDefault("retention.stale_days", cfg.Retention.StaleDays)
	v.SetDefault("notifications.enabled", cfg.Notifications.Enabled)
	v.SetDefault("notifications.webhook_url", cfg.Notifications.WebhookURL)
	v.SetDefault("notifications.quiet_hours.start_hour", cfg.Notifications.Quiet.StartHour)
	v.SetDefault("notifications.quiet_hours.end_hour", cfg.Notifications.Quiet.EndHour)
	v.SetDefault("schedule.default_start_hour", cfg.DefaultStartHour)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading .gardenconfig: %w", err)
	}

	cfg.Optimizer.MinUtilizationPercent = v.GetFloat64("optimizer.min_utilization_percent")
	cfg.Optimizer.AccessibilityBuffer = v.GetFloat64("optimizer.accessibility_buffer")
	cfg.Optimizer.FullSunWeight = v.GetFloat64("optimizer.full_sun_weight")
	cfg.CacheTTLHours = v.GetInt("cache.ttl_hours")
	cfg.Retention.CompletedDays = v.GetInt("retention.completed_days")
	cfg.Retention.StaleDays = v.GetInt("retention.stale_days")
	cfg.Notifications.Enabled = v.GetBool("notifications.enabled")
	cfg.Notifications.WebhookURL = v.GetString("notifications.webhook_url")
	cfg.Notifications.Quiet.StartHour = v.GetInt("notifications.quiet_hours.start_hour")
	cfg.Notifications.Quiet.EndHour = v.GetInt("notifications.quiet_hours.end_hour")
	cfg.DefaultStartHour = v.GetInt("schedule.default_start_hour")

	return cfg, nil
}

// ValidateConfig checks the configuration for invalid values and returns a
// clear error message identifying every problem found.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if cfg.Optimizer.MinUtilizationPercent < 0 || cfg.Optimizer.MinUtilizationPercent > 100 {
		errs = append(errs, fmt.Sprintf(
			"optimizer.min_utilization_percent %.1f is invalid, must be between 0 and 100",
			cfg.Optimizer.MinUtilizationPercent,
		))
	}

	if cfg.Optimizer.AccessibilityBuffer < 1 {
		errs = append(errs, fmt.Sprintf(
			"optimizer.accessibility_buffer %.2f is invalid, must be at least 1",
			cfg.Optimizer.AccessibilityBuffer,
		))
	}

	if cfg.Optimizer.FullSunWeight < 1 {
		errs = append(errs, fmt.Sprintf(
			"optimizer.full_sun_weight %.2f is invalid, must be at least 1",
			cfg.Optimizer.FullSunWeight,
		))
	}

	if cfg.CacheTTLHours <= 0 {
		errs = append(errs, fmt.Sprintf(
			"cache.ttl_hours %d is invalid, must be positive",
			cfg.CacheTTLHours,
		))
	}

	if cfg.Retention.CompletedDays <= 0 {
		errs = append(errs, fmt.Sprintf(
			"retention.completed_days %d is invalid, must be positive",
			cfg.Retention.CompletedDays,
		))
	}

	if cfg.Retention.StaleDays <= 0 {
		errs = append(errs, fmt.Sprintf(
			"retention.stale_days %d is invalid, must be positive",
			cfg.Retention.StaleDays,
		))
	}

	if h := cfg.Notifications.Quiet.StartHour; h < 0 || h > 23 {
		errs = append(errs, fmt.Sprintf(
			"notifications.quiet_hours.start_hour %d is invalid, must be between 0 and 23", h,
		))
	}
	if h := cfg.Notifications.Quiet.EndHour; h < 0 || h > 23 {
		errs = append(errs, fmt.Sprintf(
			"notifications.quiet_hours.end_hour %d is invalid, must be between 0 and 23", h,
		))
	}

	if cfg.Notifications.Enabled && cfg.Notifications.WebhookURL == "" {
		errs = append(errs, "notifications.enabled is true but notifications.webhook_url is empty")
	}

	if h := cfg.DefaultStartHour; h < 0 || h > 23 {
		errs = append(errs, fmt.Sprintf(
			"schedule.default_start_hour %d is invalid, must be between 0 and 23", h,
		))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
