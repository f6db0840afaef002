package config

import (
	"time"

	"github.com/runnerr0/mindful/internal/aggregate"
)

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Tracking: TrackingConfig{
			FocusThresholdMs:          300000, // 5 minutes
			TabSwitchDistractionLimit: 50,
			NotificationsEnabled:      true,
			WellnessGoal:              70,
		},
		Storage: StorageConfig{
			Path:       "~/.config/mindful",
			SQLiteFile: "mindful.db",
		},
		Daemon: DaemonConfig{
			Host:           "127.0.0.1",
			Port:           7765,
			MaxRequestSize: 1048576,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// TrackerSettings converts the tracking section into the persisted settings
// seeded at install time.
func (c *Config) TrackerSettings() aggregate.Settings {
	return aggregate.Settings{
		FocusThreshold:            time.Duration(c.Tracking.FocusThresholdMs) * time.Millisecond,
		TabSwitchDistractionLimit: c.Tracking.TabSwitchDistractionLimit,
		NotificationsEnabled:      c.Tracking.NotificationsEnabled,
		WellnessGoal:              c.Tracking.WellnessGoal,
	}
}
