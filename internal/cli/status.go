package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/runnerr0/mindful/internal/aggregate"
	"github.com/runnerr0/mindful/internal/config"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string `json:"version"`
	DatabasePath      string `json:"database_path"`
	DatabaseSizeBytes int64  `json:"database_size_bytes"`
	Date              string `json:"date"`
	WellnessScore     int    `json:"wellness_score"`
	TotalTimeMs       int64  `json:"total_time_ms"`
	FocusTimeMs       int64  `json:"focus_time_ms"`
	TabSwitches       int    `json:"tab_switches"`
	DistractionEvents int    `json:"distraction_events"`
	HistoryDays       int    `json:"history_days"`
	FocusThresholdMs  int64  `json:"focus_threshold_ms"`
	TabSwitchLimit    int    `json:"tab_switch_limit"`
	Notifications     bool   `json:"notifications_enabled"`
	WellnessGoal      int    `json:"wellness_goal"`
	DaemonRunning     bool   `json:"daemon_running"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}

	store, db, dbPath, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	tracker, err := newTracker(context.Background(), cfg, store)
	if err != nil {
		return err
	}

	return c.executeWith(tracker, db, cfg, dbPath)
}

// executeWith runs status against a provided tracker and db (for testing).
func (c *StatusCommand) executeWith(tracker *aggregate.Tracker, db *sql.DB, cfg *config.Config, dbPath string) error {
	day := tracker.Today()
	settings := tracker.Settings()
	history := tracker.History()

	dbSize := getDatabaseSize(db, dbPath)
	daemonRunning := checkDaemon(cfg)

	if c.globals != nil && c.globals.JSON {
		out := statusJSON{
			Version:           c.version,
			DatabasePath:      dbPath,
			DatabaseSizeBytes: dbSize,
			Date:              day.Date,
			WellnessScore:     day.WellnessScore,
			TotalTimeMs:       day.TotalTime.Milliseconds(),
			FocusTimeMs:       day.FocusTime.Milliseconds(),
			TabSwitches:       day.TabSwitches,
			DistractionEvents: day.DistractionEvents,
			HistoryDays:       len(history),
			FocusThresholdMs:  settings.FocusThreshold.Milliseconds(),
			TabSwitchLimit:    settings.TabSwitchDistractionLimit,
			Notifications:     settings.NotificationsEnabled,
			WellnessGoal:      settings.WellnessGoal,
			DaemonRunning:     daemonRunning,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Println("Mindful Status")
	fmt.Println("==============")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("Database:      %s (%s)\n", dbPath, formatBytes(dbSize))
	fmt.Println()
	fmt.Printf("Today:         %s\n", day.Date)
	fmt.Printf("Score:         %d / 100 (goal %d)\n", day.WellnessScore, settings.WellnessGoal)
	fmt.Printf("Screen time:   %s\n", formatDuration(day.TotalTime))
	fmt.Printf("Focus time:    %s\n", formatDuration(day.FocusTime))
	fmt.Printf("Tab switches:  %d (distraction limit %d)\n", day.TabSwitches, settings.TabSwitchDistractionLimit)
	fmt.Printf("Distractions:  %d\n", day.DistractionEvents)
	fmt.Printf("History:       %d day(s)\n", len(history))
	fmt.Println()
	if settings.NotificationsEnabled {
		fmt.Println("Notifications: enabled")
	} else {
		fmt.Println("Notifications: disabled")
	}
	if daemonRunning {
		fmt.Println("Daemon:        running")
	} else {
		fmt.Println("Daemon:        not running")
	}

	return nil
}

// getDatabaseSize returns the database file size in bytes. For on-disk
// databases it uses os.Stat; for in-memory databases it queries
// page_count * page_size.
func getDatabaseSize(db *sql.DB, dbPath string) int64 {
	if info, err := os.Stat(dbPath); err == nil {
		return info.Size()
	}

	var pageCount, pageSize int64
	if err := db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0
	}
	if err := db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0
	}
	return pageCount * pageSize
}

// checkDaemon attempts an HTTP GET to the configured daemon endpoint.
// Returns true if the daemon responds within 1 second.
func checkDaemon(cfg *config.Config) bool {
	client := &http.Client{Timeout: 1 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://%s:%d/health", cfg.Daemon.Host, cfg.Daemon.Port))
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
