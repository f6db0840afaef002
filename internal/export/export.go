// Package export reads and writes the Mindful backup format: a single JSON
// document carrying the live day, the weekly history, the settings, and the
// focus-mode flag. Durations are serialized as millisecond integers and
// timestamps as RFC 3339 strings.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/runnerr0/mindful/internal/aggregate"
	"github.com/runnerr0/mindful/internal/wellness"
)

// FormatVersion is the backup format written by this build.
const FormatVersion = "1.0"

var (
	ErrMissingVersion = errors.New("backup missing version field")
	ErrMissingData    = errors.New("backup missing data field")
)

// Backup is the top-level document. Version and Data are both mandatory; a
// document missing either is rejected before any state is touched.
type Backup struct {
	Version    string   `json:"version"`
	ExportDate string   `json:"exportDate"`
	Data       *payload `json:"data"`
}

type payload struct {
	CurrentDay    dayJSON          `json:"current_day"`
	WeeklyHistory []daySummaryJSON `json:"weekly_history"`
	Settings      settingsJSON     `json:"settings"`
	FocusMode     bool             `json:"focus_mode"`
}

type dayJSON struct {
	Date              string           `json:"date"`
	TotalTimeMs       int64            `json:"total_time_ms"`
	FocusTimeMs       int64            `json:"focus_time_ms"`
	TabSwitches       int              `json:"tab_switches"`
	DistractionEvents int              `json:"distraction_events"`
	WellnessScore     int              `json:"wellness_score"`
	Breakdown         map[string]int64 `json:"breakdown"`
	Sessions          []sessionJSON    `json:"sessions"`
	ContentLog        []contentJSON    `json:"content_log"`
	ActiveTab         *activeTabJSON   `json:"active_tab,omitempty"`
	LastUpdate        string           `json:"last_update,omitempty"`
}

type sessionJSON struct {
	ID          string  `json:"id"`
	URL         string  `json:"url"`
	Category    string  `json:"category"`
	TimeSpentMs int64   `json:"time_spent_ms"`
	Timestamp   string  `json:"timestamp"`
	Engagement  float64 `json:"engagement"`
	Clicks      int     `json:"clicks"`
	ScrollDepth int     `json:"scroll_depth"`
	IsActive    bool    `json:"is_active"`
}

type contentJSON struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	ContentType   string `json:"content_type"`
	Sentiment     string `json:"sentiment"`
	IsDistraction bool   `json:"is_distraction"`
	ReadingTime   int    `json:"reading_time"`
	HasVideo      bool   `json:"has_video"`
	HasAds        bool   `json:"has_ads"`
	Timestamp     string `json:"timestamp"`
}

type activeTabJSON struct {
	TabID     int    `json:"tab_id"`
	URL       string `json:"url"`
	Category  string `json:"category"`
	StartTime string `json:"start_time"`
}

type daySummaryJSON struct {
	Date          string `json:"date"`
	WellnessScore int    `json:"wellness_score"`
	TotalTimeMs   int64  `json:"total_time_ms"`
	TabSwitches   int    `json:"tab_switches"`
	FocusTimeMs   int64  `json:"focus_time_ms"`
}

type settingsJSON struct {
	FocusThresholdMs          int64 `json:"focus_threshold_ms"`
	TabSwitchDistractionLimit int   `json:"tab_switch_distraction_limit"`
	NotificationsEnabled      bool  `json:"notifications_enabled"`
	WellnessGoal              int   `json:"wellness_goal"`
}

// Snapshot builds a backup document from live state.
func Snapshot(day *aggregate.Day, history []wellness.DaySummary, settings aggregate.Settings, focusMode bool, now time.Time) *Backup {
	data := &payload{
		CurrentDay:    encodeDay(day),
		WeeklyHistory: make([]daySummaryJSON, len(history)),
		Settings: settingsJSON{
			FocusThresholdMs:          settings.FocusThreshold.Milliseconds(),
			TabSwitchDistractionLimit: settings.TabSwitchDistractionLimit,
			NotificationsEnabled:      settings.NotificationsEnabled,
			WellnessGoal:              settings.WellnessGoal,
		},
		FocusMode: focusMode,
	}
	for i, s := range history {
		data.WeeklyHistory[i] = daySummaryJSON{
			Date:          s.Date,
			WellnessScore: s.WellnessScore,
			TotalTimeMs:   s.TotalTime.Milliseconds(),
			TabSwitches:   s.TabSwitches,
			FocusTimeMs:   s.FocusTime.Milliseconds(),
		}
	}

	return &Backup{
		Version:    FormatVersion,
		ExportDate: now.UTC().Format(time.RFC3339),
		Data:       data,
	}
}

// Encode writes the backup as indented JSON.
func (b *Backup) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return nil
}

// Decode parses and validates a backup document. Both the version and the
// data section must be present; anything else is rejected.
func Decode(r io.Reader) (*Backup, error) {
	var b Backup
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("parse backup: %w", err)
	}
	if b.Version == "" {
		return nil, ErrMissingVersion
	}
	if b.Data == nil {
		return nil, ErrMissingData
	}
	return &b, nil
}

// Restore converts the backup back into domain state.
func (b *Backup) Restore() (*aggregate.Day, []wellness.DaySummary, aggregate.Settings, bool, error) {
	if b.Data == nil {
		return nil, nil, aggregate.Settings{}, false, ErrMissingData
	}

	day, err := decodeDay(b.Data.CurrentDay)
	if err != nil {
		return nil, nil, aggregate.Settings{}, false, err
	}

	history := make([]wellness.DaySummary, len(b.Data.WeeklyHistory))
	for i, s := range b.Data.WeeklyHistory {
		history[i] = wellness.DaySummary{
			Date:          s.Date,
			WellnessScore: s.WellnessScore,
			TotalTime:     time.Duration(s.TotalTimeMs) * time.Millisecond,
			TabSwitches:   s.TabSwitches,
			FocusTime:     time.Duration(s.FocusTimeMs) * time.Millisecond,
		}
	}

	settings := aggregate.Settings{
		FocusThreshold:            time.Duration(b.Data.Settings.FocusThresholdMs) * time.Millisecond,
		TabSwitchDistractionLimit: b.Data.Settings.TabSwitchDistractionLimit,
		NotificationsEnabled:      b.Data.Settings.NotificationsEnabled,
		WellnessGoal:              b.Data.Settings.WellnessGoal,
	}

	return day, history, settings, b.Data.FocusMode, nil
}

func encodeDay(day *aggregate.Day) dayJSON {
	out := dayJSON{
		Date:              day.Date,
		TotalTimeMs:       day.TotalTime.Milliseconds(),
		FocusTimeMs:       day.FocusTime.Milliseconds(),
		TabSwitches:       day.TabSwitches,
		DistractionEvents: day.DistractionEvents,
		WellnessScore:     day.WellnessScore,
		Breakdown:         make(map[string]int64, len(day.Breakdown)),
		Sessions:          make([]sessionJSON, len(day.Sessions)),
		ContentLog:        make([]contentJSON, 0, day.ContentLog.Len()),
	}
	for category, d := range day.Breakdown {
		out.Breakdown[string(category)] = d.Milliseconds()
	}
	for i, s := range day.Sessions {
		out.Sessions[i] = sessionJSON{
			ID:          s.ID,
			URL:         s.URL,
			Category:    string(s.Category),
			TimeSpentMs: s.TimeSpent.Milliseconds(),
			Timestamp:   s.Timestamp.UTC().Format(time.RFC3339Nano),
			Engagement:  s.Engagement.Score,
			Clicks:      s.Engagement.Clicks,
			ScrollDepth: s.Engagement.ScrollDepth,
			IsActive:    s.Engagement.IsActive,
		}
	}
	for _, r := range day.ContentLog.Records() {
		out.ContentLog = append(out.ContentLog, contentJSON{
			URL:           r.URL,
			Title:         r.Title,
			ContentType:   r.Analysis.Type,
			Sentiment:     r.Analysis.Sentiment,
			IsDistraction: r.Analysis.IsDistraction,
			ReadingTime:   r.Analysis.ReadingTime,
			HasVideo:      r.Analysis.HasVideo,
			HasAds:        r.Analysis.HasAds,
			Timestamp:     r.Timestamp.UTC().Format(time.RFC3339Nano),
		})
	}
	if day.ActiveTab != nil {
		out.ActiveTab = &activeTabJSON{
			TabID:     day.ActiveTab.TabID,
			URL:       day.ActiveTab.URL,
			Category:  string(day.ActiveTab.Category),
			StartTime: day.ActiveTab.StartTime.UTC().Format(time.RFC3339Nano),
		}
	}
	if !day.LastUpdate.IsZero() {
		out.LastUpdate = day.LastUpdate.UTC().Format(time.RFC3339Nano)
	}
	return out
}

func decodeDay(in dayJSON) (*aggregate.Day, error) {
	if in.Date == "" {
		return nil, fmt.Errorf("backup day missing date")
	}

	day := aggregate.NewDay(in.Date)
	day.TotalTime = time.Duration(in.TotalTimeMs) * time.Millisecond
	day.FocusTime = time.Duration(in.FocusTimeMs) * time.Millisecond
	day.TabSwitches = in.TabSwitches
	day.DistractionEvents = in.DistractionEvents
	day.WellnessScore = in.WellnessScore

	for category, ms := range in.Breakdown {
		day.Breakdown[wellness.Category(category)] += time.Duration(ms) * time.Millisecond
	}

	for _, s := range in.Sessions {
		ts, err := parseTime(s.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("backup session %s: %w", s.ID, err)
		}
		day.Sessions = append(day.Sessions, aggregate.Session{
			ID:        s.ID,
			URL:       s.URL,
			Category:  wellness.Category(s.Category),
			TimeSpent: time.Duration(s.TimeSpentMs) * time.Millisecond,
			Timestamp: ts,
			Engagement: aggregate.Engagement{
				Score:       s.Engagement,
				Clicks:      s.Clicks,
				ScrollDepth: s.ScrollDepth,
				IsActive:    s.IsActive,
			},
		})
	}

	for _, r := range in.ContentLog {
		ts, err := parseTime(r.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("backup content record: %w", err)
		}
		day.ContentLog.Append(aggregate.ContentRecord{
			URL:   r.URL,
			Title: r.Title,
			Analysis: aggregate.ContentAnalysis{
				Type:          r.ContentType,
				Sentiment:     r.Sentiment,
				IsDistraction: r.IsDistraction,
				ReadingTime:   r.ReadingTime,
				HasVideo:      r.HasVideo,
				HasAds:        r.HasAds,
			},
			Timestamp: ts,
		})
	}

	if in.ActiveTab != nil {
		ts, err := parseTime(in.ActiveTab.StartTime)
		if err != nil {
			return nil, fmt.Errorf("backup active tab: %w", err)
		}
		day.ActiveTab = &aggregate.ActiveTab{
			TabID:     in.ActiveTab.TabID,
			URL:       in.ActiveTab.URL,
			Category:  wellness.Category(in.ActiveTab.Category),
			StartTime: ts,
		}
	}

	if in.LastUpdate != "" {
		ts, err := parseTime(in.LastUpdate)
		if err != nil {
			return nil, fmt.Errorf("backup last update: %w", err)
		}
		day.LastUpdate = ts
	}

	return day, nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return ts, nil
}
