package aggregate

import (
	"time"

	"github.com/runnerr0/mindful/internal/wellness"
)

// Engagement carries the raw interaction counters reported with a page
// activity event, plus the normalized score derived from them.
type Engagement struct {
	Score       float64
	Clicks      int
	ScrollDepth int
	IsActive    bool
}

// Session is one page-activity report. Sessions are immutable once appended
// and ordered by arrival within a day.
type Session struct {
	ID         string
	URL        string
	Category   wellness.Category
	TimeSpent  time.Duration
	Timestamp  time.Time
	Engagement Engagement
}

// ContentAnalysis is the pre-computed analysis of a page's content. The
// keyword heuristics that produce it live in the extension; the tracker only
// consumes the result.
type ContentAnalysis struct {
	Type          string
	Sentiment     string
	IsDistraction bool
	ReadingTime   int
	HasVideo      bool
	HasAds        bool
}

// ContentRecord is one analyzed page in the bounded content log.
type ContentRecord struct {
	URL       string
	Title     string
	Analysis  ContentAnalysis
	Timestamp time.Time
}

// ActiveTab tracks the currently focused browser tab. It does not contribute
// to totals by itself; time accrual arrives via page-activity reports.
type ActiveTab struct {
	TabID     int
	URL       string
	Category  wellness.Category
	StartTime time.Time
}

// Settings is the process-wide tracker configuration, persisted alongside
// the aggregates.
type Settings struct {
	FocusThreshold            time.Duration
	TabSwitchDistractionLimit int
	NotificationsEnabled      bool
	WellnessGoal              int
}

// DefaultSettings returns the settings seeded at install time.
func DefaultSettings() Settings {
	return Settings{
		FocusThreshold:            5 * time.Minute,
		TabSwitchDistractionLimit: 50,
		NotificationsEnabled:      true,
		WellnessGoal:              70,
	}
}

// SettingsPatch is a partial settings update. Nil fields are left untouched,
// so an update merges into the stored settings rather than overwriting them.
type SettingsPatch struct {
	FocusThreshold            *time.Duration
	TabSwitchDistractionLimit *int
	NotificationsEnabled      *bool
	WellnessGoal              *int
}

// Apply merges the patch into s and returns the result.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.FocusThreshold != nil {
		s.FocusThreshold = *p.FocusThreshold
	}
	if p.TabSwitchDistractionLimit != nil {
		s.TabSwitchDistractionLimit = *p.TabSwitchDistractionLimit
	}
	if p.NotificationsEnabled != nil {
		s.NotificationsEnabled = *p.NotificationsEnabled
	}
	if p.WellnessGoal != nil {
		s.WellnessGoal = *p.WellnessGoal
	}
	return s
}
