package aggregate

import (
	"time"

	"github.com/runnerr0/mindful/internal/wellness"
)

// ContentLogCap bounds the per-day content-analysis log.
const ContentLogCap = 100

// ContentLog is a bounded append-only log of content-analysis records.
// Appending past the cap evicts the oldest record first.
type ContentLog struct {
	records []ContentRecord
}

// Append adds a record, dropping the oldest one if the log is full.
func (l *ContentLog) Append(r ContentRecord) {
	l.records = append(l.records, r)
	if len(l.records) > ContentLogCap {
		l.records = l.records[len(l.records)-ContentLogCap:]
	}
}

// Records returns the log contents, oldest first. The returned slice must
// not be mutated by the caller.
func (l *ContentLog) Records() []ContentRecord {
	return l.records
}

// Len reports the number of retained records.
func (l *ContentLog) Len() int {
	return len(l.records)
}

// Day is the live aggregate for one calendar day. All mutation goes through
// the Tracker; everything else sees copies.
type Day struct {
	Date              string
	TotalTime         time.Duration
	FocusTime         time.Duration
	TabSwitches       int
	DistractionEvents int
	WellnessScore     int
	Breakdown         map[wellness.Category]time.Duration
	Sessions          []Session
	ContentLog        ContentLog
	ActiveTab         *ActiveTab
	LastUpdate        time.Time
}

// DateFormat is the calendar-day key format for aggregates and history.
const DateFormat = "2006-01-02"

// NewDay constructs a fresh aggregate for the given date with all counters
// zeroed and the neutral wellness score.
func NewDay(date string) *Day {
	return &Day{
		Date:          date,
		WellnessScore: wellness.NeutralScore,
		Breakdown:     make(map[wellness.Category]time.Duration),
	}
}

// Stats projects the day into the read-only view that scoring and insight
// generation consume.
func (d *Day) Stats() wellness.DayStats {
	var negative int
	for _, r := range d.ContentLog.Records() {
		if r.Analysis.Sentiment == "negative" {
			negative++
		}
	}

	return wellness.DayStats{
		TotalTime:         d.TotalTime,
		FocusTime:         d.FocusTime,
		TabSwitches:       d.TabSwitches,
		DistractionEvents: d.DistractionEvents,
		WellnessScore:     d.WellnessScore,
		Breakdown:         d.Breakdown,
		ContentRecords:    d.ContentLog.Len(),
		NegativeRecords:   negative,
	}
}

// Summary condenses the day into its weekly-history entry.
func (d *Day) Summary() wellness.DaySummary {
	return wellness.DaySummary{
		Date:          d.Date,
		WellnessScore: d.WellnessScore,
		TotalTime:     d.TotalTime,
		TabSwitches:   d.TabSwitches,
		FocusTime:     d.FocusTime,
	}
}

// Clone returns a deep copy safe to hand to readers.
func (d *Day) Clone() *Day {
	out := *d
	out.Breakdown = make(map[wellness.Category]time.Duration, len(d.Breakdown))
	for k, v := range d.Breakdown {
		out.Breakdown[k] = v
	}
	out.Sessions = append([]Session(nil), d.Sessions...)
	out.ContentLog = ContentLog{records: append([]ContentRecord(nil), d.ContentLog.records...)}
	if d.ActiveTab != nil {
		tab := *d.ActiveTab
		out.ActiveTab = &tab
	}
	return &out
}

// HistoryCap bounds the weekly history to the most recent entries.
const HistoryCap = 7

// appendHistory appends a day summary with FIFO eviction at HistoryCap.
func appendHistory(history []wellness.DaySummary, s wellness.DaySummary) []wellness.DaySummary {
	history = append(history, s)
	if len(history) > HistoryCap {
		history = history[len(history)-HistoryCap:]
	}
	return history
}
