package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/runnerr0/mindful/internal/wellness"
)

// Tracker owns the live daily aggregate and the weekly history. Every
// mutation goes through one of its Record methods; each is serialized on a
// single mutex, recomputes the wellness score, and persists write-through
// before returning. This replaces the storage-races of the original
// read-modify-write design with a single logical writer.
type Tracker struct {
	mu       sync.Mutex
	store    Store
	notifier Notifier
	settings Settings
	seed     Settings
	day      *Day
	history  []wellness.DaySummary
	now      func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithNotifier wires a notification sink for distraction alerts.
func WithNotifier(n Notifier) Option {
	return func(t *Tracker) { t.notifier = n }
}

// WithClock overrides the tracker's time source. Used by tests and by
// nothing else.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithSeedSettings overrides the settings written on first run. Existing
// persisted settings always win.
func WithSeedSettings(s Settings) Option {
	return func(t *Tracker) { t.seed = s }
}

// NewTracker loads persisted state from the store, seeds default settings on
// first run, and rolls the day over if the stored date is stale.
func NewTracker(ctx context.Context, store Store, opts ...Option) (*Tracker, error) {
	t := &Tracker{
		store: store,
		seed:  DefaultSettings(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}

	settings, found, err := store.LoadSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if !found {
		settings = t.seed
		if err := store.SaveSettings(ctx, settings); err != nil {
			return nil, fmt.Errorf("seed settings: %w", err)
		}
	}
	t.settings = settings

	day, history, err := store.LoadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	t.history = history

	today := t.now().Format(DateFormat)
	if day == nil {
		day = NewDay(today)
		if err := store.SaveDayCounters(ctx, day); err != nil {
			return nil, fmt.Errorf("init day: %w", err)
		}
	}
	t.day = day

	if t.day.Date != today {
		if err := t.rolloverLocked(ctx, today); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// RecordPageActivity ingests one page-activity report: categorize the URL,
// accrue time into the totals and the category breakdown, count focus time
// for long productive sessions, append the session record, and recompute.
func (t *Tracker) RecordPageActivity(ctx context.Context, url string, timeSpent time.Duration, eng Engagement) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.maybeRollover(ctx); err != nil {
		return err
	}

	category := wellness.Categorize(url)
	now := t.now()

	t.day.TotalTime += timeSpent
	t.day.Breakdown[category] += timeSpent

	if category == wellness.CategoryProductive && timeSpent > t.settings.FocusThreshold {
		t.day.FocusTime += timeSpent
	}

	session := Session{
		ID:         uuid.NewString(),
		URL:        url,
		Category:   category,
		TimeSpent:  timeSpent,
		Timestamp:  now,
		Engagement: eng,
	}
	t.day.Sessions = append(t.day.Sessions, session)
	t.day.LastUpdate = now
	t.recomputeLocked()

	if err := t.store.SaveDayCounters(ctx, t.day); err != nil {
		return fmt.Errorf("persist page activity: %w", err)
	}
	if err := t.store.AppendSession(ctx, t.day.Date, session); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// RecordTabSwitch counts a tab activation. Every switch past the configured
// limit counts another distraction event, not just the one that crosses it.
func (t *Tracker) RecordTabSwitch(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.maybeRollover(ctx); err != nil {
		return err
	}

	t.day.TabSwitches++
	if t.day.TabSwitches > t.settings.TabSwitchDistractionLimit {
		t.day.DistractionEvents++
	}
	t.day.LastUpdate = t.now()
	t.recomputeLocked()

	if err := t.store.SaveDayCounters(ctx, t.day); err != nil {
		return fmt.Errorf("persist tab switch: %w", err)
	}
	return nil
}

// RecordContentAnalysis appends an analyzed page to the bounded content log
// and counts a distraction if the analysis flagged one.
func (t *Tracker) RecordContentAnalysis(ctx context.Context, url, title string, analysis ContentAnalysis) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.maybeRollover(ctx); err != nil {
		return err
	}

	record := ContentRecord{
		URL:       url,
		Title:     title,
		Analysis:  analysis,
		Timestamp: t.now(),
	}
	t.day.ContentLog.Append(record)

	if analysis.IsDistraction {
		t.day.DistractionEvents++
	}
	t.day.LastUpdate = t.now()
	t.recomputeLocked()

	if err := t.store.SaveDayCounters(ctx, t.day); err != nil {
		return fmt.Errorf("persist content analysis: %w", err)
	}
	if err := t.store.AppendContent(ctx, t.day.Date, record, ContentLogCap); err != nil {
		return fmt.Errorf("persist content record: %w", err)
	}
	return nil
}

// RecordDistraction counts an explicitly detected distraction and, when
// notifications are enabled, requests a user notification.
func (t *Tracker) RecordDistraction(ctx context.Context, url, title string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.maybeRollover(ctx); err != nil {
		return err
	}

	t.day.DistractionEvents++
	t.day.LastUpdate = t.now()
	t.recomputeLocked()

	if err := t.store.SaveDayCounters(ctx, t.day); err != nil {
		return fmt.Errorf("persist distraction: %w", err)
	}

	if t.settings.NotificationsEnabled && t.notifier != nil {
		if err := t.notifier.Notify(ctx, "Distraction detected", fmt.Sprintf("%s looks distracting: %s", title, url)); err != nil {
			slog.Debug("distraction notification failed", "error", err)
		}
	}
	return nil
}

// SetActiveTab records the currently focused tab. Totals are untouched; time
// accrual arrives separately via page-activity reports.
func (t *Tracker) SetActiveTab(ctx context.Context, tabID int, url string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.maybeRollover(ctx); err != nil {
		return err
	}

	t.day.ActiveTab = &ActiveTab{
		TabID:     tabID,
		URL:       url,
		Category:  wellness.Categorize(url),
		StartTime: t.now(),
	}
	t.day.LastUpdate = t.now()

	if err := t.store.SaveDayCounters(ctx, t.day); err != nil {
		return fmt.Errorf("persist active tab: %w", err)
	}
	return nil
}

// Rollover archives the current day into the weekly history and starts a
// fresh one. A repeated signal for the same calendar day is a no-op, so a
// duplicate boundary alarm never produces spurious history entries.
func (t *Tracker) Rollover(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.maybeRollover(ctx)
}

func (t *Tracker) maybeRollover(ctx context.Context) error {
	today := t.now().Format(DateFormat)
	if t.day.Date == today {
		return nil
	}
	return t.rolloverLocked(ctx, today)
}

func (t *Tracker) rolloverLocked(ctx context.Context, today string) error {
	summary := t.day.Summary()
	fresh := NewDay(today)

	if err := t.store.RolloverDay(ctx, summary, fresh, HistoryCap); err != nil {
		return fmt.Errorf("rollover day: %w", err)
	}

	t.history = appendHistory(t.history, summary)
	t.day = fresh
	slog.Info("daily rollover", "archived", summary.Date, "score", summary.WellnessScore, "new", today)
	return nil
}

func (t *Tracker) recomputeLocked() {
	t.day.WellnessScore = wellness.Score(t.day.Stats())
}

// Today returns a copy of the live aggregate.
func (t *Tracker) Today() *Day {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.day.Clone()
}

// History returns a copy of the weekly history, oldest first.
func (t *Tracker) History() []wellness.DaySummary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]wellness.DaySummary(nil), t.history...)
}

// Insights generates the insight list for the requested view.
func (t *Tracker) Insights(view wellness.View) []wellness.Insight {
	t.mu.Lock()
	defer t.mu.Unlock()
	return wellness.Insights(t.day.Stats(), t.history, view)
}

// FocusMode reports whether focus mode is currently enabled.
func (t *Tracker) FocusMode(ctx context.Context) (bool, error) {
	return t.store.FocusMode(ctx)
}

// SetFocusMode persists the focus mode flag.
func (t *Tracker) SetFocusMode(ctx context.Context, enabled bool) error {
	if err := t.store.SetFocusMode(ctx, enabled); err != nil {
		return fmt.Errorf("set focus mode: %w", err)
	}
	return nil
}

// Settings returns the current tracker settings.
func (t *Tracker) Settings() Settings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.settings
}

// UpdateSettings merges the patch into the stored settings.
func (t *Tracker) UpdateSettings(ctx context.Context, patch SettingsPatch) (Settings, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	merged := patch.Apply(t.settings)
	if err := t.store.SaveSettings(ctx, merged); err != nil {
		return t.settings, fmt.Errorf("save settings: %w", err)
	}
	t.settings = merged
	return merged, nil
}

// ImportState replaces all tracker state with an imported snapshot.
func (t *Tracker) ImportState(ctx context.Context, day *Day, history []wellness.DaySummary, settings Settings, focusMode bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(history) > HistoryCap {
		history = history[len(history)-HistoryCap:]
	}
	if err := t.store.ReplaceState(ctx, day, history, settings, focusMode); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	t.day = day
	t.history = append([]wellness.DaySummary(nil), history...)
	t.settings = settings
	return nil
}
