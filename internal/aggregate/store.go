package aggregate

import (
	"context"

	"github.com/runnerr0/mindful/internal/wellness"
)

// Store is the persistence boundary for the tracker. Implementations must
// make RolloverDay and ReplaceState atomic: a reader opening the store must
// never observe a partially-reset day.
type Store interface {
	// LoadState returns the persisted live day (nil if none exists yet) and
	// the weekly history, oldest first.
	LoadState(ctx context.Context) (*Day, []wellness.DaySummary, error)

	// SaveDayCounters upserts the day's counter row (totals, score,
	// breakdown, active tab, last update) without touching the logs.
	SaveDayCounters(ctx context.Context, day *Day) error

	// AppendSession persists one session record for the given date.
	AppendSession(ctx context.Context, date string, s Session) error

	// AppendContent persists one content record for the given date and trims
	// the stored log to keep records, oldest deleted first.
	AppendContent(ctx context.Context, date string, r ContentRecord, keep int) error

	// RolloverDay archives the outgoing day's summary, trims history to
	// keepDays, deletes the outgoing day's rows, and installs the fresh day,
	// all in one transaction.
	RolloverDay(ctx context.Context, summary wellness.DaySummary, fresh *Day, keepDays int) error

	// ReplaceState swaps the entire persisted state in one transaction.
	// Used by import.
	ReplaceState(ctx context.Context, day *Day, history []wellness.DaySummary, settings Settings, focusMode bool) error

	LoadSettings(ctx context.Context) (Settings, bool, error)
	SaveSettings(ctx context.Context, s Settings) error

	FocusMode(ctx context.Context) (bool, error)
	SetFocusMode(ctx context.Context, enabled bool) error

	PurgeAll(ctx context.Context) error
	Close() error
}

// Notifier delivers user-facing notification requests. Delivery is best
// effort; the tracker never blocks an ingestion on it.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}
