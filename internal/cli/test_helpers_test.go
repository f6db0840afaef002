package cli

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/mindful/internal/aggregate"
	"github.com/runnerr0/mindful/internal/storage"
)

// newTestTracker creates a tracker over an in-memory store with a fixed
// clock at 2026-08-28 10:00 UTC.
func newTestTracker(t *testing.T) (*aggregate.Tracker, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	runner := storage.NewMigrationRunner(db)
	require.NoError(t, runner.Run())

	store, err := storage.NewSQLiteStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	tracker, err := aggregate.NewTracker(context.Background(), store,
		aggregate.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	return tracker, db
}

// captureOutput captures stdout from a function and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}
