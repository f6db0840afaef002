package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/runnerr0/mindful/internal/aggregate"
	"github.com/runnerr0/mindful/internal/export"
)

// Execute implements the go-flags Commander interface for ExportCommand.
func (c *ExportCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}

	store, db, _, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	tracker, err := newTracker(context.Background(), cfg, store)
	if err != nil {
		return err
	}

	out := io.Writer(os.Stdout)
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := c.executeWith(tracker, out); err != nil {
		return err
	}
	if c.Output != "" && !(c.globals != nil && c.globals.JSON) {
		fmt.Fprintf(os.Stderr, "Exported backup to %s\n", c.Output)
	}
	return nil
}

// executeWith writes the backup to the given writer (for testing).
func (c *ExportCommand) executeWith(tracker *aggregate.Tracker, out io.Writer) error {
	focusMode, err := tracker.FocusMode(context.Background())
	if err != nil {
		return fmt.Errorf("read focus mode: %w", err)
	}

	backup := export.Snapshot(tracker.Today(), tracker.History(), tracker.Settings(), focusMode, time.Now())
	return backup.Encode(out)
}
