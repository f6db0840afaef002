package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/runnerr0/mindful/internal/aggregate"
	"github.com/runnerr0/mindful/internal/export"
)

// Execute implements the go-flags Commander interface for ImportCommand.
func (c *ImportCommand) Execute(args []string) error {
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

	in := io.Reader(os.Stdin)
	if c.Input != "" {
		f, err := os.Open(c.Input)
		if err != nil {
			return fmt.Errorf("open backup file: %w", err)
		}
		defer f.Close()
		in = f
	}

	return c.executeWith(tracker, in)
}

// executeWith validates the backup and replaces all state (for testing).
// Validation failures leave the existing state untouched.
func (c *ImportCommand) executeWith(tracker *aggregate.Tracker, in io.Reader) error {
	backup, err := export.Decode(in)
	if err != nil {
		return fmt.Errorf("invalid backup: %w", err)
	}

	day, history, settings, focusMode, err := backup.Restore()
	if err != nil {
		return fmt.Errorf("invalid backup: %w", err)
	}

	if err := tracker.ImportState(context.Background(), day, history, settings, focusMode); err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		out := map[string]any{
			"imported": true,
			"date":     day.Date,
			"history":  len(history),
		}
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(out)
	}

	fmt.Printf("Imported backup: day %s, %d history entr%s.\n", day.Date, len(history), pluralY(len(history)))
	return nil
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
