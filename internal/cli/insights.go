package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/runnerr0/mindful/internal/aggregate"
	"github.com/runnerr0/mindful/internal/wellness"
)

// Execute implements the go-flags Commander interface for InsightsCommand.
func (c *InsightsCommand) Execute(args []string) error {
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

	return c.executeWith(tracker)
}

// executeWith runs insights against a provided tracker (for testing).
func (c *InsightsCommand) executeWith(tracker *aggregate.Tracker) error {
	var view wellness.View
	switch strings.ToLower(c.View) {
	case "", "popup":
		view = wellness.ViewPopup
	case "analytics":
		view = wellness.ViewAnalytics
	default:
		return fmt.Errorf("invalid view %q (use popup or analytics)", c.View)
	}

	insights := tracker.Insights(view)

	if c.globals != nil && c.globals.JSON {
		if insights == nil {
			insights = []wellness.Insight{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(insights)
	}

	if len(insights) == 0 {
		fmt.Println("No insights yet. Keep browsing and check back later.")
		return nil
	}

	for _, insight := range insights {
		fmt.Printf("[%s] %s\n", insight.Type, insight.Title)
		fmt.Printf("        %s\n", insight.Description)
	}
	return nil
}
