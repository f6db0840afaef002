package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/runnerr0/mindful/internal/aggregate"
	"github.com/runnerr0/mindful/internal/wellness"
)

// reportJSON is the JSON output structure for the report command.
type reportJSON struct {
	Date              string           `json:"date"`
	WellnessScore     int              `json:"wellness_score"`
	ScoreTrend        *int             `json:"score_trend,omitempty"`
	TotalTimeMs       int64            `json:"total_time_ms"`
	FocusTimeMs       int64            `json:"focus_time_ms"`
	TabSwitches       int              `json:"tab_switches"`
	DistractionEvents int              `json:"distraction_events"`
	Breakdown         map[string]int64 `json:"breakdown"`
	TopSites          []topSiteJSON    `json:"top_sites"`
	Sentiments        sentimentsJSON   `json:"sentiments"`
}

type topSiteJSON struct {
	Domain      string `json:"domain"`
	TotalTimeMs int64  `json:"total_time_ms"`
	Visits      int    `json:"visits"`
	Category    string `json:"category"`
}

type sentimentsJSON struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// Execute implements the go-flags Commander interface for ReportCommand.
func (c *ReportCommand) Execute(args []string) error {
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

// executeWith runs report against a provided tracker (for testing).
func (c *ReportCommand) executeWith(tracker *aggregate.Tracker) error {
	day := tracker.Today()
	history := tracker.History()

	limit := c.Sites
	if limit <= 0 {
		limit = 5
	}
	sites := day.TopSites(limit)
	tally := day.Sentiments()

	var trend *int
	if delta, ok := aggregate.ScoreTrend(day, history); ok {
		trend = &delta
	}

	if c.globals != nil && c.globals.JSON {
		out := reportJSON{
			Date:              day.Date,
			WellnessScore:     day.WellnessScore,
			ScoreTrend:        trend,
			TotalTimeMs:       day.TotalTime.Milliseconds(),
			FocusTimeMs:       day.FocusTime.Milliseconds(),
			TabSwitches:       day.TabSwitches,
			DistractionEvents: day.DistractionEvents,
			Breakdown:         make(map[string]int64, len(day.Breakdown)),
			TopSites:          make([]topSiteJSON, len(sites)),
			Sentiments:        sentimentsJSON{Positive: tally.Positive, Negative: tally.Negative, Neutral: tally.Neutral},
		}
		for category, d := range day.Breakdown {
			out.Breakdown[string(category)] = d.Milliseconds()
		}
		for i, site := range sites {
			out.TopSites[i] = topSiteJSON{
				Domain:      site.Domain,
				TotalTimeMs: site.TotalTime.Milliseconds(),
				Visits:      site.Visits,
				Category:    string(site.Category),
			}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("Wellness Report — %s\n", day.Date)
	if trend != nil {
		switch {
		case *trend > 0:
			fmt.Printf("Score:         %d / 100 (up %d from yesterday)\n", day.WellnessScore, *trend)
		case *trend < 0:
			fmt.Printf("Score:         %d / 100 (down %d from yesterday)\n", day.WellnessScore, -*trend)
		default:
			fmt.Printf("Score:         %d / 100 (unchanged)\n", day.WellnessScore)
		}
	} else {
		fmt.Printf("Score:         %d / 100\n", day.WellnessScore)
	}
	fmt.Printf("Screen time:   %s\n", formatDuration(day.TotalTime))
	fmt.Printf("Focus time:    %s\n", formatDuration(day.FocusTime))
	fmt.Printf("Tab switches:  %d\n", day.TabSwitches)
	fmt.Printf("Distractions:  %d\n", day.DistractionEvents)

	if len(day.Breakdown) > 0 && day.TotalTime > 0 {
		fmt.Println()
		fmt.Println("Category Breakdown:")
		for _, entry := range sortedBreakdown(day) {
			pct := float64(entry.time) / float64(day.TotalTime) * 100
			fmt.Printf("  %-14s %-8s %.1f%%\n", entry.category, formatDuration(entry.time), pct)
		}
	}

	if len(sites) > 0 {
		fmt.Println()
		fmt.Println("Top Sites:")
		for _, site := range sites {
			fmt.Printf("  %-24s %-8s %d visit(s)\n", site.Domain, formatDuration(site.TotalTime), site.Visits)
		}
	}

	if tally.Positive+tally.Negative+tally.Neutral > 0 {
		fmt.Println()
		fmt.Printf("Content:       %d positive / %d negative / %d neutral\n", tally.Positive, tally.Negative, tally.Neutral)
	}

	return nil
}

type breakdownEntry struct {
	category wellness.Category
	time     time.Duration
}

// sortedBreakdown orders the category breakdown by time, descending, with a
// stable tiebreak on category name.
func sortedBreakdown(day *aggregate.Day) []breakdownEntry {
	out := make([]breakdownEntry, 0, len(day.Breakdown))
	for category, d := range day.Breakdown {
		out = append(out, breakdownEntry{category: category, time: d})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].time != out[j].time {
			return out[i].time > out[j].time
		}
		return out[i].category < out[j].category
	})
	return out
}
