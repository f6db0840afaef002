package aggregate

import (
	"net/url"
	"sort"
	"time"

	"github.com/runnerr0/mindful/internal/wellness"
)

// SiteUsage aggregates a single domain's activity within a day.
type SiteUsage struct {
	Domain    string
	TotalTime time.Duration
	Visits    int
	Category  wellness.Category
	LastVisit time.Time
}

// TopSites aggregates the session log by domain and returns up to limit
// entries, most time first. Sessions with unparseable URLs are skipped.
func (d *Day) TopSites(limit int) []SiteUsage {
	byDomain := make(map[string]*SiteUsage)
	for _, s := range d.Sessions {
		u, err := url.Parse(s.URL)
		if err != nil || u.Hostname() == "" {
			continue
		}
		domain := u.Hostname()

		usage, ok := byDomain[domain]
		if !ok {
			usage = &SiteUsage{Domain: domain, Category: s.Category}
			byDomain[domain] = usage
		}
		usage.TotalTime += s.TimeSpent
		usage.Visits++
		if s.Timestamp.After(usage.LastVisit) {
			usage.LastVisit = s.Timestamp
		}
	}

	out := make([]SiteUsage, 0, len(byDomain))
	for _, usage := range byDomain {
		out = append(out, *usage)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalTime != out[j].TotalTime {
			return out[i].TotalTime > out[j].TotalTime
		}
		return out[i].Domain < out[j].Domain
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// HourlyActivity buckets session time by local hour of day.
func (d *Day) HourlyActivity() [24]time.Duration {
	var buckets [24]time.Duration
	for _, s := range d.Sessions {
		buckets[s.Timestamp.Hour()] += s.TimeSpent
	}
	return buckets
}

// SentimentTally counts content records per sentiment label.
type SentimentTally struct {
	Positive int
	Negative int
	Neutral  int
}

// Sentiments tallies the content-analysis log. Unlabeled records count as
// neutral.
func (d *Day) Sentiments() SentimentTally {
	var tally SentimentTally
	for _, r := range d.ContentLog.Records() {
		switch r.Analysis.Sentiment {
		case "positive":
			tally.Positive++
		case "negative":
			tally.Negative++
		default:
			tally.Neutral++
		}
	}
	return tally
}

// ScoreTrend returns the score delta against the most recent history entry
// and whether a comparison day exists.
func ScoreTrend(today *Day, history []wellness.DaySummary) (int, bool) {
	if len(history) == 0 {
		return 0, false
	}
	yesterday := history[len(history)-1]
	return today.WellnessScore - yesterday.WellnessScore, true
}
