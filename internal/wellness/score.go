package wellness

import (
	"math"
	"time"
)

// NeutralScore is the wellness score of a day with no categorized activity.
const NeutralScore = 75

// DayStats is the read-only view of a day's aggregate that scoring and
// insight generation operate on.
type DayStats struct {
	TotalTime         time.Duration
	FocusTime         time.Duration
	TabSwitches       int
	DistractionEvents int
	WellnessScore     int
	Breakdown         map[Category]time.Duration

	// Content-analysis tallies, used by insight rules.
	ContentRecords  int
	NegativeRecords int
}

// Score derives the 0-100 wellness score from a day's stats. With an empty
// category breakdown it returns NeutralScore regardless of every other field.
// The function is pure: identical stats always produce the same score.
func Score(stats DayStats) int {
	if len(stats.Breakdown) == 0 {
		return NeutralScore
	}

	// Floor of 1ns avoids dividing by zero when a breakdown key exists but no
	// time has accrued yet.
	totalTime := stats.TotalTime
	if totalTime <= 0 {
		totalTime = 1
	}
	var weighted float64
	for category, spent := range stats.Breakdown {
		ratio := float64(spent) / float64(totalTime)
		weighted += BaseScore(category) * ratio
	}

	score := float64(int(math.Round(weighted * 100)))

	tabSwitchPenalty := math.Min(float64(stats.TabSwitches)*0.5, 20)
	focusBonus := math.Min(stats.FocusTime.Hours()*10, 15)
	distractionPenalty := float64(stats.DistractionEvents) * 5

	score = score - tabSwitchPenalty + focusBonus - distractionPenalty

	return int(math.Round(math.Max(0, math.Min(100, score))))
}
