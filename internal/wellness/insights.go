package wellness

import (
	"fmt"
	"math"
	"time"
)

// InsightType labels the tone of an insight.
type InsightType string

const (
	InsightPositive InsightType = "positive"
	InsightWarning  InsightType = "warning"
	InsightInfo     InsightType = "info"
)

// Insight is one human-readable observation about a day's browsing.
type Insight struct {
	Type        InsightType `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
}

// View selects the insight rule thresholds and result cap.
type View string

const (
	// ViewPopup is the compact view: lower thresholds, at most 3 insights.
	ViewPopup View = "popup"
	// ViewAnalytics is the detailed view: at most 6 insights.
	ViewAnalytics View = "analytics"
)

// DaySummary is one archived day in the weekly history.
type DaySummary struct {
	Date          string
	WellnessScore int
	TotalTime     time.Duration
	TabSwitches   int
	FocusTime     time.Duration
}

// Insights evaluates every insight rule against a day's stats and returns the
// matches in rule order, truncated to the view's cap. The function is pure
// and deterministic; history is currently unused by the rules but kept in the
// contract for trend rules.
func Insights(stats DayStats, history []DaySummary, view View) []Insight {
	var out []Insight

	excellent := 85
	if view == ViewPopup {
		excellent = 80
	}
	if stats.WellnessScore >= excellent {
		out = append(out, Insight{
			Type:        InsightPositive,
			Title:       "Excellent Digital Wellness",
			Description: "Your wellness score is in the top tier. Keep up the productive browsing!",
		})
	}
	if stats.WellnessScore < 50 {
		out = append(out, Insight{
			Type:        InsightWarning,
			Title:       "Room for Improvement",
			Description: "Your wellness score suggests too much time on distracting content. Consider setting focus goals.",
		})
	}

	totalHours := stats.TotalTime.Hours()
	if totalHours > 8 {
		out = append(out, Insight{
			Type:        InsightWarning,
			Title:       "High Screen Time",
			Description: fmt.Sprintf("You've spent %d hours browsing today. Consider taking regular breaks.", int(math.Round(totalHours))),
		})
	}

	// Floor of 1ns avoids dividing by zero on an empty day.
	totalForRatio := stats.TotalTime
	if totalForRatio <= 0 {
		totalForRatio = 1
	}
	focusRatio := float64(stats.FocusTime) / float64(totalForRatio)
	if focusRatio > 0.6 {
		out = append(out, Insight{
			Type:        InsightPositive,
			Title:       "Great Focus Ratio",
			Description: fmt.Sprintf("%d%% of your browsing time was spent in focused sessions. Excellent work!", int(math.Round(focusRatio*100))),
		})
	} else if focusRatio < 0.3 {
		out = append(out, Insight{
			Type:        InsightInfo,
			Title:       "Focus Opportunity",
			Description: "Try to increase focus time by spending longer stretches on productive sites.",
		})
	}

	if stats.ContentRecords > 0 {
		negativeRatio := float64(stats.NegativeRecords) / float64(stats.ContentRecords)
		if negativeRatio > 0.4 {
			out = append(out, Insight{
				Type:        InsightWarning,
				Title:       "Negative Content Exposure",
				Description: fmt.Sprintf("%d%% of your consumed content has negative sentiment. Consider balancing with more positive content.", int(math.Round(negativeRatio*100))),
			})
		}
	}

	switch view {
	case ViewPopup:
		if stats.TabSwitches > 100 {
			out = append(out, Insight{
				Type:        InsightWarning,
				Title:       "High Tab Activity",
				Description: "Try to reduce tab switching for better focus.",
			})
		}
	default:
		if stats.TabSwitches > 200 {
			out = append(out, Insight{
				Type:        InsightInfo,
				Title:       "High Tab Activity",
				Description: fmt.Sprintf("You switched tabs %d times today. Frequent switching can indicate scattered attention.", stats.TabSwitches),
			})
		}
	}

	if view == ViewPopup && stats.TotalTime > 0 {
		socialTime := stats.Breakdown[CategorySocial]
		if float64(socialTime) > float64(stats.TotalTime)*0.3 {
			out = append(out, Insight{
				Type:        InsightInfo,
				Title:       "Social Media Usage",
				Description: "Consider balancing social media with productive activities.",
			})
		}
	}

	limit := 6
	if view == ViewPopup {
		limit = 3
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
