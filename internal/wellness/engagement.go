package wellness

import "time"

// EngagementScore rates a page session's engagement in [0, 1] from raw
// interaction counters. Scoring is additive: each threshold contributes a
// fixed amount and both tiers of a signal can fire together. The result is
// clamped at 1.0 and is monotonic non-decreasing in every input.
func EngagementScore(sessionTime time.Duration, clicks int, scrollDepthPct int, isActive bool) float64 {
	var score float64

	if sessionTime > time.Minute {
		score += 0.3
	}
	if sessionTime > 5*time.Minute {
		score += 0.2
	}

	if clicks > 3 {
		score += 0.2
	}
	if clicks > 10 {
		score += 0.1
	}

	if scrollDepthPct > 25 {
		score += 0.1
	}
	if scrollDepthPct > 75 {
		score += 0.1
	}

	if isActive {
		score += 0.1
	}

	if score > 1.0 {
		return 1.0
	}
	return score
}
