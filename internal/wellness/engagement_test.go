package wellness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEngagementScore_Thresholds(t *testing.T) {
	tests := []struct {
		name        string
		sessionTime time.Duration
		clicks      int
		scrollDepth int
		isActive    bool
		expected    float64
	}{
		{"idle short session", 30 * time.Second, 0, 0, false, 0},
		{"one minute exactly does not fire", time.Minute, 0, 0, false, 0},
		{"over one minute", 2 * time.Minute, 0, 0, false, 0.3},
		{"over five minutes stacks both tiers", 6 * time.Minute, 0, 0, false, 0.5},
		{"clicks over 3", 0, 4, 0, false, 0.2},
		{"clicks over 10 stacks", 0, 11, 0, false, 0.3},
		{"scroll over 25", 0, 0, 26, false, 0.1},
		{"scroll over 75 stacks", 0, 0, 80, false, 0.2},
		{"active only", 0, 0, 0, true, 0.1},
		{"everything maxed clamps to 1", time.Hour, 50, 100, true, 1.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := EngagementScore(tc.sessionTime, tc.clicks, tc.scrollDepth, tc.isActive)
			assert.InDelta(t, tc.expected, got, 1e-9)
		})
	}
}

func TestEngagementScore_Monotonic(t *testing.T) {
	base := EngagementScore(2*time.Minute, 4, 30, false)

	assert.GreaterOrEqual(t, EngagementScore(10*time.Minute, 4, 30, false), base)
	assert.GreaterOrEqual(t, EngagementScore(2*time.Minute, 20, 30, false), base)
	assert.GreaterOrEqual(t, EngagementScore(2*time.Minute, 4, 90, false), base)
	assert.GreaterOrEqual(t, EngagementScore(2*time.Minute, 4, 30, true), base)
}

func TestEngagementScore_NeverExceedsOne(t *testing.T) {
	for _, clicks := range []int{0, 5, 15, 1000} {
		got := EngagementScore(24*time.Hour, clicks, 100, true)
		assert.LessOrEqual(t, got, 1.0)
	}
}
