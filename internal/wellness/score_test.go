package wellness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScore_EmptyBreakdownReturnsNeutral(t *testing.T) {
	assert.Equal(t, NeutralScore, Score(DayStats{}))

	// Other fields are ignored entirely when there is no category data.
	assert.Equal(t, NeutralScore, Score(DayStats{
		TabSwitches:       500,
		DistractionEvents: 40,
		FocusTime:         10 * time.Hour,
	}))
}

func TestScore_ZeroTotalWithBreakdownKey(t *testing.T) {
	// A zero-duration session creates a breakdown key without accruing time.
	// The weighted base must come out 0, not a NaN-poisoned conversion.
	stats := DayStats{
		TotalTime: 0,
		Breakdown: map[Category]time.Duration{
			CategoryProductive: 0,
		},
	}
	assert.Equal(t, 0, Score(stats))

	// Penalties and bonuses still apply on top of the zero base.
	stats.FocusTime = 30 * time.Minute
	assert.Equal(t, 5, Score(stats))
}

func TestScore_AllProductiveWithFocusClampsAt100(t *testing.T) {
	// Weighted base is 100; the focus bonus pushes past the cap.
	stats := DayStats{
		TotalTime: 400000 * time.Millisecond,
		FocusTime: 400000 * time.Millisecond,
		Breakdown: map[Category]time.Duration{
			CategoryProductive: 400000 * time.Millisecond,
		},
	}
	assert.Equal(t, 100, Score(stats))
}

func TestScore_WeightedAverage(t *testing.T) {
	// 1h productive (1.0) + 1h entertainment (0.2) -> base 60.
	stats := DayStats{
		TotalTime: 2 * time.Hour,
		Breakdown: map[Category]time.Duration{
			CategoryProductive:    time.Hour,
			CategoryEntertainment: time.Hour,
		},
	}
	assert.Equal(t, 60, Score(stats))
}

func TestScore_TabSwitchPenaltyCapped(t *testing.T) {
	stats := DayStats{
		TotalTime: time.Hour,
		Breakdown: map[Category]time.Duration{
			CategoryProductive: time.Hour,
		},
	}

	stats.TabSwitches = 10 // 5-point penalty
	assert.Equal(t, 95, Score(stats))

	stats.TabSwitches = 40 // would be 20, exactly at cap
	assert.Equal(t, 80, Score(stats))

	stats.TabSwitches = 1000 // capped at 20
	assert.Equal(t, 80, Score(stats))
}

func TestScore_FocusBonusCapped(t *testing.T) {
	stats := DayStats{
		TotalTime: 10 * time.Hour,
		Breakdown: map[Category]time.Duration{
			CategoryEntertainment: 10 * time.Hour, // base 20
		},
	}

	stats.FocusTime = 30 * time.Minute // +5
	assert.Equal(t, 25, Score(stats))

	stats.FocusTime = 10 * time.Hour // would be 100, capped at 15
	assert.Equal(t, 35, Score(stats))
}

func TestScore_DistractionPenaltyUnbounded(t *testing.T) {
	stats := DayStats{
		TotalTime: time.Hour,
		Breakdown: map[Category]time.Duration{
			CategoryProductive: time.Hour,
		},
	}

	stats.DistractionEvents = 4
	assert.Equal(t, 80, Score(stats))

	stats.DistractionEvents = 50 // 250-point penalty, floor at 0
	assert.Equal(t, 0, Score(stats))
}

func TestScore_AlwaysInRange(t *testing.T) {
	cases := []DayStats{
		{},
		{TotalTime: time.Hour, Breakdown: map[Category]time.Duration{CategoryEntertainment: time.Hour}, DistractionEvents: 100},
		{TotalTime: time.Minute, FocusTime: 100 * time.Hour, Breakdown: map[Category]time.Duration{CategoryProductive: time.Minute}},
	}

	for _, stats := range cases {
		got := Score(stats)
		assert.GreaterOrEqual(t, got, 0)
		assert.LessOrEqual(t, got, 100)
	}
}

func TestScore_Deterministic(t *testing.T) {
	stats := DayStats{
		TotalTime:   3 * time.Hour,
		FocusTime:   time.Hour,
		TabSwitches: 17,
		Breakdown: map[Category]time.Duration{
			CategoryProductive: 2 * time.Hour,
			CategorySocial:     time.Hour,
		},
	}

	first := Score(stats)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(stats))
	}
}
