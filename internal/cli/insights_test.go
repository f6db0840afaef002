package cli

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/mindful/internal/aggregate"
	"github.com/runnerr0/mindful/internal/wellness"
)

func TestInsights_InvalidView(t *testing.T) {
	tracker, _ := newTestTracker(t)

	cmd := &InsightsCommand{View: "dashboard", globals: &GlobalFlags{}}
	err := cmd.executeWith(tracker)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid view")
}

func TestInsights_EmptyDay(t *testing.T) {
	tracker, _ := newTestTracker(t)

	cmd := &InsightsCommand{View: "popup", globals: &GlobalFlags{}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWith(tracker))
	})

	// A fresh day has no focus time, so the focus rule fires.
	assert.Contains(t, output, "[info] Focus Opportunity")
}

func TestInsights_ExcellentDay(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	require.NoError(t, tracker.RecordPageActivity(ctx, "https://github.com/a", 8*time.Hour, aggregate.Engagement{}))

	cmd := &InsightsCommand{View: "popup", globals: &GlobalFlags{}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWith(tracker))
	})
	assert.Contains(t, output, "Excellent Digital Wellness")
}

func TestInsights_JSONOutput(t *testing.T) {
	tracker, _ := newTestTracker(t)

	cmd := &InsightsCommand{View: "analytics", globals: &GlobalFlags{JSON: true}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWith(tracker))
	})

	var insights []wellness.Insight
	require.NoError(t, json.Unmarshal([]byte(output), &insights))
	assert.NotNil(t, insights)
}
