package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/mindful/internal/aggregate"
	"github.com/runnerr0/mindful/internal/export"
)

func TestExportImport_RoundTrip(t *testing.T) {
	source, _ := newTestTracker(t)
	ctx := context.Background()

	require.NoError(t, source.RecordPageActivity(ctx, "https://github.com/a", 45*time.Minute, aggregate.Engagement{Clicks: 5}))
	require.NoError(t, source.RecordTabSwitch(ctx))
	require.NoError(t, source.RecordContentAnalysis(ctx, "https://news.example.com", "News",
		aggregate.ContentAnalysis{Type: "article", Sentiment: "negative", IsDistraction: true}))

	var buf bytes.Buffer
	exportCmd := &ExportCommand{globals: &GlobalFlags{}}
	require.NoError(t, exportCmd.executeWith(source, &buf))

	backup, err := export.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, export.FormatVersion, backup.Version)

	target, _ := newTestTracker(t)
	importCmd := &ImportCommand{globals: &GlobalFlags{}}

	captureOutput(t, func() {
		require.NoError(t, importCmd.executeWith(target, bytes.NewReader(buf.Bytes())))
	})

	srcDay := source.Today()
	dstDay := target.Today()
	assert.Equal(t, srcDay.Date, dstDay.Date)
	assert.Equal(t, srcDay.TotalTime, dstDay.TotalTime)
	assert.Equal(t, srcDay.TabSwitches, dstDay.TabSwitches)
	assert.Equal(t, srcDay.DistractionEvents, dstDay.DistractionEvents)
	assert.Equal(t, srcDay.WellnessScore, dstDay.WellnessScore)
	assert.Equal(t, srcDay.Breakdown, dstDay.Breakdown)
	assert.Equal(t, srcDay.ContentLog.Len(), dstDay.ContentLog.Len())
	assert.Equal(t, source.Settings(), target.Settings())
}

func TestImport_RejectsMissingVersion(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	require.NoError(t, tracker.RecordTabSwitch(ctx))

	cmd := &ImportCommand{globals: &GlobalFlags{}}
	err := cmd.executeWith(tracker, strings.NewReader(`{"data": {"current_day": {"date": "2026-08-01"}}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid backup")

	// Existing state untouched.
	assert.Equal(t, 1, tracker.Today().TabSwitches)
	assert.Equal(t, "2026-08-28", tracker.Today().Date)
}

func TestImport_RejectsMissingData(t *testing.T) {
	tracker, _ := newTestTracker(t)

	cmd := &ImportCommand{globals: &GlobalFlags{}}
	err := cmd.executeWith(tracker, strings.NewReader(`{"version": "1.0"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid backup")
}

func TestImport_RejectsMalformedJSON(t *testing.T) {
	tracker, _ := newTestTracker(t)

	cmd := &ImportCommand{globals: &GlobalFlags{}}
	err := cmd.executeWith(tracker, strings.NewReader(`not json at all`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid backup")
}
