package daemon

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/mindful/internal/aggregate"
	"github.com/runnerr0/mindful/internal/storage"
	"github.com/runnerr0/mindful/internal/wellness"
)

// newTestServer builds a handler backed by an in-memory store with a fixed
// clock at 2026-08-28 10:00 UTC.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.NewMigrationRunner(db).Run())

	store, err := storage.NewSQLiteStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	tracker, err := aggregate.NewTracker(context.Background(), store,
		aggregate.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	return New(tracker, "127.0.0.1:0", 0).Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestEvent_PageActivityAccruesTime(t *testing.T) {
	h := newTestServer(t)

	body := `{
		"type": "page_activity",
		"url": "https://github.com/runnerr0/mindful",
		"time_ms": 400000,
		"engagement": {"clicks": 12, "scroll_depth": 80, "is_active": true}
	}`
	rec := doJSON(t, h, http.MethodPost, "/v1/events", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodGet, "/v1/stats/today", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var today todayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &today))
	assert.Equal(t, "2026-08-28", today.Date)
	assert.Equal(t, int64(400000), today.TotalTimeMs)
	assert.Equal(t, int64(400000), today.FocusTimeMs, "long productive session counts as focus")
	assert.Equal(t, int64(400000), today.Breakdown[string(wellness.CategoryProductive)])
	assert.Equal(t, 100, today.WellnessScore)

	require.Len(t, today.TopSites, 1)
	assert.Equal(t, "github.com", today.TopSites[0].Domain)
	assert.Equal(t, 1, today.TopSites[0].Visits)
	assert.Equal(t, int64(400000), today.HourlyActivityMs[10])
}

func TestEvent_PageActivityRejectsNegativeTime(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/events",
		`{"type": "page_activity", "url": "https://github.com/a", "time_ms": -5000}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "time_ms must not be negative")

	// The aggregate stays untouched.
	rec = doJSON(t, h, http.MethodGet, "/v1/stats/today", "")
	var today todayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &today))
	assert.Zero(t, today.TotalTimeMs)
	assert.Empty(t, today.Breakdown)
}

func TestEvent_ZeroDurationSessionKeepsScoreStable(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/events",
		`{"type": "page_activity", "url": "https://github.com/a", "time_ms": 0}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodGet, "/v1/stats/today", "")
	var today todayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &today))
	assert.Zero(t, today.TotalTimeMs)
	assert.Contains(t, today.Breakdown, string(wellness.CategoryProductive))
	assert.GreaterOrEqual(t, today.WellnessScore, 0)
	assert.LessOrEqual(t, today.WellnessScore, 100)
}

func TestEvent_TabSwitch(t *testing.T) {
	h := newTestServer(t)

	for i := 0; i < 3; i++ {
		rec := doJSON(t, h, http.MethodPost, "/v1/events", `{"type": "tab_switch"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, h, http.MethodGet, "/v1/stats/today", "")
	var today todayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &today))
	assert.Equal(t, 3, today.TabSwitches)
	assert.Zero(t, today.DistractionEvents)
}

func TestEvent_ContentAnalysis(t *testing.T) {
	h := newTestServer(t)

	body := `{
		"type": "content_analysis",
		"url": "https://news.example.com/article",
		"title": "Article",
		"analysis": {"content_type": "article", "sentiment": "negative", "is_distraction": true}
	}`
	rec := doJSON(t, h, http.MethodPost, "/v1/events", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodGet, "/v1/stats/today", "")
	var today todayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &today))
	assert.Equal(t, 1, today.DistractionEvents)
	assert.Equal(t, 1, today.Sentiments.Negative)
}

func TestEvent_ContentAnalysisRequiresAnalysis(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/events", `{"type": "content_analysis", "url": "https://x.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "analysis is required")
}

func TestEvent_TabActive(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/events", `{"type": "tab_active", "tab_id": 7, "url": "https://github.com/"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/v1/stats/today", "")
	var today todayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &today))
	assert.Zero(t, today.TotalTimeMs, "active tab alone accrues no time")
}

func TestEvent_UnknownTypeRejected(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/events", `{"type": "telemetry"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown event type")
}

func TestEvent_MalformedJSONRejected(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/events", `{"type": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errBody map[string]map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
	assert.Equal(t, "invalid_request_error", errBody["error"]["type"])
}

func TestEvent_BodySizeCapped(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.NewMigrationRunner(db).Run())
	store, err := storage.NewSQLiteStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	tracker, err := aggregate.NewTracker(context.Background(), store)
	require.NoError(t, err)

	h := New(tracker, "127.0.0.1:0", 64).Handler()

	big := fmt.Sprintf(`{"type": "page_activity", "url": "https://example.com/%s"}`, strings.Repeat("x", 200))
	rec := doJSON(t, h, http.MethodPost, "/v1/events", big)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatsWeekly_EmptyHistory(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/v1/stats/weekly", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var weekly weeklyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &weekly))
	assert.Empty(t, weekly.History)
}

func TestInsights_Views(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/v1/insights", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp insightsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "popup", resp.View)
	assert.NotNil(t, resp.Insights)

	rec = doJSON(t, h, http.MethodGet, "/v1/insights?view=analytics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "analytics", resp.View)

	rec = doJSON(t, h, http.MethodGet, "/v1/insights?view=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFocusMode_RoundTrip(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/v1/focus-mode", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var mode focusModeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mode))
	assert.False(t, mode.Enabled)

	rec = doJSON(t, h, http.MethodPut, "/v1/focus-mode", `{"enabled": true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/v1/focus-mode", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mode))
	assert.True(t, mode.Enabled)
}

func TestSettings_GetAndMerge(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/v1/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var settings settingsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
	assert.Equal(t, int64(300000), settings.FocusThresholdMs)
	assert.Equal(t, 50, settings.TabSwitchDistractionLimit)
	assert.True(t, settings.NotificationsEnabled)
	assert.Equal(t, 70, settings.WellnessGoal)

	rec = doJSON(t, h, http.MethodPut, "/v1/settings", `{"wellness_goal": 90, "notifications_enabled": false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
	assert.Equal(t, 90, settings.WellnessGoal)
	assert.False(t, settings.NotificationsEnabled)
	assert.Equal(t, int64(300000), settings.FocusThresholdMs, "absent fields keep their stored value")
}

func TestStatsToday_ScoreTrendAfterHistory(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/v1/stats/today", "")
	var today todayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &today))
	assert.Nil(t, today.ScoreTrend, "no trend without history")
}
