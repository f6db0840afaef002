package daemon

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/runnerr0/mindful/internal/aggregate"
	"github.com/runnerr0/mindful/internal/wellness"
)

// Event types accepted on POST /v1/events.
const (
	eventPageActivity    = "page_activity"
	eventContentAnalysis = "content_analysis"
	eventDistraction     = "distraction"
	eventTabSwitch       = "tab_switch"
	eventTabActive       = "tab_active"
)

// eventRequest is the envelope the extension posts. Fields beyond type are
// interpreted per event type; irrelevant ones are ignored.
type eventRequest struct {
	Type       string             `json:"type"`
	URL        string             `json:"url"`
	Title      string             `json:"title"`
	TabID      int                `json:"tab_id"`
	TimeMs     int64              `json:"time_ms"`
	Engagement *engagementPayload `json:"engagement"`
	Analysis   *analysisPayload   `json:"analysis"`
}

type engagementPayload struct {
	Clicks      int  `json:"clicks"`
	ScrollDepth int  `json:"scroll_depth"`
	IsActive    bool `json:"is_active"`
}

type analysisPayload struct {
	ContentType   string `json:"content_type"`
	Sentiment     string `json:"sentiment"`
	IsDistraction bool   `json:"is_distraction"`
	ReadingTime   int    `json:"reading_time"`
	HasVideo      bool   `json:"has_video"`
	HasAds        bool   `json:"has_ads"`
}

type siteUsageJSON struct {
	Domain      string `json:"domain"`
	TotalTimeMs int64  `json:"total_time_ms"`
	Visits      int    `json:"visits"`
	Category    string `json:"category"`
}

type sentimentJSON struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

type todayResponse struct {
	Date              string           `json:"date"`
	WellnessScore     int              `json:"wellness_score"`
	TotalTimeMs       int64            `json:"total_time_ms"`
	FocusTimeMs       int64            `json:"focus_time_ms"`
	TabSwitches       int              `json:"tab_switches"`
	DistractionEvents int              `json:"distraction_events"`
	Breakdown         map[string]int64 `json:"breakdown"`
	TopSites          []siteUsageJSON  `json:"top_sites"`
	HourlyActivityMs  [24]int64        `json:"hourly_activity_ms"`
	Sentiments        sentimentJSON    `json:"sentiments"`
	ScoreTrend        *int             `json:"score_trend,omitempty"`
}

type daySummaryJSON struct {
	Date          string `json:"date"`
	WellnessScore int    `json:"wellness_score"`
	TotalTimeMs   int64  `json:"total_time_ms"`
	TabSwitches   int    `json:"tab_switches"`
	FocusTimeMs   int64  `json:"focus_time_ms"`
}

type weeklyResponse struct {
	History []daySummaryJSON `json:"history"`
}

type insightsResponse struct {
	View     string             `json:"view"`
	Insights []wellness.Insight `json:"insights"`
}

type focusModeResponse struct {
	Enabled bool `json:"enabled"`
}

type settingsResponse struct {
	FocusThresholdMs          int64 `json:"focus_threshold_ms"`
	TabSwitchDistractionLimit int   `json:"tab_switch_distraction_limit"`
	NotificationsEnabled      bool  `json:"notifications_enabled"`
	WellnessGoal              int   `json:"wellness_goal"`
}

// settingsPatchRequest carries a partial settings update. Absent fields keep
// their stored value.
type settingsPatchRequest struct {
	FocusThresholdMs          *int64 `json:"focus_threshold_ms"`
	TabSwitchDistractionLimit *int   `json:"tab_switch_distraction_limit"`
	NotificationsEnabled      *bool  `json:"notifications_enabled"`
	WellnessGoal              *int   `json:"wellness_goal"`
}

// Handler returns the daemon's HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Post("/v1/events", s.handleEvent)
	r.Get("/v1/stats/today", s.handleStatsToday)
	r.Get("/v1/stats/weekly", s.handleStatsWeekly)
	r.Get("/v1/insights", s.handleInsights)
	r.Get("/v1/focus-mode", s.handleGetFocusMode)
	r.Put("/v1/focus-mode", s.handlePutFocusMode)
	r.Get("/v1/settings", s.handleGetSettings)
	r.Put("/v1/settings", s.handlePutSettings)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	defer r.Body.Close()

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return
	}

	ctx := r.Context()
	var err error
	switch req.Type {
	case eventPageActivity:
		if req.URL == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "url is required for page_activity")
			return
		}
		if req.TimeMs < 0 {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "time_ms must not be negative")
			return
		}
		timeSpent := time.Duration(req.TimeMs) * time.Millisecond
		eng := aggregate.Engagement{}
		if req.Engagement != nil {
			eng = aggregate.Engagement{
				Score:       wellness.EngagementScore(timeSpent, req.Engagement.Clicks, req.Engagement.ScrollDepth, req.Engagement.IsActive),
				Clicks:      req.Engagement.Clicks,
				ScrollDepth: req.Engagement.ScrollDepth,
				IsActive:    req.Engagement.IsActive,
			}
		}
		err = s.tracker.RecordPageActivity(ctx, req.URL, timeSpent, eng)

	case eventContentAnalysis:
		if req.Analysis == nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "analysis is required for content_analysis")
			return
		}
		err = s.tracker.RecordContentAnalysis(ctx, req.URL, req.Title, aggregate.ContentAnalysis{
			Type:          req.Analysis.ContentType,
			Sentiment:     req.Analysis.Sentiment,
			IsDistraction: req.Analysis.IsDistraction,
			ReadingTime:   req.Analysis.ReadingTime,
			HasVideo:      req.Analysis.HasVideo,
			HasAds:        req.Analysis.HasAds,
		})

	case eventDistraction:
		err = s.tracker.RecordDistraction(ctx, req.URL, req.Title)

	case eventTabSwitch:
		err = s.tracker.RecordTabSwitch(ctx)

	case eventTabActive:
		if req.URL == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "url is required for tab_active")
			return
		}
		err = s.tracker.SetActiveTab(ctx, req.TabID, req.URL)

	default:
		httpError(w, http.StatusBadRequest, "invalid_request_error", "unknown event type %q", req.Type)
		return
	}

	if err != nil {
		httpError(w, http.StatusInternalServerError, "api_error", "record event: %v", err)
		return
	}
	writeJSON(w, map[string]string{"status": "recorded"})
}

func (s *Server) handleStatsToday(w http.ResponseWriter, r *http.Request) {
	day := s.tracker.Today()

	breakdown := make(map[string]int64, len(day.Breakdown))
	for category, d := range day.Breakdown {
		breakdown[string(category)] = d.Milliseconds()
	}

	sites := day.TopSites(10)
	sitesJSON := make([]siteUsageJSON, len(sites))
	for i, site := range sites {
		sitesJSON[i] = siteUsageJSON{
			Domain:      site.Domain,
			TotalTimeMs: site.TotalTime.Milliseconds(),
			Visits:      site.Visits,
			Category:    string(site.Category),
		}
	}

	var hourly [24]int64
	for i, d := range day.HourlyActivity() {
		hourly[i] = d.Milliseconds()
	}

	tally := day.Sentiments()

	resp := todayResponse{
		Date:              day.Date,
		WellnessScore:     day.WellnessScore,
		TotalTimeMs:       day.TotalTime.Milliseconds(),
		FocusTimeMs:       day.FocusTime.Milliseconds(),
		TabSwitches:       day.TabSwitches,
		DistractionEvents: day.DistractionEvents,
		Breakdown:         breakdown,
		TopSites:          sitesJSON,
		HourlyActivityMs:  hourly,
		Sentiments:        sentimentJSON{Positive: tally.Positive, Negative: tally.Negative, Neutral: tally.Neutral},
	}
	if delta, ok := aggregate.ScoreTrend(day, s.tracker.History()); ok {
		resp.ScoreTrend = &delta
	}
	writeJSON(w, resp)
}

func (s *Server) handleStatsWeekly(w http.ResponseWriter, r *http.Request) {
	history := s.tracker.History()
	resp := weeklyResponse{History: make([]daySummaryJSON, len(history))}
	for i, day := range history {
		resp.History[i] = daySummaryJSON{
			Date:          day.Date,
			WellnessScore: day.WellnessScore,
			TotalTimeMs:   day.TotalTime.Milliseconds(),
			TabSwitches:   day.TabSwitches,
			FocusTimeMs:   day.FocusTime.Milliseconds(),
		}
	}
	writeJSON(w, resp)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	view := wellness.ViewPopup
	switch r.URL.Query().Get("view") {
	case "", "popup":
	case "analytics":
		view = wellness.ViewAnalytics
	default:
		httpError(w, http.StatusBadRequest, "invalid_request_error", "view must be popup or analytics")
		return
	}

	insights := s.tracker.Insights(view)
	if insights == nil {
		insights = []wellness.Insight{}
	}
	writeJSON(w, insightsResponse{View: string(view), Insights: insights})
}

func (s *Server) handleGetFocusMode(w http.ResponseWriter, r *http.Request) {
	enabled, err := s.tracker.FocusMode(r.Context())
	if err != nil {
		httpError(w, http.StatusInternalServerError, "api_error", "read focus mode: %v", err)
		return
	}
	writeJSON(w, focusModeResponse{Enabled: enabled})
}

func (s *Server) handlePutFocusMode(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	defer r.Body.Close()

	var req focusModeResponse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return
	}
	if err := s.tracker.SetFocusMode(r.Context(), req.Enabled); err != nil {
		httpError(w, http.StatusInternalServerError, "api_error", "set focus mode: %v", err)
		return
	}
	writeJSON(w, focusModeResponse{Enabled: req.Enabled})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, encodeSettings(s.tracker.Settings()))
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	defer r.Body.Close()

	var req settingsPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return
	}

	var patch aggregate.SettingsPatch
	if req.FocusThresholdMs != nil {
		d := time.Duration(*req.FocusThresholdMs) * time.Millisecond
		patch.FocusThreshold = &d
	}
	patch.TabSwitchDistractionLimit = req.TabSwitchDistractionLimit
	patch.NotificationsEnabled = req.NotificationsEnabled
	patch.WellnessGoal = req.WellnessGoal

	merged, err := s.tracker.UpdateSettings(r.Context(), patch)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "api_error", "update settings: %v", err)
		return
	}
	writeJSON(w, encodeSettings(merged))
}

func encodeSettings(s aggregate.Settings) settingsResponse {
	return settingsResponse{
		FocusThresholdMs:          s.FocusThreshold.Milliseconds(),
		TabSwitchDistractionLimit: s.TabSwitchDistractionLimit,
		NotificationsEnabled:      s.NotificationsEnabled,
		WellnessGoal:              s.WellnessGoal,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
