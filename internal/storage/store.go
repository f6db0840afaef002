package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/runnerr0/mindful/internal/aggregate"
	"github.com/runnerr0/mindful/internal/wellness"
)

// SQLiteStore implements aggregate.Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB

	// Prepared statements
	upsertDaily   *sql.Stmt
	insertSession *sql.Stmt
	insertContent *sql.Stmt
}

// NewSQLiteStore creates a SQLiteStore from an already-opened and migrated
// database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.upsertDaily, err = s.db.Prepare(`
		INSERT INTO daily (date, total_time_ms, focus_time_ms, tab_switches, distraction_events, wellness_score, breakdown, active_tab, last_update)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			total_time_ms      = excluded.total_time_ms,
			focus_time_ms      = excluded.focus_time_ms,
			tab_switches       = excluded.tab_switches,
			distraction_events = excluded.distraction_events,
			wellness_score     = excluded.wellness_score,
			breakdown          = excluded.breakdown,
			active_tab         = excluded.active_tab,
			last_update        = excluded.last_update
	`)
	if err != nil {
		return err
	}

	s.insertSession, err = s.db.Prepare(`
		INSERT INTO sessions (id, date, url, category, time_spent_ms, ts, eng_score, clicks, scroll_depth, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	s.insertContent, err = s.db.Prepare(`
		INSERT INTO content_analysis (date, url, title, content_type, sentiment, is_distraction, reading_time, has_video, has_ads, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	return nil
}

// activeTabDoc is the JSON shape of the active_tab column.
type activeTabDoc struct {
	TabID     int    `json:"tabId"`
	URL       string `json:"url"`
	Category  string `json:"category"`
	StartTime string `json:"startTime"`
}

func marshalActiveTab(tab *aggregate.ActiveTab) (sql.NullString, error) {
	if tab == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(activeTabDoc{
		TabID:     tab.TabID,
		URL:       tab.URL,
		Category:  string(tab.Category),
		StartTime: tab.StartTime.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalActiveTab(raw sql.NullString) (*aggregate.ActiveTab, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var doc activeTabDoc
	if err := json.Unmarshal([]byte(raw.String), &doc); err != nil {
		return nil, err
	}
	start, _ := parseTimestamp(doc.StartTime)
	return &aggregate.ActiveTab{
		TabID:     doc.TabID,
		URL:       doc.URL,
		Category:  wellness.Category(doc.Category),
		StartTime: start,
	}, nil
}

func marshalBreakdown(b map[wellness.Category]time.Duration) (string, error) {
	doc := make(map[string]int64, len(b))
	for category, spent := range b {
		doc[string(category)] = spent.Milliseconds()
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalBreakdown(raw string) (map[wellness.Category]time.Duration, error) {
	doc := make(map[string]int64)
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, err
		}
	}
	out := make(map[wellness.Category]time.Duration, len(doc))
	for category, ms := range doc {
		out[wellness.Category(category)] = time.Duration(ms) * time.Millisecond
	}
	return out, nil
}

// parseTimestamp tries the common SQLite timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}

// LoadState returns the persisted live day and the weekly history. A missing
// day row yields (nil, history, nil) so the tracker can start fresh.
func (s *SQLiteStore) LoadState(ctx context.Context) (*aggregate.Day, []wellness.DaySummary, error) {
	history, err := s.loadHistory(ctx)
	if err != nil {
		return nil, nil, err
	}

	day := &aggregate.Day{}
	var (
		totalMS, focusMS int64
		breakdownRaw     string
		activeTabRaw     sql.NullString
		lastUpdateRaw    sql.NullString
	)
	err = s.db.QueryRowContext(ctx, `
		SELECT date, total_time_ms, focus_time_ms, tab_switches, distraction_events, wellness_score, breakdown, active_tab, last_update
		FROM daily ORDER BY date DESC LIMIT 1
	`).Scan(
		&day.Date, &totalMS, &focusMS, &day.TabSwitches,
		&day.DistractionEvents, &day.WellnessScore,
		&breakdownRaw, &activeTabRaw, &lastUpdateRaw,
	)
	if err == sql.ErrNoRows {
		return nil, history, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load daily row: %w", err)
	}

	day.TotalTime = time.Duration(totalMS) * time.Millisecond
	day.FocusTime = time.Duration(focusMS) * time.Millisecond

	day.Breakdown, err = unmarshalBreakdown(breakdownRaw)
	if err != nil {
		return nil, nil, fmt.Errorf("decode breakdown: %w", err)
	}
	day.ActiveTab, err = unmarshalActiveTab(activeTabRaw)
	if err != nil {
		return nil, nil, fmt.Errorf("decode active tab: %w", err)
	}
	if lastUpdateRaw.Valid {
		day.LastUpdate, _ = parseTimestamp(lastUpdateRaw.String)
	}

	if day.Sessions, err = s.loadSessions(ctx, day.Date); err != nil {
		return nil, nil, err
	}
	records, err := s.loadContent(ctx, day.Date)
	if err != nil {
		return nil, nil, err
	}
	for _, r := range records {
		day.ContentLog.Append(r)
	}

	return day, history, nil
}

func (s *SQLiteStore) loadSessions(ctx context.Context, date string) ([]aggregate.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, category, time_spent_ms, ts, eng_score, clicks, scroll_depth, is_active
		FROM sessions WHERE date = ? ORDER BY rowid
	`, date)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	defer rows.Close()

	var sessions []aggregate.Session
	for rows.Next() {
		var (
			sess     aggregate.Session
			category string
			spentMS  int64
			tsRaw    string
		)
		if err := rows.Scan(
			&sess.ID, &sess.URL, &category, &spentMS, &tsRaw,
			&sess.Engagement.Score, &sess.Engagement.Clicks,
			&sess.Engagement.ScrollDepth, &sess.Engagement.IsActive,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.Category = wellness.Category(category)
		sess.TimeSpent = time.Duration(spentMS) * time.Millisecond
		sess.Timestamp, _ = parseTimestamp(tsRaw)
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *SQLiteStore) loadContent(ctx context.Context, date string) ([]aggregate.ContentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT url, title, content_type, sentiment, is_distraction, reading_time, has_video, has_ads, ts
		FROM content_analysis WHERE date = ? ORDER BY id
	`, date)
	if err != nil {
		return nil, fmt.Errorf("load content analysis: %w", err)
	}
	defer rows.Close()

	var records []aggregate.ContentRecord
	for rows.Next() {
		var (
			r     aggregate.ContentRecord
			tsRaw string
		)
		if err := rows.Scan(
			&r.URL, &r.Title, &r.Analysis.Type, &r.Analysis.Sentiment,
			&r.Analysis.IsDistraction, &r.Analysis.ReadingTime,
			&r.Analysis.HasVideo, &r.Analysis.HasAds, &tsRaw,
		); err != nil {
			return nil, fmt.Errorf("scan content record: %w", err)
		}
		r.Timestamp, _ = parseTimestamp(tsRaw)
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) loadHistory(ctx context.Context) ([]wellness.DaySummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, wellness_score, total_time_ms, tab_switches, focus_time_ms
		FROM weekly_stats ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("load weekly stats: %w", err)
	}
	defer rows.Close()

	var history []wellness.DaySummary
	for rows.Next() {
		var (
			d                wellness.DaySummary
			totalMS, focusMS int64
		)
		if err := rows.Scan(&d.Date, &d.WellnessScore, &totalMS, &d.TabSwitches, &focusMS); err != nil {
			return nil, fmt.Errorf("scan weekly stat: %w", err)
		}
		d.TotalTime = time.Duration(totalMS) * time.Millisecond
		d.FocusTime = time.Duration(focusMS) * time.Millisecond
		history = append(history, d)
	}
	return history, rows.Err()
}

// SaveDayCounters upserts the counter row for a day.
func (s *SQLiteStore) SaveDayCounters(ctx context.Context, day *aggregate.Day) error {
	breakdown, err := marshalBreakdown(day.Breakdown)
	if err != nil {
		return fmt.Errorf("encode breakdown: %w", err)
	}
	activeTab, err := marshalActiveTab(day.ActiveTab)
	if err != nil {
		return fmt.Errorf("encode active tab: %w", err)
	}

	_, err = s.upsertDaily.ExecContext(ctx,
		day.Date, day.TotalTime.Milliseconds(), day.FocusTime.Milliseconds(),
		day.TabSwitches, day.DistractionEvents, day.WellnessScore,
		breakdown, activeTab, day.LastUpdate.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert daily: %w", err)
	}
	return nil
}

// AppendSession persists one session record.
func (s *SQLiteStore) AppendSession(ctx context.Context, date string, sess aggregate.Session) error {
	_, err := s.insertSession.ExecContext(ctx,
		sess.ID, date, sess.URL, string(sess.Category),
		sess.TimeSpent.Milliseconds(), sess.Timestamp.UTC().Format(time.RFC3339Nano),
		sess.Engagement.Score, sess.Engagement.Clicks,
		sess.Engagement.ScrollDepth, sess.Engagement.IsActive,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// AppendContent persists one content record and trims the stored log for the
// date to keep rows, oldest first.
func (s *SQLiteStore) AppendContent(ctx context.Context, date string, r aggregate.ContentRecord, keep int) error {
	_, err := s.insertContent.ExecContext(ctx,
		date, r.URL, r.Title, r.Analysis.Type, r.Analysis.Sentiment,
		r.Analysis.IsDistraction, r.Analysis.ReadingTime,
		r.Analysis.HasVideo, r.Analysis.HasAds,
		r.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert content record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		DELETE FROM content_analysis
		WHERE date = ? AND id NOT IN (
			SELECT id FROM content_analysis WHERE date = ? ORDER BY id DESC LIMIT ?
		)
	`, date, date, keep)
	if err != nil {
		return fmt.Errorf("trim content log: %w", err)
	}
	return nil
}

// RolloverDay archives the outgoing summary into weekly_stats, trims history
// to keepDays, drops the outgoing day's rows, and installs the fresh day.
// All of it happens in one transaction so a concurrent reader never sees a
// partially-reset day.
func (s *SQLiteStore) RolloverDay(ctx context.Context, summary wellness.DaySummary, fresh *aggregate.Day, keepDays int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO weekly_stats (date, wellness_score, total_time_ms, tab_switches, focus_time_ms)
		VALUES (?, ?, ?, ?, ?)
	`, summary.Date, summary.WellnessScore, summary.TotalTime.Milliseconds(),
		summary.TabSwitches, summary.FocusTime.Milliseconds()); err != nil {
		return fmt.Errorf("archive summary: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM weekly_stats
		WHERE id NOT IN (SELECT id FROM weekly_stats ORDER BY id DESC LIMIT ?)
	`, keepDays); err != nil {
		return fmt.Errorf("trim weekly stats: %w", err)
	}

	// Dropping the old daily rows cascades into sessions and content.
	if _, err := tx.ExecContext(ctx, `DELETE FROM daily WHERE date != ?`, fresh.Date); err != nil {
		return fmt.Errorf("drop outgoing day: %w", err)
	}

	breakdown, err := marshalBreakdown(fresh.Breakdown)
	if err != nil {
		return fmt.Errorf("encode breakdown: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO daily (date, wellness_score, breakdown, last_update)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(date) DO NOTHING
	`, fresh.Date, fresh.WellnessScore, breakdown,
		fresh.LastUpdate.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("install fresh day: %w", err)
	}

	return tx.Commit()
}

// ReplaceState swaps the whole persisted document in one transaction.
func (s *SQLiteStore) ReplaceState(ctx context.Context, day *aggregate.Day, history []wellness.DaySummary, settings aggregate.Settings, focusMode bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, stmt := range []string{
		"DELETE FROM sessions",
		"DELETE FROM content_analysis",
		"DELETE FROM daily",
		"DELETE FROM weekly_stats",
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear state (%s): %w", stmt, err)
		}
	}

	breakdown, err := marshalBreakdown(day.Breakdown)
	if err != nil {
		return fmt.Errorf("encode breakdown: %w", err)
	}
	activeTab, err := marshalActiveTab(day.ActiveTab)
	if err != nil {
		return fmt.Errorf("encode active tab: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO daily (date, total_time_ms, focus_time_ms, tab_switches, distraction_events, wellness_score, breakdown, active_tab, last_update)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, day.Date, day.TotalTime.Milliseconds(), day.FocusTime.Milliseconds(),
		day.TabSwitches, day.DistractionEvents, day.WellnessScore,
		breakdown, activeTab, day.LastUpdate.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("insert daily: %w", err)
	}

	for _, sess := range day.Sessions {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sessions (id, date, url, category, time_spent_ms, ts, eng_score, clicks, scroll_depth, is_active)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, sess.ID, day.Date, sess.URL, string(sess.Category),
			sess.TimeSpent.Milliseconds(), sess.Timestamp.UTC().Format(time.RFC3339Nano),
			sess.Engagement.Score, sess.Engagement.Clicks,
			sess.Engagement.ScrollDepth, sess.Engagement.IsActive); err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
	}

	for _, r := range day.ContentLog.Records() {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO content_analysis (date, url, title, content_type, sentiment, is_distraction, reading_time, has_video, has_ads, ts)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, day.Date, r.URL, r.Title, r.Analysis.Type, r.Analysis.Sentiment,
			r.Analysis.IsDistraction, r.Analysis.ReadingTime,
			r.Analysis.HasVideo, r.Analysis.HasAds,
			r.Timestamp.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("insert content record: %w", err)
		}
	}

	for _, d := range history {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO weekly_stats (date, wellness_score, total_time_ms, tab_switches, focus_time_ms)
			VALUES (?, ?, ?, ?, ?)
		`, d.Date, d.WellnessScore, d.TotalTime.Milliseconds(),
			d.TabSwitches, d.FocusTime.Milliseconds()); err != nil {
			return fmt.Errorf("insert weekly stat: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO settings (id, focus_threshold_ms, tab_switch_limit, notifications_enabled, wellness_goal, focus_mode)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			focus_threshold_ms    = excluded.focus_threshold_ms,
			tab_switch_limit      = excluded.tab_switch_limit,
			notifications_enabled = excluded.notifications_enabled,
			wellness_goal         = excluded.wellness_goal,
			focus_mode            = excluded.focus_mode,
			updated_at            = CURRENT_TIMESTAMP
	`, settings.FocusThreshold.Milliseconds(), settings.TabSwitchDistractionLimit,
		settings.NotificationsEnabled, settings.WellnessGoal, focusMode); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}

	return tx.Commit()
}

// LoadSettings returns the persisted settings and whether a row exists.
func (s *SQLiteStore) LoadSettings(ctx context.Context) (aggregate.Settings, bool, error) {
	var (
		settings    aggregate.Settings
		thresholdMS int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT focus_threshold_ms, tab_switch_limit, notifications_enabled, wellness_goal
		FROM settings WHERE id = 1
	`).Scan(&thresholdMS, &settings.TabSwitchDistractionLimit,
		&settings.NotificationsEnabled, &settings.WellnessGoal)
	if err == sql.ErrNoRows {
		return aggregate.Settings{}, false, nil
	}
	if err != nil {
		return aggregate.Settings{}, false, fmt.Errorf("load settings: %w", err)
	}
	settings.FocusThreshold = time.Duration(thresholdMS) * time.Millisecond
	return settings, true, nil
}

// SaveSettings upserts the settings row. The focus-mode flag is managed
// separately and survives a settings update.
func (s *SQLiteStore) SaveSettings(ctx context.Context, settings aggregate.Settings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (id, focus_threshold_ms, tab_switch_limit, notifications_enabled, wellness_goal)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			focus_threshold_ms    = excluded.focus_threshold_ms,
			tab_switch_limit      = excluded.tab_switch_limit,
			notifications_enabled = excluded.notifications_enabled,
			wellness_goal         = excluded.wellness_goal,
			updated_at            = CURRENT_TIMESTAMP
	`, settings.FocusThreshold.Milliseconds(), settings.TabSwitchDistractionLimit,
		settings.NotificationsEnabled, settings.WellnessGoal)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// FocusMode reads the page-blocking flag. Missing settings row means off.
func (s *SQLiteStore) FocusMode(ctx context.Context) (bool, error) {
	var enabled bool
	err := s.db.QueryRowContext(ctx, `SELECT focus_mode FROM settings WHERE id = 1`).Scan(&enabled)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load focus mode: %w", err)
	}
	return enabled, nil
}

// SetFocusMode writes the page-blocking flag.
func (s *SQLiteStore) SetFocusMode(ctx context.Context, enabled bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE settings SET focus_mode = ?, updated_at = CURRENT_TIMESTAMP WHERE id = 1
	`, enabled)
	if err != nil {
		return fmt.Errorf("set focus mode: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("set focus mode: settings not initialized")
	}
	return nil
}

// PurgeAll deletes every tracked row. Settings are reset too; the next
// tracker start reseeds defaults.
func (s *SQLiteStore) PurgeAll(ctx context.Context) error {
	stmts := []string{
		"DELETE FROM sessions",
		"DELETE FROM content_analysis",
		"DELETE FROM daily",
		"DELETE FROM weekly_stats",
		"DELETE FROM settings",
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("purge (%s): %w", stmt, err)
		}
	}
	return nil
}

// Close releases the prepared statements. The underlying *sql.DB is NOT
// closed; that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	for _, stmt := range []*sql.Stmt{s.upsertDaily, s.insertSession, s.insertContent} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}
