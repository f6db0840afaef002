package storage

import "database/sql"

// migrateV001 creates the initial Mindful schema: the live daily aggregate,
// its session and content-analysis logs, the weekly history, and the
// settings row. Every statement uses IF NOT EXISTS for idempotency.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		// ── Tables ──────────────────────────────────────────────

		`CREATE TABLE IF NOT EXISTS daily (
			date               TEXT PRIMARY KEY,
			total_time_ms      INTEGER NOT NULL DEFAULT 0,
			focus_time_ms      INTEGER NOT NULL DEFAULT 0,
			tab_switches       INTEGER NOT NULL DEFAULT 0,
			distraction_events INTEGER NOT NULL DEFAULT 0,
			wellness_score     INTEGER NOT NULL DEFAULT 75,
			breakdown          TEXT NOT NULL DEFAULT '{}',
			active_tab         TEXT,
			last_update        DATETIME
		)`,

		`CREATE TABLE IF NOT EXISTS sessions (
			id            TEXT PRIMARY KEY,
			date          TEXT NOT NULL REFERENCES daily(date) ON DELETE CASCADE,
			url           TEXT NOT NULL,
			category      TEXT NOT NULL,
			time_spent_ms INTEGER NOT NULL DEFAULT 0,
			ts            DATETIME NOT NULL,
			eng_score     REAL NOT NULL DEFAULT 0,
			clicks        INTEGER NOT NULL DEFAULT 0,
			scroll_depth  INTEGER NOT NULL DEFAULT 0,
			is_active     BOOLEAN NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS content_analysis (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			date           TEXT NOT NULL REFERENCES daily(date) ON DELETE CASCADE,
			url            TEXT NOT NULL,
			title          TEXT NOT NULL DEFAULT '',
			content_type   TEXT NOT NULL DEFAULT 'general',
			sentiment      TEXT NOT NULL DEFAULT 'neutral',
			is_distraction BOOLEAN NOT NULL DEFAULT 0,
			reading_time   INTEGER NOT NULL DEFAULT 0,
			has_video      BOOLEAN NOT NULL DEFAULT 0,
			has_ads        BOOLEAN NOT NULL DEFAULT 0,
			ts             DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS weekly_stats (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			date           TEXT NOT NULL,
			wellness_score INTEGER NOT NULL DEFAULT 75,
			total_time_ms  INTEGER NOT NULL DEFAULT 0,
			tab_switches   INTEGER NOT NULL DEFAULT 0,
			focus_time_ms  INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS settings (
			id                    INTEGER PRIMARY KEY CHECK (id = 1),
			focus_threshold_ms    INTEGER NOT NULL,
			tab_switch_limit      INTEGER NOT NULL,
			notifications_enabled BOOLEAN NOT NULL,
			wellness_goal         INTEGER NOT NULL,
			focus_mode            BOOLEAN NOT NULL DEFAULT 0,
			updated_at            DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// ── Indexes ────────────────────────────────────────────

		`CREATE INDEX IF NOT EXISTS idx_sessions_date     ON sessions(date)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ts       ON sessions(ts)`,
		`CREATE INDEX IF NOT EXISTS idx_content_date      ON content_analysis(date)`,
		`CREATE INDEX IF NOT EXISTS idx_weekly_stats_date ON weekly_stats(date)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
