package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Imported activities; record_json holds the full decoded record
		`CREATE TABLE IF NOT EXISTS activities (
			id TEXT PRIMARY KEY,
			sport TEXT NOT NULL,
			title TEXT NOT NULL,
			source_format TEXT NOT NULL,
			start_time TEXT NOT NULL,
			elapsed_seconds INTEGER NOT NULL,
			timer_seconds INTEGER NOT NULL,
			moving_seconds INTEGER NOT NULL,
			distance_meters REAL NOT NULL,
			avg_hr INTEGER,
			max_hr INTEGER,
			avg_power INTEGER,
			normalized_power INTEGER,
			tss REAL NOT NULL DEFAULT 0,
			tss_method TEXT NOT NULL DEFAULT 'none',
			intensity_factor REAL,
			trimp REAL,
			file_hash TEXT NOT NULL UNIQUE,
			record_json TEXT NOT NULL,
			ai_analysis TEXT,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activities_start_time ON activities(start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_sport ON activities(sport)`,

		// One PMC row per calendar day
		`CREATE TABLE IF NOT EXISTS daily_metrics (
			date TEXT PRIMARY KEY,
			tss REAL NOT NULL,
			ctl REAL NOT NULL,
			atl REAL NOT NULL,
			tsb REAL NOT NULL,
			computed_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Unrounded engine state after the last computed day (singleton row)
		`CREATE TABLE IF NOT EXISTS pmc_checkpoint (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			date TEXT NOT NULL,
			ctl REAL NOT NULL,
			atl REAL NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
