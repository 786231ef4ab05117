// Package store is the persistence collaborator: analysis runs and
// per-product rows land in a local SQLite database. It sits outside the
// pure engine: the engine never imports it, and a failed row here never
// poisons the rest of a batch.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"catalogengine/internal/logger"
)

const logTag = "STORE"

// DB wraps a SQLite connection standing in for the hosted table store.
type DB struct {
	sql *sql.DB
}

func dbPath() string {
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "catalogengine.db")
	}
	exe, _ := os.Executable()
	return filepath.Join(filepath.Dir(exe), "catalogengine.db")
}

// Open opens (or creates) the SQLite database and runs migrations.
func Open() (*DB, error) {
	path := dbPath()
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Info(logTag, fmt.Sprintf("opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS config (
				key   TEXT PRIMARY KEY,
				value TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS analysis_runs (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				started_at  TEXT NOT NULL,
				country     TEXT NOT NULL,
				total       INTEGER NOT NULL,
				passed      INTEGER NOT NULL,
				discarded   INTEGER NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_analysis_runs_ts ON analysis_runs(started_at);

			CREATE TABLE IF NOT EXISTS analyzed_products (
				id                 INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id             INTEGER NOT NULL REFERENCES analysis_runs(id),
				uuid               TEXT NOT NULL,
				name               TEXT NOT NULL,
				provider_price     INTEGER NOT NULL,
				optimal_price      INTEGER NOT NULL,
				sales_7d           INTEGER NOT NULL,
				sales_30d          INTEGER NOT NULL,
				stock              INTEGER NOT NULL,
				trend_pattern      TEXT NOT NULL,
				trend_score        INTEGER NOT NULL,
				wow_growth_pct     TEXT NOT NULL,
				consistency_pct    REAL NOT NULL,
				passed             INTEGER NOT NULL,
				discard_reasons    TEXT NOT NULL,
				market_verdict     TEXT,
				analyzed_at        TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_analyzed_run ON analyzed_products(run_id);
			CREATE INDEX IF NOT EXISTS idx_analyzed_uuid ON analyzed_products(uuid);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info(logTag, "applied migration v1")
	}

	return nil
}
