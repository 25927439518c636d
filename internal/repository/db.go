package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens (or creates) a SQLite database at the given path and ensures
// all required tables exist. Pass ":memory:" for an in-memory database.
//
// Monetary and quantity columns are TEXT holding exact decimal strings; they
// must never pass through a float column.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id TEXT PRIMARY KEY,
			account TEXT NOT NULL,
			instrument TEXT NOT NULL,
			isin TEXT,
			side TEXT NOT NULL,
			quantity TEXT NOT NULL,
			price TEXT,
			currency TEXT,
			trade_date TEXT,
			settlement_date TEXT NOT NULL,
			cash_amount TEXT,
			fees TEXT,
			status TEXT NOT NULL DEFAULT 'SETTLED',
			source_file TEXT,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_account ON trades(account)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_key ON trades(account, instrument, settlement_date, side)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_status ON trades(status)`,

		`CREATE TABLE IF NOT EXISTS settlements (
			id TEXT PRIMARY KEY,
			account TEXT NOT NULL,
			instrument TEXT NOT NULL,
			quantity TEXT NOT NULL,
			cash_amount TEXT,
			settlement_date TEXT NOT NULL,
			currency TEXT,
			side TEXT,
			source_file TEXT,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_settlements_key ON settlements(account, instrument, settlement_date, side)`,

		`CREATE TABLE IF NOT EXISTS breaks (
			id TEXT PRIMARY KEY,
			break_type TEXT NOT NULL,
			expected_trade_id TEXT NOT NULL,
			actual_settlement_id TEXT,
			expected_value TEXT NOT NULL,
			actual_value TEXT,
			difference TEXT NOT NULL,
			severity TEXT NOT NULL,
			reason TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'OPEN',
			assigned_to TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_breaks_fingerprint ON breaks(fingerprint)`,
		`CREATE INDEX IF NOT EXISTS idx_breaks_status ON breaks(status)`,
		`CREATE INDEX IF NOT EXISTS idx_breaks_type ON breaks(break_type)`,
		`CREATE INDEX IF NOT EXISTS idx_breaks_severity ON breaks(severity)`,

		`CREATE TABLE IF NOT EXISTS break_history (
			id TEXT PRIMARY KEY,
			break_id TEXT NOT NULL,
			action TEXT NOT NULL,
			user TEXT NOT NULL DEFAULT 'system',
			comment TEXT,
			timestamp DATETIME NOT NULL,
			FOREIGN KEY (break_id) REFERENCES breaks(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_break_history_break ON break_history(break_id)`,

		`CREATE TABLE IF NOT EXISTS uploads (
			id TEXT PRIMARY KEY,
			filename TEXT NOT NULL,
			uploader TEXT NOT NULL DEFAULT 'system',
			type TEXT NOT NULL,
			rows_processed INTEGER NOT NULL DEFAULT 0,
			hash TEXT UNIQUE,
			created_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			cash_tolerance TEXT,
			date_tolerance_days INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:60], err)
		}
	}

	return nil
}
