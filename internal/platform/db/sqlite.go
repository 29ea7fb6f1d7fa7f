package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// sqliteSchema is applied on every open; all statements are idempotent.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS vital_records (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    batch_id TEXT NOT NULL,
    patient_id TEXT NOT NULL,
    observed_at REAL NOT NULL,
    heart_rate REAL NOT NULL,
    bp_systolic REAL NOT NULL,
    bp_diastolic REAL NOT NULL,
    temperature REAL NOT NULL,
    spo2 REAL NOT NULL,
    resp_rate REAL NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_vital_records_patient ON vital_records(patient_id, observed_at);

CREATE TABLE IF NOT EXISTS alerts (
    id TEXT PRIMARY KEY,
    patient_id TEXT NOT NULL,
    observed_at REAL NOT NULL,
    vital TEXT NOT NULL,
    value REAL NOT NULL,
    severity TEXT NOT NULL CHECK (severity IN ('warning', 'critical')),
    message TEXT NOT NULL,
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alerts_patient ON alerts(patient_id, created_at);

CREATE TABLE IF NOT EXISTS patients (
    id TEXT PRIMARY KEY,
    patient_id TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    age INTEGER,
    history TEXT,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);
`

// OpenSQLite opens (creating if needed) the SQLite database at path and
// applies the schema. The handle is limited to one connection: the store is
// used by a single operator, and ":memory:" databases are per-connection.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	conn, err := sql.Open("sqlite3", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	if _, err := conn.ExecContext(ctx, sqliteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize sqlite schema: %w", err)
	}

	return conn, nil
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	if path == ":memory:" {
		return ":memory:?_foreign_keys=ON"
	}
	return path + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000"
}
