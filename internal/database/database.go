package database

import (
	"database/sql"

	_ "modernc.org/sqlite" // SQLite driver
)

// PresetFartTypes are the built-in categories seeded at first startup.
var PresetFartTypes = []string{"响屁", "闷屁", "连环屁", "无声屁", "喷射屁"}

// New creates a new database connection pool with foreign keys enforced.
func New(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dataSourceName+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer; a single pooled connection avoids
	// SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS fart_types (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		is_preset INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS fart_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		timestamp TEXT NOT NULL,
		duration TEXT NOT NULL CHECK (duration IN ('very_short','short','medium','long')),
		type_id INTEGER NOT NULL REFERENCES fart_types(id),
		smell_level TEXT NOT NULL CHECK (smell_level IN ('mild','tolerable','stinky','extremely_stinky')),
		temperature TEXT NOT NULL CHECK (temperature IN ('hot','cold')),
		moisture TEXT NOT NULL CHECK (moisture IN ('moist','dry')),
		notes TEXT,
		created_at TEXT DEFAULT (datetime('now'))
	);

	CREATE INDEX IF NOT EXISTS idx_records_user_ts ON fart_records (user_id, timestamp);
	`
	_, err := db.Exec(sqlStmt)
	return err
}

// SeedPresetTypes inserts the built-in categories, skipping names that already
// exist. Safe to run on every startup.
func SeedPresetTypes(db *sql.DB) error {
	stmt, err := db.Prepare("INSERT INTO fart_types (name, is_preset) SELECT ?, 1 WHERE NOT EXISTS (SELECT 1 FROM fart_types WHERE name = ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, name := range PresetFartTypes {
		if _, err := stmt.Exec(name, name); err != nil {
			return err
		}
	}
	return nil
}
