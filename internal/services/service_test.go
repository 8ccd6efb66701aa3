package services

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/fartlog/fartlog-be/internal/database"
	"github.com/fartlog/fartlog-be/internal/models"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedPresetTypes(db))
	return db
}

func mustRegister(t *testing.T, db *sql.DB, username string) models.User {
	t.Helper()
	user, err := NewUserService(db).Register(username, "hunter2")
	require.NoError(t, err)
	return user
}

func firstTypeID(t *testing.T, db *sql.DB) int64 {
	t.Helper()
	var id int64
	require.NoError(t, db.QueryRow("SELECT id FROM fart_types ORDER BY id LIMIT 1").Scan(&id))
	return id
}

func mustCreateRecord(t *testing.T, db *sql.DB, userID int64, timestamp string) models.FartRecord {
	t.Helper()
	typeID := firstTypeID(t, db)
	rec, err := NewRecordService(db).Create(userID, RecordInput{
		Duration:    "short",
		TypeID:      &typeID,
		SmellLevel:  "mild",
		Temperature: "hot",
		Moisture:    "dry",
		Timestamp:   timestamp,
	})
	require.NoError(t, err)
	return rec
}

func ptr[T any](v T) *T { return &v }
