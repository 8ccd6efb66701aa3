package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/fartlog/fartlog-be/internal/auth"
	"github.com/fartlog/fartlog-be/internal/database"
	"github.com/fartlog/fartlog-be/internal/services"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedPresetTypes(db))

	userService := services.NewUserService(db)
	return NewRouter(Deps{
		Tokens:         auth.NewManager("test-secret", userService.GetByID),
		UserService:    userService,
		TypeService:    services.NewFartTypeService(db),
		RecordService:  services.NewRecordService(db),
		Analytics:      services.NewAnalyticsService(db),
		ExportService:  services.NewExportService(db),
		AllowedOrigins: []string{"*"},
	})
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func registerUser(t *testing.T, h http.Handler, username string) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username, "password": "hunter2",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	token, ok := decodeBody(t, rec)["token"].(string)
	require.True(t, ok)
	return token
}

func anyTypeID(t *testing.T, h http.Handler, token string) int64 {
	t.Helper()
	rec := doJSON(t, h, http.MethodGet, "/api/fart-types", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var types []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &types))
	require.NotEmpty(t, types)
	return int64(types[0]["id"].(float64))
}

func createRecord(t *testing.T, h http.Handler, token string, typeID int64, timestamp string) int64 {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/records", token, map[string]any{
		"duration":    "short",
		"type_id":     typeID,
		"smell_level": "mild",
		"temperature": "hot",
		"moisture":    "dry",
		"timestamp":   timestamp,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return int64(decodeBody(t, rec)["id"].(float64))
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t)
	rec := doJSON(t, h, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRegisterAndLogin(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "Alice", "password": "hunter2",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, "alice", body["user"].(map[string]any)["username"])

	// Case-insensitive conflict.
	rec = doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "ALICE", "password": "other",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "USERNAME_TAKEN", decodeBody(t, rec)["code"])

	rec = doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeBody(t, rec)["code"])

	rec = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "hunter2",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["token"])

	rec = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decodeBody(t, rec)["code"])
}

func TestLogoutAndMe(t *testing.T) {
	h := newTestRouter(t)
	token := registerUser(t, h, "alice")

	rec := doJSON(t, h, http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])

	rec = doJSON(t, h, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decodeBody(t, rec)["user"].(map[string]any)["username"])

	rec = doJSON(t, h, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeBody(t, rec)["code"])
}

func TestRecordEndpoints(t *testing.T) {
	h := newTestRouter(t)
	token := registerUser(t, h, "alice")
	typeID := anyTypeID(t, h, token)

	id := createRecord(t, h, token, typeID, "2026-02-10T08:00:00Z")

	rec := doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/records/%d", id), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "short", body["duration"])
	assert.Equal(t, "2026-02-10T08:00:00Z", body["timestamp"])
	assert.NotEmpty(t, body["type_name"])

	// Invalid enum value.
	rec = doJSON(t, h, http.MethodPost, "/api/records", token, map[string]any{
		"duration":    "nope",
		"type_id":     typeID,
		"smell_level": "mild",
		"temperature": "hot",
		"moisture":    "dry",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ENUM", decodeBody(t, rec)["code"])

	// Partial update.
	rec = doJSON(t, h, http.MethodPut, fmt.Sprintf("/api/records/%d", id), token, map[string]any{
		"smell_level": "stinky",
		"notes":       "whew",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, "stinky", body["smell_level"])
	assert.Equal(t, "whew", body["notes"])
	assert.Equal(t, "short", body["duration"])

	rec = doJSON(t, h, http.MethodPut, fmt.Sprintf("/api/records/%d", id), token, map[string]any{
		"duration": "bogus",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ENUM", decodeBody(t, rec)["code"])

	rec = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/api/records/%d", id), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])

	rec = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/api/records/%d", id), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeBody(t, rec)["code"])
}

func TestRecordListQuery(t *testing.T) {
	h := newTestRouter(t)
	token := registerUser(t, h, "alice")
	typeID := anyTypeID(t, h, token)

	createRecord(t, h, token, typeID, "2026-02-01T08:00:00Z")
	createRecord(t, h, token, typeID, "2026-02-10T08:00:00Z")
	createRecord(t, h, token, typeID, "2026-02-20T08:00:00Z")

	rec := doJSON(t, h, http.MethodGet, "/api/records?page=1&per_page=2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(3), body["total"])
	assert.Len(t, body["items"], 2)

	rec = doJSON(t, h, http.MethodGet, "/api/records?date_from=2026-02-05&date_to=2026-02-12", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "2026-02-10T08:00:00Z", items[0].(map[string]any)["timestamp"])

	rec = doJSON(t, h, http.MethodGet, "/api/records?page=zero", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeBody(t, rec)["code"])

	rec = doJSON(t, h, http.MethodGet, "/api/records?date_from=garbage", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordOwnershipOverHTTP(t *testing.T) {
	h := newTestRouter(t)
	aliceToken := registerUser(t, h, "alice")
	bobToken := registerUser(t, h, "bob")
	typeID := anyTypeID(t, h, aliceToken)

	id := createRecord(t, h, aliceToken, typeID, "2026-02-10T08:00:00Z")

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec := doJSON(t, h, method, fmt.Sprintf("/api/records/%d", id), bobToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, method)
		assert.Equal(t, "NOT_FOUND", decodeBody(t, rec)["code"])
	}

	rec := doJSON(t, h, http.MethodPut, fmt.Sprintf("/api/records/%d", id), bobToken, map[string]any{"duration": "long"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Bob's listing stays empty.
	rec = doJSON(t, h, http.MethodGet, "/api/records", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody(t, rec)["total"])
}

func TestFartTypeEndpoints(t *testing.T) {
	h := newTestRouter(t)
	token := registerUser(t, h, "alice")

	rec := doJSON(t, h, http.MethodGet, "/api/fart-types", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var types []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &types))
	assert.Len(t, types, len(database.PresetFartTypes))

	rec = doJSON(t, h, http.MethodPost, "/api/fart-types", token, map[string]string{"name": "squeaky"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody(t, rec)
	assert.Equal(t, "squeaky", created["name"])
	assert.Equal(t, false, created["is_preset"])

	rec = doJSON(t, h, http.MethodPost, "/api/fart-types", token, map[string]string{"name": "squeaky"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "TYPE_EXISTS", decodeBody(t, rec)["code"])

	rec = doJSON(t, h, http.MethodPost, "/api/fart-types", token, map[string]string{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeBody(t, rec)["code"])

	rec = doJSON(t, h, http.MethodGet, "/api/fart-types", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExportEndpoints(t *testing.T) {
	h := newTestRouter(t)
	token := registerUser(t, h, "alice")
	typeID := anyTypeID(t, h, token)
	createRecord(t, h, token, typeID, "2026-02-10T08:00:00Z")

	rec := doJSON(t, h, http.MethodGet, "/api/export/csv", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=fart_records.csv", rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, rec.Body.String(), "时间,时长,类型,臭味程度,温感,湿感,备注")

	rec = doJSON(t, h, http.MethodGet, "/api/export/excel", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=fart_records.xlsx", rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	rec = doJSON(t, h, http.MethodGet, "/api/export/csv", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAnalyticsEndpoints(t *testing.T) {
	h := newTestRouter(t)
	token := registerUser(t, h, "alice")
	typeID := anyTypeID(t, h, token)
	createRecord(t, h, token, typeID, "2026-02-10T08:00:00Z")
	createRecord(t, h, token, typeID, "2026-02-10T09:00:00Z")

	rec := doJSON(t, h, http.MethodGet, "/api/analytics/daily-count", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, []any{"2026-02-10"}, body["dates"])
	assert.Equal(t, []any{float64(2)}, body["counts"])

	rec = doJSON(t, h, http.MethodGet, "/api/analytics/cross-analysis", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var points []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &points))
	assert.Len(t, points, 2)

	paths := []string{
		"/api/analytics/weekly-count",
		"/api/analytics/type-distribution",
		"/api/analytics/smell-distribution",
		"/api/analytics/duration-distribution",
		"/api/analytics/hourly-heatmap",
	}
	for _, p := range paths {
		rec := doJSON(t, h, http.MethodGet, p, token, nil)
		assert.Equal(t, http.StatusOK, rec.Code, p)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/analytics/daily-count", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeBody(t, rec)["code"])
}
