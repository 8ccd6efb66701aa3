package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fartlog/fartlog-be/internal/services"
)

// RecordHandler handles HTTP requests for fart records.
type RecordHandler struct {
	service services.RecordServiceProvider
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(service services.RecordServiceProvider) *RecordHandler {
	return &RecordHandler{service: service}
}

// CreateRecordPayload is the request body for creating a record.
type CreateRecordPayload struct {
	Duration    string  `json:"duration"`
	TypeID      *int64  `json:"type_id"`
	SmellLevel  string  `json:"smell_level"`
	Temperature string  `json:"temperature"`
	Moisture    string  `json:"moisture"`
	Timestamp   string  `json:"timestamp"`
	Notes       *string `json:"notes"`
}

// Create handles POST /records.
func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var payload CreateRecordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", "INVALID_REQUEST")
		return
	}

	rec, err := h.service.Create(user.ID, services.RecordInput{
		Duration:    payload.Duration,
		TypeID:      payload.TypeID,
		SmellLevel:  payload.SmellLevel,
		Temperature: payload.Temperature,
		Moisture:    payload.Moisture,
		Timestamp:   payload.Timestamp,
		Notes:       payload.Notes,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

// List handles GET /records with pagination and optional date range.
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, err1 := strconv.Atoi(defaultStr(q.Get("page"), "1"))
	perPage, err2 := strconv.Atoi(defaultStr(q.Get("per_page"), "20"))
	if err1 != nil || err2 != nil {
		respondError(w, http.StatusBadRequest, "Invalid pagination", "INVALID_REQUEST")
		return
	}

	result, err := h.service.List(user.ID, services.ListParams{
		Page:     page,
		PerPage:  perPage,
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Get handles GET /records/{id}.
func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Get(user.ID, id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// Update handles PUT /records/{id}. Only keys present in the body are
// validated and applied.
func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", "INVALID_REQUEST")
		return
	}

	var update services.RecordUpdate

	if v, present := raw["timestamp"]; present {
		ts := decodeString(v)
		if ts == nil || *ts == "" {
			respondError(w, http.StatusBadRequest, "Invalid timestamp", "INVALID_REQUEST")
			return
		}
		update.Timestamp = ts
	}
	if v, present := raw["duration"]; present {
		update.Duration = stringOrEmpty(v)
	}
	if v, present := raw["type_id"]; present {
		var typeID *int64
		if err := json.Unmarshal(v, &typeID); err != nil || typeID == nil {
			respondError(w, http.StatusBadRequest, "Invalid type_id", "INVALID_TYPE")
			return
		}
		update.TypeID = typeID
	}
	if v, present := raw["smell_level"]; present {
		update.SmellLevel = stringOrEmpty(v)
	}
	if v, present := raw["temperature"]; present {
		update.Temperature = stringOrEmpty(v)
	}
	if v, present := raw["moisture"]; present {
		update.Moisture = stringOrEmpty(v)
	}
	if v, present := raw["notes"]; present {
		update.Notes = decodeString(v)
		update.NotesSet = true
	}

	rec, err := h.service.Update(user.ID, id, update)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// Delete handles DELETE /records/{id}.
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(user.ID, id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// recordID parses the path id. A non-numeric id looks the same as a missing
// record to the caller.
func recordID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusNotFound, "Not found", "NOT_FOUND")
		return 0, false
	}
	return id, true
}

func defaultStr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// decodeString returns the decoded string, or nil for JSON null or a
// non-string value.
func decodeString(raw json.RawMessage) *string {
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return s
}

// stringOrEmpty decodes an enum field; null and non-string values become the
// empty string so validation rejects them as an invalid enum member.
func stringOrEmpty(raw json.RawMessage) *string {
	if s := decodeString(raw); s != nil {
		return s
	}
	empty := ""
	return &empty
}
